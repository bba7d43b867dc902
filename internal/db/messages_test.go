package db

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestInsertMessage tests inserting a message into the database
func TestInsertMessage(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	msg := CreateTestMessage("user", "Hello world", "Hello world")

	id, err := db.InsertMessage(msg)

	require.NoError(t, err, "Should insert message without error")
	assert.Greater(t, id, int64(0), "Should return valid ID")

	// Verify it was inserted
	retrieved, err := db.GetMessageByID(id)
	require.NoError(t, err)
	require.NotNil(t, retrieved)

	assert.Equal(t, msg.Role, retrieved.Role)
	assert.Equal(t, msg.Body, retrieved.Body)
	assert.Equal(t, msg.SearchText, retrieved.SearchText)
	assert.True(t, retrieved.CreatedAt.Valid, "created_at should be set by default")
}

// TestGetMessageByID tests retrieving a message by its ID
func TestGetMessageByID(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	// Insert test message
	msg := CreateTestMessageWithAttachments("assistant", "Body with envelope", "Body text", "notes.txt report.pdf", 2)
	id, err := db.InsertMessage(msg)
	require.NoError(t, err)

	// Retrieve by ID
	retrieved, err := db.GetMessageByID(id)

	require.NoError(t, err)
	require.NotNil(t, retrieved, "Should retrieve message")
	assert.Equal(t, id, retrieved.ID)
	assert.Equal(t, "assistant", retrieved.Role)
	assert.Equal(t, "Body with envelope", retrieved.Body)
	assert.Equal(t, "notes.txt report.pdf", retrieved.AttachmentNames)
	assert.Equal(t, 2, retrieved.AttachmentCount)

	// Non-existent ID should return nil
	retrieved, err = db.GetMessageByID(99999)
	require.NoError(t, err)
	assert.Nil(t, retrieved, "Non-existent ID should return nil")
}

// TestListMessages tests listing messages with pagination
func TestListMessages(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	// Insert multiple test messages. They share a CURRENT_TIMESTAMP second,
	// so the id tiebreak determines the order.
	messages := []*Message{
		CreateTestMessage("user", "Message 1", "Message 1"),
		CreateTestMessage("user", "Message 2", "Message 2"),
		CreateTestMessage("user", "Message 3", "Message 3"),
		CreateTestMessage("user", "Message 4", "Message 4"),
	}

	InsertTestMessages(t, db, messages)

	// Test listing with limit
	list, err := db.ListMessages(2, 0)
	require.NoError(t, err)
	assert.Len(t, list, 2, "Should return 2 messages with limit=2")

	// Should be ordered newest first
	assert.Equal(t, "Message 4", list[0].Body, "Most recent message should be first")
	assert.Equal(t, "Message 3", list[1].Body, "Second most recent should be second")

	// Test pagination with offset
	list, err = db.ListMessages(2, 2)
	require.NoError(t, err)
	assert.Len(t, list, 2, "Should return 2 messages with offset=2")
	assert.Equal(t, "Message 2", list[0].Body)
	assert.Equal(t, "Message 1", list[1].Body)

	// Test listing all
	list, err = db.ListMessages(100, 0)
	require.NoError(t, err)
	assert.Len(t, list, 4, "Should return all 4 messages")
}

// TestListMessagesByID tests keyset batching in ascending id order
func TestListMessagesByID(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	messages := []*Message{
		CreateTestMessage("user", "Message 1", "Message 1"),
		CreateTestMessage("user", "Message 2", "Message 2"),
		CreateTestMessage("user", "Message 3", "Message 3"),
	}
	InsertTestMessages(t, db, messages)

	// First batch from the beginning
	batch, err := db.ListMessagesByID(0, 2)
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, "Message 1", batch[0].Body, "Should walk in ascending id order")
	assert.Equal(t, "Message 2", batch[1].Body)

	// Next batch resumes after the last seen id
	batch, err = db.ListMessagesByID(batch[1].ID, 2)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, "Message 3", batch[0].Body)

	// Past the end
	batch, err = db.ListMessagesByID(batch[0].ID, 2)
	require.NoError(t, err)
	assert.Empty(t, batch, "No messages past the last id")
}

// TestCountMessages tests counting total messages
func TestCountMessages(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	// Initially should be 0
	count, err := db.CountMessages()
	require.NoError(t, err)
	assert.Equal(t, 0, count, "Should start with 0 messages")

	// Insert messages
	messages := []*Message{
		CreateTestMessage("user", "Message 1", "Message 1"),
		CreateTestMessage("assistant", "Message 2", "Message 2"),
		CreateTestMessage("user", "Message 3", "Message 3"),
	}
	InsertTestMessages(t, db, messages)

	// Count should be 3
	count, err = db.CountMessages()
	require.NoError(t, err)
	assert.Equal(t, 3, count, "Should have 3 messages")
}

// TestUpdateDerived tests rewriting the derived search columns
func TestUpdateDerived(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	msg := CreateTestMessage("user", "envelope body", "draft alpha")
	id, err := db.InsertMessage(msg)
	require.NoError(t, err)

	// Searchable under the old derived text
	results, err := db.SearchMessages("alpha", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)

	// Rewrite the derived columns
	err = db.UpdateDerived(id, "final beta", "notes.txt", 1)
	require.NoError(t, err)

	retrieved, err := db.GetMessageByID(id)
	require.NoError(t, err)
	require.NotNil(t, retrieved)
	assert.Equal(t, "final beta", retrieved.SearchText)
	assert.Equal(t, "notes.txt", retrieved.AttachmentNames)
	assert.Equal(t, 1, retrieved.AttachmentCount)
	assert.Equal(t, "envelope body", retrieved.Body, "Body must not be touched")

	// FTS index should follow the update
	results, err = db.SearchMessages("alpha", 10)
	require.NoError(t, err)
	assert.Len(t, results, 0, "Old derived text should no longer match")

	results, err = db.SearchMessages("beta", 10)
	require.NoError(t, err)
	assert.Len(t, results, 1, "New derived text should match")

	// Non-existent ID should error
	err = db.UpdateDerived(99999, "x", "", 0)
	assert.Error(t, err, "Updating a missing message should error")
}

// TestDeleteMessage tests deleting a message and its attachment rows
func TestDeleteMessage(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	msg := CreateTestMessageWithAttachments("user", "body", "searchable delete target", "a.txt b.csv", 2)
	id, err := db.InsertMessage(msg)
	require.NoError(t, err)

	err = db.ReplaceAttachments(id, []*Attachment{
		{FileIndex: 0, Filename: "a.txt", ContentBytes: 5},
		{FileIndex: 1, Filename: "b.csv", ContentBytes: 3},
	})
	require.NoError(t, err)

	// Delete
	err = db.DeleteMessage(id)
	require.NoError(t, err)

	// Message gone
	retrieved, err := db.GetMessageByID(id)
	require.NoError(t, err)
	assert.Nil(t, retrieved, "Deleted message should not be retrievable")

	// Attachment rows gone
	attachments, err := db.GetAttachmentsByMessageID(id)
	require.NoError(t, err)
	assert.Empty(t, attachments, "Attachment rows should be deleted with the message")

	// FTS entry gone
	results, err := db.SearchMessages("delete", 10)
	require.NoError(t, err)
	assert.Len(t, results, 0, "Deleted message should not be searchable")

	// Deleting again should error
	err = db.DeleteMessage(id)
	assert.Error(t, err, "Deleting a missing message should error")
}

// TestAttachmentOperations tests inserting and retrieving attachment rows
func TestAttachmentOperations(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	// Insert message first
	msg := CreateTestMessage("user", "body", "body")
	messageID, err := db.InsertMessage(msg)
	require.NoError(t, err)

	// Create and insert attachment
	att := &Attachment{
		MessageID:    messageID,
		FileIndex:    0,
		Filename:     "report.pdf",
		ContentBytes: 1024,
	}

	attID, err := db.InsertAttachment(att)
	require.NoError(t, err)
	assert.Greater(t, attID, int64(0), "Should return valid attachment ID")

	// Retrieve attachments by message ID
	attachments, err := db.GetAttachmentsByMessageID(messageID)
	require.NoError(t, err)
	require.Len(t, attachments, 1, "Should have 1 attachment")

	retrieved := attachments[0]
	assert.Equal(t, "report.pdf", retrieved.Filename)
	assert.Equal(t, 0, retrieved.FileIndex)
	assert.Equal(t, int64(1024), retrieved.ContentBytes)

	// Multiple attachments come back in insertion order
	att2 := &Attachment{MessageID: messageID, FileIndex: 1, Filename: "notes.txt", ContentBytes: 64}
	_, err = db.InsertAttachment(att2)
	require.NoError(t, err)

	attachments, err = db.GetAttachmentsByMessageID(messageID)
	require.NoError(t, err)
	require.Len(t, attachments, 2, "Should have 2 attachments")
	assert.Equal(t, "report.pdf", attachments[0].Filename)
	assert.Equal(t, "notes.txt", attachments[1].Filename)
}

// TestReplaceAttachments tests swapping the attachment set for a message
func TestReplaceAttachments(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	msg := CreateTestMessage("user", "body", "body")
	messageID, err := db.InsertMessage(msg)
	require.NoError(t, err)

	// Seed initial set
	err = db.ReplaceAttachments(messageID, []*Attachment{
		{FileIndex: 0, Filename: "old-1.txt", ContentBytes: 10},
		{FileIndex: 1, Filename: "old-2.txt", ContentBytes: 20},
	})
	require.NoError(t, err)

	// Replace with a different set
	err = db.ReplaceAttachments(messageID, []*Attachment{
		{FileIndex: 0, Filename: "new-1.csv", ContentBytes: 30},
		{FileIndex: 1, Filename: "new-2.csv", ContentBytes: 40},
		{FileIndex: 2, Filename: "new-3.csv", ContentBytes: 50},
	})
	require.NoError(t, err)

	attachments, err := db.GetAttachmentsByMessageID(messageID)
	require.NoError(t, err)
	require.Len(t, attachments, 3, "Old rows should be replaced by the new set")
	assert.Equal(t, "new-1.csv", attachments[0].Filename)
	assert.Equal(t, "new-3.csv", attachments[2].Filename)

	// Replacing with an empty set clears the rows
	err = db.ReplaceAttachments(messageID, nil)
	require.NoError(t, err)

	attachments, err = db.GetAttachmentsByMessageID(messageID)
	require.NoError(t, err)
	assert.Empty(t, attachments, "Empty replacement should clear all rows")
}

// TestTopAttachmentNames tests the attachment name frequency list
func TestTopAttachmentNames(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	// Three messages sharing attachment names with different frequencies
	counts := map[string]int{
		"report.pdf": 3,
		"a.txt":      2,
		"notes.txt":  2,
		"once.csv":   1,
	}
	fileIndex := 0
	for name, n := range counts {
		for i := 0; i < n; i++ {
			msg := CreateTestMessage("user", "body", "body")
			messageID, err := db.InsertMessage(msg)
			require.NoError(t, err)

			_, err = db.InsertAttachment(&Attachment{
				MessageID: messageID,
				FileIndex: fileIndex,
				Filename:  name,
			})
			require.NoError(t, err)
			fileIndex++
		}
	}

	names, err := db.TopAttachmentNames(10)
	require.NoError(t, err)
	require.Len(t, names, 4)

	// Ordered by frequency, then alphabetically for ties
	assert.Equal(t, "report.pdf", names[0].Filename)
	assert.Equal(t, 3, names[0].Count)
	assert.Equal(t, "a.txt", names[1].Filename, "Ties should be ordered alphabetically")
	assert.Equal(t, "notes.txt", names[2].Filename)
	assert.Equal(t, "once.csv", names[3].Filename)

	// Limit is respected
	names, err = db.TopAttachmentNames(2)
	require.NoError(t, err)
	assert.Len(t, names, 2)
}

// TestGetStats tests database statistics
func TestGetStats(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	// Empty database
	stats, err := db.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalMessages)
	assert.Equal(t, 0, stats.WithAttachments)
	assert.Equal(t, 0, stats.TotalAttachments)
	assert.True(t, stats.LastMessageAt.IsZero(), "No messages means zero last message time")
	assert.True(t, stats.LastReindexAt.IsZero(), "No reindex yet means zero time")

	// Insert one plain message and one with attachments
	plain := CreateTestMessage("user", "plain", "plain")
	_, err = db.InsertMessage(plain)
	require.NoError(t, err)

	withAtts := CreateTestMessageWithAttachments("user", "body", "body", "a.txt b.csv", 2)
	messageID, err := db.InsertMessage(withAtts)
	require.NoError(t, err)
	err = db.ReplaceAttachments(messageID, []*Attachment{
		{FileIndex: 0, Filename: "a.txt"},
		{FileIndex: 1, Filename: "b.csv"},
	})
	require.NoError(t, err)

	reindexTime := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)
	err = db.SetSetting(SettingLastReindex, reindexTime.Format(time.RFC3339))
	require.NoError(t, err)

	stats, err = db.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalMessages)
	assert.Equal(t, 1, stats.WithAttachments)
	assert.Equal(t, 2, stats.TotalAttachments)
	assert.False(t, stats.LastMessageAt.IsZero(), "Last message time should be set")
	assert.Equal(t, reindexTime.Unix(), stats.LastReindexAt.Unix(), "Last reindex time should round-trip")
}

// TestNullTimeHandling tests that timestamps survive the SQLite round trip
func TestNullTimeHandling(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	msg := CreateTestMessage("user", "body", "body")
	id, err := db.InsertMessage(msg)
	require.NoError(t, err)

	retrieved, err := db.GetMessageByID(id)
	require.NoError(t, err)
	require.NotNil(t, retrieved)

	assert.True(t, retrieved.CreatedAt.Valid, "created_at should scan as valid")
	assert.False(t, retrieved.GetCreatedAt().IsZero(), "GetCreatedAt should return the stored time")

	// Zero value behaves as NULL
	var empty Message
	assert.True(t, empty.GetCreatedAt().IsZero(), "GetCreatedAt on unset time should return zero time")
}

// TestFTS5TriggerBehavior tests that FTS5 triggers keep the index in sync
func TestFTS5TriggerBehavior(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	// Insert message
	msg := CreateTestMessage("user", "body", "searchable content")
	id, err := db.InsertMessage(msg)
	require.NoError(t, err)

	// Should be searchable immediately via FTS5
	results, err := db.SearchMessages("searchable", 10)
	require.NoError(t, err)
	assert.Len(t, results, 1, "Should find 1 result")
	assert.Equal(t, id, results[0].ID)

	// Insert another message
	msg2 := CreateTestMessage("user", "body", "different content")
	id2, err := db.InsertMessage(msg2)
	require.NoError(t, err)

	// Both should be searchable
	results, err = db.SearchMessages("content", 10)
	require.NoError(t, err)
	assert.Len(t, results, 2, "Should find 2 results with 'content'")

	// Specific search should find one
	results, err = db.SearchMessages("different", 10)
	require.NoError(t, err)
	assert.Len(t, results, 1, "Should find 1 result")
	assert.Equal(t, id2, results[0].ID)
}

// TestSettings tests setting and getting application settings
func TestSettings(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	// Get non-existent setting
	value, err := db.GetSetting("test_key")
	require.NoError(t, err)
	assert.Empty(t, value, "Non-existent setting should return empty string")

	// Set a setting
	err = db.SetSetting("test_key", "test_value")
	require.NoError(t, err)

	// Get the setting
	value, err = db.GetSetting("test_key")
	require.NoError(t, err)
	assert.Equal(t, "test_value", value)

	// Update the setting
	err = db.SetSetting("test_key", "updated_value")
	require.NoError(t, err)

	value, err = db.GetSetting("test_key")
	require.NoError(t, err)
	assert.Equal(t, "updated_value", value, "Setting should be updated")
}

// TestInsertManyMessages exercises listing over a larger set
func TestInsertManyMessages(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	for i := 1; i <= 25; i++ {
		msg := CreateTestMessage("user", fmt.Sprintf("Message %d", i), fmt.Sprintf("Message %d", i))
		_, err := db.InsertMessage(msg)
		require.NoError(t, err)
	}

	count, err := db.CountMessages()
	require.NoError(t, err)
	assert.Equal(t, 25, count)

	// Page through everything
	seen := 0
	for offset := 0; offset < 25; offset += 10 {
		page, err := db.ListMessages(10, offset)
		require.NoError(t, err)
		seen += len(page)
	}
	assert.Equal(t, 25, seen, "Paging should cover all messages")
}
