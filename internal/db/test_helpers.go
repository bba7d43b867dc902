package db

import (
	"testing"
	"time"
)

// NewNullTime creates a NullTime from a time.Time
func NewNullTime(t time.Time) NullTime {
	return NullTime{Time: t, Valid: true}
}

// SetupTestDB creates an in-memory SQLite database for testing
func SetupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	return db
}

// CleanupTestDB closes the test database
func CleanupTestDB(t *testing.T, db *DB) {
	t.Helper()

	if err := db.Close(); err != nil {
		t.Errorf("Failed to close test database: %v", err)
	}
}

// CreateTestMessage creates a test message with default values. The body and
// search text are passed pre-derived; tests that care about envelope encoding
// build the body with the envelope package first.
func CreateTestMessage(role, body, searchText string) *Message {
	return &Message{
		Role:            role,
		Body:            body,
		SearchText:      searchText,
		AttachmentNames: "",
		AttachmentCount: 0,
	}
}

// CreateTestMessageWithAttachments creates a test message with derived
// attachment columns set
func CreateTestMessageWithAttachments(role, body, searchText, attachmentNames string, attachmentCount int) *Message {
	msg := CreateTestMessage(role, body, searchText)
	msg.AttachmentNames = attachmentNames
	msg.AttachmentCount = attachmentCount
	return msg
}

// InsertTestMessages inserts multiple test messages and returns them with IDs set
func InsertTestMessages(t *testing.T, db *DB, messages []*Message) []*Message {
	t.Helper()

	for i, msg := range messages {
		id, err := db.InsertMessage(msg)
		if err != nil {
			t.Fatalf("Failed to insert test message %d: %v", i, err)
		}
		messages[i].ID = id
	}

	return messages
}
