package db

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"time"
)

// NullTime is a custom type that handles both string and time.Time from SQLite
type NullTime struct {
	Time  time.Time
	Valid bool
}

// Scan implements sql.Scanner for NullTime
func (nt *NullTime) Scan(value interface{}) error {
	if value == nil {
		nt.Time, nt.Valid = time.Time{}, false
		return nil
	}

	switch v := value.(type) {
	case time.Time:
		nt.Time, nt.Valid = v, true
		return nil
	case string:
		// Try multiple time formats
		formats := []string{
			time.RFC3339,
			time.RFC3339Nano,
			// SQLite timestamp formats including Go's time.String() format
			"2006-01-02 15:04:05.999999999 -0700 -0700",
			"2006-01-02 15:04:05 -0700 -0700",
			"2006-01-02 15:04:05.999999999 -0700 MST",
			"2006-01-02 15:04:05 -0700 MST",
			"2006-01-02 15:04:05.999999999 -0700",
			"2006-01-02 15:04:05 -0700",
			"2006-01-02 15:04:05.999999999",
			"2006-01-02 15:04:05",
			"2006-01-02T15:04:05Z",
		}

		var t time.Time
		var err error
		for _, format := range formats {
			t, err = time.Parse(format, v)
			if err == nil {
				nt.Time, nt.Valid = t, true
				return nil
			}
		}

		return fmt.Errorf("failed to parse time string %q: %w", v, err)
	default:
		return fmt.Errorf("unsupported Scan type for NullTime: %T", value)
	}
}

// Value implements driver.Valuer for NullTime
func (nt NullTime) Value() (driver.Value, error) {
	if !nt.Valid {
		return nil, nil
	}
	return nt.Time, nil
}

// Message represents a chat message record. Body holds the envelope-encoded
// message and is the source of truth; SearchText, AttachmentNames, and
// AttachmentCount are derived from it and exist only to feed listing and FTS.
type Message struct {
	ID              int64
	Role            string
	Body            string
	SearchText      string
	AttachmentNames string
	AttachmentCount int
	CreatedAt       NullTime
	UpdatedAt       NullTime
}

// GetCreatedAt returns the creation time as time.Time, or zero time if NULL
func (m *Message) GetCreatedAt() time.Time {
	if m.CreatedAt.Valid {
		return m.CreatedAt.Time
	}
	return time.Time{}
}

// InsertMessage inserts a new message with its derived search columns
func (db *DB) InsertMessage(msg *Message) (int64, error) {
	result, err := db.Exec(`
		INSERT INTO messages (role, body, search_text, attachment_names, attachment_count)
		VALUES (?, ?, ?, ?, ?)
	`,
		msg.Role, msg.Body, msg.SearchText, msg.AttachmentNames, msg.AttachmentCount,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert message: %w", err)
	}

	return result.LastInsertId()
}

// GetMessageByID retrieves a message by its ID
func (db *DB) GetMessageByID(id int64) (*Message, error) {
	msg := &Message{}
	err := db.QueryRow(`
		SELECT id, role, body, search_text, attachment_names, attachment_count,
		       created_at, updated_at
		FROM messages WHERE id = ?
	`, id).Scan(
		&msg.ID, &msg.Role, &msg.Body, &msg.SearchText, &msg.AttachmentNames,
		&msg.AttachmentCount, &msg.CreatedAt, &msg.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	return msg, nil
}

// ListMessages retrieves the most recent messages with pagination.
// The id tiebreak keeps ordering stable for rows created in the same second.
func (db *DB) ListMessages(limit, offset int) ([]*Message, error) {
	rows, err := db.Query(`
		SELECT id, role, body, search_text, attachment_names, attachment_count,
		       created_at, updated_at
		FROM messages
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		msg := &Message{}
		err := rows.Scan(
			&msg.ID, &msg.Role, &msg.Body, &msg.SearchText, &msg.AttachmentNames,
			&msg.AttachmentCount, &msg.CreatedAt, &msg.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, msg)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}

	return messages, nil
}

// ListMessagesByID retrieves messages with id greater than afterID in
// ascending id order. Used by the reindexer to walk the whole table in
// stable batches while it updates rows.
func (db *DB) ListMessagesByID(afterID int64, limit int) ([]*Message, error) {
	rows, err := db.Query(`
		SELECT id, role, body, search_text, attachment_names, attachment_count,
		       created_at, updated_at
		FROM messages
		WHERE id > ?
		ORDER BY id
		LIMIT ?
	`, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages by id: %w", err)
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		msg := &Message{}
		err := rows.Scan(
			&msg.ID, &msg.Role, &msg.Body, &msg.SearchText, &msg.AttachmentNames,
			&msg.AttachmentCount, &msg.CreatedAt, &msg.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, msg)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}

	return messages, nil
}

// CountMessages returns the total number of messages
func (db *DB) CountMessages() (int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM messages").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return count, nil
}

// UpdateDerived rewrites the derived search columns for a message. The body
// itself is never touched; the FTS triggers pick up the new values.
func (db *DB) UpdateDerived(id int64, searchText, attachmentNames string, attachmentCount int) error {
	result, err := db.Exec(`
		UPDATE messages
		SET search_text = ?, attachment_names = ?, attachment_count = ?,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, searchText, attachmentNames, attachmentCount, id)
	if err != nil {
		return fmt.Errorf("failed to update derived columns: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("message not found")
	}

	return nil
}

// DeleteMessage deletes a message and its attachment rows.
// Attachments are removed explicitly because the connection does not
// enable foreign key enforcement.
func (db *DB) DeleteMessage(id int64) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM attachments WHERE message_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete attachments: %w", err)
	}

	result, err := tx.Exec("DELETE FROM messages WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("message not found")
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Stats holds database statistics
type Stats struct {
	TotalMessages    int
	WithAttachments  int
	TotalAttachments int
	LastMessageAt    time.Time
	LastReindexAt    time.Time
}

// GetStats returns current database statistics
func (db *DB) GetStats() (*Stats, error) {
	stats := &Stats{}

	err := db.QueryRow("SELECT COUNT(*) FROM messages").Scan(&stats.TotalMessages)
	if err != nil {
		return nil, fmt.Errorf("failed to count messages: %w", err)
	}

	err = db.QueryRow("SELECT COUNT(*) FROM messages WHERE attachment_count > 0").Scan(&stats.WithAttachments)
	if err != nil {
		return nil, fmt.Errorf("failed to count messages with attachments: %w", err)
	}

	err = db.QueryRow("SELECT COUNT(*) FROM attachments").Scan(&stats.TotalAttachments)
	if err != nil {
		return nil, fmt.Errorf("failed to count attachments: %w", err)
	}

	// Get last message time
	var lastMessage NullTime
	err = db.QueryRow("SELECT MAX(created_at) FROM messages").Scan(&lastMessage)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get last message time: %w", err)
	}
	if lastMessage.Valid {
		stats.LastMessageAt = lastMessage.Time
	}

	// Last reindex time is written by the indexer as RFC3339
	lastReindex, err := db.GetSetting(SettingLastReindex)
	if err != nil {
		return nil, err
	}
	if lastReindex != "" {
		if t, parseErr := time.Parse(time.RFC3339, lastReindex); parseErr == nil {
			stats.LastReindexAt = t
		}
	}

	return stats, nil
}
