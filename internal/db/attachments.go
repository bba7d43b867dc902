package db

import (
	"fmt"
)

// Attachment represents one envelope block of a message. Only the filename
// and the size of the extracted text are stored; the text itself lives in
// the message body and is re-read from there when needed.
type Attachment struct {
	ID           int64
	MessageID    int64
	FileIndex    int
	Filename     string
	ContentBytes int64
}

// InsertAttachment inserts a single attachment row
func (db *DB) InsertAttachment(att *Attachment) (int64, error) {
	result, err := db.Exec(`
		INSERT INTO attachments (message_id, file_index, filename, content_bytes)
		VALUES (?, ?, ?, ?)
	`, att.MessageID, att.FileIndex, att.Filename, att.ContentBytes)
	if err != nil {
		return 0, fmt.Errorf("failed to insert attachment: %w", err)
	}

	return result.LastInsertId()
}

// GetAttachmentsByMessageID retrieves all attachment rows for a message
// in insertion order, which matches envelope encounter order.
func (db *DB) GetAttachmentsByMessageID(messageID int64) ([]*Attachment, error) {
	rows, err := db.Query(`
		SELECT id, message_id, file_index, filename, content_bytes
		FROM attachments
		WHERE message_id = ?
		ORDER BY id
	`, messageID)
	if err != nil {
		return nil, fmt.Errorf("failed to get attachments: %w", err)
	}
	defer rows.Close()

	var attachments []*Attachment
	for rows.Next() {
		att := &Attachment{}
		err := rows.Scan(&att.ID, &att.MessageID, &att.FileIndex, &att.Filename, &att.ContentBytes)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}
		attachments = append(attachments, att)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attachments: %w", err)
	}

	return attachments, nil
}

// ReplaceAttachments swaps the attachment rows for a message in a single
// transaction. Used by insert and reindex, which both rebuild the full set.
func (db *DB) ReplaceAttachments(messageID int64, attachments []*Attachment) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM attachments WHERE message_id = ?", messageID); err != nil {
		return fmt.Errorf("failed to clear attachments: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO attachments (message_id, file_index, filename, content_bytes)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, att := range attachments {
		_, err := stmt.Exec(messageID, att.FileIndex, att.Filename, att.ContentBytes)
		if err != nil {
			return fmt.Errorf("failed to insert attachment %s: %w", att.Filename, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// AttachmentName is one entry of the attachment name frequency list
type AttachmentName struct {
	Filename string
	Count    int
}

// TopAttachmentNames retrieves distinct attachment filenames ordered by
// frequency (most attached first)
func (db *DB) TopAttachmentNames(limit int) ([]*AttachmentName, error) {
	rows, err := db.Query(`
		SELECT filename, COUNT(*) as file_count
		FROM attachments
		WHERE filename != ''
		GROUP BY filename
		ORDER BY file_count DESC, filename ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get attachment names: %w", err)
	}
	defer rows.Close()

	var names []*AttachmentName
	for rows.Next() {
		name := &AttachmentName{}
		if err := rows.Scan(&name.Filename, &name.Count); err != nil {
			return nil, fmt.Errorf("failed to scan attachment name: %w", err)
		}
		names = append(names, name)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attachment names: %w", err)
	}

	return names, nil
}
