package db

// Messages store the full envelope-encoded body as the source of truth.
// search_text, attachment_names, and attachment_count are derived columns
// rebuilt from the body by the indexer; the attachments table mirrors the
// envelope blocks for per-file queries.
const schema = `
-- Main messages table
CREATE TABLE IF NOT EXISTS messages (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    role TEXT NOT NULL DEFAULT 'user',
    body TEXT NOT NULL,              -- envelope-encoded message, source of truth
    search_text TEXT NOT NULL DEFAULT '',       -- derived: display text
    attachment_names TEXT NOT NULL DEFAULT '',  -- derived: space-joined filenames
    attachment_count INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Full-text search virtual table
CREATE VIRTUAL TABLE IF NOT EXISTS messages_fts USING fts5(
    search_text,
    attachment_names,
    content='messages',
    content_rowid='id'
);

-- Triggers to keep FTS in sync. External-content FTS5 tables must be told
-- about removals via the special 'delete' command, not plain DELETE/UPDATE.
CREATE TRIGGER IF NOT EXISTS messages_ai AFTER INSERT ON messages BEGIN
    INSERT INTO messages_fts(rowid, search_text, attachment_names)
    VALUES (new.id, new.search_text, new.attachment_names);
END;

CREATE TRIGGER IF NOT EXISTS messages_ad AFTER DELETE ON messages BEGIN
    INSERT INTO messages_fts(messages_fts, rowid, search_text, attachment_names)
    VALUES ('delete', old.id, old.search_text, old.attachment_names);
END;

CREATE TRIGGER IF NOT EXISTS messages_au AFTER UPDATE ON messages BEGIN
    INSERT INTO messages_fts(messages_fts, rowid, search_text, attachment_names)
    VALUES ('delete', old.id, old.search_text, old.attachment_names);
    INSERT INTO messages_fts(rowid, search_text, attachment_names)
    VALUES (new.id, new.search_text, new.attachment_names);
END;

-- Attachments table (extracted text metadata, one row per envelope block)
CREATE TABLE IF NOT EXISTS attachments (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    message_id INTEGER NOT NULL,
    file_index INTEGER NOT NULL,
    filename TEXT NOT NULL,
    content_bytes INTEGER DEFAULT 0,
    FOREIGN KEY(message_id) REFERENCES messages(id) ON DELETE CASCADE
);

-- Settings table (for storing reindex bookkeeping, preferences)
CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Indexes for performance
CREATE INDEX IF NOT EXISTS idx_messages_created_at ON messages(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_messages_role ON messages(role);
CREATE INDEX IF NOT EXISTS idx_attachments_message_id ON attachments(message_id);
CREATE INDEX IF NOT EXISTS idx_attachments_filename ON attachments(filename);
`
