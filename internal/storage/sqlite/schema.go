// ABOUTME: SQLite schema for the encrypted memory store
// ABOUTME: Four entity tables plus a flat metadata table, with indexes
package sqlite

// Schema contains all SQL statements for database initialization.
// message.content and facts.object hold ciphertext; session titles and goals
// stay plaintext so they remain indexable for search.
const Schema = `
-- Identity singleton (one row per installation)
CREATE TABLE IF NOT EXISTS identity (
    id TEXT PRIMARY KEY,
    display_name TEXT,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL
);

-- Sessions (bounded conversation units)
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    identity_id TEXT NOT NULL REFERENCES identity(id),
    goal TEXT,
    title TEXT,
    started_at DATETIME NOT NULL,
    ended_at DATETIME
);

-- Messages (append-only turns; content is ciphertext)
CREATE TABLE IF NOT EXISTS messages (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
    role TEXT NOT NULL CHECK (role IN ('user', 'assistant', 'system')),
    content TEXT NOT NULL,
    created_at DATETIME NOT NULL
);

-- Facts (object is ciphertext; triple is unique per identity)
CREATE TABLE IF NOT EXISTS facts (
    id TEXT PRIMARY KEY,
    identity_id TEXT NOT NULL REFERENCES identity(id),
    category TEXT NOT NULL,
    predicate TEXT NOT NULL,
    object TEXT NOT NULL,
    confidence REAL NOT NULL DEFAULT 0.8,
    sensitivity INTEGER NOT NULL DEFAULT 1,
    consent_scope TEXT NOT NULL DEFAULT 'shareable',
    source_message_id TEXT,
    decay_half_life_days REAL NOT NULL DEFAULT 90,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL,
    last_reinforced_at DATETIME,
    UNIQUE(identity_id, category, predicate)
);

-- Metadata (schema version, identity echo, integrity outcomes, crypto markers)
CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at DATETIME NOT NULL
);

-- Indexes for efficient querying
CREATE INDEX IF NOT EXISTS idx_sessions_identity ON sessions(identity_id, started_at);
CREATE INDEX IF NOT EXISTS idx_sessions_title ON sessions(title);
CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, created_at);
CREATE INDEX IF NOT EXISTS idx_facts_identity ON facts(identity_id);
CREATE INDEX IF NOT EXISTS idx_facts_category ON facts(identity_id, category);
`

// SchemaVersion is the current schema version for migrations.
const SchemaVersion = 1

// Metadata keys.
const (
	MetaSchemaVersion      = "schema_version"
	MetaInstallID          = "install_id"
	MetaIntegrityResult    = "integrity_result"
	MetaIntegrityCheckedAt = "integrity_checked_at"
	MetaEncryptionMode     = "encryption_mode"
)

// EncryptionMode is recorded in metadata so a store file is self-describing.
const EncryptionMode = "aes-256-gcm"
