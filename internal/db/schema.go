package db

// GetSchemaSQL returns the authoritative schema. Tests load the schema
// through this function so test databases never drift from production.
func GetSchemaSQL() string {
	return `
CREATE TABLE IF NOT EXISTS messages (
    queue_id   TEXT NOT NULL,
    key        TEXT NOT NULL,
    raw        BLOB NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (queue_id, key)
);

CREATE TABLE IF NOT EXISTS queues (
    queue_id   TEXT PRIMARY KEY,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_messages_queue ON messages(queue_id);
`
}
