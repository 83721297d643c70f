package database

import (
	"context"
	"fmt"
)

// configEntriesSchema is the storage for database-sourced configuration
// entries. Values are stored as TEXT and coerced by the engine according to
// the declared type column.
const configEntriesSchema = `
CREATE TABLE IF NOT EXISTS config_entries (
    key         TEXT PRIMARY KEY,
    value       TEXT NOT NULL,
    type        TEXT NOT NULL DEFAULT 'string',
    required    INTEGER NOT NULL DEFAULT 0,
    sensitive   INTEGER NOT NULL DEFAULT 0,
    description TEXT,
    updated_at  TEXT
);
`

// EnsureSchema creates the config_entries table when it does not exist.
// It is idempotent and safe to call on every startup.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, configEntriesSchema); err != nil {
		return fmt.Errorf("creating config_entries schema: %w", err)
	}
	return nil
}
