package provider

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ironvale/configcore/internal/configstore"
	"github.com/ironvale/configcore/internal/infrastructure/database"
)

// SQLite reads configuration entries from the config_entries table. It sits
// between defaults and config files in the standard chain, matching the
// Database source's conceptual rank.
type SQLite struct {
	db *database.DB
}

// NewSQLite creates a database provider over an open connection. The caller
// retains ownership of the connection.
func NewSQLite(db *database.DB) *SQLite {
	return &SQLite{db: db}
}

// Name identifies the provider in logs.
func (*SQLite) Name() string { return "sqlite" }

// Source reports the provenance of database-loaded entries.
func (*SQLite) Source() configstore.Source { return configstore.SourceDatabase }

// Load reads every row of config_entries. Values are TEXT; the declared
// type column drives coercion inside the store.
func (p *SQLite) Load(ctx context.Context) ([]configstore.Seed, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT key, value, type, required, sensitive, description
		 FROM config_entries ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("querying config_entries: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only cursor

	var seeds []configstore.Seed
	for rows.Next() {
		var (
			key, value, typeName string
			required, sensitive  bool
			description          sql.NullString
		)
		if err := rows.Scan(&key, &value, &typeName, &required, &sensitive, &description); err != nil {
			return nil, fmt.Errorf("scanning config_entries row: %w", err)
		}
		seeds = append(seeds, configstore.Seed{
			Key:         key,
			Value:       value,
			Type:        configstore.KindFromName(typeName),
			Required:    required,
			Sensitive:   sensitive,
			Description: description.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating config_entries: %w", err)
	}
	return seeds, nil
}
