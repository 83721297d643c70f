// Package database manages the SQLite connection backing the
// database-sourced configuration provider.
//
// This package manages:
//   - Connection lifecycle with WAL mode and busy-timeout pragmas
//   - Schema bootstrap for the config_entries table
//   - Health checks
//
// The engine itself never touches the database after construction; all
// reads happen once, inside the provider's Load call.
package database
