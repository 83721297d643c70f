// Package provider implements the bootstrap providers consumed by the
// configuration store at construction: compiled defaults, layered
// configuration files, environment variables, and a SQLite-backed entry
// table.
//
// Providers are consulted exactly once, in the order the caller assembles
// them. Precedence between sources is that load order and nothing else:
// the store is last-write-wins, so the standard chain loads lowest
// priority first (defaults, database, files, environment).
//
// All providers are best-effort: a missing file, unreadable document, or
// failed query is reported to the store, logged, and skipped. Only the
// store's mission-critical gate can abort construction.
package provider
