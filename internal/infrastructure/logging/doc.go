// Package logging provides structured logging for configcore.
//
// It wraps log/slog with level parsing, format selection (JSON or text),
// and default service/version fields, so every component logs in the same
// shape.
//
// Performance Characteristics:
//   - Handler configuration happens once at construction
//   - Disabled levels short-circuit before formatting
package logging
