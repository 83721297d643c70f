package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config contains logging settings. It lives here rather than in the
// configuration engine because the logger must exist before any
// configuration has been resolved.
type Config struct {
	// Level filters records: debug, info, warn, error. Defaults to info.
	Level string

	// Format selects the handler: "json" (default) or "text".
	Format string

	// Output selects the destination: "stdout" (default) or "stderr".
	Output string
}

// Logger wraps slog.Logger with configcore-specific defaults.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Logger struct {
	*slog.Logger
}

// New creates a Logger with the specified configuration.
//
// It configures:
//   - Output format (JSON for production, text for development)
//   - Log level filtering
//   - Default fields (service name, version)
//
// Parameters:
//   - cfg: Logging configuration
//   - version: Application version for the default field
//
// Returns:
//   - *Logger: Configured logger ready for use
func New(cfg Config, version string) *Logger {
	var output io.Writer
	switch strings.ToLower(cfg.Output) {
	case "stderr":
		output = os.Stderr
	default:
		output = os.Stdout
	}

	opts := &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "text":
		handler = slog.NewTextHandler(output, opts)
	default:
		handler = slog.NewJSONHandler(output, opts)
	}

	handler = handler.WithAttrs([]slog.Attr{
		slog.String("service", "configcore"),
		slog.String("version", version),
	})

	return &Logger{Logger: slog.New(handler)}
}

// parseLevel converts a string log level to slog.Level. Unrecognised levels
// default to info.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// With returns a new Logger carrying additional default attributes.
//
// Example:
//
//	storeLogger := logger.With("component", "configstore")
//	storeLogger.Info("ready") // Includes component=configstore
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// Default creates a logger for use before configuration is resolved:
// JSON to stdout at info level.
func Default() *Logger {
	return New(Config{Level: "info", Format: "json", Output: "stdout"}, "dev")
}
