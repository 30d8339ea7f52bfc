package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog.Logger for structured logging
type Logger struct {
	*slog.Logger
}

// New creates a new logger instance with the specified log level
func New(level string) *Logger {
	return NewWithWriter(level, os.Stdout)
}

// NewWithWriter creates a logger writing JSON lines to w
func NewWithWriter(level string, w io.Writer) *Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(level),
	}

	handler := slog.NewJSONHandler(w, opts)
	return &Logger{Logger: slog.New(handler)}
}

// Nop returns a logger that discards everything, used by tests
func Nop() *Logger {
	return NewWithWriter("ERROR", io.Discard)
}

// ParseLevel maps DEBUG/INFO/WARN/ERROR to a slog level, INFO by default
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithExternalID returns a logger with payment external ID context
func (l *Logger) WithExternalID(externalID string) *Logger {
	return &Logger{
		Logger: l.With("external_id", externalID),
	}
}

// WithChat returns a logger with chat JID context
func (l *Logger) WithChat(chat string) *Logger {
	return &Logger{
		Logger: l.With("chat", chat),
	}
}

// WithError returns a logger with error context
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		Logger: l.With("error", err),
	}
}
