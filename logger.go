package spagbol

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with spagbol-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithColumn adds a column field to the logger.
func (l *Logger) WithColumn(column Column) *Logger {
	return &Logger{
		Logger: l.Logger.With("column", string(column)),
	}
}

// WithDir adds a data directory field to the logger.
func (l *Logger) WithDir(dir string) *Logger {
	return &Logger{
		Logger: l.Logger.With("dir", dir),
	}
}

// LogIngest logs an ingest call.
func (l *Logger) LogIngest(ctx context.Context, rows int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "ingest failed",
			"rows", rows,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "ingest completed",
			"rows", rows,
		)
	}
}

// LogProjection logs a column projection.
func (l *Logger) LogProjection(ctx context.Context, column Column, method Method, rows int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "projection failed",
			"column", string(column),
			"method", string(method),
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "projection completed",
			"column", string(column),
			"method", string(method),
			"rows", rows,
		)
	}
}

// LogSimilar logs a similarity search.
func (l *Logger) LogSimilar(ctx context.Context, column Column, id string, k, found int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "similarity search failed",
			"column", string(column),
			"id", id,
			"k", k,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "similarity search completed",
			"column", string(column),
			"id", id,
			"k", k,
			"results", found,
		)
	}
}
