package nnsearch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/hupe1980/nnsearch/index"
)

// Logger wraps slog.Logger with consistent field names for search operations.
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
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithAlgorithm adds an algorithm field to the logger.
func (l *Logger) WithAlgorithm(a index.Algorithm) *Logger {
	return &Logger{
		Logger: l.Logger.With("algorithm", a.String()),
	}
}

// WithK adds a k (neighbor count) field to the logger.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("k", k),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogInsert logs an insertion of count elements.
func (l *Logger) LogInsert(ctx context.Context, count, size int, err error) {
	l = l.WithCount(count)
	if err != nil {
		l.ErrorContext(ctx, "insert failed", "error", err)
	} else {
		l.DebugContext(ctx, "insert completed", "size", size)
	}
}

// LogSearch logs a query.
func (l *Logger) LogSearch(ctx context.Context, kind QueryKind, k, resultsFound int, err error) {
	l = l.WithK(k)
	if err != nil {
		l.ErrorContext(ctx, "search failed",
			"query", string(kind),
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "search completed",
			"query", string(kind),
			"results", resultsFound,
		)
	}
}

// LogRemove logs a removal attempt.
func (l *Logger) LogRemove(ctx context.Context, removed bool, err error) {
	if err != nil {
		l.ErrorContext(ctx, "remove failed",
			"removed", removed,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "remove completed",
			"removed", removed,
		)
	}
}

// LogRebuild logs a full index rebuild. Use WithAlgorithm to tag the
// engine that was built.
func (l *Logger) LogRebuild(ctx context.Context, reason RebuildReason, size int, took time.Duration, err error) {
	if err != nil {
		l.WarnContext(ctx, "rebuild failed, previous index kept",
			"reason", string(reason),
			"size", size,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "rebuild completed",
			"reason", string(reason),
			"size", size,
			"duration", took,
		)
	}
}
