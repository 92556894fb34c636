package geocell

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with geocell-specific context.
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
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithLabel adds a label field to the logger.
func (l *Logger) WithLabel(label Label) *Logger {
	return &Logger{Logger: l.Logger.With("label", label)}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{Logger: l.Logger.With("count", count)}
}

// WithPath adds a file path field to the logger.
func (l *Logger) WithPath(path string) *Logger {
	return &Logger{Logger: l.Logger.With("path", path)}
}

// LogBuild logs an index build.
func (l *Logger) LogBuild(ctx context.Context, regions, pairs, ranges int, d time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "build failed",
			"regions", regions,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "build completed",
		"regions", regions,
		"pairs", pairs,
		"ranges", ranges,
		"duration", d,
	)
}

// LogQuery logs a query.
func (l *Logger) LogQuery(ctx context.Context, targetCells, labels int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "query failed",
			"target_cells", targetCells,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "query completed",
		"target_cells", targetCells,
		"labels", labels,
	)
}

// LogSnapshot logs writing a snapshot.
func (l *Logger) LogSnapshot(ctx context.Context, path string, bytes int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot failed",
			"path", path,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "snapshot saved",
		"path", path,
		"bytes", bytes,
	)
}

// LogLoad logs loading a snapshot.
func (l *Logger) LogLoad(ctx context.Context, path string, pairs int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"path", path,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "snapshot loaded",
		"path", path,
		"pairs", pairs,
	)
}
