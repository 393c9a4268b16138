package genbitmap

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with bitmap-specific helpers.
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
	handler := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithName adds a name field, e.g. the snapshot or blob name.
func (l *Logger) WithName(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("name", name),
	}
}

// WithBits adds a bit count field.
func (l *Logger) WithBits(bits uint64) *Logger {
	return &Logger{
		Logger: l.Logger.With("bits", bits),
	}
}

// LogCreate logs a successful construction.
func (l *Logger) LogCreate(kind string, bits uint64, bytes, partitions int) {
	l.DebugContext(context.Background(), "bitmap created",
		"kind", kind,
		"bits", bits,
		"bytes", bytes,
		"partitions", partitions,
	)
}

// LogConstructError logs a rejected construction.
func (l *Logger) LogConstructError(kind string, bits uint64, err error) {
	l.WarnContext(context.Background(), "bitmap construction failed",
		"kind", kind,
		"bits", bits,
		"error", err,
	)
}

// LogClose logs the release of a bitmap buffer.
func (l *Logger) LogClose(bits uint64, err error) {
	if err != nil {
		l.ErrorContext(context.Background(), "bitmap release failed",
			"bits", bits,
			"error", err,
		)
	} else {
		l.DebugContext(context.Background(), "bitmap closed",
			"bits", bits,
		)
	}
}

// LogSave logs a snapshot write.
func (l *Logger) LogSave(ctx context.Context, name string, codec string, bytes int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot save failed",
			"name", name,
			"codec", codec,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot saved",
			"name", name,
			"codec", codec,
			"bytes", bytes,
		)
	}
}

// LogLoad logs a snapshot read.
func (l *Logger) LogLoad(ctx context.Context, name string, bits uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot load failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot loaded",
			"name", name,
			"bits", bits,
		)
	}
}
