package splitmap

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with splitmap-specific context.
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
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithPartitions adds a partitions field to the logger.
func (l *Logger) WithPartitions(n int) *Logger {
	return &Logger{
		Logger: l.Logger.With("partitions", n),
	}
}

// WithPermutation adds the name of a key permutation to the logger.
func (l *Logger) WithPermutation(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("permutation", name),
	}
}

// LogEvaluate logs a circuit evaluation.
func (l *Logger) LogEvaluate(ctx context.Context, op string, inputs, keys int, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "evaluation failed",
			"op", op,
			"inputs", inputs,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "evaluation completed",
			"op", op,
			"inputs", inputs,
			"keys", keys,
			"elapsed", elapsed,
		)
	}
}

// LogReduce logs a parallel reduction.
func (l *Logger) LogReduce(ctx context.Context, keys int, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "reduction failed",
			"keys", keys,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "reduction completed",
			"keys", keys,
			"elapsed", elapsed,
		)
	}
}

// LogBuild logs the completion of a writer.
func (l *Logger) LogBuild(ctx context.Context, kind string, keys int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "build failed",
			"kind", kind,
			"keys", keys,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "build completed",
			"kind", kind,
			"keys", keys,
		)
	}
}
