package common

import (
	"context"
	"io"
	"log/slog"
)

// Context keys for passing a logger through context.
type contextKey int

const (
	loggerKey contextKey = iota
)

// WithLogger attaches a logger to ctx, typically one already bound with
// per-session fields (installation id, pilot id) via slog.Logger.With.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// LoggerFromContext extracts the logger attached to ctx, or a discarding
// logger if none was attached.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return discardLogger
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
