// Package ctxlog carries a slog.Logger through context.Context.
package ctxlog

import (
	"context"
	"io"
	"log/slog"
)

// key is an unexported type to prevent collisions with context keys from other packages.
type key struct{}

var loggerKey = key{}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// WithLogger returns a new context with the provided logger embedded.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if logger == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the logger from ctx. Library code never logs unless
// the caller attached a logger, so the fallback discards everything.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok && logger != nil {
			return logger
		}
	}
	return discard
}

// Ensure attaches logger unless ctx already carries one.
func Ensure(ctx context.Context, logger *slog.Logger) context.Context {
	if logger == nil {
		return ctx
	}
	if _, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return ctx
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return discard
}
