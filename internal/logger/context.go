package logger

import (
	"context"
	"log/slog"
)

// contextKey keeps the logger entry private to this package.
type contextKey struct{}

// WithContext stores a logger in the context. Request middleware uses this to
// carry a request-scoped logger down to handlers and repositories.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the logger stored in ctx, or the process default when
// none was injected. Callers never have to nil-check.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(contextKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}
