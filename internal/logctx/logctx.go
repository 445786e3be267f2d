// Package logctx provides context-based logger injection and extraction.
//
// Generators never reach for the global logger directly; they take the
// logger from their context, which lets the CLI attach per-run fields such
// as run_id and root once and have them appear on every line.
//
// Usage:
//
//	ctx, runID := logctx.WithRunID(ctx)
//	ctx = logctx.WithStr(ctx, "root", cfg.Root)
//	logger := logctx.FromContext(ctx)
package logctx

import (
	"context"

	"github.com/eunmann/fsfixture/pkg/logging"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// loggerKey is the private key type for storing loggers in context.
type loggerKey struct{}

// DefaultLogger returns the process logger configured by logging.Init. It is
// used when no context logger is available.
func DefaultLogger() zerolog.Logger {
	return *logging.L()
}

// WithLogger returns a new context with the given logger attached.
// The logger can be retrieved using FromContext.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext extracts the logger from the context. If the context is nil
// or does not contain a logger, returns the default logger.
//
// This function never returns a zero-value logger or panics.
func FromContext(ctx context.Context) zerolog.Logger {
	if ctx == nil {
		return DefaultLogger()
	}
	if logger, ok := ctx.Value(loggerKey{}).(zerolog.Logger); ok {
		return logger
	}
	return DefaultLogger()
}

// WithStr returns a new context with a logger that has the specified string field added.
func WithStr(ctx context.Context, key, value string) context.Context {
	logger := FromContext(ctx).With().Str(key, value).Logger()
	return WithLogger(ctx, logger)
}

// WithRunID assigns a fresh run id to the context and its logger.
func WithRunID(ctx context.Context) (context.Context, string) {
	id := uuid.NewString()
	return WithStr(ctx, "run_id", id), id
}
