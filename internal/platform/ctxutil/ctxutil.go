// Package ctxutil provides helpers for interacting with values stored in [context.Context].
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/taibuivan/filmsync/internal/platform/ctxkey"
)

// # Run Tracing

// WithRunID returns a new context with the provided orchestrator run number attached.
func WithRunID(ctx context.Context, runID int) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRunID, runID)
}

// GetRunID retrieves the run number from the context.
// Returns 0 if not found.
func GetRunID(ctx context.Context) int {
	id, _ := ctx.Value(ctxkey.KeyRunID).(int)
	return id
}

// # Structured Logging

// WithLogger returns a new context with the provided logger attached.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// GetLogger retrieves the logger from the context.
// If no logger is found, it returns the global default logger.
func GetLogger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(ctxkey.KeyLogger).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return logger
}
