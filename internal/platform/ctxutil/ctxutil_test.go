package ctxutil_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/filmsync/internal/platform/ctxutil"
)

/*
TestContext_RunID verifies that run numbers can be injected and retrieved.
*/
func TestContext_RunID(t *testing.T) {
	ctx := context.Background()

	// 1. Initially should be zero
	assert.Zero(t, ctxutil.GetRunID(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithRunID(ctx, 7)
	assert.Equal(t, 7, ctxutil.GetRunID(ctx))
}

/*
TestContext_Logger verifies that a custom logger can be stored in context.
*/
func TestContext_Logger(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// 1. Initially should return the default logger
	assert.Equal(t, slog.Default(), ctxutil.GetLogger(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithLogger(ctx, logger)
	assert.Equal(t, logger, ctxutil.GetLogger(ctx))
}
