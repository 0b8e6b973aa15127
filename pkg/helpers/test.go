package helpers

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/GregMSThompson/stocks-snapshot/pkg/logger"
)

// TestCtx returns a context carrying a test logger.
func TestCtx() context.Context {
	log := slog.New(logger.NewTestHandler(slog.LevelInfo))
	return logger.ToContext(context.Background(), log)
}

// TestLogger returns a logger that discards output.
func TestLogger() *slog.Logger {
	return slog.New(logger.NewTestHandler(slog.LevelDebug))
}

// Eventually polls cond until it holds or the timeout elapses.
func Eventually(t testing.TB, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s: %s", timeout, msg)
}
