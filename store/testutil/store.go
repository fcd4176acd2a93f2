package testutil

import (
	"testing"

	"github.com/kbukum/flowcheck/logger"
	"github.com/kbukum/flowcheck/store"
)

// MustOpen opens an in-memory store with the tracker schema migrated and
// fails the test on error. The store is closed when the test finishes.
func MustOpen(t *testing.T) *store.Store {
	t.Helper()

	cfg := store.Config{
		Path:        ":memory:",
		AutoMigrate: true,
		LogLevel:    "silent",
	}

	s, err := store.Open(cfg, logger.Nop())
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}
