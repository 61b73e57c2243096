package testsupport

import (
	"testing"

	"clipkeep/internal/config"
	"clipkeep/internal/logging"
	"clipkeep/internal/storage"
)

// MustOpenSQLite opens the durable tier for tests and registers cleanup.
func MustOpenSQLite(t testing.TB, cfg *config.Config) *storage.SQLite {
	t.Helper()

	tier, err := storage.Open(cfg)
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	t.Cleanup(func() {
		tier.Close()
	})
	return tier
}

// NewScratch opens the volatile tier for tests.
func NewScratch(t testing.TB, cfg *config.Config) *storage.Scratch {
	t.Helper()

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return storage.NewScratch(cfg.ScratchPath(), logging.NewNop())
}
