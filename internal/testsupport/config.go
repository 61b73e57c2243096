package testsupport

import (
	"path/filepath"
	"testing"

	"clipkeep/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// WithPayloadThreshold overrides the media full-payload size threshold.
func WithPayloadThreshold(maxBytes int64) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Tiering.MediaFullPayloadMaxBytes = maxBytes
	}
}

// WithSessionTTLHours overrides the session retention window.
func WithSessionTTLHours(hours int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Retention.SessionTTLHours = hours
	}
}

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return &cfg
}
