package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"clipkeep/internal/config"
)

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.SessionTTL() <= 0 {
		t.Fatal("expected positive session TTL")
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
data_dir = "` + filepath.Join(dir, "data") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[retention]
session_ttl_hours = 12

[tiering]
media_full_payload_max_bytes = 1024

[logging]
level = "debug"
format = "json"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Retention.SessionTTLHours != 12 {
		t.Fatalf("expected TTL 12h, got %d", cfg.Retention.SessionTTLHours)
	}
	if cfg.Tiering.MediaFullPayloadMaxBytes != 1024 {
		t.Fatalf("expected threshold 1024, got %d", cfg.Tiering.MediaFullPayloadMaxBytes)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected json format, got %q", cfg.Logging.Format)
	}
	if cfg.DatabasePath() != filepath.Join(dir, "data", "clipkeep.db") {
		t.Fatalf("unexpected database path %q", cfg.DatabasePath())
	}
}

func TestLoadMissingExplicitPathFails(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("expected error for missing explicit config path")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"zero ttl", func(c *config.Config) { c.Retention.SessionTTLHours = 0 }},
		{"zero threshold", func(c *config.Config) { c.Tiering.MediaFullPayloadMaxBytes = 0 }},
		{"bad format", func(c *config.Config) { c.Logging.Format = "yaml" }},
		{"bad level", func(c *config.Config) { c.Logging.Level = "trace" }},
		{"no data dir", func(c *config.Config) { c.Paths.DataDir = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
