package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"clipkeep/internal/logging"
)

// Scratch is the volatile tier: a small JSON file holding run-scoped flag
// records and metadata-only media. It survives process death (the
// pending-termination flag must be readable on the next cold start) and is
// wiped by cleanup rather than expired by the host.
type Scratch struct {
	path   string
	logger *slog.Logger

	mu      sync.Mutex
	loaded  bool
	entries map[string]json.RawMessage
}

var _ VolatileTier = (*Scratch)(nil)

// NewScratch creates a volatile store backed by the file at path.
// The file is created lazily on first Put.
func NewScratch(path string, logger *slog.Logger) *Scratch {
	return &Scratch{
		path:    path,
		logger:  logging.NewComponentLogger(logger, "scratch"),
		entries: make(map[string]json.RawMessage),
	}
}

// Put stores a value under key and persists the file.
func (s *Scratch) Put(key string, value []byte) error {
	if key == "" {
		return errors.New("scratch key cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return err
	}
	s.entries[key] = json.RawMessage(value)
	if err := s.save(); err != nil {
		return fmt.Errorf("%w: persist scratch: %w", ErrUnavailable, err)
	}
	return nil
}

// Get returns the value stored under key if present.
func (s *Scratch) Get(key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return nil, false, err
	}
	value, found := s.entries[key]
	if !found {
		return nil, false, nil
	}
	return []byte(value), true, nil
}

// Remove deletes the value stored under key. Removing an absent key is a no-op.
func (s *Scratch) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return err
	}
	if _, found := s.entries[key]; !found {
		return nil
	}
	delete(s.entries, key)
	if err := s.save(); err != nil {
		return fmt.Errorf("%w: persist scratch: %w", ErrUnavailable, err)
	}
	return nil
}

func (s *Scratch) ensureLoaded() error {
	if s.loaded {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.loaded = true
			return nil
		}
		return fmt.Errorf("%w: read scratch file: %w", ErrUnavailable, err)
	}
	entries := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &entries); err != nil {
		// A corrupt scratch file starts empty rather than blocking startup.
		s.logger.Warn("scratch file unreadable, starting empty", logging.Error(err))
		s.loaded = true
		return nil
	}
	s.entries = entries
	s.loaded = true
	return nil
}

func (s *Scratch) save() error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode scratch entries: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create scratch directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write scratch file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace scratch file: %w", err)
	}
	return nil
}
