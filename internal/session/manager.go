package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gofrs/flock"

	"clipkeep/internal/config"
	"clipkeep/internal/lifecycle"
	"clipkeep/internal/logging"
	"clipkeep/internal/records"
	"clipkeep/internal/storage"
	"clipkeep/internal/store"
	"clipkeep/internal/tiering"
)

// Manager wires the tiers, registry, stores, and services together and
// owns the boot sequence. It is the single entry point the layer above
// uses; one Manager exists per process and holds the instance lock.
type Manager struct {
	cfg    *config.Config
	logger *slog.Logger

	tier    *storage.SQLite
	scratch *storage.Scratch

	lockPath string
	lock     *flock.Flock

	registry *Registry
	monitor  *lifecycle.Monitor

	Media       *store.MediaStore
	Transcripts *store.Store[records.Transcript]
	Highlights  *store.Store[records.HighlightSet]

	restore *RestoreService
	cleanup *CleanupService
	reaper  *Reaper
}

// Open builds a manager from configuration and acquires the single-writer
// lock. The caller must Close it.
func Open(cfg *config.Config, logger *slog.Logger) (*Manager, error) {
	if cfg == nil {
		return nil, errors.New("manager requires config")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	tier, err := storage.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open durable tier: %w", err)
	}

	lock := flock.New(cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		_ = tier.Close()
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		_ = tier.Close()
		return nil, errors.New("another clipkeep instance already owns this store")
	}

	scratch := storage.NewScratch(cfg.ScratchPath(), logger)
	registry := NewRegistry(tier, logger, nil)
	current := registry.Current()

	media := store.NewMedia(tier, scratch, tiering.NewPolicy(cfg.Tiering.MediaFullPayloadMaxBytes), registry, logger)
	transcripts := store.New[records.Transcript](tier, records.TranscriptCodec{}, registry, logger)
	highlights := store.New[records.HighlightSet](tier, records.HighlightCodec{}, registry, logger)

	m := &Manager{
		cfg:         cfg,
		logger:      logging.NewComponentLogger(logger, "session"),
		tier:        tier,
		scratch:     scratch,
		lockPath:    cfg.LockPath(),
		lock:        lock,
		registry:    registry,
		monitor:     lifecycle.NewMonitor(scratch, current.SessionID, logger),
		Media:       media,
		Transcripts: transcripts,
		Highlights:  highlights,
	}
	m.restore = NewRestoreService(media, transcripts, highlights, logger)
	m.cleanup = NewCleanupService(tier, scratch, []Resetter{media, transcripts, highlights}, logger)
	m.reaper = NewReaper(tier, cfg.SessionTTL(), logger, nil)

	return m, nil
}

// Current returns the session context owned by this process.
func (m *Manager) Current() Context {
	return m.registry.Current()
}

// Registry exposes the session registry for read-only inspection.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// Tier exposes the durable tier for diagnostics.
func (m *Manager) Tier() *storage.SQLite {
	return m.tier
}

// Start runs the cold-start sequence: reap stale sessions, then either
// honor a pending termination directive (cleanup, restore skipped) or
// attempt restore. A nil state with a nil error means there is nothing to
// resume.
func (m *Manager) Start(ctx context.Context) (*State, error) {
	m.reaper.Reap(ctx)

	directiveSession, pending, err := m.monitor.PendingDirective()
	if err != nil {
		return nil, fmt.Errorf("check termination directive: %w", err)
	}
	if pending {
		m.logger.Info("previous run terminated, cleaning up",
			logging.String(logging.FieldSessionID, directiveSession))
		if err := m.cleanup.Execute(ctx, directiveSession); err != nil {
			// The flag stays put so the next boot retries.
			return nil, err
		}
		if err := m.monitor.ConsumeDirective(); err != nil {
			m.logger.Warn("consume termination directive failed", logging.Error(err))
		}
		return nil, nil
	}

	state, err := m.restore.Restore(ctx)
	if err != nil {
		return nil, err
	}
	if state == nil {
		m.logger.Info("no prior session to restore")
		return nil, nil
	}
	m.logger.Info("session restored",
		logging.String(logging.FieldSessionID, state.Media.SessionID),
		logging.Bool("needs_resupply", state.NeedsResupply))
	return state, nil
}

// Bind wires host lifecycle signals: unload and restart feed the monitor,
// and cold start runs the boot sequence, delivering its outcome to onStart.
// onStart may be nil.
func (m *Manager) Bind(host lifecycle.Signals, onStart func(*State, error)) {
	m.monitor.Bind(host)
	host.OnColdStart(func() {
		state, err := m.Start(context.Background())
		if onStart != nil {
			onStart(state, err)
		}
	})
}

// AboutToTerminate forwards the host's unload announcement.
func (m *Manager) AboutToTerminate() {
	m.monitor.AboutToTerminate()
}

// Restarted forwards in-place restart completion.
func (m *Manager) Restarted() {
	m.monitor.Restarted()
}

// Wipe removes one session's data outside the normal directive flow, for
// explicit operator use.
func (m *Manager) Wipe(ctx context.Context, sessionID string) error {
	return m.cleanup.Execute(ctx, sessionID)
}

// Reap runs the stale-session pass on demand.
func (m *Manager) Reap(ctx context.Context) {
	m.reaper.Reap(ctx)
}

// Restore runs the restore pass without the rest of the boot sequence.
func (m *Manager) Restore(ctx context.Context) (*State, error) {
	return m.restore.Restore(ctx)
}

// Close releases the instance lock and the durable tier.
func (m *Manager) Close() error {
	if m.lock != nil {
		if err := m.lock.Unlock(); err != nil {
			m.logger.Warn("release instance lock failed", logging.Error(err))
		}
	}
	if m.tier != nil {
		return m.tier.Close()
	}
	return nil
}
