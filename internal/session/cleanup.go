package session

import (
	"context"
	"fmt"
	"log/slog"

	"clipkeep/internal/logging"
	"clipkeep/internal/storage"
	"clipkeep/internal/store"
)

// Resetter clears an entity store's in-memory cache.
type Resetter interface {
	Reset()
}

// CleanupService deletes every entity belonging to one session, all or
// nothing. Atomicity comes from the durable tier's transaction, so this
// service never interleaves unrelated work between Begin and Commit.
type CleanupService struct {
	tier    storage.DurableTier
	scratch storage.VolatileTier
	stores  []Resetter
	logger  *slog.Logger
}

// NewCleanupService constructs the cleanup orchestrator. stores lists
// every entity store whose cache must be reset after a wipe.
func NewCleanupService(tier storage.DurableTier, scratch storage.VolatileTier, stores []Resetter, logger *slog.Logger) *CleanupService {
	return &CleanupService{
		tier:    tier,
		scratch: scratch,
		stores:  stores,
		logger:  logging.NewComponentLogger(logger, "cleanup"),
	}
}

// Execute removes all entity records and the registry row for the session.
// On commit failure nothing has been applied and ErrCleanupFailed is
// returned; the caller leaves the pending-termination flag intact so a
// later boot retries. After a successful commit the volatile keys are
// removed and every in-memory cache is cleared unconditionally — memory
// must never outlive its storage counterpart being gone.
func (s *CleanupService) Execute(ctx context.Context, sessionID string) error {
	txn, err := s.tier.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCleanupFailed, err)
	}

	for _, name := range storage.Stores() {
		if err := txn.DeleteSessionRecords(name, sessionID); err != nil {
			_ = txn.Rollback()
			return fmt.Errorf("%w: %w", ErrCleanupFailed, err)
		}
	}
	if err := txn.DeleteSessionRow(sessionID); err != nil {
		_ = txn.Rollback()
		return fmt.Errorf("%w: %w", ErrCleanupFailed, err)
	}
	if err := txn.Commit(); err != nil {
		return fmt.Errorf("%w: %w", ErrCleanupFailed, err)
	}

	// The volatile tier is non-primary: a failed removal is logged and the
	// cache reset below still happens.
	if err := s.scratch.Remove(store.VolatileMediaKey); err != nil {
		s.logger.Warn("remove volatile media record failed",
			logging.String(logging.FieldSessionID, sessionID),
			logging.Error(err))
	}
	for _, st := range s.stores {
		st.Reset()
	}

	s.logger.Info("session cleaned up", logging.String(logging.FieldSessionID, sessionID))
	return nil
}
