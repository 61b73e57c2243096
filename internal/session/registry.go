package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"clipkeep/internal/logging"
	"clipkeep/internal/storage"
)

// Registry owns the current session identifier and its timestamps. It is
// the single source of truth for "whose data is this": exactly one
// Registry exists per process, and its Context value is handed to every
// component that writes.
type Registry struct {
	tier   storage.DurableTier
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	current Context
	created bool
}

// NewRegistry creates a registry with a fresh session id. now may be nil.
func NewRegistry(tier storage.DurableTier, logger *slog.Logger, now func() time.Time) *Registry {
	if now == nil {
		now = time.Now
	}
	r := &Registry{
		tier:   tier,
		logger: logging.NewComponentLogger(logger, "registry"),
		now:    now,
	}
	r.current = Context{SessionID: uuid.NewString(), StartedAt: now().UTC()}
	return r
}

// Current returns the session context for this process.
func (r *Registry) Current() Context {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Touch records an entity write for the session: the registry row is
// created on the first write and its last-saved timestamp bumped on every
// one. Touch sits on the save path, so failures are logged, not returned.
func (r *Registry) Touch(ctx context.Context, sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	row := storage.SessionRow{ID: sessionID, CreatedAt: now, LastSavedAt: now}
	if err := r.tier.PutSession(ctx, row); err != nil {
		r.logger.Warn("session registry write failed",
			logging.String(logging.FieldSessionID, sessionID),
			logging.Error(err))
		return
	}
	if sessionID == r.current.SessionID && !r.created {
		r.created = true
		r.logger.Debug("session registered",
			logging.String(logging.FieldSessionID, sessionID))
	}
}

// Sessions lists every persisted session row.
func (r *Registry) Sessions(ctx context.Context) ([]storage.SessionRow, error) {
	return r.tier.GetSessions(ctx)
}
