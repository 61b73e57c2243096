package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"clipkeep/internal/logging"
	"clipkeep/internal/storage"
)

// Reaper removes sessions left at rest by prior unterminated runs once
// they exceed the retention TTL. It runs once per boot, before restore.
type Reaper struct {
	tier   storage.DurableTier
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// NewReaper constructs a reaper. now may be nil.
func NewReaper(tier storage.DurableTier, ttl time.Duration, logger *slog.Logger, now func() time.Time) *Reaper {
	if now == nil {
		now = time.Now
	}
	return &Reaper{
		tier:   tier,
		ttl:    ttl,
		now:    now,
		logger: logging.NewComponentLogger(logger, "reaper"),
	}
}

// Reap deletes expired and malformed sessions plus orphaned entity
// records. A failure for one session is logged and skipped; it must not
// block reaping of the others.
func (r *Reaper) Reap(ctx context.Context) {
	rows, err := r.tier.GetSessions(ctx)
	if err != nil {
		r.logger.Warn("session scan failed, skipping reap", logging.Error(err))
		return
	}

	cutoff := r.now().UTC().Add(-r.ttl)
	live := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		if r.shouldReap(row, cutoff) {
			r.reapSession(ctx, row.ID)
			continue
		}
		live[row.ID] = struct{}{}
	}

	r.reapOrphans(ctx, live)
}

func (r *Reaper) shouldReap(row storage.SessionRow, cutoff time.Time) bool {
	if row.LastSavedAt.Before(cutoff) {
		return true
	}
	// A row whose id is not a UUID was never written by this process's id
	// space and cannot be owned by any future run.
	if err := uuid.Validate(row.ID); err != nil {
		return true
	}
	return false
}

func (r *Reaper) reapSession(ctx context.Context, sessionID string) {
	txn, err := r.tier.Begin(ctx)
	if err != nil {
		r.logger.Warn("begin reap transaction failed",
			logging.String(logging.FieldSessionID, sessionID),
			logging.Error(err))
		return
	}
	for _, name := range storage.Stores() {
		if err := txn.DeleteSessionRecords(name, sessionID); err != nil {
			r.logger.Warn("reap deletion failed",
				logging.String(logging.FieldSessionID, sessionID),
				logging.Error(err))
			_ = txn.Rollback()
			return
		}
	}
	if err := txn.DeleteSessionRow(sessionID); err != nil {
		r.logger.Warn("reap registry deletion failed",
			logging.String(logging.FieldSessionID, sessionID),
			logging.Error(err))
		_ = txn.Rollback()
		return
	}
	if err := txn.Commit(); err != nil {
		r.logger.Warn("reap commit failed",
			logging.String(logging.FieldSessionID, sessionID),
			logging.Error(err))
		return
	}
	r.logger.Info("reaped stale session", logging.String(logging.FieldSessionID, sessionID))
}

// reapOrphans deletes entity records whose session id matches no registry
// row. Orphans appear when a registry write was lost; they can never be
// restored and only accumulate.
func (r *Reaper) reapOrphans(ctx context.Context, live map[string]struct{}) {
	for _, name := range storage.Stores() {
		recs, err := r.tier.GetAll(ctx, name)
		if err != nil {
			r.logger.Warn("orphan scan failed",
				logging.String(logging.FieldStore, string(name)),
				logging.Error(err))
			continue
		}
		for _, rec := range recs {
			if _, ok := live[rec.SessionID]; ok {
				continue
			}
			if err := r.tier.Delete(ctx, name, rec.Key); err != nil {
				r.logger.Warn("orphan deletion failed",
					logging.String(logging.FieldStore, string(name)),
					logging.String(logging.FieldEntityID, rec.Key),
					logging.Error(err))
				continue
			}
			r.logger.Info("reaped orphaned record",
				logging.String(logging.FieldStore, string(name)),
				logging.String(logging.FieldEntityID, rec.Key),
				logging.String(logging.FieldSessionID, rec.SessionID))
		}
	}
}
