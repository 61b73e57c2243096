package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"clipkeep/internal/logging"
	"clipkeep/internal/records"
	"clipkeep/internal/storage"
	"clipkeep/internal/tiering"
)

// VolatileMediaKey is the well-known scratch key for the current session's
// metadata-only media record. The volatile tier has no enumeration, so the
// single media of the owning session lives under a fixed key.
const VolatileMediaKey = "media_meta"

// MediaStore is the media repository with tier routing: media at or below
// the size threshold is written fully to the durable tier, larger media is
// written metadata-only to the volatile tier. Restoring a metadata-only
// record yields a Media with no byte payload.
type MediaStore struct {
	inner   *Store[records.Media]
	policy  tiering.Policy
	scratch storage.VolatileTier
	logger  *slog.Logger
}

// NewMedia constructs the media repository.
func NewMedia(tier storage.DurableTier, scratch storage.VolatileTier, policy tiering.Policy, touch Toucher, logger *slog.Logger) *MediaStore {
	return &MediaStore{
		inner:   New[records.Media](tier, records.MediaCodec{}, touch, logger),
		policy:  policy,
		scratch: scratch,
		logger:  logging.NewComponentLogger(logger, "store.media"),
	}
}

// WithClock overrides the save-timestamp clock. Intended for tests.
func (s *MediaStore) WithClock(now func() time.Time) *MediaStore {
	s.inner.WithClock(now)
	return s
}

// Save routes the media to its tier. The returned entity reflects what was
// persisted: metadata-only media comes back without its payload so callers
// observe the same shape a later restore would.
func (s *MediaStore) Save(ctx context.Context, media records.Media) records.Media {
	if s.policy.Choose(media.SizeBytes) == tiering.TierFull {
		saved := s.inner.Save(ctx, media)
		s.dropVolatile(saved.ID)
		return saved
	}

	stripped := media
	stripped.Data = nil
	stripped = stripped.WithSavedAt(s.inner.now().UTC())

	s.inner.cachePut(stripped)
	if s.inner.touch != nil {
		s.inner.touch.Touch(ctx, stripped.SessionID)
	}
	// A prior full-tier save of this media would otherwise linger as a
	// stale durable row.
	if err := s.inner.tier.Delete(ctx, storage.MediaStore, stripped.ID); err != nil {
		s.logger.Warn("remove superseded durable media failed",
			logging.String(logging.FieldEntityID, stripped.ID),
			logging.Error(err))
	}

	rec, err := records.MediaCodec{}.Encode(stripped)
	if err != nil {
		s.logger.Warn("encode metadata-only media failed, keeping in-memory copy",
			logging.String(logging.FieldEntityID, stripped.ID),
			logging.Error(err))
		return stripped
	}
	value, err := json.Marshal(rec)
	if err != nil {
		s.logger.Warn("marshal metadata-only media failed, keeping in-memory copy",
			logging.String(logging.FieldEntityID, stripped.ID),
			logging.Error(err))
		return stripped
	}
	if err := s.scratch.Put(VolatileMediaKey, value); err != nil {
		s.logger.Warn("volatile write failed, keeping in-memory copy",
			logging.String(logging.FieldEntityID, stripped.ID),
			logging.Error(err))
	}
	return stripped
}

// FindByID checks the durable-backed store first, then the volatile record.
func (s *MediaStore) FindByID(ctx context.Context, id string) (records.Media, bool) {
	if media, found := s.inner.FindByID(ctx, id); found {
		return media, true
	}
	if media, found := s.volatileMedia(); found && media.ID == id {
		s.inner.cachePut(media)
		return media, true
	}
	return records.Media{}, false
}

// FindBySession returns the session's media from either tier.
func (s *MediaStore) FindBySession(ctx context.Context, sessionID string) []records.Media {
	all := s.FindAll(ctx)
	var matches []records.Media
	for _, media := range all {
		if media.SessionID == sessionID {
			matches = append(matches, media)
		}
	}
	return matches
}

// FindAll merges the durable scan with the volatile metadata-only record.
// The durable scan runs first so injecting the volatile record never
// suppresses it, and the volatile record only wins over an already-known
// copy of the same media when it is fresher.
func (s *MediaStore) FindAll(ctx context.Context) []records.Media {
	s.inner.ensurePopulated(ctx)
	if media, found := s.volatileMedia(); found {
		if known, ok := s.inner.cached(media.ID); !ok || known.SavedAt.Before(media.SavedAt) {
			s.inner.cachePut(media)
		}
	}
	return s.inner.FindAll(ctx)
}

// Reset clears the in-memory map.
func (s *MediaStore) Reset() {
	s.inner.Reset()
}

// dropVolatile removes the volatile record when it describes the given
// media, which a full-tier save has just superseded.
func (s *MediaStore) dropVolatile(id string) {
	media, found := s.volatileMedia()
	if !found || media.ID != id {
		return
	}
	if err := s.scratch.Remove(VolatileMediaKey); err != nil {
		s.logger.Warn("remove superseded volatile media failed",
			logging.String(logging.FieldEntityID, id),
			logging.Error(err))
	}
}

func (s *MediaStore) volatileMedia() (records.Media, bool) {
	value, found, err := s.scratch.Get(VolatileMediaKey)
	if err != nil {
		s.logger.Warn("volatile read failed", logging.Error(err))
		return records.Media{}, false
	}
	if !found {
		return records.Media{}, false
	}
	var rec storage.Record
	if err := json.Unmarshal(value, &rec); err != nil {
		s.logger.Warn("skipping undecodable volatile media record", logging.Error(err))
		return records.Media{}, false
	}
	media, err := (records.MediaCodec{}).Decode(rec)
	if err != nil {
		s.logger.Warn("skipping undecodable volatile media record", logging.Error(err))
		return records.Media{}, false
	}
	return media, true
}
