package store

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"clipkeep/internal/logging"
	"clipkeep/internal/records"
	"clipkeep/internal/storage"
)

// Toucher is notified after every successful entity write so the session
// registry can bump its last-saved timestamp. Implemented by
// session.Registry.
type Toucher interface {
	Touch(ctx context.Context, sessionID string)
}

// Store is a write-through repository for one entity kind. The in-memory
// map is the operational source of truth for the remainder of the process
// lifetime; durable writes are best-effort and their failures are logged,
// never propagated.
type Store[T records.Entity[T]] struct {
	tier  storage.DurableTier
	codec records.Codec[T]
	touch Toucher
	now   func() time.Time

	logger *slog.Logger

	mu        sync.RWMutex
	cache     map[string]T
	populated bool
}

// New constructs a store for one entity kind. touch may be nil.
func New[T records.Entity[T]](tier storage.DurableTier, codec records.Codec[T], touch Toucher, logger *slog.Logger) *Store[T] {
	return &Store[T]{
		tier:   tier,
		codec:  codec,
		touch:  touch,
		now:    time.Now,
		logger: logging.NewComponentLogger(logger, "store."+string(codec.Store())),
		cache:  make(map[string]T),
	}
}

// WithClock overrides the save-timestamp clock. Intended for tests.
func (s *Store[T]) WithClock(now func() time.Time) *Store[T] {
	s.now = now
	return s
}

// Save stamps the entity's save time, writes it to the in-memory map, and
// then attempts the durable write. The returned entity carries the stamped
// timestamp. Durable failures degrade durability, not correctness.
func (s *Store[T]) Save(ctx context.Context, entity T) T {
	entity = entity.WithSavedAt(s.now().UTC())

	s.mu.Lock()
	s.cache[entity.EntityKey()] = entity
	s.mu.Unlock()

	if s.touch != nil {
		s.touch.Touch(ctx, entity.SessionKey())
	}

	rec, err := s.codec.Encode(entity)
	if err != nil {
		s.logger.Warn("encode for durable write failed, keeping in-memory copy",
			logging.String(logging.FieldEntityID, entity.EntityKey()),
			logging.Error(err))
		return entity
	}
	if err := s.tier.Put(ctx, s.codec.Store(), rec); err != nil {
		s.logger.Warn("durable write failed, keeping in-memory copy",
			logging.String(logging.FieldEntityID, entity.EntityKey()),
			logging.String(logging.FieldSessionID, entity.SessionKey()),
			logging.Error(err))
	}
	return entity
}

// FindByID returns the entity with the given id, checking the in-memory map
// before falling back to the durable tier. A decode failure is treated as
// not found.
func (s *Store[T]) FindByID(ctx context.Context, id string) (T, bool) {
	s.mu.RLock()
	entity, found := s.cache[id]
	s.mu.RUnlock()
	if found {
		return entity, true
	}

	var zero T
	rec, found, err := s.tier.Get(ctx, s.codec.Store(), id)
	if err != nil {
		s.logger.Warn("durable read failed",
			logging.String(logging.FieldEntityID, id),
			logging.Error(err))
		return zero, false
	}
	if !found {
		return zero, false
	}
	entity, err = s.codec.Decode(rec)
	if err != nil {
		s.logger.Warn("skipping undecodable record",
			logging.String(logging.FieldEntityID, id),
			logging.Error(err))
		return zero, false
	}

	s.mu.Lock()
	s.cache[entity.EntityKey()] = entity
	s.mu.Unlock()
	return entity, true
}

// FindByRelated returns entities whose related id matches, scanning the
// in-memory map first and populating it from the durable tier on a miss.
func (s *Store[T]) FindByRelated(ctx context.Context, relatedID string) []T {
	matches := s.scanCache(func(entity T) bool { return entity.RelatedKey() == relatedID })
	if len(matches) > 0 {
		return matches
	}
	s.ensurePopulated(ctx)
	return s.scanCache(func(entity T) bool { return entity.RelatedKey() == relatedID })
}

// FindBySession returns entities belonging to the given session.
func (s *Store[T]) FindBySession(ctx context.Context, sessionID string) []T {
	matches := s.scanCache(func(entity T) bool { return entity.SessionKey() == sessionID })
	if len(matches) > 0 {
		return matches
	}
	s.ensurePopulated(ctx)
	return s.scanCache(func(entity T) bool { return entity.SessionKey() == sessionID })
}

// FindAll returns every entity of this kind. Once the in-memory map is
// populated it is authoritative and no further bulk scans occur.
func (s *Store[T]) FindAll(ctx context.Context) []T {
	s.mu.RLock()
	nonEmpty := s.populated || len(s.cache) > 0
	s.mu.RUnlock()

	if !nonEmpty {
		s.ensurePopulated(ctx)
	}
	return s.scanCache(func(T) bool { return true })
}

// Reset clears the in-memory map. Used by cleanup; in-memory state must
// never outlive its storage counterpart being gone.
func (s *Store[T]) Reset() {
	s.mu.Lock()
	s.cache = make(map[string]T)
	s.populated = false
	s.mu.Unlock()
}

// cachePut writes an entity to the in-memory map without a durable write.
// Used by MediaStore for metadata-only records that live in the volatile
// tier.
func (s *Store[T]) cachePut(entity T) {
	s.mu.Lock()
	s.cache[entity.EntityKey()] = entity
	s.mu.Unlock()
}

// cached reads an entity from the in-memory map without a durable fallback.
func (s *Store[T]) cached(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entity, found := s.cache[id]
	return entity, found
}

func (s *Store[T]) ensurePopulated(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.populated {
		return
	}

	recs, err := s.tier.GetAll(ctx, s.codec.Store())
	if err != nil {
		s.logger.Warn("bulk durable scan failed", logging.Error(err))
		return
	}
	for _, rec := range recs {
		entity, err := s.codec.Decode(rec)
		if err != nil {
			s.logger.Warn("skipping undecodable record",
				logging.String(logging.FieldEntityID, rec.Key),
				logging.Error(err))
			continue
		}
		if _, exists := s.cache[entity.EntityKey()]; exists {
			continue
		}
		s.cache[entity.EntityKey()] = entity
	}
	s.populated = true
}

func (s *Store[T]) scanCache(match func(T) bool) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []T
	for _, entity := range s.cache {
		if match(entity) {
			matches = append(matches, entity)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].SavedTime().Before(matches[j].SavedTime())
	})
	return matches
}
