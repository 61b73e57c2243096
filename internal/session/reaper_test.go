package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"clipkeep/internal/logging"
	"clipkeep/internal/session"
	"clipkeep/internal/storage"
	"clipkeep/internal/testsupport"
)

func seedSession(t *testing.T, tier *testsupport.FakeTier, id string, lastSaved time.Time) {
	t.Helper()
	ctx := context.Background()
	row := storage.SessionRow{ID: id, CreatedAt: lastSaved, LastSavedAt: lastSaved}
	if err := tier.PutSession(ctx, row); err != nil {
		t.Fatalf("seed session: %v", err)
	}
	rec := storage.Record{Key: "media-" + id, SessionID: id, SavedAt: lastSaved, Payload: []byte(`{}`)}
	if err := tier.Put(ctx, storage.MediaStore, rec); err != nil {
		t.Fatalf("seed record: %v", err)
	}
}

func TestReapRemovesExpiredSessionsOnly(t *testing.T) {
	tier := testsupport.NewFakeTier()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	stale := uuid.NewString()
	fresh := uuid.NewString()
	seedSession(t, tier, stale, now.Add(-80*time.Hour))
	seedSession(t, tier, fresh, now.Add(-1*time.Hour))

	reaper := session.NewReaper(tier, 72*time.Hour, logging.NewNop(), func() time.Time { return now })
	reaper.Reap(context.Background())

	if tier.CountSessions() != 1 {
		t.Fatalf("expected only the fresh session to survive, got %d rows", tier.CountSessions())
	}
	if tier.CountRecords(storage.MediaStore) != 1 {
		t.Fatalf("expected stale session records removed, got %d", tier.CountRecords(storage.MediaStore))
	}
	if _, found, _ := tier.Get(context.Background(), storage.MediaStore, "media-"+fresh); !found {
		t.Fatal("fresh session's record must be untouched")
	}
}

func TestReapRemovesSessionsAtExactTTLBoundaryOnlyWhenOlder(t *testing.T) {
	tier := testsupport.NewFakeTier()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	// Exactly at the cutoff is not strictly before it and survives.
	boundary := uuid.NewString()
	seedSession(t, tier, boundary, now.Add(-72*time.Hour))

	reaper := session.NewReaper(tier, 72*time.Hour, logging.NewNop(), func() time.Time { return now })
	reaper.Reap(context.Background())

	if tier.CountSessions() != 1 {
		t.Fatal("session exactly at the TTL boundary must survive")
	}
}

func TestReapRemovesMalformedSessionIDs(t *testing.T) {
	tier := testsupport.NewFakeTier()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	// Fresh timestamp, but the id is not one this process could have minted.
	seedSession(t, tier, "legacy-session-7", now.Add(-1*time.Minute))

	reaper := session.NewReaper(tier, 72*time.Hour, logging.NewNop(), func() time.Time { return now })
	reaper.Reap(context.Background())

	if tier.CountSessions() != 0 {
		t.Fatal("expected malformed session id reaped regardless of age")
	}
	if tier.CountRecords(storage.MediaStore) != 0 {
		t.Fatal("expected malformed session's records reaped")
	}
}

func TestReapRemovesOrphanedRecords(t *testing.T) {
	tier := testsupport.NewFakeTier()
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	live := uuid.NewString()
	seedSession(t, tier, live, now.Add(-1*time.Hour))

	orphan := storage.Record{Key: "t-orphan", SessionID: uuid.NewString(), SavedAt: now, Payload: []byte(`{}`)}
	if err := tier.Put(ctx, storage.TranscriptStore, orphan); err != nil {
		t.Fatalf("seed orphan: %v", err)
	}

	reaper := session.NewReaper(tier, 72*time.Hour, logging.NewNop(), func() time.Time { return now })
	reaper.Reap(ctx)

	if tier.CountRecords(storage.TranscriptStore) != 0 {
		t.Fatal("expected orphaned transcript removed")
	}
	if tier.CountRecords(storage.MediaStore) != 1 {
		t.Fatal("expected the live session's media kept")
	}
}

func TestReapToleratesScanFailure(t *testing.T) {
	tier := testsupport.NewFakeTier()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	seedSession(t, tier, uuid.NewString(), now.Add(-200*time.Hour))

	tier.FailReads = true
	reaper := session.NewReaper(tier, 72*time.Hour, logging.NewNop(), func() time.Time { return now })
	reaper.Reap(context.Background())

	tier.FailReads = false
	if tier.CountSessions() != 1 {
		t.Fatal("a failed scan must not delete anything")
	}
}
