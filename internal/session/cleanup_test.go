package session_test

import (
	"context"
	"errors"
	"testing"

	"clipkeep/internal/logging"
	"clipkeep/internal/session"
	"clipkeep/internal/storage"
	"clipkeep/internal/store"
	"clipkeep/internal/testsupport"
)

func TestCleanupRemovesEverySessionTrace(t *testing.T) {
	tr := newTiers()
	ctx := context.Background()

	media, transcripts, highlights := newStores(tr, 4)
	savedMedia := media.Save(ctx, testsupport.MediaFixture("session-1"))
	transcripts.Save(ctx, testsupport.TranscriptFixture("session-1", savedMedia.ID))
	highlights.Save(ctx, testsupport.HighlightFixture("session-1", savedMedia.ID))
	if tr.volatile.Len() != 1 {
		t.Fatal("fixture should have landed in the volatile tier")
	}

	svc := session.NewCleanupService(tr.durable, tr.volatile,
		[]session.Resetter{media, transcripts, highlights}, logging.NewNop())
	if err := svc.Execute(ctx, "session-1"); err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	for _, name := range storage.Stores() {
		if n := tr.durable.CountRecords(name); n != 0 {
			t.Fatalf("expected %s empty after cleanup, got %d records", name, n)
		}
	}
	if _, found, _ := tr.volatile.Get(store.VolatileMediaKey); found {
		t.Fatal("expected volatile media record removed")
	}
	if got := media.FindAll(ctx); len(got) != 0 {
		t.Fatalf("expected media cache cleared, got %d entries", len(got))
	}
	if got := transcripts.FindAll(ctx); len(got) != 0 {
		t.Fatalf("expected transcript cache cleared, got %d entries", len(got))
	}
}

func TestCleanupLeavesOtherSessionsAlone(t *testing.T) {
	tr := newTiers()
	ctx := context.Background()

	media, transcripts, highlights := newStores(tr, 1<<20)
	keepMedia := media.Save(ctx, testsupport.MediaFixture("session-keep"))
	transcripts.Save(ctx, testsupport.TranscriptFixture("session-keep", keepMedia.ID))
	goneMedia := media.Save(ctx, testsupport.MediaFixture("session-gone"))
	transcripts.Save(ctx, testsupport.TranscriptFixture("session-gone", goneMedia.ID))

	svc := session.NewCleanupService(tr.durable, tr.volatile,
		[]session.Resetter{media, transcripts, highlights}, logging.NewNop())
	if err := svc.Execute(ctx, "session-gone"); err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	if n := tr.durable.CountRecords(storage.MediaStore); n != 1 {
		t.Fatalf("expected the other session's media to survive, got %d records", n)
	}
	if _, found := media.FindByID(ctx, keepMedia.ID); !found {
		t.Fatal("surviving media must be readable after the cache reset")
	}
}

func TestCleanupIsAtomicOnCommitFailure(t *testing.T) {
	tr := newTiers()
	ctx := context.Background()

	media, transcripts, highlights := newStores(tr, 1<<20)
	savedMedia := media.Save(ctx, testsupport.MediaFixture("session-1"))
	transcripts.Save(ctx, testsupport.TranscriptFixture("session-1", savedMedia.ID))
	highlights.Save(ctx, testsupport.HighlightFixture("session-1", savedMedia.ID))

	tr.durable.FailCommit = true
	svc := session.NewCleanupService(tr.durable, tr.volatile,
		[]session.Resetter{media, transcripts, highlights}, logging.NewNop())
	err := svc.Execute(ctx, "session-1")
	if !errors.Is(err, session.ErrCleanupFailed) {
		t.Fatalf("expected ErrCleanupFailed, got %v", err)
	}

	// Nothing may be partially deleted: every record is still present.
	if tr.durable.CountRecords(storage.MediaStore) != 1 ||
		tr.durable.CountRecords(storage.TranscriptStore) != 1 ||
		tr.durable.CountRecords(storage.HighlightStore) != 1 {
		t.Fatal("commit failure must leave all records in place")
	}
}
