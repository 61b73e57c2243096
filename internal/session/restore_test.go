package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"clipkeep/internal/logging"
	"clipkeep/internal/records"
	"clipkeep/internal/session"
	"clipkeep/internal/store"
	"clipkeep/internal/storage"
	"clipkeep/internal/testsupport"
	"clipkeep/internal/tiering"
)

type tiers struct {
	durable  *testsupport.FakeTier
	volatile *testsupport.FakeScratch
}

func newTiers() tiers {
	return tiers{durable: testsupport.NewFakeTier(), volatile: testsupport.NewFakeScratch()}
}

// newStores builds a fresh set of entity stores over the tiers. Calling it
// twice simulates a restart: the second set starts with cold caches.
func newStores(tr tiers, threshold int64) (*store.MediaStore, *store.Store[records.Transcript], *store.Store[records.HighlightSet]) {
	media := store.NewMedia(tr.durable, tr.volatile, tiering.NewPolicy(threshold), nil, logging.NewNop())
	transcripts := store.New[records.Transcript](tr.durable, records.TranscriptCodec{}, nil, logging.NewNop())
	highlights := store.New[records.HighlightSet](tr.durable, records.HighlightCodec{}, nil, logging.NewNop())
	return media, transcripts, highlights
}

func newRestoreService(tr tiers, threshold int64) *session.RestoreService {
	media, transcripts, highlights := newStores(tr, threshold)
	return session.NewRestoreService(media, transcripts, highlights, logging.NewNop())
}

func TestRestoreReturnsNothingForEmptyStore(t *testing.T) {
	svc := newRestoreService(newTiers(), 1<<20)

	state, err := svc.Restore(context.Background())
	if err != nil {
		t.Fatalf("empty store must not be an error, got %v", err)
	}
	if state != nil {
		t.Fatalf("expected nil state for empty store, got %#v", state)
	}
}

func TestRestoreReassemblesFullState(t *testing.T) {
	tr := newTiers()
	ctx := context.Background()

	media, transcripts, highlights := newStores(tr, 1<<20)
	savedMedia := media.Save(ctx, testsupport.MediaFixture("session-1"))
	transcripts.Save(ctx, testsupport.TranscriptFixture("session-1", savedMedia.ID))
	highlights.Save(ctx, testsupport.HighlightFixture("session-1", savedMedia.ID))

	state, err := newRestoreService(tr, 1<<20).Restore(ctx)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if state == nil {
		t.Fatal("expected restored state")
	}
	if state.Media.ID != savedMedia.ID || !state.Media.HasPayload() {
		t.Fatalf("unexpected media: %#v", state.Media)
	}
	if state.Transcript.MediaID != savedMedia.ID {
		t.Fatalf("transcript not linked to media: %#v", state.Transcript)
	}
	if len(state.Highlights.SentenceIDs) != 1 || state.Highlights.SentenceIDs[0] != "sent-2" {
		t.Fatalf("unexpected highlights: %#v", state.Highlights.SentenceIDs)
	}
	if state.NeedsResupply {
		t.Fatal("full-payload media must not request resupply")
	}
}

func TestRestoreFlagsMetadataOnlyMediaForResupply(t *testing.T) {
	tr := newTiers()
	ctx := context.Background()

	// Threshold below the fixture payload forces the metadata-only tier.
	media, transcripts, highlights := newStores(tr, 4)
	savedMedia := media.Save(ctx, testsupport.MediaFixture("session-1"))
	transcripts.Save(ctx, testsupport.TranscriptFixture("session-1", savedMedia.ID))
	highlights.Save(ctx, testsupport.HighlightFixture("session-1", savedMedia.ID))

	state, err := newRestoreService(tr, 4).Restore(ctx)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if !state.NeedsResupply {
		t.Fatal("metadata-only media must request resupply")
	}
	if state.Media.HasPayload() {
		t.Fatal("restored metadata-only media must not carry a payload")
	}
	if state.Media.SizeBytes == 0 {
		t.Fatal("size metadata must survive the metadata-only round trip")
	}
}

func TestRestoreRejectsTornWrites(t *testing.T) {
	tr := newTiers()
	ctx := context.Background()

	// Media without its sibling entities models a crash mid-save.
	media, _, _ := newStores(tr, 1<<20)
	media.Save(ctx, testsupport.MediaFixture("session-1"))

	_, err := newRestoreService(tr, 1<<20).Restore(ctx)
	if !errors.Is(err, session.ErrIncompleteSessionData) {
		t.Fatalf("expected ErrIncompleteSessionData, got %v", err)
	}
}

func TestRestoreDropsHighlightsForUnknownSentences(t *testing.T) {
	tr := newTiers()
	ctx := context.Background()

	media, transcripts, highlights := newStores(tr, 1<<20)
	savedMedia := media.Save(ctx, testsupport.MediaFixture("session-1"))
	transcripts.Save(ctx, testsupport.TranscriptFixture("session-1", savedMedia.ID))
	set := testsupport.HighlightFixture("session-1", savedMedia.ID)
	set.SentenceIDs = append(set.SentenceIDs, "sent-404")
	highlights.Save(ctx, set)

	state, err := newRestoreService(tr, 1<<20).Restore(ctx)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if len(state.Highlights.SentenceIDs) != 1 || state.Highlights.SentenceIDs[0] != "sent-2" {
		t.Fatalf("expected unknown sentence dropped, got %#v", state.Highlights.SentenceIDs)
	}
}

func TestRestorePicksMostRecentMedia(t *testing.T) {
	tr := newTiers()
	ctx := context.Background()

	tick := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}

	media, transcripts, highlights := newStores(tr, 1<<20)
	media.WithClock(clock)
	first := media.Save(ctx, testsupport.MediaFixture("session-old"))
	transcripts.Save(ctx, testsupport.TranscriptFixture("session-old", first.ID))
	highlights.Save(ctx, testsupport.HighlightFixture("session-old", first.ID))

	second := media.Save(ctx, testsupport.MediaFixture("session-new"))
	transcripts.Save(ctx, testsupport.TranscriptFixture("session-new", second.ID))
	highlights.Save(ctx, testsupport.HighlightFixture("session-new", second.ID))

	state, err := newRestoreService(tr, 1<<20).Restore(ctx)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if state.Media.SessionID != "session-new" {
		t.Fatalf("expected the most recent session restored, got %q", state.Media.SessionID)
	}
}

type fakeHandle string

func (h fakeHandle) URI() string { return string(h) }

type fakeMaterializer struct{}

func (fakeMaterializer) Materialize(raw []byte) (records.Handle, error) {
	return fakeHandle("mem://" + string(raw[:4])), nil
}

func TestMaterializeRequiresPayload(t *testing.T) {
	full := &session.State{Media: testsupport.MediaFixture("session-1")}
	if _, err := full.Materialize(fakeMaterializer{}); err != nil {
		t.Fatalf("materialize with payload: %v", err)
	}

	stripped := &session.State{Media: testsupport.MediaFixture("session-1"), NeedsResupply: true}
	if _, err := stripped.Materialize(fakeMaterializer{}); err == nil {
		t.Fatal("expected materialize to fail for metadata-only media")
	}
}

// Guards against the volatile record for one session shadowing another's
// durable data after a tier switch between runs.
func TestRestoreAfterTierSwitchUsesVolatileRecord(t *testing.T) {
	tr := newTiers()
	ctx := context.Background()

	media, transcripts, highlights := newStores(tr, 4)
	savedMedia := media.Save(ctx, testsupport.MediaFixture("session-1"))
	transcripts.Save(ctx, testsupport.TranscriptFixture("session-1", savedMedia.ID))
	highlights.Save(ctx, testsupport.HighlightFixture("session-1", savedMedia.ID))

	if tr.durable.CountRecords(storage.MediaStore) != 0 {
		t.Fatal("expected media in the volatile tier only")
	}

	state, err := newRestoreService(tr, 4).Restore(ctx)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if state.Media.ID != savedMedia.ID {
		t.Fatalf("expected volatile media restored, got %#v", state.Media)
	}
}
