package session

import (
	"context"
	"fmt"
	"log/slog"

	"clipkeep/internal/logging"
	"clipkeep/internal/records"
	"clipkeep/internal/store"
)

// State is the reassembled application state for one session.
type State struct {
	Media      records.Media
	Transcript records.Transcript
	Highlights records.HighlightSet

	// NeedsResupply is set when the media was persisted metadata-only;
	// the caller must ask for the file again before playback.
	NeedsResupply bool
}

// Materialize turns the restored media bytes into a playable handle.
// Metadata-only media has no bytes to materialize; the caller must obtain
// the file again first.
func (s *State) Materialize(m records.Materializer) (records.Handle, error) {
	if s.NeedsResupply {
		return nil, fmt.Errorf("media %s was persisted metadata-only and must be supplied again", s.Media.ID)
	}
	return m.Materialize(s.Media.Data)
}

// RestoreService reassembles full application state from the entity stores.
type RestoreService struct {
	media       *store.MediaStore
	transcripts *store.Store[records.Transcript]
	highlights  *store.Store[records.HighlightSet]
	logger      *slog.Logger
}

// NewRestoreService constructs the restore orchestrator.
func NewRestoreService(
	media *store.MediaStore,
	transcripts *store.Store[records.Transcript],
	highlights *store.Store[records.HighlightSet],
	logger *slog.Logger,
) *RestoreService {
	return &RestoreService{
		media:       media,
		transcripts: transcripts,
		highlights:  highlights,
		logger:      logging.NewComponentLogger(logger, "restore"),
	}
}

// Restore returns the prior session's state, or nil when no prior session
// exists (which is not an error). Media with missing sibling entities is a
// torn write and fails with ErrIncompleteSessionData.
func (s *RestoreService) Restore(ctx context.Context) (*State, error) {
	mediaList := s.media.FindAll(ctx)
	if len(mediaList) == 0 {
		return nil, nil
	}

	// Single-session assumption: with several media at rest, the most
	// recently saved one is the session to resume.
	media := mediaList[len(mediaList)-1]

	transcript, found := pickForSession(s.transcripts.FindByRelated(ctx, media.ID), media.SessionID)
	if !found {
		return nil, fmt.Errorf("%w: media %s has no transcript", ErrIncompleteSessionData, media.ID)
	}
	highlights, found := pickForSession(s.highlights.FindByRelated(ctx, media.ID), media.SessionID)
	if !found {
		return nil, fmt.Errorf("%w: media %s has no highlight set", ErrIncompleteSessionData, media.ID)
	}

	highlights.SentenceIDs = s.validateSelection(transcript, highlights)

	return &State{
		Media:         media,
		Transcript:    transcript,
		Highlights:    highlights,
		NeedsResupply: !media.HasPayload(),
	}, nil
}

// validateSelection is the restore-time consistency pass: highlight ids
// must reference sentences that exist in the same session's transcript.
// Unknown ids are dropped and logged; enforcing this at write time would
// need a cross-store join on every save.
func (s *RestoreService) validateSelection(transcript records.Transcript, highlights records.HighlightSet) []string {
	known := transcript.SentenceIDs()
	valid := make([]string, 0, len(highlights.SentenceIDs))
	for _, id := range highlights.SentenceIDs {
		if _, ok := known[id]; !ok {
			s.logger.Warn("dropping highlight for unknown sentence",
				logging.String(logging.FieldSessionID, highlights.SessionID),
				logging.String("sentence_id", id))
			continue
		}
		valid = append(valid, id)
	}
	return valid
}

// pickForSession returns the most recently saved entity belonging to the
// session. The store returns entities in saved-at order, so the last match
// wins.
func pickForSession[T records.Entity[T]](entities []T, sessionID string) (T, bool) {
	var picked T
	found := false
	for _, entity := range entities {
		if entity.SessionKey() == sessionID {
			picked = entity
			found = true
		}
	}
	return picked, found
}
