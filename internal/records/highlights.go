package records

import (
	"time"

	"github.com/google/uuid"
)

// HighlightSet is the ordered list of sentence ids the user selected for a
// session's media. Sentence ids are validated against the transcript at
// restore time, not at write time.
type HighlightSet struct {
	ID        string
	SessionID string
	SavedAt   time.Time

	MediaID     string
	SentenceIDs []string
}

// NewHighlightSet constructs a highlight selection for the given media.
func NewHighlightSet(sessionID, mediaID string, sentenceIDs []string) HighlightSet {
	return HighlightSet{
		ID:          uuid.NewString(),
		SessionID:   sessionID,
		MediaID:     mediaID,
		SentenceIDs: sentenceIDs,
	}
}

// EntityKey implements Entity.
func (h HighlightSet) EntityKey() string { return h.ID }

// SessionKey implements Entity.
func (h HighlightSet) SessionKey() string { return h.SessionID }

// RelatedKey implements Entity.
func (h HighlightSet) RelatedKey() string { return h.MediaID }

// SavedTime implements Entity.
func (h HighlightSet) SavedTime() time.Time { return h.SavedAt }

// WithSavedAt implements Entity.
func (h HighlightSet) WithSavedAt(at time.Time) HighlightSet {
	h.SavedAt = at
	return h
}
