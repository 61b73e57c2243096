package records

import (
	"time"

	"github.com/google/uuid"
)

// Sentence is one transcript sentence with its time range. Suggested marks
// sentences the transcript producer proposed as highlight candidates.
type Sentence struct {
	ID           string  `json:"id"`
	Text         string  `json:"text"`
	StartSeconds float64 `json:"start_seconds"`
	EndSeconds   float64 `json:"end_seconds"`
	Suggested    bool    `json:"suggested"`
}

// Section is an ordered group of sentences under one heading.
type Section struct {
	Title     string     `json:"title"`
	Sentences []Sentence `json:"sentences"`
}

// Transcript is the derived transcript for a session's media.
type Transcript struct {
	ID        string
	SessionID string
	SavedAt   time.Time

	MediaID  string
	Sections []Section
}

// NewTranscript constructs a transcript record for the given media.
func NewTranscript(sessionID, mediaID string, sections []Section) Transcript {
	return Transcript{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		MediaID:   mediaID,
		Sections:  sections,
	}
}

// SentenceIDs returns the set of sentence ids across all sections.
func (t Transcript) SentenceIDs() map[string]struct{} {
	ids := make(map[string]struct{})
	for _, section := range t.Sections {
		for _, sentence := range section.Sentences {
			ids[sentence.ID] = struct{}{}
		}
	}
	return ids
}

// SentenceCount returns the number of sentences across all sections.
func (t Transcript) SentenceCount() int {
	count := 0
	for _, section := range t.Sections {
		count += len(section.Sentences)
	}
	return count
}

// EntityKey implements Entity.
func (t Transcript) EntityKey() string { return t.ID }

// SessionKey implements Entity.
func (t Transcript) SessionKey() string { return t.SessionID }

// RelatedKey implements Entity.
func (t Transcript) RelatedKey() string { return t.MediaID }

// SavedTime implements Entity.
func (t Transcript) SavedTime() time.Time { return t.SavedAt }

// WithSavedAt implements Entity.
func (t Transcript) WithSavedAt(at time.Time) Transcript {
	t.SavedAt = at
	return t
}
