package records

import (
	"time"

	"github.com/google/uuid"
)

// Media is a stored media reference: playback metadata plus, below the
// tiering threshold, the raw bytes themselves. Data is nil for media
// persisted metadata-only; callers treat that as "needs re-supply", not as
// an error.
type Media struct {
	ID        string
	SessionID string
	SavedAt   time.Time

	Title           string
	DurationSeconds float64
	Width           int
	Height          int
	SizeBytes       int64
	Data            []byte
}

// NewMedia constructs a media record for the given session.
func NewMedia(sessionID, title string, data []byte) Media {
	return Media{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Title:     title,
		SizeBytes: int64(len(data)),
		Data:      data,
	}
}

// HasPayload reports whether the byte payload is present.
func (m Media) HasPayload() bool {
	return len(m.Data) > 0
}

// EntityKey implements Entity.
func (m Media) EntityKey() string { return m.ID }

// SessionKey implements Entity.
func (m Media) SessionKey() string { return m.SessionID }

// RelatedKey implements Entity. Media is the root of a session's entity
// graph, so it has no related id.
func (m Media) RelatedKey() string { return "" }

// SavedTime implements Entity.
func (m Media) SavedTime() time.Time { return m.SavedAt }

// WithSavedAt implements Entity.
func (m Media) WithSavedAt(at time.Time) Media {
	m.SavedAt = at
	return m
}
