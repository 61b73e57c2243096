package records

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"clipkeep/internal/storage"
)

// ErrDecode indicates a stored record does not match the expected shape.
// Read paths treat it as "not found" and log; it never fails a restore on
// its own.
var ErrDecode = errors.New("record decode failure")

// Entity is implemented by every persisted domain type. WithSavedAt
// returns a copy with the save timestamp stamped; entities are value types
// and are never mutated in place.
type Entity[T any] interface {
	EntityKey() string
	SessionKey() string
	RelatedKey() string
	SavedTime() time.Time
	WithSavedAt(at time.Time) T
}

// Codec converts one entity kind to and from flat persistence records.
// Implementations are pure; they perform no I/O.
type Codec[T Entity[T]] interface {
	Store() storage.StoreName
	Encode(entity T) (storage.Record, error)
	Decode(rec storage.Record) (T, error)
}

type mediaPayload struct {
	Title           string  `json:"title"`
	DurationSeconds float64 `json:"duration_seconds"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	SizeBytes       int64   `json:"size_bytes"`
	Data            []byte  `json:"data,omitempty"`
}

type transcriptPayload struct {
	MediaID  string    `json:"media_id"`
	Sections []Section `json:"sections"`
}

type highlightPayload struct {
	MediaID     string   `json:"media_id"`
	SentenceIDs []string `json:"sentence_ids"`
}

// MediaCodec converts Media records.
type MediaCodec struct{}

var _ Codec[Media] = MediaCodec{}

func (MediaCodec) Store() storage.StoreName { return storage.MediaStore }

func (MediaCodec) Encode(m Media) (storage.Record, error) {
	payload, err := json.Marshal(mediaPayload{
		Title:           m.Title,
		DurationSeconds: m.DurationSeconds,
		Width:           m.Width,
		Height:          m.Height,
		SizeBytes:       m.SizeBytes,
		Data:            m.Data,
	})
	if err != nil {
		return storage.Record{}, fmt.Errorf("encode media payload: %w", err)
	}
	return storage.Record{Key: m.ID, SessionID: m.SessionID, SavedAt: m.SavedAt, Payload: payload}, nil
}

func (MediaCodec) Decode(rec storage.Record) (Media, error) {
	var payload mediaPayload
	if err := decodePayload(rec, &payload); err != nil {
		return Media{}, err
	}
	return Media{
		ID:              rec.Key,
		SessionID:       rec.SessionID,
		SavedAt:         rec.SavedAt,
		Title:           payload.Title,
		DurationSeconds: payload.DurationSeconds,
		Width:           payload.Width,
		Height:          payload.Height,
		SizeBytes:       payload.SizeBytes,
		Data:            payload.Data,
	}, nil
}

// TranscriptCodec converts Transcript records.
type TranscriptCodec struct{}

var _ Codec[Transcript] = TranscriptCodec{}

func (TranscriptCodec) Store() storage.StoreName { return storage.TranscriptStore }

func (TranscriptCodec) Encode(t Transcript) (storage.Record, error) {
	payload, err := json.Marshal(transcriptPayload{MediaID: t.MediaID, Sections: t.Sections})
	if err != nil {
		return storage.Record{}, fmt.Errorf("encode transcript payload: %w", err)
	}
	return storage.Record{Key: t.ID, SessionID: t.SessionID, SavedAt: t.SavedAt, Payload: payload}, nil
}

func (TranscriptCodec) Decode(rec storage.Record) (Transcript, error) {
	var payload transcriptPayload
	if err := decodePayload(rec, &payload); err != nil {
		return Transcript{}, err
	}
	return Transcript{
		ID:        rec.Key,
		SessionID: rec.SessionID,
		SavedAt:   rec.SavedAt,
		MediaID:   payload.MediaID,
		Sections:  payload.Sections,
	}, nil
}

// HighlightCodec converts HighlightSet records.
type HighlightCodec struct{}

var _ Codec[HighlightSet] = HighlightCodec{}

func (HighlightCodec) Store() storage.StoreName { return storage.HighlightStore }

func (HighlightCodec) Encode(h HighlightSet) (storage.Record, error) {
	payload, err := json.Marshal(highlightPayload{MediaID: h.MediaID, SentenceIDs: h.SentenceIDs})
	if err != nil {
		return storage.Record{}, fmt.Errorf("encode highlight payload: %w", err)
	}
	return storage.Record{Key: h.ID, SessionID: h.SessionID, SavedAt: h.SavedAt, Payload: payload}, nil
}

func (HighlightCodec) Decode(rec storage.Record) (HighlightSet, error) {
	var payload highlightPayload
	if err := decodePayload(rec, &payload); err != nil {
		return HighlightSet{}, err
	}
	return HighlightSet{
		ID:          rec.Key,
		SessionID:   rec.SessionID,
		SavedAt:     rec.SavedAt,
		MediaID:     payload.MediaID,
		SentenceIDs: payload.SentenceIDs,
	}, nil
}

func decodePayload(rec storage.Record, target any) error {
	if rec.Key == "" {
		return fmt.Errorf("%w: record has no key", ErrDecode)
	}
	if len(rec.Payload) == 0 {
		return fmt.Errorf("%w: record %s has no payload", ErrDecode, rec.Key)
	}
	if err := json.Unmarshal(rec.Payload, target); err != nil {
		return fmt.Errorf("%w: record %s: %w", ErrDecode, rec.Key, err)
	}
	return nil
}
