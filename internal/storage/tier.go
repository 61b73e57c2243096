package storage

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable indicates the backing store cannot be reached at all.
// Callers on the write path recover from it locally; the in-memory state
// remains the source of truth for the rest of the process lifetime.
var ErrUnavailable = errors.New("storage unavailable")

// StoreName identifies one of the logical durable stores.
type StoreName string

const (
	MediaStore      StoreName = "media"
	TranscriptStore StoreName = "transcripts"
	HighlightStore  StoreName = "highlight_sets"
)

// Stores returns the known durable store names.
func Stores() []StoreName {
	return []StoreName{MediaStore, TranscriptStore, HighlightStore}
}

// Record is the flat persistence shape shared by every entity kind.
// Key and SessionID are indexed columns; Payload carries the kind-specific
// fields as JSON.
type Record struct {
	Key       string    `json:"key"`
	SessionID string    `json:"session_id"`
	SavedAt   time.Time `json:"saved_at"`
	Payload   []byte    `json:"payload"`
}

// SessionRow is a persisted session registry entry.
type SessionRow struct {
	ID          string
	CreatedAt   time.Time
	LastSavedAt time.Time
}

// DurableTier is the durable key/value store holding full entity records
// and the session registry. Implementations must index each store by
// primary key and secondary session id.
type DurableTier interface {
	Put(ctx context.Context, store StoreName, rec Record) error
	Get(ctx context.Context, store StoreName, key string) (Record, bool, error)
	GetAll(ctx context.Context, store StoreName) ([]Record, error)
	GetBySession(ctx context.Context, store StoreName, sessionID string) ([]Record, error)
	Delete(ctx context.Context, store StoreName, key string) error

	PutSession(ctx context.Context, row SessionRow) error
	GetSessions(ctx context.Context) ([]SessionRow, error)

	// Begin opens a transaction spanning every durable store. Deletions
	// enqueued on the handle become visible all together on Commit or not
	// at all.
	Begin(ctx context.Context) (Txn, error)
}

// Txn batches deletions so that either all of them are observed or none.
type Txn interface {
	DeleteSessionRecords(store StoreName, sessionID string) error
	DeleteSessionRow(sessionID string) error
	Commit() error
	Rollback() error
}

// VolatileTier is the scope-bounded key/value store for small flag records
// and metadata-only media. It is owned and wiped by cleanup and reaping
// rather than expired by the host.
type VolatileTier interface {
	Put(key string, value []byte) error
	Get(key string) ([]byte, bool, error)
	Remove(key string) error
}
