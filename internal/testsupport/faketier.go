package testsupport

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"clipkeep/internal/storage"
)

// FakeTier is an in-memory DurableTier with injectable failures. Commit
// applies batched deletions atomically, matching the all-or-nothing
// guarantee of the real transaction.
type FakeTier struct {
	mu       sync.Mutex
	records  map[storage.StoreName]map[string]storage.Record
	sessions map[string]storage.SessionRow

	FailPuts   bool
	FailReads  bool
	FailCommit bool
}

var _ storage.DurableTier = (*FakeTier)(nil)

// NewFakeTier creates an empty fake durable tier.
func NewFakeTier() *FakeTier {
	records := make(map[storage.StoreName]map[string]storage.Record)
	for _, name := range storage.Stores() {
		records[name] = make(map[string]storage.Record)
	}
	return &FakeTier{records: records, sessions: make(map[string]storage.SessionRow)}
}

func (f *FakeTier) Put(_ context.Context, store storage.StoreName, rec storage.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailPuts {
		return fmt.Errorf("%w: injected put failure", storage.ErrUnavailable)
	}
	f.records[store][rec.Key] = rec
	return nil
}

func (f *FakeTier) Get(_ context.Context, store storage.StoreName, key string) (storage.Record, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailReads {
		return storage.Record{}, false, fmt.Errorf("%w: injected read failure", storage.ErrUnavailable)
	}
	rec, found := f.records[store][key]
	return rec, found, nil
}

func (f *FakeTier) GetAll(_ context.Context, store storage.StoreName) ([]storage.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailReads {
		return nil, fmt.Errorf("%w: injected read failure", storage.ErrUnavailable)
	}
	var recs []storage.Record
	for _, rec := range f.records[store] {
		recs = append(recs, rec)
	}
	return recs, nil
}

func (f *FakeTier) GetBySession(_ context.Context, store storage.StoreName, sessionID string) ([]storage.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailReads {
		return nil, fmt.Errorf("%w: injected read failure", storage.ErrUnavailable)
	}
	var recs []storage.Record
	for _, rec := range f.records[store] {
		if rec.SessionID == sessionID {
			recs = append(recs, rec)
		}
	}
	return recs, nil
}

func (f *FakeTier) Delete(_ context.Context, store storage.StoreName, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailPuts {
		return fmt.Errorf("%w: injected delete failure", storage.ErrUnavailable)
	}
	delete(f.records[store], key)
	return nil
}

func (f *FakeTier) PutSession(_ context.Context, row storage.SessionRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailPuts {
		return fmt.Errorf("%w: injected put failure", storage.ErrUnavailable)
	}
	if existing, found := f.sessions[row.ID]; found {
		existing.LastSavedAt = row.LastSavedAt
		f.sessions[row.ID] = existing
		return nil
	}
	f.sessions[row.ID] = row
	return nil
}

func (f *FakeTier) GetSessions(_ context.Context) ([]storage.SessionRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailReads {
		return nil, fmt.Errorf("%w: injected read failure", storage.ErrUnavailable)
	}
	var rows []storage.SessionRow
	for _, row := range f.sessions {
		rows = append(rows, row)
	}
	return rows, nil
}

func (f *FakeTier) Begin(context.Context) (storage.Txn, error) {
	return &fakeTxn{tier: f}, nil
}

// CountRecords returns the number of records in the named store.
func (f *FakeTier) CountRecords(store storage.StoreName) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records[store])
}

// CountSessions returns the number of session registry rows.
func (f *FakeTier) CountSessions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessions)
}

type fakeTxnOp struct {
	store     storage.StoreName
	sessionID string
	isSession bool
}

type fakeTxn struct {
	tier *FakeTier
	ops  []fakeTxnOp
	done bool
}

func (t *fakeTxn) DeleteSessionRecords(store storage.StoreName, sessionID string) error {
	if t.done {
		return errors.New("transaction already finished")
	}
	t.ops = append(t.ops, fakeTxnOp{store: store, sessionID: sessionID})
	return nil
}

func (t *fakeTxn) DeleteSessionRow(sessionID string) error {
	if t.done {
		return errors.New("transaction already finished")
	}
	t.ops = append(t.ops, fakeTxnOp{sessionID: sessionID, isSession: true})
	return nil
}

func (t *fakeTxn) Commit() error {
	if t.done {
		return errors.New("transaction already finished")
	}
	t.done = true

	t.tier.mu.Lock()
	defer t.tier.mu.Unlock()
	if t.tier.FailCommit {
		return fmt.Errorf("%w: injected commit failure", storage.ErrUnavailable)
	}
	for _, op := range t.ops {
		if op.isSession {
			delete(t.tier.sessions, op.sessionID)
			continue
		}
		for key, rec := range t.tier.records[op.store] {
			if rec.SessionID == op.sessionID {
				delete(t.tier.records[op.store], key)
			}
		}
	}
	return nil
}

func (t *fakeTxn) Rollback() error {
	t.done = true
	t.ops = nil
	return nil
}

// FakeScratch is an in-memory VolatileTier with injectable failures.
type FakeScratch struct {
	mu      sync.Mutex
	entries map[string][]byte

	FailPuts bool
}

var _ storage.VolatileTier = (*FakeScratch)(nil)

// NewFakeScratch creates an empty fake volatile tier.
func NewFakeScratch() *FakeScratch {
	return &FakeScratch{entries: make(map[string][]byte)}
}

func (f *FakeScratch) Put(key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailPuts {
		return fmt.Errorf("%w: injected put failure", storage.ErrUnavailable)
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	f.entries[key] = cp
	return nil
}

func (f *FakeScratch) Get(key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, found := f.entries[key]
	return value, found, nil
}

func (f *FakeScratch) Remove(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, key)
	return nil
}

// Len returns the number of stored keys.
func (f *FakeScratch) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}
