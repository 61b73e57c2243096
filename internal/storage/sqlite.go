package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"clipkeep/internal/config"
)

// SQLite is the durable tier backed by a local SQLite database.
type SQLite struct {
	db   *sql.DB
	path string
}

var _ DurableTier = (*SQLite)(nil)

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Open initializes or connects to the clipkeep database and applies the schema.
func Open(cfg *config.Config) (*SQLite, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.DatabasePath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite db: %w", ErrUnavailable, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	tier := &SQLite{db: db, path: dbPath}
	if err := tier.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return tier, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *SQLite) Path() string {
	return s.path
}

// Put inserts or replaces a record in the named store.
func (s *SQLite) Put(ctx context.Context, store StoreName, rec Record) error {
	if err := validStore(store); err != nil {
		return err
	}
	query := `INSERT INTO ` + string(store) + ` (id, session_id, saved_at, payload)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET session_id = excluded.session_id,
            saved_at = excluded.saved_at, payload = excluded.payload`
	if err := s.execWithRetry(ctx, query,
		rec.Key,
		rec.SessionID,
		rec.SavedAt.UTC().Format(time.RFC3339Nano),
		string(rec.Payload),
	); err != nil {
		return fmt.Errorf("%w: put %s record: %w", ErrUnavailable, store, err)
	}
	return nil
}

// Get fetches a record by primary key.
func (s *SQLite) Get(ctx context.Context, store StoreName, key string) (Record, bool, error) {
	if err := validStore(store); err != nil {
		return Record{}, false, err
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT id, session_id, saved_at, payload FROM `+string(store)+` WHERE id = ?`, key)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("%w: get %s record: %w", ErrUnavailable, store, err)
	}
	return rec, true, nil
}

// GetAll returns every record in the named store ordered by save time.
func (s *SQLite) GetAll(ctx context.Context, store StoreName) ([]Record, error) {
	if err := validStore(store); err != nil {
		return nil, err
	}
	return s.queryRecords(ctx, store,
		`SELECT id, session_id, saved_at, payload FROM `+string(store)+` ORDER BY saved_at`)
}

// GetBySession returns records in the named store belonging to a session.
func (s *SQLite) GetBySession(ctx context.Context, store StoreName, sessionID string) ([]Record, error) {
	if err := validStore(store); err != nil {
		return nil, err
	}
	return s.queryRecords(ctx, store,
		`SELECT id, session_id, saved_at, payload FROM `+string(store)+` WHERE session_id = ? ORDER BY saved_at`,
		sessionID)
}

// Delete removes a record by primary key.
func (s *SQLite) Delete(ctx context.Context, store StoreName, key string) error {
	if err := validStore(store); err != nil {
		return err
	}
	if err := s.execWithRetry(ctx, `DELETE FROM `+string(store)+` WHERE id = ?`, key); err != nil {
		return fmt.Errorf("%w: delete %s record: %w", ErrUnavailable, store, err)
	}
	return nil
}

// PutSession inserts or updates a session registry row.
func (s *SQLite) PutSession(ctx context.Context, row SessionRow) error {
	query := `INSERT INTO sessions (id, created_at, last_saved_at) VALUES (?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET last_saved_at = excluded.last_saved_at`
	if err := s.execWithRetry(ctx, query,
		row.ID,
		row.CreatedAt.UTC().Format(time.RFC3339Nano),
		row.LastSavedAt.UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("%w: put session row: %w", ErrUnavailable, err)
	}
	return nil
}

// GetSessions returns every session registry row ordered by last save.
func (s *SQLite) GetSessions(ctx context.Context) ([]SessionRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, last_saved_at FROM sessions ORDER BY last_saved_at`)
	if err != nil {
		return nil, fmt.Errorf("%w: query sessions: %w", ErrUnavailable, err)
	}
	defer rows.Close()

	var sessions []SessionRow
	for rows.Next() {
		var (
			id         string
			createdRaw string
			savedRaw   string
		)
		if err := rows.Scan(&id, &createdRaw, &savedRaw); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		row := SessionRow{ID: id}
		if created, err := parseTimeString(createdRaw); err == nil {
			row.CreatedAt = created
		}
		if saved, err := parseTimeString(savedRaw); err == nil {
			row.LastSavedAt = saved
		}
		sessions = append(sessions, row)
	}
	return sessions, rows.Err()
}

// Begin opens a deletion transaction spanning every durable store.
func (s *SQLite) Begin(ctx context.Context) (Txn, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: begin transaction: %w", ErrUnavailable, err)
	}
	return &sqliteTxn{ctx: ctx, tx: tx}, nil
}

type sqliteTxn struct {
	ctx context.Context
	tx  *sql.Tx
}

func (t *sqliteTxn) DeleteSessionRecords(store StoreName, sessionID string) error {
	if err := validStore(store); err != nil {
		return err
	}
	if _, err := t.tx.ExecContext(t.ctx, `DELETE FROM `+string(store)+` WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete %s records for session: %w", store, err)
	}
	return nil
}

func (t *sqliteTxn) DeleteSessionRow(sessionID string) error {
	if _, err := t.tx.ExecContext(t.ctx, `DELETE FROM sessions WHERE id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete session row: %w", err)
	}
	return nil
}

func (t *sqliteTxn) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (t *sqliteTxn) Rollback() error {
	return t.tx.Rollback()
}

func (s *SQLite) queryRecords(ctx context.Context, store StoreName, query string, args ...any) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query %s records: %w", ErrUnavailable, store, err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanRecord(scanner interface{ Scan(dest ...any) error }) (Record, error) {
	var (
		key       string
		sessionID string
		savedRaw  string
		payload   sql.NullString
	)
	if err := scanner.Scan(&key, &sessionID, &savedRaw, &payload); err != nil {
		return Record{}, err
	}
	rec := Record{Key: key, SessionID: sessionID, Payload: []byte(payload.String)}
	if saved, err := parseTimeString(savedRaw); err == nil {
		rec.SavedAt = saved
	}
	return rec, nil
}

func validStore(store StoreName) error {
	switch store {
	case MediaStore, TranscriptStore, HighlightStore:
		return nil
	default:
		return fmt.Errorf("unknown store %q", store)
	}
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	return time.Parse(time.RFC3339Nano, value)
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *SQLite) execWithRetry(ctx context.Context, query string, args ...any) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}
