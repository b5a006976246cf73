package resultcache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"discchapters/internal/report"
)

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
	lockRetryDelay          = 25 * time.Millisecond
)

// Key identifies one cached report.
type Key struct {
	Path string
	// Digest covers the file content and anything else the result depends on.
	Digest string
	// Settings fingerprints the parser options in effect.
	Settings string
}

// Entry describes a cached report without decoding it.
type Entry struct {
	Path      string    `json:"path"`
	Kind      string    `json:"kind"`
	Chapters  int       `json:"chapters"`
	Digest    string    `json:"digest"`
	RunID     string    `json:"run_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Store manages cached reports backed by SQLite.
type Store struct {
	db   *sql.DB
	path string

	mu   sync.Mutex
	lock *flock.Flock
}

// Open initializes or connects to the cache database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	ctx = ensureContext(ctx)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path, lock: flock.New(path + ".lock")}
	err = store.withLock(ctx, func() error { return store.initSchema(ctx) })
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get returns the cached report for key. A miss is (nil, false, nil).
func (s *Store) Get(ctx context.Context, key Key) (*report.Report, bool, error) {
	ctx = ensureContext(ctx)
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT report_json FROM results WHERE path = ? AND digest = ? AND settings = ?`,
		key.Path, key.Digest, key.Settings,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached report: %w", err)
	}
	var rep report.Report
	if err := json.Unmarshal([]byte(payload), &rep); err != nil {
		return nil, false, fmt.Errorf("decode cached report: %w", err)
	}
	return &rep, true, nil
}

// Put stores rep under key, replacing older entries for the same path.
func (s *Store) Put(ctx context.Context, key Key, rep *report.Report, runID string) error {
	if rep == nil {
		return errors.New("report is nil")
	}
	ctx = ensureContext(ctx)
	payload, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	return s.withLock(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin put tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, `DELETE FROM results WHERE path = ?`, key.Path); err != nil {
			return fmt.Errorf("evict stale report: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO results (path, digest, settings, kind, chapters, report_json, run_id, created_at)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			key.Path, key.Digest, key.Settings, string(rep.Kind), len(rep.Rows), string(payload),
			nullableString(runID), now,
		); err != nil {
			return fmt.Errorf("insert report: %w", err)
		}
		return tx.Commit()
	})
}

// List returns all entries, newest first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, kind, chapters, digest, run_id, created_at FROM results ORDER BY created_at DESC, path`)
	if err != nil {
		return nil, fmt.Errorf("list cache: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			runID   sql.NullString
			created string
		)
		if err := rows.Scan(&e.Path, &e.Kind, &e.Chapters, &e.Digest, &runID, &created); err != nil {
			return nil, fmt.Errorf("scan cache entry: %w", err)
		}
		e.RunID = runID.String
		if ts, err := time.Parse(time.RFC3339Nano, created); err == nil {
			e.CreatedAt = ts
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Clear removes every entry and returns how many were deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)
	var removed int64
	err := s.withLock(ctx, func() error {
		res, err := s.execWithRetry(ctx, `DELETE FROM results`)
		if err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}
		removed, err = res.RowsAffected()
		return err
	})
	return removed, err
}

// withLock runs fn holding both the in-process mutex and the cross-process
// file lock.
func (s *Store) withLock(ctx context.Context, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("acquire cache lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("acquire cache lock: %s is held by another process", s.lock.Path())
	}
	defer func() { _ = s.lock.Unlock() }()

	return retryOnBusy(ctx, fn)
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
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
	if errors.As(err, &coder) && coder.Code()&0xff == sqliteBusyCode {
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

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
