// Package store persists actions, projects, tags, and perspectives in
// SQLite. The rule engine stays pure; everything that touches the
// database lives here.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/tendtool/tend/internal/task"
)

//go:embed schema.sql
var schemaSQL string

// Store wraps the SQLite handle for all persistence operations.
type Store struct {
	sql *sql.DB
}

// sqliteBusyTimeout is the time SQLite waits when the database is locked.
const sqliteBusyTimeout = 10000 // milliseconds

// Open opens (creating if needed) the database at path, applies the
// schema, and seeds the built-in perspectives idempotently.
func Open(ctx context.Context, path string) (*Store, error) {
	if ctx == nil {
		return nil, errors.New("open store: context is nil")
	}

	if path == "" {
		return nil, errors.New("open store: path is empty")
	}

	err := os.MkdirAll(filepath.Dir(path), 0o750)
	if err != nil {
		return nil, fmt.Errorf("open store: create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	err = db.PingContext(ctx)
	if err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("open store: ping: %w", err)
	}

	err = applyPragmas(ctx, db)
	if err != nil {
		_ = db.Close()

		return nil, err
	}

	_, err = db.ExecContext(ctx, schemaSQL)
	if err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("open store: apply schema: %w", err)
	}

	s := &Store{sql: db}

	err = s.seedBuiltIns(ctx)
	if err != nil {
		_ = db.Close()

		return nil, err
	}

	return s, nil
}

// applyPragmas configures the SQLite connection using a single batch statement.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, fmt.Sprintf(`
		PRAGMA busy_timeout = %d;
		PRAGMA journal_mode = WAL;
		PRAGMA synchronous = FULL;
		PRAGMA foreign_keys = ON;
		PRAGMA temp_store = MEMORY;
	`, sqliteBusyTimeout))
	if err != nil {
		return fmt.Errorf("apply pragmas: %w", err)
	}

	return nil
}

// Close releases the SQLite handle opened by Open.
func (s *Store) Close() error {
	if s == nil || s.sql == nil {
		return nil
	}

	err := s.sql.Close()
	if err != nil {
		return fmt.Errorf("close sqlite: %w", err)
	}

	return nil
}

// NewID returns a fresh record identifier.
func NewID() string {
	return uuid.NewString()
}

// inTx runs fn inside a transaction, rolling back on error.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	err = fn(tx)
	if err != nil {
		_ = tx.Rollback()

		return err
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// resolvePrefix expands a user-supplied ID prefix to the single full ID
// it matches in the given table. notFound is the table's sentinel error.
func resolvePrefix(ctx context.Context, q execer, table string, notFound error, prefix string) (string, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT id FROM "+table+" WHERE id LIKE ? || '%' LIMIT 2", prefix)
	if err != nil {
		return "", fmt.Errorf("resolve id prefix: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var matches []string

	for rows.Next() {
		var id string
		if scanErr := rows.Scan(&id); scanErr != nil {
			return "", fmt.Errorf("resolve id prefix: %w", scanErr)
		}

		matches = append(matches, id)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return "", fmt.Errorf("resolve id prefix: %w", rowsErr)
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", notFound, prefix)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w: %s", task.ErrAmbiguousID, prefix)
	}
}

// execer covers *sql.DB and *sql.Tx for helpers shared between plain
// and transactional code paths.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func nullTimeValue(t *time.Time) any {
	if t == nil {
		return nil
	}

	return t.UTC().Unix()
}

func nullStringValue(s *string) any {
	if s == nil {
		return nil
	}

	return *s
}

func boolValue(b bool) int {
	if b {
		return 1
	}

	return 0
}

func timeFromNull(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}

	t := time.Unix(v.Int64, 0).UTC()

	return &t
}

func stringFromNull(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}

	s := v.String

	return &s
}

// repeatFromRow reassembles a repeat configuration from its columns.
func repeatFromRow(mode, ivl string, endDate sql.NullInt64, endCount, count int) task.Repeat {
	return task.Repeat{
		Mode:     task.RepeatMode(mode),
		Interval: ivl,
		EndDate:  timeFromNull(endDate),
		EndCount: endCount,
		Count:    count,
	}
}
