// Package kvstore implements the storage port on a local SQLite database.
// Records are opaque JSON blobs keyed by domain name; the store never
// interprets their contents.
package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rbxsim/rbxsim/internal/domain"
)

// FileName is the database file created inside the state directory.
const FileName = "rbxsim.db"

// ─── Schema ─────────────────────────────────────────────────────────────────

// Migrations returns the schema migration statements.
// Each string is a single SQL statement (SQLite executes one at a time).
func Migrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS records (
			key        TEXT PRIMARY KEY,
			value      BLOB NOT NULL,
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
	}
}

// ─── Store ──────────────────────────────────────────────────────────────────

// Store is the SQLite-backed key-value record store.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database under dir and runs migrations.
// A single writer connection sidesteps SQLITE_BUSY under the concurrent
// fire-and-forget persistence writes.
func Open(dir string) (*Store, error) {
	path := filepath.Join(dir, FileName)
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	for _, stmt := range Migrations() {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the record blob for key, or nil when the key is absent.
// A missing key is not an error.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM records WHERE key = ?`, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

// Set writes the record blob for key, replacing any previous value.
// Last write per key wins.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO records (key, value, updated_at)
		VALUES (?, ?, datetime('now'))
		ON CONFLICT(key) DO UPDATE SET
			value      = excluded.value,
			updated_at = datetime('now')
	`, key, value)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// RemoveAll deletes the given keys. Keys run in one statement but there is no
// atomicity guarantee beyond what a single DELETE provides; absent keys are
// silently skipped.
func (s *Store) RemoveAll(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	placeholders := strings.Repeat("?,", len(keys))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}

	_, err := s.db.ExecContext(ctx,
		`DELETE FROM records WHERE key IN (`+placeholders+`)`, args...)
	if err != nil {
		return fmt.Errorf("remove keys: %w", err)
	}
	return nil
}

// interface guard
var _ domain.StoragePort = (*Store)(nil)
