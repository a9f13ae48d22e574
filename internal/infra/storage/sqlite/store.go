// Package sqlite implements the storage adapter over an embedded SQLite
// file: one state table keyed by blob name, upsert on write.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"rollbook/pkg/register"
)

// Compile-time contract assertion.
var _ register.StorageAdapter = (*Store)(nil)

// Store persists blobs in a single SQLite table.
type Store struct {
	db   *sql.DB
	path string
}

// New opens (or creates) the database at path, defaulting to ./rollbook.db.
func New(path string) (*Store, error) {
	if path == "" {
		path = "rollbook.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		key TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Get reads one blob, reporting absence via ok.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM state WHERE key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("select %s: %w", key, err)
	}
	return payload, true, nil
}

// Set upserts one blob.
func (s *Store) Set(ctx context.Context, key string, payload []byte) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO state(key,payload) VALUES(?,?) ON CONFLICT(key) DO UPDATE SET payload=excluded.payload`,
		key, payload); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

// Remove deletes one blob; absent keys are a no-op.
func (s *Store) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM state WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }
