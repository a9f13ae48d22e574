// Package postgres implements the storage adapter over a PostgreSQL server,
// mirroring the sqlite adapter's single state table with JSONB payloads.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"rollbook/pkg/register"
)

// Compile-time contract assertion.
var _ register.StorageAdapter = (*Store)(nil)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/rollbook?sslmode=disable"
)

// sqlOpen is a seam for tests to substitute a stub driver.
var sqlOpen = sql.Open

// Store persists blobs in a Postgres state table.
type Store struct {
	db *sql.DB
}

// New opens a Postgres-backed adapter using the provided DSN (falls back to
// defaultDSN) and ensures the state table exists.
func New(dsn string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	db, err := sqlOpen(defaultDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS state (
		key TEXT PRIMARY KEY,
		payload JSONB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure state table: %w", err)
	}
	return &Store{db: db}, nil
}

// Get reads one blob, reporting absence via ok.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM state WHERE key = $1`, key).Scan(&payload)
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
		`INSERT INTO state(key,payload) VALUES($1,$2) ON CONFLICT(key) DO UPDATE SET payload=excluded.payload`,
		key, payload); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

// Remove deletes one blob; absent keys are a no-op.
func (s *Store) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM state WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }
