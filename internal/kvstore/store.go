// Package kvstore is a PostgreSQL-backed key-value store with per-entry TTL.
// Job records and other transient state live here so restarts and multiple
// API replicas see the same data.
package kvstore

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound is returned when a key is absent
	ErrNotFound = errors.New("key not found")
	// ErrExpired is returned when a key exists but its TTL has elapsed
	ErrExpired = errors.New("key expired")
)

// DB interface for database operations (compatible with pgxpool.Pool and pgxmock)
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
}

// Store reads and writes TTL-bounded entries in the kv_entries table.
type Store struct {
	db DB
}

func New(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// NewWithDB creates a store over a custom DB interface
func NewWithDB(db DB) *Store {
	return &Store{db: db}
}

// Get retrieves the value for key. Expired entries are deleted lazily and
// reported as ErrExpired.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	query := `
		SELECT value, expires_at
		FROM kv_entries
		WHERE key = $1
	`

	var value []byte
	var expiresAt time.Time

	err := s.db.QueryRow(ctx, query, key).Scan(&value, &expiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if time.Now().After(expiresAt) {
		_ = s.Delete(ctx, key)
		return nil, ErrExpired
	}

	return value, nil
}

// Set upserts key with the given TTL, resetting the expiry on overwrite.
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	query := `
		INSERT INTO kv_entries (key, value, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value,
		    expires_at = EXCLUDED.expires_at,
		    updated_at = NOW()
	`

	expiresAt := time.Now().Add(ttl)
	_, err := s.db.Exec(ctx, query, key, value, expiresAt)
	return err
}

// Delete removes a key
func (s *Store) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM kv_entries WHERE key = $1`
	_, err := s.db.Exec(ctx, query, key)
	return err
}

// CleanupExpired removes all entries past their expiry (run via cron)
func (s *Store) CleanupExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM kv_entries WHERE expires_at < NOW()`
	result, err := s.db.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
