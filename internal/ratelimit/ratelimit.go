// Package ratelimit caps per-device frame submissions with sliding-window
// counters stored in PostgreSQL, so limits hold across API replicas.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/facemoji/facemoji/internal/domain"
)

// DB interface for database operations
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// Limiter counts frame submissions per device over a sliding window.
type Limiter struct {
	db     DB
	window time.Duration
}

func New(db *pgxpool.Pool, window time.Duration) *Limiter {
	return &Limiter{db: db, window: window}
}

// NewWithDB creates a limiter over a custom DB interface
func NewWithDB(db DB, window time.Duration) *Limiter {
	return &Limiter{db: db, window: window}
}

// CheckFrameLimit atomically counts one submission for the device and
// returns ErrRateLimitExceeded when the window count passes limit.
// A non-positive limit disables the check.
func (l *Limiter) CheckFrameLimit(ctx context.Context, deviceID string, limit int) error {
	if limit <= 0 {
		return nil
	}

	now := time.Now()
	windowStart := now.Add(-l.window)
	key := frameKey(deviceID)

	query := `
		WITH current_count AS (
			INSERT INTO rate_limit_counters (key, count, window_start, window_end, device_id)
			VALUES ($1, 1, $2, $3, $4)
			ON CONFLICT (key)
			DO UPDATE SET
				count = CASE
					WHEN rate_limit_counters.window_end < $2 THEN 1
					ELSE rate_limit_counters.count + 1
				END,
				window_start = CASE
					WHEN rate_limit_counters.window_end < $2 THEN $2
					ELSE rate_limit_counters.window_start
				END,
				window_end = $3
			RETURNING count
		)
		SELECT count FROM current_count
	`

	var count int
	err := l.db.QueryRow(ctx, query, key, windowStart, now, deviceID).Scan(&count)
	if err != nil {
		return fmt.Errorf("check frame limit: %w", err)
	}

	if count > limit {
		return domain.ErrRateLimitExceeded
	}

	return nil
}

// Count returns the device's submissions in the current window.
func (l *Limiter) Count(ctx context.Context, deviceID string) (int, error) {
	query := `
		SELECT count
		FROM rate_limit_counters
		WHERE key = $1 AND window_end > $2
	`

	var count int
	err := l.db.QueryRow(ctx, query, frameKey(deviceID), time.Now().Add(-l.window)).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("count frames: %w", err)
	}

	return count, nil
}

// Reset clears the device's counter.
func (l *Limiter) Reset(ctx context.Context, deviceID string) error {
	query := `DELETE FROM rate_limit_counters WHERE key = $1`
	_, err := l.db.Exec(ctx, query, frameKey(deviceID))
	return err
}

// CleanupExpired removes counters whose window closed over an hour ago
// (run via cron)
func (l *Limiter) CleanupExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM rate_limit_counters WHERE window_end < NOW() - INTERVAL '1 hour'`
	result, err := l.db.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

func frameKey(deviceID string) string {
	return fmt.Sprintf("frame_rate:%s", deviceID)
}
