// Package job tracks asynchronous multi-frame processing requests. Records
// live in the KV store with a TTL, so a finished job stays queryable for a
// bounded window and disappears afterwards.
package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/facemoji/facemoji/internal/domain"
	"github.com/facemoji/facemoji/internal/kvstore"
)

// DefaultTTL keeps job records queryable for half an hour after creation.
const DefaultTTL = 30 * time.Minute

// KV is the slice of the key-value store the job package needs.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Store persists job records as JSON in the KV store. Frame payloads stay in
// memory with the worker; only the record round-trips.
type Store struct {
	kv  KV
	ttl time.Duration
}

func NewStore(kv KV, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{kv: kv, ttl: ttl}
}

// Save writes the job record, resetting its TTL.
func (s *Store) Save(ctx context.Context, j *domain.Job) error {
	record := *j
	record.Frames = nil

	data, err := json.Marshal(&record)
	if err != nil {
		return fmt.Errorf("marshal job %s: %w", j.ID, err)
	}

	if err := s.kv.Set(ctx, jobKey(j.ID), data, s.ttl); err != nil {
		return domain.ErrStoreUnavailable.WithError(err)
	}
	return nil
}

// Load reads a job record. Missing and expired keys both surface as
// ErrJobNotFound.
func (s *Store) Load(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	data, err := s.kv.Get(ctx, jobKey(id))
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) || errors.Is(err, kvstore.ErrExpired) {
			return nil, domain.ErrJobNotFound
		}
		return nil, domain.ErrStoreUnavailable.WithError(err)
	}

	var j domain.Job
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("unmarshal job %s: %w", id, err)
	}
	return &j, nil
}

func jobKey(id uuid.UUID) string {
	return fmt.Sprintf("job:%s", id)
}
