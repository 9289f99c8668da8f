package quota

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/kailas-cloud/orgrank/internal/db"
)

// DefaultTTL keeps a daily counter a little past its day.
const DefaultTTL = 48 * time.Hour

type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	IncrBy(ctx context.Context, key string, val int64) error
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// Store keeps embedding quota counters in the key-value store (INCRBY + EXPIRE NX).
type Store struct {
	store store
	ttl   time.Duration
}

// New creates a counter store. A non-positive ttl falls back to DefaultTTL.
func New(s store, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{store: s, ttl: ttl}
}

// IncrBy increments the counter and sets its TTL on first write.
func (s *Store) IncrBy(ctx context.Context, key string, val int64) error {
	if err := s.store.IncrBy(ctx, key, val); err != nil {
		return fmt.Errorf("quota incr %s: %w", key, err)
	}
	if err := s.store.Expire(ctx, key, s.ttl, true); err != nil {
		return fmt.Errorf("quota expire %s: %w", key, err)
	}
	return nil
}

// Get returns the counter, 0 when the key is absent.
func (s *Store) Get(ctx context.Context, key string) (int64, error) {
	data, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("quota get %s: %w", key, err)
	}
	val, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("quota get %s: parse: %w", key, err)
	}
	return val, nil
}
