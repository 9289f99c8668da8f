package valkey

import (
	"context"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/orgrank/internal/db"
)

// Get retrieves a value by key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.do(ctx, s.b().Get().Key(key).Build()).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, db.ErrKeyNotFound
		}
		return nil, &db.Error{Op: db.OpGet, Key: key, Err: err}
	}
	return data, nil
}

// Set stores a value without expiry.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := s.do(ctx, s.b().Set().Key(key).Value(rueidis.BinaryString(value)).Build()).Error(); err != nil {
		return &db.Error{Op: db.OpSet, Key: key, Err: err}
	}
	return nil
}

// SetWithTTL stores a value that expires after ttl.
func (s *Store) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	cmd := s.b().Set().Key(key).Value(rueidis.BinaryString(value)).Ex(ttl).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpSet, Key: key, Err: err}
	}
	return nil
}

// IncrBy atomically increments a counter.
func (s *Store) IncrBy(ctx context.Context, key string, val int64) error {
	if err := s.do(ctx, s.b().Incrby().Key(key).Increment(val).Build()).Error(); err != nil {
		return &db.Error{Op: db.OpIncrBy, Key: key, Err: err}
	}
	return nil
}

// Expire sets a TTL. With nx the TTL is only set when the key has none (EXPIRE NX).
func (s *Store) Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error {
	var cmd rueidis.Completed
	if nx {
		cmd = s.b().Expire().Key(key).Seconds(int64(ttl.Seconds())).Nx().Build()
	} else {
		cmd = s.b().Expire().Key(key).Seconds(int64(ttl.Seconds())).Build()
	}
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpExpire, Key: key, Err: err}
	}
	return nil
}
