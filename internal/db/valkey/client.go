// Package valkey implements db.Store on rueidis. It speaks to Valkey with
// valkey-search and to Redis Stack with RediSearch; both answer FT.* alike.
package valkey

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/orgrank/internal/db"
)

var _ db.Store = (*Store)(nil)

const (
	defaultClientName  = "orgrank"
	defaultDialTimeout = 5 * time.Second
	readyPollInterval  = 100 * time.Millisecond
)

// Config holds connection parameters.
type Config struct {
	Addrs    []string
	Username string
	Password string
	DB       int
	// ClientName shows up in CLIENT LIST; defaults to "orgrank".
	ClientName  string
	DialTimeout time.Duration
}

// Store is a thin command layer over a rueidis client.
type Store struct {
	client rueidis.Client
}

// NewStore creates a store. The connection is lazy; call WaitForReady before use.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, errors.New("addrs is required")
	}
	if cfg.ClientName == "" {
		cfg.ClientName = defaultClientName
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = defaultDialTimeout
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		ClientName:   cfg.ClientName,
		Dialer:       net.Dialer{Timeout: cfg.DialTimeout},
		DisableCache: true,
		AlwaysRESP2:  true, // FT.SEARCH replies are parsed as RESP2 arrays
	})
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return &Store{client: client}, nil
}

// Ping checks connectivity. Health checks call it on every probe.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.do(ctx, s.b().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady pings until the server answers or timeout expires.
// The first ping is sent immediately.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var lastErr error
	for {
		if lastErr = s.Ping(ctx); lastErr == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database (last error: %w): %w", lastErr, ctx.Err())
		case <-time.After(readyPollInterval):
		}
	}
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}

// isServerErr reports whether err is a server error mentioning substr, ignoring case.
func isServerErr(err error, substr string) bool {
	re, ok := rueidis.IsRedisErr(err)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(re.Error()), strings.ToLower(substr))
}
