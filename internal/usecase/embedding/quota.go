package embedding

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/orgrank/internal/domain"
)

// QuotaAction defines behavior once the daily quota is spent.
type QuotaAction string

const (
	// QuotaActionWarn logs and lets the request through.
	QuotaActionWarn QuotaAction = "warn"
	// QuotaActionReject fails the request with domain.ErrEmbeddingQuotaExceeded.
	QuotaActionReject QuotaAction = "reject"
)

// CounterStore persists daily token counters so restarts keep the tally.
type CounterStore interface {
	IncrBy(ctx context.Context, key string, val int64) error
	Get(ctx context.Context, key string) (int64, error)
}

// Quota caps embedding tokens per UTC day. Check never leaves memory;
// Record writes through to the store when one is attached.
type Quota struct {
	mu       sync.Mutex
	provider string
	limit    int64
	action   QuotaAction
	used     int64
	day      time.Time
	store    CounterStore
	logger   *zap.Logger
	now      func() time.Time
}

// NewQuota creates a quota. A zero limit means unlimited.
func NewQuota(provider string, dailyLimit int64, action QuotaAction, logger *zap.Logger) *Quota {
	q := &Quota{
		provider: provider,
		limit:    dailyLimit,
		action:   action,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
	q.day = truncateToDay(q.now())
	return q
}

// WithStore attaches persistence and loads today's counter.
func (q *Quota) WithStore(ctx context.Context, store CounterStore) *Quota {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.store = store
	used, err := store.Get(ctx, q.key(q.day))
	if err != nil {
		q.logger.Warn("Failed to load embedding quota", zap.String("provider", q.provider), zap.Error(err))
		return q
	}
	q.used = used
	q.logger.Info("Embedding quota loaded",
		zap.String("provider", q.provider),
		zap.Int64("used", used),
		zap.Int64("limit", q.limit),
	)
	return q
}

func (q *Quota) key(day time.Time) string {
	return fmt.Sprintf("%squota:%s:%s", domain.KeyPrefix, q.provider, day.Format("2006-01-02"))
}

// Check reports whether another provider call is allowed.
func (q *Quota) Check(_ context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.rollover()
	if q.limit <= 0 || q.used < q.limit {
		return nil
	}
	if q.action == QuotaActionReject {
		return domain.ErrEmbeddingQuotaExceeded
	}
	q.logger.Warn("Embedding quota exceeded",
		zap.String("provider", q.provider),
		zap.Int64("used", q.used),
		zap.Int64("limit", q.limit),
	)
	return nil
}

// Record adds consumed tokens.
func (q *Quota) Record(tokens int64) {
	q.mu.Lock()
	q.rollover()
	q.used += tokens
	store, key := q.store, q.key(q.day)
	q.mu.Unlock()

	if store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := store.IncrBy(ctx, key, tokens); err != nil {
		q.logger.Warn("Failed to persist embedding quota", zap.String("key", key), zap.Error(err))
	}
}

// Remaining returns tokens left today, or -1 when unlimited.
func (q *Quota) Remaining() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.rollover()
	if q.limit <= 0 {
		return -1
	}
	return max(0, q.limit-q.used)
}

// rollover resets the counter at UTC midnight. Caller holds mu.
func (q *Quota) rollover() {
	today := truncateToDay(q.now())
	if today.After(q.day) {
		q.day = today
		q.used = 0
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
