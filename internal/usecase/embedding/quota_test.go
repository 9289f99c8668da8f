package embedding

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/orgrank/internal/domain"
)

type mockCounterStore struct {
	values map[string]int64
	getErr error
	incrs  []string
}

func (m *mockCounterStore) IncrBy(_ context.Context, key string, val int64) error {
	if m.values == nil {
		m.values = map[string]int64{}
	}
	m.values[key] += val
	m.incrs = append(m.incrs, key)
	return nil
}

func (m *mockCounterStore) Get(_ context.Context, key string) (int64, error) {
	if m.getErr != nil {
		return 0, m.getErr
	}
	return m.values[key], nil
}

func TestQuota_Unlimited(t *testing.T) {
	q := NewQuota("openai", 0, QuotaActionReject, zap.NewNop())
	q.Record(1_000_000)
	if err := q.Check(context.Background()); err != nil {
		t.Fatalf("unlimited quota must not reject: %v", err)
	}
	if q.Remaining() != -1 {
		t.Errorf("expected -1, got %d", q.Remaining())
	}
}

func TestQuota_RejectWhenSpent(t *testing.T) {
	q := NewQuota("openai", 100, QuotaActionReject, zap.NewNop())
	q.Record(60)
	if err := q.Check(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Remaining() != 40 {
		t.Errorf("expected 40 remaining, got %d", q.Remaining())
	}
	q.Record(40)
	if err := q.Check(context.Background()); !errors.Is(err, domain.ErrEmbeddingQuotaExceeded) {
		t.Fatalf("expected ErrEmbeddingQuotaExceeded, got %v", err)
	}
	if q.Remaining() != 0 {
		t.Errorf("expected 0 remaining, got %d", q.Remaining())
	}
}

func TestQuota_WarnLetsThrough(t *testing.T) {
	q := NewQuota("openai", 10, QuotaActionWarn, zap.NewNop())
	q.Record(50)
	if err := q.Check(context.Background()); err != nil {
		t.Fatalf("warn action must not reject: %v", err)
	}
}

func TestQuota_RolloverAtMidnight(t *testing.T) {
	clock := time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC)
	q := NewQuota("openai", 10, QuotaActionReject, zap.NewNop())
	q.now = func() time.Time { return clock }
	q.day = truncateToDay(clock)

	q.Record(10)
	if err := q.Check(context.Background()); err == nil {
		t.Fatal("expected rejection before midnight")
	}

	clock = clock.Add(2 * time.Minute)
	if err := q.Check(context.Background()); err != nil {
		t.Fatalf("expected reset after midnight, got %v", err)
	}
	if q.Remaining() != 10 {
		t.Errorf("expected full quota, got %d", q.Remaining())
	}
}

func TestQuota_WithStore(t *testing.T) {
	store := &mockCounterStore{}
	q := NewQuota("openai", 100, QuotaActionReject, zap.NewNop())
	store.values = map[string]int64{q.key(q.day): 70}

	q.WithStore(context.Background(), store)
	if q.Remaining() != 30 {
		t.Fatalf("expected counter loaded from store, remaining=%d", q.Remaining())
	}

	q.Record(5)
	if len(store.incrs) != 1 || !strings.HasPrefix(store.incrs[0], domain.KeyPrefix+"quota:openai:") {
		t.Errorf("unexpected persisted keys: %v", store.incrs)
	}
}

func TestQuota_WithStoreLoadError(t *testing.T) {
	q := NewQuota("openai", 100, QuotaActionReject, zap.NewNop())
	q.WithStore(context.Background(), &mockCounterStore{getErr: errors.New("down")})
	if q.Remaining() != 100 {
		t.Errorf("load failure must start from zero, remaining=%d", q.Remaining())
	}
}
