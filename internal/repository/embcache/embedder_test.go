package embcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/orgrank/internal/db"
	"github.com/kailas-cloud/orgrank/internal/domain"
)

type mockEmbedder struct {
	vec        []float32
	tokens     int
	err        error
	calls      int
	batchTexts [][]string
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec, TotalTokens: m.tokens}, nil
}

func (m *mockEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.batchTexts = append(m.batchTexts, texts)
	if m.err != nil {
		return domain.BatchEmbeddingResult{}, m.err
	}
	out := domain.BatchEmbeddingResult{Embeddings: make([][]float32, len(texts))}
	for i := range texts {
		out.Embeddings[i] = []float32{float32(i + 1)}
	}
	out.TotalTokens = m.tokens * len(texts)
	return out, nil
}

type mockKVStore struct {
	data   map[string][]byte
	getErr error
	ttls   map[string]time.Duration
}

func newMockKV() *mockKVStore {
	return &mockKVStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *mockKVStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockKVStore) Set(_ context.Context, key string, value []byte) error {
	m.data[key] = value
	return nil
}

func (m *mockKVStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func TestEmbed_MissThenHit(t *testing.T) {
	inner := &mockEmbedder{vec: []float32{0.1, 0.2, 0.3}, tokens: 10}
	kv := newMockKV()
	c := New(inner, kv, "m", 0, nil, zap.NewNop())

	res, err := c.Embed(context.Background(), "veterans phoenix")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TotalTokens != 10 {
		t.Errorf("miss must report provider tokens, got %d", res.TotalTokens)
	}

	res, err = c.Embed(context.Background(), "veterans phoenix")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("expected 1 provider call, got %d", inner.calls)
	}
	if res.TotalTokens != 0 {
		t.Errorf("hit must report zero tokens, got %d", res.TotalTokens)
	}
	if len(res.Embedding) != 3 || res.Embedding[2] != 0.3 {
		t.Errorf("unexpected cached vector %v", res.Embedding)
	}
}

func TestEmbed_KeyIncludesModel(t *testing.T) {
	kv := newMockKV()
	a := New(&mockEmbedder{vec: []float32{1}}, kv, "model-a", 0, nil, zap.NewNop())
	b := New(&mockEmbedder{vec: []float32{1}}, kv, "model-b", 0, nil, zap.NewNop())
	if a.key("x") == b.key("x") {
		t.Fatal("keys must differ across models")
	}
}

func TestEmbed_StoreErrorFallsThrough(t *testing.T) {
	inner := &mockEmbedder{vec: []float32{1}}
	kv := newMockKV()
	kv.getErr = errors.New("connection reset")
	c := New(inner, kv, "m", 0, nil, zap.NewNop())

	if _, err := c.Embed(context.Background(), "x"); err != nil {
		t.Fatalf("cache failure must not fail the call: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("expected provider call, got %d", inner.calls)
	}
}

func TestEmbed_CorruptEntryIgnored(t *testing.T) {
	inner := &mockEmbedder{vec: []float32{1}}
	kv := newMockKV()
	c := New(inner, kv, "m", 0, nil, zap.NewNop())
	kv.data[c.key("x")] = []byte{1, 2, 3}

	if _, err := c.Embed(context.Background(), "x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("corrupt entry must be treated as a miss")
	}
}

func TestEmbed_InnerError(t *testing.T) {
	provErr := errors.New("rate limited")
	c := New(&mockEmbedder{err: provErr}, newMockKV(), "m", 0, nil, zap.NewNop())
	if _, err := c.Embed(context.Background(), "x"); !errors.Is(err, provErr) {
		t.Fatalf("expected wrapped provider error, got %v", err)
	}
}

func TestEmbed_TTL(t *testing.T) {
	kv := newMockKV()
	c := New(&mockEmbedder{vec: []float32{1}}, kv, "m", time.Hour, nil, zap.NewNop())
	if _, err := c.Embed(context.Background(), "x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kv.ttls[c.key("x")] != time.Hour {
		t.Errorf("expected entry stored with TTL, got %v", kv.ttls)
	}
}

func TestBatchEmbed_OnlyMissesReachProvider(t *testing.T) {
	inner := &mockEmbedder{tokens: 2}
	kv := newMockKV()
	c := New(inner, kv, "m", 0, nil, zap.NewNop())
	kv.data[c.key("b")] = encodeVector([]float32{42})

	res, err := c.BatchEmbed(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inner.batchTexts) != 1 || len(inner.batchTexts[0]) != 2 {
		t.Fatalf("expected one provider batch with 2 misses, got %v", inner.batchTexts)
	}
	if res.Embeddings[0][0] != 1 || res.Embeddings[1][0] != 42 || res.Embeddings[2][0] != 2 {
		t.Errorf("results out of order: %v", res.Embeddings)
	}
	if res.TotalTokens != 4 {
		t.Errorf("expected tokens for misses only, got %d", res.TotalTokens)
	}
	if _, ok := kv.data[c.key("c")]; !ok {
		t.Error("misses must be written back")
	}
}

func TestBatchEmbed_AllHits(t *testing.T) {
	inner := &mockEmbedder{}
	kv := newMockKV()
	c := New(inner, kv, "m", 0, nil, zap.NewNop())
	kv.data[c.key("a")] = encodeVector([]float32{7})

	res, err := c.BatchEmbed(context.Background(), []string{"a"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inner.batchTexts) != 0 {
		t.Error("provider must not be called when everything is cached")
	}
	if res.Embeddings[0][0] != 7 {
		t.Errorf("unexpected vector %v", res.Embeddings[0])
	}
}

func TestDecodeVector_RoundTrip(t *testing.T) {
	vec := []float32{0.5, -1.25, 3}
	got, err := decodeVector(encodeVector(vec))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range vec {
		if got[i] != vec[i] {
			t.Fatalf("got %v, want %v", got, vec)
		}
	}
	if _, err := decodeVector([]byte{1}); err == nil {
		t.Error("expected error for truncated data")
	}
}
