package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/orgrank/internal/db"
	"github.com/kailas-cloud/orgrank/internal/domain"
)

var keyPrefix = domain.KeyPrefix + "emb:"

type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedEmbedder memoizes vectors per (model, text) in the key-value store.
// Cache failures are logged and never fail the call.
type CachedEmbedder struct {
	inner   domain.Embedder
	store   store
	model   string
	ttl     time.Duration
	counter *prometheus.CounterVec
	logger  *zap.Logger
}

// New creates a caching decorator. A zero ttl stores entries without expiry.
// counter takes a single "result" label (hit/miss) and may be nil.
func New(
	inner domain.Embedder, s store, model string, ttl time.Duration,
	counter *prometheus.CounterVec, logger *zap.Logger,
) *CachedEmbedder {
	return &CachedEmbedder{
		inner:   inner,
		store:   s,
		model:   model,
		ttl:     ttl,
		counter: counter,
		logger:  logger,
	}
}

// Embed returns the cached vector (zero tokens) or calls the inner embedder.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	key := c.key(text)
	if vec, ok := c.load(ctx, key); ok {
		c.observe("hit", 1)
		return domain.EmbeddingResult{Embedding: vec}, nil
	}
	c.observe("miss", 1)

	res, err := c.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", err)
	}
	c.save(ctx, key, res.Embedding)
	return res, nil
}

// BatchEmbed serves hits from cache and sends only the misses to the inner embedder.
func (c *CachedEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	out := domain.BatchEmbeddingResult{Embeddings: make([][]float32, len(texts))}
	keys := make([]string, len(texts))
	var missIdx []int
	var missTexts []string

	for i, text := range texts {
		keys[i] = c.key(text)
		if vec, ok := c.load(ctx, keys[i]); ok {
			out.Embeddings[i] = vec
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}
	c.observe("hit", len(texts)-len(missIdx))
	c.observe("miss", len(missIdx))
	if len(missTexts) == 0 {
		return out, nil
	}

	res, err := domain.EmbedAll(ctx, c.inner, missTexts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("embed misses: %w", err)
	}
	if len(res.Embeddings) != len(missTexts) {
		return domain.BatchEmbeddingResult{}, fmt.Errorf(
			"%w: got %d embeddings for %d texts", domain.ErrEmbeddingProviderError, len(res.Embeddings), len(missTexts))
	}
	for j, i := range missIdx {
		out.Embeddings[i] = res.Embeddings[j]
		c.save(ctx, keys[i], res.Embeddings[j])
	}
	out.PromptTokens = res.PromptTokens
	out.TotalTokens = res.TotalTokens
	return out, nil
}

// HealthCheck forwards to the inner embedder when it supports health checks.
func (c *CachedEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := c.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // transparent decorator
	}
	return nil
}

func (c *CachedEmbedder) observe(result string, n int) {
	if c.counter != nil && n > 0 {
		c.counter.WithLabelValues(result).Add(float64(n))
	}
}

func (c *CachedEmbedder) key(text string) string {
	h := sha256.Sum256([]byte(c.model + "\x00" + text))
	return keyPrefix + hex.EncodeToString(h[:])
}

func (c *CachedEmbedder) load(ctx context.Context, key string) ([]float32, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to read cached embedding", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}
	vec, err := decodeVector(data)
	if err != nil {
		c.logger.Warn("Corrupt cached embedding", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return vec, true
}

func (c *CachedEmbedder) save(ctx context.Context, key string, vec []float32) {
	data := encodeVector(vec)
	var err error
	if c.ttl > 0 {
		err = c.store.SetWithTTL(ctx, key, data, c.ttl)
	} else {
		err = c.store.Set(ctx, key, data)
	}
	if err != nil {
		c.logger.Warn("Failed to cache embedding", zap.String("key", key), zap.Error(err))
	}
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid cached vector: len=%d not a multiple of 4", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}
