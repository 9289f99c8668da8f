package embedding

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/orgrank/internal/domain"
	"github.com/kailas-cloud/orgrank/internal/metrics"
)

// MaxChunkSize bounds how many texts go into a single provider batch call.
const MaxChunkSize = 256

// QuotaChecker is the local view of Quota.
type QuotaChecker interface {
	Check(ctx context.Context) error
	Record(tokens int64)
	Remaining() int64
}

// InstrumentedEmbedder enforces the token quota and logs provider calls.
// Request, duration and token metrics belong to transport/openai.
type InstrumentedEmbedder struct {
	inner    domain.Embedder
	provider string
	model    string
	quota    QuotaChecker
	logger   *zap.Logger
}

// NewInstrumentedEmbedder wraps inner. quota may be nil.
func NewInstrumentedEmbedder(
	inner domain.Embedder, provider, model string,
	quota QuotaChecker, logger *zap.Logger,
) *InstrumentedEmbedder {
	return &InstrumentedEmbedder{
		inner:    inner,
		provider: provider,
		model:    model,
		quota:    quota,
		logger:   logger,
	}
}

// Embed checks the quota, delegates, and records usage.
func (e *InstrumentedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if err := e.checkQuota(ctx, 1); err != nil {
		return domain.EmbeddingResult{}, err
	}

	start := time.Now()
	res, err := e.inner.Embed(ctx, text)
	if err != nil {
		e.logger.Error("Embedding request failed",
			zap.String("provider", e.provider),
			zap.String("model", e.model),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}

	e.record(res.TotalTokens)
	e.logger.Debug("Embedding request completed",
		zap.String("provider", e.provider),
		zap.Duration("duration", time.Since(start)),
		zap.Int("dimensions", len(res.Embedding)),
		zap.Int("total_tokens", res.TotalTokens),
	)
	return res, nil
}

// BatchEmbed splits texts into MaxChunkSize chunks, re-checking the quota before each.
func (e *InstrumentedEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}

	start := time.Now()
	out := domain.BatchEmbeddingResult{Embeddings: make([][]float32, 0, len(texts))}
	for offset := 0; offset < len(texts); offset += MaxChunkSize {
		if err := e.checkQuota(ctx, len(texts)); err != nil {
			return domain.BatchEmbeddingResult{}, err
		}

		chunk := texts[offset:min(offset+MaxChunkSize, len(texts))]
		res, err := domain.EmbedAll(ctx, e.inner, chunk)
		if err != nil {
			e.logger.Error("Batch embedding request failed",
				zap.String("provider", e.provider),
				zap.String("model", e.model),
				zap.Int("chunk_offset", offset),
				zap.Int("chunk_size", len(chunk)),
				zap.Error(err),
			)
			return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed chunk %d: %w", offset, err)
		}
		if len(res.Embeddings) != len(chunk) {
			return domain.BatchEmbeddingResult{}, fmt.Errorf(
				"%w: got %d embeddings for %d texts", domain.ErrEmbeddingProviderError, len(res.Embeddings), len(chunk))
		}

		e.record(res.TotalTokens)
		out.Embeddings = append(out.Embeddings, res.Embeddings...)
		out.PromptTokens += res.PromptTokens
		out.TotalTokens += res.TotalTokens
	}

	e.logger.Debug("Batch embedding completed",
		zap.String("provider", e.provider),
		zap.Duration("duration", time.Since(start)),
		zap.Int("batch_size", len(texts)),
		zap.Int("total_tokens", out.TotalTokens),
	)
	return out, nil
}

func (e *InstrumentedEmbedder) checkQuota(ctx context.Context, size int) error {
	if e.quota == nil {
		return nil
	}
	if err := e.quota.Check(ctx); err != nil {
		e.logger.Error("Embedding quota exceeded",
			zap.String("provider", e.provider),
			zap.Int("batch_size", size),
			zap.Error(err),
		)
		return fmt.Errorf("quota check: %w", err)
	}
	return nil
}

func (e *InstrumentedEmbedder) record(tokens int) {
	if e.quota == nil || tokens <= 0 {
		return
	}
	e.quota.Record(int64(tokens))
	metrics.EmbeddingQuotaTokensRemaining.WithLabelValues(e.provider).Set(float64(e.quota.Remaining()))
}

// HealthCheck forwards to the inner embedder when it supports health checks.
func (e *InstrumentedEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := e.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // transparent decorator
	}
	return nil
}
