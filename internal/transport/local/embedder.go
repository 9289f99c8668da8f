// Package local is an offline embedding provider based on feature hashing.
// It needs no network and no model files, which makes it the default for
// development and for tests that exercise the full pipeline.
package local

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"

	"github.com/kailas-cloud/orgrank/internal/domain"
	"github.com/kailas-cloud/orgrank/internal/metrics"
)

// DefaultDimensions is the vector width used when none is configured.
const DefaultDimensions = 256

// Model is the model label reported in metrics and cache keys.
const Model = "hashing-v1"

// Embedder maps text onto a fixed-width vector by hashing word unigrams and bigrams.
// Identical text always yields the identical vector.
type Embedder struct {
	dims     int
	provider string
}

var (
	_ domain.Embedder      = (*Embedder)(nil)
	_ domain.BatchEmbedder = (*Embedder)(nil)
	_ domain.HealthChecker = (*Embedder)(nil)
)

// New creates a hashing embedder. dims <= 0 selects DefaultDimensions.
func New(dims int) *Embedder {
	if dims <= 0 {
		dims = DefaultDimensions
	}
	return &Embedder{dims: dims, provider: "local"}
}

// Dimensions returns the vector width.
func (e *Embedder) Dimensions() int { return e.dims }

// Embed vectorizes one text. Token usage counts words.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.EmbeddingResult{}, err //nolint:wrapcheck // context error
	}
	vec, n := e.vectorize(text)
	e.record(n)
	return domain.EmbeddingResult{Embedding: vec, PromptTokens: n, TotalTokens: n}, nil
}

// BatchEmbed vectorizes texts in order.
func (e *Embedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	out := domain.BatchEmbeddingResult{Embeddings: make([][]float32, len(texts))}
	for i, t := range texts {
		if err := ctx.Err(); err != nil {
			return domain.BatchEmbeddingResult{}, err //nolint:wrapcheck // context error
		}
		vec, n := e.vectorize(t)
		out.Embeddings[i] = vec
		out.PromptTokens += n
		out.TotalTokens += n
	}
	e.record(out.TotalTokens)
	return out, nil
}

// HealthCheck always succeeds.
func (e *Embedder) HealthCheck(context.Context) error { return nil }

func (e *Embedder) vectorize(text string) ([]float32, int) {
	words := tokenize(text)
	vec := make([]float32, e.dims)
	for i, w := range words {
		e.add(vec, w, 1)
		if i > 0 {
			e.add(vec, words[i-1]+" "+w, 0.5)
		}
	}
	return domain.Normalize(vec), len(words)
}

// add hashes a feature into a bucket; one hash bit picks the sign so collisions cancel on average.
func (e *Embedder) add(vec []float32, feature string, weight float32) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()
	idx := int(sum % uint64(e.dims)) //nolint:gosec // dims is positive and small
	if sum&(1<<63) != 0 {
		weight = -weight
	}
	vec[idx] += weight
}

func (e *Embedder) record(tokens int) {
	metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, Model, "success").Inc()
	metrics.EmbeddingTokensTotal.WithLabelValues(e.provider, Model, "total").Add(float64(tokens))
}

// tokenize lower-cases text and splits it on anything that is not a letter or digit.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
