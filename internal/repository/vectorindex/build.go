package vectorindex

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/orgrank/internal/domain"
	"github.com/kailas-cloud/orgrank/internal/domain/org"
	"github.com/kailas-cloud/orgrank/internal/metrics"
)

// embedRecords vectorizes the index text of every record, normalized to unit length.
func embedRecords(ctx context.Context, emb domain.Embedder, records []org.Record) ([][]float32, error) {
	texts := make([]string, len(records))
	for i := range records {
		texts[i] = records[i].IndexText()
	}

	res, err := domain.EmbedAll(ctx, emb, texts)
	if err != nil {
		return nil, fmt.Errorf("embed catalog: %w", err)
	}
	if len(res.Embeddings) != len(records) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d records",
			domain.ErrEmbeddingProviderError, len(res.Embeddings), len(records))
	}

	dim := -1
	for i, v := range res.Embeddings {
		if dim < 0 {
			dim = len(v)
		}
		if len(v) != dim || dim == 0 {
			return nil, fmt.Errorf("%w: record %q has %d dimensions, want %d",
				domain.ErrVectorDimMismatch, records[i].ID, len(v), dim)
		}
		domain.Normalize(v)
	}
	return res.Embeddings, nil
}

// embedQuery vectorizes the query and reports token usage to the request collector.
func embedQuery(ctx context.Context, emb domain.Embedder, query string) ([]float32, error) {
	res, err := emb.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	domain.UsageFromContext(ctx).AddTokens(res.TotalTokens)
	return domain.Normalize(res.Embedding), nil
}

func observeBuild(backend string, start time.Time, n int) {
	metrics.IndexBuildDuration.WithLabelValues(backend).Observe(time.Since(start).Seconds())
	metrics.IndexDocuments.WithLabelValues(backend).Set(float64(n))
}
