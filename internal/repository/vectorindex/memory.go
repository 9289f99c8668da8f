package vectorindex

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/orgrank/internal/domain"
	"github.com/kailas-cloud/orgrank/internal/domain/org"
	"github.com/kailas-cloud/orgrank/internal/domain/search/result"
)

// Memory is an exact inner-product index held in process.
type Memory struct {
	docs   domain.Embedder
	query  domain.Embedder
	logger *zap.Logger

	mu      sync.RWMutex
	ids     []string
	vectors [][]float32
	ready   bool
}

// NewMemory creates an empty index. docs embeds records, query embeds search text.
func NewMemory(docs, query domain.Embedder, logger *zap.Logger) *Memory {
	return &Memory{docs: docs, query: query, logger: logger}
}

// Build embeds records and replaces the index contents.
func (m *Memory) Build(ctx context.Context, records []org.Record) error {
	start := time.Now()
	vectors, err := embedRecords(ctx, m.docs, records)
	if err != nil {
		return err
	}
	ids := make([]string, len(records))
	for i := range records {
		ids[i] = records[i].ID
	}

	m.mu.Lock()
	m.ids, m.vectors, m.ready = ids, vectors, true
	m.mu.Unlock()

	observeBuild("memory", start, len(ids))
	m.logger.Info("Vector index built",
		zap.String("backend", "memory"),
		zap.Int("records", len(ids)),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

// Search returns up to topK hits by descending similarity, ties by catalog order.
func (m *Memory) Search(ctx context.Context, query string, topK int) ([]result.Hit, error) {
	if !m.Ready() {
		return nil, domain.ErrIndexNotReady
	}
	if topK <= 0 {
		return nil, nil
	}

	qv, err := embedQuery(ctx, m.query, query)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	hits := make([]result.Hit, 0, len(m.ids))
	for i, v := range m.vectors {
		score, err := domain.Dot(qv, v)
		if err != nil {
			return nil, err //nolint:wrapcheck // sentinel carries the dimensions
		}
		hits = append(hits, result.NewHit(m.ids[i], score))
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score() > hits[j].Score() })
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// Ready reports whether Build has completed.
func (m *Memory) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ready
}

// Len returns the number of indexed records.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.ids)
}
