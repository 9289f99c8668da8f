package vectorindex

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/orgrank/internal/db"
	"github.com/kailas-cloud/orgrank/internal/db/valkey"
	"github.com/kailas-cloud/orgrank/internal/domain"
	"github.com/kailas-cloud/orgrank/internal/domain/org"
	"github.com/kailas-cloud/orgrank/internal/domain/search/result"
)

// Hash fields written per record. Cause and rating filters run after
// retrieval, so only the id and the vector are stored.
const (
	fieldID     = "id"
	fieldVector = "vector"
)

const writeBatchSize = 500

type valkeyStore interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// ValkeyConfig names the FT index and tunes its HNSW graph.
type ValkeyConfig struct {
	IndexName       string
	KeyPrefix       string
	HNSWM           int
	HNSWEFConstruct int
}

// Valkey stores record vectors as hashes and queries them with FT.SEARCH KNN.
type Valkey struct {
	store  valkeyStore
	docs   domain.Embedder
	query  domain.Embedder
	cfg    ValkeyConfig
	logger *zap.Logger

	ready atomic.Bool
	count atomic.Int64
}

// NewValkey creates a Valkey-backed index. Empty names fall back to orgrank defaults.
func NewValkey(store valkeyStore, docs, query domain.Embedder, cfg ValkeyConfig, logger *zap.Logger) *Valkey {
	if cfg.IndexName == "" {
		cfg.IndexName = "orgrank_orgs"
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = domain.KeyPrefix + "org:"
	}
	return &Valkey{store: store, docs: docs, query: query, cfg: cfg, logger: logger}
}

// Build recreates the FT index and writes one hash per record.
func (v *Valkey) Build(ctx context.Context, records []org.Record) error {
	start := time.Now()
	vectors, err := embedRecords(ctx, v.docs, records)
	if err != nil {
		return err
	}
	if len(vectors) == 0 {
		v.count.Store(0)
		v.ready.Store(true)
		return nil
	}

	def, err := v.definition(len(vectors[0]))
	if err != nil {
		return err
	}
	if err := v.store.DropIndex(ctx, def.Name); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("drop index: %w", err)
	}
	if err := v.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index: %w", err)
	}

	for offset := 0; offset < len(records); offset += writeBatchSize {
		end := min(offset+writeBatchSize, len(records))
		items := make([]db.HashSetItem, 0, end-offset)
		for i := offset; i < end; i++ {
			items = append(items, v.hashItem(&records[i], vectors[i]))
		}
		if err := v.store.HSetMulti(ctx, items); err != nil {
			return fmt.Errorf("write records %d-%d: %w", offset, end, err)
		}
	}

	v.count.Store(int64(len(records)))
	v.ready.Store(true)
	observeBuild("valkey", start, len(records))
	v.logger.Info("Vector index built",
		zap.String("backend", "valkey"),
		zap.String("index", def.Name),
		zap.Stringer("schema", def),
		zap.Int("records", len(records)),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

func (v *Valkey) definition(dim int) (*db.IndexDefinition, error) {
	b := db.NewIndex(v.cfg.IndexName).
		Prefix(v.cfg.KeyPrefix).
		Tag(fieldID, "")
	if v.cfg.HNSWM > 0 {
		b = b.VectorHNSW(fieldVector, dim, db.DistanceCosine, v.cfg.HNSWM, v.cfg.HNSWEFConstruct)
	} else {
		b = b.VectorFlat(fieldVector, dim, db.DistanceCosine)
	}
	def, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("index definition: %w", err)
	}
	return def, nil
}

func (v *Valkey) hashItem(r *org.Record, vec []float32) db.HashSetItem {
	return db.HashSetItem{
		Key: v.cfg.KeyPrefix + r.ID,
		Fields: map[string]string{
			fieldID:     r.ID,
			fieldVector: valkey.VectorToBytes(vec),
		},
	}
}

// Search embeds the query and runs a KNN lookup.
func (v *Valkey) Search(ctx context.Context, query string, topK int) ([]result.Hit, error) {
	if !v.ready.Load() {
		return nil, domain.ErrIndexNotReady
	}
	if topK <= 0 || v.count.Load() == 0 {
		return nil, nil
	}

	qv, err := embedQuery(ctx, v.query, query)
	if err != nil {
		return nil, err
	}

	res, err := v.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    v.cfg.IndexName,
		VectorField:  fieldVector,
		Vector:       qv,
		K:            topK,
		ReturnFields: []string{fieldID},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSearchUnavailable, err)
	}

	hits := make([]result.Hit, 0, len(res.Entries))
	for _, e := range res.Entries {
		id := e.Fields[fieldID]
		if id == "" {
			id = strings.TrimPrefix(e.Key, v.cfg.KeyPrefix)
		}
		hits = append(hits, result.NewHit(id, e.Score))
	}
	return hits, nil
}

// Ready reports whether Build has completed.
func (v *Valkey) Ready() bool { return v.ready.Load() }

// Len returns the number of indexed records.
func (v *Valkey) Len() int { return int(v.count.Load()) }
