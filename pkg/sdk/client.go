package orgrank

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/orgrank/internal/db/valkey"
	"github.com/kailas-cloud/orgrank/internal/domain"
	"github.com/kailas-cloud/orgrank/internal/domain/geo"
	"github.com/kailas-cloud/orgrank/internal/domain/intent"
	"github.com/kailas-cloud/orgrank/internal/domain/org"
	"github.com/kailas-cloud/orgrank/internal/domain/search/request"
	"github.com/kailas-cloud/orgrank/internal/domain/search/result"
	"github.com/kailas-cloud/orgrank/internal/ranking"
	"github.com/kailas-cloud/orgrank/internal/repository/catalog"
	"github.com/kailas-cloud/orgrank/internal/repository/vectorindex"
	"github.com/kailas-cloud/orgrank/internal/transport/local"
	healthuc "github.com/kailas-cloud/orgrank/internal/usecase/health"
	searchuc "github.com/kailas-cloud/orgrank/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces, swapped for mocks in tests.
type searchUseCase interface {
	Search(ctx context.Context, req *request.Request) (*result.Page, error)
}

type catalogReader interface {
	All() []org.Record
	Get(id string) (*org.Record, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

type vectorIndex interface {
	Build(ctx context.Context, records []org.Record) error
	Search(ctx context.Context, query string, topK int) ([]result.Hit, error)
	Ready() bool
	Len() int
}

// Client is the orgrank SDK entry point. It is safe for concurrent use.
type Client struct {
	store     *valkey.Store
	catalog   catalogReader
	searchSvc searchUseCase
	healthSvc healthUseCase
	limits    request.Limits
	obs       *observer
}

// New loads the catalog, builds the vector index and returns a ready client.
// ctx bounds the database readiness check and the index build.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		weights:        ranking.DefaultWeights(),
		popularityHalf: ranking.DefaultPopularityHalf,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	cat, err := loadCatalog(cfg)
	if err != nil {
		return nil, err
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	var emb domain.Embedder
	if cfg.embedder != nil {
		emb = adaptEmbedder(cfg.embedder)
	} else {
		emb = local.New(cfg.dimensions)
	}

	c := &Client{catalog: cat, limits: request.DefaultLimits(), obs: obs}

	var index vectorIndex
	if len(cfg.addrs) > 0 {
		if c.store, err = connect(ctx, cfg); err != nil {
			return nil, err
		}
		index = vectorindex.NewValkey(c.store, emb, emb, vectorindex.ValkeyConfig{
			IndexName:       cfg.indexName,
			HNSWM:           cfg.hnswM,
			HNSWEFConstruct: cfg.hnswEFConstruct,
		}, zap.NewNop())
	} else {
		index = vectorindex.NewMemory(emb, emb, zap.NewNop())
	}

	start := time.Now()
	err = index.Build(ctx, cat.All())
	obs.observe("index.build", start, err, "records", cat.Len())
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("orgrank: build index: %w", err)
	}

	blender, err := ranking.NewBlender(cfg.weights, cfg.popularityHalf)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("orgrank: %w", err)
	}

	c.searchSvc = searchuc.New(
		index, cat,
		intent.NewParser(cfg.causes),
		geo.NewZipTable(cfg.zips),
		blender,
		searchuc.Config{Timeout: cfg.searchTimeout, DefaultRadiusMiles: cfg.defaultRadius},
	)

	var pinger healthuc.DBPinger
	if c.store != nil {
		pinger = c.store
	}
	c.healthSvc = healthuc.New(index, cat, pinger, nil)
	return c, nil
}

func loadCatalog(cfg *clientConfig) (*catalog.Store, error) {
	switch {
	case cfg.catalogPath != "":
		cat, err := catalog.Load(cfg.catalogPath)
		if err != nil {
			return nil, fmt.Errorf("orgrank: %w", err)
		}
		return cat, nil
	case len(cfg.records) > 0:
		cat, err := catalog.New(cfg.records)
		if err != nil {
			return nil, fmt.Errorf("orgrank: %w", err)
		}
		return cat, nil
	default:
		return nil, errors.New("orgrank: catalog required (use WithCatalogFile or WithRecords)")
	}
}

func connect(ctx context.Context, cfg *clientConfig) (*valkey.Store, error) {
	switch cfg.driver {
	case "valkey", "redis":
	default:
		return nil, fmt.Errorf("orgrank: unknown driver %q", cfg.driver)
	}
	s, err := valkey.NewStore(valkey.Config{Addrs: cfg.addrs, Password: cfg.password})
	if err != nil {
		return nil, fmt.Errorf("orgrank: create %s store: %w", cfg.driver, err)
	}
	if err := s.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		s.Close()
		return nil, fmt.Errorf("orgrank: %s not ready: %w", cfg.driver, err)
	}
	return s, nil
}

// Close releases the database connection, if any.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
		c.store = nil
	}
}

// Search ranks the catalog against q.
func (c *Client) Search(ctx context.Context, q Query) (page *Page, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err, "query", q.Text) }()

	req, err := toRequest(&q, c.limits)
	if err != nil {
		return nil, err
	}
	p, err := c.searchSvc.Search(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return fromPage(p), nil
}

// Org returns one record by id. Unknown ids return ErrNotFound.
func (c *Client) Org(id string) (rec Record, err error) {
	start := time.Now()
	defer func() { c.obs.observe("org.get", start, err, "id", id) }()

	r, err := c.catalog.Get(id)
	if err != nil {
		return Record{}, fmt.Errorf("get org: %w", err)
	}
	return *r, nil
}

// Orgs returns the whole catalog in file order.
func (c *Client) Orgs() []Record {
	return c.catalog.All()
}

// Health checks the index and, when configured, the database.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status:  string(report.Status),
		Checks:  checks,
		Count:   report.Count,
		Indexed: report.Indexed,
	}
}
