package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/orgrank/internal/config"
	"github.com/kailas-cloud/orgrank/internal/db/valkey"
	"github.com/kailas-cloud/orgrank/internal/domain"
	"github.com/kailas-cloud/orgrank/internal/domain/geo"
	"github.com/kailas-cloud/orgrank/internal/domain/intent"
	"github.com/kailas-cloud/orgrank/internal/domain/org"
	"github.com/kailas-cloud/orgrank/internal/domain/search/request"
	"github.com/kailas-cloud/orgrank/internal/domain/search/result"
	"github.com/kailas-cloud/orgrank/internal/metrics"
	"github.com/kailas-cloud/orgrank/internal/ranking"
	"github.com/kailas-cloud/orgrank/internal/repository/catalog"
	"github.com/kailas-cloud/orgrank/internal/repository/embcache"
	quotarepo "github.com/kailas-cloud/orgrank/internal/repository/quota"
	"github.com/kailas-cloud/orgrank/internal/repository/vectorindex"
	"github.com/kailas-cloud/orgrank/internal/transport/local"
	openaiEmb "github.com/kailas-cloud/orgrank/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/orgrank/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/orgrank/internal/usecase/health"
	searchuc "github.com/kailas-cloud/orgrank/internal/usecase/search"
)

// vectorIndex is what both index backends provide.
type vectorIndex interface {
	Build(ctx context.Context, records []org.Record) error
	Search(ctx context.Context, query string, topK int) ([]result.Hit, error)
	Ready() bool
	Len() int
}

// app is the composition root shared by serve and search.
type app struct {
	cfg     config.Config
	logger  *zap.Logger
	store   *valkey.Store
	catalog *catalog.Store
	index   vectorIndex
	search  *searchuc.Service
	health  *healthuc.Service
	limits  request.Limits
}

// newApp wires every component and builds the vector index.
func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	metrics.RegisterHTTPMetrics()
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()

	a := &app{cfg: cfg, logger: logger, limits: request.Limits{
		DefaultLimit: cfg.Search.DefaultLimit,
		MaxLimit:     cfg.Search.MaxLimit,
		DefaultTopK:  cfg.Search.DefaultTopK,
		MaxTopK:      cfg.Search.MaxTopK,
	}}

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	a.catalog = cat
	logger.Info("Catalog loaded", zap.String("path", cfg.Catalog.Path), zap.Int("records", cat.Len()))

	if cfg.NeedsDatabase() {
		if err := a.connect(ctx); err != nil {
			return nil, err
		}
	}

	docs, query, err := a.embedders(ctx)
	if err != nil {
		a.close()
		return nil, err
	}

	switch cfg.Index.Backend {
	case config.BackendValkey:
		a.index = vectorindex.NewValkey(a.store, docs, query, vectorindex.ValkeyConfig{
			IndexName:       cfg.Index.Name,
			KeyPrefix:       cfg.Index.KeyPrefix,
			HNSWM:           cfg.Index.HNSWM,
			HNSWEFConstruct: cfg.Index.HNSWEFConstruct,
		}, logger)
	default:
		a.index = vectorindex.NewMemory(docs, query, logger)
	}

	buildCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Index.BuildTimeoutSec)*time.Second)
	defer cancel()
	if err := a.index.Build(buildCtx, cat.All()); err != nil {
		a.close()
		return nil, fmt.Errorf("build %s index: %w", cfg.Index.Backend, err)
	}

	blender, err := ranking.NewBlender(cfg.Ranking.Weights, cfg.Ranking.PopularityHalf)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("ranking: %w", err)
	}

	a.search = searchuc.New(
		a.index,
		cat,
		intent.NewParser(cfg.Reference.Causes),
		geo.NewZipTable(zipPoints(cfg.Reference.ZipCodes)),
		blender,
		searchuc.Config{
			Timeout:            time.Duration(cfg.Search.TimeoutMs) * time.Millisecond,
			DefaultRadiusMiles: cfg.Search.DefaultRadiusMiles,
			FallbackQuery:      cfg.Search.FallbackQuery,
		},
	)

	var pinger healthuc.DBPinger
	if a.store != nil {
		pinger = a.store
	}
	var embCheck healthuc.EmbeddingChecker
	if hc, ok := query.(domain.HealthChecker); ok {
		embCheck = hc
	}
	a.health = healthuc.New(a.index, cat, pinger, embCheck)

	return a, nil
}

func (a *app) connect(ctx context.Context) error {
	store, err := valkey.NewStore(valkey.Config{
		Addrs:    a.cfg.Database.Addrs,
		Username: a.cfg.Database.Username,
		Password: a.cfg.Database.Password,
		DB:       a.cfg.Database.DB,
	})
	if err != nil {
		return fmt.Errorf("connect %s: %w", a.cfg.Database.Driver, err)
	}
	timeout := time.Duration(a.cfg.Database.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, timeout); err != nil {
		store.Close()
		return fmt.Errorf("%s not ready: %w", a.cfg.Database.Driver, err)
	}
	a.store = store
	a.logger.Info("Database connected",
		zap.String("driver", a.cfg.Database.Driver),
		zap.Strings("addrs", a.cfg.Database.Addrs),
	)
	return nil
}

// embedders assembles the decorator chains: provider -> cache -> quota -> instruction.
// Documents and queries share the provider and the quota but not the instruction.
func (a *app) embedders(ctx context.Context) (docs, query domain.Embedder, err error) {
	e := a.cfg.Embedding

	var base domain.Embedder
	model := e.Model
	switch e.Provider {
	case config.ProviderOpenAI:
		base = openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     e.APIKey,
			BaseURL:    e.BaseURL,
			Model:      e.Model,
			Dimensions: e.Dimensions,
			Provider:   e.Provider,
			Logger:     a.logger,
		})
	case config.ProviderLocal:
		base = local.New(e.Dimensions)
		model = local.Model
	default:
		return nil, nil, fmt.Errorf("unknown embedding provider %q", e.Provider)
	}

	quota := embeddinguc.NewQuota(e.Provider, e.Quota.DailyTokenLimit, embeddinguc.QuotaAction(e.Quota.Action), a.logger)
	if a.store != nil && e.Quota.DailyTokenLimit > 0 {
		quota = quota.WithStore(ctx, quotarepo.New(a.store, quotarepo.DefaultTTL))
	}

	chain := base
	if e.Cache.Enabled && a.store != nil {
		ttl := time.Duration(e.Cache.TTLHours) * time.Hour
		chain = embcache.New(base, a.store, model, ttl, metrics.EmbeddingCacheTotal, a.logger)
	}
	chain = embeddinguc.NewInstrumentedEmbedder(chain, e.Provider, model, quota, a.logger)

	return withInstruction(chain, e.DocumentInstruction), withInstruction(chain, e.QueryInstruction), nil
}

// withInstruction is outermost so the cache key includes the instruction.
func withInstruction(inner domain.Embedder, instruction string) domain.Embedder {
	if instruction == "" {
		return inner
	}
	return domain.NewInstructionEmbedder(inner, instruction)
}

func zipPoints(raw map[string][2]float64) map[string]geo.Point {
	out := make(map[string]geo.Point, len(raw))
	for zip, ll := range raw {
		out[zip] = geo.Point{Lat: ll[0], Lon: ll[1]}
	}
	return out
}

func (a *app) close() {
	if a.store != nil {
		a.store.Close()
		a.store = nil
	}
}
