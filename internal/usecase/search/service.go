package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/orgrank/internal/domain"
	"github.com/kailas-cloud/orgrank/internal/domain/geo"
	"github.com/kailas-cloud/orgrank/internal/domain/intent"
	"github.com/kailas-cloud/orgrank/internal/domain/search/filter"
	"github.com/kailas-cloud/orgrank/internal/domain/search/request"
	"github.com/kailas-cloud/orgrank/internal/domain/search/result"
	"github.com/kailas-cloud/orgrank/internal/logger"
	"github.com/kailas-cloud/orgrank/internal/metrics"
)

// Pipeline defaults.
const (
	DefaultTimeout     = 5 * time.Second
	DefaultRadiusMiles = 25.0
	// FallbackQuery is sent to the index when the user query is empty.
	FallbackQuery = "nonprofit"
)

// Config tunes the search pipeline.
type Config struct {
	// Timeout bounds the nearest-neighbour call.
	Timeout time.Duration
	// DefaultRadiusMiles gates candidates when a location resolves without a radius.
	DefaultRadiusMiles float64
	FallbackQuery      string
}

// DefaultConfig returns the built-in pipeline settings.
func DefaultConfig() Config {
	return Config{
		Timeout:            DefaultTimeout,
		DefaultRadiusMiles: DefaultRadiusMiles,
		FallbackQuery:      FallbackQuery,
	}
}

// Service ranks catalog records against a search request.
type Service struct {
	nn      NearestNeighbors
	catalog Catalog
	parser  IntentParser
	zips    ZipResolver
	blender Blender
	cfg     Config
}

// New creates a search service. Zero fields in cfg fall back to DefaultConfig.
func New(
	nn NearestNeighbors, catalog Catalog, parser IntentParser,
	zips ZipResolver, blender Blender, cfg Config,
) *Service {
	def := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.DefaultRadiusMiles <= 0 {
		cfg.DefaultRadiusMiles = def.DefaultRadiusMiles
	}
	if cfg.FallbackQuery == "" {
		cfg.FallbackQuery = def.FallbackQuery
	}
	return &Service{
		nn:      nn,
		catalog: catalog,
		parser:  parser,
		zips:    zips,
		blender: blender,
		cfg:     cfg,
	}
}

// origin is the resolved user location for one request.
type origin struct {
	point  geo.Point
	radius float64
}

// Search runs the full pipeline: intent, retrieval, radius gate, filters, blend, order, page, explain.
func (s *Service) Search(ctx context.Context, req *request.Request) (*result.Page, error) {
	start := time.Now()
	page, err := s.search(ctx, req)

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.SearchRequestsTotal.WithLabelValues(string(req.Sort()), status).Inc()
	metrics.SearchDuration.WithLabelValues(string(req.Sort())).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}
	metrics.SearchCandidates.Observe(float64(page.Total))

	logger.FromContext(ctx).Debug("Search completed",
		zap.String("query", page.Query),
		zap.Strings("causes", page.Intent.Causes()),
		zap.String("sort", string(page.Sort)),
		zap.Int("total", page.Total),
		zap.Int("returned", len(page.Items)),
	)
	return page, nil
}

func (s *Service) search(ctx context.Context, req *request.Request) (*result.Page, error) {
	query := strings.TrimSpace(req.Query())
	in := s.parser.Parse(query)

	filters := mergeFilters(req.Filters(), in)
	loc := s.resolveOrigin(req.Location(), in.Location())

	hits, err := s.retrieve(ctx, query, req.TopK())
	if err != nil {
		return nil, err
	}

	cands, err := s.enrich(hits, loc)
	if err != nil {
		return nil, err
	}
	cands = applyFilters(cands, filters)
	for i := range cands {
		c := &cands[i]
		c.FinalScore = s.blender.Blend(c.Semantic, c.GeoScore, c.Trust, c.Popularity)
	}

	orderCandidates(cands, req.Sort(), loc != nil)
	items := paginate(cands, req.Page(), req.Limit())
	for i := range items {
		items[i].Explain = explain(&items[i], in, filters)
	}

	return &result.Page{
		Query:  query,
		Intent: in,
		Sort:   req.Sort(),
		Page:   req.Page(),
		Limit:  req.Limit(),
		Total:  len(cands),
		Items:  items,
	}, nil
}

// mergeFilters fills in intent causes when the request carries none.
func mergeFilters(f filter.Filters, in intent.Intent) filter.Filters {
	if f.HasCauses() {
		return f
	}
	if causes := in.Causes(); causes != nil {
		return f.WithCauses(causes)
	}
	return f
}

// resolveOrigin prefers the explicit zip and radius over the intent's.
// An unknown zip yields no origin, which disables geo scoring and radius gating.
func (s *Service) resolveOrigin(explicit *request.Location, parsed *intent.Location) *origin {
	var zip string
	var radius float64
	if explicit != nil {
		zip, radius = explicit.Zip, explicit.RadiusMiles
	}
	if parsed != nil {
		if zip == "" {
			zip = parsed.Zip
		}
		if radius <= 0 {
			radius = parsed.RadiusMiles
		}
	}
	if radius <= 0 {
		radius = s.cfg.DefaultRadiusMiles
	}
	if zip == "" {
		return nil
	}
	p, ok := s.zips.Lookup(zip)
	if !ok {
		return nil
	}
	return &origin{point: p, radius: radius}
}

func (s *Service) retrieve(ctx context.Context, query string, topK int) ([]result.Hit, error) {
	if query == "" {
		query = s.cfg.FallbackQuery
	}

	nnCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	hits, err := s.nn.Search(nnCtx, query, topK)
	if err != nil {
		if errors.Is(err, domain.ErrIndexNotReady) || errors.Is(err, domain.ErrSearchUnavailable) {
			return nil, fmt.Errorf("nearest neighbours: %w", err)
		}
		return nil, fmt.Errorf("%w: nearest neighbours: %w", domain.ErrSearchUnavailable, err)
	}
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}
