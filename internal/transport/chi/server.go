// Package chi is the HTTP adapter: JSON endpoints over the search pipeline and the catalog.
package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	gochi "github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/orgrank/internal/domain"
	"github.com/kailas-cloud/orgrank/internal/domain/search/filter"
	"github.com/kailas-cloud/orgrank/internal/domain/search/request"
	"github.com/kailas-cloud/orgrank/internal/metrics"
	healthuc "github.com/kailas-cloud/orgrank/internal/usecase/health"
	"github.com/kailas-cloud/orgrank/internal/version"
)

// maxBodyBytes bounds POST /api/search payloads.
const maxBodyBytes = 1 << 20

var endpoints = []string{
	"GET /health",
	"GET /api/orgs",
	"GET /api/orgs/{id}",
	"POST /api/search",
	"GET /search?q=&zip=&radius=&cause=&sort=&page=&limit=&top_k=&min_rating=",
	"GET /metrics",
}

// Server serves the HTTP API.
type Server struct {
	search        Searcher
	catalog       Catalog
	health        HealthChecker
	limits        request.Limits
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates a Server.
func NewServer(search Searcher, catalog Catalog, health HealthChecker, limits request.Limits, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		search:        search,
		catalog:       catalog,
		health:        health,
		limits:        limits,
		logger:        logger,
		errorHandlers: defaultErrorHandlers(),
	}
}

// Routes registers the API routes on r.
func (s *Server) Routes(r gochi.Router) {
	r.Get("/", s.Index)
	r.Get("/health", s.HealthCheck)
	r.Get("/api/orgs", s.ListOrgs)
	r.Get("/api/orgs/{id}", s.GetOrg)
	r.Post("/api/search", s.SearchStructured)
	r.Get("/search", s.SearchText)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

// NewRouter builds the full middleware stack around the server routes.
func NewRouter(s *Server) http.Handler {
	r := gochi.NewRouter()
	r.Use(JSONRecoverer(s.logger))
	r.Use(chimw.RequestID)
	r.Use(WideEvent(s.logger))
	r.Use(metrics.Middleware())
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})
	s.Routes(r)
	return r
}

// Index describes the service.
func (s *Server) Index(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, descriptorResponse{
		Message:   "orgrank search API",
		Version:   version.String(),
		Endpoints: endpoints,
	})
}

// HealthCheck reports component health. An unhealthy service answers 503.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	rep := s.health.Check(r.Context())

	checks := make(map[string]string, len(rep.Checks))
	for k, v := range rep.Checks {
		checks[k] = string(v)
	}
	status := http.StatusOK
	if rep.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, healthResponse{
		Status:  string(rep.Status),
		Count:   rep.Count,
		Indexed: rep.Indexed,
		Checks:  checks,
		TS:      rep.Timestamp.Format(time.RFC3339),
	})
}

// ListOrgs returns the full catalog.
func (s *Server) ListOrgs(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, catalogResponse{Success: true, Nonprofits: s.catalog.All()})
}

// GetOrg returns one record by id.
func (s *Server) GetOrg(w http.ResponseWriter, r *http.Request) {
	rec, err := s.catalog.Get(gochi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orgResponse{Success: true, Nonprofit: rec})
}

// SearchStructured handles POST /api/search.
func (s *Server) SearchStructured(w http.ResponseWriter, r *http.Request) {
	var body searchBody
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		s.handleDomainError(w, fmt.Errorf("%w: invalid JSON body: %w", domain.ErrInvalidRequest, err))
		return
	}

	f, err := filter.New(body.causes(), body.minRating())
	if err != nil {
		s.handleDomainError(w, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err))
		return
	}
	p := body.params()
	p.Filters = f
	s.runSearch(w, r, p)
}

// SearchText handles GET /search with free-text parameters.
func (s *Server) SearchText(w http.ResponseWriter, r *http.Request) {
	p, err := paramsFromQuery(r)
	if err != nil {
		s.handleDomainError(w, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err))
		return
	}
	s.runSearch(w, r, p)
}

func (s *Server) runSearch(w http.ResponseWriter, r *http.Request, p request.Params) {
	req, err := request.New(p, s.limits)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	ctx, usage := domain.NewContextWithUsage(r.Context())
	page, err := s.search.Search(ctx, &req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, searchResponseFromPage(page))
}

func paramsFromQuery(r *http.Request) (request.Params, error) {
	q := r.URL.Query()

	p := request.Params{Query: q.Get("query"), Sort: q.Get("sort")}
	if p.Query == "" {
		p.Query = q.Get("q")
	}

	var err error
	if p.Page, err = intParam(q.Get("page"), "page"); err != nil {
		return request.Params{}, err
	}
	if p.Limit, err = intParam(q.Get("limit"), "limit"); err != nil {
		return request.Params{}, err
	}
	if p.TopK, err = intParam(q.Get("top_k"), "top_k"); err != nil {
		return request.Params{}, err
	}

	zip := strings.TrimSpace(q.Get("zip"))
	var radius float64
	if raw := q.Get("radius"); raw != "" {
		if radius, err = parseFloat(raw); err != nil {
			return request.Params{}, fmt.Errorf("radius must be a number, got %q", raw)
		}
	}
	if zip != "" || radius != 0 {
		p.Location = &request.Location{Zip: zip, RadiusMiles: radius}
	}

	var minRating *float64
	if raw := q.Get("min_rating"); raw != "" {
		v, perr := parseFloat(raw)
		if perr != nil {
			return request.Params{}, fmt.Errorf("min_rating must be a number, got %q", raw)
		}
		minRating = &v
	}
	if p.Filters, err = filter.New(q["cause"], minRating); err != nil {
		return request.Params{}, fmt.Errorf("filters: %w", err)
	}
	return p, nil
}

func intParam(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", name, raw)
	}
	return v, nil
}

// setEmbeddingHeaders reports query embedding token usage collected during the request.
func setEmbeddingHeaders(w http.ResponseWriter, u *domain.EmbeddingUsage) {
	if u == nil || !u.Used {
		return
	}
	w.Header().Set("X-Embedding-Tokens", strconv.Itoa(u.TotalTokens))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
