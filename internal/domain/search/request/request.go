package request

import (
	"fmt"

	"github.com/kailas-cloud/orgrank/internal/domain"
	"github.com/kailas-cloud/orgrank/internal/domain/search/filter"
	"github.com/kailas-cloud/orgrank/internal/domain/search/sortby"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 4096
	DefaultLimit   = 10
	MaxLimit       = 50
	DefaultTopK    = 100
	MaxTopK        = 500
	// MaxRadiusMiles caps explicit radii.
	MaxRadiusMiles = 200
)

// Limits bounds page size and candidate pool size.
type Limits struct {
	DefaultLimit int
	MaxLimit     int
	DefaultTopK  int
	MaxTopK      int
}

// DefaultLimits returns the built-in limits.
func DefaultLimits() Limits {
	return Limits{
		DefaultLimit: DefaultLimit,
		MaxLimit:     MaxLimit,
		DefaultTopK:  DefaultTopK,
		MaxTopK:      MaxTopK,
	}
}

// Location is an explicit user location. It overrides what the query text says.
type Location struct {
	Zip         string
	RadiusMiles float64
}

// Params are raw request values before validation.
type Params struct {
	Query    string
	Location *Location
	Filters  filter.Filters
	Sort     string
	Page     int
	Limit    int
	TopK     int
}

// Request is a validated search request.
type Request struct {
	query    string
	location *Location
	filters  filter.Filters
	sort     sortby.Mode
	page     int
	limit    int
	topK     int
}

// New validates and normalizes search parameters.
// Defaults: sort=relevance, page=1, limit and topK from lim. TopK is raised to at least limit.
func New(p Params, lim Limits) (Request, error) {
	if len(p.Query) > MaxQueryLength {
		return Request{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidRequest, MaxQueryLength)
	}
	s, err := sortby.Parse(p.Sort)
	if err != nil {
		return Request{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}

	var loc *Location
	if p.Location != nil {
		l := *p.Location
		if l.RadiusMiles < 0 {
			return Request{}, fmt.Errorf("%w: radius_miles must be positive", domain.ErrInvalidRequest)
		}
		if l.RadiusMiles > MaxRadiusMiles {
			l.RadiusMiles = MaxRadiusMiles
		}
		if l.Zip != "" || l.RadiusMiles > 0 {
			loc = &l
		}
	}

	page := p.Page
	if page < 1 {
		page = 1
	}
	limit := p.Limit
	if limit <= 0 {
		limit = lim.DefaultLimit
	}
	if limit > lim.MaxLimit {
		limit = lim.MaxLimit
	}
	topK := p.TopK
	if topK <= 0 {
		topK = lim.DefaultTopK
	}
	if topK > lim.MaxTopK {
		topK = lim.MaxTopK
	}
	if topK < limit {
		topK = limit
	}

	return Request{
		query:    p.Query,
		location: loc,
		filters:  p.Filters,
		sort:     s,
		page:     page,
		limit:    limit,
		topK:     topK,
	}, nil
}

// Query returns the raw query text.
func (r *Request) Query() string { return r.query }

// Location returns the explicit location, nil when none was given.
func (r *Request) Location() *Location { return r.location }

// Filters returns the explicit filters.
func (r *Request) Filters() filter.Filters { return r.filters }

// Sort returns the ordering policy.
func (r *Request) Sort() sortby.Mode { return r.sort }

// Page returns the 1-indexed page number.
func (r *Request) Page() int { return r.page }

// Limit returns the page size.
func (r *Request) Limit() int { return r.limit }

// TopK returns the number of nearest-neighbour candidates to retrieve.
func (r *Request) TopK() int { return r.topK }
