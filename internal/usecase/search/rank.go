package search

import (
	"errors"
	"fmt"

	"github.com/kailas-cloud/orgrank/internal/domain"
	"github.com/kailas-cloud/orgrank/internal/domain/geo"
	"github.com/kailas-cloud/orgrank/internal/domain/search/result"
)

// enrich resolves hits against the catalog and attaches semantic, geo, trust
// and popularity signals. With an origin, candidates beyond its radius are dropped.
func (s *Service) enrich(hits []result.Hit, loc *origin) ([]result.Candidate, error) {
	out := make([]result.Candidate, 0, len(hits))
	for _, h := range hits {
		rec, err := s.catalog.Get(h.ID())
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.NewUnknownCandidate(h.ID())
			}
			return nil, fmt.Errorf("catalog get %q: %w", h.ID(), err)
		}

		c := result.Candidate{
			Record:     rec,
			Semantic:   clamp01(h.Score()),
			Trust:      rec.TrustScore(),
			Popularity: max(0, rec.Popularity90d),
		}
		if loc != nil {
			d := loc.point.Between(geo.Point{Lat: rec.Location.Lat, Lon: rec.Location.Lon})
			if d > loc.radius {
				continue
			}
			c.DistanceMiles = &d
			c.GeoScore = geo.Score(d, loc.radius)
		}
		out = append(out, c)
	}
	return out, nil
}

func clamp01(v float64) float64 {
	if v < 0 || v != v {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
