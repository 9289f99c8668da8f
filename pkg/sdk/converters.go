package orgrank

import (
	"fmt"
	"math"

	"github.com/kailas-cloud/orgrank/internal/domain"
	"github.com/kailas-cloud/orgrank/internal/domain/search/filter"
	"github.com/kailas-cloud/orgrank/internal/domain/search/request"
	"github.com/kailas-cloud/orgrank/internal/domain/search/result"
)

func toRequest(q *Query, lim request.Limits) (request.Request, error) {
	f, err := filter.New(q.Causes, q.MinRating)
	if err != nil {
		return request.Request{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	p := request.Params{
		Query:   q.Text,
		Filters: f,
		Sort:    q.Sort,
		Page:    q.Page,
		Limit:   q.Limit,
		TopK:    q.TopK,
	}
	if q.Zip != "" || q.RadiusMiles != 0 {
		p.Location = &request.Location{Zip: q.Zip, RadiusMiles: q.RadiusMiles}
	}
	req, err := request.New(p, lim)
	if err != nil {
		return request.Request{}, fmt.Errorf("query: %w", err)
	}
	return req, nil
}

func fromPage(p *result.Page) *Page {
	out := &Page{
		Query:   p.Query,
		Sort:    string(p.Sort),
		Page:    p.Page,
		Limit:   p.Limit,
		Total:   p.Total,
		Results: make([]Result, len(p.Items)),
		Intent: Intent{
			Causes:       p.Intent.Causes(),
			DonationType: string(p.Intent.DonationType()),
		},
	}
	if loc := p.Intent.Location(); loc != nil {
		out.Intent.Zip = loc.Zip
		out.Intent.RadiusMiles = loc.RadiusMiles
	}
	for i := range p.Items {
		c := &p.Items[i]
		out.Results[i] = Result{
			Record: *c.Record,
			Scores: Scores{
				Semantic: round3(c.Semantic),
				Geo:      round3(c.GeoScore),
				Final:    round3(c.FinalScore),
			},
			DistanceMiles: c.DistanceMiles,
			Explain:       c.Explain,
		}
	}
	return out
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
