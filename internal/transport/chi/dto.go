package chi

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kailas-cloud/orgrank/internal/domain/intent"
	"github.com/kailas-cloud/orgrank/internal/domain/org"
	"github.com/kailas-cloud/orgrank/internal/domain/search/request"
	"github.com/kailas-cloud/orgrank/internal/domain/search/result"
)

// searchBody is the POST /api/search payload.
type searchBody struct {
	Query    string        `json:"query"`
	Location *locationBody `json:"location"`
	Filters  *filtersBody  `json:"filters"`
	Sort     string        `json:"sort"`
	TopK     int           `json:"top_k"`
	Page     int           `json:"page"`
	Limit    int           `json:"limit"`
}

type locationBody struct {
	Zip         string   `json:"zip"`
	RadiusMiles *float64 `json:"radius_miles"`
}

// filtersBody accepts "cause" and "causes" interchangeably.
type filtersBody struct {
	Cause     stringList `json:"cause"`
	Causes    stringList `json:"causes"`
	MinRating *flexFloat `json:"min_rating"`
}

// stringList decodes either a single string or an array of strings.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		if one != "" {
			*l = stringList{one}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("expected string or array of strings")
	}
	*l = many
	return nil
}

// flexFloat decodes a JSON number or a numeric string.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexFloat(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("min_rating must be a number")
	}
	v, err := parseFloat(s)
	if err != nil {
		return fmt.Errorf("min_rating must be a number, got %q", s)
	}
	*f = flexFloat(v)
	return nil
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a finite number: %q", s)
	}
	return v, nil
}

func (b *searchBody) params() request.Params {
	p := request.Params{
		Query: b.Query,
		Sort:  b.Sort,
		Page:  b.Page,
		Limit: b.Limit,
		TopK:  b.TopK,
	}
	if b.Location != nil {
		p.Location = &request.Location{Zip: b.Location.Zip}
		if b.Location.RadiusMiles != nil {
			p.Location.RadiusMiles = *b.Location.RadiusMiles
		}
	}
	return p
}

func (b *searchBody) causes() []string {
	if b.Filters == nil {
		return nil
	}
	out := make([]string, 0, len(b.Filters.Cause)+len(b.Filters.Causes))
	out = append(out, b.Filters.Cause...)
	return append(out, b.Filters.Causes...)
}

func (b *searchBody) minRating() *float64 {
	if b.Filters == nil || b.Filters.MinRating == nil {
		return nil
	}
	v := float64(*b.Filters.MinRating)
	return &v
}

type scoresDTO struct {
	Semantic float64 `json:"semantic"`
	Geo      float64 `json:"geo"`
	Final    float64 `json:"final"`
}

// resultItem is the record's own fields plus score annotations.
type resultItem struct {
	*org.Record
	Scores  scoresDTO `json:"_scores"`
	Explain string    `json:"_explain"`
}

type searchResponse struct {
	Success    bool          `json:"success"`
	Query      string        `json:"query"`
	Intent     intent.Intent `json:"intent"`
	Sort       string        `json:"sort"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	TotalFound int           `json:"total_found"`
	Results    []resultItem  `json:"results"`
}

func searchResponseFromPage(p *result.Page) searchResponse {
	items := make([]resultItem, len(p.Items))
	for i := range p.Items {
		c := &p.Items[i]
		items[i] = resultItem{
			Record: c.Record,
			Scores: scoresDTO{
				Semantic: round3(c.Semantic),
				Geo:      round3(c.GeoScore),
				Final:    round3(c.FinalScore),
			},
			Explain: c.Explain,
		}
	}
	return searchResponse{
		Success:    true,
		Query:      p.Query,
		Intent:     p.Intent,
		Sort:       string(p.Sort),
		Page:       p.Page,
		Limit:      p.Limit,
		TotalFound: p.Total,
		Results:    items,
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

type catalogResponse struct {
	Success    bool         `json:"success"`
	Nonprofits []org.Record `json:"nonprofits"`
}

type orgResponse struct {
	Success   bool        `json:"success"`
	Nonprofit *org.Record `json:"nonprofit"`
}

type healthResponse struct {
	Status  string            `json:"status"`
	Count   int               `json:"count"`
	Indexed int               `json:"indexed"`
	Checks  map[string]string `json:"checks"`
	TS      string            `json:"ts"`
}

type descriptorResponse struct {
	Message   string   `json:"message"`
	Version   string   `json:"version"`
	Endpoints []string `json:"endpoints"`
}
