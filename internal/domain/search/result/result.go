package result

import (
	"github.com/kailas-cloud/orgrank/internal/domain/intent"
	"github.com/kailas-cloud/orgrank/internal/domain/org"
	"github.com/kailas-cloud/orgrank/internal/domain/search/sortby"
)

// Hit is one nearest-neighbour match: an item id and its similarity.
type Hit struct {
	id    string
	score float64
}

// NewHit creates a nearest-neighbour hit.
func NewHit(id string, score float64) Hit {
	return Hit{id: id, score: score}
}

// ID returns the record identifier.
func (h Hit) ID() string { return h.id }

// Score returns the raw similarity reported by the index.
func (h Hit) Score() float64 { return h.score }

// Candidate is a scored record for one query. It is never persisted.
type Candidate struct {
	Record        *org.Record
	Semantic      float64
	DistanceMiles *float64
	GeoScore      float64
	Trust         float64
	Popularity    float64
	FinalScore    float64
	Explain       string
}

// ID returns the record identifier.
func (c *Candidate) ID() string { return c.Record.ID }

// Page is one page of ordered candidates plus the context that produced it.
type Page struct {
	Query  string
	Intent intent.Intent
	Sort   sortby.Mode
	Page   int
	Limit  int
	// Total counts candidates across all pages.
	Total int
	Items []Candidate
}
