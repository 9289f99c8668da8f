package search

import (
	"context"

	"github.com/kailas-cloud/orgrank/internal/domain/geo"
	"github.com/kailas-cloud/orgrank/internal/domain/intent"
	"github.com/kailas-cloud/orgrank/internal/domain/org"
	"github.com/kailas-cloud/orgrank/internal/domain/search/result"
)

// NearestNeighbors returns the catalog items most similar to a query text.
// Implementations return domain.ErrIndexNotReady before the index is built.
type NearestNeighbors interface {
	Search(ctx context.Context, query string, topK int) ([]result.Hit, error)
}

// Catalog resolves record ids. Get returns domain.ErrNotFound for unknown ids.
type Catalog interface {
	Get(id string) (*org.Record, error)
}

// IntentParser extracts structured signals from free text.
type IntentParser interface {
	Parse(query string) intent.Intent
}

// ZipResolver maps a zip code to coordinates.
type ZipResolver interface {
	Lookup(zip string) (geo.Point, bool)
}

// Blender combines candidate signals into the relevance score.
type Blender interface {
	Blend(semantic, geo, trust, popularity float64) float64
}
