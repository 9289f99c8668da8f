package orgrank

import "github.com/kailas-cloud/orgrank/internal/domain/org"

// Record is one catalog entry.
type Record = org.Record

// Sort modes accepted by Query.Sort.
const (
	SortRelevance  = "relevance"
	SortDistance   = "distance"
	SortRating     = "rating"
	SortPopularity = "popularity"
	SortNewest     = "newest"
	SortImpact     = "impact"
)

// Query is a search request. Zero fields take the pipeline defaults.
type Query struct {
	Text string
	// Zip and RadiusMiles override what Text says.
	Zip         string
	RadiusMiles float64
	Causes      []string
	MinRating   *float64
	Sort        string
	Page        int
	Limit       int
	TopK        int
}

// Intent is what the query text was understood to ask for.
type Intent struct {
	Causes       []string
	Zip          string
	RadiusMiles  float64
	DonationType string
}

// Scores are the per-result signals, rounded to three decimals.
type Scores struct {
	Semantic float64
	Geo      float64
	Final    float64
}

// Result is one ranked record.
type Result struct {
	Record        Record
	Scores        Scores
	DistanceMiles *float64
	Explain       string
}

// Page is one page of ranked results.
type Page struct {
	Query   string
	Intent  Intent
	Sort    string
	Page    int
	Limit   int
	Total   int
	Results []Result
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status  string            // "ok", "degraded", "error"
	Checks  map[string]string // component -> "ok"/"error"
	Count   int
	Indexed int
}
