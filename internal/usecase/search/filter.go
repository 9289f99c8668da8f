package search

import (
	"github.com/kailas-cloud/orgrank/internal/domain/search/filter"
	"github.com/kailas-cloud/orgrank/internal/domain/search/result"
)

// applyFilters keeps candidates matching any filter cause and meeting the
// minimum rating. Empty filters return the input unchanged.
func applyFilters(cands []result.Candidate, f filter.Filters) []result.Candidate {
	if f.IsEmpty() {
		return cands
	}
	out := make([]result.Candidate, 0, len(cands))
	for _, c := range cands {
		if f.HasCauses() && !c.Record.HasAnyCause(f.Causes()) {
			continue
		}
		if mr := f.MinRating(); mr != nil && c.Record.Ratings.AvgRating < *mr {
			continue
		}
		out = append(out, c)
	}
	return out
}
