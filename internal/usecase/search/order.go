package search

import (
	"sort"

	"github.com/kailas-cloud/orgrank/internal/domain/search/result"
	"github.com/kailas-cloud/orgrank/internal/domain/search/sortby"
)

// orderCandidates sorts in place, keeping retrieval order among ties.
// Distance ordering needs a resolved location and falls back to relevance without one.
func orderCandidates(cands []result.Candidate, m sortby.Mode, located bool) {
	var less func(a, b *result.Candidate) bool
	switch m {
	case sortby.Distance:
		if !located {
			less = byRelevance
			break
		}
		less = byDistance
	case sortby.Rating:
		less = func(a, b *result.Candidate) bool {
			return a.Record.Ratings.AvgRating > b.Record.Ratings.AvgRating
		}
	case sortby.Popularity:
		less = func(a, b *result.Candidate) bool { return a.Popularity > b.Popularity }
	case sortby.Newest:
		less = func(a, b *result.Candidate) bool { return a.Record.CreatedAt > b.Record.CreatedAt }
	case sortby.Impact:
		less = func(a, b *result.Candidate) bool {
			return a.Record.ImpactScore() > b.Record.ImpactScore()
		}
	default:
		less = byRelevance
	}
	sort.SliceStable(cands, func(i, j int) bool { return less(&cands[i], &cands[j]) })
}

func byRelevance(a, b *result.Candidate) bool { return a.FinalScore > b.FinalScore }

// byDistance sorts nearest first; candidates without a distance go last.
func byDistance(a, b *result.Candidate) bool {
	switch {
	case a.DistanceMiles == nil:
		return false
	case b.DistanceMiles == nil:
		return true
	default:
		return *a.DistanceMiles < *b.DistanceMiles
	}
}

// paginate returns the 1-indexed page. Pages past the end are empty.
func paginate(cands []result.Candidate, page, limit int) []result.Candidate {
	if page < 1 || limit < 1 {
		return []result.Candidate{}
	}
	// Compare page counts before multiplying so huge pages cannot overflow.
	if len(cands) == 0 || page-1 > (len(cands)-1)/limit {
		return []result.Candidate{}
	}
	start := (page - 1) * limit
	end := min(start+limit, len(cands))
	return cands[start:end]
}
