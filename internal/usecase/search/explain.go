package search

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/orgrank/internal/domain/intent"
	"github.com/kailas-cloud/orgrank/internal/domain/search/filter"
	"github.com/kailas-cloud/orgrank/internal/domain/search/result"
)

// Explanation text.
const (
	ExplainSeparator = " • "
	ExplainFallback  = "relevant to your search"
)

// explain summarizes why a candidate was returned.
func explain(c *result.Candidate, in intent.Intent, f filter.Filters) string {
	parts := make([]string, 0, 3)

	causes := f.Causes()
	if len(causes) == 0 {
		causes = in.Causes()
	}
	if len(causes) > 0 {
		parts = append(parts, "matches: "+strings.Join(causes, ", "))
	}
	if c.DistanceMiles != nil {
		parts = append(parts, fmt.Sprintf("%.1f mi away", *c.DistanceMiles))
	}
	if c.Trust >= 1 {
		parts = append(parts, "verified")
	}

	if len(parts) == 0 {
		return ExplainFallback
	}
	return strings.Join(parts, ExplainSeparator)
}
