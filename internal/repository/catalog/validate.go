package catalog

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/kailas-cloud/orgrank/internal/domain/geo"
	"github.com/kailas-cloud/orgrank/internal/domain/org"
)

// CauseChecker reports whether a cause tag is canonical.
type CauseChecker interface {
	IsCanonical(tag string) bool
}

// Problem is one structural defect found in a catalog file.
type Problem struct {
	Index   int
	ID      string
	Message string
}

func (p Problem) String() string {
	return fmt.Sprintf("record %d (%q): %s", p.Index, p.ID, p.Message)
}

// Report summarizes a catalog file.
type Report struct {
	Count    int
	Keys     []string
	Problems []Problem
}

// OK reports whether no problems were found.
func (r Report) OK() bool { return len(r.Problems) == 0 }

// Validate decodes catalog JSON and reports structural problems instead of
// failing on the first one. causes may be nil to skip the canonical tag check.
func Validate(data []byte, causes CauseChecker) (Report, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return Report{}, fmt.Errorf("decode catalog: %w", err)
	}
	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return Report{}, fmt.Errorf("decode records: %w", err)
	}

	rep := Report{Count: len(f.Nonprofits), Keys: make([]string, 0, len(top))}
	for k := range top {
		rep.Keys = append(rep.Keys, k)
	}
	sort.Strings(rep.Keys)
	if _, ok := top["nonprofits"]; !ok {
		rep.Problems = append(rep.Problems, Problem{Index: -1, Message: `missing "nonprofits" array`})
	}

	seen := make(map[string]int, len(f.Nonprofits))
	for i := range f.Nonprofits {
		rep.Problems = append(rep.Problems, checkRecord(i, &f.Nonprofits[i], seen, causes)...)
	}
	return rep, nil
}

func checkRecord(i int, r *org.Record, seen map[string]int, causes CauseChecker) []Problem {
	var out []Problem
	add := func(format string, args ...any) {
		out = append(out, Problem{Index: i, ID: r.ID, Message: fmt.Sprintf(format, args...)})
	}

	if r.ID == "" {
		add("empty id")
	} else if first, dup := seen[r.ID]; dup {
		add("duplicate id, first seen at record %d", first)
	} else {
		seen[r.ID] = i
	}
	if r.Location.Lat == 0 && r.Location.Lon == 0 {
		add("missing coordinates")
	} else if !geo.ValidateCoordinates(r.Location.Lat, r.Location.Lon) {
		add("coordinates out of range (%f, %f)", r.Location.Lat, r.Location.Lon)
	}
	if len(r.Causes) == 0 {
		add("empty causes")
	}
	if causes != nil {
		for _, c := range r.Causes {
			if !causes.IsCanonical(c) {
				add("non-canonical cause %q", c)
			}
		}
	}
	if r.Popularity90d < 0 {
		add("negative popularity_90d")
	}
	for k, v := range r.ImpactMetrics {
		if v <= 0 {
			add("impact metric %q must be positive", k)
		}
	}
	return out
}
