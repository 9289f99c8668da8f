package filter

import (
	"fmt"
	"strings"
)

// MaxCauses is the maximum number of causes in one filter.
const MaxCauses = 32

// Filters narrows candidates by cause and minimum rating.
// The zero value imposes no constraint.
type Filters struct {
	causes    []string
	minRating *float64
}

// New validates and creates Filters. Causes are trimmed, empty entries and duplicates dropped.
func New(causes []string, minRating *float64) (Filters, error) {
	if len(causes) > MaxCauses {
		return Filters{}, fmt.Errorf("too many causes (max %d)", MaxCauses)
	}
	if minRating != nil && *minRating < 0 {
		return Filters{}, fmt.Errorf("min_rating must be non-negative")
	}

	var cs []string
	seen := make(map[string]struct{}, len(causes))
	for _, c := range causes {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		cs = append(cs, c)
	}

	var mr *float64
	if minRating != nil {
		v := *minRating
		mr = &v
	}
	return Filters{causes: cs, minRating: mr}, nil
}

// Causes returns the cause tags, nil when unconstrained.
func (f Filters) Causes() []string { return f.causes }

// HasCauses reports whether a cause constraint is set.
func (f Filters) HasCauses() bool { return len(f.causes) > 0 }

// MinRating returns the rating threshold, nil when unconstrained.
func (f Filters) MinRating() *float64 { return f.minRating }

// IsEmpty reports whether no predicate is active.
func (f Filters) IsEmpty() bool {
	return len(f.causes) == 0 && f.minRating == nil
}

// WithCauses returns a copy with causes replaced.
func (f Filters) WithCauses(causes []string) Filters {
	f.causes = append([]string(nil), causes...)
	if len(f.causes) == 0 {
		f.causes = nil
	}
	return f
}
