package sortby

import (
	"fmt"
	"strings"
)

// Mode is the result ordering policy.
type Mode string

// Sort mode constants.
const (
	// Relevance orders by blended final score.
	Relevance Mode = "relevance"
	// Distance orders nearest first; only meaningful when a location resolved.
	Distance   Mode = "distance"
	Rating     Mode = "rating"
	Popularity Mode = "popularity"
	// Newest orders by created_at compared as strings.
	Newest Mode = "newest"
	// Impact orders by inverse cost per family or session.
	Impact Mode = "impact"
)

// All lists every supported mode.
func All() []Mode {
	return []Mode{Relevance, Distance, Rating, Popularity, Newest, Impact}
}

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	switch m {
	case Relevance, Distance, Rating, Popularity, Newest, Impact:
		return true
	}
	return false
}

// Parse normalizes case and maps "" to Relevance.
func Parse(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if m == "" {
		return Relevance, nil
	}
	if !m.IsValid() {
		return "", fmt.Errorf("invalid sort mode: %q", s)
	}
	return m, nil
}
