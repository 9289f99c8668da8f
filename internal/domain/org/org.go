package org

import "strings"

// ImpactMetricPriority is the order in which cost metrics feed the impact score.
var ImpactMetricPriority = []string{"cost_per_family", "cost_per_session"}

// Location is where an organization operates.
type Location struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	City  string  `json:"city,omitempty"`
	State string  `json:"state,omitempty"`
	Zip   string  `json:"zip,omitempty"`
}

// Ratings aggregates donor reviews.
type Ratings struct {
	AvgRating float64 `json:"avg_rating"`
	Count     int     `json:"count,omitempty"`
}

// Trust carries verification state.
type Trust struct {
	VerificationStatus bool `json:"verification_status"`
}

// Record is one catalog entry. Records are read-only once the catalog is loaded.
type Record struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	MissionText   string             `json:"mission_text,omitempty"`
	Description   string             `json:"description,omitempty"`
	Website       string             `json:"website,omitempty"`
	Causes        []string           `json:"causes"`
	DonationTypes []string           `json:"donation_types,omitempty"`
	Location      Location           `json:"location"`
	Ratings       Ratings            `json:"ratings"`
	Trust         Trust              `json:"trust"`
	Popularity90d float64            `json:"popularity_90d"`
	ImpactMetrics map[string]float64 `json:"impact_metrics,omitempty"`
	CreatedAt     string             `json:"created_at,omitempty"`
}

// IndexText is the text embedded for the record in the vector index.
func (r *Record) IndexText() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{r.Name, r.MissionText, r.Description} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// HasAnyCause reports whether the record is tagged with at least one of causes.
func (r *Record) HasAnyCause(causes []string) bool {
	for _, want := range causes {
		for _, have := range r.Causes {
			if have == want {
				return true
			}
		}
	}
	return false
}

// ImpactScore is 1/cost for the first positive cost metric in priority order, or 0.
func (r *Record) ImpactScore() float64 {
	for _, k := range ImpactMetricPriority {
		if v, ok := r.ImpactMetrics[k]; ok && v > 0 {
			return 1 / v
		}
	}
	return 0
}

// TrustScore is 1 for verified records and 0 otherwise.
func (r *Record) TrustScore() float64 {
	if r.Trust.VerificationStatus {
		return 1
	}
	return 0
}
