package intent

import "encoding/json"

// DonationType is how a donor wants to give.
type DonationType string

// Donation type constants.
const (
	OneTime   DonationType = "one-time"
	Recurring DonationType = "recurring"
)

// Location is a zip and/or radius pulled from the query. Zero fields are absent.
type Location struct {
	Zip         string  `json:"zip,omitempty"`
	RadiusMiles float64 `json:"radius_miles,omitempty"`
}

// Intent holds the structured signals extracted from one query.
type Intent struct {
	causes       []string
	location     *Location
	donationType DonationType
}

// New creates an Intent. Used by tests and callers that already know the signals.
func New(causes []string, loc *Location, dt DonationType) Intent {
	var l *Location
	if loc != nil {
		cp := *loc
		l = &cp
	}
	var cs []string
	if len(causes) > 0 {
		cs = append([]string(nil), causes...)
	}
	return Intent{causes: cs, location: l, donationType: dt}
}

// Causes returns the sorted canonical cause tags, nil when none matched.
func (i Intent) Causes() []string {
	if i.causes == nil {
		return nil
	}
	return append([]string(nil), i.causes...)
}

// Location returns a copy of the extracted location, nil when absent.
func (i Intent) Location() *Location {
	if i.location == nil {
		return nil
	}
	l := *i.location
	return &l
}

// DonationType returns the donation type, "" when absent.
func (i Intent) DonationType() DonationType { return i.donationType }

// IsEmpty reports whether no signal was extracted.
func (i Intent) IsEmpty() bool {
	return i.causes == nil && i.location == nil && i.donationType == ""
}

// MarshalJSON renders absent signals as null.
func (i Intent) MarshalJSON() ([]byte, error) {
	var dt *DonationType
	if i.donationType != "" {
		d := i.donationType
		dt = &d
	}
	//nolint:wrapcheck // plain encoding
	return json.Marshal(struct {
		Causes       []string      `json:"causes"`
		Location     *Location     `json:"location"`
		DonationType *DonationType `json:"donation_type"`
	}{i.causes, i.location, dt})
}
