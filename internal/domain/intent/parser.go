package intent

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Radius bounds applied to any radius read from free text.
const (
	MinRadiusMiles = 1
	MaxRadiusMiles = 200
)

var (
	zipPattern = regexp.MustCompile(`\b(\d{5})\b`)
	// A 1-3 digit run not embedded in a longer number. Keywords and units are
	// optional, so a bare number counts as a radius.
	radiusPattern = regexp.MustCompile(`(?:^|\D)(\d{1,3})(?:\D|$)`)
)

// DefaultSynonyms returns the built-in canonical cause table.
func DefaultSynonyms() map[string][]string {
	return map[string][]string{
		"housing":       {"housing", "affordable housing", "homeless", "shelter", "rent"},
		"families":      {"families", "family", "children", "kids"},
		"mental health": {"mental health", "ptsd", "therapy", "counseling"},
		"veterans":      {"veteran", "veterans"},
		"education":     {"education", "school", "tutoring", "stem"},
		"youth":         {"youth", "teen", "teenagers"},
		"legal":         {"legal", "law", "eviction"},
	}
}

type canonical struct {
	tag      string
	synonyms []string
}

// Parser extracts an Intent from free text. It is immutable and safe for concurrent use.
type Parser struct {
	causes []canonical
}

// NewParser builds a parser over the default synonym table extended with extra.
// Extra synonyms for an existing tag are appended; unknown tags are added.
func NewParser(extra map[string][]string) *Parser {
	table := DefaultSynonyms()
	for tag, syns := range extra {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		for _, s := range syns {
			if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
				table[tag] = append(table[tag], s)
			}
		}
		if _, ok := table[tag]; !ok {
			table[tag] = []string{tag}
		}
	}

	p := &Parser{causes: make([]canonical, 0, len(table))}
	for tag, syns := range table {
		p.causes = append(p.causes, canonical{tag: tag, synonyms: syns})
	}
	sort.Slice(p.causes, func(i, j int) bool { return p.causes[i].tag < p.causes[j].tag })
	return p
}

// Canonical returns the sorted canonical cause tags.
func (p *Parser) Canonical() []string {
	out := make([]string, len(p.causes))
	for i, c := range p.causes {
		out[i] = c.tag
	}
	return out
}

// IsCanonical reports whether tag is a canonical cause.
func (p *Parser) IsCanonical(tag string) bool {
	for _, c := range p.causes {
		if c.tag == tag {
			return true
		}
	}
	return false
}

// Parse extracts causes, location and donation type from query.
func (p *Parser) Parse(query string) Intent {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return Intent{}
	}

	var in Intent
	in.location = parseLocation(q)
	in.donationType = parseDonationType(q)
	in.causes = p.matchCauses(q)
	return in
}

func parseLocation(q string) *Location {
	var loc Location
	if m := zipPattern.FindStringSubmatch(q); m != nil {
		loc.Zip = m[1]
	}
	if m := radiusPattern.FindStringSubmatch(q); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			loc.RadiusMiles = float64(clampRadius(n))
		}
	}
	if loc.Zip == "" && loc.RadiusMiles == 0 {
		return nil
	}
	return &loc
}

func clampRadius(n int) int {
	if n < MinRadiusMiles {
		return MinRadiusMiles
	}
	if n > MaxRadiusMiles {
		return MaxRadiusMiles
	}
	return n
}

func parseDonationType(q string) DonationType {
	switch {
	case strings.Contains(q, "one-time"), strings.Contains(q, "one time"):
		return OneTime
	case strings.Contains(q, "recurring"), strings.Contains(q, "monthly"):
		return Recurring
	default:
		return ""
	}
}

// matchCauses walks tags in sorted order, so the result is already sorted.
func (p *Parser) matchCauses(q string) []string {
	var out []string
	for _, c := range p.causes {
		for _, s := range c.synonyms {
			if strings.Contains(q, s) {
				out = append(out, c.tag)
				break
			}
		}
	}
	return out
}
