package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kailas-cloud/orgrank/internal/domain"
	"github.com/kailas-cloud/orgrank/internal/domain/intent"
)

const sampleCatalog = `{
  "nonprofits": [
    {
      "id": "np-1",
      "name": "Mission Shelter",
      "mission_text": "Beds and meals",
      "causes": ["housing"],
      "location": {"lat": 37.7763, "lon": -122.4167, "city": "San Francisco", "state": "CA", "zip": "94103"},
      "ratings": {"avg_rating": 4.5, "count": 120},
      "trust": {"verification_status": true},
      "popularity_90d": 120,
      "impact_metrics": {"cost_per_family": 200},
      "created_at": "2023-05-01T00:00:00Z"
    },
    {
      "id": "np-2",
      "name": "Family Table",
      "causes": ["families"],
      "location": {"lat": 37.7784, "lon": -122.4175},
      "ratings": {"avg_rating": 3.9},
      "trust": {"verification_status": false},
      "popularity_90d": 300
    }
  ]
}`

func TestParse(t *testing.T) {
	s, err := Parse([]byte(sampleCatalog))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}

	r, err := s.Get("np-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if r.Name != "Mission Shelter" || !r.Trust.VerificationStatus || r.Location.Zip != "94103" {
		t.Errorf("decoded record = %+v", r)
	}
	if r.ImpactMetrics["cost_per_family"] != 200 {
		t.Errorf("impact metrics = %v", r.ImpactMetrics)
	}
	if s.All()[1].ID != "np-2" {
		t.Error("All() must keep file order")
	}
}

func TestGet_NotFound(t *testing.T) {
	s, _ := Parse([]byte(sampleCatalog))
	if _, err := s.Get("missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestNew_RejectsDuplicateAndEmptyIDs(t *testing.T) {
	if _, err := Parse([]byte(`{"nonprofits":[{"id":"a"},{"id":"a"}]}`)); err == nil {
		t.Error("expected duplicate id error")
	}
	if _, err := Parse([]byte(`{"nonprofits":[{"name":"x"}]}`)); err == nil {
		t.Error("expected empty id error")
	}
}

func TestParse_InvalidJSON(t *testing.T) {
	if _, err := Parse([]byte(`{"nonprofits":`)); err == nil {
		t.Error("expected decode error")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orgs.json")
	if err := os.WriteFile(path, []byte(sampleCatalog), 0o600); err != nil {
		t.Fatal(err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d", s.Len())
	}

	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidate_Clean(t *testing.T) {
	rep, err := Validate([]byte(sampleCatalog), intent.NewParser(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rep.OK() {
		t.Errorf("unexpected problems: %v", rep.Problems)
	}
	if rep.Count != 2 {
		t.Errorf("Count = %d", rep.Count)
	}
	if len(rep.Keys) != 1 || rep.Keys[0] != "nonprofits" {
		t.Errorf("Keys = %v", rep.Keys)
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	data := `{
	  "version": 2,
	  "nonprofits": [
	    {"id": "a", "causes": ["housing"], "location": {"lat": 37.7, "lon": -122.4}},
	    {"id": "a", "causes": [], "location": {"lat": 0, "lon": 0}},
	    {"id": "b", "causes": ["pets"], "location": {"lat": 95, "lon": 0}, "impact_metrics": {"cost_per_family": 0}}
	  ]
	}`
	rep, err := Validate([]byte(data), intent.NewParser(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var msgs []string
	for _, p := range rep.Problems {
		msgs = append(msgs, p.String())
	}
	joined := strings.Join(msgs, "\n")
	for _, want := range []string{
		"duplicate id",
		"missing coordinates",
		"empty causes",
		`non-canonical cause "pets"`,
		"coordinates out of range",
		`impact metric "cost_per_family" must be positive`,
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("missing problem %q in:\n%s", want, joined)
		}
	}
	if len(rep.Keys) != 2 {
		t.Errorf("Keys = %v", rep.Keys)
	}
}

func TestValidate_MissingArray(t *testing.T) {
	rep, err := Validate([]byte(`{"businesses": []}`), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.OK() {
		t.Error("expected missing array problem")
	}
}
