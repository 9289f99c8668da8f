package search

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/orgrank/internal/domain"
	"github.com/kailas-cloud/orgrank/internal/domain/geo"
	"github.com/kailas-cloud/orgrank/internal/domain/intent"
	"github.com/kailas-cloud/orgrank/internal/domain/org"
	"github.com/kailas-cloud/orgrank/internal/domain/search/filter"
	"github.com/kailas-cloud/orgrank/internal/domain/search/request"
	"github.com/kailas-cloud/orgrank/internal/domain/search/result"
	"github.com/kailas-cloud/orgrank/internal/domain/search/sortby"
	"github.com/kailas-cloud/orgrank/internal/ranking"
)

// --- Mocks ---

type mockNN struct {
	hits      []result.Hit
	err       error
	block     bool
	gotQuery  string
	gotTopK   int
	hadDeadln bool
}

func (m *mockNN) Search(ctx context.Context, query string, topK int) ([]result.Hit, error) {
	m.gotQuery = query
	m.gotTopK = topK
	_, m.hadDeadln = ctx.Deadline()
	if m.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return m.hits, m.err
}

type mockCatalog struct {
	records map[string]*org.Record
	err     error
}

func (m *mockCatalog) Get(id string) (*org.Record, error) {
	if m.err != nil {
		return nil, m.err
	}
	r, ok := m.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r, nil
}

// --- Fixtures ---

func at(zip string) org.Location {
	p, _ := geo.NewZipTable(nil).Lookup(zip)
	return org.Location{Lat: p.Lat, Lon: p.Lon, Zip: zip}
}

func fixtureRecords() []*org.Record {
	return []*org.Record{
		{
			ID: "sf-housing", Name: "Mission Shelter", Causes: []string{"housing"},
			Location: at("94103"), Ratings: org.Ratings{AvgRating: 4.5},
			Trust: org.Trust{VerificationStatus: true}, Popularity90d: 120,
			ImpactMetrics: map[string]float64{"cost_per_family": 200}, CreatedAt: "2023-05-01T00:00:00Z",
		},
		{
			ID: "sf-family", Name: "Family Table", Causes: []string{"families"},
			Location: at("94103"), Ratings: org.Ratings{AvgRating: 3.9}, Popularity90d: 300,
			ImpactMetrics: map[string]float64{"cost_per_session": 25}, CreatedAt: "2024-01-10T00:00:00Z",
		},
		{
			ID: "sf-legal", Name: "Tenant Law Clinic", Causes: []string{"legal", "housing"},
			Location: at("94102"), Ratings: org.Ratings{AvgRating: 4.8},
			Trust: org.Trust{VerificationStatus: true}, Popularity90d: 40, CreatedAt: "2022-11-20T00:00:00Z",
		},
		{
			ID: "marin-youth", Name: "Marin Teens", Causes: []string{"youth"},
			Location: at("94901"), Ratings: org.Ratings{AvgRating: 4.1}, Popularity90d: 80,
			CreatedAt: "2024-06-01T00:00:00Z",
		},
		{
			ID: "phx-vets", Name: "Phoenix Veterans Home", Causes: []string{"veterans"},
			Location: at("85004"), Ratings: org.Ratings{AvgRating: 4.6},
			Trust: org.Trust{VerificationStatus: true}, Popularity90d: 150, CreatedAt: "2021-02-02T00:00:00Z",
		},
		{
			ID: "tuc-vets", Name: "Tucson Veterans Outreach", Causes: []string{"veterans"},
			Location: org.Location{Lat: 32.2226, Lon: -110.9747}, Ratings: org.Ratings{AvgRating: 4.9},
			Popularity90d: 10, CreatedAt: "2020-07-07T00:00:00Z",
		},
		{
			ID: "atl-edu", Name: "Atlanta STEM Tutors", Causes: []string{"education"},
			Location: at("30303"), Ratings: org.Ratings{AvgRating: 4.2}, Popularity90d: 60,
			CreatedAt: "2023-09-09T00:00:00Z",
		},
		{
			ID: "sj-mental", Name: "San Jose Counseling", Causes: []string{"mental health"},
			Location: at("95113"), Popularity90d: 5, CreatedAt: "2019-01-01T00:00:00Z",
		},
	}
}

// fixtureHits ranks every fixture record with descending similarity.
func fixtureHits(recs []*org.Record) []result.Hit {
	hits := make([]result.Hit, len(recs))
	for i, r := range recs {
		hits[i] = result.NewHit(r.ID, 0.9-float64(i)*0.05)
	}
	return hits
}

func catalogOf(recs []*org.Record) *mockCatalog {
	m := &mockCatalog{records: make(map[string]*org.Record, len(recs))}
	for _, r := range recs {
		m.records[r.ID] = r
	}
	return m
}

func newTestService(nn NearestNeighbors, cat Catalog) *Service {
	return New(nn, cat, intent.NewParser(nil), geo.NewZipTable(nil), ranking.Default(), DefaultConfig())
}

func fixtureService() (*Service, *mockNN) {
	recs := fixtureRecords()
	nn := &mockNN{hits: fixtureHits(recs)}
	return newTestService(nn, catalogOf(recs)), nn
}

func mustRequest(t *testing.T, p request.Params) *request.Request {
	t.Helper()
	r, err := request.New(p, request.DefaultLimits())
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return &r
}

func ids(cands []result.Candidate) []string {
	out := make([]string, len(cands))
	for i := range cands {
		out[i] = cands[i].ID()
	}
	return out
}

// --- End-to-end scenarios ---

func TestSearch_HousingNearZipWithinRadius(t *testing.T) {
	svc, _ := fixtureService()

	page, err := svc.Search(context.Background(), mustRequest(t, request.Params{
		Query: "affordable housing near 94103 within 5 miles one-time",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	in := page.Intent
	if !reflect.DeepEqual(in.Causes(), []string{"housing"}) {
		t.Errorf("intent causes = %v", in.Causes())
	}
	if loc := in.Location(); loc == nil || loc.Zip != "94103" || loc.RadiusMiles != 5 {
		t.Errorf("intent location = %+v", loc)
	}
	if in.DonationType() != intent.OneTime {
		t.Errorf("donation type = %q", in.DonationType())
	}

	if !reflect.DeepEqual(ids(page.Items), []string{"sf-housing", "sf-legal"}) {
		t.Fatalf("results = %v, want [sf-housing sf-legal]", ids(page.Items))
	}
	if got := page.Items[0].Explain; got != "matches: housing • 0.0 mi away • verified" {
		t.Errorf("explain = %q", got)
	}
}

func TestSearch_ExplicitLocationGatesByRadius(t *testing.T) {
	svc, _ := fixtureService()

	page, err := svc.Search(context.Background(), mustRequest(t, request.Params{
		Query:    "veterans",
		Location: &request.Location{Zip: "85004", RadiusMiles: 10},
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if page.Sort != sortby.Relevance {
		t.Errorf("sort = %q, want relevance", page.Sort)
	}
	if !reflect.DeepEqual(ids(page.Items), []string{"phx-vets"}) {
		t.Errorf("results = %v, want [phx-vets]", ids(page.Items))
	}
	for _, c := range page.Items {
		if c.DistanceMiles == nil || *c.DistanceMiles > 10 {
			t.Errorf("%s outside radius: %v", c.ID(), c.DistanceMiles)
		}
	}
}

func TestSearch_EmptyQuerySortedByRating(t *testing.T) {
	svc, nn := fixtureService()

	page, err := svc.Search(context.Background(), mustRequest(t, request.Params{
		Sort:  "rating",
		Limit: 5,
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if nn.gotQuery != FallbackQuery {
		t.Errorf("index query = %q, want %q", nn.gotQuery, FallbackQuery)
	}
	want := []string{"tuc-vets", "sf-legal", "phx-vets", "sf-housing", "atl-edu"}
	if !reflect.DeepEqual(ids(page.Items), want) {
		t.Errorf("results = %v, want %v", ids(page.Items), want)
	}
	if page.Total != len(fixtureRecords()) {
		t.Errorf("total = %d", page.Total)
	}
}

func TestSearch_SameCoordinatesAsZip(t *testing.T) {
	svc, _ := fixtureService()

	page, err := svc.Search(context.Background(), mustRequest(t, request.Params{
		Query: "help near 94103",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := 0
	for _, c := range page.Items {
		if c.ID() != "sf-housing" && c.ID() != "sf-family" {
			continue
		}
		seen++
		if c.GeoScore != 1.0 {
			t.Errorf("%s geo score = %f, want 1", c.ID(), c.GeoScore)
		}
		if c.DistanceMiles == nil || *c.DistanceMiles != 0 {
			t.Errorf("%s distance = %v, want 0", c.ID(), c.DistanceMiles)
		}
	}
	if seen != 2 {
		t.Fatalf("expected both co-located orgs, got %v", ids(page.Items))
	}
	// default 25 mile radius keeps Marin and drops San Jose
	want := map[string]bool{"sf-housing": true, "sf-family": true, "sf-legal": true, "marin-youth": true}
	for _, id := range ids(page.Items) {
		if !want[id] {
			t.Errorf("unexpected result %s", id)
		}
	}
	if page.Total != len(want) {
		t.Errorf("total = %d, want %d", page.Total, len(want))
	}
}

func TestSearch_SecondPage(t *testing.T) {
	recs := make([]*org.Record, 15)
	hits := make([]result.Hit, 15)
	for i := range recs {
		recs[i] = &org.Record{ID: fmt.Sprintf("org-%02d", i), Causes: []string{"housing"}}
		hits[i] = result.NewHit(recs[i].ID, 0.99-float64(i)*0.01)
	}
	svc := newTestService(&mockNN{hits: hits}, catalogOf(recs))

	page, err := svc.Search(context.Background(), mustRequest(t, request.Params{
		Query: "nonprofits",
		Page:  2,
		Limit: 10,
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if page.Total != 15 {
		t.Errorf("total = %d, want 15", page.Total)
	}
	want := []string{"org-10", "org-11", "org-12", "org-13", "org-14"}
	if !reflect.DeepEqual(ids(page.Items), want) {
		t.Errorf("page 2 = %v, want %v", ids(page.Items), want)
	}
}

func TestSearch_UnknownZipMeansNoLocation(t *testing.T) {
	svc, _ := fixtureService()

	page, err := svc.Search(context.Background(), mustRequest(t, request.Params{
		Query:    "housing",
		Location: &request.Location{Zip: "99999"},
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if page.Intent.Location() != nil {
		t.Errorf("intent location = %+v, want nil", page.Intent.Location())
	}
	if !reflect.DeepEqual(ids(page.Items), []string{"sf-housing", "sf-legal"}) {
		t.Errorf("results = %v", ids(page.Items))
	}
	for _, c := range page.Items {
		if c.GeoScore != 0 || c.DistanceMiles != nil {
			t.Errorf("%s: geo=%f distance=%v, want no geo signal", c.ID(), c.GeoScore, c.DistanceMiles)
		}
	}
}

// --- Pipeline behaviour ---

func TestSearch_PassesTopKWithDeadline(t *testing.T) {
	svc, nn := fixtureService()

	if _, err := svc.Search(context.Background(), mustRequest(t, request.Params{Query: "x", Limit: 2, TopK: 3})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if nn.gotTopK != 3 {
		t.Errorf("topK = %d, want 3", nn.gotTopK)
	}
	if !nn.hadDeadln {
		t.Error("nearest-neighbour call must carry a deadline")
	}
}

func TestSearch_TruncatesOversizedHitList(t *testing.T) {
	svc, _ := fixtureService()

	page, err := svc.Search(context.Background(), mustRequest(t, request.Params{TopK: 2, Limit: 1}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Total != 2 {
		t.Errorf("total = %d, want 2", page.Total)
	}
}

func TestSearch_ClampsSemanticScore(t *testing.T) {
	recs := fixtureRecords()[:2]
	nn := &mockNN{hits: []result.Hit{result.NewHit("sf-housing", 1.7), result.NewHit("sf-family", -0.2)}}
	svc := newTestService(nn, catalogOf(recs))

	page, err := svc.Search(context.Background(), mustRequest(t, request.Params{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, c := range page.Items {
		if c.Semantic < 0 || c.Semantic > 1 {
			t.Errorf("%s semantic = %f outside [0,1]", c.ID(), c.Semantic)
		}
		if c.FinalScore < 0 || c.FinalScore > 1 {
			t.Errorf("%s final = %f outside [0,1]", c.ID(), c.FinalScore)
		}
	}
}

func TestSearch_ExplicitCausesWinOverIntent(t *testing.T) {
	svc, _ := fixtureService()
	f, _ := filter.New([]string{"housing"}, nil)

	page, err := svc.Search(context.Background(), mustRequest(t, request.Params{
		Query:   "veterans",
		Filters: f,
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(ids(page.Items), []string{"sf-housing", "sf-legal"}) {
		t.Errorf("results = %v", ids(page.Items))
	}
	for _, c := range page.Items {
		if !strings.HasPrefix(c.Explain, "matches: housing") {
			t.Errorf("explain = %q", c.Explain)
		}
	}
}

func TestSearch_MinRating(t *testing.T) {
	svc, _ := fixtureService()
	minRating := 4.6
	f, _ := filter.New(nil, &minRating)

	page, err := svc.Search(context.Background(), mustRequest(t, request.Params{Filters: f}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, c := range page.Items {
		if c.Record.Ratings.AvgRating < minRating {
			t.Errorf("%s rating %f below threshold", c.ID(), c.Record.Ratings.AvgRating)
		}
	}
	if page.Total != 3 {
		t.Errorf("total = %d, want 3", page.Total)
	}
}

func TestSearch_SortModes(t *testing.T) {
	tests := []struct {
		name string
		p    request.Params
		want []string
	}{
		{
			name: "distance with location",
			p:    request.Params{Sort: "distance", Location: &request.Location{Zip: "94103", RadiusMiles: 200}},
			want: []string{"sf-housing", "sf-family", "sf-legal", "marin-youth", "sj-mental"},
		},
		{
			name: "popularity",
			p:    request.Params{Sort: "popularity", Limit: 3},
			want: []string{"sf-family", "phx-vets", "sf-housing"},
		},
		{
			name: "newest",
			p:    request.Params{Sort: "newest", Limit: 3},
			want: []string{"marin-youth", "sf-family", "atl-edu"},
		},
		{
			name: "impact",
			p:    request.Params{Sort: "impact", Limit: 3},
			want: []string{"sf-family", "sf-housing", "sf-legal"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := fixtureService()
			page, err := svc.Search(context.Background(), mustRequest(t, tt.p))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(ids(page.Items), tt.want) {
				t.Errorf("order = %v, want %v", ids(page.Items), tt.want)
			}
		})
	}
}

func TestSearch_DistanceWithoutLocationFallsBackToRelevance(t *testing.T) {
	svc, _ := fixtureService()

	byDist, err := svc.Search(context.Background(), mustRequest(t, request.Params{Sort: "distance"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	byRel, err := svc.Search(context.Background(), mustRequest(t, request.Params{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(ids(byDist.Items), ids(byRel.Items)) {
		t.Errorf("distance = %v, relevance = %v", ids(byDist.Items), ids(byRel.Items))
	}
	if byDist.Sort != sortby.Distance {
		t.Errorf("requested sort must be echoed, got %q", byDist.Sort)
	}
}

func TestSearch_PagesPartitionResults(t *testing.T) {
	svc, _ := fixtureService()
	total := len(fixtureRecords())
	limit := 3

	var all []string
	for p := 1; ; p++ {
		page, err := svc.Search(context.Background(), mustRequest(t, request.Params{Page: p, Limit: limit}))
		if err != nil {
			t.Fatalf("page %d: %v", p, err)
		}
		if page.Total != total {
			t.Fatalf("page %d total = %d, want %d", p, page.Total, total)
		}
		if len(page.Items) > limit {
			t.Fatalf("page %d has %d items", p, len(page.Items))
		}
		if len(page.Items) == 0 {
			break
		}
		all = append(all, ids(page.Items)...)
	}
	if len(all) != total {
		t.Errorf("collected %d items across pages, want %d", len(all), total)
	}
}

func TestSearch_PageBeyondEnd(t *testing.T) {
	svc, _ := fixtureService()

	page, err := svc.Search(context.Background(), mustRequest(t, request.Params{Page: 40}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Items == nil || len(page.Items) != 0 {
		t.Errorf("items = %v, want empty slice", page.Items)
	}
}

func TestSearch_HugePageIsEmpty(t *testing.T) {
	svc, _ := fixtureService()

	for _, p := range []int{math.MaxInt64/50 + 2, math.MaxInt64} {
		page, err := svc.Search(context.Background(), mustRequest(t, request.Params{Page: p, Limit: 50}))
		if err != nil {
			t.Fatalf("page %d: unexpected error: %v", p, err)
		}
		if page.Items == nil || len(page.Items) != 0 {
			t.Errorf("page %d: items = %v, want empty slice", p, page.Items)
		}
		if page.Page != p {
			t.Errorf("page = %d, want %d", page.Page, p)
		}
	}
}

// --- Errors ---

func TestSearch_UnknownCandidate(t *testing.T) {
	svc := newTestService(&mockNN{hits: []result.Hit{result.NewHit("ghost", 0.9)}}, catalogOf(nil))

	_, err := svc.Search(context.Background(), mustRequest(t, request.Params{Query: "x"}))
	if !errors.Is(err, domain.ErrUnknownCandidate) {
		t.Fatalf("expected ErrUnknownCandidate, got %v", err)
	}
	var uc *domain.UnknownCandidateError
	if !errors.As(err, &uc) || uc.ID != "ghost" {
		t.Errorf("expected id ghost, got %v", err)
	}
}

func TestSearch_CatalogFailure(t *testing.T) {
	boom := errors.New("boom")
	svc := newTestService(&mockNN{hits: []result.Hit{result.NewHit("a", 0.9)}}, &mockCatalog{err: boom})

	_, err := svc.Search(context.Background(), mustRequest(t, request.Params{}))
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped catalog error, got %v", err)
	}
}

func TestSearch_IndexNotReady(t *testing.T) {
	svc := newTestService(&mockNN{err: domain.ErrIndexNotReady}, catalogOf(nil))

	_, err := svc.Search(context.Background(), mustRequest(t, request.Params{Query: "x"}))
	if !errors.Is(err, domain.ErrIndexNotReady) {
		t.Fatalf("expected ErrIndexNotReady, got %v", err)
	}
}

func TestSearch_IndexFailureIsUnavailable(t *testing.T) {
	svc := newTestService(&mockNN{err: errors.New("connection refused")}, catalogOf(nil))

	_, err := svc.Search(context.Background(), mustRequest(t, request.Params{Query: "x"}))
	if !errors.Is(err, domain.ErrSearchUnavailable) {
		t.Fatalf("expected ErrSearchUnavailable, got %v", err)
	}
}

func TestSearch_Timeout(t *testing.T) {
	nn := &mockNN{block: true}
	svc := New(nn, catalogOf(nil), intent.NewParser(nil), geo.NewZipTable(nil), ranking.Default(),
		Config{Timeout: 10 * time.Millisecond})

	_, err := svc.Search(context.Background(), mustRequest(t, request.Params{Query: "x"}))
	if !errors.Is(err, domain.ErrSearchUnavailable) {
		t.Fatalf("expected ErrSearchUnavailable, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline cause, got %v", err)
	}
}
