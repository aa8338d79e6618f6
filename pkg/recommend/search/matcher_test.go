package search

import (
	"context"
	"fmt"
	"log"
	"os"
	"reflect"
	"strings"
	"sync"
	"testing"

	"ai-marketplace-be/pkg/recommend"

	"github.com/google/uuid"
)

// fakeCatalog answers every query with the same fixture list unless a
// per-query hook is installed.
type fakeCatalog struct {
	mu      sync.Mutex
	fixture []recommend.Candidate
	hook    func(q recommend.CatalogQuery) ([]recommend.Candidate, error)
	queries []recommend.CatalogQuery
}

func (f *fakeCatalog) Search(ctx context.Context, q recommend.CatalogQuery) ([]recommend.Candidate, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()
	if f.hook != nil {
		return f.hook(q)
	}
	return f.fixture, nil
}

func testLogger() *log.Logger {
	return log.New(os.Stderr, "", 0)
}

func candidate(name, category string, images ...string) recommend.Candidate {
	return recommend.Candidate{
		ID:       uuid.New(),
		Name:     name,
		Category: category,
		Images:   images,
	}
}

func TestMeaningfulWords(t *testing.T) {
	tests := []struct {
		message string
		want    []string
	}{
		{"I want vinyl flooring for my kitchen", []string{"vinyl", "flooring", "kitchen"}},
		{"a an the or", nil},
		{"LVP!", []string{"lvp"}},
		{"", nil},
	}

	for _, tt := range tests {
		got := MeaningfulWords(tt.message)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("MeaningfulWords(%q) = %v, want %v", tt.message, got, tt.want)
		}
	}
}

func TestRankStable(t *testing.T) {
	a := candidate("Plank A", "tile")
	b := candidate("Plank B", "tile")
	c := candidate("Kitchen Plank", "tile")

	req := recommend.RequirementSet{RoomType: "kitchen"}
	ranked := Rank([]recommend.Candidate{a, b, c}, req)

	if ranked[0].ID != c.ID {
		t.Fatalf("expected room-type match first, got %s", ranked[0].Name)
	}
	// a and b tie at zero; arrival order must hold.
	if ranked[1].ID != a.ID || ranked[2].ID != b.ID {
		t.Errorf("tie order broken: got %s, %s", ranked[1].Name, ranked[2].Name)
	}
}

func TestRankRoomAndCategoryOutranksNeither(t *testing.T) {
	matching := recommend.Candidate{
		ID:          uuid.New(),
		Name:        "Bathroom Stone Tile",
		Description: "porcelain tile for wet rooms",
		Category:    "tile",
	}
	neither := recommend.Candidate{
		ID:       uuid.New(),
		Name:     "Garage Epoxy Kit",
		Category: "coatings",
		Images:   []string{"epoxy.jpg"}, // +1 only
	}

	req := recommend.RequirementSet{RoomType: "bathroom", Category: "tile"}
	ranked := Rank([]recommend.Candidate{neither, matching}, req)

	if ranked[0].ID != matching.ID {
		t.Errorf("candidate matching room+category must outrank one matching neither")
	}
}

func TestDedupeLastWriterWins(t *testing.T) {
	id := uuid.New()
	first := recommend.Candidate{ID: id, Name: "stale name"}
	second := recommend.Candidate{ID: id, Name: "fresh name"}

	merged := dedupe([][]recommend.Candidate{{first}, {second}})

	if len(merged) != 1 {
		t.Fatalf("got %d entries for one id, want 1", len(merged))
	}
	if merged[0].Name != "fresh name" {
		t.Errorf("duplicate id kept %q, want last writer %q", merged[0].Name, "fresh name")
	}
}

func TestMatchRanksKitchenVinylFirst(t *testing.T) {
	vinyl := recommend.Candidate{
		ID:       uuid.New(),
		Name:     "Kitchen-Ready Vinyl Plank",
		Category: "vinyl flooring",
		Images:   []string{"vinyl.jpg"},
	}
	hardwood := recommend.Candidate{
		ID:       uuid.New(),
		Name:     "Classic Oak Hardwood",
		Category: "hardwood",
	}

	catalog := &fakeCatalog{fixture: []recommend.Candidate{hardwood, vinyl}}
	m := NewMatcher(catalog, testLogger())

	req := recommend.RequirementSet{Category: "vinyl flooring", RoomType: "kitchen"}
	got := m.Match(context.Background(), req, "I want vinyl flooring for my kitchen")

	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2", len(got))
	}
	if got[0].ID != vinyl.ID {
		t.Errorf("expected vinyl plank ranked first, got %q", got[0].Name)
	}
}

func TestMatchFaultIsolation(t *testing.T) {
	healthy := candidate("Hallway Runner Tile", "tile")

	catalog := &fakeCatalog{
		hook: func(q recommend.CatalogQuery) ([]recommend.Candidate, error) {
			if q.Brand != "" {
				return nil, fmt.Errorf("brand index offline")
			}
			return []recommend.Candidate{healthy}, nil
		},
	}
	m := NewMatcher(catalog, testLogger())

	req := recommend.RequirementSet{Brand: "CoreLux", Category: "tile"}
	got := m.Match(context.Background(), req, "tile for the hallway")

	if len(got) != 1 || got[0].ID != healthy.ID {
		t.Errorf("failing brand strategy must not abort the match, got %v", got)
	}
}

func TestMatchCapsAtMaxResults(t *testing.T) {
	var fixture []recommend.Candidate
	for i := 0; i < MaxResults+5; i++ {
		fixture = append(fixture, candidate(fmt.Sprintf("Plank %d", i), "vinyl"))
	}
	catalog := &fakeCatalog{fixture: fixture}
	m := NewMatcher(catalog, testLogger())

	got := m.Match(context.Background(), recommend.RequirementSet{}, "vinyl planks everywhere")
	if len(got) != MaxResults {
		t.Errorf("got %d candidates, want cap of %d", len(got), MaxResults)
	}
}

func TestMatchRunsLiteralRoomStrategies(t *testing.T) {
	catalog := &fakeCatalog{}
	m := NewMatcher(catalog, testLogger())

	m.Match(context.Background(), recommend.RequirementSet{}, "flooring for the kitchen and the bathroom")

	var roomQueries int
	for _, q := range catalog.queries {
		if q.Keyword == "kitchen" || q.Keyword == "bathroom" {
			roomQueries++
		}
	}
	if roomQueries < 2 {
		t.Errorf("expected a literal search per room type, saw queries: %+v", catalog.queries)
	}
}

func TestMatchEmptyInputs(t *testing.T) {
	catalog := &fakeCatalog{}
	m := NewMatcher(catalog, testLogger())

	got := m.Match(context.Background(), recommend.RequirementSet{}, "a an of")
	if got != nil {
		t.Errorf("no runnable strategies should yield nil, got %v", got)
	}
	if len(catalog.queries) != 0 {
		t.Errorf("no catalog queries expected, saw %+v", catalog.queries)
	}
}

func TestCombinedKeywords(t *testing.T) {
	req := recommend.RequirementSet{
		RoomType:    "kitchen",
		Category:    "vinyl flooring",
		Preferences: []string{"waterproof"},
	}
	got := combinedKeywords(req)
	for _, part := range []string{"kitchen", "vinyl flooring", "waterproof"} {
		if !strings.Contains(got, part) {
			t.Errorf("combinedKeywords missing %q in %q", part, got)
		}
	}

	if combinedKeywords(recommend.RequirementSet{RoomType: "kitchen"}) != "" {
		t.Error("single term should not produce a combined query")
	}
}
