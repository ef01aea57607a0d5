package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/replaykit/journey-runner/pkg/journey"
)

func testJourney(id, name, category string, tags []string, rate float64, usage int) *journey.Journey {
	return &journey.Journey{
		ID:       id,
		Name:     name,
		Category: category,
		Tags:     tags,
		StartingContext: journey.StartingContext{
			ExactURL: "https://app.example.com/" + id,
		},
		Steps: []journey.Step{
			&journey.NavigateStep{URL: "https://app.example.com/" + id},
		},
		Metadata: journey.Metadata{
			SuccessRate: rate,
			UsageCount:  usage,
			Difficulty:  journey.DifficultyEasy,
			LastUsed:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(usage) * time.Hour),
		},
	}
}

func seedMemoryStore(t *testing.T) *MemoryStore {
	t.Helper()
	store := NewMemoryStore()
	for _, j := range []*journey.Journey{
		testJourney("login", "Login", "auth", []string{"smoke", "auth"}, 0.9, 10),
		testJourney("signup", "Signup", "auth", []string{"auth"}, 0.4, 3),
		testJourney("checkout", "Checkout", "shopping", []string{"smoke", "cart"}, 0.7, 25),
	} {
		if err := store.SaveJourney(j); err != nil {
			t.Fatal(err)
		}
	}
	return store
}

func TestMemoryStore_SaveAndLoad(t *testing.T) {
	store := NewMemoryStore()
	j := testJourney("login", "Login", "auth", nil, 0.5, 2)

	if err := store.SaveJourney(j); err != nil {
		t.Fatal(err)
	}
	loaded, err := store.LoadJourney("login")
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Name != "Login" || loaded.Metadata.UsageCount != 2 {
		t.Errorf("loaded = %+v", loaded)
	}

	// The store hands out copies, not aliases.
	loaded.Name = "mutated"
	again, err := store.LoadJourney("login")
	if err != nil {
		t.Fatal(err)
	}
	if again.Name != "Login" {
		t.Errorf("stored journey mutated through a loaded copy")
	}
}

func TestMemoryStore_LoadMissing(t *testing.T) {
	store := NewMemoryStore()
	if _, err := store.LoadJourney("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	store := seedMemoryStore(t)
	if err := store.DeleteJourney("login"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.LoadJourney("login"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound after delete", err)
	}
	if err := store.DeleteJourney("login"); err != nil {
		t.Errorf("deleting a missing journey = %v, want nil", err)
	}
}

func TestMemoryStore_SearchFilters(t *testing.T) {
	store := seedMemoryStore(t)

	tests := []struct {
		name     string
		criteria SearchCriteria
		wantIDs  map[string]bool
	}{
		{"by category", SearchCriteria{Category: "auth"}, map[string]bool{"login": true, "signup": true}},
		{"by tag", SearchCriteria{Tag: "smoke"}, map[string]bool{"login": true, "checkout": true}},
		{"by min success rate", SearchCriteria{MinSuccessRate: 0.6}, map[string]bool{"login": true, "checkout": true}},
		{"by domain", SearchCriteria{Domain: "app.example.com"}, map[string]bool{"login": true, "signup": true, "checkout": true}},
		{"combined", SearchCriteria{Category: "auth", MinSuccessRate: 0.6}, map[string]bool{"login": true}},
		{"no match", SearchCriteria{Category: "billing"}, map[string]bool{}},
	}
	for _, tt := range tests {
		result, err := store.SearchJourneys(tt.criteria)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if result.TotalCount != len(tt.wantIDs) {
			t.Errorf("%s: TotalCount = %d, want %d", tt.name, result.TotalCount, len(tt.wantIDs))
		}
		for _, j := range result.Journeys {
			if !tt.wantIDs[j.ID] {
				t.Errorf("%s: unexpected journey %s", tt.name, j.ID)
			}
		}
	}
}

func TestMemoryStore_SearchSorting(t *testing.T) {
	store := seedMemoryStore(t)

	result, err := store.SearchJourneys(SearchCriteria{SortBy: SortBySuccessRate})
	if err != nil {
		t.Fatal(err)
	}
	wantOrder := []string{"login", "checkout", "signup"}
	for i, id := range wantOrder {
		if result.Journeys[i].ID != id {
			t.Fatalf("default desc order = %v, want %v at %d", result.Journeys[i].ID, id, i)
		}
	}

	result, err = store.SearchJourneys(SearchCriteria{SortBy: SortByUsageCount, SortOrder: "asc"})
	if err != nil {
		t.Fatal(err)
	}
	if result.Journeys[0].ID != "signup" || result.Journeys[2].ID != "checkout" {
		t.Errorf("usage asc order = %v, %v, %v",
			result.Journeys[0].ID, result.Journeys[1].ID, result.Journeys[2].ID)
	}

	result, err = store.SearchJourneys(SearchCriteria{SortBy: SortByName, SortOrder: "asc"})
	if err != nil {
		t.Fatal(err)
	}
	if result.Journeys[0].Name != "Checkout" {
		t.Errorf("name asc first = %v, want Checkout", result.Journeys[0].Name)
	}
}

func TestMemoryStore_SearchLimit(t *testing.T) {
	store := seedMemoryStore(t)

	result, err := store.SearchJourneys(SearchCriteria{SortBy: SortBySuccessRate, Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Journeys) != 2 {
		t.Errorf("len = %d, want 2", len(result.Journeys))
	}
	if result.TotalCount != 3 {
		t.Errorf("TotalCount = %d, want 3 (pre-limit)", result.TotalCount)
	}
}

func TestMemoryStore_SaveErr(t *testing.T) {
	store := NewMemoryStore()
	store.SaveErr = errors.New("disk full")

	if err := store.SaveJourney(testJourney("x", "X", "", nil, 0, 0)); err == nil {
		t.Error("SaveJourney = nil, want injected error")
	}
}
