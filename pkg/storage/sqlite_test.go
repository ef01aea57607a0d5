package storage

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/replaykit/journey-runner/pkg/journey"
)

func openTestDB(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "journeys.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_SaveAndLoadRoundTrip(t *testing.T) {
	store := openTestDB(t)

	j := testJourney("login", "Login", "auth", []string{"smoke", "auth"}, 0.9, 10)
	j.Description = "Sign in with email and password"
	j.StartingContext.RequiredElements = []journey.RequiredElement{
		{Selector: "#email", Type: "input"},
	}
	j.Steps = append(j.Steps,
		&journey.FillStep{ElementTarget: journey.ElementTarget{Selector: "#email"}, Value: "${email}"},
		&journey.ClickStep{ElementTarget: journey.ElementTarget{Selector: "#submit"}},
	)

	if err := store.SaveJourney(j); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.LoadJourney("login")
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Name != j.Name || loaded.Description != j.Description || loaded.Category != j.Category {
		t.Errorf("loaded = %+v", loaded)
	}
	if len(loaded.Steps) != len(j.Steps) {
		t.Fatalf("steps = %d, want %d", len(loaded.Steps), len(j.Steps))
	}
	for i := range j.Steps {
		if loaded.Steps[i].Describe() != j.Steps[i].Describe() {
			t.Errorf("step %d = %q, want %q", i, loaded.Steps[i].Describe(), j.Steps[i].Describe())
		}
	}
	if loaded.Metadata.UsageCount != 10 || loaded.Metadata.SuccessRate != 0.9 {
		t.Errorf("metadata = %+v", loaded.Metadata)
	}
	if len(loaded.StartingContext.RequiredElements) != 1 {
		t.Errorf("required elements = %+v", loaded.StartingContext.RequiredElements)
	}
}

func TestSQLiteStore_UpsertReplaces(t *testing.T) {
	store := openTestDB(t)

	j := testJourney("login", "Login", "auth", nil, 0.5, 4)
	if err := store.SaveJourney(j); err != nil {
		t.Fatal(err)
	}

	j.Name = "Login v2"
	j.Metadata.UsageCount = 5
	if err := store.SaveJourney(j); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.LoadJourney("login")
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Name != "Login v2" || loaded.Metadata.UsageCount != 5 {
		t.Errorf("loaded = %q usage %d, want updated values", loaded.Name, loaded.Metadata.UsageCount)
	}

	result, err := store.SearchJourneys(SearchCriteria{})
	if err != nil {
		t.Fatal(err)
	}
	if result.TotalCount != 1 {
		t.Errorf("TotalCount = %d, want 1 after upsert", result.TotalCount)
	}
}

func TestSQLiteStore_LoadMissing(t *testing.T) {
	store := openTestDB(t)
	if _, err := store.LoadJourney("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStore_Delete(t *testing.T) {
	store := openTestDB(t)

	if err := store.SaveJourney(testJourney("login", "Login", "auth", nil, 0.5, 1)); err != nil {
		t.Fatal(err)
	}
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

func TestSQLiteStore_SearchFilters(t *testing.T) {
	store := openTestDB(t)
	for _, j := range []*journey.Journey{
		testJourney("login", "Login", "auth", []string{"smoke", "auth"}, 0.9, 10),
		testJourney("signup", "Signup", "auth", []string{"auth"}, 0.4, 3),
		testJourney("checkout", "Checkout", "shopping", []string{"smoke", "cart"}, 0.7, 25),
	} {
		if err := store.SaveJourney(j); err != nil {
			t.Fatal(err)
		}
	}

	result, err := store.SearchJourneys(SearchCriteria{Category: "auth", SortBy: SortBySuccessRate})
	if err != nil {
		t.Fatal(err)
	}
	if result.TotalCount != 2 {
		t.Fatalf("TotalCount = %d, want 2", result.TotalCount)
	}
	if result.Journeys[0].ID != "login" || result.Journeys[1].ID != "signup" {
		t.Errorf("order = %v, %v", result.Journeys[0].ID, result.Journeys[1].ID)
	}

	result, err = store.SearchJourneys(SearchCriteria{Tag: "smoke"})
	if err != nil {
		t.Fatal(err)
	}
	if result.TotalCount != 2 {
		t.Errorf("tag filter TotalCount = %d, want 2", result.TotalCount)
	}

	// "art" must not match the "cart" tag via substring.
	result, err = store.SearchJourneys(SearchCriteria{Tag: "art"})
	if err != nil {
		t.Fatal(err)
	}
	if result.TotalCount != 0 {
		t.Errorf("partial tag matched %d journeys, want 0", result.TotalCount)
	}

	result, err = store.SearchJourneys(SearchCriteria{MinSuccessRate: 0.6, SortBy: SortByUsageCount, SortOrder: "asc"})
	if err != nil {
		t.Fatal(err)
	}
	if result.TotalCount != 2 || result.Journeys[0].ID != "login" {
		t.Errorf("rate+sort = %d journeys, first %v", result.TotalCount, result.Journeys[0].ID)
	}

	result, err = store.SearchJourneys(SearchCriteria{Difficulty: journey.DifficultyEasy, Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Journeys) != 1 || result.TotalCount != 3 {
		t.Errorf("limited = %d of %d, want 1 of 3", len(result.Journeys), result.TotalCount)
	}
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "journeys.db")

	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.SaveJourney(testJourney("login", "Login", "auth", nil, 0.5, 1)); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	loaded, err := reopened.LoadJourney("login")
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Name != "Login" {
		t.Errorf("loaded = %q", loaded.Name)
	}
}
