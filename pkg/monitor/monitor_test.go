package monitor

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/replaykit/journey-runner/pkg/events"
	"github.com/replaykit/journey-runner/pkg/journey"
	"github.com/replaykit/journey-runner/pkg/storage"
)

func seedStore(t *testing.T) storage.Store {
	t.Helper()
	store := storage.NewMemoryStore()
	journeys := []*journey.Journey{
		{
			ID:       "checkout-flow",
			Name:     "Checkout",
			Category: "shopping",
			Tags:     []string{"cart", "payment"},
			StartingContext: journey.StartingContext{
				ExactURL: "https://shop.example.com/cart",
			},
			Steps: []journey.Step{
				&journey.ClickStep{
					BaseStep:      journey.BaseStep{StepID: "step-1"},
					ElementTarget: journey.ElementTarget{Selector: "#checkout"},
				},
			},
			Metadata: journey.Metadata{UsageCount: 12, SuccessRate: 0.9},
		},
		{
			ID:       "login-flow",
			Name:     "Login",
			Category: "auth",
			StartingContext: journey.StartingContext{
				ExactURL: "https://shop.example.com/login",
			},
			Steps: []journey.Step{
				&journey.FillStep{
					BaseStep:      journey.BaseStep{StepID: "step-1"},
					ElementTarget: journey.ElementTarget{Selector: "#email"},
					Value:         "x",
				},
			},
			Metadata: journey.Metadata{UsageCount: 3, SuccessRate: 0.4},
		},
	}
	for _, j := range journeys {
		if err := store.SaveJourney(j); err != nil {
			t.Fatal(err)
		}
	}
	return store
}

func doRequest(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response for %s: %v", path, err)
	}
	return rec, body
}

func TestHealthz(t *testing.T) {
	router := NewRouter(NewHandler(seedStore(t), nil, nil))
	rec, body := doRequest(t, router, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body["status"] != "ok" {
		t.Errorf("unexpected body %v", body)
	}
}

func TestListJourneys(t *testing.T) {
	router := NewRouter(NewHandler(seedStore(t), nil, nil))
	rec, body := doRequest(t, router, "/api/journeys")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body["totalCount"].(float64) != 2 {
		t.Errorf("expected 2 journeys, got %v", body["totalCount"])
	}
}

func TestListJourneysFiltered(t *testing.T) {
	router := NewRouter(NewHandler(seedStore(t), nil, nil))
	rec, body := doRequest(t, router, "/api/journeys?category=auth")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	journeys := body["journeys"].([]any)
	if len(journeys) != 1 {
		t.Fatalf("expected 1 journey, got %d", len(journeys))
	}
	first := journeys[0].(map[string]any)
	if first["id"] != "login-flow" {
		t.Errorf("expected login-flow, got %v", first["id"])
	}
}

func TestListJourneysRejectsBadQuery(t *testing.T) {
	router := NewRouter(NewHandler(seedStore(t), nil, nil))
	rec, _ := doRequest(t, router, "/api/journeys?minSuccessRate=high")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestGetJourney(t *testing.T) {
	router := NewRouter(NewHandler(seedStore(t), nil, nil))
	rec, body := doRequest(t, router, "/api/journeys/checkout-flow")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body["name"] != "Checkout" {
		t.Errorf("unexpected journey %v", body)
	}
	if body["stepCount"].(float64) != 1 {
		t.Errorf("expected 1 step, got %v", body["stepCount"])
	}
	steps := body["steps"].([]any)
	if len(steps) != 1 {
		t.Errorf("expected step descriptions, got %v", steps)
	}
}

func TestGetJourneyNotFound(t *testing.T) {
	router := NewRouter(NewHandler(seedStore(t), nil, nil))
	rec, _ := doRequest(t, router, "/api/journeys/missing")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestListEvents(t *testing.T) {
	history := events.NewHistory(8)
	history.Publish(events.Event{
		Kind:      events.PlaybackStarted,
		JourneyID: "checkout-flow",
		Timestamp: time.Now(),
	})

	router := NewRouter(NewHandler(seedStore(t), history, nil))
	rec, body := doRequest(t, router, "/api/events")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	evts := body["events"].([]any)
	if len(evts) != 1 {
		t.Fatalf("expected 1 event, got %d", len(evts))
	}
}

func TestPlaybackStateIdleWithoutEngine(t *testing.T) {
	router := NewRouter(NewHandler(seedStore(t), nil, nil))
	rec, body := doRequest(t, router, "/api/playback")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body["state"] != "idle" {
		t.Errorf("expected idle, got %v", body["state"])
	}
}
