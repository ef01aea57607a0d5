// Package monitor exposes a read-only HTTP surface over the journey store
// and the playback event history.
package monitor

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/replaykit/journey-runner/pkg/events"
	"github.com/replaykit/journey-runner/pkg/journey"
	"github.com/replaykit/journey-runner/pkg/logger"
	"github.com/replaykit/journey-runner/pkg/playback"
	"github.com/replaykit/journey-runner/pkg/storage"
)

// Handler serves the monitoring API.
type Handler struct {
	store   storage.Store
	history *events.History
	engine  *playback.Engine
}

// NewHandler constructs a handler. history and engine may be nil; the
// corresponding endpoints then report empty or idle.
func NewHandler(store storage.Store, history *events.History, engine *playback.Engine) *Handler {
	return &Handler{store: store, history: history, engine: engine}
}

// NewRouter registers the monitoring routes.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", h.healthz)
	r.Route("/api", func(r chi.Router) {
		r.Get("/journeys", h.listJourneys)
		r.Get("/journeys/{id}", h.getJourney)
		r.Get("/events", h.listEvents)
		r.Get("/playback", h.playbackState)
	})

	return r
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// journeyView is the wire shape of one journey; steps are summarized as
// descriptions rather than full definitions.
type journeyView struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Domain      string   `json:"domain,omitempty"`
	StepCount   int      `json:"stepCount"`
	Steps       []string `json:"steps,omitempty"`
	UsageCount  int      `json:"usageCount"`
	SuccessRate float64  `json:"successRate"`
	Difficulty  string   `json:"difficulty,omitempty"`
	LastUsed    string   `json:"lastUsed,omitempty"`
}

func viewOf(j *journey.Journey, withSteps bool) journeyView {
	v := journeyView{
		ID:          j.ID,
		Name:        j.Name,
		Description: j.Description,
		Category:    j.Category,
		Tags:        j.Tags,
		Domain:      j.Domain(),
		StepCount:   len(j.Steps),
		UsageCount:  j.Metadata.UsageCount,
		SuccessRate: j.Metadata.SuccessRate,
		Difficulty:  string(j.Metadata.Difficulty),
	}
	if !j.Metadata.LastUsed.IsZero() {
		v.LastUsed = j.Metadata.LastUsed.Format(time.RFC3339)
	}
	if withSteps {
		for _, s := range j.Steps {
			v.Steps = append(v.Steps, s.Describe())
		}
	}
	return v
}

func (h *Handler) listJourneys(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	criteria := storage.SearchCriteria{
		Domain:    q.Get("domain"),
		Category:  q.Get("category"),
		Tag:       q.Get("tag"),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
	}
	if raw := q.Get("minSuccessRate"); raw != "" {
		rate, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid minSuccessRate")
			return
		}
		criteria.MinSuccessRate = rate
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		criteria.Limit = limit
	}

	result, err := h.store.SearchJourneys(criteria)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	views := make([]journeyView, 0, len(result.Journeys))
	for _, j := range result.Journeys {
		views = append(views, viewOf(j, false))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"journeys":   views,
		"totalCount": result.TotalCount,
	})
}

func (h *Handler) getJourney(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	j, err := h.store.LoadJourney(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "journey not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "load failed")
		return
	}
	writeJSON(w, http.StatusOK, viewOf(j, true))
}

func (h *Handler) listEvents(w http.ResponseWriter, r *http.Request) {
	var recent []events.Event
	if h.history != nil {
		recent = h.history.Recent()
	}
	if recent == nil {
		recent = []events.Event{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": recent})
}

func (h *Handler) playbackState(w http.ResponseWriter, r *http.Request) {
	state := "idle"
	if h.engine != nil {
		state = h.engine.State().String()
	}
	writeJSON(w, http.StatusOK, map[string]string{"state": state})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
