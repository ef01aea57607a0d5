// Package storage persists journeys and serves discovery queries.
package storage

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/replaykit/journey-runner/pkg/journey"
)

// ErrNotFound is returned when a journey id does not exist.
var ErrNotFound = errors.New("journey not found")

// Sort keys accepted by SearchCriteria.
const (
	SortBySuccessRate = "successRate"
	SortByUsageCount  = "usageCount"
	SortByLastUsed    = "lastUsed"
	SortByName        = "name"
)

// SearchCriteria filters and orders journey searches.
type SearchCriteria struct {
	Domain         string             `json:"domain,omitempty"`
	Category       string             `json:"category,omitempty"`
	Tag            string             `json:"tag,omitempty"`
	MinSuccessRate float64            `json:"minSuccessRate,omitempty"`
	Difficulty     journey.Difficulty `json:"difficulty,omitempty"`
	SortBy         string             `json:"sortBy,omitempty"`    // successRate, usageCount, lastUsed, name
	SortOrder      string             `json:"sortOrder,omitempty"` // asc or desc (default desc)
	Limit          int                `json:"limit,omitempty"`
}

// SearchResult is the outcome of a journey search.
type SearchResult struct {
	Journeys   []*journey.Journey `json:"journeys"`
	TotalCount int                `json:"totalCount"`
}

// Store is the journey persistence collaborator. Implementations:
// SQLite, in-memory.
type Store interface {
	// LoadJourney returns the journey with the given id, or ErrNotFound.
	LoadJourney(id string) (*journey.Journey, error)

	// SaveJourney inserts or replaces a journey.
	SaveJourney(j *journey.Journey) error

	// DeleteJourney removes a journey. Missing ids are not an error.
	DeleteJourney(id string) error

	// SearchJourneys returns journeys matching the criteria. TotalCount is
	// the match count before Limit is applied.
	SearchJourneys(c SearchCriteria) (*SearchResult, error)

	// Close releases underlying resources.
	Close() error
}

// matches applies the criteria filters to a journey.
func matches(j *journey.Journey, c SearchCriteria) bool {
	if c.Domain != "" && !strings.EqualFold(j.Domain(), c.Domain) {
		return false
	}
	if c.Category != "" && j.Category != c.Category {
		return false
	}
	if c.Tag != "" && !j.HasTag(c.Tag) {
		return false
	}
	if c.MinSuccessRate > 0 && j.Metadata.SuccessRate < c.MinSuccessRate {
		return false
	}
	if c.Difficulty != "" && j.Metadata.Difficulty != c.Difficulty {
		return false
	}
	return true
}

// sortJourneys orders journeys in place by the criteria sort key.
func sortJourneys(js []*journey.Journey, sortBy, order string) {
	asc := order == "asc"
	less := func(a, b *journey.Journey) bool {
		switch sortBy {
		case SortByUsageCount:
			return a.Metadata.UsageCount < b.Metadata.UsageCount
		case SortByLastUsed:
			return a.Metadata.LastUsed.Before(b.Metadata.LastUsed)
		case SortByName:
			return a.Name < b.Name
		default: // successRate
			return a.Metadata.SuccessRate < b.Metadata.SuccessRate
		}
	}
	sort.SliceStable(js, func(i, k int) bool {
		if asc {
			return less(js[i], js[k])
		}
		return less(js[k], js[i])
	})
}

// MemoryStore is an in-memory Store for tests and ephemeral runs.
type MemoryStore struct {
	mu       sync.RWMutex
	journeys map[string]*journey.Journey

	// SaveErr, when set, makes SaveJourney fail. Used to exercise the
	// persistence-failure path.
	SaveErr error
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{journeys: make(map[string]*journey.Journey)}
}

// LoadJourney returns a copy of the stored journey.
func (s *MemoryStore) LoadJourney(id string) (*journey.Journey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.journeys[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *j
	return &cp, nil
}

// SaveJourney inserts or replaces a journey.
func (s *MemoryStore) SaveJourney(j *journey.Journey) error {
	if s.SaveErr != nil {
		return s.SaveErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *j
	s.journeys[j.ID] = &cp
	return nil
}

// DeleteJourney removes a journey.
func (s *MemoryStore) DeleteJourney(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.journeys, id)
	return nil
}

// SearchJourneys filters and sorts the stored journeys.
func (s *MemoryStore) SearchJourneys(c SearchCriteria) (*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found []*journey.Journey
	for _, j := range s.journeys {
		if matches(j, c) {
			cp := *j
			found = append(found, &cp)
		}
	}

	sortJourneys(found, c.SortBy, c.SortOrder)

	total := len(found)
	if c.Limit > 0 && len(found) > c.Limit {
		found = found[:c.Limit]
	}

	return &SearchResult{Journeys: found, TotalCount: total}, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
