package scoring

import (
	"fmt"
	"sort"

	"github.com/replaykit/journey-runner/pkg/journey"
	"github.com/replaykit/journey-runner/pkg/storage"
)

// Ranked pairs a journey with its score and the reasons behind it.
type Ranked struct {
	Journey *journey.Journey `json:"journey"`
	Score   float64          `json:"score"`
	Reasons []string         `json:"reasons,omitempty"`
}

// Recommend ranks stored journeys by compatibility with the live page
// snapshot, highest first, dropping zero scores.
func Recommend(info PageInfo, store storage.Store, limit int) ([]Ranked, error) {
	result, err := store.SearchJourneys(storage.SearchCriteria{})
	if err != nil {
		return nil, fmt.Errorf("search journeys: %w", err)
	}

	var ranked []Ranked
	for _, j := range result.Journeys {
		c := Compatibility(info, j)
		if c.Score <= 0 {
			continue
		}
		ranked = append(ranked, Ranked{Journey: j, Score: c.Score, Reasons: c.Reasons})
	}

	sort.SliceStable(ranked, func(i, k int) bool { return ranked[i].Score > ranked[k].Score })
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// FindAlternatives ranks stored journeys by similarity to the given one,
// highest first, excluding the journey itself.
func FindAlternatives(j *journey.Journey, store storage.Store, limit int) ([]Ranked, error) {
	result, err := store.SearchJourneys(storage.SearchCriteria{})
	if err != nil {
		return nil, fmt.Errorf("search journeys: %w", err)
	}

	var ranked []Ranked
	for _, candidate := range result.Journeys {
		if candidate.ID == j.ID {
			continue
		}
		score := Similarity(j, candidate)
		if score <= 0 {
			continue
		}
		ranked = append(ranked, Ranked{Journey: candidate, Score: score})
	}

	sort.SliceStable(ranked, func(i, k int) bool { return ranked[i].Score > ranked[k].Score })
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// SuggestImprovements compares the journey against similar, more reliable
// journeys and returns human-readable suggestions.
func SuggestImprovements(j *journey.Journey, store storage.Store) ([]string, error) {
	alternatives, err := FindAlternatives(j, store, 5)
	if err != nil {
		return nil, err
	}

	var suggestions []string
	for _, alt := range alternatives {
		if alt.Score < 0.5 {
			continue
		}
		better := alt.Journey.Metadata
		if better.SuccessRate > j.Metadata.SuccessRate+0.1 && better.UsageCount >= 3 {
			suggestions = append(suggestions, fmt.Sprintf(
				"similar journey %q succeeds %.0f%% of the time (vs %.0f%%); compare its selectors",
				alt.Journey.Name, better.SuccessRate*100, j.Metadata.SuccessRate*100))
		}
		if len(alt.Journey.Steps) < len(j.Steps) {
			suggestions = append(suggestions, fmt.Sprintf(
				"similar journey %q reaches the same flow in %d steps (vs %d)",
				alt.Journey.Name, len(alt.Journey.Steps), len(j.Steps)))
		}
	}

	if j.Metadata.UsageCount >= 5 && j.Metadata.SuccessRate < 0.5 {
		suggestions = append(suggestions,
			"success rate is below 50%; consider re-recording against the current page")
	}

	return suggestions, nil
}
