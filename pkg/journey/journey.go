package journey

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// Difficulty classifies how demanding a journey is to replay.
type Difficulty string

// Difficulty levels.
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Level maps the difficulty to an ordinal 1-3. Unknown values map to 2.
func (d Difficulty) Level() int {
	switch d {
	case DifficultyEasy:
		return 1
	case DifficultyHard:
		return 3
	default:
		return 2
	}
}

// Metadata holds historical performance data for a journey.
type Metadata struct {
	UsageCount    int        `yaml:"usageCount" json:"usageCount"`
	SuccessRate   float64    `yaml:"successRate" json:"successRate"`
	AvgDurationMs float64    `yaml:"avgDurationMs" json:"avgDurationMs"`
	Difficulty    Difficulty `yaml:"difficulty" json:"difficulty"`
	LastUsed      time.Time  `yaml:"lastUsed" json:"lastUsed"`
}

// RecordRun folds one replay outcome into the metadata and returns the
// updated value. UsageCount is incremented first; successRate and
// avgDurationMs are exact running means recomputed with the post-increment
// count. A non-positive duration updates the count and rate but leaves the
// duration mean untouched.
func (m Metadata) RecordRun(success bool, durationMs int64, at time.Time) Metadata {
	n := m.UsageCount + 1
	outcome := 0.0
	if success {
		outcome = 1.0
	}
	m.SuccessRate = (m.SuccessRate*float64(n-1) + outcome) / float64(n)
	if durationMs > 0 {
		m.AvgDurationMs = (m.AvgDurationMs*float64(n-1) + float64(durationMs)) / float64(n)
	}
	m.UsageCount = n
	m.LastUsed = at
	return m
}

// RequiredElement describes one element that must be present before replay.
type RequiredElement struct {
	Selector    string `yaml:"selector" json:"selector"`
	Type        string `yaml:"type" json:"type"`
	Description string `yaml:"description" json:"description,omitempty"`
}

// Interactive reports whether the element type requires a visibility check
// in addition to existence.
func (e RequiredElement) Interactive() bool {
	switch e.Type {
	case "button", "input", "form":
		return true
	}
	return false
}

// StartingContext describes the preconditions a page must satisfy before a
// journey may be replayed.
type StartingContext struct {
	URLPattern       string            `yaml:"urlPattern" json:"urlPattern"`
	ExactURL         string            `yaml:"exactUrl" json:"exactUrl,omitempty"`
	RequiredElements []RequiredElement `yaml:"requiredElements" json:"requiredElements,omitempty"`
	PageState        map[string]string `yaml:"pageState" json:"pageState,omitempty"`
	MinContentLength int               `yaml:"minContentLength" json:"minContentLength,omitempty"`
}

// MatchesURL reports whether the given live URL satisfies the context: an
// exactUrl equality check first, then the glob pattern with * wildcards,
// anchored and case-insensitive.
func (sc StartingContext) MatchesURL(liveURL string) bool {
	if sc.ExactURL != "" && strings.EqualFold(liveURL, sc.ExactURL) {
		return true
	}
	return MatchURLPattern(sc.URLPattern, liveURL)
}

// MatchURLPattern compiles a glob-like pattern (* wildcard) by escaping
// regex metacharacters, anchors it, and matches case-insensitively.
func MatchURLPattern(pattern, liveURL string) bool {
	if pattern == "" {
		return false
	}
	escaped := regexp.QuoteMeta(pattern)
	escaped = strings.ReplaceAll(escaped, `\*`, ".*")
	re, err := regexp.Compile("(?i)^" + escaped + "$")
	if err != nil {
		return false
	}
	return re.MatchString(liveURL)
}

// Journey is a stored, named sequence of browser actions plus preconditions
// and historical performance metadata.
type Journey struct {
	ID              string          `yaml:"id" json:"id"`
	Name            string          `yaml:"name" json:"name"`
	Description     string          `yaml:"description" json:"description,omitempty"`
	Tags            []string        `yaml:"tags" json:"tags,omitempty"`
	Category        string          `yaml:"category" json:"category,omitempty"`
	StartingContext StartingContext `yaml:"startingContext" json:"startingContext"`
	Steps           []Step          `yaml:"-" json:"-"`
	Metadata        Metadata        `yaml:"metadata" json:"metadata"`

	// SourcePath is the file the journey was parsed from, if any.
	SourcePath string `yaml:"-" json:"-"`
}

// Replayable reports whether the journey can be executed: it must have at
// least one step and every step must pass its own validation.
func (j *Journey) Replayable() error {
	if len(j.Steps) == 0 {
		return fmt.Errorf("journey %q has no steps", j.ID)
	}
	for i, step := range j.Steps {
		if err := step.Validate(); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}
	return nil
}

// Domain returns the host the journey targets, derived from the starting
// context URL (exact first, then pattern) or the first navigate step.
// Wildcard fragments in pattern hosts are stripped.
func (j *Journey) Domain() string {
	for _, raw := range []string{j.StartingContext.ExactURL, j.StartingContext.URLPattern} {
		if d := hostOf(raw); d != "" {
			return d
		}
	}
	for _, step := range j.Steps {
		if nav, ok := step.(*NavigateStep); ok {
			return hostOf(nav.URL)
		}
	}
	return ""
}

func hostOf(raw string) string {
	if raw == "" {
		return ""
	}
	// Strip a trailing wildcard path so url.Parse sees a clean URL.
	raw = strings.ReplaceAll(raw, "*", "")
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimSuffix(u.Host, ".")
}

// HasTag reports whether the journey carries the given tag.
func (j *Journey) HasTag(tag string) bool {
	for _, t := range j.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
