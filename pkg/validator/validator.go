// Package validator checks whether a live page satisfies a journey's
// starting context before replay begins.
package validator

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/replaykit/journey-runner/pkg/core"
	"github.com/replaykit/journey-runner/pkg/journey"
	"github.com/replaykit/journey-runner/pkg/storage"
)

// DefaultProbeTimeout bounds each visibility probe.
const DefaultProbeTimeout = 1500 * time.Millisecond

// maxAlternatives caps how many alternative journeys a failed validation
// surfaces.
const maxAlternatives = 3

// Result is the validator's structured verdict. It is advisory: the
// playback engine decides what to do with an invalid result.
type Result struct {
	IsValid             bool     `json:"isValid"`
	Confidence          float64  `json:"confidence"`
	MissingElements     []string `json:"missingElements,omitempty"`
	URLMismatch         bool     `json:"urlMismatch"`
	StateIssues         []string `json:"stateIssues,omitempty"`
	Suggestions         []string `json:"suggestions,omitempty"`
	AlternativeJourneys []string `json:"alternativeJourneys,omitempty"`
}

// Validator probes a live page against a starting context. Never returns an
// error: internal probe failures degrade to recorded issues.
type Validator struct {
	store        storage.Store // Optional; enables alternative-journey lookup
	probeTimeout time.Duration
}

// New creates a Validator. store may be nil.
func New(store storage.Store) *Validator {
	return &Validator{
		store:        store,
		probeTimeout: DefaultProbeTimeout,
	}
}

// Validate checks the page against the starting context and returns a
// structured verdict with remediation suggestions.
func (v *Validator) Validate(ctx context.Context, sc journey.StartingContext, page core.Page) Result {
	res := Result{}
	checks, passed := 0, 0

	// URL check: exactUrl equality first, then the glob pattern.
	if sc.ExactURL != "" || sc.URLPattern != "" {
		checks++
		if sc.MatchesURL(page.URL()) {
			passed++
		} else {
			res.URLMismatch = true
			if sc.ExactURL != "" {
				res.Suggestions = append(res.Suggestions,
					fmt.Sprintf("navigate to %s before replaying", sc.ExactURL))
			} else {
				res.Suggestions = append(res.Suggestions,
					fmt.Sprintf("current URL does not match pattern %s", sc.URLPattern))
			}
		}
	}

	// Required elements. Failures accumulate; none is fatal in isolation.
	for _, el := range sc.RequiredElements {
		checks++
		if v.probeElement(ctx, page, el) {
			passed++
			continue
		}
		res.MissingElements = append(res.MissingElements, el.Selector)
	}
	if len(res.MissingElements) > 0 {
		res.Suggestions = append(res.Suggestions,
			fmt.Sprintf("%d required element(s) missing; the page layout may have changed since recording",
				len(res.MissingElements)))
	}

	// Page state expectations.
	for key, expected := range sc.PageState {
		checks++
		if issue := v.probeState(ctx, page, key, expected); issue != "" {
			res.StateIssues = append(res.StateIssues, issue)
		} else {
			passed++
		}
	}

	// Minimum content length rejects blank or still-loading pages.
	if sc.MinContentLength > 0 {
		checks++
		if length := v.contentLength(ctx, page); length >= sc.MinContentLength {
			passed++
		} else {
			res.StateIssues = append(res.StateIssues,
				fmt.Sprintf("page content length %d below required %d", length, sc.MinContentLength))
			res.Suggestions = append(res.Suggestions,
				"wait for the page to finish loading, or check for an error page")
		}
	}

	res.IsValid = !res.URLMismatch && len(res.MissingElements) == 0 && len(res.StateIssues) == 0
	if checks > 0 {
		res.Confidence = float64(passed) / float64(checks)
	} else {
		res.Confidence = 1.0
	}

	if !res.IsValid {
		res.AlternativeJourneys = v.alternatives(page.URL())
	}

	return res
}

// probeElement checks existence via a count query and, for interactive
// types, visibility with a short timeout.
func (v *Validator) probeElement(ctx context.Context, page core.Page, el journey.RequiredElement) bool {
	n, err := page.Count(ctx, el.Selector)
	if err != nil || n == 0 {
		return false
	}
	if !el.Interactive() {
		return true
	}
	visible, err := page.IsVisible(ctx, el.Selector, v.probeTimeout)
	return err == nil && visible
}

// probeState runs a best-effort heuristic probe for one page-state
// expectation and returns a human-readable issue, or "" when satisfied.
func (v *Validator) probeState(ctx context.Context, page core.Page, key, expected string) string {
	switch key {
	case "loggedIn":
		want := expected == "true"
		got := v.looksLoggedIn(ctx, page)
		if got != want {
			return fmt.Sprintf("expected loggedIn=%v but page looks loggedIn=%v", want, got)
		}
		return ""

	case "cartItems":
		want, err := strconv.Atoi(expected)
		if err != nil {
			return fmt.Sprintf("cartItems expectation %q is not a number", expected)
		}
		got, ok := v.cartCount(ctx, page)
		if !ok {
			return "could not determine cart item count"
		}
		if got != want {
			return fmt.Sprintf("expected %d cart item(s) but found %d", want, got)
		}
		return ""

	case "userRole":
		text, err := page.BodyText(ctx)
		if err != nil || !strings.Contains(strings.ToLower(text), strings.ToLower(expected)) {
			return fmt.Sprintf("expected user role %q not reflected on page", expected)
		}
		return ""

	default:
		// Custom probe keyed by selector: expected is "present" or "absent".
		n, err := page.Count(ctx, key)
		present := err == nil && n > 0
		want := expected != "absent"
		if present != want {
			return fmt.Sprintf("state probe %q: expected %s, element is %s",
				key, presence(want), presence(present))
		}
		return ""
	}
}

// looksLoggedIn probes for a logout control (implies logged in) and for a
// password field (implies logged out).
func (v *Validator) looksLoggedIn(ctx context.Context, page core.Page) bool {
	logoutSelectors := `a[href*="logout"], a[href*="signout"], button[name*="logout"], [data-testid*="logout"]`
	if n, err := page.Count(ctx, logoutSelectors); err == nil && n > 0 {
		return true
	}
	if n, err := page.Count(ctx, `input[type="password"]`); err == nil && n > 0 {
		return false
	}
	return false
}

// cartCount reads a cart badge and parses its number.
func (v *Validator) cartCount(ctx context.Context, page core.Page) (int, bool) {
	for _, sel := range []string{`[data-cart-count]`, `.cart-count`, `[data-testid*="cart-count"]`} {
		text, err := page.Text(ctx, sel)
		if err != nil {
			continue
		}
		if n, err := strconv.Atoi(strings.TrimSpace(text)); err == nil {
			return n, true
		}
	}
	return 0, false
}

func (v *Validator) contentLength(ctx context.Context, page core.Page) int {
	text, err := page.BodyText(ctx)
	if err != nil {
		return 0
	}
	return len(strings.TrimSpace(text))
}

// alternatives surfaces up to three journeys sharing the current page's
// domain, most reliable first.
func (v *Validator) alternatives(liveURL string) []string {
	if v.store == nil {
		return nil
	}
	domain := hostOf(liveURL)
	if domain == "" {
		return nil
	}

	result, err := v.store.SearchJourneys(storage.SearchCriteria{
		Domain:    domain,
		SortBy:    storage.SortBySuccessRate,
		SortOrder: "desc",
		Limit:     maxAlternatives,
	})
	if err != nil {
		return nil
	}

	ids := make([]string, 0, len(result.Journeys))
	for _, j := range result.Journeys {
		ids = append(ids, j.ID)
	}
	return ids
}

func hostOf(raw string) string {
	rest, ok := strings.CutPrefix(raw, "https://")
	if !ok {
		rest, ok = strings.CutPrefix(raw, "http://")
		if !ok {
			return ""
		}
	}
	if i := strings.IndexAny(rest, "/?#"); i >= 0 {
		rest = rest[:i]
	}
	return rest
}

func presence(p bool) string {
	if p {
		return "present"
	}
	return "absent"
}
