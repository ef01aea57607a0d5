// Package healing generates and probes alternative element selectors when a
// recorded selector no longer matches anything on the page.
package healing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/replaykit/journey-runner/pkg/core"
)

// Candidate is one alternative locator strategy, in priority order.
type Candidate struct {
	Selector string `json:"selector"`
	Strategy string `json:"strategy"` // data-testid, data-test, name, id, aria-label, tag
}

// attribute strategies tried per fragment, highest priority first.
var attributeStrategies = []struct {
	name   string
	format string
}{
	{"data-testid", `[data-testid*=%q]`},
	{"data-test", `[data-test*=%q]`},
	{"name", `[name*=%q]`},
	{"id", `[id*=%q]`},
	{"aria-label", `[aria-label*=%q]`},
}

// generic tag fallbacks, last resort.
var tagFallbacks = []string{"button", "input", "select", "textarea", "a"}

// Candidates generates a ranked list of alternative selectors for the given
// original. Pure generation: no page access. Candidates equal to the
// original are filtered out to avoid a wasted probe.
func Candidates(original string) []Candidate {
	fragments := Tokenize(original)

	var out []Candidate
	seen := map[string]bool{original: true}

	for _, strat := range attributeStrategies {
		for _, frag := range fragments {
			sel := fmt.Sprintf(strat.format, frag)
			if seen[sel] {
				continue
			}
			seen[sel] = true
			out = append(out, Candidate{Selector: sel, Strategy: strat.name})
		}
	}

	for _, tag := range tagFallbacks {
		if seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, Candidate{Selector: tag, Strategy: "tag"})
	}

	return out
}

// Tokenize splits a selector into identifier-like fragments, stripping
// #/./bracket syntax. "#login-btn" yields ["login-btn"];
// "form.checkout input[name='email']" yields ["form", "checkout", "input", "email"].
func Tokenize(selector string) []string {
	var fragments []string
	var current strings.Builder

	flush := func() {
		frag := current.String()
		current.Reset()
		if len(frag) < 2 {
			return // single characters make useless contains-probes
		}
		for _, existing := range fragments {
			if existing == frag {
				return
			}
		}
		fragments = append(fragments, frag)
	}

	for _, r := range selector {
		switch {
		case r == '#' || r == '.' || r == '[' || r == ']' ||
			r == '=' || r == '\'' || r == '"' || r == ' ' ||
			r == '>' || r == '~' || r == '+' || r == ':' || r == '*' || r == '(' || r == ')':
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()

	return fragments
}

// Probe checks candidates against the live page in order and returns the
// first that exists and is visible. The per-candidate timeout is short so a
// long candidate list stays bounded.
func Probe(ctx context.Context, page core.Page, candidates []Candidate, timeout time.Duration) (*Candidate, error) {
	if timeout <= 0 {
		timeout = 1500 * time.Millisecond
	}

	for i := range candidates {
		c := &candidates[i]
		n, err := page.Count(ctx, c.Selector)
		if err != nil || n == 0 {
			continue
		}
		visible, err := page.IsVisible(ctx, c.Selector, timeout)
		if err != nil || !visible {
			continue
		}
		return c, nil
	}

	return nil, core.ErrElementNotFound.WithMessage("no healing candidate matched")
}
