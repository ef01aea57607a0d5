// Package scoring computes compatibility and similarity scores for journeys.
// The score functions are pure; live-page data is captured once into a
// PageInfo snapshot.
package scoring

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/replaykit/journey-runner/pkg/core"
	"github.com/replaykit/journey-runner/pkg/journey"
)

// PageType classifies what kind of page is loaded.
type PageType string

// Known page types.
const (
	PageLogin    PageType = "login"
	PageSignup   PageType = "signup"
	PageCheckout PageType = "checkout"
	PageAdmin    PageType = "admin"
	PageProfile  PageType = "profile"
	PageSearch   PageType = "search"
	PageForm     PageType = "form"
	PageGeneral  PageType = "general"
)

// Complexity buckets for pages.
const (
	ComplexityLow    = 1
	ComplexityMedium = 2
	ComplexityHigh   = 3
)

// PageInfo is a point-in-time snapshot of a live page, sufficient for
// scoring without further page access.
type PageInfo struct {
	URL              string          `json:"url"`
	BodyText         string          `json:"-"`
	InteractiveCount int             `json:"interactiveCount"`
	FormCount        int             `json:"formCount"`
	HasPasswordField bool            `json:"hasPasswordField"`
	HasSearchField   bool            `json:"hasSearchField"`
	Present          map[string]bool `json:"-"` // Probed selector presence
}

// SnapshotTimeout bounds the page probes performed by Snapshot.
const SnapshotTimeout = 5 * time.Second

// Snapshot captures a PageInfo from a live page. Selector presence is probed
// for the union of the given journeys' required elements so Compatibility can
// stay pure. Probe failures degrade to absent.
func Snapshot(ctx context.Context, page core.Page, journeys ...*journey.Journey) PageInfo {
	ctx, cancel := context.WithTimeout(ctx, SnapshotTimeout)
	defer cancel()

	info := PageInfo{
		URL:     page.URL(),
		Present: make(map[string]bool),
	}

	if text, err := page.BodyText(ctx); err == nil {
		info.BodyText = strings.ToLower(text)
	}
	if n, err := page.Count(ctx, "button, input, select, textarea, a"); err == nil {
		info.InteractiveCount = n
	}
	if n, err := page.Count(ctx, "form"); err == nil {
		info.FormCount = n
	}
	if n, err := page.Count(ctx, `input[type="password"]`); err == nil {
		info.HasPasswordField = n > 0
	}
	if n, err := page.Count(ctx, `input[type="search"]`); err == nil {
		info.HasSearchField = n > 0
	}

	for _, j := range journeys {
		for _, el := range j.StartingContext.RequiredElements {
			if _, done := info.Present[el.Selector]; done {
				continue
			}
			n, err := page.Count(ctx, el.Selector)
			info.Present[el.Selector] = err == nil && n > 0
		}
	}

	return info
}

// Type classifies the page via heuristic content probes.
func (p PageInfo) Type() PageType {
	text := p.BodyText
	switch {
	case p.HasPasswordField && containsAny(text, "sign up", "signup", "register", "create account", "create an account"):
		return PageSignup
	case p.HasPasswordField || containsAny(text, "log in", "login", "sign in"):
		return PageLogin
	case containsAny(text, "checkout", "payment", "shipping address", "place order", "cart total"):
		return PageCheckout
	case containsAny(text, "admin", "dashboard", "control panel"):
		return PageAdmin
	case containsAny(text, "profile", "account settings", "my account"):
		return PageProfile
	case p.HasSearchField || containsAny(text, "search results"):
		return PageSearch
	case p.FormCount > 0:
		return PageForm
	default:
		return PageGeneral
	}
}

// Complexity buckets the page by interactive element and form counts.
func (p PageInfo) Complexity() int {
	score := p.InteractiveCount + 5*p.FormCount
	switch {
	case score < 15:
		return ComplexityLow
	case score < 40:
		return ComplexityMedium
	default:
		return ComplexityHigh
	}
}

// Domain returns the page URL host.
func (p PageInfo) Domain() string {
	u, err := url.Parse(p.URL)
	if err != nil {
		return ""
	}
	return u.Host
}

// JourneyType classifies a journey by inspecting its name, description,
// tags, and step content for keyword cues.
func JourneyType(j *journey.Journey) PageType {
	text := journeyText(j)
	switch {
	case containsAny(text, "sign up", "signup", "register"):
		return PageSignup
	case containsAny(text, "login", "log in", "sign in", "password"):
		return PageLogin
	case containsAny(text, "checkout", "payment", "cart", "order"):
		return PageCheckout
	case containsAny(text, "admin", "dashboard"):
		return PageAdmin
	case containsAny(text, "profile", "account"):
		return PageProfile
	case containsAny(text, "search"):
		return PageSearch
	case hasAction(j, journey.ActionFill):
		return PageForm
	default:
		return PageGeneral
	}
}

// journeyText lowers and joins all textual cues of a journey.
func journeyText(j *journey.Journey) string {
	var b strings.Builder
	b.WriteString(j.Name)
	b.WriteString(" ")
	b.WriteString(j.Description)
	b.WriteString(" ")
	b.WriteString(j.Category)
	for _, t := range j.Tags {
		b.WriteString(" ")
		b.WriteString(t)
	}
	for _, s := range j.Steps {
		b.WriteString(" ")
		b.WriteString(s.Describe())
	}
	return strings.ToLower(b.String())
}

func hasAction(j *journey.Journey, action journey.Action) bool {
	for _, s := range j.Steps {
		if s.Action() == action {
			return true
		}
	}
	return false
}

func containsAny(text string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
