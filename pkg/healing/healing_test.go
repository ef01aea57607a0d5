package healing

import (
	"context"
	"testing"

	"github.com/replaykit/journey-runner/pkg/driver/mock"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		selector string
		want     []string
	}{
		{"#login-btn", []string{"login-btn"}},
		{".submit-button", []string{"submit-button"}},
		{`input[name='email']`, []string{"input", "name", "email"}},
		{"form.checkout input[name='email']", []string{"form", "checkout", "input", "name", "email"}},
		{"div > span.price", []string{"div", "span", "price"}},
		{`[data-testid="cart-count"]`, []string{"data-testid", "cart-count"}},
		// Fragments under two characters are dropped.
		{"#a", nil},
		{"", nil},
	}

	for _, tc := range tests {
		got := Tokenize(tc.selector)
		if len(got) != len(tc.want) {
			t.Errorf("Tokenize(%q) = %v, want %v", tc.selector, got, tc.want)
			continue
		}
		for i := range tc.want {
			if got[i] != tc.want[i] {
				t.Errorf("Tokenize(%q)[%d] = %q, want %q", tc.selector, i, got[i], tc.want[i])
			}
		}
	}
}

func TestTokenize_Dedupes(t *testing.T) {
	got := Tokenize("input.input input")
	if len(got) != 1 || got[0] != "input" {
		t.Errorf("expected deduped [input], got %v", got)
	}
}

func TestCandidates_AttributeStrategiesFirst(t *testing.T) {
	cands := Candidates("#login-btn")
	if len(cands) == 0 {
		t.Fatal("expected candidates")
	}

	if cands[0].Selector != `[data-testid*="login-btn"]` || cands[0].Strategy != "data-testid" {
		t.Errorf("expected data-testid candidate first, got %+v", cands[0])
	}

	wantOrder := []string{"data-testid", "data-test", "name", "id", "aria-label"}
	for i, strategy := range wantOrder {
		if cands[i].Strategy != strategy {
			t.Errorf("candidate %d strategy %s, want %s", i, cands[i].Strategy, strategy)
		}
	}
}

func TestCandidates_TagFallbacksLast(t *testing.T) {
	cands := Candidates("#login-btn")

	tags := map[string]bool{}
	for _, c := range cands {
		if c.Strategy == "tag" {
			tags[c.Selector] = true
		}
	}
	for _, tag := range []string{"button", "input", "select", "textarea", "a"} {
		if !tags[tag] {
			t.Errorf("missing tag fallback %q", tag)
		}
	}

	// All tag fallbacks come after all attribute candidates.
	seenTag := false
	for _, c := range cands {
		if c.Strategy == "tag" {
			seenTag = true
		} else if seenTag {
			t.Fatalf("attribute candidate %+v after tag fallback", c)
		}
	}
}

func TestCandidates_ExcludesOriginal(t *testing.T) {
	cands := Candidates("button")
	for _, c := range cands {
		if c.Selector == "button" {
			t.Errorf("original selector must be filtered out: %+v", c)
		}
	}
}

func TestCandidates_MultipleFragments(t *testing.T) {
	cands := Candidates(`input[name='email']`)

	// Each attribute strategy covers every fragment before the next
	// strategy starts.
	if cands[0].Selector != `[data-testid*="input"]` {
		t.Errorf("unexpected first candidate %+v", cands[0])
	}
	found := false
	for _, c := range cands {
		if c.Selector == `[name*="email"]` && c.Strategy == "name" {
			found = true
		}
	}
	if !found {
		t.Error("expected a name-attribute candidate for the email fragment")
	}
}

func TestProbe_ReturnsFirstVisibleMatch(t *testing.T) {
	page := mock.New()
	// The name-strategy candidate exists but is hidden; the id-strategy one
	// is visible and must win.
	page.AddElement(`[name*="login-btn"]`, mock.Element{Visible: false})
	page.AddElement(`[id*="login-btn"]`, mock.Element{Visible: true})

	got, err := Probe(context.Background(), page, Candidates("#login-btn"), 0)
	if err != nil {
		t.Fatalf("Probe returned error: %v", err)
	}
	if got.Selector != `[id*="login-btn"]` {
		t.Errorf("expected id candidate, got %+v", got)
	}
}

func TestProbe_NoMatch(t *testing.T) {
	page := mock.New()
	_, err := Probe(context.Background(), page, Candidates("#vanished"), 0)
	if err == nil {
		t.Fatal("expected error when nothing matches")
	}
}
