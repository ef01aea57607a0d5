package scoring

import (
	"strings"

	"github.com/replaykit/journey-runner/pkg/journey"
)

// Similarity weights. They sum to 1.0.
const (
	weightDomain    = 0.25
	weightActions   = 0.30
	weightStepCount = 0.15
	weightCategory  = 0.15
	weightTags      = 0.15
)

// ActionSignature is the set of boolean action flags scanned from a
// journey's steps and descriptions, used for similarity overlap.
type ActionSignature struct {
	HasLogin      bool
	HasSignup     bool
	HasFormFill   bool
	HasSubmit     bool
	HasClick      bool
	HasNavigation bool
	HasAssertion  bool
	HasCheckout   bool
	HasFileUpload bool
}

// flags returns the signature as a fixed-order slice for overlap counting.
func (s ActionSignature) flags() [9]bool {
	return [9]bool{
		s.HasLogin, s.HasSignup, s.HasFormFill, s.HasSubmit, s.HasClick,
		s.HasNavigation, s.HasAssertion, s.HasCheckout, s.HasFileUpload,
	}
}

// SignatureOf extracts the action signature from a journey.
func SignatureOf(j *journey.Journey) ActionSignature {
	text := journeyText(j)
	sig := ActionSignature{
		HasLogin:    containsAny(text, "login", "log in", "sign in"),
		HasSignup:   containsAny(text, "signup", "sign up", "register"),
		HasCheckout: containsAny(text, "checkout", "payment", "place order"),
	}

	for _, step := range j.Steps {
		switch step.Action() {
		case journey.ActionNavigate:
			sig.HasNavigation = true
		case journey.ActionClick:
			sig.HasClick = true
		case journey.ActionFill, journey.ActionSelect:
			sig.HasFormFill = true
		case journey.ActionAssert:
			sig.HasAssertion = true
		case journey.ActionUpload:
			sig.HasFileUpload = true
		}
		if t, ok := step.(journey.Targeted); ok {
			if containsAny(strings.ToLower(t.TargetSelector()), "submit", "login-btn", "signin") {
				sig.HasSubmit = true
			}
		}
	}
	return sig
}

// Similarity scores how alike two journeys are, in [0,1]. The function is
// symmetric: Similarity(a, b) == Similarity(b, a).
func Similarity(a, b *journey.Journey) float64 {
	score := 0.0

	// Domain: full credit for exact match, half for substring containment.
	da, db := a.Domain(), b.Domain()
	switch {
	case da != "" && strings.EqualFold(da, db):
		score += weightDomain
	case da != "" && db != "" &&
		(strings.Contains(strings.ToLower(da), strings.ToLower(db)) ||
			strings.Contains(strings.ToLower(db), strings.ToLower(da))):
		score += weightDomain * 0.5
	}

	// Action-signature overlap: fraction of flags with equal values.
	fa, fb := SignatureOf(a).flags(), SignatureOf(b).flags()
	matching := 0
	for i := range fa {
		if fa[i] == fb[i] {
			matching++
		}
	}
	score += weightActions * float64(matching) / float64(len(fa))

	// Step-count ratio.
	score += weightStepCount * countRatio(len(a.Steps), len(b.Steps))

	// Category equality.
	if a.Category == b.Category {
		score += weightCategory
	}

	// Tag overlap.
	score += weightTags * tagOverlap(a.Tags, b.Tags)

	return score
}

// countRatio is min/max, treating two empty sets as identical.
func countRatio(a, b int) float64 {
	if a == 0 && b == 0 {
		return 1.0
	}
	if a == 0 || b == 0 {
		return 0.0
	}
	if a > b {
		a, b = b, a
	}
	return float64(a) / float64(b)
}

// tagOverlap is |intersection| / |union|, treating two empty sets as
// identical.
func tagOverlap(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}

	union := make(map[string]bool)
	inA := make(map[string]bool)
	for _, t := range a {
		union[t] = true
		inA[t] = true
	}
	intersection := 0
	for _, t := range b {
		if !union[t] {
			union[t] = true
		}
	}
	for _, t := range b {
		if inA[t] {
			inA[t] = false // count each shared tag once
			intersection++
		}
	}

	return float64(intersection) / float64(len(union))
}
