package scoring

import (
	"math"
	"testing"

	"github.com/replaykit/journey-runner/pkg/journey"
)

func checkoutJourney(id string) *journey.Journey {
	return &journey.Journey{
		ID:       id,
		Name:     "Checkout flow",
		Category: "shopping",
		Tags:     []string{"cart", "payment"},
		StartingContext: journey.StartingContext{
			ExactURL: "https://shop.example.com/cart",
		},
		Steps: []journey.Step{
			&journey.NavigateStep{URL: "https://shop.example.com/cart"},
			&journey.FillStep{ElementTarget: journey.ElementTarget{Selector: "#card"}, Value: "4111"},
			&journey.ClickStep{ElementTarget: journey.ElementTarget{Selector: "#submit"}},
		},
	}
}

func TestSimilarity_IdenticalJourneys(t *testing.T) {
	a := checkoutJourney("a")
	b := checkoutJourney("b")

	if got := Similarity(a, b); math.Abs(got-1.0) > 0.0001 {
		t.Errorf("Similarity of identical journeys = %v, want 1.0", got)
	}
}

func TestSimilarity_IsSymmetric(t *testing.T) {
	a := checkoutJourney("a")
	b := &journey.Journey{
		ID:       "b",
		Name:     "Login flow",
		Category: "auth",
		Tags:     []string{"login"},
		StartingContext: journey.StartingContext{
			ExactURL: "https://app.example.com/login",
		},
		Steps: []journey.Step{
			&journey.FillStep{ElementTarget: journey.ElementTarget{Selector: "#email"}, Value: "a@b.com"},
		},
	}

	if ab, ba := Similarity(a, b), Similarity(b, a); ab != ba {
		t.Errorf("Similarity(a, b) = %v but Similarity(b, a) = %v", ab, ba)
	}
}

func TestSimilarity_DomainSubstringHalfCredit(t *testing.T) {
	same := checkoutJourney("same")
	sub := checkoutJourney("sub")
	sub.StartingContext.ExactURL = "https://example.com/cart"

	base := checkoutJourney("base")
	exact := Similarity(base, same)
	partial := Similarity(base, sub)

	if diff := exact - partial; math.Abs(diff-weightDomain/2) > 0.0001 {
		t.Errorf("exact-vs-substring domain difference = %v, want %v", diff, weightDomain/2)
	}
}

func TestSimilarity_CategoryMismatchDropsCredit(t *testing.T) {
	a := checkoutJourney("a")
	b := checkoutJourney("b")
	b.Category = "auth"

	diff := Similarity(a, checkoutJourney("same")) - Similarity(a, b)
	if math.Abs(diff-weightCategory) > 0.0001 {
		t.Errorf("category credit = %v, want %v", diff, weightCategory)
	}
}

func TestSignatureOf(t *testing.T) {
	j := &journey.Journey{
		ID:   "signup",
		Name: "Sign up and upload avatar",
		Steps: []journey.Step{
			&journey.NavigateStep{URL: "https://app.example.com/register"},
			&journey.FillStep{ElementTarget: journey.ElementTarget{Selector: "#email"}, Value: "a@b.com"},
			&journey.ClickStep{ElementTarget: journey.ElementTarget{Selector: "#submit"}},
			&journey.UploadStep{ElementTarget: journey.ElementTarget{Selector: "#avatar"}, Files: []string{"a.png"}},
			&journey.AssertStep{ElementTarget: journey.ElementTarget{Selector: ".welcome"}},
		},
	}

	sig := SignatureOf(j)
	if !sig.HasSignup {
		t.Error("HasSignup = false, want true")
	}
	if !sig.HasNavigation || !sig.HasFormFill || !sig.HasClick {
		t.Errorf("navigation/fill/click flags = %v/%v/%v, want all true",
			sig.HasNavigation, sig.HasFormFill, sig.HasClick)
	}
	if !sig.HasSubmit {
		t.Error("HasSubmit = false, want true for #submit selector")
	}
	if !sig.HasFileUpload || !sig.HasAssertion {
		t.Errorf("upload/assertion flags = %v/%v, want true", sig.HasFileUpload, sig.HasAssertion)
	}
	if sig.HasLogin || sig.HasCheckout {
		t.Errorf("login/checkout flags = %v/%v, want false", sig.HasLogin, sig.HasCheckout)
	}
}

func TestCountRatio(t *testing.T) {
	tests := []struct {
		a, b int
		want float64
	}{
		{0, 0, 1.0},
		{0, 5, 0.0},
		{5, 0, 0.0},
		{3, 6, 0.5},
		{6, 3, 0.5},
		{4, 4, 1.0},
	}
	for _, tt := range tests {
		if got := countRatio(tt.a, tt.b); got != tt.want {
			t.Errorf("countRatio(%d, %d) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestTagOverlap(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		want float64
	}{
		{"both empty", nil, nil, 1.0},
		{"one empty", []string{"x"}, nil, 0.0},
		{"disjoint", []string{"a"}, []string{"b"}, 0.0},
		{"identical", []string{"a", "b"}, []string{"a", "b"}, 1.0},
		{"partial", []string{"a", "b", "c"}, []string{"b", "c", "d"}, 0.5},
	}
	for _, tt := range tests {
		if got := tagOverlap(tt.a, tt.b); math.Abs(got-tt.want) > 0.0001 {
			t.Errorf("%s: tagOverlap = %v, want %v", tt.name, got, tt.want)
		}
	}
}
