package scoring

import (
	"fmt"
	"strings"

	"github.com/replaykit/journey-runner/pkg/journey"
)

// Compatibility weights. They sum to 1.0.
const (
	weightURL        = 0.30
	weightElements   = 0.25
	weightPageType   = 0.20
	weightHistory    = 0.15
	weightComplexity = 0.10
)

// Partial URL credits.
const (
	urlPatternCredit = 0.20
	urlDomainCredit  = 0.10
)

// CompatibilityResult is a weighted [0,1] score with itemized reasons.
type CompatibilityResult struct {
	Score   float64  `json:"score"`
	Reasons []string `json:"reasons"`
}

// Compatibility scores how suitable a stored journey is for the live page
// described by info. The result is always within [0,1].
func Compatibility(info PageInfo, j *journey.Journey) CompatibilityResult {
	var res CompatibilityResult

	// URL match.
	sc := j.StartingContext
	switch {
	case sc.ExactURL != "" && strings.EqualFold(info.URL, sc.ExactURL):
		res.add(weightURL, "exact URL match")
	case sc.URLPattern != "" && journey.MatchURLPattern(sc.URLPattern, info.URL):
		res.add(urlPatternCredit, fmt.Sprintf("URL matches pattern %s", sc.URLPattern))
	case sameDomain(info.Domain(), j.Domain()):
		res.add(urlDomainCredit, "same domain")
	}

	// Required-element presence ratio.
	if ratio := presenceRatio(info, sc.RequiredElements); ratio > 0 {
		res.add(weightElements*ratio,
			fmt.Sprintf("%.0f%% of required elements present", ratio*100))
	}

	// Page-type compatibility.
	pageType := info.Type()
	journeyType := JourneyType(j)
	switch {
	case pageType == journeyType:
		res.add(weightPageType, fmt.Sprintf("page type %s matches journey type", pageType))
	case compatibleTypes(journeyType, pageType):
		res.add(weightPageType*0.6,
			fmt.Sprintf("journey type %s is compatible with page type %s", journeyType, pageType))
	}

	// Historical success rate as a reliability prior.
	if rate := j.Metadata.SuccessRate; rate > 0 {
		res.add(weightHistory*rate,
			fmt.Sprintf("historical success rate %.0f%%", rate*100))
	}

	// Complexity match.
	credit, reason := complexityCredit(info.Complexity(), j.Metadata.Difficulty.Level())
	res.add(weightComplexity*credit, reason)

	return res
}

func (r *CompatibilityResult) add(contribution float64, reason string) {
	if contribution <= 0 {
		return
	}
	r.Score += contribution
	r.Reasons = append(r.Reasons, reason)
}

// presenceRatio returns presentCount/totalCount for the journey's required
// elements against the snapshot, or 1.0 when the journey requires none.
func presenceRatio(info PageInfo, elements []journey.RequiredElement) float64 {
	if len(elements) == 0 {
		return 1.0
	}
	present := 0
	for _, el := range elements {
		if info.Present[el.Selector] {
			present++
		}
	}
	return float64(present) / float64(len(elements))
}

// compatiblePairs lists journey/page type pairs that score partial
// page-type credit.
var compatiblePairs = map[PageType][]PageType{
	PageForm:   {PageLogin, PageSignup, PageCheckout, PageSearch},
	PageLogin:  {PageSignup, PageForm},
	PageSignup: {PageLogin, PageForm},
	PageAdmin:  {PageProfile},
}

func compatibleTypes(journeyType, pageType PageType) bool {
	for _, t := range compatiblePairs[journeyType] {
		if t == pageType {
			return true
		}
	}
	return false
}

// complexityCredit maps ordinal distance to credit and a matching reason:
// exact 1.0, adjacent 0.7, otherwise 0.3.
func complexityCredit(pageLevel, journeyLevel int) (float64, string) {
	switch diff := abs(pageLevel - journeyLevel); diff {
	case 0:
		return 1.0, "complexity level matches journey difficulty"
	case 1:
		return 0.7, "complexity level within one step of journey difficulty"
	default:
		return 0.3, "complexity level far from journey difficulty"
	}
}

func sameDomain(a, b string) bool {
	return a != "" && strings.EqualFold(a, b)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
