package signals

import (
	"math"

	"github.com/theopenlane/spectra/internal/types"
)

// fusionWeights blend the four layers before escalations are added
var fusionWeights = struct {
	manipulation, url, ai, brand float64
}{manipulation: 0.30, url: 0.35, ai: 0.15, brand: 0.20}

// escalation adds bonus when a strong signal (or combination) is present
type escalation struct {
	applies func(manipulation, url, brand float64) bool
	bonus   float64
}

var escalations = []escalation{
	{applies: func(_, url, _ float64) bool { return url >= 60 }, bonus: 15},
	{applies: func(m, _, _ float64) bool { return m >= 40 }, bonus: 15},
	{applies: func(_, _, b float64) bool { return b >= 50 }, bonus: 20},
	{applies: func(m, url, _ float64) bool { return url >= 60 && m >= 15 }, bonus: 20},
}

// FuseRisk combines the report layers into a final score, verdict and confidence. brand is the
// combined sender-side score (brand text, header and relay intel)
func FuseRisk(manipulation, url, ai, brand float64) (float64, types.RiskVerdict, types.Confidence) {
	score := manipulation*fusionWeights.manipulation +
		url*fusionWeights.url +
		ai*fusionWeights.ai +
		brand*fusionWeights.brand

	for _, e := range escalations {
		if e.applies(manipulation, url, brand) {
			score += e.bonus
		}
	}

	score = math.Round(min(score, maxScore)*100) / 100

	switch {
	case score >= 75:
		return score, types.RiskHigh, types.ConfidenceVeryHigh
	case score >= 50:
		return score, types.RiskHigh, types.ConfidenceHigh
	case score >= 35:
		return score, types.RiskMedium, types.ConfidenceModerate
	default:
		return score, types.RiskLow, types.ConfidenceLow
	}
}
