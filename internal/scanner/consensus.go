package scanner

import (
	"math"

	"github.com/theopenlane/spectra/internal/rdap"
	"github.com/theopenlane/spectra/internal/types"
)

const (
	localTriggerScore = 85
	localFloor        = 15

	disagreementGap    = 25
	disagreementLocal  = 0.65
	disagreementRemote = 0.35

	weightLocal    = 0.4
	weightExternal = 0.5
	weightSSLAge   = 0.1

	vtOverrideEngines = 2
	sslBrandFloor     = 91

	highRiskScore   = 75
	mediumRiskScore = 35
)

// LocalScore is the fixed trigger score when a URL imitates a brand or carries a logic flag,
// otherwise the strongest text signal floored at 15
func LocalScore(triggered bool, manipulation, brandText float64) float64 {
	if triggered {
		return localTriggerScore
	}

	return max(manipulation, brandText, localFloor)
}

// VTRatioScore is the share of engines that flagged a URL, as a percentage
func VTRatioScore(malicious, total int) float64 {
	return min(100, float64(malicious)/math.Max(float64(total), 1)*100)
}

// SSLAgeScore averages certificate validity (100 or 20) with the banded domain age score
func SSLAgeScore(valid bool, ageDays *int) float64 {
	ssl := 20.0
	if valid {
		ssl = 100
	}

	return (ssl + rdap.AgeScore(ageDays)) / 2
}

// fusionInput is everything the consensus step looks at
type fusionInput struct {
	local        float64
	external     float64
	sslAge       float64
	maxVT        int
	sslValid     bool
	brandMatched bool
}

// fuse blends local and external opinion, then applies the overrides in order. The TLS/brand
// override only claims the mode when it is the rule that set the score
func fuse(in fusionInput) (float64, types.ConsensusMode) {
	adjusted := in.external
	mode := types.ConsensusWeighted

	if in.local > 0 && in.external > 0 && math.Abs(in.local-in.external) >= disagreementGap {
		adjusted = disagreementLocal*in.local + disagreementRemote*in.external
		mode = types.ConsensusDisagreement
	}

	unified := weightLocal*in.local + weightExternal*adjusted + weightSSLAge*in.sslAge

	if in.maxVT > vtOverrideEngines {
		unified = 100
		mode = types.ConsensusVTOverride
	}

	if !in.sslValid && in.brandMatched && mode != types.ConsensusVTOverride {
		unified = max(unified, sslBrandFloor)
		mode = types.ConsensusSSLBrandOverride
	}

	return clamp(round2(unified)), mode
}

// band maps the unified score to verdict and confidence. Without any engine corroboration
// a low score only earns low confidence
func band(score float64, maxVT int) (types.RiskVerdict, types.Confidence) {
	var (
		verdict    types.RiskVerdict
		confidence types.Confidence
	)

	switch {
	case score >= highRiskScore:
		verdict, confidence = types.RiskHigh, types.ConfidenceVeryHigh
	case score >= mediumRiskScore:
		verdict, confidence = types.RiskMedium, types.ConfidenceHigh
	default:
		verdict, confidence = types.RiskLow, types.ConfidenceModerate
	}

	if maxVT == 0 && score < mediumRiskScore {
		confidence = types.ConfidenceLow
	}

	return verdict, confidence
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp(v float64) float64 {
	return math.Min(math.Max(v, 0), 100)
}
