package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/theopenlane/spectra/internal/types"
)

func TestLocalScore(t *testing.T) {
	assert.Equal(t, float64(85), LocalScore(true, 90, 100))
	assert.Equal(t, float64(15), LocalScore(false, 0, 0))
	assert.Equal(t, float64(35), LocalScore(false, 35, 0))
	assert.Equal(t, float64(50), LocalScore(false, 35, 50))
}

func TestVTRatioScore(t *testing.T) {
	assert.Zero(t, VTRatioScore(0, 70))
	assert.Equal(t, float64(50), VTRatioScore(35, 70))
	assert.Equal(t, float64(100), VTRatioScore(3, 0))
}

func TestSSLAgeScore(t *testing.T) {
	old, young := 400, 10

	assert.Equal(t, float64(100), SSLAgeScore(true, &old))
	assert.Equal(t, float64(20), SSLAgeScore(false, &young))
	assert.Equal(t, float64(75), SSLAgeScore(true, nil))
	assert.Equal(t, float64(35), SSLAgeScore(false, nil))
}

func TestFuse(t *testing.T) {
	cases := []struct {
		name  string
		in    fusionInput
		score float64
		mode  types.ConsensusMode
	}{
		{
			name:  "agreement",
			in:    fusionInput{local: 60, external: 70, sslAge: 50, sslValid: true},
			score: 64,
			mode:  types.ConsensusWeighted,
		},
		{
			name:  "disagreement blends toward local",
			in:    fusionInput{local: 85, external: 25, sslAge: 100, sslValid: true},
			score: 76,
			mode:  types.ConsensusDisagreement,
		},
		{
			name:  "no external opinion is not a disagreement",
			in:    fusionInput{local: 85, external: 0, sslAge: 100, sslValid: true},
			score: 44,
			mode:  types.ConsensusWeighted,
		},
		{
			name:  "more than two engines forces the maximum",
			in:    fusionInput{local: 15, external: 5, sslAge: 100, maxVT: 3, sslValid: true},
			score: 100,
			mode:  types.ConsensusVTOverride,
		},
		{
			name:  "two engines do not override",
			in:    fusionInput{local: 15, external: 5, sslAge: 100, maxVT: 2, sslValid: true},
			score: 18.5,
			mode:  types.ConsensusWeighted,
		},
		{
			name:  "invalid tls with brand mimicry floors the score",
			in:    fusionInput{local: 85, external: 30, sslAge: 20, brandMatched: true},
			score: 91,
			mode:  types.ConsensusSSLBrandOverride,
		},
		{
			name:  "invalid tls without brand mimicry has no floor",
			in:    fusionInput{local: 15, external: 0, sslAge: 20},
			score: 8,
			mode:  types.ConsensusWeighted,
		},
		{
			name:  "vt override keeps its mode over the tls floor",
			in:    fusionInput{local: 85, external: 90, sslAge: 20, maxVT: 4, brandMatched: true},
			score: 100,
			mode:  types.ConsensusVTOverride,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			score, mode := fuse(tc.in)
			assert.Equal(t, tc.score, score)
			assert.Equal(t, tc.mode, mode)
		})
	}
}

func TestBand(t *testing.T) {
	cases := []struct {
		score      float64
		maxVT      int
		verdict    types.RiskVerdict
		confidence types.Confidence
	}{
		{score: 75, verdict: types.RiskHigh, confidence: types.ConfidenceVeryHigh},
		{score: 74.99, verdict: types.RiskMedium, confidence: types.ConfidenceHigh},
		{score: 35, verdict: types.RiskMedium, confidence: types.ConfidenceHigh},
		{score: 34.99, verdict: types.RiskLow, confidence: types.ConfidenceLow},
		{score: 20, maxVT: 1, verdict: types.RiskLow, confidence: types.ConfidenceModerate},
	}

	for _, tc := range cases {
		verdict, confidence := band(tc.score, tc.maxVT)
		assert.Equal(t, tc.verdict, verdict, "score %v", tc.score)
		assert.Equal(t, tc.confidence, confidence, "score %v", tc.score)
	}
}

func TestFuseNeverDropsAsEnginesAgree(t *testing.T) {
	cases := []struct {
		name        string
		local       float64
		engineScore float64
		sslAge      float64
		vtTotal     int
		sslValid    bool
		brand       bool
	}{
		{name: "quiet text, clean url", local: 15, sslAge: 100, vtTotal: 70, sslValid: true},
		{name: "brand trigger, clean url", local: 85, sslAge: 100, vtTotal: 70, sslValid: true},
		{name: "medium text, flagged url", local: 50, engineScore: 40, sslAge: 60, vtTotal: 90, sslValid: true},
		{name: "no text signal", local: 0, sslAge: 35, vtTotal: 70, sslValid: true},
		{name: "brand on invalid tls", local: 85, engineScore: 90, sslAge: 20, vtTotal: 70, brand: true},
		{name: "invalid tls without brand", local: 15, sslAge: 20, vtTotal: 90},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			prev := -1.0

			for vt := 0; vt <= 10; vt++ {
				score, _ := fuse(fusionInput{
					local:        tc.local,
					external:     max(tc.engineScore, VTRatioScore(vt, tc.vtTotal)),
					sslAge:       tc.sslAge,
					maxVT:        vt,
					sslValid:     tc.sslValid,
					brandMatched: tc.brand,
				})

				assert.GreaterOrEqual(t, score, prev, "score dropped at %d engines", vt)

				prev = score
			}

			assert.Equal(t, float64(100), prev)
		})
	}
}
