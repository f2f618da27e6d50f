package slack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theopenlane/spectra/internal/types"
)

func TestScanAlert(t *testing.T) {
	brand := "paypal"
	top := "http://paypa1-login.verify-secure.xyz/reset"

	msg := ScanAlert(&types.UnifiedScanResult{
		UnifiedScore:       91,
		ConsensusMode:      types.ConsensusSSLBrandOverride,
		Verdict:            types.RiskHigh,
		ConfidenceLevel:    types.ConfidenceVeryHigh,
		DetectedBrand:      &brand,
		HighestRiskURL:     &top,
		VTMaliciousEngines: 0,
		VTTotalEngines:     70,
		IntelligenceProfile: types.IntelligenceProfile{
			ThreatArray: []string{"Brand Mimicry: paypal", "a", "b", "c", "d", "e"},
		},
	})

	assert.Equal(t, "High Risk: unified score 91.00", msg.Text)
	require.Len(t, msg.Blocks, 3)

	assert.Equal(t, "header", msg.Blocks[0].Type)
	assert.Equal(t, []TextObject{
		{Type: "mrkdwn", Text: "*Score:*\n91.00"},
		{Type: "mrkdwn", Text: "*Verdict:*\nHigh Risk (Very High Confidence)"},
		{Type: "mrkdwn", Text: "*Brand:*\npaypal"},
		{Type: "mrkdwn", Text: "*Top URL:*\n`http://paypa1-login.verify-secure.xyz/reset`"},
		{Type: "mrkdwn", Text: "*Consensus:*\nssl_brand_override"},
		{Type: "mrkdwn", Text: "*VirusTotal:*\n0/70"},
	}, msg.Blocks[1].Fields)
	assert.Equal(t, "*Threats:*\n• Brand Mimicry: paypal\n• a\n• b\n• c\n• d", msg.Blocks[2].Text.Text)
}

func TestScanAlertWithoutBrandOrThreats(t *testing.T) {
	msg := ScanAlert(&types.UnifiedScanResult{UnifiedScore: 80, Verdict: types.RiskHigh})

	require.Len(t, msg.Blocks, 2)
	assert.Equal(t, "*Brand:*\nnone", msg.Blocks[1].Fields[2].Text)
	assert.Equal(t, "*Top URL:*\nnone", msg.Blocks[1].Fields[3].Text)
}
