package slack

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/theopenlane/spectra/internal/types"
)

const (
	maxAlertThreats = 5
	noneText        = "none"
)

// Notify posts a ScanAlert when res scores at or above the client threshold. It reports
// whether an alert was sent
func (c *Client) Notify(ctx context.Context, res *types.UnifiedScanResult) (bool, error) {
	if res == nil || res.UnifiedScore < c.threshold {
		return false, nil
	}

	if err := c.Send(ctx, ScanAlert(res)); err != nil {
		return false, err
	}

	return true, nil
}

// ScanAlert renders a scan result as a header block and a field grid with the score, verdict,
// brand and top URL, followed by the leading threats
func ScanAlert(res *types.UnifiedScanResult) Message {
	brand := lo.FromPtr(res.DetectedBrand)
	topURL := lo.FromPtr(res.HighestRiskURL)

	fields := []TextObject{
		mrkdwn(fmt.Sprintf("*Score:*\n%.2f", res.UnifiedScore)),
		mrkdwn(fmt.Sprintf("*Verdict:*\n%s (%s)", res.Verdict, res.ConfidenceLevel)),
		mrkdwn("*Brand:*\n" + lo.Ternary(brand == "", noneText, brand)),
		mrkdwn("*Top URL:*\n" + lo.Ternary(topURL == "", noneText, "`"+topURL+"`")),
		mrkdwn("*Consensus:*\n" + string(res.ConsensusMode)),
		mrkdwn(fmt.Sprintf("*VirusTotal:*\n%d/%d", res.VTMaliciousEngines, res.VTTotalEngines)),
	}

	blocks := []Block{
		{Type: "header", Text: &TextObject{Type: "plain_text", Text: "Phishing risk detected"}},
		{Type: "section", Fields: fields},
	}

	if threats := res.IntelligenceProfile.ThreatArray; len(threats) > 0 {
		shown := threats[:min(len(threats), maxAlertThreats)]

		blocks = append(blocks, Block{
			Type: "section",
			Text: mrkdwnPtr("*Threats:*\n• " + strings.Join(shown, "\n• ")),
		})
	}

	return Message{
		Text:   fmt.Sprintf("%s: unified score %.2f", res.Verdict, res.UnifiedScore),
		Blocks: blocks,
	}
}

func mrkdwn(text string) TextObject {
	return TextObject{Type: "mrkdwn", Text: text}
}

func mrkdwnPtr(text string) *TextObject {
	return lo.ToPtr(mrkdwn(text))
}
