package severity

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/samber/lo"

	"github.com/theopenlane/spectra/internal/types"
)

const (
	maliciousFloor  = 61
	suspiciousFloor = 31

	noLinksReason = "No links found in opened email body."
	safeReason    = "Body links appear safe based on current signals."
)

// Aggregate reduces the per-link findings of one message to a mail-level rollup. The most
// dangerous link drives the severity score; equal scores keep their input order
func Aggregate(findings []types.URLFinding) types.MailSeverityRollup {
	if len(findings) == 0 {
		return types.MailSeverityRollup{SummaryReason: noLinksReason}
	}

	sorted := slices.Clone(findings)
	slices.SortStableFunc(sorted, func(a, b types.URLFinding) int {
		return cmp.Compare(b.Score, a.Score)
	})

	malicious := lo.CountBy(sorted, func(f types.URLFinding) bool { return f.Score >= maliciousFloor })
	suspicious := lo.CountBy(sorted, func(f types.URLFinding) bool {
		return f.Score >= suspiciousFloor && f.Score < maliciousFloor
	})

	top := sorted[0]

	return types.MailSeverityRollup{
		MailSeverityScore: top.Score,
		MostDangerousLink: lo.ToPtr(top.URL),
		MaliciousLinks:    malicious,
		SuspiciousLinks:   suspicious,
		SafeLinks:         len(sorted) - malicious - suspicious,
		SummaryReason:     reason(malicious, suspicious),
	}
}

func reason(malicious, suspicious int) string {
	switch {
	case malicious > 0:
		return fmt.Sprintf("Found %d phishing %s in body.", malicious, links(malicious))
	case suspicious > 0:
		return fmt.Sprintf("Found %d suspicious %s in body.", suspicious, links(suspicious))
	default:
		return safeReason
	}
}

func links(n int) string {
	return lo.Ternary(n == 1, "link", "links")
}
