package emailauth

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	dmarcPrefix     = "v=dmarc1"
	dmarcLabel      = "_dmarc."
	defaultDMARCPct = 100
)

// DMARCPolicy is the parsed DMARC record of a domain
type DMARCPolicy struct {
	// Record is the raw TXT record, empty when none is published
	Record string `json:"record,omitempty"`
	// Policy is the p= value (none, quarantine, reject)
	Policy string `json:"policy,omitempty"`
	// SubdomainPolicy is the sp= value, inheriting Policy when absent
	SubdomainPolicy string `json:"subdomain_policy,omitempty"`
	// ReportURI is the rua= value
	ReportURI string `json:"report_uri,omitempty"`
	// Percentage is the pct= value
	Percentage int `json:"percentage"`
	// StrictAlignment is set when both adkim and aspf are "s"
	StrictAlignment bool `json:"strict_alignment"`
	// Found reports whether a record was published
	Found bool `json:"found"`
}

func parseDMARC(records []string) DMARCPolicy {
	if len(records) == 0 {
		return DMARCPolicy{Percentage: defaultDMARCPct}
	}

	policy := DMARCPolicy{
		Record:     records[0],
		Found:      true,
		Percentage: defaultDMARCPct,
	}

	var adkim, aspf string

	for part := range strings.SplitSeq(records[0], ";") {
		key, val, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}

		val = strings.TrimSpace(val)

		switch strings.ToLower(strings.TrimSpace(key)) {
		case "p":
			policy.Policy = strings.ToLower(val)
		case "sp":
			policy.SubdomainPolicy = strings.ToLower(val)
		case "rua":
			policy.ReportURI = val
		case "pct":
			if pct, err := strconv.Atoi(val); err == nil && pct >= 0 && pct <= defaultDMARCPct {
				policy.Percentage = pct
			}
		case "adkim":
			adkim = strings.ToLower(val)
		case "aspf":
			aspf = strings.ToLower(val)
		}
	}

	if policy.SubdomainPolicy == "" {
		policy.SubdomainPolicy = policy.Policy
	}

	policy.StrictAlignment = adkim == "s" && aspf == "s"

	return policy
}

// findings returns the weaknesses of the policy and their penalty
func (p DMARCPolicy) findings() ([]Finding, int) {
	if !p.Found {
		return []Finding{{Check: CheckDMARC, Issue: "missing", Detail: "No DMARC record published"}}, penaltyMissingDMARC
	}

	switch p.Policy {
	case "quarantine", "reject":
	default:
		return []Finding{{Check: CheckDMARC, Issue: "weak", Detail: fmt.Sprintf("DMARC policy does not enforce (p=%s)", p.Policy)}}, penaltyWeakDMARC
	}

	if p.Percentage < defaultDMARCPct {
		return []Finding{{Check: CheckDMARC, Issue: "partial", Detail: fmt.Sprintf("DMARC enforcement applies to %d%% of mail", p.Percentage)}}, penaltyPartialDMARC
	}

	return nil, 0
}
