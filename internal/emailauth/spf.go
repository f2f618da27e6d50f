package emailauth

import (
	"fmt"
	"strings"
)

const spfPrefix = "v=spf1"

// SPFPolicy is the parsed sender policy framework record of a domain
type SPFPolicy struct {
	// Record is the raw TXT record, empty when none is published
	Record string `json:"record,omitempty"`
	// All is the terminal all qualifier (-all, ~all, ?all, +all)
	All string `json:"all,omitempty"`
	// Includes lists the include: targets in record order
	Includes []string `json:"includes,omitempty"`
	// Found reports whether exactly one usable record was published
	Found bool `json:"found"`
	// Duplicate is set when more than one v=spf1 record exists, which receivers treat as a permerror
	Duplicate bool `json:"duplicate,omitempty"`
}

func parseSPF(records []string) SPFPolicy {
	if len(records) == 0 {
		return SPFPolicy{}
	}

	policy := SPFPolicy{
		Record:    records[0],
		Found:     true,
		Duplicate: len(records) > 1,
	}

	for _, term := range strings.Fields(strings.ToLower(records[0])) {
		switch {
		case term == "all" || term == "+all":
			policy.All = "+all"
		case term == "-all" || term == "~all" || term == "?all":
			policy.All = term
		case strings.HasPrefix(term, "include:"):
			policy.Includes = append(policy.Includes, strings.TrimPrefix(term, "include:"))
		}
	}

	return policy
}

// findings returns the weaknesses of the policy and their penalty
func (p SPFPolicy) findings() ([]Finding, int) {
	switch {
	case !p.Found:
		return []Finding{{Check: CheckSPF, Issue: "missing", Detail: "No SPF record published"}}, penaltyMissingSPF
	case p.Duplicate:
		return []Finding{{Check: CheckSPF, Issue: "permerror", Detail: "Multiple SPF records published"}}, penaltyMissingSPF
	}

	switch p.All {
	case "+all":
		return []Finding{{Check: CheckSPF, Issue: "weak", Detail: fmt.Sprintf("SPF authorizes every sender (+all): %s", p.Record)}}, penaltySPFPassAll
	case "?all":
		return []Finding{{Check: CheckSPF, Issue: "weak", Detail: fmt.Sprintf("SPF is neutral for unlisted senders (?all): %s", p.Record)}}, penaltySPFNeutral
	}

	return nil, 0
}
