package signals

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	CategoryCredentialHarvesting = "Credential Harvesting"
	CategoryBrandImpersonation   = "Brand Impersonation"
	CategoryFinancialScam        = "Financial Scam"
	CategoryAccountTakeover      = "Account Takeover"
	CategoryUrgencyAttack        = "Urgency-Based Attack"
)

// LayerScores are the per-layer inputs to categorization and the reasoning summary
type LayerScores struct {
	Manipulation float64
	URL          float64
	Brand        float64
	Header       float64
	Phrases      []string
}

// phraseText is the lowercase flagged phrases joined for keyword tests
func (s LayerScores) phraseText() string {
	return strings.ToLower(strings.Join(s.Phrases, " "))
}

// categoryRule assigns category when match holds
type categoryRule struct {
	category string
	match    func(s LayerScores, phrases string) bool
}

// categoryRules is ordered; the first match wins
var categoryRules = []categoryRule{
	{
		category: CategoryBrandImpersonation,
		match: func(s LayerScores, p string) bool {
			return s.Brand >= 50 && (s.URL >= 40 || containsAny(p, "verify", "account"))
		},
	},
	{
		category: CategoryCredentialHarvesting,
		match: func(s LayerScores, p string) bool {
			return s.URL >= 55 && (s.Manipulation >= 30 || containsAny(p, "click", "link"))
		},
	},
	{
		category: CategoryUrgencyAttack,
		match: func(s LayerScores, p string) bool {
			return s.Manipulation >= 45 && containsAny(p, "urgent", "immediately", "suspend", "lock", "action required")
		},
	},
	{
		category: CategoryFinancialScam,
		match: func(s LayerScores, p string) bool {
			return containsAny(p, "payment", "bank", "card", "refund") && (s.Brand >= 30 || s.URL >= 40)
		},
	},
	{
		category: CategoryAccountTakeover,
		match: func(_ LayerScores, p string) bool {
			return strings.Contains(p, "account") && containsAny(p, "suspend", "lock", "verify")
		},
	},
	{category: CategoryBrandImpersonation, match: func(s LayerScores, _ string) bool { return s.Brand >= 60 }},
	{category: CategoryCredentialHarvesting, match: func(s LayerScores, _ string) bool { return s.URL >= 60 }},
	{category: CategoryUrgencyAttack, match: func(s LayerScores, _ string) bool { return s.Manipulation >= 50 }},
	{category: CategoryAccountTakeover, match: func(s LayerScores, _ string) bool { return s.Header >= 50 }},
}

// Category picks the primary threat category. Mixed or weak signals fall back to an urgency attack
func Category(s LayerScores) string {
	phrases := s.phraseText()

	for _, rule := range categoryRules {
		if rule.match(s, phrases) {
			return rule.category
		}
	}

	return CategoryUrgencyAttack
}

const noIndicatorsSummary = "No strong phishing indicators detected."

// ReasoningSummary explains in one sentence which layers drove the score. domainAgeDays
// distinguishes a very new domain from generally risky links
func ReasoningSummary(s LayerScores, domainAgeDays *int) string {
	var parts []string

	if s.Manipulation >= 35 {
		parts = append(parts, "detected urgent or pressure language")
	}

	if s.URL >= 40 {
		if domainAgeDays != nil && *domainAgeDays < 30 {
			parts = append(parts, "suspicious or very new domain")
		} else {
			parts = append(parts, "suspicious URL or link risk")
		}
	}

	if s.Brand >= 40 {
		parts = append(parts, "possible brand or sender impersonation")
	}

	if s.Header >= 40 {
		parts = append(parts, "suspicious or mismatched header indicators")
	}

	if len(s.Phrases) > 0 {
		parts = append(parts, "flagged phrases in content")
	}

	if len(parts) == 0 {
		return noIndicatorsSummary
	}

	return sentenceCase(strings.Join(parts, ", ")) + "."
}

func sentenceCase(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}

	return string(unicode.ToUpper(r)) + s[size:]
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}

	return false
}
