package urlintel

import (
	"fmt"
	"strings"

	"github.com/theopenlane/spectra/internal/domain"
	"github.com/theopenlane/spectra/internal/reputation"
	"github.com/theopenlane/spectra/internal/types"
)

// Effect is how a rule changes the running score
type Effect int

const (
	// EffectAdd adds Value to the score
	EffectAdd Effect = iota
	// EffectFloor raises the score to at least Value
	EffectFloor
	// EffectSet replaces the score with Value
	EffectSet
)

// Placement is where a rule's evidence goes in the finding
type Placement int

const (
	// PlaceAppend adds evidence after everything collected so far
	PlaceAppend Placement = iota
	// PlacePrepend puts evidence first
	PlacePrepend
)

// Signals are the facts about one URL that rules are evaluated against
type Signals struct {
	// URL is the trimmed input
	URL string
	// Lower is URL lowercased
	Lower string
	// Parts is the lexical breakdown of URL
	Parts domain.URLParts
	// Listed is true when the URL is on a threat feed
	Listed bool
	// ImpersonatedBrand is the protected brand the host is a lookalike of
	ImpersonatedBrand string
	// SpoofedBrand is the protected brand embedded in a host it does not own
	SpoofedBrand string
	// HighRiskTLD is the matched high-risk suffix
	HighRiskTLD string
	// Reputation is the third-party verdict, nil when unavailable
	Reputation *reputation.Stats
}

// HasAt reports whether the URL carries an '@'
func (s *Signals) HasAt() bool {
	return strings.Contains(s.URL, "@")
}

// CredentialLure reports whether the URL mentions login or verify
func (s *Signals) CredentialLure() bool {
	return strings.Contains(s.Lower, "login") || strings.Contains(s.Lower, "verify")
}

// BrandFlagged reports whether either brand rule fires
func (s *Signals) BrandFlagged() bool {
	return s.ImpersonatedBrand != "" || s.SpoofedBrand != ""
}

// VTMalicious returns the malicious engine count, zero without a verdict
func (s *Signals) VTMalicious() int {
	if s.Reputation == nil {
		return 0
	}

	return s.Reputation.Malicious
}

// Rule is one row of the scoring table
type Rule struct {
	// Name identifies the rule in tests and logs
	Name string
	// Applies decides whether the rule fires
	Applies func(*Signals) bool
	// Effect and Value describe the score change
	Effect Effect
	Value  float64
	// Evidence explains the change; nil means the rule is silent
	Evidence func(*Signals) types.EvidenceItem
	// Placement controls where the evidence is inserted
	Placement Placement
	// Terminal rules end evaluation: the score becomes Value and only their evidence is kept
	Terminal bool
	// ForceMalicious pins the verdict regardless of the score band
	ForceMalicious bool
}

func item(t types.EvidenceType, label, description string) func(*Signals) types.EvidenceItem {
	return func(*Signals) types.EvidenceItem {
		return types.EvidenceItem{Type: t, Label: label, Description: description}
	}
}

// DefaultRules returns the scoring table in evaluation order: reputation, structure, brand,
// metadata, combinations, then third-party corroboration
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:     "threat-feed",
			Applies:  func(s *Signals) bool { return s.Listed },
			Effect:   EffectSet,
			Value:    100,
			Terminal: true,
			Evidence: item(types.EvidenceReputation, "Verified malicious", "Verified malicious on OpenPhish global feed."),
		},
		{
			Name:     "obfuscated-url",
			Applies:  (*Signals).HasAt,
			Effect:   EffectAdd,
			Value:    60,
			Evidence: item(types.EvidenceStructural, "Obfuscated URL", "Critical: URL contains '@', a strong indicator of deceptive redirection."),
		},
		{
			Name:     "ip-host",
			Applies:  func(s *Signals) bool { return s.Parts.IsIPv4 },
			Effect:   EffectAdd,
			Value:    40,
			Evidence: item(types.EvidenceStructural, "IP-based host", "URL uses an IP address instead of a domain name."),
		},
		{
			Name:     "ip-credential-lure",
			Applies:  func(s *Signals) bool { return s.Parts.IsIPv4 && s.CredentialLure() },
			Effect:   EffectFloor,
			Value:    90,
			Evidence: item(types.EvidenceStructural, "IP + credential lure", "Critical: IP-based URL combined with credential-lure keywords (login/verify)."),
		},
		{
			Name:    "excessive-subdomains",
			Applies: func(s *Signals) bool { return s.Parts.Depth >= 5 },
			Effect:  EffectAdd,
			Value:   20,
			Evidence: func(s *Signals) types.EvidenceItem {
				return types.EvidenceItem{
					Type:        types.EvidenceStructural,
					Label:       "Excessive subdomains",
					Description: fmt.Sprintf("Hostname has %d labels which can indicate deceptive subdomain nesting.", s.Parts.Depth),
				}
			},
		},
		{
			Name:    "deep-subdomain",
			Applies: func(s *Signals) bool { return s.Parts.Depth == 4 },
			Effect:  EffectAdd,
			Value:   10,
			Evidence: func(s *Signals) types.EvidenceItem {
				return types.EvidenceItem{
					Type:        types.EvidenceStructural,
					Label:       "Deep subdomain nesting",
					Description: fmt.Sprintf("Hostname has %d labels which may indicate suspicious nesting.", s.Parts.Depth),
				}
			},
		},
		{
			Name:     "brand-impersonation",
			Applies:  func(s *Signals) bool { return s.ImpersonatedBrand != "" },
			Effect:   EffectFloor,
			Value:    90,
			Evidence: item(types.EvidenceBrand, "Brand impersonation", "Critical: Brand Impersonation detected via fuzzy matching."),
		},
		{
			Name:     "subdomain-spoofing",
			Applies:  func(s *Signals) bool { return s.SpoofedBrand != "" },
			Effect:   EffectAdd,
			Value:    75,
			Evidence: item(types.EvidenceBrand, "Subdomain spoofing", "Critical: Domain spoofing detected via subdomain manipulation."),
		},
		{
			Name:     "high-risk-tld",
			Applies:  func(s *Signals) bool { return s.HighRiskTLD != "" },
			Effect:   EffectAdd,
			Value:    20,
			Evidence: item(types.EvidenceStructural, "High-risk TLD", "Warning: Use of high-risk Top Level Domain associated with phishing."),
		},
		{
			Name:           "brand-on-high-risk-tld",
			Applies:        func(s *Signals) bool { return s.BrandFlagged() && s.HighRiskTLD != "" },
			Effect:         EffectFloor,
			Value:          95,
			ForceMalicious: true,
		},
		{
			Name:    "obfuscated-url-floor",
			Applies: (*Signals).HasAt,
			Effect:  EffectFloor,
			Value:   85,
		},
		{
			Name:      "virustotal-verdict",
			Applies:   func(s *Signals) bool { return s.VTMalicious() > 2 },
			Effect:    EffectSet,
			Value:     100,
			Placement: PlacePrepend,
			Evidence: func(s *Signals) types.EvidenceItem {
				return types.EvidenceItem{
					Type:        types.EvidenceReputation,
					Label:       "VirusTotal verdict",
					Description: fmt.Sprintf("Critical: VirusTotal reports the URL as malicious (%d engines).", s.VTMalicious()),
				}
			},
		},
		{
			Name:     "virustotal-signal",
			Applies:  func(s *Signals) bool { return s.VTMalicious() == 1 },
			Effect:   EffectAdd,
			Value:    40,
			Evidence: item(types.EvidenceReputation, "VirusTotal signal", "Warning: VirusTotal has a single malicious engine hit (low-confidence corroboration)."),
		},
	}
}

// Evaluate applies rules in order and returns the clamped score, the evidence, and whether the verdict is forced to Malicious
func Evaluate(rules []Rule, s *Signals) (float64, []types.EvidenceItem, bool) {
	var (
		score  float64
		forced bool
	)

	evidence := []types.EvidenceItem{}

	for _, r := range rules {
		if r.Applies == nil || !r.Applies(s) {
			continue
		}

		if r.Terminal {
			evidence = evidence[:0]
			if r.Evidence != nil {
				evidence = append(evidence, r.Evidence(s))
			}

			return Clamp(r.Value), evidence, true
		}

		switch r.Effect {
		case EffectAdd:
			score += r.Value
		case EffectFloor:
			score = max(score, r.Value)
		case EffectSet:
			score = r.Value
		}

		forced = forced || r.ForceMalicious

		if r.Evidence == nil {
			continue
		}

		if r.Placement == PlacePrepend {
			evidence = append([]types.EvidenceItem{r.Evidence(s)}, evidence...)
		} else {
			evidence = append(evidence, r.Evidence(s))
		}
	}

	return Clamp(score), evidence, forced
}

// Clamp bounds a score to [0,100]
func Clamp(score float64) float64 {
	return min(max(score, 0), 100)
}

// Band maps a score to its verdict: up to 30 is Safe, up to 60 Suspicious, above that Malicious
func Band(score float64) types.Verdict {
	switch {
	case score <= 30:
		return types.VerdictSafe
	case score <= 60:
		return types.VerdictSuspicious
	default:
		return types.VerdictMalicious
	}
}
