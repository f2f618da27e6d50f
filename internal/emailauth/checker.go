package emailauth

import (
	"context"
	"errors"
	"time"

	"github.com/miekg/dns"
	"github.com/rs/zerolog/log"

	"github.com/theopenlane/spectra/internal/domain"
)

const (
	// DefaultDNSServer is the resolver used when none is configured
	DefaultDNSServer = "8.8.8.8:53"
	// DefaultDNSTimeout is the per-query timeout
	DefaultDNSTimeout = 5 * time.Second

	penaltyMissingSPF   = 15
	penaltySPFPassAll   = 20
	penaltySPFNeutral   = 10
	penaltyMissingDMARC = 15
	penaltyWeakDMARC    = 10
	penaltyPartialDMARC = 5

	gradeThresholdB = 10
	gradeThresholdC = 20
	gradeThresholdD = 30
)

// Check names the policy a finding belongs to
type Check string

const (
	CheckSPF   Check = "spf"
	CheckDMARC Check = "dmarc"
)

// Finding is one weakness in a sender domain's published policy
type Finding struct {
	Check  Check  `json:"check"`
	Issue  string `json:"issue"`
	Detail string `json:"detail"`
}

// Result is the published sender policy of one domain
type Result struct {
	// Domain is the sender domain SPF was read from
	Domain string `json:"domain"`
	// PolicyDomain is where the DMARC record was found, the organizational domain when the sender domain has none
	PolicyDomain string      `json:"policy_domain,omitempty"`
	SPF          SPFPolicy   `json:"spf"`
	DMARC        DMARCPolicy `json:"dmarc"`
	Findings     []Finding   `json:"findings"`
	// Penalty is the summed weight of all findings
	Penalty int `json:"penalty"`
	// Grade is A through F
	Grade string `json:"grade"`
}

// Checker reads SPF and DMARC policy for sender domains
type Checker struct {
	client *dns.Client
	server string
}

// Option configures the Checker
type Option func(*Checker)

// WithDNSServer overrides the resolver address (host:port)
func WithDNSServer(server string) Option {
	return func(c *Checker) {
		if server != "" {
			c.server = server
		}
	}
}

// WithDNSTimeout overrides the per-query timeout
func WithDNSTimeout(timeout time.Duration) Option {
	return func(c *Checker) {
		if timeout > 0 {
			c.client.Timeout = timeout
		}
	}
}

// NewChecker returns a Checker using the public resolver by default
func NewChecker(opts ...Option) *Checker {
	c := &Checker{
		client: &dns.Client{Timeout: DefaultDNSTimeout},
		server: DefaultDNSServer,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Check resolves the sender's policy. The sender may be a bare domain, an address or a "Name <addr>" header value.
// A failure to reach the resolver for both records is returned as ErrDNSLookupFailed; a missing record is a finding.
func (c *Checker) Check(ctx context.Context, sender string) (Result, error) {
	info, err := domain.Parse(sender)
	if err != nil {
		return Result{}, errors.Join(ErrEmptyDomain, err)
	}

	result := Result{Domain: info.Domain}

	spfRecords, spfErr := c.queryTXT(ctx, info.Domain, spfPrefix)
	if spfErr != nil {
		log.Debug().Err(spfErr).Str("domain", info.Domain).Msg("spf lookup failed")
	}

	result.SPF = parseSPF(spfRecords)

	result.PolicyDomain = info.Domain

	dmarcRecords, dmarcErr := c.queryTXT(ctx, dmarcLabel+info.Domain, dmarcPrefix)
	if dmarcErr == nil && len(dmarcRecords) == 0 && info.Registrable != info.Domain {
		result.PolicyDomain = info.Registrable
		dmarcRecords, dmarcErr = c.queryTXT(ctx, dmarcLabel+info.Registrable, dmarcPrefix)
	}

	if dmarcErr != nil {
		log.Debug().Err(dmarcErr).Str("domain", result.PolicyDomain).Msg("dmarc lookup failed")
	}

	if spfErr != nil && dmarcErr != nil {
		return Result{Domain: info.Domain}, spfErr
	}

	result.DMARC = parseDMARC(dmarcRecords)
	if !result.DMARC.Found {
		result.PolicyDomain = ""
	}

	spfFindings, spfPenalty := result.SPF.findings()
	dmarcFindings, dmarcPenalty := result.DMARC.findings()

	result.Findings = append(spfFindings, dmarcFindings...)
	if result.Findings == nil {
		result.Findings = []Finding{}
	}

	result.Penalty = spfPenalty + dmarcPenalty
	result.Grade = grade(result.Penalty)

	return result, nil
}

func grade(penalty int) string {
	switch {
	case penalty == 0:
		return "A"
	case penalty <= gradeThresholdB:
		return "B"
	case penalty <= gradeThresholdC:
		return "C"
	case penalty <= gradeThresholdD:
		return "D"
	default:
		return "F"
	}
}
