package rdap

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	rdaplib "github.com/openrdap/rdap"
	"golang.org/x/net/publicsuffix"
)

const (
	// defaultTimeout is the default timeout for RDAP queries
	defaultTimeout = 30 * time.Second

	// hoursPerDay is the number of hours in a day for age calculation
	hoursPerDay = 24

	// Domain age thresholds in days
	thresholdDays30  = 30
	thresholdDays90  = 90
	thresholdDays365 = 365
)

// Result captures the RDAP domain registration analysis
type Result struct {
	// Domain is the registrable domain that was queried
	Domain string `json:"domain"`
	// RegistrationDate is when the domain was first registered
	RegistrationDate *time.Time `json:"registration_date,omitempty"`
	// ExpirationDate is when the domain registration expires
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
	// Registrar is the name of the registrar
	Registrar string `json:"registrar,omitempty"`
	// Status lists the domain status values from RDAP
	Status []string `json:"status,omitempty"`
	// DomainAgeDays is the number of whole days since registration, nil when unknown
	DomainAgeDays *int `json:"domain_age_days"`
}

// Client wraps the openrdap library for domain registration lookups
type Client struct {
	rdapClient *rdaplib.Client
	server     *url.URL
	timeout    time.Duration
	now        func() time.Time
}

// ClientOption configures the Client
type ClientOption func(*Client)

// WithHTTPClient overrides the HTTP client used for RDAP queries
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.rdapClient.HTTP = httpClient
		}
	}
}

// WithTimeout overrides the timeout for RDAP queries
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithServer pins queries to one RDAP server instead of IANA bootstrap
func WithServer(server *url.URL) ClientOption {
	return func(c *Client) {
		if server != nil {
			c.server = server
		}
	}
}

// WithClock replaces time.Now for age calculation
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient creates an RDAP client for domain registration lookups
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		rdapClient: &rdaplib.Client{},
		timeout:    defaultTimeout,
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// RegistrableDomain reduces a hostname to the name a registry knows about
func RegistrableDomain(host string) (string, error) {
	host = strings.TrimSuffix(strings.TrimSpace(strings.ToLower(host)), ".")
	if host == "" {
		return "", ErrEmptyDomain
	}

	if net.ParseIP(host) != nil {
		return "", ErrUnregistrable
	}

	etld1, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnregistrable, err)
	}

	return etld1, nil
}

// Lookup performs an RDAP query for the registrable domain of host
func (c *Client) Lookup(ctx context.Context, host string) (Result, error) {
	domain, err := RegistrableDomain(host)
	if err != nil {
		return Result{}, err
	}

	req := &rdaplib.Request{
		Type:    rdaplib.DomainRequest,
		Query:   domain,
		Server:  c.server,
		Timeout: c.timeout,
	}

	req = req.WithContext(ctx)

	resp, err := c.rdapClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("RDAP query for %s: %w", domain, err)
	}

	domainObj, ok := resp.Object.(*rdaplib.Domain)
	if !ok || domainObj == nil {
		return Result{}, fmt.Errorf("RDAP query for %s returned unexpected type: %w", domain, ErrUnexpectedObject)
	}

	return buildResult(domain, domainObj, c.now()), nil
}

// buildResult extracts registration data from the RDAP domain response
func buildResult(domain string, d *rdaplib.Domain, now time.Time) Result {
	result := Result{
		Domain: domain,
		Status: d.Status,
	}

	for _, event := range d.Events {
		parsed, err := time.Parse(time.RFC3339, event.Date)
		if err != nil {
			continue
		}

		t := parsed.UTC()
		switch strings.ToLower(event.Action) {
		case "registration":
			result.RegistrationDate = &t
		case "expiration":
			result.ExpirationDate = &t
		}
	}

	if result.RegistrationDate != nil {
		age := max(0, int(now.Sub(*result.RegistrationDate).Hours()/hoursPerDay))
		result.DomainAgeDays = &age
	}

	for _, entity := range d.Entities {
		for _, role := range entity.Roles {
			if strings.EqualFold(role, "registrar") {
				if entity.VCard != nil {
					result.Registrar = entity.VCard.Name()
				} else if entity.Handle != "" {
					result.Registrar = entity.Handle
				}

				break
			}
		}
	}

	return result
}

// AgeScore grades a domain age for the trust signal: a year or more scores 100, 90 days 70,
// 30 days 45, anything younger 20. An unknown age scores 50
func AgeScore(ageDays *int) float64 {
	if ageDays == nil {
		return 50
	}

	switch days := *ageDays; {
	case days >= thresholdDays365:
		return 100
	case days >= thresholdDays90:
		return 70
	case days >= thresholdDays30:
		return 45
	default:
		return 20
	}
}
