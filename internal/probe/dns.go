package probe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/miekg/dns"

	"github.com/theopenlane/spectra/internal/types"
)

const (
	// DefaultDNSTimeout bounds each query
	DefaultDNSTimeout = 3 * time.Second
	// DefaultDNSServer is the resolver queried when none is configured
	DefaultDNSServer = "8.8.8.8:53"
)

// DNSProbe resolves the A and MX records of a host
type DNSProbe interface {
	Resolve(ctx context.Context, host string) Result[types.DNSRecords]
}

// Resolver queries one DNS server directly with miekg/dns
type Resolver struct {
	client *dns.Client
	server string
}

// DNSOption configures the Resolver
type DNSOption func(*Resolver)

// WithDNSServer overrides the server address (host:port)
func WithDNSServer(server string) DNSOption {
	return func(r *Resolver) {
		if server != "" {
			r.server = server
		}
	}
}

// WithDNSTimeout overrides the per-query timeout
func WithDNSTimeout(timeout time.Duration) DNSOption {
	return func(r *Resolver) {
		if timeout > 0 {
			r.client.Timeout = timeout
		}
	}
}

// NewResolver returns a DNS probe
func NewResolver(opts ...DNSOption) *Resolver {
	r := &Resolver{
		client: &dns.Client{Timeout: DefaultDNSTimeout},
		server: DefaultDNSServer,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Resolve returns the A and MX records of host. A failed query leaves its list empty;
// the result is only marked failed when both queries error
func (r *Resolver) Resolve(ctx context.Context, host string) Result[types.DNSRecords] {
	if host == "" {
		return failed(DefaultDNS(), ErrNoHost)
	}

	records := DefaultDNS()

	aErr := r.query(ctx, host, dns.TypeA, func(rr dns.RR) {
		if a, ok := rr.(*dns.A); ok {
			records.A = append(records.A, a.A.String())
		}
	})

	mxErr := r.query(ctx, host, dns.TypeMX, func(rr dns.RR) {
		if mx, ok := rr.(*dns.MX); ok {
			records.MX = append(records.MX, strings.TrimSuffix(mx.Mx, "."))
		}
	})

	if aErr != nil && mxErr != nil {
		return failed(records, aErr)
	}

	return succeeded(records)
}

func (r *Resolver) query(ctx context.Context, host string, qtype uint16, collect func(dns.RR)) error {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(host), qtype)
	msg.RecursionDesired = true

	resp, _, err := r.client.ExchangeContext(ctx, msg, r.server)
	if err != nil {
		return err
	}

	if resp == nil {
		return fmt.Errorf("%w: %s", ErrNoRecords, host)
	}

	for _, rr := range resp.Answer {
		collect(rr)
	}

	return nil
}
