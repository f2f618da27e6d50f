package probe

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/theopenlane/spectra/internal/domain"
	"github.com/theopenlane/spectra/internal/types"
)

// Timeouts bounds each probe independently
type Timeouts struct {
	TLS      time.Duration
	Geo      time.Duration
	DNS      time.Duration
	Whois    time.Duration
	Redirect time.Duration
}

// DefaultTimeouts returns the per-probe budgets
func DefaultTimeouts() Timeouts {
	return Timeouts{
		TLS:      DefaultTLSTimeout,
		Geo:      DefaultGeoTimeout,
		DNS:      DefaultDNSTimeout,
		Whois:    DefaultWhoisTimeout,
		Redirect: DefaultRedirectTimeout,
	}
}

// Longest returns the largest single budget, which bounds a full enrichment
func (t Timeouts) Longest() time.Duration {
	return max(t.TLS, t.Geo, t.DNS, t.Whois, t.Redirect)
}

// Enrichment is the combined outcome of every probe for one URL
type Enrichment struct {
	Host     string
	TLS      Result[types.SSLStatus]
	Geo      Result[types.LocationData]
	DNS      Result[types.DNSRecords]
	Whois    Result[WhoisInfo]
	Redirect Result[RedirectInfo]
}

// Enricher runs the probes concurrently
type Enricher struct {
	tls      TLSProbe
	geo      GeoProbe
	dns      DNSProbe
	whois    WhoisProbe
	redirect RedirectProbe
	timeouts Timeouts
}

// EnricherOption configures the Enricher
type EnricherOption func(*Enricher)

// WithTLSProbe sets the certificate probe
func WithTLSProbe(p TLSProbe) EnricherOption {
	return func(e *Enricher) {
		if p != nil {
			e.tls = p
		}
	}
}

// WithGeoProbe sets the geolocation probe
func WithGeoProbe(p GeoProbe) EnricherOption {
	return func(e *Enricher) {
		if p != nil {
			e.geo = p
		}
	}
}

// WithDNSProbe sets the DNS probe
func WithDNSProbe(p DNSProbe) EnricherOption {
	return func(e *Enricher) {
		if p != nil {
			e.dns = p
		}
	}
}

// WithWhoisProbe sets the registration age probe
func WithWhoisProbe(p WhoisProbe) EnricherOption {
	return func(e *Enricher) {
		if p != nil {
			e.whois = p
		}
	}
}

// WithRedirectProbe sets the redirect probe
func WithRedirectProbe(p RedirectProbe) EnricherOption {
	return func(e *Enricher) {
		if p != nil {
			e.redirect = p
		}
	}
}

// WithTimeouts overrides per-probe budgets; zero fields keep their default
func WithTimeouts(t Timeouts) EnricherOption {
	return func(e *Enricher) {
		if t.TLS > 0 {
			e.timeouts.TLS = t.TLS
		}

		if t.Geo > 0 {
			e.timeouts.Geo = t.Geo
		}

		if t.DNS > 0 {
			e.timeouts.DNS = t.DNS
		}

		if t.Whois > 0 {
			e.timeouts.Whois = t.Whois
		}

		if t.Redirect > 0 {
			e.timeouts.Redirect = t.Redirect
		}
	}
}

// NewEnricher builds an Enricher. Probes that are not supplied answer with their defaults
func NewEnricher(opts ...EnricherOption) *Enricher {
	e := &Enricher{
		tls:      disabled{},
		geo:      disabled{},
		dns:      disabled{},
		whois:    disabled{},
		redirect: disabledRedirect{},
		timeouts: DefaultTimeouts(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Timeouts returns the effective per-probe budgets
func (e *Enricher) Timeouts() Timeouts {
	return e.timeouts
}

// Enrich probes the host of rawURL and follows rawURL itself. It never fails: every
// probe that errors contributes its default value
func (e *Enricher) Enrich(ctx context.Context, rawURL string) Enrichment {
	host := ""
	if rawURL != "" {
		host = domain.Normalize(rawURL).Host
	}

	out := Enrichment{Host: host}

	var wg sync.WaitGroup

	wg.Go(func() {
		pctx, cancel := context.WithTimeout(ctx, e.timeouts.TLS)
		defer cancel()

		out.TLS = e.tls.Inspect(pctx, host)
	})

	wg.Go(func() {
		pctx, cancel := context.WithTimeout(ctx, e.timeouts.Geo)
		defer cancel()

		out.Geo = e.geo.Lookup(pctx, host)
	})

	wg.Go(func() {
		pctx, cancel := context.WithTimeout(ctx, e.timeouts.DNS)
		defer cancel()

		out.DNS = e.dns.Resolve(pctx, host)
	})

	wg.Go(func() {
		pctx, cancel := context.WithTimeout(ctx, e.timeouts.Whois)
		defer cancel()

		out.Whois = e.whois.Age(pctx, host)
	})

	wg.Go(func() {
		pctx, cancel := context.WithTimeout(ctx, e.timeouts.Redirect)
		defer cancel()

		out.Redirect = e.redirect.Resolve(pctx, rawURL)
	})

	wg.Wait()

	logFailure("tls", host, out.TLS.Failure, out.TLS.Err)
	logFailure("geo", host, out.Geo.Failure, out.Geo.Err)
	logFailure("dns", host, out.DNS.Failure, out.DNS.Err)
	logFailure("whois", host, out.Whois.Failure, out.Whois.Err)
	logFailure("redirect", host, out.Redirect.Failure, out.Redirect.Err)

	return out
}

func logFailure(probe, host string, reason Failure, err error) {
	if reason == FailureNone || reason == FailureDisabled || reason == FailureNoHost {
		return
	}

	log.Debug().Err(err).Str("probe", probe).Str("host", host).Str("reason", string(reason)).Msg("probe fell back to default")
}

// disabled stands in for any probe that was not configured
type disabled struct{}

func (disabled) Inspect(_ context.Context, host string) Result[types.SSLStatus] {
	return failed(DefaultTLS(host), ErrDisabled)
}

func (disabled) Lookup(context.Context, string) Result[types.LocationData] {
	return failed(DefaultGeo(), ErrDisabled)
}

func (disabled) Resolve(context.Context, string) Result[types.DNSRecords] {
	return failed(DefaultDNS(), ErrDisabled)
}

func (disabled) Age(context.Context, string) Result[WhoisInfo] {
	return failed(DefaultWhois(), ErrDisabled)
}

// disabledRedirect stands in for an unconfigured redirect probe
type disabledRedirect struct{}

func (disabledRedirect) Resolve(_ context.Context, rawURL string) Result[RedirectInfo] {
	return failed(DefaultRedirect(rawURL), ErrDisabled)
}
