package probe

import (
	"context"
	"math"
	"time"

	"github.com/projectdiscovery/tlsx/pkg/tlsx"
	"github.com/projectdiscovery/tlsx/pkg/tlsx/clients"

	"github.com/theopenlane/spectra/internal/types"
)

const (
	// DefaultTLSTimeout bounds the handshake
	DefaultTLSTimeout = 3 * time.Second
	httpsPort         = "443"
)

// TLSProbe summarizes the certificate a host presents
type TLSProbe interface {
	Inspect(ctx context.Context, host string) Result[types.SSLStatus]
}

// TLSX inspects certificates with tlsx. Handshakes that only succeed because expired,
// self-signed or mismatched certificates are tolerated still report is_valid=false
type TLSX struct {
	timeout time.Duration
	port    string
	now     func() time.Time
}

// TLSOption configures the TLSX probe
type TLSOption func(*TLSX)

// WithTLSTimeout overrides the handshake timeout
func WithTLSTimeout(timeout time.Duration) TLSOption {
	return func(p *TLSX) {
		if timeout > 0 {
			p.timeout = timeout
		}
	}
}

// WithTLSPort overrides the port connected to
func WithTLSPort(port string) TLSOption {
	return func(p *TLSX) {
		if port != "" {
			p.port = port
		}
	}
}

// WithTLSClock replaces time.Now for expiry checks
func WithTLSClock(now func() time.Time) TLSOption {
	return func(p *TLSX) {
		if now != nil {
			p.now = now
		}
	}
}

// NewTLSX returns a tlsx-backed TLS probe
func NewTLSX(opts ...TLSOption) *TLSX {
	p := &TLSX{
		timeout: DefaultTLSTimeout,
		port:    httpsPort,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

type tlsOutcome struct {
	resp *clients.Response
	err  error
}

// Inspect connects to host and summarizes its leaf certificate
func (p *TLSX) Inspect(ctx context.Context, host string) Result[types.SSLStatus] {
	if host == "" {
		return failed(DefaultTLS(host), ErrNoHost)
	}

	fallback := DefaultTLS(host)

	service, err := tlsx.New(&clients.Options{
		Timeout:    int(math.Max(1, math.Ceil(p.timeout.Seconds()))),
		Retries:    1,
		Expired:    true,
		SelfSigned: true,
		MisMatched: true,
		MinVersion: "tls10",
		MaxVersion: "tls13",
	})
	if err != nil {
		return failed(fallback, err)
	}

	done := make(chan tlsOutcome, 1)

	go func() {
		resp, err := service.Connect(host, "", p.port)
		done <- tlsOutcome{resp: resp, err: err}
	}()

	select {
	case <-ctx.Done():
		return failed(fallback, ctx.Err())
	case out := <-done:
		if out.err != nil {
			return failed(fallback, out.err)
		}

		if out.resp == nil || out.resp.CertificateResponse == nil {
			return failed(fallback, ErrNoCertificate)
		}

		cert := out.resp.CertificateResponse

		return succeeded(sslStatus(certificate{
			issuer:     cert.IssuerDN,
			notAfter:   cert.NotAfter,
			expired:    cert.Expired,
			selfSigned: cert.SelfSigned,
			mismatched: cert.MisMatched,
			revoked:    cert.Revoked,
		}, p.now()))
	}
}

// certificate is the subset of a handshake result that decides validity
type certificate struct {
	issuer     string
	notAfter   time.Time
	expired    bool
	selfSigned bool
	mismatched bool
	revoked    bool
}

func sslStatus(c certificate, now time.Time) types.SSLStatus {
	status := types.SSLStatus{Issuer: c.issuer}
	if status.Issuer == "" {
		status.Issuer = "Unknown"
	}

	if c.notAfter.IsZero() {
		return status
	}

	expiry := c.notAfter.UTC().Format(time.RFC3339)
	status.ExpiryDate = &expiry
	status.IsValid = c.notAfter.After(now) && !c.expired && !c.selfSigned && !c.mismatched && !c.revoked

	return status
}
