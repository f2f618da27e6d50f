package probe

import (
	"context"
	"time"

	"github.com/theopenlane/spectra/internal/rdap"
	"github.com/theopenlane/spectra/internal/types"
)

// DefaultWhoisTimeout bounds the registration lookup
const DefaultWhoisTimeout = 8 * time.Second

// WhoisProbe reports how long ago a host's domain was registered
type WhoisProbe interface {
	Age(ctx context.Context, host string) Result[WhoisInfo]
}

// registrationLookup is satisfied by *rdap.Client
type registrationLookup interface {
	Lookup(ctx context.Context, host string) (rdap.Result, error)
}

// Registration answers WHOIS questions over RDAP
type Registration struct {
	lookup registrationLookup
}

// NewRegistration wraps an RDAP client
func NewRegistration(client *rdap.Client) *Registration {
	return &Registration{lookup: client}
}

// Age looks up the registrable domain of host
func (p *Registration) Age(ctx context.Context, host string) Result[WhoisInfo] {
	if host == "" {
		return failed(DefaultWhois(), ErrNoHost)
	}

	res, err := p.lookup.Lookup(ctx, host)
	if err != nil {
		return failed(DefaultWhois(), err)
	}

	return succeeded(whoisInfo(res))
}

func whoisInfo(res rdap.Result) WhoisInfo {
	info := WhoisInfo{
		AgeDays: res.DomainAgeDays,
		Raw:     types.WhoisDetails{Registrar: res.Registrar},
	}

	if res.RegistrationDate != nil {
		created := res.RegistrationDate.UTC().Format(time.RFC3339)
		info.Raw.CreationDate = &created
	}

	if res.ExpirationDate != nil {
		info.Raw.ExpirationDate = res.ExpirationDate.UTC().Format(time.RFC3339)
	}

	return info
}
