package probe

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/projectdiscovery/cdncheck"
	"github.com/theopenlane/httpsling"

	"github.com/theopenlane/spectra/internal/types"
)

const (
	// DefaultGeoTimeout bounds resolution plus the ip-api request
	DefaultGeoTimeout = 4 * time.Second
	// DefaultGeoEndpoint is the ip-api base URL
	DefaultGeoEndpoint = "http://ip-api.com"

	geoFields        = "status,country,isp,query"
	geoStatusSuccess = "success"
)

// GeoProbe locates the server behind a hostname
type GeoProbe interface {
	Lookup(ctx context.Context, host string) Result[types.LocationData]
}

// IPAPI resolves a host and asks ip-api where the address lives. CDN and cloud ranges
// are attributed with cdncheck
type IPAPI struct {
	endpoint   string
	httpClient *http.Client
	resolver   *net.Resolver
	cdn        *cdncheck.Client
}

// GeoOption configures the IPAPI probe
type GeoOption func(*IPAPI)

// WithGeoEndpoint overrides the ip-api base URL
func WithGeoEndpoint(endpoint string) GeoOption {
	return func(p *IPAPI) {
		if endpoint != "" {
			p.endpoint = strings.TrimSuffix(endpoint, "/")
		}
	}
}

// WithGeoHTTPClient supplies the HTTP client used for ip-api requests
func WithGeoHTTPClient(client *http.Client) GeoOption {
	return func(p *IPAPI) {
		if client != nil {
			p.httpClient = client
		}
	}
}

// WithGeoResolver overrides the resolver used to find the host's address
func WithGeoResolver(resolver *net.Resolver) GeoOption {
	return func(p *IPAPI) {
		if resolver != nil {
			p.resolver = resolver
		}
	}
}

// NewIPAPI returns an ip-api backed geo probe
func NewIPAPI(opts ...GeoOption) *IPAPI {
	p := &IPAPI{
		endpoint:   DefaultGeoEndpoint,
		httpClient: &http.Client{Timeout: DefaultGeoTimeout},
		resolver:   net.DefaultResolver,
		cdn:        cdncheck.New(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

type ipAPIResponse struct {
	Status  string `json:"status"`
	Country string `json:"country"`
	ISP     string `json:"isp"`
	Query   string `json:"query"`
}

// Lookup resolves host to its first IPv4 address and geolocates it. A resolved address is kept
// even when the geolocation request fails
func (p *IPAPI) Lookup(ctx context.Context, host string) Result[types.LocationData] {
	if host == "" {
		return failed(DefaultGeo(), ErrNoHost)
	}

	ips, err := p.resolver.LookupIP(ctx, "ip4", host)
	if err != nil {
		return failed(DefaultGeo(), err)
	}

	if len(ips) == 0 {
		return failed(DefaultGeo(), fmt.Errorf("%w: %s", ErrNoRecords, host))
	}

	addr := ips[0].String()

	location := DefaultGeo()
	location.IPAddress = &addr
	location.Hosting = p.hosting(ips[0])

	requester := httpsling.MustNew(
		httpsling.URL(fmt.Sprintf("%s/json/%s?fields=%s", p.endpoint, addr, geoFields)),
		httpsling.Method(http.MethodGet),
		httpsling.WithHTTPClient(p.httpClient),
	)

	var payload ipAPIResponse

	resp, err := requester.ReceiveWithContext(ctx, &payload)
	if err != nil {
		return failed(location, err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close error is non-critical

	if resp.StatusCode != http.StatusOK || payload.Status != geoStatusSuccess {
		return failed(location, fmt.Errorf("%w: %d %s", ErrUnexpectedStatus, resp.StatusCode, payload.Status))
	}

	if payload.Country != "" {
		location.Country = payload.Country
	}

	if payload.ISP != "" {
		location.ISP = payload.ISP
	}

	return succeeded(location)
}

// hosting names the CDN, cloud or WAF provider owning ip, if any
func (p *IPAPI) hosting(ip net.IP) string {
	if p.cdn == nil {
		return ""
	}

	matched, provider, itemType, err := p.cdn.Check(ip)
	if err != nil || !matched || provider == "" {
		return ""
	}

	return fmt.Sprintf("%s (%s)", provider, itemType)
}
