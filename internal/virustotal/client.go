package virustotal

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"github.com/theopenlane/httpsling"

	"github.com/theopenlane/spectra/internal/reputation"
)

const (
	// defaultBaseURL is the root endpoint for the VirusTotal v3 API
	defaultBaseURL = "https://www.virustotal.com/api/v3"
	// defaultRequestTimeout matches the lookup budget of the reputation service
	defaultRequestTimeout = 20 * time.Second
	// apiKeyHeader carries the VirusTotal API key
	apiKeyHeader = "x-apikey"
)

// Client fetches URL verdicts from VirusTotal. It satisfies reputation.Fetcher
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	settings   gobreaker.Settings
}

// Option configures the Client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the default VirusTotal API base URL
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimSuffix(u, "/")
		}
	}
}

// WithBreaker tunes the circuit breaker: consecutive failures before tripping and how long it stays open
func WithBreaker(failures uint32, open time.Duration) Option {
	return func(c *Client) {
		if failures > 0 {
			c.settings.ReadyToTrip = func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= failures
			}
		}

		if open > 0 {
			c.settings.Timeout = open
		}
	}
}

// New creates a new VirusTotal client
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
		settings: gobreaker.Settings{
			Name:        "virustotal",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
			},
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	c.breaker = gobreaker.NewCircuitBreaker(c.settings)

	return c, nil
}

// URLID returns the VirusTotal identifier of a URL: unpadded base64url of the URL itself
func URLID(u string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(u))
}

// urlReport is the subset of the /urls/{id} response that carries the engine tally
type urlReport struct {
	Data struct {
		Attributes struct {
			LastAnalysisStats reputation.Stats `json:"last_analysis_stats"`
		} `json:"attributes"`
	} `json:"data"`
}

// Fetch returns the last analysis stats for u. When VirusTotal has never seen the URL it is
// submitted for analysis and Fetch returns nil stats with a nil error
func (c *Client) Fetch(ctx context.Context, u string) (*reputation.Stats, error) {
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetchReport(ctx, u)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
		}

		return nil, err
	}

	stats, _ := out.(*reputation.Stats)

	return stats, nil
}

func (c *Client) fetchReport(ctx context.Context, u string) (*reputation.Stats, error) {
	requester := httpsling.MustNew(
		httpsling.URL(fmt.Sprintf("%s/urls/%s", c.baseURL, URLID(u))),
		httpsling.Method(http.MethodGet),
		httpsling.Header(apiKeyHeader, c.apiKey),
		httpsling.WithHTTPClient(c.httpClient),
	)

	var report urlReport

	resp, err := requester.ReceiveWithContext(ctx, &report)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close error is non-critical

	switch {
	case resp.StatusCode == http.StatusOK:
		stats := report.Data.Attributes.LastAnalysisStats
		return &stats, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("%w: status %d", ErrUnexpectedStatus, resp.StatusCode)
	default:
		c.submit(ctx, u)
		return nil, nil
	}
}

// submit queues u for analysis. It is best effort; the verdict is picked up on a later lookup
func (c *Client) submit(ctx context.Context, u string) {
	requester := httpsling.MustNew(
		httpsling.URL(c.baseURL+"/urls"),
		httpsling.Post(),
		httpsling.Form(),
		httpsling.Body(url.Values{"url": {u}}),
		httpsling.Header(apiKeyHeader, c.apiKey),
		httpsling.WithHTTPClient(c.httpClient),
	)

	resp, err := requester.SendWithContext(ctx)
	if err != nil {
		log.Debug().Err(err).Str("url", u).Msg("virustotal submission failed")
		return
	}
	defer resp.Body.Close() //nolint:errcheck // response body close error is non-critical

	if resp.StatusCode >= http.StatusBadRequest {
		log.Debug().Int("status", resp.StatusCode).Str("url", u).Msg("virustotal submission rejected")
	}
}
