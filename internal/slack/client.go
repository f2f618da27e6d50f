package slack

import (
	"net/http"
	"time"
)

const (
	// DefaultRequestTimeout bounds a single webhook post
	DefaultRequestTimeout = 10 * time.Second
	// DefaultAlertThreshold is the unified score at which a scan is announced
	DefaultAlertThreshold = 75
)

// Client posts scan alerts to a Slack incoming webhook
type Client struct {
	webhookURL string
	httpClient *http.Client
	threshold  float64
}

// Option configures the Client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client for the Slack client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the request timeout of the default HTTP client
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// WithThreshold sets the minimum unified score that triggers an alert
func WithThreshold(score float64) Option {
	return func(c *Client) {
		if score > 0 {
			c.threshold = score
		}
	}
}

// New creates a Slack client for webhookURL
func New(webhookURL string, opts ...Option) (*Client, error) {
	if webhookURL == "" {
		return nil, ErrMissingWebhookURL
	}

	client := &Client{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: DefaultRequestTimeout},
		threshold:  DefaultAlertThreshold,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Threshold returns the score at which Notify posts
func (c *Client) Threshold() float64 {
	return c.threshold
}
