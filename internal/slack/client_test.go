package slack

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	client, err := New("https://hooks.slack.com/services/T123/B456/xyz")
	require.NoError(t, err)

	assert.Equal(t, "https://hooks.slack.com/services/T123/B456/xyz", client.webhookURL)
	assert.Equal(t, DefaultRequestTimeout, client.httpClient.Timeout)
	assert.Equal(t, float64(DefaultAlertThreshold), client.Threshold())
}

func TestNewMissingWebhookURL(t *testing.T) {
	_, err := New("")
	assert.ErrorIs(t, err, ErrMissingWebhookURL)
}

func TestNewOptions(t *testing.T) {
	custom := &http.Client{Timeout: 30 * time.Second}

	cases := []struct {
		name      string
		opts      []Option
		client    *http.Client
		timeout   time.Duration
		threshold float64
	}{
		{name: "custom client", opts: []Option{WithHTTPClient(custom)}, client: custom, timeout: 30 * time.Second, threshold: DefaultAlertThreshold},
		{name: "nil client keeps default", opts: []Option{WithHTTPClient(nil)}, timeout: DefaultRequestTimeout, threshold: DefaultAlertThreshold},
		{name: "timeout", opts: []Option{WithTimeout(2 * time.Second)}, timeout: 2 * time.Second, threshold: DefaultAlertThreshold},
		{name: "threshold", opts: []Option{WithThreshold(50), WithThreshold(0)}, timeout: DefaultRequestTimeout, threshold: 50},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, err := New("https://hooks.slack.com/test", tc.opts...)
			require.NoError(t, err)

			if tc.client != nil {
				assert.Same(t, tc.client, client.httpClient)
			}

			assert.Equal(t, tc.timeout, client.httpClient.Timeout)
			assert.Equal(t, tc.threshold, client.Threshold())
		})
	}
}
