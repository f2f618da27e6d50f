package probe

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSSLStatus(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	future := now.Add(90 * 24 * time.Hour)
	past := now.Add(-24 * time.Hour)

	cases := []struct {
		name       string
		cert       certificate
		wantIssuer string
		wantExpiry string
		wantValid  bool
	}{
		{
			name:       "valid",
			cert:       certificate{issuer: "CN=R3,O=Let's Encrypt,C=US", notAfter: future},
			wantIssuer: "CN=R3,O=Let's Encrypt,C=US",
			wantExpiry: "2025-08-30T00:00:00Z",
			wantValid:  true,
		},
		{
			name:       "expired by date",
			cert:       certificate{issuer: "CN=R3", notAfter: past},
			wantIssuer: "CN=R3",
			wantExpiry: "2025-05-31T00:00:00Z",
		},
		{
			name:       "self signed",
			cert:       certificate{issuer: "CN=localhost", notAfter: future, selfSigned: true},
			wantIssuer: "CN=localhost",
			wantExpiry: "2025-08-30T00:00:00Z",
		},
		{
			name:       "hostname mismatch",
			cert:       certificate{issuer: "CN=R3", notAfter: future, mismatched: true},
			wantIssuer: "CN=R3",
			wantExpiry: "2025-08-30T00:00:00Z",
		},
		{
			name:       "no issuer or expiry",
			cert:       certificate{},
			wantIssuer: "Unknown",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := sslStatus(tc.cert, now)

			assert.Equal(t, tc.wantIssuer, got.Issuer)
			assert.Equal(t, tc.wantValid, got.IsValid)

			if tc.wantExpiry == "" {
				assert.Nil(t, got.ExpiryDate)
			} else {
				require.NotNil(t, got.ExpiryDate)
				assert.Equal(t, tc.wantExpiry, *got.ExpiryDate)
			}
		})
	}
}

func TestTLSXEmptyHost(t *testing.T) {
	res := NewTLSX().Inspect(context.Background(), "")

	assert.Equal(t, FailureNoHost, res.Failure)
	assert.Equal(t, "Unknown", res.Value.Issuer)
}
