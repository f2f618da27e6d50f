package domain

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		wantDom   string
		wantSub   string
		wantTLD   string
		wantSLD   string
		wantErr   error
		wantError bool
	}{
		{
			name:    "simple domain",
			input:   "example.com",
			wantDom: "example.com",
			wantTLD: "com",
			wantSLD: "example",
		},
		{
			name:    "nested subdomain",
			input:   "api.staging.example.com",
			wantDom: "api.staging.example.com",
			wantSub: "api.staging",
			wantTLD: "com",
			wantSLD: "example",
		},
		{
			name:    "subdomain with co.uk",
			input:   "www.example.co.uk",
			wantDom: "www.example.co.uk",
			wantSub: "www",
			wantTLD: "co.uk",
			wantSLD: "example",
		},
		{
			name:    "email address",
			input:   "User@Example.com",
			wantDom: "example.com",
			wantTLD: "com",
			wantSLD: "example",
		},
		{
			name:    "display name sender",
			input:   "PayPal Service <service@mail.paypal.com>",
			wantDom: "mail.paypal.com",
			wantSub: "mail",
			wantTLD: "com",
			wantSLD: "paypal",
		},
		{
			name:    "url with port",
			input:   "https://login.example.org:8443/path",
			wantDom: "login.example.org",
			wantSub: "login",
			wantTLD: "org",
			wantSLD: "example",
		},
		{
			name:      "empty local part",
			input:     "@example.com",
			wantErr:   ErrInvalidEmailFormat,
			wantError: true,
		},
		{
			name:      "single label",
			input:     "localhost",
			wantErr:   ErrInvalidDomainFormat,
			wantError: true,
		},
		{
			name:      "empty",
			input:     "   ",
			wantErr:   ErrInvalidDomainFormat,
			wantError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			info, err := Parse(tc.input)

			if tc.wantError {
				if err == nil {
					t.Fatalf("expected error, got info %+v", info)
				}

				if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
					t.Errorf("expected %v, got %v", tc.wantErr, err)
				}

				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if info.Domain != tc.wantDom {
				t.Errorf("Domain = %q, want %q", info.Domain, tc.wantDom)
			}

			if info.Subdomain != tc.wantSub {
				t.Errorf("Subdomain = %q, want %q", info.Subdomain, tc.wantSub)
			}

			if info.TLD != tc.wantTLD {
				t.Errorf("TLD = %q, want %q", info.TLD, tc.wantTLD)
			}

			if info.SLD != tc.wantSLD {
				t.Errorf("SLD = %q, want %q", info.SLD, tc.wantSLD)
			}
		})
	}
}
