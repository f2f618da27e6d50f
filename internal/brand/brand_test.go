package brand

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/theopenlane/spectra/internal/domain"
)

func TestDistance(t *testing.T) {
	testCases := []struct {
		a, b string
		want int
	}{
		{a: "paypal", b: "paypal", want: 0},
		{a: "paypa1", b: "paypal", want: 1},
		{a: "gooogle", b: "google", want: 1},
		{a: "micros0ft", b: "microsoft", want: 1},
		{a: "", b: "apple", want: 5},
		{a: "kitten", b: "sitting", want: 3},
	}

	for _, tc := range testCases {
		t.Run(tc.a+"_"+tc.b, func(t *testing.T) {
			if got := Distance(tc.a, tc.b); got != tc.want {
				t.Errorf("Distance(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
			}

			if got := Distance(tc.b, tc.a); got != tc.want {
				t.Errorf("Distance is not symmetric: Distance(%q, %q) = %d", tc.b, tc.a, got)
			}
		})
	}
}

func TestWithin(t *testing.T) {
	assert.True(t, Within("paypa1", "paypal", 2))
	assert.True(t, Within("amazon", "amazon", 0))
	assert.False(t, Within("go", "google", 2))
	assert.False(t, Within("netflax-x", "netflix", 1))
}

func TestNormalizeLabel(t *testing.T) {
	testCases := []struct {
		input string
		want  string
	}{
		{input: "paypal-login", want: "paypal"},
		{input: "Amazon_Support", want: "amazon"},
		{input: "apple.verify", want: "apple"},
		{input: "secure-login-update", want: "secure-login"},
		{input: "loginpage", want: "loginpage"},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			if got := NormalizeLabel(tc.input); got != tc.want {
				t.Errorf("NormalizeLabel(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestMatcherImpersonation(t *testing.T) {
	m := NewMatcher()

	testCases := []struct {
		name      string
		url       string
		wantBrand string
		wantMatch bool
	}{
		{name: "typo in registrable label", url: "https://paypa1.com/signin", wantBrand: "paypal", wantMatch: true},
		{name: "typo with helper suffix", url: "https://amaz0n-support.net", wantBrand: "amazon", wantMatch: true},
		{name: "typo in subdomain label", url: "http://paypa1-login.verify-secure.xyz/reset", wantBrand: "paypal", wantMatch: true},
		{name: "typo in subdomain of unrelated domain", url: "http://paypa1.example.com/", wantBrand: "paypal", wantMatch: true},
		{name: "typo in subdomain of company domain", url: "http://gooogle.mycompany.com/", wantBrand: "google", wantMatch: true},
		{name: "typo in subdomain of hyphenated domain", url: "http://amazom.shop-deals.net", wantBrand: "amazon", wantMatch: true},
		{name: "genuine brand", url: "https://www.paypal.com/signin"},
		{name: "genuine brand subdomain", url: "https://accounts.google.com"},
		{name: "short label is not a lookalike", url: "https://app.example.com"},
		{name: "ip host", url: "http://203.0.113.7/login"},
		{name: "unrelated", url: "https://example.org"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := m.Impersonation(domain.Normalize(tc.url))
			assert.Equal(t, tc.wantMatch, ok)
			assert.Equal(t, tc.wantBrand, got)
		})
	}
}

func TestMatcherSpoofing(t *testing.T) {
	m := NewMatcher()

	testCases := []struct {
		name      string
		url       string
		wantBrand string
		wantMatch bool
	}{
		{name: "brand in subdomain", url: "https://paypal.com.account-check.net/", wantBrand: "paypal", wantMatch: true},
		{name: "brand in userinfo", url: "https://apple.com@evil.example/", wantBrand: "apple", wantMatch: true},
		{name: "genuine brand", url: "https://www.netflix.com/browse"},
		{name: "brand with helper suffix", url: "https://google-login.com"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := m.Spoofing(domain.Normalize(tc.url))
			assert.Equal(t, tc.wantMatch, ok)
			assert.Equal(t, tc.wantBrand, got)
		})
	}
}

func TestMatcherOptions(t *testing.T) {
	m := NewMatcher(WithBrands([]string{" Contoso ", ""}), WithMaxDistance(1))

	assert.Equal(t, []string{"contoso"}, m.Brands())

	_, ok := m.Impersonation(domain.Normalize("https://c0ntoso.com"))
	assert.True(t, ok)

	_, ok = m.Impersonation(domain.Normalize("https://c0nt0so.com"))
	assert.False(t, ok)
}
