package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/theopenlane/spectra/internal/brand"
)

func TestLogicFlags(t *testing.T) {
	cases := []struct {
		name string
		urls []string
		want []string
	}{
		{name: "clean", urls: []string{"https://example.com/a"}, want: []string{}},
		{name: "userinfo", urls: []string{"http://paypal.com@evil.example"}, want: []string{FlagHiddenRedirection}},
		{name: "ip host counts its octets as labels", urls: []string{"http://192.0.2.10/login"}, want: []string{FlagIPHost, FlagDeepSubdomain}},
		{name: "deep subdomain", urls: []string{"https://a.b.c.example.com"}, want: []string{FlagDeepSubdomain}},
		{
			name: "each flag once in detection order",
			urls: []string{"https://a.b.c.example.com", "http://x@192.0.2.11", "http://192.0.2.12"},
			want: []string{FlagDeepSubdomain, FlagHiddenRedirection, FlagIPHost},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, LogicFlags(tc.urls))
		})
	}
}

func TestBrandMatches(t *testing.T) {
	m := brand.NewMatcher()

	assert.Equal(t, []string{}, BrandMatches(m, []string{"https://google.com"}))
	assert.Equal(t, []string{"paypal"}, BrandMatches(m, []string{"http://paypa1.com", "http://paypai.net"}))
	assert.Equal(t, []string{"amazon", "paypal"}, BrandMatches(m, []string{"http://amaz0n.com", "http://paypa1.com"}))
}
