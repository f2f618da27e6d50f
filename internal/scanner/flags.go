package scanner

import (
	"strings"

	"github.com/theopenlane/spectra/internal/brand"
	"github.com/theopenlane/spectra/internal/domain"
)

const (
	FlagHiddenRedirection = "Hidden Redirection"
	FlagIPHost            = "IP Host"
	FlagDeepSubdomain     = "Deep Subdomain"

	deepSubdomainLabels = 4
)

// LogicFlags returns the structural red flags present across urls, each at most once, in
// detection order
func LogicFlags(urls []string) []string {
	flags := []string{}

	add := func(flag string) {
		for _, f := range flags {
			if f == flag {
				return
			}
		}

		flags = append(flags, flag)
	}

	for _, raw := range urls {
		raw = strings.TrimSpace(raw)
		parts := domain.Normalize(raw)

		if strings.Contains(raw, "@") {
			add(FlagHiddenRedirection)
		}

		if parts.IsIPv4 {
			add(FlagIPHost)
		}

		if parts.Depth >= deepSubdomainLabels {
			add(FlagDeepSubdomain)
		}
	}

	return flags
}

// BrandMatches returns the protected brands any of urls imitates, first occurrence order
func BrandMatches(m *brand.Matcher, urls []string) []string {
	matches := []string{}
	seen := map[string]bool{}

	for _, raw := range urls {
		for _, b := range m.Matches(domain.Normalize(raw)) {
			if !seen[b] {
				seen[b] = true
				matches = append(matches, b)
			}
		}
	}

	return matches
}
