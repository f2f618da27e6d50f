package domain

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Info contains parsed domain information
type Info struct {
	Domain      string `json:"domain"`
	Subdomain   string `json:"subdomain,omitempty"`
	TLD         string `json:"tld"`
	SLD         string `json:"sld"`
	Registrable string `json:"registrable"`
}

// Parse extracts domain information from an email address, URL or bare domain.
// It is strict and is used for sender addresses; URLs under analysis go through Normalize instead.
func Parse(input string) (*Info, error) {
	input = strings.ToLower(strings.TrimSpace(input))

	if strings.Contains(input, "@") && !strings.Contains(input, "://") {
		// display-name form: "PayPal <service@paypal.com>"
		if open := strings.LastIndex(input, "<"); open >= 0 {
			input = strings.TrimSuffix(input[open+1:], ">")
		}

		parts := strings.Split(input, "@")
		if len(parts) != 2 || parts[0] == "" {
			return nil, ErrInvalidEmailFormat
		}

		input = parts[1]
	}

	if strings.Contains(input, "://") {
		u, err := url.Parse(input)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidURLFormat, err)
		}

		input = u.Host
	}

	if idx := strings.LastIndex(input, ":"); idx != -1 {
		input = input[:idx]
	}

	input = strings.TrimSuffix(input, ".")

	if input == "" || !strings.Contains(input, ".") || strings.HasPrefix(input, ".") {
		return nil, ErrInvalidDomainFormat
	}

	etld1, err := publicsuffix.EffectiveTLDPlusOne(input)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDomainFormat, err)
	}

	tld, _ := publicsuffix.PublicSuffix(input)

	info := &Info{
		Domain:      input,
		TLD:         tld,
		SLD:         strings.TrimSuffix(etld1, "."+tld),
		Registrable: etld1,
	}

	if etld1 != input {
		info.Subdomain = strings.TrimSuffix(input, "."+etld1)
	}

	return info, nil
}
