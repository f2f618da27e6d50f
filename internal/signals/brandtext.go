package signals

import "strings"

// textBrand pairs a brand keyword with the only domain allowed to send mail about it
type textBrand struct {
	keyword string
	domain  string
}

var textBrands = []textBrand{
	{keyword: "amazon", domain: "amazon.com"},
	{keyword: "paypal", domain: "paypal.com"},
	{keyword: "sbi", domain: "sbi.co.in"},
	{keyword: "google", domain: "google.com"},
}

const brandTextWeight = 50

// BrandText scores a message that names a brand while being sent from outside that brand's
// domain. Without a sender nothing can be contradicted and the score is zero
func BrandText(text, sender string) float64 {
	sender = strings.ToLower(strings.TrimSpace(sender))
	if sender == "" {
		return 0
	}

	lower := strings.ToLower(text)

	var score float64

	for _, b := range textBrands {
		if strings.Contains(lower, b.keyword) && !strings.Contains(sender, b.domain) {
			score += brandTextWeight
		}
	}

	return min(score, maxScore)
}

// NamedBrands returns the brand keywords that appear in text
func NamedBrands(text string) []string {
	lower := strings.ToLower(text)

	var named []string

	for _, b := range textBrands {
		if strings.Contains(lower, b.keyword) {
			named = append(named, b.keyword)
		}
	}

	return named
}
