package mailparse

import (
	"regexp"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/net/html"
)

var bareURLRegex = regexp.MustCompile(`(?i)https?://[^\s\]\)"'<>]+`)

// trailing characters that end a sentence rather than a URL
const urlTrailer = `.,;:!?])"'>`

// ExtractURLs returns the http(s) URLs written out in text, de-duplicated in first occurrence order
func ExtractURLs(text string) []string {
	found := lo.FilterMap(bareURLRegex.FindAllString(text, -1), func(u string, _ int) (string, bool) {
		u = strings.TrimRight(u, urlTrailer)
		return u, len(u) > len("http://")
	})

	return lo.Uniq(found)
}

// AnchorURLs returns the http(s) href targets of every anchor in an HTML body
func AnchorURLs(body string) []string {
	if body == "" {
		return []string{}
	}

	z := html.NewTokenizer(strings.NewReader(body))
	found := []string{}

	for {
		switch z.Next() {
		case html.ErrorToken:
			return lo.Uniq(found)
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if string(name) != "a" {
				continue
			}

			for hasAttr {
				var key, val []byte

				key, val, hasAttr = z.TagAttr()
				if string(key) != "href" {
					continue
				}

				href := strings.TrimSpace(string(val))
				if lower := strings.ToLower(href); strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
					if clean := cutAtDelimiter(href); clean != "" {
						found = append(found, clean)
					}
				}
			}
		}
	}
}

func cutAtDelimiter(href string) string {
	if idx := strings.IndexAny(href, " \t\r\n])\"'>"); idx >= 0 {
		return href[:idx]
	}

	return href
}

func mergeURLs(lists ...[]string) []string {
	return lo.Uniq(lo.Flatten(lists))
}
