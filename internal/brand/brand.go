package brand

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/theopenlane/spectra/internal/domain"
)

// DefaultBrands is the protected brand list used when none is configured
var DefaultBrands = []string{"google", "microsoft", "amazon", "paypal", "apple", "netflix", "facebook", "linkedin"}

// DefaultMaxDistance is the largest edit distance still treated as a lookalike
const DefaultMaxDistance = 2

var helperSuffixRegex = regexp.MustCompile(`[-_.](support|login|verify|secure|update)$`)

// Distance returns the Levenshtein distance between a and b measured in runes
func Distance(a, b string) int {
	return levenshtein.ComputeDistance(a, b)
}

// Within reports whether a and b are at most limit edits apart. The rune length
// difference is a lower bound on the distance so it is checked first
func Within(a, b string, limit int) bool {
	if abs(utf8.RuneCountInString(a)-utf8.RuneCountInString(b)) > limit {
		return false
	}

	return Distance(a, b) <= limit
}

// NormalizeLabel lowercases a domain label and strips one trailing helper suffix such as -login or _secure
func NormalizeLabel(label string) string {
	return helperSuffixRegex.ReplaceAllString(strings.ToLower(label), "")
}

// Matcher finds protected brands mimicked by a URL host
type Matcher struct {
	brands      []string
	maxDistance int
}

// Option configures a Matcher
type Option func(*Matcher)

// WithBrands replaces the protected brand list; empty entries are ignored
func WithBrands(brands []string) Option {
	return func(m *Matcher) {
		var cleaned []string

		for _, b := range brands {
			if b = strings.ToLower(strings.TrimSpace(b)); b != "" {
				cleaned = append(cleaned, b)
			}
		}

		if len(cleaned) > 0 {
			m.brands = cleaned
		}
	}
}

// WithMaxDistance sets the lookalike edit distance threshold
func WithMaxDistance(n int) Option {
	return func(m *Matcher) {
		if n > 0 {
			m.maxDistance = n
		}
	}
}

// NewMatcher creates a Matcher over DefaultBrands unless overridden
func NewMatcher(opts ...Option) *Matcher {
	m := &Matcher{
		brands:      append([]string(nil), DefaultBrands...),
		maxDistance: DefaultMaxDistance,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Brands returns a copy of the protected brand list
func (m *Matcher) Brands() []string {
	return append([]string(nil), m.brands...)
}

// Impersonation returns the first protected brand the host is a near miss of
func (m *Matcher) Impersonation(parts domain.URLParts) (string, bool) {
	matches := m.Matches(parts)
	if len(matches) == 0 {
		return "", false
	}

	return matches[0], true
}

// Matches returns every protected brand the host is a near miss of, in brand list order.
// The registrable label is checked first; when it is not itself a protected brand the
// remaining host labels are checked as well, limited to labels of similar length
func (m *Matcher) Matches(parts domain.URLParts) []string {
	if parts.IsIPv4 {
		return nil
	}

	primary := NormalizeLabel(parts.BrandLabel)

	var extra []string

	if !m.isBrand(primary) {
		hostLabels := strings.Split(parts.Host, ".")
		if len(hostLabels) > 1 {
			hostLabels = hostLabels[:len(hostLabels)-1]
		}

		for _, l := range hostLabels {
			l = NormalizeLabel(l)
			if l == "" || l == "www" || l == primary {
				continue
			}

			extra = append(extra, l)
		}
	}

	var out []string

	for _, b := range m.brands {
		if m.lookalike(primary, b) {
			out = append(out, b)
			continue
		}

		for _, l := range extra {
			if abs(utf8.RuneCountInString(l)-utf8.RuneCountInString(b)) <= 1 && m.lookalike(l, b) {
				out = append(out, b)
				break
			}
		}
	}

	return out
}

// Spoofing returns the first protected brand that appears in the cleaned host while the
// registrable label belongs to someone else, e.g. paypal.com.account-check.net
func (m *Matcher) Spoofing(parts domain.URLParts) (string, bool) {
	label := NormalizeLabel(parts.BrandLabel)
	if parts.CleanDomain == "" || label == "" {
		return "", false
	}

	for _, b := range m.brands {
		if strings.Contains(parts.CleanDomain, b) && label != b {
			return b, true
		}
	}

	return "", false
}

func (m *Matcher) lookalike(label, b string) bool {
	return label != "" && label != b && Within(label, b, m.maxDistance)
}

func (m *Matcher) isBrand(label string) bool {
	for _, b := range m.brands {
		if label == b {
			return true
		}
	}

	return false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}

	return n
}
