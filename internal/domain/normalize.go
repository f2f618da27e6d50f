package domain

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

var (
	schemeRegex    = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)
	httpSchemeRegx = regexp.MustCompile(`^https?://`)
	ipv4HostRegex  = regexp.MustCompile(`^\d{1,3}(\.\d{1,3}){3}$`)
)

// URLParts is the lexical breakdown of a raw URL string
type URLParts struct {
	// Raw is the trimmed input
	Raw string
	// URL is the scheme-qualified form of Raw
	URL string
	// Host is the lowercase hostname with userinfo and port removed
	Host string
	// CleanDomain is the lowercase input without http(s):// or a leading www., cut at the first '/'
	CleanDomain string
	// RegistrableDomain approximates the purchasable root using the last two labels
	RegistrableDomain string
	// SLD is the first label of RegistrableDomain
	SLD string
	// BrandLabel is the public-suffix-aware registrable label in Unicode form, falling back to SLD
	BrandLabel string
	// IsIPv4 reports whether Host is a dotted-quad literal
	IsIPv4 bool
	// Depth is the number of labels in Host
	Depth int
}

// Normalize breaks a raw URL into its lexical parts. It never fails: malformed input
// degrades to best-effort string slicing
func Normalize(raw string) URLParts {
	trimmed := strings.TrimSpace(raw)

	parts := URLParts{
		Raw:         trimmed,
		URL:         EnsureScheme(trimmed),
		Host:        Hostname(trimmed),
		CleanDomain: CleanDomain(trimmed),
	}

	parts.RegistrableDomain, parts.SLD = registrable(parts.CleanDomain)
	parts.IsIPv4 = parts.Host != "" && ipv4HostRegex.MatchString(parts.Host)
	parts.Depth = len(labels(parts.Host))
	parts.BrandLabel = brandLabel(parts.CleanDomain, parts.SLD)

	return parts
}

// EnsureScheme prefixes http:// when the input has no scheme
func EnsureScheme(raw string) string {
	u := strings.TrimSpace(raw)
	if u == "" || schemeRegex.MatchString(u) {
		return u
	}

	return "http://" + u
}

// Hostname returns the lowercase host of a raw URL without userinfo or port
func Hostname(raw string) string {
	qualified := EnsureScheme(raw)
	if qualified == "" {
		return ""
	}

	if u, err := url.Parse(qualified); err == nil && u.Host != "" {
		return strings.ToLower(u.Hostname())
	}

	// url.Parse rejects plenty of hostile input; slice the authority by hand
	rest := qualified
	if idx := strings.Index(rest, "://"); idx >= 0 {
		rest = rest[idx+3:]
	}

	if idx := strings.IndexAny(rest, "/?#"); idx >= 0 {
		rest = rest[:idx]
	}

	return strings.ToLower(stripUserinfoAndPort(rest))
}

// CleanDomain lowercases the input, strips http(s):// and a leading www., and keeps everything before the first '/'
func CleanDomain(raw string) string {
	u := strings.ToLower(strings.TrimSpace(raw))
	u = httpSchemeRegx.ReplaceAllString(u, "")
	u = strings.TrimPrefix(u, "www.")

	host, _, _ := strings.Cut(u, "/")

	return host
}

func registrable(clean string) (string, string) {
	host := stripUserinfoAndPort(clean)

	ls := labels(host)
	if len(ls) < 2 {
		return host, host
	}

	return strings.Join(ls[len(ls)-2:], "."), ls[len(ls)-2]
}

func brandLabel(clean, fallback string) string {
	host := strings.TrimSuffix(stripUserinfoAndPort(clean), ".")
	if host == "" || ipv4HostRegex.MatchString(host) {
		return fallback
	}

	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		ascii = host
	}

	etld1, err := publicsuffix.EffectiveTLDPlusOne(ascii)
	if err != nil {
		return fallback
	}

	label, _, _ := strings.Cut(etld1, ".")
	if label == "" {
		return fallback
	}

	if unicode, err := idna.ToUnicode(label); err == nil {
		label = unicode
	}

	return strings.ToLower(label)
}

func stripUserinfoAndPort(s string) string {
	if idx := strings.LastIndex(s, "@"); idx >= 0 {
		s = s[idx+1:]
	}

	host, _, _ := strings.Cut(s, ":")

	return host
}

func labels(host string) []string {
	var out []string

	for _, l := range strings.Split(host, ".") {
		if l != "" {
			out = append(out, l)
		}
	}

	return out
}
