package intel

import (
	"strings"
	"unicode"
)

// NormalizeURL returns the membership key for a URL. Matching is exact, so only surrounding
// whitespace is removed
func NormalizeURL(raw string) string {
	return strings.TrimSpace(raw)
}

// parseFeedLine extracts a URL from one feed line. Plain lists carry one URL per line;
// CSV exports carry it in some column, so the first http(s) token wins
func parseFeedLine(line string) string {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
		return ""
	}

	for _, field := range splitFields(line) {
		candidate := strings.Trim(field, "\"'")
		lower := strings.ToLower(candidate)

		if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
			return candidate
		}
	}

	return ""
}

// splitFields tokenizes a line by whitespace and commas; quoted CSV cells keep their commas
func splitFields(input string) []string {
	var (
		fields  []string
		current strings.Builder
		quoted  bool
	)

	flush := func() {
		if current.Len() > 0 {
			fields = append(fields, current.String())
			current.Reset()
		}
	}

	for _, r := range input {
		switch {
		case r == '"':
			quoted = !quoted
		case !quoted && (r == ',' || unicode.IsSpace(r)):
			flush()
		default:
			current.WriteRune(r)
		}
	}

	flush()

	return fields
}
