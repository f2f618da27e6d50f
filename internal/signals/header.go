package signals

import (
	"regexp"
	"strings"
)

const (
	// StatusPass is reported when no failure marker was found
	StatusPass = "Pass"
	// StatusFail is reported when the receiving server recorded a failure
	StatusFail = "Fail"
	// StatusNotProvided is reported when no headers were supplied
	StatusNotProvided = "Not Provided"
)

// HeaderDetails is the authentication outcome recorded in a raw header block
type HeaderDetails struct {
	SPF                string `json:"spf"`
	DKIM               string `json:"dkim"`
	DMARC              string `json:"dmarc"`
	ReturnPathMismatch bool   `json:"return_path_mismatch"`
}

// headerCheck marks one authentication mechanism as failed when any marker is present
type headerCheck struct {
	markers []string
	weight  float64
	set     func(*HeaderDetails)
}

var headerChecks = []headerCheck{
	{markers: []string{"spf=fail", "received-spf: fail"}, weight: 30, set: func(d *HeaderDetails) { d.SPF = StatusFail }},
	{markers: []string{"dkim=fail"}, weight: 25, set: func(d *HeaderDetails) { d.DKIM = StatusFail }},
	{markers: []string{"dmarc=fail"}, weight: 30, set: func(d *HeaderDetails) { d.DMARC = StatusFail }},
}

const returnPathMismatchWeight = 15

// Headers reads Authentication-Results style markers out of a raw header block
func Headers(raw string) (float64, HeaderDetails) {
	if strings.TrimSpace(raw) == "" {
		return 0, HeaderDetails{SPF: StatusNotProvided, DKIM: StatusNotProvided, DMARC: StatusNotProvided}
	}

	lower := strings.ToLower(raw)
	details := HeaderDetails{SPF: StatusPass, DKIM: StatusPass, DMARC: StatusPass}

	var score float64

	for _, check := range headerChecks {
		for _, marker := range check.markers {
			if strings.Contains(lower, marker) {
				check.set(&details)
				score += check.weight

				break
			}
		}
	}

	returnPath, hasReturnPath := headerValue(lower, "return-path:")
	from, hasFrom := headerValue(lower, "from:")

	if hasReturnPath && hasFrom && !strings.Contains(from, returnPath) {
		details.ReturnPathMismatch = true
		score += returnPathMismatchWeight
	}

	return min(score, maxScore), details
}

// headerValue returns the trimmed rest of the line following the first occurrence of name
func headerValue(lower, name string) (string, bool) {
	_, rest, ok := strings.Cut(lower, name)
	if !ok {
		return "", false
	}

	line, _, _ := strings.Cut(rest, "\n")

	return strings.TrimSpace(line), true
}

var ipv4Pattern = regexp.MustCompile(`\b\d{1,3}(?:\.\d{1,3}){3}\b`)

// suspiciousIPPrefixes are address blocks heavily used by bulk phishing infrastructure
var suspiciousIPPrefixes = []string{"185.", "103.", "45."}

const suspiciousIPWeight = 40

// IntelDetails is the relay reputation derived from addresses in the header block
type IntelDetails struct {
	IPReputation string `json:"ip_reputation"`
	Country      string `json:"country"`
	Blacklisted  bool   `json:"blacklisted"`
	MatchedIP    string `json:"matched_ip,omitempty"`
}

// HeaderIntel flags headers that name a relay inside a suspicious address block. Only the
// first match counts
func HeaderIntel(raw string) (float64, IntelDetails) {
	if strings.TrimSpace(raw) == "" {
		return 0, IntelDetails{IPReputation: "Unknown", Country: "Unknown"}
	}

	details := IntelDetails{IPReputation: "Clean", Country: "Safe Region"}

	for _, ip := range ipv4Pattern.FindAllString(raw, -1) {
		for _, prefix := range suspiciousIPPrefixes {
			if strings.HasPrefix(ip, prefix) {
				details.IPReputation = "Suspicious"
				details.Country = "High-Risk Region"
				details.Blacklisted = true
				details.MatchedIP = ip

				return suspiciousIPWeight, details
			}
		}
	}

	return 0, details
}
