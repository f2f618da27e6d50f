package probe

import (
	"context"
	"errors"

	"github.com/theopenlane/spectra/internal/types"
)

// Failure is the reason a probe fell back to its default value
type Failure string

const (
	// FailureNone marks a successful probe
	FailureNone Failure = ""
	// FailureNoHost means there was nothing to probe
	FailureNoHost Failure = "no_host"
	// FailureTimeout means the probe ran out of its time budget
	FailureTimeout Failure = "timeout"
	// FailureLookup covers resolution, connection and handshake errors
	FailureLookup Failure = "lookup_failed"
	// FailureUnavailable means the remote answered but not with something usable
	FailureUnavailable Failure = "unavailable"
	// FailureDisabled means no implementation was configured
	FailureDisabled Failure = "disabled"
)

// Result carries a probe value, which is the documented default when Failure is set
type Result[T any] struct {
	Value   T
	Failure Failure
	Err     error
}

// OK reports whether the probe succeeded
func (r Result[T]) OK() bool {
	return r.Failure == FailureNone
}

func succeeded[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// failed classifies err and pairs it with the fallback value
func failed[T any](fallback T, err error) Result[T] {
	reason := FailureLookup

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		reason = FailureTimeout
	case errors.Is(err, ErrNoHost):
		reason = FailureNoHost
	case errors.Is(err, ErrDisabled):
		reason = FailureDisabled
	case errors.Is(err, ErrUnexpectedStatus):
		reason = FailureUnavailable
	}

	return Result[T]{Value: fallback, Failure: reason, Err: err}
}

// WhoisInfo is the registration age of a host's registrable domain
type WhoisInfo struct {
	AgeDays *int               `json:"domain_age_days"`
	Raw     types.WhoisDetails `json:"whois_raw"`
}

// RedirectInfo is where a URL ends up when followed
type RedirectInfo struct {
	FinalURL string   `json:"final_url"`
	Chain    []string `json:"redirect_chain"`
	Hops     int      `json:"redirect_hops"`
	Title    *string  `json:"page_title"`
}

// DefaultTLS is the certificate summary used when inspection is impossible. An empty host
// reports an unknown issuer, any other failure reports none
func DefaultTLS(host string) types.SSLStatus {
	if host == "" {
		return types.SSLStatus{Issuer: "Unknown"}
	}

	return types.SSLStatus{Issuer: "None"}
}

// DefaultGeo is the location used when the host cannot be resolved
func DefaultGeo() types.LocationData {
	return types.LocationData{Country: "Unknown", ISP: "Unknown"}
}

// DefaultDNS is the empty record set
func DefaultDNS() types.DNSRecords {
	return types.DNSRecords{A: []string{}, MX: []string{}}
}

// DefaultWhois is the unknown registration age
func DefaultWhois() WhoisInfo {
	return WhoisInfo{}
}

// DefaultRedirect treats the URL as its own destination
func DefaultRedirect(rawURL string) RedirectInfo {
	return RedirectInfo{FinalURL: rawURL, Chain: []string{}}
}
