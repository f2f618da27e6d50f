package emailauth

import "errors"

var (
	// ErrEmptyDomain is returned when no sender domain could be derived from the input
	ErrEmptyDomain = errors.New("no sender domain could be derived")
	// ErrDNSLookupFailed is returned when the resolver could not be reached for any policy record
	ErrDNSLookupFailed = errors.New("DNS lookup failed")
)
