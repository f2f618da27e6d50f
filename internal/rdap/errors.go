package rdap

import "errors"

var (
	// ErrEmptyDomain is returned when an empty domain is provided for lookup
	ErrEmptyDomain = errors.New("domain must not be empty")
	// ErrUnregistrable is returned when a host has no registrable domain, such as a bare public suffix or an IP
	ErrUnregistrable = errors.New("host has no registrable domain")
	// ErrUnexpectedObject is returned when the RDAP response is not a domain object
	ErrUnexpectedObject = errors.New("RDAP response is not a domain object")
)
