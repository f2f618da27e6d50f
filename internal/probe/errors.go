package probe

import "errors"

var (
	// ErrNoHost is returned when a probe is asked about an empty hostname or URL
	ErrNoHost = errors.New("no host to probe")
	// ErrDisabled is returned by the placeholder probe used when a capability is not configured
	ErrDisabled = errors.New("probe disabled")
	// ErrNoCertificate is returned when a TLS handshake yields no leaf certificate
	ErrNoCertificate = errors.New("no certificate presented")
	// ErrUnexpectedStatus is returned when an HTTP collaborator answers with an unusable status
	ErrUnexpectedStatus = errors.New("unexpected response status")
	// ErrTooManyRedirects is returned when a redirect chain exceeds the hop limit
	ErrTooManyRedirects = errors.New("too many redirects")
	// ErrNoRecords is returned when neither DNS query produced an answer
	ErrNoRecords = errors.New("no DNS records resolved")
)
