package virustotal

import "errors"

var (
	// ErrMissingAPIKey is returned when the VirusTotal API key is not configured
	ErrMissingAPIKey = errors.New("virustotal API key is required")
	// ErrRequestFailed is returned when a VirusTotal API request fails
	ErrRequestFailed = errors.New("virustotal API request failed")
	// ErrUnexpectedStatus is returned when VirusTotal answers with a retryable status such as 429 or 5xx
	ErrUnexpectedStatus = errors.New("unexpected virustotal API response status")
	// ErrCircuitOpen is returned while the client is backing off after repeated failures
	ErrCircuitOpen = errors.New("virustotal circuit breaker is open")
)
