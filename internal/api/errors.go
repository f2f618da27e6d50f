package api

import "errors"

var (
	// ErrInvalidRequestBody is returned when the request body cannot be decoded
	ErrInvalidRequestBody = errors.New("invalid request body")
	// ErrMultipleJSONObjects is returned when the request body contains more than one JSON object
	ErrMultipleJSONObjects = errors.New("request body must contain a single JSON object")
	// ErrTextOrURLsRequired is returned when a scan request has neither text nor urls
	ErrTextOrURLsRequired = errors.New("text or urls required")
	// ErrURLRequired is returned when a single URL analysis is requested without a url
	ErrURLRequired = errors.New("url required")
	// ErrAnalyzeInputRequired is returned when an analysis request carries no content
	ErrAnalyzeInputRequired = errors.New("email_text, url or urls required")
	// ErrIntelNotConfigured is returned when no threat feed manager is wired
	ErrIntelNotConfigured = errors.New("threat intelligence not configured")
	// ErrHistoryNotConfigured is returned when no history store is wired
	ErrHistoryNotConfigured = errors.New("scan history not configured")
	// ErrRecordNotFound is returned when a history record does not exist
	ErrRecordNotFound = errors.New("history record not found")
	// ErrScanFailed is returned when a scan fails for a reason other than its deadline
	ErrScanFailed = errors.New("scan failed")
)
