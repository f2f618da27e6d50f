package scanner

import "errors"

var (
	// ErrScanDeadline is returned when the overall scan budget expires before a result is complete
	ErrScanDeadline = errors.New("scan deadline exceeded")
)
