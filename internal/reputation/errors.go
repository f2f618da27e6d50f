package reputation

import "errors"

var (
	// ErrEmptyURL is returned when a cache key is empty
	ErrEmptyURL = errors.New("reputation cache key is empty")
	// ErrCacheUnavailable is returned when the cache backend cannot be reached
	ErrCacheUnavailable = errors.New("reputation cache unavailable")
)
