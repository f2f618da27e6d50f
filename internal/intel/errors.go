package intel

import "errors"

var (
	// ErrNotHydrated is returned when a lookup is made before the feeds are hydrated
	ErrNotHydrated = errors.New("threat feeds have not been hydrated")
	// ErrNoFeedsDefined is returned when the feed configuration contains no feeds
	ErrNoFeedsDefined = errors.New("feed configuration has no feeds defined")
	// ErrInvalidFeed is returned when a feed is missing its name or URL
	ErrInvalidFeed = errors.New("feed requires a name and url")
	// ErrUnexpectedFeedStatus is returned when a feed download returns an unexpected HTTP status
	ErrUnexpectedFeedStatus = errors.New("unexpected feed response status")
	// ErrEmptyURL is returned when a lookup is made for an empty URL
	ErrEmptyURL = errors.New("url cannot be empty")
)
