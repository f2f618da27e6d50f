package config

import "errors"

var (
	// ErrConfigUnmarshal is returned when config unmarshalling fails
	ErrConfigUnmarshal = errors.New("failed to unmarshal configuration")
	// ErrConfigLoad is returned when a config source exists but cannot be read
	ErrConfigLoad = errors.New("failed to load configuration")
	// ErrInvalidBackend is returned when a storage backend name is not recognized
	ErrInvalidBackend = errors.New("invalid backend")
)
