package domain

import "errors"

var (
	// ErrInvalidEmailFormat is returned when a sender address has no usable domain part
	ErrInvalidEmailFormat = errors.New("invalid email format")
	// ErrInvalidURLFormat is returned when a link cannot be parsed
	ErrInvalidURLFormat = errors.New("invalid URL format")
	// ErrInvalidDomainFormat is returned when a host has no registrable domain
	ErrInvalidDomainFormat = errors.New("invalid domain format")
)
