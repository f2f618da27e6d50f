package mailparse

import "errors"

var (
	// ErrReadMessage is returned when a message cannot be parsed as MIME
	ErrReadMessage = errors.New("failed to read message")
	// ErrEmptyMessage is returned when a message has no headers and no body
	ErrEmptyMessage = errors.New("message is empty")
)
