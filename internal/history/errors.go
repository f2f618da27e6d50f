package history

import "errors"

var (
	// ErrNotFound is returned when no record exists for an id
	ErrNotFound = errors.New("history record not found")
	// ErrMissingID is returned when a record is saved without an id
	ErrMissingID = errors.New("history record id is required")
	// ErrConnect is returned when the postgres pool cannot be established
	ErrConnect = errors.New("failed to connect to history database")
	// ErrMigrate is returned when the embedded schema migrations fail
	ErrMigrate = errors.New("failed to migrate history database")
)
