package store

import "errors"

var (
	// ErrNotFound is returned when a slug has no entry in the tier
	ErrNotFound = errors.New("not found")

	// ErrInvalidSlug is returned when an entry's slug is not in canonical form
	ErrInvalidSlug = errors.New("invalid slug")

	// ErrIndexCorrupt is reported when a persisted index fails to parse.
	// The store rebuilds the index from entry files and surfaces this as a warning.
	ErrIndexCorrupt = errors.New("index corrupt")
)
