package domain

import "errors"

// Error kinds reported synchronously to callers. Wrap them with fmt.Errorf
// and %w; match with errors.Is.
var (
	// ErrInvalidInput covers out-of-range severity or area importance and non-positive limits
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfiguration covers non-positive epsilon, minPoints and similar engine settings
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrMalformedRecord covers missing or non-finite coordinates and timestamps
	ErrMalformedRecord = errors.New("malformed record")

	// ErrNotFound is returned by repositories when a complaint does not exist
	ErrNotFound = errors.New("not found")
)
