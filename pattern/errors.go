package pattern

import "errors"

var (
	// ErrEmptyList is returned when a sampling combinator is given zero candidates.
	ErrEmptyList = errors.New("pattern: empty list")

	// ErrInvalidDuration is returned for a non-positive duration or quantization.
	ErrInvalidDuration = errors.New("pattern: duration must be positive")
)
