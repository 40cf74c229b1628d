package rebuild

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrSuperseded is returned when a newer rebuild replaced this one.
	ErrSuperseded = errors.New("rebuild superseded by a newer run")
)
