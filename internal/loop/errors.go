package loop

import "errors"

var (
	// ErrInvalidStep indicates a zero step between iterations.
	ErrInvalidStep = errors.New("loop: step must be positive")

	// ErrInvalidDuration indicates a zero run duration.
	ErrInvalidDuration = errors.New("loop: duration must be positive")
)
