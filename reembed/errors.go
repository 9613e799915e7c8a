package reembed

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when RetryWithBackoff is called
	// with maxAttempts below 1.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")
)
