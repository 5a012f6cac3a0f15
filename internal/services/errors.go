package services

import "errors"

// ErrGenerationInFlight rejects a submission while another generation is
// pending. This is an intentional debounce, not a failure: the studio state
// is left untouched.
var ErrGenerationInFlight = errors.New("a generation is already in flight")

// ErrRetryUnavailable rejects an aspect-ratio retry when the last result was
// not a text-only success.
var ErrRetryUnavailable = errors.New("aspect-ratio retry is only available for text-only results")

// ErrResultNotFound rejects image access for an ID that is not the current
// result (the studio keeps only the most recent generation).
var ErrResultNotFound = errors.New("no such generation result")

// ValidationError reports locally rejected input. It never reaches the
// network layer and is displayed inline.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidationError reports whether err is a local input rejection.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
