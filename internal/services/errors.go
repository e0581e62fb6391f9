package services

import "errors"

var (
	ErrJobNotFound = errors.New("job not found")
	// ErrInvalidOrder is a malformed reorder batch: an unknown status or the
	// same job twice.
	ErrInvalidOrder = errors.New("invalid order update")
	// ErrInconsistentOrder means a reorder would leave a column with gaps or
	// duplicate positions. Nothing is written.
	ErrInconsistentOrder = errors.New("order update leaves a column inconsistent")
	ErrLLMUnavailable    = errors.New("job extraction is not configured")
	ErrExtractionFailed  = errors.New("could not read job details from the model answer")
)
