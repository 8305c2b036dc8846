package core

import "errors"

var (
	// ErrValidation marks malformed input: a finding payload missing required
	// fields or an unparsable severity/category token. It is always raised
	// before any mutation takes place.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a reference to a case id that is absent from the
	// corpus. Like ErrValidation it fails before any mutation.
	ErrNotFound = errors.New("not found")

	// ErrReviewTerminal is returned when a terminal review is marked
	// completed or failed again.
	ErrReviewTerminal = errors.New("review already in terminal state")
)
