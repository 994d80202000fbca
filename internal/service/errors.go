package service

import "errors"

// ValidationError indicates the caller supplied malformed input. No mutation
// is performed when it is returned.
type ValidationError struct {
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return e.Message
}

// InvalidStateError indicates an operation was attempted from a proposal state
// that disallows it.
type InvalidStateError struct {
	Message string
}

// Error implements the error interface.
func (e InvalidStateError) Error() string {
	return e.Message
}

// ErrNotReviewAuthor is returned when someone other than the author (or an
// administrator, where allowed) tries to mutate a review.
var ErrNotReviewAuthor = errors.New("review does not belong to user")
