package utils

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by every service. Handlers map these to HTTP
// status codes; background sweepers log and keep going.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failure")
	ErrConflict   = errors.New("conflict")

	// ErrInvalidStateTransition is a Conflict subtype: an operation
	// attempted from a terminal or otherwise wrong status.
	ErrInvalidStateTransition = fmt.Errorf("invalid state transition: %w", ErrConflict)
)

func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrValidation)...)
}

// Conflictf carries the specific conflict reason ("segment already
// held", "hold expired") so a client can retry with a different seat
// or segment.
func Conflictf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrConflict)...)
}

func Transitionf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidStateTransition)...)
}

func IsNotFound(err error) bool   { return errors.Is(err, ErrNotFound) }
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }
func IsConflict(err error) bool   { return errors.Is(err, ErrConflict) }
