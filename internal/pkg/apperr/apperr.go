package apperr

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists signals a unique-key conflict (username, email, reserved id).
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnauthorized is a generic sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrUnavailable signals a backend that could not be reached. Callers
	// treat it as the trigger for falling back to the other store.
	ErrUnavailable = errors.New("backend unavailable")
)
