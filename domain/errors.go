package domain

import "errors"

var (
	// ErrNotFound is returned when a record with the requested id does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique name or key is already taken.
	ErrConflict = errors.New("already exists")
	// ErrForbidden is returned when the caller lacks the admin flag.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthorized is returned for missing or bad credentials.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalid is returned when input fails validation.
	ErrInvalid = errors.New("invalid input")
)
