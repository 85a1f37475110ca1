package domain

import "errors"

// Sentinel errors shared across services and repositories.
var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateEmail    = errors.New("email already in use")
	ErrAlreadyCheckedIn  = errors.New("guest already checked in")
	ErrInvalidTransition = errors.New("invalid status transition")
)
