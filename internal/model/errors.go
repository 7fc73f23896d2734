package model

import "errors"

var (
	// ErrUnauthenticated is returned when an operation needs an identity and none was given.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrUnauthorized is returned when the identity is known but not allowed.
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
	// ErrLocked is returned for writes against a submitted ballot or while ballots are locked.
	ErrLocked = errors.New("locked")
)
