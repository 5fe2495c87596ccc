package models

import "errors"

// Error kinds. Match with errors.Is.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateAccount   = errors.New("duplicate account")
	ErrNotAuthenticated   = errors.New("not authenticated")

	// ErrMalformedData marks persisted values that failed to parse. It is
	// logged and recovered locally, never returned to callers.
	ErrMalformedData = errors.New("malformed persisted data")

	// ErrPersistence wraps any failure of the backing store.
	ErrPersistence = errors.New("persistence failure")

	// ErrKeyNotFound is returned by backends for absent keys.
	ErrKeyNotFound = errors.New("key not found")
)

// UserError pairs an error kind with the message shown to the advisor.
type UserError struct {
	Kind    error
	Message string
}

func (e *UserError) Error() string {
	return e.Message
}

func (e *UserError) Unwrap() error {
	return e.Kind
}
