package storage

import (
	"errors"
	"fmt"
)

// Common error variables
var (
	// ErrNotFound indicates the requested chat does not exist for the caller
	ErrNotFound = errors.New("chat not found")

	// ErrUnauthorized indicates a missing owner identity or a record owned
	// by a different identity
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidArgument indicates a rejected write (malformed timestamp,
	// empty description, malformed payload); no partial write occurs
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrStoreUnavailable indicates the backing service could not be reached
	ErrStoreUnavailable = errors.New("store unavailable")
)

// StoreError wraps a driver-level failure with the operation that hit it.
// It matches ErrStoreUnavailable so callers can treat any backend failure
// as transient without inspecting driver internals.
type StoreError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("store error during %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is implements error matching.
func (e *StoreError) Is(target error) bool {
	return target == ErrStoreUnavailable
}

func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}
