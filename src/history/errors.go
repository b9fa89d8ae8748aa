package history

import "errors"

// Common error variables
var (
	// ErrMessageNotFound indicates a fork target message is absent from the
	// source conversation; no new record is created
	ErrMessageNotFound = errors.New("message not found in conversation")

	// ErrAllocationExhausted indicates the urlId collision bound was exceeded
	ErrAllocationExhausted = errors.New("url id allocation exhausted")

	// ErrInvalidFormat indicates a malformed import payload, rejected before
	// any persistence call
	ErrInvalidFormat = errors.New("invalid transcript format")
)
