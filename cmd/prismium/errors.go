package main

import (
	"errors"

	"github.com/luizguil99/prismium/src/history"
	"github.com/luizguil99/prismium/src/storage"
)

// Exit codes following standard conventions
const (
	ExitSuccess  = 0 // Success
	ExitError    = 1 // General error
	ExitUsage    = 2 // Usage error
	ExitConfig   = 3 // Configuration error
	ExitAuth     = 4 // Authentication error
	ExitNotFound = 5 // Record not found
	ExitNetwork  = 6 // Backing store unreachable
)

// exitCode maps a command failure onto a process exit code.
func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, storage.ErrUnauthorized):
		return ExitAuth
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, history.ErrMessageNotFound):
		return ExitNotFound
	case errors.Is(err, storage.ErrInvalidArgument), errors.Is(err, history.ErrInvalidFormat):
		return ExitUsage
	case errors.Is(err, storage.ErrStoreUnavailable):
		return ExitNetwork
	default:
		return ExitError
	}
}
