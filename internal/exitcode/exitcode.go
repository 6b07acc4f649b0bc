// Package exitcode defines exit codes for the CLI.
package exitcode

import (
	"errors"

	"todo/internal/board"
	"todo/internal/service"
)

// Exit codes returned by every command.
const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, not found, ambiguous, or
	// an operation refused before any request was sent).
	UserError = 1

	// AuthError indicates a missing, expired or rejected session.
	AuthError = 2

	// BackendError indicates a validation, HTTP or network failure.
	BackendError = 3
)

// For maps an error from a board operation to an exit code.
func For(err error) int {
	var refused *board.RefusedError
	switch {
	case err == nil:
		return Success
	case errors.Is(err, service.ErrUnauthorized):
		return AuthError
	case errors.As(err, &refused):
		return UserError
	default:
		return BackendError
	}
}
