package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/99minutos/library-catalog/internal/core/domain"
	"github.com/99minutos/library-catalog/internal/core/service"
)

// Process exit codes.
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitUsage     = 2
	ExitAuth      = 3
	ExitForbidden = 4
	ExitNotFound  = 5
	ExitConflict  = 6
)

var errForbidden = errors.New("admin access required")

// usageError marks bad command-line input.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return usageError{err: fmt.Errorf(format, args...)}
}

// ExitCode maps a command error to a deterministic exit code.
func ExitCode(err error) int {
	var ue usageError
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &ue), errors.Is(err, domain.ErrInvalidInput):
		return ExitUsage
	case errors.Is(err, domain.ErrUnauthenticated), errors.Is(err, domain.ErrInvalidCredentials):
		return ExitAuth
	case errors.Is(err, errForbidden):
		return ExitForbidden
	case errors.Is(err, domain.ErrBookNotFound):
		return ExitNotFound
	case errors.Is(err, domain.ErrAlreadyBorrowed),
		errors.Is(err, domain.ErrNotBorrowed),
		errors.Is(err, domain.ErrNotBorrower),
		errors.Is(err, domain.ErrEmailAlreadyInUse):
		return ExitConflict
	}
	return ExitFailure
}

// reportError prints err for the user. Known errors use their user-facing
// text; anything else is printed verbatim since it did not come from a store.
func reportError(w io.Writer, err error) {
	var ue usageError
	switch {
	case errors.As(err, &ue):
		fmt.Fprintf(w, "Error: %v\nRun 'catalog --help' for usage.\n", ue.err)
	case errors.Is(err, errForbidden):
		fmt.Fprintln(w, "Error: admin access required")
	case ExitCode(err) != ExitFailure:
		fmt.Fprintf(w, "Error: %s\n", service.Describe(err))
	default:
		fmt.Fprintf(w, "Error: %v\n", err)
	}
}
