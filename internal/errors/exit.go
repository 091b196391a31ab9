package errors

import "errors"

// Exit codes for the forge CLI.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError = 1

	// ExitValidationError indicates a genome, recipe, or manifest failed
	// validation, or the dependency graph contains a cycle.
	ExitValidationError = 2

	// ExitExecutionError indicates a blueprint action or external command failed.
	ExitExecutionError = 3

	// ExitNotFound indicates a module, recipe, handler, or file was not found.
	ExitNotFound = 4

	// ExitConflict indicates irreconcilable staged content or lock drift.
	ExitConflict = 5
)

// ExitCodeName returns the name of the exit code.
func ExitCodeName(code int) string {
	switch code {
	case ExitSuccess:
		return "Success"
	case ExitGeneralError:
		return "General Error"
	case ExitValidationError:
		return "Validation Error"
	case ExitExecutionError:
		return "Execution Error"
	case ExitNotFound:
		return "Not Found"
	case ExitConflict:
		return "Conflict"
	default:
		return "Unknown"
	}
}

// ExitError wraps an error with an exit code. Printed marks errors the
// command layer has already rendered, so main does not print them twice.
type ExitError struct {
	Err     error
	Code    int
	Printed bool
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the wrapped error.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given error and exit code.
func NewExitError(err error, code int) *ExitError {
	return &ExitError{Err: err, Code: code}
}

// ExitCodeFromError determines the appropriate exit code for an error.
func ExitCodeFromError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrCycle):
		return ExitValidationError
	case errors.Is(err, ErrExecution):
		return ExitExecutionError
	case errors.Is(err, ErrNotFound):
		return ExitNotFound
	case errors.Is(err, ErrConflict):
		return ExitConflict
	default:
		return ExitGeneralError
	}
}
