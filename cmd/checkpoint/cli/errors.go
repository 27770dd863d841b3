package cli

import (
	"errors"
	"fmt"
)

// ExitCodeUnknownCategory is returned when dispatch receives a category
// outside the known set.
const ExitCodeUnknownCategory = 2

// ExitError carries a specific process exit status.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError wraps err with an exit status.
func NewExitError(code int, err error) *ExitError {
	return &ExitError{Code: code, Err: err}
}

// ExitCode maps an error returned by the command tree to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}

// FormatError renders err for stderr.
func FormatError(err error) string {
	return fmt.Sprintf("Error: %v", err)
}

// SilentError marks an error whose message was already shown to the user.
// main skips printing it.
type SilentError struct {
	Err error
}

// NewSilentError wraps err so main does not print it again.
func NewSilentError(err error) *SilentError {
	return &SilentError{Err: err}
}

func (e *SilentError) Error() string {
	return e.Err.Error()
}

func (e *SilentError) Unwrap() error {
	return e.Err
}
