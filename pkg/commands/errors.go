package commands

import (
	"fmt"
)

// ExitCoder is an error signature used to override the exit code in the end
// of main.main.
type ExitCoder interface {
	ExitCode() int
}

// ErrArgs means the command was called with invalid arguments, the usage
// is printed in this case.
type ErrArgs struct {
	Err error
}

func (err ErrArgs) Error() string {
	return fmt.Sprintf("invalid arguments: %v", err.Err)
}

func (err ErrArgs) Unwrap() error {
	return err.Err
}

// SilentError is an error which was already reported to the user, it only
// affects the exit code.
type SilentError struct {
	Err error
}

func (err SilentError) Error() string {
	return err.Err.Error()
}

func (err SilentError) Unwrap() error {
	return err.Err
}

// ErrExitCode is an error with a specific exit code.
type ErrExitCode struct {
	Err  error
	Code int
}

var _ ExitCoder = ErrExitCode{}

func (err ErrExitCode) Error() string {
	return err.Err.Error()
}

func (err ErrExitCode) Unwrap() error {
	return err.Err
}

// ExitCode implements ExitCoder.
func (err ErrExitCode) ExitCode() int {
	return err.Code
}
