// Package exitcode carries process exit codes through ordinary errors so
// the command line can pick the code where the error is created and report
// it where the error is handled.
package exitcode

import (
	"errors"
	"os"
)

const (
	Success = 0

	// The input could not be read, parsed or rewritten
	Failure = 1

	// The command line itself was invalid
	BadFlags = 2
)

// Coder is an error that knows its own exit code.
type Coder interface {
	error
	ExitCode() int
}

// Get gets the exit code associated with an error:
//
//	nil => Success
//	errors implementing Coder, even when wrapped => value returned by ExitCode
//	all other errors => Failure
func Get(err error) int {
	if err == nil {
		return Success
	}

	if coder := Coder(nil); errors.As(err, &coder) {
		return coder.ExitCode()
	}

	return Failure
}

// Set wraps an error in a Coder. The message and the error chain are
// unchanged.
func Set(err error, code int) error {
	if err == nil {
		return nil
	}
	return coder{err, code}
}

var _ Coder = coder{}

type coder struct {
	error
	code int
}

func (c coder) ExitCode() int {
	return c.code
}

func (c coder) Unwrap() error {
	return c.error
}

// Exit calls os.Exit with the exit code associated with err.
func Exit(err error) {
	os.Exit(Get(err))
}
