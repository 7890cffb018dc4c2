// Package main provides the nutrifit CLI: a local meal and workout log
// with a running calorie balance.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mesh-intelligence/nutrifit/internal/form"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// exitError carries the process exit code for a failed command.
// A non-empty msg replaces the error text shown to the user.
type exitError struct {
	code int
	err  error
	msg  string
}

func (e *exitError) Error() string {
	if e.msg != "" {
		return e.msg
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

// userError marks err as caused by bad input.
func userError(err error) error {
	return &exitError{code: exitUserError, err: err}
}

// inputError is a userError shown with the form's prompt text.
func inputError(err error) error {
	return &exitError{code: exitUserError, err: err, msg: form.Message(err)}
}

// sysError marks err as a storage or environment failure.
func sysError(err error) error {
	return &exitError{code: exitSysError, err: err}
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the CLI with the given arguments and streams and returns
// the exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if err == nil {
		return exitSuccess
	}
	fmt.Fprintln(stderr, "nutrifit:", err)

	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	// Flag and argument parsing errors from cobra.
	return exitUserError
}
