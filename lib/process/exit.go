// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Fatal writes "error: err" to stderr and exits with code 1. Use it in
// main() for errors from run() where the structured logger may not be
// initialized.
func Fatal(err error) {
	writeError(os.Stderr, err)
	os.Exit(1)
}

// Exit ends the process with the status for err. nil exits 0. An error
// implementing ExitCode() int exits with that code and prints nothing,
// since the command has already reported it. Anything else goes
// through Fatal.
func Exit(err error) {
	if code, reported := exitCode(err); reported {
		os.Exit(code)
	}
	Fatal(err)
}

// exitCode returns the status for an error that needs no further
// output: 0 for nil, or the code of an ExitCode() error in the chain.
func exitCode(err error) (int, bool) {
	if err == nil {
		return 0, true
	}
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		return coder.ExitCode(), true
	}
	return 1, false
}

func writeError(w io.Writer, err error) {
	fmt.Fprintf(w, "error: %v\n", err)
}
