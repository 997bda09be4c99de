// Copyright 2026 The Slackline Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// exit is replaced in tests.
var exit = os.Exit

// ExitCoder is implemented by errors that carry their own exit status.
// Commands that have already reported their outcome (such as doctor)
// return one so that no redundant "error:" line is printed.
type ExitCoder interface {
	ExitCode() int
}

// Fatal writes "error: err" to stderr and exits with code 1, or exits
// silently with the error's own code if it implements ExitCoder.
func Fatal(err error) {
	exit(report(os.Stderr, err))
}

// report writes err to w unless it carries an exit code, and returns the
// code to exit with.
func report(w io.Writer, err error) int {
	var coder ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	fmt.Fprintf(w, "error: %v\n", err)
	return 1
}
