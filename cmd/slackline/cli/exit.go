// Copyright 2026 The Slackline Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// ExitError signals a non-zero exit code without printing an extra
// error message. The command is expected to have already written its
// own output.
//
// "workspace show" returns 1 for an unknown name in --quiet mode and
// "doctor" returns 1 when a check fails; neither is an unexpected error.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode returns the exit code, satisfying process.ExitCoder.
func (e *ExitError) ExitCode() int {
	return e.Code
}
