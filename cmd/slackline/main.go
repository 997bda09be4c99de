// Copyright 2026 The Slackline Authors
// SPDX-License-Identifier: Apache-2.0

// Slackline manages the stored credentials of a multi-workspace Slack
// client.
package main

import (
	"os"

	"github.com/slackline-dev/slackline/cmd/slackline/commands"
	"github.com/slackline-dev/slackline/lib/process"
)

func main() {
	if err := commands.Root().Execute(os.Args[1:]); err != nil {
		process.Fatal(err)
	}
}
