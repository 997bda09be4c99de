// Copyright 2026 The Slackline Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete slackline command tree.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/slackline-dev/slackline/cmd/slackline/cli"
	doctorcmd "github.com/slackline-dev/slackline/cmd/slackline/doctor"
	encryptioncmd "github.com/slackline-dev/slackline/cmd/slackline/encryption"
	workspacecmd "github.com/slackline-dev/slackline/cmd/slackline/workspace"
	"github.com/slackline-dev/slackline/lib/version"
)

// Root builds and returns the complete slackline command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "slackline",
		Description: `slackline: credentials for a multi-workspace Slack client.

Store API tokens and session cookies for several workspaces, in plaintext
(owner-only) or encrypted with age to an SSH key.`,
		Subcommands: []*cli.Command{
			workspacecmd.Command(),
			encryptioncmd.Command(),
			doctorcmd.Command(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					fmt.Printf("slackline %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Store a workspace token (prompts without echo)",
				Command:     "slackline workspace add acme",
			},
			{
				Description: "Encrypt stored credentials to your SSH key",
				Command:     "slackline encryption enable --key ~/.ssh/id_ed25519",
			},
			{
				Description: "Check the store and repair what can be repaired",
				Command:     "slackline doctor --fix",
			},
		},
	}
}
