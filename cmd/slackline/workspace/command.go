// Copyright 2026 The Slackline Authors
// SPDX-License-Identifier: Apache-2.0

package workspace

import (
	"github.com/slackline-dev/slackline/cmd/slackline/cli"
)

// Command returns the "workspace" parent command with all subcommands.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "workspace",
		Summary: "Manage stored workspace credentials",
		Description: `Add, remove, and inspect the workspaces whose credentials slackline
stores.

Each workspace is a name, an API token (xoxb-, xoxp-, or xoxc-), and for
xoxc- session tokens the browser session cookie. Credentials live in
tokens.json, or in tokens.age when encryption is enabled; every command
here reads and writes whichever the configuration selects.

Tokens are never printed in full unless "show --reveal" is given.`,
		Subcommands: []*cli.Command{
			addCommand(),
			removeCommand(),
			listCommand(),
			showCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Store a bot token read from a file",
				Command:     "slackline workspace add acme --token-file ~/acme.token",
			},
			{
				Description: "List stored workspaces",
				Command:     "slackline workspace list",
			},
		},
	}
}

// entry is the --json shape of one workspace.
type entry struct {
	Name      string `json:"name"`
	Class     string `json:"class"`
	Token     string `json:"token,omitempty"`
	HasCookie bool   `json:"has_cookie"`
	Cookie    string `json:"cookie,omitempty"`
}
