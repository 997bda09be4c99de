// Copyright 2026 The Slackline Authors
// SPDX-License-Identifier: Apache-2.0

package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/slackline-dev/slackline/cmd/slackline/cli"
	"github.com/slackline-dev/slackline/lib/storeerr"
	libworkspace "github.com/slackline-dev/slackline/lib/workspace"
)

type showParams struct {
	cli.StoreConfig
	cli.JSONOutput
	Reveal bool `flag:"reveal" desc:"print the token and cookie in full"`
	Quiet  bool `flag:"quiet,q" desc:"print nothing; exit 1 if the workspace does not exist"`
}

func showCommand() *cli.Command {
	var params showParams

	return &cli.Command{
		Name:    "show",
		Summary: "Show one workspace's credentials",
		Description: `Show the stored credentials for a workspace. The token and cookie are
redacted unless --reveal is given.

With --quiet, nothing is printed and the exit status reports whether
the workspace exists, for use in scripts.`,
		Usage: "slackline workspace show <name> [flags]",
		Examples: []cli.Example{
			{
				Description: "Export a token into the environment",
				Command:     `SLACK_TOKEN=$(slackline workspace show acme --reveal --json | jq -r .token)`,
			},
			{
				Description: "Check that a workspace is configured",
				Command:     "slackline workspace show acme --quiet || slackline workspace add acme",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("expected exactly one workspace name, got %d arguments", len(args))
			}
			name := args[0]

			cfg, _, err := params.Load()
			if err != nil {
				return err
			}
			workspace, err := params.Open(cfg, logger).Lookup(ctx, name)
			if params.Quiet {
				if storeerr.Is(err, storeerr.NotFound) {
					return &cli.ExitError{Code: 1}
				}
				return cli.FromStoreError(err)
			}
			if err != nil {
				return cli.FromStoreError(err)
			}

			result := describe(workspace, params.Reveal)
			if done, err := params.EmitJSON(result); done {
				return err
			}

			fmt.Fprintf(os.Stdout, "Name:   %s\n", result.Name)
			fmt.Fprintf(os.Stdout, "Class:  %s\n", result.Class)
			fmt.Fprintf(os.Stdout, "Token:  %s\n", result.Token)
			if result.HasCookie {
				fmt.Fprintf(os.Stdout, "Cookie: %s\n", result.Cookie)
			}
			return nil
		},
	}
}

// describe renders workspace for display, redacting secrets unless
// reveal is set.
func describe(workspace libworkspace.Workspace, reveal bool) entry {
	result := entry{
		Name:      workspace.Name(),
		Class:     string(workspace.Class()),
		Token:     libworkspace.Redacted(workspace.Token()),
		HasCookie: workspace.HasCookie(),
	}
	if workspace.HasCookie() {
		result.Cookie = libworkspace.Redacted(workspace.Cookie())
	}
	if reveal {
		result.Token = workspace.Token()
		result.Cookie = workspace.Cookie()
	}
	return result
}
