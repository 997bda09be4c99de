// Copyright 2026 The Slackline Authors
// SPDX-License-Identifier: Apache-2.0

package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/slackline-dev/slackline/cmd/slackline/cli"
)

type removeParams struct {
	cli.StoreConfig
}

func removeCommand() *cli.Command {
	var params removeParams

	return &cli.Command{
		Name:    "remove",
		Summary: "Delete a workspace's credentials",
		Description: `Delete the stored credentials for a workspace. The credential file is
rewritten only if the workspace existed.`,
		Usage:  "slackline workspace remove <name> [flags]",
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
			removed, err := params.Open(cfg, logger).Remove(ctx, name)
			if err != nil {
				return cli.FromStoreError(err)
			}
			if !removed {
				return cli.NotFound("no workspace named %q", name).
					WithHint("Run 'slackline workspace list' to see stored workspaces.")
			}

			fmt.Fprintf(os.Stdout, "Removed workspace %q\n", name)
			return nil
		},
	}
}
