// Copyright 2026 The Slackline Authors
// SPDX-License-Identifier: Apache-2.0

package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/slackline-dev/slackline/cmd/slackline/cli"
)

type listParams struct {
	cli.StoreConfig
	cli.JSONOutput
}

func listCommand() *cli.Command {
	var params listParams

	return &cli.Command{
		Name:    "list",
		Summary: "List stored workspaces",
		Description: `List every stored workspace with its token class and whether a
session cookie is stored. Secrets are not shown.`,
		Usage: "slackline workspace list [flags]",
		Examples: []cli.Example{
			{
				Description: "List workspaces as JSON",
				Command:     "slackline workspace list --json",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}

			cfg, _, err := params.Load()
			if err != nil {
				return err
			}
			workspaces, err := params.Open(cfg, logger).All(ctx)
			if err != nil {
				return cli.FromStoreError(err)
			}

			var entries []entry
			for _, workspace := range workspaces {
				entries = append(entries, entry{
					Name:      workspace.Name(),
					Class:     string(workspace.Class()),
					HasCookie: workspace.HasCookie(),
				})
			}

			if done, err := params.EmitJSON(entries); done {
				return err
			}

			if len(entries) == 0 {
				fmt.Fprintf(os.Stdout, "No workspaces stored in %s\n", cfg.Store.Dir)
				return nil
			}

			writer := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(writer, "NAME\tCLASS\tCOOKIE")
			for _, entry := range entries {
				cookie := "-"
				if entry.HasCookie {
					cookie = "yes"
				}
				fmt.Fprintf(writer, "%s\t%s\t%s\n", entry.Name, entry.Class, cookie)
			}
			return writer.Flush()
		},
	}
}
