// Copyright 2026 The Slackline Authors
// SPDX-License-Identifier: Apache-2.0

package encryption

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/slackline-dev/slackline/cmd/slackline/cli"
	"github.com/slackline-dev/slackline/lib/tokenstore"
)

type disableParams struct {
	cli.StoreConfig
}

func disableCommand() *cli.Command {
	var params disableParams

	return &cli.Command{
		Name:    "disable",
		Summary: "Decrypt credentials back to plaintext",
		Description: `Decrypt the credentials with the configured key and store them in
tokens.json (mode 0600), then remove the key from the configuration.

Anyone who can read tokens.json can use the stored tokens.`,
		Usage:  "slackline encryption disable [flags]",
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}

			cfg, configPath, err := params.Load()
			if err != nil {
				return err
			}
			if !cfg.Encrypted() {
				fmt.Fprintln(os.Stdout, "Encryption is not enabled")
				return nil
			}
			oldKey := cfg.Encryption.PrivateKey

			store := params.Open(cfg, logger)
			result, err := store.Migrate(ctx, oldKey, "")
			if err != nil {
				return cli.FromStoreError(err)
			}
			if result == tokenstore.MigrationNothingToDo {
				if err := discardEmpty(store); err != nil {
					return err
				}
			}
			if err := recordKey(cfg, configPath, tokenstore.Plaintext()); err != nil {
				return err
			}

			if result == tokenstore.MigrationNothingToDo {
				fmt.Fprintln(os.Stdout, "No credentials stored; encryption disabled")
			} else {
				fmt.Fprintf(os.Stdout, "Decrypted credentials from %s\n", oldKey)
			}
			return nil
		},
	}
}
