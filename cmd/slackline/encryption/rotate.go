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

type rotateParams struct {
	cli.StoreConfig
	Keys keyFlags
}

func rotateCommand() *cli.Command {
	var params rotateParams

	return &cli.Command{
		Name:    "rotate",
		Summary: "Re-encrypt credentials to a different SSH key",
		Description: `Decrypt the credentials with the configured key and re-encrypt them to
a new one. The new key pair is checked before anything is written, and
the configuration is updated only after tokens.age has been replaced.`,
		Usage: "slackline encryption rotate --key <new private key> [flags]",
		Examples: []cli.Example{
			{
				Description: "Move to a new key",
				Command:     "slackline encryption rotate --key ~/.ssh/id_ed25519_2026",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			key, err := params.Keys.resolve()
			if err != nil {
				return err
			}

			cfg, configPath, err := params.Load()
			if err != nil {
				return err
			}
			if !cfg.Encrypted() {
				return cli.Validation("encryption is not enabled").
					WithHint(fmt.Sprintf("Run 'slackline encryption enable --key %s' instead.", params.Keys.Key))
			}
			oldKey := cfg.Encryption.PrivateKey

			store := params.Keys.open(&params.StoreConfig, cfg, logger)
			result, err := store.Migrate(ctx, oldKey, key)
			if err != nil {
				return cli.FromStoreError(err)
			}

			switch result {
			case tokenstore.MigrationUnchanged:
				fmt.Fprintf(os.Stdout, "Credentials are already encrypted to %s\n", key)
				return nil
			case tokenstore.MigrationNothingToDo:
				mode, err := checkKey(ctx, store, key)
				if err != nil {
					return err
				}
				if err := discardEmpty(store); err != nil {
					return err
				}
				if err := recordKey(cfg, configPath, mode); err != nil {
					return err
				}
				fmt.Fprintf(os.Stdout, "No credentials stored; new credentials will be encrypted to %s\n", key)
				return nil
			}

			if err := recordKey(cfg, configPath, store.Mode()); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Re-encrypted credentials from %s to %s\n", oldKey, key)
			return nil
		},
	}
}
