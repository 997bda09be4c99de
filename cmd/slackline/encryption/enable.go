// Copyright 2026 The Slackline Authors
// SPDX-License-Identifier: Apache-2.0

package encryption

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/slackline-dev/slackline/cmd/slackline/cli"
	"github.com/slackline-dev/slackline/lib/config"
	"github.com/slackline-dev/slackline/lib/tokenstore"
)

type enableParams struct {
	cli.StoreConfig
	Keys keyFlags
}

func enableCommand() *cli.Command {
	var params enableParams

	return &cli.Command{
		Name:    "enable",
		Summary: "Encrypt plaintext credentials to an SSH key",
		Description: `Encrypt the stored credentials to an SSH key and record the key in the
configuration.

The public key must be an ssh-ed25519 or ssh-rsa key and must belong to
the private key; this is checked before anything is written. If <key>.pub
does not exist, pass --public-key or answer the prompt.

If the store directory already holds tokens.age but the configuration
names no key (for example after the configuration file was lost), enable
restores the key instead: it proves the key decrypts tokens.age and
records it without rewriting anything.`,
		Usage: "slackline encryption enable --key <private key> [flags]",
		Examples: []cli.Example{
			{
				Description: "Encrypt to an ed25519 key",
				Command:     "slackline encryption enable --key ~/.ssh/id_ed25519",
			},
			{
				Description: "Use a public key stored elsewhere",
				Command:     "slackline encryption enable --key /secure/id_rsa --public-key ~/keys/id_rsa.pub",
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
			if cfg.Encrypted() {
				if cfg.Encryption.PrivateKey == key {
					fmt.Fprintf(os.Stdout, "Credentials are already encrypted to %s\n", key)
					return nil
				}
				return cli.Conflict("encryption is already enabled with %s", cfg.Encryption.PrivateKey).
					WithHint(fmt.Sprintf("Run 'slackline encryption rotate --key %s' to change keys.", params.Keys.Key))
			}

			store := params.Keys.open(&params.StoreConfig, cfg, logger)
			status, err := store.Status()
			if err != nil {
				return cli.FromStoreError(err)
			}
			if status.Encrypted.Exists {
				return restore(ctx, &params, cfg, configPath, key, logger)
			}

			result, err := store.Migrate(ctx, "", key)
			if err != nil {
				return cli.FromStoreError(err)
			}
			mode := store.Mode()
			if result == tokenstore.MigrationNothingToDo {
				if mode, err = checkKey(ctx, store, key); err != nil {
					return err
				}
				if err := discardEmpty(store); err != nil {
					return err
				}
			}
			if err := recordKey(cfg, configPath, mode); err != nil {
				return err
			}

			if result == tokenstore.MigrationNothingToDo {
				fmt.Fprintf(os.Stdout, "No credentials stored yet; new credentials will be encrypted to %s\n", key)
			} else {
				fmt.Fprintf(os.Stdout, "Encrypted credentials to %s\n", key)
			}
			return nil
		},
	}
}

// restore records key for an existing tokens.age after proving it
// decrypts the file. Nothing in the store directory is written.
func restore(ctx context.Context, params *enableParams, cfg *config.Config, configPath, key string, logger *slog.Logger) error {
	store := params.Keys.open(&params.StoreConfig, cfg, logger)
	mode, err := checkKey(ctx, store, key)
	if err != nil {
		return err
	}

	options := params.Options(cfg, logger)
	options.Mode = mode
	names, err := tokenstore.New(options).Names(ctx)
	if err != nil {
		return cli.FromStoreError(err)
	}

	if err := recordKey(cfg, configPath, mode); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Restored key %s for %d stored workspace(s)\n", key, len(names))
	return nil
}
