// Copyright 2026 The Slackline Authors
// SPDX-License-Identifier: Apache-2.0

package encryption

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/slackline-dev/slackline/cmd/slackline/cli"
	"github.com/slackline-dev/slackline/lib/atomicfile"
	"github.com/slackline-dev/slackline/lib/config"
	"github.com/slackline-dev/slackline/lib/sshkey"
	"github.com/slackline-dev/slackline/lib/tokenstore"
)

// Command returns the "encryption" parent command with all subcommands.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "encryption",
		Summary: "Encrypt, re-key, or decrypt stored credentials",
		Description: `Control whether credentials are stored in plaintext (tokens.json, mode
0600) or encrypted with age to an SSH key (tokens.age).

Every change rewrites the credentials under the new protection before
removing the old file, and records the key in the configuration only
after the rewrite succeeded. Supported keys are ssh-ed25519 and ssh-rsa;
the public key is read from <key>.pub.`,
		Subcommands: []*cli.Command{
			enableCommand(),
			rotateCommand(),
			disableCommand(),
			statusCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Encrypt credentials to your SSH key",
				Command:     "slackline encryption enable --key ~/.ssh/id_ed25519",
			},
			{
				Description: "Show how credentials are stored",
				Command:     "slackline encryption status",
			},
		},
	}
}

// keyFlags are the key selection flags shared by enable and rotate.
type keyFlags struct {
	Key       string
	PublicKey string
}

// AddFlags registers --key and --public-key.
func (k *keyFlags) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&k.Key, "key", "", "SSH private key to encrypt to (required)")
	flagSet.StringVar(&k.PublicKey, "public-key", "", "public key to use when <key>.pub does not exist")
}

// resolve returns the absolute private key path, failing when --key is
// missing or when --public-key is given although <key>.pub exists.
func (k *keyFlags) resolve() (string, error) {
	if k.Key == "" {
		return "", cli.Validation("--key is required")
	}
	absolute, err := filepath.Abs(k.Key)
	if err != nil {
		return "", cli.Validation("resolving --key: %w", err)
	}
	if conventional := sshkey.PublicKeyPath(absolute); k.PublicKey != "" && sshkey.Exists(conventional) {
		return "", cli.Validation("--public-key is only used when %s does not exist", conventional).
			WithHint("Drop --public-key to encrypt to " + conventional + ".")
	}
	return absolute, nil
}

// open builds the store for cfg, answering the public key prompt with
// --public-key when given.
func (k *keyFlags) open(storeConfig *cli.StoreConfig, cfg *config.Config, logger *slog.Logger) *tokenstore.Store {
	options := storeConfig.Options(cfg, logger)
	if k.PublicKey != "" {
		options.PromptPublicKey = cli.FixedPublicKey(k.PublicKey)
	}
	return tokenstore.New(options)
}

// recordKey writes the store's key into the configuration. A failure
// here leaves the credentials protected by a key the configuration does
// not name, so the error says how to recover.
func recordKey(cfg *config.Config, path string, mode tokenstore.Mode) error {
	cfg.Encryption.PrivateKey = mode.PrivateKey()
	cfg.Encryption.PublicKey = mode.PublicKey()
	if err := cfg.Save(path); err != nil {
		if mode.IsEncrypted() {
			return cli.Internal("credentials are encrypted to %s but the configuration could not be updated: %w", mode.PrivateKey(), err).
				WithHint(fmt.Sprintf("Run 'slackline encryption enable --key %s' to record the key.", mode.PrivateKey()))
		}
		return cli.Internal("credentials are stored in plaintext but the configuration could not be updated: %w", err)
	}
	return nil
}

// checkKey vets the key when Migrate had nothing to rewrite, so that an
// unusable key is never recorded.
func checkKey(ctx context.Context, store *tokenstore.Store, privateKey string) (tokenstore.Mode, error) {
	mode, err := store.CheckKey(ctx, privateKey)
	if err != nil {
		return tokenstore.Mode{}, cli.FromStoreError(err)
	}
	return mode, nil
}

// discardEmpty removes the credential file Migrate found empty: tokens.age
// when it exists, otherwise tokens.json. Migrate does not rewrite an empty
// store, so the file would be left in the old mode, where the new
// configuration either cannot read it or reports it as unprotected.
func discardEmpty(store *tokenstore.Store) error {
	status, err := store.Status()
	if err != nil {
		return cli.FromStoreError(err)
	}
	file := status.Plaintext
	if status.Encrypted.Exists {
		file = status.Encrypted
	}
	if !file.Exists {
		return nil
	}
	return cli.FromStoreError(atomicfile.RemoveIfExists(file.Path))
}
