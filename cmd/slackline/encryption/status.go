// Copyright 2026 The Slackline Authors
// SPDX-License-Identifier: Apache-2.0

package encryption

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/slackline-dev/slackline/cmd/slackline/cli"
	"github.com/slackline-dev/slackline/lib/config"
	"github.com/slackline-dev/slackline/lib/sshkey"
	"github.com/slackline-dev/slackline/lib/tokenstore"
)

type statusParams struct {
	cli.StoreConfig
	cli.JSONOutput
}

// statusResult is the --json output of encryption status.
type statusResult struct {
	Encrypted     bool                 `json:"encrypted"`
	PrivateKey    string               `json:"private_key,omitempty"`
	PublicKey     string               `json:"public_key,omitempty"`
	Fingerprint   string               `json:"fingerprint,omitempty"`
	Backend       config.Backend       `json:"backend"`
	BackendReady  bool                 `json:"backend_available"`
	KeyDerivation config.KeyDerivation `json:"key_derivation"`
	Files         tokenstore.Status    `json:"files"`
}

func statusCommand() *cli.Command {
	var params statusParams

	return &cli.Command{
		Name:    "status",
		Summary: "Show how credentials are stored",
		Description: `Show the configured protection mode, the key and its fingerprint, the
age backend, and which credential files exist. The credentials themselves
are not read.`,
		Usage:  "slackline encryption status [flags]",
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}

			cfg, _, err := params.Load()
			if err != nil {
				return err
			}
			store := params.Open(cfg, logger)
			files, err := store.Status()
			if err != nil {
				return cli.FromStoreError(err)
			}

			result := statusResult{
				Encrypted:     cfg.Encrypted(),
				PrivateKey:    cfg.Encryption.PrivateKey,
				Backend:       cfg.Encryption.Backend,
				BackendReady:  store.Encryptor().Available(),
				KeyDerivation: cfg.Encryption.KeyDerivation,
				Files:         files,
			}
			if result.Encrypted {
				result.PublicKey = cfg.Encryption.PublicKey
				if result.PublicKey == "" {
					result.PublicKey = sshkey.PublicKeyPath(cfg.Encryption.PrivateKey)
				}
				if fingerprint, err := sshkey.Fingerprint(result.PublicKey); err == nil {
					result.Fingerprint = fingerprint
				} else {
					logger.Debug("public key fingerprint unavailable", "public_key", result.PublicKey, "error", err)
				}
			}

			if done, err := params.EmitJSON(result); done {
				return err
			}

			writer := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			if result.Encrypted {
				fmt.Fprintf(writer, "Mode:\tencrypted\n")
				fmt.Fprintf(writer, "Private key:\t%s\n", result.PrivateKey)
				fmt.Fprintf(writer, "Public key:\t%s\n", result.PublicKey)
				if result.Fingerprint != "" {
					fmt.Fprintf(writer, "Fingerprint:\t%s\n", result.Fingerprint)
				}
			} else {
				fmt.Fprintf(writer, "Mode:\tplaintext\n")
			}
			available := "available"
			if !result.BackendReady {
				available = "not available"
			}
			fmt.Fprintf(writer, "Backend:\t%s (%s)\n", result.Backend, available)
			fmt.Fprintf(writer, "Directory:\t%s\n", files.Dir)
			for _, file := range []tokenstore.FileStatus{files.Plaintext, files.Encrypted} {
				if file.Exists {
					fmt.Fprintf(writer, "File:\t%s (mode %04o)\n", file.Path, file.Mode)
				}
			}
			if err := writer.Flush(); err != nil {
				return err
			}

			if files.Both() {
				fmt.Fprintln(os.Stdout, "\nBoth credential files exist; a migration was interrupted. Run 'slackline doctor --fix'.")
			}
			if result.Encrypted && files.Plaintext.Exists && !files.Encrypted.Exists {
				fmt.Fprintln(os.Stdout, "\nCredentials are still in plaintext; they will be encrypted on the next change.")
			}
			if !result.Encrypted && files.Encrypted.Exists {
				fmt.Fprintf(os.Stdout, "\nCredentials are encrypted but no key is configured. Run '%s'.\n", tokenstore.RestoreKeyCommand)
			}
			return nil
		},
	}
}
