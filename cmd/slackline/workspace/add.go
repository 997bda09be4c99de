// Copyright 2026 The Slackline Authors
// SPDX-License-Identifier: Apache-2.0

package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/slackline-dev/slackline/cmd/slackline/cli"
	"github.com/slackline-dev/slackline/lib/secret"
	"github.com/slackline-dev/slackline/lib/tokenstore"
	libworkspace "github.com/slackline-dev/slackline/lib/workspace"
)

type addParams struct {
	cli.StoreConfig
	TokenFile  string `flag:"token-file"  desc:"read the token from this file, or - for the first line of stdin"`
	Cookie     string `flag:"cookie"      desc:"session cookie (required for xoxc- tokens; prefer --cookie-file)"`
	CookieFile string `flag:"cookie-file" desc:"read the session cookie from this file, or - for stdin"`
}

func addCommand() *cli.Command {
	var params addParams

	return &cli.Command{
		Name:    "add",
		Summary: "Store or replace a workspace's credentials",
		Description: `Store the token (and cookie, for xoxc- session tokens) for a workspace.
An existing workspace with the same name is replaced.

The credentials are validated before anything is read or written. With
no --token-file, the token is prompted for on the terminal without echo.`,
		Usage: "slackline workspace add <name> [flags]",
		Examples: []cli.Example{
			{
				Description: "Prompt for a bot token",
				Command:     "slackline workspace add acme",
			},
			{
				Description: "Store a session token and cookie from a password manager",
				Command:     "pass show slack/acme-token | slackline workspace add acme --token-file - --cookie-file ~/.acme-cookie",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("expected exactly one workspace name, got %d arguments", len(args))
			}
			name := args[0]
			if params.TokenFile == "-" && params.CookieFile == "-" {
				return cli.Validation("--token-file and --cookie-file cannot both read stdin")
			}

			token, err := readSecret(params.TokenFile, "Token")
			if err != nil {
				return err
			}
			cookie := params.Cookie
			if params.CookieFile != "" {
				if cookie != "" {
					return cli.Validation("--cookie and --cookie-file are mutually exclusive")
				}
				if cookie, err = secret.ReadToken(params.CookieFile, os.Stdin); err != nil {
					return cli.Validation("reading cookie: %w", err)
				}
			}

			cfg, _, err := params.Load()
			if err != nil {
				return err
			}
			store := params.Open(cfg, logger)
			if err := store.Add(ctx, name, token, cookie); err != nil {
				return cli.FromStoreError(err)
			}

			file := tokenstore.PlaintextFile
			if store.Mode().IsEncrypted() {
				file = tokenstore.EncryptedFile
			}
			class, _ := libworkspace.ClassOf(token)
			fmt.Fprintf(os.Stdout, "Saved workspace %q (%s token) in %s\n", name, class, filepath.Join(store.Dir(), file))
			return nil
		},
	}
}

// readSecret reads a secret from path ("-" for stdin) or, when path is
// empty, prompts for it on the terminal.
func readSecret(path, label string) (string, error) {
	if path == "" {
		return cli.ReadSecret(label)
	}
	value, err := secret.ReadToken(path, os.Stdin)
	if err != nil {
		return "", cli.Validation("reading %s: %w", label, err)
	}
	return value, nil
}
