// Copyright 2026 The Slackline Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/slackline-dev/slackline/lib/config"
	"github.com/slackline-dev/slackline/lib/tokenstore"
)

// StoreConfig holds the shared flags for commands that open the credential
// store. Embed it in a parameter struct:
//
//	type listParams struct {
//	    cli.StoreConfig
//	    cli.JSONOutput
//	}
//
//	// In Run:
//	cfg, _, err := params.Load()
//	store := params.Open(cfg, logger)
type StoreConfig struct {
	ConfigPath string
	StoreDir   string
	VerboseLog bool
}

// AddFlags registers --config, --store-dir, and --verbose.
func (c *StoreConfig) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&c.ConfigPath, "config", "", "configuration file (default $"+config.EnvironmentVariable+" or <config dir>/slackline/config.yaml)")
	flagSet.StringVar(&c.StoreDir, "store-dir", "", "credential directory (overrides store.dir)")
	flagSet.BoolVarP(&c.VerboseLog, "verbose", "v", false, "log store operations to stderr")
}

// Verbose reports whether --verbose was given, satisfying [Verbosity].
func (c *StoreConfig) Verbose() bool { return c.VerboseLog }

// Load reads and validates the configuration, applying --store-dir. It
// returns the configuration and the path it was read from, which Save
// writes back to.
func (c *StoreConfig) Load() (*config.Config, string, error) {
	path := config.ResolvePath(c.ConfigPath)
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", Validation("%w", err)
	}
	if c.StoreDir != "" {
		cfg.Store.Dir = c.StoreDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", Validation("invalid configuration %s:\n%w", path, err)
	}
	return cfg, path, nil
}

// Open returns a credential store for cfg.
func (c *StoreConfig) Open(cfg *config.Config, logger *slog.Logger) *tokenstore.Store {
	return tokenstore.New(c.Options(cfg, logger))
}

// Options returns the store options for cfg. Notices go to stderr, and
// the public key prompt is offered only when stdin is a terminal.
func (c *StoreConfig) Options(cfg *config.Config, logger *slog.Logger) tokenstore.Options {
	mode := tokenstore.Plaintext()
	if cfg.Encrypted() {
		mode = tokenstore.Encrypted(cfg.Encryption.PrivateKey)
		if cfg.Encryption.PublicKey != "" {
			mode = mode.WithPublicKey(cfg.Encryption.PublicKey)
		}
	}

	options := tokenstore.Options{
		Dir:      cfg.Store.Dir,
		Mode:     mode,
		Tool:     cfg.Encryption.Tool(),
		Deriver:  cfg.Encryption.Deriver(),
		Observer: NoticePrinter(os.Stderr),
		Logger:   logger,
	}
	if stdinIsTerminal() {
		options.PromptPublicKey = PublicKeyPrompt(os.Stdin, os.Stderr)
	}
	return options
}

// NoticePrinter returns an observer that writes store notices to w, one
// per line, with warnings prefixed.
func NoticePrinter(w io.Writer) tokenstore.Observer {
	return func(notice tokenstore.Notice) {
		if notice.Level == tokenstore.Warning {
			fmt.Fprintf(w, "warning: %s\n", notice.Message)
			return
		}
		fmt.Fprintln(w, notice.Message)
	}
}
