// Copyright 2026 The Slackline Authors
// SPDX-License-Identifier: Apache-2.0

// Package doctor implements "slackline doctor", which checks the
// credential store, its configuration, and the encryption tooling, and
// repairs what it safely can.
package doctor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/slackline-dev/slackline/cmd/slackline/cli"
	"github.com/slackline-dev/slackline/cmd/slackline/cli/doctor"
	"github.com/slackline-dev/slackline/lib/atomicfile"
	"github.com/slackline-dev/slackline/lib/config"
	"github.com/slackline-dev/slackline/lib/sshkey"
	"github.com/slackline-dev/slackline/lib/tokenstore"
)

type commandParams struct {
	cli.StoreConfig
	cli.JSONOutput
	Fix    bool `flag:"fix"     desc:"repair fixable issues"`
	DryRun bool `flag:"dry-run" desc:"with --fix, show what would be repaired without changing anything"`
}

// Command returns the "doctor" command.
func Command() *cli.Command {
	var params commandParams

	return &cli.Command{
		Name:    "doctor",
		Summary: "Check the credential store and encryption setup",
		Description: `Check the configuration, the store directory and its permissions, the
credential files, and, when encryption is enabled, the age backend and
the SSH key pair.

Use --fix to repair what can be repaired without losing data: loose file
permissions, a plaintext file left behind by an interrupted migration,
and plaintext credentials that should be encrypted. Use --fix --dry-run
to preview the repairs.

The exit status is 1 when any check fails.`,
		Usage: "slackline doctor [flags]",
		Examples: []cli.Example{
			{
				Description: "Check everything",
				Command:     "slackline doctor",
			},
			{
				Description: "Preview repairs",
				Command:     "slackline doctor --fix --dry-run",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			if params.DryRun && !params.Fix {
				return cli.Validation("--dry-run requires --fix")
			}
			return runDoctor(ctx, &params, logger)
		},
	}
}

func runDoctor(ctx context.Context, params *commandParams, logger *slog.Logger) error {
	const maxFixIterations = 3
	repairedNames := make(map[string]bool)
	var aggregateOutcome doctor.Outcome
	var results []doctor.Result

	for range maxFixIterations {
		results = check(ctx, params, logger)

		if !params.Fix {
			break
		}
		for _, result := range results {
			if result.Status == doctor.StatusFail {
				repairedNames[result.Name] = true
			}
		}

		outcome := doctor.ExecuteFixes(ctx, results, params.DryRun)
		if outcome.PermissionDenied {
			aggregateOutcome.PermissionDenied = true
		}
		if outcome.FixedCount == 0 || params.DryRun {
			break
		}
	}

	doctor.MarkRepaired(results, repairedNames)

	if done, err := params.EmitJSON(doctor.BuildJSON(results, params.DryRun, aggregateOutcome)); done {
		if err != nil {
			return err
		}
		if doctor.AnyFailed(results) {
			return &cli.ExitError{Code: 1}
		}
		return nil
	}
	return doctor.PrintChecklist(os.Stdout, results, params.Fix, params.DryRun, aggregateOutcome)
}

// check runs every health check and returns the results in display order.
func check(ctx context.Context, params *commandParams, logger *slog.Logger) []doctor.Result {
	cfg, _, err := params.Load()
	if err != nil {
		return []doctor.Result{
			doctor.Fail("configuration", err.Error()),
			doctor.Skip("store", "configuration is invalid"),
		}
	}
	results := []doctor.Result{doctor.Pass("configuration", config.ResolvePath(params.ConfigPath))}

	store := params.Open(cfg, logger)
	status, err := store.Status()
	if err != nil {
		return append(results, doctor.Fail("store directory", err.Error()))
	}

	results = append(results, checkDirectory(cfg.Store.Dir))
	results = append(results, checkFiles(ctx, cfg, store, status)...)
	if cfg.Encrypted() {
		results = append(results, checkEncryption(cfg, store)...)
	}
	return results
}

func checkDirectory(dir string) doctor.Result {
	const name = "store directory"
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return doctor.Pass(name, dir+" (not created yet)")
	}
	if err != nil {
		return doctor.Fail(name, err.Error())
	}
	if !info.IsDir() {
		return doctor.Fail(name, dir+" is not a directory")
	}
	if err := unix.Access(dir, unix.W_OK|unix.X_OK); err != nil {
		return doctor.Fail(name, fmt.Sprintf("%s is not writable: %v", dir, err))
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		return doctor.FailWithFix(name,
			fmt.Sprintf("%s has mode %04o; other users can list it", dir, perm),
			fmt.Sprintf("chmod 0700 %s", dir),
			func(context.Context) error { return os.Chmod(dir, 0o700) })
	}
	return doctor.Pass(name, dir)
}

func checkFiles(ctx context.Context, cfg *config.Config, store *tokenstore.Store, status tokenstore.Status) []doctor.Result {
	var results []doctor.Result
	plaintext := status.Plaintext
	encrypted := status.Encrypted

	switch {
	case encrypted.Exists && !cfg.Encrypted():
		results = append(results, doctor.Fail("credential files",
			fmt.Sprintf("%s exists but no key is configured; run '%s'", encrypted.Path, tokenstore.RestoreKeyCommand)))
		// Nothing below can read the store.
		return results

	case status.Both():
		results = append(results, doctor.FailWithFix("credential files",
			"both tokens.json and tokens.age exist; a migration was interrupted and tokens.json is stale",
			"remove "+plaintext.Path+" after confirming tokens.age decrypts",
			func(ctx context.Context) error {
				if _, err := store.Names(ctx); err != nil {
					return fmt.Errorf("tokens.age does not decrypt, keeping tokens.json: %w", err)
				}
				return atomicfile.RemoveIfExists(plaintext.Path)
			}))

	case plaintext.Exists && cfg.Encrypted():
		key := cfg.Encryption.PrivateKey
		results = append(results, doctor.FailWithFix("credential files",
			"credentials are in plaintext although encryption is enabled",
			"encrypt "+plaintext.Path+" to "+key,
			func(ctx context.Context) error {
				result, err := store.Migrate(ctx, "", key)
				if err != nil {
					return err
				}
				if result == tokenstore.MigrationNothingToDo {
					// tokens.json holds no workspaces; there is nothing to encrypt.
					return atomicfile.RemoveIfExists(plaintext.Path)
				}
				return nil
			}))

	case plaintext.Exists:
		results = append(results, doctor.Pass("credential files", plaintext.Path))

	case encrypted.Exists:
		results = append(results, doctor.Pass("credential files", encrypted.Path))

	default:
		results = append(results, doctor.Pass("credential files", "none yet"))
	}

	if plaintext.Exists {
		results = append(results, checkPlaintextMode(plaintext))
	}

	names, err := store.Names(ctx)
	if err != nil {
		results = append(results, doctor.Fail("credentials readable", err.Error()))
	} else {
		results = append(results, doctor.Pass("credentials readable", fmt.Sprintf("%d workspace(s)", len(names))))
	}
	return results
}

func checkPlaintextMode(file tokenstore.FileStatus) doctor.Result {
	const name = "tokens.json permissions"
	if file.Mode&0o077 != 0 {
		return doctor.FailWithFix(name,
			fmt.Sprintf("mode %04o; other users can read the tokens", file.Mode),
			fmt.Sprintf("chmod 0600 %s", file.Path),
			func(context.Context) error { return os.Chmod(file.Path, atomicfile.RestrictedMode) })
	}
	return doctor.Pass(name, fmt.Sprintf("%04o", file.Mode))
}

func checkEncryption(cfg *config.Config, store *tokenstore.Store) []doctor.Result {
	var results []doctor.Result
	encryption := cfg.Encryption

	if store.Encryptor().Available() {
		results = append(results, doctor.Pass("age backend", string(encryption.Backend)))
	} else {
		results = append(results, doctor.Fail("age backend",
			fmt.Sprintf("%s not found in PATH; install age or set encryption.backend: native", encryption.AgeBinary)))
	}

	if sshkey.Exists(encryption.PrivateKey) {
		results = append(results, doctor.Pass("private key", encryption.PrivateKey))
	} else {
		results = append(results, doctor.Fail("private key", encryption.PrivateKey+" does not exist"))
	}

	publicKey := encryption.PublicKey
	if publicKey == "" {
		publicKey = sshkey.PublicKeyPath(encryption.PrivateKey)
	}
	if err := sshkey.ValidateKeyType(publicKey); err != nil {
		results = append(results, doctor.Fail("public key", err.Error()))
	} else if fingerprint, err := sshkey.Fingerprint(publicKey); err != nil {
		results = append(results, doctor.Fail("public key", err.Error()))
	} else {
		results = append(results, doctor.Pass("public key", fmt.Sprintf("%s (%s)", filepath.Base(publicKey), fingerprint)))
	}

	if encryption.KeyDerivation == config.KeygenDerivation {
		if _, err := exec.LookPath(encryption.SSHKeygenBinary); err != nil {
			results = append(results, doctor.Warn("ssh-keygen",
				encryption.SSHKeygenBinary+" not found; key pairs will not be verified before encrypting"))
		} else {
			results = append(results, doctor.Pass("ssh-keygen", encryption.SSHKeygenBinary))
		}
	}
	return results
}
