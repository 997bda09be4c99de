// Copyright 2026 The Slackline Authors
// SPDX-License-Identifier: Apache-2.0

package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/slackline-dev/slackline/lib/sealed"
	"github.com/slackline-dev/slackline/lib/secret"
	"github.com/slackline-dev/slackline/lib/storeerr"
)

// RestoreKeyCommand is the command that records which private key
// decrypts an existing tokens.age.
const RestoreKeyCommand = "slackline encryption enable --key <path>"

// Loader reads the credential map from the store directory.
type Loader struct {
	// Dir is the store directory.
	Dir string

	// Encryptor decrypts tokens.age.
	Encryptor *sealed.Encryptor

	// Observer receives warnings about the files found. Optional.
	Observer Observer

	// Logger receives debug output. Nil discards it.
	Logger *slog.Logger
}

// Load returns the stored credentials. tokens.age is authoritative when
// present; otherwise tokens.json; otherwise the store is empty.
func (l *Loader) Load(ctx context.Context, mode Mode) (Credentials, error) {
	encrypted := encryptedPath(l.Dir)
	plaintext := plaintextPath(l.Dir)

	encryptedExists, err := exists(encrypted)
	if err != nil {
		return nil, err
	}
	if encryptedExists {
		return l.loadEncrypted(ctx, mode, encrypted, plaintext)
	}

	plaintextExists, err := exists(plaintext)
	if err != nil {
		return nil, err
	}
	if plaintextExists {
		return l.loadPlaintext(plaintext)
	}

	l.logger().Debug("no credential file present", "dir", l.Dir)
	return Credentials{}, nil
}

func (l *Loader) loadEncrypted(ctx context.Context, mode Mode, encrypted, plaintext string) (Credentials, error) {
	if !mode.IsEncrypted() {
		return nil, storeerr.New(storeerr.MissingKey,
			"credentials in %s are encrypted but no private key is configured; run %q to restore it",
			encrypted, RestoreKeyCommand).WithPath(encrypted)
	}

	if stale, _ := exists(plaintext); stale {
		l.Observer.warn(fmt.Sprintf(
			"both %s and %s exist, probably from an interrupted migration; using %s. Run \"slackline doctor --fix\" to remove the plaintext copy",
			EncryptedFile, PlaintextFile, EncryptedFile))
	}

	l.logger().Debug("loading encrypted credentials", "path", encrypted, "private_key", mode.PrivateKey())
	data, err := l.Encryptor.Decrypt(ctx, encrypted, mode.PrivateKey())
	if err != nil {
		return nil, err
	}
	defer secret.Zero(data)

	credentials, err := decode(data)
	if err != nil {
		corrupted := storeerr.Wrap(storeerr.CorruptedStore, err,
			"decrypted content of %s is corrupted; the key may be wrong or the file damaged", encrypted).
			WithPath(encrypted)
		corrupted.Encrypted = true
		return nil, corrupted
	}
	return credentials, nil
}

func (l *Loader) loadPlaintext(path string) (Credentials, error) {
	l.logger().Debug("loading plaintext credentials", "path", path)
	info, err := os.Stat(path)
	if err != nil {
		return nil, storeerr.Wrap(storeerr.Store, err, "reading %s", path).WithPath(path)
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		l.Observer.warn(fmt.Sprintf(
			"%s is accessible by other users (mode %04o); run \"slackline doctor --fix\" to restrict it",
			path, perm))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, storeerr.Wrap(storeerr.Store, err, "reading %s", path).WithPath(path)
	}
	defer secret.Zero(data)

	credentials, err := decode(data)
	if err != nil {
		return nil, storeerr.Wrap(storeerr.CorruptedStore, err, "%s is corrupted", path).WithPath(path)
	}
	return credentials, nil
}

func (l *Loader) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return l.Logger
}

// exists reports whether path exists. Errors other than "does not exist"
// are returned as storeerr.Store.
func exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, storeerr.Wrap(storeerr.Store, err, "checking %s", path).WithPath(path)
}
