// Copyright 2026 The Slackline Authors
// SPDX-License-Identifier: Apache-2.0

package tokenstore

import (
	"context"

	"github.com/slackline-dev/slackline/lib/sshkey"
	"github.com/slackline-dev/slackline/lib/storeerr"
)

// MigrationResult reports what Migrate did.
type MigrationResult int

const (
	// MigrationUnchanged means the old and new keys were the same.
	MigrationUnchanged MigrationResult = iota

	// MigrationNothingToDo means the store was empty and nothing was
	// written.
	MigrationNothingToDo

	// MigrationEncrypted means plaintext credentials are now encrypted.
	MigrationEncrypted

	// MigrationReencrypted means credentials were re-encrypted to a
	// different key.
	MigrationReencrypted

	// MigrationDecrypted means credentials are now stored in plaintext.
	MigrationDecrypted
)

func (r MigrationResult) String() string {
	switch r {
	case MigrationUnchanged:
		return "unchanged"
	case MigrationNothingToDo:
		return "nothing_to_do"
	case MigrationEncrypted:
		return "encrypted"
	case MigrationReencrypted:
		return "reencrypted"
	case MigrationDecrypted:
		return "decrypted"
	default:
		return "unknown"
	}
}

// Migrate re-persists the credentials, read with oldKey, under newKey. An
// empty key means plaintext. The new key pair is validated before
// anything is written, and the old file is removed only after the new one
// is in place.
//
// On success the store's mode becomes the new mode. An empty store is
// neither written nor re-keyed: its new key is not validated and the
// store's mode is left as it was. Callers that record the key should call
// CheckKey.
func (s *Store) Migrate(ctx context.Context, oldKey, newKey string) (MigrationResult, error) {
	if oldKey == newKey {
		return MigrationUnchanged, nil
	}

	credentials, err := s.loader.Load(ctx, Encrypted(oldKey))
	if err != nil {
		return 0, err
	}

	if len(credentials) == 0 {
		s.logger.Debug("migration skipped: store is empty", "from", oldKey, "to", newKey)
		return MigrationNothingToDo, nil
	}

	newMode := Plaintext()
	if newKey != "" {
		newMode, err = s.CheckKey(ctx, newKey)
		if err != nil {
			return 0, err
		}
	}

	if err := s.saver.Save(ctx, credentials, newMode); err != nil {
		return 0, err
	}
	s.mode = newMode

	switch {
	case newKey == "":
		s.notice(Warning, "tokens are now stored in plaintext in %s", plaintextPath(s.Dir()))
		return MigrationDecrypted, nil
	case oldKey == "":
		return MigrationEncrypted, nil
	default:
		return MigrationReencrypted, nil
	}
}

// CheckKey resolves the public key for privateKeyPath, prompting if
// configured, checks its type, and verifies that it belongs to the
// private key. It returns the mode that encrypts to it. A skipped
// verification is reported to the observer as a warning.
//
// When privateKeyPath is the store's current key and the current mode
// names an explicit public key, that public key is used.
func (s *Store) CheckKey(ctx context.Context, privateKeyPath string) (Mode, error) {
	publicKeyPath, err := s.resolvePublicKey(privateKeyPath)
	if err != nil {
		return Mode{}, err
	}
	if err := sshkey.ValidateKeyType(publicKeyPath); err != nil {
		return Mode{}, err
	}

	result, err := s.validator.ValidatePair(ctx, privateKeyPath, publicKeyPath)
	if err != nil {
		return Mode{}, err
	}
	if result == sshkey.PairSkipped {
		s.notice(Warning, "could not verify that %s belongs to %s: no key derivation tool is available",
			publicKeyPath, privateKeyPath)
	}

	mode := Encrypted(privateKeyPath)
	if publicKeyPath != sshkey.PublicKeyPath(privateKeyPath) {
		mode = mode.WithPublicKey(publicKeyPath)
	}
	return mode, nil
}

func (s *Store) resolvePublicKey(privateKeyPath string) (string, error) {
	if s.mode.PrivateKey() != privateKeyPath || s.mode.PublicKey() == "" {
		return s.encryptor.ResolvePublicKey(privateKeyPath, s.prompt)
	}
	publicKeyPath := s.mode.PublicKey()
	if !sshkey.Exists(publicKeyPath) {
		return "", storeerr.New(storeerr.PublicKeyNotFound,
			"configured public key %s does not exist", publicKeyPath).WithPath(publicKeyPath)
	}
	return publicKeyPath, nil
}
