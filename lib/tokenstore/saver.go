// Copyright 2026 The Slackline Authors
// SPDX-License-Identifier: Apache-2.0

package tokenstore

import (
	"context"
	"log/slog"
	"os"

	"github.com/slackline-dev/slackline/lib/atomicfile"
	"github.com/slackline-dev/slackline/lib/sealed"
	"github.com/slackline-dev/slackline/lib/secret"
	"github.com/slackline-dev/slackline/lib/storeerr"
)

// Saver writes the credential map to the store directory.
type Saver struct {
	// Dir is the store directory. It is created, owner-only, if missing.
	Dir string

	// Encryptor encrypts tokens.age.
	Encryptor *sealed.Encryptor

	// Logger receives debug output. Nil discards it.
	Logger *slog.Logger
}

// Save replaces the stored credentials with credentials in the given
// mode. The file for the other mode is removed only after the new file
// is in place.
func (s *Saver) Save(ctx context.Context, credentials Credentials, mode Mode) error {
	if err := os.MkdirAll(s.Dir, 0o700); err != nil {
		return storeerr.Wrap(storeerr.Store, err, "creating store directory %s", s.Dir).WithPath(s.Dir)
	}

	data, err := encode(credentials)
	if err != nil {
		return storeerr.Wrap(storeerr.Store, err, "encoding credentials")
	}
	defer secret.Zero(data)

	target, stale := plaintextPath(s.Dir), encryptedPath(s.Dir)
	if mode.IsEncrypted() {
		target, stale = stale, target
		err = atomicfile.Produce(target, true, func(tempPath string) error {
			if mode.PublicKey() != "" {
				return s.Encryptor.EncryptTo(ctx, data, mode.PublicKey(), tempPath)
			}
			return s.Encryptor.Encrypt(ctx, data, mode.PrivateKey(), tempPath)
		})
	} else {
		err = atomicfile.WriteFile(target, data, true)
	}
	if err != nil {
		return err
	}

	s.logger().Debug("credentials saved", "path", target, "mode", mode.String(), "workspaces", len(credentials))
	return atomicfile.RemoveIfExists(stale)
}

func (s *Saver) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}
