// Copyright 2026 The Slackline Authors
// SPDX-License-Identifier: Apache-2.0

package sshkey

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"

	"github.com/slackline-dev/slackline/lib/storeerr"
)

// PairResult reports how a key pair check concluded.
type PairResult int

const (
	// PairVerified means the derived public key matched.
	PairVerified PairResult = iota + 1

	// PairSkipped means no derivation tool was available, so the pair
	// could not be checked.
	PairSkipped
)

func (r PairResult) String() string {
	switch r {
	case PairVerified:
		return "verified"
	case PairSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// ErrDeriverUnavailable is returned (wrapped) by a Deriver whose
// underlying tool is not installed.
var ErrDeriverUnavailable = errors.New("key derivation tool not available")

// Deriver derives the authorized-key line of the public half of a private
// key.
type Deriver interface {
	DerivePublicKey(ctx context.Context, privateKeyPath string) (string, error)
}

// Validator checks that a public key belongs to a private key.
type Validator struct {
	// Deriver derives public keys. A nil Deriver skips every check.
	Deriver Deriver

	// Logger receives debug output. Nil discards it.
	Logger *slog.Logger
}

// ValidatePair derives the public key of privateKeyPath and compares its
// algorithm and key material with the key in publicKeyPath.
func (v *Validator) ValidatePair(ctx context.Context, privateKeyPath, publicKeyPath string) (PairResult, error) {
	published, err := readFirstLine(publicKeyPath)
	if err != nil {
		kind := storeerr.UnsupportedKeyType
		if errors.Is(err, fs.ErrNotExist) {
			kind = storeerr.PublicKeyNotFound
		}
		return 0, storeerr.Wrap(kind, err, "reading public key %s", publicKeyPath).WithPath(publicKeyPath)
	}

	if v.Deriver == nil {
		v.logger().Debug("key pair check skipped: no deriver configured")
		return PairSkipped, nil
	}

	derived, err := v.Deriver.DerivePublicKey(ctx, privateKeyPath)
	if errors.Is(err, ErrDeriverUnavailable) {
		v.logger().Debug("key pair check skipped", "reason", err.Error())
		return PairSkipped, nil
	}
	if err != nil {
		return 0, storeerr.Wrap(storeerr.KeyDerivation, err,
			"cannot derive the public key of %s to verify it", privateKeyPath).WithPath(privateKeyPath)
	}

	if !sameKey(derived, published) {
		return 0, storeerr.New(storeerr.KeyMismatch,
			"public key %s does not belong to private key %s", publicKeyPath, privateKeyPath).
			WithPath(publicKeyPath)
	}

	v.logger().Debug("key pair verified", "private_key", privateKeyPath, "public_key", publicKeyPath)
	return PairVerified, nil
}

func (v *Validator) logger() *slog.Logger {
	if v.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return v.Logger
}

// sameKey compares the algorithm and key material of two authorized-key
// lines, ignoring comments.
func sameKey(a, b string) bool {
	typeA, materialA, okA := splitKeyLine(a)
	typeB, materialB, okB := splitKeyLine(b)
	return okA && okB && materialA != "" && typeA == typeB && materialA == materialB
}
