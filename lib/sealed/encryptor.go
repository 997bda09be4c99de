// Copyright 2026 The Slackline Authors
// SPDX-License-Identifier: Apache-2.0

package sealed

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/slackline-dev/slackline/lib/sshkey"
	"github.com/slackline-dev/slackline/lib/storeerr"
)

// PromptFunc asks the operator for the location of the public key that
// belongs to privateKeyPath. It is called at most once per resolution.
// An empty answer means the operator declined.
type PromptFunc func(privateKeyPath string) (string, error)

// Encryptor applies the credential store's encryption policy to a Tool.
type Encryptor struct {
	// Tool performs the cryptography. A nil Tool is never available.
	Tool Tool

	// Logger receives debug output. Nil discards it.
	Logger *slog.Logger
}

// Available reports whether the encryption tool can be used.
func (e *Encryptor) Available() bool {
	return e.Tool != nil && e.Tool.Available()
}

// ResolvePublicKey returns the public key belonging to privateKeyPath:
// the ".pub" file next to it or, if that is missing and prompt is
// non-nil, the path the operator supplies. A prompted path must exist and
// hold a supported key type.
func (e *Encryptor) ResolvePublicKey(privateKeyPath string, prompt PromptFunc) (string, error) {
	candidate := sshkey.PublicKeyPath(privateKeyPath)
	if sshkey.Exists(candidate) {
		return candidate, nil
	}
	if prompt == nil {
		return "", storeerr.New(storeerr.PublicKeyNotFound,
			"no public key found at %s", candidate).WithPath(candidate)
	}

	answer, err := prompt(privateKeyPath)
	if err != nil {
		return "", storeerr.Wrap(storeerr.PublicKeyNotFound, err, "reading public key location")
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", storeerr.New(storeerr.PublicKeyNotFound,
			"no public key found at %s and none was supplied", candidate).WithPath(candidate)
	}
	if !sshkey.Exists(answer) {
		return "", storeerr.New(storeerr.PublicKeyNotFound, "public key %s does not exist", answer).WithPath(answer)
	}
	if err := sshkey.ValidateKeyType(answer); err != nil {
		return "", err
	}
	e.logger().Debug("using operator-supplied public key", "public_key", answer)
	return answer, nil
}

// Encrypt encrypts plaintext to the public key belonging to
// privateKeyPath and writes the ciphertext to outputPath.
func (e *Encryptor) Encrypt(ctx context.Context, plaintext []byte, privateKeyPath, outputPath string) error {
	publicKeyPath, err := e.ResolvePublicKey(privateKeyPath, nil)
	if err != nil {
		return err
	}
	return e.EncryptTo(ctx, plaintext, publicKeyPath, outputPath)
}

// EncryptTo encrypts plaintext to an already resolved public key.
func (e *Encryptor) EncryptTo(ctx context.Context, plaintext []byte, publicKeyPath, outputPath string) error {
	if !e.Available() {
		return errUnavailable()
	}
	e.logger().Debug("encrypting", "recipient", publicKeyPath, "output", outputPath)
	if err := e.Tool.Encrypt(ctx, publicKeyPath, plaintext, outputPath); err != nil {
		return storeerr.Wrap(storeerr.Encryption, err, "encryption failed").WithPath(outputPath)
	}
	return nil
}

// Decrypt returns the plaintext of encryptedPath. A missing encryptedPath
// is not an error: the result is nil.
func (e *Encryptor) Decrypt(ctx context.Context, encryptedPath, privateKeyPath string) ([]byte, error) {
	if !sshkey.Exists(encryptedPath) {
		return nil, nil
	}
	if !e.Available() {
		return nil, errUnavailable()
	}

	keyFile, err := os.Open(privateKeyPath)
	if err != nil {
		return nil, storeerr.Wrap(storeerr.Encryption, err, "cannot read private key %s", privateKeyPath).
			WithPath(privateKeyPath)
	}
	keyFile.Close()

	e.logger().Debug("decrypting", "input", encryptedPath, "identity", privateKeyPath)
	plaintext, err := e.Tool.Decrypt(ctx, privateKeyPath, encryptedPath)
	if err != nil {
		return nil, storeerr.Wrap(storeerr.Encryption, err, "decryption failed").WithPath(encryptedPath)
	}
	return plaintext, nil
}

func (e *Encryptor) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return e.Logger
}

func errUnavailable() error {
	return storeerr.New(storeerr.Encryption,
		"age is not available; install it from https://age-encryption.org or set encryption.backend: native")
}
