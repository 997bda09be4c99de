// Copyright 2026 The Slackline Authors
// SPDX-License-Identifier: Apache-2.0

package tokenstore

import "path/filepath"

const (
	// PlaintextFile holds the credential map as JSON.
	PlaintextFile = "tokens.json"

	// EncryptedFile holds the credential map encrypted with age.
	EncryptedFile = "tokens.age"
)

// Mode is the protection mode credentials are read and written in.
type Mode struct {
	privateKey string
	publicKey  string
}

// Plaintext returns the unencrypted mode.
func Plaintext() Mode { return Mode{} }

// Encrypted returns the mode that encrypts to the public half of
// privateKeyPath. An empty path is Plaintext.
func Encrypted(privateKeyPath string) Mode { return Mode{privateKey: privateKeyPath} }

// WithPublicKey returns m with an explicit public key location instead of
// the <private key>.pub convention.
func (m Mode) WithPublicKey(publicKeyPath string) Mode {
	m.publicKey = publicKeyPath
	return m
}

// IsEncrypted reports whether m encrypts.
func (m Mode) IsEncrypted() bool { return m.privateKey != "" }

// PrivateKey returns the private key path, empty for Plaintext.
func (m Mode) PrivateKey() string { return m.privateKey }

// PublicKey returns the explicit public key path, if one was set.
func (m Mode) PublicKey() string { return m.publicKey }

func (m Mode) String() string {
	if !m.IsEncrypted() {
		return "plaintext"
	}
	return "encrypted(" + m.privateKey + ")"
}

// Level is the severity of a Notice.
type Level int

const (
	// Info notices report normal but noteworthy outcomes.
	Info Level = iota
	// Warning notices report conditions the operator should act on.
	Warning
)

func (l Level) String() string {
	if l == Warning {
		return "warning"
	}
	return "info"
}

// Notice is a message for the operator.
type Notice struct {
	Level   Level
	Message string
}

// Observer receives notices. It is called synchronously.
type Observer func(Notice)

func (o Observer) warn(message string) {
	if o != nil {
		o(Notice{Level: Warning, Message: message})
	}
}

func (o Observer) info(message string) {
	if o != nil {
		o(Notice{Level: Info, Message: message})
	}
}

func plaintextPath(dir string) string { return filepath.Join(dir, PlaintextFile) }

func encryptedPath(dir string) string { return filepath.Join(dir, EncryptedFile) }
