// Copyright 2026 The Slackline Authors
// SPDX-License-Identifier: Apache-2.0

package storeerr

import (
	"errors"
	"fmt"
)

// Kind classifies a credential store failure.
type Kind int

const (
	// Unknown is returned by KindOf for errors that did not originate in
	// the credential store.
	Unknown Kind = iota

	// Validation indicates bad workspace input. Validation failures are
	// always detected before any file is touched.
	Validation

	// UnsupportedKeyType indicates a public key whose algorithm the
	// encryption tool cannot use, or a key file that cannot be read.
	UnsupportedKeyType

	// KeyMismatch indicates that the public key does not correspond to
	// the private key.
	KeyMismatch

	// KeyDerivation indicates that the public key could not be derived
	// from the private key for a reason other than a missing tool (most
	// commonly a passphrase-protected key).
	KeyDerivation

	// PublicKeyNotFound indicates that no public key could be located for
	// a private key.
	PublicKeyNotFound

	// Encryption indicates that the encryption tool is unavailable, the
	// key is unreadable, or the tool exited with an error.
	Encryption

	// CorruptedStore indicates that a credential file exists but its
	// content cannot be parsed. See Error.Encrypted.
	CorruptedStore

	// MissingKey indicates that an encrypted credential file exists but
	// no private key was supplied to read it.
	MissingKey

	// Store indicates a filesystem failure while reading or writing
	// credential files.
	Store

	// NotFound indicates that a named workspace does not exist.
	NotFound
)

var kindNames = map[Kind]string{
	Unknown:            "unknown",
	Validation:         "validation",
	UnsupportedKeyType: "unsupported_key_type",
	KeyMismatch:        "key_mismatch",
	KeyDerivation:      "key_derivation",
	PublicKeyNotFound:  "public_key_not_found",
	Encryption:         "encryption",
	CorruptedStore:     "corrupted_store",
	MissingKey:         "missing_key",
	Store:              "store",
	NotFound:           "not_found",
}

// String returns the snake_case name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a classified credential store failure.
type Error struct {
	// Kind classifies the failure.
	Kind Kind

	// Message is the human-readable description, free of secret
	// material.
	Message string

	// Path is the file involved, if any.
	Path string

	// Encrypted is set on CorruptedStore errors when the unreadable
	// content came from the encrypted credential file. A corrupted
	// encrypted file implies a wrong key or real data loss, which is
	// more serious than a hand-edited plaintext file that fails to parse.
	Encrypted bool

	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	message := e.Message
	if message == "" {
		message = e.Kind.String()
	}
	if e.Err != nil {
		return message + ": " + e.Err.Error()
	}
	return message
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error of the given kind that wraps cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}

// WithPath returns e with Path set. It modifies and returns e so that it
// can be chained onto New and Wrap.
func (e *Error) WithPath(path string) *Error {
	e.Path = path
	return e
}

// KindOf returns the Kind of the first *Error in err's chain, or Unknown.
func KindOf(err error) Kind {
	var storeError *Error
	if errors.As(err, &storeError) {
		return storeError.Kind
	}
	return Unknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
