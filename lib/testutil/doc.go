// Copyright 2026 The Slackline Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for slackline packages.
//
// [WriteKeyPair] generates an ed25519 SSH key pair in OpenSSH format and
// writes it to a directory, the same layout ssh-keygen produces (private
// key at name, public key at name.pub). [WriteRSAKeyPair] does the same
// for RSA. [WriteEncryptedKeyPair] produces a passphrase-protected private
// key for exercising derivation failures.
//
// [FileSnapshot] and [AssertUnchanged] capture a file's bytes, mode, and
// modification time so that tests can prove an operation performed no
// writes.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package depends on golang.org/x/crypto/ssh and no slackline
// packages.
package testutil
