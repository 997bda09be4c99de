// Copyright 2026 The Slackline Authors
// SPDX-License-Identifier: Apache-2.0

// Package sshkey validates the operator's SSH key pair before it is used to
// protect the credential store.
//
// Two checks are provided:
//
//   - [ValidateKeyType] reads a public key file and checks that its
//     algorithm is one age can encrypt to (ssh-ed25519 or ssh-rsa).
//   - [Validator.ValidatePair] derives the public key from the private key
//     and compares the algorithm and key material with the published
//     public key. Trailing comments are ignored.
//
// Derivation is a capability behind the [Deriver] interface.
// [KeygenDeriver] shells out to ssh-keygen; [NativeDeriver] parses the key
// in-process with golang.org/x/crypto/ssh. When the derivation tool is not
// installed the pair check is skipped ([PairSkipped]) rather than failed:
// a machine can have a working age binary without ssh-keygen. Any other
// derivation failure, such as a passphrase-protected key, is a hard
// failure of kind storeerr.KeyDerivation.
package sshkey
