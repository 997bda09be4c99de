// Copyright 2026 The Slackline Authors
// SPDX-License-Identifier: Apache-2.0

// Package sealed encrypts and decrypts the credential file with age,
// using the operator's SSH key pair as recipient and identity.
//
// The cryptography is delegated to a [Tool]. [CommandTool] runs the age
// executable; [NativeTool] runs filippo.io/age in-process. [Encryptor]
// layers the credential store's policy on top of a Tool: public key
// resolution next to the private key, key type validation, and
// classification of every failure as a *storeerr.Error.
//
// Nothing is retried. A failed encryption or decryption is reported with
// the tool's diagnostic text, which never contains plaintext.
package sealed
