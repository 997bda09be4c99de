// Copyright 2026 The Slackline Authors
// SPDX-License-Identifier: Apache-2.0

// Package tokenstore persists workspace credentials, optionally encrypted
// to the operator's SSH key.
//
// The credential map lives in exactly one of two files in the store
// directory: tokens.json (plaintext, mode 0600) or tokens.age (age
// ciphertext). [Loader] decides which file is authoritative and parses
// it. [Saver] writes the complete map atomically in the requested [Mode]
// and only then removes the stale sibling, so an interrupted mode switch
// leaves both files rather than neither. [Store] is the facade used by
// commands: every call loads from disk, mutates in memory, and saves.
//
// The protection mode is owned by the caller and passed in explicitly.
// [Store.Migrate] takes the old and new private key paths as arguments
// and never consults configuration.
//
// The package never prints. Conditions the operator should hear about
// are delivered to an [Observer] as [Notice] values. Errors are
// *storeerr.Error values and never contain token, cookie, or decrypted
// content.
//
// No locking is performed. Two processes writing concurrently race on
// the final rename; the last writer wins and no file is ever torn.
package tokenstore
