// Copyright 2026 The Slackline Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads and saves the slackline configuration file.
//
// The file is chosen by the --config flag, then the SLACKLINE_CONFIG
// environment variable, then config.yaml in the default store directory
// ([ResolvePath]). A missing file is the first-run state and yields
// [Default].
//
// The configuration owns the protection mode of the credential store:
// the private key path under encryption.private_key selects encrypted
// storage, an empty value selects plaintext. The credential store itself
// never reads this file. Callers translate it into explicit parameters,
// and update it with [Config.Save] only after the store has migrated.
//
// Path fields support ${VAR} and ${VAR:-default} expansion.
package config
