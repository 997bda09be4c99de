// Copyright 2026 The Slackline Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides the slackline entrypoint's error exit. It is
// the one place outside the CLI output layer that writes to stderr
// directly, because it runs after command execution has returned and the
// logger may never have been created.
package process
