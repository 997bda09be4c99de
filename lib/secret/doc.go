// Copyright 2026 The Slackline Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret handles token material on its way into the credential
// store.
//
// [ReadToken] reads a token from a file or standard input so that it
// never appears in process arguments or shell history. [Zero] clears
// byte slices that held serialized credentials once they are no longer
// needed.
package secret
