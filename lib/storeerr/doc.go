// Copyright 2026 The Slackline Authors
// SPDX-License-Identifier: Apache-2.0

// Package storeerr defines the closed set of failure kinds produced by the
// credential store and its collaborators (workspace validation, SSH key
// validation, encryption, atomic file writes, loading and saving).
//
// Every failure is an [*Error] carrying a [Kind]. Callers switch on
// [KindOf] rather than on error text:
//
//	switch storeerr.KindOf(err) {
//	case storeerr.MissingKey:
//	    // point the operator at "slackline encryption enable"
//	case storeerr.CorruptedStore:
//	    // ...
//	}
//
// Error text is built by the package that detects the failure and never
// includes token, cookie, or decrypted content.
//
// This package has no slackline-internal dependencies.
package storeerr
