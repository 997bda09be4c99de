// Copyright 2026 The Slackline Authors
// SPDX-License-Identifier: Apache-2.0

// Package doctor provides the check-and-repair workflow behind
// "slackline doctor".
//
// Each check produces a [Result]. Fixable failures carry fix closures
// that run in --fix mode. The package provides:
//
//   - [Result] type with status, message, and optional fix action
//   - Constructors: [Pass], [Fail], [FailWithFix], [Warn], [Skip]
//   - [ExecuteFixes] for running fix closures
//   - [PrintChecklist] for human-readable output
//   - [BuildJSON] for machine-readable output
//   - [MarkRepaired] for cross-iteration repair tracking
//
// The checks themselves (file permissions, tool availability, key
// usability) live in the doctor command's package.
package doctor
