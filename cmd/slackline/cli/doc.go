// Copyright 2026 The Slackline Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the command framework for the slackline binary.
//
// A [Command] tree dispatches on positional arguments, parses flags with
// pflag, and calls Run with a context that is cancelled on interrupt and
// a structured logger. Flag sets are generated from tagged parameter
// structs by [FlagsFromParams]; embedding [JSONOutput] adds --json and
// embedding [StoreConfig] adds --config and --verbose.
//
// Errors returned from Run are classified by [ToolError] categories.
// [FromStoreError] maps credential store error kinds onto categories so
// that scripts consuming --json output can tell bad input from a broken
// store. Store notices are written to stderr by [NoticePrinter]; nothing
// below this package prints.
package cli
