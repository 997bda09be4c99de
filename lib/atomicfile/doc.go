// Copyright 2026 The Slackline Authors
// SPDX-License-Identifier: Apache-2.0

// Package atomicfile replaces files so that readers observe either the
// old content or the complete new content, never a partial write.
//
// Content is written to a temporary file in the destination directory,
// flushed to stable storage, and renamed over the destination. Any
// failure removes the temporary file and leaves the destination
// untouched. [WriteFile] writes bytes held in memory; [Produce] hands the
// temporary path to an external producer (such as an encryption tool
// writing ciphertext) and applies the same discipline to its output.
//
// Failures are *storeerr.Error values of kind storeerr.Store.
package atomicfile
