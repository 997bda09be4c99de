// Copyright 2026 The Slackline Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"

	"github.com/slackline-dev/slackline/lib/storeerr"
)

// ErrorCategory classifies command errors so that scripts can make
// programmatic decisions (fix input, restore a key, report a bug)
// without parsing error message text.
type ErrorCategory string

const (
	// CategoryValidation indicates the caller provided invalid input:
	// wrong argument count, a malformed token, an unusable key.
	CategoryValidation ErrorCategory = "validation"

	// CategoryNotFound indicates a referenced workspace does not exist.
	CategoryNotFound ErrorCategory = "not_found"

	// CategoryForbidden indicates the credentials cannot be read with
	// what the caller has configured, such as an encrypted store with no
	// key.
	CategoryForbidden ErrorCategory = "forbidden"

	// CategoryConflict indicates the operation conflicts with existing
	// state: a store left half-migrated, a key already in use.
	CategoryConflict ErrorCategory = "conflict"

	// CategoryInternal indicates an unexpected error: I/O failures,
	// corrupted files, a failing encryption tool. The caller should
	// report the error rather than retry.
	CategoryInternal ErrorCategory = "internal"
)

// ToolError is a categorized error returned by CLI commands. It wraps an
// inner error, preserving the full error chain, and may carry a hint
// telling the operator what to run next.
type ToolError struct {
	// Category classifies the error for programmatic handling.
	Category ErrorCategory

	// Err is the underlying error with the human-readable message.
	Err error

	// Hint is appended to the message after a blank line.
	Hint string
}

// Error returns the underlying error message followed by the hint.
func (e *ToolError) Error() string {
	if e.Hint == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + "\n\n" + e.Hint
}

// Unwrap returns the underlying error, allowing errors.Is and
// errors.As to walk the full chain through the ToolError wrapper.
func (e *ToolError) Unwrap() error { return e.Err }

// WithHint sets the hint and returns the receiver for chaining.
func (e *ToolError) WithHint(hint string) *ToolError {
	e.Hint = hint
	return e
}

// Validation creates a validation error: the caller provided bad input.
func Validation(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryValidation, Err: fmt.Errorf(format, args...)}
}

// NotFound creates a not-found error: a referenced workspace does not exist.
func NotFound(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryNotFound, Err: fmt.Errorf(format, args...)}
}

// Conflict creates a conflict error: the operation conflicts with existing state.
func Conflict(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryConflict, Err: fmt.Errorf(format, args...)}
}

// Internal creates an internal error: an unexpected failure or I/O error.
func Internal(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryInternal, Err: fmt.Errorf(format, args...)}
}

// FromStoreError categorizes an error returned by the credential store.
// Errors already carrying a category, and nil, are returned unchanged.
func FromStoreError(err error) error {
	if err == nil {
		return nil
	}
	var toolError *ToolError
	if errors.As(err, &toolError) {
		return err
	}

	result := &ToolError{Category: CategoryInternal, Err: err}
	switch storeerr.KindOf(err) {
	case storeerr.Validation, storeerr.UnsupportedKeyType, storeerr.KeyMismatch:
		result.Category = CategoryValidation
	case storeerr.PublicKeyNotFound:
		result.Category = CategoryValidation
		result.Hint = "Generate it with 'ssh-keygen -y -f <key> > <key>.pub', or pass --public-key <path>."
	case storeerr.NotFound:
		result.Category = CategoryNotFound
		result.Hint = "Run 'slackline workspace list' to see stored workspaces."
	case storeerr.MissingKey:
		result.Category = CategoryForbidden
	case storeerr.CorruptedStore:
		result.Hint = "Run 'slackline doctor' to inspect the credential files."
	case storeerr.Encryption, storeerr.KeyDerivation:
		result.Hint = "Run 'slackline doctor' to check the encryption backend and key."
	}
	return result
}

// CategoryOf returns the category of err, or CategoryInternal when err
// carries none.
func CategoryOf(err error) ErrorCategory {
	var toolError *ToolError
	if errors.As(FromStoreError(err), &toolError) {
		return toolError.Category
	}
	return CategoryInternal
}
