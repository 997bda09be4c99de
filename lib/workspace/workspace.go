// Copyright 2026 The Slackline Authors
// SPDX-License-Identifier: Apache-2.0

// Package workspace defines the validated identity and credential tuple for
// one authenticated workspace. A Workspace can only be obtained through
// [New], which validates every field, so invalid credentials never reach
// the credential store.
package workspace

import (
	"fmt"
	"strings"

	"github.com/slackline-dev/slackline/lib/storeerr"
)

// TokenClass identifies what kind of principal a token authenticates.
type TokenClass string

const (
	// Bot tokens (xoxb-) are scoped to an installed app's bot user.
	Bot TokenClass = "bot"

	// Session tokens (xoxc-) come from a browser session and are only
	// accepted together with the session's "d" cookie.
	Session TokenClass = "session"

	// User tokens (xoxp-) act on behalf of an installing user.
	User TokenClass = "user"
)

var tokenPrefixes = []struct {
	prefix string
	class  TokenClass
}{
	{"xoxb-", Bot},
	{"xoxc-", Session},
	{"xoxp-", User},
}

// ClassOf returns the class of token, or false if its prefix is not
// recognized.
func ClassOf(token string) (TokenClass, bool) {
	for _, entry := range tokenPrefixes {
		if strings.HasPrefix(token, entry.prefix) {
			return entry.class, true
		}
	}
	return "", false
}

// Reason identifies which validation rule a workspace failed.
type Reason string

const (
	EmptyName               Reason = "empty_name"
	InvalidNameCharacters   Reason = "invalid_name_characters"
	UnrecognizedTokenPrefix Reason = "unrecognized_token_prefix"
	MissingCookie           Reason = "missing_cookie"
	UnsafeCookie            Reason = "unsafe_cookie"
)

// ValidationError describes why New rejected its input. It is always
// returned wrapped in a storeerr.Error of kind Validation; use errors.As to
// recover the Reason.
type ValidationError struct {
	Reason Reason
	Name   string
	detail string
}

func (e *ValidationError) Error() string {
	return e.detail
}

// Workspace is one authenticated target. The zero value is not valid;
// obtain Workspaces through New.
type Workspace struct {
	name   string
	token  string
	cookie string
}

// New validates name, token, and cookie and returns the Workspace. An empty
// cookie means "no cookie". Validation has no side effects.
func New(name, token, cookie string) (Workspace, error) {
	if name == "" {
		return Workspace{}, invalid(EmptyName, name, "workspace name is empty")
	}
	if strings.ContainsAny(name, `/\`) {
		return Workspace{}, invalid(InvalidNameCharacters, name,
			fmt.Sprintf("workspace name %q contains a path separator", name))
	}

	class, ok := ClassOf(token)
	if !ok {
		// The token itself is never echoed; only its shape.
		return Workspace{}, invalid(UnrecognizedTokenPrefix, name,
			fmt.Sprintf("token for workspace %q has an unrecognized prefix (want xoxb-, xoxc-, or xoxp-)", name))
	}

	if class == Session && cookie == "" {
		return Workspace{}, invalid(MissingCookie, name,
			fmt.Sprintf("workspace %q uses an xoxc- session token, which requires a cookie", name))
	}
	if strings.ContainsAny(cookie, "\r\n") {
		return Workspace{}, invalid(UnsafeCookie, name,
			fmt.Sprintf("cookie for workspace %q contains a carriage return or line feed", name))
	}

	return Workspace{name: name, token: token, cookie: cookie}, nil
}

func invalid(reason Reason, name, detail string) error {
	return storeerr.Wrap(storeerr.Validation, &ValidationError{Reason: reason, Name: name, detail: detail}, "invalid workspace")
}

// Name returns the workspace name.
func (w Workspace) Name() string { return w.name }

// Token returns the API token.
func (w Workspace) Token() string { return w.token }

// Cookie returns the session cookie, or "" when the workspace has none.
func (w Workspace) Cookie() string { return w.cookie }

// HasCookie reports whether a cookie is set.
func (w Workspace) HasCookie() bool { return w.cookie != "" }

// Class returns the token class.
func (w Workspace) Class() TokenClass {
	class, _ := ClassOf(w.token)
	return class
}

// String renders the workspace without its secrets.
func (w Workspace) String() string {
	return fmt.Sprintf("Workspace(%s, %s)", w.name, w.Class())
}

// Redacted returns the token with everything after the class prefix and the
// first four characters hidden, for display.
func Redacted(token string) string {
	const visible = 9 // "xoxb-" plus four characters
	if len(token) <= visible {
		return strings.Repeat("*", len(token))
	}
	return token[:visible] + strings.Repeat("*", 8)
}
