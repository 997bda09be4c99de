// Copyright 2026 The Slackline Authors
// SPDX-License-Identifier: Apache-2.0

package tokenstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/tidwall/jsonc"

	"github.com/slackline-dev/slackline/lib/workspace"
)

// Record is the persisted form of one workspace.
type Record struct {
	Token  string `json:"token"`
	Cookie string `json:"cookie,omitempty"`
}

// Credentials maps workspace names to their records. It is always loaded
// and saved whole.
type Credentials map[string]Record

// Names returns the workspace names in sorted order.
func (c Credentials) Names() []string {
	return slices.Sorted(maps.Keys(c))
}

// workspace validates the record stored under name.
func (c Credentials) workspace(name string) (workspace.Workspace, error) {
	record := c[name]
	return workspace.New(name, record.Token, record.Cookie)
}

// encode serializes c as indented JSON with sorted keys and a trailing
// newline.
func encode(c Credentials) ([]byte, error) {
	if c == nil {
		c = Credentials{}
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// decode parses serialized credentials. Comments and trailing commas are
// accepted so that hand-edited files load. Empty or null input is an
// empty map.
func decode(data []byte) (Credentials, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Credentials{}, nil
	}
	standard := jsonc.ToJSON(data)
	var credentials Credentials
	if err := json.Unmarshal(standard, &credentials); err != nil {
		// The decoder's message can quote input, which may be a token.
		return nil, fmt.Errorf("not a JSON object of workspace records (%s)", syntaxLocation(err))
	}
	if credentials == nil {
		credentials = Credentials{}
	}
	return credentials, nil
}

// syntaxLocation describes a decode failure without quoting input.
func syntaxLocation(err error) string {
	var syntaxError *json.SyntaxError
	var typeError *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxError):
		return fmt.Sprintf("syntax error at byte %d", syntaxError.Offset)
	case errors.As(err, &typeError):
		return fmt.Sprintf("unexpected %s at byte %d", typeError.Value, typeError.Offset)
	default:
		return "malformed JSON"
	}
}
