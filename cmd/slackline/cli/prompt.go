// Copyright 2026 The Slackline Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/slackline-dev/slackline/lib/sealed"
)

func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// PublicKeyPrompt returns a [sealed.PromptFunc] that asks on out for the
// public key of a private key that has no .pub beside it, and reads one
// line from in. An empty answer is returned as is; the store rejects it.
func PublicKeyPrompt(in io.Reader, out io.Writer) sealed.PromptFunc {
	reader := bufio.NewReader(in)
	return func(privateKeyPath string) (string, error) {
		fmt.Fprintf(out, "No public key found at %s.pub.\nPath to the public key for %s: ", privateKeyPath, privateKeyPath)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			if err == io.EOF {
				return "", nil
			}
			return "", fmt.Errorf("reading public key path: %w", err)
		}
		return strings.TrimSpace(line), nil
	}
}

// ReadSecret prompts on stderr and reads a line from the terminal
// without echo. It fails when stdin is not a terminal; non-interactive
// callers pass secrets through a file or "-".
func ReadSecret(label string) (string, error) {
	if !stdinIsTerminal() {
		return "", Validation("%s required: stdin is not a terminal (pass a file, or - to read one line from stdin)", label)
	}
	fmt.Fprintf(os.Stderr, "%s: ", label)
	data, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", label, err)
	}
	value := strings.TrimSpace(string(data))
	clear(data)
	if value == "" {
		return "", Validation("%s is empty", label)
	}
	return value, nil
}

// FixedPublicKey returns a [sealed.PromptFunc] that answers with path
// without asking, for --public-key.
func FixedPublicKey(path string) sealed.PromptFunc {
	return func(string) (string, error) { return path, nil }
}
