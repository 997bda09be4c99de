// Copyright 2026 The Slackline Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
)

// Zero overwrites data with zero bytes.
func Zero(data []byte) {
	clear(data)
}

// ReadToken reads a secret from a file path, or from stdin if path is
// "-". Only the first line of stdin is consumed. Leading and trailing
// whitespace is trimmed. Returns an error if the source is empty after
// trimming.
func ReadToken(path string, stdin io.Reader) (string, error) {
	var data []byte

	if path == "-" {
		scanner := bufio.NewScanner(stdin)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", fmt.Errorf("reading stdin: %w", err)
			}
			return "", fmt.Errorf("stdin is empty")
		}
		data = bytes.Clone(scanner.Bytes())
	} else {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return "", err
		}
	}
	defer Zero(data)

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return "", fmt.Errorf("secret is empty")
	}
	return string(trimmed), nil
}
