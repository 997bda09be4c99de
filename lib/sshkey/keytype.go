// Copyright 2026 The Slackline Authors
// SPDX-License-Identifier: Apache-2.0

package sshkey

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"golang.org/x/crypto/ssh"

	"github.com/slackline-dev/slackline/lib/storeerr"
)

// SupportedTypes lists the SSH key algorithms age accepts as recipients.
var SupportedTypes = []string{ssh.KeyAlgoED25519, ssh.KeyAlgoRSA}

// ValidateKeyType checks that the public key at path is a well-formed
// authorized-key line whose algorithm is in SupportedTypes. Unreadable,
// empty, and unknown files fail closed with storeerr.UnsupportedKeyType.
func ValidateKeyType(publicKeyPath string) error {
	line, err := readFirstLine(publicKeyPath)
	if err != nil {
		return storeerr.Wrap(storeerr.UnsupportedKeyType, err, "reading public key %s", publicKeyPath).
			WithPath(publicKeyPath)
	}

	keyType, _, ok := splitKeyLine(line)
	if !ok {
		return storeerr.New(storeerr.UnsupportedKeyType, "public key %s is empty", publicKeyPath).
			WithPath(publicKeyPath)
	}
	if !slices.Contains(SupportedTypes, keyType) {
		return storeerr.New(storeerr.UnsupportedKeyType,
			"public key %s has type %q; supported types are %s",
			publicKeyPath, keyType, strings.Join(SupportedTypes, ", ")).WithPath(publicKeyPath)
	}

	if _, _, _, _, err := ssh.ParseAuthorizedKey([]byte(line)); err != nil {
		return storeerr.Wrap(storeerr.UnsupportedKeyType, err, "public key %s is malformed", publicKeyPath).
			WithPath(publicKeyPath)
	}
	return nil
}

// readFirstLine returns the first non-blank line of the file at path.
func readFirstLine(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			return line, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", nil
}

// splitKeyLine returns the algorithm and base64 key material fields of an
// authorized-key line, dropping any trailing comment.
func splitKeyLine(line string) (keyType, material string, ok bool) {
	fields := strings.Fields(line)
	switch len(fields) {
	case 0:
		return "", "", false
	case 1:
		return fields[0], "", true
	default:
		return fields[0], fields[1], true
	}
}

// PublicKeyPath returns the conventional public key location for a private
// key: the same path with ".pub" appended.
func PublicKeyPath(privateKeyPath string) string {
	return privateKeyPath + ".pub"
}

// Exists reports whether path names an existing file. Errors other than
// "does not exist" are reported as existing so that the caller's
// subsequent read surfaces them.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, fs.ErrNotExist)
}

// Fingerprint returns the SHA256 fingerprint of the public key at path, in
// the format printed by ssh-keygen -l.
func Fingerprint(publicKeyPath string) (string, error) {
	data, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return "", err
	}
	key, _, _, _, err := ssh.ParseAuthorizedKey(data)
	if err != nil {
		return "", fmt.Errorf("parsing %s: %w", publicKeyPath, err)
	}
	return ssh.FingerprintSHA256(key), nil
}
