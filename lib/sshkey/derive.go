// Copyright 2026 The Slackline Authors
// SPDX-License-Identifier: Apache-2.0

package sshkey

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/crypto/ssh"
)

// KeygenDeriver derives public keys with "ssh-keygen -y". An empty
// passphrase is always supplied so that a protected key fails instead of
// prompting.
type KeygenDeriver struct {
	// Binary is the ssh-keygen executable. Defaults to "ssh-keygen".
	Binary string
}

// DerivePublicKey runs ssh-keygen and returns its output line.
func (d *KeygenDeriver) DerivePublicKey(ctx context.Context, privateKeyPath string) (string, error) {
	binary := d.binary()
	var stdout, stderr bytes.Buffer
	command := exec.CommandContext(ctx, binary, "-y", "-P", "", "-f", privateKeyPath)
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		diagnostic := strings.TrimSpace(stderr.String())
		if IsCommandNotFound(err, diagnostic) {
			return "", fmt.Errorf("%s: %w", binary, ErrDeriverUnavailable)
		}
		return "", fmt.Errorf("%s -y -f %s: %w (stderr: %s)", binary, privateKeyPath, err, diagnostic)
	}
	return strings.TrimSpace(stdout.String()), nil
}

func (d *KeygenDeriver) binary() string {
	if d.Binary == "" {
		return "ssh-keygen"
	}
	return d.Binary
}

// IsCommandNotFound reports whether a failed command run means the
// executable itself is missing, as opposed to the command running and
// failing.
func IsCommandNotFound(err error, stderr string) bool {
	if errors.Is(err, exec.ErrNotFound) {
		return true
	}
	var pathError *fs.PathError
	if errors.As(err, &pathError) && errors.Is(pathError.Err, fs.ErrNotExist) {
		return true
	}
	var exitError *exec.ExitError
	if errors.As(err, &exitError) && exitError.ExitCode() == 127 {
		return true
	}
	lower := strings.ToLower(stderr)
	return strings.Contains(lower, "command not found") ||
		strings.Contains(lower, "executable file not found")
}

// NativeDeriver derives public keys in-process. Passphrase-protected keys
// fail, matching KeygenDeriver with an empty passphrase.
type NativeDeriver struct{}

// DerivePublicKey parses the private key and marshals its public half.
func (NativeDeriver) DerivePublicKey(_ context.Context, privateKeyPath string) (string, error) {
	pemBytes, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return "", fmt.Errorf("reading private key: %w", err)
	}
	signer, err := ssh.ParsePrivateKey(pemBytes)
	if err != nil {
		var passphraseMissing *ssh.PassphraseMissingError
		if errors.As(err, &passphraseMissing) {
			return "", fmt.Errorf("private key %s is passphrase-protected: %w", privateKeyPath, err)
		}
		return "", fmt.Errorf("parsing private key %s: %w", privateKeyPath, err)
	}
	return strings.TrimSpace(string(ssh.MarshalAuthorizedKey(signer.PublicKey()))), nil
}
