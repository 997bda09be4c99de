// Copyright 2026 The Slackline Authors
// SPDX-License-Identifier: Apache-2.0

package sealed

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"filippo.io/age"
	"filippo.io/age/agessh"
	"golang.org/x/crypto/ssh"
)

// Tool is the asymmetric encryption capability.
type Tool interface {
	// Available reports whether the tool can be used on this system.
	Available() bool

	// Encrypt encrypts plaintext to the recipients listed in
	// recipientsFile and writes the ciphertext to outputPath, replacing
	// any existing file.
	Encrypt(ctx context.Context, recipientsFile string, plaintext []byte, outputPath string) error

	// Decrypt decrypts inputPath with the identity in identityFile.
	Decrypt(ctx context.Context, identityFile, inputPath string) ([]byte, error)
}

// CommandTool runs the age executable.
type CommandTool struct {
	// Binary is the age executable. Defaults to "age".
	Binary string
}

func (c *CommandTool) binary() string {
	if c.Binary == "" {
		return "age"
	}
	return c.Binary
}

// Available reports whether the binary can be found.
func (c *CommandTool) Available() bool {
	_, err := exec.LookPath(c.binary())
	return err == nil
}

// Encrypt runs "age -R recipientsFile -o outputPath" with plaintext on
// standard input.
func (c *CommandTool) Encrypt(ctx context.Context, recipientsFile string, plaintext []byte, outputPath string) error {
	command := exec.CommandContext(ctx, c.binary(), "-R", recipientsFile, "-o", outputPath)
	command.Stdin = bytes.NewReader(plaintext)
	var stderr bytes.Buffer
	command.Stderr = &stderr
	if err := command.Run(); err != nil {
		return fmt.Errorf("%s -R %s: %w (stderr: %s)", c.binary(), recipientsFile, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// Decrypt runs "age -d -i identityFile inputPath" and returns its
// standard output.
func (c *CommandTool) Decrypt(ctx context.Context, identityFile, inputPath string) ([]byte, error) {
	command := exec.CommandContext(ctx, c.binary(), "-d", "-i", identityFile, inputPath)
	var stdout, stderr bytes.Buffer
	command.Stdout = &stdout
	command.Stderr = &stderr
	if err := command.Run(); err != nil {
		return nil, fmt.Errorf("%s -d %s: %w (stderr: %s)", c.binary(), inputPath, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// NativeTool encrypts in-process with filippo.io/age. It understands the
// same SSH recipients and unencrypted SSH identities as the age
// executable.
type NativeTool struct{}

// Available always reports true.
func (NativeTool) Available() bool { return true }

// Encrypt encrypts plaintext to every SSH recipient in recipientsFile.
func (NativeTool) Encrypt(_ context.Context, recipientsFile string, plaintext []byte, outputPath string) error {
	recipients, err := parseRecipientsFile(recipientsFile)
	if err != nil {
		return err
	}

	output, err := os.OpenFile(outputPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("opening output: %w", err)
	}
	writer, err := age.Encrypt(output, recipients...)
	if err != nil {
		output.Close()
		return fmt.Errorf("creating age encryptor: %w", err)
	}
	if _, err := writer.Write(plaintext); err != nil {
		output.Close()
		return fmt.Errorf("writing plaintext to age encryptor: %w", err)
	}
	if err := writer.Close(); err != nil {
		output.Close()
		return fmt.Errorf("finalizing age encryption: %w", err)
	}
	return output.Close()
}

// Decrypt decrypts inputPath with the SSH private key in identityFile.
func (NativeTool) Decrypt(_ context.Context, identityFile, inputPath string) ([]byte, error) {
	pemBytes, err := os.ReadFile(identityFile)
	if err != nil {
		return nil, fmt.Errorf("reading identity: %w", err)
	}
	identity, err := agessh.ParseIdentity(pemBytes)
	if err != nil {
		var passphraseMissing *ssh.PassphraseMissingError
		if errors.As(err, &passphraseMissing) {
			return nil, fmt.Errorf("identity %s is passphrase-protected; use the age command backend", identityFile)
		}
		return nil, fmt.Errorf("parsing identity %s: %w", identityFile, err)
	}

	input, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}
	defer input.Close()

	reader, err := age.Decrypt(input, identity)
	if err != nil {
		return nil, fmt.Errorf("decrypting %s: %w", inputPath, err)
	}
	plaintext, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading decrypted plaintext: %w", err)
	}
	return plaintext, nil
}

// parseRecipientsFile reads an age recipients file: one recipient per
// line, blank lines and lines starting with '#' ignored.
func parseRecipientsFile(path string) ([]age.Recipient, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening recipients file: %w", err)
	}
	defer file.Close()

	var recipients []age.Recipient
	scanner := bufio.NewScanner(file)
	for lineNumber := 1; scanner.Scan(); lineNumber++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		recipient, err := agessh.ParseRecipient(line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: parsing recipient: %w", path, lineNumber, err)
		}
		recipients = append(recipients, recipient)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading recipients file: %w", err)
	}
	if len(recipients) == 0 {
		return nil, fmt.Errorf("recipients file %s contains no recipients", path)
	}
	return recipients, nil
}
