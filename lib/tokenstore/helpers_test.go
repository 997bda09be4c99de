// Copyright 2026 The Slackline Authors
// SPDX-License-Identifier: Apache-2.0

package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/slackline-dev/slackline/lib/sealed"
	"github.com/slackline-dev/slackline/lib/sshkey"
	"github.com/slackline-dev/slackline/lib/storeerr"
	"github.com/slackline-dev/slackline/lib/workspace"
)

// recorder collects notices.
type recorder struct {
	notices []Notice
}

func (r *recorder) observe(notice Notice) { r.notices = append(r.notices, notice) }

func (r *recorder) warnings() []string {
	var messages []string
	for _, notice := range r.notices {
		if notice.Level == Warning {
			messages = append(messages, notice.Message)
		}
	}
	return messages
}

// failingTool is available but fails every operation.
type failingTool struct {
	calls int
}

func (f *failingTool) Available() bool { return true }

func (f *failingTool) Encrypt(_ context.Context, _ string, _ []byte, outputPath string) error {
	f.calls++
	// Leave partial output behind, as a crashing tool would.
	os.WriteFile(outputPath, []byte("age-encryption.org/v1\n-> X25519"), 0o600)
	return errors.New("age: error: failed to write output")
}

func (f *failingTool) Decrypt(context.Context, string, string) ([]byte, error) {
	f.calls++
	return nil, errors.New("age: error: no identity matched any of the recipients")
}

// unavailableDeriver behaves like a missing ssh-keygen.
type unavailableDeriver struct{}

func (unavailableDeriver) DerivePublicKey(context.Context, string) (string, error) {
	return "", sshkey.ErrDeriverUnavailable
}

// dirState is the observable state of every entry in a directory.
type dirState map[string]fileState

type fileState struct {
	data    string
	mode    os.FileMode
	modTime time.Time
}

func snapshotDir(t *testing.T, dir string) dirState {
	t.Helper()
	state := dirState{}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return state
	}
	if err != nil {
		t.Fatalf("reading %s: %v", dir, err)
	}
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		var data []byte
		if !info.IsDir() {
			if data, err = os.ReadFile(path); err != nil {
				t.Fatal(err)
			}
		}
		state[entry.Name()] = fileState{data: string(data), mode: info.Mode(), modTime: info.ModTime()}
	}
	return state
}

func assertNoWrites(t *testing.T, dir string, before dirState) {
	t.Helper()
	if after := snapshotDir(t, dir); !reflect.DeepEqual(after, before) {
		t.Errorf("store directory changed:\nbefore %v\nafter  %v", names(before), names(after))
	}
}

func names(state dirState) []string {
	var result []string
	for name := range state {
		result = append(result, name)
	}
	return result
}

// assertExclusive checks that exactly the expected credential file exists.
func assertExclusive(t *testing.T, dir string, encrypted bool) {
	t.Helper()
	_, plaintextErr := os.Stat(filepath.Join(dir, PlaintextFile))
	_, encryptedErr := os.Stat(filepath.Join(dir, EncryptedFile))
	plaintextExists := plaintextErr == nil
	encryptedExists := encryptedErr == nil
	if plaintextExists == encryptedExists || encryptedExists != encrypted {
		t.Errorf("tokens.json exists=%v tokens.age exists=%v; want exactly the %s file",
			plaintextExists, encryptedExists, map[bool]string{true: "encrypted", false: "plaintext"}[encrypted])
	}
}

// decryptFile decrypts tokens.age with the native tool and parses it as
// generic JSON.
func decryptFile(t *testing.T, dir, privateKeyPath string) map[string]any {
	t.Helper()
	plaintext, err := sealed.NativeTool{}.Decrypt(context.Background(), privateKeyPath, filepath.Join(dir, EncryptedFile))
	if err != nil {
		t.Fatalf("decrypting %s: %v", EncryptedFile, err)
	}
	var parsed map[string]any
	if err := json.Unmarshal(plaintext, &parsed); err != nil {
		t.Fatalf("parsing decrypted content: %v", err)
	}
	return parsed
}

func writeFile(t *testing.T, path, content string, mode os.FileMode) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), mode); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(path, mode); err != nil {
		t.Fatal(err)
	}
}

func asStoreError(err error, target **storeerr.Error) bool {
	return errors.As(err, target)
}

func asValidationError(err error, target **workspace.ValidationError) bool {
	return errors.As(err, target)
}
