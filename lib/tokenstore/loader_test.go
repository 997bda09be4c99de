// Copyright 2026 The Slackline Authors
// SPDX-License-Identifier: Apache-2.0

package tokenstore

import (
	"context"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/slackline-dev/slackline/lib/sealed"
	"github.com/slackline-dev/slackline/lib/storeerr"
	"github.com/slackline-dev/slackline/lib/testutil"
)

func newLoader(dir string, tool sealed.Tool, observer Observer) *Loader {
	return &Loader{Dir: dir, Encryptor: &sealed.Encryptor{Tool: tool}, Observer: observer}
}

func encryptInto(t *testing.T, dir string, pair testutil.KeyPair, content string) {
	t.Helper()
	err := sealed.NativeTool{}.Encrypt(context.Background(), pair.PublicKeyPath, []byte(content), filepath.Join(dir, EncryptedFile))
	if err != nil {
		t.Fatalf("encrypting fixture: %v", err)
	}
}

func TestLoad_FirstRun(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "never-created")
	credentials, err := newLoader(dir, nil, nil).Load(context.Background(), Plaintext())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(credentials) != 0 {
		t.Errorf("Load() = %v, want empty", credentials)
	}
}

func TestLoad_Plaintext(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, PlaintextFile), `{"work":{"token":"xoxb-abc"}}`, 0o600)
	events := &recorder{}

	// A configured key does not matter when only tokens.json exists.
	credentials, err := newLoader(dir, nil, events.observe).Load(context.Background(), Encrypted("/keys/id"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !reflect.DeepEqual(credentials, Credentials{"work": {Token: "xoxb-abc"}}) {
		t.Errorf("Load() = %v", credentials)
	}
	if len(events.notices) != 0 {
		t.Errorf("unexpected notices: %v", events.notices)
	}
}

func TestLoad_PlaintextLoosePermissions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, PlaintextFile), `{}`, 0o644)
	events := &recorder{}

	if _, err := newLoader(dir, nil, events.observe).Load(context.Background(), Plaintext()); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	warnings := events.warnings()
	if len(warnings) != 1 || !strings.Contains(warnings[0], "0644") {
		t.Errorf("warnings = %v, want one about mode 0644", warnings)
	}
}

func TestLoad_PlaintextCorrupted(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, PlaintextFile)
	writeFile(t, path, `{"work": {"token": "xoxb-abc"`, 0o600)

	_, err := newLoader(dir, nil, nil).Load(context.Background(), Plaintext())
	if !storeerr.Is(err, storeerr.CorruptedStore) {
		t.Fatalf("Load() = %v, want kind %v", err, storeerr.CorruptedStore)
	}
	var storeError *storeerr.Error
	if !asStoreError(err, &storeError) || storeError.Encrypted || storeError.Path != path {
		t.Errorf("error = %+v, want plaintext corruption naming %s", storeError, path)
	}
	if !strings.Contains(err.Error(), PlaintextFile) {
		t.Errorf("error %q does not name the file", err)
	}
	if strings.Contains(err.Error(), "xoxb-abc") {
		t.Errorf("error %q leaks the token", err)
	}
}

func TestLoad_Encrypted(t *testing.T) {
	dir := t.TempDir()
	pair := testutil.WriteKeyPair(t, t.TempDir(), "id_ed25519")
	encryptInto(t, dir, pair, `{"work":{"token":"xoxc-abc","cookie":"d=xyz"}}`)

	credentials, err := newLoader(dir, sealed.NativeTool{}, nil).Load(context.Background(), Encrypted(pair.PrivateKeyPath))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !reflect.DeepEqual(credentials, Credentials{"work": {Token: "xoxc-abc", Cookie: "d=xyz"}}) {
		t.Errorf("Load() = %v", credentials)
	}
}

func TestLoad_EncryptedEmptyContent(t *testing.T) {
	dir := t.TempDir()
	pair := testutil.WriteKeyPair(t, t.TempDir(), "id_ed25519")
	encryptInto(t, dir, pair, "")

	credentials, err := newLoader(dir, sealed.NativeTool{}, nil).Load(context.Background(), Encrypted(pair.PrivateKeyPath))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(credentials) != 0 {
		t.Errorf("Load() = %v, want empty", credentials)
	}
}

func TestLoad_EncryptedWithoutKey(t *testing.T) {
	dir := t.TempDir()
	pair := testutil.WriteKeyPair(t, t.TempDir(), "id_ed25519")
	encryptInto(t, dir, pair, `{}`)
	// A plaintext sibling must not be used as a fallback.
	writeFile(t, filepath.Join(dir, PlaintextFile), `{"old":{"token":"xoxb-old"}}`, 0o600)

	_, err := newLoader(dir, sealed.NativeTool{}, nil).Load(context.Background(), Plaintext())
	if !storeerr.Is(err, storeerr.MissingKey) {
		t.Fatalf("Load() = %v, want kind %v", err, storeerr.MissingKey)
	}
	if !strings.Contains(err.Error(), RestoreKeyCommand) {
		t.Errorf("error %q lacks restore guidance", err)
	}
}

func TestLoad_EncryptedCorrupted(t *testing.T) {
	dir := t.TempDir()
	pair := testutil.WriteKeyPair(t, t.TempDir(), "id_ed25519")
	encryptInto(t, dir, pair, `not json at all xoxb-secret`)

	_, err := newLoader(dir, sealed.NativeTool{}, nil).Load(context.Background(), Encrypted(pair.PrivateKeyPath))
	var storeError *storeerr.Error
	if !asStoreError(err, &storeError) || storeError.Kind != storeerr.CorruptedStore {
		t.Fatalf("Load() = %v, want kind %v", err, storeerr.CorruptedStore)
	}
	if !storeError.Encrypted {
		t.Error("corruption of the encrypted file not flagged as encrypted")
	}
	if strings.Contains(err.Error(), "xoxb-secret") {
		t.Errorf("error %q leaks decrypted content", err)
	}
}

func TestLoad_EncryptedDecryptFailure(t *testing.T) {
	dir := t.TempDir()
	pair := testutil.WriteKeyPair(t, t.TempDir(), "id_ed25519")
	encryptInto(t, dir, pair, `{}`)
	tool := &failingTool{}

	_, err := newLoader(dir, tool, nil).Load(context.Background(), Encrypted(pair.PrivateKeyPath))
	if !storeerr.Is(err, storeerr.Encryption) {
		t.Errorf("Load() = %v, want kind %v", err, storeerr.Encryption)
	}
	if tool.calls != 1 {
		t.Errorf("tool called %d times, want exactly 1 (no retries)", tool.calls)
	}
}

func TestLoad_BothFilesPreferEncrypted(t *testing.T) {
	dir := t.TempDir()
	pair := testutil.WriteKeyPair(t, t.TempDir(), "id_ed25519")
	encryptInto(t, dir, pair, `{"new":{"token":"xoxb-new"}}`)
	writeFile(t, filepath.Join(dir, PlaintextFile), `{"old":{"token":"xoxb-old"}}`, 0o600)
	events := &recorder{}

	credentials, err := newLoader(dir, sealed.NativeTool{}, events.observe).Load(context.Background(), Encrypted(pair.PrivateKeyPath))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !reflect.DeepEqual(credentials, Credentials{"new": {Token: "xoxb-new"}}) {
		t.Errorf("Load() = %v, want the encrypted content", credentials)
	}
	if warnings := events.warnings(); len(warnings) != 1 || !strings.Contains(warnings[0], "interrupted migration") {
		t.Errorf("warnings = %v", warnings)
	}
}
