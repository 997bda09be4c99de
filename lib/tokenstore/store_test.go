// Copyright 2026 The Slackline Authors
// SPDX-License-Identifier: Apache-2.0

package tokenstore

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/slackline-dev/slackline/lib/sealed"
	"github.com/slackline-dev/slackline/lib/sshkey"
	"github.com/slackline-dev/slackline/lib/storeerr"
	"github.com/slackline-dev/slackline/lib/testutil"
	"github.com/slackline-dev/slackline/lib/workspace"
)

type fixture struct {
	dir    string
	keys   string
	events *recorder
}

func newFixture(t *testing.T) *fixture {
	return &fixture{dir: filepath.Join(t.TempDir(), "slackline"), keys: t.TempDir(), events: &recorder{}}
}

func (f *fixture) store(mode Mode) *Store {
	return New(Options{
		Dir:      f.dir,
		Mode:     mode,
		Tool:     sealed.NativeTool{},
		Deriver:  sshkey.NativeDeriver{},
		Observer: f.events.observe,
	})
}

func TestStore_ConcreteScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	pair := testutil.WriteKeyPair(t, f.keys, "id_ed25519")
	store := f.store(Plaintext())

	if empty, err := store.Empty(ctx); err != nil || !empty {
		t.Fatalf("Empty() = %v, %v; want true", empty, err)
	}
	if err := store.Add(ctx, "work", "xoxb-abc", ""); err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	entry, err := store.Lookup(ctx, "work")
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	if entry.Name() != "work" || entry.Token() != "xoxb-abc" || entry.HasCookie() {
		t.Errorf("Lookup() = %v token=%q cookie=%q", entry, entry.Token(), entry.Cookie())
	}

	result, err := store.Migrate(ctx, "", pair.PrivateKeyPath)
	if err != nil {
		t.Fatalf("Migrate() error: %v", err)
	}
	if result != MigrationEncrypted {
		t.Errorf("Migrate() = %v, want %v", result, MigrationEncrypted)
	}
	if _, err := os.Stat(filepath.Join(f.dir, PlaintextFile)); !os.IsNotExist(err) {
		t.Errorf("tokens.json still exists after migration (stat error %v)", err)
	}
	assertExclusive(t, f.dir, true)

	want := map[string]any{"work": map[string]any{"token": "xoxb-abc"}}
	if got := decryptFile(t, f.dir, pair.PrivateKeyPath); !reflect.DeepEqual(got, want) {
		t.Errorf("tokens.age decrypts to %v, want %v", got, want)
	}

	// The store now reads through the new key.
	if store.Mode().PrivateKey() != pair.PrivateKeyPath {
		t.Errorf("Mode() = %v after migration", store.Mode())
	}
	if entry, err := store.Lookup(ctx, "work"); err != nil || entry.Token() != "xoxb-abc" {
		t.Errorf("Lookup() after migration = %v, %v", entry, err)
	}
}

func TestStore_Queries(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	store := f.store(Plaintext())

	for _, entry := range []struct{ name, token, cookie string }{
		{"zeta", "xoxp-z", ""},
		{"alpha", "xoxc-a", "d=a"},
		{"mid", "xoxb-m", ""},
	} {
		if err := store.Add(ctx, entry.name, entry.token, entry.cookie); err != nil {
			t.Fatalf("Add(%s) error: %v", entry.name, err)
		}
	}

	names, err := store.Names(ctx)
	if err != nil || !reflect.DeepEqual(names, []string{"alpha", "mid", "zeta"}) {
		t.Errorf("Names() = %v, %v", names, err)
	}

	all, err := store.All(ctx)
	if err != nil {
		t.Fatalf("All() error: %v", err)
	}
	var order []string
	for _, entry := range all {
		order = append(order, entry.Name())
	}
	if !reflect.DeepEqual(order, []string{"alpha", "mid", "zeta"}) {
		t.Errorf("All() order = %v", order)
	}
	if all[0].Cookie() != "d=a" || all[0].Class() != workspace.Session {
		t.Errorf("All()[0] = %v cookie=%q", all[0], all[0].Cookie())
	}

	if exists, err := store.Exists(ctx, "mid"); err != nil || !exists {
		t.Errorf("Exists(mid) = %v, %v", exists, err)
	}
	if exists, err := store.Exists(ctx, "nope"); err != nil || exists {
		t.Errorf("Exists(nope) = %v, %v", exists, err)
	}
	if empty, err := store.Empty(ctx); err != nil || empty {
		t.Errorf("Empty() = %v, %v", empty, err)
	}

	_, err = store.Lookup(ctx, "nope")
	if !storeerr.Is(err, storeerr.NotFound) {
		t.Errorf("Lookup(nope) = %v, want kind %v", err, storeerr.NotFound)
	}
}

func TestStore_AddReplaces(t *testing.T) {
	ctx := context.Background()
	store := newFixture(t).store(Plaintext())

	if err := store.Add(ctx, "work", "xoxc-old", "d=old"); err != nil {
		t.Fatal(err)
	}
	if err := store.Add(ctx, "work", "xoxb-new", ""); err != nil {
		t.Fatal(err)
	}
	entry, err := store.Lookup(ctx, "work")
	if err != nil {
		t.Fatal(err)
	}
	if entry.Token() != "xoxb-new" || entry.HasCookie() {
		t.Errorf("Lookup() token=%q cookie=%q, want replaced record", entry.Token(), entry.Cookie())
	}
}

func TestStore_AddValidatesBeforeIO(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name, workspace, token, cookie string
		reason                         workspace.Reason
	}{
		{"empty name", "", "xoxb-abc", "", workspace.EmptyName},
		{"path separator", "a/b", "xoxb-abc", "", workspace.InvalidNameCharacters},
		{"bad prefix", "work", "bad-prefix-token", "", workspace.UnrecognizedTokenPrefix},
		{"session without cookie", "work", "xoxc-abc", "", workspace.MissingCookie},
		{"cookie injection", "work", "xoxb-abc", "line1\nline2", workspace.UnsafeCookie},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f := newFixture(t)
			store := f.store(Plaintext())

			// A fresh store: the directory must not even be created.
			err := store.Add(ctx, test.workspace, test.token, test.cookie)
			if !storeerr.Is(err, storeerr.Validation) {
				t.Fatalf("Add() = %v, want kind %v", err, storeerr.Validation)
			}
			var validation *workspace.ValidationError
			if !asValidationError(err, &validation) || validation.Reason != test.reason {
				t.Errorf("Add() reason = %v, want %v", validation, test.reason)
			}
			if _, statErr := os.Stat(f.dir); !os.IsNotExist(statErr) {
				t.Errorf("store directory created by invalid Add")
			}
		})
	}

	t.Run("existing store untouched", func(t *testing.T) {
		f := newFixture(t)
		store := f.store(Plaintext())
		if err := store.Add(ctx, "work", "xoxb-abc", ""); err != nil {
			t.Fatal(err)
		}
		before := snapshotDir(t, f.dir)
		if err := store.Add(ctx, "work", "xoxc-abc", "d=1\r\nSet-Cookie: x"); err == nil {
			t.Fatal("Add() with unsafe cookie succeeded")
		}
		assertNoWrites(t, f.dir, before)
	})
}

func TestStore_Remove(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	store := f.store(Plaintext())
	if err := store.Add(ctx, "work", "xoxb-abc", ""); err != nil {
		t.Fatal(err)
	}

	before := snapshotDir(t, f.dir)
	removed, err := store.Remove(ctx, "absent")
	if err != nil || removed {
		t.Errorf("Remove(absent) = %v, %v; want false, nil", removed, err)
	}
	assertNoWrites(t, f.dir, before)

	removed, err = store.Remove(ctx, "work")
	if err != nil || !removed {
		t.Fatalf("Remove(work) = %v, %v; want true, nil", removed, err)
	}
	// The last removal leaves an empty map on disk.
	data, err := os.ReadFile(filepath.Join(f.dir, PlaintextFile))
	if err != nil {
		t.Fatalf("tokens.json missing after removing the last workspace: %v", err)
	}
	if strings.TrimSpace(string(data)) != "{}" {
		t.Errorf("tokens.json = %q, want empty object", data)
	}
}

func TestStore_EncryptedOperations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	pair := testutil.WriteKeyPair(t, f.keys, "id_ed25519")
	store := f.store(Encrypted(pair.PrivateKeyPath))

	if err := store.Add(ctx, "work", "xoxp-abc", ""); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	assertExclusive(t, f.dir, true)
	if _, err := store.Remove(ctx, "work"); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}
	assertExclusive(t, f.dir, true)
	if empty, err := store.Empty(ctx); err != nil || !empty {
		t.Errorf("Empty() = %v, %v", empty, err)
	}
}

func TestStore_InvalidStoredRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	if err := os.MkdirAll(f.dir, 0o700); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(f.dir, PlaintextFile), `{"good":{"token":"xoxb-1"},"bad":{"token":"ghp_leaked"}}`, 0o600)
	store := f.store(Plaintext())

	_, err := store.Lookup(ctx, "bad")
	if !storeerr.Is(err, storeerr.CorruptedStore) {
		t.Errorf("Lookup(bad) = %v, want kind %v", err, storeerr.CorruptedStore)
	}
	if err != nil && strings.Contains(err.Error(), "ghp_leaked") {
		t.Errorf("error %q leaks the token", err)
	}
	if _, err := store.All(ctx); !storeerr.Is(err, storeerr.CorruptedStore) {
		t.Errorf("All() = %v, want kind %v", err, storeerr.CorruptedStore)
	}
	// The bad record can still be removed.
	if removed, err := store.Remove(ctx, "bad"); err != nil || !removed {
		t.Errorf("Remove(bad) = %v, %v", removed, err)
	}
	if _, err := store.All(ctx); err != nil {
		t.Errorf("All() after removing the bad record: %v", err)
	}
}

func TestStore_Status(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	store := f.store(Plaintext())

	status, err := store.Status()
	if err != nil {
		t.Fatal(err)
	}
	if status.Plaintext.Exists || status.Encrypted.Exists || status.Both() {
		t.Errorf("Status() of a fresh store = %+v", status)
	}

	if err := store.Add(ctx, "work", "xoxb-abc", ""); err != nil {
		t.Fatal(err)
	}
	status, err = store.Status()
	if err != nil {
		t.Fatal(err)
	}
	if !status.Plaintext.Exists || status.Plaintext.Mode != 0o600 || status.Encrypted.Exists {
		t.Errorf("Status() = %+v", status)
	}
}
