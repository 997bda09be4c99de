// Copyright 2026 The Slackline Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/slackline-dev/slackline/lib/sealed"
	"github.com/slackline-dev/slackline/lib/sshkey"
)

func TestDefault(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	cfg := Default()

	if cfg.Store.Dir != "/xdg/slackline" {
		t.Errorf("expected store.dir=/xdg/slackline, got %s", cfg.Store.Dir)
	}
	if cfg.Encrypted() {
		t.Error("expected plaintext storage by default")
	}
	if cfg.Encryption.Backend != CommandBackend {
		t.Errorf("expected backend=command, got %s", cfg.Encryption.Backend)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestDefaultDir_HomeFallback(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "/home/user")
	if got := DefaultDir(); got != "/home/user/.config/slackline" {
		t.Errorf("DefaultDir() = %s, want /home/user/.config/slackline", got)
	}
}

func TestResolvePath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")

	t.Setenv(EnvironmentVariable, "")
	if got := ResolvePath(""); got != "/xdg/slackline/config.yaml" {
		t.Errorf("ResolvePath(\"\") = %s", got)
	}

	t.Setenv(EnvironmentVariable, "/env/config.yaml")
	if got := ResolvePath(""); got != "/env/config.yaml" {
		t.Errorf("ResolvePath(\"\") with env = %s", got)
	}
	if got := ResolvePath("/flag/config.yaml"); got != "/flag/config.yaml" {
		t.Errorf("ResolvePath(flag) = %s, flag should win", got)
	}
}

func TestLoad_MissingFileIsDefault(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Store.Dir != "/xdg/slackline" {
		t.Errorf("expected default store dir, got %s", cfg.Store.Dir)
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv("HOME", "/home/user")
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	configContent := `
store:
  dir: ${HOME}/.slackline
encryption:
  private_key: ${HOME}/.ssh/id_ed25519
  backend: native
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Store.Dir != "/home/user/.slackline" {
		t.Errorf("expected store.dir=/home/user/.slackline, got %s", cfg.Store.Dir)
	}
	if cfg.Encryption.PrivateKey != "/home/user/.ssh/id_ed25519" {
		t.Errorf("expected expanded private_key, got %s", cfg.Encryption.PrivateKey)
	}
	if cfg.Encryption.Backend != NativeBackend {
		t.Errorf("expected backend=native, got %s", cfg.Encryption.Backend)
	}
	// Fields absent from the file keep their defaults.
	if cfg.Encryption.KeyDerivation != KeygenDerivation {
		t.Errorf("expected key_derivation default, got %s", cfg.Encryption.KeyDerivation)
	}
	if !cfg.Encrypted() {
		t.Error("expected Encrypted() with a private key configured")
	}
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("LoadFile() of a missing file should fail")
	}

	malformed := filepath.Join(dir, "malformed.yaml")
	if err := os.WriteFile(malformed, []byte("store: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(malformed); err == nil {
		t.Error("LoadFile() of malformed YAML should fail")
	}
	if _, err := Load(malformed); err == nil {
		t.Error("Load() of malformed YAML should fail")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Store.Dir = "/var/slackline"
	cfg.Encryption.PrivateKey = "/keys/id_ed25519"
	cfg.Encryption.KeyDerivation = NoDerivation

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() failed: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", *loaded, *cfg)
	}
}

func TestExpandVars(t *testing.T) {
	tests := []struct {
		input    string
		vars     map[string]string
		expected string
	}{
		{
			input:    "${HOME}/.ssh/id_ed25519",
			vars:     map[string]string{"HOME": "/home/user"},
			expected: "/home/user/.ssh/id_ed25519",
		},
		{
			input:    "${SLACKLINE_TEST_MISSING:-default}",
			vars:     map[string]string{},
			expected: "default",
		},
		{
			input:    "${PRESENT:-default}",
			vars:     map[string]string{"PRESENT": "value"},
			expected: "value",
		},
		{
			input:    "no variables here",
			vars:     map[string]string{},
			expected: "no variables here",
		},
	}

	for _, tt := range tests {
		result := expandVars(tt.input, tt.vars)
		if result != tt.expected {
			t.Errorf("expandVars(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name: "encrypted with absolute key",
			modify: func(c *Config) {
				c.Encryption.PrivateKey = "/home/user/.ssh/id_ed25519"
			},
			wantErr: false,
		},
		{
			name: "empty store dir",
			modify: func(c *Config) {
				c.Store.Dir = ""
			},
			wantErr: true,
		},
		{
			name: "relative private key",
			modify: func(c *Config) {
				c.Encryption.PrivateKey = "id_ed25519"
			},
			wantErr: true,
		},
		{
			name: "public key without private key",
			modify: func(c *Config) {
				c.Encryption.PublicKey = "/keys/id.pub"
			},
			wantErr: true,
		},
		{
			name: "invalid backend",
			modify: func(c *Config) {
				c.Encryption.Backend = "gpg"
			},
			wantErr: true,
		},
		{
			name: "invalid key derivation",
			modify: func(c *Config) {
				c.Encryption.KeyDerivation = "openssl"
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEnsureStoreDir(t *testing.T) {
	cfg := Default()
	cfg.Store.Dir = filepath.Join(t.TempDir(), "a", "slackline")

	if err := cfg.EnsureStoreDir(); err != nil {
		t.Fatalf("EnsureStoreDir failed: %v", err)
	}
	info, err := os.Stat(cfg.Store.Dir)
	if err != nil {
		t.Fatalf("store dir not created: %v", err)
	}
	if info.Mode().Perm() != 0o700 {
		t.Errorf("store dir mode = %v, want 0700", info.Mode().Perm())
	}
}

func TestCapabilities(t *testing.T) {
	encryption := Default().Encryption
	if _, ok := encryption.Tool().(*sealed.CommandTool); !ok {
		t.Errorf("command backend tool = %T", encryption.Tool())
	}
	if _, ok := encryption.Deriver().(*sshkey.KeygenDeriver); !ok {
		t.Errorf("ssh-keygen derivation = %T", encryption.Deriver())
	}

	encryption.Backend = NativeBackend
	encryption.KeyDerivation = NativeDerivation
	if _, ok := encryption.Tool().(sealed.NativeTool); !ok {
		t.Errorf("native backend tool = %T", encryption.Tool())
	}
	if _, ok := encryption.Deriver().(sshkey.NativeDeriver); !ok {
		t.Errorf("native derivation = %T", encryption.Deriver())
	}

	encryption.KeyDerivation = NoDerivation
	if encryption.Deriver() != nil {
		t.Error("none derivation should disable verification")
	}
}
