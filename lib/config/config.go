// Copyright 2026 The Slackline Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/slackline-dev/slackline/lib/atomicfile"
	"github.com/slackline-dev/slackline/lib/sealed"
	"github.com/slackline-dev/slackline/lib/sshkey"
)

// EnvironmentVariable names the variable consulted by ResolvePath when no
// --config flag is given.
const EnvironmentVariable = "SLACKLINE_CONFIG"

// Backend selects the age implementation.
type Backend string

const (
	// CommandBackend runs the age executable.
	CommandBackend Backend = "command"
	// NativeBackend encrypts in-process.
	NativeBackend Backend = "native"
)

// KeyDerivation selects how key pairs are verified before migration.
type KeyDerivation string

const (
	// KeygenDerivation runs ssh-keygen -y. Verification is skipped when
	// ssh-keygen is not installed.
	KeygenDerivation KeyDerivation = "ssh-keygen"
	// NativeDerivation parses the private key in-process.
	NativeDerivation KeyDerivation = "native"
	// NoDerivation disables key pair verification.
	NoDerivation KeyDerivation = "none"
)

// Config is the slackline configuration.
type Config struct {
	// Store configures where credentials live.
	Store StoreConfig `yaml:"store"`

	// Encryption configures credential protection.
	Encryption EncryptionConfig `yaml:"encryption"`
}

// StoreConfig configures the credential store location.
type StoreConfig struct {
	// Dir holds tokens.json or tokens.age.
	// Default: ${XDG_CONFIG_HOME:-$HOME/.config}/slackline
	Dir string `yaml:"dir"`
}

// EncryptionConfig configures credential protection.
type EncryptionConfig struct {
	// PrivateKey is the SSH private key whose public half encrypts the
	// credential file. Empty means credentials are stored in plaintext.
	PrivateKey string `yaml:"private_key,omitempty"`

	// PublicKey overrides the conventional <private_key>.pub location.
	PublicKey string `yaml:"public_key,omitempty"`

	// Backend selects the age implementation: "command" or "native".
	// Default: command
	Backend Backend `yaml:"backend"`

	// AgeBinary is the age executable used by the command backend.
	// Default: age (found in PATH)
	AgeBinary string `yaml:"age_binary"`

	// KeyDerivation selects key pair verification: "ssh-keygen",
	// "native", or "none".
	// Default: ssh-keygen
	KeyDerivation KeyDerivation `yaml:"key_derivation"`

	// SSHKeygenBinary is the ssh-keygen executable.
	// Default: ssh-keygen (found in PATH)
	SSHKeygenBinary string `yaml:"ssh_keygen_binary"`
}

// DefaultDir returns ${XDG_CONFIG_HOME:-$HOME/.config}/slackline.
func DefaultDir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		homeDir, _ := os.UserHomeDir()
		base = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(base, "slackline")
}

// Default returns the configuration used when no file exists: plaintext
// storage in DefaultDir.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Dir: DefaultDir(),
		},
		Encryption: EncryptionConfig{
			Backend:         CommandBackend,
			AgeBinary:       "age",
			KeyDerivation:   KeygenDerivation,
			SSHKeygenBinary: "ssh-keygen",
		},
	}
}

// ResolvePath picks the configuration file: flagValue if set, then
// $SLACKLINE_CONFIG, then config.yaml in DefaultDir.
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if fromEnvironment := os.Getenv(EnvironmentVariable); fromEnvironment != "" {
		return fromEnvironment
	}
	return filepath.Join(DefaultDir(), "config.yaml")
}

// Load loads the configuration at path. A missing file yields Default.
func Load(path string) (*Config, error) {
	cfg, err := LoadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = Default()
		cfg.expandVariables()
		return cfg, nil
	}
	return cfg, err
}

// LoadFile loads configuration from a specific file path, which must
// exist. Fields absent from the file keep their Default values.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.expandVariables()
	return cfg, nil
}

// Save writes the configuration to path atomically, creating the parent
// directory if needed.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	return atomicfile.WriteFile(path, data, false)
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}

	c.Store.Dir = expandVars(c.Store.Dir, vars)
	c.Encryption.PrivateKey = expandVars(c.Encryption.PrivateKey, vars)
	c.Encryption.PublicKey = expandVars(c.Encryption.PublicKey, vars)
	c.Encryption.AgeBinary = expandVars(c.Encryption.AgeBinary, vars)
	c.Encryption.SSHKeygenBinary = expandVars(c.Encryption.SSHKeygenBinary, vars)
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Store.Dir == "" {
		errs = append(errs, fmt.Errorf("store.dir is required"))
	}

	if c.Encryption.PrivateKey != "" && !filepath.IsAbs(c.Encryption.PrivateKey) {
		errs = append(errs, fmt.Errorf("encryption.private_key must be an absolute path, got %q", c.Encryption.PrivateKey))
	}
	if c.Encryption.PublicKey != "" && c.Encryption.PrivateKey == "" {
		errs = append(errs, fmt.Errorf("encryption.public_key is set but encryption.private_key is empty"))
	}

	backends := []Backend{CommandBackend, NativeBackend}
	if !slices.Contains(backends, c.Encryption.Backend) {
		errs = append(errs, fmt.Errorf("encryption.backend must be one of: %v", backends))
	}
	derivations := []KeyDerivation{KeygenDerivation, NativeDerivation, NoDerivation}
	if !slices.Contains(derivations, c.Encryption.KeyDerivation) {
		errs = append(errs, fmt.Errorf("encryption.key_derivation must be one of: %v", derivations))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// EnsureStoreDir creates the store directory, owner-only, if it does not
// exist.
func (c *Config) EnsureStoreDir() error {
	if err := os.MkdirAll(c.Store.Dir, 0o700); err != nil {
		return fmt.Errorf("creating %s: %w", c.Store.Dir, err)
	}
	return nil
}

// Encrypted reports whether credentials are configured to be encrypted.
func (c *Config) Encrypted() bool {
	return c.Encryption.PrivateKey != ""
}

// Tool returns the age implementation selected by Backend.
func (e *EncryptionConfig) Tool() sealed.Tool {
	if e.Backend == NativeBackend {
		return sealed.NativeTool{}
	}
	return &sealed.CommandTool{Binary: e.AgeBinary}
}

// Deriver returns the key pair verification capability selected by
// KeyDerivation, or nil when verification is disabled.
func (e *EncryptionConfig) Deriver() sshkey.Deriver {
	switch e.KeyDerivation {
	case NativeDerivation:
		return sshkey.NativeDeriver{}
	case NoDerivation:
		return nil
	default:
		return &sshkey.KeygenDeriver{Binary: e.SSHKeygenBinary}
	}
}
