// Copyright 2026 The Slackline Authors
// SPDX-License-Identifier: Apache-2.0

package tokenstore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/slackline-dev/slackline/lib/sealed"
	"github.com/slackline-dev/slackline/lib/sshkey"
	"github.com/slackline-dev/slackline/lib/storeerr"
	"github.com/slackline-dev/slackline/lib/workspace"
)

// Options configures a Store.
type Options struct {
	// Dir is the store directory.
	Dir string

	// Mode is the protection mode the caller's configuration selects.
	Mode Mode

	// Tool performs age encryption. Required only when credentials are
	// or will be encrypted.
	Tool sealed.Tool

	// Deriver verifies key pairs before Migrate encrypts to them. Nil
	// skips verification.
	Deriver sshkey.Deriver

	// PromptPublicKey is asked for a public key location when Migrate
	// finds no <key>.pub. Nil fails with storeerr.PublicKeyNotFound
	// instead.
	PromptPublicKey sealed.PromptFunc

	// Observer receives notices. Optional.
	Observer Observer

	// Logger receives debug output. Nil discards it.
	Logger *slog.Logger
}

// Store is the credential store facade.
type Store struct {
	mode      Mode
	loader    *Loader
	saver     *Saver
	encryptor *sealed.Encryptor
	validator *sshkey.Validator
	prompt    sealed.PromptFunc
	observer  Observer
	logger    *slog.Logger
}

// New returns a Store over options.Dir.
func New(options Options) *Store {
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	encryptor := &sealed.Encryptor{Tool: options.Tool, Logger: logger}
	return &Store{
		mode:      options.Mode,
		loader:    &Loader{Dir: options.Dir, Encryptor: encryptor, Observer: options.Observer, Logger: logger},
		saver:     &Saver{Dir: options.Dir, Encryptor: encryptor, Logger: logger},
		encryptor: encryptor,
		validator: &sshkey.Validator{Deriver: options.Deriver, Logger: logger},
		prompt:    options.PromptPublicKey,
		observer:  options.Observer,
		logger:    logger,
	}
}

// Mode returns the protection mode the store reads and writes in. After
// a successful Migrate it is the migration's destination mode.
func (s *Store) Mode() Mode { return s.mode }

// Dir returns the store directory.
func (s *Store) Dir() string { return s.loader.Dir }

// Encryptor returns the encryptor the store uses.
func (s *Store) Encryptor() *sealed.Encryptor { return s.encryptor }

// Lookup returns the named workspace.
func (s *Store) Lookup(ctx context.Context, name string) (workspace.Workspace, error) {
	credentials, err := s.load(ctx)
	if err != nil {
		return workspace.Workspace{}, err
	}
	if _, ok := credentials[name]; !ok {
		return workspace.Workspace{}, storeerr.New(storeerr.NotFound, "no workspace named %q", name)
	}
	return s.project(credentials, name)
}

// All returns every workspace, sorted by name.
func (s *Store) All(ctx context.Context) ([]workspace.Workspace, error) {
	credentials, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	workspaces := make([]workspace.Workspace, 0, len(credentials))
	for _, name := range credentials.Names() {
		entry, err := s.project(credentials, name)
		if err != nil {
			return nil, err
		}
		workspaces = append(workspaces, entry)
	}
	return workspaces, nil
}

// Names returns the workspace names, sorted.
func (s *Store) Names(ctx context.Context) ([]string, error) {
	credentials, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return credentials.Names(), nil
}

// Exists reports whether a workspace named name is stored.
func (s *Store) Exists(ctx context.Context, name string) (bool, error) {
	credentials, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	_, ok := credentials[name]
	return ok, nil
}

// Empty reports whether no workspaces are stored.
func (s *Store) Empty(ctx context.Context) (bool, error) {
	credentials, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	return len(credentials) == 0, nil
}

// Add validates the workspace and stores it, replacing any workspace of
// the same name. Invalid input fails before any file is read or written.
func (s *Store) Add(ctx context.Context, name, token, cookie string) error {
	entry, err := workspace.New(name, token, cookie)
	if err != nil {
		return err
	}

	credentials, err := s.load(ctx)
	if err != nil {
		return err
	}
	credentials[entry.Name()] = Record{Token: entry.Token(), Cookie: entry.Cookie()}
	s.logger.Debug("adding workspace", "workspace", entry.Name(), "class", string(entry.Class()))
	return s.saver.Save(ctx, credentials, s.mode)
}

// Remove deletes the named workspace and reports whether it existed.
// Nothing is written when it did not.
func (s *Store) Remove(ctx context.Context, name string) (bool, error) {
	credentials, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	if _, ok := credentials[name]; !ok {
		return false, nil
	}
	delete(credentials, name)
	s.logger.Debug("removing workspace", "workspace", name)
	if err := s.saver.Save(ctx, credentials, s.mode); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) load(ctx context.Context) (Credentials, error) {
	return s.loader.Load(ctx, s.mode)
}

// project validates the stored record for name. A record that fails
// validation was edited outside slackline and is reported as corruption.
func (s *Store) project(credentials Credentials, name string) (workspace.Workspace, error) {
	entry, err := credentials.workspace(name)
	if err != nil {
		path := plaintextPath(s.Dir())
		if s.mode.IsEncrypted() {
			path = encryptedPath(s.Dir())
		}
		return workspace.Workspace{}, storeerr.Wrap(storeerr.CorruptedStore, err,
			"stored workspace %q is invalid", name).WithPath(path)
	}
	return entry, nil
}

func (s *Store) notice(level Level, format string, args ...any) {
	message := fmt.Sprintf(format, args...)
	if level == Warning {
		s.observer.warn(message)
	} else {
		s.observer.info(message)
	}
}
