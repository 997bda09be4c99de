// Copyright 2026 The Slackline Authors
// SPDX-License-Identifier: Apache-2.0

package tokenstore

import (
	"errors"
	"io/fs"
	"os"

	"github.com/slackline-dev/slackline/lib/storeerr"
)

// FileStatus describes one credential file.
type FileStatus struct {
	Path   string      `json:"path"`
	Exists bool        `json:"exists"`
	Mode   fs.FileMode `json:"mode,omitempty"`
}

// Status describes the credential files on disk, without reading their
// content.
type Status struct {
	Dir       string     `json:"dir"`
	Plaintext FileStatus `json:"plaintext"`
	Encrypted FileStatus `json:"encrypted"`
}

// Both reports whether both files exist, the state an interrupted
// migration leaves behind.
func (s Status) Both() bool { return s.Plaintext.Exists && s.Encrypted.Exists }

// Status inspects the store directory.
func (s *Store) Status() (Status, error) {
	plaintext, err := statFile(plaintextPath(s.Dir()))
	if err != nil {
		return Status{}, err
	}
	encrypted, err := statFile(encryptedPath(s.Dir()))
	if err != nil {
		return Status{}, err
	}
	return Status{Dir: s.Dir(), Plaintext: plaintext, Encrypted: encrypted}, nil
}

func statFile(path string) (FileStatus, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return FileStatus{Path: path}, nil
	}
	if err != nil {
		return FileStatus{}, storeerr.Wrap(storeerr.Store, err, "checking %s", path).WithPath(path)
	}
	return FileStatus{Path: path, Exists: true, Mode: info.Mode().Perm()}, nil
}
