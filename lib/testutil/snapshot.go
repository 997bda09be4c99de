// Copyright 2026 The Slackline Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"testing"
	"time"
)

// FileSnapshot records the observable state of a path.
type FileSnapshot struct {
	Path    string
	Exists  bool
	Data    []byte
	Mode    fs.FileMode
	ModTime time.Time
}

// Snapshot captures the current state of path. A missing file is a valid
// snapshot with Exists false.
func Snapshot(t *testing.T, path string) FileSnapshot {
	t.Helper()
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return FileSnapshot{Path: path}
	}
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return FileSnapshot{Path: path, Exists: true, Data: data, Mode: info.Mode(), ModTime: info.ModTime()}
}

// AssertUnchanged fails the test if path no longer matches before.
func AssertUnchanged(t *testing.T, before FileSnapshot) {
	t.Helper()
	after := Snapshot(t, before.Path)
	if after.Exists != before.Exists {
		t.Fatalf("%s: exists changed from %v to %v", before.Path, before.Exists, after.Exists)
	}
	if !after.Exists {
		return
	}
	if !bytes.Equal(after.Data, before.Data) {
		t.Errorf("%s: content changed", before.Path)
	}
	if after.Mode != before.Mode {
		t.Errorf("%s: mode changed from %v to %v", before.Path, before.Mode, after.Mode)
	}
	if !after.ModTime.Equal(before.ModTime) {
		t.Errorf("%s: modification time changed", before.Path)
	}
}
