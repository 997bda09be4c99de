// Copyright 2026 The Slackline Authors
// SPDX-License-Identifier: Apache-2.0

package atomicfile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/slackline-dev/slackline/lib/storeerr"
)

const (
	// RestrictedMode is applied when the caller asks for owner-only access.
	RestrictedMode os.FileMode = 0o600

	// DefaultMode is applied otherwise.
	DefaultMode os.FileMode = 0o644
)

// Filesystem hooks, replaced in tests to inject failures.
var (
	writeData  = func(file *os.File, data []byte) (int, error) { return file.Write(data) }
	syncFile   = func(file *os.File) error { return file.Sync() }
	renameFile = os.Rename
)

// WriteFile atomically replaces path with data. When restrict is set the
// file is readable and writable by the owner only.
func WriteFile(path string, data []byte, restrict bool) error {
	return replace(path, restrict, func(file *os.File) (*os.File, error) {
		if _, err := writeData(file, data); err != nil {
			return file, err
		}
		return file, nil
	})
}

// Produce atomically replaces path with whatever produce writes to the
// temporary path it is given. produce may truncate, rewrite, or replace
// the temporary file, but must leave a file at that path when it returns
// nil.
func Produce(path string, restrict bool, produce func(tempPath string) error) error {
	return replace(path, restrict, func(file *os.File) (*os.File, error) {
		if err := file.Close(); err != nil {
			return nil, err
		}
		if err := produce(file.Name()); err != nil {
			return nil, err
		}
		reopened, err := os.OpenFile(file.Name(), os.O_RDWR, 0)
		if err != nil {
			return nil, fmt.Errorf("reopening produced file: %w", err)
		}
		return reopened, nil
	})
}

// replace creates the temporary file, lets fill populate it, then
// restricts, syncs, closes, and renames it into place. fill returns the
// open handle to the populated file, which may differ from the one it was
// given, or nil when it has already closed it.
func replace(path string, restrict bool, fill func(*os.File) (*os.File, error)) error {
	dir := filepath.Dir(path)
	temp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return storeerr.Wrap(storeerr.Store, err, "creating temporary file for %s", path).WithPath(path)
	}
	tempName := temp.Name()

	fail := func(step string, cause error) error {
		if temp != nil {
			temp.Close()
		}
		os.Remove(tempName)
		// A producer's own classified failure is reported as is.
		if storeerr.KindOf(cause) != storeerr.Unknown {
			return cause
		}
		return storeerr.Wrap(storeerr.Store, cause, "%s %s", step, path).WithPath(path)
	}

	temp, err = fill(temp)
	if err != nil {
		return fail("writing", err)
	}

	mode := DefaultMode
	if restrict {
		mode = RestrictedMode
	}
	if err := temp.Chmod(mode); err != nil {
		return fail("restricting permissions of", err)
	}
	if err := syncFile(temp); err != nil {
		return fail("syncing", err)
	}
	if err := temp.Close(); err != nil {
		os.Remove(tempName)
		return storeerr.Wrap(storeerr.Store, err, "closing temporary file for %s", path).WithPath(path)
	}
	if err := renameFile(tempName, path); err != nil {
		os.Remove(tempName)
		return storeerr.Wrap(storeerr.Store, err, "renaming into %s", path).WithPath(path)
	}

	syncDir(dir)
	return nil
}

// syncDir flushes the directory entry created by the rename. Some
// filesystems reject fsync on directories; the rename itself has already
// succeeded, so the result is ignored.
func syncDir(dir string) {
	handle, err := os.Open(dir)
	if err != nil {
		return
	}
	handle.Sync()
	handle.Close()
}

// RemoveIfExists deletes path, treating a missing file as success.
func RemoveIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return storeerr.Wrap(storeerr.Store, err, "removing %s", path).WithPath(path)
	}
	return nil
}
