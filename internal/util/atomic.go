// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small string and file helpers shared by the console.
package util

import (
	"fmt"
	"os"
	"path/filepath"
)

// Permissions for files that only the operator should read, such as the
// config file next to the history journal.
const (
	PrivateFilePerm os.FileMode = 0600
	PrivateDirPerm  os.FileMode = 0700
)

// AtomicWriteFile replaces path with data so readers, including the scene
// watcher, never observe a partial file. Parent directories are created
// with a permission derived from perm.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	return AtomicWriteFileWithDir(path, data, perm, dirPermFor(perm))
}

// AtomicWriteFileWithDir is AtomicWriteFile with an explicit permission for
// created parent directories.
func AtomicWriteFileWithDir(path string, data []byte, filePerm, dirPerm os.FileMode) error {
	target, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := writeTemp(dir, filepath.Base(target), data, filePerm)
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", target, err)
	}
	return nil
}

// writeTemp writes a synced copy of data next to the target, on the same
// filesystem so the rename is atomic, and returns its path.
func writeTemp(dir, base string, data []byte, perm os.FileMode) (string, error) {
	f, err := os.CreateTemp(dir, "."+base+".tmp-")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	name := f.Name()

	fail := func(op string, err error) (string, error) {
		f.Close()
		os.Remove(name)
		return "", fmt.Errorf("failed to %s temp file: %w", op, err)
	}
	if _, err := f.Write(data); err != nil {
		return fail("write", err)
	}
	if err := f.Sync(); err != nil {
		return fail("sync", err)
	}
	if err := f.Chmod(perm); err != nil {
		return fail("chmod", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	return name, nil
}

// dirPermFor gives private files private directories.
func dirPermFor(filePerm os.FileMode) os.FileMode {
	if filePerm&0077 == 0 {
		return PrivateDirPerm
	}
	return 0755
}
