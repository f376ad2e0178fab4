// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rgssad

package rgssad

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// InputsFromDir walks root and returns one input per regular file in lexical order.
// Input paths are relative to root with "/" separators. Symlinks to files are
// followed, symlinks to directories are skipped.
func InputsFromDir(root string) ([]Input, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat source dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source %s is not a directory", root)
	}

	var inputs []Input
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}

		fi, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		if !fi.Mode().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", path, err)
		}

		inputs = append(inputs, fileInput(path, filepath.ToSlash(rel), fi.Size()))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk source dir: %w", err)
	}

	return inputs, nil
}

// FileInput returns input for file rel (slash-separated) under root.
func FileInput(root string, rel string) (Input, error) {
	path := filepath.Join(root, filepath.FromSlash(rel))
	fi, err := os.Stat(path)
	if err != nil {
		return Input{}, fmt.Errorf("stat input %s: %w", rel, err)
	}
	if !fi.Mode().IsRegular() {
		return Input{}, fmt.Errorf("%w: %s is not a regular file", ErrInvalidEntryPath, rel)
	}

	return fileInput(path, rel, fi.Size()), nil
}

// fileInput builds input that opens path lazily during flush.
func fileInput(path string, rel string, size int64) Input {
	return Input{
		Path: rel,
		Size: size,
		Open: func() (io.ReadCloser, error) {
			return os.Open(path) //nolint:gosec // path comes from caller-selected source tree
		},
	}
}
