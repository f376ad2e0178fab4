// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rgssad

package rgssad

import (
	"fmt"
	"io"
)

// ReadVersion opens an archive and returns only its header version without parsing entry table.
func ReadVersion(path string) (Version, error) {
	f, _, err := openFileWithSize(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	version, err := ReadVersionFromReaderAt(f)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}

	return version, nil
}

// ReadVersionFromReaderAt validates archive header from a random-access source.
func ReadVersionFromReaderAt(ra io.ReaderAt) (Version, error) {
	if ra == nil {
		return 0, ErrNilReader
	}

	return parseHeader(ra)
}

// ListEntries opens an archive and returns entry metadata without payload reads.
func ListEntries(path string) ([]EntryInfo, error) {
	return ListEntriesWithOptions(path, ReaderOptions{})
}

// ListEntriesWithOptions opens an archive and returns entry metadata using reader options.
func ListEntriesWithOptions(path string, opts ReaderOptions) ([]EntryInfo, error) {
	r, err := OpenWithOptions(path, opts)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	return r.entries, nil
}
