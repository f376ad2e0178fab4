// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rgssad

package rgssad

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Reader provides read-only access to a parsed archive.
type Reader struct {
	// ra is the underlying random-access reader used for payload reads.
	ra io.ReaderAt
	// file is set when Reader owns an *os.File opened via Open.
	file *os.File
	// index maps stored entry path to position in entries; last duplicate wins.
	index map[string]int
	// entries stores parsed immutable entry metadata in table order.
	entries []EntryInfo
	// size is total source size in bytes.
	size int64
	// mu guards closed state and close operation.
	mu sync.Mutex
	// tableMagic is table generator state after parse.
	tableMagic Magic
	// version is the header version byte.
	version Version
	// closed reports whether Close was already called.
	closed bool
}

// Open opens archive file by path and parses its entry table.
func Open(path string) (*Reader, error) {
	return OpenWithOptions(path, ReaderOptions{})
}

// OpenWithOptions opens archive file by path and parses its entry table using explicit reader options.
func OpenWithOptions(path string, opts ReaderOptions) (*Reader, error) {
	f, size, err := openFileWithSize(path)
	if err != nil {
		return nil, err
	}

	r, err := NewReaderFromReaderAtWithOptions(f, size, opts)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	r.file = f
	return r, nil
}

// NewReaderFromReaderAt parses archive from existing ReaderAt and known size.
func NewReaderFromReaderAt(ra io.ReaderAt, size int64) (*Reader, error) {
	return NewReaderFromReaderAtWithOptions(ra, size, ReaderOptions{})
}

// NewReaderFromReaderAtWithOptions parses archive from existing ReaderAt and known size using explicit reader options.
func NewReaderFromReaderAtWithOptions(ra io.ReaderAt, size int64, opts ReaderOptions) (*Reader, error) {
	if ra == nil {
		return nil, ErrNilReader
	}

	r := &Reader{ra: ra, size: size}
	if err := r.parse(opts); err != nil {
		return nil, err
	}

	return r, nil
}

// Version returns archive format version.
func (r *Reader) Version() Version {
	if r == nil {
		return 0
	}

	return r.version
}

// TableMagic returns table generator state reached at the end of table parsing.
func (r *Reader) TableMagic() Magic {
	if r == nil {
		return 0
	}

	return r.tableMagic
}

// Size returns archive size in bytes.
func (r *Reader) Size() int64 {
	if r == nil {
		return 0
	}

	return r.size
}

// Entries returns a copy of parsed entries in table order.
func (r *Reader) Entries() []EntryInfo {
	if r == nil {
		return nil
	}

	entries := make([]EntryInfo, len(r.entries))
	copy(entries, r.entries)
	return entries
}

// Entry returns metadata of the named entry.
func (r *Reader) Entry(name string) (EntryInfo, error) {
	if r == nil {
		return EntryInfo{}, ErrNilReader
	}

	info := r.findEntryByName(name)
	if info == nil {
		return EntryInfo{}, fmt.Errorf("%w: %s", ErrEntryNotFound, name)
	}

	return *info, nil
}

// Close closes the underlying file if reader owns one.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}

	r.closed = true
	if r.file != nil {
		return r.file.Close()
	}

	return nil
}

// isClosed reports whether Close was called.
func (r *Reader) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.closed
}

// parse reads header and entry table from ReaderAt.
func (r *Reader) parse(opts ReaderOptions) error {
	version, err := parseHeader(r.ra)
	if err != nil {
		return err
	}

	table, err := parseTable(r.ra, r.size, version, opts.Strict)
	if err != nil {
		return err
	}

	r.version = version
	r.tableMagic = table.magic
	r.entries = table.entries
	r.index = make(map[string]int, len(table.entries))
	for i := range r.entries {
		r.index[r.entries[i].Path] = i
	}

	return nil
}

// openFileWithSize opens a file and returns a handle plus current size.
func openFileWithSize(path string) (*os.File, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open archive: %w", err)
	}

	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, fmt.Errorf("stat: %w", err)
	}

	return f, fi.Size(), nil
}
