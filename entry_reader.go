// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rgssad

package rgssad

import (
	"crypto/cipher"
	"fmt"
	"io"
	"strings"
)

// nopCloser wraps a reader and provides a no-op close.
type nopCloser struct {
	io.Reader
}

// Close closes nopCloser (no-op).
func (nopCloser) Close() error {
	return nil
}

// findEntryByName resolves one entry by stored path, then by normalized path.
func (r *Reader) findEntryByName(name string) *EntryInfo {
	idx, ok := r.index[strings.ReplaceAll(name, `\`, `/`)]
	if !ok {
		idx, ok = r.index[NormalizePath(name)]
	}
	if !ok {
		return nil
	}

	return &r.entries[idx]
}

// openEntryByInfo opens deciphering payload stream for already resolved entry metadata.
// Every stream owns its own cursor and keystream state.
func (r *Reader) openEntryByInfo(info *EntryInfo, name string) (io.ReadCloser, error) {
	if info == nil {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, name)
	}

	if int64(info.Offset)+int64(info.Size) > r.size {
		return nil, fmt.Errorf("%w: entry %s payload out of file bounds", ErrInvalidEntryOffset, name)
	}

	sr := io.NewSectionReader(r.ra, int64(info.Offset), int64(info.Size))
	return nopCloser{Reader: cipher.StreamReader{S: NewCipher(info.Magic), R: sr}}, nil
}

// OpenEntry opens named entry for reading.
// Returned stream yields deciphered content and ends after entry size bytes.
func (r *Reader) OpenEntry(name string) (io.ReadCloser, error) {
	if r == nil || r.ra == nil {
		return nil, ErrNilReader
	}

	if r.isClosed() {
		return nil, ErrClosed
	}

	return r.openEntryByInfo(r.findEntryByName(name), name)
}

// OpenEntryInfo opens entry stream by already resolved metadata.
func (r *Reader) OpenEntryInfo(info EntryInfo) (io.ReadCloser, error) {
	if r == nil || r.ra == nil {
		return nil, ErrNilReader
	}

	if r.isClosed() {
		return nil, ErrClosed
	}

	name := info.Path
	if name == "" {
		name = "<unknown>"
	}

	return r.openEntryByInfo(&info, name)
}

// ReadEntry reads full deciphered content of the named entry.
func (r *Reader) ReadEntry(name string) ([]byte, error) {
	rc, err := r.OpenEntry(name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	return io.ReadAll(rc)
}

// WriteEntryTo deciphers entry payload into dst and returns number of bytes written.
// Creating the destination (and its directory) is caller's job.
func (r *Reader) WriteEntryTo(info EntryInfo, dst io.Writer) (int64, error) {
	if dst == nil {
		return 0, ErrNilWriter
	}

	rc, err := r.OpenEntryInfo(info)
	if err != nil {
		return 0, err
	}
	defer func() { _ = rc.Close() }()

	written, err := copyExtractData(dst, rc, make([]byte, extractCopyBufferSize))
	if err != nil {
		return written, fmt.Errorf("write %s: %w", info.Path, err)
	}

	return written, nil
}
