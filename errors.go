// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rgssad

package rgssad

import "errors"

// Sentinel errors for archive operations. Use errors.Is in callers.
var (
	// ErrInvalidHeader means the file does not start with the "RGSSAD" signature.
	ErrInvalidHeader = errors.New("invalid archive: missing or bad header")
	// ErrInvalidVersion means the header version byte is not 1, 2 or 3.
	ErrInvalidVersion = errors.New("unsupported archive version (must be 1-3)")
	// ErrMagicReadFailed means the version 3 table seed could not be read.
	ErrMagicReadFailed = errors.New("magic number read failed")
	// ErrEntryNotFound means the entry is not found.
	ErrEntryNotFound = errors.New("entry not found")
	// ErrNilReader means the reader is nil.
	ErrNilReader = errors.New("reader is nil")
	// ErrNilWriter means the writer is nil.
	ErrNilWriter = errors.New("writer is nil")
	// ErrClosed means the reader, writer or resource is already closed.
	ErrClosed = errors.New("archive already closed")
	// ErrWriterFlushed means entries were added or flushed after the table was written.
	ErrWriterFlushed = errors.New("archive writer already flushed")
	// ErrSizeOverflow means a size, name length or offset does not fit uint32.
	ErrSizeOverflow = errors.New("size exceeds uint32 or 4 GiB archive limit")
	// ErrSizeMismatch means source stream length differs from declared entry size.
	ErrSizeMismatch = errors.New("source size differs from declared entry size")
	// ErrEmptyInputs means no inputs provided for pack.
	ErrEmptyInputs = errors.New("no inputs provided for pack")
	// ErrInvalidEntryPath means input entry path is empty or invalid after normalization.
	ErrInvalidEntryPath = errors.New("invalid entry path")
	// ErrDuplicateEntryPath means two inputs resolve to the same path (case-insensitive).
	ErrDuplicateEntryPath = errors.New("duplicate entry path")
	// ErrInvalidExtractPath means archive entry path is invalid for extraction destination.
	ErrInvalidExtractPath = errors.New("invalid extract path")
	// ErrInvalidFilter means filter rules or expression failed to compile.
	ErrInvalidFilter = errors.New("invalid entry filter")
	// ErrTruncatedTable means the entry table ends in the middle of a record (strict mode).
	ErrTruncatedTable = errors.New("truncated entry table")
	// ErrInvalidEntryName means a decoded entry name is not valid UTF-8 (strict mode).
	ErrInvalidEntryName = errors.New("invalid entry name encoding")
	// ErrInvalidEntryOffset means entry payload lies outside of archive bounds (strict mode).
	ErrInvalidEntryOffset = errors.New("invalid entry offset")
)
