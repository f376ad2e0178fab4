// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rgssad

package rgssad

import (
	"fmt"
	"io"
	"time"

	"github.com/woozymasta/pathrules"
)

// Internal binary layout and format limits.
const (
	headerSize      = 8  // "RGSSAD\x00" + version byte
	signatureSize   = 6  // "RGSSAD"
	seedSize        = 4  // version 3 table seed
	modernFixedSize = 16 // offset, size, magic, name length
	terminatorSize  = 4  // version 3 end-of-table record
)

// signature is the fixed archive file prefix.
const signature = "RGSSAD"

// Default packer tuning values.
const (
	DefaultWriteBuffer = 4 * 1024 * 1024
)

// Version is the archive format generation stored in the 8th header byte.
type Version uint8

// Known archive versions.
const (
	// Version1 is the RPG Maker XP archive (.rgssad).
	Version1 Version = 1
	// Version2 is the RPG Maker VX archive (.rgss2a), same layout as Version1.
	Version2 Version = 2
	// Version3 is the RPG Maker VX Ace archive (.rgss3a).
	Version3 Version = 3
)

// Valid reports whether v is a supported archive version.
func (v Version) Valid() bool {
	return v >= Version1 && v <= Version3
}

// Legacy reports whether v uses the interleaved version 1/2 layout.
func (v Version) Legacy() bool {
	return v == Version1 || v == Version2
}

// String returns the version number as text.
func (v Version) String() string {
	return fmt.Sprintf("%d", uint8(v))
}

// EntryInfo describes a single parsed archive entry.
type EntryInfo struct {
	// Path is the entry path with "/" separators.
	Path string `json:"path" yaml:"path"`
	// Offset is absolute byte offset of entry payload in archive file.
	Offset uint32 `json:"offset" yaml:"offset"`
	// Size is payload size in bytes (ciphered and plain sizes are equal).
	Size uint32 `json:"size" yaml:"size"`
	// Magic is keystream state at the first payload byte.
	Magic Magic `json:"magic" yaml:"magic"`
}

// Input describes one source stream to be packed into an archive entry.
type Input struct {
	// Open returns raw source stream for this entry.
	Open func() (io.ReadCloser, error) `json:"-" yaml:"-"`
	// Path is destination path inside archive.
	Path string `json:"path" yaml:"path"`
	// Size is exact source size in bytes. Both layouts store it before payload.
	Size int64 `json:"size" yaml:"size"`
}

// PackEntryProgress contains one completed entry write event from pack flow.
type PackEntryProgress struct {
	// Path is entry path written to archive.
	Path string `json:"path" yaml:"path"`
	// Offset is payload offset in resulting archive.
	Offset uint32 `json:"offset" yaml:"offset"`
	// Size is payload size in bytes.
	Size uint32 `json:"size" yaml:"size"`
	// Magic is keystream state used for payload.
	Magic Magic `json:"magic" yaml:"magic"`
}

// PackOptions configures pack behavior.
type PackOptions struct {
	// OnEntryDone is called after one entry is fully written to archive payload.
	OnEntryDone func(entry PackEntryProgress) `json:"-" yaml:"-"`
	// WriterBufferSize is buffered writer size in bytes.
	WriterBufferSize int `json:"writer_buffer_size,omitempty" yaml:"writer_buffer_size,omitempty"`
	// EntryMagic is the payload keystream seed for version 3 entries.
	// Zero means DefaultEntryMagic. Ignored for version 1 and 2.
	EntryMagic Magic `json:"entry_magic,omitempty" yaml:"entry_magic,omitempty"`
}

// PackResult contains pack output statistics.
type PackResult struct {
	// Entries is written entry metadata in table order.
	Entries []EntryInfo `json:"entries,omitempty" yaml:"entries,omitempty"`
	// WrittenEntries is number of entries written to archive.
	WrittenEntries int `json:"written_entries" yaml:"written_entries"`
	// DataSize is total payload bytes written.
	DataSize int64 `json:"data_size" yaml:"data_size"`
	// IndexSize is total header and table bytes written.
	IndexSize int64 `json:"index_size" yaml:"index_size"`
	// Duration is end-to-end flush duration.
	Duration time.Duration `json:"duration,omitempty" yaml:"duration,omitempty"`
}

// ReaderOptions configures reader parse behavior.
type ReaderOptions struct {
	// Strict reports malformed table tails as errors instead of ending the table there.
	Strict bool `json:"strict,omitempty" yaml:"strict,omitempty"`
}

// ExtractOptions configures Extract behavior.
type ExtractOptions struct {
	// OnEntryDone is called after one entry is fully written to disk.
	OnEntryDone func(entry EntryInfo, written int64, outputPath string) `json:"-" yaml:"-"`
	// FileMode controls output file creation policy.
	FileMode ExtractFileMode `json:"file_mode,omitempty" yaml:"file_mode,omitempty"`
	// Entries limits extraction to selected metadata list; nil means all parsed entries.
	Entries []EntryInfo `json:"-" yaml:"-"`
	// MaxWorkers is number of extraction workers (zero means GOMAXPROCS).
	MaxWorkers int `json:"max_workers,omitempty" yaml:"max_workers,omitempty"`
}

// ExtractFileMode controls output file open behavior during extraction.
type ExtractFileMode string

// Output file creation policies for extraction.
const (
	// ExtractFileModeAuto first tries create-only, then falls back to truncate for existing files.
	ExtractFileModeAuto ExtractFileMode = "auto"
	// ExtractFileModeTruncate opens existing files with truncate and creates missing files.
	ExtractFileModeTruncate ExtractFileMode = "truncate"
	// ExtractFileModeCreateOnly creates files only when absent and fails on existing files.
	ExtractFileModeCreateOnly ExtractFileMode = "create_only"
)

// FilterOptions configures entry selection for listing and extraction.
type FilterOptions struct {
	// Rules are ordered glob include/exclude rules; empty means all entries pass rule stage.
	Rules []pathrules.Rule `json:"rules,omitempty" yaml:"rules,omitempty"`
	// MatcherOptions control rule matching.
	MatcherOptions pathrules.MatcherOptions `json:"matcher_options,omitzero" yaml:"matcher_options,omitzero"`
	// Pattern is a regular expression matched against entry path; empty matches all.
	Pattern string `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	// Prefix keeps entries under directory prefix (or exact file path).
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
}

// applyDefaults fills zero-valued pack options with defaults.
func (opts *PackOptions) applyDefaults() {
	if opts.WriterBufferSize < 4096 {
		opts.WriterBufferSize = DefaultWriteBuffer
	}

	if opts.EntryMagic == 0 {
		opts.EntryMagic = DefaultEntryMagic
	}
}

// applyDefaults fills zero-valued extract options with defaults.
func (opts *ExtractOptions) applyDefaults() {
	if opts.FileMode == "" {
		opts.FileMode = ExtractFileModeAuto
	}
}

// applyDefaults fills zero-valued filter options with defaults.
func (opts *FilterOptions) applyDefaults() {
	if opts.MatcherOptions == (pathrules.MatcherOptions{}) {
		opts.MatcherOptions = pathrules.MatcherOptions{
			CaseInsensitive: true,
			DefaultAction:   pathrules.ActionExclude,
		}
	}

	if opts.MatcherOptions.DefaultAction == pathrules.ActionUnknown {
		opts.MatcherOptions.DefaultAction = pathrules.ActionExclude
	}
}
