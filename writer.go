// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rgssad

package rgssad

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"sync"
	"time"
)

var (
	// defaultPackCopyBufferPool reuses payload copy buffers between flushes.
	defaultPackCopyBufferPool = sync.Pool{
		New: func() any {
			return new([packCopyBufferSize]byte)
		},
	}
)

const (
	// packCopyBufferSize is per-flush temporary buffer used by streaming payload copy.
	packCopyBufferSize = 64 * 1024
)

// Writer builds one archive. The header is written on creation; entries are
// collected by Add and the table with all payload is emitted by Flush.
// Writer is not safe for concurrent use.
type Writer struct {
	// out receives archive bytes after the header.
	out io.Writer
	// file is set when Writer owns an *os.File created via Create.
	file *os.File
	// seen maps lower-cased entry path to first added spelling.
	seen map[string]string
	// inputs are pending entries in insertion (table) order.
	inputs []Input
	// entries is written entry metadata, filled by Flush.
	entries []EntryInfo
	opts    PackOptions
	// magic is table generator state (seed before version 3 flush, mask after).
	magic   Magic
	version Version
	flushed bool
	closed  bool
}

// Create creates (or truncates) archive file at path and writes its header.
func Create(path string, version Version, opts PackOptions) (*Writer, error) {
	if !version.Valid() {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidVersion, version)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create archive file: %w", err)
	}

	w, err := NewWriter(f, version, opts)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	w.file = f
	return w, nil
}

// NewWriter writes archive header for version to out and returns writer for its entries.
func NewWriter(out io.Writer, version Version, opts PackOptions) (*Writer, error) {
	if out == nil {
		return nil, ErrNilWriter
	}

	if !version.Valid() {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidVersion, version)
	}

	opts.applyDefaults()
	if _, err := out.Write(appendHeader(nil, version)); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	w := &Writer{
		out:     out,
		opts:    opts,
		version: version,
		seen:    make(map[string]string),
	}
	if version.Legacy() {
		w.magic = LegacyMagic
	}

	return w, nil
}

// Version returns archive format version.
func (w *Writer) Version() Version {
	return w.version
}

// Add appends one input to the pending table. Order of Add calls is table order.
func (w *Writer) Add(in Input) error {
	if w.closed {
		return ErrClosed
	}

	if w.flushed {
		return ErrWriterFlushed
	}

	normalizedPath, err := normalizeInputEntryPath(in.Path)
	if err != nil {
		return err
	}

	if in.Size < 0 || in.Size > math.MaxUint32 {
		return fmt.Errorf("%w: entry %s size %d is out of uint32 range", ErrSizeOverflow, normalizedPath, in.Size)
	}

	key := strings.ToLower(normalizedPath)
	if existing, ok := w.seen[key]; ok {
		return fmt.Errorf("%w: %q conflicts with %q", ErrDuplicateEntryPath, normalizedPath, existing)
	}

	w.seen[key] = normalizedPath
	in.Path = normalizedPath
	w.inputs = append(w.inputs, in)
	return nil
}

// Len returns number of added entries.
func (w *Writer) Len() int {
	return len(w.inputs)
}

// Entries returns a copy of written entry metadata; empty before Flush.
func (w *Writer) Entries() []EntryInfo {
	entries := make([]EntryInfo, len(w.entries))
	copy(entries, w.entries)
	return entries
}

// Flush writes entry table and all payload. It can be called once.
// A failed flush leaves a partial archive behind.
func (w *Writer) Flush(ctx context.Context) (*PackResult, error) {
	if w.closed {
		return nil, ErrClosed
	}

	if w.flushed {
		return nil, ErrWriterFlushed
	}

	w.flushed = true
	startedAt := time.Now()

	if ctx == nil {
		ctx = context.Background()
	}

	bw := bufio.NewWriterSize(w.out, w.opts.WriterBufferSize)
	copyBuf, releaseCopyBuffer := acquirePackCopyBuffer()
	defer releaseCopyBuffer()

	var (
		res *PackResult
		err error
	)
	if w.version.Legacy() {
		res, err = w.flushLegacy(ctx, bw, copyBuf)
	} else {
		res, err = w.flushModern(ctx, bw, copyBuf)
	}
	if err != nil {
		_ = bw.Flush()
		return nil, err
	}

	if err := bw.Flush(); err != nil {
		return nil, fmt.Errorf("flush payloads: %w", err)
	}

	res.Entries = w.Entries()
	res.WrittenEntries = len(w.entries)
	res.Duration = time.Since(startedAt)
	return res, nil
}

// Close closes the underlying file if writer owns one. It does not flush.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}

	w.closed = true
	if w.file != nil {
		return w.file.Close()
	}

	return nil
}

// flushLegacy writes version 1/2 records, each followed by its payload.
func (w *Writer) flushLegacy(ctx context.Context, dst io.Writer, copyBuf []byte) (*PackResult, error) {
	res := &PackResult{IndexSize: headerSize}
	w.entries = make([]EntryInfo, 0, len(w.inputs))

	offset := uint32(headerSize)
	var record []byte
	for i := range w.inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		in := w.inputs[i]
		size := uint32(in.Size) //nolint:gosec // bounded by Add

		var err error
		record, err = appendLegacyRecord(record[:0], &w.magic, in.Path, size)
		if err != nil {
			return nil, err
		}

		recordLen := uint32(len(record)) //nolint:gosec // bounded by name length check
		if offset, err = checkedAdd(offset, recordLen, in.Path); err != nil {
			return nil, err
		}

		if _, err := dst.Write(record); err != nil {
			return nil, fmt.Errorf("write entry %s record: %w", in.Path, err)
		}

		entry := EntryInfo{Path: in.Path, Offset: offset, Size: size, Magic: w.magic}
		if offset, err = checkedAdd(offset, size, in.Path); err != nil {
			return nil, err
		}

		if err := w.writeEntryPayload(dst, in, entry, copyBuf); err != nil {
			return nil, err
		}

		res.IndexSize += int64(len(record))
		res.DataSize += int64(size)
	}

	return res, nil
}

// flushModern writes version 3 seed and table for all entries, then all payload.
func (w *Writer) flushModern(ctx context.Context, dst io.Writer, copyBuf []byte) (*PackResult, error) {
	planned := make([]EntryInfo, len(w.inputs))
	for i := range w.inputs {
		planned[i] = EntryInfo{
			Path:  w.inputs[i].Path,
			Size:  uint32(w.inputs[i].Size), //nolint:gosec // bounded by Add
			Magic: w.opts.EntryMagic,
		}
	}

	offset, err := modernTableSize(planned)
	if err != nil {
		return nil, err
	}

	for i := range planned {
		planned[i].Offset = offset
		if offset, err = checkedAdd(offset, planned[i].Size, planned[i].Path); err != nil {
			return nil, err
		}
	}

	table, mask, err := appendModernTable(nil, uint32(w.magic), planned)
	if err != nil {
		return nil, err
	}

	w.magic = mask
	if _, err := dst.Write(table); err != nil {
		return nil, fmt.Errorf("write entry table: %w", err)
	}

	res := &PackResult{IndexSize: int64(headerSize + len(table))}
	w.entries = make([]EntryInfo, 0, len(planned))
	for i := range planned {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err := w.writeEntryPayload(dst, w.inputs[i], planned[i], copyBuf); err != nil {
			return nil, err
		}

		res.DataSize += int64(planned[i].Size)
	}

	return res, nil
}

// writeEntryPayload streams one input through the entry cipher and records metadata.
func (w *Writer) writeEntryPayload(dst io.Writer, in Input, entry EntryInfo, copyBuf []byte) error {
	rc, err := openInputReader(in)
	if err != nil {
		return err
	}

	written, copyErr := copyCipheredBounded(dst, rc, int64(entry.Size), NewCipher(entry.Magic), copyBuf)
	closeErr := rc.Close()
	if copyErr != nil {
		return fmt.Errorf("stream input %s: %w", in.Path, copyErr)
	}

	if written != int64(entry.Size) {
		return fmt.Errorf("%w: input %s short read (%d/%d)", ErrSizeMismatch, in.Path, written, entry.Size)
	}

	if closeErr != nil {
		return fmt.Errorf("close input %s: %w", in.Path, closeErr)
	}

	w.entries = append(w.entries, entry)
	if w.opts.OnEntryDone != nil {
		w.opts.OnEntryDone(PackEntryProgress(entry))
	}

	return nil
}

// Pack writes an archive of version to out from the given inputs in slice order.
func Pack(ctx context.Context, out io.Writer, version Version, inputs []Input, opts PackOptions) (*PackResult, error) {
	if len(inputs) == 0 {
		return nil, ErrEmptyInputs
	}

	w, err := NewWriter(out, version, opts)
	if err != nil {
		return nil, err
	}

	for _, in := range inputs {
		if err := w.Add(in); err != nil {
			return nil, err
		}
	}

	return w.Flush(ctx)
}

// PackFile writes an archive of version to outPath from the given inputs.
func PackFile(ctx context.Context, outPath string, version Version, inputs []Input, opts PackOptions) (*PackResult, error) {
	if len(inputs) == 0 {
		return nil, ErrEmptyInputs
	}

	w, err := Create(outPath, version, opts)
	if err != nil {
		return nil, err
	}
	defer func() { _ = w.Close() }()

	for _, in := range inputs {
		if err := w.Add(in); err != nil {
			return nil, err
		}
	}

	res, err := w.Flush(ctx)
	if err != nil {
		return nil, err
	}

	if err := w.file.Sync(); err != nil {
		return nil, fmt.Errorf("sync archive file: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close archive file: %w", err)
	}

	return res, nil
}

// PackDir walks srcDir and writes every regular file into archive at outPath.
func PackDir(ctx context.Context, outPath string, version Version, srcDir string, opts PackOptions) (*PackResult, error) {
	inputs, err := InputsFromDir(srcDir)
	if err != nil {
		return nil, err
	}

	return PackFile(ctx, outPath, version, inputs, opts)
}

// acquirePackCopyBuffer returns reusable payload copy buffer and release callback.
func acquirePackCopyBuffer() ([]byte, func()) {
	arr := defaultPackCopyBufferPool.Get().(*[packCopyBufferSize]byte) //nolint:forcetypeassert // pool contains only fixed-size buffers
	buf := arr[:]

	return buf, func() {
		defaultPackCopyBufferPool.Put(arr)
	}
}

// openInputReader opens source stream for one input.
func openInputReader(in Input) (io.ReadCloser, error) {
	if in.Open == nil {
		return nil, fmt.Errorf("input %s: Open is nil", in.Path)
	}

	rc, err := in.Open()
	if err != nil {
		return nil, fmt.Errorf("open input %s: %w", in.Path, err)
	}

	return rc, nil
}

// copyCipheredBounded streams at most limit bytes from src through c into dst.
// A source longer than limit is reported as ErrSizeMismatch.
func copyCipheredBounded(dst io.Writer, src io.Reader, limit int64, c *Cipher, buf []byte) (int64, error) {
	if dst == nil {
		return 0, ErrNilWriter
	}
	if src == nil {
		return 0, ErrNilReader
	}
	if limit < 0 {
		return 0, ErrSizeOverflow
	}
	if len(buf) == 0 {
		buf = make([]byte, 32*1024)
	}

	var written int64
	emptyReads := 0
	for written < limit {
		chunkSize := len(buf)
		remaining := limit - written
		if int64(chunkSize) > remaining {
			chunkSize = int(remaining)
		}

		n, readErr := src.Read(buf[:chunkSize])
		if n > 0 {
			emptyReads = 0
			c.XORKeyStream(buf[:n], buf[:n])
			nw, writeErr := dst.Write(buf[:n])
			written += int64(nw)

			if writeErr != nil {
				return written, writeErr
			}
			if nw != n {
				return written, io.ErrShortWrite
			}
		}
		if n == 0 && readErr == nil {
			emptyReads++
			if emptyReads > 100 {
				return written, io.ErrNoProgress
			}

			continue
		}

		if readErr != nil {
			if readErr == io.EOF {
				break
			}

			return written, readErr
		}
	}

	// If we consumed exactly the limit, probe one extra byte to ensure source is not longer.
	if written == limit {
		var probe [1]byte
		n, err := src.Read(probe[:])
		if n > 0 {
			return written, fmt.Errorf("%w: source longer than %d bytes", ErrSizeMismatch, limit)
		}
		if err != nil && err != io.EOF {
			return written, err
		}
	}

	return written, nil
}
