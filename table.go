// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rgssad

package rgssad

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"unicode/utf8"
)

// readerTableBufferSize is a sequential read buffer for version 3 table parsing.
const readerTableBufferSize = 64 * 1024

var (
	// tableReaderPool reuses buffered readers for sequential table parsing.
	tableReaderPool = sync.Pool{
		New: func() any {
			return bufio.NewReaderSize(bytes.NewReader(nil), readerTableBufferSize)
		},
	}
)

// parsedTable is the result of one table parse pass.
type parsedTable struct {
	entries []EntryInfo
	// magic is table generator state after the last consumed field.
	magic Magic
}

// parseHeader validates the 8-byte archive header and returns version byte.
func parseHeader(ra io.ReaderAt) (Version, error) {
	var header [headerSize]byte
	n, err := ra.ReadAt(header[:], 0)
	if n < headerSize {
		if err == nil || errors.Is(err, io.EOF) {
			return 0, fmt.Errorf("%w: short header", ErrInvalidHeader)
		}

		return 0, fmt.Errorf("read header: %w", err)
	}

	if string(header[:signatureSize]) != signature {
		return 0, ErrInvalidHeader
	}

	version := Version(header[headerSize-1])
	if !version.Valid() {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidVersion, header[headerSize-1])
	}

	return version, nil
}

// parseTable dispatches to the version specific table parser.
func parseTable(ra io.ReaderAt, size int64, version Version, strict bool) (parsedTable, error) {
	if version.Legacy() {
		return parseLegacyTable(ra, size, strict)
	}

	return parseModernTable(ra, size, strict)
}

// endTable finishes table parsing on a soft stop; strict mode reports cause instead.
func endTable(table parsedTable, strict bool, cause error) (parsedTable, error) {
	if strict {
		return parsedTable{}, cause
	}

	return table, nil
}

// readField reads one fixed-size table field.
// It returns io.EOF only when nothing was read.
func readField(r io.Reader, buf []byte) error {
	_, err := io.ReadFull(r, buf)
	return err
}

// isShortRead reports whether err means the source ended inside a field.
func isShortRead(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

// parseLegacyTable walks version 1/2 records interleaved with payload.
func parseLegacyTable(ra io.ReaderAt, size int64, strict bool) (parsedTable, error) {
	sr := io.NewSectionReader(ra, headerSize, size-headerSize)
	table := parsedTable{
		entries: make([]EntryInfo, 0, estimateEntryCapacity(size)),
		magic:   LegacyMagic,
	}

	pos := int64(headerSize)
	var field [4]byte
	for {
		if err := readField(sr, field[:]); err != nil {
			if errors.Is(err, io.EOF) {
				return table, nil
			}
			if isShortRead(err) {
				return endTable(table, strict, fmt.Errorf("%w: entry name length at %d", ErrTruncatedTable, pos))
			}

			return parsedTable{}, fmt.Errorf("read entry name length: %w", err)
		}

		pos += int64(len(field))
		nameLen := binary.LittleEndian.Uint32(field[:]) ^ table.magic.Advance()
		if int64(nameLen) > size-pos {
			return parsedTable{}, fmt.Errorf("%w: read entry name at %d: %w", ErrTruncatedTable, pos, io.ErrUnexpectedEOF)
		}

		name := make([]byte, nameLen)
		if _, err := io.ReadFull(sr, name); err != nil {
			return parsedTable{}, fmt.Errorf("read entry name: %w", err)
		}

		pos += int64(nameLen)
		xorLegacyName(name, &table.magic)
		fromStoredName(name)
		if !utf8.Valid(name) {
			return endTable(table, strict, fmt.Errorf("%w: entry at %d", ErrInvalidEntryName, pos-int64(nameLen)))
		}

		if err := readField(sr, field[:]); err != nil {
			if isShortRead(err) {
				return endTable(table, strict, fmt.Errorf("%w: entry %s size", ErrTruncatedTable, name))
			}

			return parsedTable{}, fmt.Errorf("read entry size: %w", err)
		}

		pos += int64(len(field))
		dataSize := binary.LittleEndian.Uint32(field[:]) ^ table.magic.Advance()
		if pos > math.MaxUint32 || int64(dataSize) > size-pos {
			return endTable(table, strict, fmt.Errorf("%w: entry %s payload out of file bounds", ErrInvalidEntryOffset, name))
		}

		table.entries = append(table.entries, EntryInfo{
			Path:   string(name),
			Offset: uint32(pos), //nolint:gosec // bounded by check above
			Size:   dataSize,
			Magic:  table.magic,
		})

		if _, err := sr.Seek(int64(dataSize), io.SeekCurrent); err != nil {
			return parsedTable{}, fmt.Errorf("skip entry %s payload: %w", name, err)
		}

		pos += int64(dataSize)
	}
}

// parseModernTable reads version 3 seed and the table that precedes all payload.
func parseModernTable(ra io.ReaderAt, size int64, strict bool) (parsedTable, error) {
	sr := io.NewSectionReader(ra, headerSize, size-headerSize)
	br := tableReaderPool.Get().(*bufio.Reader) //nolint:forcetypeassert // pool contains only *bufio.Reader
	br.Reset(sr)
	defer func() {
		br.Reset(bytes.NewReader(nil))
		tableReaderPool.Put(br)
	}()

	var field [4]byte
	if err := readField(br, field[:]); err != nil {
		return parsedTable{}, fmt.Errorf("%w: %w", ErrMagicReadFailed, err)
	}

	table := parsedTable{
		entries: make([]EntryInfo, 0, estimateEntryCapacity(size)),
		magic:   TableMagic(binary.LittleEndian.Uint32(field[:])),
	}

	pos := int64(headerSize + seedSize)
	var record [modernFixedSize]byte
	for {
		if err := readField(br, record[0:4]); err != nil {
			if isShortRead(err) {
				return endTable(table, strict, fmt.Errorf("%w: missing table terminator", ErrTruncatedTable))
			}

			return parsedTable{}, fmt.Errorf("read entry offset: %w", err)
		}

		pos += 4
		offset := binary.LittleEndian.Uint32(record[0:4]) ^ uint32(table.magic)
		if offset == 0 {
			return table, nil
		}

		if err := readField(br, record[4:]); err != nil {
			if isShortRead(err) {
				return endTable(table, strict, fmt.Errorf("%w: entry record at %d", ErrTruncatedTable, pos-4))
			}

			return parsedTable{}, fmt.Errorf("read entry record: %w", err)
		}

		pos += modernFixedSize - 4
		dataSize := binary.LittleEndian.Uint32(record[4:8]) ^ uint32(table.magic)
		entryMagic := Magic(binary.LittleEndian.Uint32(record[8:12]) ^ uint32(table.magic))
		nameLen := binary.LittleEndian.Uint32(record[12:16]) ^ uint32(table.magic)
		if int64(nameLen) > size-pos {
			return parsedTable{}, fmt.Errorf("%w: read entry name at %d: %w", ErrTruncatedTable, pos, io.ErrUnexpectedEOF)
		}

		name := make([]byte, nameLen)
		if _, err := io.ReadFull(br, name); err != nil {
			return parsedTable{}, fmt.Errorf("read entry name: %w", err)
		}

		pos += int64(nameLen)
		xorModernName(name, table.magic)
		fromStoredName(name)
		if !utf8.Valid(name) {
			return endTable(table, strict, fmt.Errorf("%w: entry at %d", ErrInvalidEntryName, pos-int64(nameLen)))
		}

		if int64(offset)+int64(dataSize) > size {
			return endTable(table, strict, fmt.Errorf("%w: entry %s payload out of file bounds", ErrInvalidEntryOffset, name))
		}

		table.entries = append(table.entries, EntryInfo{
			Path:   string(name),
			Offset: offset,
			Size:   dataSize,
			Magic:  entryMagic,
		})
	}
}

// estimateEntryCapacity returns a conservative initial capacity for parsed entry metadata.
func estimateEntryCapacity(remainingBytes int64) int {
	if remainingBytes <= 0 {
		return 0
	}

	const (
		minCap = 16
		maxCap = 4096
		// remainingBytes includes payload region, so keep estimate intentionally conservative.
		avgEntryBytes = 16 * 1024
	)

	estimated := int(remainingBytes / avgEntryBytes)
	if estimated < minCap {
		return minCap
	}
	if estimated > maxCap {
		return maxCap
	}

	return estimated
}

// appendHeader appends the 8-byte archive header for version.
func appendHeader(dst []byte, version Version) []byte {
	dst = append(dst, signature...)
	return append(dst, 0, byte(version))
}

// appendLegacyRecord appends one ciphered version 1/2 record (name length, name, size).
// Table magic is advanced past the record; its final value seeds the entry payload.
func appendLegacyRecord(dst []byte, m *Magic, name string, size uint32) ([]byte, error) {
	nameLen, err := checkedNameLen(name)
	if err != nil {
		return dst, err
	}

	dst = binary.LittleEndian.AppendUint32(dst, nameLen^m.Advance())

	stored := toStoredName(name)
	xorLegacyName(stored, m)
	dst = append(dst, stored...)

	return binary.LittleEndian.AppendUint32(dst, size^m.Advance()), nil
}

// appendModernTable appends seed, ciphered version 3 records and terminator.
// It returns the table mask derived from seed.
func appendModernTable(dst []byte, seed uint32, entries []EntryInfo) ([]byte, Magic, error) {
	dst = binary.LittleEndian.AppendUint32(dst, seed)
	mask := TableMagic(seed)
	key := uint32(mask)

	for i := range entries {
		nameLen, err := checkedNameLen(entries[i].Path)
		if err != nil {
			return dst, mask, err
		}

		dst = binary.LittleEndian.AppendUint32(dst, entries[i].Offset^key)
		dst = binary.LittleEndian.AppendUint32(dst, entries[i].Size^key)
		dst = binary.LittleEndian.AppendUint32(dst, uint32(entries[i].Magic)^key)
		dst = binary.LittleEndian.AppendUint32(dst, nameLen^key)

		stored := toStoredName(entries[i].Path)
		xorModernName(stored, mask)
		dst = append(dst, stored...)
	}

	// Terminator is a zero offset under the mask.
	return binary.LittleEndian.AppendUint32(dst, key), mask, nil
}

// modernTableSize returns byte size of header, seed, records and terminator.
func modernTableSize(entries []EntryInfo) (uint32, error) {
	total := uint32(headerSize + seedSize)
	for i := range entries {
		nameLen, err := checkedNameLen(entries[i].Path)
		if err != nil {
			return 0, err
		}

		total, err = checkedAdd(total, modernFixedSize, entries[i].Path)
		if err != nil {
			return 0, err
		}

		total, err = checkedAdd(total, nameLen, entries[i].Path)
		if err != nil {
			return 0, err
		}
	}

	return checkedAdd(total, terminatorSize, "table terminator")
}

// checkedNameLen returns stored name length and rejects names longer than uint32.
func checkedNameLen(name string) (uint32, error) {
	if uint64(len(name)) > math.MaxUint32 {
		return 0, fmt.Errorf("%w: entry %.64s name length %d", ErrSizeOverflow, name, len(name))
	}

	return uint32(len(name)), nil //nolint:gosec // bounded by check above
}

// checkedAdd adds uint32 values and fails instead of wrapping.
func checkedAdd(a, b uint32, what string) (uint32, error) {
	if b > math.MaxUint32-a {
		return 0, fmt.Errorf("%w: %s would exceed 4 GiB", ErrSizeOverflow, what)
	}

	return a + b, nil
}
