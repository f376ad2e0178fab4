// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rgssad

package rgssad

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"io"
	"testing"
)

func TestParseHeaderErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		data []byte
		want error
	}{
		{name: "empty", data: nil, want: ErrInvalidHeader},
		{name: "short", data: []byte("RGS"), want: ErrInvalidHeader},
		{name: "bad signature", data: []byte("NOTRGS\x00\x01"), want: ErrInvalidHeader},
		{name: "version zero", data: []byte("RGSSAD\x00\x00"), want: ErrInvalidVersion},
		{name: "version four", data: []byte("RGSSAD\x00\x04"), want: ErrInvalidVersion},
		{name: "missing seed", data: []byte("RGSSAD\x00\x03\x01\x02"), want: ErrMagicReadFailed},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewReaderFromReaderAt(bytes.NewReader(tc.data), int64(len(tc.data)))
			if !errors.Is(err, tc.want) {
				t.Fatalf("err=%v, want %v", err, tc.want)
			}
		})
	}
}

func TestParseLegacyKnownBytes(t *testing.T) {
	t.Parallel()

	data, err := hex.DecodeString("5247535341440001fbcaadde94988996f1a44966bbe56a")
	if err != nil {
		t.Fatal(err)
	}

	r := openBytes(t, data, ReaderOptions{})
	entries := r.Entries()
	if len(entries) != 1 {
		t.Fatalf("len(entries)=%d, want 1", len(entries))
	}

	want := EntryInfo{Path: "a.txt", Offset: 21, Size: 2, Magic: 0x1FCC038D}
	if entries[0] != want {
		t.Fatalf("entry=%+v, want %+v", entries[0], want)
	}

	got, err := r.ReadEntry("a.txt")
	if err != nil {
		t.Fatalf("ReadEntry: %v", err)
	}
	if string(got) != "hi" {
		t.Fatalf("payload=%q, want hi", got)
	}

	if built := buildLegacyArchive(Version1, []manualEntry{{name: "a.txt", data: []byte("hi")}}); !bytes.Equal(built, data) {
		t.Fatalf("fixture builder produced %x", built)
	}
}

func TestParseLegacyEmptyTable(t *testing.T) {
	t.Parallel()

	r := openBytes(t, []byte("RGSSAD\x00\x02"), ReaderOptions{Strict: true})
	if r.Version() != Version2 {
		t.Fatalf("version=%d, want 2", r.Version())
	}
	if len(r.Entries()) != 0 {
		t.Fatalf("entries=%d, want 0", len(r.Entries()))
	}
	if r.TableMagic() != LegacyMagic {
		t.Fatalf("table magic=0x%08X, want 0x%08X", uint32(r.TableMagic()), uint32(LegacyMagic))
	}
}

func TestParseLegacyTruncation(t *testing.T) {
	t.Parallel()

	entries := []manualEntry{
		{name: "first.txt", data: []byte("first payload")},
		{name: "second.txt", data: []byte("second payload")},
	}
	full := buildLegacyArchive(Version1, entries)
	firstEnd := 8 + 4 + len("first.txt") + 4 + len("first payload")
	secondNameStart := firstEnd + 4
	secondSizeStart := secondNameStart + len("second.txt")
	secondDataStart := secondSizeStart + 4

	testCases := []struct {
		name       string
		cut        int
		strictWant error
	}{
		{name: "inside name length", cut: firstEnd + 2, strictWant: ErrTruncatedTable},
		{name: "inside size", cut: secondSizeStart + 3, strictWant: ErrTruncatedTable},
		{name: "before size", cut: secondSizeStart, strictWant: ErrTruncatedTable},
		{name: "inside payload", cut: secondDataStart + 5, strictWant: ErrInvalidEntryOffset},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			data := full[:tc.cut]
			r := openBytes(t, data, ReaderOptions{})
			got := r.Entries()
			if len(got) != 1 || got[0].Path != "first.txt" {
				t.Fatalf("entries=%+v, want only first.txt", got)
			}

			payload, err := r.ReadEntry("first.txt")
			if err != nil || string(payload) != "first payload" {
				t.Fatalf("ReadEntry=%q, %v", payload, err)
			}

			_, err = NewReaderFromReaderAtWithOptions(bytes.NewReader(data), int64(len(data)), ReaderOptions{Strict: true})
			if !errors.Is(err, tc.strictWant) {
				t.Fatalf("strict err=%v, want %v", err, tc.strictWant)
			}
		})
	}
}

func TestParseLegacyTruncatedNameIsHardError(t *testing.T) {
	t.Parallel()

	full := buildLegacyArchive(Version1, []manualEntry{{name: "long-entry-name.txt", data: []byte("x")}})
	data := full[:8+4+5]

	_, err := NewReaderFromReaderAt(bytes.NewReader(data), int64(len(data)))
	if !errors.Is(err, ErrTruncatedTable) || !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("err=%v, want truncated table with unexpected EOF", err)
	}
}

func TestParseLegacyInvalidNameStopsTable(t *testing.T) {
	t.Parallel()

	data := buildLegacyArchive(Version1, []manualEntry{
		{name: "ok.txt", data: []byte("ok")},
		{name: "bad\xff\xfe", data: []byte("bad")},
		{name: "after.txt", data: []byte("after")},
	})

	r := openBytes(t, data, ReaderOptions{})
	entries := r.Entries()
	if len(entries) != 1 || entries[0].Path != "ok.txt" {
		t.Fatalf("entries=%+v, want only ok.txt", entries)
	}

	_, err := NewReaderFromReaderAtWithOptions(bytes.NewReader(data), int64(len(data)), ReaderOptions{Strict: true})
	if !errors.Is(err, ErrInvalidEntryName) {
		t.Fatalf("strict err=%v, want ErrInvalidEntryName", err)
	}
}

func TestParseModernTerminator(t *testing.T) {
	t.Parallel()

	const seed = 0x12345678
	data := buildModernArchive(seed, 0xDEADCAFE, []manualEntry{
		{name: "a.txt", data: []byte("hi")},
		{name: `sub/b.txt`, data: []byte("world")},
	})

	terminatorAt := 8 + 4 + (16 + len("a.txt")) + (16 + len("sub/b.txt"))
	mask := uint32(TableMagic(seed))
	if got := binary.LittleEndian.Uint32(data[terminatorAt:]) ^ mask; got != 0 {
		t.Fatalf("terminator decodes to %d, want 0", got)
	}

	r := openBytes(t, data, ReaderOptions{Strict: true})
	entries := r.Entries()
	if len(entries) != 2 {
		t.Fatalf("len(entries)=%d, want 2", len(entries))
	}
	if entries[1].Path != "sub/b.txt" || entries[1].Magic != 0xDEADCAFE {
		t.Fatalf("entries[1]=%+v", entries[1])
	}
	if r.TableMagic() != TableMagic(seed) {
		t.Fatalf("table magic=0x%08X, want 0x%08X", uint32(r.TableMagic()), mask)
	}

	got, err := r.ReadEntry("sub/b.txt")
	if err != nil || string(got) != "world" {
		t.Fatalf("ReadEntry=%q, %v", got, err)
	}
}

func TestParseModernTruncatedTable(t *testing.T) {
	t.Parallel()

	full := buildModernArchive(7, 0xDEADCAFE, []manualEntry{
		{name: "a.txt", data: []byte("hi")},
		{name: "b.txt", data: []byte("world")},
	})
	cut := 8 + 4 + 16 + len("a.txt") + 2
	data := full[:cut]

	r := openBytes(t, data, ReaderOptions{})
	// First entry payload lies beyond the cut, so nothing is usable.
	if len(r.Entries()) != 0 {
		t.Fatalf("entries=%+v, want none", r.Entries())
	}

	_, err := NewReaderFromReaderAtWithOptions(bytes.NewReader(data), int64(len(data)), ReaderOptions{Strict: true})
	if !errors.Is(err, ErrInvalidEntryOffset) {
		t.Fatalf("strict err=%v, want ErrInvalidEntryOffset", err)
	}
}

func TestParseModernMissingTerminator(t *testing.T) {
	t.Parallel()

	// Seed only: the table ends before the first offset field.
	data := []byte("RGSSAD\x00\x03\x00\x00\x00\x00")

	r := openBytes(t, data, ReaderOptions{})
	if len(r.Entries()) != 0 {
		t.Fatalf("entries=%d, want 0", len(r.Entries()))
	}

	_, err := NewReaderFromReaderAtWithOptions(bytes.NewReader(data), int64(len(data)), ReaderOptions{Strict: true})
	if !errors.Is(err, ErrTruncatedTable) {
		t.Fatalf("strict err=%v, want ErrTruncatedTable", err)
	}
}

func TestModernTableSize(t *testing.T) {
	t.Parallel()

	size, err := modernTableSize([]EntryInfo{{Path: "a.txt"}, {Path: "sub/b.txt"}})
	if err != nil {
		t.Fatalf("modernTableSize: %v", err)
	}

	want := uint32(8 + 4 + 16 + 5 + 16 + 9 + 4)
	if size != want {
		t.Fatalf("size=%d, want %d", size, want)
	}
}

func TestCheckedAdd(t *testing.T) {
	t.Parallel()

	if _, err := checkedAdd(0xFFFFFFF0, 0x10, "x"); !errors.Is(err, ErrSizeOverflow) {
		t.Fatalf("err=%v, want ErrSizeOverflow", err)
	}

	got, err := checkedAdd(0xFFFFFFF0, 0x0F, "x")
	if err != nil || got != 0xFFFFFFFF {
		t.Fatalf("checkedAdd=%d, %v", got, err)
	}
}
