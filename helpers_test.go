// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rgssad

package rgssad

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// manualEntry is a raw entry for hand-built archive fixtures.
type manualEntry struct {
	name string
	data []byte
}

// buildLegacyArchive encodes version 1/2 archive bytes without the package writer.
func buildLegacyArchive(version Version, entries []manualEntry) []byte {
	out := []byte("RGSSAD\x00")
	out = append(out, byte(version))

	key := uint32(0xDEADCAFE)
	next := func() uint32 {
		old := key
		key = key*7 + 3
		return old
	}

	for _, e := range entries {
		out = binary.LittleEndian.AppendUint32(out, uint32(len(e.name))^next())
		for i := 0; i < len(e.name); i++ {
			c := e.name[i]
			if c == '/' {
				c = '\\'
			}
			out = append(out, c^byte(next()))
		}

		out = binary.LittleEndian.AppendUint32(out, uint32(len(e.data))^next())
		out = append(out, referenceXOR(e.data, Magic(key))...)
	}

	return out
}

// buildModernArchive encodes version 3 archive bytes without the package writer.
func buildModernArchive(seed uint32, entryMagic uint32, entries []manualEntry) []byte {
	out := []byte("RGSSAD\x00\x03")
	out = binary.LittleEndian.AppendUint32(out, seed)
	mask := seed*9 + 3

	offset := uint32(8 + 4 + 4)
	for _, e := range entries {
		offset += 16 + uint32(len(e.name))
	}

	for _, e := range entries {
		out = binary.LittleEndian.AppendUint32(out, offset^mask)
		out = binary.LittleEndian.AppendUint32(out, uint32(len(e.data))^mask)
		out = binary.LittleEndian.AppendUint32(out, entryMagic^mask)
		out = binary.LittleEndian.AppendUint32(out, uint32(len(e.name))^mask)
		for i := 0; i < len(e.name); i++ {
			c := e.name[i]
			if c == '/' {
				c = '\\'
			}
			out = append(out, c^byte(mask>>(8*(i%4))))
		}

		offset += uint32(len(e.data))
	}

	out = binary.LittleEndian.AppendUint32(out, mask)
	for _, e := range entries {
		out = append(out, referenceXOR(e.data, Magic(entryMagic))...)
	}

	return out
}

// writeFixture writes bytes to a temp file and returns its path.
func writeFixture(t testing.TB, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	return path
}

// writeTree creates files (slash-separated relative paths) under a new temp dir.
func writeTree(t testing.TB, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			t.Fatalf("mkdir %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}

	return root
}

// memInputs builds inputs from in-memory payloads in sorted path order.
func memInputs(files map[string]string) []Input {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	inputs := make([]Input, 0, len(names))
	for _, name := range names {
		data := files[name]
		inputs = append(inputs, Input{
			Path: name,
			Size: int64(len(data)),
			Open: func() (io.ReadCloser, error) {
				return io.NopCloser(strings.NewReader(data)), nil
			},
		})
	}

	return inputs
}

// packMemory packs inputs with version into memory and returns archive bytes.
func packMemory(t testing.TB, version Version, inputs []Input) []byte {
	t.Helper()

	var buf bytes.Buffer
	if _, err := Pack(context.Background(), &buf, version, inputs, PackOptions{}); err != nil {
		t.Fatalf("Pack v%d: %v", version, err)
	}

	return buf.Bytes()
}

// openBytes parses archive bytes with options.
func openBytes(t testing.TB, data []byte, opts ReaderOptions) *Reader {
	t.Helper()

	r, err := NewReaderFromReaderAtWithOptions(bytes.NewReader(data), int64(len(data)), opts)
	if err != nil {
		t.Fatalf("NewReaderFromReaderAtWithOptions: %v", err)
	}

	return r
}
