// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rgssad

package rgssad

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestInputsFromDir(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{
		"b.txt":       "bb",
		"a/z.txt":     "z",
		"a/b/c.txt":   "ccc",
		"Data/x.data": "",
	})

	inputs, err := InputsFromDir(root)
	if err != nil {
		t.Fatalf("InputsFromDir: %v", err)
	}

	want := []struct {
		path string
		size int64
	}{
		{"Data/x.data", 0},
		{"a/b/c.txt", 3},
		{"a/z.txt", 1},
		{"b.txt", 2},
	}
	if len(inputs) != len(want) {
		t.Fatalf("inputs=%d, want %d", len(inputs), len(want))
	}

	for i := range want {
		if inputs[i].Path != want[i].path || inputs[i].Size != want[i].size {
			t.Fatalf("inputs[%d]=%s/%d, want %s/%d", i, inputs[i].Path, inputs[i].Size, want[i].path, want[i].size)
		}
	}

	rc, err := inputs[1].Open()
	if err != nil {
		t.Fatal(err)
	}
	data, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil || string(data) != "ccc" {
		t.Fatalf("content=%q, %v", data, err)
	}
}

func TestInputsFromDirRejectsFile(t *testing.T) {
	t.Parallel()

	path := writeFixture(t, "file.txt", []byte("x"))
	if _, err := InputsFromDir(path); err == nil {
		t.Fatal("expected error for non-directory source")
	}

	if _, err := InputsFromDir(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestPackDirRoundTrip(t *testing.T) {
	t.Parallel()

	files := map[string]string{"Graphics/t.png": "png", "Data/m.rvdata2": "data"}
	root := writeTree(t, files)
	archive := filepath.Join(t.TempDir(), "Game.rgss3a")

	if _, err := PackDir(context.Background(), archive, DetectVersion(archive), root, PackOptions{}); err != nil {
		t.Fatalf("PackDir: %v", err)
	}

	r, err := Open(archive)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = r.Close() }()

	if r.Version() != Version3 {
		t.Fatalf("version=%d, want 3", r.Version())
	}

	outDir := t.TempDir()
	if err := r.Extract(context.Background(), outDir, ExtractOptions{}); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	for rel, want := range files {
		got, err := os.ReadFile(filepath.Join(outDir, filepath.FromSlash(rel)))
		if err != nil || string(got) != want {
			t.Fatalf("%s=%q, %v; want %q", rel, got, err, want)
		}
	}
}
