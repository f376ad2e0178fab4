// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rgssad

package rgssad

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

// extractCopyBufferSize defines per-worker buffer size for file copy during extraction.
const extractCopyBufferSize = 64 * 1024

// extractWorkItem stores one selected entry with prepared output relative paths.
type extractWorkItem struct {
	relPath string
	relDir  string
	entry   EntryInfo
}

// Extract writes selected entries from the archive to dstDir. Extraction is parallelized
// by MaxWorkers; every worker reads through its own section cursor. On failure it
// returns the first encountered error.
func (r *Reader) Extract(ctx context.Context, dstDir string, opts ExtractOptions) error {
	if r == nil || r.ra == nil {
		return ErrNilReader
	}

	if r.isClosed() {
		return ErrClosed
	}

	if ctx == nil {
		ctx = context.Background()
	}

	opts.applyDefaults()

	workers := opts.MaxWorkers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers < 1 {
		workers = 1
	}

	entries := r.entries
	if opts.Entries != nil {
		entries = opts.Entries
	}

	if len(entries) == 0 {
		return nil
	}

	dstRootAbs, err := filepath.Abs(dstDir)
	if err != nil {
		return fmt.Errorf("resolve output dir: %w", err)
	}

	if err := os.MkdirAll(dstRootAbs, 0o750); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	workItems, err := prepareExtractWorkItems(entries)
	if err != nil {
		return err
	}

	if len(workItems) == 0 {
		return nil
	}

	if err := prepareExtractDirs(dstRootAbs, workItems); err != nil {
		return err
	}

	if workers > len(workItems) {
		workers = len(workItems)
	}

	taskCh := make(chan extractWorkItem, len(workItems))
	errCh := make(chan error, len(workItems))
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Go(func() {
			copyBuf := make([]byte, extractCopyBufferSize)
			for task := range taskCh {
				err := r.extractPreparedEntry(ctx, dstRootAbs, task, opts.FileMode, copyBuf, opts.OnEntryDone)
				if err != nil {
					cancel()
				}

				errCh <- err
			}
		})
	}

	for _, task := range workItems {
		taskCh <- task
	}

	close(taskCh)
	wg.Wait()
	close(errCh)

	// Prefer the failure that triggered cancellation over follow-up ctx errors.
	var first error
	for err := range errCh {
		if err == nil {
			continue
		}

		if first == nil || (errors.Is(first, context.Canceled) && !errors.Is(err, context.Canceled)) {
			first = err
		}
	}

	return first
}

// prepareExtractWorkItems validates selected entries and prepares relative fs paths.
// Entries sharing an output path collapse into one work item holding the last
// entry, matching name lookup, so no two workers ever write the same file.
func prepareExtractWorkItems(entries []EntryInfo) ([]extractWorkItem, error) {
	workItems := make([]extractWorkItem, 0, len(entries))
	byPath := make(map[string]int, len(entries))
	for _, entry := range entries {
		if strings.TrimSpace(entry.Path) == "" {
			continue
		}

		normalizedPath, err := normalizeExtractEntryPath(entry.Path)
		if err != nil {
			return nil, fmt.Errorf("normalize entry path %s: %w", entry.Path, err)
		}

		relPath := filepath.FromSlash(normalizedPath)
		relDir := filepath.Dir(relPath)
		if relDir == "." || relDir == "" {
			relDir = ""
		}

		item := extractWorkItem{
			entry:   entry,
			relPath: relPath,
			relDir:  relDir,
		}
		if idx, ok := byPath[relPath]; ok {
			workItems[idx] = item
			continue
		}

		byPath[relPath] = len(workItems)
		workItems = append(workItems, item)
	}

	return workItems, nil
}

// prepareExtractDirs creates all unique parent directories needed by work items.
func prepareExtractDirs(dstRootAbs string, workItems []extractWorkItem) error {
	seen := make(map[string]struct{}, len(workItems))
	for _, task := range workItems {
		if task.relDir == "" {
			continue
		}

		dirPath := filepath.Join(dstRootAbs, task.relDir)
		if _, exists := seen[dirPath]; exists {
			continue
		}

		seen[dirPath] = struct{}{}
		if err := os.MkdirAll(dirPath, 0o750); err != nil {
			return fmt.Errorf("create output directory %s: %w", dirPath, err)
		}
	}

	return nil
}

// extractPreparedEntry writes one prepared work item to destination root.
func (r *Reader) extractPreparedEntry(
	ctx context.Context,
	dstRootAbs string,
	task extractWorkItem,
	fileMode ExtractFileMode,
	copyBuf []byte,
	onEntryDone func(entry EntryInfo, written int64, outputPath string),
) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	outPath := filepath.Join(dstRootAbs, task.relPath)

	rc, err := r.openEntryByInfo(&task.entry, task.entry.Path)
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()

	file, err := openExtractFile(outPath, fileMode)
	if err != nil {
		return fmt.Errorf("open %s: %w", task.entry.Path, err)
	}

	written, copyErr := copyExtractData(file, rc, copyBuf)
	closeErr := file.Close()
	if copyErr != nil {
		return fmt.Errorf("write %s: %w", task.entry.Path, copyErr)
	}

	if closeErr != nil {
		return fmt.Errorf("close %s: %w", task.entry.Path, closeErr)
	}

	if written != int64(task.entry.Size) {
		return fmt.Errorf("write %s: short payload (%d/%d): %w", task.entry.Path, written, task.entry.Size, io.ErrUnexpectedEOF)
	}

	if onEntryDone != nil {
		onEntryDone(task.entry, written, outPath)
	}

	return nil
}

// openExtractFile opens output path according to selected extract file mode.
func openExtractFile(path string, mode ExtractFileMode) (*os.File, error) {
	switch mode {
	case ExtractFileModeAuto:
		file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
		if err == nil {
			return file, nil
		}

		if !os.IsExist(err) {
			return nil, err
		}

		return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	case ExtractFileModeTruncate:
		return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	case ExtractFileModeCreateOnly:
		return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	default:
		return nil, fmt.Errorf("unknown extract file mode %q", mode)
	}
}

// copyExtractData copies one entry stream to output using fixed worker buffer.
func copyExtractData(dst io.Writer, src io.Reader, buf []byte) (int64, error) {
	if len(buf) == 0 {
		return 0, io.ErrShortBuffer
	}

	var total int64
	for {
		readN, readErr := src.Read(buf)
		if readN > 0 {
			writeN, writeErr := dst.Write(buf[:readN])
			total += int64(writeN)

			if writeErr != nil {
				return total, writeErr
			}

			if writeN != readN {
				return total, io.ErrShortWrite
			}
		}

		if readErr == nil {
			continue
		}

		if readErr == io.EOF {
			return total, nil
		}

		return total, readErr
	}
}

// normalizeExtractEntryPath normalizes entry path and rejects absolute/traversal inputs.
func normalizeExtractEntryPath(entryPath string) (string, error) {
	raw := entryPath
	if strings.TrimSpace(raw) == "" {
		return "", ErrInvalidExtractPath
	}
	if strings.ContainsRune(raw, 0) {
		return "", ErrInvalidExtractPath
	}
	if strings.HasPrefix(raw, `/`) || strings.HasPrefix(raw, `\`) {
		return "", ErrInvalidExtractPath
	}

	raw = strings.ReplaceAll(raw, `\`, `/`)
	if hasWindowsAbsDrivePrefix(raw) {
		return "", ErrInvalidExtractPath
	}

	parts := strings.Split(raw, `/`)
	cleanParts := make([]string, 0, len(parts))
	for _, part := range parts {
		switch part {
		case "", ".":
			continue
		case "..":
			return "", ErrInvalidExtractPath
		default:
			cleanParts = append(cleanParts, part)
		}
	}
	if len(cleanParts) == 0 {
		return "", ErrInvalidExtractPath
	}

	return strings.Join(cleanParts, `/`), nil
}

// hasWindowsAbsDrivePrefix reports whether path starts with drive-root prefix like C:/.
func hasWindowsAbsDrivePrefix(path string) bool {
	if len(path) < 3 {
		return false
	}

	return isASCIIAlpha(path[0]) && path[1] == ':' && path[2] == '/'
}

// isASCIIAlpha reports whether byte is ASCII latin letter.
func isASCIIAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
