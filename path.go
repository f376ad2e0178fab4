// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rgssad

package rgssad

import (
	"fmt"
	"path"
	"strings"
)

// NormalizePath converts an archive/internal path to normalized slash-separated form.
// It trims spaces, accepts both "/" and "\", removes leading "./" and "/", and cleans "." segments.
func NormalizePath(raw string) string {
	raw = normalizePathForMatching(raw)
	raw = strings.TrimPrefix(raw, "/")
	raw = path.Clean("/" + raw)
	raw = strings.TrimPrefix(raw, "/")
	if raw == "." {
		return ""
	}

	return strings.TrimSuffix(raw, "/")
}

// DetectVersion picks archive version from file extension:
// ".rgss3a" is 3, ".rgss2a" is 2, anything else is 1.
func DetectVersion(fileName string) Version {
	lower := strings.ToLower(fileName)
	switch {
	case strings.HasSuffix(lower, ".rgss3a"):
		return Version3
	case strings.HasSuffix(lower, ".rgss2a"):
		return Version2
	default:
		return Version1
	}
}

// normalizePathForMatching normalizes user/input paths for matcher use.
func normalizePathForMatching(path string) string {
	path = strings.TrimSpace(path)
	path = strings.ReplaceAll(path, `\`, `/`)
	path = strings.TrimPrefix(path, "./")
	return path
}

// normalizeInputEntryPath converts pack input path to "/" form used in memory.
// Names are kept verbatim otherwise; empty, rooted and ".." paths are rejected.
func normalizeInputEntryPath(raw string) (string, error) {
	entryPath := strings.ReplaceAll(raw, `\`, `/`)
	if strings.TrimSpace(entryPath) == "" || strings.HasPrefix(entryPath, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidEntryPath, raw)
	}

	for _, part := range strings.Split(entryPath, "/") {
		if part == ".." {
			return "", fmt.Errorf("%w: %q", ErrInvalidEntryPath, raw)
		}
	}

	return entryPath, nil
}

// toStoredName converts "/" separators to "\" before the name is ciphered.
func toStoredName(name string) []byte {
	buf := []byte(name)
	for i := range buf {
		if buf[i] == '/' {
			buf[i] = '\\'
		}
	}

	return buf
}

// fromStoredName converts decoded "\" separators to "/" in place.
func fromStoredName(buf []byte) {
	for i := range buf {
		if buf[i] == '\\' {
			buf[i] = '/'
		}
	}
}
