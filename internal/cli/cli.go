// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rgssad

// Package cli implements the rgssad command line tool.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/woozymasta/rgssad"
)

// AppVersion is reported by the version command.
const AppVersion = "0.1.4"

// Aliases for the CLI commands for convenience.
var (
	aliasesPack    = map[string]bool{"p": true, "-p": true, "pack": true, "--pack": true}
	aliasesList    = map[string]bool{"l": true, "-l": true, "ls": true, "list": true, "--list": true}
	aliasesUnpack  = map[string]bool{"x": true, "-x": true, "unpack": true, "--unpack": true}
	aliasesVersion = map[string]bool{"v": true, "-v": true, "version": true, "--version": true}
	aliasesHelp    = map[string]bool{"h": true, "-h": true, "help": true, "--help": true}
)

// errUsage marks wrong command line arguments.
var errUsage = errors.New("usage")

// Run parses argv (including program name) and dispatches to list, unpack or pack.
func Run(ctx context.Context, argv []string, stdout io.Writer, stderr io.Writer) error {
	if len(argv) < 2 || aliasesHelp[argv[1]] {
		printHelp(stdout)
		return nil
	}

	cmd, args := argv[1], argv[2:]
	switch {
	case aliasesVersion[cmd]:
		_, err := fmt.Fprintf(stdout, "version: %s\n", AppVersion)
		return err
	case aliasesList[cmd]:
		return runList(args, stdout, stderr)
	case aliasesUnpack[cmd]:
		return runUnpack(ctx, args, stdout, stderr)
	case aliasesPack[cmd]:
		return runPack(ctx, args, stdout)
	default:
		printHelp(stderr)
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

// IsUsage reports whether err was caused by wrong arguments.
func IsUsage(err error) bool {
	return errors.Is(err, errUsage)
}

// runList prints entry table of one archive.
func runList(args []string, stdout io.Writer, stderr io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(stderr)
	asJSON := fs.Bool("json", false, "print entries as JSON")
	strict := fs.Bool("strict", false, "fail on malformed entry table")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}

	if fs.NArg() != 1 {
		return fmt.Errorf("%w: rgssad list [-json] [-strict] <archive>", errUsage)
	}

	r, err := rgssad.OpenWithOptions(fs.Arg(0), rgssad.ReaderOptions{Strict: *strict})
	if err != nil {
		return fmt.Errorf("file parse failed, %w", err)
	}
	defer func() { _ = r.Close() }()

	entries := r.Entries()
	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	for _, e := range entries {
		if _, err := fmt.Fprintf(stdout, "%s: size=%d offset=%d magic=0x%08X\n", e.Path, e.Size, e.Offset, uint32(e.Magic)); err != nil {
			return err
		}
	}

	return nil
}

// runUnpack extracts entries matching filters into destination folder.
func runUnpack(ctx context.Context, args []string, stdout io.Writer, stderr io.Writer) error {
	fs := flag.NewFlagSet("unpack", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var globs stringList
	fs.Var(&globs, "glob", "include glob pattern (repeatable)")
	workers := fs.Int("workers", 1, "number of extraction workers (0 means GOMAXPROCS)")
	strict := fs.Bool("strict", false, "fail on malformed entry table")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}

	if fs.NArg() < 2 || fs.NArg() > 3 {
		return fmt.Errorf("%w: rgssad unpack [-glob PATTERN]... [-workers N] <archive> <folder> [<regex>]", errUsage)
	}

	filterOpts := rgssad.FilterOptions{Rules: rgssad.IncludeRules(globs...)}
	if fs.NArg() == 3 {
		filterOpts.Pattern = fs.Arg(2)
	}

	filter, err := rgssad.NewEntryFilter(filterOpts)
	if err != nil {
		return err
	}

	r, err := rgssad.OpenWithOptions(fs.Arg(0), rgssad.ReaderOptions{Strict: *strict})
	if err != nil {
		return fmt.Errorf("file parse failed, %w", err)
	}
	defer func() { _ = r.Close() }()

	return r.Extract(ctx, fs.Arg(1), rgssad.ExtractOptions{
		Entries:    filter.Filter(r.Entries()),
		MaxWorkers: *workers,
		FileMode:   rgssad.ExtractFileModeTruncate,
		OnEntryDone: func(entry rgssad.EntryInfo, _ int64, _ string) {
			_, _ = fmt.Fprintf(stdout, "Extracting: %s\n", entry.Path)
		},
	})
}

// runPack packs source folder into archive; version defaults from extension.
func runPack(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) < 2 || len(args) > 3 {
		return fmt.Errorf("%w: rgssad pack <folder> <archive> [<version>]", errUsage)
	}

	src, out := args[0], args[1]
	version := rgssad.DetectVersion(out)
	if len(args) == 3 {
		parsed, err := parseVersion(args[2])
		if err != nil {
			return err
		}

		version = parsed
	}

	info, err := os.Stat(src)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("source %s is not a directory", src)
	}

	_, err = rgssad.PackDir(ctx, out, version, src, rgssad.PackOptions{
		OnEntryDone: func(entry rgssad.PackEntryProgress) {
			_, _ = fmt.Fprintf(stdout, "Packing: %s\n", entry.Path)
		},
	})
	if err != nil {
		return fmt.Errorf("unable to write archive, %w", err)
	}

	return nil
}

// parseVersion parses version argument.
func parseVersion(raw string) (rgssad.Version, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 8)
	if err != nil || !rgssad.Version(n).Valid() {
		return 0, fmt.Errorf("%w: %q", rgssad.ErrInvalidVersion, raw)
	}

	return rgssad.Version(n), nil
}

// stringList collects repeated string flag values.
type stringList []string

// String returns joined values.
func (l *stringList) String() string {
	return strings.Join(*l, ",")
}

// Set appends one value.
func (l *stringList) Set(value string) error {
	*l = append(*l, value)
	return nil
}

// printHelp prints CLI usage and examples.
func printHelp(w io.Writer) {
	_, _ = fmt.Fprintln(w, `Extract rgssad/rgss2a/rgss3a files.

USAGE:
  rgssad (h|help)
  rgssad (v|version)
  rgssad (l|ls|list)   [-json] [-strict] <archive>
  rgssad (x|unpack)    [-glob PATTERN]... [-workers N] [-strict] <archive> <folder> [<regex>]
  rgssad (p|pack)      <folder> <archive> [<version>]

Pack version defaults from archive extension: .rgss3a is 3, .rgss2a is 2, otherwise 1.

EXAMPLES:
  rgssad list   Game.rgss3a
  rgssad unpack Game.rgss3a out '^Data/'
  rgssad unpack -glob 'Graphics/**' Game.rgssad out
  rgssad pack   Game Game.rgss2a`)
}
