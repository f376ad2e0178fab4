// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rgssad

/*
Package rgssad reads and writes RGSS encrypted archives (.rgssad, .rgss2a,
.rgss3a) used by RPG Maker XP, VX and VX Ace. Entry names and payload are
obfuscated with a reversible XOR keystream; nothing here provides secrecy.

Layout summary (all integers little-endian):
  - header: "RGSSAD\x00" followed by version byte 1, 2 or 3;
  - versions 1 and 2: records (name length, name, size) interleaved with
    payload, table generator seeded with 0xDEADCAFE and advanced per word
    (and per byte for names), payload seeded with the table state reached
    after the size field;
  - version 3: plain seed, then records (offset, size, magic, name length,
    name) XORed with seed*9+3, terminated by a record with zero offset;
    payload follows the table and every entry carries its own seed.

# Reading

Open an archive and list or read entries:

	r, err := rgssad.Open("Game.rgss3a")
	if err != nil {
	    return err
	}
	defer r.Close()
	for _, e := range r.Entries() {
	    data, _ := r.ReadEntry(e.Path)
	    // use data
	}

The table is parsed once at open time. A malformed table tail ends the entry
list instead of failing; use ReaderOptions.Strict to get an error:

	r, err := rgssad.OpenWithOptions("Game.rgssad", rgssad.ReaderOptions{Strict: true})

# Extracting

Extract selected entries to a directory (parallel workers):

	entries, err := rgssad.FilterEntries(r.Entries(), rgssad.FilterOptions{
	    Rules: rgssad.IncludeRules("Graphics/**"),
	})
	if err != nil {
	    return err
	}
	if err := r.Extract(ctx, "out/", rgssad.ExtractOptions{
	    Entries:    entries,
	    MaxWorkers: 4,
	}); err != nil {
	    return err
	}

# Packing

Pack a directory tree; version usually follows the archive extension:

	res, err := rgssad.PackDir(ctx, "Game.rgss3a", rgssad.DetectVersion("Game.rgss3a"), "Game/", rgssad.PackOptions{
	    OnEntryDone: func(e rgssad.PackEntryProgress) {
	        // progress callback per written entry
	    },
	})

Or drive the writer directly with stream inputs of known size:

	w, err := rgssad.Create("Game.rgssad", rgssad.Version1, rgssad.PackOptions{})
	if err != nil {
	    return err
	}
	defer w.Close()
	if err := w.Add(rgssad.Input{Path: "Data/Map001.rxdata", Size: size, Open: open}); err != nil {
	    return err
	}
	if _, err := w.Flush(ctx); err != nil {
	    return err
	}
*/
package rgssad
