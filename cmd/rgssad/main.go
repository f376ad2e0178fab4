// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rgssad

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/woozymasta/rgssad/internal/cli"
)

// main delegates argument parsing and command handling to the cli package.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cli.Run(ctx, os.Args, os.Stdout, os.Stderr)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "FAILED:", err)
		if cli.IsUsage(err) {
			os.Exit(2)
		}

		os.Exit(1)
	}
}
