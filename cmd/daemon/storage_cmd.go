// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ManuGH/vidshare/internal/persistence/sqlite"
)

func runStorageCLI(args []string) int {
	return storageCLI(args, os.Stdout, os.Stderr)
}

func storageCLI(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printStorageUsage(stdout)
		return 0
	}

	switch args[0] {
	case "verify":
		return runStorageVerify(args[1:], stdout, stderr)
	default:
		_, _ = fmt.Fprintf(stderr, "Unknown subcommand: %s\n\n", args[0])
		printStorageUsage(stderr)
		return 2
	}
}

func printStorageUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "Usage:")
	_, _ = fmt.Fprintln(w, "  vidshare storage verify --path PATH [--timeout 30s]")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "Subcommands:")
	_, _ = fmt.Fprintln(w, "  verify    Check catalogue database integrity")
}

func runStorageVerify(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("vidshare storage verify", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var path string
	var timeout time.Duration
	fs.StringVar(&path, "path", "", "Path to the SQLite database file")
	fs.DurationVar(&timeout, "timeout", 30*time.Second, "Verification timeout")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if path == "" {
		_, _ = fmt.Fprintln(stderr, "Error: --path is required")
		return 2
	}
	if _, err := os.Stat(path); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	_, _ = fmt.Fprintf(stderr, "Verifying integrity of %s...\n", path)
	db, err := sqlite.Open(path, sqlite.DefaultConfig())
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Verification interrupted: %v\n", err)
		return 1
	}
	defer func() { _ = db.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	issues, err := sqlite.QuickCheck(ctx, db)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Verification interrupted: %v\n", err)
		return 1
	}
	if issues != nil {
		_, _ = fmt.Fprintln(stderr, "CORRUPTION DETECTED")
		for _, issue := range issues {
			_, _ = fmt.Fprintf(stderr, "  - %s\n", issue)
		}
		return 1
	}

	_, _ = fmt.Fprintln(stdout, "integrity verified: ok")
	return 0
}
