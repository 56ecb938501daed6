// Package main provides the entry point for the notionflow CLI.
package main

import (
	"context"
	"os"

	"github.com/mrz1836/notionflow/internal/cli"
	"github.com/mrz1836/notionflow/internal/signal"
)

// Set via ldflags at build time.
//
//nolint:gochecknoglobals // build metadata
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// exitInterrupted is the conventional exit code after SIGINT.
const exitInterrupted = 130

func main() {
	os.Exit(run())
}

func run() int {
	h := signal.NewHandler(context.Background())
	defer h.Stop()
	defer cli.CloseLogFile()

	err := cli.Execute(h.Context(), cli.BuildInfo{Version: version, Commit: commit, Date: date})
	if h.Signal() != nil {
		return exitInterrupted
	}
	return cli.ExitCodeForError(err)
}
