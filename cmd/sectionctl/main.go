// Package main is the entry point for the sectionctl CLI.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgallion1/refdocs/internal/cli"
)

// Build-time variables set via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	info := cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}

	rootCmd := cli.NewRootCommand(info)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// A diagnostic has already been printed; it only sets the exit code.
		if !errors.Is(err, cli.ErrDiagnostic) {
			logger := cli.NewLogger(os.Stderr, false)
			logger.Error("command failed", "error", err)
		}
		return 1
	}

	return 0
}
