// Package cli provides the Cobra command structure for sectionctl.
package cli

import (
	"errors"
	"io"
	"log/slog"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/dgallion1/refdocs/internal/blobstore"
	"github.com/dgallion1/refdocs/internal/config"
	"github.com/dgallion1/refdocs/internal/docstore"
	"github.com/dgallion1/refdocs/internal/lookup"
	"github.com/dgallion1/refdocs/internal/parser"
)

// ErrDiagnostic signals that a lookup returned a diagnostic instead of
// content. It only drives the exit code.
var ErrDiagnostic = errors.New("lookup returned a diagnostic")

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	dir              string
	connectionString string
	container        string
	ignoreFences     bool
	debug            bool
	color            string

	// cfg seeds flag defaults and store limits; cfgErr is reported when a
	// command needs a store.
	cfg    config.Config
	cfgErr error
}

// NewRootCommand creates the root sectionctl command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	flags := &globalFlags{}
	flags.cfg, flags.cfgErr = config.Load()
	if flags.cfgErr != nil {
		flags.cfg = config.Defaults()
	}
	cfg := flags.cfg

	rootCmd := &cobra.Command{
		Use:   "sectionctl",
		Short: "Look up numbered sections in reference documents",
		Long: `sectionctl reads markdown reference documents from a local directory or
an Azure Blob Storage container and prints individual numbered sections.

It resolves sections the same way the refdocs server does, so it is useful
for checking what a get_section call will return. The mcp subcommand serves
the full JSON-RPC tool protocol over stdin and stdout.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags.
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.dir, "dir", cfg.DocsDir, "read documents from this directory instead of blob storage")
	pf.StringVar(&flags.connectionString, "connection-string", cfg.ConnectionString, "Azure storage connection string")
	pf.StringVar(&flags.container, "container", cfg.Container, "blob container name")
	pf.BoolVar(&flags.ignoreFences, "ignore-fenced-code", cfg.IgnoreFencedCode, "ignore header-like lines inside code blocks")
	pf.BoolVar(&flags.debug, "debug", false, "enable debug logging")
	pf.StringVar(&flags.color, "color", "auto", "colorize output: auto, always, never")

	// Add subcommands.
	rootCmd.AddCommand(newGetCommand(flags))
	rootCmd.AddCommand(newSectionsCommand(flags))
	rootCmd.AddCommand(newDocsCommand(flags))
	rootCmd.AddCommand(newMCPCommand(flags, info))
	rootCmd.AddCommand(newVersionCommand(info))

	return rootCmd
}

// NewLogger creates the CLI logger writing to w.
func NewLogger(w io.Writer, debug bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: false,
		ReportCaller:    false,
	})
	if debug {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.InfoLevel)
	}
	return logger
}

// logger returns a slog.Logger backed by the charm logger on stderr.
func (f *globalFlags) logger(cmd *cobra.Command) *slog.Logger {
	return slog.New(NewLogger(cmd.ErrOrStderr(), f.debug))
}

// openStore selects the directory store when --dir is set and blob
// storage otherwise. The returned func releases the store.
func (f *globalFlags) openStore() (docstore.Store, func(), error) {
	if f.cfgErr != nil {
		return nil, nil, f.cfgErr
	}
	if f.dir != "" {
		return docstore.NewDir(f.dir, f.cfg.MaxDocumentBytes), func() {}, nil
	}
	if f.connectionString == "" {
		return nil, nil, errors.New("either --dir or --connection-string (AZURE_STORAGE_CONNECTION_STRING) is required")
	}
	client, err := blobstore.NewClient(f.connectionString, blobstore.Options{
		Container:   f.container,
		Timeout:     f.cfg.StoreTimeout,
		MaxBytes:    f.cfg.MaxDocumentBytes,
		MaxAttempts: f.cfg.StoreMaxAttempts,
	})
	if err != nil {
		return nil, nil, err
	}
	return client, client.Close, nil
}

// service builds a lookup service over the selected store.
func (f *globalFlags) service(cmd *cobra.Command) (*lookup.Service, func(), error) {
	store, closeStore, err := f.openStore()
	if err != nil {
		return nil, nil, err
	}
	svc := lookup.NewService(store, f.logger(cmd), nil, lookup.Config{
		MaxChars: f.cfg.MaxSectionChars,
		Parse:    parser.Options{IgnoreFencedCode: f.ignoreFences},
	})
	return svc, closeStore, nil
}
