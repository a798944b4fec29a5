package cli

import (
	"github.com/spf13/cobra"
)

func newVersionCommand(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the version, commit hash, and build date of sectionctl.`,
		Run: func(cmd *cobra.Command, _ []string) {
			logger := NewLogger(cmd.OutOrStdout(), false)
			logger.Info("sectionctl",
				"version", info.Version,
				"commit", info.Commit,
				"built", info.Date,
			)
		},
	}
}
