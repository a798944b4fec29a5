package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/dgallion1/refdocs/internal/rpc"
)

func newMCPCommand(global *globalFlags, info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the JSON-RPC tool protocol on stdin/stdout",
		Long: `Serve initialize, tools/list and tools/call on stdin and stdout, one JSON
message per line. Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, closeStore, err := global.service(cmd)
			if err != nil {
				return err
			}
			defer closeStore()

			serverInfo := rpc.DefaultServerInfo
			if info.Version != "" && info.Version != "dev" {
				serverInfo.Version = info.Version
			}
			srv := rpc.NewServer(svc, serverInfo, global.logger(cmd), nil)
			err = rpc.ServeStdio(cmd.Context(), srv, cmd.InOrStdin(), cmd.OutOrStdout())
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
