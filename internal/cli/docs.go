package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newDocsCommand(global *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "docs",
		Short: "List the documents in the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, closeStore, err := global.openStore()
			if err != nil {
				return err
			}
			defer closeStore()

			// Unlike lookup diagnostics, listing failures are reported.
			names, err := store.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("list documents: %w", err)
			}
			sort.Strings(names)

			out := cmd.OutOrStdout()
			for _, name := range names {
				fmt.Fprintln(out, name)
			}
			return nil
		},
	}
}
