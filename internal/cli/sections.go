package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSectionsCommand(global *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "sections FILE",
		Short: "List the numbered sections of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeStore, err := global.service(cmd)
			if err != nil {
				return err
			}
			defer closeStore()

			doc, err := svc.Outline(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			styles := NewStyles(IsColorEnabled(global.color, out))
			if len(doc.Headers) == 0 {
				fmt.Fprintln(out, styles.Dim.Render("no numbered sections in "+doc.Name))
				return nil
			}
			for _, h := range doc.Headers {
				indent := strings.Repeat("  ", h.Level-2)
				fmt.Fprintln(out, indent+styles.Ref.Render("§"+h.Ref)+" "+styles.Title.Render(h.Title))
			}
			return nil
		},
	}
}
