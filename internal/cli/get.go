package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dgallion1/refdocs/internal/lookup"
)

type getFlags struct {
	json bool
}

func newGetCommand(global *globalFlags) *cobra.Command {
	flags := &getFlags{}

	cmd := &cobra.Command{
		Use:   "get FILE REF",
		Short: "Print one section of a document",
		Long: `Print the section REF (for example 2 or 4.1.2) of document FILE.

FILE may omit the .md extension. When the document or section does not
exist the available documents or sections are listed instead and the
command exits non-zero.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeStore, err := global.service(cmd)
			if err != nil {
				return err
			}
			defer closeStore()

			res := svc.Lookup(cmd.Context(), args[0], args[1])
			out := cmd.OutOrStdout()

			if flags.json {
				data, err := res.MarshalJSON()
				if err != nil {
					return fmt.Errorf("encode result: %w", err)
				}
				fmt.Fprintln(out, string(data))
			} else {
				writeResult(out, res, NewStyles(IsColorEnabled(global.color, out)))
			}

			if res.IsError() {
				return ErrDiagnostic
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&flags.json, "json", false, "print the raw lookup result as JSON")

	return cmd
}

func writeResult(w io.Writer, res lookup.Result, styles *Styles) {
	if !res.IsError() {
		fmt.Fprintln(w, res.Content)
		return
	}

	fmt.Fprintln(w, styles.Error.Render(res.Error))
	alternatives, heading := res.AvailableSections, "available sections:"
	if res.Outcome == lookup.OutcomeDocumentNotFound {
		alternatives, heading = res.AvailableDocuments, "available files:"
	}
	if len(alternatives) == 0 {
		fmt.Fprintln(w, styles.Dim.Render("(none)"))
		return
	}
	fmt.Fprintln(w, styles.Dim.Render(heading))
	for _, item := range alternatives {
		fmt.Fprintln(w, "  "+styles.Item.Render(item))
	}
}
