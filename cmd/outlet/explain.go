package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/outlet-dev/outlet/internal/errors"
)

func explainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explain [code]",
		Short: "Describe an error code",
		Long: `Describe an error code reported by outlet, or list every code when
none is given.

Examples:
  outlet explain
  outlet explain E141`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()

			if len(args) == 0 {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "CODE\tCATEGORY\tMESSAGE")
				for _, code := range errors.GetAllCodes() {
					t, _ := errors.GetTemplate(code)
					fmt.Fprintf(tw, "%s\t%s\t%s\n", code, t.Category, t.Message)
				}
				return tw.Flush()
			}

			code := strings.ToUpper(args[0])
			t, ok := errors.GetTemplate(code)
			if !ok {
				return errors.New("E144").
					WithSuggestion("Run outlet explain to list the known codes")
			}
			fmt.Fprintf(w, "%s: %s (%s)\n\n", code, t.Message, t.Category)
			fmt.Fprintln(w, t.Detail)
			return nil
		},
	}
}
