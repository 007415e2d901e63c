package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nonibytes/hbquery/hbquery"
	"github.com/nonibytes/hbquery/hbquery/query"
	"github.com/nonibytes/hbquery/internal/cliopt"
	"github.com/nonibytes/hbquery/internal/cliutil"
)

// NewCheckCmd parses a query without loading the ledger and prints its
// canonical form. With --grouped every connective is parenthesized, which
// shows how precedence was applied.
func NewCheckCmd(g *cliopt.GlobalOptions) *cobra.Command {
	var grouped bool
	cmd := &cobra.Command{
		Use:   "check QUERY",
		Short: "Validate a query and print its canonical form",
		Args:  cliutil.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			expr, err := hbquery.Compile(args[0])
			if err != nil {
				return err
			}
			g.Logger.Debug("query parsed", "input", args[0])
			if grouped {
				fmt.Fprintln(cmd.OutOrStdout(), query.FormatGrouped(expr))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), query.Format(expr))
			return nil
		},
	}
	cmd.Flags().BoolVar(&grouped, "grouped", false, "parenthesize every AND and OR")
	return cmd
}
