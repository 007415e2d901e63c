// Package cli wires the hbquery commands together.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nonibytes/hbquery/internal/cli/commands"
	"github.com/nonibytes/hbquery/internal/cliopt"
	"github.com/nonibytes/hbquery/internal/cliutil"
	"github.com/nonibytes/hbquery/internal/config"
)

// Execute runs the CLI and returns an exit code.
func Execute(argv []string) int {
	return run(context.Background(), argv, os.Stdout, os.Stderr)
}

func run(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(argv)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return cliutil.ExitCode(err)
}

func newRootCmd() *cobra.Command {
	g := &cliopt.GlobalOptions{}
	root := &cobra.Command{
		Use:   "hbquery",
		Short: "Query HomeBank transactions",
		Long: `hbquery filters the transactions of a HomeBank (.xhb) ledger with a small
query language, and keeps frequently used queries as saved filters.

Example:
  hbquery search -q "category == 'Home:Food' AND date >= '01/2025'" --totals
  hbquery filters save pix "memo ~ 'pix'"
  hbquery search -f pix -a "AND amount > 100"`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(g.EnvFile)
			if err != nil {
				return err
			}
			g.Apply(cmd.Flags(), cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			g.Config = cfg

			logLevel := slog.LevelInfo
			if cfg.Debug {
				logLevel = slog.LevelDebug
			}
			g.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: logLevel,
			}))
			slog.SetDefault(g.Logger)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return cliutil.Usagef("unknown command %q for %q", args[0], cmd.CommandPath())
			}
			return cmd.Help()
		},
	}
	cliopt.BindGlobalFlags(root.PersistentFlags(), g)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &cliutil.UsageError{Err: err}
	})

	root.AddCommand(
		commands.NewSearchCmd(g),
		commands.NewFiltersCmd(g),
		commands.NewCheckCmd(g),
	)
	return root
}
