package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nonibytes/hbquery/hbquery"
	"github.com/nonibytes/hbquery/hbquery/catalog"
	hqerrors "github.com/nonibytes/hbquery/hbquery/errors"
	"github.com/nonibytes/hbquery/hbquery/export"
	"github.com/nonibytes/hbquery/hbquery/ledger"
	"github.com/nonibytes/hbquery/hbquery/query"
	"github.com/nonibytes/hbquery/hbquery/totals"
	"github.com/nonibytes/hbquery/internal/cliopt"
	"github.com/nonibytes/hbquery/internal/cliutil"
)

type searchFlags struct {
	query    string
	filter   string
	append   string
	columns  string
	csvPath  string
	format   string
	totals   bool
	sortDate bool
	workers  int
}

func NewSearchCmd(g *cliopt.GlobalOptions) *cobra.Command {
	var f searchFlags
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Filter ledger transactions with a query or a saved filter",
		Long: `Filter the transactions of a HomeBank ledger.

Queries compare the fields date, account, acc_type, category, memo, amount
and tags, combined with AND, OR, NOT and parentheses.

Example:
  hbquery search -q "memo ~ 'pix' AND amount >= 150"
  hbquery search -f groceries -a "AND date >= '01/2025'" -c date,memo,amount`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, g, f)
		},
	}
	fs := cmd.Flags()
	fs.StringVarP(&f.query, "query", "q", "", "query to filter transactions")
	fs.StringVarP(&f.filter, "filter", "f", "", "saved filter to apply")
	fs.StringVarP(&f.append, "append", "a", "", "conditions appended to the filter given by -f")
	fs.StringVarP(&f.columns, "columns", "c", "", "comma-separated columns to show")
	fs.StringVar(&f.csvPath, "csv", "", "write the result to a csv file")
	fs.StringVar(&f.format, "format", string(cliutil.FormatTable), "output format: table|json|csv")
	fs.BoolVar(&f.totals, "totals", false, "print transaction count and sums")
	fs.BoolVar(&f.sortDate, "sort-date", false, "order the result by date")
	fs.IntVar(&f.workers, "workers", 0, "evaluate in parallel with N workers (0 = sequential)")
	return cmd
}

func (f searchFlags) check() error {
	switch {
	case f.query == "" && f.filter == "":
		return cliutil.Usagef("one of -q or -f is required")
	case f.query != "" && f.filter != "":
		return cliutil.Usagef("-q and -f cannot be used together")
	case f.append != "" && f.filter == "":
		return cliutil.Usagef("-a requires -f")
	case f.workers < 0:
		return cliutil.Usagef("--workers must not be negative")
	}
	return nil
}

// resolveQuery returns the query text to run, expanding a saved filter.
func resolveQuery(ctx context.Context, g *cliopt.GlobalOptions, f searchFlags) (string, error) {
	if f.filter == "" {
		return f.query, nil
	}
	store, err := openCatalog(ctx, g)
	if err != nil {
		return "", err
	}
	defer store.Close()

	saved, err := store.Get(ctx, f.filter)
	if err != nil {
		return "", err
	}
	return catalog.Compose(saved.Query, f.append), nil
}

func runSearch(cmd *cobra.Command, g *cliopt.GlobalOptions, f searchFlags) error {
	if err := f.check(); err != nil {
		return err
	}
	format, err := cliutil.ParseOutputFormat(f.format)
	if err != nil {
		return err
	}
	cols, err := export.SelectColumns(f.columns)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	log := g.Logger
	start := time.Now()

	q, err := resolveQuery(ctx, g, f)
	if err != nil {
		return err
	}
	expr, err := hbquery.Compile(q)
	if err != nil {
		return err
	}
	log.Debug("query compiled", slog.String("canonical", query.Format(expr)))

	led, err := ledger.LoadXHB(g.Config.Ledger)
	if err != nil {
		return err
	}
	log.Debug("ledger loaded",
		slog.String("path", g.Config.Ledger),
		slog.Int("transactions", len(led.Transactions)),
		slog.Int("accounts", len(led.Tables.Accounts)),
		slog.Int("categories", len(led.Tables.Categories)),
	)

	workers := g.Config.Workers
	if cmd.Flags().Changed("workers") {
		workers = f.workers
	}
	var matched []ledger.Context
	if workers > 0 {
		matched, err = hbquery.FilterParallel(ctx, expr, led.Transactions, led.Tables, workers)
	} else {
		matched, err = hbquery.Collect(hbquery.Filter(expr, led.Transactions, led.Tables))
	}
	if err != nil {
		return err
	}
	if f.sortDate {
		ledger.SortByDate(matched)
	}

	out := cmd.OutOrStdout()
	machine := format != cliutil.FormatTable
	if f.csvPath != "" {
		if err := writeCSVFile(f.csvPath, cols, matched); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d rows to %s\n", len(matched), f.csvPath)
		machine = false
	} else if err := writeResult(out, format, cols, matched); err != nil {
		return err
	}

	if f.totals {
		tot, err := totals.Compute(matched)
		if err != nil {
			return err
		}
		// Keep machine-readable stdout clean.
		w := out
		if machine {
			w = cmd.ErrOrStderr()
		}
		fmt.Fprintln(w, "Totals:")
		if err := cliutil.PrintJSON(w, tot); err != nil {
			return err
		}
	}

	log.Info("search finished",
		slog.String("query", q),
		slog.Int("matched", len(matched)),
		slog.Int("workers", workers),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}

func writeResult(w io.Writer, format cliutil.OutputFormat, cols []query.Field, rows []ledger.Context) error {
	switch format {
	case cliutil.FormatJSON:
		return export.WriteJSON(w, cols, rows)
	case cliutil.FormatCSV:
		return export.WriteCSV(w, cols, rows)
	default:
		return export.WriteTable(w, cols, rows)
	}
}

func writeCSVFile(path string, cols []query.Field, rows []ledger.Context) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return hqerrors.Wrap(hqerrors.ErrIO, "create csv file", err)
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	return export.WriteCSV(file, cols, rows)
}
