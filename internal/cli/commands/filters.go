package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nonibytes/hbquery/hbquery/catalog"
	"github.com/nonibytes/hbquery/internal/cliopt"
	"github.com/nonibytes/hbquery/internal/cliutil"
)

func openCatalog(ctx context.Context, g *cliopt.GlobalOptions) (catalog.Store, error) {
	cfg := g.Config
	return catalog.Open(ctx, catalog.Options{
		Backend:        cfg.CatalogBackend,
		Path:           cfg.Catalog,
		PostgresDSN:    cfg.PostgresDSN,
		PostgresSchema: cfg.PostgresSchema,
		Logger:         g.Logger,
	})
}

func NewFiltersCmd(g *cliopt.GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filters",
		Short: "Manage saved filters",
	}
	cmd.AddCommand(newFiltersListCmd(g), newFiltersSaveCmd(g), newFiltersDeleteCmd(g))
	return cmd
}

func newFiltersListCmd(g *cliopt.GlobalOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all saved filters",
		Args:  cliutil.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "json" {
				return cliutil.Usagef("unknown format %q (want text|json)", format)
			}
			ctx := cmd.Context()
			store, err := openCatalog(ctx, g)
			if err != nil {
				return err
			}
			defer store.Close()

			filters, err := store.List(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if format == "json" {
				return cliutil.PrintJSON(out, filters)
			}
			for _, f := range filters {
				fmt.Fprintf(out, "%s:\n    %s\n", f.Name, f.Query)
				if f.Description != "" {
					fmt.Fprintf(out, "    # %s\n", f.Description)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "output format: text|json")
	return cmd
}

func newFiltersSaveCmd(g *cliopt.GlobalOptions) *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "save NAME QUERY",
		Short: "Save or replace a named query",
		Args:  cliutil.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := openCatalog(ctx, g)
			if err != nil {
				return err
			}
			defer store.Close()

			f := catalog.Filter{Name: args[0], Query: args[1], Description: description}
			if err := store.Put(ctx, f); err != nil {
				return err
			}
			g.Logger.Info("filter saved", "name", f.Name)
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", f.Name)
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "what the filter is for")
	return cmd
}

func newFiltersDeleteCmd(g *cliopt.GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a saved filter",
		Args:  cliutil.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := openCatalog(ctx, g)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Delete(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}
