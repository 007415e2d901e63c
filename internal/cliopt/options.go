package cliopt

import (
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/nonibytes/hbquery/internal/config"
)

// GlobalOptions are parsed once at the CLI root and passed to subcommands.
//
// NOTE: This is a separate package to avoid import cycles between the root
// command and per-command code.
type GlobalOptions struct {
	EnvFile        string
	Ledger         string
	CatalogBackend string
	Catalog        string
	PostgresDSN    string
	PostgresSchema string
	Debug          bool

	// Populated by the root command before any subcommand runs.
	Config *config.Config
	Logger *slog.Logger
}

func BindGlobalFlags(fs *pflag.FlagSet, g *GlobalOptions) {
	fs.StringVar(&g.EnvFile, "env", "", "env file (default is .env when present)")
	fs.StringVar(&g.Ledger, "ledger", config.DefaultLedger, "HomeBank .xhb file")

	fs.StringVar(&g.CatalogBackend, "catalog-backend", config.DefaultCatalogBackend, "saved filters backend: file|sqlite|sqlite3|postgres")
	fs.StringVar(&g.Catalog, "catalog", config.DefaultCatalog, "saved filters file (.json|.yaml) or sqlite database")

	fs.StringVar(&g.PostgresDSN, "pg-dsn", "", "postgres DSN")
	fs.StringVar(&g.PostgresSchema, "pg-schema", config.DefaultPostgresSchema, "postgres schema for the catalog")

	fs.BoolVar(&g.Debug, "debug", false, "enable debug logging")
}

// Apply copies flags the user set explicitly over cfg, so flags win over
// the environment.
func (g *GlobalOptions) Apply(fs *pflag.FlagSet, cfg *config.Config) {
	if fs.Changed("ledger") {
		cfg.Ledger = g.Ledger
	}
	if fs.Changed("catalog-backend") {
		cfg.CatalogBackend = g.CatalogBackend
	}
	if fs.Changed("catalog") {
		cfg.Catalog = g.Catalog
	}
	if fs.Changed("pg-dsn") {
		cfg.PostgresDSN = g.PostgresDSN
	}
	if fs.Changed("pg-schema") {
		cfg.PostgresSchema = g.PostgresSchema
	}
	if g.Debug {
		cfg.Debug = true
	}
}
