// Package catalog stores named queries ("saved filters") so they can be
// reused and extended from the command line.
package catalog

import (
	"context"
	"log/slog"
	"strings"

	hqerrors "github.com/nonibytes/hbquery/hbquery/errors"
	"github.com/nonibytes/hbquery/hbquery/query"
	"github.com/nonibytes/hbquery/hbquery/storage/postgres"
	"github.com/nonibytes/hbquery/hbquery/storage/sqlite"
)

// Filter is a saved query.
type Filter struct {
	Name        string `json:"name" yaml:"name"`
	Query       string `json:"query" yaml:"query"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Store persists filters. List returns filters ordered by name; Get and
// Delete return a not_found error for unknown names.
type Store interface {
	List(ctx context.Context) ([]Filter, error)
	Get(ctx context.Context, name string) (Filter, error)
	Put(ctx context.Context, f Filter) error
	Delete(ctx context.Context, name string) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendSQLite3  = "sqlite3"
	BackendPostgres = "postgres"
)

type Options struct {
	Backend string
	// Path is the catalog file for the file backend and the database file
	// for the sqlite backends.
	Path           string
	PostgresDSN    string
	PostgresSchema string
	Logger         *slog.Logger
}

// Open selects a backend implementation.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case BackendFile, "":
		return NewFileStore(opts.Path), nil
	case BackendSQLite:
		return NewSQLStore(ctx, sqlite.New(opts.Path), opts.Logger)
	case BackendSQLite3:
		return NewSQLStore(ctx, sqlite.NewWithDriver(opts.Path, sqlite.DriverMattn), opts.Logger)
	case BackendPostgres:
		return NewSQLStore(ctx, postgres.New(opts.PostgresDSN, opts.PostgresSchema), opts.Logger)
	default:
		return nil, hqerrors.New(hqerrors.ErrConfig, "unknown catalog backend: "+opts.Backend)
	}
}

// Validate checks that f has a name and a query that parses.
func Validate(f Filter) error {
	if strings.TrimSpace(f.Name) == "" {
		return hqerrors.New(hqerrors.ErrConfig, "filter name is required")
	}
	if _, err := query.Parse(f.Query); err != nil {
		return err
	}
	return nil
}

// Compose appends extra to a saved query, grouping the saved part so extra
// binds to the whole of it.
func Compose(base, extra string) string {
	if strings.TrimSpace(extra) == "" {
		return base
	}
	return "(" + base + ") " + extra
}
