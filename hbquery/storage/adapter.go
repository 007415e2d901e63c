// Package storage abstracts the SQL databases that can hold the saved-filter
// catalog.
package storage

import (
	"context"
	"database/sql"
)

type Backend string

const (
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
)

// CatalogVersion is written to the meta table by Migrate.
const CatalogVersion = "1"

// Adapter abstracts database-specific operations
type Adapter interface {
	Backend() Backend
	// CatalogID identifies the database for log lines.
	CatalogID() string

	Connect(ctx context.Context) (*sql.DB, error)
	Close() error

	// Migrate creates the catalog tables when missing and stamps the version.
	Migrate(ctx context.Context, db *sql.DB) error

	SQL() SQL
}

// SQL holds prepared SQL templates for catalog operations
type SQL struct {
	GetMeta string
	SetMeta string

	ListFilters  string
	GetFilter    string
	UpsertFilter string
	DeleteFilter string
}
