package catalog

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	hqerrors "github.com/nonibytes/hbquery/hbquery/errors"
	"github.com/nonibytes/hbquery/hbquery/storage"
)

// SQLStore keeps filters in the filters table of a storage.Adapter database.
type SQLStore struct {
	adapter storage.Adapter
	db      *sql.DB
	sqlt    storage.SQL
	log     *slog.Logger
	now     func() time.Time
}

// NewSQLStore connects through adapter and migrates the catalog schema.
// A nil logger discards debug output.
func NewSQLStore(ctx context.Context, adapter storage.Adapter, logger *slog.Logger) (*SQLStore, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With(slog.String("backend", string(adapter.Backend())), slog.String("catalog", adapter.CatalogID()))

	db, err := adapter.Connect(ctx)
	if err != nil {
		return nil, hqerrors.Wrap(hqerrors.ErrSQL, "connect catalog", err)
	}
	logger.Debug("catalog connected")

	if err := adapter.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, hqerrors.Wrap(hqerrors.ErrSQL, "migrate catalog", err)
	}
	logger.Debug("catalog migrated", slog.String("version", storage.CatalogVersion))

	return &SQLStore{adapter: adapter, db: db, sqlt: adapter.SQL(), log: logger, now: time.Now}, nil
}

func (s *SQLStore) List(ctx context.Context) ([]Filter, error) {
	rows, err := s.db.QueryContext(ctx, s.sqlt.ListFilters)
	if err != nil {
		return nil, hqerrors.Wrap(hqerrors.ErrSQL, "list filters", err)
	}
	defer rows.Close()

	out := []Filter{}
	for rows.Next() {
		var f Filter
		if err := rows.Scan(&f.Name, &f.Query, &f.Description); err != nil {
			return nil, hqerrors.Wrap(hqerrors.ErrSQL, "list filters", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, hqerrors.Wrap(hqerrors.ErrSQL, "list filters", err)
	}
	return out, nil
}

func (s *SQLStore) Get(ctx context.Context, name string) (Filter, error) {
	var f Filter
	err := s.db.QueryRowContext(ctx, s.sqlt.GetFilter, name).Scan(&f.Name, &f.Query, &f.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return Filter{}, hqerrors.NotFoundError("filter " + name)
	}
	if err != nil {
		return Filter{}, hqerrors.Wrap(hqerrors.ErrSQL, "get filter", err)
	}
	return f, nil
}

func (s *SQLStore) Put(ctx context.Context, f Filter) error {
	if err := Validate(f); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, s.sqlt.UpsertFilter, f.Name, f.Query, f.Description, s.now().UnixMilli()); err != nil {
		return hqerrors.Wrap(hqerrors.ErrSQL, "put filter", err)
	}
	s.log.Debug("filter saved", slog.String("name", f.Name))
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, s.sqlt.DeleteFilter, name)
	if err != nil {
		return hqerrors.Wrap(hqerrors.ErrSQL, "delete filter", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return hqerrors.Wrap(hqerrors.ErrSQL, "delete filter", err)
	}
	if n == 0 {
		return hqerrors.NotFoundError("filter " + name)
	}
	s.log.Debug("filter deleted", slog.String("name", name))
	return nil
}

func (s *SQLStore) Close() error {
	err := s.db.Close()
	if aerr := s.adapter.Close(); err == nil {
		err = aerr
	}
	return err
}
