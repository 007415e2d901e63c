package catalog

import (
	"context"
	"database/sql"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	_ "modernc.org/sqlite"

	hqerrors "github.com/nonibytes/hbquery/hbquery/errors"
	"github.com/nonibytes/hbquery/hbquery/storage/postgres"
)

type SQLStoreTestSuite struct {
	suite.Suite
	ctx   context.Context
	store Store
}

func TestSQLStoreSuite(t *testing.T) {
	suite.Run(t, new(SQLStoreTestSuite))
}

func (s *SQLStoreTestSuite) SetupTest() {
	s.ctx = context.Background()
	store, err := Open(s.ctx, Options{
		Backend: BackendSQLite,
		Path:    filepath.Join(s.T().TempDir(), "catalog.db"),
	})
	s.Require().NoError(err)
	s.store = store
}

func (s *SQLStoreTestSuite) TearDownTest() {
	s.NoError(s.store.Close())
}

func (s *SQLStoreTestSuite) TestPutGet() {
	s.Require().NoError(s.store.Put(s.ctx, Filter{Name: "pix", Query: "memo ~ 'pix'", Description: "transfers"}))

	f, err := s.store.Get(s.ctx, "pix")
	s.Require().NoError(err)
	s.Equal(Filter{Name: "pix", Query: "memo ~ 'pix'", Description: "transfers"}, f)
}

func (s *SQLStoreTestSuite) TestPutOverwrites() {
	s.Require().NoError(s.store.Put(s.ctx, Filter{Name: "pix", Query: "memo ~ 'pix'"}))
	s.Require().NoError(s.store.Put(s.ctx, Filter{Name: "pix", Query: "memo ~ 'pix' AND amount > 10"}))

	f, err := s.store.Get(s.ctx, "pix")
	s.Require().NoError(err)
	s.Equal("memo ~ 'pix' AND amount > 10", f.Query)
}

func (s *SQLStoreTestSuite) TestListOrdered() {
	for _, name := range []string{"rent", "big", "pix"} {
		s.Require().NoError(s.store.Put(s.ctx, Filter{Name: name, Query: "amount > 0"}))
	}

	got, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	var names []string
	for _, f := range got {
		names = append(names, f.Name)
	}
	s.Equal([]string{"big", "pix", "rent"}, names)
}

func (s *SQLStoreTestSuite) TestListEmpty() {
	got, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Empty(got)
}

func (s *SQLStoreTestSuite) TestDelete() {
	s.Require().NoError(s.store.Put(s.ctx, Filter{Name: "pix", Query: "memo ~ 'pix'"}))
	s.Require().NoError(s.store.Delete(s.ctx, "pix"))

	_, err := s.store.Get(s.ctx, "pix")
	s.True(hqerrors.IsKind(err, hqerrors.ErrNotFound), "%v", err)

	err = s.store.Delete(s.ctx, "pix")
	s.True(hqerrors.IsKind(err, hqerrors.ErrNotFound), "%v", err)
}

func (s *SQLStoreTestSuite) TestPutRejectsInvalidQuery() {
	err := s.store.Put(s.ctx, Filter{Name: "bad", Query: "amount >"})
	s.True(hqerrors.IsKind(err, hqerrors.ErrQuerySyntax), "%v", err)
}

// pgMock drives the postgres templates through a sqlmock connection.
type pgMock struct {
	*postgres.Adapter
	db *sql.DB
}

func (m pgMock) Connect(ctx context.Context) (*sql.DB, error) { return m.db, nil }

func TestSQLStore_PostgresTemplates(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlt := postgres.SQLTemplates
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS meta").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(sqlt.SetMeta)).
		WithArgs("catalog_version", "1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	store, err := NewSQLStore(ctx, pgMock{Adapter: postgres.New("", "hbquery"), db: db}, nil)
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta(sqlt.UpsertFilter)).
		WithArgs("big", "amount > 100", "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, store.Put(ctx, Filter{Name: "big", Query: "amount > 100"}))

	mock.ExpectQuery(regexp.QuoteMeta(sqlt.ListFilters)).
		WillReturnRows(sqlmock.NewRows([]string{"name", "query", "description"}).
			AddRow("big", "amount > 100", ""))
	got, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Filter{{Name: "big", Query: "amount > 100"}}, got)

	mock.ExpectQuery(regexp.QuoteMeta(sqlt.GetFilter)).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"name", "query", "description"}))
	_, err = store.Get(ctx, "nope")
	assert.True(t, hqerrors.IsKind(err, hqerrors.ErrNotFound), "%v", err)

	mock.ExpectExec(regexp.QuoteMeta(sqlt.DeleteFilter)).
		WithArgs("nope").
		WillReturnResult(sqlmock.NewResult(0, 0))
	err = store.Delete(ctx, "nope")
	assert.True(t, hqerrors.IsKind(err, hqerrors.ErrNotFound), "%v", err)

	mock.ExpectClose()
	require.NoError(t, store.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_MigrateFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	mock.ExpectExec("CREATE TABLE").WillReturnError(assert.AnError)
	mock.ExpectClose()

	_, err = NewSQLStore(context.Background(), pgMock{Adapter: postgres.New("", "hbquery"), db: db}, nil)
	assert.True(t, hqerrors.IsKind(err, hqerrors.ErrSQL), "%v", err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}
