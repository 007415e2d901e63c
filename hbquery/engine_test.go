package hbquery_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/nonibytes/hbquery/hbquery"
	"github.com/nonibytes/hbquery/hbquery/ledger"
)

type EngineTestSuite struct {
	suite.Suite
	txs    []ledger.Transaction
	tables ledger.Tables
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

func (s *EngineTestSuite) SetupTest() {
	s.txs = []ledger.Transaction{
		{Memo: "Pix Joao", Amount: "180", CategoryKey: "7", Date: "738000", AccountKey: "1"},
		{Memo: "Rent", Amount: "900", CategoryKey: "7", Date: "737999", AccountKey: "2"},
	}
	s.tables = ledger.NewTables(
		[]ledger.Category{{Key: "3", Name: "Home"}, {Key: "5", Name: "Food", ParentKey: "3"}, {Key: "7", Name: "Transfers"}},
		[]ledger.Account{{Key: "1", Name: "Nubank", Type: 1}, {Key: "2", Name: "Bradesco", Type: 6}},
	)
}

func (s *EngineTestSuite) filter(q string) []ledger.Context {
	expr, err := hbquery.Compile(q)
	s.Require().NoError(err)
	out, err := hbquery.Collect(hbquery.Filter(expr, s.txs, s.tables))
	s.Require().NoError(err)
	return out
}

func (s *EngineTestSuite) TestFilter_PixAndAmount() {
	out := s.filter("memo ~ 'pix' AND amount >= 150")

	s.Require().Len(out, 1)
	s.Equal("pix joao", out[0].Memo)
	s.Equal("180", out[0].Amount)
	s.Equal("Transfers", out[0].Category)
	s.Equal("29/07/2021", out[0].Date)
}

func (s *EngineTestSuite) TestFilter_DateBeforeJanuary2025() {
	s.txs = append(s.txs,
		ledger.Transaction{Memo: "New year", Amount: "1", Date: "739252"},
		ledger.Transaction{Memo: "Eve", Amount: "1", Date: "739251"},
	)

	out := s.filter("date < '01/2025'")

	var memos []string
	for _, c := range out {
		memos = append(memos, c.Memo)
	}
	s.Equal([]string{"pix joao", "rent", "eve"}, memos)
}

func (s *EngineTestSuite) TestFilter_AccountMembership() {
	out := s.filter("account is ['Nubank','Itau']")

	s.Require().Len(out, 1)
	s.Equal("Nubank", out[0].Account)
	s.Equal("bank", out[0].AccType)
}

func (s *EngineTestSuite) TestFilter_CategoryNesting() {
	s.txs = append(s.txs, ledger.Transaction{Memo: "Lunch", Amount: "30", CategoryKey: "5", Date: "738001"})

	out := s.filter("category == 'Home:Food'")

	s.Require().Len(out, 1)
	s.Equal("Home:Food", out[0].Category)
}

func (s *EngineTestSuite) TestFilter_PreservesOrder() {
	out := s.filter("amount > 0")

	s.Require().Len(out, 2)
	s.Equal("pix joao", out[0].Memo)
	s.Equal("rent", out[1].Memo)
}

func (s *EngineTestSuite) TestFilter_Restartable() {
	expr, err := hbquery.Compile("amount > 0")
	s.Require().NoError(err)
	seq := hbquery.Filter(expr, s.txs, s.tables)

	first, err := hbquery.Collect(seq)
	s.Require().NoError(err)
	second, err := hbquery.Collect(seq)
	s.Require().NoError(err)
	s.Equal(first, second)
}

func (s *EngineTestSuite) TestFilter_Lazy() {
	expr, err := hbquery.Compile("amount > 0")
	s.Require().NoError(err)

	// Breaking out after one result must not touch the broken record.
	s.txs = append(s.txs, ledger.Transaction{Amount: "not a number"})
	n := 0
	for _, err := range hbquery.Filter(expr, s.txs, s.tables) {
		s.Require().NoError(err)
		n++
		break
	}
	s.Equal(1, n)
}

func (s *EngineTestSuite) TestFilter_FatalErrorAbortsRun() {
	s.txs = append(s.txs, ledger.Transaction{Amount: "abc"}, ledger.Transaction{Amount: "5"})
	expr, err := hbquery.Compile("amount > 0")
	s.Require().NoError(err)

	out, err := hbquery.Collect(hbquery.Filter(expr, s.txs, s.tables))
	s.Nil(out)
	s.True(hbquery.IsKind(err, hbquery.ErrNumericCoercion), "%v", err)
}

func (s *EngineTestSuite) TestFilter_ShortCircuitSkipsBadDate() {
	out := s.filter("amount = 1 AND date < 'whenever'")
	s.Empty(out)
}

func (s *EngineTestSuite) TestCompile_SyntaxError() {
	_, err := hbquery.Compile("memo ~")
	s.True(hbquery.IsKind(err, hbquery.ErrQuerySyntax), "%v", err)
}

func (s *EngineTestSuite) TestCompile_Idempotent() {
	a, err := hbquery.Compile("memo ~ 'pix' AND NOT (amount > 5 OR tags = 'x')")
	s.Require().NoError(err)
	b, err := hbquery.Compile("memo ~ 'pix' AND NOT (amount > 5 OR tags = 'x')")
	s.Require().NoError(err)
	s.Equal(a, b)
}

func (s *EngineTestSuite) TestMatches() {
	expr, err := hbquery.Compile("memo ~ 'rent'")
	s.Require().NoError(err)

	ok, err := hbquery.Matches(expr, ledger.BuildContext(s.txs[1], s.tables))
	s.Require().NoError(err)
	s.True(ok)
}

func (s *EngineTestSuite) TestFilterParallel_MatchesSequential() {
	var txs []ledger.Transaction
	for i := 0; i < 1000; i++ {
		txs = append(txs, ledger.Transaction{
			Memo:       fmt.Sprintf("op %d", i),
			Amount:     fmt.Sprintf("%d", i%300),
			Date:       fmt.Sprintf("%d", 739000+i),
			AccountKey: []string{"1", "2"}[i%2],
		})
	}
	expr, err := hbquery.Compile("amount >= 150 AND (account = 'nubank' OR date >= '2025')")
	s.Require().NoError(err)

	want, err := hbquery.Collect(hbquery.Filter(expr, txs, s.tables))
	s.Require().NoError(err)

	for _, workers := range []int{0, 1, 3, 8} {
		got, err := hbquery.FilterParallel(context.Background(), expr, txs, s.tables, workers)
		s.Require().NoError(err)
		s.Equal(want, got, "workers=%d", workers)
	}
}

func (s *EngineTestSuite) TestFilterParallel_Error() {
	txs := make([]ledger.Transaction, 500)
	for i := range txs {
		txs[i] = ledger.Transaction{Amount: "1"}
	}
	txs[321].Amount = "oops"
	expr, err := hbquery.Compile("amount > 0")
	s.Require().NoError(err)

	out, err := hbquery.FilterParallel(context.Background(), expr, txs, s.tables, 4)
	s.Nil(out)
	s.True(hbquery.IsKind(err, hbquery.ErrNumericCoercion), "%v", err)
}

func (s *EngineTestSuite) TestFilterParallel_Canceled() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	expr, err := hbquery.Compile("amount > 0")
	s.Require().NoError(err)

	_, err = hbquery.FilterParallel(ctx, expr, s.txs, s.tables, 2)
	s.ErrorIs(err, context.Canceled)
}
