// Package totals folds filtered contexts into counts and sums.
package totals

import (
	"strings"

	"github.com/shopspring/decimal"

	hqerrors "github.com/nonibytes/hbquery/hbquery/errors"
	"github.com/nonibytes/hbquery/hbquery/ledger"
)

// Totals summarises a set of matching transactions.
type Totals struct {
	Count      int                        `json:"transactions"`
	Amount     decimal.Decimal            `json:"amount"`
	ByCategory map[string]decimal.Decimal `json:"category"`
	ByAccount  map[string]decimal.Decimal `json:"account"`
}

// New returns empty totals ready for Add.
func New() *Totals {
	return &Totals{
		ByCategory: make(map[string]decimal.Decimal),
		ByAccount:  make(map[string]decimal.Decimal),
	}
}

// Add folds one context into t. The amount must be a decimal number.
func (t *Totals) Add(c ledger.Context) error {
	amount, err := decimal.NewFromString(strings.TrimSpace(c.Amount))
	if err != nil {
		return hqerrors.NumericCoercionError("amount", c.Amount)
	}

	t.Count++
	t.Amount = t.Amount.Add(amount)
	t.ByCategory[c.Category] = t.ByCategory[c.Category].Add(amount)
	t.ByAccount[c.Account] = t.ByAccount[c.Account].Add(amount)
	return nil
}

// Compute totals ctxs in one pass.
func Compute(ctxs []ledger.Context) (*Totals, error) {
	t := New()
	for _, c := range ctxs {
		if err := t.Add(c); err != nil {
			return nil, err
		}
	}
	return t, nil
}
