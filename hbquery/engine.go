// Package hbquery filters HomeBank ledger transactions with a small boolean
// query language.
//
//	expr, err := hbquery.Compile("memo ~ 'pix' AND amount >= 150")
//	for c, err := range hbquery.Filter(expr, l.Transactions, l.Tables) { ... }
//
// A compiled expression is immutable and may be shared across goroutines.
package hbquery

import (
	"context"
	"iter"

	"golang.org/x/sync/errgroup"

	"github.com/nonibytes/hbquery/hbquery/eval"
	"github.com/nonibytes/hbquery/hbquery/ledger"
	"github.com/nonibytes/hbquery/hbquery/query"
)

// minChunk is the smallest number of records a parallel worker takes at once.
const minChunk = 64

// Compile parses query text into an expression tree.
func Compile(text string) (query.Expr, error) {
	return query.Parse(text)
}

// Matches reports whether c satisfies expr.
func Matches(expr query.Expr, c ledger.Context) (bool, error) {
	return eval.Evaluate(expr, c)
}

// Filter returns the contexts of the transactions matching expr, in input
// order. The sequence is lazy and may be ranged over more than once. A fatal
// evaluation error is yielded once and ends the sequence.
func Filter(expr query.Expr, txs []ledger.Transaction, tables ledger.Tables) iter.Seq2[ledger.Context, error] {
	return func(yield func(ledger.Context, error) bool) {
		for _, tx := range txs {
			c := ledger.BuildContext(tx, tables)
			ok, err := eval.Evaluate(expr, c)
			if err != nil {
				yield(ledger.Context{}, err)
				return
			}
			if ok && !yield(c, nil) {
				return
			}
		}
	}
}

// Collect drains seq. It returns no contexts if seq yields an error.
func Collect(seq iter.Seq2[ledger.Context, error]) ([]ledger.Context, error) {
	var out []ledger.Context
	for c, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// FilterParallel is Filter spread over up to workers goroutines. Results keep
// input order. The first error cancels the remaining work and is returned
// without partial results.
func FilterParallel(ctx context.Context, expr query.Expr, txs []ledger.Transaction, tables ledger.Tables, workers int) ([]ledger.Context, error) {
	if workers < 1 {
		workers = 1
	}

	chunk := (len(txs) + workers - 1) / workers
	if chunk < minChunk {
		chunk = minChunk
	}

	matched := make([]bool, len(txs))
	ctxs := make([]ledger.Context, len(txs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for lo := 0; lo < len(txs); lo += chunk {
		hi := min(lo+chunk, len(txs))
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				c := ledger.BuildContext(txs[i], tables)
				ok, err := eval.Evaluate(expr, c)
				if err != nil {
					return err
				}
				if ok {
					ctxs[i] = c
					matched[i] = true
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []ledger.Context
	for i, ok := range matched {
		if ok {
			out = append(out, ctxs[i])
		}
	}
	return out, nil
}
