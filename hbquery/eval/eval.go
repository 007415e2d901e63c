// Package eval evaluates a parsed query against one transaction context.
package eval

import (
	"fmt"
	"strings"

	hqerrors "github.com/nonibytes/hbquery/hbquery/errors"
	"github.com/nonibytes/hbquery/hbquery/ledger"
	"github.com/nonibytes/hbquery/hbquery/query"
)

// Evaluate reports whether c satisfies expr. AND and OR are lazy: the right
// operand is not evaluated when the left one decides the result. The only
// errors are malformed dates and non-numeric values compared to numbers.
func Evaluate(expr query.Expr, c ledger.Context) (bool, error) {
	switch e := expr.(type) {
	case query.Not:
		v, err := Evaluate(e.Inner, c)
		if err != nil {
			return false, err
		}
		return !v, nil

	case query.And:
		left, err := Evaluate(e.Left, c)
		if err != nil || !left {
			return false, err
		}
		return Evaluate(e.Right, c)

	case query.Or:
		left, err := Evaluate(e.Left, c)
		if err != nil {
			return false, err
		}
		if left {
			return true, nil
		}
		return Evaluate(e.Right, c)

	case query.Cmp:
		return compare(e, c.Value(e.Field))

	default:
		return false, hqerrors.New(hqerrors.ErrQuerySyntax, fmt.Sprintf("unsupported expression %T", expr))
	}
}

// compare dispatches on field and literal kind: dates first, then numbers,
// then list membership, then plain strings.
func compare(cmp query.Cmp, value string) (bool, error) {
	switch {
	case cmp.Field == query.FieldDate:
		return compareDate(cmp, value)
	case cmp.Lit.Kind == query.LitNumber:
		return compareNumber(cmp, value)
	case cmp.Op == query.OpIs:
		return member(value, cmp.Lit), nil
	default:
		return compareString(cmp, value), nil
	}
}

func compareDate(cmp query.Cmp, value string) (bool, error) {
	text, ok := dateLiteralText(cmp.Lit)
	if !ok {
		return false, nil
	}
	lhs, err := ledger.ParseDate(value)
	if err != nil {
		return false, err
	}
	rhs, err := ledger.ParseDate(text)
	if err != nil {
		return false, err
	}
	return ordered(cmp.Op, lhs, rhs), nil
}

func compareNumber(cmp query.Cmp, value string) (bool, error) {
	lhs, err := toNumber(cmp.Field, value)
	if err != nil {
		return false, err
	}
	return ordered(cmp.Op, lhs, cmp.Lit.Num), nil
}

// member reports whether the lower-cased value is a substring of any list
// element. This is containment per element, not exact membership.
func member(value string, lit query.Literal) bool {
	if lit.Kind != query.LitList {
		return false
	}
	v := strings.ToLower(value)
	for _, item := range lit.List {
		if strings.Contains(strings.ToLower(item), v) {
			return true
		}
	}
	return false
}

func compareString(cmp query.Cmp, value string) bool {
	if cmp.Lit.Kind != query.LitString {
		return false
	}
	lhs := strings.ToLower(value)
	rhs := strings.ToLower(cmp.Lit.Str)
	if cmp.Op == query.OpContains {
		return strings.Contains(lhs, rhs)
	}
	return ordered(cmp.Op, lhs, rhs)
}

// ordered applies an equality or ordering operator. Other operators yield false.
func ordered[T int64 | float64 | string](op query.Op, lhs, rhs T) bool {
	switch op {
	case query.OpEq:
		return lhs == rhs
	case query.OpNe:
		return lhs != rhs
	case query.OpLt:
		return lhs < rhs
	case query.OpLte:
		return lhs <= rhs
	case query.OpGt:
		return lhs > rhs
	case query.OpGte:
		return lhs >= rhs
	default:
		return false
	}
}
