package eval

import (
	"strconv"
	"strings"

	hqerrors "github.com/nonibytes/hbquery/hbquery/errors"
	"github.com/nonibytes/hbquery/hbquery/query"
)

// toNumber reads a context value as a float. Surrounding blanks are ignored.
func toNumber(field query.Field, value string) (float64, error) {
	n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, hqerrors.NumericCoercionError(field.String(), value)
	}
	return n, nil
}

// dateLiteralText returns the text of a literal compared against the date
// field. Numbers are rendered without exponent so `date >= 2024` reads as a
// year; lists have no date reading.
func dateLiteralText(lit query.Literal) (string, bool) {
	switch lit.Kind {
	case query.LitString:
		return lit.Str, true
	case query.LitNumber:
		return strconv.FormatFloat(lit.Num, 'f', -1, 64), true
	default:
		return "", false
	}
}
