package ledger

import (
	"slices"
	"strings"

	"github.com/nonibytes/hbquery/hbquery/query"
)

// accountTypes maps HomeBank account type codes to names.
var accountTypes = map[int]string{
	1: "bank",
	2: "cash",
	3: "asset",
	4: "credit card",
	5: "liability",
	6: "checking",
}

// AccountTypeName returns the name of an account type code, or "" when the
// code is not mapped.
func AccountTypeName(code int) string {
	return accountTypes[code]
}

// Context is the flat, resolved view of one transaction that queries are
// evaluated against. It is built once per record and never modified.
type Context struct {
	Date     string `json:"date"`
	Account  string `json:"account"`
	AccType  string `json:"acc_type"`
	Category string `json:"category"`
	Memo     string `json:"memo"`
	Amount   string `json:"amount"`
	Tags     string `json:"tags"`
}

// Value returns the value of f, or "" for an unsupported field.
func (c Context) Value(f query.Field) string {
	switch f {
	case query.FieldDate:
		return c.Date
	case query.FieldAccount:
		return c.Account
	case query.FieldAccType:
		return c.AccType
	case query.FieldCategory:
		return c.Category
	case query.FieldMemo:
		return c.Memo
	case query.FieldAmount:
		return c.Amount
	case query.FieldTags:
		return c.Tags
	default:
		return ""
	}
}

// BuildContext resolves tx against the lookup tables. Keys missing from the
// tables pass through unresolved; it never fails.
func BuildContext(tx Transaction, tables Tables) Context {
	c := Context{
		Memo:     strings.ToLower(tx.Memo),
		Amount:   tx.Amount,
		Category: resolveCategory(tx.CategoryKey, tables.Categories),
		Account:  tx.AccountKey,
		Tags:     tx.Tags,
	}

	if acc, ok := tables.Accounts[tx.AccountKey]; ok {
		c.Account = acc.Name
		c.AccType = AccountTypeName(acc.Type)
	}

	if n, ok := parseSerial(tx.Date); ok {
		c.Date = FormatOrdinal(n)
	}

	return c
}

// resolveCategory replaces key with the category name, prefixed by the
// parent's name. Only one parent level is walked.
func resolveCategory(key string, categories map[string]Category) string {
	cat, ok := categories[key]
	if !ok {
		return key
	}
	if cat.ParentKey == "" {
		return cat.Name
	}
	parent := cat.ParentKey
	if p, ok := categories[cat.ParentKey]; ok {
		parent = p.Name
	}
	return parent + ":" + cat.Name
}

// SortByDate orders contexts by date, oldest first. Contexts whose date does
// not parse keep their relative order at the end.
func SortByDate(ctxs []Context) {
	type keyed struct {
		ord int64
		ok  bool
	}
	keys := make(map[string]keyed, len(ctxs))
	key := func(c Context) keyed {
		if k, seen := keys[c.Date]; seen {
			return k
		}
		n, err := ParseDate(c.Date)
		k := keyed{ord: n, ok: err == nil}
		keys[c.Date] = k
		return k
	}

	slices.SortStableFunc(ctxs, func(a, b Context) int {
		ka, kb := key(a), key(b)
		switch {
		case ka.ok && !kb.ok:
			return -1
		case !ka.ok && kb.ok:
			return 1
		case !ka.ok && !kb.ok:
			return 0
		case ka.ord < kb.ord:
			return -1
		case ka.ord > kb.ord:
			return 1
		default:
			return 0
		}
	})
}
