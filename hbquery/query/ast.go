package query

import (
	"strconv"
	"strings"
)

// Expr represents a query expression
type Expr interface {
	isExpr()
}

// And represents a boolean AND of two expressions
type And struct {
	Left  Expr
	Right Expr
}

func (And) isExpr() {}

// Or represents a boolean OR of two expressions
type Or struct {
	Left  Expr
	Right Expr
}

func (Or) isExpr() {}

// Not represents a boolean NOT of an expression
type Not struct {
	Inner Expr
}

func (Not) isExpr() {}

// Cmp compares one context field against a literal. It is the only leaf.
type Cmp struct {
	Field Field
	Op    Op
	Lit   Literal
}

func (Cmp) isExpr() {}

// Field is one of the fixed transaction fields a query can reference.
type Field int

const (
	FieldDate Field = iota
	FieldAccount
	FieldAccType
	FieldCategory
	FieldMemo
	FieldAmount
	FieldTags
)

// Fields lists every field in canonical output order.
var Fields = []Field{FieldDate, FieldAccount, FieldAccType, FieldCategory, FieldMemo, FieldAmount, FieldTags}

func (f Field) String() string {
	switch f {
	case FieldDate:
		return "date"
	case FieldAccount:
		return "account"
	case FieldAccType:
		return "acc_type"
	case FieldCategory:
		return "category"
	case FieldMemo:
		return "memo"
	case FieldAmount:
		return "amount"
	case FieldTags:
		return "tags"
	default:
		return "?"
	}
}

// LookupField matches name against the exact field spelling.
func LookupField(name string) (Field, bool) {
	for _, f := range Fields {
		if f.String() == name {
			return f, true
		}
	}
	return 0, false
}

// Op is a comparison operator
type Op int

const (
	OpEq Op = iota
	OpNe
	OpLt
	OpLte
	OpGt
	OpGte
	OpContains
	OpIs
)

func (op Op) String() string {
	switch op {
	case OpEq:
		return "="
	case OpNe:
		return "!="
	case OpLt:
		return "<"
	case OpLte:
		return "<="
	case OpGt:
		return ">"
	case OpGte:
		return ">="
	case OpContains:
		return "~"
	case OpIs:
		return "is"
	default:
		return "?"
	}
}

// LiteralKind tags the type of a Literal. It is fixed when the query is parsed.
type LiteralKind int

const (
	LitString LiteralKind = iota
	LitNumber
	LitList
)

func (k LiteralKind) String() string {
	switch k {
	case LitString:
		return "String"
	case LitNumber:
		return "Number"
	case LitList:
		return "List"
	default:
		return "Unknown"
	}
}

// Literal is the right-hand side of a comparison.
type Literal struct {
	Kind LiteralKind
	Str  string
	Num  float64
	List []string
}

func StringLit(s string) Literal { return Literal{Kind: LitString, Str: s} }
func NumberLit(n float64) Literal { return Literal{Kind: LitNumber, Num: n} }
func ListLit(items ...string) Literal { return Literal{Kind: LitList, List: items} }

func (l Literal) String() string {
	switch l.Kind {
	case LitNumber:
		return strconv.FormatFloat(l.Num, 'f', -1, 64)
	case LitList:
		parts := make([]string, len(l.List))
		for i, s := range l.List {
			parts[i] = "'" + s + "'"
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return "'" + l.Str + "'"
	}
}

// Format renders expr as query text that parses back to the same tree.
// Parentheses appear only where precedence or a right-nested connective
// needs them, so the text never nests deeper than the query it came from.
func Format(expr Expr) string {
	var sb strings.Builder
	format(&sb, expr)
	return sb.String()
}

// FormatGrouped renders expr with every AND and OR wrapped in parentheses,
// which shows how precedence was applied. Very long chains can nest deeper
// than MaxDepth, so the result is for display only.
func FormatGrouped(expr Expr) string {
	var sb strings.Builder
	formatGrouped(&sb, expr)
	return sb.String()
}

func formatCmp(sb *strings.Builder, e Cmp) {
	sb.WriteString(e.Field.String())
	sb.WriteByte(' ')
	sb.WriteString(e.Op.String())
	sb.WriteByte(' ')
	sb.WriteString(e.Lit.String())
}

func format(sb *strings.Builder, expr Expr) {
	switch e := expr.(type) {
	case Cmp:
		formatCmp(sb, e)
	case Not:
		sb.WriteString("NOT ")
		_, isAnd := e.Inner.(And)
		_, isOr := e.Inner.(Or)
		formatParen(sb, e.Inner, isAnd || isOr)
	case And:
		_, leftOr := e.Left.(Or)
		formatParen(sb, e.Left, leftOr)
		sb.WriteString(" AND ")
		_, rightAnd := e.Right.(And)
		_, rightOr := e.Right.(Or)
		formatParen(sb, e.Right, rightAnd || rightOr)
	case Or:
		format(sb, e.Left)
		sb.WriteString(" OR ")
		_, rightOr := e.Right.(Or)
		formatParen(sb, e.Right, rightOr)
	}
}

func formatParen(sb *strings.Builder, expr Expr, paren bool) {
	if !paren {
		format(sb, expr)
		return
	}
	sb.WriteByte('(')
	format(sb, expr)
	sb.WriteByte(')')
}

func formatGrouped(sb *strings.Builder, expr Expr) {
	switch e := expr.(type) {
	case Cmp:
		formatCmp(sb, e)
	case Not:
		sb.WriteString("NOT (")
		formatGrouped(sb, e.Inner)
		sb.WriteByte(')')
	case And:
		sb.WriteByte('(')
		formatGrouped(sb, e.Left)
		sb.WriteString(" AND ")
		formatGrouped(sb, e.Right)
		sb.WriteByte(')')
	case Or:
		sb.WriteByte('(')
		formatGrouped(sb, e.Left)
		sb.WriteString(" OR ")
		formatGrouped(sb, e.Right)
		sb.WriteByte(')')
	}
}
