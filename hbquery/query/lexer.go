package query

import (
	"strconv"
	"strings"
	"unicode"

	hqerrors "github.com/nonibytes/hbquery/hbquery/errors"
)

// Token represents a lexical token
type Token struct {
	Kind TokenKind
	// Value is the source spelling; for strings it is the unquoted content.
	Value string
	Num   float64
	Pos   int
}

// TokenKind is the type of token
type TokenKind int

const (
	TokIdent TokenKind = iota
	TokString
	TokNumber
	TokAnd
	TokOr
	TokNot
	TokLParen
	TokRParen
	TokLBracket
	TokRBracket
	TokComma
	TokEq
	TokNe
	TokLt
	TokLte
	TokGt
	TokGte
	TokTilde
	TokIs
	TokEOF
)

func (k TokenKind) String() string {
	switch k {
	case TokIdent:
		return "Ident"
	case TokString:
		return "String"
	case TokNumber:
		return "Number"
	case TokAnd:
		return "And"
	case TokOr:
		return "Or"
	case TokNot:
		return "Not"
	case TokLParen:
		return "LParen"
	case TokRParen:
		return "RParen"
	case TokLBracket:
		return "LBracket"
	case TokRBracket:
		return "RBracket"
	case TokComma:
		return "Comma"
	case TokEq:
		return "Eq"
	case TokNe:
		return "Ne"
	case TokLt:
		return "Lt"
	case TokLte:
		return "Lte"
	case TokGt:
		return "Gt"
	case TokGte:
		return "Gte"
	case TokTilde:
		return "Tilde"
	case TokIs:
		return "Is"
	case TokEOF:
		return "EOF"
	default:
		return "Unknown"
	}
}

// isComparison reports whether k is a comparison operator token.
func (k TokenKind) isComparison() bool {
	return k >= TokEq && k <= TokIs
}

// Lexer tokenizes a query string
type Lexer struct {
	input []rune
	pos   int
}

// NewLexer creates a new lexer for the input string
func NewLexer(input string) *Lexer {
	return &Lexer{
		input: []rune(input),
		pos:   0,
	}
}

// Lex tokenizes the entire input
func Lex(input string) ([]Token, error) {
	lexer := NewLexer(input)
	var tokens []Token

	for {
		tok, err := lexer.Next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == TokEOF {
			break
		}
	}

	return tokens, nil
}

// Next returns the next token
func (l *Lexer) Next() (Token, error) {
	l.skipWhitespace()

	start := l.pos
	if l.pos >= len(l.input) {
		return Token{Kind: TokEOF, Pos: start}, nil
	}

	ch := l.input[l.pos]

	// Single-character tokens
	switch ch {
	case '(':
		l.pos++
		return Token{Kind: TokLParen, Value: "(", Pos: start}, nil
	case ')':
		l.pos++
		return Token{Kind: TokRParen, Value: ")", Pos: start}, nil
	case '[':
		l.pos++
		return Token{Kind: TokLBracket, Value: "[", Pos: start}, nil
	case ']':
		l.pos++
		return Token{Kind: TokRBracket, Value: "]", Pos: start}, nil
	case ',':
		l.pos++
		return Token{Kind: TokComma, Value: ",", Pos: start}, nil
	case '~':
		l.pos++
		return Token{Kind: TokTilde, Value: "~", Pos: start}, nil
	}

	// One or two character operators
	switch ch {
	case '=':
		if l.peek(1) == '=' {
			l.pos += 2
			return Token{Kind: TokEq, Value: "==", Pos: start}, nil
		}
		l.pos++
		return Token{Kind: TokEq, Value: "=", Pos: start}, nil
	case '!':
		if l.peek(1) == '=' {
			l.pos += 2
			return Token{Kind: TokNe, Value: "!=", Pos: start}, nil
		}
		l.pos++
		return Token{Kind: TokNot, Value: "!", Pos: start}, nil
	case '<':
		switch l.peek(1) {
		case '=':
			l.pos += 2
			return Token{Kind: TokLte, Value: "<=", Pos: start}, nil
		case '>':
			l.pos += 2
			return Token{Kind: TokNe, Value: "<>", Pos: start}, nil
		}
		l.pos++
		return Token{Kind: TokLt, Value: "<", Pos: start}, nil
	case '>':
		if l.peek(1) == '=' {
			l.pos += 2
			return Token{Kind: TokGte, Value: ">=", Pos: start}, nil
		}
		l.pos++
		return Token{Kind: TokGt, Value: ">", Pos: start}, nil
	}

	// Quoted string
	if ch == '\'' {
		return l.scanString()
	}

	if unicode.IsDigit(ch) || (ch == '.' && unicode.IsDigit(l.peek(1))) {
		return l.scanNumber()
	}

	// Identifier or keyword
	if isIdentStart(ch) {
		return l.scanIdent()
	}

	return Token{}, hqerrors.SyntaxError("unexpected character "+strconv.QuoteRune(ch), l.rest(start))
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) && unicode.IsSpace(l.input[l.pos]) {
		l.pos++
	}
}

func (l *Lexer) peek(offset int) rune {
	pos := l.pos + offset
	if pos < len(l.input) {
		return l.input[pos]
	}
	return 0
}

// rest returns the unconsumed input from pos, used as an error fragment.
func (l *Lexer) rest(pos int) string {
	if pos >= len(l.input) {
		return ""
	}
	return string(l.input[pos:])
}

// scanString reads a single-quoted string. There are no escapes: the first
// quote after the opening one ends the literal.
func (l *Lexer) scanString() (Token, error) {
	start := l.pos
	l.pos++ // consume opening quote
	var sb strings.Builder

	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == '\'' {
			l.pos++ // consume closing quote
			return Token{Kind: TokString, Value: sb.String(), Pos: start}, nil
		}
		sb.WriteRune(ch)
		l.pos++
	}

	return Token{}, hqerrors.SyntaxError("unterminated string", l.rest(start))
}

// scanNumber consumes the longest run of digits and dots.
func (l *Lexer) scanNumber() (Token, error) {
	start := l.pos
	dots := 0

	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == '.' {
			dots++
		} else if !unicode.IsDigit(ch) {
			break
		}
		l.pos++
	}

	numStr := string(l.input[start:l.pos])
	if dots > 1 {
		return Token{}, hqerrors.SyntaxError("invalid number", numStr)
	}
	num, err := strconv.ParseFloat(numStr, 64)
	if err != nil {
		return Token{}, hqerrors.SyntaxError("invalid number", numStr)
	}

	return Token{Kind: TokNumber, Value: numStr, Num: num, Pos: start}, nil
}

func (l *Lexer) scanIdent() (Token, error) {
	start := l.pos

	for l.pos < len(l.input) && isIdentChar(l.input[l.pos]) {
		l.pos++
	}

	value := string(l.input[start:l.pos])

	// Keywords are matched in all-upper or all-lower spelling only.
	switch value {
	case "AND", "and":
		return Token{Kind: TokAnd, Value: value, Pos: start}, nil
	case "OR", "or":
		return Token{Kind: TokOr, Value: value, Pos: start}, nil
	case "NOT", "not":
		return Token{Kind: TokNot, Value: value, Pos: start}, nil
	case "is":
		return Token{Kind: TokIs, Value: value, Pos: start}, nil
	}

	return Token{Kind: TokIdent, Value: value, Pos: start}, nil
}

func isIdentStart(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_'
}

func isIdentChar(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_'
}
