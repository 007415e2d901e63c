package query

import (
	"fmt"

	hqerrors "github.com/nonibytes/hbquery/hbquery/errors"
)

// MaxDepth bounds how deeply NOT and parentheses may nest.
const MaxDepth = 256

// Parse parses a query string into an expression AST
func Parse(input string) (Expr, error) {
	tokens, err := Lex(input)
	if err != nil {
		return nil, err
	}

	p := &parser{input: []rune(input), tokens: tokens, pos: 0}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if !p.match(TokEOF) {
		return nil, p.errorf("unexpected %s", p.current().Kind)
	}
	return expr, nil
}

type parser struct {
	input  []rune
	tokens []Token
	pos    int
	depth  int
}

func (p *parser) parseExpr() (Expr, error) {
	return p.parseOr()
}

func (p *parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.match(TokOr) {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = Or{Left: left, Right: right}
	}

	return left, nil
}

func (p *parser) parseAnd() (Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}

	for p.match(TokAnd) {
		p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = And{Left: left, Right: right}
	}

	return left, nil
}

func (p *parser) parseNot() (Expr, error) {
	if p.match(TokNot) {
		if err := p.enter(); err != nil {
			return nil, err
		}
		defer p.leave()

		p.advance()
		inner, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return Not{Inner: inner}, nil
	}

	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Expr, error) {
	// Parenthesized expression
	if p.match(TokLParen) {
		if err := p.enter(); err != nil {
			return nil, err
		}
		defer p.leave()

		p.advance()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if !p.match(TokRParen) {
			return nil, p.errorf("expected ')', got %s", p.current().Kind)
		}
		p.advance()
		return expr, nil
	}

	return p.parseComparison()
}

// parseComparison reads FIELD OPERATOR LITERAL.
func (p *parser) parseComparison() (Expr, error) {
	tok := p.current()
	switch tok.Kind {
	case TokIdent:
	case TokEOF:
		return nil, p.errorf("unexpected end of query")
	default:
		return nil, p.errorf("expected field, got %s", tok.Kind)
	}

	field, ok := LookupField(tok.Value)
	if !ok {
		return nil, p.errorf("unknown field %q", tok.Value)
	}
	p.advance()

	op, err := p.parseOp()
	if err != nil {
		return nil, err
	}

	lit, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}

	return Cmp{Field: field, Op: op, Lit: lit}, nil
}

func (p *parser) parseOp() (Op, error) {
	tok := p.current()
	if !tok.Kind.isComparison() {
		return 0, p.errorf("expected comparison operator, got %s", tok.Kind)
	}
	p.advance()

	switch tok.Kind {
	case TokEq:
		return OpEq, nil
	case TokNe:
		return OpNe, nil
	case TokLt:
		return OpLt, nil
	case TokLte:
		return OpLte, nil
	case TokGt:
		return OpGt, nil
	case TokGte:
		return OpGte, nil
	case TokTilde:
		return OpContains, nil
	default:
		return OpIs, nil
	}
}

func (p *parser) parseLiteral() (Literal, error) {
	tok := p.current()
	switch tok.Kind {
	case TokString:
		p.advance()
		return StringLit(tok.Value), nil
	case TokNumber:
		p.advance()
		return NumberLit(tok.Num), nil
	case TokLBracket:
		return p.parseList()
	case TokEOF:
		return Literal{}, p.errorf("expected value, got end of query")
	default:
		return Literal{}, p.errorf("expected value, got %s", tok.Kind)
	}
}

// parseList reads '[' STRING (',' STRING)* ']'.
func (p *parser) parseList() (Literal, error) {
	p.advance() // consume [
	var items []string

	for {
		if !p.match(TokString) {
			return Literal{}, p.errorf("expected quoted string in list, got %s", p.current().Kind)
		}
		items = append(items, p.current().Value)
		p.advance()

		if p.match(TokComma) {
			p.advance()
			continue
		}
		if p.match(TokRBracket) {
			p.advance()
			return ListLit(items...), nil
		}
		return Literal{}, p.errorf("expected ',' or ']', got %s", p.current().Kind)
	}
}

func (p *parser) enter() error {
	p.depth++
	if p.depth > MaxDepth {
		return p.errorf("query nested deeper than %d levels", MaxDepth)
	}
	return nil
}

func (p *parser) leave() {
	p.depth--
}

func (p *parser) current() Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return Token{Kind: TokEOF, Pos: len(p.input)}
}

func (p *parser) advance() {
	if p.pos < len(p.tokens) {
		p.pos++
	}
}

func (p *parser) match(kind TokenKind) bool {
	return p.current().Kind == kind
}

// errorf builds a syntax error whose fragment is the input from the current token on.
func (p *parser) errorf(format string, args ...any) error {
	fragment := ""
	if pos := p.current().Pos; pos < len(p.input) {
		fragment = string(p.input[pos:])
	}
	return hqerrors.SyntaxError(fmt.Sprintf(format, args...), fragment)
}
