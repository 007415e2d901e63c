package query

import (
	"testing"

	hqerrors "github.com/nonibytes/hbquery/hbquery/errors"
)

func TestLexSimple(t *testing.T) {
	tokens, err := Lex("memo ~ 'pix'")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Tokens: Ident("memo"), Tilde, String("pix"), EOF
	if len(tokens) != 4 {
		t.Fatalf("expected 4 tokens (including EOF), got %d: %v", len(tokens), tokens)
	}
	if tokens[0].Kind != TokIdent || tokens[0].Value != "memo" {
		t.Errorf("expected Ident(memo), got %v", tokens[0])
	}
	if tokens[1].Kind != TokTilde {
		t.Errorf("expected Tilde, got %v", tokens[1])
	}
	if tokens[2].Kind != TokString || tokens[2].Value != "pix" {
		t.Errorf("expected String(pix), got %v", tokens[2])
	}
	if tokens[3].Kind != TokEOF {
		t.Errorf("expected EOF, got %v", tokens[3])
	}
}

func TestLexOperators(t *testing.T) {
	cases := []struct {
		input string
		kind  TokenKind
	}{
		{"=", TokEq},
		{"==", TokEq},
		{"!=", TokNe},
		{"<>", TokNe},
		{"<", TokLt},
		{"<=", TokLte},
		{">", TokGt},
		{">=", TokGte},
		{"~", TokTilde},
		{"is", TokIs},
		{"!", TokNot},
		{"NOT", TokNot},
		{"not", TokNot},
		{"AND", TokAnd},
		{"and", TokAnd},
		{"OR", TokOr},
		{"or", TokOr},
	}
	for _, tc := range cases {
		tokens, err := Lex(tc.input)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tc.input, err)
		}
		if tokens[0].Kind != tc.kind || tokens[0].Value != tc.input {
			t.Errorf("%q: expected %v, got %v", tc.input, tc.kind, tokens[0])
		}
	}
}

func TestLexMixedCaseKeywordIsIdent(t *testing.T) {
	tokens, err := Lex("And")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tokens[0].Kind != TokIdent {
		t.Errorf("expected Ident for mixed-case keyword, got %v", tokens[0])
	}
}

func TestLexString(t *testing.T) {
	tokens, err := Lex(`'hello "world"'`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tokens[0].Kind != TokString || tokens[0].Value != `hello "world"` {
		t.Errorf("expected String(hello \"world\"), got %v", tokens[0])
	}
}

func TestLexStringHasNoEscapes(t *testing.T) {
	tokens, err := Lex(`'a\' 'b'`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tokens[0].Value != `a\` || tokens[1].Value != "b" {
		t.Errorf("expected backslash kept literally, got %v", tokens)
	}
}

func TestLexNumber(t *testing.T) {
	tokens, err := Lex("3.14")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tokens[0].Kind != TokNumber || tokens[0].Num != 3.14 {
		t.Errorf("expected Number(3.14), got %v", tokens[0])
	}

	tokens, err = Lex(".5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tokens[0].Kind != TokNumber || tokens[0].Num != 0.5 {
		t.Errorf("expected Number(0.5), got %v", tokens[0])
	}
}

func TestLexNumberTwoDots(t *testing.T) {
	_, err := Lex("amount > 1.2.3")
	if err == nil {
		t.Fatal("expected error for number with two dots")
	}
	if !hqerrors.IsKind(err, hqerrors.ErrQuerySyntax) {
		t.Errorf("expected query_syntax error, got %v", err)
	}
}

func TestLexList(t *testing.T) {
	tokens, err := Lex("['a','b']")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	kinds := []TokenKind{TokLBracket, TokString, TokComma, TokString, TokRBracket, TokEOF}
	if len(tokens) != len(kinds) {
		t.Fatalf("expected %d tokens, got %d: %v", len(kinds), len(tokens), tokens)
	}
	for i, k := range kinds {
		if tokens[i].Kind != k {
			t.Errorf("token %d: expected %v, got %v", i, k, tokens[i].Kind)
		}
	}
}

func TestLexUnterminatedString(t *testing.T) {
	_, err := Lex("memo = 'abc")
	if err == nil {
		t.Fatal("expected error for unterminated string")
	}
	var e *hqerrors.Error
	if !asError(err, &e) || e.Fragment != "'abc" {
		t.Errorf("expected fragment 'abc, got %v", err)
	}
}

func TestLexUnexpectedCharacter(t *testing.T) {
	_, err := Lex("memo # 'x'")
	if err == nil {
		t.Fatal("expected error for unexpected character")
	}
	if !hqerrors.IsKind(err, hqerrors.ErrQuerySyntax) {
		t.Errorf("expected query_syntax error, got %v", err)
	}
}

func TestLexIdentWithUnderscore(t *testing.T) {
	tokens, err := Lex("acc_type")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tokens[0].Kind != TokIdent || tokens[0].Value != "acc_type" {
		t.Errorf("expected Ident(acc_type), got %v", tokens[0])
	}
}

func TestLexPositions(t *testing.T) {
	tokens, err := Lex("amount >= 10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int{0, 7, 10, 12}
	for i, pos := range want {
		if tokens[i].Pos != pos {
			t.Errorf("token %d: expected pos %d, got %d", i, pos, tokens[i].Pos)
		}
	}
}
