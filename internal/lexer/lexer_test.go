package lexer

import (
	"testing"

	"github.com/funvibe/kokoki/internal/token"
)

func TestNextTokenBasics(t *testing.T) {
	input := `1 2 3 + + : sq dup * ; [1, 2] { } @x , "hi" nil true false`

	tests := []struct {
		expectedType    token.TokenType
		expectedLiteral string
	}{
		{token.NUMBER, "1"},
		{token.NUMBER, "2"},
		{token.NUMBER, "3"},
		{token.NAME, "+"},
		{token.NAME, "+"},
		{token.DEFSTART, ":"},
		{token.NAME, "sq"},
		{token.NAME, "dup"},
		{token.NAME, "*"},
		{token.DEFEND, ";"},
		{token.ARRAYSTART, "["},
		{token.NUMBER, "1"},
		{token.COMMA, ","},
		{token.NUMBER, "2"},
		{token.ARRAYEND, "]"},
		{token.HASHSTART, "{"},
		{token.HASHEND, "}"},
		{token.REFNAME, "x"},
		{token.COMMA, ","},
		{token.STRING, "hi"},
		{token.NIL, "nil"},
		{token.TRUE, "true"},
		{token.FALSE, "false"},
		{token.EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - wrong type. expected=%q, got=%q (%q)",
				i, tt.expectedType, tok.Type, tok.Literal)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - wrong literal. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"42", 42},
		{"-7", -7},
		{"3.1415", 3.1415},
		{"-0.5", -0.5},
		{"'a'", 97},
		{"'!'", 33},
		{"' '", 32},
	}

	for _, tt := range tests {
		l := New(tt.input)
		tok := l.NextToken()
		if tok.Type != token.NUMBER {
			t.Errorf("%q: expected NUMBER, got %q", tt.input, tok.Type)
			continue
		}
		if tok.Number != tt.want {
			t.Errorf("%q: expected %v, got %v", tt.input, tt.want, tok.Number)
		}
	}
}

func TestNames(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"dup", "dup"},
		{"2dup", "2dup"},
		{"<=", "<="},
		{">=", ">="},
		{"=", "="},
		{"?", "?"},
		{"!", "!"},
		{"!!", "!!"},
		{"!?", "!?"},
		{".", "."},
		{"%", "%"},
		{"/", "/"},
		{"<<", "<<"},
		{">>", ">>"},
		{"-", "-"},
		{"truely", "truely"},
		{"nilish", "nilish"},
		{"foo-bar", "foo-bar"},
		{"$var", "$var"},
	}

	for _, tt := range tests {
		l := New(tt.input)
		tok := l.NextToken()
		if tok.Type != token.NAME {
			t.Errorf("%q: expected NAME, got %q (%q)", tt.input, tok.Type, tok.Literal)
			continue
		}
		if tok.Literal != tt.want {
			t.Errorf("%q: expected %q, got %q", tt.input, tt.want, tok.Literal)
		}
	}
}

func TestMinusThenDigitIsNumber(t *testing.T) {
	l := New("1 -2 - 3")
	want := []struct {
		typ token.TokenType
		num float64
		lit string
	}{
		{token.NUMBER, 1, "1"},
		{token.NUMBER, -2, "-2"},
		{token.NAME, 0, "-"},
		{token.NUMBER, 3, "3"},
	}
	for i, w := range want {
		tok := l.NextToken()
		if tok.Type != w.typ {
			t.Fatalf("tok[%d]: expected %q, got %q", i, w.typ, tok.Type)
		}
		if w.typ == token.NUMBER && tok.Number != w.num {
			t.Fatalf("tok[%d]: expected %v, got %v", i, w.num, tok.Number)
		}
	}
}

func TestComments(t *testing.T) {
	input := "# a line comment\n1 ( a block\ncomment ) 2"
	l := New(input)

	tok := l.NextToken()
	if tok.Type != token.NUMBER || tok.Number != 1 {
		t.Fatalf("expected 1, got %q %v", tok.Type, tok.Number)
	}
	tok = l.NextToken()
	if tok.Type != token.NUMBER || tok.Number != 2 {
		t.Fatalf("expected 2, got %q %v", tok.Type, tok.Number)
	}
	tok = l.NextToken()
	if tok.Type != token.EOF {
		t.Fatalf("expected EOF, got %q", tok.Type)
	}
}

func TestLineAndColumn(t *testing.T) {
	input := "1\n  ^"
	l := New(input)

	tok := l.NextToken()
	if tok.Line != 1 || tok.Column != 1 {
		t.Fatalf("expected 1:1, got %d:%d", tok.Line, tok.Column)
	}
	tok = l.NextToken()
	if tok.Type != token.ILLEGAL {
		t.Fatalf("expected ILLEGAL, got %q", tok.Type)
	}
	if tok.Line != 2 || tok.Column != 3 {
		t.Fatalf("expected 2:3, got %d:%d", tok.Line, tok.Column)
	}
}

func TestUnterminatedString(t *testing.T) {
	l := New(`"abc`)
	tok := l.NextToken()
	if tok.Type != token.ILLEGAL {
		t.Fatalf("expected ILLEGAL, got %q", tok.Type)
	}
}

func TestRefNames(t *testing.T) {
	l := New("@counter @x")
	tok := l.NextToken()
	if tok.Type != token.REFNAME || tok.Literal != "counter" {
		t.Fatalf("expected REFNAME counter, got %q %q", tok.Type, tok.Literal)
	}
	tok = l.NextToken()
	if tok.Type != token.REFNAME || tok.Literal != "x" {
		t.Fatalf("expected REFNAME x, got %q %q", tok.Type, tok.Literal)
	}
}
