package enkellang

import (
	"errors"
	"testing"
)

func TestLex(t *testing.T) {
	type TokenInfo struct {
		Kind TokenKind
		Text string
	}

	tests := []struct {
		input  string
		tokens []TokenInfo
	}{
		{
			input: "var x = 1;",
			tokens: []TokenInfo{
				{TokenKeyword, "var"},
				{TokenIdentifier, "x"},
				{TokenSymbol, "="},
				{TokenNumber, "1"},
				{TokenSymbol, ";"},
			},
		},
		{
			input: "a += b++ <= c",
			tokens: []TokenInfo{
				{TokenIdentifier, "a"},
				{TokenSymbol, "+="},
				{TokenIdentifier, "b"},
				{TokenSymbol, "++"},
				{TokenSymbol, "<="},
				{TokenIdentifier, "c"},
			},
		},
		{
			input: `"a\tb" 4.5 x.y`,
			tokens: []TokenInfo{
				{TokenString, "a\tb"},
				{TokenNumber, "4.5"},
				{TokenIdentifier, "x"},
				{TokenSymbol, "."},
				{TokenIdentifier, "y"},
			},
		},
		{
			input: "a // line\n/* block\n comment */ b",
			tokens: []TokenInfo{
				{TokenIdentifier, "a"},
				{TokenIdentifier, "b"},
			},
		},
		{
			input: "x-y",
			tokens: []TokenInfo{
				{TokenIdentifier, "x"},
				{TokenSymbol, "-"},
				{TokenIdentifier, "y"},
			},
		},
	}

	for _, test := range tests {
		tokens, err := Lex(NewSource(0, "test", test.input))
		if err != nil {
			t.Fatalf("%s: %v", test.input, err)
		}
		if tokens[len(tokens)-1].Kind != TokenEOF {
			t.Fatalf("%s: missing eof", test.input)
		}
		tokens = tokens[:len(tokens)-1]
		if len(tokens) != len(test.tokens) {
			t.Fatalf("%s: got %d tokens, expected %d", test.input, len(tokens), len(test.tokens))
		}
		for i, tok := range tokens {
			if tok.Kind != test.tokens[i].Kind || tok.Text != test.tokens[i].Text {
				t.Fatalf("%s: token %d got %v %q, expected %v %q",
					test.input, i, tok.Kind, tok.Text, test.tokens[i].Kind, test.tokens[i].Text)
			}
		}
	}
}

func TestLexPos(t *testing.T) {
	tokens, err := Lex(NewSource(3, "test", "a\n  b"))
	if err != nil {
		t.Fatal(err)
	}
	if tokens[1].Pos.Line != 2 || tokens[1].Pos.Column != 3 {
		t.Fatalf("got %v", tokens[1].Pos)
	}
	if tokens[1].Pos.File() != 3 {
		t.Fatalf("got file %d", tokens[1].Pos.File())
	}
}

func TestLexNumber(t *testing.T) {
	tokens, err := Lex(NewSource(0, "test", "0.25"))
	if err != nil {
		t.Fatal(err)
	}
	if tokens[0].Num != 0.25 {
		t.Fatalf("got %v", tokens[0].Num)
	}
}

func TestLexErrors(t *testing.T) {
	for _, input := range []string{
		`"abc`,
		"/* abc",
		"a @ b",
		`"\q"`,
	} {
		_, err := Lex(NewSource(0, "test", input))
		if !errors.Is(err, ErrSyntax) {
			t.Fatalf("%s: got %v", input, err)
		}
	}
}
