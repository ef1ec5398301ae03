package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNextTokenPunctuationAndOperators(t *testing.T) {
	input := `let a = 1 + 2; a += 3; a == 3 and a != 4;`
	l := New(input)
	want := []TokenType{
		LET, IDENT, ASSIGN, NUMBER, PLUS, NUMBER, SEMICOLON,
		IDENT, PLUS_ASSIGN, NUMBER, SEMICOLON,
		IDENT, EQ, NUMBER, AND, IDENT, NOT_EQ, NUMBER, SEMICOLON,
		EOF,
	}
	for i, wantType := range want {
		tok := l.NextToken()
		require.Equalf(t, wantType, tok.Type, "token %d: literal %q", i, tok.Literal)
	}
}

func TestNextTokenStringLiteral(t *testing.T) {
	l := New(`"hello, world" + "\n"`)
	tok := l.NextToken()
	require.Equal(t, STRING, tok.Type)
	require.Equal(t, "hello, world", tok.Literal)

	require.Equal(t, PLUS, l.NextToken().Type)

	tok = l.NextToken()
	require.Equal(t, STRING, tok.Type)
	require.Equal(t, "\n", tok.Literal)
}

func TestNextTokenClassDecl(t *testing.T) {
	input := `class Counter : Object {
		static create() { return self.new(); }
		count { return self.count; }
		count=(value) { self.count = value; }
	}`
	l := New(input)
	var types []TokenType
	for {
		tok := l.NextToken()
		types = append(types, tok.Type)
		if tok.Type == EOF {
			break
		}
	}
	require.Equal(t, CLASS, types[0])
	require.Equal(t, IDENT, types[1])
	require.Equal(t, COLON, types[2])
	require.Equal(t, IDENT, types[3])
	require.Equal(t, LBRACE, types[4])
	require.Contains(t, types, STATIC)
	require.Contains(t, types, SELF)
	require.Equal(t, EOF, types[len(types)-1])
}

func TestNextTokenLineComment(t *testing.T) {
	l := New("let a = 1; // trailing comment\nlet b = 2;")
	toks := l.Tokenize()
	// 5 tokens for each statement (let, ident, =, number, ;) plus EOF == 11
	require.Len(t, toks, 11)
}

func TestNextTokenNumberWithDecimal(t *testing.T) {
	l := New("3.14 42")
	tok := l.NextToken()
	require.Equal(t, NUMBER, tok.Type)
	require.Equal(t, "3.14", tok.Literal)
	tok = l.NextToken()
	require.Equal(t, NUMBER, tok.Type)
	require.Equal(t, "42", tok.Literal)
}

func TestNextTokenIllegalCharacter(t *testing.T) {
	l := New("@")
	tok := l.NextToken()
	require.Equal(t, ILLEGAL, tok.Type)
	require.Equal(t, "@", tok.Literal)
}
