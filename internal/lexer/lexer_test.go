package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, src string) []Token {
	t.Helper()
	l := New("<test>", src)
	var out []Token
	for {
		tok, err := l.Next()
		require.NoError(t, err)
		out = append(out, tok)
		if tok.Type == EOF {
			return out
		}
	}
}

func TestKeywordsAndIdents(t *testing.T) {
	toks := scanAll(t, "function let return this x_1")
	types := []TokenType{FUNCTION, LET, RETURN, THIS, IDENT, EOF}
	require.Len(t, toks, len(types))
	for i, tt := range types {
		assert.Equal(t, tt, toks[i].Type)
	}
	assert.Equal(t, "x_1", toks[4].Text)
}

func TestIntegerLiterals(t *testing.T) {
	toks := scanAll(t, "10 0x1F 0b101")
	assert.Equal(t, int64(10), toks[0].IVal)
	assert.Equal(t, int64(31), toks[1].IVal)
	assert.Equal(t, int64(5), toks[2].IVal)
}

func TestFloatLiterals(t *testing.T) {
	toks := scanAll(t, "3.14 2e10 1.5e-3")
	assert.InDelta(t, 3.14, toks[0].FVal, 1e-9)
	assert.InDelta(t, 2e10, toks[1].FVal, 1)
	assert.InDelta(t, 1.5e-3, toks[2].FVal, 1e-12)
}

func TestStringEscapes(t *testing.T) {
	toks := scanAll(t, `"a\nb\t\x41\101"`)
	assert.Equal(t, "a\nb\tAA", toks[0].Text)
}

func TestBytesLiteralConcatenation(t *testing.T) {
	toks := scanAll(t, `b'foo'b'bar'`)
	require.Equal(t, BYTES, toks[0].Type)
	assert.Equal(t, "foobar", toks[0].Text)
}

func TestLambdaMarker(t *testing.T) {
	toks := scanAll(t, "``(x) x + 1")
	assert.Equal(t, LAMBDA, toks[0].Type)
}

func TestOperatorGreedyMatch(t *testing.T) {
	toks := scanAll(t, "<<= >> ** += !=")
	types := []TokenType{SHLEQ, SHR, POW, PLUSEQ, NE, EOF}
	require.Len(t, toks, len(types))
	for i, tt := range types {
		assert.Equal(t, tt, toks[i].Type)
	}
}

func TestPushback(t *testing.T) {
	l := New("<test>", "let x")
	first, err := l.Next()
	require.NoError(t, err)
	l.Unget(first)
	again, err := l.Next()
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

func TestUnterminatedBlockComment(t *testing.T) {
	l := New("<test>", "/* oops")
	_, err := l.Next()
	assert.Error(t, err)
}
