package expression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(toks []Token) []TokenType {
	out := make([]TokenType, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func lexemes(toks []Token) []string {
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.Lexeme
	}
	return out
}

func TestLexer_Arithmetic(t *testing.T) {
	toks := NewLexer("1+2", false).Tokenize()
	require.Len(t, toks, 3)
	assert.Equal(t, []TokenType{NUMBER, BINARYOP, NUMBER}, kinds(toks))
	assert.Equal(t, []string{"1", "+", "2"}, lexemes(toks))
	assert.Equal(t, 0, toks[0].Offset)
	assert.Equal(t, 1, toks[1].Offset)
	assert.Equal(t, 2, toks[2].Offset)
}

func TestLexer_SpaceDroppedByDefault(t *testing.T) {
	toks := NewLexer("1 + 2", false).Tokenize()
	assert.Equal(t, []TokenType{NUMBER, BINARYOP, NUMBER}, kinds(toks))
}

func TestLexer_SpaceKeptInEditMode(t *testing.T) {
	toks := NewLexer("1 + 2", true).Tokenize()
	assert.Equal(t, []TokenType{NUMBER, SPACE, BINARYOP, SPACE, NUMBER}, kinds(toks))
}

func TestLexer_QuotedStringsUnescaped(t *testing.T) {
	toks := NewLexer(`"a\"b" + 'c\'d'`, false).Tokenize()
	require.Len(t, toks, 3)
	assert.Equal(t, DQ_STRING, toks[0].Kind)
	assert.Equal(t, `a"b`, toks[0].Lexeme)
	assert.Equal(t, SQ_STRING, toks[2].Kind)
	assert.Equal(t, `c'd`, toks[2].Lexeme)
}

func TestLexer_WordFormAliasesRespectBoundaries(t *testing.T) {
	toks := NewLexer("1 lt 2", false).Tokenize()
	assert.Equal(t, []TokenType{NUMBER, COMPARE, NUMBER}, kinds(toks))

	// "android" must not lex as AND_OR("and") + WORD("roid").
	toks = NewLexer("android", false).Tokenize()
	require.Len(t, toks, 1)
	assert.Equal(t, WORD, toks[0].Kind)
	assert.Equal(t, "android", toks[0].Lexeme)
}

func TestLexer_AndOrOperatorForms(t *testing.T) {
	toks := NewLexer("a && b", false).Tokenize()
	assert.Equal(t, []TokenType{WORD, AND_OR, WORD}, kinds(toks))

	toks = NewLexer("a or b", false).Tokenize()
	assert.Equal(t, []TokenType{WORD, AND_OR, WORD}, kinds(toks))
}

func TestLexer_SGQA(t *testing.T) {
	toks := NewLexer("12X3X45SQ001", false).Tokenize()
	require.Len(t, toks, 1)
	assert.Equal(t, SGQA, toks[0].Kind)
	assert.Equal(t, "12X3X45SQ001", toks[0].Lexeme)
}

func TestLexer_Number(t *testing.T) {
	for _, src := range []string{"3", "3.14", ".5", "10."} {
		toks := NewLexer(src, false).Tokenize()
		require.Len(t, toks, 1, src)
		assert.Equal(t, NUMBER, toks[0].Kind, src)
	}
}

func TestLexer_FunctionCallShape(t *testing.T) {
	toks := NewLexer("if(1<2,'yes','no')", false).Tokenize()
	assert.Equal(t, []TokenType{
		WORD, LP, NUMBER, COMPARE, NUMBER, COMMA, SQ_STRING, COMMA, SQ_STRING, RP,
	}, kinds(toks))
}

func TestLexer_IllegalTokenBecomesOTHER(t *testing.T) {
	toks := NewLexer("1 ~ 2", false).Tokenize()
	require.Len(t, toks, 3)
	assert.Equal(t, OTHER, toks[1].Kind)
	assert.Equal(t, "~", toks[1].Lexeme)
}

func TestLexer_UnquoteHandlesBackslash(t *testing.T) {
	toks := NewLexer(`"a\\b"`, false).Tokenize()
	require.Len(t, toks, 1)
	assert.Equal(t, `a\b`, toks[0].Lexeme)
}
