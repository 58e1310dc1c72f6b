package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/vellum/internal/lexer"
	"github.com/oxhq/vellum/internal/objtype"
	"github.com/oxhq/vellum/internal/token"
)

func kinds(toks []token.Token) []token.Kind {
	ks := make([]token.Kind, len(toks))
	for i, t := range toks {
		ks[i] = t.Kind
	}
	return ks
}

func TestTokenizeBasic(t *testing.T) {
	toks, err := lexer.Tokenize("42 + 77")
	require.NoError(t, err)
	assert.Equal(t, []token.Kind{token.NumberLit, token.Plus, token.NumberLit, token.EOF}, kinds(toks))
	require.NotNil(t, toks[0].Number)
	assert.Equal(t, int32(42), toks[0].Number.Int)
	assert.Equal(t, objtype.Int, toks[0].Number.Type)
}

func TestTokenizeFloatLiteral(t *testing.T) {
	toks, err := lexer.Tokenize("3.5")
	require.NoError(t, err)
	require.NotNil(t, toks[0].Number)
	assert.Equal(t, 3.5, toks[0].Number.Double)
	assert.Equal(t, objtype.Double, toks[0].Number.Type)
}

func TestTokenizeBoolLiterals(t *testing.T) {
	toks, err := lexer.Tokenize("true false")
	require.NoError(t, err)
	assert.Equal(t, int32(1), toks[0].Number.Int)
	assert.Equal(t, int32(0), toks[1].Number.Int)
}

func TestTokenizeCharLiteral(t *testing.T) {
	toks, err := lexer.Tokenize("'x'")
	require.NoError(t, err)
	assert.Equal(t, token.CharLit, toks[0].Kind)
	assert.Equal(t, int32('x'), toks[0].Number.Int)
	assert.Equal(t, objtype.Char, toks[0].Number.Type)
}

func TestTokenizeOperators(t *testing.T) {
	toks, err := lexer.Tokenize(":= == != <= >= && || .= :")
	require.NoError(t, err)
	assert.Equal(t, []token.Kind{
		token.Walrus, token.EqEq, token.NotEq, token.Le, token.Ge,
		token.AndAnd, token.OrOr, token.AssignEq, token.Colon, token.EOF,
	}, kinds(toks))
}

func TestCommentsAreStripped(t *testing.T) {
	toks, err := lexer.Tokenize("1 // a comment\n+ 2 #! shebang-ish\n/* block\ncomment */3")
	require.NoError(t, err)
	ks := kinds(toks)
	for _, k := range ks {
		assert.NotEqual(t, token.Kind(-1), k)
	}
	assert.Equal(t, []token.Kind{
		token.NumberLit, token.Newline, token.Plus, token.NumberLit, token.Newline, token.NumberLit, token.EOF,
	}, ks)
}

func TestUnrecognizedSuffixIsLexError(t *testing.T) {
	_, err := lexer.Tokenize("42xyz")
	require.Error(t, err)
}

func TestUnexpectedCharacterIsLexError(t *testing.T) {
	_, err := lexer.Tokenize("42 $ 1")
	require.Error(t, err)
}

func TestFilterDropsLeadingNewlines(t *testing.T) {
	toks, err := lexer.Tokenize("\n\n\n42")
	require.NoError(t, err)
	out := lexer.Filter(toks)
	assert.Equal(t, []token.Kind{token.NumberLit, token.EOF}, kinds(out))
}

func TestFilterDropsNewlineAfterStarter(t *testing.T) {
	toks, err := lexer.Tokenize("1 +\n2")
	require.NoError(t, err)
	out := lexer.Filter(toks)
	assert.Equal(t, []token.Kind{token.NumberLit, token.Plus, token.NumberLit, token.EOF}, kinds(out))
}

func TestFilterDropsNewlineBeforeDelimiter(t *testing.T) {
	toks, err := lexer.Tokenize("if true:\n  1\nend")
	require.NoError(t, err)
	out := lexer.Filter(toks)
	// The newline immediately before `end` is dropped (rule 3); the one
	// between `:` and `1` is dropped too, since `:` is a starter (rule 2).
	assert.NotContains(t, kinds(out)[len(out)-2:len(out)-1], token.Newline)
}

func TestFilterCollapsesNewlineRuns(t *testing.T) {
	toks, err := lexer.Tokenize("1\n\n\n2")
	require.NoError(t, err)
	out := lexer.Filter(toks)
	assert.Equal(t, []token.Kind{token.NumberLit, token.Newline, token.NumberLit, token.EOF}, kinds(out))
}

func TestFilterDropsNewlineAroundSeparator(t *testing.T) {
	toks, err := lexer.Tokenize("f(1\n,\n2)")
	require.NoError(t, err)
	out := lexer.Filter(toks)
	assert.Equal(t, []token.Kind{
		token.Ident, token.LParen, token.NumberLit, token.Comma, token.NumberLit, token.RParen, token.EOF,
	}, kinds(out))
}
