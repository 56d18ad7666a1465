package lexer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jxsvoboda/sycek-sub004/internal/token"
)

func allTokens(t *testing.T, src string) []token.Token {
	t.Helper()
	l := Create(NewSource(strings.NewReader(src), "test.c"), "test.c")
	var toks []token.Token
	for {
		tok := l.GetTok()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	require.NoError(t, l.LastError())
	return toks
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func Test_LexIdentifiersAndKeywords(t *testing.T) {
	toks := allTokens(t, "int x return_val")
	assert.Equal(t, []token.Kind{
		token.KwInt, token.Whitespace, token.Identifier, token.Whitespace,
		token.Identifier, token.EOF,
	}, kinds(toks))
	assert.Equal(t, "return_val", toks[4].Text)
}

func Test_LexNumbers(t *testing.T) {
	toks := allTokens(t, "0x1A 42 3.14 5e10 10UL")
	var nums []string
	for _, tok := range toks {
		if tok.Kind == token.Number {
			nums = append(nums, tok.Text)
		}
	}
	assert.Equal(t, []string{"0x1A", "42", "3.14", "5e10", "10UL"}, nums)
}

func Test_LexStringAndCharLiterals(t *testing.T) {
	toks := allTokens(t, `"hello\n" 'a' L"wide" u8"utf"`)
	var lits []string
	for _, tok := range toks {
		if tok.Kind == token.StringLiteral || tok.Kind == token.CharLiteral {
			lits = append(lits, tok.Text)
		}
	}
	assert.Equal(t, []string{`"hello\n"`, `'a'`, `L"wide"`, `u8"utf"`}, lits)
}

func Test_LexUnterminatedStringIsInvalid(t *testing.T) {
	toks := allTokens(t, "\"never closes\n")
	assert.Equal(t, token.Invalid, toks[0].Kind)
}

func Test_LexLineComment(t *testing.T) {
	toks := allTokens(t, "x // trailing comment\ny")
	assert.Equal(t, token.Comment, toks[2].Kind)
	assert.Equal(t, "// trailing comment", toks[2].Text)
}

func Test_LexBlockComment(t *testing.T) {
	toks := allTokens(t, "/* a\nb */x")
	var gotClose bool
	for _, tok := range toks {
		if tok.Kind == token.BlockCommentClose {
			gotClose = true
		}
	}
	assert.True(t, gotClose)
	assert.Equal(t, token.BlockCommentOpen, toks[0].Kind)
}

func Test_LexPreprocPassthrough(t *testing.T) {
	toks := allTokens(t, "#define FOO 1\nint x;")
	assert.Equal(t, token.Preproc, toks[0].Kind)
	assert.Equal(t, "#define FOO 1", toks[0].Text)
}

func Test_LexPreprocLineContinuation(t *testing.T) {
	toks := allTokens(t, "#define FOO \\\n  1\nx")
	assert.Equal(t, token.Preproc, toks[0].Kind)
	assert.True(t, strings.Contains(toks[0].Text, "\\\n"))
}

func Test_LexPunctuatorMaximalMunch(t *testing.T) {
	toks := allTokens(t, "<<= << < a+=1")
	assert.Equal(t, token.LtLtEq, toks[0].Kind)
	assert.Equal(t, token.Whitespace, toks[1].Kind)
	assert.Equal(t, token.LtLt, toks[2].Kind)
	assert.Equal(t, token.Whitespace, toks[3].Kind)
	assert.Equal(t, token.Lt, toks[4].Kind)
}

func Test_LexEllipsisVsDots(t *testing.T) {
	toks := allTokens(t, "...")
	assert.Equal(t, token.Ellipsis, toks[0].Kind)
}

func Test_LexWhitespaceAndNewlinePreserved(t *testing.T) {
	toks := allTokens(t, "a \n b")
	assert.Equal(t, []token.Kind{
		token.Identifier, token.Whitespace, token.Newline, token.Whitespace,
		token.Identifier, token.EOF,
	}, kinds(toks))
}

func Test_LexInvalidControlByte(t *testing.T) {
	toks := allTokens(t, "int x\x01;")
	var sawInvalid bool
	for _, tok := range toks {
		if tok.Kind == token.InvalidChar {
			sawInvalid = true
		}
	}
	assert.True(t, sawInvalid)
}

func Test_LexPositionsAdvanceAcrossLines(t *testing.T) {
	toks := allTokens(t, "a\nbb")
	// toks: Identifier(a) Newline Identifier(bb) EOF
	require.Len(t, toks, 4)
	assert.Equal(t, 1, toks[0].Begin.Line)
	assert.Equal(t, 1, toks[0].Begin.Column)
	assert.Equal(t, 2, toks[2].Begin.Line)
	assert.Equal(t, 1, toks[2].Begin.Column)
}

func Test_LexBufferRefillAcrossLowWatermark(t *testing.T) {
	// A source longer than bufSize forces at least one refill mid-token;
	// the lexer must still produce one correct identifier token.
	long := strings.Repeat("x", bufSize*2+5)
	toks := allTokens(t, long)
	require.Len(t, toks, 2)
	assert.Equal(t, token.Identifier, toks[0].Kind)
	assert.Equal(t, long, toks[0].Text)
	assert.Equal(t, token.EOF, toks[1].Kind)
}
