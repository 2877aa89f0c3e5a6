package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(toks []token) []tokenKind {
	var ks []tokenKind
	for _, t := range toks {
		ks = append(ks, t.kind)
	}
	return ks
}

func texts(toks []token) []string {
	var ts []string
	for _, t := range toks {
		if t.kind != tokEOL {
			ts = append(ts, t.text)
		}
	}
	return ts
}

func TestLexOperators(t *testing.T) {
	toks, err := lexLine("10 IF A<>B THEN 20: X=2**3^.5<=1E-3>=Y", 1)
	require.Nil(t, err)

	assert.Equal(t, []string{"10", "IF", "A", "<>", "B", "THEN", "20", ":", "X", "=",
		"2", "**", "3", "^", ".5", "<=", "1E-3", ">=", "Y"}, texts(toks))
	assert.Equal(t, tokEOL, toks[len(toks)-1].kind)
}

func TestLexStringsAndIdents(t *testing.T) {
	toks, err := lexLine(`PRINT "A, B"; N1$`, 3)
	require.Nil(t, err)

	assert.Equal(t, []tokenKind{tokIdent, tokString, tokOp, tokIdent, tokEOL}, kinds(toks))
	assert.Equal(t, "A, B", toks[1].text)
	assert.Equal(t, "N1$", toks[3].text)
	assert.Equal(t, 7, toks[1].col)
}

func TestLexRem(t *testing.T) {
	toks, err := lexLine(`10 REM it's "free" text: 1 + `, 1)
	require.Nil(t, err)

	assert.Equal(t, []tokenKind{tokNumber, tokRem, tokEOL}, kinds(toks))
	assert.Equal(t, ` it's "free" text: 1 + `, toks[1].text)
}

func TestLexLineNumberGlued(t *testing.T) {
	toks, err := lexLine("100END", 1)
	require.Nil(t, err)

	assert.Equal(t, []string{"100", "END"}, texts(toks))
}

func TestLexErrors(t *testing.T) {
	_, err := lexLine(`PRINT "open`, 4)
	require.NotNil(t, err)
	assert.Equal(t, 4, err.Line)
	assert.Equal(t, "unterminated string", err.Msg)

	_, err = lexLine("X = 1 # 2", 5)
	require.NotNil(t, err)
	assert.Equal(t, 7, err.Col)
}
