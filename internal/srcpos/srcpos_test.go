package srcpos

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_StartIsLineOneColumnOne(t *testing.T) {
	p := Start("t.c")
	assert.Equal(t, 1, p.Line)
	assert.Equal(t, 1, p.Column)
	assert.Equal(t, 0, p.Offset)
}

func Test_AdvanceTracksLinesAndColumns(t *testing.T) {
	p := Start("t.c")
	p = p.Advance('a')
	p = p.Advance('b')
	assert.Equal(t, 1, p.Line)
	assert.Equal(t, 3, p.Column)

	p = p.Advance('\n')
	assert.Equal(t, 2, p.Line)
	assert.Equal(t, 1, p.Column)
}

func Test_StringIncludesFileWhenSet(t *testing.T) {
	assert.Equal(t, "t.c:4:9", Position{File: "t.c", Line: 4, Column: 9}.String())
	assert.Equal(t, "4:9", Position{Line: 4, Column: 9}.String())
}

func Test_LessComparesByOffsetOnly(t *testing.T) {
	a := Position{File: "t.c", Offset: 3, Line: 9, Column: 1}
	b := Position{File: "t.c", Offset: 7, Line: 1, Column: 1}
	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))
}
