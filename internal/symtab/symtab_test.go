package symtab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jxsvoboda/sycek-sub004/internal/ctype"
)

func Test_LookupFindsInnermostFirst(t *testing.T) {
	tab := New()
	tab.Insert(&Symbol{Name: "x", Type: ctype.IntType})
	tab.PushScope()
	tab.Insert(&Symbol{Name: "x", Type: ctype.CharType})

	sym, ok := tab.Lookup("x")
	require.True(t, ok)
	assert.True(t, sym.Type.Equal(ctype.CharType))

	tab.PopScope()
	sym, ok = tab.Lookup("x")
	require.True(t, ok)
	assert.True(t, sym.Type.Equal(ctype.IntType))
}

func Test_MergeExternThenTentativeThenDefined(t *testing.T) {
	sym := &Symbol{Name: "g", Type: ctype.IntType, State: Declared, Linkage: LinkageExternal}

	res := Merge(sym, ctype.IntType, Tentative, LinkageExternal)
	assert.Equal(t, MergeOK, res)
	assert.Equal(t, Tentative, sym.State)

	res = Merge(sym, ctype.IntType, Defined, LinkageExternal)
	assert.Equal(t, MergeOK, res)
	assert.Equal(t, Defined, sym.State)
}

func Test_MergeRejectsDoubleDefinition(t *testing.T) {
	sym := &Symbol{Name: "g", Type: ctype.IntType, State: Defined}
	res := Merge(sym, ctype.IntType, Defined, LinkageExternal)
	assert.Equal(t, MergeRedefinition, res)
}

func Test_MergeRejectsIncompatibleType(t *testing.T) {
	sym := &Symbol{Name: "g", Type: ctype.IntType, State: Declared}
	res := Merge(sym, ctype.CharType, Declared, LinkageExternal)
	assert.Equal(t, MergeIncompatibleType, res)
}
