package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jxsvoboda/sycek-sub004/internal/ast"
	"github.com/jxsvoboda/sycek-sub004/internal/diag"
	"github.com/jxsvoboda/sycek-sub004/internal/lexer"
)

func parseSrc(t *testing.T, src string) (*ast.TranslationUnit, *diag.Bag) {
	t.Helper()
	lx := lexer.Create(lexer.NewSource(strings.NewReader(src), "t.c"), "t.c")
	diags := diag.New()
	p := New(lx, diags)
	return p.Parse(), diags
}

func Test_ParseSimpleFunction(t *testing.T) {
	unit, diags := parseSrc(t, "int main(void) { return 0; }")
	require.Equal(t, 0, diags.Len())
	require.Len(t, unit.Decls, 1)

	fn, ok := unit.Decls[0].(*ast.FuncDef)
	require.True(t, ok)
	assert.NotNil(t, fn.Declarator.Name)
	assert.Equal(t, "main", fn.Declarator.Name.Text)
	require.Len(t, fn.Body.Items, 1)

	ret, ok := fn.Body.Items[0].(*ast.ReturnStmt)
	require.True(t, ok)
	assert.NotNil(t, ret.Value)
}

func Test_ParseGlobalVarDecl(t *testing.T) {
	unit, diags := parseSrc(t, "int x = 42;")
	require.Equal(t, 0, diags.Len())
	require.Len(t, unit.Decls, 1)

	decl, ok := unit.Decls[0].(*ast.Decl)
	require.True(t, ok)
	require.Len(t, decl.Declarators, 1)
	assert.Equal(t, "x", decl.Declarators[0].Declarator.Name.Text)
	assert.NotNil(t, decl.Declarators[0].Init)
}

func Test_ParseMultiDeclarator(t *testing.T) {
	unit, diags := parseSrc(t, "int a, *b, c[3];")
	require.Equal(t, 0, diags.Len())
	decl := unit.Decls[0].(*ast.Decl)
	require.Len(t, decl.Declarators, 3)
	assert.Len(t, decl.Declarators[1].Declarator.Pointers, 1)
	assert.Equal(t, ast.SuffixArray, decl.Declarators[2].Declarator.Suffixes[0].Kind)
}

func Test_ParseStructDecl(t *testing.T) {
	unit, diags := parseSrc(t, "struct point { int x; int y; };")
	require.Equal(t, 0, diags.Len())
	decl := unit.Decls[0].(*ast.Decl)
	require.NotNil(t, decl.Specs.RecordSpec)
	assert.Len(t, decl.Specs.RecordSpec.Fields, 2)
}

func Test_ParseIfElseWhileFor(t *testing.T) {
	src := `int f(int n) {
		if (n > 0) { return 1; } else { return 0; }
		while (n) { n--; }
		for (int i = 0; i < n; i++) { n = n - 1; }
		return n;
	}`
	unit, diags := parseSrc(t, src)
	require.Equal(t, 0, diags.Len())
	fn := unit.Decls[0].(*ast.FuncDef)
	require.Len(t, fn.Body.Items, 4)
	_, ok := fn.Body.Items[0].(*ast.IfStmt)
	assert.True(t, ok)
	_, ok = fn.Body.Items[1].(*ast.WhileStmt)
	assert.True(t, ok)
	forStmt, ok := fn.Body.Items[2].(*ast.ForStmt)
	require.True(t, ok)
	assert.NotNil(t, forStmt.Init)
}

func Test_ParseCastVsParenDisambiguation(t *testing.T) {
	unit, diags := parseSrc(t, "int f(int x) { return (int)x + (x); }")
	require.Equal(t, 0, diags.Len())
	fn := unit.Decls[0].(*ast.FuncDef)
	ret := fn.Body.Items[0].(*ast.ReturnStmt)
	bin := ret.Value.(*ast.BinOp)
	_, isCast := bin.Left.(*ast.CastExpr)
	assert.True(t, isCast)
	_, isParen := bin.Right.(*ast.ParenExpr)
	assert.True(t, isParen)
}

func Test_ParseTypedefThenUseAsTypeSpec(t *testing.T) {
	unit, diags := parseSrc(t, "typedef int myint; myint x;")
	require.Equal(t, 0, diags.Len())
	require.Len(t, unit.Decls, 2)
	decl := unit.Decls[1].(*ast.Decl)
	assert.NotNil(t, decl.Specs.TypedefName)
	assert.Equal(t, "myint", decl.Specs.TypedefName.Text)
}

func Test_ParseSwitchCaseDefault(t *testing.T) {
	src := `int f(int x) {
		switch (x) {
		case 1: return 1;
		default: return 0;
		}
	}`
	unit, diags := parseSrc(t, src)
	require.Equal(t, 0, diags.Len())
	fn := unit.Decls[0].(*ast.FuncDef)
	_, ok := fn.Body.Items[0].(*ast.SwitchStmt)
	assert.True(t, ok)
}

func Test_ParseCompoundLiteral(t *testing.T) {
	unit, diags := parseSrc(t, "int f(void) { int *p = (int[]){1, 2, 3}; return 0; }")
	require.Equal(t, 0, diags.Len())
	fn := unit.Decls[0].(*ast.FuncDef)
	decl := fn.Body.Items[0].(*ast.Decl)
	init := decl.Declarators[0].Init.(*ast.ExprInitializer)
	_, ok := init.Value.(*ast.CompoundLiteral)
	assert.True(t, ok)
}

func Test_ParsePreservesTrivia(t *testing.T) {
	unit, diags := parseSrc(t, "// leading comment\nint x;")
	require.Equal(t, 0, diags.Len())
	decl := unit.Decls[0].(*ast.Decl)
	require.NotEmpty(t, decl.Lead)
}

func Test_ParseErrorRecoversAtNextDecl(t *testing.T) {
	unit, diags := parseSrc(t, "int x = ; int y = 2;")
	assert.True(t, diags.HasErrors())
	require.Len(t, unit.Decls, 2)
}

func Test_ParseIntLiteralValue(t *testing.T) {
	v, err := ParseIntLiteralValue("0x1A")
	require.NoError(t, err)
	assert.EqualValues(t, 26, v)

	v, err = ParseIntLiteralValue("10UL")
	require.NoError(t, err)
	assert.EqualValues(t, 10, v)
}

func Test_StrayByteIsReportedAsLexInvalid(t *testing.T) {
	_, diags := parseSrc(t, "int x = 1 $ 2;")
	require.True(t, diags.HasErrors())
	found := false
	for _, d := range diags.Items() {
		if d.Kind == diag.KindLexInvalid {
			found = true
		}
	}
	assert.True(t, found, "expected a KindLexInvalid diagnostic for the stray '$'")
}
