package lower

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jxsvoboda/sycek-sub004/internal/diag"
	"github.com/jxsvoboda/sycek-sub004/internal/ir"
	"github.com/jxsvoboda/sycek-sub004/internal/lexer"
	"github.com/jxsvoboda/sycek-sub004/internal/parser"
)

func lowerSrc(t *testing.T, src string) (*ir.Module, *diag.Bag) {
	t.Helper()
	lx := lexer.Create(lexer.NewSource(strings.NewReader(src), "t.c"), "t.c")
	diags := diag.New()
	p := parser.New(lx, diags)
	unit := p.Parse()
	require.False(t, diags.HasErrors(), diags.Sorted())

	lw := New(diags)
	return lw.Lower(unit), diags
}

func findProc(mod *ir.Module, name string) *ir.Proc {
	for i := range mod.Procs {
		if mod.Procs[i].Name == name {
			return &mod.Procs[i]
		}
	}
	return nil
}

func opsOf(instrs []ir.Instr) []ir.Op {
	out := make([]ir.Op, len(instrs))
	for i, in := range instrs {
		out[i] = in.Op
	}
	return out
}

func Test_SimpleReturnLowersAddThenReturn(t *testing.T) {
	mod, diags := lowerSrc(t, `
int add(int a, int b) {
	return a + b;
}
`)
	assert.False(t, diags.HasErrors())

	proc := findProc(mod, "add")
	require.NotNil(t, proc)
	assert.True(t, proc.Public)
	require.Len(t, proc.Params, 2)
	assert.Equal(t, "a", proc.Params[0].Name)
	assert.Equal(t, "b", proc.Params[1].Name)

	assert.Contains(t, opsOf(proc.Instrs), ir.OpAdd)
	assert.Equal(t, ir.OpReturn, proc.Instrs[len(proc.Instrs)-1].Op)
}

func Test_VoidEmptyParamListProducesNoParams(t *testing.T) {
	mod, _ := lowerSrc(t, `
void noop(void) {
}
`)
	proc := findProc(mod, "noop")
	require.NotNil(t, proc)
	assert.Empty(t, proc.Params)
}

func Test_LocalDeclWithInitializerLowersToCopy(t *testing.T) {
	mod, _ := lowerSrc(t, `
int f(void) {
	int x = 42;
	return x;
}
`)
	proc := findProc(mod, "f")
	require.NotNil(t, proc)
	assert.Contains(t, opsOf(proc.Instrs), ir.OpCopy)
}

func Test_IfStmtLowersToConditionalJumps(t *testing.T) {
	mod, _ := lowerSrc(t, `
int f(int a) {
	if (a) {
		return 1;
	}
	return 0;
}
`)
	proc := findProc(mod, "f")
	require.NotNil(t, proc)
	ops := opsOf(proc.Instrs)
	assert.Contains(t, ops, ir.OpJumpIfZero)
	assert.Contains(t, ops, ir.OpLabel)
}

func Test_WhileLoopLowersToBackwardsJump(t *testing.T) {
	mod, _ := lowerSrc(t, `
int f(int n) {
	int i = 0;
	while (i < n) {
		i = i + 1;
	}
	return i;
}
`)
	proc := findProc(mod, "f")
	require.NotNil(t, proc)
	ops := opsOf(proc.Instrs)
	assert.Contains(t, ops, ir.OpJump)
	assert.Contains(t, ops, ir.OpJumpIfZero)
}

func Test_BreakAndContinueTargetEnclosingLoop(t *testing.T) {
	mod, diags := lowerSrc(t, `
int f(int n) {
	int i = 0;
	while (i < n) {
		if (i == 5) {
			break;
		}
		if (i == 2) {
			i = i + 1;
			continue;
		}
		i = i + 1;
	}
	return i;
}
`)
	assert.False(t, diags.HasErrors())
	proc := findProc(mod, "f")
	require.NotNil(t, proc)
	assert.Contains(t, opsOf(proc.Instrs), ir.OpJump)
}

func Test_CallExprLowersArgsThenCall(t *testing.T) {
	mod, diags := lowerSrc(t, `
int add(int a, int b);

int f(void) {
	return add(1, 2);
}
`)
	assert.False(t, diags.HasErrors())
	proc := findProc(mod, "f")
	require.NotNil(t, proc)
	ops := opsOf(proc.Instrs)
	assert.Contains(t, ops, ir.OpArg)
	assert.Contains(t, ops, ir.OpCall)

	assert.Empty(t, mod.Data, "a function prototype must not reserve file-scope storage")
}

func Test_GlobalWithConstInitializerEmitsData(t *testing.T) {
	mod, _ := lowerSrc(t, `
int counter = 7;
`)
	require.Len(t, mod.Data, 1)
	assert.Equal(t, "counter", mod.Data[0].Name)
	assert.Equal(t, ir.DataBytes, mod.Data[0].Kind)
}

func Test_TentativeDefinitionMergesWithLaterDefinition(t *testing.T) {
	mod, diags := lowerSrc(t, `
int counter;
int counter = 3;
`)
	assert.False(t, diags.HasErrors())
	require.Len(t, mod.Data, 1)
	assert.Equal(t, ir.DataBytes, mod.Data[0].Kind)
}

func Test_EnumeratorsGetSuccessiveValuesStartingAtZero(t *testing.T) {
	mod, diags := lowerSrc(t, `
enum Color { RED, GREEN, BLUE };

int f(void) {
	return BLUE;
}
`)
	assert.False(t, diags.HasErrors())
	proc := findProc(mod, "f")
	require.NotNil(t, proc)

	ret := proc.Instrs[len(proc.Instrs)-1]
	require.Equal(t, ir.OpReturn, ret.Op)
	require.Len(t, ret.Args, 1)
	assert.Equal(t, int64(2), ret.Args[0].Imm)
}

func Test_EnumeratorExplicitValueResetsTheCounter(t *testing.T) {
	mod, _ := lowerSrc(t, `
enum Flags { A = 10, B, C = 20, D };

int f(void) {
	return D;
}
`)
	proc := findProc(mod, "f")
	require.NotNil(t, proc)
	ret := proc.Instrs[len(proc.Instrs)-1]
	assert.Equal(t, int64(21), ret.Args[0].Imm)
}

func Test_UndeclaredIdentifierIsReported(t *testing.T) {
	_, diags := lowerSrc(t, `
int f(void) {
	return nosuchvar;
}
`)
	assert.True(t, diags.HasErrors())
}

func Test_GotoAndLabelLowerToJumpAndLabel(t *testing.T) {
	mod, diags := lowerSrc(t, `
int f(int a) {
	if (a) {
		goto done;
	}
	a = 1;
done:
	return a;
}
`)
	assert.False(t, diags.HasErrors())
	proc := findProc(mod, "f")
	require.NotNil(t, proc)
	assert.Contains(t, opsOf(proc.Instrs), ir.OpJump)
	assert.Contains(t, opsOf(proc.Instrs), ir.OpLabel)
}

func Test_UndefinedLabelIsReported(t *testing.T) {
	_, diags := lowerSrc(t, `
int f(void) {
	goto nowhere;
	return 0;
}
`)
	assert.True(t, diags.HasErrors())
}

func Test_CastInvolvingStructTypeIsReported(t *testing.T) {
	_, diags := lowerSrc(t, `
struct Point { int x; int y; };
struct Point g;

int f(void) {
	return (int)g;
}
`)
	assert.True(t, diags.HasErrors())
}

func Test_AsmStmtPassesTextThrough(t *testing.T) {
	mod, _ := lowerSrc(t, `
void f(void) {
	asm("nop");
}
`)
	proc := findProc(mod, "f")
	require.NotNil(t, proc)
	require.NotEmpty(t, proc.Instrs)
	found := false
	for _, in := range proc.Instrs {
		if in.Op == ir.OpAsm {
			found = true
			assert.Equal(t, "nop", in.AsmText)
		}
	}
	assert.True(t, found)
}

func Test_FallingOffNonVoidFunctionIsMissingReturn(t *testing.T) {
	_, diags := lowerSrc(t, `
int f(int x) {
	if (x) {
		return 1;
	}
}
`)
	require.True(t, diags.HasErrors())
	found := false
	for _, d := range diags.Items() {
		if d.Kind == diag.KindMissingReturn {
			found = true
		}
	}
	assert.True(t, found, "expected a missing-return diagnostic")
}

func Test_IfElseBothReturningIsNotMissingReturn(t *testing.T) {
	_, diags := lowerSrc(t, `
int f(int x) {
	if (x) {
		return 1;
	} else {
		return 0;
	}
}
`)
	assert.False(t, diags.HasErrors())
}

func Test_VoidFunctionFallingOffEndIsFine(t *testing.T) {
	_, diags := lowerSrc(t, `
void f(void) {
	int x;
	x = 1;
}
`)
	assert.False(t, diags.HasErrors())
}
