package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jxsvoboda/sycek-sub004/internal/ir"
	"github.com/jxsvoboda/sycek-sub004/internal/z80ic"
)

func int16Type() ir.Type { return ir.Int(2, false) }

func Test_SimpleAddLowersToLoadThenAdd(t *testing.T) {
	p := ir.Proc{
		Name: "add2",
		Params: []ir.Param{
			{Name: "a", Type: int16Type()},
			{Name: "b", Type: int16Type()},
		},
		Instrs: []ir.Instr{
			{Dest: "t0", DestType: int16Type(), Op: ir.OpAdd, Args: []ir.Operand{
				ir.Var("a", int16Type()), ir.Var("b", int16Type()),
			}},
			{Op: ir.OpReturn, Args: []ir.Operand{ir.Var("t0", int16Type())}},
		},
	}
	mod := &ir.Module{Procs: []ir.Proc{p}}

	out := New().Generate(mod)
	require.Len(t, out.Procs, 1)
	instrs := out.Procs[0].Instrs

	require.Len(t, instrs, 4)
	assert.Equal(t, z80ic.MnLd, instrs[0].Op)
	assert.Equal(t, z80ic.MnAdd, instrs[1].Op)
	assert.Equal(t, z80ic.MnLd, instrs[2].Op)
	assert.Equal(t, z80ic.RegBC, instrs[2].Dst.Phys)
	assert.Equal(t, z80ic.MnRet, instrs[3].Op)
}

func Test_MultiplyRoutesThroughRuntimeHelper(t *testing.T) {
	p := ir.Proc{
		Name: "mul2",
		Params: []ir.Param{
			{Name: "a", Type: int16Type()},
			{Name: "b", Type: int16Type()},
		},
		Instrs: []ir.Instr{
			{Dest: "t0", DestType: int16Type(), Op: ir.OpMul, Args: []ir.Operand{
				ir.Var("a", int16Type()), ir.Var("b", int16Type()),
			}},
		},
	}
	mod := &ir.Module{Procs: []ir.Proc{p}}

	out := New().Generate(mod)
	instrs := out.Procs[0].Instrs

	require.Len(t, instrs, 4)
	assert.Equal(t, z80ic.MnPush, instrs[0].Op)
	assert.Equal(t, z80ic.MnPush, instrs[1].Op)
	assert.Equal(t, z80ic.MnCall, instrs[2].Op)
	assert.Equal(t, "__mul16", instrs[2].Src.Label)
}

func Test_ConstAndJumpLowering(t *testing.T) {
	p := ir.Proc{
		Name: "branchy",
		Instrs: []ir.Instr{
			{Dest: "c", DestType: int16Type(), Op: ir.OpConst, Args: []ir.Operand{
				ir.Imm(0, int16Type()),
			}},
			{Op: ir.OpJumpIfZero, Args: []ir.Operand{
				ir.Var("c", int16Type()), ir.LabelRef("L1"),
			}},
			{Op: ir.OpLabel, Args: []ir.Operand{ir.LabelRef("L1")}},
			{Op: ir.OpReturn},
		},
	}
	mod := &ir.Module{Procs: []ir.Proc{p}}

	out := New().Generate(mod)
	instrs := out.Procs[0].Instrs

	assert.Equal(t, z80ic.MnLd, instrs[0].Op)
	var sawCondJump, sawLabel bool
	for _, in := range instrs {
		if in.Op == z80ic.MnJp && in.Cond == z80ic.CondZ {
			sawCondJump = true
		}
		if in.Op == z80ic.MnLabel && in.Label == "L1" {
			sawLabel = true
		}
	}
	assert.True(t, sawCondJump)
	assert.True(t, sawLabel)
}

func Test_DataLoweringPreservesBytesAndPublicFlag(t *testing.T) {
	mod := &ir.Module{
		Data: []ir.Data{
			{Name: "greeting", Public: true, Kind: ir.DataBytes, Size: 6, Bytes: []byte("hello\x00")},
			{Name: "counter", Kind: ir.DataZero, Size: 2},
		},
	}

	out := New().Generate(mod)
	require.Len(t, out.Data, 2)
	assert.Equal(t, z80ic.DataBytes, out.Data[0].Kind)
	assert.True(t, out.Data[0].Public)
	assert.Equal(t, z80ic.DataSpace, out.Data[1].Kind)
	assert.False(t, out.Data[1].Public)
}

// Test_CallWithArgsPushesInOpArgOrder checks that codegen pushes each
// OpArg in the order internal/lower emitted it, without reordering — the
// left-to-right-evaluated, rightmost-pushed-first calling convention is
// internal/lower's responsibility, not codegen's.
func Test_CallWithArgsPushesInOpArgOrder(t *testing.T) {
	p := ir.Proc{
		Name: "caller",
		Instrs: []ir.Instr{
			{Op: ir.OpArg, Args: []ir.Operand{ir.Imm(2, int16Type())}},
			{Op: ir.OpArg, Args: []ir.Operand{ir.Imm(1, int16Type())}},
			{Dest: "r", DestType: int16Type(), Op: ir.OpCall, Args: []ir.Operand{ir.LabelRef("callee")}},
			{Op: ir.OpReturn, Args: []ir.Operand{ir.Var("r", int16Type())}},
		},
	}
	mod := &ir.Module{Procs: []ir.Proc{p}}

	out := New().Generate(mod)
	instrs := out.Procs[0].Instrs

	assert.Equal(t, z80ic.MnPush, instrs[0].Op)
	assert.Equal(t, int64(2), instrs[0].Dst.Imm)
	assert.Equal(t, z80ic.MnPush, instrs[1].Op)
	assert.Equal(t, int64(1), instrs[1].Dst.Imm)
	assert.Equal(t, z80ic.MnCall, instrs[2].Op)
	assert.Equal(t, "callee", instrs[2].Src.Label)
}
