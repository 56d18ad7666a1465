package regalloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jxsvoboda/sycek-sub004/internal/z80ic"
)

func Test_EveryVirtualRegisterGetsADistinctSlot(t *testing.T) {
	v0 := z80ic.VReg{ID: 0, Wide: true}
	v1 := z80ic.VReg{ID: 1, Wide: true}

	p := z80ic.Proc{
		Name:   "add2",
		Params: []z80ic.VReg{v0, v1},
		Instrs: []z80ic.Instr{
			z80ic.Two(z80ic.MnLd, z80ic.Virt(v0), z80ic.Virt(v1)),
			z80ic.Two(z80ic.MnAdd, z80ic.Virt(v0), z80ic.Virt(v1)),
			z80ic.Zero(z80ic.MnRet),
		},
	}

	a := New()
	out := a.AllocateProc(p)

	assert.Equal(t, 4, out.FrameSize) // two vrr slots, 2 bytes each
	assert.Len(t, a.slots, 2)
	assert.NotEqual(t, a.slots[v0], a.slots[v1])
}

func Test_PrologueSavesAndRestoresFramePointer(t *testing.T) {
	p := z80ic.Proc{
		Name: "leaf",
		Instrs: []z80ic.Instr{
			z80ic.Zero(z80ic.MnRet),
		},
	}

	out := New().AllocateProc(p)
	require.NotEmpty(t, out.Instrs)
	assert.Equal(t, z80ic.MnPush, out.Instrs[0].Op)
	assert.Equal(t, z80ic.RegIX, out.Instrs[0].Dst.Phys)
	assert.Equal(t, z80ic.MnRet, out.Instrs[len(out.Instrs)-1].Op)
}

func Test_NoVirtualOperandsSurviveAllocation(t *testing.T) {
	v0 := z80ic.VReg{ID: 0, Wide: true}
	v1 := z80ic.VReg{ID: 1}

	p := z80ic.Proc{
		Name:   "mixed",
		Params: []z80ic.VReg{v0, v1},
		Instrs: []z80ic.Instr{
			z80ic.Two(z80ic.MnLd, z80ic.Virt(v0), z80ic.Imm(5)),
			z80ic.Two(z80ic.MnAdd, z80ic.Virt(v0), z80ic.Phys(z80ic.RegHL)),
			z80ic.One(z80ic.MnInc, z80ic.Virt(v1)),
			z80ic.Zero(z80ic.MnRet),
		},
	}

	out := New().AllocateProc(p)
	for _, in := range out.Instrs {
		assert.False(t, in.Dst.IsVirtual(), "dst operand should never remain virtual")
		assert.False(t, in.Src.IsVirtual(), "src operand should never remain virtual")
	}
}

func Test_ParameterCopyInUsesStackOffsetsAboveFramePointer(t *testing.T) {
	v0 := z80ic.VReg{ID: 0, Wide: true}
	v1 := z80ic.VReg{ID: 1, Wide: true}

	p := z80ic.Proc{
		Name:   "two_args",
		Params: []z80ic.VReg{v0, v1},
		Instrs: []z80ic.Instr{
			z80ic.Two(z80ic.MnLd, z80ic.Virt(v0), z80ic.Virt(v1)),
			z80ic.Zero(z80ic.MnRet),
		},
	}

	out := New().AllocateProc(p)

	var sawArgLoad bool
	for _, in := range out.Instrs {
		if in.Op == z80ic.MnLd && in.Src.Kind == z80ic.OperandIndirectPhys &&
			in.Src.Phys == z80ic.RegIX && in.Src.Disp >= 4 {
			sawArgLoad = true
		}
	}
	assert.True(t, sawArgLoad, "expected at least one load from an ix+offset incoming-argument slot")
}
