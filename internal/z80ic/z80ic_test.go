package z80ic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_OperandStringForms(t *testing.T) {
	assert.Equal(t, "a", Phys(RegA).String())
	assert.Equal(t, "vr3", Virt(VReg{ID: 3}).String())
	assert.Equal(t, "vrr1", Virt(VReg{ID: 1, Wide: true}).String())
	assert.Equal(t, "42", Imm(42).String())
	assert.Equal(t, "foo", Lbl("foo").String())
	assert.Equal(t, "(hl)", Indirect(RegHL).String())
	assert.Equal(t, "(ix+4)", IndirectDisp(RegIX, 4).String())
	assert.Equal(t, "(ix-2)", IndirectDisp(RegIX, -2).String())
	assert.Equal(t, "(counter)", IndirectLabel("counter").String())
}

func Test_PhysRegWidth(t *testing.T) {
	assert.True(t, RegHL.Wide())
	assert.False(t, RegA.Wide())
}

func Test_VirtualOperandDetection(t *testing.T) {
	assert.True(t, Virt(VReg{ID: 0}).IsVirtual())
	assert.False(t, Phys(RegA).IsVirtual())
}

func Test_InstructionBuilders(t *testing.T) {
	i := Two(MnLd, Phys(RegA), Imm(5))
	assert.Equal(t, MnLd, i.Op)
	assert.Equal(t, "a", i.Dst.String())

	j := CondJump(MnJp, CondZ, ".Lend")
	assert.Equal(t, CondZ, j.Cond)
	assert.Equal(t, ".Lend", j.Src.Label)

	lbl := LabelInstr("main")
	assert.Equal(t, MnLabel, lbl.Op)
	assert.Equal(t, "main", lbl.Label)
}

func Test_MnemonicString(t *testing.T) {
	assert.Equal(t, "ld", MnLd.String())
	assert.Equal(t, "ex de,hl", MnExDEHL.String())
}
