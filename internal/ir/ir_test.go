package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_TypeStringFormat(t *testing.T) {
	assert.Equal(t, "int(2,s)", Int(2, false).String())
	assert.Equal(t, "int(1,u)", Int(1, true).String())
	assert.Equal(t, "ptr(int(2,s))", Ptr(Int(2, false)).String())
	assert.Equal(t, "void", Void.String())
}

func Test_OperandConstructors(t *testing.T) {
	imm := Imm(5, Int(2, false))
	assert.Equal(t, OpndImmediate, imm.Kind)
	assert.Equal(t, "5", imm.String())

	v := Var("t0", Int(2, false))
	assert.Equal(t, "t0", v.String())

	l := LabelRef("L1")
	assert.Equal(t, "@L1", l.String())
}

func Test_OpString(t *testing.T) {
	assert.Equal(t, "add", OpAdd.String())
	assert.Equal(t, "jumpz", OpJumpIfZero.String())
}
