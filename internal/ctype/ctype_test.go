package ctype

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_BasicSizes(t *testing.T) {
	assert.Equal(t, 1, CharType.Size())
	assert.Equal(t, 2, IntType.Size())
	assert.Equal(t, 4, LongType.Size())
	assert.Equal(t, 2, NewPointer(IntType).Size())
}

func Test_ArraySize(t *testing.T) {
	arr := NewArray(IntType, 4)
	assert.Equal(t, 8, arr.Size())

	incomplete := NewArray(IntType, -1)
	assert.Equal(t, -1, incomplete.Size())
}

func Test_RecordSizeWithPadding(t *testing.T) {
	rec := &Type{
		Kind: Record,
		Fields: []Field{
			{Name: "a", Type: CharType, Offset: 0},
			{Name: "b", Type: IntType, Offset: 2},
		},
	}
	assert.Equal(t, 4, rec.Size())
	assert.Equal(t, 2, rec.Alignment())
}

func Test_EqualIgnoresQualifiers(t *testing.T) {
	a := &Type{Kind: Basic, Basic: BInt, Qual: Const}
	b := &Type{Kind: Basic, Basic: BInt}
	assert.True(t, a.Equal(b))
}

func Test_ArrayCompatibleWithUnknownLength(t *testing.T) {
	known := NewArray(IntType, 10)
	unknown := NewArray(IntType, -1)
	assert.True(t, known.IsCompatible(unknown))
	assert.True(t, unknown.IsCompatible(known))
}

func Test_FunctionCompatibleAcrossUnprototyped(t *testing.T) {
	proto := NewFunction(IntType, []*Type{IntType, CharType}, false)
	unprototyped := NewFunction(IntType, nil, false)
	assert.True(t, proto.IsCompatible(unprototyped))
}

func Test_DecayArrayAndFunction(t *testing.T) {
	arr := NewArray(IntType, 3)
	decayed := arr.Decay()
	assert.Equal(t, Pointer, decayed.Kind)
	assert.True(t, decayed.Pointee.Equal(IntType))

	fn := NewFunction(VoidType, nil, false)
	decayedFn := fn.Decay()
	assert.Equal(t, Pointer, decayedFn.Kind)
}

func Test_FieldByName(t *testing.T) {
	rec := &Type{Kind: Record, Fields: []Field{{Name: "x", Type: IntType}}}
	assert.NotNil(t, rec.FieldByName("x"))
	assert.Nil(t, rec.FieldByName("y"))
}
