// Package ctype is the compiler's type system: a single Type tree with a
// Kind tag plus kind-specific fields, size/alignment computation, and
// compatibility/equality rules, generalizing yparse/types.go's
// {TypeKind, BaseType, Type} shape from YAPL's six-kind type system to the
// full C basic/pointer/array/function/record/enum type algebra this compiler
// requires, with record layout resolved against a RecordLayout table
// the way yparse/types.go resolves TypeStruct sizes against a
// map[string]*StructDef.
package ctype

import (
	"fmt"
	"strings"
)

// Kind tags the shape of a Type.
type Kind int

const (
	Invalid Kind = iota
	Void
	Basic
	Pointer
	Array
	Function
	Record // struct or union
	Enum
)

// BasicKind enumerates the arithmetic types requires; floats
// are recognized for parsing/type-checking only, never codegen'd
// (Non-goals: no floating point).
type BasicKind int

const (
	BCharSigned BasicKind = iota
	BCharUnsigned
	BBool
	BSCharSByte // plain signed char
	BShort
	BUShort
	BInt
	BUInt
	BLong
	BULong
	BLongLong
	BULongLong
	BFloat
	BDouble
	BLongDouble
)

var basicNames = map[BasicKind]string{
	BCharSigned: "char", BCharUnsigned: "unsigned char", BBool: "_Bool",
	BSCharSByte: "signed char", BShort: "short", BUShort: "unsigned short",
	BInt: "int", BUInt: "unsigned int", BLong: "long", BULong: "unsigned long",
	BLongLong: "long long", BULongLong: "unsigned long long",
	BFloat: "float", BDouble: "double", BLongDouble: "long double",
}

func (b BasicKind) String() string { return basicNames[b] }

// basicSize/basicAlign give the Z80 target's sizes, the target
// data model: 8-bit char/bool, 16-bit short/int/pointer, 32-bit long,
// 32-bit long long (no wider integer support), floats sized but never
// lowered to code.
var basicSize = map[BasicKind]int{
	BCharSigned: 1, BCharUnsigned: 1, BBool: 1, BSCharSByte: 1,
	BShort: 2, BUShort: 2, BInt: 2, BUInt: 2,
	BLong: 4, BULong: 4, BLongLong: 4, BULongLong: 4,
	BFloat: 4, BDouble: 8, BLongDouble: 8,
}

func (b BasicKind) Size() int { return basicSize[b] }

// Alignment matches Size on the Z80 target: nothing is over-aligned.
func (b BasicKind) Alignment() int { return basicSize[b] }

func (b BasicKind) IsUnsigned() bool {
	switch b {
	case BCharUnsigned, BBool, BUShort, BUInt, BULong, BULongLong:
		return true
	default:
		return false
	}
}

func (b BasicKind) IsFloat() bool {
	return b == BFloat || b == BDouble || b == BLongDouble
}

// Qual is a bitset of type qualifiers.
type Qual int

const (
	QualNone Qual = 0
	Const Qual = 1 << iota
	Volatile
	Restrict
	Atomic
)

// Field is one member of a Record type.
type Field struct {
	Name string
	Type *Type
	Offset int
	BitWidth int // 0 when not a bitfield (bitfields unsupported)
}

// Enumerator is one named constant of an Enum type.
type Enumerator struct {
	Name string
	Value int64
}

// Type is the single recursive type representation used from parsing
// through codegen. Only the field(s) matching Kind are meaningful,
// following yparse/types.go's Type struct exactly in that regard.
type Type struct {
	Kind Kind
	Qual Qual

	Basic BasicKind // Kind == Basic

	Pointee *Type // Kind == Pointer

	ElemType *Type // Kind == Array
	ArrayLen int // Kind == Array; -1 when an incomplete/flexible array

	Return *Type // Kind == Function
	Params []*Type // Kind == Function
	Variadic bool // Kind == Function

	RecordName string // Kind == Record (may be "" for anonymous)
	IsUnion bool // Kind == Record
	Fields []Field // Kind == Record; nil for an incomplete record

	EnumName string // Kind == Enum (may be "" for anonymous)
	Enumerators []Enumerator // Kind == Enum
	Underlying BasicKind // Kind == Enum: the representation chosen for it
}

// Predefined convenience types, mirroring yparse/types.go's TypeVoidType
// and friends.
var (
	VoidType = &Type{Kind: Void}
	CharType = &Type{Kind: Basic, Basic: BCharSigned}
	UCharType = &Type{Kind: Basic, Basic: BCharUnsigned}
	BoolType = &Type{Kind: Basic, Basic: BBool}
	IntType = &Type{Kind: Basic, Basic: BInt}
	UIntType = &Type{Kind: Basic, Basic: BUInt}
	ShortType = &Type{Kind: Basic, Basic: BShort}
	UShortType = &Type{Kind: Basic, Basic: BUShort}
	LongType = &Type{Kind: Basic, Basic: BLong}
	ULongType = &Type{Kind: Basic, Basic: BULong}
)

// NewPointer returns a pointer-to-pointee type.
func NewPointer(pointee *Type) *Type {
	return &Type{Kind: Pointer, Pointee: pointee}
}

// NewArray returns an array-of-elem type with the given length, or an
// incomplete array when length is -1.
func NewArray(elem *Type, length int) *Type {
	return &Type{Kind: Array, ElemType: elem, ArrayLen: length}
}

// NewFunction returns a function type.
func NewFunction(ret *Type, params []*Type, variadic bool) *Type {
	return &Type{Kind: Function, Return: ret, Params: params, Variadic: variadic}
}

// String renders a human-readable type name, used in diagnostic messages.
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case Void:
		return "void"
	case Basic:
		return t.Basic.String()
	case Pointer:
		return t.Pointee.String() + " *"
	case Array:
		if t.ArrayLen < 0 {
			return fmt.Sprintf("%s []", t.ElemType.String())
		}
		return fmt.Sprintf("%s [%d]", t.ElemType.String(), t.ArrayLen)
	case Function:
		var params []string
		for _, p := range t.Params {
			params = append(params, p.String())
		}
		variadic := ""
		if t.Variadic {
			variadic = ",..."
		}
		return fmt.Sprintf("%s (%s%s)", t.Return.String(), strings.Join(params, ", "), variadic)
	case Record:
		kw := "struct"
		if t.IsUnion {
			kw = "union"
		}
		if t.RecordName == "" {
			return kw + " <anonymous>"
		}
		return kw + " " + t.RecordName
	case Enum:
		if t.EnumName == "" {
			return "enum <anonymous>"
		}
		return "enum " + t.EnumName
	default:
		return "<invalid>"
	}
}

// Size returns the size in bytes of t, or -1 if it cannot be determined
// (an incomplete record/array or a void type used where a size is
// required).
func (t *Type) Size() int {
	if t == nil {
		return -1
	}
	switch t.Kind {
	case Void:
		return 0
	case Basic:
		return t.Basic.Size()
	case Pointer:
		return 2 // all pointers are 16-bit on the Z80 target
	case Array:
		if t.ArrayLen < 0 {
			return -1
		}
		elemSize := t.ElemType.Size()
		if elemSize < 0 {
			return -1
		}
		return elemSize * t.ArrayLen
	case Record:
		if t.Fields == nil {
			return -1
		}
		size := 0
		for _, f := range t.Fields {
			end := f.Offset + f.Type.Size()
			if end > size {
				size = end
			}
		}
		return alignUp(size, t.Alignment())
	case Enum:
		return t.Underlying.Size()
	default:
		return -1
	}
}

// Alignment returns the alignment requirement in bytes.
func (t *Type) Alignment() int {
	if t == nil {
		return 1
	}
	switch t.Kind {
	case Void:
		return 1
	case Basic:
		return t.Basic.Alignment()
	case Pointer:
		return 2
	case Array:
		return t.ElemType.Alignment()
	case Record:
		align := 1
		for _, f := range t.Fields {
			if a := f.Type.Alignment(); a > align {
				align = a
			}
		}
		return align
	case Enum:
		return t.Underlying.Alignment()
	default:
		return 1
	}
}

func alignUp(n, align int) int {
	if align <= 1 {
		return n
	}
	if rem := n % align; rem != 0 {
		return n + (align - rem)
	}
	return n
}

// FieldByName returns the field named name, or nil if t is not a Record
// or has no such field.
func (t *Type) FieldByName(name string) *Field {
	if t == nil || t.Kind != Record {
		return nil
	}
	for i := range t.Fields {
		if t.Fields[i].Name == name {
			return &t.Fields[i]
		}
	}
	return nil
}

// Unqualified returns a copy of t with Qual cleared at the top level.
func (t *Type) Unqualified() *Type {
	if t == nil || t.Qual == QualNone {
		return t
	}
	cp := *t
	cp.Qual = QualNone
	return &cp
}

// Equal reports whether t and other are the same type, ignoring
// qualifiers, the way C's type-compatibility rules treat them separately
// from identity for most purposes.
func (t *Type) Equal(other *Type) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case Void:
		return true
	case Basic:
		return t.Basic == other.Basic
	case Pointer:
		return t.Pointee.Equal(other.Pointee)
	case Array:
		return t.ArrayLen == other.ArrayLen && t.ElemType.Equal(other.ElemType)
	case Function:
		if !t.Return.Equal(other.Return) || t.Variadic != other.Variadic {
			return false
		}
		if len(t.Params) != len(other.Params) {
			return false
		}
		for i := range t.Params {
			if !t.Params[i].Equal(other.Params[i]) {
				return false
			}
		}
		return true
	case Record:
		return t.RecordName == other.RecordName && t.IsUnion == other.IsUnion
	case Enum:
		return t.EnumName == other.EnumName
	default:
		return false
	}
}

// IsIntegral reports whether t is a (possibly qualified) integer type,
//; enums count as integral since they lower to their
// underlying integer representation.
func (t *Type) IsIntegral() bool {
	if t == nil {
		return false
	}
	if t.Kind == Enum {
		return true
	}
	return t.Kind == Basic && !t.Basic.IsFloat()
}

// IsArithmetic reports whether t is integral or floating.
func (t *Type) IsArithmetic() bool {
	return t != nil && (t.IsIntegral() || (t.Kind == Basic && t.Basic.IsFloat()))
}

// IsPointer reports whether t is a pointer type.
func (t *Type) IsPointer() bool { return t != nil && t.Kind == Pointer }

// IsScalar reports whether t is arithmetic or a pointer — the set of
// types valid as an `if`/`while`/`for` condition or a cast target.
func (t *Type) IsScalar() bool {
	return t.IsArithmetic() || t.IsPointer()
}

// Decay returns the pointer type an array or function type decays to in
// expression contexts, or t unchanged otherwise.
func (t *Type) Decay() *Type {
	if t == nil {
		return t
	}
	switch t.Kind {
	case Array:
		return NewPointer(t.ElemType)
	case Function:
		return NewPointer(t)
	default:
		return t
	}
}

// IsCompatible reports whether t and other may be used interchangeably in
// a redeclaration (the redeclaration-compatibility rule):
// identical, or both arrays of the same element type where at least one
// side's length is unknown, or both functions with compatible signatures.
func (t *Type) IsCompatible(other *Type) bool {
	if t.Equal(other) {
		return true
	}
	if t == nil || other == nil || t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case Array:
		if !t.ElemType.Equal(other.ElemType) {
			return false
		}
		return t.ArrayLen < 0 || other.ArrayLen < 0
	case Function:
		if !t.Return.Equal(other.Return) {
			return false
		}
		if len(t.Params) == 0 || len(other.Params) == 0 {
			return true // an unprototyped declaration is compatible with any signature
		}
		if len(t.Params) != len(other.Params) || t.Variadic != other.Variadic {
			return false
		}
		for i := range t.Params {
			if !t.Params[i].Equal(other.Params[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
