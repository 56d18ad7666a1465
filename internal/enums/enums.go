// Package enums assigns successive integer values to an enum's
// enumerators, following C's "prior value + 1, first is 0" default rule
// with explicit `= expr` overrides, generalizing the constant-folding
// helpers ylex/lexer.go applies to `#if` expressions to the much smaller
// grammar of an enum body.
package enums

import "github.com/jxsvoboda/sycek-sub004/internal/ctype"

// Enumerator is one resolved `NAME = value` pair.
type Enumerator struct {
	Name string
	Value int64
}

// Assign resolves the values of an enum body given each enumerator's name
// and optional explicit value (nil meaning "implicit"): the first
// enumerator defaults to 0, and every subsequent implicit one is its
// predecessor's value plus 1.
func Assign(names []string, explicit []*int64) []Enumerator {
	out := make([]Enumerator, len(names))
	var next int64
	for i, name := range names {
		var v int64
		if explicit[i] != nil {
			v = *explicit[i]
		} else {
			v = next
		}
		out[i] = Enumerator{Name: name, Value: v}
		next = v + 1
	}
	return out
}

// UnderlyingType picks the integer representation for an enum given its
// resolved enumerator values: `int` unless a value falls outside int's
// range, in which case the compiler widens to `long` (the Z80 target
// never needs more than 32 bits).
func UnderlyingType(values []Enumerator) *ctype.Type {
	for _, e := range values {
		if e.Value < -32768 || e.Value > 32767 {
			return ctype.LongType
		}
	}
	return ctype.IntType
}

// ToType builds the ctype.Type for an enum given its name and resolved
// enumerators.
func ToType(name string, values []Enumerator) *ctype.Type {
	underlying := UnderlyingType(values)
	out := make([]ctype.Enumerator, len(values))
	for i, e := range values {
		out[i] = ctype.Enumerator{Name: e.Name, Value: e.Value}
	}
	return &ctype.Type{
		Kind: ctype.Enum,
		EnumName: name,
		Enumerators: out,
		Underlying: underlying.Basic,
	}
}
