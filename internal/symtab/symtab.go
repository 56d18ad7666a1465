// Package symtab is the compiler's symbol index: nested lexical scopes
// over a flat per-scope map[string]*Symbol, generalizing
// ysem/analyzer.go's Analyzer.{structs, globals, constants, functions, locals}
// maps into a single stack-of-scopes type that also tracks the
// extern/tentative/defined linkage lifecycle required for
// file-scope objects (a declaration can be redeclared as extern, as a
// tentative definition, and finally as a defined object, and the index
// must merge those in the right order rather than flag every redeclaration
// as a duplicate the way buildSymbolTables-style one-shot checking does).
package symtab

import (
	"github.com/jxsvoboda/sycek-sub004/internal/ctype"
	"github.com/jxsvoboda/sycek-sub004/internal/srcpos"
)

// Linkage classifies how a Symbol participates in the tentative/extern/
// defined lifecycle.
type Linkage int

const (
	LinkageNone Linkage = iota // a local variable: no external linkage
	LinkageExternal // extern declaration or definition
	LinkageInternal // static at file scope
)

// Kind tags what a Symbol denotes.
type Kind int

const (
	KindVar Kind = iota
	KindFunc
	KindTypedef
	KindEnumConst
)

// DefState tracks a file-scope object's progress through the
// declared/tentative/defined lifecycle: a bare `extern int
// x;` only declares, `int x;` at file scope is tentative until either
// another tentative declaration or a definition with an initializer is
// seen, and `int x = 1;` is a definition outright.
type DefState int

const (
	Declared DefState = iota
	Tentative
	Defined
)

// Symbol is one named entity: a variable, function, typedef, or
// enumeration constant.
type Symbol struct {
	Name string
	Kind Kind
	Type *ctype.Type
	Linkage Linkage
	State DefState
	Pos srcpos.Position
	IRName string // the linkage name IR/codegen use to reference it
	EnumVal int64 // set when Kind == KindEnumConst
}

// scope is one lexical level: file scope, a function body, or a nested
// block.
type scope struct {
	symbols map[string]*Symbol
}

func newScope() *scope {
	return &scope{symbols: make(map[string]*Symbol)}
}

// Table is the symbol index: a stack of scopes with file scope at the
// bottom, mirroring the way ysem/analyzer.go keeps one map for file-scope
// symbols and swaps in a fresh `locals` map per function, generalized to
// arbitrary nesting for C's block scoping.
type Table struct {
	scopes []*scope
}

// New returns a Table with just the file (global) scope open.
func New() *Table {
	return &Table{scopes: []*scope{newScope()}}
}

// PushScope opens a new nested scope (entering a function body or a block).
func (t *Table) PushScope() {
	t.scopes = append(t.scopes, newScope())
}

// PopScope closes the innermost scope.
func (t *Table) PopScope() {
	if len(t.scopes) > 1 {
		t.scopes = t.scopes[:len(t.scopes)-1]
	}
}

// Lookup searches from the innermost scope outward, the way C name
// resolution does, and returns the first match.
func (t *Table) Lookup(name string) (*Symbol, bool) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if sym, ok := t.scopes[i].symbols[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// LookupCurrent looks up name only in the innermost scope, used to detect
// a same-scope redeclaration.
func (t *Table) LookupCurrent(name string) (*Symbol, bool) {
	cur := t.scopes[len(t.scopes)-1]
	sym, ok := cur.symbols[name]
	return sym, ok
}

// Insert adds sym to the innermost scope unconditionally, overwriting any
// existing entry of the same name in that scope. Callers that need
// redeclaration checking should call LookupCurrent/Merge first.
func (t *Table) Insert(sym *Symbol) {
	cur := t.scopes[len(t.scopes)-1]
	cur.symbols[sym.Name] = sym
}

// MergeResult reports what Merge decided about a new declaration against
// an existing file-scope symbol of the same name.
type MergeResult int

const (
	MergeOK MergeResult = iota // compatible; existing symbol updated in place
	MergeIncompatibleType // types are not compatible (redeclaration error)
	MergeRedefinition // both sides are full definitions (redeclaration error)
)

// Merge reconciles a new file-scope declaration of the same name against
// an existing Symbol, applying the extern/tentative/defined
// lifecycle: a declaration only upgrades DefState, never downgrades it,
// and two incompatible types or two full definitions are errors.
func Merge(existing *Symbol, incomingType *ctype.Type, incomingState DefState, incomingLinkage Linkage) MergeResult {
	if !existing.Type.IsCompatible(incomingType) {
		return MergeIncompatibleType
	}
	if existing.State == Defined && incomingState == Defined {
		return MergeRedefinition
	}
	if incomingState > existing.State {
		existing.State = incomingState
	}
	if incomingLinkage == LinkageInternal {
		existing.Linkage = LinkageInternal
	}
	return MergeOK
}
