// Package labels tracks a single function's goto-label namespace: every
// label is function-wide (not block-scoped) in C, so one flat table per
// function body suffices, generalizing ysem/analyzer.go's per-function
// `locals` map pattern to label declared-vs-used-vs-referenced tracking
// for the "undefined label" and "unused label" diagnostics.
package labels

import "github.com/jxsvoboda/sycek-sub004/internal/srcpos"

// Entry records one label's definition site and use count within the
// current function.
type Entry struct {
	Name string
	DefPos srcpos.Position
	Defined bool
	UseCount int
	FirstUse srcpos.Position
}

// Table is the label namespace of a single function body.
type Table struct {
	entries map[string]*Entry
}

// New returns an empty label table for a function body.
func New() *Table {
	return &Table{entries: make(map[string]*Entry)}
}

// Define records a `name:` label definition. It returns false if the
// label was already defined in this function ("duplicate
// label" is a redeclaration-compatibility error).
func (t *Table) Define(name string, pos srcpos.Position) bool {
	e := t.entry(name)
	if e.Defined {
		return false
	}
	e.Defined = true
	e.DefPos = pos
	return true
}

// Use records a `goto name;` reference, kept so the caller can defer
// "label undefined" checking to end-of-function (forward gotos are legal
// in C).
func (t *Table) Use(name string, pos srcpos.Position) {
	e := t.entry(name)
	if e.UseCount == 0 {
		e.FirstUse = pos
	}
	e.UseCount++
}

func (t *Table) entry(name string) *Entry {
	e, ok := t.entries[name]
	if !ok {
		e = &Entry{Name: name}
		t.entries[name] = e
	}
	return e
}

// Undefined returns every label that was used but never defined, in the
// order first referenced is not guaranteed (callers should sort by
// FirstUse if deterministic diagnostic ordering matters).
func (t *Table) Undefined() []*Entry {
	var out []*Entry
	for _, e := range t.entries {
		if !e.Defined {
			out = append(out, e)
		}
	}
	return out
}

// Unused returns every label that was defined but never referenced by a
// goto (the "unused label" warning).
func (t *Table) Unused() []*Entry {
	var out []*Entry
	for _, e := range t.entries {
		if e.Defined && e.UseCount == 0 {
			out = append(out, e)
		}
	}
	return out
}
