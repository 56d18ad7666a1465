// Package diag implements the diagnostic channel: a severity-leveled,
// position-anchored message stream that every recoverable compiler error
// flows through, modeled on ysem/analyzer.go's errors []string
// accumulation but upgraded to structured values so the CLI can format
// "file:line:col: severity: message" and decide an exit code.
package diag

import (
	"fmt"
	"io"
	"sort"

	"github.com/pkg/errors"

	"github.com/jxsvoboda/sycek-sub004/internal/srcpos"
)

// Severity classifies a Diagnostic.
type Severity int

const (
	Note Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Note:
		return "note"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Kind tags the recoverable-error taxonomy. It is advisory —
// carried on each Diagnostic for tests to inspect — and never changes how
// a Diagnostic is printed.
type Kind string

const (
	KindLexInvalid Kind = "lex-invalid"
	KindParseExpected Kind = "parse-expected"
	KindRedeclarationMismatch Kind = "redeclaration-mismatch"
	KindUndefinedIdentifier Kind = "undefined-identifier"
	KindTypeMismatch Kind = "type-mismatch"
	KindInvalidCast Kind = "invalid-cast"
	KindBadLvalue Kind = "bad-lvalue"
	KindLabelUndefined Kind = "label-undefined"
	KindLabelUnused Kind = "label-unused"
	KindMissingReturn Kind = "missing-return"
	KindNotImplemented Kind = "not-implemented"
)

// Diagnostic is one posted message.
type Diagnostic struct {
	Pos srcpos.Position
	Severity Severity
	Kind Kind
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Pos, d.Severity, d.Message)
}

// Bag accumulates diagnostics across a compile so that lowering can
// continue past a recoverable error and surface as many diagnostics as
// possible in one pass.
type Bag struct {
	items []Diagnostic
}

// New returns an empty Bag.
func New() *Bag {
	return &Bag{}
}

// Add posts a diagnostic.
func (b *Bag) Add(pos srcpos.Position, sev Severity, kind Kind, format string, args ...interface{}) {
	b.items = append(b.items, Diagnostic{
		Pos: pos,
		Severity: sev,
		Kind: kind,
		Message: fmt.Sprintf(format, args...),
	})
}

// Errorf posts an error-severity diagnostic. Convenience wrapper used
// throughout the parser/lowering packages in place of ysem/analyzer.go's
// `a.errorAt`.
func (b *Bag) Errorf(pos srcpos.Position, kind Kind, format string, args ...interface{}) {
	b.Add(pos, Error, kind, format, args...)
}

// Warnf posts a warning-severity diagnostic.
func (b *Bag) Warnf(pos srcpos.Position, kind Kind, format string, args ...interface{}) {
	b.Add(pos, Warning, kind, format, args...)
}

// Notef posts a note-severity diagnostic.
func (b *Bag) Notef(pos srcpos.Position, kind Kind, format string, args ...interface{}) {
	b.Add(pos, Note, kind, format, args...)
}

// Items returns all posted diagnostics in the order they were added.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Sorted returns the diagnostics ordered by source position, stable on
// insertion order for diagnostics at the same position.
func (b *Bag) Sorted() []Diagnostic {
	out := make([]Diagnostic, len(b.items))
	copy(out, b.items)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Pos.Less(out[j].Pos)
	})
	return out
}

// HasErrors reports whether any Error-severity diagnostic was posted; this
// is exactly the condition under which the compile must return a non-zero
// exit code.
func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Len reports how many diagnostics have been posted.
func (b *Bag) Len() int {
	return len(b.items)
}

// WriteTo prints every diagnostic, one per line, in source-position order,
// in the "file:line:col: severity: message" form.
func (b *Bag) WriteTo(w io.Writer) error {
	for _, d := range b.Sorted() {
		if _, err := fmt.Fprintln(w, d.String()); err != nil {
			return errors.Wrap(err, "writing diagnostics")
		}
	}
	return nil
}

// Fatal wraps an unrecoverable error (out-of-memory or I/O failure) so
// the caller can distinguish it from a posted Diagnostic: only a Fatal
// error short-circuits the pipeline.
type Fatal struct {
	cause error
}

// NewFatal wraps err as a Fatal error, or returns nil if err is nil.
func NewFatal(err error) error {
	if err == nil {
		return nil
	}
	return &Fatal{cause: errors.WithStack(err)}
}

func (f *Fatal) Error() string { return f.cause.Error() }
func (f *Fatal) Cause() error { return f.cause }
func (f *Fatal) Unwrap() error { return f.cause }

// IsFatal reports whether err is (or wraps) a Fatal error.
func IsFatal(err error) bool {
	var f *Fatal
	return errors.As(err, &f)
}
