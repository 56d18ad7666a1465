// Package lower implements AST→IR lowering: promotions/truncations,
// short-circuit boolean lowering, the ternary merge-label pattern, and
// for/switch dispatch-chain lowering,
// generalizing ysem/ir.go's IRGen (newTemp/newLabel/emit helpers, a
// loopLabels/loopCont stack pair for break/continue) from YAPL's
// single-pass generator to full C expression/statement lowering with a
// symtab.Table for scoped name resolution and a diag.Bag for recoverable
// errors instead of IRGen's analyzer-already-checked assumption.
package lower

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jxsvoboda/sycek-sub004/internal/ast"
	"github.com/jxsvoboda/sycek-sub004/internal/ctype"
	"github.com/jxsvoboda/sycek-sub004/internal/diag"
	"github.com/jxsvoboda/sycek-sub004/internal/enums"
	"github.com/jxsvoboda/sycek-sub004/internal/ir"
	"github.com/jxsvoboda/sycek-sub004/internal/labels"
	"github.com/jxsvoboda/sycek-sub004/internal/parser"
	"github.com/jxsvoboda/sycek-sub004/internal/srcpos"
	"github.com/jxsvoboda/sycek-sub004/internal/symtab"
	"github.com/jxsvoboda/sycek-sub004/internal/token"
)

// Lowerer turns a TranslationUnit into an ir.Module, posting diagnostics
// for unresolved names and type errors it finds along the way rather than
// assuming a prior type-check pass, unlike ysem/ir.go's IRGen (which runs
// only after ysem/analyzer.go's typeCheck has already guaranteed the AST
// is well-typed).
type Lowerer struct {
	diags *diag.Bag
	syms *symtab.Table
	log *zap.Logger

	mod *ir.Module

	curProc *ir.Proc
	curLabels *labels.Table
	tempCount int
	labelCount int

	breakLabels []string
	continueLabels []string
}

// New creates a Lowerer posting diagnostics to diags.
func New(diags *diag.Bag) *Lowerer {
	return &Lowerer{diags: diags, syms: symtab.New(), log: zap.NewNop()}
}

// NewWithLogger creates a Lowerer that traces each top-level declaration
// it lowers to log, the way internal/codegen and internal/regalloc trace
// their own passes.
func NewWithLogger(diags *diag.Bag, log *zap.Logger) *Lowerer {
	return &Lowerer{diags: diags, syms: symtab.New(), log: log}
}

// Lower lowers a whole translation unit.
func (l *Lowerer) Lower(unit *ast.TranslationUnit) *ir.Module {
	l.mod = &ir.Module{}
	for _, decl := range unit.Decls {
		switch d := decl.(type) {
		case *ast.FuncDef:
			name := ""
			if d.Declarator.Name != nil {
				name = d.Declarator.Name.Text
			}
			l.log.Debug("lowering function", zap.String("name", name))
			l.lowerFuncDef(d)
		case *ast.Decl:
			l.log.Debug("lowering file-scope declaration", zap.Int("declarators", len(d.Declarators)))
			l.lowerFileDecl(d)
		case *ast.AsmBlock:
			l.mod.AsmBlocks = append(l.mod.AsmBlocks, d.Text.Text)
		case *ast.PreprocLine:
			// Passthrough only; no semantic effect (Non-goals).
		}
	}
	return l.mod
}

func (l *Lowerer) newTemp() string {
	t := fmt.Sprintf("t%d", l.tempCount)
	l.tempCount++
	return t
}

func (l *Lowerer) newLabel(prefix string) string {
	name := fmt.Sprintf(".L%s%d", prefix, l.labelCount)
	l.labelCount++
	return name
}

func (l *Lowerer) emit(instr ir.Instr) {
	l.curProc.Instrs = append(l.curProc.Instrs, instr)
}

func (l *Lowerer) emitLabel(name string) {
	l.emit(ir.Instr{Op: ir.OpLabel, Args: []ir.Operand{ir.LabelRef(name)}})
}

func (l *Lowerer) emitJump(name string) {
	l.emit(ir.Instr{Op: ir.OpJump, Args: []ir.Operand{ir.LabelRef(name)}})
}

func (l *Lowerer) emitJumpIfZero(cond ir.Operand, name string) {
	l.emit(ir.Instr{Op: ir.OpJumpIfZero, Args: []ir.Operand{cond, ir.LabelRef(name)}})
}

func (l *Lowerer) emitJumpIfNotZero(cond ir.Operand, name string) {
	l.emit(ir.Instr{Op: ir.OpJumpIfNotZero, Args: []ir.Operand{cond, ir.LabelRef(name)}})
}

// ---------------------------------------------------------------------
// Type resolution
// ---------------------------------------------------------------------

// resolveBaseType resolves a DeclSpecs to a ctype.Type, ignoring any
// declarator suffixes (those are applied by resolveDeclaredType).
func (l *Lowerer) resolveBaseType(specs *ast.DeclSpecs) *ctype.Type {
	if specs == nil {
		return ctype.IntType
	}
	if specs.RecordSpec != nil {
		return l.resolveRecordSpec(specs.RecordSpec)
	}
	if specs.EnumSpec != nil {
		return l.resolveEnumSpec(specs.EnumSpec)
	}
	if specs.TypedefName != nil {
		if sym, ok := l.syms.Lookup(specs.TypedefName.Text); ok && sym.Kind == symtab.KindTypedef {
			return sym.Type
		}
		return ctype.IntType
	}

	switch specs.Basic {
	case ast.BKVoid:
		return ctype.VoidType
	case ast.BKBool:
		return ctype.BoolType
	case ast.BKChar:
		if specs.Unsigned {
			return ctype.UCharType
		}
		return ctype.CharType
	case ast.BKFloat:
		return &ctype.Type{Kind: ctype.Basic, Basic: ctype.BFloat}
	case ast.BKDouble:
		return &ctype.Type{Kind: ctype.Basic, Basic: ctype.BDouble}
	default:
		switch {
		case specs.LongCount >= 2:
			if specs.Unsigned {
				return &ctype.Type{Kind: ctype.Basic, Basic: ctype.BULongLong}
			}
			return &ctype.Type{Kind: ctype.Basic, Basic: ctype.BLongLong}
		case specs.LongCount == 1:
			if specs.Unsigned {
				return ctype.ULongType
			}
			return ctype.LongType
		case specs.ShortCount > 0:
			if specs.Unsigned {
				return ctype.UShortType
			}
			return ctype.ShortType
		case specs.Unsigned:
			return ctype.UIntType
		default:
			return ctype.IntType
		}
	}
}

func (l *Lowerer) resolveRecordSpec(r *ast.RecordSpec) *ctype.Type {
	t := &ctype.Type{Kind: ctype.Record, IsUnion: r.IsUnion}
	if r.Name != nil {
		t.RecordName = r.Name.Text
	}
	if r.Fields == nil {
		return t
	}
	offset := 0
	for _, fd := range r.Fields {
		base := l.resolveBaseType(fd.Specs)
		for _, fdecl := range fd.Declarators {
			ft := base
			if fdecl.Declarator != nil {
				ft = l.applyDeclarator(base, fdecl.Declarator)
			}
			align := ft.Alignment()
			if align > 0 {
				if rem := offset % align; rem != 0 {
					offset += align - rem
				}
			}
			name := ""
			if fdecl.Declarator != nil && fdecl.Declarator.Name != nil {
				name = fdecl.Declarator.Name.Text
			}
			t.Fields = append(t.Fields, ctype.Field{Name: name, Type: ft, Offset: offset})
			offset += ft.Size()
		}
	}
	return t
}

func (l *Lowerer) resolveEnumSpec(e *ast.EnumSpec) *ctype.Type {
	names := make([]string, len(e.Enumerators))
	explicit := make([]*int64, len(e.Enumerators))
	for i, en := range e.Enumerators {
		names[i] = en.Name.Text
		if en.Value != nil {
			if cv, ok := l.constEval(en.Value); ok {
				explicit[i] = &cv
			}
		}
	}

	resolved := enums.Assign(names, explicit)
	name := ""
	if e.Name != nil {
		name = e.Name.Text
	}
	t := enums.ToType(name, resolved)

	for i, en := range e.Enumerators {
		l.syms.Insert(&symtab.Symbol{
			Name: en.Name.Text, Kind: symtab.KindEnumConst, Type: t, EnumVal: resolved[i].Value,
			Pos: en.Name.Begin,
		})
	}
	return t
}

// applyDeclarator wraps base in the pointer/array/function layers named
// by d, the declarator-application rule (innermost pointers
// first, then suffixes left to right).
func (l *Lowerer) applyDeclarator(base *ctype.Type, d *ast.Declarator) *ctype.Type {
	t := base
	for _, suf := range d.Suffixes {
		switch suf.Kind {
		case ast.SuffixArray:
			length := -1
			if suf.ArrayLen != nil {
				if v, ok := l.constEval(suf.ArrayLen); ok {
					length = int(v)
				}
			}
			t = ctype.NewArray(t, length)
		case ast.SuffixFunction:
			var params []*ctype.Type
			for _, p := range suf.Params {
				pt := l.resolveBaseType(p.Specs)
				if p.Declarator != nil {
					pt = l.applyDeclarator(pt, p.Declarator)
				}
				params = append(params, pt.Decay())
			}
			t = ctype.NewFunction(t, params, suf.Variadic)
		}
	}
	for range d.Pointers {
		t = ctype.NewPointer(t)
	}
	if d.Nested != nil {
		return l.applyDeclarator(t, d.Nested)
	}
	return t
}

// constEval evaluates a constant-integer expression the lowerer needs at
// compile time (array lengths, enum values, case labels). Only the
// constant-expression subset requires is handled; anything
// else yields (0, false) without posting a diagnostic, and the caller
// decides the fallback.
func (l *Lowerer) constEval(e ast.Expr) (int64, bool) {
	switch v := e.(type) {
	case *ast.IntLit:
		n, err := parser.ParseIntLiteralValue(v.Tok.Text)
		if err != nil {
			return 0, false
		}
		return n, true
	case *ast.UnaryOp:
		if v.OpTok.Kind == token.Minus {
			if n, ok := l.constEval(v.Expr); ok {
				return -n, true
			}
		}
		return l.constEval(v.Expr)
	case *ast.ParenExpr:
		return l.constEval(v.Inner)
	case *ast.BinOp:
		a, ok1 := l.constEval(v.Left)
		b, ok2 := l.constEval(v.Right)
		if !ok1 || !ok2 {
			return 0, false
		}
		switch v.OpTok.Kind {
		case token.Plus:
			return a + b, true
		case token.Minus:
			return a - b, true
		case token.Star:
			return a * b, true
		}
	case *ast.Ident:
		if sym, ok := l.syms.Lookup(v.Tok.Text); ok && sym.Kind == symtab.KindEnumConst {
			return sym.EnumVal, true
		}
	}
	return 0, false
}

// ---------------------------------------------------------------------
// Declarations
// ---------------------------------------------------------------------

func (l *Lowerer) lowerFileDecl(d *ast.Decl) {
	base := l.resolveBaseType(d.Specs)
	if d.Specs.Storage == ast.SCTypedef {
		for _, id := range d.Declarators {
			t := l.applyDeclarator(base, id.Declarator)
			if id.Declarator.Name != nil {
				l.syms.Insert(&symtab.Symbol{
					Name: id.Declarator.Name.Text, Kind: symtab.KindTypedef, Type: t,
					Pos: id.Declarator.Name.Begin,
				})
			}
		}
		return
	}
	for _, id := range d.Declarators {
		t := l.applyDeclarator(base, id.Declarator)
		if id.Declarator.Name == nil {
			continue
		}
		name := id.Declarator.Name.Text

		if t.Kind == ctype.Function {
			// A prototype with no body: just a forward declaration, so it
			// registers the callee's signature but never reserves storage
			// the way a KindVar declarator of the same shape would.
			if existing, ok := l.syms.LookupCurrent(name); ok {
				if !existing.Type.IsCompatible(t) {
					l.diags.Errorf(id.Declarator.Name.Begin, diag.KindRedeclarationMismatch,
						"conflicting types for %q", name)
				}
				continue
			}
			l.syms.Insert(&symtab.Symbol{
				Name: name, Kind: symtab.KindFunc, Type: t,
				Linkage: linkageOf(d.Specs.Storage != ast.SCStatic), State: symtab.Declared,
				Pos: id.Declarator.Name.Begin, IRName: name,
			})
			continue
		}

		state := symtab.Tentative
		if d.Specs.Storage == ast.SCExtern {
			state = symtab.Declared
		}
		if id.Init != nil {
			state = symtab.Defined
		}
		linkage := symtab.LinkageExternal
		if d.Specs.Storage == ast.SCStatic {
			linkage = symtab.LinkageInternal
		}

		if existing, ok := l.syms.LookupCurrent(name); ok {
			res := symtab.Merge(existing, t, state, linkage)
			switch res {
			case symtab.MergeIncompatibleType:
				l.diags.Errorf(id.Declarator.Name.Begin, diag.KindRedeclarationMismatch,
					"conflicting types for %q", name)
				continue
			case symtab.MergeRedefinition:
				l.diags.Errorf(id.Declarator.Name.Begin, diag.KindRedeclarationMismatch,
					"redefinition of %q", name)
				continue
			}
		} else {
			l.syms.Insert(&symtab.Symbol{
				Name: name, Kind: symtab.KindVar, Type: t, Linkage: linkage,
				State: state, Pos: id.Declarator.Name.Begin, IRName: name,
			})
		}

		if state == symtab.Tentative || state == symtab.Defined {
			l.upsertData(name, t, linkage == symtab.LinkageExternal, id.Init)
		}
	}
}

// upsertData records (or, for a tentative definition later given an
// initializer, updates in place) a file-scope object's byte image: a
// same-named entry already in Data means this is a later declaration of a
// symbol symtab.Merge already approved, so it is folded into that single
// object rather than emitted a second time.
func (l *Lowerer) upsertData(name string, t *ctype.Type, public bool, init ast.Initializer) {
	for i := range l.mod.Data {
		if l.mod.Data[i].Name != name {
			continue
		}
		if init != nil {
			l.mod.Data[i].Kind = ir.DataBytes
			l.mod.Data[i].Bytes = l.lowerConstInit(init, t)
			l.mod.Data[i].Size = t.Size()
		}
		return
	}
	data := ir.Data{Name: name, Public: public, Type: toIRType(t), Size: t.Size()}
	if init != nil {
		data.Kind = ir.DataBytes
		data.Bytes = l.lowerConstInit(init, t)
	} else {
		data.Kind = ir.DataZero
	}
	l.mod.Data = append(l.mod.Data, data)
}

// lowerConstInit folds a file-scope initializer to its byte representation
// where the constant-expression subset allows it; anything it cannot fold
// is reported and zero-filled, since dynamic-size initializers are out of
// scope.
func (l *Lowerer) lowerConstInit(init ast.Initializer, t *ctype.Type) []byte {
	switch v := init.(type) {
	case *ast.ExprInitializer:
		if n, ok := l.constEval(v.Value); ok {
			return intToBytes(n, t.Size())
		}
		if lit, ok := v.Value.(*ast.StringLit); ok {
			return []byte(decodeStringLiteral(lit.Tok.Text))
		}
		l.diags.Errorf(v.FirstTok().Begin, diag.KindNotImplemented, "non-constant global initializer")
		return make([]byte, t.Size())
	case *ast.ListInitializer:
		var out []byte
		elemType := t.ElemType
		if elemType == nil {
			elemType = ctype.IntType
		}
		for _, item := range v.Items {
			out = append(out, l.lowerConstInit(item.Value, elemType)...)
		}
		return out
	default:
		return make([]byte, t.Size())
	}
}

func intToBytes(v int64, size int) []byte {
	out := make([]byte, size)
	for i := 0; i < size; i++ {
		out[i] = byte(v >> (8 * i))
	}
	return out
}

// decodeStringLiteral strips the surrounding quotes and appends a
// trailing NUL; escape sequences (including \n) are not decoded, so the
// text between the quotes is copied byte for byte.
func decodeStringLiteral(text string) string {
	if len(text) >= 2 {
		text = text[1: len(text)-1]
	}
	return text + "\x00"
}

func toIRType(t *ctype.Type) ir.Type {
	switch t.Kind {
	case ctype.Pointer:
		return ir.Ptr(toIRType(t.Pointee))
	case ctype.Void:
		return ir.Void
	case ctype.Enum:
		return ir.Int(t.Underlying.Size(), t.Underlying.IsUnsigned())
	default:
		sz := t.Size()
		if sz <= 0 {
			sz = 2
		}
		unsigned := false
		if t.Kind == ctype.Basic {
			unsigned = t.Basic.IsUnsigned()
		}
		return ir.Int(sz, unsigned)
	}
}

func (l *Lowerer) lowerFuncDef(f *ast.FuncDef) {
	base := l.resolveBaseType(f.Specs)
	fullType := l.applyDeclarator(base, f.Declarator)
	name := ""
	if f.Declarator.Name != nil {
		name = f.Declarator.Name.Text
	}
	public := f.Specs.Storage != ast.SCStatic

	l.syms.Insert(&symtab.Symbol{
		Name: name, Kind: symtab.KindFunc, Type: fullType,
		Linkage: linkageOf(public), State: symtab.Defined, IRName: name,
	})

	proc := &ir.Proc{Name: name, Public: public, RetType: toIRType(fullType.Return)}
	l.curProc = proc
	l.curLabels = labels.New()
	l.tempCount = 0
	l.syms.PushScope()

	var paramSuffix *ast.DeclaratorSuffix
	if n := len(f.Declarator.Suffixes); n > 0 && f.Declarator.Suffixes[n-1].Kind == ast.SuffixFunction {
		paramSuffix = f.Declarator.Suffixes[n-1]
	}
	if paramSuffix != nil {
		for _, p := range paramSuffix.Params {
			pt := l.resolveBaseType(p.Specs)
			if p.Declarator == nil && pt.Kind == ctype.Void {
				continue // `f(void)`: an explicit empty parameter list, not one void param
			}
			if p.Declarator != nil {
				pt = l.applyDeclarator(pt, p.Declarator)
			}
			pt = pt.Decay()
			pname := ""
			if p.Declarator != nil && p.Declarator.Name != nil {
				pname = p.Declarator.Name.Text
			}
			proc.Params = append(proc.Params, ir.Param{Name: pname, Type: toIRType(pt)})
			if pname != "" {
				l.syms.Insert(&symtab.Symbol{Name: pname, Kind: symtab.KindVar, Type: pt, IRName: pname})
			}
		}
	}

	l.lowerCompoundStmt(f.Body)

	if fullType.Return.Kind != ctype.Void && !blockAlwaysReturns(f.Body.Items) {
		l.diags.Errorf(f.Body.RBrace.Begin, diag.KindMissingReturn,
			"control reaches end of non-void function %q without returning a value", name)
	}

	for _, undef := range l.curLabels.Undefined() {
		l.diags.Errorf(undef.FirstUse, diag.KindLabelUndefined, "label %q is undefined", undef.Name)
	}
	for _, unused := range l.curLabels.Unused() {
		l.diags.Warnf(unused.DefPos, diag.KindLabelUnused, "label %q is unused", unused.Name)
	}

	l.syms.PopScope()
	l.mod.Procs = append(l.mod.Procs, *proc)
	l.curProc = nil
}

// blockAlwaysReturns reports whether every path through a block falls into
// a statement that never reaches the block's end, judged from its last
// item alone (an early return inside an earlier item is reachable only
// through that item's own terminating check, not by falling through it).
func blockAlwaysReturns(items []ast.BlockItem) bool {
	if len(items) == 0 {
		return false
	}
	last, ok := items[len(items)-1].(ast.Stmt)
	if !ok {
		return false // a trailing Decl can't terminate control flow
	}
	return stmtAlwaysReturns(last)
}

// stmtAlwaysReturns is a conservative, syntax-only terminating-statement
// check: a `switch` is never treated as terminating (case-exhaustiveness
// isn't tracked), a `for` only counts when its condition is omitted
// entirely (`for (;;)`), a `do`-`while` counts when its body always
// returns, and a `while` never counts; any `break` that might escape a
// loop is ignored.
func stmtAlwaysReturns(s ast.Stmt) bool {
	switch v := s.(type) {
	case *ast.ReturnStmt:
		return true
	case *ast.GotoStmt:
		return true
	case *ast.CompoundStmt:
		return blockAlwaysReturns(v.Items)
	case *ast.IfStmt:
		return v.Else != nil && stmtAlwaysReturns(v.Then) && stmtAlwaysReturns(v.Else)
	case *ast.DoWhileStmt:
		return stmtAlwaysReturns(v.Body)
	case *ast.ForStmt:
		return v.Cond == nil
	case *ast.LabelStmt:
		return stmtAlwaysReturns(v.Body)
	default:
		return false
	}
}

func linkageOf(public bool) symtab.Linkage {
	if public {
		return symtab.LinkageExternal
	}
	return symtab.LinkageInternal
}

// ---------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------

func (l *Lowerer) lowerCompoundStmt(cs *ast.CompoundStmt) {
	l.syms.PushScope()
	for _, item := range cs.Items {
		l.lowerBlockItem(item)
	}
	l.syms.PopScope()
}

func (l *Lowerer) lowerBlockItem(item ast.BlockItem) {
	switch v := item.(type) {
	case *ast.Decl:
		l.lowerLocalDecl(v)
	case ast.Stmt:
		l.lowerStmt(v)
	}
}

func (l *Lowerer) lowerLocalDecl(d *ast.Decl) {
	base := l.resolveBaseType(d.Specs)
	if d.Specs.Storage == ast.SCTypedef {
		for _, id := range d.Declarators {
			t := l.applyDeclarator(base, id.Declarator)
			if id.Declarator.Name != nil {
				l.syms.Insert(&symtab.Symbol{Name: id.Declarator.Name.Text, Kind: symtab.KindTypedef, Type: t})
			}
		}
		return
	}
	for _, id := range d.Declarators {
		t := l.applyDeclarator(base, id.Declarator)
		if id.Declarator.Name == nil {
			continue
		}
		name := id.Declarator.Name.Text
		l.syms.Insert(&symtab.Symbol{Name: name, Kind: symtab.KindVar, Type: t, IRName: name})
		l.curProc.Locals = append(l.curProc.Locals, ir.Local{Name: name, Type: toIRType(t)})
		switch init := id.Init.(type) {
		case *ast.ExprInitializer:
			val := l.lowerExpr(init.Value)
			l.emit(ir.Instr{Dest: name, DestType: toIRType(t), Op: ir.OpCopy, Args: []ir.Operand{val}})
		case *ast.ListInitializer:
			l.initializeAggregate(name, t, init)
		}
	}
}

func (l *Lowerer) lowerStmt(s ast.Stmt) {
	switch v := s.(type) {
	case *ast.CompoundStmt:
		l.lowerCompoundStmt(v)
	case *ast.ExprStmt:
		if v.Expr != nil {
			l.lowerExpr(v.Expr)
		}
	case *ast.IfStmt:
		l.lowerIfStmt(v)
	case *ast.WhileStmt:
		l.lowerWhileStmt(v)
	case *ast.DoWhileStmt:
		l.lowerDoWhileStmt(v)
	case *ast.ForStmt:
		l.lowerForStmt(v)
	case *ast.SwitchStmt:
		l.lowerSwitchStmt(v)
	case *ast.CaseStmt:
		// Case labels are collected by lowerSwitchStmt's body walk; here we
		// just lower the guarded statement in sequence.
		l.lowerStmt(v.Body)
	case *ast.DefaultStmt:
		l.lowerStmt(v.Body)
	case *ast.BreakStmt:
		if len(l.breakLabels) > 0 {
			l.emitJump(l.breakLabels[len(l.breakLabels)-1])
		}
	case *ast.ContinueStmt:
		if len(l.continueLabels) > 0 {
			l.emitJump(l.continueLabels[len(l.continueLabels)-1])
		}
	case *ast.ReturnStmt:
		var args []ir.Operand
		if v.Value != nil {
			args = append(args, l.lowerExpr(v.Value))
		}
		l.emit(ir.Instr{Op: ir.OpReturn, Args: args})
	case *ast.GotoStmt:
		l.curLabels.Use(v.Label.Text, v.Label.Begin)
		l.emitJump(v.Label.Text)
	case *ast.LabelStmt:
		l.curLabels.Define(v.Name.Text, v.Name.Begin)
		l.emitLabel(v.Name.Text)
		l.lowerStmt(v.Body)
	case *ast.AsmStmt:
		text := decodeStringLiteral(v.Text.Text)
		text = strings.TrimSuffix(text, "\x00")
		l.emit(ir.Instr{Op: ir.OpAsm, AsmText: text})
	}
}

// checkScalarCond reports a diagnostic when e's type can't answer a
// zero/non-zero test — a struct or array has no such representation.
func (l *Lowerer) checkScalarCond(e ast.Expr) {
	if t := l.typeOf(e); t != nil && !t.IsScalar() {
		l.diags.Errorf(e.FirstTok().Begin, diag.KindTypeMismatch,
			"used %s where a scalar condition was expected", t)
	}
}

func (l *Lowerer) lowerIfStmt(s *ast.IfStmt) {
	elseLabel := l.newLabel("else")
	endLabel := elseLabel
	if s.Else != nil {
		endLabel = l.newLabel("endif")
	}
	l.checkScalarCond(s.Cond)
	cond := l.lowerExpr(s.Cond)
	l.emitJumpIfZero(cond, elseLabel)
	l.lowerStmt(s.Then)
	if s.Else != nil {
		l.emitJump(endLabel)
		l.emitLabel(elseLabel)
		l.lowerStmt(s.Else)
		l.emitLabel(endLabel)
	} else {
		l.emitLabel(elseLabel)
	}
}

func (l *Lowerer) lowerWhileStmt(s *ast.WhileStmt) {
	top := l.newLabel("whiletop")
	end := l.newLabel("whileend")
	l.pushLoop(end, top)
	l.emitLabel(top)
	l.checkScalarCond(s.Cond)
	cond := l.lowerExpr(s.Cond)
	l.emitJumpIfZero(cond, end)
	l.lowerStmt(s.Body)
	l.emitJump(top)
	l.emitLabel(end)
	l.popLoop()
}

func (l *Lowerer) lowerDoWhileStmt(s *ast.DoWhileStmt) {
	top := l.newLabel("dotop")
	contLabel := l.newLabel("docont")
	end := l.newLabel("doend")
	l.pushLoop(end, contLabel)
	l.emitLabel(top)
	l.lowerStmt(s.Body)
	l.emitLabel(contLabel)
	l.checkScalarCond(s.Cond)
	cond := l.lowerExpr(s.Cond)
	l.emitJumpIfNotZero(cond, top)
	l.emitLabel(end)
	l.popLoop()
}

func (l *Lowerer) lowerForStmt(s *ast.ForStmt) {
	l.syms.PushScope()
	if s.Init != nil {
		l.lowerBlockItem(s.Init)
	}
	top := l.newLabel("fortop")
	contLabel := l.newLabel("forcont")
	end := l.newLabel("forend")
	l.pushLoop(end, contLabel)
	l.emitLabel(top)
	if s.Cond != nil {
		l.checkScalarCond(s.Cond)
		cond := l.lowerExpr(s.Cond)
		l.emitJumpIfZero(cond, end)
	}
	l.lowerStmt(s.Body)
	l.emitLabel(contLabel)
	if s.Post != nil {
		l.lowerExpr(s.Post)
	}
	l.emitJump(top)
	l.emitLabel(end)
	l.popLoop()
	l.syms.PopScope()
}

// lowerSwitchStmt lowers via a dispatch chain of equality compares against
// the control value: no jump table. Case/default bodies are lowered in
// source order; fallthrough is preserved naturally since no jump separates
// adjacent case bodies except at the dispatch chain itself.
func (l *Lowerer) lowerSwitchStmt(s *ast.SwitchStmt) {
	end := l.newLabel("switchend")
	// Only break targets the switch; continue still targets whatever loop
	// encloses it, so the continue-label stack is left untouched.
	l.breakLabels = append(l.breakLabels, end)

	cond := l.lowerExpr(s.Cond)
	condTemp := l.newTemp()
	l.emit(ir.Instr{Dest: condTemp, DestType: cond.Type, Op: ir.OpCopy, Args: []ir.Operand{cond}})

	var cases []*ast.CaseStmt
	var defaultCase *ast.DefaultStmt
	collectCases(s.Body, &cases, &defaultCase)

	caseLabels := make([]string, len(cases))
	for i, c := range cases {
		caseLabels[i] = l.newLabel("case")
		val, ok := l.constEval(c.Value)
		_ = ok
		eq := l.newTemp()
		l.emit(ir.Instr{Dest: eq, DestType: ir.Int(1, false), Op: ir.OpEq,
			Args: []ir.Operand{ir.Var(condTemp, cond.Type), ir.Imm(val, cond.Type)}})
		l.emitJumpIfNotZero(ir.Var(eq, ir.Int(1, false)), caseLabels[i])
	}
	defaultLabel := end
	if defaultCase != nil {
		defaultLabel = l.newLabel("default")
	}
	l.emitJump(defaultLabel)

	l.lowerSwitchBody(s.Body, cases, caseLabels, defaultCase, defaultLabel)
	l.emitLabel(end)
	l.breakLabels = l.breakLabels[:len(l.breakLabels)-1]
}

func collectCases(s ast.Stmt, cases *[]*ast.CaseStmt, def **ast.DefaultStmt) {
	switch v := s.(type) {
	case *ast.CompoundStmt:
		for _, item := range v.Items {
			if stmt, ok := item.(ast.Stmt); ok {
				collectCases(stmt, cases, def)
			}
		}
	case *ast.CaseStmt:
		*cases = append(*cases, v)
		collectCases(v.Body, cases, def)
	case *ast.DefaultStmt:
		*def = v
		collectCases(v.Body, cases, def)
	}
}

// lowerSwitchBody walks the switch body in source order, emitting the
// label for each case/default immediately before lowering its guarded
// statement, so fallthrough between adjacent cases falls straight through.
func (l *Lowerer) lowerSwitchBody(s ast.Stmt, cases []*ast.CaseStmt, caseLabels []string, def *ast.DefaultStmt, defaultLabel string) {
	switch v := s.(type) {
	case *ast.CompoundStmt:
		for _, item := range v.Items {
			if stmt, ok := item.(ast.Stmt); ok {
				l.lowerSwitchBody(stmt, cases, caseLabels, def, defaultLabel)
			}
		}
	case *ast.CaseStmt:
		for i, c := range cases {
			if c == v {
				l.emitLabel(caseLabels[i])
				break
			}
		}
		l.lowerSwitchBody(v.Body, cases, caseLabels, def, defaultLabel)
	case *ast.DefaultStmt:
		l.emitLabel(defaultLabel)
		l.lowerSwitchBody(v.Body, cases, caseLabels, def, defaultLabel)
	default:
		l.lowerStmt(v)
	}
}

func (l *Lowerer) pushLoop(breakLabel, continueLabel string) {
	l.breakLabels = append(l.breakLabels, breakLabel)
	l.continueLabels = append(l.continueLabels, continueLabel)
}

func (l *Lowerer) popLoop() {
	l.breakLabels = l.breakLabels[:len(l.breakLabels)-1]
	l.continueLabels = l.continueLabels[:len(l.continueLabels)-1]
}

// ---------------------------------------------------------------------
// Expression type inference
//
// The parser never annotates Expr nodes with a resolved *ctype.Type (that
// is this package's job, per ast.go's Expr doc comment), so typeOf walks
// the tree on demand. It mirrors ysem/analyzer.go's expression-typing
// switch closely enough to reuse its structure, but returns a *ctype.Type
// directly instead of stashing it on the node.
// ---------------------------------------------------------------------

func (l *Lowerer) typeOf(e ast.Expr) *ctype.Type {
	switch v := e.(type) {
	case *ast.Ident:
		if sym, ok := l.syms.Lookup(v.Tok.Text); ok {
			return sym.Type
		}
		l.diags.Errorf(v.Tok.Begin, diag.KindUndefinedIdentifier, "undeclared identifier %q", v.Tok.Text)
		return ctype.IntType
	case *ast.IntLit:
		return ctype.IntType
	case *ast.CharLit:
		return ctype.CharType
	case *ast.StringLit:
		return ctype.NewPointer(ctype.CharType)
	case *ast.ParenExpr:
		return l.typeOf(v.Inner)
	case *ast.BinOp:
		return l.binResultType(v)
	case *ast.AssignOp:
		return l.typeOf(v.Left)
	case *ast.CondExpr:
		return l.typeOf(v.Then)
	case *ast.UnaryOp:
		return l.unaryResultType(v)
	case *ast.PostfixOp:
		return l.typeOf(v.Expr)
	case *ast.CallExpr:
		ft := l.typeOf(v.Callee)
		if ft.Kind == ctype.Pointer {
			ft = ft.Pointee
		}
		if ft.Kind == ctype.Function {
			return ft.Return
		}
		return ctype.IntType
	case *ast.IndexExpr:
		bt := l.typeOf(v.Base).Decay()
		if bt.Kind == ctype.Pointer {
			return bt.Pointee
		}
		return ctype.IntType
	case *ast.MemberExpr:
		bt := l.typeOf(v.Base)
		if v.OpTok.Kind == token.Arrow && bt.Kind == ctype.Pointer {
			bt = bt.Pointee
		}
		if f := bt.FieldByName(v.Field.Text); f != nil {
			return f.Type
		}
		return ctype.IntType
	case *ast.CastExpr:
		return l.resolveTypeName(v.Type)
	case *ast.SizeofType:
		return ctype.UIntType
	case *ast.CompoundLiteral:
		return l.resolveTypeName(v.Type)
	case *ast.CommaExpr:
		return l.typeOf(v.Right)
	default:
		return ctype.IntType
	}
}

func (l *Lowerer) unaryResultType(v *ast.UnaryOp) *ctype.Type {
	if v.Kind == ast.UnarySizeofExpr {
		return ctype.UIntType
	}
	switch v.OpTok.Kind {
	case token.Amp:
		return ctype.NewPointer(l.typeOf(v.Expr))
	case token.Star:
		t := l.typeOf(v.Expr).Decay()
		if t.Kind == ctype.Pointer {
			return t.Pointee
		}
		return ctype.IntType
	case token.Bang:
		return ctype.IntType
	default:
		return l.typeOf(v.Expr)
	}
}

func (l *Lowerer) binResultType(v *ast.BinOp) *ctype.Type {
	switch v.OpTok.Kind {
	case token.EqEq, token.NotEq, token.Lt, token.Gt, token.LtEq, token.GtEq, token.AmpAmp, token.PipePipe:
		return ctype.IntType
	}
	lt := l.typeOf(v.Left).Decay()
	rt := l.typeOf(v.Right).Decay()
	if lt.Kind == ctype.Pointer {
		return lt
	}
	if rt.Kind == ctype.Pointer {
		return rt
	}
	return usualArith(lt, rt)
}

// usualArith is a simplified stand-in for C's usual arithmetic conversions:
// the operand of greater size wins, ties prefer the unsigned side.
func usualArith(a, b *ctype.Type) *ctype.Type {
	if a == nil || a.Size() < ctype.IntType.Size() {
		a = ctype.IntType
	}
	if b == nil || b.Size() < ctype.IntType.Size() {
		b = ctype.IntType
	}
	if a.Size() > b.Size() {
		return a
	}
	if b.Size() > a.Size() {
		return b
	}
	if isUnsignedType(a) {
		return a
	}
	if isUnsignedType(b) {
		return b
	}
	return a
}

func isUnsignedType(t *ctype.Type) bool {
	return t != nil && t.Kind == ctype.Basic && t.Basic.IsUnsigned()
}

// isAggregate reports whether t has no scalar representation a cast's
// width-based truncate/extend/copy could possibly mean.
func isAggregate(t *ctype.Type) bool {
	return t != nil && (t.Kind == ctype.Record || t.Kind == ctype.Array)
}

func (l *Lowerer) resolveTypeName(tn *ast.TypeName) *ctype.Type {
	base := l.resolveBaseType(tn.Specs)
	if tn.Declarator != nil {
		return l.applyDeclarator(base, tn.Declarator)
	}
	return base
}

// ---------------------------------------------------------------------
// Lvalues
// ---------------------------------------------------------------------

// lvalue is an assignable location: either a plain named variable (stored
// by a direct OpCopy into that name) or a computed address (stored
// through with OpStore), the split between register-like
// locals and addressable memory.
type lvalue struct {
	simpleName string
	addr ir.Operand
	typ *ctype.Type
	pos srcpos.Position
}

func (l *Lowerer) lowerLValue(e ast.Expr) lvalue {
	pos := e.FirstTok().Begin
	switch v := e.(type) {
	case *ast.Ident:
		return lvalue{simpleName: v.Tok.Text, typ: l.typeOf(v), pos: pos}
	case *ast.ParenExpr:
		return l.lowerLValue(v.Inner)
	case *ast.UnaryOp:
		if v.OpTok.Kind == token.Star {
			addr := l.lowerExpr(v.Expr)
			t := l.typeOf(v.Expr).Decay()
			elem := ctype.IntType
			if t.Kind == ctype.Pointer {
				elem = t.Pointee
			}
			return lvalue{addr: addr, typ: elem, pos: pos}
		}
	case *ast.IndexExpr:
		return lvalue{addr: l.elementAddr(v), typ: l.typeOf(v), pos: pos}
	case *ast.MemberExpr:
		return lvalue{addr: l.memberAddr(v), typ: l.typeOf(v), pos: pos}
	}
	l.diags.Errorf(e.FirstTok().Begin, diag.KindBadLvalue, "expression is not assignable")
	return lvalue{simpleName: l.newTemp(), typ: ctype.IntType, pos: pos}
}

func (l *Lowerer) loadLValue(lv lvalue) ir.Operand {
	t := toIRType(lv.typ)
	if lv.simpleName != "" {
		return ir.Var(lv.simpleName, t)
	}
	dest := l.newTemp()
	l.emit(ir.Instr{Dest: dest, DestType: t, Op: ir.OpLoad, Args: []ir.Operand{lv.addr}})
	return ir.Var(dest, t)
}

// storeLValue is the single place an assignment writes through an
// lvalue, so it's also where a const-qualified destination gets caught
// rather than re-checking at every *ast.AssignOp/inc-dec call site.
func (l *Lowerer) storeLValue(lv lvalue, val ir.Operand) {
	if lv.typ != nil && lv.typ.Qual&ctype.Const != 0 {
		l.diags.Errorf(lv.pos, diag.KindBadLvalue, "cannot assign to const-qualified lvalue")
	}
	t := toIRType(lv.typ.Unqualified())
	if lv.simpleName != "" {
		l.emit(ir.Instr{Dest: lv.simpleName, DestType: t, Op: ir.OpCopy, Args: []ir.Operand{val}})
		return
	}
	l.emit(ir.Instr{Op: ir.OpStore, Args: []ir.Operand{lv.addr, val}})
}

// addrOf computes a pointer operand to e's storage, used both for `&e`
// and internally wherever an array-typed operand needs to decay to its
// base address rather than be loaded.
func (l *Lowerer) addrOf(e ast.Expr) ir.Operand {
	switch v := e.(type) {
	case *ast.Ident:
		t := l.typeOf(v)
		irt := toIRType(t)
		pt := ir.Ptr(irt)
		dest := l.newTemp()
		l.emit(ir.Instr{Dest: dest, DestType: pt, Op: ir.OpAddr, Args: []ir.Operand{ir.Var(v.Tok.Text, irt)}})
		return ir.Var(dest, pt)
	case *ast.ParenExpr:
		return l.addrOf(v.Inner)
	case *ast.UnaryOp:
		if v.OpTok.Kind == token.Star {
			return l.lowerExpr(v.Expr)
		}
	case *ast.IndexExpr:
		return l.elementAddr(v)
	case *ast.MemberExpr:
		return l.memberAddr(v)
	}
	l.diags.Errorf(e.FirstTok().Begin, diag.KindBadLvalue, "cannot take address of expression")
	return ir.Imm(0, ir.Ptr(ir.Int(2, false)))
}

// lowerExprAsPointer lowers e for use as a pointer value: an array-typed
// operand decays to its address, anything else lowers normally (it is
// already a pointer or will be treated as one by the caller).
func (l *Lowerer) lowerExprAsPointer(e ast.Expr) ir.Operand {
	if l.typeOf(e).Kind == ctype.Array {
		return l.addrOf(e)
	}
	return l.lowerExpr(e)
}

// elementAddr computes the address of v.Base[v.Index], scaling the index
// by the element size, the array/pointer indexing lowering.
func (l *Lowerer) elementAddr(v *ast.IndexExpr) ir.Operand {
	baseT := l.typeOf(v.Base).Decay()
	elemT := ctype.IntType
	if baseT.Kind == ctype.Pointer {
		elemT = baseT.Pointee
	}
	baseVal := l.lowerExprAsPointer(v.Base)
	idx := l.lowerExpr(v.Index)
	ptrType := ir.Ptr(toIRType(elemT))
	size := elemT.Size()
	if size <= 0 {
		size = 1
	}
	scaled := idx
	if size != 1 {
		sd := l.newTemp()
		l.emit(ir.Instr{Dest: sd, DestType: idx.Type, Op: ir.OpMul,
			Args: []ir.Operand{idx, ir.Imm(int64(size), idx.Type)}})
		scaled = ir.Var(sd, idx.Type)
	}
	dest := l.newTemp()
	l.emit(ir.Instr{Dest: dest, DestType: ptrType, Op: ir.OpAdd, Args: []ir.Operand{baseVal, scaled}})
	return ir.Var(dest, ptrType)
}

// memberAddr computes the address of v.Base.field / v.Base->field by
// adding the field's byte offset to the record's base address.
func (l *Lowerer) memberAddr(v *ast.MemberExpr) ir.Operand {
	baseT := l.typeOf(v.Base)
	var baseAddr ir.Operand
	if v.OpTok.Kind == token.Arrow {
		baseAddr = l.lowerExpr(v.Base)
		if baseT.Kind == ctype.Pointer {
			baseT = baseT.Pointee
		}
	} else {
		baseAddr = l.addrOf(v.Base)
	}
	offset := 0
	fieldType := ctype.IntType
	if f := baseT.FieldByName(v.Field.Text); f != nil {
		offset = f.Offset
		fieldType = f.Type
	}
	ptrType := ir.Ptr(toIRType(fieldType))
	if offset == 0 {
		return baseAddr
	}
	dest := l.newTemp()
	l.emit(ir.Instr{Dest: dest, DestType: ptrType, Op: ir.OpAdd,
		Args: []ir.Operand{baseAddr, ir.Imm(int64(offset), ir.Int(2, false))}})
	return ir.Var(dest, ptrType)
}

// ---------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------

func (l *Lowerer) lowerExpr(e ast.Expr) ir.Operand {
	switch v := e.(type) {
	case *ast.Ident:
		t := l.typeOf(v)
		if sym, ok := l.syms.Lookup(v.Tok.Text); ok && sym.Kind == symtab.KindEnumConst {
			return ir.Imm(sym.EnumVal, toIRType(t))
		}
		return ir.Var(v.Tok.Text, toIRType(t))
	case *ast.IntLit:
		n, err := parser.ParseIntLiteralValue(v.Tok.Text)
		if err != nil {
			l.diags.Errorf(v.Tok.Begin, diag.KindParseExpected, "invalid integer literal %q", v.Tok.Text)
			n = 0
		}
		return ir.Imm(n, toIRType(ctype.IntType))
	case *ast.CharLit:
		return ir.Imm(decodeCharLiteral(v.Tok.Text), toIRType(ctype.CharType))
	case *ast.StringLit:
		return l.lowerStringLit(v)
	case *ast.ParenExpr:
		return l.lowerExpr(v.Inner)
	case *ast.BinOp:
		return l.lowerBinOp(v)
	case *ast.AssignOp:
		return l.lowerAssignOp(v)
	case *ast.CondExpr:
		return l.lowerCondExpr(v)
	case *ast.UnaryOp:
		return l.lowerUnaryOp(v)
	case *ast.PostfixOp:
		return l.lowerPostfixOp(v)
	case *ast.CallExpr:
		return l.lowerCallExpr(v)
	case *ast.IndexExpr:
		return l.loadLValue(lvalue{addr: l.elementAddr(v), typ: l.typeOf(v)})
	case *ast.MemberExpr:
		return l.loadLValue(lvalue{addr: l.memberAddr(v), typ: l.typeOf(v)})
	case *ast.CastExpr:
		return l.lowerCastExpr(v)
	case *ast.SizeofType:
		t := l.resolveTypeName(v.Type)
		return ir.Imm(int64(t.Size()), toIRType(ctype.UIntType))
	case *ast.CompoundLiteral:
		return l.lowerCompoundLiteral(v)
	case *ast.CommaExpr:
		l.lowerExpr(v.Left)
		return l.lowerExpr(v.Right)
	default:
		l.diags.Errorf(e.FirstTok().Begin, diag.KindNotImplemented, "expression form not supported")
		return ir.Imm(0, toIRType(ctype.IntType))
	}
}

// decodeCharLiteral decodes the common escape sequences; anything else
// passes its second byte through raw, matching a permissive single-pass
// lexer/lowerer rather than a full escape-sequence table.
func decodeCharLiteral(text string) int64 {
	if len(text) >= 2 {
		text = text[1: len(text)-1]
	}
	if len(text) == 0 {
		return 0
	}
	if text[0] == '\\' && len(text) > 1 {
		switch text[1] {
		case 'n':
			return '\n'
		case 't':
			return '\t'
		case 'r':
			return '\r'
		case '0':
			return 0
		case '\\':
			return '\\'
		case '\'':
			return '\''
		default:
			return int64(text[1])
		}
	}
	return int64(text[0])
}

func (l *Lowerer) lowerStringLit(v *ast.StringLit) ir.Operand {
	name := fmt.Sprintf(".LC%d", len(l.mod.Data))
	bytes := []byte(decodeStringLiteral(v.Tok.Text))
	l.mod.Data = append(l.mod.Data, ir.Data{
		Name: name, Type: ir.Int(1, true), Size: len(bytes), Kind: ir.DataBytes, Bytes: bytes,
	})
	op := ir.LabelRef(name)
	op.Type = ir.Ptr(ir.Int(1, true))
	return op
}

func (l *Lowerer) lowerBinOp(v *ast.BinOp) ir.Operand {
	switch v.OpTok.Kind {
	case token.AmpAmp:
		return l.lowerLogicalAnd(v)
	case token.PipePipe:
		return l.lowerLogicalOr(v)
	}

	leftT := l.typeOf(v.Left).Decay()
	rightT := l.typeOf(v.Right).Decay()

	if leftT.Kind == ctype.Pointer && rightT.Kind == ctype.Pointer && v.OpTok.Kind == token.Minus {
		return l.lowerPointerDiff(v, leftT)
	}
	if leftT.Kind == ctype.Pointer && (v.OpTok.Kind == token.Plus || v.OpTok.Kind == token.Minus) && rightT.Kind != ctype.Pointer {
		return l.lowerPointerArith(v, leftT, false)
	}
	if rightT.Kind == ctype.Pointer && v.OpTok.Kind == token.Plus && leftT.Kind != ctype.Pointer {
		return l.lowerPointerArith(v, rightT, true)
	}

	operandT := leftT
	if !leftT.IsPointer() && !rightT.IsPointer() {
		operandT = usualArith(leftT, rightT)
	}

	left := l.lowerExpr(v.Left)
	right := l.lowerExpr(v.Right)
	op, isCompare := binOpFor(v.OpTok.Kind, operandT)
	destType := toIRType(operandT)
	if isCompare {
		destType = ir.Int(2, false)
	}
	dest := l.newTemp()
	l.emit(ir.Instr{Dest: dest, DestType: destType, Op: op, Args: []ir.Operand{left, right}})
	return ir.Var(dest, destType)
}

func binOpFor(k token.Kind, t *ctype.Type) (ir.Op, bool) {
	unsigned := isUnsignedType(t)
	switch k {
	case token.Plus:
		return ir.OpAdd, false
	case token.Minus:
		return ir.OpSub, false
	case token.Star:
		return ir.OpMul, false
	case token.Slash:
		if unsigned {
			return ir.OpDivU, false
		}
		return ir.OpDivS, false
	case token.Percent:
		if unsigned {
			return ir.OpModU, false
		}
		return ir.OpModS, false
	case token.Amp:
		return ir.OpAnd, false
	case token.Pipe:
		return ir.OpOr, false
	case token.Caret:
		return ir.OpXor, false
	case token.LtLt:
		return ir.OpShl, false
	case token.GtGt:
		if unsigned {
			return ir.OpShrU, false
		}
		return ir.OpShrS, false
	case token.EqEq:
		return ir.OpEq, true
	case token.NotEq:
		return ir.OpNe, true
	case token.Lt:
		if unsigned {
			return ir.OpLtU, true
		}
		return ir.OpLtS, true
	case token.LtEq:
		if unsigned {
			return ir.OpLeU, true
		}
		return ir.OpLeS, true
	case token.Gt:
		if unsigned {
			return ir.OpGtU, true
		}
		return ir.OpGtS, true
	case token.GtEq:
		if unsigned {
			return ir.OpGeU, true
		}
		return ir.OpGeS, true
	default:
		return ir.OpAdd, false
	}
}

// lowerPointerArith lowers `ptr + n` / `ptr - n` (or `n + ptr`, swapped),
// scaling n by the pointee size, the pointer-arithmetic rule.
func (l *Lowerer) lowerPointerArith(v *ast.BinOp, ptrT *ctype.Type, swapped bool) ir.Operand {
	ptrExpr, intExpr := v.Left, v.Right
	if swapped {
		ptrExpr, intExpr = v.Right, v.Left
	}
	ptrVal := l.lowerExprAsPointer(ptrExpr)
	idx := l.lowerExpr(intExpr)
	elemSize := pointeeSize(ptrT)
	scaled := idx
	if elemSize != 1 {
		sd := l.newTemp()
		l.emit(ir.Instr{Dest: sd, DestType: idx.Type, Op: ir.OpMul,
			Args: []ir.Operand{idx, ir.Imm(int64(elemSize), idx.Type)}})
		scaled = ir.Var(sd, idx.Type)
	}
	op := ir.OpAdd
	if v.OpTok.Kind == token.Minus {
		op = ir.OpSub
	}
	pt := toIRType(ptrT)
	dest := l.newTemp()
	l.emit(ir.Instr{Dest: dest, DestType: pt, Op: op, Args: []ir.Operand{ptrVal, scaled}})
	return ir.Var(dest, pt)
}

// lowerPointerDiff lowers `p1 - p2` to an element count.
func (l *Lowerer) lowerPointerDiff(v *ast.BinOp, ptrT *ctype.Type) ir.Operand {
	left := l.lowerExprAsPointer(v.Left)
	right := l.lowerExprAsPointer(v.Right)
	diffT := ir.Int(2, false)
	dest := l.newTemp()
	l.emit(ir.Instr{Dest: dest, DestType: diffT, Op: ir.OpSub, Args: []ir.Operand{left, right}})
	elemSize := pointeeSize(ptrT)
	if elemSize == 1 {
		return ir.Var(dest, diffT)
	}
	result := l.newTemp()
	l.emit(ir.Instr{Dest: result, DestType: diffT, Op: ir.OpDivS,
		Args: []ir.Operand{ir.Var(dest, diffT), ir.Imm(int64(elemSize), diffT)}})
	return ir.Var(result, diffT)
}

func pointeeSize(ptrT *ctype.Type) int {
	if ptrT == nil || ptrT.Pointee == nil {
		return 1
	}
	if s := ptrT.Pointee.Size(); s > 0 {
		return s
	}
	return 1
}

// lowerLogicalAnd/lowerLogicalOr implement short-circuit evaluation,
//: the right operand is only evaluated when the left side
// doesn't already decide the result.
func (l *Lowerer) lowerLogicalAnd(v *ast.BinOp) ir.Operand {
	falseLabel := l.newLabel("andfalse")
	end := l.newLabel("andend")
	resultT := ir.Int(2, false)
	result := l.newTemp()

	left := l.lowerExpr(v.Left)
	l.emitJumpIfZero(left, falseLabel)
	right := l.lowerExpr(v.Right)
	rbool := l.toBool(right)
	l.emit(ir.Instr{Dest: result, DestType: resultT, Op: ir.OpCopy, Args: []ir.Operand{rbool}})
	l.emitJump(end)
	l.emitLabel(falseLabel)
	l.emit(ir.Instr{Dest: result, DestType: resultT, Op: ir.OpCopy, Args: []ir.Operand{ir.Imm(0, resultT)}})
	l.emitLabel(end)
	return ir.Var(result, resultT)
}

func (l *Lowerer) lowerLogicalOr(v *ast.BinOp) ir.Operand {
	trueLabel := l.newLabel("ortrue")
	end := l.newLabel("orend")
	resultT := ir.Int(2, false)
	result := l.newTemp()

	left := l.lowerExpr(v.Left)
	l.emitJumpIfNotZero(left, trueLabel)
	right := l.lowerExpr(v.Right)
	rbool := l.toBool(right)
	l.emit(ir.Instr{Dest: result, DestType: resultT, Op: ir.OpCopy, Args: []ir.Operand{rbool}})
	l.emitJump(end)
	l.emitLabel(trueLabel)
	l.emit(ir.Instr{Dest: result, DestType: resultT, Op: ir.OpCopy, Args: []ir.Operand{ir.Imm(1, resultT)}})
	l.emitLabel(end)
	return ir.Var(result, resultT)
}

func (l *Lowerer) toBool(v ir.Operand) ir.Operand {
	dest := l.newTemp()
	t := ir.Int(2, false)
	l.emit(ir.Instr{Dest: dest, DestType: t, Op: ir.OpNe, Args: []ir.Operand{v, ir.Imm(0, v.Type)}})
	return ir.Var(dest, t)
}

func (l *Lowerer) lowerAssignOp(v *ast.AssignOp) ir.Operand {
	lv := l.lowerLValue(v.Left)
	if v.OpTok.Kind == token.Eq {
		val := l.lowerExpr(v.Right)
		l.storeLValue(lv, val)
		return l.loadLValue(lv)
	}

	cur := l.loadLValue(lv)
	rhs := l.lowerExpr(v.Right)
	binKind := compoundAssignBinKind(v.OpTok.Kind)

	if lv.typ.IsPointer() && (binKind == token.Plus || binKind == token.Minus) {
		elemSize := pointeeSize(lv.typ)
		if elemSize != 1 {
			sd := l.newTemp()
			l.emit(ir.Instr{Dest: sd, DestType: rhs.Type, Op: ir.OpMul,
				Args: []ir.Operand{rhs, ir.Imm(int64(elemSize), rhs.Type)}})
			rhs = ir.Var(sd, rhs.Type)
		}
	}

	op, _ := binOpFor(binKind, lv.typ)
	destType := toIRType(lv.typ)
	dest := l.newTemp()
	l.emit(ir.Instr{Dest: dest, DestType: destType, Op: op, Args: []ir.Operand{cur, rhs}})
	result := ir.Var(dest, destType)
	l.storeLValue(lv, result)
	return result
}

func compoundAssignBinKind(k token.Kind) token.Kind {
	switch k {
	case token.PlusEq:
		return token.Plus
	case token.MinusEq:
		return token.Minus
	case token.StarEq:
		return token.Star
	case token.SlashEq:
		return token.Slash
	case token.PercentEq:
		return token.Percent
	case token.AmpEq:
		return token.Amp
	case token.PipeEq:
		return token.Pipe
	case token.CaretEq:
		return token.Caret
	case token.LtLtEq:
		return token.LtLt
	case token.GtGtEq:
		return token.GtGt
	default:
		return token.Plus
	}
}

// lowerCondExpr lowers the ternary via the merge-label pattern: both arms
// copy into one result temporary from their own block.
func (l *Lowerer) lowerCondExpr(v *ast.CondExpr) ir.Operand {
	elseLabel := l.newLabel("terelse")
	end := l.newLabel("terend")
	resultT := toIRType(l.typeOf(v))
	result := l.newTemp()

	l.checkScalarCond(v.Cond)
	cond := l.lowerExpr(v.Cond)
	l.emitJumpIfZero(cond, elseLabel)
	thenVal := l.lowerExpr(v.Then)
	l.emit(ir.Instr{Dest: result, DestType: resultT, Op: ir.OpCopy, Args: []ir.Operand{thenVal}})
	l.emitJump(end)
	l.emitLabel(elseLabel)
	elseVal := l.lowerExpr(v.Else)
	l.emit(ir.Instr{Dest: result, DestType: resultT, Op: ir.OpCopy, Args: []ir.Operand{elseVal}})
	l.emitLabel(end)
	return ir.Var(result, resultT)
}

func (l *Lowerer) lowerUnaryOp(v *ast.UnaryOp) ir.Operand {
	if v.Kind == ast.UnarySizeofExpr {
		t := l.typeOf(v.Expr)
		return ir.Imm(int64(t.Size()), toIRType(ctype.UIntType))
	}
	switch v.OpTok.Kind {
	case token.Amp:
		return l.addrOf(v.Expr)
	case token.Star:
		return l.loadLValue(l.lowerLValue(v))
	case token.Plus:
		return l.lowerExpr(v.Expr)
	case token.Minus:
		operand := l.lowerExpr(v.Expr)
		dest := l.newTemp()
		l.emit(ir.Instr{Dest: dest, DestType: operand.Type, Op: ir.OpNeg, Args: []ir.Operand{operand}})
		return ir.Var(dest, operand.Type)
	case token.Tilde:
		operand := l.lowerExpr(v.Expr)
		dest := l.newTemp()
		l.emit(ir.Instr{Dest: dest, DestType: operand.Type, Op: ir.OpNot, Args: []ir.Operand{operand}})
		return ir.Var(dest, operand.Type)
	case token.Bang:
		operand := l.lowerExpr(v.Expr)
		t := ir.Int(2, false)
		dest := l.newTemp()
		l.emit(ir.Instr{Dest: dest, DestType: t, Op: ir.OpEq, Args: []ir.Operand{operand, ir.Imm(0, operand.Type)}})
		return ir.Var(dest, t)
	case token.Inc, token.Dec:
		return l.lowerPrefixIncDec(v)
	default:
		l.diags.Errorf(v.OpTok.Begin, diag.KindNotImplemented, "unsupported unary operator %q", v.OpTok.Text)
		return ir.Imm(0, toIRType(ctype.IntType))
	}
}

func (l *Lowerer) lowerPrefixIncDec(v *ast.UnaryOp) ir.Operand {
	lv := l.lowerLValue(v.Expr)
	cur := l.loadLValue(lv)
	step := l.stepFor(lv.typ)
	op := ir.OpAdd
	if v.OpTok.Kind == token.Dec {
		op = ir.OpSub
	}
	dest := l.newTemp()
	l.emit(ir.Instr{Dest: dest, DestType: cur.Type, Op: op, Args: []ir.Operand{cur, step}})
	result := ir.Var(dest, cur.Type)
	l.storeLValue(lv, result)
	return result
}

// lowerPostfixOp returns the pre-update value, storing the updated one,
// the postfix ++/-- semantics.
func (l *Lowerer) lowerPostfixOp(v *ast.PostfixOp) ir.Operand {
	lv := l.lowerLValue(v.Expr)
	cur := l.loadLValue(lv)
	step := l.stepFor(lv.typ)
	op := ir.OpAdd
	if v.OpTok.Kind == token.Dec {
		op = ir.OpSub
	}
	saved := l.newTemp()
	l.emit(ir.Instr{Dest: saved, DestType: cur.Type, Op: ir.OpCopy, Args: []ir.Operand{cur}})
	updated := l.newTemp()
	l.emit(ir.Instr{Dest: updated, DestType: cur.Type, Op: op, Args: []ir.Operand{cur, step}})
	l.storeLValue(lv, ir.Var(updated, cur.Type))
	return ir.Var(saved, cur.Type)
}

func (l *Lowerer) stepFor(t *ctype.Type) ir.Operand {
	it := toIRType(t)
	if t != nil && t.Kind == ctype.Pointer {
		return ir.Imm(int64(pointeeSize(t)), it)
	}
	return ir.Imm(1, it)
}

// lowerCallExpr evaluates arguments left-to-right before emitting any
// OpArg, matching C's unspecified-but-conventionally-left-to-right
// argument evaluation order, but emits the OpArg pushes themselves in
// reverse (rightmost first) so the first parameter lands closest to the
// return address on the stack, the calling convention's push order.
func (l *Lowerer) lowerCallExpr(v *ast.CallExpr) ir.Operand {
	var argOps []ir.Operand
	for _, a := range v.Args {
		argOps = append(argOps, l.lowerExpr(a))
	}
	for i := len(argOps) - 1; i >= 0; i-- {
		l.emit(ir.Instr{Op: ir.OpArg, Args: []ir.Operand{argOps[i]}})
	}
	calleeName := ""
	if id, ok := v.Callee.(*ast.Ident); ok {
		calleeName = id.Tok.Text
	}
	retT := l.typeOf(v)
	destType := toIRType(retT)
	dest := ""
	if retT.Kind != ctype.Void {
		dest = l.newTemp()
	}
	l.emit(ir.Instr{Dest: dest, DestType: destType, Op: ir.OpCall, Args: []ir.Operand{ir.LabelRef(calleeName)}})
	if dest == "" {
		return ir.Operand{}
	}
	return ir.Var(dest, destType)
}

func (l *Lowerer) lowerCastExpr(v *ast.CastExpr) ir.Operand {
	targetT := l.resolveTypeName(v.Type)
	srcT := l.typeOf(v.Expr)
	if isAggregate(targetT) || isAggregate(srcT) {
		l.diags.Errorf(v.FirstTok().Begin, diag.KindInvalidCast,
			"invalid cast involving a struct or array type")
	}

	val := l.lowerExpr(v.Expr)
	destType := toIRType(targetT)
	srcSize := operandWidth(val.Type)
	dstSize := operandWidth(destType)
	dest := l.newTemp()
	if srcSize == dstSize {
		l.emit(ir.Instr{Dest: dest, DestType: destType, Op: ir.OpCopy, Args: []ir.Operand{val}})
		return ir.Var(dest, destType)
	}
	op := ir.OpExt
	if dstSize < srcSize {
		op = ir.OpTrunc
	}
	l.emit(ir.Instr{Dest: dest, DestType: destType, Op: op, Args: []ir.Operand{val}})
	return ir.Var(dest, destType)
}

func operandWidth(t ir.Type) int {
	if t.Kind == ir.TPtr {
		return 2
	}
	return t.Width
}

// lowerCompoundLiteral materializes a `(type){...}` as a synthetic local
// and returns its address.
func (l *Lowerer) lowerCompoundLiteral(v *ast.CompoundLiteral) ir.Operand {
	t := l.resolveTypeName(v.Type)
	name := l.newTemp()
	l.curProc.Locals = append(l.curProc.Locals, ir.Local{Name: name, Type: toIRType(t)})
	l.initializeAggregate(name, t, v.Init)
	pt := ir.Ptr(toIRType(t))
	dest := l.newTemp()
	l.emit(ir.Instr{Dest: dest, DestType: pt, Op: ir.OpAddr, Args: []ir.Operand{ir.Var(name, toIRType(t))}})
	return ir.Var(dest, pt)
}

// initializeAggregate stores each initializer-list element at its offset
// within the named aggregate. Nested brace-lists are not recursed into;
// dynamic-size/nested-aggregate initializers are outside the supported
// subset.
func (l *Lowerer) initializeAggregate(name string, t *ctype.Type, init *ast.ListInitializer) {
	baseIRType := toIRType(t)
	elemType := ctype.IntType
	if t.Kind == ctype.Array {
		elemType = t.ElemType
	}
	for i, item := range init.Items {
		fieldType := elemType
		offset := i * elemType.Size()
		if t.Kind == ctype.Record && i < len(t.Fields) {
			fieldType = t.Fields[i].Type
			offset = t.Fields[i].Offset
		}
		ei, ok := item.Value.(*ast.ExprInitializer)
		if !ok {
			continue
		}
		val := l.lowerExpr(ei.Value)
		addr := l.baseOffsetAddr(name, baseIRType, offset, fieldType)
		l.emit(ir.Instr{Op: ir.OpStore, Args: []ir.Operand{addr, val}})
	}
}

func (l *Lowerer) baseOffsetAddr(name string, baseType ir.Type, offset int, elemType *ctype.Type) ir.Operand {
	pt := ir.Ptr(toIRType(elemType))
	baseAddr := l.newTemp()
	l.emit(ir.Instr{Dest: baseAddr, DestType: ir.Ptr(baseType), Op: ir.OpAddr, Args: []ir.Operand{ir.Var(name, baseType)}})
	if offset == 0 {
		return ir.Var(baseAddr, pt)
	}
	dest := l.newTemp()
	l.emit(ir.Instr{Dest: dest, DestType: pt, Op: ir.OpAdd,
		Args: []ir.Operand{ir.Var(baseAddr, ir.Ptr(baseType)), ir.Imm(int64(offset), ir.Int(2, false))}})
	return ir.Var(dest, pt)
}
