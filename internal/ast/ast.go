// Package ast defines the abstract syntax tree produced by internal/parser:
// one interface per syntactic category (Decl, Stmt, Expr,...) with a
// marker method plus position accessors, generalizing yparse/ast.go's
// {Decl, Stmt, Expr, LocalDecl, FuncStmt} interface family from YAPL's small
// grammar to the full C declarator/specifier/expression grammar,
// including attached leading/trailing Trivia so source can
// be reconstructed byte-for-byte (the round-trip invariant).
package ast

import "github.com/jxsvoboda/sycek-sub004/internal/token"

// Trivia is a run of whitespace/comment/preprocessor tokens attached to a
// node so the original source text can be reconstructed around it.
type Trivia []token.Token

// Node is implemented by every AST node: it can report the first and last
// token that made it up, recoverable without a separate position field
// the way yparse/ast.go's SourceLoc works, since every node already holds
// its own tokens.
type Node interface {
	FirstTok() token.Token
	LastTok() token.Token
}

// TranslationUnit is the AST root: an ordered list of top-level
// declarations.
type TranslationUnit struct {
	Decls []ExternalDecl
	LeadTrivia Trivia // trivia before the first declaration
	TrailTrivia Trivia // trivia after the last declaration (usually EOF ws)
}

func (u *TranslationUnit) FirstTok() token.Token {
	if len(u.Decls) == 0 {
		return token.Token{Kind: token.EOF}
	}
	return u.Decls[0].FirstTok()
}
func (u *TranslationUnit) LastTok() token.Token {
	if len(u.Decls) == 0 {
		return token.Token{Kind: token.EOF}
	}
	return u.Decls[len(u.Decls)-1].LastTok()
}

// ExternalDecl is anything that can appear at file scope: a function
// definition, a declaration (possibly multiple declarators), or a
// passed-through preprocessor/asm block.
type ExternalDecl interface {
	Node
	externalDeclNode()
}

// Decl is a (possibly multi-declarator) declaration: "int a, *b, c[3];".
type Decl struct {
	Specs *DeclSpecs
	Declarators []*InitDeclarator
	Attrs []*AttributeList // trailing __attribute__ groups
	Semi token.Token
	Lead Trivia
}

func (d *Decl) externalDeclNode() {}
func (d *Decl) blockItemNode() {}
func (d *Decl) FirstTok() token.Token {
	if d.Specs != nil {
		return d.Specs.FirstTok()
	}
	return d.Semi
}
func (d *Decl) LastTok() token.Token { return d.Semi }

// FuncDef is a function definition with a body.
type FuncDef struct {
	Specs *DeclSpecs
	Declarator *Declarator
	OldStyleParams []*Decl // K&R-style parameter declarations, rarely used
	Body *CompoundStmt
	Lead Trivia
}

func (f *FuncDef) externalDeclNode() {}
func (f *FuncDef) FirstTok() token.Token {
	if f.Specs != nil {
		return f.Specs.FirstTok()
	}
	return f.Declarator.FirstTok()
}
func (f *FuncDef) LastTok() token.Token { return f.Body.LastTok() }

// AsmBlock is a file-scope `asm("...")`/`__asm__("...")` block, passed
// through verbatim to the assembly output.
type AsmBlock struct {
	Kw token.Token
	Text token.Token
	Semi token.Token
}

func (a *AsmBlock) externalDeclNode() {}
func (a *AsmBlock) blockItemNode() {}
func (a *AsmBlock) FirstTok() token.Token { return a.Kw }
func (a *AsmBlock) LastTok() token.Token { return a.Semi }

// PreprocLine is a passed-through preprocessor directive retained in the
// tree purely for round-tripping; it has no semantic effect beyond
// passthrough.
type PreprocLine struct {
	Tok token.Token
}

func (p *PreprocLine) externalDeclNode() {}
func (p *PreprocLine) blockItemNode() {}
func (p *PreprocLine) FirstTok() token.Token { return p.Tok }
func (p *PreprocLine) LastTok() token.Token { return p.Tok }

// ---------------------------------------------------------------------
// Declaration specifiers and declarators
// ---------------------------------------------------------------------

// StorageClass enumerates the C storage-class specifiers.
type StorageClass int

const (
	SCNone StorageClass = iota
	SCTypedef
	SCExtern
	SCStatic
	SCAuto
	SCRegister
)

// TypeQual is a bitset of type qualifiers.
type TypeQual int

const (
	QualNone TypeQual = 0
	QualConst TypeQual = 1 << iota
	QualVolatile
	QualRestrict
	QualAtomic
)

// BasicKind enumerates the basic/builtin type keywords combinable in a
// DeclSpecs (e.g. "unsigned long long int").
type BasicKind int

const (
	BKNone BasicKind = iota
	BKVoid
	BKChar
	BKBool
	BKInt
	BKFloat
	BKDouble
)

// DeclSpecs is the specifier-qualifier-list prefix of a declaration:
// storage class, basic-type keyword combination, signedness/size
// modifiers, qualifiers, an optional struct/union/enum specifier or
// typedef-name reference, and any attributes.
type DeclSpecs struct {
	Storage StorageClass
	Basic BasicKind
	Signed bool
	Unsigned bool
	ShortCount int // 0 or 1
	LongCount int // 0, 1 (long) or 2 (long long)
	Qual TypeQual
	Inline bool
	TypedefName *token.Token // set when the type is a prior typedef identifier
	RecordSpec *RecordSpec // set for an inline/forward struct or union
	EnumSpec *EnumSpec // set for an inline/forward enum
	Attrs []*AttributeList
	Toks []token.Token // all specifier tokens, in source order
}

func (s *DeclSpecs) FirstTok() token.Token {
	if len(s.Toks) == 0 {
		return token.Token{}
	}
	return s.Toks[0]
}
func (s *DeclSpecs) LastTok() token.Token {
	if len(s.Toks) == 0 {
		return token.Token{}
	}
	return s.Toks[len(s.Toks)-1]
}

// RecordSpec is a struct/union specifier, inline or forward.
type RecordSpec struct {
	IsUnion bool
	Name *token.Token // nil for an anonymous record
	Fields []*FieldDecl // nil for a forward reference
	Kw token.Token
	RBrace token.Token // zero value if there is no field-list
}

func (r *RecordSpec) FirstTok() token.Token { return r.Kw }
func (r *RecordSpec) LastTok() token.Token {
	if r.RBrace.Kind != token.Invalid {
		return r.RBrace
	}
	if r.Name != nil {
		return *r.Name
	}
	return r.Kw
}

// FieldDecl is one member declaration inside a struct/union body,
// possibly declaring several fields and/or a bitfield width.
type FieldDecl struct {
	Specs *DeclSpecs
	Declarators []*FieldDeclarator
	Semi token.Token
}

func (f *FieldDecl) FirstTok() token.Token { return f.Specs.FirstTok() }
func (f *FieldDecl) LastTok() token.Token { return f.Semi }

// FieldDeclarator pairs a declarator with an optional bitfield width.
// Bitfields themselves are out of scope (Non-goals) but the
// grammar production is still recognized and diagnosed.
type FieldDeclarator struct {
	Declarator *Declarator
	BitWidth Expr // nil when not a bitfield
}

// EnumSpec is an enum specifier, inline or forward.
type EnumSpec struct {
	Name *token.Token
	Enumerators []*Enumerator
	Kw token.Token
	RBrace token.Token
}

func (e *EnumSpec) FirstTok() token.Token { return e.Kw }
func (e *EnumSpec) LastTok() token.Token {
	if e.RBrace.Kind != token.Invalid {
		return e.RBrace
	}
	if e.Name != nil {
		return *e.Name
	}
	return e.Kw
}

// Enumerator is one `NAME` or `NAME = expr` inside an enum body.
type Enumerator struct {
	Name token.Token
	Value Expr // nil when the value is implicit (prior + 1)
}

// AttributeList is one `__attribute__((...))` group, the
// Open-Question resolution: attributes are accepted both before and after
// the declarator and merged, with duplicates not treated as an error.
type AttributeList struct {
	Kw token.Token
	Attrs []Attribute
	RParen2 token.Token
}

func (a *AttributeList) FirstTok() token.Token { return a.Kw }
func (a *AttributeList) LastTok() token.Token { return a.RParen2 }

// Attribute is one `name` or `name(args)` entry inside an attribute list.
type Attribute struct {
	Name token.Token
	Args []Expr
}

// PointerLevel is one `*` (with its own qualifiers) in a declarator's
// pointer prefix, e.g. the two levels in `int **p`.
type PointerLevel struct {
	Star token.Token
	Qual TypeQual
}

// DeclaratorSuffixKind tags a Declarator's trailing array/function suffix.
type DeclaratorSuffixKind int

const (
	SuffixNone DeclaratorSuffixKind = iota
	SuffixArray
	SuffixFunction
)

// DeclaratorSuffix is one `[N]` or `(params)` suffix, applied
// left-to-right the way C's declarator grammar nests them.
type DeclaratorSuffix struct {
	Kind DeclaratorSuffixKind
	ArrayLen Expr // nil for `[]`
	Params []*ParamDecl
	Variadic bool
	LBracket token.Token
	RBracket token.Token
}

// ParamDecl is one parameter in a function declarator's parameter list.
type ParamDecl struct {
	Specs *DeclSpecs
	Declarator *Declarator // nil for an abstract (unnamed) parameter
}

// Declarator is a (possibly abstract) C declarator: pointer levels, an
// optional identifier, and zero or more array/function suffixes applied in
// source order.
type Declarator struct {
	Pointers []PointerLevel
	Name *token.Token // nil for an abstract declarator
	Suffixes []*DeclaratorSuffix
	Attrs []*AttributeList
	Nested *Declarator // for `(*f)(...)`-style parenthesized declarators
}

func (d *Declarator) FirstTok() token.Token {
	if len(d.Pointers) > 0 {
		return d.Pointers[0].Star
	}
	if d.Nested != nil {
		return d.Nested.FirstTok()
	}
	if d.Name != nil {
		return *d.Name
	}
	return token.Token{}
}
func (d *Declarator) LastTok() token.Token {
	if n := len(d.Suffixes); n > 0 {
		s := d.Suffixes[n-1]
		if s.Kind == SuffixArray {
			return s.RBracket
		}
	}
	if d.Nested != nil {
		return d.Nested.LastTok()
	}
	if d.Name != nil {
		return *d.Name
	}
	return token.Token{}
}

// InitDeclarator pairs a Declarator with an optional initializer.
type InitDeclarator struct {
	Declarator *Declarator
	Init Initializer // nil when there is no `=...`
}

func (i *InitDeclarator) FirstTok() token.Token { return i.Declarator.FirstTok() }
func (i *InitDeclarator) LastTok() token.Token {
	if i.Init != nil {
		return i.Init.LastTok()
	}
	return i.Declarator.LastTok()
}

// Initializer is either a single expression or a brace-enclosed list of
// (possibly designated) initializers.
type Initializer interface {
	Node
	initializerNode()
}

// ExprInitializer is a plain `= expr` initializer.
type ExprInitializer struct {
	Value Expr
}

func (e *ExprInitializer) initializerNode() {}
func (e *ExprInitializer) FirstTok() token.Token { return e.Value.FirstTok() }
func (e *ExprInitializer) LastTok() token.Token { return e.Value.LastTok() }

// ListInitializer is a brace-enclosed initializer list, possibly with
// designators (`.field =...` / `[index] =...`).
type ListInitializer struct {
	LBrace token.Token
	Items []*DesignatedInitializer
	RBrace token.Token
}

func (l *ListInitializer) initializerNode() {}
func (l *ListInitializer) FirstTok() token.Token { return l.LBrace }
func (l *ListInitializer) LastTok() token.Token { return l.RBrace }

// DesignatedInitializer is one element of a ListInitializer, with an
// optional chain of `.field`/`[index]` designators.
type DesignatedInitializer struct {
	Designators []Designator
	Value Initializer
}

// Designator is one `.field` or `[index]` link in a designator chain.
type Designator struct {
	Field *token.Token // set for `.field`
	Index Expr // set for `[index]`
}

// ---------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------

// BlockItem is a declaration or statement that can appear inside a
// CompoundStmt's body.
type BlockItem interface {
	Node
	blockItemNode()
}

// Stmt is implemented by every statement node.
type Stmt interface {
	BlockItem
	stmtNode()
}

// CompoundStmt is a brace-enclosed block.
type CompoundStmt struct {
	LBrace token.Token
	Items []BlockItem
	RBrace token.Token
}

func (c *CompoundStmt) stmtNode() {}
func (c *CompoundStmt) blockItemNode() {}
func (c *CompoundStmt) FirstTok() token.Token { return c.LBrace }
func (c *CompoundStmt) LastTok() token.Token { return c.RBrace }

// ExprStmt is an expression followed by `;`, or a bare `;` when Expr is nil.
type ExprStmt struct {
	Expr Expr // nil for the null statement
	Semi token.Token
}

func (e *ExprStmt) stmtNode() {}
func (e *ExprStmt) blockItemNode() {}
func (e *ExprStmt) FirstTok() token.Token {
	if e.Expr != nil {
		return e.Expr.FirstTok()
	}
	return e.Semi
}
func (e *ExprStmt) LastTok() token.Token { return e.Semi }

// IfStmt is `if (cond) then [else else]`.
type IfStmt struct {
	Kw token.Token
	Cond Expr
	Then Stmt
	Else Stmt // nil when there is no else clause
}

func (s *IfStmt) stmtNode() {}
func (s *IfStmt) blockItemNode() {}
func (s *IfStmt) FirstTok() token.Token { return s.Kw }
func (s *IfStmt) LastTok() token.Token {
	if s.Else != nil {
		return s.Else.LastTok()
	}
	return s.Then.LastTok()
}

// WhileStmt is `while (cond) body`.
type WhileStmt struct {
	Kw token.Token
	Cond Expr
	Body Stmt
}

func (s *WhileStmt) stmtNode() {}
func (s *WhileStmt) blockItemNode() {}
func (s *WhileStmt) FirstTok() token.Token { return s.Kw }
func (s *WhileStmt) LastTok() token.Token { return s.Body.LastTok() }

// DoWhileStmt is `do body while (cond);`.
type DoWhileStmt struct {
	Kw token.Token
	Body Stmt
	Cond Expr
	Semi token.Token
}

func (s *DoWhileStmt) stmtNode() {}
func (s *DoWhileStmt) blockItemNode() {}
func (s *DoWhileStmt) FirstTok() token.Token { return s.Kw }
func (s *DoWhileStmt) LastTok() token.Token { return s.Semi }

// ForStmt is `for (init; cond; post) body`, where Init may be a Decl or an
// ExprStmt per C99's for-scope declaration rule.
type ForStmt struct {
	Kw token.Token
	Init BlockItem // *Decl or *ExprStmt, nil for `for (;;)`
	Cond Expr // nil for an always-true condition
	Post Expr // nil when absent
	Body Stmt
}

func (s *ForStmt) stmtNode() {}
func (s *ForStmt) blockItemNode() {}
func (s *ForStmt) FirstTok() token.Token { return s.Kw }
func (s *ForStmt) LastTok() token.Token { return s.Body.LastTok() }

// SwitchStmt is `switch (cond) body`; cases live inside Body as
// CaseStmt/DefaultStmt nodes.
type SwitchStmt struct {
	Kw token.Token
	Cond Expr
	Body Stmt
}

func (s *SwitchStmt) stmtNode() {}
func (s *SwitchStmt) blockItemNode() {}
func (s *SwitchStmt) FirstTok() token.Token { return s.Kw }
func (s *SwitchStmt) LastTok() token.Token { return s.Body.LastTok() }

// CaseStmt is `case expr: stmt`.
type CaseStmt struct {
	Kw token.Token
	Value Expr
	Colon token.Token
	Body Stmt
}

func (s *CaseStmt) stmtNode() {}
func (s *CaseStmt) blockItemNode() {}
func (s *CaseStmt) FirstTok() token.Token { return s.Kw }
func (s *CaseStmt) LastTok() token.Token { return s.Body.LastTok() }

// DefaultStmt is `default: stmt`.
type DefaultStmt struct {
	Kw token.Token
	Colon token.Token
	Body Stmt
}

func (s *DefaultStmt) stmtNode() {}
func (s *DefaultStmt) blockItemNode() {}
func (s *DefaultStmt) FirstTok() token.Token { return s.Kw }
func (s *DefaultStmt) LastTok() token.Token { return s.Body.LastTok() }

// BreakStmt is `break;`.
type BreakStmt struct {
	Kw token.Token
	Semi token.Token
}

func (s *BreakStmt) stmtNode() {}
func (s *BreakStmt) blockItemNode() {}
func (s *BreakStmt) FirstTok() token.Token { return s.Kw }
func (s *BreakStmt) LastTok() token.Token { return s.Semi }

// ContinueStmt is `continue;`.
type ContinueStmt struct {
	Kw token.Token
	Semi token.Token
}

func (s *ContinueStmt) stmtNode() {}
func (s *ContinueStmt) blockItemNode() {}
func (s *ContinueStmt) FirstTok() token.Token { return s.Kw }
func (s *ContinueStmt) LastTok() token.Token { return s.Semi }

// ReturnStmt is `return [expr];`.
type ReturnStmt struct {
	Kw token.Token
	Value Expr // nil for a bare `return;`
	Semi token.Token
}

func (s *ReturnStmt) stmtNode() {}
func (s *ReturnStmt) blockItemNode() {}
func (s *ReturnStmt) FirstTok() token.Token { return s.Kw }
func (s *ReturnStmt) LastTok() token.Token { return s.Semi }

// GotoStmt is `goto label;`.
type GotoStmt struct {
	Kw token.Token
	Label token.Token
	Semi token.Token
}

func (s *GotoStmt) stmtNode() {}
func (s *GotoStmt) blockItemNode() {}
func (s *GotoStmt) FirstTok() token.Token { return s.Kw }
func (s *GotoStmt) LastTok() token.Token { return s.Semi }

// LabelStmt is `label: stmt` label scoping.
type LabelStmt struct {
	Name token.Token
	Colon token.Token
	Body Stmt
}

func (s *LabelStmt) stmtNode() {}
func (s *LabelStmt) blockItemNode() {}
func (s *LabelStmt) FirstTok() token.Token { return s.Name }
func (s *LabelStmt) LastTok() token.Token { return s.Body.LastTok() }

// AsmStmt is an inline `asm("...")` statement inside a function body,
// passed through verbatim to the assembly output.
type AsmStmt struct {
	Kw token.Token
	Text token.Token
	Semi token.Token
}

func (s *AsmStmt) stmtNode() {}
func (s *AsmStmt) blockItemNode() {}
func (s *AsmStmt) FirstTok() token.Token { return s.Kw }
func (s *AsmStmt) LastTok() token.Token { return s.Semi }

// ---------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------

// Expr is implemented by every expression node. Expr nodes carry no
// resolved type; internal/lower computes an expression's type on demand
// while lowering it.
type Expr interface {
	Node
	exprNode()
}

// Ident is a bare identifier reference.
type Ident struct {
	Tok token.Token
}

func (e *Ident) exprNode() {}
func (e *Ident) FirstTok() token.Token { return e.Tok }
func (e *Ident) LastTok() token.Token { return e.Tok }

// IntLit, CharLit and StringLit hold the literal's raw token; decoding its
// value/encoding is internal/lower's job, not the parser's.
type IntLit struct{ Tok token.Token }

func (e *IntLit) exprNode() {}
func (e *IntLit) FirstTok() token.Token { return e.Tok }
func (e *IntLit) LastTok() token.Token { return e.Tok }

type CharLit struct{ Tok token.Token }

func (e *CharLit) exprNode() {}
func (e *CharLit) FirstTok() token.Token { return e.Tok }
func (e *CharLit) LastTok() token.Token { return e.Tok }

type StringLit struct{ Tok token.Token }

func (e *StringLit) exprNode() {}
func (e *StringLit) FirstTok() token.Token { return e.Tok }
func (e *StringLit) LastTok() token.Token { return e.Tok }

// ParenExpr preserves an explicit `(expr)` grouping so that, when needed,
// cast-vs-paren-expr disambiguation can be re-examined without reparsing.
type ParenExpr struct {
	LParen token.Token
	Inner Expr
	RParen token.Token
}

func (e *ParenExpr) exprNode() {}
func (e *ParenExpr) FirstTok() token.Token { return e.LParen }
func (e *ParenExpr) LastTok() token.Token { return e.RParen }

// BinOp is a binary operator expression; OpTok identifies the operator
// (e.g. token.Plus, token.AmpAmp), including short-circuit lowering of
// && and ||.
type BinOp struct {
	Left Expr
	OpTok token.Token
	Right Expr
}

func (e *BinOp) exprNode() {}
func (e *BinOp) FirstTok() token.Token { return e.Left.FirstTok() }
func (e *BinOp) LastTok() token.Token { return e.Right.LastTok() }

// AssignOp is a simple or compound assignment (`=`, `+=`,...).
type AssignOp struct {
	Left Expr
	OpTok token.Token
	Right Expr
}

func (e *AssignOp) exprNode() {}
func (e *AssignOp) FirstTok() token.Token { return e.Left.FirstTok() }
func (e *AssignOp) LastTok() token.Token { return e.Right.LastTok() }

// CondExpr is the ternary `cond ? then : else`; lowering generates a
// merge label for it.
type CondExpr struct {
	Cond Expr
	Question token.Token
	Then Expr
	Colon token.Token
	Else Expr
}

func (e *CondExpr) exprNode() {}
func (e *CondExpr) FirstTok() token.Token { return e.Cond.FirstTok() }
func (e *CondExpr) LastTok() token.Token { return e.Else.LastTok() }

// UnaryKind tags a UnaryOp's flavor: prefix operator or sizeof-expr.
// `sizeof(type)` is a separate SizeofType node.
type UnaryKind int

const (
	UnaryPrefix UnaryKind = iota
	UnarySizeofExpr
)

// UnaryOp is a prefix unary operator: `&`, `*`, `+`, `-`, `~`, `!`, `++x`,
// `--x`, or `sizeof expr`.
type UnaryOp struct {
	Kind UnaryKind
	OpTok token.Token
	Expr Expr
}

func (e *UnaryOp) exprNode() {}
func (e *UnaryOp) FirstTok() token.Token { return e.OpTok }
func (e *UnaryOp) LastTok() token.Token { return e.Expr.LastTok() }

// PostfixOp is a postfix `x++` / `x--`.
type PostfixOp struct {
	Expr Expr
	OpTok token.Token
}

func (e *PostfixOp) exprNode() {}
func (e *PostfixOp) FirstTok() token.Token { return e.Expr.FirstTok() }
func (e *PostfixOp) LastTok() token.Token { return e.OpTok }

// CallExpr is a function call; argument evaluation order and the varargs
// operand list are handled during lowering.
type CallExpr struct {
	Callee Expr
	LParen token.Token
	Args []Expr
	RParen token.Token
}

func (e *CallExpr) exprNode() {}
func (e *CallExpr) FirstTok() token.Token { return e.Callee.FirstTok() }
func (e *CallExpr) LastTok() token.Token { return e.RParen }

// IndexExpr is `array[index]`.
type IndexExpr struct {
	Base Expr
	LBracket token.Token
	Index Expr
	RBracket token.Token
}

func (e *IndexExpr) exprNode() {}
func (e *IndexExpr) FirstTok() token.Token { return e.Base.FirstTok() }
func (e *IndexExpr) LastTok() token.Token { return e.RBracket }

// MemberExpr is `base.field` or `base->field`; OpTok distinguishes them.
type MemberExpr struct {
	Base Expr
	OpTok token.Token // Dot or Arrow
	Field token.Token
}

func (e *MemberExpr) exprNode() {}
func (e *MemberExpr) FirstTok() token.Token { return e.Base.FirstTok() }
func (e *MemberExpr) LastTok() token.Token { return e.Field }

// TypeName is a standalone type reference used in casts, sizeof, and
// compound literals: a specifier-qualifier-list plus an abstract
// declarator.
type TypeName struct {
	Specs *DeclSpecs
	Declarator *Declarator // abstract (Name == nil); nil when there is none
}

func (t *TypeName) FirstTok() token.Token { return t.Specs.FirstTok() }
func (t *TypeName) LastTok() token.Token {
	if t.Declarator != nil {
		if last := t.Declarator.LastTok(); last.Kind != token.Invalid {
			return last
		}
	}
	return t.Specs.LastTok()
}

// CastExpr is `(type) expr`, the promotion/truncation lowering.
type CastExpr struct {
	LParen token.Token
	Type *TypeName
	RParen token.Token
	Expr Expr
}

func (e *CastExpr) exprNode() {}
func (e *CastExpr) FirstTok() token.Token { return e.LParen }
func (e *CastExpr) LastTok() token.Token { return e.Expr.LastTok() }

// SizeofType is `sizeof(type)`.
type SizeofType struct {
	Kw token.Token
	LParen token.Token
	Type *TypeName
	RParen token.Token
}

func (e *SizeofType) exprNode() {}
func (e *SizeofType) FirstTok() token.Token { return e.Kw }
func (e *SizeofType) LastTok() token.Token { return e.RParen }

// CompoundLiteral is `(type){ initializers }`, supported through normal
// precedence descent without special-casing, per the Open-Question
// resolution recorded for conditional-expression position.
type CompoundLiteral struct {
	LParen token.Token
	Type *TypeName
	RParen token.Token
	Init *ListInitializer
}

func (e *CompoundLiteral) exprNode() {}
func (e *CompoundLiteral) FirstTok() token.Token { return e.LParen }
func (e *CompoundLiteral) LastTok() token.Token { return e.Init.LastTok() }

// CommaExpr is the sequencing `a, b` operator.
type CommaExpr struct {
	Left Expr
	Comma token.Token
	Right Expr
}

func (e *CommaExpr) exprNode() {}
func (e *CommaExpr) FirstTok() token.Token { return e.Left.FirstTok() }
func (e *CommaExpr) LastTok() token.Token { return e.Right.LastTok() }
