package parser

import (
	"strconv"

	"github.com/jxsvoboda/sycek-sub004/internal/ast"
	"github.com/jxsvoboda/sycek-sub004/internal/diag"
	"github.com/jxsvoboda/sycek-sub004/internal/lexer"
	"github.com/jxsvoboda/sycek-sub004/internal/token"
)

// Parser is a recursive-descent parser over a single translation unit.
// Panic-mode recovery (error + synchronize) follows parse/parser.go; the
// typedefNames set implements the classic "lexer hack" needed to tell a
// typedef-name apart from an ordinary identifier in declaration-specifier
// position, since the lexer itself is context-free.
type Parser struct {
	s *stream
	diags *diag.Bag
	typedefNames map[string]bool
	panicMode bool

	reportedInvalid map[int]bool // token Begin.Offset already flagged KindLexInvalid
}

// New creates a Parser reading from lex and posting diagnostics to diags.
func New(lex *lexer.Lexer, diags *diag.Bag) *Parser {
	return &Parser{
		s: newStream(lex),
		diags: diags,
		typedefNames: make(map[string]bool),
		reportedInvalid: make(map[int]bool),
	}
}

func (p *Parser) cur() token.Token {
	tok := p.s.Peek(0)
	p.checkInvalid(tok)
	return tok
}

// checkInvalid posts one KindLexInvalid diagnostic per distinct bad
// token: either a token.Invalid/InvalidChar the lexer couldn't classify,
// or a well-classified token (a string or character literal, say) whose
// text contains a raw control byte the lexer let through without
// re-lexing it, per token.Token.ValidChars.
func (p *Parser) checkInvalid(tok token.Token) {
	if p.reportedInvalid[tok.Begin.Offset] {
		return
	}
	switch {
	case tok.Kind == token.Invalid || tok.Kind == token.InvalidChar:
		p.reportedInvalid[tok.Begin.Offset] = true
		p.diags.Errorf(tok.Begin, diag.KindLexInvalid, "invalid token %q", tok.Text)
	default:
		if ok, firstBad := tok.ValidChars(0); !ok {
			p.reportedInvalid[tok.Begin.Offset] = true
			p.diags.Errorf(tok.Begin, diag.KindLexInvalid,
				"invalid byte 0x%02x in %s token", tok.Text[firstBad], tok.Kind)
		}
	}
}

func (p *Parser) at(k token.Kind) bool { return p.cur().Kind == k }

func (p *Parser) errorf(format string, args ...interface{}) {
	tok := p.cur()
	p.diags.Errorf(tok.Begin, diag.KindParseExpected, format, args...)
	p.panicMode = true
}

// expect consumes the current token if it has kind k, otherwise posts a
// diagnostic and returns the (unconsumed) current token so callers can
// keep building a partial node.
func (p *Parser) expect(k token.Kind) token.Token {
	if p.at(k) {
		return p.s.Next()
	}
	p.errorf("expected %s, got %s", k, p.cur().Kind)
	return p.cur()
}

func (p *Parser) accept(k token.Kind) (token.Token, bool) {
	if p.at(k) {
		return p.s.Next(), true
	}
	return token.Token{}, false
}

// synchronize skips tokens until a declaration keyword, `;`, or `}`,
// mirroring parse/parser.go's synchronize.
func (p *Parser) synchronize() {
	p.panicMode = false
	for !p.s.AtEOF() {
		tok := p.cur()
		if isDeclSpecStart(tok.Kind, p.typedefNames, tok.Text) {
			return
		}
		if tok.Kind == token.Semi {
			p.s.Next()
			return
		}
		if tok.Kind == token.RBrace {
			return
		}
		p.s.Next()
	}
}

// Parse parses the whole token stream into a TranslationUnit.
func (p *Parser) Parse() *ast.TranslationUnit {
	unit := &ast.TranslationUnit{LeadTrivia: p.s.TakeLeadTrivia()}
	for !p.s.AtEOF() {
		decl := p.parseExternalDecl()
		if decl != nil {
			unit.Decls = append(unit.Decls, decl)
		}
		if p.panicMode {
			p.synchronize()
		}
	}
	unit.TrailTrivia = p.s.TakeLeadTrivia()
	return unit
}

// ---------------------------------------------------------------------
// Declaration-specifier recognition (the "lexer hack")
// ---------------------------------------------------------------------

func isDeclSpecKeyword(k token.Kind) bool {
	switch k {
	case token.KwTypedef, token.KwExtern, token.KwStatic, token.KwAuto, token.KwRegister,
		token.KwVoid, token.KwChar, token.KwShort, token.KwInt, token.KwLong,
		token.KwFloat, token.KwDouble, token.KwSigned, token.KwUnsigned,
		token.Kw_Bool, token.Kw_Complex, token.Kw_Imaginary,
		token.KwConst, token.KwVolatile, token.KwRestrict, token.KwRestrict2,
		token.Kw_Atomic, token.KwInline, token.KwStruct, token.KwUnion,
		token.KwEnum, token.KwAttribute:
		return true
	default:
		return false
	}
}

func isDeclSpecStart(k token.Kind, typedefs map[string]bool, text string) bool {
	if isDeclSpecKeyword(k) {
		return true
	}
	if k == token.Identifier && typedefs[text] {
		return true
	}
	return false
}

// ---------------------------------------------------------------------
// External declarations
// ---------------------------------------------------------------------

func (p *Parser) parseExternalDecl() ast.ExternalDecl {
	lead := p.s.TakeLeadTrivia()

	if p.at(token.Preproc) {
		tok := p.s.Next()
		return &ast.PreprocLine{Tok: tok}
	}

	if p.at(token.KwAsm) {
		return p.parseAsmBlock()
	}

	specs := p.parseDeclSpecs()
	if specs == nil {
		p.errorf("expected declaration")
		p.s.Next()
		return nil
	}

	if p.at(token.Semi) {
		semi := p.s.Next()
		return &ast.Decl{Specs: specs, Semi: semi, Lead: lead}
	}

	first := p.parseDeclarator(false)

	// A function definition has a declarator whose last suffix is a
	// parameter list, immediately followed by `{`.
	if p.at(token.LBrace) && len(first.Suffixes) > 0 &&
		first.Suffixes[len(first.Suffixes)-1].Kind == ast.SuffixFunction {
		body := p.parseCompoundStmt()
		return &ast.FuncDef{Specs: specs, Declarator: first, Body: body, Lead: lead}
	}

	decl := &ast.Decl{Specs: specs, Lead: lead}
	if specs.Storage == ast.SCTypedef && first.Name != nil {
		p.typedefNames[first.Name.Text] = true
	}
	decl.Declarators = append(decl.Declarators, p.finishInitDeclarator(first, specs))
	for {
		if _, ok := p.accept(token.Comma); !ok {
			break
		}
		d := p.parseDeclarator(false)
		if specs.Storage == ast.SCTypedef && d.Name != nil {
			p.typedefNames[d.Name.Text] = true
		}
		decl.Declarators = append(decl.Declarators, p.finishInitDeclarator(d, specs))
	}
	decl.Semi = p.expect(token.Semi)
	return decl
}

func (p *Parser) finishInitDeclarator(d *ast.Declarator, specs *ast.DeclSpecs) *ast.InitDeclarator {
	id := &ast.InitDeclarator{Declarator: d}
	if _, ok := p.accept(token.Eq); ok {
		id.Init = p.parseInitializer()
	}
	return id
}

func (p *Parser) parseAsmBlock() *ast.AsmBlock {
	kw := p.s.Next()
	p.expect(token.LParen)
	text := p.expect(token.StringLiteral)
	p.expect(token.RParen)
	semi := p.expect(token.Semi)
	return &ast.AsmBlock{Kw: kw, Text: text, Semi: semi}
}

// ---------------------------------------------------------------------
// Declaration specifiers
// ---------------------------------------------------------------------

func (p *Parser) parseDeclSpecs() *ast.DeclSpecs {
	specs := &ast.DeclSpecs{}
	sawAny := false

	for {
		tok := p.cur()
		switch tok.Kind {
		case token.KwTypedef:
			specs.Storage = ast.SCTypedef
		case token.KwExtern:
			specs.Storage = ast.SCExtern
		case token.KwStatic:
			specs.Storage = ast.SCStatic
		case token.KwAuto:
			specs.Storage = ast.SCAuto
		case token.KwRegister:
			specs.Storage = ast.SCRegister
		case token.KwInline:
			specs.Inline = true
		case token.KwConst:
			specs.Qual |= ast.QualConst
		case token.KwVolatile:
			specs.Qual |= ast.QualVolatile
		case token.KwRestrict, token.KwRestrict2:
			specs.Qual |= ast.QualRestrict
		case token.Kw_Atomic:
			specs.Qual |= ast.QualAtomic
		case token.KwVoid:
			specs.Basic = ast.BKVoid
		case token.KwChar:
			specs.Basic = ast.BKChar
		case token.Kw_Bool:
			specs.Basic = ast.BKBool
		case token.KwInt:
			specs.Basic = ast.BKInt
		case token.KwFloat:
			specs.Basic = ast.BKFloat
		case token.KwDouble:
			specs.Basic = ast.BKDouble
		case token.KwShort:
			specs.ShortCount++
		case token.KwLong:
			specs.LongCount++
		case token.KwSigned:
			specs.Signed = true
		case token.KwUnsigned:
			specs.Unsigned = true
		case token.KwStruct, token.KwUnion:
			specs.RecordSpec = p.parseRecordSpec()
			specs.Toks = append(specs.Toks, tok)
			sawAny = true
			continue
		case token.KwEnum:
			specs.EnumSpec = p.parseEnumSpec()
			specs.Toks = append(specs.Toks, tok)
			sawAny = true
			continue
		case token.KwAttribute:
			specs.Attrs = append(specs.Attrs, p.parseAttributeList())
			sawAny = true
			continue
		case token.Identifier:
			if specs.Basic == ast.BKNone && specs.RecordSpec == nil && specs.EnumSpec == nil &&
				specs.TypedefName == nil && p.typedefNames[tok.Text] {
				t := tok
				specs.TypedefName = &t
				specs.Toks = append(specs.Toks, tok)
				p.s.Next()
				sawAny = true
				continue
			}
			if !sawAny {
				return nil
			}
			return specs
		default:
			if !sawAny {
				return nil
			}
			return specs
		}
		specs.Toks = append(specs.Toks, tok)
		p.s.Next()
		sawAny = true
	}
}

func (p *Parser) parseRecordSpec() *ast.RecordSpec {
	kw := p.s.Next()
	r := &ast.RecordSpec{IsUnion: kw.Kind == token.KwUnion, Kw: kw}
	if tok, ok := p.accept(token.Identifier); ok {
		r.Name = &tok
	}
	if _, ok := p.accept(token.LBrace); ok {
		for !p.at(token.RBrace) && !p.s.AtEOF() {
			r.Fields = append(r.Fields, p.parseFieldDecl())
		}
		r.RBrace = p.expect(token.RBrace)
	}
	return r
}

func (p *Parser) parseFieldDecl() *ast.FieldDecl {
	specs := p.parseDeclSpecs()
	fd := &ast.FieldDecl{Specs: specs}
	for {
		var field ast.FieldDeclarator
		if !p.at(token.Colon) {
			field.Declarator = p.parseDeclarator(false)
		}
		if _, ok := p.accept(token.Colon); ok {
			field.BitWidth = p.parseCondExpr()
		}
		fd.Declarators = append(fd.Declarators, &field)
		if _, ok := p.accept(token.Comma); !ok {
			break
		}
	}
	fd.Semi = p.expect(token.Semi)
	return fd
}

func (p *Parser) parseEnumSpec() *ast.EnumSpec {
	kw := p.s.Next()
	e := &ast.EnumSpec{Kw: kw}
	if tok, ok := p.accept(token.Identifier); ok {
		e.Name = &tok
	}
	if _, ok := p.accept(token.LBrace); ok {
		for !p.at(token.RBrace) && !p.s.AtEOF() {
			name := p.expect(token.Identifier)
			en := &ast.Enumerator{Name: name}
			if _, ok := p.accept(token.Eq); ok {
				en.Value = p.parseCondExpr()
			}
			e.Enumerators = append(e.Enumerators, en)
			if _, ok := p.accept(token.Comma); !ok {
				break
			}
		}
		e.RBrace = p.expect(token.RBrace)
	}
	return e
}

func (p *Parser) parseAttributeList() *ast.AttributeList {
	kw := p.s.Next()
	p.expect(token.LParen)
	p.expect(token.LParen)
	a := &ast.AttributeList{Kw: kw}
	for !p.at(token.RParen) && !p.s.AtEOF() {
		name := p.expect(token.Identifier)
		attr := ast.Attribute{Name: name}
		if _, ok := p.accept(token.LParen); ok {
			for !p.at(token.RParen) && !p.s.AtEOF() {
				attr.Args = append(attr.Args, p.parseAssignExpr())
				if _, ok := p.accept(token.Comma); !ok {
					break
				}
			}
			p.expect(token.RParen)
		}
		a.Attrs = append(a.Attrs, attr)
		if _, ok := p.accept(token.Comma); !ok {
			break
		}
	}
	p.expect(token.RParen)
	a.RParen2 = p.expect(token.RParen)
	return a
}

// ---------------------------------------------------------------------
// Declarators
// ---------------------------------------------------------------------

func (p *Parser) parseDeclarator(abstract bool) *ast.Declarator {
	d := &ast.Declarator{}
	for p.at(token.Star) {
		star := p.s.Next()
		level := ast.PointerLevel{Star: star}
		for {
			switch {
			case p.at(token.KwConst):
				level.Qual |= ast.QualConst
				p.s.Next()
			case p.at(token.KwVolatile):
				level.Qual |= ast.QualVolatile
				p.s.Next()
			case p.at(token.KwRestrict), p.at(token.KwRestrict2):
				level.Qual |= ast.QualRestrict
				p.s.Next()
			default:
				goto doneQual
			}
		}
	doneQual:
		d.Pointers = append(d.Pointers, level)
	}

	if p.at(token.LParen) && p.looksLikeNestedDeclarator() {
		p.s.Next()
		d.Nested = p.parseDeclarator(abstract)
		p.expect(token.RParen)
	} else if tok, ok := p.accept(token.Identifier); ok {
		d.Name = &tok
	} else if !abstract {
		p.errorf("expected identifier in declarator")
	}

	for {
		if lb, ok := p.accept(token.LBracket); ok {
			suf := &ast.DeclaratorSuffix{Kind: ast.SuffixArray, LBracket: lb}
			if !p.at(token.RBracket) {
				suf.ArrayLen = p.parseAssignExpr()
			}
			suf.RBracket = p.expect(token.RBracket)
			d.Suffixes = append(d.Suffixes, suf)
			continue
		}
		if _, ok := p.accept(token.LParen); ok {
			suf := &ast.DeclaratorSuffix{Kind: ast.SuffixFunction}
			if !p.at(token.RParen) {
				for {
					if p.at(token.Ellipsis) {
						p.s.Next()
						suf.Variadic = true
						break
					}
					pspecs := p.parseDeclSpecs()
					if pspecs == nil {
						break
					}
					var pd *ast.Declarator
					if !p.at(token.Comma) && !p.at(token.RParen) {
						pd = p.parseDeclarator(true)
					}
					suf.Params = append(suf.Params, &ast.ParamDecl{Specs: pspecs, Declarator: pd})
					if _, ok := p.accept(token.Comma); !ok {
						break
					}
				}
			}
			p.expect(token.RParen)
			d.Suffixes = append(d.Suffixes, suf)
			continue
		}
		break
	}

	for p.at(token.KwAttribute) {
		d.Attrs = append(d.Attrs, p.parseAttributeList())
	}

	return d
}

// looksLikeNestedDeclarator decides, with one token of extra lookahead,
// whether a `(` starting a declarator position opens a parenthesized
// sub-declarator (`(*f)(...)`) rather than an empty/abstract parameter
// list; a `(` immediately followed by `)`, a declaration-specifier, or
// `...` is a parameter list instead.
func (p *Parser) looksLikeNestedDeclarator() bool {
	next := p.s.Peek(1)
	if next.Kind == token.RParen || next.Kind == token.Ellipsis {
		return false
	}
	if isDeclSpecStart(next.Kind, p.typedefNames, next.Text) {
		return false
	}
	return true
}

func (p *Parser) parseTypeName() *ast.TypeName {
	specs := p.parseDeclSpecs()
	tn := &ast.TypeName{Specs: specs}
	if p.at(token.Star) || p.at(token.LParen) || p.at(token.LBracket) {
		tn.Declarator = p.parseDeclarator(true)
	}
	return tn
}

// ---------------------------------------------------------------------
// Initializers
// ---------------------------------------------------------------------

func (p *Parser) parseInitializer() ast.Initializer {
	if p.at(token.LBrace) {
		return p.parseListInitializer()
	}
	return &ast.ExprInitializer{Value: p.parseAssignExpr()}
}

func (p *Parser) parseListInitializer() *ast.ListInitializer {
	lbrace := p.s.Next()
	li := &ast.ListInitializer{LBrace: lbrace}
	for !p.at(token.RBrace) && !p.s.AtEOF() {
		item := &ast.DesignatedInitializer{}
		for p.at(token.Dot) || p.at(token.LBracket) {
			if _, ok := p.accept(token.Dot); ok {
				name := p.expect(token.Identifier)
				item.Designators = append(item.Designators, ast.Designator{Field: &name})
			} else {
				p.s.Next()
				idx := p.parseCondExpr()
				p.expect(token.RBracket)
				item.Designators = append(item.Designators, ast.Designator{Index: idx})
			}
		}
		if len(item.Designators) > 0 {
			p.expect(token.Eq)
		}
		item.Value = p.parseInitializer()
		li.Items = append(li.Items, item)
		if _, ok := p.accept(token.Comma); !ok {
			break
		}
	}
	li.RBrace = p.expect(token.RBrace)
	return li
}

// ---------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------

func (p *Parser) parseCompoundStmt() *ast.CompoundStmt {
	lbrace := p.expect(token.LBrace)
	cs := &ast.CompoundStmt{LBrace: lbrace}
	for !p.at(token.RBrace) && !p.s.AtEOF() {
		item := p.parseBlockItem()
		if item != nil {
			cs.Items = append(cs.Items, item)
		}
		if p.panicMode {
			p.synchronize()
		}
	}
	cs.RBrace = p.expect(token.RBrace)
	return cs
}

func (p *Parser) parseBlockItem() ast.BlockItem {
	if isDeclSpecStart(p.cur().Kind, p.typedefNames, p.cur().Text) {
		return p.parseLocalDecl()
	}
	return p.parseStmt()
}

func (p *Parser) parseLocalDecl() ast.BlockItem {
	specs := p.parseDeclSpecs()
	if specs == nil {
		p.errorf("expected declaration")
		p.s.Next()
		return nil
	}
	decl := &ast.Decl{Specs: specs}
	if !p.at(token.Semi) {
		first := p.parseDeclarator(false)
		if specs.Storage == ast.SCTypedef && first.Name != nil {
			p.typedefNames[first.Name.Text] = true
		}
		decl.Declarators = append(decl.Declarators, p.finishInitDeclarator(first, specs))
		for {
			if _, ok := p.accept(token.Comma); !ok {
				break
			}
			d := p.parseDeclarator(false)
			if specs.Storage == ast.SCTypedef && d.Name != nil {
				p.typedefNames[d.Name.Text] = true
			}
			decl.Declarators = append(decl.Declarators, p.finishInitDeclarator(d, specs))
		}
	}
	decl.Semi = p.expect(token.Semi)
	return decl
}

func (p *Parser) parseStmt() ast.Stmt {
	switch p.cur().Kind {
	case token.LBrace:
		return p.parseCompoundStmt()
	case token.KwIf:
		return p.parseIfStmt()
	case token.KwWhile:
		return p.parseWhileStmt()
	case token.KwDo:
		return p.parseDoWhileStmt()
	case token.KwFor:
		return p.parseForStmt()
	case token.KwSwitch:
		return p.parseSwitchStmt()
	case token.KwCase:
		return p.parseCaseStmt()
	case token.KwDefault:
		return p.parseDefaultStmt()
	case token.KwBreak:
		kw := p.s.Next()
		return &ast.BreakStmt{Kw: kw, Semi: p.expect(token.Semi)}
	case token.KwContinue:
		kw := p.s.Next()
		return &ast.ContinueStmt{Kw: kw, Semi: p.expect(token.Semi)}
	case token.KwReturn:
		return p.parseReturnStmt()
	case token.KwGoto:
		kw := p.s.Next()
		label := p.expect(token.Identifier)
		return &ast.GotoStmt{Kw: kw, Label: label, Semi: p.expect(token.Semi)}
	case token.KwAsm:
		return p.parseAsmStmt()
	case token.Semi:
		semi := p.s.Next()
		return &ast.ExprStmt{Semi: semi}
	case token.Identifier:
		if p.s.Peek(1).Kind == token.Colon {
			name := p.s.Next()
			colon := p.s.Next()
			body := p.parseStmt()
			return &ast.LabelStmt{Name: name, Colon: colon, Body: body}
		}
		return p.parseExprStmt()
	default:
		return p.parseExprStmt()
	}
}

func (p *Parser) parseExprStmt() *ast.ExprStmt {
	e := p.parseExpr()
	return &ast.ExprStmt{Expr: e, Semi: p.expect(token.Semi)}
}

func (p *Parser) parseIfStmt() *ast.IfStmt {
	kw := p.s.Next()
	p.expect(token.LParen)
	cond := p.parseExpr()
	p.expect(token.RParen)
	then := p.parseStmt()
	s := &ast.IfStmt{Kw: kw, Cond: cond, Then: then}
	if _, ok := p.accept(token.KwElse); ok {
		s.Else = p.parseStmt()
	}
	return s
}

func (p *Parser) parseWhileStmt() *ast.WhileStmt {
	kw := p.s.Next()
	p.expect(token.LParen)
	cond := p.parseExpr()
	p.expect(token.RParen)
	body := p.parseStmt()
	return &ast.WhileStmt{Kw: kw, Cond: cond, Body: body}
}

func (p *Parser) parseDoWhileStmt() *ast.DoWhileStmt {
	kw := p.s.Next()
	body := p.parseStmt()
	p.expect(token.KwWhile)
	p.expect(token.LParen)
	cond := p.parseExpr()
	p.expect(token.RParen)
	return &ast.DoWhileStmt{Kw: kw, Body: body, Cond: cond, Semi: p.expect(token.Semi)}
}

func (p *Parser) parseForStmt() *ast.ForStmt {
	kw := p.s.Next()
	p.expect(token.LParen)
	s := &ast.ForStmt{Kw: kw}
	if !p.at(token.Semi) {
		if isDeclSpecStart(p.cur().Kind, p.typedefNames, p.cur().Text) {
			s.Init = p.parseLocalDecl()
		} else {
			s.Init = p.parseExprStmt()
		}
	} else {
		p.s.Next()
	}
	if !p.at(token.Semi) {
		s.Cond = p.parseExpr()
	}
	p.expect(token.Semi)
	if !p.at(token.RParen) {
		s.Post = p.parseExpr()
	}
	p.expect(token.RParen)
	s.Body = p.parseStmt()
	return s
}

func (p *Parser) parseSwitchStmt() *ast.SwitchStmt {
	kw := p.s.Next()
	p.expect(token.LParen)
	cond := p.parseExpr()
	p.expect(token.RParen)
	body := p.parseStmt()
	return &ast.SwitchStmt{Kw: kw, Cond: cond, Body: body}
}

func (p *Parser) parseCaseStmt() *ast.CaseStmt {
	kw := p.s.Next()
	val := p.parseCondExpr()
	colon := p.expect(token.Colon)
	body := p.parseStmt()
	return &ast.CaseStmt{Kw: kw, Value: val, Colon: colon, Body: body}
}

func (p *Parser) parseDefaultStmt() *ast.DefaultStmt {
	kw := p.s.Next()
	colon := p.expect(token.Colon)
	body := p.parseStmt()
	return &ast.DefaultStmt{Kw: kw, Colon: colon, Body: body}
}

func (p *Parser) parseReturnStmt() *ast.ReturnStmt {
	kw := p.s.Next()
	r := &ast.ReturnStmt{Kw: kw}
	if !p.at(token.Semi) {
		r.Value = p.parseExpr()
	}
	r.Semi = p.expect(token.Semi)
	return r
}

func (p *Parser) parseAsmStmt() *ast.AsmStmt {
	kw := p.s.Next()
	p.expect(token.LParen)
	text := p.expect(token.StringLiteral)
	p.expect(token.RParen)
	return &ast.AsmStmt{Kw: kw, Text: text, Semi: p.expect(token.Semi)}
}

// ---------------------------------------------------------------------
// Expressions (precedence-climbing recursive descent)
// ---------------------------------------------------------------------

func (p *Parser) parseExpr() ast.Expr {
	e := p.parseAssignExpr()
	for p.at(token.Comma) {
		comma := p.s.Next()
		rhs := p.parseAssignExpr()
		e = &ast.CommaExpr{Left: e, Comma: comma, Right: rhs}
	}
	return e
}

var assignOps = map[token.Kind]bool{
	token.Eq: true, token.StarEq: true, token.SlashEq: true, token.PercentEq: true,
	token.PlusEq: true, token.MinusEq: true, token.LtLtEq: true, token.GtGtEq: true,
	token.AmpEq: true, token.CaretEq: true, token.PipeEq: true,
}

func (p *Parser) parseAssignExpr() ast.Expr {
	left := p.parseCondExpr()
	if assignOps[p.cur().Kind] {
		op := p.s.Next()
		right := p.parseAssignExpr()
		return &ast.AssignOp{Left: left, OpTok: op, Right: right}
	}
	return left
}

func (p *Parser) parseCondExpr() ast.Expr {
	cond := p.parseBinExpr(0)
	if p.at(token.Question) {
		q := p.s.Next()
		then := p.parseExpr()
		colon := p.expect(token.Colon)
		els := p.parseAssignExpr()
		return &ast.CondExpr{Cond: cond, Question: q, Then: then, Colon: colon, Else: els}
	}
	return cond
}

// precedence levels, lowest to highest, the standard C
// operator-precedence table.
var binPrec = []map[token.Kind]bool{
	{token.PipePipe: true},
	{token.AmpAmp: true},
	{token.Pipe: true},
	{token.Caret: true},
	{token.Amp: true},
	{token.EqEq: true, token.NotEq: true},
	{token.Lt: true, token.Gt: true, token.LtEq: true, token.GtEq: true},
	{token.LtLt: true, token.GtGt: true},
	{token.Plus: true, token.Minus: true},
	{token.Star: true, token.Slash: true, token.Percent: true},
}

func (p *Parser) parseBinExpr(level int) ast.Expr {
	if level >= len(binPrec) {
		return p.parseCastExpr()
	}
	left := p.parseBinExpr(level + 1)
	for binPrec[level][p.cur().Kind] {
		op := p.s.Next()
		right := p.parseBinExpr(level + 1)
		left = &ast.BinOp{Left: left, OpTok: op, Right: right}
	}
	return left
}

// parseCastExpr disambiguates `(type-name) expr` from a parenthesized
// expression by speculatively parsing a type name and backtracking if it
// doesn't pan out to a valid cast, the bounded-backtracking
// requirement.
func (p *Parser) parseCastExpr() ast.Expr {
	if p.at(token.LParen) {
		m := p.s.Mark()
		lparen := p.s.Next()
		if isDeclSpecStart(p.cur().Kind, p.typedefNames, p.cur().Text) {
			saved := p.panicMode
			tn := p.parseTypeName()
			if !p.panicMode && p.at(token.RParen) {
				rparen := p.s.Next()
				if p.at(token.LBrace) {
					init := p.parseListInitializer()
					return &ast.CompoundLiteral{LParen: lparen, Type: tn, RParen: rparen, Init: init}
				}
				inner := p.parseCastExpr()
				return &ast.CastExpr{LParen: lparen, Type: tn, RParen: rparen, Expr: inner}
			}
			p.panicMode = saved
		}
		p.s.Reset(m)
	}
	return p.parseUnaryExpr()
}

var unaryPrefixOps = map[token.Kind]bool{
	token.Amp: true, token.Star: true, token.Plus: true, token.Minus: true,
	token.Tilde: true, token.Bang: true, token.Inc: true, token.Dec: true,
}

func (p *Parser) parseUnaryExpr() ast.Expr {
	if unaryPrefixOps[p.cur().Kind] {
		op := p.s.Next()
		operand := p.parseCastExpr()
		return &ast.UnaryOp{Kind: ast.UnaryPrefix, OpTok: op, Expr: operand}
	}
	if p.at(token.KwSizeof) {
		kw := p.s.Next()
		if p.at(token.LParen) && isDeclSpecStart(p.s.Peek(1).Kind, p.typedefNames, p.s.Peek(1).Text) {
			lparen := p.s.Next()
			tn := p.parseTypeName()
			rparen := p.expect(token.RParen)
			return &ast.SizeofType{Kw: kw, LParen: lparen, Type: tn, RParen: rparen}
		}
		operand := p.parseUnaryExpr()
		return &ast.UnaryOp{Kind: ast.UnarySizeofExpr, OpTok: kw, Expr: operand}
	}
	return p.parsePostfixExpr()
}

func (p *Parser) parsePostfixExpr() ast.Expr {
	e := p.parsePrimaryExpr()
	for {
		switch p.cur().Kind {
		case token.LBracket:
			lb := p.s.Next()
			idx := p.parseExpr()
			rb := p.expect(token.RBracket)
			e = &ast.IndexExpr{Base: e, LBracket: lb, Index: idx, RBracket: rb}
		case token.LParen:
			lp := p.s.Next()
			call := &ast.CallExpr{Callee: e, LParen: lp}
			if !p.at(token.RParen) {
				for {
					call.Args = append(call.Args, p.parseAssignExpr())
					if _, ok := p.accept(token.Comma); !ok {
						break
					}
				}
			}
			call.RParen = p.expect(token.RParen)
			e = call
		case token.Dot, token.Arrow:
			op := p.s.Next()
			field := p.expect(token.Identifier)
			e = &ast.MemberExpr{Base: e, OpTok: op, Field: field}
		case token.Inc, token.Dec:
			op := p.s.Next()
			e = &ast.PostfixOp{Expr: e, OpTok: op}
		default:
			return e
		}
	}
}

func (p *Parser) parsePrimaryExpr() ast.Expr {
	tok := p.cur()
	switch tok.Kind {
	case token.Identifier:
		p.s.Next()
		return &ast.Ident{Tok: tok}
	case token.Number:
		p.s.Next()
		return &ast.IntLit{Tok: tok}
	case token.CharLiteral:
		p.s.Next()
		return &ast.CharLit{Tok: tok}
	case token.StringLiteral:
		p.s.Next()
		return &ast.StringLit{Tok: tok}
	case token.LParen:
		lp := p.s.Next()
		inner := p.parseExpr()
		rp := p.expect(token.RParen)
		return &ast.ParenExpr{LParen: lp, Inner: inner, RParen: rp}
	default:
		p.errorf("expected expression, got %s", tok.Kind)
		p.s.Next()
		return &ast.IntLit{Tok: token.Token{Kind: token.Number, Text: "0", Begin: tok.Begin, End: tok.Begin}}
	}
}

// ParseIntLiteralValue decodes a Number token's integer value, stripping
// base prefixes and integer suffixes; used by internal/lower and by tests
// that want to check a literal's value without duplicating the logic.
func ParseIntLiteralValue(text string) (int64, error) {
	end := len(text)
	for end > 0 {
		c := text[end-1]
		if c == 'u' || c == 'U' || c == 'l' || c == 'L' {
			end--
			continue
		}
		break
	}
	return strconv.ParseInt(text[:end], 0, 64)
}
