// Package parser implements a recursive-descent parser: one-token
// lookahead with bounded speculative backtracking for the
// declaration-vs-statement and cast-vs-paren-expr ambiguities C's grammar
// raises, grounded on parse/parser.go's Parser shape (peek/next over a
// token source, panic-mode error/errorAt/synchronize) generalized from
// YAPL's small grammar to full C89/C99 declarations, statements and
// expressions, and on yparse/token.go's TokenReader for the buffered
// lookahead shape.
package parser

import (
	"github.com/jxsvoboda/sycek-sub004/internal/ast"
	"github.com/jxsvoboda/sycek-sub004/internal/lexer"
	"github.com/jxsvoboda/sycek-sub004/internal/token"
)

// stream buffers every significant token ever fetched from the lexer, plus
// the trivia that preceded it, so that a Mark/Reset pair can backtrack
// without re-lexing: nothing is ever discarded from toks, only the cursor
// moves. This generalizes yparse/token.go's TokenReader (which only ever
// looks one token ahead) to support bounded backtracking.
type stream struct {
	lex *lexer.Lexer

	toks []token.Token
	trivia []ast.Trivia // trivia[i] precedes toks[i]
	pos int

	eofTok token.Token
}

func newStream(lex *lexer.Lexer) *stream {
	return &stream{lex: lex}
}

// fill ensures toks has at least pos+need+1 entries, pulling from the
// lexer and routing trivia tokens into the pending-trivia run for the next
// significant token.
func (s *stream) fill(need int) {
	for len(s.toks) <= s.pos+need {
		var pending ast.Trivia
		var tok token.Token
		for {
			tok = s.lex.GetTok()
			if !tok.Kind.IsTrivia() {
				break
			}
			pending = append(pending, tok)
			if tok.Kind == token.EOF {
				break
			}
		}
		if tok.Kind == token.EOF {
			s.eofTok = tok
		}
		s.toks = append(s.toks, tok)
		s.trivia = append(s.trivia, pending)
		if tok.Kind == token.EOF {
			// Keep returning the same EOF token for any further lookahead.
			for len(s.toks) <= s.pos+need {
				s.toks = append(s.toks, tok)
				s.trivia = append(s.trivia, nil)
			}
			break
		}
	}
}

// Peek returns the token n positions ahead of the cursor (0 = next token
// to be consumed by Next).
func (s *stream) Peek(n int) token.Token {
	s.fill(n)
	return s.toks[s.pos+n]
}

// PeekTrivia returns the trivia immediately preceding Peek(n).
func (s *stream) PeekTrivia(n int) ast.Trivia {
	s.fill(n)
	return s.trivia[s.pos+n]
}

// Next consumes and returns the current token.
func (s *stream) Next() token.Token {
	s.fill(0)
	tok := s.toks[s.pos]
	if tok.Kind != token.EOF {
		s.pos++
	}
	return tok
}

// TakeLeadTrivia returns the trivia preceding the current (not yet
// consumed) token, for attaching to the node about to start; the cursor
// does not move.
func (s *stream) TakeLeadTrivia() ast.Trivia {
	s.fill(0)
	return s.trivia[s.pos]
}

// AtEOF reports whether the cursor is at the end-of-stream token.
func (s *stream) AtEOF() bool {
	return s.Peek(0).Kind == token.EOF
}

// mark is an opaque backtracking point.
type mark struct{ pos int }

func (s *stream) Mark() mark { return mark{pos: s.pos} }

func (s *stream) Reset(m mark) { s.pos = m.pos }
