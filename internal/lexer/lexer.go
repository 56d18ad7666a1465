// Package lexer implements a pull-based lexer that turns a byte stream
// into a token stream, preserving whitespace/comments/preprocessor lines
// as tokens (trivia) rather than discarding them, so that the parser can
// shuttle them onto AST nodes for source round-tripping.
//
// The scan-by-dispatch shape (peek/advance over a small lookahead buffer,
// one scanX per token family) is grounded on ylex/lexer.go's Lexer, with
// a ring-buffer-with-low-watermark-refill contract and trivia preserved
// as tokens instead of discarded at the lexer boundary.
package lexer

import (
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/jxsvoboda/sycek-sub004/internal/srcpos"
	"github.com/jxsvoboda/sycek-sub004/internal/token"
)

const (
	bufSize = 64
	lowWatermark = 16
)

// mode is the lexer's scanning mode.
type mode int

const (
	modeNormal mode = iota
	modeBlockComment
)

// Lexer is the pull-based tokenizer. Create it with Create
// and pull tokens with GetTok until a token of Kind EOF is returned.
type Lexer struct {
	src Source

	buf []byte
	bufPos []srcpos.Position // parallel to buf: position of each byte
	n int // number of valid bytes in buf[0:n]
	i int // read cursor into buf
	atEOF bool // the underlying Source has been exhausted
	lastErr error // sticky I/O error, kept once set

	mode mode

	file string
}

// Create constructs a Lexer pulling from src, reporting positions under the
// given file name for diagnostics.
func Create(src Source, file string) *Lexer {
	return &Lexer{
		src: src,
		buf: make([]byte, 0, bufSize),
		bufPos: make([]srcpos.Position, 0, bufSize),
		file: file,
	}
}

// FreeTok exists for symmetry with the destroy-with-the-AST
// ownership model. Go's collector reclaims Token values once unreferenced,
// so FreeTok is a no-op retained only so callers written against the
// create/get/free contract compile unchanged.
func (l *Lexer) FreeTok(token.Token) {}

// LastError returns the most recent sticky I/O error from the underlying
// Source, if any. An I/O read failure is recorded but the lexer keeps
// advancing with what it already buffered; only the caller decides
// whether to treat LastError as fatal.
func (l *Lexer) LastError() error {
	return l.lastErr
}

// refill shifts any remaining unread bytes to the front of the buffer and
// asks the Source for more: remaining bytes are shifted to the front, the
// input is asked for more, and EOF is latched when the input returns a
// short read.
func (l *Lexer) refill() {
	if l.atEOF {
		return
	}
	remaining := l.n - l.i
	if remaining > lowWatermark {
		return
	}
	copy(l.buf[:remaining], l.buf[l.i:l.n])
	copy(l.bufPos[:remaining], l.bufPos[l.i:l.n])
	l.buf = l.buf[:cap(l.buf)]
	l.bufPos = l.bufPos[:cap(l.bufPos)]
	l.i = 0
	l.n = remaining

	for l.n < bufSize && !l.atEOF {
		dest := make([]byte, bufSize-l.n)
		read, start, err := l.src.Read(dest)
		pos := start
		for k := 0; k < read; k++ {
			l.buf[l.n+k] = dest[k]
			l.bufPos[l.n+k] = pos
			pos = pos.Advance(dest[k])
		}
		l.n += read
		if err != nil {
			if err != io.EOF {
				l.lastErr = errors.Wrap(err, "reading source")
			}
			l.atEOF = true
		}
		if read == 0 {
			break
		}
	}
	l.buf = l.buf[:bufSize]
	l.bufPos = l.bufPos[:bufSize]
}

// posAt returns the position of the byte at lookahead offset k (0 = next
// unread byte).
func (l *Lexer) posAt(k int) srcpos.Position {
	if l.i+k < l.n {
		return l.bufPos[l.i+k]
	}
	if l.n > 0 {
		return l.bufPos[l.n-1]
	}
	return srcpos.Start(l.file)
}

func (l *Lexer) peek() byte {
	l.refill()
	if l.i >= l.n {
		return 0
	}
	return l.buf[l.i]
}

func (l *Lexer) peekAt(k int) byte {
	l.refill()
	if l.i+k >= l.n {
		return 0
	}
	return l.buf[l.i+k]
}

func (l *Lexer) here() srcpos.Position {
	l.refill()
	return l.posAt(0)
}

func (l *Lexer) advance() byte {
	l.refill()
	if l.i >= l.n {
		return 0
	}
	b := l.buf[l.i]
	l.i++
	return b
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isHex(b byte) bool { return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F') }
func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
func isIdentCont(b byte) bool { return isIdentStart(b) || isDigit(b) }

// GetTok returns the next token, or a Kind-EOF token once the source is
// exhausted.
func (l *Lexer) GetTok() token.Token {
	begin := l.here()
	b := l.peek()

	if b == 0 {
		return l.makeTok(token.EOF, begin, begin, "")
	}

	if l.mode == modeBlockComment {
		return l.scanInComment(begin)
	}

	switch {
	case b == ' ' || b == '\t' || b == '\r':
		return l.scanWhitespace(begin)
	case b == '\n':
		l.advance()
		return l.makeTok(token.Newline, begin, l.here(), "\n")
	case b == '\\' && l.peekAt(1) == '\n':
		l.advance()
		l.advance()
		return l.makeTok(token.LineContinuation, begin, l.here(), "\\\n")
	case b == '#':
		return l.scanPreproc(begin)
	case (b == 'L' || b == 'u' || b == 'U') && l.isEncodedLiteralPrefix():
		return l.scanEncodedLiteral(begin)
	case isIdentStart(b):
		return l.scanIdentifier(begin)
	case isDigit(b) || (b == '.' && isDigit(l.peekAt(1))):
		return l.scanNumber(begin)
	case b == '\'':
		return l.scanCharLiteral(begin, "")
	case b == '"':
		return l.scanStringLiteral(begin, "")
	default:
		return l.scanPunct(begin)
	}
}

// isEncodedLiteralPrefix reports whether the lexer is positioned at an
// encoding-prefixed character/string literal: L/u/U/u8 immediately followed
// by a quote.
func (l *Lexer) isEncodedLiteralPrefix() bool {
	b := l.peek()
	switch b {
	case 'L', 'U':
		return l.peekAt(1) == '\'' || l.peekAt(1) == '"'
	case 'u':
		if l.peekAt(1) == '8' {
			return l.peekAt(2) == '"'
		}
		return l.peekAt(1) == '\'' || l.peekAt(1) == '"'
	}
	return false
}

func (l *Lexer) scanEncodedLiteral(begin srcpos.Position) token.Token {
	var prefix strings.Builder
	prefix.WriteByte(l.advance())
	if l.peek() == '8' {
		prefix.WriteByte(l.advance())
	}
	if l.peek() == '\'' {
		return l.scanCharLiteral(begin, prefix.String())
	}
	return l.scanStringLiteral(begin, prefix.String())
}

func (l *Lexer) scanWhitespace(begin srcpos.Position) token.Token {
	var b strings.Builder
	for {
		c := l.peek()
		if c != ' ' && c != '\t' && c != '\r' {
			break
		}
		b.WriteByte(l.advance())
	}
	kind := token.Whitespace
	if b.Len() == 1 && b.String() == "\t" {
		kind = token.Tab
	}
	return l.makeTok(kind, begin, l.here(), b.String())
}

func (l *Lexer) scanIdentifier(begin srcpos.Position) token.Token {
	var b strings.Builder
	for isIdentCont(l.peek()) {
		b.WriteByte(l.advance())
	}
	text := b.String()
	if kw, ok := token.Keywords[text]; ok {
		return l.makeTok(kw, begin, l.here(), text)
	}
	return l.makeTok(token.Identifier, begin, l.here(), text)
}

func (l *Lexer) scanNumber(begin srcpos.Position) token.Token {
	var b strings.Builder
	isHexNum := false

	if l.peek() == '0' && (l.peekAt(1) == 'x' || l.peekAt(1) == 'X') {
		b.WriteByte(l.advance())
		b.WriteByte(l.advance())
		isHexNum = true
		for isHex(l.peek()) {
			b.WriteByte(l.advance())
		}
	} else {
		for isDigit(l.peek()) {
			b.WriteByte(l.advance())
		}
	}

	if l.peek() == '.' {
		b.WriteByte(l.advance())
		for isDigit(l.peek()) {
			b.WriteByte(l.advance())
		}
	}

	if isHexNum && (l.peek() == 'p' || l.peek() == 'P') ||
		!isHexNum && (l.peek() == 'e' || l.peek() == 'E') {
		b.WriteByte(l.advance())
		if l.peek() == '+' || l.peek() == '-' {
			b.WriteByte(l.advance())
		}
		for isDigit(l.peek()) {
			b.WriteByte(l.advance())
		}
	}

	for {
		c := l.peek()
		if c == 'u' || c == 'U' || c == 'l' || c == 'L' ||
			c == 'f' || c == 'F' {
			b.WriteByte(l.advance())
			continue
		}
		break
	}

	return l.makeTok(token.Number, begin, l.here(), b.String())
}

func (l *Lexer) scanCharLiteral(begin srcpos.Position, prefix string) token.Token {
	var b strings.Builder
	b.WriteString(prefix)
	b.WriteByte(l.advance()) // opening '
	for {
		c := l.peek()
		if c == 0 || c == '\n' {
			return l.makeTok(token.Invalid, begin, l.here(), b.String())
		}
		if c == '\\' {
			b.WriteByte(l.advance())
			if l.peek() != 0 {
				b.WriteByte(l.advance())
			}
			continue
		}
		b.WriteByte(l.advance())
		if c == '\'' {
			break
		}
	}
	return l.makeTok(token.CharLiteral, begin, l.here(), b.String())
}

func (l *Lexer) scanStringLiteral(begin srcpos.Position, prefix string) token.Token {
	var b strings.Builder
	b.WriteString(prefix)
	b.WriteByte(l.advance()) // opening "
	for {
		c := l.peek()
		if c == 0 || c == '\n' {
			return l.makeTok(token.Invalid, begin, l.here(), b.String())
		}
		if c == '\\' {
			b.WriteByte(l.advance())
			if l.peek() != 0 {
				b.WriteByte(l.advance())
			}
			continue
		}
		b.WriteByte(l.advance())
		if c == '"' {
			break
		}
	}
	return l.makeTok(token.StringLiteral, begin, l.here(), b.String())
}

// scanPreproc lexes one whole '#...' line as a single token, including any
// block comments nested in it, ending at the next un-escaped newline. The
// preprocessor itself is out of scope; this token is passed through
// verbatim.
func (l *Lexer) scanPreproc(begin srcpos.Position) token.Token {
	var b strings.Builder
	b.WriteByte(l.advance()) // '#'
	for {
		c := l.peek()
		if c == 0 {
			break
		}
		if c == '\\' && l.peekAt(1) == '\n' {
			b.WriteByte(l.advance())
			b.WriteByte(l.advance())
			continue
		}
		if c == '/' && l.peekAt(1) == '*' {
			for l.peek() != 0 && !(l.peek() == '*' && l.peekAt(1) == '/') {
				b.WriteByte(l.advance())
			}
			if l.peek() != 0 {
				b.WriteByte(l.advance())
				b.WriteByte(l.advance())
			}
			continue
		}
		if c == '\n' {
			break
		}
		b.WriteByte(l.advance())
	}
	return l.makeTok(token.Preproc, begin, l.here(), b.String())
}

func (l *Lexer) scanInComment(begin srcpos.Position) token.Token {
	if l.peek() == '*' && l.peekAt(1) == '/' {
		l.advance()
		l.advance()
		l.mode = modeNormal
		return l.makeTok(token.BlockCommentClose, begin, l.here(), "*/")
	}
	if l.peek() == ' ' || l.peek() == '\t' || l.peek() == '\r' {
		return l.scanWhitespace(begin)
	}
	if l.peek() == '\n' {
		l.advance()
		return l.makeTok(token.Newline, begin, l.here(), "\n")
	}
	var b strings.Builder
	for {
		c := l.peek()
		if c == 0 || c == '\n' || (c == '*' && l.peekAt(1) == '/') ||
			c == ' ' || c == '\t' || c == '\r' {
			break
		}
		b.WriteByte(l.advance())
	}
	return l.makeTok(token.BlockCommentText, begin, l.here(), b.String())
}

func (l *Lexer) scanPunct(begin srcpos.Position) token.Token {
	b := l.peek()

	// Two-slash / block comment dispatch.
	if b == '/' {
		if l.peekAt(1) == '/' {
			return l.scanLineComment(begin)
		}
		if l.peekAt(1) == '*' {
			l.advance()
			l.advance()
			doc := l.peek() == '*'
			if doc {
				l.advance()
			}
			l.mode = modeBlockComment
			if doc {
				return l.makeTok(token.DocCommentOpen, begin, l.here(), "/**")
			}
			return l.makeTok(token.BlockCommentOpen, begin, l.here(), "/*")
		}
	}

	// Longest-match table, 3/2/1 characters, in descending length order.
	three := []struct {
		s string
		k token.Kind
	}{
		{"...", token.Ellipsis}, {"<<=", token.LtLtEq}, {">>=", token.GtGtEq},
	}
	for _, e := range three {
		if l.matchLiteral(e.s) {
			return l.makeTok(e.k, begin, l.here(), e.s)
		}
	}

	two := []struct {
		s string
		k token.Kind
	}{
		{"->", token.Arrow}, {"++", token.Inc}, {"--", token.Dec},
		{"<<", token.LtLt}, {">>", token.GtGt}, {"<=", token.LtEq},
		{">=", token.GtEq}, {"==", token.EqEq}, {"!=", token.NotEq},
		{"&&", token.AmpAmp}, {"||", token.PipePipe}, {"*=", token.StarEq},
		{"/=", token.SlashEq}, {"%=", token.PercentEq}, {"+=", token.PlusEq},
		{"-=", token.MinusEq}, {"&=", token.AmpEq}, {"^=", token.CaretEq},
		{"|=", token.PipeEq}, {"##", token.HashHash},
	}
	for _, e := range two {
		if l.matchLiteral(e.s) {
			return l.makeTok(e.k, begin, l.here(), e.s)
		}
	}

	single := map[byte]token.Kind{
		'[': token.LBracket, ']': token.RBracket, '(': token.LParen,
		')': token.RParen, '{': token.LBrace, '}': token.RBrace,
		'.': token.Dot, '&': token.Amp, '*': token.Star, '+': token.Plus,
		'-': token.Minus, '~': token.Tilde, '!': token.Bang, '/': token.Slash,
		'%': token.Percent, '<': token.Lt, '>': token.Gt, '^': token.Caret,
		'|': token.Pipe, '?': token.Question, ':': token.Colon,
		';': token.Semi, '=': token.Eq, ',': token.Comma, '#': token.Hash,
	}
	if k, ok := single[b]; ok {
		l.advance()
		return l.makeTok(k, begin, l.here(), string(b))
	}

	if b < 32 && b != '\t' && b != '\n' || b == 127 {
		l.advance()
		return l.makeTok(token.InvalidChar, begin, l.here(), string(b))
	}

	l.advance()
	return l.makeTok(token.Invalid, begin, l.here(), string(b))
}

func (l *Lexer) matchLiteral(s string) bool {
	for k := 0; k < len(s); k++ {
		if l.peekAt(k) != s[k] {
			return false
		}
	}
	for k := 0; k < len(s); k++ {
		l.advance()
	}
	return true
}

func (l *Lexer) scanLineComment(begin srcpos.Position) token.Token {
	var b strings.Builder
	b.WriteByte(l.advance())
	b.WriteByte(l.advance())
	for {
		c := l.peek()
		if c == 0 || c == '\n' {
			break
		}
		if c == '\\' && l.peekAt(1) == '\n' {
			b.WriteByte(l.advance())
			b.WriteByte(l.advance())
			continue
		}
		b.WriteByte(l.advance())
	}
	return l.makeTok(token.Comment, begin, l.here(), b.String())
}

func (l *Lexer) makeTok(k token.Kind, begin, end srcpos.Position, text string) token.Token {
	return token.Token{Kind: k, Text: text, Begin: begin, End: end}
}
