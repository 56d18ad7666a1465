package lexer

import (
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/jxsvoboda/sycek-sub004/internal/srcpos"
)

// Source is the pull-based input contract of: "read(dest, max,
// &nread, &start_pos)". Read fills dest as far as it can in one call and
// reports the source position of dest[0]; an io.EOF on a short read is
// reported through err exactly as io.Reader does, so the lexer can latch
// EOF without a second call.
type Source interface {
	Read(dest []byte) (n int, start srcpos.Position, err error)
}

// readerSource adapts an io.Reader plus a file name into a Source, tracking
// position the same way ylex/lexer.go's Lexer tracks line/column while
// pulling from a bufio.Reader.
type readerSource struct {
	r io.Reader
	file string
	pos srcpos.Position
}

// NewSource wraps r as a Source, reporting positions under the given file
// name (used only for diagnostics; r is never seeked).
func NewSource(r io.Reader, file string) Source {
	return &readerSource{r: r, file: file, pos: srcpos.Start(file)}
}

// NewFileSource opens path and wraps it as a Source. The caller is
// responsible for closing the returned closer once lexing is done.
func NewFileSource(path string) (Source, io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "opening %s", path)
	}
	return NewSource(f, path), f, nil
}

func (s *readerSource) Read(dest []byte) (int, srcpos.Position, error) {
	start := s.pos
	n, err := s.r.Read(dest)
	for i := 0; i < n; i++ {
		s.pos = s.pos.Advance(dest[i])
	}
	return n, start, err
}
