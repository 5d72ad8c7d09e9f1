// Package scanner reads the input of the JSON decoder byte by byte.  It can
// step back one byte, record the bytes of a token as they are read, and
// tracks the position of the next byte to be read.
package scanner

import (
	"io"
	"slices"
	"unicode/utf8"
)

// EOF is what Read and Peek return at the end of the input.  It is not a
// byte value, so every byte of the input is reported as itself.
const EOF = -1

const (
	lookBack                 = 1
	maxConsecutiveEmptyReads = 100
	defaultBufSize           = 8192
)

// Pos is a position in the input.  Line and Col are 0-based and Col counts
// code points; Offset counts bytes from the start of the input.
type Pos struct {
	Line   int
	Col    int
	Offset int64
}

func (p *Pos) advance(b byte) {
	switch {
	case b == '\n':
		p.Line++
		p.Col = 0
	case utf8.RuneStart(b):
		p.Col++
	}
}

// A Scanner reads bytes from an io.Reader through a buffer.
type Scanner struct {
	r   io.Reader
	err error // error of the last read from r, sticky

	// buf[:filled] holds input bytes, buf[cur] is the next one to read.
	buf    []byte
	filled int
	cur    int

	// Number of input bytes dropped from the front of buf.
	shifted int64

	// Position of buf[cur], and of the byte before it so that Back can
	// restore it.  prev.Line is -1 when Back cannot be called.
	pos, prev Pos

	// Index in buf where the token being recorded starts, -1 when not
	// recording.  Bytes of the token that were dropped from buf to make room
	// are kept in spilled.
	tokStart int
	spilled  [][]byte

	// Number of EOFs returned by Read and not undone by Back.
	eofs int
}

// NewScanner returns a Scanner reading from r.
func NewScanner(r io.Reader) *Scanner {
	return NewScannerSize(r, defaultBufSize)
}

// NewScannerSize returns a Scanner reading from r with a buffer of size bytes.
func NewScannerSize(r io.Reader, size int) *Scanner {
	return &Scanner{
		r:        r,
		buf:      make([]byte, size),
		tokStart: -1,
		prev:     Pos{Line: -1},
	}
}

// more makes sure there is a byte to read in buf, reporting whether there is.
func (s *Scanner) more() bool {
	if s.cur < s.filled {
		return true
	}
	if s.err == nil {
		s.refill()
	}
	return s.cur < s.filled
}

func (s *Scanner) refill() {
	if s.filled == len(s.buf) {
		s.makeRoom()
	}
	for i := 0; i < maxConsecutiveEmptyReads; i++ {
		n, err := s.r.Read(s.buf[s.filled:])
		s.filled += n
		if err != nil {
			s.err = err
			return
		}
		if n > 0 {
			return
		}
	}
	s.err = io.ErrNoProgress
}

// makeRoom drops consumed bytes from the front of a full buf, keeping the
// byte Back may return to.  The token being recorded is kept in buf if
// possible, otherwise its first part is spilled.
func (s *Scanner) makeRoom() {
	var drop int
	switch {
	case s.tokStart > 0:
		drop = s.tokStart
		s.tokStart = 0
	case s.cur >= lookBack:
		drop = s.cur - lookBack
		if s.tokStart == 0 {
			s.spilled = append(s.spilled, slices.Clone(s.buf[:drop]))
		}
	}
	if drop == 0 {
		return
	}
	copy(s.buf, s.buf[drop:s.filled])
	s.filled -= drop
	s.cur -= drop
	s.shifted += int64(drop)
}

// atEnd is what Read and Peek return when there is nothing left in buf.
func (s *Scanner) atEnd() (int, error) {
	if s.err == io.EOF {
		return EOF, nil
	}
	return 0, s.err
}

// Read consumes the next byte.  At the end of the input it returns EOF and a
// nil error; other read errors are returned as is.
func (s *Scanner) Read() (int, error) {
	if !s.more() {
		b, err := s.atEnd()
		if b == EOF {
			s.eofs++
		}
		return b, err
	}
	b := s.buf[s.cur]
	s.prev = s.pos
	s.pos.advance(b)
	s.cur++
	return int(b), nil
}

// Peek returns the next byte without consuming it, or EOF.
func (s *Scanner) Peek() (int, error) {
	if !s.more() {
		return s.atEnd()
	}
	return int(s.buf[s.cur]), nil
}

// SkipSpaceAndPeek consumes JSON whitespace and returns the byte after it
// without consuming it, or EOF.
func (s *Scanner) SkipSpaceAndPeek() (int, error) {
	for s.more() {
		for s.cur < s.filled {
			b := s.buf[s.cur]
			if !IsSpace(b) {
				return int(b), nil
			}
			s.pos.advance(b)
			s.cur++
		}
	}
	return s.atEnd()
}

// Back un-reads the last byte read.  It can only be called once between two
// reads.
func (s *Scanner) Back() {
	if s.eofs > 0 {
		s.eofs--
		return
	}
	if s.cur <= 0 || s.cur <= s.tokStart {
		panic("cannot go back from start")
	}
	if s.prev.Line < 0 {
		panic("cannot go back twice")
	}
	s.cur--
	s.pos = s.prev
	s.prev.Line = -1
}

// CurrentPos returns the position of the next byte to be read.
func (s *Scanner) CurrentPos() Pos {
	pos := s.pos
	pos.Offset = s.shifted + int64(s.cur)
	return pos
}

// StartToken starts recording the bytes read until the next call to
// EndToken, and returns the position of the first one.
func (s *Scanner) StartToken() Pos {
	if s.tokStart >= 0 {
		panic("already in record mode")
	}
	s.tokStart = s.cur
	return s.CurrentPos()
}

// EndToken stops recording and returns the bytes read since StartToken.
func (s *Scanner) EndToken() []byte {
	if s.tokStart < 0 {
		panic("not in record mode")
	}
	tail := s.buf[s.tokStart:s.cur]
	s.tokStart = -1
	if s.spilled == nil {
		return slices.Clone(tail)
	}
	n := len(tail)
	for _, p := range s.spilled {
		n += len(p)
	}
	tok := make([]byte, 0, n)
	for _, p := range s.spilled {
		tok = append(tok, p...)
	}
	tok = append(tok, tail...)
	s.spilled = nil
	return tok
}
