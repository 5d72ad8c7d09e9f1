package stream

import (
	"bufio"
	"fmt"
	"io"

	"github.com/arnodel/jsonscript/document"
	"github.com/arnodel/jsonscript/encoding/json"
	"github.com/arnodel/jsonscript/internal/format"
)

// A Sink writes records to an io.Writer in the order they are emitted.
type Sink struct {
	w     io.Writer
	buf   *bufio.Writer
	enc   *json.Encoder
	count int
	err   error
}

type sinkOptions struct {
	indent    int
	colorizer *format.Colorizer
}

// A SinkOption configures NewSink.
type SinkOption func(*sinkOptions)

// WithIndent makes the sink pretty-print records, indenting each level by n
// spaces.  The default is one compact record per line.
func WithIndent(n int) SinkOption {
	return func(o *sinkOptions) {
		o.indent = n
	}
}

// WithColorizer adds terminal colors to the output.
func WithColorizer(c *format.Colorizer) SinkOption {
	return func(o *sinkOptions) {
		o.colorizer = c
	}
}

// NewSink returns a Sink writing to w.
func NewSink(w io.Writer, opts ...SinkOption) *Sink {
	var o sinkOptions
	for _, opt := range opts {
		opt(&o)
	}
	buf := bufio.NewWriter(w)
	enc := json.NewEncoder(buf, o.indent)
	enc.Colorizer = o.colorizer
	return &Sink{w: w, buf: buf, enc: enc}
}

type flusher interface {
	Flush() error
}

// Emit writes v followed by a newline and flushes it through to the
// destination, so a record is visible before the next one is emitted.  Once
// Emit has failed it keeps returning the same error.
func (s *Sink) Emit(v document.Value) error {
	if s.err != nil {
		return s.err
	}
	if err := s.enc.Encode(v); err != nil {
		return s.fail(err)
	}
	if err := s.buf.Flush(); err != nil {
		return s.fail(err)
	}
	if f, ok := s.w.(flusher); ok {
		if err := f.Flush(); err != nil {
			return s.fail(err)
		}
	}
	s.count++
	return nil
}

// Count returns the number of records written.
func (s *Sink) Count() int {
	return s.count
}

// Err returns the error that made the sink fail, if any.
func (s *Sink) Err() error {
	return s.err
}

func (s *Sink) fail(err error) error {
	s.err = fmt.Errorf("writing record #%d: %w", s.count+1, err)
	return s.err
}
