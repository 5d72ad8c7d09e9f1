// Package ioutil opens the inputs and the output of the command line tool.
// Inputs may be gzip or zstd compressed, which is detected from their
// content; the output is compressed according to its file name.
package ioutil

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Stdio is the name standing for stdin or stdout.
const Stdio = "-"

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// Decompress returns a reader over the decompressed content of r when it
// starts with a gzip or zstd header, and over r itself otherwise.
func Decompress(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(zstdMagic))
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, err
	}
	switch {
	case bytes.HasPrefix(head, gzipMagic):
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("reading gzip header: %w", err)
		}
		return zr, nil
	case bytes.HasPrefix(head, zstdMagic):
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("reading zstd header: %w", err)
		}
		return zr.IOReadCloser(), nil
	default:
		return io.NopCloser(br), nil
	}
}

// Inputs reads a list of inputs one after the other.  A newline is inserted
// between two inputs so that a record can never span two of them.
type Inputs struct {
	io.Reader
	closers []io.Closer
}

// OpenInputs opens the named inputs, where Stdio stands for stdin.  No names
// means stdin alone.
func OpenInputs(stdin io.Reader, names []string) (*Inputs, error) {
	if len(names) == 0 {
		names = []string{Stdio}
	}
	in := &Inputs{}
	var readers []io.Reader
	for i, name := range names {
		r, err := in.open(stdin, name)
		if err != nil {
			in.Close()
			return nil, err
		}
		if i > 0 {
			readers = append(readers, strings.NewReader("\n"))
		}
		readers = append(readers, r)
	}
	in.Reader = io.MultiReader(readers...)
	return in, nil
}

func (in *Inputs) open(stdin io.Reader, name string) (io.Reader, error) {
	var r io.Reader = stdin
	if name != Stdio {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		in.closers = append(in.closers, f)
		r = f
	}
	dr, err := Decompress(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	in.closers = append(in.closers, dr)
	return dr, nil
}

// Close closes all the inputs.
func (in *Inputs) Close() error {
	var errs []error
	for i := len(in.closers) - 1; i >= 0; i-- {
		errs = append(errs, in.closers[i].Close())
	}
	in.closers = nil
	return errors.Join(errs...)
}

// Output is where records are written.  Closing it finishes compression
// and closes the file.
type Output struct {
	io.Writer
	closers []io.Closer
	flush   func() error
}

// CreateOutput creates the named output, where Stdio stands for stdout.  A
// ".gz" or ".zst" suffix selects compression.
func CreateOutput(stdout io.Writer, name string) (*Output, error) {
	if name == "" || name == Stdio {
		out := &Output{Writer: stdout}
		if f, ok := stdout.(interface{ Flush() error }); ok {
			out.flush = f.Flush
		}
		return out, nil
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, err
	}
	out, err := Compress(f, name)
	if err != nil {
		f.Close()
		return nil, err
	}
	out.closers = append(out.closers, f)
	return out, nil
}

// Compress wraps w in a compressor chosen by the suffix of name.  Flushing
// the output completes a compressed block, so that what was written so far
// can be decompressed.
func Compress(w io.Writer, name string) (*Output, error) {
	switch {
	case strings.HasSuffix(name, ".gz"):
		zw := gzip.NewWriter(w)
		return &Output{Writer: zw, closers: []io.Closer{zw}, flush: zw.Flush}, nil
	case strings.HasSuffix(name, ".zst"):
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return nil, err
		}
		return &Output{Writer: zw, closers: []io.Closer{zw}, flush: zw.Flush}, nil
	default:
		return &Output{Writer: w}, nil
	}
}

// Flush flushes the compressor, or the underlying writer if it can be
// flushed.
func (o *Output) Flush() error {
	if o.flush == nil {
		return nil
	}
	return o.flush()
}

// Close finishes compression and closes the output file, if any.
func (o *Output) Close() error {
	var errs []error
	for _, c := range o.closers {
		errs = append(errs, c.Close())
	}
	o.closers = nil
	return errors.Join(errs...)
}
