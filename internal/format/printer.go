// Package format contains the low level output primitives used by encoders.
package format

import (
	"fmt"
	"io"
)

// The Printer interface can be used to output some structured data.
//
// Indent() starts a new line at an increased indentation level
// Dedent() starts a new line at a decreased indentation level
// NewLine() start a new line at the current indentation level
// PrintBytes() outputs bytes at the current position
// Reset() goes back to the top level, e.g. after a value failed half way
//
// The methods do not return an error.  Writing the output of a record either
// succeeds as a whole or the record has failed, so implementations panic with
// a *PrinterError and the encoder recovers it at the record boundary with
//
//	func encode(p Printer) (err error) {
//	    defer CatchPrinterError(&err)
//	    ...
//	}
type Printer interface {
	Indent()
	Dedent()
	NewLine()
	PrintBytes([]byte)
	Reset()
}

// CatchPrinterError captures a panic caused by a Printer failing to write.
// Other panics are propagated.
func CatchPrinterError(err *error) {
	if r := recover(); r != nil {
		perr, ok := r.(*PrinterError)
		if !ok {
			panic(r)
		}
		*err = perr
	}
}

// A PrinterError wraps an error returned by the writer behind a Printer.
type PrinterError struct {
	Err error
}

func (e *PrinterError) Error() string {
	return fmt.Sprintf("printer error: %s", e.Err)
}

func (e *PrinterError) Unwrap() error {
	return e.Err
}

// DefaultPrinter implements a Printer which uses an io.Writer to send output,
// using IndentSize spaces for each indent level.
// If IndentSize is negative, then NewLine() does nothing so all the output
// is on one single line.
// If IndentSize is 0, then there is no indentation but there are still new
// lines.
type DefaultPrinter struct {
	io.Writer
	IndentSize  int
	indentLevel int
}

var _ Printer = &DefaultPrinter{}

func (p *DefaultPrinter) NewLine() {
	if p.IndentSize < 0 {
		return
	}
	p.PrintBytes(newLineBytes)
	for n := p.IndentSize * p.indentLevel; n > 0; {
		k := min(n, len(spaces))
		p.PrintBytes(spaces[:k])
		n -= k
	}
}

func (p *DefaultPrinter) Indent() {
	p.indentLevel++
	p.NewLine()
}

func (p *DefaultPrinter) Dedent() {
	p.indentLevel--
	p.NewLine()
}

func (p *DefaultPrinter) PrintBytes(b []byte) {
	if _, err := p.Write(b); err != nil {
		panic(&PrinterError{Err: err})
	}
}

func (p *DefaultPrinter) Reset() {
	p.indentLevel = 0
}

var (
	newLineBytes = []byte{'\n'}
	spaces       = []byte("                                ")
)
