package json

import (
	"io"

	"github.com/arnodel/jsonscript/document"
	"github.com/arnodel/jsonscript/internal/format"
	"github.com/arnodel/jsonscript/token"
)

// An Encoder prints the JSON values it receives as tokens using the given
// Printer instance for formatting.  Each top-level value is terminated by a
// newline.
//
// The Encoder assumes that the token stream is well-formed and may panic if
// that is not the case.  Errors from the Printer are recovered by Encode and
// Consume.
type Encoder struct {
	format.Printer
	*format.Colorizer

	// Compact selects single-line output: no space after ':' and no line
	// breaks inside a value.
	Compact bool

	stack []frame
}

type frame struct {
	count    int
	inObject bool
}

var _ token.WriteStream = &Encoder{}

// NewEncoder returns an Encoder writing to w.  An indent of 0 or less gives
// compact output, otherwise each nesting level is indented by that many
// spaces.
func NewEncoder(w io.Writer, indent int) *Encoder {
	if indent <= 0 {
		return &Encoder{Printer: &format.DefaultPrinter{Writer: w, IndentSize: -1}, Compact: true}
	}
	return &Encoder{Printer: &format.DefaultPrinter{Writer: w, IndentSize: indent}}
}

// Encode prints v followed by a newline.  After an error the encoder can be
// used again: the next value starts at the top level.
func (e *Encoder) Encode(v document.Value) (err error) {
	defer format.CatchPrinterError(&err)
	e.reset()
	document.Stream(v, e)
	return nil
}

// Consume prints all the values in the token stream.
func (e *Encoder) Consume(r token.ReadStream) (err error) {
	defer format.CatchPrinterError(&err)
	e.reset()
	token.Copy(e, r)
	return nil
}

func (e *Encoder) reset() {
	e.stack = e.stack[:0]
	e.Printer.Reset()
}

func (e *Encoder) Put(tok token.Token) {
	switch t := tok.(type) {
	case *token.StartObject:
		e.beforeValue()
		e.PrintBytes(openObjectBytes)
		e.stack = append(e.stack, frame{inObject: true})
	case *token.StartArray:
		e.beforeValue()
		e.PrintBytes(openArrayBytes)
		e.stack = append(e.stack, frame{})
	case *token.EndObject:
		e.closeContainer(closeObjectBytes)
	case *token.EndArray:
		e.closeContainer(closeArrayBytes)
	case *token.Scalar:
		if t.IsKey() {
			e.beforeItem()
			e.Colorizer.PrintScalar(e.Printer, t)
			if e.Compact {
				e.PrintBytes(compactKeyValueSeparatorBytes)
			} else {
				e.PrintBytes(keyValueSeparatorBytes)
			}
			return
		}
		e.beforeValue()
		e.Colorizer.PrintScalar(e.Printer, t)
		e.afterValue()
	}
}

// beforeValue is called before a value is printed.  In an object the key has
// already taken care of the separator.
func (e *Encoder) beforeValue() {
	if n := len(e.stack); n > 0 && !e.stack[n-1].inObject {
		e.beforeItem()
	}
}

func (e *Encoder) beforeItem() {
	top := &e.stack[len(e.stack)-1]
	if top.count == 0 {
		if !e.Compact {
			e.Indent()
		}
	} else {
		e.PrintBytes(itemSeparatorBytes)
		if !e.Compact {
			e.NewLine()
		}
	}
	top.count++
}

func (e *Encoder) closeContainer(closeBytes []byte) {
	n := len(e.stack)
	if e.stack[n-1].count > 0 && !e.Compact {
		e.Dedent()
	}
	e.PrintBytes(closeBytes)
	e.stack = e.stack[:n-1]
	e.afterValue()
}

func (e *Encoder) afterValue() {
	if len(e.stack) == 0 {
		e.PrintBytes(newLineBytes)
	}
}

var (
	openObjectBytes               = []byte("{")
	closeObjectBytes              = []byte("}")
	openArrayBytes                = []byte("[")
	closeArrayBytes               = []byte("]")
	itemSeparatorBytes            = []byte(",")
	keyValueSeparatorBytes        = []byte(": ")
	compactKeyValueSeparatorBytes = []byte(":")
	newLineBytes                  = []byte("\n")
)
