package document

import (
	"errors"
	"fmt"

	"github.com/arnodel/jsonscript/token"
)

// ErrIncomplete is returned by Builder.Result when the tokens received so far
// do not make up a whole value.
var ErrIncomplete = errors.New("incomplete value")

// Builder is a token.WriteStream that assembles the tokens of a single JSON
// value into a Value.
type Builder struct {
	root  Value
	stack []Value
	key   *string
	err   error
}

var _ token.WriteStream = (*Builder)(nil)

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) Put(tok token.Token) {
	if b.err != nil {
		return
	}
	switch t := tok.(type) {
	case *token.StartObject:
		b.open(NewMapping())
	case *token.StartArray:
		b.open(&Sequence{})
	case *token.EndObject:
		b.close(MappingKind)
	case *token.EndArray:
		b.close(SequenceKind)
	case *token.Scalar:
		if t.IsKey() {
			b.setKey(t)
			return
		}
		v, err := ScalarValue(t)
		if err != nil {
			b.err = err
			return
		}
		b.add(v)
	default:
		b.err = fmt.Errorf("unexpected token %s", tok)
	}
}

// Done is true when a whole value has been built.
func (b *Builder) Done() bool {
	return b.root != nil && len(b.stack) == 0
}

// Result returns the value built so far.
func (b *Builder) Result() (Value, error) {
	if b.err != nil {
		return nil, b.err
	}
	if !b.Done() {
		return nil, ErrIncomplete
	}
	return b.root, nil
}

// Reset makes the builder ready to build a new value.  It keeps no reference
// to the values built before.
func (b *Builder) Reset() {
	b.root = nil
	clear(b.stack[:cap(b.stack)])
	b.stack = b.stack[:0]
	b.key = nil
	b.err = nil
}

func (b *Builder) open(c Value) {
	if b.add(c) {
		b.stack = append(b.stack, c)
	}
}

func (b *Builder) close(kind Kind) {
	n := len(b.stack)
	if n == 0 || b.stack[n-1].Kind() != kind || b.key != nil {
		b.err = fmt.Errorf("unexpected end of %s", kind)
		return
	}
	b.stack = b.stack[:n-1]
}

func (b *Builder) setKey(t *token.Scalar) {
	n := len(b.stack)
	if n == 0 || b.stack[n-1].Kind() != MappingKind || b.key != nil {
		b.err = fmt.Errorf("unexpected key %s", t.Bytes)
		return
	}
	k, err := t.ToString()
	if err != nil {
		b.err = err
		return
	}
	b.key = &k
}

func (b *Builder) add(v Value) bool {
	n := len(b.stack)
	if n == 0 {
		if b.root != nil {
			b.err = errors.New("more than one value")
			return false
		}
		b.root = v
		return true
	}
	switch c := b.stack[n-1].(type) {
	case *Sequence:
		c.push(v)
	case *Mapping:
		if b.key == nil {
			b.err = errors.New("missing key in object")
			return false
		}
		c.put(*b.key, v)
		b.key = nil
	}
	return true
}

// ScalarValue converts a non-key scalar token to the corresponding Value.
func ScalarValue(t *token.Scalar) (Value, error) {
	switch t.Type() {
	case token.Null:
		return Null{}, nil
	case token.Boolean:
		return Bool(len(t.Bytes) > 0 && t.Bytes[0] == 't'), nil
	case token.Number:
		return Number{literal: string(t.Bytes)}, nil
	case token.String:
		s, err := t.ToString()
		if err != nil {
			return nil, err
		}
		return String(s), nil
	default:
		return nil, fmt.Errorf("invalid scalar %s", t)
	}
}

// Stream writes the tokens making up v to out.  Mapping entries come out in
// iteration order.
func Stream(v Value, out token.WriteStream) {
	switch x := v.(type) {
	case nil, Null:
		out.Put(token.NullScalar)
	case Bool:
		out.Put(token.BoolScalar(bool(x)))
	case Number:
		out.Put(token.NewScalar(token.Number, []byte(x.Literal())))
	case String:
		out.Put(token.StringScalar(string(x)))
	case *Sequence:
		out.Put(&token.StartArray{})
		for _, item := range x.items {
			Stream(item, out)
		}
		out.Put(&token.EndArray{})
	case *Mapping:
		out.Put(&token.StartObject{})
		for _, k := range x.keys {
			out.Put(token.KeyScalar(k))
			Stream(x.values[k], out)
		}
		out.Put(&token.EndObject{})
	}
}
