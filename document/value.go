// Package document implements the in-memory model of a JSON value used by
// the transformation engine.
//
// A Value is one of Null, Bool, Number, String, *Sequence or *Mapping.
// Scalars are immutable Go values; containers are pointers and are mutated in
// place.  A value is always a finite tree: every value stored into a
// container through the public API is deep-copied first, so no two
// containers ever share a subtree.
//
// Paths (see Path) address nested values.  Sequence indices in a Path are
// 1-based, as they are in scripts, whereas the Sequence methods At and SetAt
// use 0-based storage offsets.
package document

import "fmt"

// Kind is the type tag of a Value.
type Kind uint8

const (
	NullKind Kind = iota
	BoolKind
	NumberKind
	StringKind
	SequenceKind
	MappingKind
)

func (k Kind) String() string {
	switch k {
	case NullKind:
		return "null"
	case BoolKind:
		return "boolean"
	case NumberKind:
		return "number"
	case StringKind:
		return "string"
	case SequenceKind:
		return "array"
	case MappingKind:
		return "object"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Value is a JSON value.
type Value interface {
	Kind() Kind
}

// Null is the JSON null value.
type Null struct{}

func (Null) Kind() Kind { return NullKind }

// Bool is a JSON boolean.
type Bool bool

func (Bool) Kind() Kind { return BoolKind }

// String is a JSON string.
type String string

func (String) Kind() Kind { return StringKind }

var (
	_ Value = Null{}
	_ Value = Bool(false)
	_ Value = String("")
	_ Value = Number{}
	_ Value = &Sequence{}
	_ Value = &Mapping{}
)

// Clone returns a deep copy of v.  Scalars are returned unchanged as they are
// immutable.  A nil Value is treated as Null.
func Clone(v Value) Value {
	switch x := v.(type) {
	case nil:
		return Null{}
	case *Sequence:
		items := make([]Value, len(x.items))
		for i, item := range x.items {
			items[i] = Clone(item)
		}
		return &Sequence{items: items}
	case *Mapping:
		m := &Mapping{
			keys:   make([]string, len(x.keys)),
			values: make(map[string]Value, len(x.values)),
		}
		copy(m.keys, x.keys)
		for k, item := range x.values {
			m.values[k] = Clone(item)
		}
		return m
	default:
		return v
	}
}
