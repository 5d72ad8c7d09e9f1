package token

import (
	"fmt"

	"github.com/go-json-experiment/json/jsontext"
)

// A Token is an item in a stream that encodes a JSON value
// For example, the JSON value
//
//	{"id": 123, "tags": ["important", "new"]}
//
// would be represented by the stream of Token (in pseudocode for
// clarity):
//
//	{            -> StartObject
//	"id":        -> Key("id")
//	123,         -> Scalar(123, Number)
//	"tags":      -> Key("tags")
//	[            -> StartArray
//	"important", -> Scalar("important", String)
//	"new"        -> Scalar("new", String)
//	]            -> EndArray
//	}            -> EndObject
//
// Decoders produce tokens one value at a time into a WriteStream, the
// document builder turns them into a tree and the encoder turns a tree back
// into tokens to print them.
type Token interface {
	fmt.Stringer
}

// StartObject represents the start of a JSON object (introduced by '{').
type StartObject struct{}

func (s *StartObject) String() string {
	return "StartObject"
}

var _ Token = &StartObject{}

// EndObject represents the end of a JSON object (introduced by '}')
type EndObject struct{}

func (e *EndObject) String() string {
	return "EndObject"
}

var _ Token = &EndObject{}

// StartArray represents the start of a JSON array (introduced by '[').
type StartArray struct{}

func (s *StartArray) String() string {
	return "StartArray"
}

var _ Token = &StartArray{}

// EndArray represents the end of a JSON array (introduced by ']')
type EndArray struct{}

func (e *EndArray) String() string {
	return "EndArray"
}

var _ Token = &EndArray{}

// Scalar is the type used to represent all scalar JSON values, i.e.
// - strings
// - numbers
// - booleans (to values)
// - null (a single value)
//
// Object keys are also Scalar values, with the key flag set.
//
// The type is encoded in the TypeAndFlags field, while the Bytes fields
// contains the literal representation of the value as found in the input.
type Scalar struct {

	// Literal representation of the value, e.g.
	// - the string "foo" is represented as []byte("\"foo\"")
	// - the number 123.5 is represented as []byte("123.5")
	// - the boolean true is represented as []byte("true")
	Bytes []byte

	// Type of the value
	TypeAndFlags uint8
}

var _ Token = &Scalar{}

func NewScalar(tp ScalarType, bytes []byte) *Scalar {
	return &Scalar{
		Bytes:        bytes,
		TypeAndFlags: uint8(tp),
	}
}

func (s *Scalar) Type() ScalarType {
	return ScalarType(s.TypeAndFlags & TypeMask)
}

func (s *Scalar) IsKey() bool {
	return KeyMask&s.TypeAndFlags != 0
}

// IsUnescaped is true when the string literal is known to contain no escape
// sequence, so its value is the literal minus the quotes.
func (s *Scalar) IsUnescaped() bool {
	return UnescapedMask&s.TypeAndFlags != 0
}

func (s *Scalar) String() string {
	if s.IsKey() {
		return fmt.Sprintf("Key(%s)", s.Bytes)
	}
	return fmt.Sprintf("Scalar(%s)", s.Bytes)
}

// ToString returns the Go string represented by a String scalar.
func (s *Scalar) ToString() (string, error) {
	if s.Type() != String {
		return "", fmt.Errorf("not a string: %s", s.Bytes)
	}
	if s.IsUnescaped() {
		return string(s.Bytes[1 : len(s.Bytes)-1]), nil
	}
	b, err := jsontext.AppendUnquote(nil, s.Bytes)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ScalarType encodes the four possible JSON scalar types.
type ScalarType uint8

const (
	Null    ScalarType = 0x0 // the type of JSON null
	Boolean ScalarType = 0x1 // a JSON boolean
	Number  ScalarType = 0x2 // a JSON number
	String  ScalarType = 0x3 // a JSON string
)

func (t ScalarType) String() string {
	switch t {
	case Null:
		return "null"
	case Boolean:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	default:
		return fmt.Sprintf("ScalarType(%d)", uint8(t))
	}
}

const (
	TypeMask      = 0b0011
	KeyMask       = 0b0100
	UnescapedMask = 0b1000
)

var (
	TrueScalar  = NewScalar(Boolean, []byte("true"))
	FalseScalar = NewScalar(Boolean, []byte("false"))
	NullScalar  = NewScalar(Null, []byte("null"))
)

// StringScalar returns the scalar encoding s as a JSON string literal.
// Invalid UTF-8 is replaced with U+FFFD.
func StringScalar(s string) *Scalar {
	b, _ := jsontext.AppendQuote(nil, s)
	return NewScalar(String, b)
}

// KeyScalar is like StringScalar but returns an object key.
func KeyScalar(s string) *Scalar {
	k := StringScalar(s)
	k.TypeAndFlags |= KeyMask
	return k
}

func BoolScalar(b bool) *Scalar {
	if b {
		return TrueScalar
	}
	return FalseScalar
}
