// Package json decodes JSON text into token streams and encodes token streams
// back into JSON text.
package json

import (
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/arnodel/jsonscript/internal/scanner"
	"github.com/arnodel/jsonscript/token"
)

// A SyntaxError reports invalid JSON input.  Errors from the underlying reader
// are returned as they are, so a *SyntaxError always means the bytes were
// wrong, not that they could not be read.
type SyntaxError struct {
	Pos scanner.Pos
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at L%d,C%d: %s", e.Pos.Line+1, e.Pos.Col+1, e.Msg)
}

// A Decoder reads a stream of JSON values and writes the tokens of each value
// to a token.WriteStream, one value per call to Decode.
type Decoder struct {
	scanr *scanner.Scanner

	// When SplitArrays is true, a top-level array is not decoded as one
	// value; each of its items is decoded as a value of its own.
	SplitArrays bool

	inArray    bool
	firstInArr bool
}

// NewDecoder sets up a new Decoder instance to read from the given input.
func NewDecoder(in io.Reader) *Decoder {
	return &Decoder{scanr: scanner.NewScanner(in)}
}

// Decode reads exactly one JSON value and writes its tokens to out.  It
// returns io.EOF if only whitespace remains.  Input is not consumed past the
// end of the value.  A number or literal must be followed by whitespace, the
// end of the input or the start of a string, array or object, so that e.g.
// "01" or "truefalse" is an error rather than two values.
func (d *Decoder) Decode(out token.WriteStream) error {
	b, err := d.scanr.SkipSpaceAndPeek()
	if err != nil {
		return err
	}
	if d.SplitArrays {
		return d.decodeSplit(b, out)
	}
	if b == scanner.EOF {
		return io.EOF
	}
	return d.parseTopLevel(b, out)
}

func (d *Decoder) parseTopLevel(b int, out token.WriteStream) error {
	if err := d.ParseValue(out); err != nil {
		return err
	}
	switch b {
	case '"', '[', '{':
		return nil
	}
	next, err := d.scanr.Peek()
	if err != nil {
		return err
	}
	switch {
	case next == scanner.EOF || scanner.IsSpace(next):
		return nil
	case next == '"' || next == '[' || next == '{':
		return nil
	default:
		return UnexpectedByte(d.scanr, "invalid character after top-level value:")
	}
}

func (d *Decoder) decodeSplit(b int, out token.WriteStream) error {
	var err error
	for {
		if !d.inArray {
			switch b {
			case scanner.EOF:
				return io.EOF
			case '[':
				d.scanr.Read()
				d.inArray = true
				d.firstInArr = true
			default:
				return d.parseTopLevel(b, out)
			}
		} else {
			switch {
			case b == ']':
				d.scanr.Read()
				d.inArray = false
			case d.firstInArr:
				d.firstInArr = false
				return d.ParseValue(out)
			case b == ',':
				d.scanr.Read()
				return d.ParseValue(out)
			default:
				return UnexpectedByte(d.scanr, "expected ']' or ',', got")
			}
		}
		b, err = d.scanr.SkipSpaceAndPeek()
		if err != nil {
			return err
		}
	}
}

// ParseValue reads a single JSON value and streams it.  Reaching the end of
// the input before the value is complete is a *SyntaxError.
func (d *Decoder) ParseValue(out token.WriteStream) error {
	b, err := d.scanr.SkipSpaceAndPeek()
	if err != nil {
		return err
	}
	switch b {
	case '"':
		s, err := ParseString(d.scanr)
		if err != nil {
			return err
		}
		out.Put(s)
		return nil
	case '[':
		return d.parseArray(out)
	case '{':
		return d.parseObject(out)
	case 't':
		return d.parseLiteral(trueBytes, token.TrueScalar, out)
	case 'f':
		return d.parseLiteral(falseBytes, token.FalseScalar, out)
	case 'n':
		return d.parseLiteral(nullBytes, token.NullScalar, out)
	default:
		if b == '-' || scanner.IsDigit(b) {
			n, err := ParseNumber(d.scanr)
			if err != nil {
				return err
			}
			out.Put(n)
			return nil
		}
		return UnexpectedByte(d.scanr, "expected value, got")
	}
}

func (d *Decoder) parseLiteral(lit []byte, tok *token.Scalar, out token.WriteStream) error {
	if err := checkBytes(d.scanr, lit); err != nil {
		return err
	}
	out.Put(tok)
	return nil
}

func (d *Decoder) parseArray(out token.WriteStream) error {
	err := ExpectByte(d.scanr, '[')
	if err != nil {
		return err
	}
	out.Put(&token.StartArray{})
	b, err := d.scanr.SkipSpaceAndPeek()
	if err != nil {
		return err
	}
	if b == ']' {
		d.scanr.Read()
		out.Put(&token.EndArray{})
		return nil
	}
	for {
		err = d.ParseValue(out)
		if err != nil {
			return err
		}
		b, err = d.scanr.SkipSpaceAndPeek()
		if err != nil {
			return err
		}
		switch b {
		case ']':
			d.scanr.Read()
			out.Put(&token.EndArray{})
			return nil
		case ',':
			d.scanr.Read()
		default:
			return UnexpectedByte(d.scanr, "expected ']' or ',', got")
		}
	}
}

func (d *Decoder) parseObject(out token.WriteStream) error {
	err := ExpectByte(d.scanr, '{')
	if err != nil {
		return err
	}
	out.Put(&token.StartObject{})
	b, err := d.scanr.SkipSpaceAndPeek()
	if err != nil {
		return err
	}
	if b == '}' {
		d.scanr.Read()
		out.Put(&token.EndObject{})
		return nil
	}
	for {
		if b != '"' {
			return UnexpectedByte(d.scanr, "expected object key, got")
		}
		key, err := ParseString(d.scanr)
		if err != nil {
			return err
		}
		key.TypeAndFlags |= token.KeyMask
		out.Put(key)
		b, err = d.scanr.SkipSpaceAndPeek()
		if err != nil {
			return err
		}
		if b != ':' {
			return UnexpectedByte(d.scanr, "expected ':', got")
		}
		d.scanr.Read()
		err = d.ParseValue(out)
		if err != nil {
			return err
		}
		b, err = d.scanr.SkipSpaceAndPeek()
		if err != nil {
			return err
		}
		switch b {
		case '}':
			d.scanr.Read()
			out.Put(&token.EndObject{})
			return nil
		case ',':
			d.scanr.Read()
			b, err = d.scanr.SkipSpaceAndPeek()
			if err != nil {
				return err
			}
		default:
			return UnexpectedByte(d.scanr, "expected '}' or ',', got")
		}
	}
}

// ExpectByte consumes the next byte, which must be xb.
func ExpectByte(scanr *scanner.Scanner, xb byte) error {
	b, err := scanr.Read()
	if err != nil {
		return err
	}
	if b != int(xb) {
		scanr.Back()
		return UnexpectedByte(scanr, "expected %q, got", xb)
	}
	return nil
}

// UnexpectedByte returns a *SyntaxError about the next byte in the input.
func UnexpectedByte(scanr *scanner.Scanner, expected string, args ...interface{}) error {
	pos := scanr.CurrentPos()
	b, err := scanr.Read()
	if err != nil {
		return err
	}
	msg := fmt.Sprintf(expected, args...)
	if b == scanner.EOF {
		return &SyntaxError{Pos: pos, Msg: msg + " <EOF>"}
	}
	return &SyntaxError{Pos: pos, Msg: msg + " " + quoteByte(b)}
}

// quoteByte quotes b as a character if it is ASCII, as a byte otherwise.
func quoteByte(b int) string {
	if b >= utf8.RuneSelf {
		return fmt.Sprintf(`'\x%02x'`, b)
	}
	return fmt.Sprintf("%q", rune(b))
}

// IsSyntaxError reports whether err is or wraps a *SyntaxError.
func IsSyntaxError(err error) bool {
	var serr *SyntaxError
	return errors.As(err, &serr)
}

// ParseString parses a JSON string literal.  The returned scalar keeps the
// literal bytes, including quotes and escapes.
func ParseString(scanr *scanner.Scanner) (*token.Scalar, error) {
	scanr.StartToken()
	err := ExpectByte(scanr, '"')
	if err != nil {
		return nil, err
	}
	isUnescaped := true
	for {
		b, err := scanr.Read()
		if err != nil {
			return nil, err
		}
		switch b {
		case '\\':
			isUnescaped = false
			x, err := scanr.Read()
			if err != nil {
				return nil, err
			}
			switch x {
			case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
				continue
			case 'u':
				for i := 0; i < 4; i++ {
					b, err = scanr.Read()
					if err != nil {
						return nil, err
					}
					if !isHex(b) {
						scanr.Back()
						return nil, UnexpectedByte(scanr, "expected hex digit, got")
					}
				}
			default:
				scanr.Back()
				return nil, UnexpectedByte(scanr, "invalid escape character")
			}
		case '"':
			scalar := token.NewScalar(token.String, scanr.EndToken())
			if isUnescaped {
				scalar.TypeAndFlags |= token.UnescapedMask
			}
			return scalar, nil
		case scanner.EOF:
			scanr.Back()
			return nil, UnexpectedByte(scanr, "unterminated string, got")
		default:
			if scanner.IsCtrl(b) {
				scanr.Back()
				return nil, UnexpectedByte(scanr, "invalid control character in string")
			}
		}
	}
}

// ParseNumber parses a JSON number from the scanner.
func ParseNumber(scanr *scanner.Scanner) (*token.Scalar, error) {
	scanr.StartToken()
	var n int
	b, err := scanr.Read()

	// Sign part
	if b == '-' {
		b, err = scanr.Read()
	}
	if err != nil {
		return nil, err
	}

	// Integer part
	if b == '0' {
		b, err = scanr.Read()
		if err != nil {
			return nil, err
		}
	} else if b >= '1' && b <= '9' {
		b, _, err = ReadDigits(scanr)
		if err != nil {
			return nil, err
		}
	} else {
		scanr.Back()
		return nil, UnexpectedByte(scanr, "expected digit, got")
	}

	// Fraction part
	if b == '.' {
		b, n, err = ReadDigits(scanr)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			scanr.Back()
			return nil, UnexpectedByte(scanr, "expected digit, got")
		}
	}

	// Exponent part
	if b == 'e' || b == 'E' {
		b, err = scanr.Peek()
		if err != nil {
			return nil, err
		}
		if b == '-' || b == '+' {
			scanr.Read()
		}
		_, n, err = ReadDigits(scanr)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			scanr.Back()
			return nil, UnexpectedByte(scanr, "expected digit, got")
		}
	}
	scanr.Back()
	return token.NewScalar(token.Number, scanr.EndToken()), nil
}

// ReadDigits consumes decimal digits and returns the first non-digit byte
// read, or EOF, along with the number of digits.
func ReadDigits(scanr *scanner.Scanner) (int, int, error) {
	var n int
	for {
		b, err := scanr.Read()
		if err != nil {
			return 0, n, err
		}
		if !scanner.IsDigit(b) {
			return b, n, nil
		}
		n++
	}
}

func checkBytes(scanr *scanner.Scanner, expected []byte) error {
	for _, xb := range expected {
		if err := ExpectByte(scanr, xb); err != nil {
			return err
		}
	}
	return nil
}

func isHex(b int) bool {
	return scanner.IsDigit(b) || b >= 'a' && b <= 'f' || b >= 'A' && b <= 'F'
}

var (
	trueBytes  = []byte("true")
	falseBytes = []byte("false")
	nullBytes  = []byte("null")
)
