package document

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arnodel/jsonscript/internal/scanner"
	"github.com/arnodel/jsonscript/token"
)

// An Accessor is one step of a Path: either a Key into a mapping or an Index
// into a sequence.
type Accessor interface {
	fmt.Stringer
	accessor()
}

// Key selects the value associated with a key in a mapping.
type Key string

func (Key) accessor() {}

func (k Key) String() string {
	if isIdentifier(string(k)) {
		return string(k)
	}
	return "[" + string(token.StringScalar(string(k)).Bytes) + "]"
}

// Index selects an item of a sequence.  Indices are 1-based: Index(1) is the
// first item.
type Index int

func (Index) accessor() {}

func (i Index) String() string {
	return "[" + strconv.Itoa(int(i)) + "]"
}

// Offset converts i to a 0-based storage offset in a sequence of length n.
// The second return value is false if there is no such item.
func (i Index) Offset(n int) (int, bool) {
	o := int(i) - 1
	return o, o >= 0 && o < n
}

// A Path addresses a value nested inside a document.  The empty Path
// addresses the document itself.
type Path []Accessor

// String renders the path as e.g. nested.bar or arr[2] or ["a.b"].
func (p Path) String() string {
	if len(p) == 0 {
		return "<root>"
	}
	var b strings.Builder
	for i, acc := range p {
		if k, ok := acc.(Key); ok && i > 0 && isIdentifier(string(k)) {
			b.WriteByte('.')
		}
		b.WriteString(acc.String())
	}
	return b.String()
}

// Append returns a new path with acc added at the end.  It does not alias p.
func (p Path) Append(acc Accessor) Path {
	q := make(Path, len(p), len(p)+1)
	copy(q, p)
	return append(q, acc)
}

// ParsePath parses the textual form of a path, the inverse of Path.String.
//
//	path    := [ident | bracket] { '.' ident | bracket }
//	bracket := '[' digits ']' | '[' json-string ']'
func ParsePath(s string) (Path, error) {
	var p Path
	i := 0
	fail := func(msg string) (Path, error) {
		return nil, fmt.Errorf("invalid path %q at offset %d: %s", s, i, msg)
	}
	for i < len(s) {
		switch c := s[i]; {
		case c == '.' && len(p) > 0:
			i++
			start := i
			for i < len(s) && scanner.IsAlnum(s[i]) {
				i++
			}
			if i == start || !scanner.IsAlpha(s[start]) {
				return fail("expected identifier")
			}
			p = append(p, Key(s[start:i]))
		case c == '[':
			i++
			switch {
			case i < len(s) && scanner.IsDigit(s[i]):
				start := i
				for i < len(s) && scanner.IsDigit(s[i]) {
					i++
				}
				n, err := strconv.Atoi(s[start:i])
				if err != nil {
					return fail(err.Error())
				}
				p = append(p, Index(n))
			case i < len(s) && s[i] == '"':
				start := i
				i++
				for i < len(s) && s[i] != '"' {
					if s[i] == '\\' {
						i++
					}
					i++
				}
				if i >= len(s) {
					return fail("unterminated string")
				}
				i++
				k, err := token.NewScalar(token.String, []byte(s[start:i])).ToString()
				if err != nil {
					return fail(err.Error())
				}
				p = append(p, Key(k))
			default:
				return fail("expected index or quoted key")
			}
			if i >= len(s) || s[i] != ']' {
				return fail("expected ']'")
			}
			i++
		case len(p) == 0 && scanner.IsAlpha(c):
			start := i
			for i < len(s) && scanner.IsAlnum(s[i]) {
				i++
			}
			p = append(p, Key(s[start:i]))
		default:
			return fail(fmt.Sprintf("unexpected %q", c))
		}
	}
	return p, nil
}

func isIdentifier(s string) bool {
	if s == "" || !scanner.IsAlpha(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !scanner.IsAlnum(s[i]) {
			return false
		}
	}
	return true
}
