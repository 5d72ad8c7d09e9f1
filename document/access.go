package document

import (
	"errors"
	"fmt"
)

var (
	// ErrPathType is returned when an accessor does not fit the value it is
	// applied to (e.g. a Key applied to a sequence or a scalar).
	ErrPathType = errors.New("path type error")

	// ErrIndexOutOfRange is returned when an Index does not address an
	// existing item of a sequence.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrKeyNotFound is returned when reading a Key that a mapping does not
	// contain.
	ErrKeyNotFound = errors.New("key not found")
)

// PathError records a failed access.  Path is the prefix of the requested
// path up to and including the accessor that failed.
type PathError struct {
	Path Path
	On   Kind // kind of the value the failing accessor was applied to
	Len  int  // length of the sequence, for ErrIndexOutOfRange
	Err  error
}

func (e *PathError) Error() string {
	switch e.Err {
	case ErrKeyNotFound:
		return fmt.Sprintf("key not found: %s", e.Path)
	case ErrIndexOutOfRange:
		return fmt.Sprintf("index out of range: %s (length %d)", e.Path, e.Len)
	case ErrPathType:
		if len(e.Path) == 0 {
			return "cannot assign to the document root"
		}
		return fmt.Sprintf("cannot index %s with %s at %s", e.On, describe(e.Path[len(e.Path)-1]), e.Path)
	default:
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
}

func (e *PathError) Unwrap() error {
	return e.Err
}

func describe(acc Accessor) string {
	switch acc.(type) {
	case Index:
		return "an index"
	default:
		return "a key"
	}
}

// Get returns the value at path p inside v.
func Get(v Value, p Path) (Value, error) {
	for i, acc := range p {
		next, err := step(v, acc)
		if err != nil {
			return nil, newPathError(p[:i+1], v, err)
		}
		v = next
	}
	return v, nil
}

// Set replaces the value at path p inside v with a copy of x.  If the last
// accessor is a Key the entry is created when missing; an Index must address
// an existing item.  The empty path cannot be assigned.
func Set(v Value, p Path, x Value) error {
	if len(p) == 0 {
		return &PathError{On: kindOf(v), Err: ErrPathType}
	}
	parent, err := Get(v, p[:len(p)-1])
	if err != nil {
		return err
	}
	switch acc := p[len(p)-1].(type) {
	case Key:
		m, ok := parent.(*Mapping)
		if !ok {
			return newPathError(p, parent, ErrPathType)
		}
		m.Set(string(acc), x)
	case Index:
		s, ok := parent.(*Sequence)
		if !ok {
			return newPathError(p, parent, ErrPathType)
		}
		i, ok := acc.Offset(s.Len())
		if !ok {
			return newPathError(p, parent, ErrIndexOutOfRange)
		}
		s.SetAt(i, x)
	}
	return nil
}

func step(v Value, acc Accessor) (Value, error) {
	switch a := acc.(type) {
	case Key:
		m, ok := v.(*Mapping)
		if !ok {
			return nil, ErrPathType
		}
		x, ok := m.Get(string(a))
		if !ok {
			return nil, ErrKeyNotFound
		}
		return x, nil
	case Index:
		s, ok := v.(*Sequence)
		if !ok {
			return nil, ErrPathType
		}
		i, ok := a.Offset(s.Len())
		if !ok {
			return nil, ErrIndexOutOfRange
		}
		return s.items[i], nil
	default:
		return nil, ErrPathType
	}
}

func newPathError(p Path, on Value, err error) *PathError {
	e := &PathError{Path: p, On: kindOf(on), Err: err}
	if s, ok := on.(*Sequence); ok {
		e.Len = s.Len()
	}
	return e
}

// kindOf is the kind of v, where a nil Value stands for null.
func kindOf(v Value) Kind {
	if v == nil {
		return NullKind
	}
	return v.Kind()
}
