package document

import (
	"fmt"
	"slices"
	"strings"
)

// FromGo converts a Go value built from nil, bool, string, the integer and
// float types, []any and map[string]any into a Value.  Map keys are inserted
// in sorted order since Go maps have none.
func FromGo(x any) (Value, error) {
	switch y := x.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return Clone(y), nil
	case bool:
		return Bool(y), nil
	case string:
		return String(y), nil
	case int:
		return Int(int64(y)), nil
	case int64:
		return Int(y), nil
	case int32:
		return Int(int64(y)), nil
	case float64:
		return Float(y), nil
	case float32:
		return Float(float64(y)), nil
	case []any:
		s := &Sequence{items: make([]Value, 0, len(y))}
		for i, item := range y {
			v, err := FromGo(item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i+1, err)
			}
			s.push(v)
		}
		return s, nil
	case map[string]any:
		m := NewMapping()
		keys := make([]string, 0, len(y))
		for k := range y {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			v, err := FromGo(y[k])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", Key(k), err)
			}
			m.put(k, v)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("cannot convert %T to a document value", x)
	}
}

// MustFromGo is like FromGo but panics on error.
func MustFromGo(x any) Value {
	v, err := FromGo(x)
	if err != nil {
		panic(err)
	}
	return v
}

// ToGo converts v to plain Go values: nil, bool, string, float64 (or int64
// for integers that fit), []any and map[string]any.
func ToGo(v Value) any {
	switch x := v.(type) {
	case nil, Null:
		return nil
	case Bool:
		return bool(x)
	case String:
		return string(x)
	case Number:
		if i, ok := x.Int64(); ok && !strings.ContainsAny(x.Literal(), ".eE") {
			return i
		}
		return x.Float64()
	case *Sequence:
		items := make([]any, len(x.items))
		for i, item := range x.items {
			items[i] = ToGo(item)
		}
		return items
	case *Mapping:
		m := make(map[string]any, len(x.keys))
		for k, item := range x.values {
			m[k] = ToGo(item)
		}
		return m
	default:
		return nil
	}
}
