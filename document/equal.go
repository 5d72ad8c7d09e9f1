package document

import (
	"math/big"
	"strings"
)

// DeepEqual reports whether a and b are the same JSON value.  Mapping key
// order is ignored and numbers compare by value, so 1, 1.0 and 1e0 are equal.
func DeepEqual(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case Number:
		y := b.(Number)
		if x.Literal() == y.Literal() {
			return true
		}
		if isInteger(x) && isInteger(y) {
			i, _ := new(big.Int).SetString(x.Literal(), 10)
			j, _ := new(big.Int).SetString(y.Literal(), 10)
			return i.Cmp(j) == 0
		}
		if i, ok := x.Int64(); ok {
			if j, ok := y.Int64(); ok {
				return i == j
			}
		}
		return x.Float64() == y.Float64()
	case *Sequence:
		y := b.(*Sequence)
		if len(x.items) != len(y.items) {
			return false
		}
		for i := range x.items {
			if !DeepEqual(x.items[i], y.items[i]) {
				return false
			}
		}
		return true
	case *Mapping:
		y := b.(*Mapping)
		if len(x.keys) != len(y.keys) {
			return false
		}
		for k, xv := range x.values {
			yv, ok := y.values[k]
			if !ok || !DeepEqual(xv, yv) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

// isInteger reports whether n is written without a fraction or an exponent.
func isInteger(n Number) bool {
	return !strings.ContainsAny(n.Literal(), ".eE")
}
