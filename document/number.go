package document

import (
	"fmt"
	"math"
	"strconv"
)

// Number is a JSON number.  It keeps the literal text it was decoded from so
// that numbers of any magnitude or precision are written back exactly as they
// were read.
type Number struct {
	literal string
}

func (Number) Kind() Kind { return NumberKind }

// Literal returns the JSON text of the number.
func (n Number) Literal() string {
	if n.literal == "" {
		return "0"
	}
	return n.literal
}

func (n Number) String() string { return n.Literal() }

// Int returns the Number for i.
func Int(i int64) Number {
	return Number{literal: strconv.FormatInt(i, 10)}
}

// Float returns the Number for f, using the shortest representation that
// reads back as f.  Integral values print without a fraction or exponent.
// JSON cannot represent NaN or infinities so they become Null.
func Float(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Null{}
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e21 {
		return Number{literal: strconv.FormatFloat(f, 'f', -1, 64)}
	}
	return Number{literal: strconv.FormatFloat(f, 'g', -1, 64)}
}

// ParseNumber checks that s is a valid JSON number literal and returns the
// corresponding Number.
func ParseNumber(s string) (Number, error) {
	if !validNumber(s) {
		return Number{}, fmt.Errorf("invalid number literal %q", s)
	}
	return Number{literal: s}, nil
}

// Int64 returns the value of n as an int64.  The second return value is false
// if n is not an integer or does not fit.
func (n Number) Int64() (int64, bool) {
	if i, err := strconv.ParseInt(n.Literal(), 10, 64); err == nil {
		return i, true
	}
	f := n.Float64()
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// Float64 returns the nearest float64 to n.
func (n Number) Float64() float64 {
	// A valid literal can only fail with ErrRange, in which case f is the
	// correctly signed infinity or zero.
	f, _ := strconv.ParseFloat(n.Literal(), 64)
	return f
}

func validNumber(s string) bool {
	i := 0
	if i < len(s) && s[i] == '-' {
		i++
	}
	switch {
	case i < len(s) && s[i] == '0':
		i++
	case i < len(s) && s[i] >= '1' && s[i] <= '9':
		for i < len(s) && isDigit(s[i]) {
			i++
		}
	default:
		return false
	}
	if i < len(s) && s[i] == '.' {
		i++
		start := i
		for i < len(s) && isDigit(s[i]) {
			i++
		}
		if i == start {
			return false
		}
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		start := i
		for i < len(s) && isDigit(s[i]) {
			i++
		}
		if i == start {
			return false
		}
	}
	return i == len(s)
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
