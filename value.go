package main

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value is a scalar manipulated by the machine: either a Number or a Text.
// Values are small and copied freely; there is no identity beyond structure.
type Value interface {
	fmt.Stringer
	isValue()
}

// Number is a 64-bit float value.
type Number float64

// Text is a string value.
type Text string

func (Number) isValue() {}
func (Text) isValue()   {}

// String returns the decimal form of n, never in exponent notation.
func (n Number) String() string {
	switch f := float64(n); {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	default:
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
}

func (s Text) String() string { return string(s) }

// eqEpsilon is the tolerance for numeric equality, one unit in the last place
// of 1.0.
const eqEpsilon = 0x1p-52

func boolNumber(b bool) Number {
	if b {
		return 1
	}
	return 0
}

// truthy reports whether v counts as true for a conditional jump: non-zero
// numbers and non-empty texts are true.
func truthy(v Value) bool {
	switch v := v.(type) {
	case Number:
		return v != 0
	case Text:
		return v != ""
	}
	return false
}

// typeError reports an operation applied to value kinds it does not support.
type typeError struct {
	op   string
	args []Value
}

func (err typeError) Error() string {
	var sb strings.Builder
	sb.WriteString("cannot ")
	sb.WriteString(err.op)
	for i, arg := range err.args {
		if i > 0 {
			sb.WriteString(" and")
		}
		sb.WriteByte(' ')
		sb.WriteString(quoteValue(arg))
	}
	return sb.String()
}

func mismatch(op string, args ...Value) error { return typeError{op, args} }

//// Arithmetic

func add(a, b Value) (Value, error) {
	if x, ok := a.(Number); ok {
		if y, ok := b.(Number); ok {
			return x + y, nil
		}
	}
	return Text(a.String() + b.String()), nil
}

func sub(a, b Value) (Value, error) {
	x, y, ok := numbers(a, b)
	if !ok {
		return nil, mismatch("sub", a, b)
	}
	return x - y, nil
}

func mul(a, b Value) (Value, error) {
	x, y, ok := numbers(a, b)
	if !ok {
		return nil, mismatch("mul", a, b)
	}
	return x * y, nil
}

func div(a, b Value) (Value, error) {
	x, y, ok := numbers(a, b)
	if !ok {
		return nil, mismatch("div", a, b)
	}
	return x / y, nil
}

func modulo(a, b Value) (Value, error) {
	x, y, ok := numbers(a, b)
	if !ok {
		return nil, mismatch("modulo", a, b)
	}
	return Number(math.Mod(float64(x), float64(y))), nil
}

func neg(a Value) (Value, error) {
	x, ok := a.(Number)
	if !ok {
		return nil, mismatch("neg", a)
	}
	return -x, nil
}

//// Relations

func eq(a, b Value) (Value, error) {
	switch x := a.(type) {
	case Number:
		if y, ok := b.(Number); ok {
			return boolNumber(math.Abs(float64(x-y)) < eqEpsilon), nil
		}
	case Text:
		if y, ok := b.(Text); ok {
			return boolNumber(x == y), nil
		}
	}
	return nil, mismatch("eq", a, b)
}

func ne(a, b Value) (Value, error) {
	v, err := eq(a, b)
	if err != nil {
		return nil, err
	}
	return not(v)
}

func lt(a, b Value) (Value, error) { return order("lt", a, b, func(c int) bool { return c < 0 }) }
func le(a, b Value) (Value, error) { return order("le", a, b, func(c int) bool { return c <= 0 }) }
func gt(a, b Value) (Value, error) { return order("gt", a, b, func(c int) bool { return c > 0 }) }
func ge(a, b Value) (Value, error) { return order("ge", a, b, func(c int) bool { return c >= 0 }) }

// order compares two numbers or two texts; any comparison involving NaN is
// false, matching IEEE-754.
func order(op string, a, b Value, holds func(c int) bool) (Value, error) {
	switch x := a.(type) {
	case Number:
		if y, ok := b.(Number); ok {
			if math.IsNaN(float64(x)) || math.IsNaN(float64(y)) {
				return boolNumber(false), nil
			}
			c := 0
			if x < y {
				c = -1
			} else if x > y {
				c = 1
			}
			return boolNumber(holds(c)), nil
		}
	case Text:
		if y, ok := b.(Text); ok {
			return boolNumber(holds(strings.Compare(string(x), string(y)))), nil
		}
	}
	return nil, mismatch(op, a, b)
}

//// Logic

func and(a, b Value) (Value, error) {
	x, y, ok := numbers(a, b)
	if !ok {
		return nil, mismatch("and", a, b)
	}
	return boolNumber(x != 0 && y != 0), nil
}

func or(a, b Value) (Value, error) {
	x, y, ok := numbers(a, b)
	if !ok {
		return nil, mismatch("or", a, b)
	}
	return boolNumber(x != 0 || y != 0), nil
}

func not(a Value) (Value, error) {
	x, ok := a.(Number)
	if !ok {
		return nil, mismatch("not", a)
	}
	return boolNumber(x == 0), nil
}

func numbers(a, b Value) (x, y Number, ok bool) {
	if x, ok = a.(Number); ok {
		y, ok = b.(Number)
	}
	return x, y, ok
}

//// Literals

// literalError reports text that is neither a quoted string nor a number.
type literalError string

func (lit literalError) Error() string { return fmt.Sprintf("invalid literal %q", string(lit)) }

// parseValue parses a trimmed literal: text wrapped in matching single or
// double quotes, or a decimal number. Quoted text has no escapes.
func parseValue(s string) (Value, error) {
	s = strings.TrimSpace(s)
	if n := len(s); n >= 2 {
		if q := s[0]; (q == '"' || q == '\'') && s[n-1] == q {
			return Text(s[1 : n-1]), nil
		}
	}
	// hex floats and digit separators are not part of the literal grammar
	if s == "" || strings.ContainsAny(s, "xX_") {
		return nil, literalError(s)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return nil, literalError(s)
	}
	return Number(f), nil
}

// quoteValue renders v as a literal that parseValue reads back: numbers as is,
// texts double quoted unless they contain a double quote.
func quoteValue(v Value) string {
	s, ok := v.(Text)
	if !ok {
		if v == nil {
			return "<nil>"
		}
		return v.String()
	}
	if strings.ContainsRune(string(s), '"') {
		return "'" + string(s) + "'"
	}
	return `"` + string(s) + `"`
}
