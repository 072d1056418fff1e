package main

import "fmt"

// Operand is a source of a Value: a named variable, a literal, or the top of
// the value stack.
type Operand interface {
	fmt.Stringer
	read(sc scope, values *valueStack) (Value, error)
}

// Target is a sink for a Value: a named variable or the value stack.
type Target interface {
	fmt.Stringer
	write(val Value, sc scope, values *valueStack)
}

// Var names a variable in the innermost scope; it serves both as an Operand
// and as a Target. The name includes its "_" sigils, as written in source.
type Var string

// Lit is a literal Operand.
type Lit struct{ V Value }

// Pop is the Operand that removes and returns the top of the value stack.
type Pop struct{}

// Push is the Target that pushes onto the value stack.
type Push struct{}

func (v Var) String() string  { return string(v) }
func (lit Lit) String() string { return quoteValue(lit.V) }
func (Pop) String() string     { return "pop" }
func (Push) String() string    { return "push" }

// Only the innermost scope is visible: there is no lookup through callers.
func (v Var) read(sc scope, _ *valueStack) (Value, error) {
	if val, defined := sc[string(v)]; defined {
		return val, nil
	}
	return nil, undefinedError(v)
}

func (lit Lit) read(scope, *valueStack) (Value, error)      { return lit.V, nil }
func (Pop) read(_ scope, values *valueStack) (Value, error) { return values.pop() }

func (v Var) write(val Value, sc scope, _ *valueStack)    { sc[string(v)] = val }
func (Push) write(val Value, _ scope, values *valueStack) { values.push(val) }

// scope holds the variable bindings of one call frame.
type scope map[string]Value

// valueStack is the LIFO of values shared by all frames; it carries arguments
// into calls and results out of them.
type valueStack []Value

func (vs *valueStack) push(val Value) { *vs = append(*vs, val) }

func (vs *valueStack) pop() (Value, error) {
	i := len(*vs) - 1
	if i < 0 {
		return nil, errStackUnderflow
	}
	val := (*vs)[i]
	(*vs)[i] = nil
	*vs = (*vs)[:i]
	return val, nil
}
