package main

import (
	"errors"
	"fmt"
)

var (
	errStackUnderflow = errors.New("value stack underflow")
	errNoCallFrame    = errors.New("no call frame to return to")
)

type undefinedError string // variable name
type labelError string     // label name
type progError int         // program counter
type codeError string      // instruction or operation
type callLimitError int    // call depth limit

func (name undefinedError) Error() string {
	return fmt.Sprintf("undefined variable %v", string(name))
}
func (name labelError) Error() string { return fmt.Sprintf("missing label %v", string(name)) }
func (pc progError) Error() string    { return fmt.Sprintf("no instruction @%v", int(pc)) }
func (code codeError) Error() string  { return fmt.Sprintf("invalid code %v", string(code)) }
func (lim callLimitError) Error() string {
	return fmt.Sprintf("call stack overflow, limit %v", int(lim))
}

// ioError is a transport failure reading input or writing output.
type ioError struct{ error }

func (err ioError) Error() string { return fmt.Sprintf("i/o failure: %v", err.error) }
func (err ioError) Unwrap() error { return err.error }

// stepError locates an execution error at the instruction that raised it.
type stepError struct {
	pc   int
	code Instruction
	err  error
}

func (err stepError) Error() string {
	return fmt.Sprintf("@%v %v: %v", err.pc, err.code, err.err)
}
func (err stepError) Unwrap() error { return err.err }
