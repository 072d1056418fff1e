package main

import (
	"fmt"
	"strings"
)

// Instruction is one operation of a Program. The set is closed: every
// implementation lives in this file and the machine dispatches over all of
// them.
type Instruction interface {
	fmt.Stringer
	isInstruction()
}

// Label names a jump or call target, written "$$name$$" in source.
type Label string

func (l Label) String() string { return string(l) }

// Mov copies Src into Dst.
type Mov struct {
	Dst Target
	Src Operand
}

// Binary applies a two operand operation; see BinaryOp for which operand is
// the left hand side.
type Binary struct {
	Op   BinaryOp
	A, B Operand
	Dst  Target
}

// Unary applies a one operand operation.
type Unary struct {
	Op  UnaryOp
	Src Operand
	Dst Target
}

// Jump continues at a label.
type Jump struct{ To Label }

// JumpFalse continues at a label when Cond is not truthy.
type JumpFalse struct {
	To   Label
	Cond Operand
}

// Print writes the textual form of Src as one output line.
type Print struct{ Src Operand }

// Read parses one input line as a literal and pushes it.
type Read struct{}

// Call enters a labeled routine in a fresh scope.
type Call struct{ To Label }

// ScopeOut leaves the current scope, returning to the caller or, from the
// top level scope, ending the run.
type ScopeOut struct{}

// LabelMark marks the position of a Label; it does nothing when executed.
type LabelMark struct{ Name Label }

func (Mov) isInstruction()       {}
func (Binary) isInstruction()    {}
func (Unary) isInstruction()     {}
func (Jump) isInstruction()      {}
func (JumpFalse) isInstruction() {}
func (Print) isInstruction()     {}
func (Read) isInstruction()      {}
func (Call) isInstruction()      {}
func (ScopeOut) isInstruction()  {}
func (LabelMark) isInstruction() {}

func (in Mov) String() string       { return mnemonic("mov", in.Dst, in.Src) }
func (in Binary) String() string    { return mnemonic(in.Op.String(), in.A, in.B, in.Dst) }
func (in Unary) String() string     { return mnemonic(in.Op.String(), in.Src, in.Dst) }
func (in Jump) String() string      { return mnemonic("jmp", in.To) }
func (in JumpFalse) String() string { return mnemonic("jf", in.To, in.Cond) }
func (in Print) String() string     { return mnemonic("prn", in.Src) }
func (Read) String() string         { return "read" }
func (in Call) String() string      { return mnemonic("call", in.To) }
func (ScopeOut) String() string     { return "out" }
func (in LabelMark) String() string { return mnemonic("lbl", in.Name) }

func mnemonic(name string, args ...fmt.Stringer) string {
	var sb strings.Builder
	sb.WriteString(name)
	for _, arg := range args {
		sb.WriteByte(' ')
		if arg == nil {
			sb.WriteString("<nil>")
		} else {
			sb.WriteString(arg.String())
		}
	}
	return sb.String()
}

// BinaryOp selects the operation of a Binary instruction.
type BinaryOp uint8

const (
	OpAdd       BinaryOp = iota // +    B + A  (text concatenation if either is text)
	OpSub                       // -    B - A
	OpMul                       // *    A * B
	OpDiv                       // /    B / A
	OpMod                       // %    B % A
	OpAnd                       // &    A and B
	OpOr                        // |    A or B
	OpEq                        // ==   A == B
	OpNeq                       // !=   A != B
	OpLess                      // <    B < A
	OpLessEq                    // <=   B <= A
	OpGreater                   // >    B > A
	OpGreaterEq                 // >=   B >= A

	binaryOpMax
)

// UnaryOp selects the operation of a Unary instruction.
type UnaryOp uint8

const (
	OpNot UnaryOp = iota // !
	OpNeg                // neg

	unaryOpMax
)

type binaryOpInfo struct {
	mnemonic string
	apply    func(a, b Value) (Value, error)

	// swapped operations take their second operand as the left hand side:
	// with both operands popped, "- pop pop push" subtracts the top of the
	// stack from the value under it.
	swapped bool
}

var binaryOps = [binaryOpMax]binaryOpInfo{
	OpAdd:       {"+", add, true},
	OpSub:       {"-", sub, true},
	OpMul:       {"*", mul, false},
	OpDiv:       {"/", div, true},
	OpMod:       {"%", modulo, true},
	OpAnd:       {"&", and, false},
	OpOr:        {"|", or, false},
	OpEq:        {"==", eq, false},
	OpNeq:       {"!=", ne, false},
	OpLess:      {"<", lt, true},
	OpLessEq:    {"<=", le, true},
	OpGreater:   {">", gt, true},
	OpGreaterEq: {">=", ge, true},
}

var unaryOps = [unaryOpMax]struct {
	mnemonic string
	apply    func(a Value) (Value, error)
}{
	OpNot: {"!", not},
	OpNeg: {"neg", neg},
}

func (op BinaryOp) String() string {
	if op < binaryOpMax {
		return binaryOps[op].mnemonic
	}
	return fmt.Sprintf("BinaryOp(%d)", uint8(op))
}

func (op UnaryOp) String() string {
	if op < unaryOpMax {
		return unaryOps[op].mnemonic
	}
	return fmt.Sprintf("UnaryOp(%d)", uint8(op))
}

// apply evaluates a op b in the operation's operand order.
func (op BinaryOp) apply(a, b Value) (Value, error) {
	if op >= binaryOpMax {
		return nil, codeError(op.String())
	}
	info := binaryOps[op]
	if info.swapped {
		a, b = b, a
	}
	return info.apply(a, b)
}

func (op UnaryOp) apply(a Value) (Value, error) {
	if op >= unaryOpMax {
		return nil, codeError(op.String())
	}
	return unaryOps[op].apply(a)
}
