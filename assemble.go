package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/jcorbin/scopevm/internal/fileinput"
)

// The assembly syntax has one instruction per line: a mnemonic followed by
// whitespace separated arguments, where double quoted text may contain
// whitespace. Blank lines and lines starting with "//" are skipped.
//
//	mov    dst src          + - * / % & | == != < <= > >=   a b dst
//	!      src dst          neg  src dst
//	jmp    label            jf   label cond
//	call   label            out
//	prn    src              read
//	lbl    label
//
// Arguments are variables "_name_", labels "$$name$$", the "push" target,
// the "pop" operand, or literals: quoted text or decimal numbers.

// AssembleError locates a syntax error in assembly source.
type AssembleError struct {
	fileinput.Location
	Err error
}

func (err AssembleError) Error() string { return fmt.Sprintf("%v: %v", err.Location, err.Err) }
func (err AssembleError) Unwrap() error { return err.Err }

// AssembleFile reads and assembles the named file.
func AssembleFile(name string) (Program, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	return Assemble(f)
}

// Assemble reads a Program from r, closing r if it is an io.Closer. Errors
// are reported as AssembleError with the 1-based line number, and the name of
// r if it has one.
func Assemble(r io.Reader) (prog Program, err error) {
	in := fileinput.Input{Queue: []io.Reader{r}}
	defer func() {
		if cerr := in.Close(); err == nil {
			err = cerr
		}
	}()
	for {
		line, err := in.ReadLine()
		if err == io.EOF {
			return prog, nil
		} else if err != nil {
			return nil, err
		}
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		code, err := parseInstruction(line)
		if err != nil {
			return nil, AssembleError{in.Last.Location, err}
		}
		prog = append(prog, code)
	}
}

type argParser func(args []string) (Instruction, error)

var mnemonics map[string]argParser

func init() {
	mnemonics = map[string]argParser{
		"mov": arity(2, func(args []string) (_ Instruction, err error) {
			var in Mov
			if in.Dst, err = parseTarget(args[0]); err == nil {
				in.Src, err = parseOperand(args[1])
			}
			return in, err
		}),
		"jmp": arity(1, func(args []string) (_ Instruction, err error) {
			var in Jump
			in.To, err = parseLabel(args[0])
			return in, err
		}),
		"jf": arity(2, func(args []string) (_ Instruction, err error) {
			var in JumpFalse
			if in.To, err = parseLabel(args[0]); err == nil {
				in.Cond, err = parseOperand(args[1])
			}
			return in, err
		}),
		"prn": arity(1, func(args []string) (_ Instruction, err error) {
			var in Print
			in.Src, err = parseOperand(args[0])
			return in, err
		}),
		"read": arity(0, func([]string) (Instruction, error) { return Read{}, nil }),
		"call": arity(1, func(args []string) (_ Instruction, err error) {
			var in Call
			in.To, err = parseLabel(args[0])
			return in, err
		}),
		"out": arity(0, func([]string) (Instruction, error) { return ScopeOut{}, nil }),
		"lbl": arity(1, func(args []string) (_ Instruction, err error) {
			var in LabelMark
			in.Name, err = parseLabel(args[0])
			return in, err
		}),
	}

	for op := BinaryOp(0); op < binaryOpMax; op++ {
		op := op
		mnemonics[op.String()] = arity(3, func(args []string) (_ Instruction, err error) {
			in := Binary{Op: op}
			if in.A, err = parseOperand(args[0]); err == nil {
				if in.B, err = parseOperand(args[1]); err == nil {
					in.Dst, err = parseTarget(args[2])
				}
			}
			return in, err
		})
	}

	for op := UnaryOp(0); op < unaryOpMax; op++ {
		op := op
		mnemonics[op.String()] = arity(2, func(args []string) (_ Instruction, err error) {
			in := Unary{Op: op}
			if in.Src, err = parseOperand(args[0]); err == nil {
				in.Dst, err = parseTarget(args[1])
			}
			return in, err
		})
	}
}

func arity(n int, parse argParser) argParser {
	return func(args []string) (Instruction, error) {
		if len(args) != n {
			return nil, fmt.Errorf("expected %v arguments, got %v", n, len(args))
		}
		return parse(args)
	}
}

var errEmptyInstruction = errors.New("empty instruction")

func parseInstruction(line string) (Instruction, error) {
	words := splitWords(line)
	if len(words) == 0 {
		return nil, errEmptyInstruction
	}
	name := strings.ToLower(words[0])
	parse, defined := mnemonics[name]
	if !defined {
		return nil, fmt.Errorf("unknown instruction %q", words[0])
	}
	code, err := parse(words[1:])
	if err != nil {
		return nil, fmt.Errorf("%v: %w", name, err)
	}
	return code, nil
}

// splitWords splits on whitespace outside of double quotes.
func splitWords(line string) (words []string) {
	var sb strings.Builder
	quoted := false
	for _, r := range line {
		if r == '"' {
			quoted = !quoted
		}
		if !quoted && unicode.IsSpace(r) {
			if sb.Len() > 0 {
				words = append(words, sb.String())
				sb.Reset()
			}
			continue
		}
		sb.WriteRune(r)
	}
	if sb.Len() > 0 {
		words = append(words, sb.String())
	}
	return words
}

type argError struct {
	kind string
	arg  string
}

func (err argError) Error() string { return fmt.Sprintf("invalid %v %q", err.kind, err.arg) }

func isVar(s string) bool {
	return len(s) >= 2 && strings.HasPrefix(s, "_") && strings.HasSuffix(s, "_")
}

func parseLabel(s string) (Label, error) {
	if len(s) >= 4 && strings.HasPrefix(s, "$$") && strings.HasSuffix(s, "$$") {
		return Label(s), nil
	}
	return "", argError{"label", s}
}

func parseTarget(s string) (Target, error) {
	switch {
	case s == "push":
		return Push{}, nil
	case isVar(s):
		return Var(s), nil
	}
	return nil, argError{"target", s}
}

func parseOperand(s string) (Operand, error) {
	switch {
	case s == "pop":
		return Pop{}, nil
	case isVar(s):
		return Var(s), nil
	}
	val, err := parseValue(s)
	if err != nil {
		return nil, err
	}
	return Lit{val}, nil
}
