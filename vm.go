package main

import (
	"context"
	"fmt"
)

// VM executes a Program. Its entire mutable state is three stacks:
//
// - the value stack, used explicitly through the push and pop operands, and
//   to pass arguments into calls and results out of them
// - the call stack of return program counters, one per active call
// - the scope stack of variable bindings, one per active call plus the top
//   level scope; only the innermost scope is visible
//
// A VM runs one program at a time, on the calling goroutine.
type VM struct {
	ioCore

	entry     Label // where execution begins
	callLimit int   // maximum depth of nested calls, if non-zero

	prog   Program
	labels labels
	pc     int

	values valueStack
	calls  []int
	scopes []scope
}

// stepKind says how the program counter moves after an instruction.
type stepKind uint8

const (
	stepNext stepKind = iota
	stepJump
	stepDone
)

type vmStep struct {
	kind  stepKind
	pc    int   // for stepJump
	value Value // for stepDone
}

func next() vmStep            { return vmStep{kind: stepNext} }
func jump(pc int) vmStep      { return vmStep{kind: stepJump, pc: pc} }
func done(value Value) vmStep { return vmStep{kind: stepDone, value: value} }

func (vm *VM) reset(prog Program) {
	vm.prog = prog
	vm.labels = indexLabels(prog)
	vm.pc = 0
	vm.values = nil
	vm.calls = nil
	vm.scopes = []scope{make(scope)}
}

func (vm *VM) run(ctx context.Context, prog Program) (Value, error) {
	vm.reset(prog)
	if err := vm.bootstrap(); err != nil {
		return nil, err
	}
	return vm.exec(ctx)
}

// bootstrap finds the entry label and seeds the call stack with the index
// after it, where execution starts. This is the only call stack entry that
// no call instruction pushed; the top level scope exit leaves it in place.
func (vm *VM) bootstrap() error {
	entry, err := vm.labels.lookup(vm.entry)
	if err != nil {
		return err
	}
	vm.logf("#", "entry %v @%v", vm.entry, entry)
	vm.pc = entry + 1
	vm.calls = append(vm.calls, vm.pc)
	return nil
}

func (vm *VM) exec(ctx context.Context) (Value, error) {
	if vm.logfn != nil {
		defer vm.withLogPrefix("\t")()
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		st, err := vm.step()
		if err != nil {
			return nil, err
		}
		switch st.kind {
		case stepNext:
			vm.pc++
		case stepJump:
			vm.pc = st.pc
		case stepDone:
			vm.logf("#", "done %v", quoteValue(st.value))
			return st.value, nil
		}
	}
}

// step executes the instruction at the program counter.
func (vm *VM) step() (vmStep, error) {
	code, err := vm.prog.fetch(vm.pc)
	if err != nil {
		return vmStep{}, err
	}
	if vm.logfn != nil {
		vm.logf(">", "@%v %v -- v:%v c:%v s:%v", vm.pc, code, vm.values, vm.calls, len(vm.scopes))
	}
	st, err := vm.exec1(code)
	if err != nil {
		return vmStep{}, stepError{vm.pc, code, err}
	}
	return st, nil
}

func (vm *VM) exec1(code Instruction) (vmStep, error) {
	sc := vm.scope()

	switch in := code.(type) {
	case Call:
		return vm.call(in.To)

	case Mov:
		val, err := in.Src.read(sc, &vm.values)
		if err != nil {
			return vmStep{}, err
		}
		in.Dst.write(val, sc, &vm.values)

	case Binary:
		a, err := in.A.read(sc, &vm.values)
		if err != nil {
			return vmStep{}, err
		}
		b, err := in.B.read(sc, &vm.values)
		if err != nil {
			return vmStep{}, err
		}
		val, err := in.Op.apply(a, b)
		if err != nil {
			return vmStep{}, err
		}
		in.Dst.write(val, sc, &vm.values)

	case Unary:
		a, err := in.Src.read(sc, &vm.values)
		if err != nil {
			return vmStep{}, err
		}
		val, err := in.Op.apply(a)
		if err != nil {
			return vmStep{}, err
		}
		in.Dst.write(val, sc, &vm.values)

	case Jump:
		return vm.jump(in.To)

	case JumpFalse:
		cond, err := in.Cond.read(sc, &vm.values)
		if err != nil {
			return vmStep{}, err
		}
		if !truthy(cond) {
			return vm.jump(in.To)
		}

	case Read:
		line, err := vm.readLine()
		if err != nil {
			return vmStep{}, err
		}
		val, err := parseValue(line)
		if err != nil {
			return vmStep{}, err
		}
		vm.values.push(val)

	case Print:
		val, err := in.Src.read(sc, &vm.values)
		if err != nil {
			return vmStep{}, err
		}
		if err := vm.writeLine(val.String()); err != nil {
			return vmStep{}, err
		}

	case ScopeOut:
		return vm.scopeOut()

	case LabelMark:

	default:
		return vmStep{}, codeError(fmt.Sprintf("%T", code))
	}

	return next(), nil
}

func (vm *VM) scope() scope { return vm.scopes[len(vm.scopes)-1] }

func (vm *VM) jump(to Label) (vmStep, error) {
	pc, err := vm.labels.lookup(to)
	if err != nil {
		return vmStep{}, err
	}
	return jump(pc), nil
}

// call pushes the return point and a fresh scope, then jumps to the callee.
func (vm *VM) call(to Label) (vmStep, error) {
	pc, err := vm.labels.lookup(to)
	if err != nil {
		return vmStep{}, err
	}
	if lim := vm.callLimit; lim > 0 && len(vm.calls)-1 >= lim {
		return vmStep{}, callLimitError(lim)
	}
	vm.calls = append(vm.calls, vm.pc+1)
	vm.scopes = append(vm.scopes, make(scope))
	return jump(pc), nil
}

// scopeOut pops the current scope. Leaving the top level scope ends the run
// with the top of the value stack; any other scope returns to its caller.
func (vm *VM) scopeOut() (vmStep, error) {
	if len(vm.scopes) == 1 {
		vm.scopes = vm.scopes[:0]
		val, err := vm.values.pop()
		if err != nil {
			return vmStep{}, err
		}
		return done(val), nil
	}

	vm.scopes[len(vm.scopes)-1] = nil
	vm.scopes = vm.scopes[:len(vm.scopes)-1]
	i := len(vm.calls) - 1
	if i < 0 {
		return vmStep{}, errNoCallFrame
	}
	pc := vm.calls[i]
	vm.calls = vm.calls[:i]
	vm.logf("<", "return @%v", pc)
	return jump(pc), nil
}
