package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jcorbin/scopevm/internal/fileinput"
	"github.com/jcorbin/scopevm/internal/logio"
)

type vmTestCases []vmTestCase

func (vmts vmTestCases) run(t *testing.T) {
	{
		var exclusive []vmTestCase
		for _, vmt := range vmts {
			if vmt.exclusive {
				exclusive = append(exclusive, vmt)
			}
		}
		if len(exclusive) > 0 {
			vmts = exclusive
		}
	}
	for _, vmt := range vmts {
		if !t.Run(vmt.name, vmt.run) {
			return
		}
	}
}

func vmTest(name string) (vmt vmTestCase) {
	vmt.name = name
	return vmt
}

type optFunc func(vm *VM)

func (f optFunc) apply(vm *VM) { f(vm) }

type vmTestCase struct {
	name      string
	opts      []interface{}
	source    []string
	prog      Program
	state     []func(vm *VM)
	expect    []func(t *testing.T, vm *VM, result Value)
	timeout   time.Duration
	wantErr   error
	wantErrAs interface{}

	exclusive   bool
	nextInputID int
}

func (vmt vmTestCase) apply(wraps ...func(vmTestCase) vmTestCase) vmTestCase {
	for _, wrap := range wraps {
		vmt = wrap(vmt)
	}
	return vmt
}

func (vmt vmTestCase) exclusiveTest() vmTestCase {
	vmt.exclusive = true
	return vmt
}

func (vmt vmTestCase) withOptions(opts ...VMOption) vmTestCase {
	for _, opt := range opts {
		vmt.opts = append(vmt.opts, opt)
	}
	return vmt
}

// withSource sets assembly source lines to run, assembled when the test runs.
func (vmt vmTestCase) withSource(lines ...string) vmTestCase {
	vmt.source = append(vmt.source, lines...)
	return vmt
}

// withMain is like withSource, but starts with the default entry label.
func (vmt vmTestCase) withMain(lines ...string) vmTestCase {
	return vmt.withSource(append([]string{"lbl " + string(mainLabel)}, lines...)...)
}

func (vmt vmTestCase) withProgram(prog ...Instruction) vmTestCase {
	vmt.prog = append(vmt.prog, prog...)
	return vmt
}

// The with-state methods below set up machine state directly; a test that
// uses any of them skips entry discovery, executing from pc 0 unless set.

func (vmt vmTestCase) withPC(pc int) vmTestCase {
	vmt.state = append(vmt.state, func(vm *VM) {
		vm.pc = pc
	})
	return vmt
}

func (vmt vmTestCase) withValues(values ...Value) vmTestCase {
	vmt.state = append(vmt.state, func(vm *VM) {
		vm.values = append(vm.values, values...)
	})
	return vmt
}

func (vmt vmTestCase) withCalls(pcs ...int) vmTestCase {
	vmt.state = append(vmt.state, func(vm *VM) {
		vm.calls = append(vm.calls, pcs...)
	})
	return vmt
}

// withScope pushes a new innermost scope, binding name/value pairs.
func (vmt vmTestCase) withScope(nameValuePairs ...interface{}) vmTestCase {
	if len(nameValuePairs)%2 == 1 {
		panic("must be given variadic pairs")
	}
	vmt.state = append(vmt.state, func(vm *VM) {
		sc := make(scope, len(nameValuePairs)/2)
		for i := 0; i < len(nameValuePairs); i += 2 {
			sc[nameValuePairs[i].(string)] = nameValuePairs[i+1].(Value)
		}
		vm.scopes = append(vm.scopes, sc)
	})
	return vmt
}

func (vmt vmTestCase) withInput(input string) vmTestCase {
	vmt.opts = append(vmt.opts, func(vmt *vmTestCase, t *testing.T) VMOption {
		name := t.Name() + "/input"
		if id := vmt.nextInputID; id > 0 {
			name += "_" + strconv.Itoa(id+1)
		}
		vmt.nextInputID++
		return WithInput(fileinput.Named(name, strings.NewReader(input)))
	})
	return vmt
}

func (vmt vmTestCase) withTimeout(timeout time.Duration) vmTestCase {
	vmt.timeout = timeout
	return vmt
}

func (vmt vmTestCase) expectError(err error) vmTestCase {
	vmt.wantErr = err
	return vmt
}

// expectErrorAs expects an error assignable to target, which must be a
// non-nil pointer as taken by errors.As.
func (vmt vmTestCase) expectErrorAs(target interface{}) vmTestCase {
	vmt.wantErrAs = target
	return vmt
}

func (vmt vmTestCase) expectResult(value Value) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM, result Value) {
		assert.Equal(t, value, result, "expected result")
	})
	return vmt
}

func (vmt vmTestCase) expectPC(pc int) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM, _ Value) {
		assert.Equal(t, pc, vm.pc, "expected program counter")
	})
	return vmt
}

func (vmt vmTestCase) expectValues(values ...Value) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM, _ Value) {
		if values == nil {
			values = []Value{}
		}
		got := []Value(vm.values)
		if got == nil {
			got = []Value{}
		}
		assert.Equal(t, values, got, "expected stack values")
	})
	return vmt
}

func (vmt vmTestCase) expectCalls(pcs ...int) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM, _ Value) {
		if pcs == nil {
			pcs = []int{}
		}
		got := vm.calls
		if got == nil {
			got = []int{}
		}
		assert.Equal(t, pcs, got, "expected call stack")
	})
	return vmt
}

func (vmt vmTestCase) expectScopeDepth(depth int) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM, _ Value) {
		assert.Equal(t, depth, len(vm.scopes), "expected scope depth")
	})
	return vmt
}

// expectVar expects a binding in the innermost scope.
func (vmt vmTestCase) expectVar(name string, value Value) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM, _ Value) {
		if assert.NotEmpty(t, vm.scopes, "expected a scope") {
			assert.Equal(t, value, vm.scope()[name], "expected %v value", name)
		}
	})
	return vmt
}

func (vmt vmTestCase) expectOutput(output string) vmTestCase {
	var out strings.Builder
	vmt.opts = append(vmt.opts, WithOutput(&out))
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM, _ Value) {
		assert.Equal(t, output, out.String(), "expected output")
	})
	return vmt
}

func (vmt vmTestCase) expectDump(dump string) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM, _ Value) {
		var out strings.Builder
		vmDumper{
			vm:  vm,
			out: &out,
		}.dump()
		assert.Equal(t, dump, out.String(), "expected dump")
	})
	return vmt
}

func (vmt vmTestCase) withTestOutput() vmTestCase {
	vmt.opts = append(vmt.opts, func(vmt *vmTestCase, t *testing.T) VMOption {
		return WithTee(&logio.Writer{Logf: func(mess string, args ...interface{}) {
			t.Logf("out: "+mess, args...)
		}})
	})
	return vmt
}

func (vmt vmTestCase) run(t *testing.T) {
	defer func(then time.Time) {
		label := "PASS"
		if t.Failed() {
			label = "FAIL"
		}
		t.Logf("%v\t%v\t%v", label, t.Name(), time.Since(then))
	}(time.Now())

	prog := vmt.buildProg(t)
	vm := vmt.buildVM(t)

	// trace into memory, only shown on failure
	var trace []string
	WithLogf(func(mess string, args ...interface{}) {
		trace = append(trace, fmt.Sprintf(mess, args...))
	}).apply(vm)
	defer func() {
		if t.Failed() {
			for _, line := range trace {
				t.Log(line)
			}
		}
	}()

	vmt.runVMTest(context.Background(), t, vm, prog)
}

func (vmt vmTestCase) runVMTest(ctx context.Context, t *testing.T, vm *VM, prog Program) {
	const defaultTimeout = time.Second
	timeout := vmt.timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	defer func() {
		if t.Failed() {
			vmt.dumpToTest(t, vm)
		}
	}()

	result, err := vmt.runVM(ctx, vm, prog)
	switch {
	case vmt.wantErr != nil:
		assert.True(t, errors.Is(err, vmt.wantErr), "expected error: %v\ngot: %+v", vmt.wantErr, err)
	case vmt.wantErrAs != nil:
		assert.True(t, errors.As(err, vmt.wantErrAs), "expected error of type %T\ngot: %+v", vmt.wantErrAs, err)
	default:
		assert.NoError(t, err, "unexpected VM run error")
	}

	if !t.Failed() {
		for _, expect := range vmt.expect {
			expect(t, vm, result)
		}
	}
}

func (vmt vmTestCase) runVM(ctx context.Context, vm *VM, prog Program) (_ Value, rerr error) {
	defer func() {
		if err := vm.Close(); err != nil && rerr == nil {
			rerr = fmt.Errorf("vm.Close failed: %w", err)
		}
	}()

	if len(vmt.state) == 0 {
		return vm.Run(ctx, prog)
	}

	vm.reset(prog)
	vm.scopes = vm.scopes[:0]
	for _, state := range vmt.state {
		state(vm)
	}
	if len(vm.scopes) == 0 {
		vm.scopes = append(vm.scopes, make(scope))
	}
	defer vm.flush()
	return vm.exec(ctx)
}

func (vmt vmTestCase) buildProg(t *testing.T) Program {
	if len(vmt.source) == 0 {
		return vmt.prog
	}
	src := strings.Join(vmt.source, "\n") + "\n"
	prog, err := Assemble(fileinput.Named(t.Name()+"/source", strings.NewReader(src)))
	if err != nil {
		t.Fatalf("test source failed to assemble: %v", err)
	}
	return append(prog, vmt.prog...)
}

func (vmt vmTestCase) buildVM(t *testing.T) *VM {
	var opt VMOption
	for _, o := range vmt.opts {
		switch impl := o.(type) {
		case func(vmt *vmTestCase, t *testing.T) VMOption:
			opt = VMOptions(opt, impl(&vmt, t))
		case VMOption:
			opt = VMOptions(opt, impl)
		default:
			t.Logf("unsupported vmTestCase opt type %T", o)
			t.FailNow()
		}
	}
	return New(opt)
}

func (vmt vmTestCase) dumpToTest(t *testing.T, vm *VM) {
	lw := logio.Writer{Logf: t.Logf}
	defer lw.Close()
	vmDumper{vm: vm, out: &lw}.dump()
}

//// utilities

func lines(parts ...string) string {
	return strings.Join(parts, "\n") + "\n"
}
