package main

import (
	"context"
	"io"

	"github.com/jcorbin/scopevm/internal/panicerr"
)

// New creates a VM, applying the default options and then opts.
func New(opts ...VMOption) *VM {
	var vm VM
	defaultOptions.apply(&vm)
	VMOptions(opts...).apply(&vm)
	return &vm
}

// Run executes prog from its entry label until a top level scope exit, and
// returns the value popped by that exit. Any error ends the run; pending
// output is flushed either way.
func (vm *VM) Run(ctx context.Context, prog Program) (result Value, rerr error) {
	defer func() {
		if err := vm.flush(); rerr == nil {
			rerr = err
		}
	}()
	err := panicerr.Recover("VM", func() (err error) {
		result, err = vm.run(ctx, prog)
		return err
	})
	if err != nil {
		vm.logf("#", "halt error: %v", err)
		return nil, err
	}
	return result, nil
}

// WithInput sets the stream read instructions read lines from.
func WithInput(r io.Reader) VMOption { return withInput(r) }

// WithLineReader sets a line source for read instructions, like an
// interactive prompt.
func WithLineReader(lr LineReader) VMOption { return withLineReader(lr) }

// WithOutput sets the stream print instructions write to.
func WithOutput(w io.Writer) VMOption { return withOutput(w) }

// WithTee copies output to w in addition to the current output.
func WithTee(w io.Writer) VMOption { return withTee(w) }

// WithEntryLabel sets the label where execution starts, $$Function__main_$$
// by default.
func WithEntryLabel(label Label) VMOption { return withEntryLabel(label) }

// WithCallLimit bounds the depth of nested calls below the entry routine; 0
// means unbounded.
func WithCallLimit(limit int) VMOption { return withCallLimit(limit) }

// WithLogf sets a function to trace execution through.
func WithLogf(logfn func(mess string, args ...interface{})) VMOption { return withLogfn(logfn) }
