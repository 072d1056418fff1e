package main

import (
	"io"
	"strings"

	"github.com/jcorbin/scopevm/internal/fileinput"
	"github.com/jcorbin/scopevm/internal/flushio"
)

// VMOption configures a VM when passed to New.
type VMOption interface{ apply(vm *VM) }

var defaultOptions = VMOptions(
	withInput(strings.NewReader("")),
	withOutput(io.Discard),
	withEntryLabel(mainLabel),
)

// VMOptions combines any number of options into one, applied in order; nil
// options are ignored.
func VMOptions(opts ...VMOption) VMOption {
	var all options
	for _, opt := range opts {
		switch impl := opt.(type) {
		case nil:
		case options:
			all = append(all, impl...)
		default:
			all = append(all, opt)
		}
	}
	if len(all) == 1 {
		return all[0]
	}
	return all
}

type options []VMOption

func (opts options) apply(vm *VM) {
	for _, opt := range opts {
		opt.apply(vm)
	}
}

type withLogfn func(mess string, args ...interface{})

func (logfn withLogfn) apply(vm *VM) {
	vm.logfn = logfn
}

type inputOption struct{ io.Reader }
type lineReaderOption struct{ LineReader }
type outputOption struct{ io.Writer }
type teeOption struct{ io.Writer }
type entryLabelOption Label
type callLimitOption int

func withInput(r io.Reader) inputOption             { return inputOption{r} }
func withLineReader(lr LineReader) lineReaderOption { return lineReaderOption{lr} }
func withOutput(w io.Writer) outputOption           { return outputOption{w} }
func withTee(w io.Writer) teeOption                 { return teeOption{w} }
func withEntryLabel(label Label) entryLabelOption   { return entryLabelOption(label) }
func withCallLimit(limit int) callLimitOption       { return callLimitOption(limit) }

func (i inputOption) apply(vm *VM) {
	in := &fileinput.Input{Queue: []io.Reader{i.Reader}}
	vm.in = in
	vm.closers = append(vm.closers, in)
}

func (lr lineReaderOption) apply(vm *VM) {
	vm.in = lr.LineReader
}

func (o outputOption) apply(vm *VM) {
	if vm.out != nil {
		vm.out.Flush()
	}
	vm.out = flushio.NewWriteFlusher(o.Writer)
}

func (o teeOption) apply(vm *VM) {
	vm.out = flushio.WriteFlushers(vm.out, flushio.NewWriteFlusher(o.Writer))
}

func (label entryLabelOption) apply(vm *VM) {
	vm.entry = Label(label)
}

func (lim callLimitOption) apply(vm *VM) {
	vm.callLimit = int(lim)
}
