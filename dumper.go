package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/jcorbin/scopevm/internal/runeio"
)

// vmDumper writes a listing of machine state and program, rendering any
// control characters in texts visibly.
type vmDumper struct {
	vm  *VM
	out io.Writer

	addrWidth int
}

func (dump vmDumper) dump() {
	fmt.Fprintf(dump.out, "# VM Dump\n")
	fmt.Fprintf(dump.out, "  pc: %v\n", dump.vm.pc)
	fmt.Fprintf(dump.out, "  values: %v\n", runeio.Visible(formatValues(dump.vm.values)))
	fmt.Fprintf(dump.out, "  calls: %v\n", dump.vm.calls)

	dump.dumpScopes()
	dump.dumpProg()
}

func (dump *vmDumper) dumpScopes() {
	fmt.Fprintf(dump.out, "# Scopes\n")
	for i, sc := range dump.vm.scopes {
		fmt.Fprintf(dump.out, "  [%v]", i)
		names := make([]string, 0, len(sc))
		for name := range sc {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(dump.out, " %v=%v", name, runeio.Visible(quoteValue(sc[name])))
		}
		io.WriteString(dump.out, "\n")
	}
}

func (dump *vmDumper) dumpProg() {
	fmt.Fprintf(dump.out, "# Program\n")
	if dump.addrWidth == 0 {
		dump.addrWidth = len(strconv.Itoa(len(dump.vm.prog))) + 1
	}
	for addr, code := range dump.vm.prog {
		mark := ' '
		if addr == dump.vm.pc {
			mark = '>'
		}
		fmt.Fprintf(dump.out, "%c @% *v %v", mark, dump.addrWidth, addr, runeio.Visible(fmt.Sprint(code)))
		if lm, ok := code.(LabelMark); ok {
			if first, err := dump.vm.labels.lookup(lm.Name); err == nil && first != addr {
				fmt.Fprintf(dump.out, " (shadowed by @%v)", first)
			}
		}
		io.WriteString(dump.out, "\n")
	}
}

func formatValues(values []Value) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, val := range values {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(quoteValue(val))
	}
	sb.WriteByte(']')
	return sb.String()
}
