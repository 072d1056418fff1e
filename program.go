package main

// Program is an ordered sequence of instructions addressed by index. A
// program is never modified while it runs.
type Program []Instruction

// mainLabel marks the routine where execution begins.
const mainLabel Label = "$$Function__main_$$"

func (prog Program) fetch(pc int) (Instruction, error) {
	if pc < 0 || pc >= len(prog) {
		return nil, progError(pc)
	}
	return prog[pc], nil
}

// labels maps label names to the index of their marker instruction.
type labels struct {
	index map[Label]int
}

// indexLabels scans prog in order; when a label is marked more than once,
// its first mark wins.
func indexLabels(prog Program) (ls labels) {
	for pc, code := range prog {
		if mark, ok := code.(LabelMark); ok {
			ls.mark(mark.Name, pc)
		}
	}
	return ls
}

func (ls *labels) mark(name Label, pc int) {
	if _, defined := ls.index[name]; defined {
		return
	}
	if ls.index == nil {
		ls.index = make(map[Label]int)
	}
	ls.index[name] = pc
}

func (ls labels) lookup(name Label) (int, error) {
	if pc, defined := ls.index[name]; defined {
		return pc, nil
	}
	return 0, labelError(name)
}
