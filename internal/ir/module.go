package ir

import (
	"strings"

	"github.com/pkg/errors"
)

// FuncBlock is one function's IR: the FUNBEG header (operands mutated by
// the allocator to record frame size and array-area offset), the FUNEND
// footer, the function's name and arity, and the full instruction slice
// bracketed by the two (FUNBEG and FUNEND included).
type FuncBlock struct {
	Name  string
	Index int // position within the module's function vector
	Arity int
	Begin Handle
	End   Handle
	Instrs []Handle
}

// Module is a list of non-function IR instructions (global data
// directives) plus an ordered vector of function blocks, the lowering
// pass's final product and the CFG/allocator/emitter passes' input.
type Module struct {
	Globals []Handle
	Funcs   []*FuncBlock
}

// Split partitions a flat builder instruction list into a Module,
// separating global data directives from the FUNBEG/FUNEND-bracketed
// per-function runs. It is the one place outside Builder that changes
// "where" instructions live without changing the instructions themselves.
func Split(list []Handle) (*Module, error) {
	m := &Module{}
	i := 0
	for i < len(list) {
		in := list[i]
		switch in.Op {
		case OpGBSS, OpGINI:
			m.Globals = append(m.Globals, in)
			i++
		case OpFUNBEG:
			fb, next, err := splitFunc(list, i)
			if err != nil {
				return nil, err
			}
			fb.Index = len(m.Funcs)
			m.Funcs = append(m.Funcs, fb)
			i = next
		default:
			return nil, errors.Errorf("ir: unexpected top-level instruction %s outside any function", in.Op)
		}
	}
	return m, nil
}

// splitFunc consumes the FUNBEG at list[start] through its matching
// FUNEND, returning the FuncBlock and the index just past FUNEND.
func splitFunc(list []Handle, start int) (*FuncBlock, int, error) {
	begin := list[start]
	name := begin.A0.NameVal()
	arity := int(begin.A1.ImmVal())
	for j := start + 1; j < len(list); j++ {
		if list[j].Op == OpFUNBEG {
			return nil, 0, errors.Errorf("ir: nested FUNBEG inside function %q", name)
		}
		if list[j].Op == OpFUNEND {
			return &FuncBlock{
				Name:   name,
				Arity:  arity,
				Begin:  begin,
				End:    list[j],
				Instrs: list[start : j+1],
			}, j + 1, nil
		}
	}
	return nil, 0, errors.Errorf("ir: function %q missing matching FUNEND", name)
}

// Dump renders m as plain text, one instruction per line, for the
// driver's optional IR dump file. It reflects whatever state the module
// is in when called: post-allocation it shows the patched FUNBEG operands,
// LARRAY in place of ALLOC and the spliced LOADFP/STOREFP instructions.
// Operands are always printed as virtual variables; the registers the
// allocator records in Instr.Reg are not printed.
func (m *Module) Dump() string {
	var sb strings.Builder
	for _, g := range m.Globals {
		sb.WriteString(g.String())
		sb.WriteByte('\n')
	}
	for _, fb := range m.Funcs {
		for _, in := range fb.Instrs {
			sb.WriteString(in.String())
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
