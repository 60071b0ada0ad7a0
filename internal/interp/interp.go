// Package interp is a test-only tree-walking interpreter for the
// three-address IR, letting the test suite check a program's observable
// behaviour (its return-driven exit status) without an external RISC-V
// assembler or simulator. It runs directly against ir.Var identities of
// unallocated IR; the instructions register allocation introduces
// (LARRAY, LOADFP, STOREFP) are rejected with an error.
package interp

import (
	"riscvc/internal/ir"

	"github.com/pkg/errors"
)

// memory is the flat address space backing globals and local arrays.
// Addresses are interpreter-internal integers with no relation to any
// real target layout; only self-consistency with the program's own
// pointer arithmetic matters.
type memory struct {
	cells map[int64]int32
	next  int64
}

func newMemory() *memory {
	return &memory{cells: map[int64]int32{}, next: 0}
}

func (m *memory) load(addr int64) int32    { return m.cells[addr] }
func (m *memory) store(addr int64, v int32) { m.cells[addr] = v }

// reserve carves out a fresh region of at least n bytes and returns its
// base address, growing the address space downward so that local-array
// negative-offset arithmetic (lower.go's "grows toward lower addresses")
// never collides with an earlier allocation.
func (m *memory) reserve(n int64) int64 {
	base := m.next
	m.next -= n + 64
	return base
}

// Machine holds the interpreter's whole-program state: the lowered
// module, each global's assigned address, and the shared memory arena.
type Machine struct {
	mod     *ir.Module
	mem     *memory
	globals map[string]int64
	funcs   map[string]*ir.FuncBlock
}

// New builds a Machine for mod, assigning every global an address and
// indexing functions by name for CALL dispatch.
func New(mod *ir.Module) *Machine {
	m := &Machine{mod: mod, mem: newMemory(), globals: map[string]int64{}, funcs: map[string]*ir.FuncBlock{}}
	for _, g := range mod.Globals {
		name := g.A0.NameVal()
		size := int64(4)
		if g.Op == ir.OpGBSS {
			size = g.A1.ImmVal()
		}
		addr := m.mem.reserve(size)
		if g.Op == ir.OpGBSS {
			// Global arrays are indexed upward from their address (lower.go
			// adds the byte offset), so the address is placed at the low
			// end of the reserved region.
			addr -= size - 4
		}
		m.globals[name] = addr
		if g.Op == ir.OpGINI {
			m.mem.store(addr, int32(g.A1.ImmVal()))
		}
	}
	for _, fb := range mod.Funcs {
		m.funcs[fb.Name] = fb
	}
	return m
}

// frame is one active call's local-variable bindings.
type frame struct {
	locals map[ir.Var]int32
}

func newFrame() *frame { return &frame{locals: map[ir.Var]int32{}} }

// Run executes function name with the given argument values and returns
// its RET value, the exit status a target "return" from main would
// produce.
func (m *Machine) Run(name string, args []int32) (int32, error) {
	fb, ok := m.funcs[name]
	if !ok {
		return 0, errors.Errorf("interp: unknown function %q", name)
	}
	return m.call(fb, args)
}

func (m *Machine) call(fb *ir.FuncBlock, args []int32) (int32, error) {
	fr := newFrame()
	for i, a := range args {
		fr.locals[ir.NewParam(i+1)] = a
	}

	body := fb.Instrs[1 : len(fb.Instrs)-1] // drop FUNBEG, FUNEND
	labels := map[int64]int{}
	for i, in := range body {
		if in.Op == ir.OpLABEL {
			labels[in.A0.ImmVal()] = i
		}
	}

	var pendingParams []int32
	pc := 0
	for pc < len(body) {
		in := body[pc]
		switch in.Op {
		case ir.OpLABEL:
			// no-op at runtime

		case ir.OpJMP:
			pc = labels[in.A0.ImmVal()]
			continue

		case ir.OpBEQZ:
			if m.read(fr, in.A0) == 0 {
				pc = labels[in.A1.ImmVal()]
				continue
			}

		case ir.OpRET:
			return m.read(fr, in.A0), nil

		case ir.OpMOV:
			m.write(fr, in.A0, m.read(fr, in.A1))

		case ir.OpNEG:
			m.write(fr, in.A0, -m.read(fr, in.A1))
		case ir.OpNOT:
			m.write(fr, in.A0, ^m.read(fr, in.A1))
		case ir.OpLNOT:
			m.write(fr, in.A0, boolInt(m.read(fr, in.A1) == 0))

		case ir.OpADD, ir.OpSUB, ir.OpMUL, ir.OpDIV, ir.OpREM,
			ir.OpLT, ir.OpGT, ir.OpLE, ir.OpGE, ir.OpEQ, ir.OpNE, ir.OpLAND, ir.OpLOR:
			a, b := m.read(fr, in.A1), m.read(fr, in.A2)
			v, err := binary(in.Op, a, b)
			if err != nil {
				return 0, err
			}
			m.write(fr, in.A0, v)

		case ir.OpLA:
			addr, ok := m.globals[in.A1.NameVal()]
			if !ok {
				return 0, errors.Errorf("interp: unknown global %q", in.A1.NameVal())
			}
			m.write(fr, in.A0, int32(addr))

		case ir.OpLOAD:
			addr := int64(m.read(fr, in.A1)) + in.A2.ImmVal()
			m.write(fr, in.A0, m.mem.load(addr))

		case ir.OpSTORE:
			addr := int64(m.read(fr, in.A1)) + in.A2.ImmVal()
			m.mem.store(addr, m.read(fr, in.A0))

		case ir.OpALLOC:
			base := m.mem.reserve(in.A1.ImmVal())
			m.write(fr, in.A0, int32(base))

		case ir.OpLARRAY:
			// Only appears after register allocation; this interpreter always
			// runs pre-allocation IR, so ALLOC already assigned the address.
			return 0, errors.New("interp: unexpected LARRAY in unallocated IR")

		case ir.OpPARAM:
			pendingParams = append(pendingParams, m.read(fr, in.A0))

		case ir.OpCALL:
			callee, ok := m.funcs[in.A1.NameVal()]
			if !ok {
				return 0, errors.Errorf("interp: call to unknown function %q", in.A1.NameVal())
			}
			ret, err := m.call(callee, pendingParams)
			if err != nil {
				return 0, err
			}
			pendingParams = nil
			m.write(fr, in.A0, ret)

		default:
			return 0, errors.Errorf("interp: unsupported instruction %s in interpreted IR", in.Op)
		}
		pc++
	}
	return 0, errors.Errorf("interp: function %q fell off its end without a RET", fb.Name)
}

func (m *Machine) read(fr *frame, a ir.Addr) int32 {
	if a.IsImm() {
		return int32(a.ImmVal())
	}
	return fr.locals[a.VarVal()]
}

func (m *Machine) write(fr *frame, a ir.Addr, v int32) {
	fr.locals[a.VarVal()] = v
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

func binary(op ir.Op, a, b int32) (int32, error) {
	switch op {
	case ir.OpADD:
		return a + b, nil
	case ir.OpSUB:
		return a - b, nil
	case ir.OpMUL:
		return a * b, nil
	case ir.OpDIV:
		if b == 0 {
			return 0, errors.New("interp: division by zero")
		}
		return a / b, nil
	case ir.OpREM:
		if b == 0 {
			return 0, errors.New("interp: division by zero")
		}
		return a % b, nil
	case ir.OpLT:
		return boolInt(a < b), nil
	case ir.OpGT:
		return boolInt(a > b), nil
	case ir.OpLE:
		return boolInt(a <= b), nil
	case ir.OpGE:
		return boolInt(a >= b), nil
	case ir.OpEQ:
		return boolInt(a == b), nil
	case ir.OpNE:
		return boolInt(a != b), nil
	case ir.OpLAND:
		return boolInt(a != 0 && b != 0), nil
	case ir.OpLOR:
		return boolInt(a != 0 || b != 0), nil
	default:
		return 0, errors.Errorf("interp: unsupported binary op %s", op)
	}
}
