package regalloc

import (
	"riscvc/internal/cfg"
	"riscvc/internal/ir"
)

// state tracks one function's allocation bookkeeping across the single
// pass over its blocks.
type state struct {
	boundReg map[ir.Var]int
	boundVar map[int]ir.Var
	rr       int // rotating index into pool for deterministic victim selection

	spillOffset map[ir.Var]int // var -> distance below fp, starts at 8
	nextSpill   int

	arrayOffset int // running offset within the local-array area

	pendingStore ir.Handle // set by spillOne, consumed by allocateBlock
}

func newState() *state {
	return &state{
		boundReg:    make(map[ir.Var]int),
		boundVar:    make(map[int]ir.Var),
		spillOffset: make(map[ir.Var]int),
		nextSpill:   8,
	}
}

// Allocate rewrites fn's IR in place: every variable operand gets a
// concrete register recorded in Instr.Reg, LOADFP/STOREFP instructions are
// spliced in for materialization and spilling, ALLOC becomes LARRAY, and
// the function's FUNBEG is patched with the final frame size and
// array-area base offset.
func Allocate(fn *cfg.Function) {
	s := newState()

	var full []ir.Handle
	full = append(full, fn.Src.Begin)
	for _, b := range fn.Blocks {
		allocateBlock(s, b)
		full = append(full, b.Instrs...)
	}
	full = append(full, fn.Src.End)
	fn.Src.Instrs = full

	spillBytes := s.nextSpill - 8
	frameSize := 8 + spillBytes + s.arrayOffset
	arrayBase := 8 + spillBytes

	fn.Src.Begin.A1 = ir.Imm(int64(frameSize))
	fn.Src.Begin.A2 = ir.Imm(int64(arrayBase))
}

// allocateBlock processes one block's instructions in order, splicing
// LOADFP materializations and STOREFP spills into a freshly built
// replacement slice which becomes the block's instruction list.
func allocateBlock(s *state, b *cfg.Block) {
	var out []ir.Handle
	for i, in := range b.Instrs {
		live := b.LiveEntering[i]
		scratch := 0 // how many of [ScratchA, ScratchB] have been used so far

		if in.Op == ir.OpALLOC {
			v := in.A0.VarVal()
			bytes := int(in.A1.ImmVal())
			offset := s.arrayOffset
			s.arrayOffset += bytes
			in.Op = ir.OpLARRAY
			in.A1 = ir.Imm(int64(offset))
			reg := s.allocateWrite(v, live)
			if s.pendingStore != nil {
				out = append(out, s.pendingStore)
				s.pendingStore = nil
			}
			in.Reg[0] = reg
			out = append(out, in)
			continue
		}

		operands := [3]ir.Addr{in.A0, in.A1, in.A2}
		for slot, a := range operands {
			if !a.IsVar() || isWriteSlot(in.Op, slot) {
				continue
			}
			v := a.VarVal()
			if reg, ok := s.boundReg[v]; ok {
				in.Reg[slot] = reg
				continue
			}
			scratchReg := ScratchA
			if scratch == 1 {
				scratchReg = ScratchB
			}
			scratch++
			out = append(out, materializeRead(v, scratchReg, s))
			in.Reg[slot] = scratchReg
		}

		if w, ok := ir.Writes(in); ok {
			reg := s.allocateWrite(w, live)
			if s.pendingStore != nil {
				out = append(out, s.pendingStore)
				s.pendingStore = nil
			}
			in.Reg[0] = reg
		}

		out = append(out, in)
	}
	b.Instrs = out
}

// isWriteSlot reports whether operand slot of an instruction with opcode
// op is a write target rather than a read, so the read-materialization
// loop above skips it. Every opcode in the IR set writes at most a0.
func isWriteSlot(op ir.Op, slot int) bool {
	if slot != 0 {
		return false
	}
	switch op {
	case ir.OpMOV, ir.OpNEG, ir.OpNOT, ir.OpLNOT,
		ir.OpMUL, ir.OpDIV, ir.OpREM, ir.OpADD, ir.OpSUB,
		ir.OpLT, ir.OpGT, ir.OpLE, ir.OpGE, ir.OpEQ, ir.OpNE, ir.OpLAND, ir.OpLOR,
		ir.OpCALL, ir.OpLA, ir.OpLOAD, ir.OpALLOC, ir.OpLARRAY, ir.OpLOADFP:
		return true
	}
	return false
}

// materializeRead emits the LOADFP that brings variable v into scratch
// register reg, reading from v's parameter offset or spill offset,
// whichever applies.
func materializeRead(v ir.Var, reg int, s *state) ir.Handle {
	var offset int64
	if v.IsParam() {
		offset = int64(4 * v.ParamOrdinal())
	} else {
		offset = -int64(s.spillOffset[v])
	}
	return &ir.Instr{Op: ir.OpLOADFP, A0: ir.VarAddr(v), A1: ir.Imm(offset), Reg: [3]int{reg, -1, -1}}
}

// allocateWrite resolves the destination register for a write to v: reuse
// its existing binding if bound, else prune dead bindings and allocate a
// free register, else spill a deterministically-chosen victim. On a spill
// path it leaves the preserving STOREFP in s.pendingStore for the caller
// to splice in ahead of the instruction being processed.
func (s *state) allocateWrite(v ir.Var, live map[ir.Var]bool) int {
	if reg, ok := s.boundReg[v]; ok {
		return reg
	}
	s.pruneDead(live)
	if reg, ok := s.freeRegister(); ok {
		s.bind(v, reg)
		return reg
	}
	return s.spillOne(v)
}

// pruneDead releases every pool register whose bound variable is not in
// the live-entering set for the instruction currently being processed.
func (s *state) pruneDead(live map[ir.Var]bool) {
	for reg, v := range s.boundVar {
		if !live[v] {
			delete(s.boundVar, reg)
			delete(s.boundReg, v)
		}
	}
}

func (s *state) freeRegister() (int, bool) {
	for _, r := range pool {
		if _, used := s.boundVar[r]; !used {
			return r, true
		}
	}
	return 0, false
}

func (s *state) bind(v ir.Var, reg int) {
	s.boundReg[v] = reg
	s.boundVar[reg] = v
}

// spillOne evicts a deterministically-chosen victim register (round-robin
// over the pool only, fixing the known bug of cycling through reserved
// registers too) and binds reg to v, returning the register.
func (s *state) spillOne(v ir.Var) int {
	var victimReg int
	var victim ir.Var
	for {
		cand := pool[s.rr%len(pool)]
		s.rr++
		if vv, used := s.boundVar[cand]; used {
			victimReg = cand
			victim = vv
			break
		}
	}

	if !victim.IsParam() {
		offset := s.nextSpill
		s.nextSpill += 4
		s.spillOffset[victim] = offset
		s.pendingStore = &ir.Instr{
			Op: ir.OpSTOREFP, A0: ir.VarAddr(victim), A1: ir.Imm(-int64(offset)),
			Reg: [3]int{victimReg, -1, -1},
		}
	}
	// If victim is a parameter, its incoming-argument slot already holds
	// the value; no store needed to preserve it.

	delete(s.boundVar, victimReg)
	delete(s.boundReg, victim)
	s.bind(v, victimReg)
	return victimReg
}
