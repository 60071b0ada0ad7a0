package emit

import (
	"riscvc/internal/ir"
	"riscvc/internal/regalloc"
)

// emitFunction emits one function's prologue, body, and epilogue. Frame
// size and array-area base are read from the allocator's patched FUNBEG
// operands.
func (e *emitter) emitFunction(fb *ir.FuncBlock) {
	e.fnName = fb.Name
	e.fnIndex = fb.Index
	e.arrayBase = fb.Begin.A2.ImmVal()
	e.outgoing = 0

	frame := fb.Begin.A1.ImmVal()

	e.w.Directive(".global %s", fb.Name)
	e.w.Label(fb.Name)
	e.emitPrologue(frame)

	body := fb.Instrs[1 : len(fb.Instrs)-1]
	for _, in := range body {
		e.emitInstr(in, frame)
	}

	e.w.Label(fb.Name + "_epilogue")
	e.emitEpilogue(frame)
}

func (e *emitter) emitPrologue(frame int64) {
	sp, ra, fp := regalloc.RegName(regalloc.X2), regalloc.RegName(regalloc.X1), regalloc.RegName(regalloc.X8)
	e.w.Ins2imm("addi", sp, sp, -frame)
	e.w.LoadStore("sw", ra, frame-4, sp)
	e.w.LoadStore("sw", fp, frame-8, sp)
	e.w.Ins2imm("addi", fp, sp, frame)
}

func (e *emitter) emitEpilogue(frame int64) {
	sp, ra, fp := regalloc.RegName(regalloc.X2), regalloc.RegName(regalloc.X1), regalloc.RegName(regalloc.X8)
	e.w.LoadStore("lw", ra, frame-4, sp)
	e.w.LoadStore("lw", fp, frame-8, sp)
	e.w.Ins2imm("addi", sp, sp, frame)
	e.w.Ins0("ret")
}

// emitInstr dispatches a single IR instruction to its assembly rendering.
func (e *emitter) emitInstr(in *ir.Instr, frame int64) {
	switch in.Op {
	case ir.OpLABEL:
		e.w.Label(e.label(in.A0.ImmVal()))
	case ir.OpJMP:
		e.w.Ins1("j", e.label(in.A0.ImmVal()))
	case ir.OpBEQZ:
		e.emitBEQZ(in)
	case ir.OpRET:
		e.emitRet(in)
	case ir.OpMOV:
		e.emitMov(in)
	case ir.OpNEG:
		e.w.Ins2("neg", regOf(in, 0), e.readReg(in, 1, regalloc.ScratchA))
	case ir.OpNOT:
		e.w.Ins2("not", regOf(in, 0), e.readReg(in, 1, regalloc.ScratchA))
	case ir.OpLNOT:
		e.w.Ins2("seqz", regOf(in, 0), e.readReg(in, 1, regalloc.ScratchA))
	case ir.OpADD, ir.OpSUB, ir.OpMUL, ir.OpDIV, ir.OpREM, ir.OpLT, ir.OpGT:
		e.emitSimpleBinary(in)
	case ir.OpLE, ir.OpGE, ir.OpEQ, ir.OpNE, ir.OpLAND, ir.OpLOR:
		e.emitCompositeBinary(in)
	case ir.OpPARAM:
		e.emitParam(in)
	case ir.OpCALL:
		e.emitCall(in)
	case ir.OpLA:
		e.w.Ins2("la", regOf(in, 0), in.A1.NameVal())
	case ir.OpLOAD:
		e.w.LoadStore("lw", regOf(in, 0), in.A2.ImmVal(), e.readReg(in, 1, regalloc.ScratchA))
	case ir.OpSTORE:
		base := e.readReg(in, 1, regalloc.ScratchA)
		val := e.readReg(in, 0, regalloc.ScratchB)
		e.w.LoadStore("sw", val, in.A2.ImmVal(), base)
	case ir.OpLOADFP:
		e.w.LoadStore("lw", regOf(in, 0), in.A1.ImmVal(), regalloc.RegName(regalloc.X8))
	case ir.OpSTOREFP:
		e.w.LoadStore("sw", regOf(in, 0), in.A1.ImmVal(), regalloc.RegName(regalloc.X8))
	case ir.OpLARRAY:
		total := in.A1.ImmVal() + e.arrayBase
		e.w.Ins2imm("addi", regOf(in, 0), regalloc.RegName(regalloc.X8), -total)
	default:
		panic("emit: unexpected instruction " + in.Op.String())
	}
}
