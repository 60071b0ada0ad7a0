package emit

import (
	"riscvc/internal/ir"
	"riscvc/internal/regalloc"
)

// readReg returns the register name holding operand slot's value: the
// register the allocator assigned if the operand is a variable, or a
// freshly materialized scratch register (loaded via "li") if it is an
// immediate. scratch names which of the two scratch registers to use when
// materialization is needed.
func (e *emitter) readReg(in *ir.Instr, slot int, scratch int) string {
	a := operand(in, slot)
	if a.IsImm() {
		name := regalloc.RegName(scratch)
		e.w.Ins1imm("li", name, a.ImmVal())
		return name
	}
	return regOf(in, slot)
}

// operand returns the Addr at the given slot of in.
func operand(in *ir.Instr, slot int) ir.Addr {
	switch slot {
	case 0:
		return in.A0
	case 1:
		return in.A1
	default:
		return in.A2
	}
}

func (e *emitter) emitMov(in *ir.Instr) {
	dst := regOf(in, 0)
	if in.A1.IsImm() {
		e.w.Ins1imm("li", dst, in.A1.ImmVal())
		return
	}
	e.w.Ins2("mv", dst, regOf(in, 1))
}

func (e *emitter) emitRet(in *ir.Instr) {
	a0 := regalloc.RegName(regalloc.X10) // a0
	if in.A0.IsImm() {
		e.w.Ins1imm("li", a0, in.A0.ImmVal())
	} else {
		e.w.Ins2("mv", a0, regOf(in, 0))
	}
	e.w.Ins1("j", e.fnName+"_epilogue")
}

func (e *emitter) emitBEQZ(in *ir.Instr) {
	cond := e.readReg(in, 0, regalloc.ScratchA)
	e.w.Ins2("beqz", cond, e.label(in.A1.ImmVal()))
}

// emitSimpleBinary emits the opcodes that map directly to one RISC-V
// mnemonic: add/sub/mul/div/rem/slt/sgt.
func (e *emitter) emitSimpleBinary(in *ir.Instr) {
	mnemonic := map[ir.Op]string{
		ir.OpADD: "add", ir.OpSUB: "sub", ir.OpMUL: "mul",
		ir.OpDIV: "div", ir.OpREM: "rem", ir.OpLT: "slt", ir.OpGT: "sgt",
	}[in.Op]
	rs1 := e.readReg(in, 1, regalloc.ScratchA)
	rs2 := e.readReg(in, 2, regalloc.ScratchB)
	e.w.Ins3(mnemonic, regOf(in, 0), rs1, rs2)
}

// emitCompositeBinary emits the multi-instruction expansions of §4.5's
// composite mapping table for LE/GE/EQ/NE/LAND/LOR.
func (e *emitter) emitCompositeBinary(in *ir.Instr) {
	rd := regOf(in, 0)
	rs1 := e.readReg(in, 1, regalloc.ScratchA)
	rs2 := e.readReg(in, 2, regalloc.ScratchB)
	zero := regalloc.RegName(regalloc.X0)
	switch in.Op {
	case ir.OpLE:
		e.w.Ins3("sgt", rd, rs1, rs2)
		e.w.Ins2imm("xori", rd, rd, 1)
	case ir.OpGE:
		e.w.Ins3("slt", rd, rs1, rs2)
		e.w.Ins2imm("xori", rd, rd, 1)
	case ir.OpEQ:
		e.w.Ins3("sub", rd, rs1, rs2)
		e.w.Ins2("seqz", rd, rd)
	case ir.OpNE:
		e.w.Ins3("sub", rd, rs1, rs2)
		e.w.Ins2("snez", rd, rd)
	case ir.OpLAND:
		e.w.Ins2("snez", rd, rs1)
		e.w.Ins3("sub", rd, zero, rd)
		e.w.Ins3("and", rd, rd, rs2)
		e.w.Ins2("snez", rd, rd)
	case ir.OpLOR:
		e.w.Ins3("or", rd, rs1, rs2)
		e.w.Ins2("snez", rd, rd)
	}
}

func (e *emitter) emitParam(in *ir.Instr) {
	sp := regalloc.RegName(regalloc.X2)
	rs := e.readReg(in, 0, regalloc.ScratchA)
	e.w.Ins2imm("addi", sp, sp, -4)
	e.w.LoadStore("sw", rs, 0, sp)
	e.outgoing++
}

func (e *emitter) emitCall(in *ir.Instr) {
	sp, a0 := regalloc.RegName(regalloc.X2), regalloc.RegName(regalloc.X10)
	e.w.Ins1("call", in.A1.NameVal())
	e.w.Ins2("mv", regOf(in, 0), a0)
	if e.outgoing > 0 {
		e.w.Ins2imm("addi", sp, sp, int64(4*e.outgoing))
	}
	e.outgoing = 0
}
