package ir

// Reads and Writes classify an instruction's operands into the variables
// it reads and the variable (if any) it writes, per the per-opcode operand
// contract of spec §6. Global variables never appear as Var operands
// inside a function body (they are always materialized through LA), but
// the classification ignores them defensively per spec's "global
// variables are ignored" rule for liveness purposes.

func addVar(dst []Var, a Addr) []Var {
	if a.IsVar() && !a.VarVal().IsGlobal() {
		return append(dst, a.VarVal())
	}
	return dst
}

// Reads returns the variables instruction in reads.
func Reads(in *Instr) []Var {
	var r []Var
	switch in.Op {
	case OpRET, OpBEQZ, OpPARAM, OpSTOREFP:
		r = addVar(r, in.A0)
	case OpMOV, OpNEG, OpNOT, OpLNOT:
		r = addVar(r, in.A1)
	case OpMUL, OpDIV, OpREM, OpADD, OpSUB, OpLT, OpGT, OpLE, OpGE, OpEQ, OpNE, OpLAND, OpLOR:
		r = addVar(r, in.A1)
		r = addVar(r, in.A2)
	case OpLOAD:
		r = addVar(r, in.A1)
		r = addVar(r, in.A2)
	case OpSTORE:
		r = addVar(r, in.A0)
		r = addVar(r, in.A1)
		r = addVar(r, in.A2)
	}
	return r
}

// Writes returns the variable instruction in writes, or the zero Var and
// false if it writes none.
func Writes(in *Instr) (Var, bool) {
	switch in.Op {
	case OpMOV, OpNEG, OpNOT, OpLNOT,
		OpMUL, OpDIV, OpREM, OpADD, OpSUB, OpLT, OpGT, OpLE, OpGE, OpEQ, OpNE, OpLAND, OpLOR,
		OpCALL, OpLA, OpLOAD, OpALLOC, OpLARRAY, OpLOADFP:
		if in.A0.IsVar() && !in.A0.VarVal().IsGlobal() {
			return in.A0.VarVal(), true
		}
	}
	return Var{}, false
}
