// Package emit translates a register-allocated IR module into RISC-V
// assembly text. The Writer helper mirrors the teacher compiler's
// src/util.Writer (Ins1/Ins2/Ins3/LoadStore/Label), minus its
// goroutine-and-channel output plumbing: the core's concurrency model is
// single-threaded, so emission just accumulates into a strings.Builder and
// hands back the finished text.
package emit

import (
	"fmt"
	"strings"

	"riscvc/internal/ir"
	"riscvc/internal/regalloc"
)

// Writer buffers emitted assembly text.
type Writer struct {
	sb strings.Builder
}

// Write appends a formatted line with no automatic indentation or newline.
func (w *Writer) Write(format string, args ...interface{}) {
	w.sb.WriteString(fmt.Sprintf(format, args...))
}

// Ins0 writes a bare zero-operand instruction, e.g. "ret".
func (w *Writer) Ins0(op string) {
	w.sb.WriteString(fmt.Sprintf("\t%s\n", op))
}

// Ins1 writes a one-operand instruction.
func (w *Writer) Ins1(op, rs1 string) {
	w.sb.WriteString(fmt.Sprintf("\t%s\t%s\n", op, rs1))
}

// Ins2 writes a two-operand instruction.
func (w *Writer) Ins2(op, rd, rs1 string) {
	w.sb.WriteString(fmt.Sprintf("\t%s\t%s, %s\n", op, rd, rs1))
}

// Ins2imm writes a two-operand-plus-immediate instruction (rd, rs1, imm).
func (w *Writer) Ins2imm(op, rd, rs1 string, imm int64) {
	w.sb.WriteString(fmt.Sprintf("\t%s\t%s, %s, %d\n", op, rd, rs1, imm))
}

// Ins1imm writes a register-plus-immediate instruction (rd, imm), the
// shape "li" and other single-register immediate forms use.
func (w *Writer) Ins1imm(op, rd string, imm int64) {
	w.sb.WriteString(fmt.Sprintf("\t%s\t%s, %d\n", op, rd, imm))
}

// Ins3 writes a three-register instruction.
func (w *Writer) Ins3(op, rd, rs1, rs2 string) {
	w.sb.WriteString(fmt.Sprintf("\t%s\t%s, %s, %s\n", op, rd, rs1, rs2))
}

// LoadStore writes a load/store instruction with a base-register offset.
func (w *Writer) LoadStore(op, reg string, offset int64, base string) {
	w.sb.WriteString(fmt.Sprintf("\t%s\t%s, %d(%s)\n", op, reg, offset, base))
}

// Directive writes an assembler directive line, unindented.
func (w *Writer) Directive(format string, args ...interface{}) {
	w.sb.WriteString(fmt.Sprintf(format+"\n", args...))
}

// Label writes a column-0 label.
func (w *Writer) Label(name string) {
	w.sb.WriteString(fmt.Sprintf("%s:\n", name))
}

// String returns the accumulated assembly text.
func (w *Writer) String() string { return w.sb.String() }

// emitter holds the per-module emission state: the teacher's emitter is
// "stateless across functions except for tracking the name of the function
// currently being emitted... and the number of outgoing PARAM pushes since
// the last CALL" — both tracked here.
type emitter struct {
	w          Writer
	fnName     string
	fnIndex    int
	arrayBase  int64
	outgoing   int
}

// Emit translates a register-allocated Module into RISC-V assembly text.
func Emit(mod *ir.Module) string {
	e := &emitter{}
	e.emitData(mod.Globals)
	if len(mod.Funcs) > 0 {
		e.w.Directive(".text")
	}
	for _, fb := range mod.Funcs {
		e.emitFunction(fb)
	}
	return e.w.String()
}

// label renders a function-scoped label name: IR label ids are
// per-function integers, so the emitter prefixes each with the owning
// function's index to keep every rendered symbol module-unique.
func (e *emitter) label(id int64) string {
	return fmt.Sprintf(".L%d_%d", e.fnIndex, id)
}

func regOf(in *ir.Instr, slot int) string {
	return regalloc.RegName(in.Reg[slot])
}
