package cfg

import "riscvc/internal/ir"

// Liveness computes per-block use/def, runs the backward fixed-point
// dataflow to fill live_in/live_out, then computes each block's
// per-instruction live-entering sequence, per spec §4.3.
func Liveness(fn *Function) {
	for _, b := range fn.Blocks {
		computeUseDef(b)
	}
	fixedPoint(fn)
	for _, b := range fn.Blocks {
		computeLiveEntering(b)
	}
}

// computeUseDef walks a block in reverse: a read of x adds x to Use and
// removes it from Def; a write to x adds x to Def and removes it from Use.
func computeUseDef(b *Block) {
	b.Use = make(map[ir.Var]bool)
	b.Def = make(map[ir.Var]bool)
	for i := len(b.Instrs) - 1; i >= 0; i-- {
		in := b.Instrs[i]
		if w, ok := ir.Writes(in); ok {
			b.Def[w] = true
			delete(b.Use, w)
		}
		for _, r := range ir.Reads(in) {
			b.Use[r] = true
			delete(b.Def, r)
		}
	}
}

func fixedPoint(fn *Function) {
	for _, b := range fn.Blocks {
		b.LiveIn = make(map[ir.Var]bool)
		b.LiveOut = make(map[ir.Var]bool)
	}
	for {
		changed := false
		for _, b := range fn.Blocks {
			out := make(map[ir.Var]bool)
			for _, s := range b.Succs {
				for v := range fn.Blocks[s].LiveIn {
					out[v] = true
				}
			}
			in := make(map[ir.Var]bool)
			for v := range b.Use {
				in[v] = true
			}
			for v := range out {
				if !b.Def[v] {
					in[v] = true
				}
			}
			if !setEqual(out, b.LiveOut) || !setEqual(in, b.LiveIn) {
				changed = true
			}
			b.LiveOut = out
			b.LiveIn = in
		}
		if !changed {
			break
		}
	}
}

func setEqual(a, b map[ir.Var]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

// computeLiveEntering walks b in reverse from LiveOut, updating
// live = uses(inst) ∪ (live − defs(inst)) after each instruction and
// pushing the current set on the front of b.LiveEntering.
func computeLiveEntering(b *Block) {
	b.LiveEntering = make([]map[ir.Var]bool, len(b.Instrs))
	live := make(map[ir.Var]bool)
	for v := range b.LiveOut {
		live[v] = true
	}
	for i := len(b.Instrs) - 1; i >= 0; i-- {
		in := b.Instrs[i]
		next := make(map[ir.Var]bool)
		if w, ok := ir.Writes(in); ok {
			for v := range live {
				if v != w {
					next[v] = true
				}
			}
		} else {
			for v := range live {
				next[v] = true
			}
		}
		for _, r := range ir.Reads(in) {
			next[r] = true
		}
		live = next
		b.LiveEntering[i] = live
	}
}
