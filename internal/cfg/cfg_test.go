package cfg

import (
	"testing"

	"riscvc/internal/frontend"
	"riscvc/internal/ir"
)

func buildFunc(t *testing.T, src, fnName string) *Function {
	t.Helper()
	root, err := frontend.Parse(src)
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	if _, err := frontend.Check(root); err != nil {
		t.Fatalf("check error: %s", err)
	}
	mod, err := ir.Lower(root)
	if err != nil {
		t.Fatalf("lower error: %s", err)
	}
	for _, fb := range mod.Funcs {
		if fb.Name == fnName {
			return Build(fb)
		}
	}
	t.Fatalf("no function %q in module", fnName)
	return nil
}

func TestBuildStraightLine(t *testing.T) {
	fn := buildFunc(t, "int main() { int x = 1; return x; }", "main")
	if len(fn.Blocks) != 1 {
		t.Fatalf("got %d blocks, want 1 for a branch-free function", len(fn.Blocks))
	}
	if len(fn.Blocks[0].Succs) != 0 {
		t.Fatalf("got succs %v, want none after a RET", fn.Blocks[0].Succs)
	}
}

func TestBuildIfElseBranches(t *testing.T) {
	fn := buildFunc(t, "int main() { if (1) { return 1; } else { return 2; } }", "main")
	if len(fn.Blocks) < 3 {
		t.Fatalf("got %d blocks, want at least 3 (cond, then, else)", len(fn.Blocks))
	}
	// The block ending in BEQZ should have two successors.
	var found bool
	for _, b := range fn.Blocks {
		last := b.Instrs[len(b.Instrs)-1]
		if last.Op == ir.OpBEQZ {
			found = true
			if len(b.Succs) != 2 {
				t.Fatalf("BEQZ block has %d successors, want 2", len(b.Succs))
			}
		}
	}
	if !found {
		t.Fatal("expected a block ending in BEQZ")
	}
}

func TestBuildPredecessorsMirrorSuccessors(t *testing.T) {
	fn := buildFunc(t, "int main() { int i = 0; while (i < 3) { i = i + 1; } return i; }", "main")
	for _, b := range fn.Blocks {
		for _, s := range b.Succs {
			succ := fn.Blocks[s]
			var back bool
			for _, p := range succ.Preds {
				if p == b.Index {
					back = true
				}
			}
			if !back {
				t.Fatalf("block %d -> %d has no mirrored predecessor edge", b.Index, s)
			}
		}
	}
}

func TestLivenessLoopVariableLiveAcrossBackEdge(t *testing.T) {
	fn := buildFunc(t, "int main() { int i = 0; while (i < 3) { i = i + 1; } return i; }", "main")
	Liveness(fn)
	// Every block should have a populated (possibly empty) LiveIn/LiveOut map.
	for _, b := range fn.Blocks {
		if b.LiveIn == nil || b.LiveOut == nil {
			t.Fatalf("block %d missing liveness sets", b.Index)
		}
		if len(b.LiveEntering) != len(b.Instrs) {
			t.Fatalf("block %d: got %d live-entering snapshots, want %d", b.Index, len(b.LiveEntering), len(b.Instrs))
		}
	}

	// Find the loop body block (the one closing the back edge with a JMP)
	// and the variable it assigns via "i = i + 1".
	var body *Block
	var loopVar ir.Var
	var found bool
	for _, b := range fn.Blocks {
		last := b.Instrs[len(b.Instrs)-1]
		if last.Op != ir.OpJMP {
			continue
		}
		for _, in := range b.Instrs {
			// "i = i + 1" lowers to an ADD into a fresh temporary followed by
			// a MOV of that temporary into i's own variable.
			if in.Op != ir.OpMOV || !in.A1.IsVar() {
				continue
			}
			if w, ok := ir.Writes(in); ok {
				body = b
				loopVar = w
				found = true
			}
		}
	}
	if !found {
		t.Fatal("expected a loop body block ending in JMP with a MOV assignment")
	}
	if !body.LiveOut[loopVar] {
		t.Fatalf("loop variable %v not live out of back-edge block %d (LiveOut: %v)", loopVar, body.Index, body.LiveOut)
	}
}
