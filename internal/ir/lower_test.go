package ir

import (
	"testing"

	"riscvc/internal/frontend"
)

func lower(t *testing.T, src string) *Module {
	t.Helper()
	root, err := frontend.Parse(src)
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	if _, err := frontend.Check(root); err != nil {
		t.Fatalf("check error: %s", err)
	}
	mod, err := Lower(root)
	if err != nil {
		t.Fatalf("lower error: %s", err)
	}
	return mod
}

func ops(fb *FuncBlock) []Op {
	var out []Op
	for _, in := range fb.Instrs {
		out = append(out, in.Op)
	}
	return out
}

func TestLowerReturnConstant(t *testing.T) {
	mod := lower(t, "int main() { return 42; }")
	if len(mod.Funcs) != 1 {
		t.Fatalf("got %d funcs, want 1", len(mod.Funcs))
	}
	fb := mod.Funcs[0]
	if fb.Name != "main" || fb.Arity != 0 {
		t.Fatalf("got %q/%d, want main/0", fb.Name, fb.Arity)
	}
	want := []Op{OpFUNBEG, OpMOV, OpRET, OpFUNEND}
	if got := ops(fb); !equalOps(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestLowerBinaryExpr(t *testing.T) {
	mod := lower(t, "int main() { return 1 + 2; }")
	fb := mod.Funcs[0]
	var sawAdd bool
	for _, in := range fb.Instrs {
		if in.Op == OpADD {
			sawAdd = true
		}
	}
	if !sawAdd {
		t.Fatalf("expected an ADD instruction, got %v", ops(fb))
	}
}

func TestLowerGlobalScalar(t *testing.T) {
	mod := lower(t, "int g = 5; int main() { return g; }")
	if len(mod.Globals) != 1 {
		t.Fatalf("got %d globals, want 1", len(mod.Globals))
	}
	g := mod.Globals[0]
	if g.Op != OpGINI || g.A0.NameVal() != "g" || g.A1.ImmVal() != 5 {
		t.Fatalf("got %s, want GINI g 5", g.String())
	}
	fb := mod.Funcs[0]
	var sawLA, sawLoad bool
	for _, in := range fb.Instrs {
		if in.Op == OpLA {
			sawLA = true
		}
		if in.Op == OpLOAD {
			sawLoad = true
		}
	}
	if !sawLA || !sawLoad {
		t.Fatalf("expected LA+LOAD for global read, got %v", ops(fb))
	}
}

func TestLowerUninitializedGlobalArray(t *testing.T) {
	mod := lower(t, "int a[4]; int main() { return 0; }")
	g := mod.Globals[0]
	if g.Op != OpGBSS || g.A1.ImmVal() != 16 {
		t.Fatalf("got %s, want GBSS a 16", g.String())
	}
}

func TestLowerLocalArrayAlloc(t *testing.T) {
	mod := lower(t, "int main() { int a[3]; a[0] = 1; return a[0]; }")
	fb := mod.Funcs[0]
	var sawAlloc bool
	for _, in := range fb.Instrs {
		if in.Op == OpALLOC {
			sawAlloc = true
			if in.A1.ImmVal() != 12 {
				t.Fatalf("got ALLOC size %d, want 12", in.A1.ImmVal())
			}
		}
	}
	if !sawAlloc {
		t.Fatalf("expected an ALLOC instruction, got %v", ops(fb))
	}
}

func TestLowerAssignRewritesLoadToStore(t *testing.T) {
	mod := lower(t, "int g; int main() { g = 1; return g; }")
	fb := mod.Funcs[0]
	var sawStore bool
	for _, in := range fb.Instrs {
		if in.Op == OpSTORE {
			sawStore = true
		}
	}
	if !sawStore {
		t.Fatalf("expected a STORE from the rewritten assignment, got %v", ops(fb))
	}
}

func TestLowerIfElse(t *testing.T) {
	mod := lower(t, "int main() { if (1) { return 1; } else { return 2; } }")
	fb := mod.Funcs[0]
	var nBeqz, nJmp, nLabel int
	for _, in := range fb.Instrs {
		switch in.Op {
		case OpBEQZ:
			nBeqz++
		case OpJMP:
			nJmp++
		case OpLABEL:
			nLabel++
		}
	}
	if nBeqz != 1 || nJmp != 1 || nLabel != 2 {
		t.Fatalf("got BEQZ=%d JMP=%d LABEL=%d, want 1/1/2", nBeqz, nJmp, nLabel)
	}
}

func TestLowerWhileEmitsTwoLabelsAtTop(t *testing.T) {
	mod := lower(t, "int main() { int i = 0; while (i < 3) { i = i + 1; } return i; }")
	fb := mod.Funcs[0]
	// lowerWhile emits LABEL(begin) immediately followed by LABEL(cont).
	for i, in := range fb.Instrs {
		if in.Op == OpLABEL && i+1 < len(fb.Instrs) && fb.Instrs[i+1].Op == OpLABEL {
			return
		}
	}
	t.Fatalf("expected two consecutive LABELs at loop top, got %v", ops(fb))
}

func TestLowerCall(t *testing.T) {
	mod := lower(t, "int f(int x) { return x; } int main() { return f(1); }")
	var fb *FuncBlock
	for _, f := range mod.Funcs {
		if f.Name == "main" {
			fb = f
		}
	}
	var sawParam, sawCall bool
	for _, in := range fb.Instrs {
		if in.Op == OpPARAM {
			sawParam = true
		}
		if in.Op == OpCALL {
			sawCall = true
			if in.A1.NameVal() != "f" {
				t.Fatalf("CALL target = %q, want f", in.A1.NameVal())
			}
		}
	}
	if !sawParam || !sawCall {
		t.Fatalf("expected PARAM+CALL, got %v", ops(fb))
	}
}

func equalOps(a, b []Op) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
