package emit

import (
	"strings"
	"testing"

	"riscvc/internal/cfg"
	"riscvc/internal/frontend"
	"riscvc/internal/ir"
	"riscvc/internal/regalloc"
)

func compile(t *testing.T, src string) string {
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
		fn := cfg.Build(fb)
		cfg.Liveness(fn)
		regalloc.Allocate(fn)
	}
	return Emit(mod)
}

func TestEmitFunctionLabelAndDirectives(t *testing.T) {
	asm := compile(t, "int main() { return 42; }")
	if !strings.Contains(asm, ".global main") {
		t.Errorf("missing .global main directive:\n%s", asm)
	}
	if !strings.Contains(asm, "main:") {
		t.Errorf("missing main: label:\n%s", asm)
	}
	if !strings.Contains(asm, "main_epilogue:") {
		t.Errorf("missing epilogue label:\n%s", asm)
	}
	if !strings.Contains(asm, "ret") {
		t.Errorf("missing ret instruction:\n%s", asm)
	}
}

func TestEmitGlobalData(t *testing.T) {
	asm := compile(t, "int g = 7; int main() { return g; }")
	if !strings.Contains(asm, ".data") {
		t.Errorf("missing .data section:\n%s", asm)
	}
	if !strings.Contains(asm, "g") {
		t.Errorf("missing global symbol g:\n%s", asm)
	}
}

func TestEmitBSSForUninitializedGlobal(t *testing.T) {
	asm := compile(t, "int a[4]; int main() { return a[0]; }")
	if !strings.Contains(asm, ".bss") {
		t.Errorf("missing .bss section:\n%s", asm)
	}
}

func TestEmitCompositeComparisonExpands(t *testing.T) {
	asm := compile(t, "int main() { int x = 1; if (x <= 2) return 1; return 0; }")
	if !strings.Contains(asm, "sgt") || !strings.Contains(asm, "xori") {
		t.Errorf("expected <= to expand into sgt+xori:\n%s", asm)
	}
}

func TestEmitCallSequence(t *testing.T) {
	asm := compile(t, "int f(int x) { return x; } int main() { return f(1); }")
	if !strings.Contains(asm, "call\tf") {
		t.Errorf("expected a call to f:\n%s", asm)
	}
}
