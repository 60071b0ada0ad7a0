package frontend

import (
	"testing"

	"riscvc/internal/ast"
)

func mustParse(t *testing.T, src string) *ast.Node {
	t.Helper()
	root, err := Parse(src)
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}
	return root
}

func TestParseFuncDef(t *testing.T) {
	root := mustParse(t, "int add(int a, int b) { return a + b; }")

	if root.Kind != ast.KProgram {
		t.Fatalf("root kind = %s, want PROGRAM", root.Kind)
	}
	if len(root.Children) != 1 {
		t.Fatalf("got %d top-level declarations, want 1", len(root.Children))
	}

	fn := root.Children[0]
	if fn.Kind != ast.KFuncDef || fn.Name != "add" {
		t.Fatalf("got %s, want FUNC_DEF named add", fn.String())
	}
	// two params plus one block
	if len(fn.Children) != 3 {
		t.Fatalf("got %d children, want 2 params + 1 block", len(fn.Children))
	}
	if fn.Children[0].Kind != ast.KParam || fn.Children[0].Name != "a" {
		t.Errorf("first param = %s", fn.Children[0].String())
	}
	if fn.Children[1].Kind != ast.KParam || fn.Children[1].Name != "b" {
		t.Errorf("second param = %s", fn.Children[1].String())
	}

	block := fn.Children[2]
	if block.Kind != ast.KBlock || len(block.Children) != 1 {
		t.Fatalf("got %s, want a one-statement BLOCK", block.String())
	}
	ret := block.Children[0]
	if ret.Kind != ast.KReturn {
		t.Fatalf("got %s, want RETURN", ret.String())
	}
	expr := ret.Children[0]
	if expr.Kind != ast.KBinary || expr.Op != "+" {
		t.Fatalf("got %s, want BINARY [+]", expr.String())
	}
}

func TestParseFuncDecl(t *testing.T) {
	root := mustParse(t, "int f(int x);")
	if root.Children[0].Kind != ast.KFuncDecl {
		t.Fatalf("got %s, want FUNC_DECL", root.Children[0].String())
	}
}

func TestParseGlobalArray(t *testing.T) {
	root := mustParse(t, "int a[3][4];")
	g := root.Children[0]
	if g.Kind != ast.KGlobalArray || g.Name != "a" {
		t.Fatalf("got %s, want GLOBAL_ARRAY named a", g.String())
	}
	if len(g.Dims) != 2 || g.Dims[0] != 3 || g.Dims[1] != 4 {
		t.Fatalf("dims = %v, want [3 4]", g.Dims)
	}
}

func TestParseOperatorPrecedence(t *testing.T) {
	// 1 + 2 * 3 should parse as 1 + (2 * 3), not (1 + 2) * 3.
	root := mustParse(t, "int main() { return 1 + 2 * 3; }")
	expr := root.Children[0].Children[0].Children[0].Children[0]
	if expr.Kind != ast.KBinary || expr.Op != "+" {
		t.Fatalf("top node = %s, want BINARY [+]", expr.String())
	}
	rhs := expr.Children[1]
	if rhs.Kind != ast.KBinary || rhs.Op != "*" {
		t.Fatalf("rhs = %s, want BINARY [*]", rhs.String())
	}
}

func TestParseArrayIndexChain(t *testing.T) {
	root := mustParse(t, "int main() { int a[2][3]; return a[1][2]; }")
	block := root.Children[0].Children[0]
	ret := block.Children[1]
	idx := ret.Children[0]
	if idx.Kind != ast.KIndex {
		t.Fatalf("got %s, want INDEX", idx.String())
	}
	if len(idx.Children) != 3 { // base + two index exprs
		t.Fatalf("got %d children, want 3", len(idx.Children))
	}
}

func TestParseForDecl(t *testing.T) {
	root := mustParse(t, "int main() { for (int i = 0; i < 10; i = i + 1) {} return 0; }")
	stmt := root.Children[0].Children[0].Children[0]
	if stmt.Kind != ast.KForDecl {
		t.Fatalf("got %s, want FOR_DECL", stmt.String())
	}
}

func TestParseSyntaxError(t *testing.T) {
	if _, err := Parse("int main() { return ; }"); err == nil {
		t.Fatal("expected a syntax error, got nil")
	}
}

func TestParseAssignRequiresLvalue(t *testing.T) {
	if _, err := Parse("int main() { 1 = 2; return 0; }"); err == nil {
		t.Fatal("expected an error assigning to a non-lvalue, got nil")
	}
}
