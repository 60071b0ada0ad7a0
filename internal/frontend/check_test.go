package frontend

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func checkSrc(t *testing.T, src string) error {
	t.Helper()
	root, err := Parse(src)
	require.NoError(t, err, "unexpected parse error")
	_, err = Check(root)
	return err
}

func TestCheckOK(t *testing.T) {
	src := `
		int g;
		int helper(int n);
		int main() {
			int x = 1;
			g = helper(x);
			return g;
		}
		int helper(int n) { return n + 1; }
	`
	require.NoError(t, checkSrc(t, src))
}

func TestCheckUnknownIdentifier(t *testing.T) {
	err := checkSrc(t, "int main() { return y; }")
	wantCheckKind(t, err, "unknown identifier")
}

func TestCheckDuplicateGlobal(t *testing.T) {
	err := checkSrc(t, "int g; int g; int main() { return 0; }")
	wantCheckKind(t, err, "duplicate name")
}

func TestCheckDuplicateLocal(t *testing.T) {
	err := checkSrc(t, "int main() { int x; int x; return 0; }")
	wantCheckKind(t, err, "duplicate name")
}

func TestCheckBreakOutsideLoop(t *testing.T) {
	err := checkSrc(t, "int main() { break; return 0; }")
	wantCheckKind(t, err, "break-outside-loop")
}

func TestCheckContinueOutsideLoop(t *testing.T) {
	err := checkSrc(t, "int main() { continue; return 0; }")
	wantCheckKind(t, err, "continue-outside-loop")
}

func TestCheckBreakInsideLoop(t *testing.T) {
	if err := checkSrc(t, "int main() { while (1) { break; } return 0; }"); err != nil {
		t.Fatalf("unexpected check error: %s", err)
	}
}

func TestCheckCallArityMismatch(t *testing.T) {
	err := checkSrc(t, "int f(int a); int main() { return f(1, 2); } int f(int a) { return a; }")
	wantCheckKind(t, err, "function-signature mismatch")
}

func TestCheckUndeclaredFunction(t *testing.T) {
	err := checkSrc(t, "int main() { return f(1); }")
	wantCheckKind(t, err, "unknown identifier")
}

func TestCheckIndexNonArray(t *testing.T) {
	err := checkSrc(t, "int main() { int x; return x[0]; }")
	wantCheckKind(t, err, "array-indexing a non-array")
}

func TestCheckWrongDimensionCount(t *testing.T) {
	err := checkSrc(t, "int main() { int a[2][3]; return a[0]; }")
	wantCheckKind(t, err, "array-indexing a non-array")
}

func TestCheckMissingDefinition(t *testing.T) {
	err := checkSrc(t, "int f(int x); int main() { return f(1); }")
	wantCheckKind(t, err, "missing definition")
}

func TestCheckFunctionRedefinition(t *testing.T) {
	err := checkSrc(t, "int f() { return 0; } int f() { return 1; }")
	wantCheckKind(t, err, "duplicate name")
}

func wantCheckKind(t *testing.T, err error, kind string) {
	t.Helper()
	require.Error(t, err, "expected a %q check error", kind)
	ce, ok := err.(*CheckError)
	require.True(t, ok, "expected a *CheckError, got %T: %s", err, err)
	require.Equal(t, kind, ce.Kind, "check error message: %s", ce.Msg)
}
