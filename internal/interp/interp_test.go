package interp

import (
	"testing"

	"riscvc/internal/frontend"
	"riscvc/internal/ir"
)

func runMain(t *testing.T, src string) int32 {
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
	got, err := New(mod).Run("main", nil)
	if err != nil {
		t.Fatalf("interp error: %s", err)
	}
	return got
}

func TestScenarioReturnLiteral(t *testing.T) {
	if got := runMain(t, "int main(){return 42;}"); got != 42 {
		t.Fatalf("got %d, want 42", got)
	}
}

func TestScenarioSumOfSquares(t *testing.T) {
	src := "int main(){int x=3; int y=4; return x*x+y*y;}"
	if got := runMain(t, src); got != 25 {
		t.Fatalf("got %d, want 25", got)
	}
}

func TestScenarioRecursiveFibonacci(t *testing.T) {
	src := `int fib(int n){if(n<2)return n; return fib(n-1)+fib(n-2);}
		int main(){return fib(10);}`
	if got := runMain(t, src); got != 55 {
		t.Fatalf("got %d, want 55", got)
	}
}

func TestScenarioArraySumViaWhile(t *testing.T) {
	src := `int main(){int a[3]; a[0]=1; a[1]=2; a[2]=3; int s=0; int i=0;
		while(i<3){s=s+a[i]; i=i+1;} return s;}`
	if got := runMain(t, src); got != 6 {
		t.Fatalf("got %d, want 6", got)
	}
}

func TestScenarioGlobalDrivenForLoop(t *testing.T) {
	src := `int g; int main(){g=7; int s=0; for(int i=0;i<g;i=i+1) s=s+i; return s;}`
	if got := runMain(t, src); got != 21 {
		t.Fatalf("got %d, want 21", got)
	}
}

func TestScenarioGlobalArrayDoesNotAliasFollowingGlobal(t *testing.T) {
	// a has 20 elements (80 bytes); writing its last element must stay
	// inside a's own reserved region instead of bleeding into g's.
	src := `int a[20]; int g;
		int main(){g=99; int i=0; while(i<20){a[i]=i; i=i+1;} return g+a[19];}`
	if got := runMain(t, src); got != 118 {
		t.Fatalf("got %d, want 118 (global array element aliased a later global)", got)
	}
}

func TestScenarioDoWhileBreakContinue(t *testing.T) {
	src := `int main(){int i=0; int s=0;
		do{
			if(i==3){i=i+1;continue;}
			if(i>=6)break;
			s=s+i; i=i+1;
		}while(1);
		return s;}`
	if got := runMain(t, src); got != 12 {
		t.Fatalf("got %d, want 12", got)
	}
}
