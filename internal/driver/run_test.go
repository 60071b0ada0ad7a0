package driver

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"riscvc/internal/clog"
)

func writeSrc(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("writing fixture source: %s", err)
	}
	return path
}

func TestRunProducesAssembly(t *testing.T) {
	dir := t.TempDir()
	src := writeSrc(t, dir, "prog.c", "int main() { return 42; }")
	out := filepath.Join(dir, "prog.s")

	opt := Options{Src: src, Out: out}
	if err := Run(opt, clog.New(false)); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading output: %s", err)
	}
	if !strings.Contains(string(data), "main:") {
		t.Errorf("expected emitted assembly to contain a main: label, got:\n%s", data)
	}
}

func TestRunDumpsTokensASTAndIR(t *testing.T) {
	dir := t.TempDir()
	src := writeSrc(t, dir, "prog.c", "int main() { return 1; }")

	opt := Options{
		Src:       src,
		Out:       filepath.Join(dir, "prog.s"),
		TokenFile: filepath.Join(dir, "prog.tok"),
		ASTFile:   filepath.Join(dir, "prog.ast"),
		IRFile:    filepath.Join(dir, "prog.ir"),
	}
	if err := Run(opt, clog.New(true)); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	for _, f := range []string{opt.TokenFile, opt.ASTFile, opt.IRFile} {
		info, err := os.Stat(f)
		if err != nil {
			t.Fatalf("expected dump file %s to exist: %s", f, err)
		}
		if info.Size() == 0 {
			t.Errorf("expected dump file %s to be non-empty", f)
		}
	}
}

func TestRunReportsSyntaxError(t *testing.T) {
	dir := t.TempDir()
	src := writeSrc(t, dir, "bad.c", "int main() { return ; }")
	opt := Options{Src: src, Out: filepath.Join(dir, "bad.s")}
	if err := Run(opt, clog.New(false)); err == nil {
		t.Fatal("expected a syntax error, got nil")
	}
}

func TestRunReportsCheckError(t *testing.T) {
	dir := t.TempDir()
	src := writeSrc(t, dir, "bad.c", "int main() { return y; }")
	opt := Options{Src: src, Out: filepath.Join(dir, "bad.s")}
	if err := Run(opt, clog.New(false)); err == nil {
		t.Fatal("expected a semantic error, got nil")
	}
}

func TestRunMissingSourceFile(t *testing.T) {
	opt := Options{Src: filepath.Join(t.TempDir(), "does-not-exist.c")}
	if err := Run(opt, clog.New(false)); err == nil {
		t.Fatal("expected an error for a missing source file, got nil")
	}
}
