// Package driver orchestrates one compilation: read source, lex/parse,
// check, lower to IR, build per-function CFGs and liveness, allocate
// registers, and emit RISC-V assembly. It mirrors the teacher compiler's
// src/main.go run function, minus the LLVM and multi-threaded
// optimisation paths that don't apply to this core.
package driver

import (
	"os"
	"path/filepath"
	"strings"

	"riscvc/internal/ast"
	"riscvc/internal/cfg"
	"riscvc/internal/emit"
	"riscvc/internal/frontend"
	"riscvc/internal/ir"
	"riscvc/internal/regalloc"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Options holds one invocation's configuration, populated by the CLI
// layer from parsed flags.
type Options struct {
	Src       string // path to source file, required
	Out       string // path to output assembly file; "" defaults to Src's basename with a .asm suffix
	TokenFile string // if non-empty, dump the token stream here
	ASTFile   string // if non-empty, dump the syntax tree here
	IRFile    string // if non-empty, dump the IR here
	Optimize  int    // reserved optimisation level, accepted but not yet acted on
	Verbose   bool
}

// defaultOutputPath derives the default assembly destination from a source
// path: its basename with the extension replaced by ".asm".
func defaultOutputPath(src string) string {
	base := filepath.Base(src)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return base + ".asm"
}

// Run executes one full compilation according to opt, writing diagnostics
// through log.
func Run(opt Options, log *logrus.Entry) error {
	if opt.Src == "" {
		return errors.New("no source file given")
	}

	src, err := os.ReadFile(opt.Src)
	if err != nil {
		return errors.Wrap(err, "reading source")
	}

	if opt.TokenFile != "" {
		log.WithField("stage", "lex").Debug("dumping token stream")
		toks, err := frontend.TokenStream(string(src))
		if err != nil {
			return errors.Wrap(err, "lexing")
		}
		if err := os.WriteFile(opt.TokenFile, []byte(toks), 0644); err != nil {
			return errors.Wrap(err, "writing token dump")
		}
	}

	log.WithField("stage", "parse").Debug("parsing")
	root, err := frontend.Parse(string(src))
	if err != nil {
		return errors.Wrap(err, "syntax error")
	}

	log.WithField("stage", "check").Debug("checking")
	if _, err := frontend.Check(root); err != nil {
		return errors.Wrap(err, "semantic error")
	}

	if opt.ASTFile != "" {
		if err := writeDump(opt.ASTFile, root); err != nil {
			return err
		}
	}

	log.WithField("stage", "lower").Debug("lowering to IR")
	mod, err := ir.Lower(root)
	if err != nil {
		return errors.Wrap(err, "lowering")
	}

	if opt.IRFile != "" {
		if err := os.WriteFile(opt.IRFile, []byte(mod.Dump()), 0644); err != nil {
			return errors.Wrap(err, "writing IR dump")
		}
	}

	log.WithField("stage", "codegen").Debug("building CFGs, allocating registers")
	for _, fb := range mod.Funcs {
		fn := cfg.Build(fb)
		cfg.Liveness(fn)
		regalloc.Allocate(fn)
	}

	log.WithField("stage", "emit").Debug("emitting assembly")
	asm := emit.Emit(mod)

	out := opt.Out
	if out == "" {
		out = defaultOutputPath(opt.Src)
	}
	if err := os.WriteFile(out, []byte(asm), 0644); err != nil {
		return errors.Wrap(err, "writing output")
	}
	return nil
}

// writeDump writes root's textual tree representation to path.
func writeDump(path string, root *ast.Node) error {
	if err := os.WriteFile(path, []byte(root.Sprint(0)), 0644); err != nil {
		return errors.Wrap(err, "writing AST dump")
	}
	return nil
}
