// check.go implements the semantic checker: the external collaborator
// spec.md §1 describes as out of scope for the core but whose error
// vocabulary (§7) the driver surfaces. It walks a parsed tree, resolves
// every identifier through the scope-stack model of internal/ast, and
// annotates each KIdent/KIndex base with its ast.Symbol.
package frontend

import (
	"fmt"

	"riscvc/internal/ast"

	"github.com/pkg/errors"
)

// CheckError is a single typed semantic error, carrying the source
// position and the error kind named in spec.md §7.
type CheckError struct {
	Kind string
	Line int
	Col  int
	Msg  string
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("line %d:%d: %s: %s", e.Line, e.Col, e.Kind, e.Msg)
}

// checker walks a program tree, resolving names and reporting the first
// semantic error it finds. The teacher checks an entire file and
// accumulates errors (ir/validate.go); this checker stops at the first
// failure, matching the description in spec.md §7 of a single typed
// error surfacing to the driver.
type checker struct {
	scope     *ast.Scope
	funcs     map[string]*ast.FuncSig
	loopDepth int
}

// Check resolves names and validates root, returning the populated global
// scope on success or the first CheckError encountered.
func Check(root *ast.Node) (*ast.Scope, error) {
	c := &checker{
		scope: ast.NewGlobalScope(),
		funcs: make(map[string]*ast.FuncSig),
	}
	if err := c.checkProgram(root); err != nil {
		return nil, err
	}
	return c.scope, nil
}

func (c *checker) checkProgram(root *ast.Node) error {
	for _, n := range root.Children {
		switch n.Kind {
		case ast.KFuncDecl, ast.KFuncDef:
			if err := c.declareFunc(n); err != nil {
				return err
			}
		case ast.KGlobalScalar, ast.KGlobalArray:
			if err := c.declareGlobal(n); err != nil {
				return err
			}
		}
	}
	// Function bodies are checked in a second pass so that a call to a
	// function declared later in the file resolves.
	for _, n := range root.Children {
		if n.Kind == ast.KFuncDef {
			if err := c.checkFuncBody(n); err != nil {
				return err
			}
		}
	}
	for name, sig := range c.funcs {
		if !sig.Defined {
			return &CheckError{Kind: "missing definition", Line: sig.Line, Col: 0,
				Msg: errors.Errorf("function %q is declared but never defined", name).Error()}
		}
	}
	return nil
}

func (c *checker) declareGlobal(n *ast.Node) error {
	v := &ast.Variable{Name: n.Name, Dims: n.Dims, Global: true}
	if n.Kind == ast.KGlobalScalar && len(n.Children) == 1 && n.Children[0].Kind != ast.KIntLit {
		return &CheckError{Kind: "unexpected token", Line: n.Line, Col: n.Col,
			Msg: "global initializer must be a constant integer literal"}
	}
	if !c.scope.Declare(v) {
		return &CheckError{Kind: "duplicate name", Line: n.Line, Col: n.Col,
			Msg: fmt.Sprintf("global %q already declared", n.Name)}
	}
	n.Sym = v
	return nil
}

func numParams(n *ast.Node) int {
	count := 0
	for _, c := range n.Children {
		if c.Kind == ast.KParam {
			count++
		}
	}
	return count
}

func (c *checker) declareFunc(n *ast.Node) error {
	arity := numParams(n)
	if existing, ok := c.funcs[n.Name]; ok {
		if existing.NumParams != arity {
			return &CheckError{Kind: "function-signature mismatch", Line: n.Line, Col: n.Col,
				Msg: fmt.Sprintf("function %q redeclared with %d parameters, previously %d", n.Name, arity, existing.NumParams)}
		}
		if n.Kind == ast.KFuncDef {
			if existing.Defined {
				return &CheckError{Kind: "duplicate name", Line: n.Line, Col: n.Col,
					Msg: fmt.Sprintf("function %q already defined", n.Name)}
			}
			existing.Defined = true
		}
		return nil
	}
	c.funcs[n.Name] = &ast.FuncSig{Name: n.Name, NumParams: arity, Defined: n.Kind == ast.KFuncDef, Line: n.Line}
	return nil
}

func (c *checker) checkFuncBody(n *ast.Node) error {
	fnScope := c.scope.Push()
	ord := 1
	for _, p := range n.Children {
		if p.Kind != ast.KParam {
			break
		}
		v := &ast.Variable{Name: p.Name, Ordinal: ord}
		if !fnScope.Declare(v) {
			return &CheckError{Kind: "duplicate name", Line: p.Line, Col: p.Col,
				Msg: fmt.Sprintf("parameter %q already declared", p.Name)}
		}
		p.Sym = v
		ord++
	}
	body := n.Children[len(n.Children)-1]
	saved := c.scope
	c.scope = fnScope
	defer func() { c.scope = saved }()
	return c.checkBlock(body, false)
}

// checkBlock type-checks a KBlock's statements in a freshly pushed scope.
// newScope controls whether a new scope is pushed: loop/if bodies that are
// themselves blocks get their own scope; the function's outermost block
// reuses the scope the parameters were declared in.
func (c *checker) checkBlock(n *ast.Node, newScope bool) error {
	saved := c.scope
	if newScope {
		c.scope = c.scope.Push()
		defer func() { c.scope = saved }()
	}
	for _, s := range n.Children {
		if err := c.checkStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (c *checker) checkStmt(n *ast.Node) error {
	switch n.Kind {
	case ast.KBlock:
		return c.checkBlock(n, true)
	case ast.KLocalScalar:
		if len(n.Children) == 1 {
			if err := c.checkExpr(n.Children[0]); err != nil {
				return err
			}
		}
		v := &ast.Variable{Name: n.Name}
		if !c.scope.Declare(v) {
			return &CheckError{Kind: "duplicate name", Line: n.Line, Col: n.Col,
				Msg: fmt.Sprintf("variable %q already declared in this scope", n.Name)}
		}
		n.Sym = v
		return nil
	case ast.KLocalArray:
		v := &ast.Variable{Name: n.Name, Dims: n.Dims}
		if !c.scope.Declare(v) {
			return &CheckError{Kind: "duplicate name", Line: n.Line, Col: n.Col,
				Msg: fmt.Sprintf("variable %q already declared in this scope", n.Name)}
		}
		n.Sym = v
		return nil
	case ast.KIf:
		if err := c.checkExpr(n.Children[0]); err != nil {
			return err
		}
		if err := c.checkStmt(n.Children[1]); err != nil {
			return err
		}
		if len(n.Children) == 3 {
			return c.checkStmt(n.Children[2])
		}
		return nil
	case ast.KWhile:
		if err := c.checkExpr(n.Children[0]); err != nil {
			return err
		}
		c.loopDepth++
		err := c.checkStmt(n.Children[1])
		c.loopDepth--
		return err
	case ast.KDoWhile:
		c.loopDepth++
		err := c.checkStmt(n.Children[0])
		c.loopDepth--
		if err != nil {
			return err
		}
		return c.checkExpr(n.Children[1])
	case ast.KForExpr, ast.KForDecl:
		saved := c.scope
		c.scope = c.scope.Push()
		defer func() { c.scope = saved }()
		init, cond, upd, body := n.Children[0], n.Children[1], n.Children[2], n.Children[3]
		if err := c.checkStmt(init); err != nil {
			return err
		}
		if cond.Kind != ast.KEmpty {
			if err := c.checkExpr(cond); err != nil {
				return err
			}
		}
		if upd.Kind != ast.KEmpty {
			if err := c.checkStmt(upd); err != nil {
				return err
			}
		}
		c.loopDepth++
		err := c.checkStmt(body)
		c.loopDepth--
		return err
	case ast.KBreak, ast.KContinue:
		if c.loopDepth == 0 {
			kind := "break"
			if n.Kind == ast.KContinue {
				kind = "continue"
			}
			return &CheckError{Kind: kind + "-outside-loop", Line: n.Line, Col: n.Col,
				Msg: fmt.Sprintf("%q statement not within a loop", kind)}
		}
		return nil
	case ast.KReturn:
		return c.checkExpr(n.Children[0])
	case ast.KExprStmt:
		return c.checkExpr(n.Children[0])
	case ast.KEmpty:
		return nil
	default:
		return errors.Errorf("checker: unexpected statement kind %s", n.Kind)
	}
}

func (c *checker) checkExpr(n *ast.Node) error {
	switch n.Kind {
	case ast.KIntLit:
		return nil
	case ast.KIdent:
		v, _, found := c.scope.Lookup(n.Name)
		if !found {
			return &CheckError{Kind: "unknown identifier", Line: n.Line, Col: n.Col,
				Msg: fmt.Sprintf("%q is not declared", n.Name)}
		}
		n.Sym = v
		return nil
	case ast.KUnary:
		return c.checkExpr(n.Children[0])
	case ast.KBinary, ast.KAssign:
		if err := c.checkExpr(n.Children[0]); err != nil {
			return err
		}
		return c.checkExpr(n.Children[1])
	case ast.KCall:
		sig, ok := c.funcs[n.Name]
		if !ok {
			return &CheckError{Kind: "unknown identifier", Line: n.Line, Col: n.Col,
				Msg: fmt.Sprintf("call to undeclared function %q", n.Name)}
		}
		if sig.NumParams != len(n.Children) {
			return &CheckError{Kind: "function-signature mismatch", Line: n.Line, Col: n.Col,
				Msg: fmt.Sprintf("function %q expects %d arguments, got %d", n.Name, sig.NumParams, len(n.Children))}
		}
		for _, a := range n.Children {
			if err := c.checkExpr(a); err != nil {
				return err
			}
		}
		return nil
	case ast.KIndex:
		base := n.Children[0]
		v, _, found := c.scope.Lookup(base.Name)
		if !found {
			return &CheckError{Kind: "unknown identifier", Line: base.Line, Col: base.Col,
				Msg: fmt.Sprintf("%q is not declared", base.Name)}
		}
		if !v.IsArray() {
			return &CheckError{Kind: "array-indexing a non-array", Line: n.Line, Col: n.Col,
				Msg: fmt.Sprintf("%q is not an array", base.Name)}
		}
		if len(n.Children)-1 != len(v.Dims) {
			return &CheckError{Kind: "array-indexing a non-array", Line: n.Line, Col: n.Col,
				Msg: fmt.Sprintf("%q has %d dimensions, indexed with %d", base.Name, len(v.Dims), len(n.Children)-1)}
		}
		base.Sym = v
		for _, idx := range n.Children[1:] {
			if err := c.checkExpr(idx); err != nil {
				return err
			}
		}
		return nil
	default:
		return errors.Errorf("checker: unexpected expression kind %s", n.Kind)
	}
}
