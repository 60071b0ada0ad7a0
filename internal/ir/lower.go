package ir

import (
	"riscvc/internal/ast"

	"github.com/pkg/errors"
)

// loopCtx is one active loop's three label ids, per spec's loop context
// stack: begin (top of test), cont (continue target), brk (after-loop).
type loopCtx struct {
	begin, cont, brk int32
}

// Lowerer walks a checked AST and emits IR into a Builder. It owns the
// per-function label and virtual-register counters and the loop-context
// stack; both counters reset on function entry, matching the "per-function
// monotonically increasing counters" rule.
type Lowerer struct {
	b *Builder

	localN int32
	labelN int32
	loops  []loopCtx
}

// NewLowerer returns a Lowerer ready to lower a single program.
func NewLowerer() *Lowerer {
	return &Lowerer{b: NewBuilder()}
}

func (l *Lowerer) newLocal() Var {
	l.localN++
	return NewLocal(l.localN)
}

func (l *Lowerer) newLabel() int32 {
	l.labelN++
	return l.labelN
}

// Lower lowers a checked program tree into a Module.
func Lower(root *ast.Node) (*Module, error) {
	l := NewLowerer()
	for _, n := range root.Children {
		if err := l.lowerTopLevel(n); err != nil {
			return nil, err
		}
	}
	return Split(l.b.Instructions())
}

func (l *Lowerer) lowerTopLevel(n *ast.Node) error {
	switch n.Kind {
	case ast.KFuncDecl:
		return nil // signature only, nothing to emit
	case ast.KFuncDef:
		return l.lowerFuncDef(n)
	case ast.KGlobalScalar, ast.KGlobalArray:
		return l.lowerGlobalDecl(n)
	default:
		return errors.Errorf("ir: unexpected top-level node %s", n.Kind)
	}
}

func (l *Lowerer) lowerGlobalDecl(n *ast.Node) error {
	switch n.Kind {
	case ast.KGlobalArray:
		l.b.Append(OpGBSS, Name(n.Name), Imm(int64(n.Sym.Bytes())))
	case ast.KGlobalScalar:
		if len(n.Children) == 1 {
			l.b.Append(OpGINI, Name(n.Name), Imm(n.Children[0].IntVal))
		} else {
			l.b.Append(OpGBSS, Name(n.Name), Imm(4))
		}
	}
	return nil
}

func (l *Lowerer) lowerFuncDef(n *ast.Node) error {
	l.localN = 0
	l.labelN = 0
	l.loops = nil

	arity := 0
	for _, c := range n.Children {
		if c.Kind == ast.KParam {
			arity++
		}
	}
	l.b.Append(OpFUNBEG, Name(n.Name), Imm(int64(arity)))
	body := n.Children[len(n.Children)-1]
	if err := l.lowerBlock(body); err != nil {
		return err
	}
	l.b.Append(OpFUNEND)
	return nil
}

func (l *Lowerer) lowerBlock(n *ast.Node) error {
	for _, s := range n.Children {
		if err := l.lowerStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (l *Lowerer) lowerStmt(n *ast.Node) error {
	switch n.Kind {
	case ast.KBlock:
		return l.lowerBlock(n)
	case ast.KLocalScalar:
		return l.lowerLocalScalarDecl(n)
	case ast.KLocalArray:
		v := l.newLocal()
		n.Sym.Bound = true
		n.Sym.Local = v.Local
		l.b.Append(OpALLOC, VarAddr(v), Imm(int64(n.Sym.Bytes())))
		return nil
	case ast.KIf:
		return l.lowerIf(n)
	case ast.KWhile:
		return l.lowerWhile(n)
	case ast.KDoWhile:
		return l.lowerDoWhile(n)
	case ast.KForExpr, ast.KForDecl:
		return l.lowerFor(n)
	case ast.KBreak:
		cur := l.loops[len(l.loops)-1]
		l.b.Append(OpJMP, Imm(int64(cur.brk)))
		return nil
	case ast.KContinue:
		cur := l.loops[len(l.loops)-1]
		l.b.Append(OpJMP, Imm(int64(cur.cont)))
		return nil
	case ast.KReturn:
		t, err := l.lowerExpr(n.Children[0])
		if err != nil {
			return err
		}
		l.b.Append(OpRET, VarAddr(t))
		return nil
	case ast.KExprStmt:
		_, err := l.lowerExpr(n.Children[0])
		return err
	case ast.KEmpty:
		return nil
	default:
		return errors.Errorf("ir: unexpected statement node %s", n.Kind)
	}
}

func (l *Lowerer) lowerLocalScalarDecl(n *ast.Node) error {
	if len(n.Children) == 1 {
		t, err := l.lowerExpr(n.Children[0])
		if err != nil {
			return err
		}
		v := l.newLocal()
		n.Sym.Bound = true
		n.Sym.Local = v.Local
		l.b.Append(OpMOV, VarAddr(v), VarAddr(t))
	}
	// Uninitialized: the virtual register is minted lazily on first use,
	// in lowerIdent.
	return nil
}

// bind returns the Var bound to a local scalar/array symbol, minting it
// lazily on first use (the uninitialized-declaration case).
func (l *Lowerer) bind(sym *ast.Symbol) Var {
	if !sym.Bound {
		sym.Bound = true
		sym.Local = l.newLocal().Local
	}
	return NewLocal(sym.Local)
}

func (l *Lowerer) lowerIf(n *ast.Node) error {
	cond := n.Children[0]
	thn := n.Children[1]
	var els *ast.Node
	if len(n.Children) == 3 {
		els = n.Children[2]
	}

	lfalse := l.newLabel()
	lend := lfalse
	if els != nil {
		lend = l.newLabel()
	}

	t, err := l.lowerExpr(cond)
	if err != nil {
		return err
	}
	l.b.Append(OpBEQZ, VarAddr(t), Imm(int64(lfalse)))
	if err := l.lowerStmt(thn); err != nil {
		return err
	}
	if els != nil {
		l.b.Append(OpJMP, Imm(int64(lend)))
		l.b.Append(OpLABEL, Imm(int64(lfalse)))
		if err := l.lowerStmt(els); err != nil {
			return err
		}
	}
	l.b.Append(OpLABEL, Imm(int64(lend)))
	return nil
}

func (l *Lowerer) lowerWhile(n *ast.Node) error {
	cond, body := n.Children[0], n.Children[1]
	lbegin, lcont, lbreak := l.newLabel(), l.newLabel(), l.newLabel()

	l.b.Append(OpLABEL, Imm(int64(lbegin)))
	l.b.Append(OpLABEL, Imm(int64(lcont)))
	l.loops = append(l.loops, loopCtx{begin: lbegin, cont: lcont, brk: lbreak})

	t, err := l.lowerExpr(cond)
	if err != nil {
		l.popLoop()
		return err
	}
	l.b.Append(OpBEQZ, VarAddr(t), Imm(int64(lbreak)))
	if err := l.lowerStmt(body); err != nil {
		l.popLoop()
		return err
	}
	l.b.Append(OpJMP, Imm(int64(lbegin)))
	l.b.Append(OpLABEL, Imm(int64(lbreak)))
	l.popLoop()
	return nil
}

func (l *Lowerer) lowerDoWhile(n *ast.Node) error {
	body, cond := n.Children[0], n.Children[1]
	lbegin, lcont, lbreak := l.newLabel(), l.newLabel(), l.newLabel()

	l.b.Append(OpLABEL, Imm(int64(lbegin)))
	l.loops = append(l.loops, loopCtx{begin: lbegin, cont: lcont, brk: lbreak})
	if err := l.lowerStmt(body); err != nil {
		l.popLoop()
		return err
	}
	l.b.Append(OpLABEL, Imm(int64(lcont)))
	t, err := l.lowerExpr(cond)
	if err != nil {
		l.popLoop()
		return err
	}
	l.b.Append(OpBEQZ, VarAddr(t), Imm(int64(lbreak)))
	l.b.Append(OpJMP, Imm(int64(lbegin)))
	l.b.Append(OpLABEL, Imm(int64(lbreak)))
	l.popLoop()
	return nil
}

func (l *Lowerer) lowerFor(n *ast.Node) error {
	initN, condN, updN, body := n.Children[0], n.Children[1], n.Children[2], n.Children[3]
	lbegin, lcont, lbreak := l.newLabel(), l.newLabel(), l.newLabel()

	if err := l.lowerStmt(initN); err != nil {
		return err
	}
	l.b.Append(OpLABEL, Imm(int64(lbegin)))
	if condN.Kind != ast.KEmpty {
		t, err := l.lowerExpr(condN)
		if err != nil {
			return err
		}
		l.b.Append(OpBEQZ, VarAddr(t), Imm(int64(lbreak)))
	}
	l.loops = append(l.loops, loopCtx{begin: lbegin, cont: lcont, brk: lbreak})
	if err := l.lowerStmt(body); err != nil {
		l.popLoop()
		return err
	}
	l.b.Append(OpLABEL, Imm(int64(lcont)))
	if err := l.lowerStmt(updN); err != nil {
		l.popLoop()
		return err
	}
	l.b.Append(OpJMP, Imm(int64(lbegin)))
	l.b.Append(OpLABEL, Imm(int64(lbreak)))
	l.popLoop()
	return nil
}

func (l *Lowerer) popLoop() {
	l.loops = l.loops[:len(l.loops)-1]
}

// --- Expressions ---

// lowerExpr lowers a value-producing expression, returning the virtual
// variable holding its result. For l-value expressions that resolve to
// memory (a global scalar or any array element) the final instruction
// emitted is a LOAD; lowerAssign relies on being able to find and rewrite
// that LOAD via l.b.Last().
func (l *Lowerer) lowerExpr(n *ast.Node) (Var, error) {
	switch n.Kind {
	case ast.KIntLit:
		v := l.newLocal()
		l.b.Append(OpMOV, VarAddr(v), Imm(n.IntVal))
		return v, nil

	case ast.KIdent:
		return l.lowerIdentRead(n)

	case ast.KIndex:
		return l.lowerIndexRead(n)

	case ast.KUnary:
		t, err := l.lowerExpr(n.Children[0])
		if err != nil {
			return Var{}, err
		}
		v := l.newLocal()
		op, err := unaryOp(n.Op)
		if err != nil {
			return Var{}, err
		}
		l.b.Append(op, VarAddr(v), VarAddr(t))
		return v, nil

	case ast.KBinary:
		lv, err := l.lowerExpr(n.Children[0])
		if err != nil {
			return Var{}, err
		}
		rv, err := l.lowerExpr(n.Children[1])
		if err != nil {
			return Var{}, err
		}
		v := l.newLocal()
		op, err := binaryOp(n.Op)
		if err != nil {
			return Var{}, err
		}
		l.b.Append(op, VarAddr(v), VarAddr(lv), VarAddr(rv))
		return v, nil

	case ast.KAssign:
		return l.lowerAssign(n)

	case ast.KCall:
		var args []Var
		for _, a := range n.Children {
			av, err := l.lowerExpr(a)
			if err != nil {
				return Var{}, err
			}
			args = append(args, av)
		}
		for _, av := range args {
			l.b.Append(OpPARAM, VarAddr(av))
		}
		ret := l.newLocal()
		l.b.Append(OpCALL, VarAddr(ret), Name(n.Name))
		return ret, nil

	default:
		return Var{}, errors.Errorf("ir: unexpected expression node %s", n.Kind)
	}
}

// lowerIdentRead lowers a bare identifier reference: identity for a local
// scalar (no instruction emitted), LA+LOAD for a global scalar.
func (l *Lowerer) lowerIdentRead(n *ast.Node) (Var, error) {
	sym := n.Sym
	if sym.Global {
		addr := l.newLocal()
		l.b.Append(OpLA, VarAddr(addr), Name(sym.Name))
		v := l.newLocal()
		l.b.Append(OpLOAD, VarAddr(v), VarAddr(addr), Imm(0))
		return v, nil
	}
	if sym.Ordinal > 0 {
		return NewParam(sym.Ordinal), nil
	}
	return l.bind(sym), nil
}

// lowerIndexRead lowers a[e0]...[ek-1] into the address arithmetic of
// §4.2.5 followed by a LOAD.
func (l *Lowerer) lowerIndexRead(n *ast.Node) (Var, error) {
	base := n.Children[0]
	sym := base.Sym
	dims := sym.Dims
	indices := n.Children[1:]

	var baseAddr Var
	if sym.Global {
		baseAddr = l.newLocal()
		l.b.Append(OpLA, VarAddr(baseAddr), Name(sym.Name))
	} else {
		baseAddr = l.bind(sym)
	}

	strides := make([]int, len(dims))
	strides[len(dims)-1] = 1
	for i := len(dims) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * dims[i+1]
	}

	off := l.newLocal()
	l.b.Append(OpMOV, VarAddr(off), Imm(0))
	for i, idxNode := range indices {
		ti, err := l.lowerExpr(idxNode)
		if err != nil {
			return Var{}, err
		}
		tmp := l.newLocal()
		l.b.Append(OpMUL, VarAddr(tmp), VarAddr(ti), Imm(int64(strides[i])))
		nextOff := l.newLocal()
		l.b.Append(OpADD, VarAddr(nextOff), VarAddr(off), VarAddr(tmp))
		off = nextOff
	}
	byteOff := l.newLocal()
	l.b.Append(OpMUL, VarAddr(byteOff), VarAddr(off), Imm(4))

	addr := l.newLocal()
	if sym.Global {
		l.b.Append(OpADD, VarAddr(addr), VarAddr(baseAddr), VarAddr(byteOff))
	} else {
		// Local arrays grow toward lower addresses from their base.
		l.b.Append(OpSUB, VarAddr(addr), VarAddr(baseAddr), VarAddr(byteOff))
	}

	v := l.newLocal()
	l.b.Append(OpLOAD, VarAddr(v), VarAddr(addr), Imm(0))
	return v, nil
}

// lowerAssign lowers lhs = rhs per §4.2.4.
func (l *Lowerer) lowerAssign(n *ast.Node) (Var, error) {
	lhs, rhs := n.Children[0], n.Children[1]
	t, err := l.lowerExpr(rhs)
	if err != nil {
		return Var{}, err
	}

	if lhs.Kind == ast.KIdent && !lhs.Sym.Global {
		target := l.lowerIdentTarget(lhs)
		l.b.Append(OpMOV, VarAddr(target), VarAddr(t))
		return t, nil
	}

	// Global scalar or any array element: lower the l-value the same way a
	// read would be lowered, then rewrite the trailing LOAD into a STORE.
	if _, err := l.lowerExpr(lhs); err != nil {
		return Var{}, err
	}
	last := l.b.Last()
	if last.Op != OpLOAD {
		return Var{}, errors.Errorf("ir: internal error: assignment target did not lower to a LOAD")
	}
	last.Op = OpSTORE
	last.A0 = VarAddr(t)
	return t, nil
}

// lowerIdentTarget returns the bound Var for a local-scalar assignment
// target without emitting the LA/LOAD a read would.
func (l *Lowerer) lowerIdentTarget(n *ast.Node) Var {
	sym := n.Sym
	if sym.Ordinal > 0 {
		return NewParam(sym.Ordinal)
	}
	return l.bind(sym)
}

func unaryOp(op string) (Op, error) {
	switch op {
	case "-":
		return OpNEG, nil
	case "~":
		return OpNOT, nil
	case "!":
		return OpLNOT, nil
	default:
		return 0, errors.Errorf("ir: unknown unary operator %q", op)
	}
}

func binaryOp(op string) (Op, error) {
	switch op {
	case "*":
		return OpMUL, nil
	case "/":
		return OpDIV, nil
	case "%":
		return OpREM, nil
	case "+":
		return OpADD, nil
	case "-":
		return OpSUB, nil
	case "<":
		return OpLT, nil
	case ">":
		return OpGT, nil
	case "<=":
		return OpLE, nil
	case ">=":
		return OpGE, nil
	case "==":
		return OpEQ, nil
	case "!=":
		return OpNE, nil
	case "&&":
		return OpLAND, nil
	case "||":
		return OpLOR, nil
	default:
		return 0, errors.Errorf("ir: unknown binary operator %q", op)
	}
}
