// Package ast provides the tagged-node syntax tree produced by the frontend
// and consumed by the IR lowering pass.
//
// The tree uses a single generic Node type with a Kind tag and a Children
// slice, in the style of a flat ExprNode sum type rather than one Go struct
// per grammar production. Each precedence level or statement form is just
// another Kind; the fields that aren't relevant to a given Kind are left at
// their zero value.
package ast

import (
	"fmt"
	"strings"
)

// Kind differentiates the grammar production a Node represents.
type Kind int

const (
	KProgram Kind = iota

	KFuncDecl // declaration only, no body
	KFuncDef  // definition: Children holds params then one KBlock
	KParam

	KGlobalScalar // Name [, init expr in Children[0]]
	KGlobalArray  // Name, Dims

	KLocalScalar // Name [, init expr in Children[0]]
	KLocalArray  // Name, Dims

	KBlock // Children: statements, which share the block's one scope

	KIf       // Children: cond, then [, else]
	KWhile    // Children: cond, body
	KDoWhile  // Children: body, cond
	KForExpr  // Children: init-exprstmt-or-empty, cond-or-empty, upd-exprstmt-or-empty, body
	KForDecl  // Children: init-decl, cond-or-empty, upd-exprstmt-or-empty, body
	KBreak
	KContinue
	KReturn  // Children: [expr]
	KExprStmt // Children: [expr]
	KEmpty    // placeholder for an omitted for-loop clause or empty statement

	KIntLit // IntVal
	KIdent  // Name, resolved Sym after checking
	KUnary  // Op in {"-", "~", "!"}; Children: [operand]
	KBinary // Op in {"*","/","%","+","-","<",">","<=",">=","==","!=","&&","||"}; Children: [lhs, rhs]
	KAssign // Children: [lhs, rhs]
	KCall   // Name; Children: args
	KIndex  // Children: [base-ident, index-expr...]
)

var kindNames = [...]string{
	"PROGRAM", "FUNC_DECL", "FUNC_DEF", "PARAM",
	"GLOBAL_SCALAR", "GLOBAL_ARRAY", "LOCAL_SCALAR", "LOCAL_ARRAY",
	"BLOCK", "IF", "WHILE", "DO_WHILE", "FOR_EXPR", "FOR_DECL",
	"BREAK", "CONTINUE", "RETURN", "EXPR_STMT", "EMPTY",
	"INT_LIT", "IDENT", "UNARY", "BINARY", "ASSIGN", "CALL", "INDEX",
}

// String returns the print-friendly name of Kind k.
func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return "UNKNOWN_KIND"
	}
	return kindNames[k]
}

// Node is a single tagged node of the syntax tree.
type Node struct {
	Kind     Kind
	Line     int
	Col      int
	Name     string  // identifier / function name
	Op       string  // operator lexeme, for KUnary/KBinary
	IntVal   int64   // literal value, for KIntLit
	Dims     []int   // declared array dimensions
	Children []*Node

	Sym *Symbol // resolved by the checker; nil until then
}

// String returns a print-friendly single-line description of Node n.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	switch n.Kind {
	case KIntLit:
		return fmt.Sprintf("%s [%d]", n.Kind, n.IntVal)
	case KIdent, KCall, KFuncDecl, KFuncDef, KGlobalScalar, KGlobalArray, KLocalScalar, KLocalArray:
		return fmt.Sprintf("%s [%q]", n.Kind, n.Name)
	case KUnary, KBinary:
		return fmt.Sprintf("%s [%s]", n.Kind, n.Op)
	default:
		return n.Kind.String()
	}
}

// Print recursively prints Node n and its children, indenting by depth.
func (n *Node) Print(depth int) {
	fmt.Print(n.Sprint(depth))
}

// Sprint renders n and its children the way Print does, but into a string
// instead of stdout, so callers can write the tree to a dump file.
func (n *Node) Sprint(depth int) string {
	var sb strings.Builder
	n.sprint(&sb, depth)
	return sb.String()
}

func (n *Node) sprint(sb *strings.Builder, depth int) {
	if n == nil {
		fmt.Fprintf(sb, "%*c--> NIL\n", depth*2, ' ')
		return
	}
	fmt.Fprintf(sb, "%*c%s\n", depth*2, ' ', n.String())
	for _, c := range n.Children {
		c.sprint(sb, depth+1)
	}
}
