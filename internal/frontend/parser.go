// parser.go implements a hand-written recursive-descent / operator-
// precedence parser. The teacher compiler generates its parser with
// goyacc from a .y grammar file (see frontend/tree.go, frontend/parser.y);
// reproducing that here would require running `go generate`/`goyacc`,
// which this exercise does not invoke, so the grammar below is written by
// hand instead — one of the two techniques spec.md §9 calls out as
// equally valid ("a flat ExprNode sum with an operator-precedence-driven
// parser").
package frontend

import (
	"strconv"

	"riscvc/internal/ast"

	"github.com/pkg/errors"
)

// parser consumes a flat token slice and builds an *ast.Node tree.
type parser struct {
	toks []item
	pos  int
}

// Parse lexes and parses src, returning the program's root ast.Node.
func Parse(src string) (*ast.Node, error) {
	toks, err := Lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	root, err := p.parseProgram()
	if err != nil {
		return nil, errors.Wrap(err, "parse error")
	}
	return root, nil
}

func (p *parser) cur() item { return p.toks[p.pos] }

func (p *parser) advance() item {
	t := p.toks[p.pos]
	if t.typ != itemEOF {
		p.pos++
	}
	return t
}

func (p *parser) check(typ itemType) bool { return p.cur().typ == typ }

func (p *parser) expect(typ itemType) (item, error) {
	if !p.check(typ) {
		return item{}, p.errorf("expected %s, got %s %q", typ, p.cur().typ, p.cur().val)
	}
	return p.advance(), nil
}

func (p *parser) errorf(format string, args ...interface{}) error {
	t := p.cur()
	return errors.Errorf("line %d:%d: "+format, append([]interface{}{t.line, t.pos}, args...)...)
}

// parseProgram parses (funcDeclOrDef | globalDecl)* EOF.
func (p *parser) parseProgram() (*ast.Node, error) {
	root := &ast.Node{Kind: ast.KProgram}
	for !p.check(itemEOF) {
		n, err := p.parseTopLevel()
		if err != nil {
			return nil, err
		}
		root.Children = append(root.Children, n)
	}
	return root, nil
}

// parseTopLevel parses one function declaration/definition or global
// variable declaration.
func (p *parser) parseTopLevel() (*ast.Node, error) {
	line, col := p.cur().line, p.cur().pos
	if _, err := p.expect(itemKwInt); err != nil {
		return nil, err
	}
	name, err := p.expect(itemIdentifier)
	if err != nil {
		return nil, err
	}
	if p.check(itemLParen) {
		return p.parseFuncRest(name.val, line, col)
	}
	return p.parseGlobalDeclRest(name.val, line, col)
}

// parseFuncRest parses the parameter list and either a ";" (declaration)
// or a block (definition), having already consumed "int" IDENT.
func (p *parser) parseFuncRest(name string, line, col int) (*ast.Node, error) {
	if _, err := p.expect(itemLParen); err != nil {
		return nil, err
	}
	var params []*ast.Node
	if !p.check(itemRParen) {
		for {
			if _, err := p.expect(itemKwInt); err != nil {
				return nil, err
			}
			pn, err := p.expect(itemIdentifier)
			if err != nil {
				return nil, err
			}
			params = append(params, &ast.Node{Kind: ast.KParam, Name: pn.val, Line: pn.line, Col: pn.pos})
			if p.check(itemComma) {
				p.advance()
				continue
			}
			break
		}
	}
	if _, err := p.expect(itemRParen); err != nil {
		return nil, err
	}

	if p.check(itemSemi) {
		p.advance()
		return &ast.Node{Kind: ast.KFuncDecl, Name: name, Line: line, Col: col, Children: params}, nil
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	children := append(params, body)
	return &ast.Node{Kind: ast.KFuncDef, Name: name, Line: line, Col: col, Children: children}, nil
}

// parseGlobalDeclRest parses the remainder of a global variable
// declaration, having already consumed "int" IDENT.
func (p *parser) parseGlobalDeclRest(name string, line, col int) (*ast.Node, error) {
	dims, err := p.parseDims()
	if err != nil {
		return nil, err
	}
	if len(dims) > 0 {
		if _, err := p.expect(itemSemi); err != nil {
			return nil, err
		}
		return &ast.Node{Kind: ast.KGlobalArray, Name: name, Dims: dims, Line: line, Col: col}, nil
	}

	n := &ast.Node{Kind: ast.KGlobalScalar, Name: name, Line: line, Col: col}
	if p.check(itemAssign) {
		p.advance()
		lit, err := p.expect(itemNumber)
		if err != nil {
			return nil, errors.Wrap(err, "global initializer must be an integer literal")
		}
		v, err := strconv.ParseInt(lit.val, 10, 32)
		if err != nil {
			return nil, p.errorf("malformed integer literal %q", lit.val)
		}
		n.Children = []*ast.Node{{Kind: ast.KIntLit, IntVal: v, Line: lit.line, Col: lit.pos}}
	}
	if _, err := p.expect(itemSemi); err != nil {
		return nil, err
	}
	return n, nil
}

// parseDims parses a (possibly empty) sequence of "[" NUMBER "]" array
// dimension suffixes.
func (p *parser) parseDims() ([]int, error) {
	var dims []int
	for p.check(itemLBracket) {
		p.advance()
		lit, err := p.expect(itemNumber)
		if err != nil {
			return nil, err
		}
		n, err := strconv.Atoi(lit.val)
		if err != nil || n <= 0 {
			return nil, p.errorf("array dimension must be a positive integer, got %q", lit.val)
		}
		dims = append(dims, n)
		if _, err := p.expect(itemRBracket); err != nil {
			return nil, err
		}
	}
	return dims, nil
}

// parseBlock parses "{" statement* "}".
func (p *parser) parseBlock() (*ast.Node, error) {
	lb, err := p.expect(itemLBrace)
	if err != nil {
		return nil, err
	}
	blk := &ast.Node{Kind: ast.KBlock, Line: lb.line, Col: lb.pos}
	for !p.check(itemRBrace) {
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		blk.Children = append(blk.Children, s)
	}
	p.advance()
	return blk, nil
}

// parseStatement parses a single statement.
func (p *parser) parseStatement() (*ast.Node, error) {
	switch p.cur().typ {
	case itemLBrace:
		return p.parseBlock()
	case itemKwIf:
		return p.parseIf()
	case itemKwWhile:
		return p.parseWhile()
	case itemKwDo:
		return p.parseDoWhile()
	case itemKwFor:
		return p.parseFor()
	case itemKwBreak:
		t := p.advance()
		if _, err := p.expect(itemSemi); err != nil {
			return nil, err
		}
		return &ast.Node{Kind: ast.KBreak, Line: t.line, Col: t.pos}, nil
	case itemKwContinue:
		t := p.advance()
		if _, err := p.expect(itemSemi); err != nil {
			return nil, err
		}
		return &ast.Node{Kind: ast.KContinue, Line: t.line, Col: t.pos}, nil
	case itemKwReturn:
		t := p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(itemSemi); err != nil {
			return nil, err
		}
		return &ast.Node{Kind: ast.KReturn, Line: t.line, Col: t.pos, Children: []*ast.Node{e}}, nil
	case itemKwInt:
		return p.parseLocalDecl()
	case itemSemi:
		t := p.advance()
		return &ast.Node{Kind: ast.KEmpty, Line: t.line, Col: t.pos}, nil
	default:
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(itemSemi); err != nil {
			return nil, err
		}
		return &ast.Node{Kind: ast.KExprStmt, Line: e.Line, Col: e.Col, Children: []*ast.Node{e}}, nil
	}
}

// parseLocalDecl parses a local scalar or array declaration statement.
func (p *parser) parseLocalDecl() (*ast.Node, error) {
	kw, err := p.expect(itemKwInt)
	if err != nil {
		return nil, err
	}
	name, err := p.expect(itemIdentifier)
	if err != nil {
		return nil, err
	}
	dims, err := p.parseDims()
	if err != nil {
		return nil, err
	}
	if len(dims) > 0 {
		if _, err := p.expect(itemSemi); err != nil {
			return nil, err
		}
		return &ast.Node{Kind: ast.KLocalArray, Name: name.val, Dims: dims, Line: kw.line, Col: kw.pos}, nil
	}
	n := &ast.Node{Kind: ast.KLocalScalar, Name: name.val, Line: kw.line, Col: kw.pos}
	if p.check(itemAssign) {
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		n.Children = []*ast.Node{e}
	}
	if _, err := p.expect(itemSemi); err != nil {
		return nil, err
	}
	return n, nil
}

func (p *parser) parseIf() (*ast.Node, error) {
	kw, err := p.expect(itemKwIf)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(itemLParen); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(itemRParen); err != nil {
		return nil, err
	}
	thn, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	children := []*ast.Node{cond, thn}
	if p.check(itemKwElse) {
		p.advance()
		els, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		children = append(children, els)
	}
	return &ast.Node{Kind: ast.KIf, Line: kw.line, Col: kw.pos, Children: children}, nil
}

func (p *parser) parseWhile() (*ast.Node, error) {
	kw, err := p.expect(itemKwWhile)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(itemLParen); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(itemRParen); err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &ast.Node{Kind: ast.KWhile, Line: kw.line, Col: kw.pos, Children: []*ast.Node{cond, body}}, nil
}

func (p *parser) parseDoWhile() (*ast.Node, error) {
	kw, err := p.expect(itemKwDo)
	if err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(itemKwWhile); err != nil {
		return nil, err
	}
	if _, err := p.expect(itemLParen); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(itemRParen); err != nil {
		return nil, err
	}
	if _, err := p.expect(itemSemi); err != nil {
		return nil, err
	}
	return &ast.Node{Kind: ast.KDoWhile, Line: kw.line, Col: kw.pos, Children: []*ast.Node{body, cond}}, nil
}

// parseFor parses both for-loop forms. The expression-init form reuses
// the declaration-init form's shape except Children[0] is a KExprStmt
// wrapping the init expression (or KEmpty) instead of a local declaration.
// In both forms the update clause is a KExprStmt (or KEmpty).
func (p *parser) parseFor() (*ast.Node, error) {
	kw, err := p.expect(itemKwFor)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(itemLParen); err != nil {
		return nil, err
	}

	isDecl := p.check(itemKwInt)
	var initNode *ast.Node
	kind := ast.KForExpr
	if isDecl {
		kind = ast.KForDecl
		initNode, err = p.parseLocalDecl() // consumes trailing ';'
		if err != nil {
			return nil, err
		}
	} else if p.check(itemSemi) {
		initNode = &ast.Node{Kind: ast.KEmpty}
		p.advance()
	} else {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		initNode = &ast.Node{Kind: ast.KExprStmt, Children: []*ast.Node{e}}
		if _, err := p.expect(itemSemi); err != nil {
			return nil, err
		}
	}

	var condNode *ast.Node
	if p.check(itemSemi) {
		condNode = &ast.Node{Kind: ast.KEmpty}
	} else {
		condNode, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(itemSemi); err != nil {
		return nil, err
	}

	var updNode *ast.Node
	if p.check(itemRParen) {
		updNode = &ast.Node{Kind: ast.KEmpty}
	} else {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		updNode = &ast.Node{Kind: ast.KExprStmt, Children: []*ast.Node{e}}
	}
	if _, err := p.expect(itemRParen); err != nil {
		return nil, err
	}

	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &ast.Node{Kind: kind, Line: kw.line, Col: kw.pos, Children: []*ast.Node{initNode, condNode, updNode, body}}, nil
}

// --- Expressions, by ascending precedence level. ---

func (p *parser) parseExpr() (*ast.Node, error) { return p.parseAssign() }

func (p *parser) parseAssign() (*ast.Node, error) {
	lhs, err := p.parseLogicOr()
	if err != nil {
		return nil, err
	}
	if p.check(itemAssign) {
		if lhs.Kind != ast.KIdent && lhs.Kind != ast.KIndex {
			return nil, p.errorf("left-hand side of assignment must be a variable or array element")
		}
		t := p.advance()
		rhs, err := p.parseAssign()
		if err != nil {
			return nil, err
		}
		return &ast.Node{Kind: ast.KAssign, Line: t.line, Col: t.pos, Children: []*ast.Node{lhs, rhs}}, nil
	}
	return lhs, nil
}

func (p *parser) parseLogicOr() (*ast.Node, error) {
	return p.parseBinaryLeft(p.parseLogicAnd, itemOrOr)
}

func (p *parser) parseLogicAnd() (*ast.Node, error) {
	return p.parseBinaryLeft(p.parseEquality, itemAndAnd)
}

func (p *parser) parseEquality() (*ast.Node, error) {
	return p.parseBinaryLeft(p.parseRelational, itemEqEq, itemNe)
}

func (p *parser) parseRelational() (*ast.Node, error) {
	return p.parseBinaryLeft(p.parseAdditive, itemLt, itemGt, itemLe, itemGe)
}

func (p *parser) parseAdditive() (*ast.Node, error) {
	return p.parseBinaryLeft(p.parseMultiplicative, itemPlus, itemMinus)
}

func (p *parser) parseMultiplicative() (*ast.Node, error) {
	return p.parseBinaryLeft(p.parseUnary, itemStar, itemSlash, itemPercent)
}

// parseBinaryLeft implements one left-associative binary precedence level:
// it parses one operand via next, then repeatedly consumes an operator
// from ops followed by another operand.
func (p *parser) parseBinaryLeft(next func() (*ast.Node, error), ops ...itemType) (*ast.Node, error) {
	lhs, err := next()
	if err != nil {
		return nil, err
	}
	for {
		matched := false
		for _, op := range ops {
			if p.check(op) {
				matched = true
				t := p.advance()
				rhs, err := next()
				if err != nil {
					return nil, err
				}
				lhs = &ast.Node{Kind: ast.KBinary, Op: t.typ.String(), Line: t.line, Col: t.pos, Children: []*ast.Node{lhs, rhs}}
				break
			}
		}
		if !matched {
			return lhs, nil
		}
	}
}

func (p *parser) parseUnary() (*ast.Node, error) {
	switch p.cur().typ {
	case itemMinus, itemTilde, itemBang:
		t := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Node{Kind: ast.KUnary, Op: t.typ.String(), Line: t.line, Col: t.pos, Children: []*ast.Node{operand}}, nil
	default:
		return p.parsePostfix()
	}
}

func (p *parser) parsePostfix() (*ast.Node, error) {
	n, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.check(itemLBracket) {
		if n.Kind != ast.KIdent {
			return nil, p.errorf("cannot index a non-array expression")
		}
		lb := p.advance()
		idx, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(itemRBracket); err != nil {
			return nil, err
		}
		if n.Kind == ast.KIndex {
			n.Children = append(n.Children, idx)
		} else {
			n = &ast.Node{Kind: ast.KIndex, Line: lb.line, Col: lb.pos, Children: []*ast.Node{n, idx}}
		}
	}
	return n, nil
}

func (p *parser) parsePrimary() (*ast.Node, error) {
	t := p.cur()
	switch t.typ {
	case itemNumber:
		p.advance()
		v, err := strconv.ParseInt(t.val, 10, 32)
		if err != nil {
			return nil, p.errorf("malformed integer literal %q", t.val)
		}
		return &ast.Node{Kind: ast.KIntLit, IntVal: v, Line: t.line, Col: t.pos}, nil
	case itemIdentifier:
		p.advance()
		if p.check(itemLParen) {
			p.advance()
			var args []*ast.Node
			if !p.check(itemRParen) {
				for {
					a, err := p.parseExpr()
					if err != nil {
						return nil, err
					}
					args = append(args, a)
					if p.check(itemComma) {
						p.advance()
						continue
					}
					break
				}
			}
			if _, err := p.expect(itemRParen); err != nil {
				return nil, err
			}
			return &ast.Node{Kind: ast.KCall, Name: t.val, Line: t.line, Col: t.pos, Children: args}, nil
		}
		return &ast.Node{Kind: ast.KIdent, Name: t.val, Line: t.line, Col: t.pos}, nil
	case itemLParen:
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(itemRParen); err != nil {
			return nil, err
		}
		return e, nil
	default:
		return nil, p.errorf("unexpected token %s %q", t.typ, t.val)
	}
}
