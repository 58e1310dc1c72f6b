// Package pretty renders an AST back into the surface syntax spec.md
// §4.3 describes, for the --dump-ast CLI output and for the
// parse-print-reparse round-trip property spec.md §8 calls out: parsing
// a program, pretty-printing the result, and re-parsing the printed text
// must yield an identical AST. It never consults resolved types or
// Objects -- only the syntax tree a parse produces -- so it works
// equally on a freshly parsed tree and one that has already been through
// semantic analysis.
package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/oxhq/vellum/internal/ast"
	"github.com/oxhq/vellum/internal/objtype"
)

// Print renders fn's body as a semicolon-separated top-level sequence,
// dropping the implicit `main` wrapper the parser adds around it (spec.md
// §4.3): printing fn.Body back out, rather than the whole FunDef, is what
// makes the result re-parseable into an equivalent implicit-main FunDef.
func Print(fn *ast.FunDef) string {
	p := &printer{}
	p.seqBody(fn.Body)
	return p.sb.String()
}

type printer struct {
	sb strings.Builder
}

func (p *printer) write(s string) { p.sb.WriteString(s) }

// seqBody prints a Seq's statements separated by "; ", or a single
// statement unwrapped if it isn't a Seq at all.
func (p *printer) seqBody(n ast.AstObject) {
	seq, ok := n.(*ast.Seq)
	if !ok {
		p.stmt(n)
		return
	}
	for i, op := range seq.Ops {
		if i > 0 {
			p.write("; ")
		}
		p.stmt(op)
	}
}

func (p *printer) stmt(n ast.AstObject) {
	switch node := n.(type) {
	case *ast.FunDef:
		p.funDef(node)
	case *ast.DataDef:
		p.dataDef(node)
	default:
		p.expr(n, 0)
	}
}

func (p *printer) funDef(n *ast.FunDef) {
	p.write("fun ")
	p.write(n.Name)
	p.write(":(")
	for i, prm := range n.Params {
		if i > 0 {
			p.write(", ")
		}
		p.write(prm.Name)
		p.write(":")
		p.typeExpr(prm.DeclaredType)
	}
	p.write(") ")
	p.typeExpr(n.ReturnType)
	p.write(" = (")
	p.seqBody(n.Body)
	p.write(")")
}

func (p *printer) dataDef(n *ast.DataDef) {
	if n.DeclaredStorage == ast.Static {
		p.write("static ")
	}
	p.write("val ")
	p.write(n.Name)
	p.write(" :")
	p.typeExpr(n.DeclaredType)
	switch {
	case n.Init == nil || n.Init.NoInit:
		p.write(" noinit")
	default:
		p.write(" = ")
		p.expr(n.Init.Args.Items[0], 0)
	}
}

func (p *printer) typeExpr(t ast.AstObjType) {
	switch n := t.(type) {
	case *ast.TypeSymbol:
		p.write(n.Name)
	case *ast.Quali:
		if n.Mutable {
			p.write("mut ")
		}
		p.typeExpr(n.Target)
	case *ast.Ptr:
		p.write("*")
		p.typeExpr(n.Pointee)
	case *ast.ClassDef:
		p.write("class ")
		if n.Name != "" {
			p.write(n.Name + " ")
		}
		p.write("{")
		for i, m := range n.Members {
			if i > 0 {
				p.write(", ")
			}
			p.write(m.Name)
			p.write(": ")
			p.typeExpr(m.Type)
		}
		p.write("}")
	default:
		p.write(fmt.Sprintf("<unknown-type %T>", t))
	}
}

// precedence mirrors the parser's climb (parseAssignment down to
// parseUnary): the lower the number, the more loosely it binds. expr
// parenthesizes a child whenever its own precedence is lower than the
// parent context requires, so re-parsing recovers the same tree shape
// rather than a flatter or deeper one.
func precedence(op objtype.Op) int {
	switch {
	case op.IsAssignment():
		return 1
	case op == objtype.OpOr:
		return 2
	case op == objtype.OpAnd:
		return 3
	case op.IsComparison():
		return 4
	case op == objtype.OpAdd || op == objtype.OpSub:
		return 5
	case op == objtype.OpMul || op == objtype.OpDiv:
		return 6
	default:
		return 7 // unary: Not, AddrOf, Deref, and unary Sub
	}
}

func (p *printer) expr(n ast.AstObject, minPrec int) {
	switch node := n.(type) {
	case *ast.Nop:
		// denotes nothing syntactically; only ever appears synthesized,
		// never round-tripped from real source.
	case *ast.Number:
		p.number(node)
	case *ast.Symbol:
		p.write(node.Name)
	case *ast.Cast:
		p.typeExpr(node.DeclaredType)
		p.write("(")
		p.expr(node.Operand, 0)
		p.write(")")
	case *ast.Operator:
		p.operator(node, minPrec)
	case *ast.Block:
		p.write("{")
		p.seqBody(node.Body)
		p.write("}")
	case *ast.If:
		p.ifExpr(node)
	case *ast.Loop:
		p.write("while ")
		p.expr(node.Cond, 0)
		p.write(": ")
		p.seqBody(node.Body)
	case *ast.Return:
		p.write("return")
		if node.Value != nil {
			p.write(" ")
			p.expr(node.Value, 0)
		}
	case *ast.FunCall:
		p.expr(node.Callee, 7)
		p.write("(")
		for i, a := range node.Args.Items {
			if i > 0 {
				p.write(", ")
			}
			p.expr(a, 0)
		}
		p.write(")")
	case *ast.Seq:
		p.write("(")
		p.seqBody(node)
		p.write(")")
	case *ast.FunDef:
		p.funDef(node)
	case *ast.DataDef:
		p.dataDef(node)
	default:
		p.write(fmt.Sprintf("<unknown-node %T>", n))
	}
}

func (p *printer) number(n *ast.Number) {
	switch n.LitType {
	case objtype.Bool:
		if n.IntValue != 0 {
			p.write("true")
		} else {
			p.write("false")
		}
	case objtype.Char:
		p.write(charLiteral(byte(n.IntValue)))
	case objtype.Double:
		p.write(formatDouble(n.DoubleValue))
	default:
		p.write(strconv.FormatInt(int64(n.IntValue), 10))
	}
}

// formatDouble renders v the way scanNumber can read it back: fixed
// notation only (the lexer has no exponent syntax), always with a
// decimal point, so a whole-valued double like 42.0 never collapses into
// the int literal spelling "42" and silently changes literal kind across
// a reparse.
func formatDouble(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func charLiteral(b byte) string {
	switch b {
	case '\n':
		return `'\n'`
	case '\t':
		return `'\t'`
	case 0:
		return `'\0'`
	case '\\':
		return `'\\'`
	case '\'':
		return `'\''`
	default:
		return "'" + string(rune(b)) + "'"
	}
}

func (p *printer) operator(n *ast.Operator, minPrec int) {
	prec := precedence(n.Op)
	if len(n.Args) == 1 {
		if n.Op == objtype.OpDeref {
			p.write("*")
		} else {
			p.write(n.Op.String())
		}
		p.expr(n.Args[0], prec)
		return
	}

	needParens := prec < minPrec
	if needParens {
		p.write("(")
	}
	childMin := prec + 1
	if n.Op.IsAssignment() {
		// right-associative: the rhs may itself be another assignment at
		// the same precedence without needing parens.
		childMin = prec
	}
	p.expr(n.Args[0], prec)
	p.write(" ")
	p.write(n.Op.String())
	p.write(" ")
	p.expr(n.Args[1], childMin)
	if needParens {
		p.write(")")
	}
}

func (p *printer) ifExpr(n *ast.If) {
	p.write("if ")
	p.expr(n.Cond, 0)
	p.write(": ")
	p.seqBody(n.Then)
	if n.Else != nil {
		p.write(" else ")
		p.seqBody(n.Else)
	}
}
