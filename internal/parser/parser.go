// Package parser implements a hand-written recursive-descent/precedence-
// climbing parser lowering the filtered token stream of spec.md §4.2 into
// the AST variants of spec.md §3, per the grammar sketch of spec.md §4.3.
// There is no parser-generator library anywhere in the example pack, so
// (per DESIGN.md) this is built by hand in the Pratt-parsing style the
// pack's own compiler-adjacent example uses, rather than against an
// actual LALR table.
package parser

import (
	"github.com/oxhq/vellum/internal/ast"
	"github.com/oxhq/vellum/internal/diagnostics"
	"github.com/oxhq/vellum/internal/objtype"
	"github.com/oxhq/vellum/internal/token"
)

// Parser consumes a filtered token stream and produces AST nodes. Parse
// errors are raised as diagnostics.BuildErrors of kind eSyntaxError and
// unwind via diagnostics.Log.Abort (see Parse's Recover boundary); the
// parser never attempts recovery beyond what the grammar provides, per
// spec.md §4.3.
type Parser struct {
	toks []token.Token
	pos  int
	log  *diagnostics.Log
}

// eSyntaxError is the error kind for parse failures. It is not one of
// spec.md §7's 16 semantic-analysis kinds (those belong to passes 1-3);
// the parser has its own, listed here so it shares the same BuildError
// shape and the same Log/Abort/Recover plumbing as the rest of the
// pipeline.
const eSyntaxError diagnostics.ErrorKind = "eSyntaxError"

func New(toks []token.Token, log *diagnostics.Log) *Parser {
	return &Parser{toks: toks, log: log}
}

// Parse parses the whole filtered token stream into the implicit `main`
// FunDef the parser extension wraps top-level code in (spec.md §4.3:
// "wraps top-level expressions into an implicit main function returning
// int").
func Parse(toks []token.Token, log *diagnostics.Log) (fn *ast.FunDef, err error) {
	defer diagnostics.Recover(&err)
	p := New(toks, log)
	body := p.parseSeqUntil(token.EOF)
	p.expect(token.EOF)
	span := body.Span()
	ret := ast.NewTypeSymbol(span, "int")
	return ast.NewFunDef(span, "main", nil, ret, body), nil
}

func (p *Parser) cur() token.Token {
	if p.pos >= len(p.toks) {
		return token.Token{Kind: token.EOF}
	}
	return p.toks[p.pos]
}

func (p *Parser) at(k token.Kind) bool { return p.cur().Kind == k }

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *Parser) expect(k token.Kind) token.Token {
	if !p.at(k) {
		p.fail("expected %s, got %s", k, p.cur().Kind)
	}
	return p.advance()
}

func (p *Parser) fail(format string, args ...any) {
	p.log.Abort(diagnostics.New(eSyntaxError, p.cur().Span, format, args...))
}

// isSeqSeparator reports whether k separates statements within a Seq.
func isSeqSeparator(k token.Kind) bool { return k == token.Semi || k == token.Newline }

// isSeqTerminator reports whether k ends the enclosing Seq without being
// consumed by it -- the "$" token of spec.md §4.3's block-form sketch.
func isSeqTerminator(k token.Kind) bool {
	switch k {
	case token.EOF, token.RParen, token.RBrace, token.KwEnd, token.KwElse:
		return true
	}
	return false
}

// parseSeqUntil parses a sequence of statements separated by `;`/newline,
// stopping (without consuming) at end or a token for which stop is true.
func (p *Parser) parseSeqUntil(stop token.Kind) *ast.Seq {
	start := p.cur().Span
	var ops []ast.AstObject
	for !p.at(stop) && !isSeqTerminator(p.cur().Kind) {
		ops = append(ops, p.parseStatement())
		if isSeqSeparator(p.cur().Kind) {
			p.advance()
			continue
		}
		break
	}
	end := start
	if len(ops) > 0 {
		end = ops[len(ops)-1].Span()
	}
	return ast.NewSeq(spanOf(start, end), ops...)
}

func spanOf(start, end token.Span) token.Span {
	return token.Span{Start: start.Start, End: end.End}
}

// parseStatement parses one definition or expression-statement.
func (p *Parser) parseStatement() ast.AstObject {
	switch p.cur().Kind {
	case token.KwFun:
		return p.parseFunDef()
	case token.KwVal:
		return p.parseDataDef(ast.Local)
	case token.KwStatic:
		p.advance()
		p.expect(token.KwVal)
		return p.parseDataDefAfterVal(ast.Static, p.toks[p.pos-1].Span)
	default:
		return p.parseExpr()
	}
}

// parseDataDef parses `val IDENT [: [mut] Type] (= CtList | noinit)`.
func (p *Parser) parseDataDef(storage ast.StorageDuration) *ast.DataDef {
	start := p.expect(token.KwVal).Span
	return p.parseDataDefAfterVal(storage, start)
}

func (p *Parser) parseDataDefAfterVal(storage ast.StorageDuration, start token.Span) *ast.DataDef {
	name := p.expect(token.Ident).Literal

	var declared ast.AstObjType
	if p.at(token.Colon) {
		p.advance()
		declared = p.parseTypeExpr()
	} else {
		// Parser extension: fabricate the default `infer` type symbol
		// when syntax omits a declared type (spec.md §4.3).
		declared = ast.NewTypeSymbol(start, "infer")
	}

	var init *ast.Initializer
	switch {
	case p.at(token.KwNoInit):
		noInitSpan := p.advance().Span
		init = ast.NewInitializer(noInitSpan, nil, true)
	case p.at(token.Assign) || p.at(token.Walrus):
		p.advance()
		arg := p.parseAssignment()
		args := ast.NewCtList(arg.Span(), arg)
		init = ast.NewInitializer(args.Span(), args, false)
	default:
		p.fail("expected '=' or 'noinit' in data definition")
	}

	end := declared.Span()
	if init != nil && init.Args != nil {
		end = init.Args.Span()
	}
	return ast.NewDataDef(spanOf(start, end), name, declared, storage, init)
}

// parseFunDef parses `fun IDENT : ( params ) returnType <body-form>`.
func (p *Parser) parseFunDef() *ast.FunDef {
	start := p.expect(token.KwFun).Span
	name := p.expect(token.Ident).Literal
	p.expect(token.Colon)
	p.expect(token.LParen)

	var params []*ast.Param
	for !p.at(token.RParen) {
		pname := p.expect(token.Ident).Literal
		p.expect(token.Colon)
		ptype := p.parseTypeExpr()
		params = append(params, &ast.Param{Name: pname, DeclaredType: ptype, DeclaredStorage: ast.Local})
		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RParen)

	ret := p.parseTypeExpr()
	body := p.parseBlockBody(token.KwFun)
	return ast.NewFunDef(spanOf(start, body.Span()), name, params, ret, body)
}

// parseBlockBody parses one of the three equivalent block-body surface
// forms described in spec.md §4.3: an `=`-or-`:`-introduced bare body
// terminated by the enclosing construct's terminator ("$"), a
// parenthesized body, or a body closed by `end [keyword]`.
func (p *Parser) parseBlockBody(kw token.Kind) ast.AstObject {
	switch {
	case p.at(token.Assign) || p.at(token.Colon):
		p.advance()
		if p.at(token.LParen) {
			return p.parseParenBody()
		}
		return p.parseBareBodyOrEnd(kw)
	case p.at(token.LParen):
		return p.parseParenBody()
	default:
		return p.parseBareBodyOrEnd(kw)
	}
}

func (p *Parser) parseParenBody() ast.AstObject {
	p.expect(token.LParen)
	seq := p.parseSeqUntil(token.RParen)
	p.expect(token.RParen)
	return seq
}

// parseBareBodyOrEnd parses the bare block-body form: a single statement,
// closed either implicitly by whatever follows (the enclosing sequence's
// own separator or terminator -- the "$" token of spec.md §4.3) or
// explicitly by a trailing `end [kw]`. A single statement is sufficient
// for every body this grammar actually needs to express multi-statement
// bodies without a trailing `end` use the parenthesized form instead.
func (p *Parser) parseBareBodyOrEnd(kw token.Kind) ast.AstObject {
	start := p.cur().Span
	stmt := p.parseStatement()
	ops := []ast.AstObject{stmt}

	consumeEnd := func() {
		p.advance()
		if p.cur().Kind == kw {
			p.advance()
		}
	}

	switch {
	case p.at(token.KwEnd):
		consumeEnd()
	case isSeqSeparator(p.cur().Kind):
		// Look ahead past the separator: if `end` immediately follows,
		// this was an end-delimited body with a redundant trailing
		// separator; consume both. Otherwise the separator belongs to
		// the *enclosing* sequence, not this body -- leave it unconsumed.
		save := p.pos
		p.advance()
		if p.at(token.KwEnd) {
			consumeEnd()
		} else {
			p.pos = save
		}
	}

	return ast.NewSeq(spanOf(start, stmt.Span()), ops...)
}

// --- Expressions, precedence low -> high: assignment (right-assoc),
// logical-or, logical-and, equality/relational, additive, multiplicative,
// unary, call/primary. Sequence itself lives one level up, in
// parseSeqUntil.

func (p *Parser) parseExpr() ast.AstObject { return p.parseAssignment() }

func (p *Parser) parseAssignment() ast.AstObject {
	lhs := p.parseLogicalOr()
	var op objtype.Op
	switch p.cur().Kind {
	case token.Assign, token.Walrus:
		op = objtype.OpAssign
	case token.AssignEq:
		op = objtype.OpAssignRef
	default:
		return lhs
	}
	p.advance()
	rhs := p.parseAssignment() // right-associative
	return ast.NewOperator(spanOf(lhs.Span(), rhs.Span()), op, lhs, rhs)
}

func (p *Parser) parseLogicalOr() ast.AstObject {
	lhs := p.parseLogicalAnd()
	for p.at(token.OrOr) {
		p.advance()
		rhs := p.parseLogicalAnd()
		lhs = ast.NewOperator(spanOf(lhs.Span(), rhs.Span()), objtype.OpOr, lhs, rhs)
	}
	return lhs
}

func (p *Parser) parseLogicalAnd() ast.AstObject {
	lhs := p.parseEquality()
	for p.at(token.AndAnd) {
		p.advance()
		rhs := p.parseEquality()
		lhs = ast.NewOperator(spanOf(lhs.Span(), rhs.Span()), objtype.OpAnd, lhs, rhs)
	}
	return lhs
}

func (p *Parser) parseEquality() ast.AstObject {
	lhs := p.parseAdditive()
	for {
		var op objtype.Op
		switch p.cur().Kind {
		case token.EqEq:
			op = objtype.OpEq
		case token.NotEq:
			op = objtype.OpNe
		case token.Lt:
			op = objtype.OpLt
		case token.Le:
			op = objtype.OpLe
		case token.Gt:
			op = objtype.OpGt
		case token.Ge:
			op = objtype.OpGe
		default:
			return lhs
		}
		p.advance()
		rhs := p.parseAdditive()
		lhs = ast.NewOperator(spanOf(lhs.Span(), rhs.Span()), op, lhs, rhs)
	}
}

func (p *Parser) parseAdditive() ast.AstObject {
	lhs := p.parseMultiplicative()
	for {
		var op objtype.Op
		switch p.cur().Kind {
		case token.Plus:
			op = objtype.OpAdd
		case token.Minus:
			op = objtype.OpSub
		default:
			return lhs
		}
		p.advance()
		rhs := p.parseMultiplicative()
		lhs = ast.NewOperator(spanOf(lhs.Span(), rhs.Span()), op, lhs, rhs)
	}
}

func (p *Parser) parseMultiplicative() ast.AstObject {
	lhs := p.parseUnary()
	for {
		var op objtype.Op
		switch p.cur().Kind {
		case token.Star:
			op = objtype.OpMul
		case token.Slash:
			op = objtype.OpDiv
		default:
			return lhs
		}
		p.advance()
		rhs := p.parseUnary()
		lhs = ast.NewOperator(spanOf(lhs.Span(), rhs.Span()), op, lhs, rhs)
	}
}

func (p *Parser) parseUnary() ast.AstObject {
	start := p.cur().Span
	switch p.cur().Kind {
	case token.Minus:
		p.advance()
		operand := p.parseUnary()
		return ast.NewOperator(spanOf(start, operand.Span()), objtype.OpSub, operand)
	case token.Bang:
		p.advance()
		operand := p.parseUnary()
		return ast.NewOperator(spanOf(start, operand.Span()), objtype.OpNot, operand)
	case token.Amp:
		p.advance()
		operand := p.parseUnary()
		return ast.NewOperator(spanOf(start, operand.Span()), objtype.OpAddrOf, operand)
	case token.Star:
		p.advance()
		operand := p.parseUnary()
		return ast.NewOperator(spanOf(start, operand.Span()), objtype.OpDeref, operand)
	default:
		return p.parseCall()
	}
}

func (p *Parser) parseCall() ast.AstObject {
	expr := p.parsePrimary()
	for p.at(token.LParen) {
		args := p.parseArgList()
		expr = ast.NewFunCall(spanOf(expr.Span(), args.Span()), expr, args)
	}
	return expr
}

func (p *Parser) parseArgList() *ast.CtList {
	start := p.expect(token.LParen).Span
	var items []ast.AstObject
	for !p.at(token.RParen) {
		items = append(items, p.parseAssignment())
		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	end := p.expect(token.RParen).Span
	return ast.NewCtList(spanOf(start, end), items...)
}

func isFundamentalName(name string) bool {
	switch name {
	case "void", "noreturn", "infer", "bool", "char", "int", "double", "nullptr":
		return true
	}
	return false
}

func (p *Parser) parsePrimary() ast.AstObject {
	t := p.cur()
	switch t.Kind {
	case token.NumberLit, token.CharLit, token.BoolLit:
		p.advance()
		return ast.NewNumber(t.Span, t.Number.Int, t.Number.Double, t.Number.Type)
	case token.LParen:
		p.advance()
		inner := p.parseAssignment()
		p.expect(token.RParen)
		return inner
	case token.LBrace:
		return p.parseBlock()
	case token.KwIf:
		return p.parseIf()
	case token.KwWhile:
		return p.parseWhile()
	case token.KwReturn:
		return p.parseReturn()
	case token.KwOp:
		return p.parseOpCall()
	case token.Ident:
		p.advance()
		name := t.Literal
		if isFundamentalName(name) && p.at(token.LParen) {
			args := p.parseArgList()
			if len(args.Items) != 1 {
				p.failAt(args.Span(), "cast requires exactly one argument")
			}
			return ast.NewCast(spanOf(t.Span, args.Span()), ast.NewTypeSymbol(t.Span, name), args.Items[0])
		}
		return ast.NewSymbol(t.Span, name)
	default:
		p.fail("unexpected token %s in expression", t.Kind)
		return ast.NewNop(t.Span) // unreachable: fail panics
	}
}

func (p *Parser) failAt(span token.Span, format string, args ...any) {
	p.log.Abort(diagnostics.New(eSyntaxError, span, format, args...))
}

func (p *Parser) parseBlock() ast.AstObject {
	start := p.expect(token.LBrace).Span
	body := p.parseSeqUntil(token.RBrace)
	end := p.expect(token.RBrace).Span
	return ast.NewBlock(spanOf(start, end), body)
}

func (p *Parser) parseIf() ast.AstObject {
	start := p.expect(token.KwIf).Span
	cond := p.parseAssignment()
	then := p.parseBlockBody(token.KwIf)
	var els ast.AstObject
	if p.at(token.KwElse) {
		p.advance()
		els = p.parseBlockBody(token.KwIf)
	}
	end := then.Span()
	if els != nil {
		end = els.Span()
	}
	return ast.NewIf(spanOf(start, end), cond, then, els)
}

func (p *Parser) parseWhile() ast.AstObject {
	start := p.expect(token.KwWhile).Span
	cond := p.parseAssignment()
	body := p.parseBlockBody(token.KwWhile)
	return ast.NewLoop(spanOf(start, body.Span()), cond, body)
}

func (p *Parser) parseReturn() ast.AstObject {
	start := p.expect(token.KwReturn).Span
	if isSeqSeparator(p.cur().Kind) || isSeqTerminator(p.cur().Kind) {
		return ast.NewReturn(start, nil)
	}
	val := p.parseAssignment()
	return ast.NewReturn(spanOf(start, val.Span()), val)
}

// opNames maps the identifier following `op` to the operator it denotes,
// per spec.md §4.3's `op⟨name⟩(args…)` alternative call syntax.
var opNames = map[string]objtype.Op{
	"add": objtype.OpAdd, "sub": objtype.OpSub, "mul": objtype.OpMul, "div": objtype.OpDiv,
	"eq": objtype.OpEq, "ne": objtype.OpNe, "lt": objtype.OpLt, "le": objtype.OpLe,
	"gt": objtype.OpGt, "ge": objtype.OpGe, "and": objtype.OpAnd, "or": objtype.OpOr,
	"not": objtype.OpNot, "addr": objtype.OpAddrOf, "deref": objtype.OpDeref,
	"assign": objtype.OpAssign, "assignref": objtype.OpAssignRef,
}

func (p *Parser) parseOpCall() ast.AstObject {
	start := p.expect(token.KwOp).Span
	name := p.expect(token.Ident).Literal
	op, ok := opNames[name]
	if !ok {
		p.failAt(start, "unknown operator name %q in op(...) syntax", name)
	}
	args := p.parseArgList()
	if len(args.Items) == 0 {
		p.failAt(args.Span(), "op(...) requires at least one argument")
	}
	return foldOpChain(spanOf(start, args.Span()), op, args.Items)
}

// foldOpChain folds a binary operator's >2-argument call-syntax form into
// a left-associative chain, per spec.md §4.3: "binary operators with >2
// arguments fold left-associatively into a chain."
func foldOpChain(span token.Span, op objtype.Op, args []ast.AstObject) ast.AstObject {
	if len(args) == 1 {
		return ast.NewOperator(span, op, args[0])
	}
	acc := ast.NewOperator(spanOf(args[0].Span(), args[1].Span()), op, args[0], args[1])
	for _, a := range args[2:] {
		acc = ast.NewOperator(spanOf(acc.Span(), a.Span()), op, acc, a)
	}
	return acc
}

// --- Type expressions.

func (p *Parser) parseTypeExpr() ast.AstObjType {
	if p.at(token.KwMut) {
		start := p.advance().Span
		inner := p.parsePointerType()
		return ast.NewQuali(spanOf(start, inner.Span()), true, inner)
	}
	return p.parsePointerType()
}

func (p *Parser) parsePointerType() ast.AstObjType {
	if p.at(token.Star) {
		start := p.advance().Span
		inner := p.parsePointerType()
		return ast.NewPtr(spanOf(start, inner.Span()), inner)
	}
	return p.parseAtomType()
}

func (p *Parser) parseAtomType() ast.AstObjType {
	if p.at(token.KwClass) {
		return p.parseClassDef()
	}
	t := p.expect(token.Ident)
	return ast.NewTypeSymbol(t.Span, t.Literal)
}

func (p *Parser) parseClassDef() ast.AstObjType {
	start := p.expect(token.KwClass).Span
	name := ""
	if p.at(token.Ident) {
		name = p.advance().Literal
	}
	p.expect(token.LBrace)
	var members []*ast.ClassMember
	for !p.at(token.RBrace) {
		mname := p.expect(token.Ident).Literal
		p.expect(token.Colon)
		mtype := p.parseTypeExpr()
		members = append(members, &ast.ClassMember{Name: mname, Type: mtype})
		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	end := p.expect(token.RBrace).Span
	return ast.NewClassDef(spanOf(start, end), name, members)
}
