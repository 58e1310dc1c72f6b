package ast

import (
	"github.com/oxhq/vellum/internal/objtype"
	"github.com/oxhq/vellum/internal/token"
)

// Nop denotes the empty expression: type void, local, per spec.md §4.6.
type Nop struct{ objBase }

func NewNop(span token.Span) *Nop { return &Nop{objBase{base: base{span: span}}} }

func (n *Nop) Children() []Node { return nil }

// Number is a numeric, boolean, or char literal: the declared literal
// type travels with the node from the lexer's payload.
type Number struct {
	objBase
	IntValue    int32
	DoubleValue float64
	LitType     objtype.Fundamental
}

func NewNumber(span token.Span, intV int32, dblV float64, t objtype.Fundamental) *Number {
	return &Number{objBase: objBase{base: base{span: span}}, IntValue: intV, DoubleValue: dblV, LitType: t}
}

func (n *Number) Children() []Node { return nil }

// Symbol is a reference to a name, resolved against the environment
// during semantic analysis.
type Symbol struct {
	objBase
	Name string
}

func NewSymbol(span token.Span, name string) *Symbol {
	return &Symbol{objBase: objBase{base: base{span: span}}, Name: name}
}

func (n *Symbol) Children() []Node { return nil }

// Cast explicitly converts Operand to DeclaredType.
type Cast struct {
	objBase
	DeclaredType AstObjType
	Operand      AstObject
}

func NewCast(span token.Span, declared AstObjType, operand AstObject) *Cast {
	return &Cast{objBase: objBase{base: base{span: span}}, DeclaredType: declared, Operand: operand}
}

func (n *Cast) Children() []Node { return []Node{n.DeclaredType, n.Operand} }

// Operator is any unary, binary, logical, comparison, assignment,
// address-of, or deref operator application. Args holds the operand list
// in source order; binary operators with more than two arguments (the
// `op<name>(a, b, c)` call syntax, per spec.md §4.3) are folded
// left-associatively into a chain by the parser before reaching later
// passes, so by the time the semantic analyzer sees an Operator node, Op
// is strictly unary (len(Args)==1) or strictly binary (len(Args)==2).
type Operator struct {
	objBase
	Op   objtype.Op
	Args []AstObject
}

func NewOperator(span token.Span, op objtype.Op, args ...AstObject) *Operator {
	return &Operator{objBase: objBase{base: base{span: span}}, Op: op, Args: args}
}

func (n *Operator) Children() []Node {
	cs := make([]Node, len(n.Args))
	for i, a := range n.Args {
		cs[i] = a
	}
	return cs
}

// Seq is an ordered sequence of object-valued nodes (the `;`/newline
// sequence operator, spec.md's glossary entry); its denoted value is the
// last operand's object (invariant 2, spec.md §8).
type Seq struct {
	objBase
	Ops []AstObject
}

func NewSeq(span token.Span, ops ...AstObject) *Seq {
	return &Seq{objBase: objBase{base: base{span: span}}, Ops: ops}
}

func (n *Seq) Children() []Node {
	cs := make([]Node, len(n.Ops))
	for i, o := range n.Ops {
		cs[i] = o
	}
	return cs
}

// Body is the last operand of the sequence, or nil if Ops is empty.
func (n *Seq) Body() AstObject {
	if len(n.Ops) == 0 {
		return nil
	}
	return n.Ops[len(n.Ops)-1]
}

// Block introduces a lexical scope; its value is the body's value with
// qualifiers dropped (spec.md §4.6: temporaries are immutable).
type Block struct {
	objBase
	Body AstObject
}

func NewBlock(span token.Span, body AstObject) *Block {
	return &Block{objBase: objBase{base: base{span: span}}, Body: body}
}

func (n *Block) Children() []Node { return []Node{n.Body} }

// If is a conditional expression with an optional else clause.
type If struct {
	objBase
	Cond AstObject
	Then AstObject
	Else AstObject // nil if absent
}

func NewIf(span token.Span, cond, then, els AstObject) *If {
	return &If{objBase: objBase{base: base{span: span}}, Cond: cond, Then: then, Else: els}
}

func (n *If) Children() []Node {
	if n.Else == nil {
		return []Node{n.Cond, n.Then}
	}
	return []Node{n.Cond, n.Then, n.Else}
}

// Loop is a pre-test while-loop; its value is always void.
type Loop struct {
	objBase
	Cond AstObject
	Body AstObject
}

func NewLoop(span token.Span, cond, body AstObject) *Loop {
	return &Loop{objBase: objBase{base: base{span: span}}, Cond: cond, Body: body}
}

func (n *Loop) Children() []Node { return []Node{n.Cond, n.Body} }

// Return yields a value from the enclosing function body; its own type
// is always noreturn.
type Return struct {
	objBase
	Value AstObject // nil for a bare `return` in a void-returning function
}

func NewReturn(span token.Span, value AstObject) *Return {
	return &Return{objBase: objBase{base: base{span: span}}, Value: value}
}

func (n *Return) Children() []Node {
	if n.Value == nil {
		return nil
	}
	return []Node{n.Value}
}

// FunCall invokes Callee with Args.
type FunCall struct {
	objBase
	Callee AstObject
	Args   *CtList
}

func NewFunCall(span token.Span, callee AstObject, args *CtList) *FunCall {
	return &FunCall{objBase: objBase{base: base{span: span}}, Callee: callee, Args: args}
}

func (n *FunCall) Children() []Node {
	cs := make([]Node, 0, 1+len(n.Args.Items))
	cs = append(cs, n.Callee)
	for _, a := range n.Args.Items {
		cs = append(cs, a)
	}
	return cs
}

// CtList is an ordered list of object-valued children used for argument
// lists (spec.md §3's CtList).
type CtList struct {
	base
	Items []AstObject
}

func NewCtList(span token.Span, items ...AstObject) *CtList {
	return &CtList{base: base{span: span}, Items: items}
}

func (n *CtList) Children() []Node {
	cs := make([]Node, len(n.Items))
	for i, it := range n.Items {
		cs[i] = it
	}
	return cs
}
