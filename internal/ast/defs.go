package ast

import "github.com/oxhq/vellum/internal/token"

// Param is a single function parameter: a name and its declared type.
// Per spec.md invariant 5, a parameter's storage duration is always
// Local; there is no surface syntax to declare otherwise, but the AST
// keeps an explicit DeclaredStorage field so the semantic analyzer can
// still check it against a parser-extension-fabricated default and
// report eOnlyLocalStorageDurationApplicable uniformly with DataDef.
type Param struct {
	base
	Name            string
	DeclaredType    AstObjType
	DeclaredStorage StorageDuration
	Obj             *Object
}

func (p *Param) Children() []Node { return []Node{p.DeclaredType} }

// FunDef declares a named function: its parameter list, declared return
// type, and body. FunDef is itself an AstObject so it may appear as a
// Seq child (top-level definitions are statements); its denoted value is
// always void (a definition has no expression value of its own).
type FunDef struct {
	objBase
	Name        string
	Params      []*Param
	ReturnType  AstObjType
	Body        AstObject
	FunctionObj *Object // the Object naming this function in its enclosing scope
}

func NewFunDef(span token.Span, name string, params []*Param, ret AstObjType, body AstObject) *FunDef {
	return &FunDef{objBase: objBase{base: base{span: span}}, Name: name, Params: params, ReturnType: ret, Body: body}
}

func (n *FunDef) Children() []Node {
	cs := make([]Node, 0, len(n.Params)+2)
	for _, p := range n.Params {
		cs = append(cs, p)
	}
	cs = append(cs, n.ReturnType, n.Body)
	return cs
}

// Initializer is the constructor-argument form for a DataDef: either an
// explicit argument list or the `noinit` marker (spec.md §3).
type Initializer struct {
	base
	Args   *CtList
	NoInit bool
}

func NewInitializer(span token.Span, args *CtList, noInit bool) *Initializer {
	return &Initializer{base: base{span: span}, Args: args, NoInit: noInit}
}

// DataDef declares a named data object: its declared type, storage
// duration, and initializer. DataDef is an AstObject whose denoted value
// is the defined Object itself, so `val x :int = 1` used as the last
// statement of a Seq yields x's freshly initialized value.
type DataDef struct {
	objBase
	Name            string
	DeclaredType    AstObjType
	DeclaredStorage StorageDuration
	Init            *Initializer
}

func NewDataDef(span token.Span, name string, declared AstObjType, storage StorageDuration, init *Initializer) *DataDef {
	return &DataDef{objBase: objBase{base: base{span: span}}, Name: name, DeclaredType: declared, DeclaredStorage: storage, Init: init}
}

func (n *DataDef) Children() []Node {
	cs := []Node{n.DeclaredType}
	if n.Init != nil && !n.Init.NoInit {
		cs = append(cs, n.Init.Args)
	}
	return cs
}
