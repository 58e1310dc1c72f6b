package ast

import (
	"github.com/oxhq/vellum/internal/objtype"
	"github.com/oxhq/vellum/internal/token"
)

// typeBase is embedded by every AstObjType kind to satisfy the marker
// method and the resolved-type slot without repeating either per type.
type typeBase struct {
	base
	resolved *objtype.ObjType
}

func (typeBase) isAstObjType() {}

func (t *typeBase) ResolvedType() *objtype.ObjType      { return t.resolved }
func (t *typeBase) SetResolvedType(rt *objtype.ObjType) { t.resolved = rt }

// TypeSymbol names a built-in or user-defined type by identifier (the
// AstObjType counterpart of Symbol, spec.md §3's type-denoting "Symbol"
// kind). Distinct from ast.Symbol, which denotes an object reference, not
// a type reference.
type TypeSymbol struct {
	typeBase
	Name string
}

func NewTypeSymbol(span token.Span, name string) *TypeSymbol {
	return &TypeSymbol{typeBase: typeBase{base: base{span: span}}, Name: name}
}

func (n *TypeSymbol) Children() []Node { return nil }

// Quali wraps Target with a spelled-out qualifier (currently only `mut`).
type Quali struct {
	typeBase
	Mutable bool
	Target  AstObjType
}

func NewQuali(span token.Span, mutable bool, target AstObjType) *Quali {
	return &Quali{typeBase: typeBase{base: base{span: span}}, Mutable: mutable, Target: target}
}

func (n *Quali) Children() []Node { return []Node{n.Target} }

// Ptr spells a pointer-to type.
type Ptr struct {
	typeBase
	Pointee AstObjType
}

func NewPtr(span token.Span, pointee AstObjType) *Ptr {
	return &Ptr{typeBase: typeBase{base: base{span: span}}, Pointee: pointee}
}

func (n *Ptr) Children() []Node { return []Node{n.Pointee} }

// ClassMember is one named, typed field within a ClassDef.
type ClassMember struct {
	base
	Name string
	Type AstObjType
}

func (m *ClassMember) Children() []Node { return []Node{m.Type} }

// ClassDef spells out a class type definition inline: a name and its
// ordered member list (spec.md §3's ClassDef kind).
type ClassDef struct {
	typeBase
	Name    string
	Members []*ClassMember
}

func NewClassDef(span token.Span, name string, members []*ClassMember) *ClassDef {
	return &ClassDef{typeBase: typeBase{base: base{span: span}}, Name: name, Members: members}
}

func (n *ClassDef) Children() []Node {
	cs := make([]Node, len(n.Members))
	for i, m := range n.Members {
		cs[i] = m
	}
	return cs
}
