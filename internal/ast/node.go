package ast

import (
	"github.com/oxhq/vellum/internal/objtype"
	"github.com/oxhq/vellum/internal/token"
)

// Node is the capability shared by every AST node: it carries a source
// span and knows how to enumerate its direct children for generic
// traversal (pretty-printing, the env inserter's pre-order walk, etc).
type Node interface {
	Span() token.Span
	Children() []Node
}

// AstObject is a Node that denotes a value/object at runtime (spec.md
// §3). Kept as an explicit, separate interface from AstObjType (rather
// than folding both into one polymorphic Node) per the Design Notes on
// the AstSeq/AstObject duality: children() and denotedObject() stay two
// distinct methods, not one conflated inheritance hierarchy.
type AstObject interface {
	Node
	// AccessFromParent returns the access role the parent has assigned
	// this node. Undefined until the semantic analyzer's top-down pass
	// visits the parent.
	AccessFromParent() AccessKind
	SetAccessFromParent(AccessKind)
	// AssociatedObject returns the Object this node denotes once the
	// semantic analyzer has run, or nil beforehand.
	AssociatedObject() *Object
	SetAssociatedObject(*Object)
}

// AstObjType is a Node that denotes a type at compile time (spec.md §3):
// the syntactic spelling of a type, before the signature augmentor
// resolves it to a canonical objtype.ObjType.
type AstObjType interface {
	Node
	isAstObjType()
	// ResolvedType returns the canonical type the signature augmentor
	// resolved this subtree to, or nil beforehand.
	ResolvedType() *objtype.ObjType
	SetResolvedType(*objtype.ObjType)
}

// base is embedded by every concrete node to provide the common Span and
// access/associated-object bookkeeping without repeating it per type.
type base struct {
	span token.Span
}

func (b *base) Span() token.Span { return b.span }

// objBase is embedded by every AstObject to provide the access and
// associated-object fields spec.md §3 attaches to every object-denoting
// node.
type objBase struct {
	base
	access AccessKind
	obj    *Object
}

func (b *objBase) AccessFromParent() AccessKind    { return b.access }
func (b *objBase) SetAccessFromParent(a AccessKind) { b.access = a }
func (b *objBase) AssociatedObject() *Object        { return b.obj }
func (b *objBase) SetAssociatedObject(o *Object)    { b.obj = o }
