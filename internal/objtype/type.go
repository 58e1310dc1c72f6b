// Package objtype implements the compiler's canonical object-type model:
// the fundamental, pointer, qualified, function, and class type variants,
// their matching algebra, and the predicates the rest of the pipeline
// queries to decide how a type is represented, compared, and lowered.
package objtype

import (
	"fmt"
	"strings"
)

// Fundamental enumerates the built-in scalar and abstract kinds. It is the
// leaf variant of ObjType: every other variant bottoms out at one of
// these (or at a Class, which is itself an aggregate of ObjTypes).
type Fundamental int

const (
	// Void denotes the absence of a value. It has no size and is not
	// constructible from anything but itself.
	Void Fundamental = iota
	// Noreturn denotes the type of expressions that never complete
	// normally (e.g. return). It propagates to make following code
	// unreachable.
	Noreturn
	// Infer is a placeholder used only before a declared type has been
	// resolved by the signature augmentor. It must never survive past
	// the semantic analyzer.
	Infer
	// Bool is a 1-bit boolean.
	Bool
	// Char is an 8-bit unsigned integral type.
	Char
	// Int is a 32-bit signed integral type.
	Int
	// Double is a 64-bit IEEE floating-point type.
	Double
	// Nullptr is the type of the null pointer constant.
	Nullptr
)

func (f Fundamental) String() string {
	switch f {
	case Void:
		return "void"
	case Noreturn:
		return "noreturn"
	case Infer:
		return "infer"
	case Bool:
		return "bool"
	case Char:
		return "char"
	case Int:
		return "int"
	case Double:
		return "double"
	case Nullptr:
		return "nullptr"
	default:
		return fmt.Sprintf("Fundamental(%d)", int(f))
	}
}

// Qualifier is a bitset of modifiers applicable to a qualified type.
// Currently only Mutable is defined, but the type is a bitset so a future
// qualifier can be added without breaking the collapsing rule below.
type Qualifier uint8

const (
	// Mutable marks a type as writable and addr-of-revealing-safe for
	// assignment purposes. Its absence means the type is immutable.
	Mutable Qualifier = 1 << iota
)

func (q Qualifier) has(bit Qualifier) bool { return q&bit != 0 }

func (q Qualifier) String() string {
	if q == 0 {
		return ""
	}
	var parts []string
	if q.has(Mutable) {
		parts = append(parts, "mut")
	}
	return strings.Join(parts, " ")
}

// ObjType is the canonical description of a value's type. It is an
// immutable, comparable value once obtained from an Interner: two
// ObjTypes describing the same structure intern to the same handle, so
// callers may compare handles with == instead of deep structural
// equality.
type ObjType struct {
	kind kind
	// fundamental is valid when kind == kindFundamental.
	fundamental Fundamental
	// elem is the pointee (kindPointer) or the wrapped target
	// (kindQualified).
	elem *ObjType
	// quals is valid when kind == kindQualified. Per the collapsing
	// rule, elem is never itself kindQualified.
	quals Qualifier
	// params/ret are valid when kind == kindFunction.
	params []*ObjType
	ret    *ObjType
	// className/members are valid when kind == kindClass.
	className string
	members   []*ObjType
}

type kind int

const (
	kindFundamental kind = iota
	kindPointer
	kindQualified
	kindFunction
	kindClass
)

// Kind-test predicates used by the matching algorithm and by callers that
// need to switch on variant without exposing the unexported kind.

func (t *ObjType) IsFundamental() bool { return t.kind == kindFundamental }
func (t *ObjType) IsPointer() bool     { return t.kind == kindPointer }
func (t *ObjType) IsQualified() bool   { return t.kind == kindQualified }
func (t *ObjType) IsFunction() bool    { return t.kind == kindFunction }
func (t *ObjType) IsClass() bool       { return t.kind == kindClass }

// Fundamental returns the fundamental tag. Only meaningful if
// IsFundamental() is true.
func (t *ObjType) Fundamental() Fundamental { return t.fundamental }

// Pointee returns the pointed-to type. Only meaningful if IsPointer().
func (t *ObjType) Pointee() *ObjType { return t.elem }

// Qualifiers returns the qualifier bitset. Only meaningful if
// IsQualified().
func (t *ObjType) Qualifiers() Qualifier { return t.quals }

// Target returns the type wrapped by a qualifier. Only meaningful if
// IsQualified().
func (t *ObjType) Target() *ObjType { return t.elem }

// Params returns the parameter types in declaration order. Only
// meaningful if IsFunction().
func (t *ObjType) Params() []*ObjType { return t.params }

// Return returns the declared return type. Only meaningful if
// IsFunction().
func (t *ObjType) Return() *ObjType { return t.ret }

// ClassName returns the class's declared name. Only meaningful if
// IsClass().
func (t *ObjType) ClassName() string { return t.className }

// Members returns the member types in declaration order. Only
// meaningful if IsClass().
func (t *ObjType) Members() []*ObjType { return t.members }

// IsMutable reports whether t is a Qualified type carrying the Mutable
// bit. Non-qualified types are never mutable by construction: mutability
// only exists as a qualifier.
func (t *ObjType) IsMutable() bool {
	return t.kind == kindQualified && t.quals.has(Mutable)
}

// Unqualified returns the canonical view of t with any surface qualifier
// stripped. If t is not qualified, it returns t itself.
func (t *ObjType) Unqualified() *ObjType {
	if t.kind == kindQualified {
		return t.elem
	}
	return t
}

// String renders a human-readable, canonical spelling of t, suitable both
// for diagnostics and as the interning key.
func (t *ObjType) String() string {
	switch t.kind {
	case kindFundamental:
		return t.fundamental.String()
	case kindPointer:
		return "ptr(" + t.elem.String() + ")"
	case kindQualified:
		q := t.quals.String()
		if q == "" {
			return t.elem.String()
		}
		return q + " " + t.elem.String()
	case kindFunction:
		parts := make([]string, len(t.params))
		for i, p := range t.params {
			parts[i] = p.String()
		}
		return "fun(" + strings.Join(parts, ",") + ")->" + t.ret.String()
	case kindClass:
		parts := make([]string, len(t.members))
		for i, m := range t.members {
			parts[i] = m.String()
		}
		return "class " + t.className + "{" + strings.Join(parts, ",") + "}"
	default:
		return "?"
	}
}
