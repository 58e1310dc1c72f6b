// Package irgen lowers an analyzed AST to typed SSA IR against an
// irbuilder.Builder, split into the two passes spec.md §4.7 describes:
// Forward (pass 4, forward declaration) and Generate (pass 5, the main
// lowering walk). Both passes assume Insert/Augment/Analyze have already
// run to completion over fn, so every Object's ObjType is resolved and
// every access flag is in its final, monotonically-closed state.
package irgen

import (
	"strconv"

	"github.com/oxhq/vellum/internal/ast"
	"github.com/oxhq/vellum/internal/diagnostics"
	"github.com/oxhq/vellum/internal/irbuilder"
	"github.com/oxhq/vellum/internal/objtype"
)

// irType maps a canonical object type to the backend's typed-SSA
// representation. Class and function-as-value types have no
// representation in this backend (the Builder interface carries no
// aggregate load/store or indirect-call instructions); reaching one here
// is an internal error, not a build error, since the semantic analyzer
// never rejects them on its own.
func irType(t *objtype.ObjType) irbuilder.Type {
	u := t.Unqualified()
	switch {
	case u.IsPointer():
		return irbuilder.Ptr
	case u.IsFundamental():
		switch u.Fundamental() {
		case objtype.Void, objtype.Noreturn:
			return irbuilder.Void
		case objtype.Bool:
			return irbuilder.I1
		case objtype.Char:
			return irbuilder.I8
		case objtype.Int:
			return irbuilder.I32
		case objtype.Double:
			return irbuilder.F64
		case objtype.Nullptr:
			return irbuilder.Ptr
		}
	}
	panic(diagnostics.Internalf("irType: no backend representation for %s", t))
}

// forwarder carries the bookkeeping Forward needs across its walk: the
// backend handles and a name disambiguator for nested FunDefs, which can
// shadow same-named definitions from an enclosing scope.
type forwarder struct {
	b    irbuilder.Builder
	mod  irbuilder.Module
	used map[string]int
}

// Forward runs the forward declarator (pass 4) over fn: every
// non-local-storage object definition reachable from fn gets a backend
// declaration -- a function signature for a FunDef, an uninitialized
// global for a static DataDef -- before any function body is lowered, so
// that a forward or mutually recursive reference to it can already find
// a backend handle on its Object.
func Forward(fn *ast.FunDef, b irbuilder.Builder, mod irbuilder.Module) (err error) {
	defer diagnostics.Recover(&err)
	fw := &forwarder{b: b, mod: mod, used: map[string]int{}}
	fw.walk(fn)
	return nil
}

func (fw *forwarder) walk(n ast.Node) {
	switch node := n.(type) {
	case *ast.FunDef:
		fw.funDef(node)
	case *ast.DataDef:
		fw.dataDef(node)
	default:
		for _, c := range n.Children() {
			if c != nil {
				fw.walk(c)
			}
		}
	}
}

// name returns a backend-unique name for base, disambiguating repeated
// definitions (same-named nested functions or static data in different
// scopes) with a "$N" suffix.
func (fw *forwarder) name(base string) string {
	fw.used[base]++
	if n := fw.used[base]; n > 1 {
		return base + "$" + strconv.Itoa(n)
	}
	return base
}

func (fw *forwarder) funDef(node *ast.FunDef) {
	obj := node.FunctionObj
	if obj == nil {
		panic(diagnostics.Internalf("forward: FunDef %q has no FunctionObj", node.Name))
	}
	ft := obj.ObjType
	if ft == nil || !ft.IsFunction() {
		panic(diagnostics.Internalf("forward: FunDef %q has no resolved function type", node.Name))
	}

	paramTypes := make([]irbuilder.Type, len(ft.Params()))
	for i, p := range ft.Params() {
		paramTypes[i] = irType(p)
	}
	retType := irType(ft.Return())

	irName := node.Name
	if node.Name != "main" {
		irName = fw.name(node.Name)
	}
	obj.Addr = fw.b.CreateFunction(fw.mod, irName, paramTypes, retType)
	obj.Phase = ast.PhaseAllocated

	if node.Body != nil {
		fw.walk(node.Body)
	}
}

func (fw *forwarder) dataDef(node *ast.DataDef) {
	obj := node.AssociatedObject()
	if obj == nil {
		panic(diagnostics.Internalf("forward: DataDef %q has no associated object", node.Name))
	}
	if obj.StorageDuration != ast.Static {
		// Local data is allocated during Generate, in its owning
		// function's entry block, not here.
		return
	}
	obj.Addr = fw.b.CreateGlobal(fw.mod, fw.name(node.Name), irType(obj.ObjType), !obj.ObjType.IsMutable())
	obj.Phase = ast.PhaseAllocated
}
