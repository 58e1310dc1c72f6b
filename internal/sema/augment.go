package sema

import (
	"github.com/oxhq/vellum/internal/ast"
	"github.com/oxhq/vellum/internal/diagnostics"
	"github.com/oxhq/vellum/internal/objtype"
)

var fundamentalsByName = map[string]objtype.Fundamental{
	"void":     objtype.Void,
	"noreturn": objtype.Noreturn,
	"infer":    objtype.Infer,
	"bool":     objtype.Bool,
	"char":     objtype.Char,
	"int":      objtype.Int,
	"double":   objtype.Double,
	"nullptr":  objtype.Nullptr,
}

// Augment runs the signature augmentor (pass 2) over fn: it resolves
// every AstObjType subtree reachable from a FunDef/DataDef/Param into a
// canonical *objtype.ObjType and fills in the corresponding Object's
// ObjType. This grammar has no named-type-alias declarations -- every
// type reference is either a fundamental name or an inline ClassDef --
// so, unlike the env inserter, this pass needs no environment lookups.
func Augment(fn *ast.FunDef, in *objtype.Interner, log *diagnostics.Log) (err error) {
	defer diagnostics.Recover(&err)
	augmentWalk(fn, in, log)
	return nil
}

// augmentWalk dispatches on n's concrete kind. FunDef and DataDef get
// explicit handling so their declared Object's ObjType is filled in
// alongside resolving their type annotations; any other AstObjType node
// encountered along the way (a Cast's declared type, for instance, which
// names no Object of its own) is resolved and stashed on the node itself
// via SetResolvedType so the semantic analyzer can read it back without
// re-resolving.
func augmentWalk(n ast.Node, in *objtype.Interner, log *diagnostics.Log) {
	switch node := n.(type) {
	case *ast.FunDef:
		augmentFunDef(node, in, log)
	case *ast.DataDef:
		augmentDataDef(node, in, log)
	case ast.AstObjType:
		resolveType(node, in, log)
	default:
		for _, c := range n.Children() {
			if c != nil {
				augmentWalk(c, in, log)
			}
		}
	}
}

func augmentFunDef(node *ast.FunDef, in *objtype.Interner, log *diagnostics.Log) {
	paramTypes := make([]*objtype.ObjType, len(node.Params))
	for i, p := range node.Params {
		t := resolveType(p.DeclaredType, in, log)
		if p.Obj != nil {
			p.Obj.ObjType = t
		}
		paramTypes[i] = t
	}
	retType := resolveType(node.ReturnType, in, log)
	if node.FunctionObj != nil {
		node.FunctionObj.ObjType = in.Function(paramTypes, retType)
	}
	if node.Body != nil {
		augmentWalk(node.Body, in, log)
	}
}

func augmentDataDef(node *ast.DataDef, in *objtype.Interner, log *diagnostics.Log) {
	t := resolveType(node.DeclaredType, in, log)
	if obj := node.AssociatedObject(); obj != nil {
		obj.ObjType = t
	}
	if node.Init != nil && !node.Init.NoInit && node.Init.Args != nil {
		for _, a := range node.Init.Args.Items {
			augmentWalk(a, in, log)
		}
	}
}

func resolveType(n ast.AstObjType, in *objtype.Interner, log *diagnostics.Log) *objtype.ObjType {
	var t *objtype.ObjType
	switch tn := n.(type) {
	case *ast.TypeSymbol:
		f, ok := fundamentalsByName[tn.Name]
		if !ok {
			log.Abort(diagnostics.New(diagnostics.EUnknownName, tn.Span(),
				"unknown type name %q", tn.Name))
		}
		t = in.Fundamental(f)
	case *ast.Quali:
		inner := resolveType(tn.Target, in, log)
		var q objtype.Qualifier
		if tn.Mutable {
			q |= objtype.Mutable
		}
		t = in.Qualified(inner, q)
	case *ast.Ptr:
		t = in.Pointer(resolveType(tn.Pointee, in, log))
	case *ast.ClassDef:
		members := make([]*objtype.ObjType, len(tn.Members))
		for i, m := range tn.Members {
			members[i] = resolveType(m.Type, in, log)
		}
		t = in.Class(tn.Name, members)
	default:
		// Every AstObjType kind is handled above; reaching here means a
		// new type-syntax kind was added without updating this switch.
		panic(diagnostics.Internalf("resolveType: unhandled AstObjType %T", n))
	}
	n.SetResolvedType(t)
	return t
}
