// Package sema implements the three AST-walking passes of spec.md §4.5/
// §4.6: the env inserter, the signature augmentor, and the semantic
// analyzer. Each pass is a standalone entry point so the driver can run
// them in sequence and stop at the first one that returns an error.
package sema

import (
	"github.com/oxhq/vellum/internal/ast"
	"github.com/oxhq/vellum/internal/diagnostics"
	"github.com/oxhq/vellum/internal/env"
)

// Insert runs the env inserter (pass 1) over fn: a pre-order walk that
// binds a fresh Object under each FunDef/DataDef's declared name into the
// environment, leaving the type resolution to the signature augmentor.
func Insert(fn *ast.FunDef, e *env.Env, log *diagnostics.Log) (err error) {
	defer diagnostics.Recover(&err)
	insertWalk(fn, e, log)
	return nil
}

func insertWalk(n ast.Node, e *env.Env, log *diagnostics.Log) {
	switch node := n.(type) {
	case *ast.FunDef:
		insertFunDef(node, e, log)
	case *ast.DataDef:
		insertDataDef(node, e, log)
	case *ast.Block:
		e.Push()
		insertWalk(node.Body, e, log)
		e.Pop()
	default:
		for _, c := range n.Children() {
			if c != nil {
				insertWalk(c, e, log)
			}
		}
	}
}

func insertFunDef(node *ast.FunDef, e *env.Env, log *diagnostics.Log) {
	obj := ast.NewObject(node.Name)
	obj.StorageDuration = ast.Static
	if !e.Insert(node.Name, obj) {
		log.Abort(diagnostics.New(diagnostics.ERedefinition, node.Span(),
			"%q is already defined in this scope", node.Name))
	}
	node.FunctionObj = obj

	e.Push()
	defer e.Pop()

	seen := make(map[string]bool, len(node.Params))
	for _, p := range node.Params {
		if seen[p.Name] {
			log.Abort(diagnostics.New(diagnostics.ESameArgWasDefinedMultipleTimes, p.Span(),
				"parameter %q defined more than once", p.Name))
		}
		seen[p.Name] = true

		pobj := ast.NewObject(p.Name)
		pobj.StorageDuration = p.DeclaredStorage
		e.Insert(p.Name, pobj) // fresh scope: cannot already be bound
		p.Obj = pobj
	}

	if node.Body != nil {
		insertWalk(node.Body, e, log)
	}
}

func insertDataDef(node *ast.DataDef, e *env.Env, log *diagnostics.Log) {
	obj := ast.NewObject(node.Name)
	obj.StorageDuration = node.DeclaredStorage
	if !e.Insert(node.Name, obj) {
		log.Abort(diagnostics.New(diagnostics.ERedefinition, node.Span(),
			"%q is already defined in this scope", node.Name))
	}
	node.SetAssociatedObject(obj)

	if node.Init != nil && !node.Init.NoInit && node.Init.Args != nil {
		for _, a := range node.Init.Args.Items {
			insertWalk(a, e, log)
		}
	}
}
