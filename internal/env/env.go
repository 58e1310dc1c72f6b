// Package env implements the environment described in spec.md §4.4: a
// stack of scope tables consulted by the env inserter, signature
// augmentor, and semantic analyzer passes.
package env

import "github.com/oxhq/vellum/internal/ast"

// scope is one entry in the stack: a flat name-to-object table.
type scope struct {
	table map[string]*ast.Object
}

func newScope() *scope { return &scope{table: make(map[string]*ast.Object)} }

// Env is a list of scope tables. Push prepends a new innermost scope; Pop
// removes it. Find searches innermost-out; Insert only ever touches the
// current (innermost) scope.
type Env struct {
	scopes []*scope // scopes[len-1] is innermost
}

// New returns an Env with a single outermost scope already pushed, so
// top-level definitions have somewhere to land without a caller having to
// remember to Push first.
func New() *Env {
	return &Env{scopes: []*scope{newScope()}}
}

// Push acquires a fresh innermost scope, per spec.md §4.4: entering an
// AstBlock or AstFunDef acquires a scope.
func (e *Env) Push() {
	e.scopes = append(e.scopes, newScope())
}

// Pop releases the innermost scope. It must be called on every exit path
// from the node that pushed it, including error paths (spec.md §4.4).
func (e *Env) Pop() {
	if len(e.scopes) == 0 {
		return
	}
	e.scopes = e.scopes[:len(e.scopes)-1]
}

// Depth reports the current number of scopes on the stack. This is one
// more than the ast.ScopeRef.Depth that Insert assigns in the innermost
// scope, which counts from 0.
func (e *Env) Depth() int { return len(e.scopes) }

// Insert binds name to obj in the current (innermost) scope. It reports
// false without modifying the scope if name is already bound there --
// the caller is expected to turn that into an eRedefinition diagnostic.
// A name already bound in an outer scope does not block insertion here;
// shadowing is permitted, only same-scope collisions are not.
func (e *Env) Insert(name string, obj *ast.Object) bool {
	cur := e.scopes[len(e.scopes)-1]
	if _, exists := cur.table[name]; exists {
		return false
	}
	obj.Scope = ast.ScopeRef{Depth: len(e.scopes) - 1, Slot: len(cur.table)}
	cur.table[name] = obj
	return true
}

// Find searches the scope stack innermost-out and returns the nearest
// binding for name, or nil if unbound anywhere.
func (e *Env) Find(name string) *ast.Object {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if obj, ok := e.scopes[i].table[name]; ok {
			return obj
		}
	}
	return nil
}

// FindLocal reports only whether name is bound in the current innermost
// scope, without searching outward, and returns that binding if so.
func (e *Env) FindLocal(name string) (*ast.Object, bool) {
	cur := e.scopes[len(e.scopes)-1]
	obj, ok := cur.table[name]
	return obj, ok
}
