package sema

import (
	"github.com/oxhq/vellum/internal/ast"
	"github.com/oxhq/vellum/internal/diagnostics"
	"github.com/oxhq/vellum/internal/env"
	"github.com/oxhq/vellum/internal/objtype"
)

// Analyzer carries the state a single top-down semantic-analysis pass
// needs: the very environment the env inserter built (so a name bound by
// pass 1 is found by pass 3 without being rebuilt from scratch), the
// accumulating diagnostics log, the type interner, and a stack of
// enclosing function return types for Return's context check.
type Analyzer struct {
	env         *env.Env
	log         *diagnostics.Log
	in          *objtype.Interner
	returnStack []*objtype.ObjType
}

// Analyze runs the semantic analyzer (pass 3) over fn, resolving Symbol
// lookups against e -- the same environment Insert (pass 1) populated,
// not a disconnected one of its own. It assumes Insert and Augment have
// already run successfully against fn, e, and in.
func Analyze(fn *ast.FunDef, e *env.Env, in *objtype.Interner, log *diagnostics.Log) (err error) {
	defer diagnostics.Recover(&err)
	a := &Analyzer{env: e, log: log, in: in}
	a.visit(fn, ast.Ignore)
	return nil
}

// declareScope pre-binds every FunDef/DataDef name that lives directly in
// the scope currently on top of a.env -- not inside a nested Block or
// FunDef body, which acquire their own child scope when actually visited
// -- by reusing the Object each already got from the env inserter
// (n.FunctionObj / n.AssociatedObject()) rather than creating a new one.
// Called right after pushing a FunDef's or Block's scope and before
// visiting its body, this is what lets two siblings defined in the same
// scope call each other regardless of which one appears first in source
// order; the env inserter's own walk needs no such hoist because it
// never performs a lookup, only insertions.
func (a *Analyzer) declareScope(n ast.Node) {
	switch node := n.(type) {
	case *ast.FunDef:
		if node.FunctionObj != nil {
			a.env.Insert(node.Name, node.FunctionObj)
		}
	case *ast.DataDef:
		if obj := node.AssociatedObject(); obj != nil {
			a.env.Insert(node.Name, obj)
		}
		if node.Init != nil && !node.Init.NoInit && node.Init.Args != nil {
			for _, arg := range node.Init.Args.Items {
				a.declareScope(arg)
			}
		}
	case *ast.Block:
		// Own child scope, hoisted when the block is actually visited.
	default:
		for _, c := range n.Children() {
			if c != nil {
				a.declareScope(c)
			}
		}
	}
}

func (a *Analyzer) local(t *objtype.ObjType) *ast.Object {
	return &ast.Object{ObjType: t, StorageDuration: ast.Local}
}

func (a *Analyzer) fail(kind diagnostics.ErrorKind, n ast.Node, format string, args ...any) {
	a.log.Abort(diagnostics.New(kind, n.Span(), format, args...))
}

// visit assigns access to n (responsibility 1, from the caller's point of
// view) and dispatches to the node-specific handler, which in turn
// propagates access to its own children, performs its checks, and sets
// its own associated object before calling addAccess on it.
func (a *Analyzer) visit(n ast.AstObject, access ast.AccessKind) {
	n.SetAccessFromParent(access)
	switch node := n.(type) {
	case *ast.Nop:
		a.analyzeNop(node)
	case *ast.Number:
		a.analyzeNumber(node)
	case *ast.Symbol:
		a.analyzeSymbol(node)
	case *ast.Block:
		a.analyzeBlock(node)
	case *ast.Cast:
		a.analyzeCast(node)
	case *ast.Operator:
		a.analyzeOperator(node)
	case *ast.Seq:
		a.analyzeSeq(node)
	case *ast.If:
		a.analyzeIf(node)
	case *ast.Loop:
		a.analyzeLoop(node)
	case *ast.Return:
		a.analyzeReturn(node)
	case *ast.FunCall:
		a.analyzeFunCall(node)
	case *ast.FunDef:
		a.analyzeFunDef(node)
	case *ast.DataDef:
		a.analyzeDataDef(node)
	default:
		panic(diagnostics.Internalf("analyze: unhandled AstObject %T", n))
	}
	if obj := n.AssociatedObject(); obj != nil {
		obj.AddAccess(n.AccessFromParent())
	}
}

func objType(n ast.AstObject) *objtype.ObjType {
	obj := n.AssociatedObject()
	if obj == nil {
		return nil
	}
	return obj.ObjType
}

func (a *Analyzer) analyzeNop(n *ast.Nop) {
	n.SetAssociatedObject(a.local(a.in.Fundamental(objtype.Void)))
}

func (a *Analyzer) analyzeNumber(n *ast.Number) {
	n.SetAssociatedObject(a.local(a.in.Fundamental(n.LitType)))
}

func (a *Analyzer) analyzeSymbol(n *ast.Symbol) {
	obj := a.env.Find(n.Name)
	if obj == nil {
		a.fail(diagnostics.EUnknownName, n, "%q is not defined", n.Name)
	}
	if obj.StorageDuration == ast.Local && !obj.IsInitialized() && n.AccessFromParent() != ast.Ignore {
		a.fail(diagnostics.ENonIgnoreAccessToLocalDataObjectBeforeItsInit, n,
			"%q is used before it is initialized", n.Name)
	}
	n.SetAssociatedObject(obj)
}

func (a *Analyzer) analyzeBlock(n *ast.Block) {
	a.env.Push()
	a.declareScope(n.Body)
	a.visit(n.Body, n.AccessFromParent())
	a.env.Pop()
	n.SetAssociatedObject(a.local(objType(n.Body).Unqualified()))
}

func (a *Analyzer) analyzeCast(n *ast.Cast) {
	a.visit(n.Operand, ast.Read)
	dst := n.DeclaredType.ResolvedType()
	src := objType(n.Operand)
	if !objtype.MatchesSauf(src, dst) && !dst.HasConstructor(src) {
		a.fail(diagnostics.ENoSuchMember, n, "cannot cast %s to %s", src, dst)
	}
	n.SetAssociatedObject(a.local(dst))
}

func (a *Analyzer) analyzeOperator(n *ast.Operator) {
	op := n.Op
	switch {
	case op.IsAssignment():
		a.visit(n.Args[0], ast.Write)
		a.visit(n.Args[1], ast.Read)
	case op == objtype.OpAddrOf:
		a.visit(n.Args[0], ast.TakeAddress)
	case op == objtype.OpDeref:
		a.visit(n.Args[0], ast.Read)
	default:
		for _, arg := range n.Args {
			a.visit(arg, ast.Read)
		}
	}

	lhsType := objType(n.Args[0])
	if !lhsType.HasMember(op) {
		a.fail(diagnostics.ENoSuchMember, n, "%s has no member operator %s", lhsType, op)
	}

	if len(n.Args) == 2 {
		rhsType := objType(n.Args[1])
		shortCircuit := op.IsLogical() && isNoreturnType(rhsType)
		if !shortCircuit && !objtype.MatchesSauf(lhsType, rhsType) {
			a.fail(diagnostics.ENoImplicitConversion, n, "operand types %s and %s do not match", lhsType, rhsType)
		}
	}

	if op.IsAssignment() {
		if !lhsType.IsMutable() {
			a.fail(diagnostics.EWriteToImmutable, n, "cannot assign to immutable value of type %s", lhsType)
		}
	}

	switch {
	case op.IsAssignment() && op == objtype.OpAssign:
		n.SetAssociatedObject(a.local(a.in.Fundamental(objtype.Void)))
	case op == objtype.OpAssignRef:
		n.SetAssociatedObject(n.Args[0].AssociatedObject())
	case op.IsComparison():
		n.SetAssociatedObject(a.local(a.in.Fundamental(objtype.Bool)))
	case op == objtype.OpAddrOf:
		n.SetAssociatedObject(a.local(a.in.Pointer(lhsType)))
	case op == objtype.OpDeref:
		n.SetAssociatedObject(a.local(lhsType.Pointee()))
	default:
		n.SetAssociatedObject(a.local(lhsType.Unqualified()))
	}

	// & already propagated TakeAddress to its operand via the access
	// switch above (visit's own end-of-call addAccess picks it up). A
	// deref's operand only received Read there, but dereferencing still
	// reveals the pointee's address, so flag it explicitly here.
	if op == objtype.OpDeref {
		if operandObj := n.Args[0].AssociatedObject(); operandObj != nil {
			operandObj.AddAccess(ast.TakeAddress)
		}
	}
}

func (a *Analyzer) analyzeSeq(n *ast.Seq) {
	for i, op := range n.Ops {
		access := ast.Ignore
		if i == len(n.Ops)-1 {
			access = n.AccessFromParent()
		}
		a.visit(op, access)
		if i < len(n.Ops)-1 {
			if t := objType(op); t != nil && isNoreturnType(t) {
				a.fail(diagnostics.EUnreachableCode, op, "unreachable code after a noreturn expression")
			}
		}
	}
	if len(n.Ops) == 0 {
		n.SetAssociatedObject(a.local(a.in.Fundamental(objtype.Void)))
		return
	}
	n.SetAssociatedObject(n.Ops[len(n.Ops)-1].AssociatedObject())
}

func (a *Analyzer) analyzeIf(n *ast.If) {
	a.visit(n.Cond, ast.Read)
	condType := objType(n.Cond)
	boolType := a.in.Fundamental(objtype.Bool)
	if !objtype.MatchesSauf(condType, boolType) {
		a.fail(diagnostics.ENoImplicitConversion, n.Cond, "if condition must be bool, got %s", condType)
	}

	a.visit(n.Then, n.AccessFromParent())
	thenType := objType(n.Then)

	if n.Else == nil {
		n.SetAssociatedObject(a.local(a.in.Fundamental(objtype.Void)))
		return
	}

	a.visit(n.Else, n.AccessFromParent())
	elseType := objType(n.Else)

	switch {
	case isNoreturnType(thenType):
		n.SetAssociatedObject(a.local(elseType.Unqualified()))
	case isNoreturnType(elseType):
		n.SetAssociatedObject(a.local(thenType.Unqualified()))
	default:
		if !objtype.MatchesSauf(thenType, elseType) {
			a.fail(diagnostics.ENoImplicitConversion, n, "if branches have mismatched types %s and %s", thenType, elseType)
		}
		n.SetAssociatedObject(a.local(thenType.Unqualified()))
	}
}

func (a *Analyzer) analyzeLoop(n *ast.Loop) {
	a.visit(n.Cond, ast.Read)
	condType := objType(n.Cond)
	boolType := a.in.Fundamental(objtype.Bool)
	if !objtype.MatchesSauf(condType, boolType) {
		a.fail(diagnostics.ENoImplicitConversion, n.Cond, "while condition must be bool, got %s", condType)
	}
	a.visit(n.Body, ast.Ignore)
	n.SetAssociatedObject(a.local(a.in.Fundamental(objtype.Void)))
}

func (a *Analyzer) analyzeReturn(n *ast.Return) {
	if len(a.returnStack) == 0 {
		a.fail(diagnostics.ENotInFunBodyContext, n, "return outside a function body")
	}
	want := a.returnStack[len(a.returnStack)-1]

	if n.Value != nil {
		a.visit(n.Value, ast.Read)
		got := objType(n.Value)
		if !objtype.MatchesSauf(got, want) {
			a.fail(diagnostics.ENoImplicitConversion, n, "return type %s does not match declared return type %s", got, want)
		}
	} else if u := want.Unqualified(); !u.IsFundamental() || u.Fundamental() != objtype.Void {
		a.fail(diagnostics.ENoImplicitConversion, n, "bare return in a function returning %s", want)
	}

	n.SetAssociatedObject(a.local(a.in.Fundamental(objtype.Noreturn)))
}

func (a *Analyzer) analyzeFunCall(n *ast.FunCall) {
	a.visit(n.Callee, ast.Read)
	calleeType := objType(n.Callee)
	if !calleeType.IsFunction() {
		a.fail(diagnostics.EInvalidArguments, n, "called value is not a function")
	}
	params := calleeType.Params()
	if len(n.Args.Items) != len(params) {
		a.fail(diagnostics.EInvalidArguments, n, "expected %d arguments, got %d", len(params), len(n.Args.Items))
	}
	for i, arg := range n.Args.Items {
		a.visit(arg, ast.Read)
		if !objtype.MatchesSauf(objType(arg), params[i]) {
			a.fail(diagnostics.EInvalidArguments, arg, "argument %d has type %s, expected %s", i, objType(arg), params[i])
		}
	}
	n.SetAssociatedObject(a.local(calleeType.Return()))
}

func (a *Analyzer) analyzeFunDef(n *ast.FunDef) {
	a.env.Insert(n.Name, n.FunctionObj)

	retType := n.FunctionObj.ObjType.Return()
	if retType.IsQualified() && retType.IsMutable() {
		a.fail(diagnostics.ERetTypeCantHaveMutQualifier, n, "return type %s must not be mutable-qualified", retType)
	}
	for _, p := range n.Params {
		if p.Obj.StorageDuration != ast.Local {
			a.fail(diagnostics.EOnlyLocalStorageDurationApplicable, p, "parameter %q must have local storage duration", p.Name)
		}
	}

	a.env.Push()
	for _, p := range n.Params {
		a.env.Insert(p.Name, p.Obj)
		p.Obj.MarkInitialized()
	}
	a.returnStack = append(a.returnStack, retType)

	if n.Body != nil {
		a.declareScope(n.Body)
		a.visit(n.Body, ast.Read)
		bodyType := objType(n.Body)
		if bodyType != nil && !isNoreturnType(bodyType) && !objtype.MatchesSauf(bodyType, retType) {
			a.fail(diagnostics.ENoImplicitConversion, n, "function body type %s does not match declared return type %s", bodyType, retType)
		}
	}

	a.returnStack = a.returnStack[:len(a.returnStack)-1]
	a.env.Pop()

	n.SetAssociatedObject(a.local(a.in.Fundamental(objtype.Void)))
}

func (a *Analyzer) analyzeDataDef(n *ast.DataDef) {
	obj := n.AssociatedObject()
	if obj != nil {
		a.env.Insert(n.Name, obj)
	}

	if n.Init == nil || n.Init.NoInit {
		n.SetAssociatedObject(obj)
		return
	}

	if len(n.Init.Args.Items) != 1 {
		a.fail(diagnostics.EMultipleInitializers, n, "a definition takes exactly one initializer expression")
	}
	initExpr := n.Init.Args.Items[0]
	a.visit(initExpr, ast.Read)
	initType := objType(initExpr)

	if n.DeclaredStorage == ast.Static && !isCompileTimeConstant(initExpr) {
		a.fail(diagnostics.ECTConstRequired, n, "static definition %q requires a compile-time constant initializer", n.Name)
	}

	declaredU := obj.ObjType.Unqualified()
	if declaredU.IsFundamental() && declaredU.Fundamental() == objtype.Infer {
		obj.ObjType = initType.Unqualified()
	} else if !objtype.MatchesSauf(initType, obj.ObjType) {
		a.fail(diagnostics.ENoImplicitConversion, n, "initializer type %s does not match declared type %s", initType, obj.ObjType)
	}

	obj.MarkInitialized()
	n.SetAssociatedObject(obj)
}

// isCompileTimeConstant is a minimal constant predicate: literal numbers
// (and, transitively, a Cast of one) are constants; nothing else is,
// since this grammar has no constant-folding engine.
func isCompileTimeConstant(n ast.AstObject) bool {
	switch node := n.(type) {
	case *ast.Number:
		return true
	case *ast.Cast:
		return isCompileTimeConstant(node.Operand)
	default:
		return false
	}
}

// isNoreturnType reports whether t is (sauf qualifiers) the noreturn
// fundamental -- the type Return's own node always carries, and the
// signal that lets If/Seq/binary-operator checks treat one side of a
// divergent branch as vacuously compatible with anything.
func isNoreturnType(t *objtype.ObjType) bool {
	u := t.Unqualified()
	return u.IsFundamental() && u.Fundamental() == objtype.Noreturn
}
