package irgen

import (
	"github.com/oxhq/vellum/internal/ast"
	"github.com/oxhq/vellum/internal/diagnostics"
	"github.com/oxhq/vellum/internal/irbuilder"
	"github.com/oxhq/vellum/internal/objtype"
)

// generator holds the state the main lowering walk threads through: the
// backend being built against and the block the builder's insertion
// point currently sits at. The Builder interface exposes no "query
// current block" operation (spec.md §6 only asks for "query current
// parent function"), so generator tracks it itself -- every block
// transition in this package goes through setBlock, never a bare
// b.SetInsertPoint, to keep the two in lockstep.
type generator struct {
	b   irbuilder.Builder
	mod irbuilder.Module
	cur irbuilder.BasicBlock
}

// Generate runs the main IR lowering pass (pass 5) over fn, which must
// already have passed Forward. fn is lowered as the backend function its
// FunctionObj was forward-declared against; every FunDef and static
// DataDef nested in its body is lowered too, each into its own
// previously forward-declared backend entity.
func Generate(fn *ast.FunDef, b irbuilder.Builder, mod irbuilder.Module) (err error) {
	defer diagnostics.Recover(&err)
	g := &generator{b: b, mod: mod}
	g.genFunDef(fn)
	return nil
}

func (g *generator) setBlock(b irbuilder.BasicBlock) {
	g.b.SetInsertPoint(b)
	g.cur = b
}

func objType(n ast.AstObject) *objtype.ObjType {
	obj := n.AssociatedObject()
	if obj == nil {
		return nil
	}
	return obj.ObjType
}

func isNoreturn(t *objtype.ObjType) bool {
	u := t.Unqualified()
	return u.IsFundamental() && u.Fundamental() == objtype.Noreturn
}

// emit lowers n and returns its value, or nil if n denotes void (or if n
// is noreturn: the current block is already terminated by the time emit
// returns, and the caller must not append anything else to it without
// first switching to a fresh block).
func (g *generator) emit(n ast.AstObject) irbuilder.Value {
	switch node := n.(type) {
	case *ast.Nop:
		return nil
	case *ast.Number:
		return g.genNumber(node)
	case *ast.Symbol:
		return g.readObject(node.AssociatedObject())
	case *ast.Cast:
		return g.genCast(node)
	case *ast.Operator:
		return g.genOperator(node)
	case *ast.Seq:
		return g.genSeq(node)
	case *ast.Block:
		return g.genBlock(node)
	case *ast.If:
		return g.genIf(node)
	case *ast.Loop:
		return g.genLoop(node)
	case *ast.Return:
		return g.genReturn(node)
	case *ast.FunCall:
		return g.genFunCall(node)
	case *ast.FunDef:
		return g.genFunDef(node)
	case *ast.DataDef:
		return g.genDataDef(node)
	default:
		panic(diagnostics.Internalf("emit: unhandled node kind %T", n))
	}
}

// readObject produces the current value of obj, loading from memory if
// it lives there or returning its recorded SSA value otherwise. Shared by
// Symbol reads and by any definition whose own position denotes its
// freshly-defined object's value.
func (g *generator) readObject(obj *ast.Object) irbuilder.Value {
	if obj == nil {
		panic(diagnostics.Internalf("readObject: nil object"))
	}
	if obj.MustLiveInMemory() {
		return g.b.Load(irType(obj.ObjType), g.addrValue(obj))
	}
	v, ok := obj.Value.(irbuilder.Value)
	if !ok {
		panic(diagnostics.Internalf("object %q has no SSA value recorded", obj.Name))
	}
	return v
}

// writeObject stores v into obj's backend storage, or records it as
// obj's current SSA value if it never needed memory residency.
func (g *generator) writeObject(obj *ast.Object, v irbuilder.Value) {
	if obj.MustLiveInMemory() {
		g.b.Store(v, g.addrValue(obj))
	} else {
		obj.Value = v
	}
	obj.Phase = ast.PhaseInitialized
}

// addrValue returns a Value carrying obj's address, whether it was
// allocated as a local (Addr already a Value) or forward-declared as a
// global (Addr a Global, needing GlobalAddr to turn into a Value).
func (g *generator) addrValue(obj *ast.Object) irbuilder.Value {
	switch a := obj.Addr.(type) {
	case irbuilder.Value:
		return a
	case irbuilder.Global:
		return g.b.GlobalAddr(a)
	default:
		panic(diagnostics.Internalf("object %q has no backend address", obj.Name))
	}
}

func (g *generator) genNumber(n *ast.Number) irbuilder.Value {
	t := objType(n).Unqualified()
	it := irType(t)
	if t.FloatingPoint() {
		return g.b.ConstFloat(it, n.DoubleValue)
	}
	return g.b.ConstInt(it, int64(n.IntValue))
}

func (g *generator) genCast(n *ast.Cast) irbuilder.Value {
	v := g.emit(n.Operand)
	src := objType(n.Operand).Unqualified()
	dst := n.DeclaredType.ResolvedType().Unqualified()
	return g.convert(v, src, dst)
}

// convert implements spec.md §4.7's cast lowering: a nop between
// identical types, zext/trunc between integrals (routed through an
// explicit nonzero compare when narrowing to bool, so a cast to bool
// never depends on which low bit survives truncation), the four
// int<->float conversions chosen by source/destination signedness, and a
// bit-identical pass-through for pointer conversions and the
// already-validated abstract/nullptr constructor cases.
func (g *generator) convert(v irbuilder.Value, src, dst *objtype.ObjType) irbuilder.Value {
	if src == dst {
		return v
	}
	dstT := irType(dst)
	switch {
	case src.FloatingPoint() && dst.FloatingPoint():
		return v
	case src.Integral() && dst.Integral():
		if dst.Fundamental() == objtype.Bool && src.Fundamental() != objtype.Bool {
			zero := g.b.ConstInt(irType(src), 0)
			return g.b.ICmp(irbuilder.Ne, v, zero)
		}
		if dst.Size() > src.Size() {
			return g.b.ZExt(v, dstT)
		}
		if dst.Size() < src.Size() {
			return g.b.Trunc(v, dstT)
		}
		return v
	case src.Integral() && dst.FloatingPoint():
		if src.Fundamental() == objtype.Int {
			return g.b.SIToFP(v, dstT)
		}
		return g.b.UIToFP(v, dstT)
	case src.FloatingPoint() && dst.Integral():
		if dst.Fundamental() == objtype.Int {
			return g.b.FPToSI(v, dstT)
		}
		return g.b.FPToUI(v, dstT)
	default:
		// Pointer<->pointer, nullptr->pointer, and same-kind abstract
		// casts carry no representation change.
		return v
	}
}

func (g *generator) genOperator(n *ast.Operator) irbuilder.Value {
	switch n.Op {
	case objtype.OpAddrOf:
		return g.addrOf(n.Args[0])
	case objtype.OpDeref:
		addr := g.emit(n.Args[0])
		pointee := objType(n.Args[0]).Unqualified().Pointee()
		return g.b.Load(irType(pointee), addr)
	case objtype.OpNot:
		return g.b.Not(g.emit(n.Args[0]))
	case objtype.OpAssign, objtype.OpAssignRef:
		return g.genAssign(n)
	case objtype.OpAnd, objtype.OpOr:
		return g.genShortCircuit(n)
	default:
		a := g.emit(n.Args[0])
		b := g.emit(n.Args[1])
		return g.genBinArith(n.Op, objType(n.Args[0]), a, b)
	}
}

func (g *generator) addrOf(operand ast.AstObject) irbuilder.Value {
	obj := operand.AssociatedObject()
	if obj == nil {
		panic(diagnostics.Internalf("address-of operand has no associated object"))
	}
	return g.addrValue(obj)
}

func (g *generator) genAssign(n *ast.Operator) irbuilder.Value {
	lhs, rhs := n.Args[0], n.Args[1]
	v := g.emit(rhs)
	obj := lhs.AssociatedObject()
	if obj == nil {
		panic(diagnostics.Internalf("assignment target has no associated object"))
	}
	g.writeObject(obj, v)
	if n.Op == objtype.OpAssignRef {
		return v
	}
	return nil
}

func (g *generator) genBinArith(op objtype.Op, operandType *objtype.ObjType, a, b irbuilder.Value) irbuilder.Value {
	u := operandType.Unqualified()
	isFloat := u.FloatingPoint()
	switch op {
	case objtype.OpAdd:
		if isFloat {
			return g.b.FAdd(a, b)
		}
		return g.b.Add(a, b)
	case objtype.OpSub:
		if isFloat {
			return g.b.FSub(a, b)
		}
		return g.b.Sub(a, b)
	case objtype.OpMul:
		if isFloat {
			return g.b.FMul(a, b)
		}
		return g.b.Mul(a, b)
	case objtype.OpDiv:
		if isFloat {
			return g.b.FDiv(a, b)
		}
		if u.Fundamental() == objtype.Int {
			return g.b.SDiv(a, b)
		}
		return g.b.UDiv(a, b)
	case objtype.OpEq, objtype.OpNe, objtype.OpLt, objtype.OpLe, objtype.OpGt, objtype.OpGe:
		pred := comparePredicate(op, u)
		if isFloat {
			return g.b.FCmp(pred, a, b)
		}
		return g.b.ICmp(pred, a, b)
	default:
		panic(diagnostics.Internalf("genBinArith: unexpected operator %s", op))
	}
}

// comparePredicate picks the signed integer predicate only for int;
// bool, char, and pointer compares all go through the unsigned variant
// (bool/char have no negative representation worth distinguishing,
// pointers compare by raw address).
func comparePredicate(op objtype.Op, u *objtype.ObjType) irbuilder.Predicate {
	signed := u.IsFundamental() && u.Fundamental() == objtype.Int
	switch op {
	case objtype.OpEq:
		return irbuilder.Eq
	case objtype.OpNe:
		return irbuilder.Ne
	case objtype.OpLt:
		if signed {
			return irbuilder.LtS
		}
		return irbuilder.LtU
	case objtype.OpLe:
		if signed {
			return irbuilder.LeS
		}
		return irbuilder.LeU
	case objtype.OpGt:
		if signed {
			return irbuilder.GtS
		}
		return irbuilder.GtU
	case objtype.OpGe:
		if signed {
			return irbuilder.GeS
		}
		return irbuilder.GeU
	default:
		panic(diagnostics.Internalf("comparePredicate: %s is not a comparison", op))
	}
}

// genShortCircuit lowers && and || as the three-block diamond spec.md
// §4.7 describes: the right operand is only evaluated on the branch
// where it can affect the result.
func (g *generator) genShortCircuit(n *ast.Operator) irbuilder.Value {
	isAnd := n.Op == objtype.OpAnd
	lhsVal := g.emit(n.Args[0])

	fn := g.b.CurrentFunction()
	shortBlock := g.b.CreateBlock(fn, "sc.short")
	rhsBlock := g.b.CreateBlock(fn, "sc.rhs")
	joinBlock := g.b.CreateBlock(fn, "sc.join")

	if isAnd {
		g.b.CondBr(lhsVal, rhsBlock, shortBlock)
	} else {
		g.b.CondBr(lhsVal, shortBlock, rhsBlock)
	}

	g.setBlock(shortBlock)
	var shortLit int64
	if !isAnd {
		shortLit = 1
	}
	shortVal := g.b.ConstInt(irbuilder.I1, shortLit)
	g.b.Br(joinBlock)
	shortEnd := g.cur

	g.setBlock(rhsBlock)
	rhsVal := g.emit(n.Args[1])
	g.b.Br(joinBlock)
	rhsEnd := g.cur

	g.setBlock(joinBlock)
	return g.b.Phi(irbuilder.I1, []irbuilder.PhiIncoming{
		{Block: shortEnd, Value: shortVal},
		{Block: rhsEnd, Value: rhsVal},
	})
}

func (g *generator) genSeq(n *ast.Seq) irbuilder.Value {
	var last irbuilder.Value
	for _, op := range n.Ops {
		last = g.emit(op)
	}
	return last
}

func (g *generator) genBlock(n *ast.Block) irbuilder.Value {
	return g.emit(n.Body)
}

// genIf lowers a conditional as a then/else/join diamond, per spec.md
// §4.7. The join block is only materialized if some path actually
// reaches it: when both arms are noreturn the whole If is noreturn too,
// and control never falls past it.
func (g *generator) genIf(n *ast.If) irbuilder.Value {
	condVal := g.emit(n.Cond)
	fn := g.b.CurrentFunction()

	thenBlock := g.b.CreateBlock(fn, "if.then")
	hasElse := n.Else != nil
	var elseBlock irbuilder.BasicBlock
	if hasElse {
		elseBlock = g.b.CreateBlock(fn, "if.else")
	}

	var joinBlock irbuilder.BasicBlock
	ensureJoin := func() irbuilder.BasicBlock {
		if joinBlock == nil {
			joinBlock = g.b.CreateBlock(fn, "if.join")
		}
		return joinBlock
	}

	if hasElse {
		g.b.CondBr(condVal, thenBlock, elseBlock)
	} else {
		g.b.CondBr(condVal, thenBlock, ensureJoin())
	}

	g.setBlock(thenBlock)
	thenVal := g.emit(n.Then)
	thenNoreturn := isNoreturn(objType(n.Then))
	thenEnd := g.cur
	if !thenNoreturn {
		g.b.Br(ensureJoin())
	}

	var elseVal irbuilder.Value
	var elseEnd irbuilder.BasicBlock
	elseNoreturn := false
	if hasElse {
		g.setBlock(elseBlock)
		elseVal = g.emit(n.Else)
		elseNoreturn = isNoreturn(objType(n.Else))
		elseEnd = g.cur
		if !elseNoreturn {
			g.b.Br(ensureJoin())
		}
	}

	if joinBlock == nil {
		return nil
	}

	g.setBlock(joinBlock)
	ifType := objType(n)
	if irType(ifType) == irbuilder.Void {
		return nil
	}

	var incoming []irbuilder.PhiIncoming
	if !thenNoreturn {
		incoming = append(incoming, irbuilder.PhiIncoming{Block: thenEnd, Value: thenVal})
	}
	if hasElse && !elseNoreturn {
		incoming = append(incoming, irbuilder.PhiIncoming{Block: elseEnd, Value: elseVal})
	}
	if len(incoming) == 1 {
		return incoming[0].Value
	}
	return g.b.Phi(irType(ifType), incoming)
}

// genLoop lowers a pre-test while loop as cond/body/after blocks. If the
// body is noreturn on every path, the back edge to cond is never wired:
// the loop never iterates past such a body.
func (g *generator) genLoop(n *ast.Loop) irbuilder.Value {
	fn := g.b.CurrentFunction()
	condBlock := g.b.CreateBlock(fn, "loop.cond")
	bodyBlock := g.b.CreateBlock(fn, "loop.body")
	afterBlock := g.b.CreateBlock(fn, "loop.after")

	g.b.Br(condBlock)
	g.setBlock(condBlock)
	condVal := g.emit(n.Cond)
	g.b.CondBr(condVal, bodyBlock, afterBlock)

	g.setBlock(bodyBlock)
	g.emit(n.Body)
	if !isNoreturn(objType(n.Body)) {
		g.b.Br(condBlock)
	}

	g.setBlock(afterBlock)
	return nil
}

func (g *generator) genReturn(n *ast.Return) irbuilder.Value {
	if n.Value == nil {
		g.b.RetVoid()
		return nil
	}
	g.b.Ret(g.emit(n.Value))
	return nil
}

func (g *generator) genFunCall(n *ast.FunCall) irbuilder.Value {
	calleeObj := n.Callee.AssociatedObject()
	if calleeObj == nil {
		panic(diagnostics.Internalf("call target has no associated object"))
	}
	irFn, ok := calleeObj.Addr.(irbuilder.Function)
	if !ok {
		panic(diagnostics.Internalf("call target %q was not forward-declared as a function", calleeObj.Name))
	}
	args := make([]irbuilder.Value, len(n.Args.Items))
	for i, a := range n.Args.Items {
		args[i] = g.emit(a)
	}
	res := g.b.Call(irFn, args)
	if irType(objType(n)) == irbuilder.Void {
		return nil
	}
	return res
}

// genFunDef lowers a FunDef's body into its own previously
// forward-declared backend function, then restores the enclosing
// function's insertion point: a nested FunDef is a statement (denoting
// void) in its enclosing body, but its body is code for an entirely
// separate function, not inline instructions in the caller's block.
func (g *generator) genFunDef(n *ast.FunDef) irbuilder.Value {
	obj := n.FunctionObj
	irFn, ok := obj.Addr.(irbuilder.Function)
	if !ok {
		panic(diagnostics.Internalf("FunDef %q was not forward-declared", n.Name))
	}

	saved := g.cur
	entry := g.b.CreateBlock(irFn, "entry")
	g.setBlock(entry)

	for i, p := range n.Params {
		pObj := p.Obj
		irVal := g.b.FuncParam(irFn, i)
		if pObj.MustLiveInMemory() {
			addr := g.b.Alloca(irType(pObj.ObjType))
			g.b.Store(irVal, addr)
			pObj.Addr = addr
		} else {
			pObj.Value = irVal
		}
		pObj.Phase = ast.PhaseInitialized
	}

	// Every local object that must live in memory gets its alloca emitted
	// here, in the entry block, regardless of how deeply nested its
	// defining DataDef is in the body -- the entry-block-only allocation
	// discipline a real backend's SSA construction relies on. genDataDef
	// only stores to (or records the SSA value for) an already-allocated
	// object.
	if n.Body != nil {
		var locals []*ast.DataDef
		collectLocalDataDefs(n.Body, &locals)
		for _, dd := range locals {
			lobj := dd.AssociatedObject()
			if lobj.StorageDuration == ast.Local && lobj.MustLiveInMemory() {
				lobj.Addr = g.b.Alloca(irType(lobj.ObjType))
				lobj.Phase = ast.PhaseAllocated
			}
		}
	}

	var bodyVal irbuilder.Value
	bodyNoreturn := false
	if n.Body != nil {
		bodyVal = g.emit(n.Body)
		bodyNoreturn = isNoreturn(objType(n.Body))
	}
	if !bodyNoreturn {
		retType := obj.ObjType.Return()
		if irType(retType) == irbuilder.Void {
			g.b.RetVoid()
		} else {
			g.b.Ret(bodyVal)
		}
	}

	if saved != nil {
		g.setBlock(saved)
	}
	obj.Phase = ast.PhaseInitialized
	return nil
}

func (g *generator) genDataDef(n *ast.DataDef) irbuilder.Value {
	obj := n.AssociatedObject()
	if obj.StorageDuration == ast.Static {
		return g.genStaticDataDef(n, obj)
	}
	return g.genLocalDataDef(n, obj)
}

func (g *generator) genStaticDataDef(n *ast.DataDef, obj *ast.Object) irbuilder.Value {
	glob, ok := obj.Addr.(irbuilder.Global)
	if !ok {
		panic(diagnostics.Internalf("static data %q was not forward-declared", n.Name))
	}
	if n.Init != nil && !n.Init.NoInit {
		g.b.SetGlobalInitializer(glob, g.constFold(n.Init.Args.Items[0]))
	}
	obj.Phase = ast.PhaseInitialized
	return g.readObject(obj)
}

// genLocalDataDef stores the initializer into obj's storage (already
// allocated in the entry block by genFunDef's prepass) or records it as
// obj's SSA value. A noinit definition leaves obj exactly as genFunDef
// left it: allocated but not yet initialized.
func (g *generator) genLocalDataDef(n *ast.DataDef, obj *ast.Object) irbuilder.Value {
	if n.Init == nil || n.Init.NoInit {
		return nil
	}
	g.writeObject(obj, g.emit(n.Init.Args.Items[0]))
	return g.readObject(obj)
}

// collectLocalDataDefs gathers every DataDef reachable from n without
// descending into a nested FunDef's body, which is allocated separately
// when that FunDef's own genFunDef call runs.
func collectLocalDataDefs(n ast.Node, out *[]*ast.DataDef) {
	switch node := n.(type) {
	case *ast.FunDef:
		return
	case *ast.DataDef:
		*out = append(*out, node)
		for _, c := range n.Children() {
			if c != nil {
				collectLocalDataDefs(c, out)
			}
		}
	default:
		for _, c := range n.Children() {
			if c != nil {
				collectLocalDataDefs(c, out)
			}
		}
	}
}

// constFold evaluates a static initializer, which the semantic analyzer
// has already restricted to a number literal or a cast chain over one
// (isCompileTimeConstant); there is no general constant-folding engine.
func (g *generator) constFold(n ast.AstObject) irbuilder.Value {
	switch e := n.(type) {
	case *ast.Number:
		return g.genNumber(e)
	case *ast.Cast:
		v := g.constFold(e.Operand)
		src := objType(e.Operand).Unqualified()
		dst := e.DeclaredType.ResolvedType().Unqualified()
		return g.convert(v, src, dst)
	default:
		panic(diagnostics.Internalf("constFold: %T is not a compile-time constant", n))
	}
}
