// Package refvm is a reference in-memory implementation of
// irbuilder.Builder: it builds a tiny typed-SSA graph (modules of
// functions of basic blocks of instructions) and can interpret it
// directly, with no native code generation involved. It exists so
// internal/irgen and the compiler driver have a Builder to target without
// depending on an external JIT library.
//
// The block/instruction/interpreter shape is grounded on the bytecode
// virtual machine's compiler-output walk: a flat per-function instruction
// stream executed by a straight-line dispatch loop over an opcode tag,
// values threaded through a register table rather than a native stack.
package refvm

import (
	"fmt"

	"github.com/oxhq/vellum/internal/irbuilder"
)

type opcode int

const (
	opAdd opcode = iota
	opSub
	opMul
	opSDiv
	opUDiv
	opFAdd
	opFSub
	opFMul
	opFDiv
	opICmp
	opFCmp
	opNot
	opAlloca
	opLoad
	opStore
	opZExt
	opTrunc
	opSIToFP
	opUIToFP
	opFPToSI
	opFPToUI
	opPhi
	opCall
	opBr
	opCondBr
	opRet
	opRetVoid
	opParam
)

// valKind distinguishes how a *val's payload should be interpreted.
type valKind int

const (
	kConstInt valKind = iota
	kConstFloat
	kInstr     // result of an instr, looked up in the call's register table
	kLocalAddr // an alloca's address, keyed by the defining instr
	kGlobalAddr
	kFuncAddr
)

// val is the concrete irbuilder.Value this backend hands back and forth.
type val struct {
	typ   irbuilder.Type
	kind  valKind
	iv    int64
	fv    float64
	instr *instr
	glob  *global
	fn    *function
}

type instr struct {
	op   opcode
	typ  irbuilder.Type
	args []*val
	pred irbuilder.Predicate

	// opBr
	target *block
	// opCondBr
	thenBlock, elseBlock *block
	// opPhi
	incoming []irbuilder.PhiIncoming
	// opCall
	callTarget *function
}

type block struct {
	fn     *function
	name   string
	instrs []*instr
}

type function struct {
	name       string
	paramTypes []irbuilder.Type
	retType    irbuilder.Type
	blocks     []*block
	params     []*instr
}

type global struct {
	name     string
	typ      irbuilder.Type
	constant bool
	init     *val
}

type module struct {
	name        string
	funcs       map[string]*function
	funcOrder   []*function
	globals     []*global
	globalState map[*global]val
}

// VM implements irbuilder.Builder.
type VM struct {
	curBlock *block
}

func New() *VM { return &VM{} }

func (vm *VM) CreateModule(name string) irbuilder.Module {
	return &module{name: name, funcs: map[string]*function{}, globalState: map[*global]val{}}
}

func (vm *VM) CreateFunction(modV irbuilder.Module, name string, paramTypes []irbuilder.Type, retType irbuilder.Type) irbuilder.Function {
	mod := modV.(*module)
	fn := &function{name: name, paramTypes: append([]irbuilder.Type(nil), paramTypes...), retType: retType}
	for _, pt := range paramTypes {
		fn.params = append(fn.params, &instr{op: opParam, typ: pt, args: nil})
	}
	mod.funcs[name] = fn
	mod.funcOrder = append(mod.funcOrder, fn)
	return fn
}

func (vm *VM) CreateGlobal(modV irbuilder.Module, name string, typ irbuilder.Type, constant bool) irbuilder.Global {
	mod := modV.(*module)
	g := &global{name: name, typ: typ, constant: constant}
	mod.globals = append(mod.globals, g)
	mod.globalState[g] = val{typ: typ}
	return g
}

func (vm *VM) SetGlobalInitializer(gV irbuilder.Global, v irbuilder.Value) {
	g := gV.(*global)
	rv := *v.(*val)
	g.init = &rv
}

func (vm *VM) CreateBlock(fnV irbuilder.Function, name string) irbuilder.BasicBlock {
	fn := fnV.(*function)
	b := &block{fn: fn, name: name}
	fn.blocks = append(fn.blocks, b)
	return b
}

func (vm *VM) SetInsertPoint(b irbuilder.BasicBlock) { vm.curBlock = b.(*block) }

func (vm *VM) CurrentFunction() irbuilder.Function { return vm.curBlock.fn }

func (vm *VM) append(op opcode, typ irbuilder.Type, args ...*val) *val {
	in := &instr{op: op, typ: typ, args: args}
	vm.curBlock.instrs = append(vm.curBlock.instrs, in)
	return &val{typ: typ, kind: kInstr, instr: in}
}

func toVal(v irbuilder.Value) *val { return v.(*val) }

func (vm *VM) ConstInt(t irbuilder.Type, v int64) irbuilder.Value {
	return &val{typ: t, kind: kConstInt, iv: v}
}

func (vm *VM) ConstFloat(t irbuilder.Type, v float64) irbuilder.Value {
	return &val{typ: t, kind: kConstFloat, fv: v}
}

func (vm *VM) FuncParam(fnV irbuilder.Function, idx int) irbuilder.Value {
	fn := fnV.(*function)
	p := fn.params[idx]
	return &val{typ: p.typ, kind: kInstr, instr: p}
}

func (vm *VM) FuncAddr(fnV irbuilder.Function) irbuilder.Value {
	return &val{typ: irbuilder.Ptr, kind: kFuncAddr, fn: fnV.(*function)}
}

func (vm *VM) GlobalAddr(gV irbuilder.Global) irbuilder.Value {
	return &val{typ: irbuilder.Ptr, kind: kGlobalAddr, glob: gV.(*global)}
}

func (vm *VM) Add(a, b irbuilder.Value) irbuilder.Value {
	return vm.append(opAdd, toVal(a).typ, toVal(a), toVal(b))
}
func (vm *VM) Sub(a, b irbuilder.Value) irbuilder.Value {
	return vm.append(opSub, toVal(a).typ, toVal(a), toVal(b))
}
func (vm *VM) Mul(a, b irbuilder.Value) irbuilder.Value {
	return vm.append(opMul, toVal(a).typ, toVal(a), toVal(b))
}
func (vm *VM) SDiv(a, b irbuilder.Value) irbuilder.Value {
	return vm.append(opSDiv, toVal(a).typ, toVal(a), toVal(b))
}
func (vm *VM) UDiv(a, b irbuilder.Value) irbuilder.Value {
	return vm.append(opUDiv, toVal(a).typ, toVal(a), toVal(b))
}
func (vm *VM) FAdd(a, b irbuilder.Value) irbuilder.Value {
	return vm.append(opFAdd, toVal(a).typ, toVal(a), toVal(b))
}
func (vm *VM) FSub(a, b irbuilder.Value) irbuilder.Value {
	return vm.append(opFSub, toVal(a).typ, toVal(a), toVal(b))
}
func (vm *VM) FMul(a, b irbuilder.Value) irbuilder.Value {
	return vm.append(opFMul, toVal(a).typ, toVal(a), toVal(b))
}
func (vm *VM) FDiv(a, b irbuilder.Value) irbuilder.Value {
	return vm.append(opFDiv, toVal(a).typ, toVal(a), toVal(b))
}

func (vm *VM) ICmp(pred irbuilder.Predicate, a, b irbuilder.Value) irbuilder.Value {
	in := &instr{op: opICmp, typ: irbuilder.I1, args: []*val{toVal(a), toVal(b)}, pred: pred}
	vm.curBlock.instrs = append(vm.curBlock.instrs, in)
	return &val{typ: irbuilder.I1, kind: kInstr, instr: in}
}

func (vm *VM) FCmp(pred irbuilder.Predicate, a, b irbuilder.Value) irbuilder.Value {
	in := &instr{op: opFCmp, typ: irbuilder.I1, args: []*val{toVal(a), toVal(b)}, pred: pred}
	vm.curBlock.instrs = append(vm.curBlock.instrs, in)
	return &val{typ: irbuilder.I1, kind: kInstr, instr: in}
}

func (vm *VM) Not(a irbuilder.Value) irbuilder.Value {
	return vm.append(opNot, irbuilder.I1, toVal(a))
}

func (vm *VM) Br(target irbuilder.BasicBlock) {
	in := &instr{op: opBr, target: target.(*block)}
	vm.curBlock.instrs = append(vm.curBlock.instrs, in)
}

func (vm *VM) CondBr(cond irbuilder.Value, then, els irbuilder.BasicBlock) {
	in := &instr{op: opCondBr, args: []*val{toVal(cond)}, thenBlock: then.(*block), elseBlock: els.(*block)}
	vm.curBlock.instrs = append(vm.curBlock.instrs, in)
}

func (vm *VM) Ret(v irbuilder.Value) {
	in := &instr{op: opRet, args: []*val{toVal(v)}, typ: toVal(v).typ}
	vm.curBlock.instrs = append(vm.curBlock.instrs, in)
}

func (vm *VM) RetVoid() {
	vm.curBlock.instrs = append(vm.curBlock.instrs, &instr{op: opRetVoid})
}

func (vm *VM) Phi(t irbuilder.Type, incoming []irbuilder.PhiIncoming) irbuilder.Value {
	in := &instr{op: opPhi, typ: t, incoming: incoming}
	vm.curBlock.instrs = append(vm.curBlock.instrs, in)
	return &val{typ: t, kind: kInstr, instr: in}
}

func (vm *VM) Call(fnV irbuilder.Function, args []irbuilder.Value) irbuilder.Value {
	fn := fnV.(*function)
	argVals := make([]*val, len(args))
	for i, a := range args {
		argVals[i] = toVal(a)
	}
	in := &instr{op: opCall, typ: fn.retType, args: argVals, callTarget: fn}
	vm.curBlock.instrs = append(vm.curBlock.instrs, in)
	return &val{typ: fn.retType, kind: kInstr, instr: in}
}

func (vm *VM) Alloca(t irbuilder.Type) irbuilder.Value {
	return vm.append(opAlloca, t)
}

func (vm *VM) Load(t irbuilder.Type, addr irbuilder.Value) irbuilder.Value {
	return vm.append(opLoad, t, toVal(addr))
}

func (vm *VM) Store(v irbuilder.Value, addr irbuilder.Value) {
	in := &instr{op: opStore, args: []*val{toVal(v), toVal(addr)}}
	vm.curBlock.instrs = append(vm.curBlock.instrs, in)
}

func (vm *VM) ZExt(v irbuilder.Value, to irbuilder.Type) irbuilder.Value {
	return vm.append(opZExt, to, toVal(v))
}
func (vm *VM) Trunc(v irbuilder.Value, to irbuilder.Type) irbuilder.Value {
	return vm.append(opTrunc, to, toVal(v))
}
func (vm *VM) SIToFP(v irbuilder.Value, to irbuilder.Type) irbuilder.Value {
	return vm.append(opSIToFP, to, toVal(v))
}
func (vm *VM) UIToFP(v irbuilder.Value, to irbuilder.Type) irbuilder.Value {
	return vm.append(opUIToFP, to, toVal(v))
}
func (vm *VM) FPToSI(v irbuilder.Value, to irbuilder.Type) irbuilder.Value {
	return vm.append(opFPToSI, to, toVal(v))
}
func (vm *VM) FPToUI(v irbuilder.Value, to irbuilder.Type) irbuilder.Value {
	return vm.append(opFPToUI, to, toVal(v))
}

// Verify checks that every block ends in exactly one terminator and that
// every function has at least one block.
func (vm *VM) Verify(modV irbuilder.Module) error {
	mod := modV.(*module)
	for _, fn := range mod.funcOrder {
		if len(fn.blocks) == 0 {
			return fmt.Errorf("function %q has no basic blocks", fn.name)
		}
		for _, b := range fn.blocks {
			if len(b.instrs) == 0 {
				return fmt.Errorf("function %q block %q is empty", fn.name, b.name)
			}
			last := b.instrs[len(b.instrs)-1]
			if !isTerminator(last.op) {
				return fmt.Errorf("function %q block %q does not end in a terminator", fn.name, b.name)
			}
			for _, mid := range b.instrs[:len(b.instrs)-1] {
				if isTerminator(mid.op) {
					return fmt.Errorf("function %q block %q has a terminator before its last instruction", fn.name, b.name)
				}
			}
		}
	}
	return nil
}

func isTerminator(op opcode) bool {
	switch op {
	case opBr, opCondBr, opRet, opRetVoid:
		return true
	default:
		return false
	}
}

// AsInt extracts the integer payload of a Value this VM produced (an I1,
// I8, or I32 result, or a Ptr encoded as its raw address word). Callers
// outside this package never see the unexported val type, so JIT results
// must be unwrapped through this accessor (or AsFloat/AsBool) to be used
// as plain Go values.
func (vm *VM) AsInt(v irbuilder.Value) (int64, error) {
	if v == nil {
		return 0, fmt.Errorf("value is void")
	}
	rv, ok := v.(*val)
	if !ok {
		return 0, fmt.Errorf("not a refvm value")
	}
	return rv.iv, nil
}

// AsFloat extracts the floating-point payload of an F64 Value.
func (vm *VM) AsFloat(v irbuilder.Value) (float64, error) {
	if v == nil {
		return 0, fmt.Errorf("value is void")
	}
	rv, ok := v.(*val)
	if !ok {
		return 0, fmt.Errorf("not a refvm value")
	}
	return rv.fv, nil
}

// AsBool extracts an I1 Value as a bool.
func (vm *VM) AsBool(v irbuilder.Value) (bool, error) {
	n, err := vm.AsInt(v)
	if err != nil {
		return false, err
	}
	return n != 0, nil
}

// JIT interprets fn's instruction graph directly; there is no separate
// codegen step, so "JIT" here means "execute now".
func (vm *VM) JIT(modV irbuilder.Module, fnName string, args []irbuilder.Value) (irbuilder.Value, error) {
	mod := modV.(*module)
	fn, ok := mod.funcs[fnName]
	if !ok {
		return nil, fmt.Errorf("no such function %q", fnName)
	}
	return callFunction(mod, fn, args)
}

type frame struct {
	regs       map[*instr]val
	localMem   []val
	allocaSlot map[*instr]int
}

func callFunction(mod *module, fn *function, args []irbuilder.Value) (irbuilder.Value, error) {
	fr := &frame{regs: map[*instr]val{}, allocaSlot: map[*instr]int{}}
	for i, p := range fn.params {
		fr.regs[p] = *toVal(args[i])
	}

	var prev *block
	cur := fn.blocks[0]

outer:
	for {
		for _, in := range cur.instrs {
			switch in.op {
			case opBr:
				prev, cur = cur, in.target
				continue outer
			case opCondBr:
				c, err := resolve(in.args[0], mod, fr)
				if err != nil {
					return nil, err
				}
				prev = cur
				if c.iv != 0 {
					cur = in.thenBlock
				} else {
					cur = in.elseBlock
				}
				continue outer
			case opRet:
				v, err := resolve(in.args[0], mod, fr)
				if err != nil {
					return nil, err
				}
				v.typ = in.typ
				return &v, nil
			case opRetVoid:
				return nil, nil
			default:
				v, err := eval(in, mod, fr, prev)
				if err != nil {
					return nil, err
				}
				fr.regs[in] = v
			}
		}
		return nil, fmt.Errorf("block %q fell through without a terminator", cur.name)
	}
}

func resolve(v *val, mod *module, fr *frame) (val, error) {
	switch v.kind {
	case kConstInt, kConstFloat, kGlobalAddr, kFuncAddr:
		return *v, nil
	case kInstr:
		r, ok := fr.regs[v.instr]
		if !ok {
			return val{}, fmt.Errorf("value used before it was computed")
		}
		return r, nil
	case kLocalAddr:
		return *v, nil
	default:
		return val{}, fmt.Errorf("unresolvable value kind %d", v.kind)
	}
}

func eval(in *instr, mod *module, fr *frame, prev *block) (val, error) {
	switch in.op {
	case opAdd, opSub, opMul, opSDiv, opUDiv:
		a, err := resolve(in.args[0], mod, fr)
		if err != nil {
			return val{}, err
		}
		b, err := resolve(in.args[1], mod, fr)
		if err != nil {
			return val{}, err
		}
		return evalIntArith(in.op, in.typ, a, b)
	case opFAdd, opFSub, opFMul, opFDiv:
		a, err := resolve(in.args[0], mod, fr)
		if err != nil {
			return val{}, err
		}
		b, err := resolve(in.args[1], mod, fr)
		if err != nil {
			return val{}, err
		}
		return evalFloatArith(in.op, in.typ, a, b)
	case opICmp:
		a, err := resolve(in.args[0], mod, fr)
		if err != nil {
			return val{}, err
		}
		b, err := resolve(in.args[1], mod, fr)
		if err != nil {
			return val{}, err
		}
		return val{typ: irbuilder.I1, iv: boolToInt(evalICmp(in.pred, a.iv, b.iv))}, nil
	case opFCmp:
		a, err := resolve(in.args[0], mod, fr)
		if err != nil {
			return val{}, err
		}
		b, err := resolve(in.args[1], mod, fr)
		if err != nil {
			return val{}, err
		}
		return val{typ: irbuilder.I1, iv: boolToInt(evalFCmp(in.pred, a.fv, b.fv))}, nil
	case opNot:
		a, err := resolve(in.args[0], mod, fr)
		if err != nil {
			return val{}, err
		}
		if a.iv == 0 {
			return val{typ: irbuilder.I1, iv: 1}, nil
		}
		return val{typ: irbuilder.I1, iv: 0}, nil
	case opAlloca:
		slot, ok := fr.allocaSlot[in]
		if !ok {
			slot = len(fr.localMem)
			fr.localMem = append(fr.localMem, val{typ: in.typ})
			fr.allocaSlot[in] = slot
		}
		return val{typ: irbuilder.Ptr, kind: kLocalAddr, instr: in}, nil
	case opLoad:
		addr, err := resolve(in.args[0], mod, fr)
		if err != nil {
			return val{}, err
		}
		return loadFrom(addr, mod, fr, in.typ)
	case opStore:
		v, err := resolve(in.args[0], mod, fr)
		if err != nil {
			return val{}, err
		}
		addr, err := resolve(in.args[1], mod, fr)
		if err != nil {
			return val{}, err
		}
		storeTo(addr, v, mod, fr)
		return val{}, nil
	case opZExt, opTrunc:
		a, err := resolve(in.args[0], mod, fr)
		if err != nil {
			return val{}, err
		}
		return val{typ: in.typ, iv: maskInt(a.iv, in.typ)}, nil
	case opSIToFP:
		a, err := resolve(in.args[0], mod, fr)
		if err != nil {
			return val{}, err
		}
		return val{typ: in.typ, fv: float64(a.iv)}, nil
	case opUIToFP:
		a, err := resolve(in.args[0], mod, fr)
		if err != nil {
			return val{}, err
		}
		return val{typ: in.typ, fv: float64(uint64(a.iv))}, nil
	case opFPToSI:
		a, err := resolve(in.args[0], mod, fr)
		if err != nil {
			return val{}, err
		}
		return val{typ: in.typ, iv: int64(a.fv)}, nil
	case opFPToUI:
		a, err := resolve(in.args[0], mod, fr)
		if err != nil {
			return val{}, err
		}
		return val{typ: in.typ, iv: int64(uint64(a.fv))}, nil
	case opPhi:
		for _, inc := range in.incoming {
			if inc.Block.(*block) == prev {
				return resolve(toVal(inc.Value), mod, fr)
			}
		}
		return val{}, fmt.Errorf("phi has no incoming value for predecessor %q", prev.name)
	case opCall:
		argVals := make([]irbuilder.Value, len(in.args))
		for i, a := range in.args {
			rv, err := resolve(a, mod, fr)
			if err != nil {
				return val{}, err
			}
			argVals[i] = &rv
		}
		res, err := callFunction(mod, in.callTarget, argVals)
		if err != nil {
			return val{}, err
		}
		if res == nil {
			return val{typ: irbuilder.Void}, nil
		}
		return *toVal(res), nil
	default:
		return val{}, fmt.Errorf("unexpected opcode %d outside terminator dispatch", in.op)
	}
}

func loadFrom(addr val, mod *module, fr *frame, typ irbuilder.Type) (val, error) {
	switch addr.kind {
	case kLocalAddr:
		slot, ok := fr.allocaSlot[addr.instr]
		if !ok {
			return val{}, fmt.Errorf("load from address never allocated")
		}
		v := fr.localMem[slot]
		v.typ = typ
		return v, nil
	case kGlobalAddr:
		v := mod.globalState[addr.glob]
		v.typ = typ
		return v, nil
	default:
		return val{}, fmt.Errorf("load from non-address value")
	}
}

func storeTo(addr val, v val, mod *module, fr *frame) {
	switch addr.kind {
	case kLocalAddr:
		slot, ok := fr.allocaSlot[addr.instr]
		if !ok {
			slot = len(fr.localMem)
			fr.localMem = append(fr.localMem, val{})
			fr.allocaSlot[addr.instr] = slot
		}
		fr.localMem[slot] = v
	case kGlobalAddr:
		mod.globalState[addr.glob] = v
	}
}

func evalIntArith(op opcode, typ irbuilder.Type, a, b val) (val, error) {
	switch op {
	case opAdd:
		return val{typ: typ, iv: maskInt(a.iv+b.iv, typ)}, nil
	case opSub:
		return val{typ: typ, iv: maskInt(a.iv-b.iv, typ)}, nil
	case opMul:
		return val{typ: typ, iv: maskInt(a.iv*b.iv, typ)}, nil
	case opSDiv:
		if b.iv == 0 {
			return val{}, fmt.Errorf("integer division by zero")
		}
		return val{typ: typ, iv: maskInt(a.iv/b.iv, typ)}, nil
	case opUDiv:
		if b.iv == 0 {
			return val{}, fmt.Errorf("integer division by zero")
		}
		return val{typ: typ, iv: maskInt(int64(uint64(a.iv)/uint64(b.iv)), typ)}, nil
	default:
		return val{}, fmt.Errorf("not an integer arithmetic opcode")
	}
}

func evalFloatArith(op opcode, typ irbuilder.Type, a, b val) (val, error) {
	switch op {
	case opFAdd:
		return val{typ: typ, fv: a.fv + b.fv}, nil
	case opFSub:
		return val{typ: typ, fv: a.fv - b.fv}, nil
	case opFMul:
		return val{typ: typ, fv: a.fv * b.fv}, nil
	case opFDiv:
		return val{typ: typ, fv: a.fv / b.fv}, nil
	default:
		return val{}, fmt.Errorf("not a floating arithmetic opcode")
	}
}

func evalICmp(pred irbuilder.Predicate, a, b int64) bool {
	switch pred {
	case irbuilder.Eq:
		return a == b
	case irbuilder.Ne:
		return a != b
	case irbuilder.LtS:
		return a < b
	case irbuilder.LeS:
		return a <= b
	case irbuilder.GtS:
		return a > b
	case irbuilder.GeS:
		return a >= b
	case irbuilder.LtU:
		return uint64(a) < uint64(b)
	case irbuilder.LeU:
		return uint64(a) <= uint64(b)
	case irbuilder.GtU:
		return uint64(a) > uint64(b)
	case irbuilder.GeU:
		return uint64(a) >= uint64(b)
	default:
		return false
	}
}

func evalFCmp(pred irbuilder.Predicate, a, b float64) bool {
	switch pred {
	case irbuilder.Eq:
		return a == b
	case irbuilder.Ne:
		return a != b
	case irbuilder.LtS, irbuilder.LtU:
		return a < b
	case irbuilder.LeS, irbuilder.LeU:
		return a <= b
	case irbuilder.GtS, irbuilder.GtU:
		return a > b
	case irbuilder.GeS, irbuilder.GeU:
		return a >= b
	default:
		return false
	}
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func maskInt(v int64, typ irbuilder.Type) int64 {
	switch typ {
	case irbuilder.I1:
		return v & 1
	case irbuilder.I8:
		return v & 0xFF
	default:
		return v
	}
}
