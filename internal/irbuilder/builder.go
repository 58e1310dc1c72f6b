// Package irbuilder defines the abstract backend boundary the IR
// generator (internal/irgen) targets: typed SSA construction, structural
// verification, and JIT execution, transcribed directly from spec.md
// §6's "Backend interface" bullet list. Concrete backends (this package
// ships refvm, an in-memory reference interpreter) implement Builder;
// internal/irgen is written against the interface only.
package irbuilder

import "fmt"

// Type is the typed-SSA value kind every Value, parameter, global, and
// instruction result carries. It mirrors spec.md §3's fundamentals (Bool
// -> I1, Char -> I8, Int -> I32, Double -> F64) plus an opaque pointer
// kind used for every ptr(T) and for function addresses.
type Type int

const (
	Void Type = iota
	I1        // bool
	I8        // char (unsigned)
	I32       // int (signed)
	F64       // double
	Ptr       // any pointer-width address
)

func (t Type) String() string {
	switch t {
	case Void:
		return "void"
	case I1:
		return "i1"
	case I8:
		return "i8"
	case I32:
		return "i32"
	case F64:
		return "f64"
	case Ptr:
		return "ptr"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// Predicate enumerates the compare operators a backend's ICmp/FCmp
// instructions support, signed and unsigned integer variants kept
// distinct per spec.md §4.7's cast-selection rule ("char unsigned, int
// signed").
type Predicate int

const (
	Eq Predicate = iota
	Ne
	LtS
	LeS
	GtS
	GeS
	LtU
	LeU
	GtU
	GeU
)

func (p Predicate) String() string {
	switch p {
	case Eq:
		return "eq"
	case Ne:
		return "ne"
	case LtS:
		return "slt"
	case LeS:
		return "sle"
	case GtS:
		return "sgt"
	case GeS:
		return "sge"
	case LtU:
		return "ult"
	case LeU:
		return "ule"
	case GtU:
		return "ugt"
	case GeU:
		return "uge"
	default:
		return fmt.Sprintf("Predicate(%d)", int(p))
	}
}

// Value is an opaque handle to a typed SSA value or address, produced by
// a Builder method and consumed by later ones. Backends decide their own
// concrete representation; irgen never inspects a Value beyond passing it
// back to the Builder that produced it.
type Value any

// BasicBlock, Function, Global, and Module are likewise opaque handles
// into backend-owned state.
type BasicBlock any
type Function any
type Global any
type Module any

// PhiIncoming pairs a predecessor block with the value to select when
// control arrives from it.
type PhiIncoming struct {
	Block BasicBlock
	Value Value
}

// Builder is the abstract typed-SSA construction and execution surface
// spec.md §6 requires: module/function/global creation, basic-block
// management, the fixed instruction set, structural verification, and
// JIT execution. irgen's forward-declaration and main lowering passes
// are written purely in terms of this interface.
type Builder interface {
	// Module, function, and global creation.
	CreateModule(name string) Module
	CreateFunction(mod Module, name string, paramTypes []Type, retType Type) Function
	CreateGlobal(mod Module, name string, typ Type, constant bool) Global
	SetGlobalInitializer(g Global, v Value)

	// Basic-block management.
	CreateBlock(fn Function, name string) BasicBlock
	SetInsertPoint(b BasicBlock)
	CurrentFunction() Function

	// Value sources.
	ConstInt(t Type, v int64) Value
	ConstFloat(t Type, v float64) Value
	FuncParam(fn Function, idx int) Value
	FuncAddr(fn Function) Value
	GlobalAddr(g Global) Value

	// Typed arithmetic. Add/Sub/Mul are signedness-agnostic (two's
	// complement); Div and Cmp need the signed/unsigned distinction a
	// fundamental's signedness determines (int signed, char/bool
	// unsigned).
	Add(a, b Value) Value
	Sub(a, b Value) Value
	Mul(a, b Value) Value
	SDiv(a, b Value) Value
	UDiv(a, b Value) Value
	FAdd(a, b Value) Value
	FSub(a, b Value) Value
	FMul(a, b Value) Value
	FDiv(a, b Value) Value
	ICmp(pred Predicate, a, b Value) Value
	FCmp(pred Predicate, a, b Value) Value
	Not(a Value) Value // bitwise-not on i1, per spec.md's `!` rule

	// Control flow.
	Br(target BasicBlock)
	CondBr(cond Value, then, els BasicBlock)
	Ret(v Value)
	RetVoid()
	Phi(t Type, incoming []PhiIncoming) Value

	// Calls, memory, and conversions.
	Call(fn Function, args []Value) Value
	Alloca(t Type) Value
	Load(t Type, addr Value) Value
	Store(v Value, addr Value)
	ZExt(v Value, to Type) Value
	Trunc(v Value, to Type) Value
	SIToFP(v Value, to Type) Value
	UIToFP(v Value, to Type) Value
	FPToSI(v Value, to Type) Value
	FPToUI(v Value, to Type) Value

	// Verify checks the module's structural invariants (every block
	// terminated, every referenced value dominates its use, etc);
	// failure is an unrecoverable internal error per spec.md §4.7.
	Verify(mod Module) error

	// JIT executes fn by name with typed argument forwarding, returning
	// its result (zero Value if it returns void).
	JIT(mod Module, fn string, args []Value) (Value, error)
}
