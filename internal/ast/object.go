package ast

import "github.com/oxhq/vellum/internal/objtype"

// StorageDuration classifies an Object's lifetime, per spec.md §3's
// glossary: local (stack/SSA), static (whole-program), or member (inside
// an aggregate). Unknown is the zero value used only transiently before
// a definition's storage duration has been resolved.
type StorageDuration int

const (
	Unknown StorageDuration = iota
	Local
	Static
	Member
)

func (s StorageDuration) String() string {
	switch s {
	case Local:
		return "local"
	case Static:
		return "static"
	case Member:
		return "member"
	default:
		return "unknown"
	}
}

// IRPhase is the tri-state lifecycle of an Object's backend decoration,
// per spec.md §3: a value starts with no IR representation at all, is
// allocated (an in-memory object has had its alloca/global emitted but
// not yet stored to), and finally initialized (a value now exists at
// that address, or an SSA value has been bound).
type IRPhase int

const (
	PhaseStart IRPhase = iota
	PhaseAllocated
	PhaseInitialized
)

// ScopeRef identifies where in the environment's scope stack an Object
// was inserted, replacing a raw back-reference pointer per the Design
// Notes: an Object records where it lives rather than pointing into
// environment state that may outlive or be discarded independently of
// it.
type ScopeRef struct {
	Depth int // scope stack depth at insertion time, 0 = outermost
	Slot  int // insertion order within that scope's table
}

// Object is the runtime-level entity bound to a symbol or denoted by an
// expression (spec.md §3's "Object"). Its ObjType is immutable once the
// signature augmentor has set it; its boolean flags are monotonic --
// they only ever flip from false to true.
type Object struct {
	Name            string
	ObjType         *objtype.ObjType
	StorageDuration StorageDuration
	Scope           ScopeRef

	isModifiedOrRevealsAddr bool
	isInitialized           bool

	Phase IRPhase
	// Addr holds the backend's address handle for an in-memory object;
	// Value holds the backend's SSA value handle for an object that was
	// optimized to live as SSA. Exactly one is meaningful once Phase is
	// past PhaseStart, decided by MustLiveInMemory(). Typed as `any` so this
	// package has no dependency on the backend's concrete value types.
	Addr  any
	Value any
}

// NewObject creates a fresh Object for name, with its type left nil until
// the signature augmentor resolves it.
func NewObject(name string) *Object {
	return &Object{Name: name}
}

// IsModifiedOrRevealsAddr reports whether any AccessFromParent of Write
// or TakeAddress has ever been propagated to this object.
func (o *Object) IsModifiedOrRevealsAddr() bool { return o.isModifiedOrRevealsAddr }

// IsInitialized reports whether this object has passed its definition's
// AST position during analysis (for local objects) or whether its
// initializer has otherwise been accounted for.
func (o *Object) IsInitialized() bool { return o.isInitialized }

// MarkInitialized flips IsInitialized to true. It is idempotent.
func (o *Object) MarkInitialized() { o.isInitialized = true }

// AddAccess updates the monotonic isModifiedOrRevealsAddr flag for the
// given access kind, per spec.md §4.6: "After assignment, the analyzer
// calls addAccess(node.access) on the object; this updates
// isModifiedOrRevealsAddr monotonically."
func (o *Object) AddAccess(access AccessKind) {
	if access == Write || access == TakeAddress {
		o.isModifiedOrRevealsAddr = true
	}
}

// MustLiveInMemory reports spec.md §3's in-memory-vs-SSA residency rule:
// an Object must live in memory if its storage duration is not Local, or
// if it is ever written to or has its address taken. Otherwise it may be
// emitted as a plain SSA value.
func (o *Object) MustLiveInMemory() bool {
	return o.StorageDuration != Local || o.isModifiedOrRevealsAddr
}
