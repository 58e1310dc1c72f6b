package objtype

// Interner deduplicates ObjTypes by their canonical string spelling, so
// structurally identical types share one *ObjType and can be compared by
// pointer. This replaces the source implementation's shared/cyclic
// ownership of type nodes (see the Design Notes on a deduplicating
// interner of integer-handled canonical types): here the "handle" is
// simply the unique *ObjType pointer held in the map.
type Interner struct {
	pool map[string]*ObjType
}

// NewInterner creates an Interner pre-seeded with the fundamental types,
// so callers can fetch them without re-interning on every lookup.
func NewInterner() *Interner {
	in := &Interner{pool: make(map[string]*ObjType)}
	for f := Void; f <= Nullptr; f++ {
		in.intern(&ObjType{kind: kindFundamental, fundamental: f})
	}
	return in
}

func (in *Interner) intern(t *ObjType) *ObjType {
	key := t.String()
	if existing, ok := in.pool[key]; ok {
		return existing
	}
	in.pool[key] = t
	return t
}

// Fundamental returns the interned ObjType for a fundamental kind.
func (in *Interner) Fundamental(f Fundamental) *ObjType {
	return in.intern(&ObjType{kind: kindFundamental, fundamental: f})
}

// Pointer returns the interned ObjType for a pointer to pointee.
func (in *Interner) Pointer(pointee *ObjType) *ObjType {
	return in.intern(&ObjType{kind: kindPointer, elem: pointee})
}

// Qualified returns the interned ObjType wrapping target with the given
// qualifier bitset. Per the collapsing rule in spec.md §3: constructing a
// qualified wrapping an already-qualified target yields a single wrapper
// with the union of qualifiers, and the inner type is never itself
// qualified. Wrapping with an empty qualifier set is a no-op that
// returns target unqualified.
func (in *Interner) Qualified(target *ObjType, quals Qualifier) *ObjType {
	inner := target
	union := quals
	if target.kind == kindQualified {
		inner = target.elem
		union |= target.quals
	}
	if union == 0 {
		return inner
	}
	return in.intern(&ObjType{kind: kindQualified, elem: inner, quals: union})
}

// Function returns the interned ObjType for a function with the given
// parameter types (in order) and return type.
func (in *Interner) Function(params []*ObjType, ret *ObjType) *ObjType {
	cp := append([]*ObjType(nil), params...)
	return in.intern(&ObjType{kind: kindFunction, params: cp, ret: ret})
}

// Class returns the interned ObjType for a named aggregate with the
// given member types in declaration order.
func (in *Interner) Class(name string, members []*ObjType) *ObjType {
	cp := append([]*ObjType(nil), members...)
	return in.intern(&ObjType{kind: kindClass, className: name, members: cp})
}
