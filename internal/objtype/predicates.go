package objtype

// Size returns t's size in bits, per spec.md §3: void/noreturn/infer/
// function have no size (reported as 0, callers that care use HasSize to
// distinguish "no size" from a genuine zero-bit type, of which there are
// none); bool is 1, char is 8, int is 32, double is 64; pointer is a
// platform word (64, this compiler targets 64-bit hosts only); class is
// the sum of its members' sizes.
func (t *ObjType) Size() int {
	switch t.kind {
	case kindFundamental:
		switch t.fundamental {
		case Bool:
			return 1
		case Char:
			return 8
		case Int:
			return 32
		case Double:
			return 64
		default:
			return 0
		}
	case kindPointer:
		return 64
	case kindQualified:
		return t.elem.Size()
	case kindFunction:
		return 0
	case kindClass:
		total := 0
		for _, m := range t.members {
			total += m.Size()
		}
		return total
	default:
		return 0
	}
}

// HasSize reports whether Size() is meaningful for t (false for void,
// noreturn, infer, and function types).
func (t *ObjType) HasSize() bool {
	u := t.Unqualified()
	if u.kind == kindFunction {
		return false
	}
	if u.kind == kindFundamental {
		switch u.fundamental {
		case Void, Noreturn, Infer:
			return false
		}
	}
	return true
}

// Abstract reports whether t is one of the two abstract fundamentals
// that admit no runtime instances: void or noreturn.
func (t *ObjType) Abstract() bool {
	u := t.Unqualified()
	return u.kind == kindFundamental && (u.fundamental == Void || u.fundamental == Noreturn)
}

// Scalar reports whether t is a single-value type with no internal
// structure: any fundamental except void/noreturn/infer, plus pointers.
func (t *ObjType) Scalar() bool {
	u := t.Unqualified()
	switch u.kind {
	case kindPointer:
		return true
	case kindFundamental:
		switch u.fundamental {
		case Void, Noreturn, Infer:
			return false
		default:
			return true
		}
	default:
		return false
	}
}

// Arithmetic reports whether t supports the arithmetic/relational
// operators: integral or floating-point.
func (t *ObjType) Arithmetic() bool {
	return t.Integral() || t.FloatingPoint()
}

// Integral reports whether t is one of the integral fundamentals: bool,
// char, or int. (bool is integral for arithmetic-classification purposes
// even though it is also separately queried via HasMember for logical
// operators.)
func (t *ObjType) Integral() bool {
	u := t.Unqualified()
	if u.kind != kindFundamental {
		return false
	}
	switch u.fundamental {
	case Bool, Char, Int:
		return true
	default:
		return false
	}
}

// FloatingPoint reports whether t is the double fundamental.
func (t *ObjType) FloatingPoint() bool {
	u := t.Unqualified()
	return u.kind == kindFundamental && u.fundamental == Double
}

// StoredAsIntegral reports whether t is emitted via the backend's integer
// path: the union of the integrals plus pointer (bool and char are
// already integral).
func (t *ObjType) StoredAsIntegral() bool {
	u := t.Unqualified()
	if u.Integral() {
		return true
	}
	return u.kind == kindPointer
}

// IsFunctionType is an alias for IsFunction kept for readability at call
// sites that read as "is t a function type" rather than "is t of the
// function variant".
func (t *ObjType) IsFunctionType() bool { return t.IsFunction() }

// HasConstructor implements spec.md §4.1's hasConstructor rules: can an
// instance of t be constructed from a single value of type from.
//
//   - Abstract types (void, noreturn) admit only construction from the
//     same type.
//   - Concrete scalar types (bool, char, int, double, pointer) mutually
//     admit construction among themselves; abstract -> scalar is
//     forbidden.
//   - Pointer <-> pointer admits only when pointees match fully.
//   - Function types never admit construction from anything but
//     themselves.
func (t *ObjType) HasConstructor(from *ObjType) bool {
	dst, src := t.Unqualified(), from.Unqualified()

	if dst.kind == kindFunction || src.kind == kindFunction {
		return dst.kind == kindFunction && src.kind == kindFunction && Match(src, dst) == FullMatch
	}
	if dst.kind == kindClass || src.kind == kindClass {
		return dst.kind == kindClass && src.kind == kindClass && dst.className == src.className
	}
	if dst.Abstract() || src.Abstract() {
		return dst.Abstract() && src.Abstract() && dst.fundamental == src.fundamental
	}
	if dst.kind == kindPointer && src.kind == kindPointer {
		return Match(src.elem, dst.elem) == FullMatch
	}
	if dst.kind == kindPointer && src.kind == kindFundamental && src.fundamental == Nullptr {
		// The null pointer constant constructs any pointer type.
		return true
	}
	if dst.kind == kindPointer || src.kind == kindPointer {
		// Any other pointer/non-pointer mix never constructs.
		return false
	}
	// Both concrete scalars (bool/char/int/double/nullptr): mutually
	// constructible.
	return dst.Scalar() && src.Scalar()
}
