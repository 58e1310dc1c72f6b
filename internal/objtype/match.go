package objtype

// MatchResult is the four-valued relation spec.md §3 defines between a
// source and a destination type.
type MatchResult int

const (
	// FullMatch means the two types are identical, including qualifiers.
	FullMatch MatchResult = iota
	// MatchButAllQualifiersAreWeaker means the two types are structurally
	// equal and the destination has strictly weaker qualifiers than the
	// source (the destination drops bits the source had).
	MatchButAllQualifiersAreWeaker
	// MatchButAnyQualifierIsStronger means the two types are structurally
	// equal and the destination has at least one strictly stronger
	// qualifier (the destination adds bits the source lacked).
	MatchButAnyQualifierIsStronger
	// NoMatch means the two types are not structurally compatible at
	// all.
	NoMatch
)

func (m MatchResult) String() string {
	switch m {
	case FullMatch:
		return "FullMatch"
	case MatchButAllQualifiersAreWeaker:
		return "MatchButAllQualifiersAreWeaker"
	case MatchButAnyQualifierIsStronger:
		return "MatchButAnyQualifierIsStronger"
	default:
		return "NoMatch"
	}
}

// MatchesSauf reports whether match(src, dst) is anything but NoMatch:
// the "sauf qualifiers" comparison spec.md uses pervasively for operand
// and initializer compatibility checks (structural equality regardless of
// which side is more or less qualified).
func MatchesSauf(src, dst *ObjType) bool {
	return Match(src, dst) != NoMatch
}

// Match implements spec.md §4.1's matching algorithm: a recursive
// structural comparison between src and dst that is qualifier-aware only
// at the top (pointer) level — at pointer level-1 and deeper, qualifiers
// must be exactly equal for any match at all, since pointer equivalence
// is not covariant in qualifiers below the surface.
func Match(src, dst *ObjType) MatchResult {
	return matchAt(src, dst, true)
}

// matchAt recurses with topLevel tracking whether qualifiers at this
// depth may differ (only true at depth 0 and, per spec.md §4.1, at the
// pointer's own surface -- i.e. comparing `ptr(mut int)` against
// `ptr(int)` requires the pointee qualifiers to match exactly, because
// that comparison is already one level deep).
func matchAt(src, dst *ObjType, topLevel bool) MatchResult {
	srcQ, srcInner := splitQual(src)
	dstQ, dstInner := splitQual(dst)

	if !topLevel && srcQ != dstQ {
		return NoMatch
	}

	structural := matchStructural(srcInner, dstInner)
	if structural == NoMatch {
		return NoMatch
	}

	if !topLevel {
		// Deeper levels already required exact qualifier equality above,
		// so whatever structural match we found stands as FullMatch.
		if structural == FullMatch {
			return FullMatch
		}
		return structural
	}

	switch {
	case srcQ == dstQ:
		return structural
	case dstQ&^srcQ != 0 && srcQ&^dstQ == 0:
		// dst adds bits src did not have (and removes none): stronger.
		if structural != FullMatch {
			return NoMatch
		}
		return MatchButAnyQualifierIsStronger
	case srcQ&^dstQ != 0 && dstQ&^srcQ == 0:
		// dst drops bits src had (and adds none): weaker.
		if structural != FullMatch {
			return NoMatch
		}
		return MatchButAllQualifiersAreWeaker
	default:
		// Both added and removed bits relative to each other: treat as
		// weaker-wins-over-stronger is undefined by spec, so no match.
		return NoMatch
	}
}

func splitQual(t *ObjType) (Qualifier, *ObjType) {
	if t.kind == kindQualified {
		return t.quals, t.elem
	}
	return 0, t
}

func matchStructural(src, dst *ObjType) MatchResult {
	if src.kind != dst.kind {
		return NoMatch
	}
	switch src.kind {
	case kindFundamental:
		if src.fundamental == dst.fundamental {
			return FullMatch
		}
		return NoMatch
	case kindPointer:
		return matchAt(src.elem, dst.elem, false)
	case kindFunction:
		if len(src.params) != len(dst.params) {
			return NoMatch
		}
		if matchAt(src.ret, dst.ret, false) != FullMatch {
			return NoMatch
		}
		for i := range src.params {
			if matchAt(src.params[i], dst.params[i], false) != FullMatch {
				return NoMatch
			}
		}
		return FullMatch
	case kindClass:
		if src.className != dst.className {
			return NoMatch
		}
		return FullMatch
	default:
		return NoMatch
	}
}
