package objtype_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/vellum/internal/objtype"
)

func TestQualifiedCollapsing(t *testing.T) {
	in := objtype.NewInterner()
	intT := in.Fundamental(objtype.Int)

	mutInt := in.Qualified(intT, objtype.Mutable)
	require.True(t, mutInt.IsQualified())
	assert.Equal(t, objtype.Mutable, mutInt.Qualifiers())
	assert.False(t, mutInt.Target().IsQualified())

	// Wrapping an already-qualified type collapses to a single wrapper
	// carrying the union of qualifiers, never a qualified-of-qualified.
	doubleWrapped := in.Qualified(mutInt, objtype.Mutable)
	assert.Same(t, mutInt, doubleWrapped)

	// Wrapping with no bits set is a no-op returning the unqualified type.
	plain := in.Qualified(intT, 0)
	assert.Same(t, intT, plain)
}

func TestInternerDeduplicates(t *testing.T) {
	in := objtype.NewInterner()
	a := in.Pointer(in.Fundamental(objtype.Int))
	b := in.Pointer(in.Fundamental(objtype.Int))
	assert.Same(t, a, b)

	c := in.Class("Point", []*objtype.ObjType{in.Fundamental(objtype.Int), in.Fundamental(objtype.Int)})
	d := in.Class("Point", []*objtype.ObjType{in.Fundamental(objtype.Int), in.Fundamental(objtype.Int)})
	assert.Same(t, c, d)
}

func TestSize(t *testing.T) {
	in := objtype.NewInterner()
	tests := []struct {
		name string
		t    *objtype.ObjType
		size int
	}{
		{"bool", in.Fundamental(objtype.Bool), 1},
		{"char", in.Fundamental(objtype.Char), 8},
		{"int", in.Fundamental(objtype.Int), 32},
		{"double", in.Fundamental(objtype.Double), 64},
		{"pointer", in.Pointer(in.Fundamental(objtype.Int)), 64},
		{"empty class", in.Class("Empty", nil), 0},
		{"class", in.Class("Pair", []*objtype.ObjType{in.Fundamental(objtype.Int), in.Fundamental(objtype.Char)}), 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.size, tt.t.Size())
		})
	}
	assert.False(t, in.Fundamental(objtype.Void).HasSize())
	assert.False(t, in.Fundamental(objtype.Noreturn).HasSize())
	assert.False(t, in.Fundamental(objtype.Infer).HasSize())
}

func TestEmptyClassHasNoMembers(t *testing.T) {
	in := objtype.NewInterner()
	empty := in.Class("Empty", nil)
	assert.Equal(t, 0, empty.Size())
	assert.Empty(t, empty.Members())
}

func TestPredicateClasses(t *testing.T) {
	in := objtype.NewInterner()
	assert.True(t, in.Fundamental(objtype.Int).Integral())
	assert.True(t, in.Fundamental(objtype.Int).Arithmetic())
	assert.False(t, in.Fundamental(objtype.Double).Integral())
	assert.True(t, in.Fundamental(objtype.Double).FloatingPoint())
	assert.True(t, in.Fundamental(objtype.Bool).StoredAsIntegral())
	assert.True(t, in.Fundamental(objtype.Char).StoredAsIntegral())
	assert.True(t, in.Pointer(in.Fundamental(objtype.Int)).StoredAsIntegral())
	assert.False(t, in.Fundamental(objtype.Double).StoredAsIntegral())
	assert.True(t, in.Fundamental(objtype.Void).Abstract())
	assert.True(t, in.Fundamental(objtype.Noreturn).Abstract())
	assert.False(t, in.Fundamental(objtype.Int).Abstract())
}

func TestHasConstructor(t *testing.T) {
	in := objtype.NewInterner()
	voidT, noreturnT := in.Fundamental(objtype.Void), in.Fundamental(objtype.Noreturn)
	intT, boolT, dblT := in.Fundamental(objtype.Int), in.Fundamental(objtype.Bool), in.Fundamental(objtype.Double)
	ptrInt := in.Pointer(intT)
	ptrChar := in.Pointer(in.Fundamental(objtype.Char))

	assert.True(t, voidT.HasConstructor(voidT))
	assert.False(t, voidT.HasConstructor(intT))
	assert.False(t, intT.HasConstructor(voidT))
	assert.False(t, voidT.HasConstructor(noreturnT))

	assert.True(t, intT.HasConstructor(boolT))
	assert.True(t, dblT.HasConstructor(intT))
	assert.True(t, boolT.HasConstructor(dblT))

	assert.True(t, ptrInt.HasConstructor(ptrInt))
	assert.False(t, ptrInt.HasConstructor(ptrChar))
	assert.False(t, ptrInt.HasConstructor(intT))
	assert.False(t, intT.HasConstructor(ptrInt))

	nullT := in.Fundamental(objtype.Nullptr)
	assert.True(t, ptrInt.HasConstructor(nullT))

	fn1 := in.Function([]*objtype.ObjType{intT}, boolT)
	fn2 := in.Function([]*objtype.ObjType{intT}, boolT)
	fn3 := in.Function([]*objtype.ObjType{dblT}, boolT)
	assert.True(t, fn1.HasConstructor(fn2))
	assert.False(t, fn1.HasConstructor(fn3))
	assert.False(t, fn1.HasConstructor(intT))
}

func TestHasMember(t *testing.T) {
	in := objtype.NewInterner()
	intT := in.Fundamental(objtype.Int)
	boolT := in.Fundamental(objtype.Bool)
	ptrT := in.Pointer(intT)

	assert.True(t, intT.HasMember(objtype.OpAdd))
	assert.True(t, intT.HasMember(objtype.OpLt))
	assert.False(t, intT.HasMember(objtype.OpAnd))
	assert.True(t, boolT.HasMember(objtype.OpAnd))
	assert.True(t, boolT.HasMember(objtype.OpNot))
	assert.True(t, ptrT.HasMember(objtype.OpDeref))
	assert.False(t, intT.HasMember(objtype.OpDeref))
	assert.True(t, intT.HasMember(objtype.OpAddrOf))
}
