package ast

import (
	"testing"

	"github.com/oxhq/vellum/internal/objtype"
	"github.com/oxhq/vellum/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sp() token.Span {
	p := token.Position{Line: 1, Column: 1, Offset: 0}
	return token.Span{Start: p, End: p}
}

func TestSeqBodyIsLastOperand(t *testing.T) {
	a := NewNumber(sp(), 1, 0, objtype.Int)
	b := NewNumber(sp(), 2, 0, objtype.Int)
	seq := NewSeq(sp(), a, b)
	assert.Same(t, b, seq.Body())

	empty := NewSeq(sp())
	assert.Nil(t, empty.Body())
}

func TestObjectAddAccessIsMonotonic(t *testing.T) {
	o := NewObject("x")
	require.False(t, o.IsModifiedOrRevealsAddr())

	o.AddAccess(Read)
	assert.False(t, o.IsModifiedOrRevealsAddr())

	o.AddAccess(Write)
	assert.True(t, o.IsModifiedOrRevealsAddr())

	// Monotonic: a later Read must not un-flip it.
	o.AddAccess(Read)
	assert.True(t, o.IsModifiedOrRevealsAddr())
}

func TestObjectMustLiveInMemory(t *testing.T) {
	local := NewObject("x")
	local.StorageDuration = Local
	assert.False(t, local.MustLiveInMemory())

	local.AddAccess(TakeAddress)
	assert.True(t, local.MustLiveInMemory())

	static := NewObject("g")
	static.StorageDuration = Static
	assert.True(t, static.MustLiveInMemory())
}

func TestChildrenEnumeration(t *testing.T) {
	cond := NewSymbol(sp(), "flag")
	then := NewNumber(sp(), 1, 0, objtype.Int)
	els := NewNumber(sp(), 0, 0, objtype.Int)
	ifNode := NewIf(sp(), cond, then, els)
	require.Len(t, ifNode.Children(), 3)

	bareIf := NewIf(sp(), cond, then, nil)
	require.Len(t, bareIf.Children(), 2)

	ret := NewReturn(sp(), nil)
	assert.Nil(t, ret.Children())

	retVal := NewReturn(sp(), then)
	require.Len(t, retVal.Children(), 1)
}

func TestOperatorFoldedArityByAnalysisTime(t *testing.T) {
	x := NewSymbol(sp(), "x")
	y := NewSymbol(sp(), "y")
	op := NewOperator(sp(), objtype.OpAdd, x, y)
	assert.Len(t, op.Args, 2)
	assert.Len(t, op.Children(), 2)

	neg := NewOperator(sp(), objtype.OpSub, x)
	assert.Len(t, neg.Args, 1)
}

func TestFunCallChildrenIncludesCalleeThenArgs(t *testing.T) {
	callee := NewSymbol(sp(), "f")
	args := NewCtList(sp(), NewNumber(sp(), 1, 0, objtype.Int), NewNumber(sp(), 2, 0, objtype.Int))
	call := NewFunCall(sp(), callee, args)
	require.Len(t, call.Children(), 3)
	assert.Same(t, callee, call.Children()[0])
}

func TestDataDefChildrenOmitArgsWhenNoInit(t *testing.T) {
	declared := NewTypeSymbol(sp(), "int")
	noInit := NewDataDef(sp(), "x", declared, Local, &Initializer{NoInit: true})
	require.Len(t, noInit.Children(), 1)

	withInit := NewDataDef(sp(), "x", declared, Local, &Initializer{
		Args: NewCtList(sp(), NewNumber(sp(), 1, 0, objtype.Int)),
	})
	require.Len(t, withInit.Children(), 2)
}

func TestFunDefChildrenIncludesParamsReturnAndBody(t *testing.T) {
	p := &Param{Name: "x", DeclaredType: NewTypeSymbol(sp(), "int"), DeclaredStorage: Local}
	ret := NewTypeSymbol(sp(), "int")
	body := NewSeq(sp(), NewSymbol(sp(), "x"))
	fn := NewFunDef(sp(), "id", []*Param{p}, ret, body)
	require.Len(t, fn.Children(), 3)
}

func TestQualiAndPtrAreAstObjType(t *testing.T) {
	var _ AstObjType = (*TypeSymbol)(nil)
	var _ AstObjType = (*Quali)(nil)
	var _ AstObjType = (*Ptr)(nil)
	var _ AstObjType = (*ClassDef)(nil)

	inner := NewTypeSymbol(sp(), "int")
	mut := NewQuali(sp(), true, inner)
	ptr := NewPtr(sp(), mut)
	require.Len(t, ptr.Children(), 1)
	assert.Same(t, mut, ptr.Children()[0])
}

func TestClassDefChildrenAreMembers(t *testing.T) {
	m1 := &ClassMember{Name: "x", Type: NewTypeSymbol(sp(), "int")}
	m2 := &ClassMember{Name: "y", Type: NewTypeSymbol(sp(), "int")}
	cd := NewClassDef(sp(), "Point", []*ClassMember{m1, m2})
	require.Len(t, cd.Children(), 2)
}

func TestAccessFromParentDefaultsUndefined(t *testing.T) {
	n := NewSymbol(sp(), "x")
	assert.Equal(t, Undefined, n.AccessFromParent())
	n.SetAccessFromParent(Write)
	assert.Equal(t, Write, n.AccessFromParent())
}

func TestAssociatedObjectRoundTrips(t *testing.T) {
	n := NewSymbol(sp(), "x")
	assert.Nil(t, n.AssociatedObject())
	o := NewObject("x")
	n.SetAssociatedObject(o)
	assert.Same(t, o, n.AssociatedObject())
}
