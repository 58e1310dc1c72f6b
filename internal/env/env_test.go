package env

import (
	"testing"

	"github.com/oxhq/vellum/internal/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertAndFindInSameScope(t *testing.T) {
	e := New()
	obj := ast.NewObject("x")
	require.True(t, e.Insert("x", obj))
	assert.Same(t, obj, e.Find("x"))
}

func TestInsertRejectsRedefinitionInSameScope(t *testing.T) {
	e := New()
	require.True(t, e.Insert("x", ast.NewObject("x")))
	assert.False(t, e.Insert("x", ast.NewObject("x")))
}

func TestShadowingInNestedScopeIsAllowed(t *testing.T) {
	e := New()
	outer := ast.NewObject("x")
	require.True(t, e.Insert("x", outer))

	e.Push()
	inner := ast.NewObject("x")
	assert.True(t, e.Insert("x", inner))
	assert.Same(t, inner, e.Find("x"))

	e.Pop()
	assert.Same(t, outer, e.Find("x"))
}

func TestFindSearchesInnermostOut(t *testing.T) {
	e := New()
	require.True(t, e.Insert("y", ast.NewObject("y")))
	e.Push()
	defer e.Pop()
	assert.NotNil(t, e.Find("y"))
	assert.Nil(t, e.Find("unbound"))
}

func TestFindLocalDoesNotSearchOuterScopes(t *testing.T) {
	e := New()
	require.True(t, e.Insert("x", ast.NewObject("x")))
	e.Push()
	defer e.Pop()

	_, ok := e.FindLocal("x")
	assert.False(t, ok)
	assert.NotNil(t, e.Find("x"))
}

func TestScopeRefRecordsDepthAndSlot(t *testing.T) {
	e := New()
	a := ast.NewObject("a")
	b := ast.NewObject("b")
	require.True(t, e.Insert("a", a))
	require.True(t, e.Insert("b", b))
	assert.Equal(t, 0, a.Scope.Depth)
	assert.Equal(t, 0, a.Scope.Slot)
	assert.Equal(t, 1, b.Scope.Slot)

	e.Push()
	defer e.Pop()
	c := ast.NewObject("c")
	require.True(t, e.Insert("c", c))
	assert.Equal(t, 1, c.Scope.Depth)
}

func TestPopOnEmptyStackIsSafe(t *testing.T) {
	e := &Env{}
	assert.NotPanics(t, func() { e.Pop() })
}
