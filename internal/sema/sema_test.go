package sema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/vellum/internal/ast"
	"github.com/oxhq/vellum/internal/diagnostics"
	"github.com/oxhq/vellum/internal/env"
	"github.com/oxhq/vellum/internal/lexer"
	"github.com/oxhq/vellum/internal/objtype"
	"github.com/oxhq/vellum/internal/parser"
	"github.com/oxhq/vellum/internal/sema"
)

// run compiles src through the lexer, filter, parser, and all three
// semantic passes, returning the resulting fn and the first error
// encountered (if any).
func run(t *testing.T, src string) (*ast.FunDef, error) {
	t.Helper()
	toks, lexErr := lexer.Tokenize(src)
	require.NoError(t, lexErr)
	toks = lexer.Filter(toks)

	log := diagnostics.NewLog()
	fn, err := parser.Parse(toks, log)
	require.NoError(t, err)

	in := objtype.NewInterner()
	e := env.New()

	if err := sema.Insert(fn, e, log); err != nil {
		return fn, err
	}
	if err := sema.Augment(fn, in, log); err != nil {
		return fn, err
	}
	if err := sema.Analyze(fn, e, in, log); err != nil {
		return fn, err
	}
	return fn, nil
}

func lastOp(fn *ast.FunDef) ast.AstObject {
	seq := fn.Body.(*ast.Seq)
	return seq.Ops[len(seq.Ops)-1]
}

func TestAnalyzeLiteralExpression(t *testing.T) {
	fn, err := run(t, "42")
	require.NoError(t, err)
	obj := lastOp(fn).AssociatedObject()
	require.NotNil(t, obj)
	assert.True(t, obj.ObjType.IsFundamental())
	assert.Equal(t, objtype.Int, obj.ObjType.Fundamental())
}

func TestAnalyzeAdditiveExpressionIsInt(t *testing.T) {
	fn, err := run(t, "42 + 77")
	require.NoError(t, err)
	obj := lastOp(fn).AssociatedObject()
	assert.Equal(t, objtype.Int, obj.ObjType.Fundamental())
}

func TestAnalyzeMutableDataDefThenAssignThenRead(t *testing.T) {
	fn, err := run(t, "val foo :mut int = 42; foo = 77; foo")
	require.NoError(t, err)

	seq := fn.Body.(*ast.Seq)
	require.Len(t, seq.Ops, 3)

	def := seq.Ops[0].(*ast.DataDef)
	assert.True(t, def.AssociatedObject().IsInitialized())
	assert.True(t, def.AssociatedObject().ObjType.IsMutable())

	assign := seq.Ops[1].(*ast.Operator)
	assert.Equal(t, objtype.Void, assign.AssociatedObject().ObjType.Fundamental())

	read := seq.Ops[2].(*ast.Symbol)
	assert.Same(t, def.AssociatedObject(), read.AssociatedObject())
	assert.True(t, read.AssociatedObject().IsModifiedOrRevealsAddr())
}

func TestAnalyzeRecursiveFunctionCallResolvesReturnType(t *testing.T) {
	fn, err := run(t, "fun fact:(x:int) int = if x==0: 1 else x*fact(x-1); fact(5)")
	require.NoError(t, err)

	call := lastOp(fn).(*ast.FunCall)
	assert.Equal(t, objtype.Int, call.AssociatedObject().ObjType.Fundamental())

	def := fn.Body.(*ast.Seq).Ops[0].(*ast.FunDef)
	assert.Equal(t, objtype.Int, def.Params[0].Obj.ObjType.Fundamental())
}

func TestAnalyzeWhileLoopIsVoid(t *testing.T) {
	fn, err := run(t, "val x :mut int = 0; while x<3: x = x+1; x")
	require.NoError(t, err)
	seq := fn.Body.(*ast.Seq)
	loop := seq.Ops[1].(*ast.Loop)
	assert.Equal(t, objtype.Void, loop.AssociatedObject().ObjType.Fundamental())
}

func TestAnalyzeInferredTypeTakesInitializerType(t *testing.T) {
	fn, err := run(t, "val y := 5; y")
	require.NoError(t, err)
	seq := fn.Body.(*ast.Seq)
	def := seq.Ops[0].(*ast.DataDef)
	assert.Equal(t, objtype.Int, def.AssociatedObject().ObjType.Fundamental())
}

func TestAnalyzeIfWithNoreturnBranchTakesOtherBranchType(t *testing.T) {
	fn, err := run(t, "fun f: () int = if true: return 1 else 2")
	require.NoError(t, err)
	def := fn.Body.(*ast.Seq).Ops[0].(*ast.FunDef)
	ifNode := def.Body.(*ast.Seq).Ops[0].(*ast.If)
	assert.Equal(t, objtype.Int, ifNode.AssociatedObject().ObjType.Fundamental())
}

func TestAnalyzeUnknownNameFails(t *testing.T) {
	_, err := run(t, "foo")
	require.Error(t, err)
	var be *diagnostics.BuildError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, diagnostics.EUnknownName, be.Kind)
}

func TestAnalyzeRedefinitionFails(t *testing.T) {
	_, err := run(t, "val x :int = 1; val x :int = 2")
	require.Error(t, err)
	var be *diagnostics.BuildError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, diagnostics.ERedefinition, be.Kind)
}

func TestAnalyzeWriteToImmutableFails(t *testing.T) {
	_, err := run(t, "val x :int = 1; x = 2")
	require.Error(t, err)
	var be *diagnostics.BuildError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, diagnostics.EWriteToImmutable, be.Kind)
}

func TestAnalyzeUseBeforeInitFails(t *testing.T) {
	_, err := run(t, "val x :int noinit; x")
	require.Error(t, err)
	var be *diagnostics.BuildError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, diagnostics.ENonIgnoreAccessToLocalDataObjectBeforeItsInit, be.Kind)
}

func TestAnalyzeCastToVoidFails(t *testing.T) {
	_, err := run(t, "void(42)")
	require.Error(t, err)
	var be *diagnostics.BuildError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, diagnostics.ENoSuchMember, be.Kind)
}

func TestAnalyzeFunCallArityMismatchFails(t *testing.T) {
	_, err := run(t, "fun fact:(x:int) int = x; fact()")
	require.Error(t, err)
	var be *diagnostics.BuildError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, diagnostics.EInvalidArguments, be.Kind)
}

func TestAnalyzeStaticRequiresCompileTimeConstant(t *testing.T) {
	_, err := run(t, "val x :int = 1; static val y :int = x")
	require.Error(t, err)
	var be *diagnostics.BuildError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, diagnostics.ECTConstRequired, be.Kind)
}

func TestAnalyzeUnreachableCodeAfterReturnFails(t *testing.T) {
	_, err := run(t, "fun f: () int = (return 1; 2)")
	require.Error(t, err)
	var be *diagnostics.BuildError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, diagnostics.EUnreachableCode, be.Kind)
}
