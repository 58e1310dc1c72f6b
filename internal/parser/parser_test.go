package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/vellum/internal/ast"
	"github.com/oxhq/vellum/internal/diagnostics"
	"github.com/oxhq/vellum/internal/lexer"
	"github.com/oxhq/vellum/internal/objtype"
	"github.com/oxhq/vellum/internal/parser"
)

func mustParse(t *testing.T, src string) *ast.FunDef {
	t.Helper()
	toks, lexErr := lexer.Tokenize(src)
	require.NoError(t, lexErr)
	toks = lexer.Filter(toks)
	log := diagnostics.NewLog()
	fn, err := parser.Parse(toks, log)
	require.NoError(t, err)
	return fn
}

func TestParseImplicitMainWrapsTopLevel(t *testing.T) {
	fn := mustParse(t, "42")
	assert.Equal(t, "main", fn.Name)
	ts, ok := fn.ReturnType.(*ast.TypeSymbol)
	require.True(t, ok)
	assert.Equal(t, "int", ts.Name)

	seq, ok := fn.Body.(*ast.Seq)
	require.True(t, ok)
	require.Len(t, seq.Ops, 1)
	num, ok := seq.Ops[0].(*ast.Number)
	require.True(t, ok)
	assert.Equal(t, int32(42), num.IntValue)
}

func TestParseAdditiveExpression(t *testing.T) {
	fn := mustParse(t, "42 + 77")
	seq := fn.Body.(*ast.Seq)
	op := seq.Ops[0].(*ast.Operator)
	assert.Equal(t, objtype.OpAdd, op.Op)
	require.Len(t, op.Args, 2)
}

func TestParseIfElse(t *testing.T) {
	fn := mustParse(t, "if true: 2 else 3")
	seq := fn.Body.(*ast.Seq)
	ifNode := seq.Ops[0].(*ast.If)
	require.NotNil(t, ifNode.Else)

	thenSeq := ifNode.Then.(*ast.Seq)
	thenNum := thenSeq.Ops[0].(*ast.Number)
	assert.Equal(t, int32(2), thenNum.IntValue)

	elseSeq := ifNode.Else.(*ast.Seq)
	elseNum := elseSeq.Ops[0].(*ast.Number)
	assert.Equal(t, int32(3), elseNum.IntValue)
}

func TestParseMutableDataDefThenAssignThenRead(t *testing.T) {
	fn := mustParse(t, "val foo :mut int = 42; foo = 77; foo")
	seq := fn.Body.(*ast.Seq)
	require.Len(t, seq.Ops, 3)

	def := seq.Ops[0].(*ast.DataDef)
	assert.Equal(t, "foo", def.Name)
	quali, ok := def.DeclaredType.(*ast.Quali)
	require.True(t, ok)
	assert.True(t, quali.Mutable)
	require.False(t, def.Init.NoInit)
	require.Len(t, def.Init.Args.Items, 1)

	assign := seq.Ops[1].(*ast.Operator)
	assert.Equal(t, objtype.OpAssign, assign.Op)

	read := seq.Ops[2].(*ast.Symbol)
	assert.Equal(t, "foo", read.Name)
}

func TestParseRecursiveFunctionDefinitionThenCall(t *testing.T) {
	fn := mustParse(t, "fun fact:(x:int) int = if x==0: 1 else x*fact(x-1); fact(5)")
	seq := fn.Body.(*ast.Seq)
	require.Len(t, seq.Ops, 2)

	def := seq.Ops[0].(*ast.FunDef)
	assert.Equal(t, "fact", def.Name)
	require.Len(t, def.Params, 1)
	assert.Equal(t, "x", def.Params[0].Name)

	bodySeq := def.Body.(*ast.Seq)
	ifNode := bodySeq.Ops[0].(*ast.If)
	require.NotNil(t, ifNode.Else)

	call := seq.Ops[1].(*ast.FunCall)
	callee := call.Callee.(*ast.Symbol)
	assert.Equal(t, "fact", callee.Name)
	require.Len(t, call.Args.Items, 1)
}

func TestParseWhileLoop(t *testing.T) {
	fn := mustParse(t, "val x :mut int = 0; while x<3: x = x+1; x")
	seq := fn.Body.(*ast.Seq)
	require.Len(t, seq.Ops, 3)

	loop := seq.Ops[1].(*ast.Loop)
	cond := loop.Cond.(*ast.Operator)
	assert.Equal(t, objtype.OpLt, cond.Op)

	bodySeq := loop.Body.(*ast.Seq)
	assign := bodySeq.Ops[0].(*ast.Operator)
	assert.Equal(t, objtype.OpAssign, assign.Op)
}

func TestParseOpCallSyntaxFoldsMoreThanTwoArgsLeftAssociatively(t *testing.T) {
	fn := mustParse(t, "op add(1, 2, 3)")
	seq := fn.Body.(*ast.Seq)
	outer := seq.Ops[0].(*ast.Operator)
	assert.Equal(t, objtype.OpAdd, outer.Op)
	require.Len(t, outer.Args, 2)

	inner := outer.Args[0].(*ast.Operator)
	assert.Equal(t, objtype.OpAdd, inner.Op)
	require.Len(t, inner.Args, 2)
}

func TestParseCastSyntax(t *testing.T) {
	fn := mustParse(t, "double(42)")
	seq := fn.Body.(*ast.Seq)
	cast := seq.Ops[0].(*ast.Cast)
	ts := cast.DeclaredType.(*ast.TypeSymbol)
	assert.Equal(t, "double", ts.Name)
}

func TestParseParenBlockBodyAllowsMultipleStatements(t *testing.T) {
	fn := mustParse(t, "if true (1; 2)")
	seq := fn.Body.(*ast.Seq)
	ifNode := seq.Ops[0].(*ast.If)
	thenSeq := ifNode.Then.(*ast.Seq)
	require.Len(t, thenSeq.Ops, 2)
}

func TestParseNoInitDataDef(t *testing.T) {
	fn := mustParse(t, "val x :int noinit")
	seq := fn.Body.(*ast.Seq)
	def := seq.Ops[0].(*ast.DataDef)
	assert.True(t, def.Init.NoInit)
}

func TestParseSyntaxErrorAborts(t *testing.T) {
	toks, lexErr := lexer.Tokenize("val = 1")
	require.NoError(t, lexErr)
	toks = lexer.Filter(toks)
	log := diagnostics.NewLog()
	_, err := parser.Parse(toks, log)
	require.Error(t, err)
	var be *diagnostics.BuildError
	require.ErrorAs(t, err, &be)
}
