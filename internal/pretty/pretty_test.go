package pretty_test

import (
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/vellum/internal/diagnostics"
	"github.com/oxhq/vellum/internal/lexer"
	"github.com/oxhq/vellum/internal/parser"
	"github.com/oxhq/vellum/internal/pretty"
)

func parseSrc(t *testing.T, src string) string {
	t.Helper()
	toks, err := lexer.Tokenize(src)
	require.NoError(t, err)
	toks = lexer.Filter(toks)
	log := diagnostics.NewLog()
	fn, err := parser.Parse(toks, log)
	require.NoError(t, err)
	return pretty.Print(fn)
}

// assertRoundTrips prints src, re-parses the result, and prints it again:
// the two printed forms must be byte-identical, per spec.md §8's
// parse-print-reparse invariant. A difflib unified diff makes a mismatch
// legible instead of dumping two raw strings.
func assertRoundTrips(t *testing.T, src string) string {
	t.Helper()
	first := parseSrc(t, src)
	second := parseSrc(t, first)
	if first != second {
		d := difflib.UnifiedDiff{
			A:        difflib.SplitLines(first),
			B:        difflib.SplitLines(second),
			FromFile: "first-print",
			ToFile:   "second-print",
			Context:  2,
		}
		text, _ := difflib.GetUnifiedDiffString(d)
		t.Fatalf("pretty-print is not stable under reparse:\n%s", text)
	}
	return first
}

func TestRoundTripArithmeticExpression(t *testing.T) {
	out := assertRoundTrips(t, "1 + 2 * 3")
	assert.Equal(t, "1 + 2 * 3", out)
}

func TestRoundTripPreservesMultiplicationOverAdditionGrouping(t *testing.T) {
	out := assertRoundTrips(t, "(1 + 2) * 3")
	assert.Equal(t, "(1 + 2) * 3", out)
}

func TestRoundTripIfElse(t *testing.T) {
	assertRoundTrips(t, "if true: 2 else 3")
}

func TestRoundTripMutableDataDefAssignRead(t *testing.T) {
	assertRoundTrips(t, "val foo :mut int = 42; foo = 77; foo")
}

func TestRoundTripRecursiveFunctionAndCall(t *testing.T) {
	assertRoundTrips(t, "fun fact:(x:int) int = if x==0: 1 else x*fact(x-1); fact(5)")
}

func TestRoundTripWhileLoop(t *testing.T) {
	assertRoundTrips(t, "val x :mut int = 0; while x<3: x = x+1; x")
}

func TestRoundTripCast(t *testing.T) {
	assertRoundTrips(t, "double(42)")
}

func TestRoundTripUnaryChain(t *testing.T) {
	assertRoundTrips(t, "-x")
}

func TestRoundTripLogicalShortCircuit(t *testing.T) {
	assertRoundTrips(t, "true && false || true")
}

func TestRoundTripNoInitData(t *testing.T) {
	assertRoundTrips(t, "val x :int noinit")
}

func TestRoundTripPointerAndDeref(t *testing.T) {
	assertRoundTrips(t, "val p :mut *int noinit; *p")
}

func TestRoundTripCharAndBoolLiterals(t *testing.T) {
	assertRoundTrips(t, "val c :char = 'a'; val b :bool = true; c")
}

func TestRoundTripWholeValuedDoubleKeepsDecimalPoint(t *testing.T) {
	out := assertRoundTrips(t, "val d :double = 42.0; d")
	assert.Contains(t, out, "42.0", "a whole-valued double literal must not print as a bare int literal")
}
