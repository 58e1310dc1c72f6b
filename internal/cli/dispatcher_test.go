package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunExecutesMainAndReturnsItsValueAsExitCode(t *testing.T) {
	out := Run("t.vl", "40 + 2", Options{})
	require.Nil(t, out.FatalErr)
	require.Empty(t, out.BuildErrors)
	assert.Equal(t, 42, out.ExitCode)
}

func TestRunReportsBuildErrorsForAnUnknownName(t *testing.T) {
	out := Run("t.vl", "doesNotExist", Options{})
	require.NotEmpty(t, out.BuildErrors)
	assert.Equal(t, 1, out.ExitCode)
}

func TestRunMasksTheRequestedErrorKind(t *testing.T) {
	unmasked := Run("t.vl", "doesNotExist", Options{})
	require.NotEmpty(t, unmasked.BuildErrors)
	kind := string(unmasked.BuildErrors[0].Kind)

	out := Run("t.vl", "doesNotExist", Options{MaskErrors: []string{kind}})
	assert.Empty(t, out.BuildErrors)
}

func TestRunDumpASTStopsBeforeExecutionAndPrintsSource(t *testing.T) {
	out := Run("t.vl", "1 + 2", Options{DumpAST: true})
	require.Nil(t, out.FatalErr)
	assert.Equal(t, "1 + 2", out.DumpedText)
	assert.Zero(t, out.ExitCode)
}

func TestRunDumpIRStopsBeforeExecutionAndPrintsIR(t *testing.T) {
	out := Run("t.vl", "1 + 2", Options{DumpIR: true})
	require.Nil(t, out.FatalErr)
	assert.Contains(t, out.DumpedText, "func main()")
	assert.Contains(t, out.DumpedText, "add")
}

func TestRunReportsFatalErrorForMalformedSource(t *testing.T) {
	out := Run("t.vl", "1 +", Options{})
	assert.Equal(t, 1, out.ExitCode)
	hasSignal := out.FatalErr != nil || len(out.BuildErrors) > 0
	assert.True(t, hasSignal, "expected either a fatal error or a recorded build error")
}

func TestExpandFilesPassesPlainNamesThroughUnchanged(t *testing.T) {
	files, err := ExpandFiles([]string{"a.vl", "b.vl"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.vl", "b.vl"}, files)
}
