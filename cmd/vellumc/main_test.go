package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSource(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestRunCompilesAndExecutesDefaultRootAction(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "a.vl", "40 + 2")

	var stdout, stderr bytes.Buffer
	code := run([]string{path}, &stdout, &stderr)

	assert.Equal(t, 42, code)
	assert.Empty(t, stderr.String())
}

func TestRunBuildSubcommandMatchesRootAction(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "a.vl", "40 + 2")

	var stdout, stderr bytes.Buffer
	code := run([]string{"build", path}, &stdout, &stderr)

	assert.Equal(t, 42, code)
}

func TestRunPrintsBuildErrorBannerAndExitsOne(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "a.vl", "doesNotExist")

	var stdout, stderr bytes.Buffer
	code := run([]string{path}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "Build error(s):")
}

func TestRunMaskFlagSuppressesThatErrorKindFromOutput(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "a.vl", "doesNotExist")

	var stdout, stderr bytes.Buffer
	code := run([]string{path, "--mask", "eUnknownName"}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.NotContains(t, stderr.String(), "Build error(s):")
}

func TestRunDumpASTFlagPrintsSourceWithoutExecuting(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "a.vl", "1 + 2")

	var stdout, stderr bytes.Buffer
	code := run([]string{path, "--dump-ast"}, &stdout, &stderr)

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "1 + 2")
}

func TestRunDumpIRFlagPrintsIRWithoutExecuting(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "a.vl", "1 + 2")

	var stdout, stderr bytes.Buffer
	code := run([]string{path, "--dump-ir"}, &stdout, &stderr)

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "func main()")
}

func TestRunVersionSubcommandPrintsVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"version"}, &stdout, &stderr)

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), version)
}

func TestRunExpandsGlobArgumentsAcrossMultipleFiles(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "a.vl", "1")
	writeSource(t, dir, "b.vl", "2")

	var stdout, stderr bytes.Buffer
	code := run([]string{filepath.Join(dir, "*.vl")}, &stdout, &stderr)

	assert.Equal(t, 2, code, "overall exit code is the last matched file's own return value")
	assert.Empty(t, stderr.String())
}

func TestRunFatalErrorForUnreadableFile(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{filepath.Join(t.TempDir(), "missing.vl")}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.NotEmpty(t, stderr.String())
}
