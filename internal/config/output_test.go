package config

import (
	"bytes"
	"errors"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"

	"github.com/oxhq/vellum/internal/diagnostics"
	"github.com/oxhq/vellum/internal/token"
)

func span() token.Span {
	p := token.Position{Line: 3, Column: 5}
	return token.Span{Start: p, End: p}
}

func TestPrintBuildErrorsWritesBannerAndOneLinePerError(t *testing.T) {
	var buf bytes.Buffer
	errs := []*diagnostics.BuildError{
		diagnostics.New(diagnostics.EUnknownName, span(), "undefined name %q", "x"),
		diagnostics.New(diagnostics.ERedefinition, span(), "already defined"),
	}
	PrintBuildErrors(&buf, errs)

	out := buf.String()
	assert.Contains(t, out, "Build error(s):")
	assert.Contains(t, out, "eUnknownName")
	assert.Contains(t, out, `undefined name "x"`)
	assert.Contains(t, out, "eRedefinition")
	assert.Contains(t, out, "already defined")
}

func TestPrintFatalWritesTheUnderlyingErrorMessage(t *testing.T) {
	var buf bytes.Buffer
	PrintFatal(&buf, errors.New("no such file"))
	assert.Contains(t, buf.String(), "no such file")
}

func TestPrintUsageIncludesRegisteredFlagNames(t *testing.T) {
	var buf bytes.Buffer
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(flags, Defaults())

	PrintUsage(&buf, flags)

	out := buf.String()
	assert.Contains(t, out, "Usage: vellumc")
	assert.Contains(t, out, "--mask")
	assert.Contains(t, out, "--debug")
}
