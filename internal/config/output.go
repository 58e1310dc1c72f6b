package config

import (
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"github.com/oxhq/vellum/internal/diagnostics"
)

// PrintBuildErrors renders log's accumulated errors to w as plain text,
// one per line, preceded by a banner. Build errors never go through slog
// -- they are compiler output, not operational logging.
func PrintBuildErrors(w io.Writer, errs []*diagnostics.BuildError) {
	fmt.Fprintln(w, "Build error(s):")
	for _, e := range errs {
		fmt.Fprintf(w, "  %s: %s: %s\n", e.Span, e.Kind, e.Msg)
	}
}

// PrintFatal reports an error outside the build-error log entirely -- a
// source file that couldn't be read, a bad glob, an internal error
// already logged via slog and about to abort the process.
func PrintFatal(w io.Writer, err error) {
	fmt.Fprintf(w, "✗ %v\n", err)
}

// PrintUsage writes a one-line usage banner plus flags' own descriptions,
// matching the codebase's existing usage-printing shape.
func PrintUsage(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprintf(w, "\nUsage: vellumc [flags] <file-or-glob> ...\n\nFlags:\n")
	fs.SetOutput(w)
	fs.PrintDefaults()
}
