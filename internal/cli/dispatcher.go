// Package cli implements the compiler driver: running the full pipeline
// (lex, filter, parse, the three semantic-analysis passes, forward
// declaration, and IR generation) over one source file against the
// reference refvm backend, then JIT-executing its main. A single
// compilation never runs two passes over one AST concurrently;
// ExpandFiles's multiple matched files are meant to be compiled one after
// another by the caller, never in parallel, since they are otherwise
// independent builds sharing no mutable state.
package cli

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"

	"github.com/oxhq/vellum/internal/diagnostics"
	"github.com/oxhq/vellum/internal/env"
	"github.com/oxhq/vellum/internal/irbuilder/refvm"
	"github.com/oxhq/vellum/internal/irgen"
	"github.com/oxhq/vellum/internal/lexer"
	"github.com/oxhq/vellum/internal/objtype"
	"github.com/oxhq/vellum/internal/parser"
	"github.com/oxhq/vellum/internal/pretty"
	"github.com/oxhq/vellum/internal/sema"
)

// Options controls one Run call.
type Options struct {
	// MaskErrors holds diagnostics.ErrorKind spellings to disable for
	// this run.
	MaskErrors []string
	// DumpIR, if set, stops after a successful compile and fills
	// Outcome.DumpedText with the backend's textual IR instead of
	// executing main.
	DumpIR bool
	// DumpAST, if set, stops right after semantic analysis and fills
	// Outcome.DumpedText with the pretty-printed AST in source form.
	DumpAST bool
	// Logger receives one Info record per completed pass when non-nil
	// (i.e. whenever --debug is set); nil disables per-pass tracing
	// entirely rather than logging at a lower level, since the tracing
	// itself has a small but real cost.
	Logger *slog.Logger
}

// Outcome is everything the caller needs to report one file's result.
type Outcome struct {
	File string
	// BuildID identifies this particular Run call in --debug traces; it
	// has no meaning beyond correlating one build's own log lines.
	BuildID string
	// ExitCode is 0 on a clean run, main's own return value on successful
	// execution, 1 when BuildErrors is non-empty or a fatal non-build
	// error occurred, 2 for an internal assertion failure or a
	// structural IR-verification failure.
	ExitCode int
	// DumpedText holds --dump-ir/--dump-ast output; empty otherwise.
	DumpedText string
	// BuildErrors is non-empty exactly when compilation failed a
	// recoverable diagnostics check.
	BuildErrors []*diagnostics.BuildError
	// FatalErr is set for failures outside the build-error log: a lexical
	// error, a structural IR-verification failure, or a propagated
	// internal assertion.
	FatalErr error
}

// ExpandFiles resolves args against the working directory, passing plain
// filenames through unchanged and expanding any argument containing glob
// metacharacters with doublestar (so `**` works, unlike filepath.Glob).
func ExpandFiles(args []string) ([]string, error) {
	var files []string
	for _, a := range args {
		if !strings.ContainsAny(a, "*?[{") {
			files = append(files, a)
			continue
		}
		matches, err := doublestar.FilepathGlob(a)
		if err != nil {
			return nil, fmt.Errorf("expanding glob %q: %w", a, err)
		}
		files = append(files, matches...)
	}
	return files, nil
}

// logPass emits one Info record carrying a pass's name and wall time,
// when logger is non-nil (i.e. --debug was set).
func logPass(logger *slog.Logger, name string, start time.Time) {
	if logger == nil {
		return
	}
	logger.Info("pass complete", "pass", name, "duration", time.Since(start))
}

// Run compiles src (the contents of file) and, unless DumpIR or DumpAST
// stops it early, JIT-executes its main.
func Run(file, src string, opts Options) (out Outcome) {
	out.File = file
	out.BuildID = uuid.NewString()

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		ie, ok := r.(*diagnostics.InternalError)
		if !ok {
			panic(r)
		}
		if opts.Logger != nil {
			opts.Logger.Error("internal error", "file", file, "build", out.BuildID, "err", ie.Error())
		}
		out.FatalErr = ie
		out.ExitCode = 2
	}()

	if opts.Logger != nil {
		opts.Logger.Info("build started", "file", file, "build", out.BuildID)
	}

	log := diagnostics.NewLog()
	for _, k := range opts.MaskErrors {
		log.Disable(diagnostics.ErrorKind(k))
	}

	start := time.Now()
	toks, err := lexer.Tokenize(src)
	logPass(opts.Logger, "lex", start)
	if err != nil {
		out.FatalErr = err
		out.ExitCode = 1
		return out
	}
	toks = lexer.Filter(toks)

	start = time.Now()
	fn, err := parser.Parse(toks, log)
	logPass(opts.Logger, "parse", start)
	if err != nil {
		out.BuildErrors = log.Errors()
		out.ExitCode = 1
		return out
	}

	in := objtype.NewInterner()
	e := env.New()

	if stop, failOut := runPass(opts, log, file, "insert", func() error { return sema.Insert(fn, e, log) }); stop {
		return failOut
	}
	if stop, failOut := runPass(opts, log, file, "augment", func() error { return sema.Augment(fn, in, log) }); stop {
		return failOut
	}
	if stop, failOut := runPass(opts, log, file, "analyze", func() error { return sema.Analyze(fn, e, in, log) }); stop {
		return failOut
	}

	if opts.DumpAST {
		out.DumpedText = pretty.Print(fn)
		return out
	}

	vm := refvm.New()
	mod := vm.CreateModule(file)

	if stop, failOut := runPass(opts, log, file, "forward", func() error { return irgen.Forward(fn, vm, mod) }); stop {
		return failOut
	}
	if stop, failOut := runPass(opts, log, file, "generate", func() error { return irgen.Generate(fn, vm, mod) }); stop {
		return failOut
	}

	start = time.Now()
	verr := vm.Verify(mod)
	logPass(opts.Logger, "verify", start)
	if verr != nil {
		out.FatalErr = fmt.Errorf("internal: %w", verr)
		out.ExitCode = 2
		return out
	}

	if opts.DumpIR {
		out.DumpedText = vm.Dump(mod)
		return out
	}

	res, err := vm.JIT(mod, "main", nil)
	if err != nil {
		out.FatalErr = err
		out.ExitCode = 1
		return out
	}
	n, err := vm.AsInt(res)
	if err != nil {
		out.FatalErr = err
		out.ExitCode = 1
		return out
	}
	out.ExitCode = int(n)
	return out
}

// runPass runs one compiler pass, tracing it and translating a returned
// build error into a terminal Outcome the caller should return
// immediately. The bool return reports whether that happened.
func runPass(opts Options, log *diagnostics.Log, file, name string, fn func() error) (bool, Outcome) {
	start := time.Now()
	err := fn()
	logPass(opts.Logger, name, start)
	if err == nil {
		return false, Outcome{}
	}
	return true, Outcome{File: file, ExitCode: 1, BuildErrors: log.Errors()}
}
