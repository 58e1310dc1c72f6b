// Command vellumc compiles and runs vellum source files: `vellumc build
// <file-or-glob>`, or just `vellumc <file-or-glob>` since build is also
// the root command's default action.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oxhq/vellum/internal/cli"
	"github.com/oxhq/vellum/internal/config"
)

// version is overridden at link time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	envCfg := config.LoadEnv()
	exitCode := 0

	newBuildCmd := func(use string, argsRule cobra.PositionalArgs) *cobra.Command {
		var dumpIR, dumpAST bool
		cmd := &cobra.Command{
			Use:          use,
			Short:        "Compile and JIT-run one or more vellum source files",
			Args:         argsRule,
			SilenceUsage: true,
			RunE: func(cmd *cobra.Command, cliArgs []string) error {
				if len(cliArgs) == 0 {
					return cmd.Help()
				}
				exitCode = doBuild(cliArgs, envCfg, cmd.Flags(), dumpIR, dumpAST, stdout, stderr)
				return nil
			},
		}
		cmd.Flags().BoolVar(&dumpIR, "dump-ir", false, "print the backend's textual IR instead of executing main")
		cmd.Flags().BoolVar(&dumpAST, "dump-ast", false, "print the parsed, annotated AST instead of compiling further")
		return cmd
	}

	root := newBuildCmd("vellumc [flags] <file-or-glob> ...", cobra.ArbitraryArgs)
	config.RegisterFlags(root.PersistentFlags(), envCfg)

	root.AddCommand(newBuildCmd("build <file-or-glob> ...", cobra.MinimumNArgs(1)))
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(stdout, version)
			return nil
		},
	})

	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return exitCode
}

// doBuild expands cliArgs into a file list, compiles and runs each in
// turn, and returns the process exit code: if every file ran cleanly,
// the last file's own return value (0 for a dump-only batch), 1 if
// any file produced build errors or another fatal, non-internal failure,
// 2 if any file hit an internal assertion or IR-verification failure.
func doBuild(cliArgs []string, envCfg config.Config, flags *pflag.FlagSet, dumpIR, dumpAST bool, stdout, stderr io.Writer) int {
	cfg := config.FromFlags(flags, envCfg)

	files, err := cli.ExpandFiles(cliArgs)
	if err != nil {
		config.PrintFatal(stderr, err)
		return 1
	}
	if len(files) == 0 {
		config.PrintFatal(stderr, fmt.Errorf("no files matched %v", cliArgs))
		return 1
	}

	var logger *slog.Logger
	if cfg.Debug {
		var handler slog.Handler
		if cfg.JSONLogs {
			handler = slog.NewJSONHandler(stderr, nil)
		} else {
			handler = slog.NewTextHandler(stderr, nil)
		}
		logger = slog.New(handler)
	}

	exit := 0
	failed := false
	for _, f := range files {
		src, err := os.ReadFile(f)
		if err != nil {
			config.PrintFatal(stderr, err)
			failed = true
			exit = raiseExit(exit, 1)
			continue
		}

		out := cli.Run(f, string(src), cli.Options{
			MaskErrors: cfg.MaskErrors,
			DumpIR:     dumpIR,
			DumpAST:    dumpAST,
			Logger:     logger,
		})

		switch {
		case len(out.BuildErrors) > 0:
			config.PrintBuildErrors(stderr, out.BuildErrors)
			failed = true
			exit = raiseExit(exit, 1)
		case out.FatalErr != nil:
			config.PrintFatal(stderr, out.FatalErr)
			code := out.ExitCode
			if code == 0 {
				code = 1
			}
			failed = true
			exit = raiseExit(exit, code)
		case dumpIR || dumpAST:
			fmt.Fprintln(stdout, out.DumpedText)
		default:
			// As long as nothing earlier in the batch failed, the overall
			// process result tracks the most recently compiled file's own
			// return value.
			if !failed {
				exit = out.ExitCode
			}
		}
	}
	return exit
}

// raiseExit keeps the most severe of two exit codes seen across a batch
// of files: 2 (internal failure) always wins, 1 (build/fatal error) wins
// over a clean run's own return value.
func raiseExit(current, candidate int) int {
	if current == 2 || candidate == 2 {
		return 2
	}
	if current == 1 || candidate == 1 {
		return 1
	}
	if current != 0 {
		return current
	}
	return candidate
}
