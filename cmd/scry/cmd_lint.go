package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dhamidi/scry/codebase"
	"github.com/dhamidi/scry/diagnostic"
	"github.com/dhamidi/scry/format"
	"github.com/dhamidi/scry/lint"
	"github.com/dhamidi/scry/syntax"
)

type lintOptions struct {
	format              string
	maxDiagnostics      int
	errorOnWarnings     bool
	jobs                int
	skipErrors          bool
	noErrorsOnUnmatched bool
}

var errNoFilesProcessed = errors.New("no files were processed in the given paths")

func newLintCmd(g *globalOptions) *cobra.Command {
	opts := &lintOptions{}

	cmd := &cobra.Command{
		Use:   "lint [path...]",
		Short: "Parse and lint files and directories",
		Long: `Parse and lint the given files and directories (default: the current
directory). Directories are searched recursively for .json, .js and .ts
files; hidden directories and node_modules are skipped.

JSX is not supported: .jsx and .tsx files are never matched, and JSX
syntax inside .js or .ts files is not parsed.

The command exits non-zero when an error diagnostic is found or when no
file was processed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}
			cfg := g.config()
			if !cmd.Flags().Changed("max-diagnostics") {
				opts.maxDiagnostics = cfg.MaxDiagnostics
			}
			if opts.format == "" {
				opts.format = defaultFormat(os.Stdout)
			}
			runner := lint.NewRunner(cfg.Rules())
			return runLint(cmd.Context(), runner, args, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format (json, line); defaults to line on a terminal and json otherwise")
	cmd.Flags().IntVar(&opts.maxDiagnostics, "max-diagnostics", 0, "maximum number of diagnostics to print (default from config)")
	cmd.Flags().BoolVar(&opts.errorOnWarnings, "error-on-warnings", false, "exit non-zero when warnings are found")
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", runtime.NumCPU(), "number of files linted in parallel")
	cmd.Flags().BoolVar(&opts.skipErrors, "skip-errors", false, "skip files with syntax errors instead of reporting them")
	cmd.Flags().BoolVar(&opts.noErrorsOnUnmatched, "no-errors-on-unmatched", false, "do not fail when no supported file matches the given paths")

	return cmd
}

func defaultFormat(f *os.File) string {
	if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
		return "line"
	}
	return "json"
}

func runLint(ctx context.Context, runner *lint.Runner, args []string, opts *lintOptions, stdout, stderr io.Writer) error {
	enc, err := format.NewDiagnosticEncoder(opts.format, stdout)
	if err != nil {
		return err
	}
	paths, err := collectPaths(ctx, args, opts.noErrorsOnUnmatched)
	if err != nil {
		return err
	}
	if len(paths) == 0 && !opts.noErrorsOnUnmatched {
		return errNoFilesProcessed
	}

	results := make([]*lint.Result, len(paths))
	group, gctx := errgroup.WithContext(ctx)
	if opts.jobs > 0 {
		group.SetLimit(opts.jobs)
	}
	for i, path := range paths {
		group.Go(func() error {
			src, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			mode, _ := syntax.ModeForPath(path)
			result, err := runner.Lint(gctx, path, src, mode)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	var errs, warnings, hidden, skipped int
	budget := opts.maxDiagnostics
	for _, result := range results {
		diags := result.Diagnostics
		if opts.skipErrors && hasSyntaxErrors(diags) {
			skipped++
			continue
		}
		errs += diagnostic.Count(diags, diagnostic.Error)
		warnings += diagnostic.Count(diags, diagnostic.Warning)
		if len(diags) > budget {
			hidden += len(diags) - budget
			diags = diags[:budget]
		}
		budget -= len(diags)
		if len(diags) == 0 && opts.format != "json" {
			continue
		}
		if err := enc.Encode(result.Path, diags); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
	}

	checked := len(paths) - skipped
	fmt.Fprintf(stderr, "Checked %d %s. Found %d %s and %d %s.\n",
		checked, plural(checked, "file", "files"),
		errs, plural(errs, "error", "errors"),
		warnings, plural(warnings, "warning", "warnings"))
	if skipped > 0 {
		fmt.Fprintf(stderr, "Skipped %d %s with syntax errors.\n", skipped, plural(skipped, "file", "files"))
	}
	if hidden > 0 {
		fmt.Fprintf(stderr, "%d more %s not shown; raise --max-diagnostics to see them.\n",
			hidden, plural(hidden, "diagnostic", "diagnostics"))
	}

	if errs > 0 || (opts.errorOnWarnings && warnings > 0) {
		return errProblemsFound
	}
	return nil
}

func hasSyntaxErrors(diags []diagnostic.Diagnostic) bool {
	for _, d := range diags {
		if d.Rule == diagnostic.RuleParse {
			return true
		}
	}
	return false
}

// collectPaths expands directories into the supported files below them.
// Files named explicitly must have a supported extension unless
// skipUnsupported is set, in which case they are left out.
func collectPaths(ctx context.Context, args []string, skipUnsupported bool) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if !codebase.Supported(arg) {
				if skipUnsupported {
					continue
				}
				return nil, fmt.Errorf("%w: %s", codebase.ErrUnsupportedFile, arg)
			}
			paths = append(paths, arg)
			continue
		}
		found, err := codebase.SourceFiles(ctx, arg)
		if err != nil {
			return nil, err
		}
		paths = append(paths, found...)
	}
	return paths, nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
