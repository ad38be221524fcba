// Package toolchain invokes the external TeX executables and scrapes their
// console output for warning lines. The tools run synchronously in the build
// directory and leave their own working files (aux, log, toc) behind; the
// runner only reads the captured text, never those files.
package toolchain

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/texbuilder/internal/console"
	"git.home.luguber.info/inful/texbuilder/internal/logfields"
)

// Warning signatures per tool. A line counts as a warning when it starts
// with one of these prefixes.
var (
	latexWarningPrefixes  = []string{"Overfull", "Underfull", "No file"}
	bibtexWarningPrefixes = []string{"I found no", "I couldn't open"}
)

// rerunPattern matches warnings about missing auxiliary files. Their absence
// on a first pass means cross-references were unresolved.
var rerunPattern = regexp.MustCompile(`No file.*\.(aux|toc)`)

// invokeFunc abstracts the subprocess call so runners can be tested against
// canned tool output.
type invokeFunc func(ctx context.Context, dir, executable, input string) ([]byte, error)

func defaultInvoke(ctx context.Context, dir, executable, input string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, executable, input)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// Runner invokes one external tool on an input file derived from the
// document basename and filters the captured output against the tool's
// warning signature.
type Runner struct {
	name       string
	executable string
	inputExt   string
	prefixes   []string
	look       func(string) (string, error)
	invoke     invokeFunc
	console    *console.Console
}

// NewLaTeX creates a runner for the typesetting tool. It reads base.tex.
func NewLaTeX(executable string, con *console.Console) *Runner {
	return newRunner("LaTeX", executable, ".tex", latexWarningPrefixes, con)
}

// NewBibTeX creates a runner for the bibliography tool. It reads base.aux,
// so a typesetting pass must have run first.
func NewBibTeX(executable string, con *console.Console) *Runner {
	return newRunner("BibTeX", executable, ".aux", bibtexWarningPrefixes, con)
}

func newRunner(name, executable, inputExt string, prefixes []string, con *console.Console) *Runner {
	if con == nil {
		con = console.Default()
	}
	return &Runner{
		name:       name,
		executable: executable,
		inputExt:   inputExt,
		prefixes:   prefixes,
		look:       exec.LookPath,
		invoke:     defaultInvoke,
		console:    con,
	}
}

// Name returns the tool's display name.
func (r *Runner) Name() string { return r.name }

// Result captures one tool invocation: the raw combined output and the
// warning lines filtered from it, in output order. Warnings are rebuilt on
// every invocation and never persisted.
type Result struct {
	Tool     string
	Input    string
	Output   string
	Warnings []string
}

// NeedsSecondPass reports whether any warning names a missing aux/toc file,
// in which case one more pass will pick up the files this pass wrote.
func (res *Result) NeedsSecondPass() bool {
	for _, warning := range res.Warnings {
		if rerunPattern.MatchString(warning) {
			return true
		}
	}
	return false
}

// Run invokes the tool once on base plus the tool's input extension inside
// dir. A missing input file reports a console error and returns without
// invoking the tool; a missing executable returns after logging. Warnings
// from the captured output are printed unless silent is set.
//
// The tools exit non-zero for conditions they recover from, so a non-zero
// exit that still produced output is scraped rather than failed.
func (r *Runner) Run(ctx context.Context, dir, base string, silent bool) (*Result, error) {
	input := base + r.inputExt

	if _, err := os.Stat(filepath.Join(dir, input)); err != nil {
		r.console.Error("%s does not exist", input)
		return nil, fmt.Errorf("%w: %s", ErrInputMissing, input)
	}

	if _, err := r.look(r.executable); err != nil {
		slog.Warn("Tool not found on PATH, skipping invocation", logfields.Tool(r.executable))
		return nil, fmt.Errorf("%w: %s: %w", ErrToolNotFound, r.executable, err)
	}

	slog.Debug("Invoking tool", logfields.Tool(r.executable), logfields.File(input), logfields.Dir(dir))
	output, err := r.invoke(ctx, dir, r.executable, input)
	if err != nil && len(output) == 0 {
		return nil, fmt.Errorf("%w: %s: %w", ErrExecutionFailed, r.executable, err)
	}
	if err != nil {
		slog.Debug("Tool exited non-zero, scraping output anyway", logfields.Tool(r.executable), logfields.Error(err))
	}

	result := &Result{
		Tool:     r.name,
		Input:    input,
		Output:   string(output),
		Warnings: r.filterWarnings(string(output)),
	}
	slog.Debug("Tool finished", logfields.Tool(r.executable), logfields.Warnings(len(result.Warnings)))

	if !silent {
		r.Report(result)
	}
	return result, nil
}

// Report prints every warning line from a past invocation to the console.
// The build uses this to surface the final pass's warnings after running the
// earlier passes silently.
func (r *Runner) Report(result *Result) {
	for _, warning := range result.Warnings {
		r.console.Warning("%s", warning)
	}
}

func (r *Runner) filterWarnings(output string) []string {
	var warnings []string
	for _, line := range strings.Split(output, "\n") {
		for _, prefix := range r.prefixes {
			if strings.HasPrefix(line, prefix) {
				warnings = append(warnings, line)
				break
			}
		}
	}
	return warnings
}
