package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/texbuilder/internal/document"
	"git.home.luguber.info/inful/texbuilder/internal/logfields"
	"git.home.luguber.info/inful/texbuilder/internal/metrics"
	"git.home.luguber.info/inful/texbuilder/internal/toolchain"
)

// Stage is a discrete unit of work in the document build.
type Stage func(ctx context.Context, bs *BuildState) error

// StageErrorKind enumerates structured stage error categories.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"    // Build must abort.
	StageErrorWarning  StageErrorKind = "warning"  // Non-fatal; record and continue.
	StageErrorCanceled StageErrorKind = "canceled" // Context cancellation.
)

// StageError is a structured error carrying category and underlying cause.
type StageError struct {
	Kind  StageErrorKind
	Stage string
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

// Helpers to classify errors.
func newFatalStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorFatal, Stage: string(stage), Err: err}
}
func newWarnStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorWarning, Stage: string(stage), Err: err}
}
func newCanceledStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorCanceled, Stage: string(stage), Err: err}
}

// BuildState carries mutable state and metrics across stages.
type BuildState struct {
	Builder  *Builder
	Report   *Report
	LastPass *toolchain.Result // most recent typesetting pass, nil until one ran
	Passes   int
	Timings  map[string]time.Duration
	start    time.Time
}

// newBuildState constructs a BuildState.
func newBuildState(b *Builder, report *Report) *BuildState {
	return &BuildState{
		Builder: b,
		Report:  report,
		Timings: make(map[string]time.Duration),
		start:   time.Now(),
	}
}

// Pipeline assembles an ordered stage list.
type Pipeline struct{ defs []StageDef }

// NewPipeline creates an empty pipeline.
func NewPipeline() *Pipeline { return &Pipeline{defs: make([]StageDef, 0, 8)} }

// Add appends a stage unconditionally.
func (p *Pipeline) Add(name StageName, fn Stage) *Pipeline {
	p.defs = append(p.defs, StageDef{Name: name, Fn: fn})
	return p
}

// AddIf appends a stage only if cond is true.
func (p *Pipeline) AddIf(cond bool, name StageName, fn Stage) *Pipeline {
	if cond {
		p.Add(name, fn)
	}
	return p
}

// Build returns a defensive copy of the stage definitions slice.
func (p *Pipeline) Build() []StageDef {
	out := make([]StageDef, len(p.defs))
	copy(out, p.defs)
	return out
}

// runStages executes stages in order, recording timing and stopping on the
// first fatal or canceled error. Warning-classified errors are recorded and
// execution continues.
func runStages(ctx context.Context, bs *BuildState, stages []StageDef) error {
	rec := bs.Builder.recorder
	for _, st := range stages {
		select {
		case <-ctx.Done():
			se := newCanceledStageError(st.Name, ctx.Err())
			bs.Report.Errors = append(bs.Report.Errors, se)
			bs.Report.StageErrorKinds[st.Name] = se.Kind
			bs.Report.recordStageResult(st.Name, metrics.ResultCanceled, rec)
			return se
		default:
		}
		t0 := time.Now()
		err := st.Fn(ctx, bs)
		dur := time.Since(t0)
		bs.Timings[string(st.Name)] = dur
		bs.Report.StageDurations[string(st.Name)] = dur
		rec.ObserveStageDuration(string(st.Name), dur)
		if err == nil {
			bs.Report.recordStageResult(st.Name, metrics.ResultSuccess, rec)
			continue
		}
		var se *StageError
		if !errors.As(err, &se) {
			// Wrap unknown errors as fatal by default.
			se = newFatalStageError(st.Name, err)
		}
		bs.Report.StageErrorKinds[st.Name] = se.Kind
		switch se.Kind {
		case StageErrorWarning:
			bs.Report.Warnings = append(bs.Report.Warnings, se)
			bs.Report.recordStageResult(st.Name, metrics.ResultWarning, rec)
			continue
		case StageErrorCanceled:
			bs.Report.Errors = append(bs.Report.Errors, se)
			bs.Report.recordStageResult(st.Name, metrics.ResultCanceled, rec)
			return se
		default:
			bs.Report.Errors = append(bs.Report.Errors, se)
			bs.Report.recordStageResult(st.Name, metrics.ResultFatal, rec)
			return se
		}
	}
	return nil
}

// Individual stage implementations.

// stagePrepareDir ensures the build directory exists and copies the flat
// source set into it. The pipeline only includes this stage when a build
// directory distinct from the source tree is configured.
func stagePrepareDir(ctx context.Context, bs *BuildState) error {
	cfg := bs.Builder.cfg
	src, dst := cfg.Paths.SourceDir, cfg.WorkDir()
	if err := os.MkdirAll(dst, 0755); err != nil {
		return newFatalStageError(StagePrepareDir, fmt.Errorf("create build dir: %w", err))
	}
	if filepath.Clean(src) == filepath.Clean(dst) {
		return nil
	}
	if err := copySources(src, dst); err != nil {
		return newFatalStageError(StagePrepareDir, err)
	}
	return nil
}

// stageWriteBase renders the base document from configuration and writes it
// into the work directory, replacing any copied stale version.
func stageWriteBase(ctx context.Context, bs *BuildState) error {
	cfg := bs.Builder.cfg
	if err := document.WriteFile(cfg.BasePath(), cfg.Document); err != nil {
		return newFatalStageError(StageWriteBase, fmt.Errorf("write base document: %w", err))
	}
	slog.Debug("Base document written", logfields.Path(cfg.BasePath()))
	return nil
}

// stageVerifySources checks every declared source file and aborts on the
// first missing one. This is a hard precondition for the typesetting
// passes, not a retry condition.
func stageVerifySources(ctx context.Context, bs *BuildState) error {
	cfg := bs.Builder.cfg
	for _, name := range cfg.Document.SourceFiles() {
		if _, err := os.Stat(filepath.Join(cfg.WorkDir(), name)); err != nil {
			bs.Builder.console.Error("%s does not exist", name)
			return newFatalStageError(StageVerifySources, fmt.Errorf("%w: %s", ErrSourceMissing, name))
		}
	}
	return nil
}

// stageLatexPass runs the first typesetting pass silently; feedback is
// replayed from whichever pass ends up being the last. A missing or failing
// tool degrades the build to a warning instead of aborting it.
func stageLatexPass(ctx context.Context, bs *BuildState) error {
	b := bs.Builder
	result, err := b.latex.Run(ctx, b.cfg.WorkDir(), b.cfg.Paths.BaseName, true)
	if err != nil {
		return newWarnStageError(StageLatexPass, err)
	}
	bs.LastPass = result
	bs.Passes++
	b.recorder.IncToolPass(b.latex.Name())
	return nil
}

// stageSecondPass reruns the tool when the first pass reported a missing
// aux or toc file. At most one rerun happens; warnings that persist after
// it are reported, not resolved.
func stageSecondPass(ctx context.Context, bs *BuildState) error {
	if bs.LastPass == nil || !bs.LastPass.NeedsSecondPass() {
		return nil
	}
	b := bs.Builder
	slog.Debug("Rerunning tool to resolve auxiliary files", logfields.Tool(b.latex.Name()))
	result, err := b.latex.Run(ctx, b.cfg.WorkDir(), b.cfg.Paths.BaseName, true)
	if err != nil {
		return newWarnStageError(StageSecondPass, err)
	}
	bs.LastPass = result
	bs.Passes++
	b.recorder.IncToolPass(b.latex.Name())
	return nil
}

// stageReportFeedback replays the warning lines from the final pass
// non-silently and records them in the report.
func stageReportFeedback(ctx context.Context, bs *BuildState) error {
	if bs.LastPass == nil {
		return nil
	}
	b := bs.Builder
	b.latex.Report(bs.LastPass)
	bs.Report.ToolWarnings = append(bs.Report.ToolWarnings, bs.LastPass.Warnings...)
	b.recorder.AddToolWarnings(bs.LastPass.Tool, len(bs.LastPass.Warnings))
	return nil
}

// stageFinalize announces the completed build.
func stageFinalize(ctx context.Context, bs *BuildState) error {
	cfg := bs.Builder.cfg
	bs.Builder.console.Notice("Built %s in %s", cfg.ArtifactName(), cfg.WorkDir())
	return nil
}
