package build

import (
	"context"
	"log/slog"
	"sync"

	"git.home.luguber.info/inful/texbuilder/internal/config"
	"git.home.luguber.info/inful/texbuilder/internal/console"
	"git.home.luguber.info/inful/texbuilder/internal/logfields"
	"git.home.luguber.info/inful/texbuilder/internal/metrics"
	"git.home.luguber.info/inful/texbuilder/internal/toolchain"
)

// PassRunner abstracts the typesetting tool driver so tests can substitute
// a scripted implementation.
type PassRunner interface {
	Run(ctx context.Context, dir, base string, silent bool) (*toolchain.Result, error)
	Report(result *toolchain.Result)
	Name() string
}

// Builder orchestrates the staged document build.
type Builder struct {
	cfg      *config.Config
	latex    PassRunner
	console  *console.Console
	recorder metrics.Recorder

	versionOnce sync.Once
	toolVersion string
}

// New constructs a Builder for the given configuration. Console output goes
// to con; pass nil for stdout.
func New(cfg *config.Config, con *console.Console) *Builder {
	if con == nil {
		con = console.Default()
	}
	b := &Builder{
		cfg:      cfg,
		console:  con,
		recorder: metrics.NoopRecorder{},
	}
	if cfg != nil {
		b.latex = toolchain.NewLaTeX(cfg.Toolchain.Latex, con)
	}
	return b
}

// SetRecorder injects a metrics recorder (optional). Returns the builder for chaining.
func (b *Builder) SetRecorder(r metrics.Recorder) *Builder {
	if r == nil {
		b.recorder = metrics.NoopRecorder{}
		return b
	}
	b.recorder = r
	return b
}

// WithRunner replaces the typesetting tool driver. Returns the builder for chaining.
func (b *Builder) WithRunner(r PassRunner) *Builder {
	b.latex = r
	return b
}

// Run executes the build pipeline and returns its report. The error is the
// first fatal or canceled stage error; the report is populated either way.
func (b *Builder) Run(ctx context.Context) (*Report, error) {
	if b.cfg == nil {
		return nil, ErrNoDocument
	}
	slog.Info("Starting document build",
		logfields.Artifact(b.cfg.ArtifactName()),
		logfields.Dir(b.cfg.WorkDir()))

	report := newReport(b.cfg)
	b.captureToolVersion(ctx, report)
	bs := newBuildState(b, report)

	stages := NewPipeline().
		AddIf(b.cfg.Paths.BuildDir != "", StagePrepareDir, stagePrepareDir).
		Add(StageWriteBase, stageWriteBase).
		Add(StageVerifySources, stageVerifySources).
		Add(StageLatexPass, stageLatexPass).
		Add(StageSecondPass, stageSecondPass).
		Add(StageReportFeedback, stageReportFeedback).
		Add(StageFinalize, stageFinalize).
		Build()

	err := runStages(ctx, bs, stages)
	report.Passes = bs.Passes
	report.deriveOutcome()
	report.finish()

	// Persist the report next to the artifact unless the build aborted; an
	// aborted run must leave any previous report in place.
	if err == nil {
		if perr := report.Persist(b.cfg.WorkDir()); perr != nil {
			slog.Warn("Failed to persist build report", logfields.Error(perr))
		}
	}

	b.recorder.ObserveBuildDuration(report.End.Sub(report.Start))
	b.recorder.IncBuildOutcome(string(report.Outcome))

	slog.Info("Document build completed",
		logfields.BuildID(report.BuildID),
		logfields.Artifact(report.Document),
		logfields.Passes(report.Passes),
		logfields.Warnings(len(report.ToolWarnings)),
		slog.String("outcome", string(report.Outcome)))
	return report, err
}

// captureToolVersion detects the typesetting tool version once per Builder
// lifetime and stamps it into the report. An undetectable version is not a
// build problem; the report simply omits it.
func (b *Builder) captureToolVersion(ctx context.Context, report *Report) {
	b.versionOnce.Do(func() {
		b.toolVersion = toolchain.DetectVersion(ctx, b.cfg.Toolchain.Latex)
	})
	if b.toolVersion != "" {
		report.ToolVersions[b.latex.Name()] = b.toolVersion
	}
}
