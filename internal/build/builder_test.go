package build

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/texbuilder/internal/config"
	"git.home.luguber.info/inful/texbuilder/internal/console"
	"git.home.luguber.info/inful/texbuilder/internal/metrics"
	"git.home.luguber.info/inful/texbuilder/internal/toolchain"
)

// fakeRunner is a scripted PassRunner. Each call consumes the next entry of
// results/errs; missing entries mean a clean pass.
type fakeRunner struct {
	results  []*toolchain.Result
	errs     []error
	calls    int
	silents  []bool
	reported []*toolchain.Result
}

func (f *fakeRunner) Run(_ context.Context, _, _ string, silent bool) (*toolchain.Result, error) {
	i := f.calls
	f.calls++
	f.silents = append(f.silents, silent)
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i < len(f.results) && f.results[i] != nil {
		return f.results[i], nil
	}
	return &toolchain.Result{Tool: "latex", Input: "base.tex"}, nil
}

func (f *fakeRunner) Report(result *toolchain.Result) { f.reported = append(f.reported, result) }
func (f *fakeRunner) Name() string                    { return "latex" }

func passResult(warnings ...string) *toolchain.Result {
	return &toolchain.Result{Tool: "latex", Input: "base.tex", Warnings: warnings}
}

func testConfig(dir string) *config.Config {
	return config.NewBuilder().
		Title("Test Document").
		MainContent("intro").
		SourceDir(dir).
		Build()
}

func writeSource(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("\\section{"+name+"}\n"), 0644))
}

func newTestBuilder(cfg *config.Config, runner PassRunner) (*Builder, *bytes.Buffer) {
	var out bytes.Buffer
	b := New(cfg, console.New(&out)).WithRunner(runner)
	return b, &out
}

func TestRunAbortsWhenSourceMissing(t *testing.T) {
	dir := t.TempDir()
	runner := &fakeRunner{}
	b, out := newTestBuilder(testConfig(dir), runner)

	report, err := b.Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceMissing)
	assert.Equal(t, 0, runner.calls, "typesetting tool must not be invoked when a source is missing")
	require.NotNil(t, report)
	assert.Equal(t, OutcomeFailed, report.Outcome)
	assert.Equal(t, 0, report.Passes)
	assert.Contains(t, out.String(), "  * intro.tex does not exist\n")
	assert.NotContains(t, out.String(), "Built ")
}

func TestRunSinglePassWhenNoRerunNeeded(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "intro.tex")
	runner := &fakeRunner{results: []*toolchain.Result{
		passResult("Overfull \\hbox (12.0pt too wide) in paragraph"),
	}}
	b, out := newTestBuilder(testConfig(dir), runner)

	report, err := b.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, runner.calls)
	assert.Equal(t, 1, report.Passes)
	assert.Equal(t, []bool{true}, runner.silents, "passes run silently; feedback is replayed afterwards")
	assert.Equal(t, OutcomeWarnings, report.Outcome)
	assert.Equal(t, []string{"Overfull \\hbox (12.0pt too wide) in paragraph"}, report.ToolWarnings)
	assert.Contains(t, out.String(), "Built base.dvi in "+dir)
}

func TestRunSecondPassOnMissingAuxFile(t *testing.T) {
	for _, warning := range []string{"No file base.aux.", "No file base.toc."} {
		t.Run(warning, func(t *testing.T) {
			dir := t.TempDir()
			writeSource(t, dir, "intro.tex")
			runner := &fakeRunner{results: []*toolchain.Result{
				passResult(warning),
				passResult(),
			}}
			b, _ := newTestBuilder(testConfig(dir), runner)

			report, err := b.Run(context.Background())

			require.NoError(t, err)
			assert.Equal(t, 2, runner.calls, "missing aux/toc triggers exactly one rerun")
			assert.Equal(t, 2, report.Passes)
			assert.Equal(t, []bool{true, true}, runner.silents)
			assert.Equal(t, OutcomeSuccess, report.Outcome, "rerun resolved the warning")
			assert.Empty(t, report.ToolWarnings)
		})
	}
}

func TestRunNeverAttemptsThirdPass(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "intro.tex")
	runner := &fakeRunner{results: []*toolchain.Result{
		passResult("No file base.aux."),
		passResult("No file base.toc."),
	}}
	b, _ := newTestBuilder(testConfig(dir), runner)

	report, err := b.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, runner.calls, "second pass result is never inspected for another rerun")
	assert.Equal(t, []string{"No file base.toc."}, report.ToolWarnings)
	assert.Equal(t, OutcomeWarnings, report.Outcome)
}

func TestRunReplaysFinalPassFeedback(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "intro.tex")
	first := passResult("No file base.aux.")
	second := passResult("Underfull \\vbox (badness 10000) detected")
	runner := &fakeRunner{results: []*toolchain.Result{first, second}}
	b, _ := newTestBuilder(testConfig(dir), runner)

	report, err := b.Run(context.Background())

	require.NoError(t, err)
	require.Len(t, runner.reported, 1)
	assert.Same(t, second, runner.reported[0], "only the final pass is replayed")
	assert.Equal(t, []string{"Underfull \\vbox (badness 10000) detected"}, report.ToolWarnings)
}

func TestRunMissingToolDegradesToWarning(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "intro.tex")
	runner := &fakeRunner{errs: []error{fmt.Errorf("%w: latex", toolchain.ErrToolNotFound)}}
	b, out := newTestBuilder(testConfig(dir), runner)

	report, err := b.Run(context.Background())

	require.NoError(t, err, "an absent tool does not abort the build")
	assert.Equal(t, 1, runner.calls)
	assert.Equal(t, 0, report.Passes)
	assert.Equal(t, OutcomeWarnings, report.Outcome)
	assert.Empty(t, runner.reported, "no pass ran, nothing to replay")
	assert.Contains(t, out.String(), "Built base.dvi in "+dir)
}

func TestRunWritesBaseDocument(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "intro.tex")
	b, _ := newTestBuilder(testConfig(dir), &fakeRunner{})

	_, err := b.Run(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "base.tex"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "\\begin{document}")
	assert.Contains(t, string(data), "\\include{intro}")
}

func TestRunCopiesSourcesIntoBuildDir(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	writeSource(t, src, "intro.tex")
	writeSource(t, src, "refs.bib")
	writeSource(t, src, "thesis.sty")
	require.NoError(t, os.WriteFile(filepath.Join(src, "notes.txt"), []byte("scratch"), 0644))

	cfg := config.NewBuilder().
		Title("Test Document").
		MainContent("intro").
		SourceDir(src).
		BuildDir(out).
		Build()
	b, conOut := newTestBuilder(cfg, &fakeRunner{})

	report, err := b.Run(context.Background())
	require.NoError(t, err)

	for _, name := range []string{"intro.tex", "refs.bib", "thesis.sty", "base.tex"} {
		_, statErr := os.Stat(filepath.Join(out, name))
		assert.NoError(t, statErr, name)
	}
	_, statErr := os.Stat(filepath.Join(out, "notes.txt"))
	assert.True(t, os.IsNotExist(statErr), "only tex/bib/sty files are copied")

	assert.Contains(t, report.StageDurations, string(StagePrepareDir))
	assert.Contains(t, conOut.String(), "Built base.dvi in "+out)
}

func TestRunSkipsPrepareStageWithoutBuildDir(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "intro.tex")
	b, _ := newTestBuilder(testConfig(dir), &fakeRunner{})

	report, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, report.StageDurations, string(StagePrepareDir))
}

func TestRunPersistsReportOnSuccess(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "intro.tex")
	b, _ := newTestBuilder(testConfig(dir), &fakeRunner{})

	report, err := b.Run(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "build-report.json"))
	require.NoError(t, err)
	var persisted ReportSerializable
	require.NoError(t, json.Unmarshal(data, &persisted))
	assert.Equal(t, 1, persisted.SchemaVersion)
	assert.Equal(t, report.BuildID, persisted.BuildID)
	assert.Equal(t, "success", persisted.Outcome)
	assert.Equal(t, 1, persisted.Passes)

	summary, err := os.ReadFile(filepath.Join(dir, "build-report.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(summary), "outcome=success")
}

func TestRunAbortedBuildLeavesPreviousReport(t *testing.T) {
	dir := t.TempDir()
	marker := []byte(`{"build_id":"previous"}`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "build-report.json"), marker, 0644))

	b, _ := newTestBuilder(testConfig(dir), &fakeRunner{})
	_, err := b.Run(context.Background())
	require.Error(t, err)

	data, readErr := os.ReadFile(filepath.Join(dir, "build-report.json"))
	require.NoError(t, readErr)
	assert.Equal(t, marker, data, "aborted builds must not clobber the last good report")
}

func TestRunCanceledContext(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "intro.tex")
	runner := &fakeRunner{}
	b, _ := newTestBuilder(testConfig(dir), runner)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report, err := b.Run(ctx)

	require.Error(t, err)
	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageErrorCanceled, se.Kind)
	assert.Equal(t, OutcomeCanceled, report.Outcome)
	assert.Equal(t, 0, runner.calls)
}

func TestRunNilConfig(t *testing.T) {
	b := New(nil, console.New(&bytes.Buffer{}))
	_, err := b.Run(context.Background())
	assert.ErrorIs(t, err, ErrNoDocument)
}

// capturingRecorder records metric emissions for assertions.
type capturingRecorder struct {
	stages       map[string]int
	results      map[string]int
	outcomes     []string
	toolPasses   int
	toolWarnings int
	buildsTimed  int
}

func newCapturingRecorder() *capturingRecorder {
	return &capturingRecorder{stages: map[string]int{}, results: map[string]int{}}
}

func (c *capturingRecorder) ObserveStageDuration(stage string, _ time.Duration) { c.stages[stage]++ }
func (c *capturingRecorder) ObserveBuildDuration(time.Duration)                 { c.buildsTimed++ }
func (c *capturingRecorder) IncStageResult(stage string, result metrics.ResultLabel) {
	c.results[stage+"/"+string(result)]++
}
func (c *capturingRecorder) IncBuildOutcome(outcome string) { c.outcomes = append(c.outcomes, outcome) }
func (c *capturingRecorder) IncToolPass(string)             { c.toolPasses++ }
func (c *capturingRecorder) AddToolWarnings(_ string, n int) { c.toolWarnings += n }

func TestRunEmitsMetrics(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "intro.tex")
	runner := &fakeRunner{results: []*toolchain.Result{
		passResult("No file base.aux."),
		passResult("Overfull \\hbox (3.0pt too wide)"),
	}}
	rec := newCapturingRecorder()
	b, _ := newTestBuilder(testConfig(dir), runner)
	b.SetRecorder(rec)

	_, err := b.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, rec.toolPasses)
	assert.Equal(t, 1, rec.toolWarnings)
	assert.Equal(t, 1, rec.buildsTimed)
	assert.Equal(t, []string{"warnings"}, rec.outcomes)
	assert.Equal(t, 1, rec.stages[string(StageLatexPass)])
	assert.Equal(t, 1, rec.results[string(StageFinalize)+"/success"])
}

func TestRunStageTimingsCoverPipeline(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "intro.tex")
	b, _ := newTestBuilder(testConfig(dir), &fakeRunner{})

	report, err := b.Run(context.Background())
	require.NoError(t, err)

	for _, stage := range []StageName{StageWriteBase, StageVerifySources, StageLatexPass, StageSecondPass, StageReportFeedback, StageFinalize} {
		assert.Contains(t, report.StageDurations, string(stage))
	}
	assert.False(t, report.Start.IsZero())
	assert.False(t, report.End.IsZero())
	assert.Contains(t, report.Summary(), "outcome=success")
}
