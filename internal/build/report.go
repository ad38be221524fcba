package build

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/texbuilder/internal/config"
	"git.home.luguber.info/inful/texbuilder/internal/metrics"
)

// BuildOutcome is the typed enumeration of final build result states.
type BuildOutcome string

const (
	OutcomeSuccess  BuildOutcome = "success"
	OutcomeWarnings BuildOutcome = "warnings"
	OutcomeFailed   BuildOutcome = "failed"
	OutcomeCanceled BuildOutcome = "canceled"
)

// Report captures metrics and feedback from a single document build run.
type Report struct {
	SchemaVersion   int    // explicit schema version for forward-compatible consumers
	BuildID         string // unique id, also the key for build history records
	Document        string // artifact name, e.g. base.dvi
	WorkDir         string
	Start           time.Time
	End             time.Time
	Passes          int               // typesetting passes executed (0 when the tool never ran)
	ToolVersions    map[string]string // tool name -> first line of its --version output
	ToolWarnings    []string          // warning lines scraped from the final pass
	Errors          []error           // fatal errors causing build abortion (at most one today)
	Warnings        []error           // non-fatal issues (e.g. tool binary missing)
	StageDurations  map[string]time.Duration
	StageErrorKinds map[StageName]StageErrorKind // stage -> error kind (fatal|warning|canceled)
	StageCounts     map[StageName]StageCount     // per-stage classification counts
	Outcome         BuildOutcome
}

// StageCount aggregates counts of outcomes for a stage.
type StageCount struct {
	Success  int
	Warning  int
	Fatal    int
	Canceled int
}

func newReport(cfg *config.Config) *Report {
	return &Report{
		SchemaVersion:   1,
		BuildID:         uuid.NewString(),
		Document:        cfg.ArtifactName(),
		WorkDir:         cfg.WorkDir(),
		Start:           time.Now(),
		ToolVersions:    make(map[string]string),
		StageDurations:  make(map[string]time.Duration),
		StageErrorKinds: make(map[StageName]StageErrorKind),
		StageCounts:     make(map[StageName]StageCount),
	}
}

func (r *Report) finish() { r.End = time.Now() }

// Summary returns a human-readable single-line summary.
func (r *Report) Summary() string {
	dur := r.End.Sub(r.Start)
	return fmt.Sprintf("document=%s passes=%d duration=%s errors=%d warnings=%d stages=%d outcome=%s",
		r.Document, r.Passes, dur.Truncate(time.Millisecond), len(r.Errors), len(r.Warnings)+len(r.ToolWarnings), len(r.StageDurations), r.Outcome)
}

// deriveOutcome sets the Outcome field based on recorded errors and warnings.
func (r *Report) deriveOutcome() {
	if len(r.Errors) > 0 {
		for _, e := range r.Errors {
			var se *StageError
			if errors.As(e, &se) && se.Kind == StageErrorCanceled {
				r.Outcome = OutcomeCanceled
				return
			}
		}
		r.Outcome = OutcomeFailed
		return
	}
	if len(r.Warnings) > 0 || len(r.ToolWarnings) > 0 {
		r.Outcome = OutcomeWarnings
		return
	}
	r.Outcome = OutcomeSuccess
}

// recordStageResult updates per-stage counters and emits metrics (if recorder non-nil).
func (r *Report) recordStageResult(stage StageName, res metrics.ResultLabel, recorder metrics.Recorder) {
	sc := r.StageCounts[stage]
	switch res {
	case metrics.ResultSuccess:
		sc.Success++
	case metrics.ResultWarning:
		sc.Warning++
	case metrics.ResultFatal:
		sc.Fatal++
	case metrics.ResultCanceled:
		sc.Canceled++
	}
	r.StageCounts[stage] = sc
	if recorder != nil {
		recorder.IncStageResult(string(stage), res)
	}
}

// Persist writes the report atomically into the provided directory.
// It writes two files:
//
//	build-report.json  (machine readable)
//	build-report.txt   (human summary)
//
// Best effort; errors are returned for caller logging but do not change
// build outcome.
func (r *Report) Persist(dir string) error {
	if r.End.IsZero() { // ensure finished
		r.finish()
		r.deriveOutcome()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("ensure report dir: %w", err)
	}
	// JSON
	jb, err := json.MarshalIndent(r.sanitizedCopy(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report json: %w", err)
	}
	jsonPath := filepath.Join(dir, "build-report.json")
	tmpJSON := jsonPath + ".tmp"
	if err := os.WriteFile(tmpJSON, jb, 0644); err != nil {
		return fmt.Errorf("write temp report json: %w", err)
	}
	if err := os.Rename(tmpJSON, jsonPath); err != nil {
		return fmt.Errorf("atomic rename json: %w", err)
	}
	// Text summary
	summaryPath := filepath.Join(dir, "build-report.txt")
	tmpTxt := summaryPath + ".tmp"
	if err := os.WriteFile(tmpTxt, []byte(r.Summary()+"\n"), 0644); err != nil {
		return fmt.Errorf("write temp report summary: %w", err)
	}
	if err := os.Rename(tmpTxt, summaryPath); err != nil {
		return fmt.Errorf("atomic rename summary: %w", err)
	}
	return nil
}

// sanitizedCopy returns a shallow copy with error fields converted to
// strings and typed map keys flattened for JSON stability.
func (r *Report) sanitizedCopy() *ReportSerializable {
	stageCounts := make(map[string]StageCount, len(r.StageCounts))
	for k, v := range r.StageCounts {
		stageCounts[string(k)] = v
	}
	sek := make(map[string]string, len(r.StageErrorKinds))
	for k, v := range r.StageErrorKinds {
		sek[string(k)] = string(v)
	}
	// Ensure non-nil maps so JSON shows {} rather than null.
	if r.StageDurations == nil {
		r.StageDurations = map[string]time.Duration{}
	}
	s := &ReportSerializable{
		SchemaVersion:   r.SchemaVersion,
		BuildID:         r.BuildID,
		Document:        r.Document,
		WorkDir:         r.WorkDir,
		Start:           r.Start,
		End:             r.End,
		Passes:          r.Passes,
		ToolVersions:    r.ToolVersions,
		ToolWarnings:    r.ToolWarnings,
		Errors:          make([]string, len(r.Errors)),
		Warnings:        make([]string, len(r.Warnings)),
		StageDurations:  r.StageDurations,
		StageErrorKinds: sek,
		StageCounts:     stageCounts,
		Outcome:         string(r.Outcome),
	}
	for i, e := range r.Errors {
		s.Errors[i] = e.Error()
	}
	for i, w := range r.Warnings {
		s.Warnings[i] = w.Error()
	}
	return s
}

// ReportSerializable mirrors Report but with string errors for JSON output.
type ReportSerializable struct {
	SchemaVersion   int                      `json:"schema_version"`
	BuildID         string                   `json:"build_id"`
	Document        string                   `json:"document"`
	WorkDir         string                   `json:"work_dir"`
	Start           time.Time                `json:"start"`
	End             time.Time                `json:"end"`
	Passes          int                      `json:"passes"`
	ToolVersions    map[string]string        `json:"tool_versions,omitempty"`
	ToolWarnings    []string                 `json:"tool_warnings"`
	Errors          []string                 `json:"errors"`
	Warnings        []string                 `json:"warnings"`
	StageDurations  map[string]time.Duration `json:"stage_durations"`
	StageErrorKinds map[string]string        `json:"stage_error_kinds"`
	StageCounts     map[string]StageCount    `json:"stage_counts"`
	Outcome         string                   `json:"outcome"`
}
