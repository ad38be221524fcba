package build

// StageName is a strongly-typed identifier for a build stage. All canonical
// stages are declared as constants here for compile-time safety.
type StageName string

// Canonical stage names, in pipeline order.
const (
	StagePrepareDir     StageName = "prepare_dir"
	StageWriteBase      StageName = "write_base"
	StageVerifySources  StageName = "verify_sources"
	StageLatexPass      StageName = "latex_pass"
	StageSecondPass     StageName = "second_pass"
	StageReportFeedback StageName = "report_feedback"
	StageFinalize       StageName = "finalize"
)

// StageDef pairs a stage name with its executing function.
type StageDef struct {
	Name StageName
	Fn   Stage
}
