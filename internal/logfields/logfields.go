package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyDocument   = "document"
	KeyStage      = "stage"
	KeyTool       = "tool"
	KeyPath       = "path"
	KeyFile       = "file"
	KeyDir        = "dir"
	KeyArtifact   = "artifact"
	KeyBuildID    = "build_id"
	KeyRevision   = "revision"
	KeyPasses     = "passes"
	KeyWarnings   = "warnings"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Document(name string) slog.Attr  { return slog.String(KeyDocument, name) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Tool(name string) slog.Attr      { return slog.String(KeyTool, name) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func File(f string) slog.Attr         { return slog.String(KeyFile, f) }
func Dir(d string) slog.Attr          { return slog.String(KeyDir, d) }
func Artifact(a string) slog.Attr     { return slog.String(KeyArtifact, a) }
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Revision(r string) slog.Attr     { return slog.String(KeyRevision, r) }
func Passes(n int) slog.Attr          { return slog.Int(KeyPasses, n) }
func Warnings(n int) slog.Attr        { return slog.Int(KeyWarnings, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
