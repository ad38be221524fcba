package config

import "strings"

// Default values applied to unset configuration fields.
const (
	DefaultClassName = "book"
	DefaultSourceDir = "."
	DefaultBaseName  = "base"
	DefaultLatex     = "latex"
	DefaultBibtex    = "bibtex"
	DefaultArtifact  = "dvi"
)

// applyDefaults fills unset fields with their defaults and normalizes values
// that may be written in several equivalent forms. Unknown scm modes are left
// untouched for validation to reject.
func applyDefaults(cfg *Config) {
	applyDocumentDefaults(&cfg.Document)
	applyPathsDefaults(&cfg.Paths)
	applyToolchainDefaults(&cfg.Toolchain)
	applySCMDefaults(&cfg.SCM)
}

func applyDocumentDefaults(doc *DocumentConfig) {
	if len(doc.Classes) == 0 {
		doc.Classes = []ClassSpec{
			{Name: DefaultClassName, Options: []string{"11pt", "a4paper"}},
		}
	}

	// Content entries are include stems; strip conventional extensions so
	// "intro" and "intro.tex" configure the same fragment.
	for i, name := range doc.MainContent {
		doc.MainContent[i] = stripExt(name, ".tex")
	}
	for i, name := range doc.Appendices {
		doc.Appendices[i] = stripExt(name, ".tex")
	}
	for i := range doc.Bibliographies {
		doc.Bibliographies[i].File = stripExt(doc.Bibliographies[i].File, ".bib")
	}
}

func applyPathsDefaults(paths *PathsConfig) {
	if paths.SourceDir == "" {
		paths.SourceDir = DefaultSourceDir
	}
	if paths.BaseName == "" {
		paths.BaseName = DefaultBaseName
	}
	paths.BaseName = stripExt(paths.BaseName, ".tex")
}

func applyToolchainDefaults(tc *ToolchainConfig) {
	if tc.Latex == "" {
		tc.Latex = DefaultLatex
	}
	if tc.Bibtex == "" {
		tc.Bibtex = DefaultBibtex
	}
	if tc.Artifact == "" {
		tc.Artifact = DefaultArtifact
	}
	tc.Artifact = strings.TrimPrefix(tc.Artifact, ".")
}

func applySCMDefaults(scm *SCMConfig) {
	if scm.Mode == "" {
		scm.Mode = SCMModeAuto
		return
	}
	if mode := NormalizeSCMMode(string(scm.Mode)); mode != "" {
		scm.Mode = mode
	}
}
