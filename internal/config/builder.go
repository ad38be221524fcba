package config

import "slices"

// Builder assembles a Config programmatically with the same defaults a
// loaded file receives. Defaults are in place before the first customization
// call, so setters refine a complete configuration rather than filling an
// empty one.
type Builder struct {
	cfg      Config
	classSet bool
}

// NewBuilder returns a Builder seeded with the default configuration.
func NewBuilder() *Builder {
	b := &Builder{}
	applyDefaults(&b.cfg)
	return b
}

// Class declares a document class. The first call replaces the default class
// entry; subsequent calls append additional entries in order.
func (b *Builder) Class(name string, options ...string) *Builder {
	if !b.classSet {
		b.cfg.Document.Classes = nil
		b.classSet = true
	}
	b.cfg.Document.Classes = append(b.cfg.Document.Classes, ClassSpec{Name: name, Options: options})
	return b
}

// Package appends a \usepackage declaration with its options in order.
func (b *Builder) Package(name string, options ...string) *Builder {
	b.cfg.Document.Packages = append(b.cfg.Document.Packages, PackageSpec{Name: name, Options: options})
	return b
}

// Title sets the document title.
func (b *Builder) Title(title string) *Builder {
	b.cfg.Document.Title = title
	return b
}

// Author sets the document author. Pass an empty email to omit the email
// line from the author block.
func (b *Builder) Author(name, email string) *Builder {
	b.cfg.Document.Author = &AuthorSpec{Name: name, Email: email}
	return b
}

// SCM pins the revision snapshot rendered into the author block, bypassing
// collection from the working copy.
func (b *Builder) SCM(info SCMInfo) *Builder {
	b.cfg.Document.SCM = &info
	return b
}

// PreambleExtras sets free-form preamble text emitted verbatim after the
// package declarations.
func (b *Builder) PreambleExtras(text string) *Builder {
	b.cfg.Document.PreambleExtras = text
	return b
}

// Abstract sets the abstract text.
func (b *Builder) Abstract(text string) *Builder {
	b.cfg.Document.Abstract = text
	return b
}

// Acknowledgments sets the acknowledgments text.
func (b *Builder) Acknowledgments(text string) *Builder {
	b.cfg.Document.Acknowledgments = text
	return b
}

// TableOfContents toggles the table of contents.
func (b *Builder) TableOfContents(on bool) *Builder {
	b.cfg.Document.TableOfContents = on
	return b
}

// ListOfFigures toggles the list of figures.
func (b *Builder) ListOfFigures(on bool) *Builder {
	b.cfg.Document.ListOfFigures = on
	return b
}

// ListOfTables toggles the list of tables.
func (b *Builder) ListOfTables(on bool) *Builder {
	b.cfg.Document.ListOfTables = on
	return b
}

// MainContent appends content fragments in document order.
func (b *Builder) MainContent(names ...string) *Builder {
	b.cfg.Document.MainContent = append(b.cfg.Document.MainContent, names...)
	return b
}

// Appendices appends appendix fragments in document order.
func (b *Builder) Appendices(names ...string) *Builder {
	b.cfg.Document.Appendices = append(b.cfg.Document.Appendices, names...)
	return b
}

// Bibliography appends a bibliography database with its citation style.
func (b *Builder) Bibliography(file, style string) *Builder {
	b.cfg.Document.Bibliographies = append(b.cfg.Document.Bibliographies, Bibliography{File: file, Style: style})
	return b
}

// SourceDir sets the source directory.
func (b *Builder) SourceDir(dir string) *Builder {
	b.cfg.Paths.SourceDir = dir
	return b
}

// BuildDir sets the build directory. Builds run in place when unset.
func (b *Builder) BuildDir(dir string) *Builder {
	b.cfg.Paths.BuildDir = dir
	return b
}

// BaseName sets the basename of the generated master document.
func (b *Builder) BaseName(name string) *Builder {
	b.cfg.Paths.BaseName = name
	return b
}

// Latex sets the typesetting executable.
func (b *Builder) Latex(executable string) *Builder {
	b.cfg.Toolchain.Latex = executable
	return b
}

// Bibtex sets the bibliography executable.
func (b *Builder) Bibtex(executable string) *Builder {
	b.cfg.Toolchain.Bibtex = executable
	return b
}

// Artifact sets the artifact extension the typesetting tool produces.
func (b *Builder) Artifact(ext string) *Builder {
	b.cfg.Toolchain.Artifact = ext
	return b
}

// SCMMode selects the version control client used for revision metadata.
func (b *Builder) SCMMode(mode SCMMode) *Builder {
	b.cfg.SCM.Mode = mode
	return b
}

// DisableHistory turns off build history recording.
func (b *Builder) DisableHistory() *Builder {
	b.cfg.History.Disabled = true
	return b
}

// HistoryPath sets the build history database path.
func (b *Builder) HistoryPath(path string) *Builder {
	b.cfg.History.Path = path
	return b
}

// Build finalizes the configuration, re-applying defaults for any field a
// setter blanked out, and returns it. The result is detached from the
// builder: later setter calls never reach into a previously built Config.
func (b *Builder) Build() *Config {
	applyDefaults(&b.cfg)
	cfg := b.cfg
	cfg.Document = cloneDocument(b.cfg.Document)
	return &cfg
}

// cloneDocument deep-copies the slice and pointer fields; everything outside
// Document is plain values and copies with the struct.
func cloneDocument(d DocumentConfig) DocumentConfig {
	out := d
	out.Classes = slices.Clone(d.Classes)
	for i := range out.Classes {
		out.Classes[i].Options = slices.Clone(out.Classes[i].Options)
	}
	out.Packages = slices.Clone(d.Packages)
	for i := range out.Packages {
		out.Packages[i].Options = slices.Clone(out.Packages[i].Options)
	}
	if d.Author != nil {
		author := *d.Author
		out.Author = &author
	}
	if d.SCM != nil {
		info := *d.SCM
		out.SCM = &info
	}
	out.MainContent = slices.Clone(d.MainContent)
	out.Appendices = slices.Clone(d.Appendices)
	out.Bibliographies = slices.Clone(d.Bibliographies)
	return out
}
