package document

import (
	"strings"
	"text/template"

	"git.home.luguber.info/inful/texbuilder/internal/config"
)

var baseTemplate = template.Must(template.New("base").Funcs(template.FuncMap{
	"opts":        func(options []string) string { return strings.Join(options, ",") },
	"braced":      func(value string) string { return "{" + value + "}" },
	"authorLines": authorLines,
}).Parse(baseTemplateText))

// authorLines assembles the inside of the \author block: the name first,
// then email and any collected SCM fields, each on its own line. Callers
// guard against a nil Author.
func authorLines(doc config.DocumentConfig) string {
	lines := []string{doc.Author.Name}
	if doc.Author.Email != "" {
		lines = append(lines, doc.Author.Email)
	}
	if doc.SCM != nil {
		for _, field := range []string{doc.SCM.Name, doc.SCM.Revision, doc.SCM.Date} {
			if field != "" {
				lines = append(lines, field)
			}
		}
	}
	return strings.Join(lines, "\\\\\n")
}

// baseTemplateText is the fixed skeleton of the master document. Every
// conditional block is gated by its own field so rendering stays a pure
// function of the document description.
const baseTemplateText = `{{range .Classes -}}
\documentclass[{{opts .Options}}]{{braced .Name}}
{{end -}}
{{range .Packages -}}
\usepackage[{{opts .Options}}]{{braced .Name}}
{{end -}}
{{if .Title -}}
\title{{braced .Title}}
{{if .Author -}}
\author{{braced (authorLines $)}}
{{end -}}
{{end -}}
{{if .PreambleExtras -}}
{{.PreambleExtras}}
{{end -}}
{{if .Abstract -}}
\abstract{{braced .Abstract}}
{{end -}}
{{if .Acknowledgments -}}
\acknowledgments{{braced .Acknowledgments}}
{{end -}}
\begin{document}
\frontmatter
{{if .Title -}}
\maketitle
{{end -}}
{{if .TableOfContents -}}
\tableofcontents
{{end -}}
{{if .ListOfFigures -}}
\listoffigures
{{end -}}
{{if .ListOfTables -}}
\listoftables
{{end -}}
\mainmatter
{{range .MainContent -}}
\include{{braced .}}
{{end -}}
{{if .Appendices -}}
\begin{appendices}
{{range .Appendices -}}
\include{{braced .}}
{{end -}}
\end{appendices}
{{end -}}
\backmatter
{{range .Bibliographies -}}
\bibliographystyle{{braced .Style}}
\bibliography{{braced .File}}
{{end -}}
\end{document}
`
