// Package document renders the master LaTeX document from a document
// description. Rendering is deterministic: the same description always
// produces byte-identical output, so regenerating an unchanged document
// never dirties the build tree.
package document

import (
	"bytes"
	"fmt"
	"os"

	"git.home.luguber.info/inful/texbuilder/internal/config"
)

// Render produces the master document text for the given description.
func Render(doc config.DocumentConfig) (string, error) {
	var buf bytes.Buffer
	if err := baseTemplate.Execute(&buf, doc); err != nil {
		return "", fmt.Errorf("render document: %w", err)
	}
	return buf.String(), nil
}

// WriteFile renders the master document and writes it to path.
func WriteFile(path string, doc config.DocumentConfig) error {
	text, err := Render(doc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return fmt.Errorf("write document %s: %w", path, err)
	}
	return nil
}
