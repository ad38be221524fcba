package scm

import "fmt"

// ParseError reports that a client's output did not contain an expected
// field. Client output formats drift across versions and locales, and there
// is no fallback extraction; the raw output is carried for diagnosis.
type ParseError struct {
	Tool   string
	Field  string
	Output string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s output missing %q field", e.Tool, e.Field)
}
