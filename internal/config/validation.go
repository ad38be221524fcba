package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ValidateConfig validates the complete configuration structure.
func ValidateConfig(cfg *Config) error {
	validator := newConfigurationValidator(cfg)
	return validator.validate()
}

// configurationValidator coordinates validation across all configuration domains.
type configurationValidator struct {
	config *Config
}

func newConfigurationValidator(config *Config) *configurationValidator {
	return &configurationValidator{config: config}
}

// validate performs configuration validation using domain-specific methods.
func (cv *configurationValidator) validate() error {
	if err := cv.validateDocument(); err != nil {
		return err
	}
	if err := cv.validatePaths(); err != nil {
		return err
	}
	if err := cv.validateToolchain(); err != nil {
		return err
	}
	if err := cv.validateSCM(); err != nil {
		return err
	}
	return nil
}

// validateDocument validates the document description.
func (cv *configurationValidator) validateDocument() error {
	doc := &cv.config.Document

	for _, class := range doc.Classes {
		if class.Name == "" {
			return errors.New("document class name cannot be empty")
		}
	}

	for _, pkg := range doc.Packages {
		if pkg.Name == "" {
			return errors.New("package name cannot be empty")
		}
	}

	if doc.Author != nil && doc.Author.Name == "" {
		return errors.New("author name cannot be empty when author is set")
	}

	// Duplicate include stems produce a LaTeX error at build time; reject
	// them up front with the offending name.
	seen := make(map[string]bool)
	for _, name := range doc.MainContent {
		if seen[name] {
			return fmt.Errorf("duplicate content entry: %s", name)
		}
		seen[name] = true
	}
	for _, name := range doc.Appendices {
		if seen[name] {
			return fmt.Errorf("duplicate content entry: %s", name)
		}
		seen[name] = true
	}

	for _, bib := range doc.Bibliographies {
		if bib.File == "" {
			return errors.New("bibliography file cannot be empty")
		}
		if bib.Style == "" {
			return fmt.Errorf("bibliography %s: citation style cannot be empty", bib.File)
		}
	}

	return nil
}

// validatePaths validates source and build tree locations.
func (cv *configurationValidator) validatePaths() error {
	paths := &cv.config.Paths

	if paths.SourceDir == "" {
		return errors.New("paths.source_dir cannot be empty")
	}
	if paths.BaseName == "" {
		return errors.New("paths.base_name cannot be empty")
	}
	if strings.ContainsRune(paths.BaseName, filepath.Separator) || strings.ContainsRune(paths.BaseName, '/') {
		return fmt.Errorf("paths.base_name must be a bare file name: %s", paths.BaseName)
	}

	return nil
}

// validateToolchain validates the external executable configuration.
func (cv *configurationValidator) validateToolchain() error {
	tc := &cv.config.Toolchain

	if tc.Latex == "" {
		return errors.New("toolchain.latex cannot be empty")
	}
	if tc.Bibtex == "" {
		return errors.New("toolchain.bibtex cannot be empty")
	}
	if tc.Artifact == "" {
		return errors.New("toolchain.artifact cannot be empty")
	}
	if strings.ContainsAny(tc.Artifact, "./\\") {
		return fmt.Errorf("toolchain.artifact must be a bare extension: %s", tc.Artifact)
	}

	return nil
}

// validateSCM validates the revision metadata configuration.
func (cv *configurationValidator) validateSCM() error {
	mode := cv.config.SCM.Mode
	if mode == "" {
		return nil // default applied elsewhere, but keep guard for safety
	}
	if NormalizeSCMMode(string(mode)) == "" {
		return fmt.Errorf("invalid scm mode: %s (allowed: auto|mercurial|subversion|git|none)", mode)
	}
	return nil
}
