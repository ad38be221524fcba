// Package build provides the canonical document build pipeline.
//
// This package contains the staged orchestrator that prepares the build
// directory, writes the rendered base document, verifies declared sources,
// drives the typesetting passes and produces a persisted build report. All
// execution paths (CLI one-shot builds, the watch loop, tests) should route
// through Builder.
//
// The package also defines sentinel errors for classifying pipeline
// failures. These errors are used for outcome derivation and should be
// wrapped with context at the call site.
package build
