package toolchain

import "errors"

// Sentinel errors classifying tool invocation failures. They are always
// wrapped with the tool and input at the call site.
var (
	// ErrToolNotFound indicates the executable was not detected on PATH.
	ErrToolNotFound = errors.New("texbuilder: tool not found")
	// ErrInputMissing indicates the tool's input file is absent, so the tool
	// was never invoked.
	ErrInputMissing = errors.New("texbuilder: tool input missing")
	// ErrExecutionFailed indicates the tool failed without producing any
	// output to scrape.
	ErrExecutionFailed = errors.New("texbuilder: tool execution failed")
)
