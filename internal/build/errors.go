package build

import "errors"

// Sentinel domain errors used to classify high-level pipeline failures.
// They should always be wrapped with contextual information at the call site.
var (
	ErrSourceMissing = errors.New("texbuilder: source file missing")
	ErrNoDocument    = errors.New("texbuilder: no document configured")
)
