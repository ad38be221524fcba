package config

import "strings"

// SCMMode selects which version control client supplies revision metadata.
type SCMMode string

const (
	// SCMModeAuto probes the source tree and picks the first client whose
	// metadata directory is present.
	SCMModeAuto SCMMode = "auto"
	// SCMModeMercurial forces the Mercurial client.
	SCMModeMercurial SCMMode = "mercurial"
	// SCMModeSubversion forces the Subversion client.
	SCMModeSubversion SCMMode = "subversion"
	// SCMModeGit forces the Git client.
	SCMModeGit SCMMode = "git"
	// SCMModeNone disables revision metadata collection entirely.
	SCMModeNone SCMMode = "none"
)

// NormalizeSCMMode maps user input (including common client aliases) to a
// canonical SCMMode. Returns "" for unrecognized input so callers can decide
// between rejecting and defaulting.
func NormalizeSCMMode(raw string) SCMMode {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "auto":
		return SCMModeAuto
	case "mercurial", "hg":
		return SCMModeMercurial
	case "subversion", "svn":
		return SCMModeSubversion
	case "git":
		return SCMModeGit
	case "none", "off", "disabled":
		return SCMModeNone
	default:
		return ""
	}
}
