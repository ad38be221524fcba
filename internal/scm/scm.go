// Package scm collects revision metadata from the version control working
// copy holding the document sources. Collectors are polymorphic over the
// supported clients; a client that is not installed degrades to an empty
// snapshot instead of failing the build.
package scm

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/texbuilder/internal/config"
)

// Stats is the uniform revision snapshot collected from a working copy.
// All fields are optional; an absent client leaves every field empty.
type Stats struct {
	Name     string
	Revision string
	Date     string
}

// Empty reports whether no metadata was collected.
func (s Stats) Empty() bool {
	return s.Name == "" && s.Revision == "" && s.Date == ""
}

// Collector extracts revision metadata from a working copy.
type Collector interface {
	// Name returns the client name as rendered into documents.
	Name() string
	// Collect returns the latest revision snapshot for the working copy at
	// dir. A client missing from PATH returns empty Stats without error and
	// without spawning a subprocess.
	Collect(ctx context.Context, dir string) (Stats, error)
}

// runCommand abstracts subprocess execution so collectors can be tested
// against canned client output.
type runCommand func(ctx context.Context, dir, name string, args ...string) ([]byte, error)

func defaultRunCommand(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// Detect returns the collector for the configured mode. In auto mode the
// working copy is probed for client metadata directories in a fixed order;
// no hit, or mode none, yields nil.
func Detect(dir string, mode config.SCMMode) Collector {
	switch mode {
	case config.SCMModeMercurial:
		return NewMercurialCollector()
	case config.SCMModeSubversion:
		return NewSubversionCollector()
	case config.SCMModeGit:
		return NewGitCollector()
	case config.SCMModeNone:
		return nil
	}

	if hasDir(dir, ".hg") {
		return NewMercurialCollector()
	}
	if hasDir(dir, ".svn") {
		return NewSubversionCollector()
	}
	if hasDir(dir, ".git") {
		return NewGitCollector()
	}
	return nil
}

// CollectStats resolves the collector for mode and collects from dir. When
// nothing is detected (or mode is none) it returns empty Stats.
func CollectStats(ctx context.Context, dir string, mode config.SCMMode) (Stats, error) {
	collector := Detect(dir, mode)
	if collector == nil {
		return Stats{}, nil
	}
	return collector.Collect(ctx, dir)
}

// Apply attaches collected stats to the document description. A snapshot
// pinned in the configuration wins over collection, and empty stats leave
// the description untouched.
func Apply(doc *config.DocumentConfig, stats Stats) {
	if doc.SCM != nil || stats.Empty() {
		return
	}
	doc.SCM = &config.SCMInfo{Name: stats.Name, Revision: stats.Revision, Date: stats.Date}
}

func hasDir(dir, name string) bool {
	info, err := os.Stat(filepath.Join(dir, name))
	return err == nil && info.IsDir()
}

// scrapeLine finds the first output line starting with prefix and returns
// the remainder of that line, trimmed.
func scrapeLine(output []byte, prefix string) (string, bool) {
	for _, line := range strings.Split(string(output), "\n") {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, prefix)), true
		}
	}
	return "", false
}
