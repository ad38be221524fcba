package scm

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"

	"git.home.luguber.info/inful/texbuilder/internal/logfields"
)

// SubversionCollector scrapes revision metadata from `svn info` output.
type SubversionCollector struct {
	executable string
	run        runCommand
	look       func(string) (string, error)
}

// NewSubversionCollector creates a collector for the svn client.
func NewSubversionCollector() *SubversionCollector {
	return &SubversionCollector{executable: "svn", run: defaultRunCommand, look: exec.LookPath}
}

func (c *SubversionCollector) Name() string { return "Subversion" }

// Collect runs `svn info` in dir and extracts the revision and last-changed
// date lines.
func (c *SubversionCollector) Collect(ctx context.Context, dir string) (Stats, error) {
	if _, err := c.look(c.executable); err != nil {
		slog.Debug("SCM client not on PATH, skipping revision metadata", logfields.Tool(c.executable))
		return Stats{}, nil
	}

	output, err := c.run(ctx, dir, c.executable, "info")
	if err != nil && len(output) == 0 {
		return Stats{}, fmt.Errorf("run svn info: %w", err)
	}

	revision, ok := scrapeLine(output, "Revision:")
	if !ok {
		return Stats{}, &ParseError{Tool: c.executable, Field: "Revision", Output: string(output)}
	}
	date, ok := scrapeLine(output, "Last Changed Date:")
	if !ok {
		return Stats{}, &ParseError{Tool: c.executable, Field: "Last Changed Date", Output: string(output)}
	}

	return Stats{Name: c.Name(), Revision: revision, Date: date}, nil
}
