package scm

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"

	"git.home.luguber.info/inful/texbuilder/internal/logfields"
)

// MercurialCollector scrapes revision metadata from `hg tip` output.
type MercurialCollector struct {
	executable string
	run        runCommand
	look       func(string) (string, error)
}

// NewMercurialCollector creates a collector for the hg client.
func NewMercurialCollector() *MercurialCollector {
	return &MercurialCollector{executable: "hg", run: defaultRunCommand, look: exec.LookPath}
}

func (c *MercurialCollector) Name() string { return "Mercurial" }

// Collect runs `hg tip` in dir and extracts the changeset and date lines.
func (c *MercurialCollector) Collect(ctx context.Context, dir string) (Stats, error) {
	if _, err := c.look(c.executable); err != nil {
		slog.Debug("SCM client not on PATH, skipping revision metadata", logfields.Tool(c.executable))
		return Stats{}, nil
	}

	output, err := c.run(ctx, dir, c.executable, "tip")
	if err != nil && len(output) == 0 {
		return Stats{}, fmt.Errorf("run hg tip: %w", err)
	}

	revision, ok := scrapeLine(output, "changeset:")
	if !ok {
		return Stats{}, &ParseError{Tool: c.executable, Field: "changeset", Output: string(output)}
	}
	date, ok := scrapeLine(output, "date:")
	if !ok {
		return Stats{}, &ParseError{Tool: c.executable, Field: "date", Output: string(output)}
	}

	return Stats{Name: c.Name(), Revision: revision, Date: date}, nil
}
