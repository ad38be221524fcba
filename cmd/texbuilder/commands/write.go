package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"git.home.luguber.info/inful/texbuilder/internal/document"
	"git.home.luguber.info/inful/texbuilder/internal/logfields"
)

// WriteCmd writes the base document into the work directory. Like a full
// build it stamps revision metadata first, so the written document carries
// the working-copy state at the time of writing.
type WriteCmd struct{}

func (w *WriteCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config)
	if err != nil {
		return err
	}

	if err := collectRevision(context.Background(), cfg); err != nil {
		return err
	}

	// The work directory may not exist yet when a build directory is
	// configured but no build has run.
	if err := os.MkdirAll(cfg.WorkDir(), 0755); err != nil {
		return fmt.Errorf("create work directory: %w", err)
	}

	path := cfg.BasePath()
	if err := document.WriteFile(path, cfg.Document); err != nil {
		return err
	}
	slog.Info("Base document written", logfields.Path(path))
	return nil
}
