package commands

import (
	"context"

	"git.home.luguber.info/inful/texbuilder/internal/console"
	"git.home.luguber.info/inful/texbuilder/internal/toolchain"
)

// BibtexCmd runs the bibliography tool once, non-silently, against the base
// document's aux file. A typesetting pass must have produced that file.
type BibtexCmd struct{}

func (b *BibtexCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config)
	if err != nil {
		return err
	}

	runner := toolchain.NewBibTeX(cfg.Toolchain.Bibtex, console.Default())
	_, err = runner.Run(context.Background(), cfg.WorkDir(), cfg.Paths.BaseName, false)
	return err
}
