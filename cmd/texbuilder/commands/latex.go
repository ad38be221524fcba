package commands

import (
	"context"

	"git.home.luguber.info/inful/texbuilder/internal/console"
	"git.home.luguber.info/inful/texbuilder/internal/toolchain"
)

// LatexCmd runs the typesetting tool once, non-silently, against the base
// document in the work directory. The base document must have been written
// first (see the 'write' and 'build' commands).
type LatexCmd struct{}

func (l *LatexCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config)
	if err != nil {
		return err
	}

	runner := toolchain.NewLaTeX(cfg.Toolchain.Latex, console.Default())
	_, err = runner.Run(context.Background(), cfg.WorkDir(), cfg.Paths.BaseName, false)
	return err
}
