package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/texbuilder/internal/document"
)

// GenerateCmd renders the base document and prints it to standard output.
// Revision metadata is stamped first, so the output matches what a build
// would write.
type GenerateCmd struct{}

func (g *GenerateCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config)
	if err != nil {
		return err
	}

	if err := collectRevision(context.Background(), cfg); err != nil {
		return err
	}

	text, err := document.Render(cfg.Document)
	if err != nil {
		return err
	}
	fmt.Print(text)
	return nil
}
