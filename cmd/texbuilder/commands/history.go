package commands

import (
	"context"
	"fmt"
	"time"

	"git.home.luguber.info/inful/texbuilder/internal/history"
)

// HistoryCmd lists recent builds from the history store. Disabling history
// in the configuration stops recording, not listing.
type HistoryCmd struct {
	Limit int    `short:"n" help:"Number of builds to list" default:"10"`
	Build string `help:"Show a single build by id"`
}

func (h *HistoryCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config)
	if err != nil {
		return err
	}

	store, err := history.NewSQLiteStore(cfg.HistoryPath())
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer func() {
		_ = store.Close()
	}()

	ctx := context.Background()

	if h.Build != "" {
		rec, err := store.ByBuildID(ctx, h.Build)
		if err != nil {
			return err
		}
		printRecordDetail(rec)
		return nil
	}

	records, err := store.Recent(ctx, h.Limit)
	if err != nil {
		return fmt.Errorf("list builds: %w", err)
	}
	if len(records) == 0 {
		fmt.Println("No builds recorded yet")
		return nil
	}
	for _, rec := range records {
		fmt.Printf("%s  %s  %-8s  %s  passes=%d warnings=%d duration=%s\n",
			rec.BuildID,
			rec.StartedAt.Format(time.RFC3339),
			rec.Outcome,
			rec.Document,
			rec.Passes,
			rec.Warnings,
			rec.Duration.Truncate(time.Millisecond))
	}
	return nil
}

func printRecordDetail(rec *history.Record) {
	fmt.Printf("build:    %s\n", rec.BuildID)
	fmt.Printf("document: %s\n", rec.Document)
	fmt.Printf("outcome:  %s\n", rec.Outcome)
	fmt.Printf("passes:   %d\n", rec.Passes)
	fmt.Printf("warnings: %d\n", rec.Warnings)
	fmt.Printf("duration: %s\n", rec.Duration.Truncate(time.Millisecond))
	fmt.Printf("started:  %s\n", rec.StartedAt.Format(time.RFC3339))
}
