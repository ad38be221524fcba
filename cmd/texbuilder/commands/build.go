package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/texbuilder/internal/build"
	"git.home.luguber.info/inful/texbuilder/internal/config"
	"git.home.luguber.info/inful/texbuilder/internal/console"
	"git.home.luguber.info/inful/texbuilder/internal/history"
	"git.home.luguber.info/inful/texbuilder/internal/logfields"
	"git.home.luguber.info/inful/texbuilder/internal/scm"
)

// BuildCmd implements the 'build' command: collect revision metadata, write
// the base document and run the typesetting passes until the artifact is
// produced.
type BuildCmd struct{}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := collectRevision(ctx, cfg); err != nil {
		return err
	}

	report, buildErr := build.New(cfg, console.Default()).Run(ctx)
	if report != nil && !cfg.History.Disabled {
		recordBuild(cfg, report)
	}
	return buildErr
}

// collectRevision stamps the document with working-copy metadata. An absent
// client leaves the document untouched; unparseable client output is a hard
// failure since no fallback extraction exists.
func collectRevision(ctx context.Context, cfg *config.Config) error {
	stats, err := scm.CollectStats(ctx, cfg.Paths.SourceDir, cfg.SCM.Mode)
	if err != nil {
		return fmt.Errorf("collect revision metadata: %w", err)
	}
	scm.Apply(&cfg.Document, stats)
	return nil
}

// recordBuild appends the report to the history store. Recording uses its
// own deadline so canceled builds still leave a trace, and failures only
// log: history must never break a build.
func recordBuild(cfg *config.Config, report *build.Report) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store, err := history.NewSQLiteStore(cfg.HistoryPath())
	if err != nil {
		slog.Warn("Failed to open history store", logfields.Path(cfg.HistoryPath()), logfields.Error(err))
		return
	}
	defer func() {
		_ = store.Close()
	}()

	if err := store.Record(ctx, history.FromReport(report)); err != nil {
		slog.Warn("Failed to record build history", logfields.BuildID(report.BuildID), logfields.Error(err))
	}
}
