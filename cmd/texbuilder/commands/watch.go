package commands

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/texbuilder/internal/build"
	"git.home.luguber.info/inful/texbuilder/internal/console"
	"git.home.luguber.info/inful/texbuilder/internal/logfields"
	"git.home.luguber.info/inful/texbuilder/internal/metrics"
	"git.home.luguber.info/inful/texbuilder/internal/watch"
	prom "github.com/prometheus/client_golang/prometheus"
)

// WatchCmd rebuilds the document whenever a source file changes, until
// interrupted.
type WatchCmd struct {
	Debounce    time.Duration `help:"Quiet period after a change before rebuilding" default:"300ms"`
	Every       time.Duration `help:"Also rebuild on a fixed interval, 0 disables" default:"0"`
	MetricsAddr string        `name:"metrics-addr" help:"Serve Prometheus metrics on this address, empty disables"`
}

func (w *WatchCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if w.MetricsAddr != "" {
		reg := prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(reg)
		go serveMetrics(ctx, w.MetricsAddr, metrics.HTTPHandler(reg))
	}

	builder := build.New(cfg, console.Default()).SetRecorder(recorder)

	// A snapshot pinned in the configuration holds for the whole session;
	// otherwise each rebuild stamps fresh working-copy metadata.
	pinned := cfg.Document.SCM != nil

	rebuild := func(ctx context.Context) error {
		if !pinned {
			cfg.Document.SCM = nil
		}
		if err := collectRevision(ctx, cfg); err != nil {
			return err
		}
		report, buildErr := builder.Run(ctx)
		if report != nil && !cfg.History.Disabled {
			recordBuild(cfg, report)
		}
		return buildErr
	}

	slog.Info("Watching for source changes",
		logfields.Dir(cfg.Paths.SourceDir),
		slog.Duration("debounce", w.Debounce))

	watcher := watch.New(cfg.Paths.SourceDir, rebuild, watch.Options{
		Debounce: w.Debounce,
		Every:    w.Every,
	})
	return watcher.Run(ctx)
}

// serveMetrics exposes the Prometheus handler until ctx is canceled.
func serveMetrics(ctx context.Context, addr string, handler http.Handler) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	slog.Info("Serving metrics", slog.String("addr", addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Warn("Metrics server stopped", logfields.Error(err))
	}
}
