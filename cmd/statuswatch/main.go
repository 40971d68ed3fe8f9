package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/use-agent/statuswatch/api"
	"github.com/use-agent/statuswatch/app"
	"github.com/use-agent/statuswatch/cache"
	"github.com/use-agent/statuswatch/cleaner"
	"github.com/use-agent/statuswatch/config"
	"github.com/use-agent/statuswatch/store"
	"github.com/use-agent/statuswatch/tracker"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// ── 2. Initialise structured logging ────────────────────────────
	app.InitLogger(cfg.Log, os.Stdout)
	slog.Info("statuswatch starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"demo", cfg.Demo.Enabled,
		"sites", len(cfg.Sites),
	)

	// ── 3. Open the database ────────────────────────────────────────
	st, err := store.Open(context.Background(), cfg.Store.Path)
	if err != nil {
		slog.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	// ── 4. Extraction pipeline ──────────────────────────────────────
	pipe, err := app.NewPipeline(cfg)
	if err != nil {
		slog.Error("failed to initialise scraper", "error", err)
		os.Exit(1)
	}

	// ── 5. Notification channels ────────────────────────────────────
	nc, err := app.ConnectNATS(cfg.Notify)
	if err != nil {
		slog.Error("failed to connect to nats", "error", err)
		os.Exit(1)
	}
	if nc != nil {
		defer nc.Drain()
	}
	notifier := app.NewNotifier(cfg.Notify, nc)

	// ── 6. Preview cache ────────────────────────────────────────────
	cc := cache.New(cfg.Cache.MaxEntries)
	defer cc.Close()

	// ── 7. Setup router ─────────────────────────────────────────────
	router := api.NewRouter(api.Deps{
		Config:          cfg,
		Trackers:        tracker.NewService(st, pipe.Scraper, notifier),
		Scraper:         pipe.Scraper,
		Fetcher:         pipe.Fetcher,
		Previewer:       cleaner.NewPreviewer(),
		Cache:           cc,
		DB:              st,
		NotifyChannels:  len(notifier.Channels()),
		RegisteredSites: pipe.Scraper.Sites(),
		StartTime:       time.Now(),
	})

	// ── 8. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 9. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// A refresh can hold a request for a full fetch timeout.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Fetch.Timeout+5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	slog.Info("statuswatch stopped")
}
