package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wordtex/wordtex/internal/api"
	"github.com/wordtex/wordtex/internal/clipboard"
	"github.com/wordtex/wordtex/internal/config"
	"github.com/wordtex/wordtex/internal/history"
	"github.com/wordtex/wordtex/internal/mathbridge"
	"github.com/wordtex/wordtex/internal/pandoc"
	"github.com/wordtex/wordtex/internal/render"
	"github.com/wordtex/wordtex/internal/toclip"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	runner := &pandoc.Runner{Path: cfg.PandocPath, Timeout: cfg.PandocTimeout}
	if !runner.Installed() {
		log.Warn("pandoc not found; math conversion will fail", "path", cfg.PandocPath)
	}

	store, err := history.Open(cfg.HistoryDB, cfg.HistoryMaxPerTab)
	if err != nil {
		log.Error("open history database", "error", err)
		os.Exit(1)
	}

	clip := &clipboard.CommandProvider{}
	converter := render.NewConverter(mathbridge.New(runner))
	toclipSvc := toclip.New(runner, clip)

	srv := api.NewServer(converter, toclipSvc, clip, store, runner, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		store.Close()
	}()

	log.Info("starting wordtex", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
