package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tiefenauer/wiki-lm/internal/api"
	"github.com/tiefenauer/wiki-lm/internal/artifact"
	"github.com/tiefenauer/wiki-lm/internal/config"
	"github.com/tiefenauer/wiki-lm/internal/norm"
	"github.com/tiefenauer/wiki-lm/internal/pipeline"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the normalizer for the configured language.
	ncfg := norm.LanguageConfig(cfg.Language)
	ncfg.MinWords = cfg.MinSentenceWords
	seg, err := norm.NewSegmenter(ncfg.Language, cfg.PunktModelDir)
	if err != nil {
		log.Error("sentence segmenter init failed", "language", ncfg.Language, "error", err)
		os.Exit(1)
	}
	normalizer := norm.New(ncfg, seg)

	store, err := artifact.NewStore(cfg.CorpusDir)
	if err != nil {
		log.Error("artifact store init failed", "dir", cfg.CorpusDir, "error", err)
		os.Exit(1)
	}

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, normalizer, store, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, log, cfg)

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

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting corpusd", "port", cfg.Port, "language", cfg.Language)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
