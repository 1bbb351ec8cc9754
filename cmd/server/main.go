package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/entweave/chunkd/internal/api"
	"github.com/entweave/chunkd/internal/chunker"
	"github.com/entweave/chunkd/internal/config"
	"github.com/entweave/chunkd/internal/pipeline"
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

	// One engine serves all requests; per-request config overrides
	// derive from it and share its token encoder.
	engine := chunker.New(chunker.Config{
		EntityContextWindow: cfg.EntityContextWindow,
		EntityMergeDistance: cfg.EntityMergeDistance,
		MinChunkTokens:      cfg.MinChunkTokens,
		MaxChunkTokens:      cfg.MaxChunkTokens,
		GapFillThreshold:    cfg.GapFillThreshold,
		ChunkSize:           cfg.ChunkSize,
		ChunkOverlap:        cfg.ChunkOverlap,
	}, log)

	orch := pipeline.NewOrchestrator(cfg, engine, log)
	orch.Start(ctx)

	srv := api.NewServer(engine, orch, log, cfg)

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

		// Drain HTTP first so in-flight batch submissions land before
		// the pipeline queue closes.
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
	}()

	log.Info("starting chunkd", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
