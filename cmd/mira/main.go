package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/enotara/mira/internal/completion"
	"github.com/enotara/mira/internal/config"
	"github.com/enotara/mira/internal/httpapi"
	"github.com/enotara/mira/internal/memory"
	"github.com/enotara/mira/internal/observability"
	"github.com/enotara/mira/internal/reply"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	ctx := context.Background()
	store, backend, err := memory.NewStore(ctx, memory.Options{
		Backend:      cfg.MemoryBackend,
		Dir:          cfg.MemoryDir,
		SQLitePath:   cfg.SQLitePath,
		DatabaseURL:  cfg.DatabaseURL,
		SystemPrompt: cfg.SystemPrompt,
	})
	if err != nil {
		log.Fatalf("memory store init failed: %v", err)
	}
	defer store.Close()
	log.Printf("memory backend: %s", backend)

	client, mode, err := completion.NewClient(completion.Config{
		Mode:        cfg.CompletionMode,
		APIKey:      cfg.OpenAIAPIKey,
		Model:       cfg.OpenAIModel,
		Temperature: cfg.CompletionTemperature,
		MaxTokens:   cfg.CompletionMaxTokens,
	})
	if err != nil {
		log.Fatalf("completion client init failed: %v", err)
	}
	log.Printf("completion mode: %s (model %s)", mode, cfg.OpenAIModel)

	pipeline := reply.New(client, nil, metrics)

	api := httpapi.New(cfg, store, pipeline, metrics, backend, mode)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	go func() {
		log.Printf("server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}
