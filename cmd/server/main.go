package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dental-report-engine/internal/api"
	"github.com/dental-report-engine/internal/config"
	"github.com/dental-report-engine/internal/setup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	engine, err := setup.Build(cfg)
	if err != nil {
		log.Fatalf("Failed to build engine: %v", err)
	}
	defer engine.Close()

	server := api.NewServer(engine.Logger, cfg, engine.Rules, engine.Pipeline, engine.Audits)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		engine.Logger.Info("Shutdown signal received, gracefully shutting down")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
