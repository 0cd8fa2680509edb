package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/capital-ladder/backend/app"
	"github.com/capital-ladder/backend/config"
	"github.com/capital-ladder/backend/observability"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := observability.NewLogger(os.Getenv("ENV"))

	application, err := app.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- application.Run(ctx)
	}()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case <-interrupt:
		logger.Info("Shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error("Server stopped with error", "error", err)
		}
	case <-ctx.Done():
		logger.Info("Application context canceled")
	}

	application.Shutdown(context.Background())
	logger.Info("Application shut down gracefully")
}
