package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/celestiaorg/echo-agent/internal/app"
	"github.com/celestiaorg/echo-agent/internal/config"
	"github.com/celestiaorg/echo-agent/internal/logger"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Initialize(cfg.LogLevel, cfg.LogFormat)

	// Payment problems only disable the paid endpoint
	if err := cfg.ValidateServer(); err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(cfg, version)
	if err != nil {
		logger.Fatalf("Failed to initialize agent: %v", err)
	}

	if err := a.Run(ctx); err != nil {
		logger.Fatalf("Server error: %v", err)
	}
	logger.Info("Server shut down gracefully")
}
