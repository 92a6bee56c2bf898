package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/nissmart/ledger/internal/config"
	"github.com/nissmart/ledger/internal/container"
)

func main() {
	// 1. Configuration (env vars поверх defaults)
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	// 2. Container собирает все зависимости
	c := container.New(cfg)
	if err := c.Initialize(context.Background()); err != nil {
		log.Fatal("Failed to initialize container: ", err)
	}
	defer func() {
		_ = c.Shutdown(context.Background())
	}()

	// 3. Run с graceful shutdown по SIGINT/SIGTERM
	if err := c.Run(); err != nil {
		c.Logger().Error("Server error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	c.Logger().Info("Server stopped gracefully")
}
