package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"helpcenter/backend/features/index"
	"helpcenter/backend/features/query"
	"helpcenter/backend/internal/app"
	"helpcenter/backend/internal/config"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		slog.Error("failed to bootstrap", "error", err)
		os.Exit(1)
	}
	defer deps.Close()

	queryHandler := query.NewHandler(deps.Engine)
	indexHandler := index.NewHandler(deps.Processor, deps.Store, nil)

	a := app.New(cfg, queryHandler, indexHandler, deps.Store)

	if err := a.Run(ctx); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
