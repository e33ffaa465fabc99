package main

import (
	"log/slog"
	"os"

	"github.com/specvital/planner/internal/app/bootstrap"
	"github.com/specvital/planner/internal/infra/config"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.RequireDatabase(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	if err := bootstrap.StartWorker(bootstrap.WorkerConfig{
		AI:          cfg.AI,
		Concurrency: cfg.PlanWorkers,
		DatabaseURL: cfg.DatabaseURL,
		Section:     cfg.Section,
		ServiceName: "plan-worker",
	}); err != nil {
		slog.Error("worker failed", "error", err)
		os.Exit(1)
	}
}
