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

	if err := bootstrap.StartAPI(bootstrap.APIConfig{
		Config:      cfg,
		ServiceName: "planner-api",
	}); err != nil {
		slog.Error("api failed", "error", err)
		os.Exit(1)
	}
}
