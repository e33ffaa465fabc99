package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/specvital/planner/internal/infra/db"
	"github.com/specvital/planner/internal/infra/queue"
)

func main() {
	databaseURL := flag.String("database", os.Getenv("DATABASE_URL"), "Database URL")
	flag.Parse()

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "Error: Database URL is required (use -database flag or set DATABASE_URL)")
		os.Exit(1)
	}

	planID := strings.TrimSpace(flag.Arg(0))
	if planID == "" {
		fmt.Fprintln(os.Stderr, "Error: plan id must not be empty")
		os.Exit(1)
	}

	if err := enqueue(*databaseURL, planID); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to enqueue task: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: enqueue [flags] <plan-id>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Arguments:")
	fmt.Fprintln(os.Stderr, "  <plan-id>  ID of a stored plan to (re)assemble")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Flags:")
	flag.PrintDefaults()
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Examples:")
	fmt.Fprintln(os.Stderr, "  enqueue 0b6f6a52-5d8e-4c55-9a0e-2f0c1f7f8a11")
	fmt.Fprintln(os.Stderr, "  enqueue -database postgres://localhost/planner 0b6f6a52-5d8e-4c55-9a0e-2f0c1f7f8a11")
}

func enqueue(databaseURL, planID string) error {
	ctx := context.Background()

	pool, err := db.NewPool(ctx, databaseURL, db.PoolConfig{})
	if err != nil {
		return fmt.Errorf("database connection: %w", err)
	}
	defer pool.Close()

	client, err := queue.NewClient(ctx, pool)
	if err != nil {
		return fmt.Errorf("create queue client: %w", err)
	}
	defer client.Close()

	if err := client.EnqueuePlanAssembly(ctx, planID); err != nil {
		return fmt.Errorf("enqueue task: %w", err)
	}

	slog.Info("task enqueued", "plan_id", planID)
	return nil
}
