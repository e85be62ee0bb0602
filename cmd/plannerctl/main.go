package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/pantryplan-backend/internal/cli"
	"github.com/angelmondragon/pantryplan-backend/internal/planner"
	"github.com/angelmondragon/pantryplan-backend/pkg/config"
	"github.com/angelmondragon/pantryplan-backend/pkg/db"
	"github.com/angelmondragon/pantryplan-backend/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCommand(open)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "plannerctl:", err)
		stop()
		os.Exit(1)
	}
}

func open(ctx context.Context) (*planner.Services, func() error, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	logg := logger.New(logger.Options{
		ServiceName: "plannerctl",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Output:      os.Stderr,
		Format:      "console",
	})

	dbClient, err := db.New(ctx, cfg.DB, db.Options{UseSQLite: cfg.FeatureFlags.UseSQLite}, logg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}

	services, err := planner.New(planner.Params{
		DB:           dbClient.DB(),
		Logger:       logg,
		MaxRangeDays: cfg.Planner.MaxRangeDays,
	})
	if err != nil {
		_ = dbClient.Close()
		return nil, nil, err
	}
	return services, dbClient.Close, nil
}
