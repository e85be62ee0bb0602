package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/pantryplan-backend/api/controllers"
	"github.com/angelmondragon/pantryplan-backend/api/routes"
	"github.com/angelmondragon/pantryplan-backend/internal/exports"
	"github.com/angelmondragon/pantryplan-backend/internal/planner"
	"github.com/angelmondragon/pantryplan-backend/internal/shopping"
	"github.com/angelmondragon/pantryplan-backend/pkg/config"
	"github.com/angelmondragon/pantryplan-backend/pkg/db"
	"github.com/angelmondragon/pantryplan-backend/pkg/logger"
	"github.com/angelmondragon/pantryplan-backend/pkg/metrics"
	"github.com/angelmondragon/pantryplan-backend/pkg/migrate"
	"github.com/angelmondragon/pantryplan-backend/pkg/redis"
	"github.com/angelmondragon/pantryplan-backend/pkg/storage/s3"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, db.Options{UseSQLite: cfg.FeatureFlags.UseSQLite}, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	readiness := map[string]controllers.Pinger{"db": dbClient}
	deps := routes.Dependencies{Readiness: readiness, Gatherer: prometheus.DefaultGatherer}

	var cache shopping.Cache
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		readiness["redis"] = redisClient
		deps.Idempotency = redisClient
		if cfg.FeatureFlags.ShortfallCache {
			cache = shopping.NewRedisCache(redisClient, cfg.Planner.CacheTTL)
		}
	} else {
		logg.Warn(context.Background(), "redis not configured; idempotency and shortfall cache disabled")
	}

	services, err := planner.New(planner.Params{
		DB:           dbClient.DB(),
		Cache:        cache,
		Metrics:      metrics.NewPlannerMetrics(prometheus.DefaultRegisterer),
		Logger:       logg,
		MaxRangeDays: cfg.Planner.MaxRangeDays,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create planner services", err)
		os.Exit(1)
	}
	deps.Ingredients = services.Ingredients
	deps.Recipes = services.Recipes
	deps.Meals = services.Meals
	deps.Pantry = services.Pantry
	deps.Shopping = services.Shopping

	if cfg.Export.Enabled() {
		s3Client, err := s3.NewClient(context.Background(), cfg.Export, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap s3", err)
			os.Exit(1)
		}
		exportSvc, err := exports.NewService(services.Shopping, s3Client, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to create export service", err)
			os.Exit(1)
		}
		readiness["s3"] = s3Client
		deps.Exports = exportSvc
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":    cfg.App.Env,
		"addr":   addr,
		"sqlite": cfg.FeatureFlags.UseSQLite,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-sigCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
		logg.Info(ctx, "api server stopped")
	}
}
