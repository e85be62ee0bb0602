package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/pantryplan-backend/internal/cron"
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

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
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

	var (
		lock  cron.Lock = &cron.LocalLock{}
		cache shopping.Cache
	)
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
		redisLock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(cron.LockName), cfg.Cron.LockTTL)
		if err != nil {
			logg.Error(context.Background(), "failed to create cron lock", err)
			os.Exit(1)
		}
		lock = redisLock
		if cfg.FeatureFlags.ShortfallCache {
			cache = shopping.NewRedisCache(redisClient, cfg.Planner.CacheTTL)
		}
	} else {
		logg.Warn(context.Background(), "redis not configured; using in-process cron lock")
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

	registry := cron.NewRegistry()
	auditJob, err := cron.NewPantryDeficitAuditJob(cron.PantryDeficitAuditJobParams{
		Logger: logg,
		Pantry: services.Pantry,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create pantry audit job", err)
		os.Exit(1)
	}
	if err := registry.Register(auditJob); err != nil {
		logg.Error(context.Background(), "failed to register pantry audit job", err)
		os.Exit(1)
	}

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
		exportJob, err := cron.NewShoppingListExportJob(cron.ShoppingListExportJobParams{
			Logger:   logg,
			Exporter: exportSvc,
			Servings: cfg.Planner.DefaultServings,
			Weeks:    cfg.Cron.ExportWeeks,
		})
		if err != nil {
			logg.Error(context.Background(), "failed to create export job", err)
			os.Exit(1)
		}
		if err := registry.Register(exportJob); err != nil {
			logg.Error(context.Background(), "failed to register export job", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "export bucket not configured; shopping-list-export disabled")
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"interval":    cfg.Cron.Interval.String(),
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}
