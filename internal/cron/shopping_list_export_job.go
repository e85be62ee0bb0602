package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/angelmondragon/pantryplan-backend/internal/exports"
	"github.com/angelmondragon/pantryplan-backend/pkg/dates"
	"github.com/angelmondragon/pantryplan-backend/pkg/logger"
)

type ShoppingListExportJobParams struct {
	Logger   *logger.Logger
	Exporter exporter
	Servings int
	// Weeks is how many Monday-first weeks to export, starting with the
	// current one.
	Weeks int
}

type exporter interface {
	Export(ctx context.Context, rng dates.Range, servings int) (*exports.Result, error)
}

func NewShoppingListExportJob(params ShoppingListExportJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Exporter == nil {
		return nil, fmt.Errorf("exporter required")
	}
	servings := params.Servings
	if servings <= 0 {
		servings = 1
	}
	weeks := params.Weeks
	if weeks <= 0 {
		weeks = 1
	}
	return &shoppingListExportJob{
		logg:     params.Logger,
		exporter: params.Exporter,
		servings: servings,
		weeks:    weeks,
		now:      time.Now,
	}, nil
}

type shoppingListExportJob struct {
	logg     *logger.Logger
	exporter exporter
	servings int
	weeks    int
	now      func() time.Time
}

func (j *shoppingListExportJob) Name() string { return "shopping-list-export" }

// Run exports every week even when an earlier one fails.
func (j *shoppingListExportJob) Run(ctx context.Context) error {
	week := dates.WeekOf(dates.FromTime(j.now()))
	var errs error
	exported := 0
	for i := 0; i < j.weeks; i++ {
		rng := dates.Range{Start: week.Start.AddDays(7 * i), End: week.End.AddDays(7 * i)}
		result, err := j.exporter.Export(ctx, rng, j.servings)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("export %s: %w", rng, err))
			continue
		}
		exported++
		j.logg.Info(j.logg.WithField(ctx, "key", result.Key), "cron.shopping_list_exported")
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"weeks":    j.weeks,
		"exported": exported,
		"servings": j.servings,
	})
	if errs != nil {
		j.logg.Warn(logCtx, "cron.shopping_list_export_incomplete")
		return errs
	}
	j.logg.Info(logCtx, "cron.shopping_list_export_complete")
	return nil
}
