package cron

import (
	"context"
	"fmt"

	"github.com/angelmondragon/pantryplan-backend/internal/pantry"
	"github.com/angelmondragon/pantryplan-backend/internal/shopping"
	"github.com/angelmondragon/pantryplan-backend/pkg/logger"
)

type PantryDeficitAuditJobParams struct {
	Logger *logger.Logger
	Pantry deficitLister
}

type deficitLister interface {
	Deficits(ctx context.Context) ([]pantry.ItemDTO, error)
}

func NewPantryDeficitAuditJob(params PantryDeficitAuditJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Pantry == nil {
		return nil, fmt.Errorf("pantry service required")
	}
	return &pantryDeficitAuditJob{logg: params.Logger, pantry: params.Pantry}, nil
}

// pantryDeficitAuditJob reports pantry records that consumption drove below
// zero. It never modifies them.
type pantryDeficitAuditJob struct {
	logg   *logger.Logger
	pantry deficitLister
}

func (j *pantryDeficitAuditJob) Name() string { return "pantry-deficit-audit" }

func (j *pantryDeficitAuditJob) Run(ctx context.Context) error {
	items, err := j.pantry.Deficits(ctx)
	if err != nil {
		return fmt.Errorf("pantry deficit audit: %w", err)
	}
	for _, item := range items {
		itemCtx := j.logg.WithPantryKey(ctx, item.IngredientID.String(), string(item.Unit))
		itemCtx = j.logg.WithFields(itemCtx, map[string]any{
			"ingredient_name": item.IngredientName,
			"quantity":        shopping.FormatQuantity(item.Quantity),
		})
		j.logg.Warn(itemCtx, "cron.pantry_deficit")
	}
	j.logg.Info(j.logg.WithField(ctx, "deficits", len(items)), "cron.pantry_deficit_audit_complete")
	return nil
}
