package pantry

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pantryplan-backend/internal/shopping"
	"github.com/angelmondragon/pantryplan-backend/pkg/db"
	"github.com/angelmondragon/pantryplan-backend/pkg/db/models"
	"github.com/angelmondragon/pantryplan-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pantryplan-backend/pkg/errors"
	"github.com/angelmondragon/pantryplan-backend/pkg/logger"
	"github.com/angelmondragon/pantryplan-backend/pkg/metrics"
)

// Service mutates and reads pantry stock.
type Service interface {
	List(ctx context.Context) ([]ItemDTO, error)
	Upsert(ctx context.Context, ingredientID uuid.UUID, unit enums.Unit, quantity decimal.Decimal, mode enums.PantryMode) (*models.PantryItem, error)
	Consume(ctx context.Context, recipeID uuid.UUID, servings int) (*shopping.CommitResult, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Deficits(ctx context.Context) ([]ItemDTO, error)
}

// ItemDTO is a pantry item with its ingredient name resolved.
type ItemDTO struct {
	ID             uuid.UUID       `json:"id"`
	IngredientID   uuid.UUID       `json:"ingredient_id"`
	IngredientName string          `json:"ingredient_name"`
	Unit           enums.Unit      `json:"unit"`
	Quantity       decimal.Decimal `json:"quantity"`
}

type repository interface {
	List(ctx context.Context) ([]models.PantryItem, error)
	ListNegative(ctx context.Context) ([]models.PantryItem, error)
	Upsert(ctx context.Context, ingredientID uuid.UUID, unit enums.Unit, quantity decimal.Decimal, mode enums.PantryMode) (*models.PantryItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ingredientLookup interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Ingredient, error)
}

type recipeLoader interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Recipe, error)
}

type invalidator interface {
	Invalidate(ctx context.Context) error
}

// ServiceParams wires the pantry service. Invalidator and Metrics are optional.
type ServiceParams struct {
	Repo        repository
	Ingredients ingredientLookup
	Recipes     recipeLoader
	Invalidator invalidator
	Metrics     *metrics.PlannerMetrics
	Logger      *logger.Logger
}

type service struct {
	repo        repository
	ingredients ingredientLookup
	recipes     recipeLoader
	invalidator invalidator
	metrics     *metrics.PlannerMetrics
	logg        *logger.Logger
	locks       *keyLocks
}

// NewService constructs a pantry service instance.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("pantry repository required")
	}
	if params.Ingredients == nil {
		return nil, fmt.Errorf("ingredient lookup required")
	}
	if params.Recipes == nil {
		return nil, fmt.Errorf("recipe loader required")
	}
	svc := &service{
		repo:        params.Repo,
		ingredients: params.Ingredients,
		recipes:     params.Recipes,
		invalidator: params.Invalidator,
		metrics:     params.Metrics,
		logg:        params.Logger,
		locks:       newKeyLocks(),
	}
	if svc.invalidator == nil {
		svc.invalidator = shopping.NopCache{}
	}
	if svc.logg == nil {
		svc.logg = logger.Nop()
	}
	return svc, nil
}

func (s *service) List(ctx context.Context) ([]ItemDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pantry")
	}
	return s.withNames(ctx, rows)
}

// Deficits lists items driven below zero by consumption.
func (s *service) Deficits(ctx context.Context) ([]ItemDTO, error) {
	rows, err := s.repo.ListNegative(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pantry deficits")
	}
	return s.withNames(ctx, rows)
}

// Upsert applies an add or set to the record for (ingredientID, unit).
// Writers on the same key are serialized; add may leave a negative quantity.
func (s *service) Upsert(ctx context.Context, ingredientID uuid.UUID, unit enums.Unit, quantity decimal.Decimal, mode enums.PantryMode) (*models.PantryItem, error) {
	if !unit.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid unit").WithDetails(map[string]any{"unit": string(unit)})
	}
	if !mode.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mode must be add or set").WithDetails(map[string]any{"mode": string(mode)})
	}
	if ingredientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ingredient_id is required")
	}

	ctx = s.logg.WithPantryKey(ctx, ingredientID.String(), string(unit))

	found, err := s.ingredients.FindByIDs(ctx, []uuid.UUID{ingredientID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ingredient")
	}
	if len(found) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ingredient not found")
	}

	unlock := s.locks.Lock(shopping.NewKey(ingredientID, unit))
	item, err := s.repo.Upsert(ctx, ingredientID, unit, quantity, mode)
	unlock()
	s.metrics.IncPantryMutation(string(mode), err)
	if err != nil {
		s.logg.Error(ctx, "pantry.upsert_failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeMutationFailed, err, "upsert pantry item")
	}

	s.invalidate(ctx)
	return item, nil
}

// Consume subtracts a recipe scaled to servings from the pantry, one key at
// a time. Lines with zero quantity are skipped.
func (s *service) Consume(ctx context.Context, recipeID uuid.UUID, servings int) (*shopping.CommitResult, error) {
	recipe, err := s.recipes.Get(ctx, recipeID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "recipe not found")
		}
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load recipe")
	}

	scaled, err := shopping.Scale(*recipe, servings)
	if err != nil {
		return nil, err
	}

	names, err := s.names(ctx, scaled)
	if err != nil {
		return nil, err
	}

	usage := make([]shopping.Purchase, 0, len(scaled))
	for _, line := range scaled {
		if !line.Quantity.IsPositive() {
			continue
		}
		usage = append(usage, shopping.Purchase{Key: line.Key, Name: names[line.IngredientID], Quantity: line.Quantity.Neg()})
	}

	result := shopping.ApplyPurchases(ctx, s, usage)
	ctx = s.logg.WithFields(ctx, map[string]any{
		"recipe_id": recipeID.String(),
		"servings":  servings,
		"outcome":   string(result.Outcome),
	})
	if len(result.Failures) > 0 {
		s.logg.Warn(ctx, "pantry.consume_incomplete")
	} else {
		s.logg.Info(ctx, "pantry.consumed")
	}
	return &result, nil
}

// Delete removes the item by id.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "pantry item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete pantry item")
	}
	s.invalidate(ctx)
	return nil
}

func (s *service) invalidate(ctx context.Context) {
	if err := s.invalidator.Invalidate(ctx); err != nil {
		s.logg.Error(ctx, "pantry.cache_invalidate_failed", err)
	}
}

func (s *service) names(ctx context.Context, lines []shopping.Line) (map[uuid.UUID]string, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.IngredientID)
	}
	return s.lookupNames(ctx, ids)
}

func (s *service) withNames(ctx context.Context, rows []models.PantryItem) ([]ItemDTO, error) {
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.IngredientID)
	}
	names, err := s.lookupNames(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]ItemDTO, 0, len(rows))
	for _, row := range rows {
		name := names[row.IngredientID]
		if name == "" {
			name = row.IngredientID.String()
		}
		out = append(out, ItemDTO{
			ID:             row.ID,
			IngredientID:   row.IngredientID,
			IngredientName: name,
			Unit:           row.Unit,
			Quantity:       row.Quantity,
		})
	}
	return out, nil
}

func (s *service) lookupNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	ingredients, err := s.ingredients.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ingredients")
	}
	for _, ing := range ingredients {
		names[ing.ID] = ing.Name
	}
	return names, nil
}
