package shopping

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/angelmondragon/pantryplan-backend/pkg/dates"
	"github.com/angelmondragon/pantryplan-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/pantryplan-backend/pkg/errors"
	"github.com/angelmondragon/pantryplan-backend/pkg/logger"
	"github.com/angelmondragon/pantryplan-backend/pkg/metrics"
)

// Service computes shopping lists and commits purchases to the pantry.
type Service interface {
	GetShortfall(ctx context.Context, rng dates.Range, servings int) (*ShortfallReport, error)
	CommitPurchases(ctx context.Context, input CommitInput) (*CommitResult, error)
}

// ShortfallReport is the shopping list for a date range.
type ShortfallReport struct {
	Range        dates.Range     `json:"range"`
	Servings     int             `json:"servings"`
	Lines        []ShortfallLine `json:"lines"`
	SkippedMeals []SkippedMeal   `json:"skipped_meals"`
}

// CommitInput selects what to add to the pantry. A nil OnlyChecked commits
// every shortfall line; Purchased overrides per-key amounts.
type CommitInput struct {
	Range       dates.Range
	Servings    int
	Purchased   map[Key]float64
	OnlyChecked []Key
}

type mealReader interface {
	ListRange(ctx context.Context, start, end dates.Date) ([]models.Meal, error)
}

type recipeReader interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Recipe, error)
}

type ingredientReader interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Ingredient, error)
}

type pantryReader interface {
	List(ctx context.Context) ([]models.PantryItem, error)
}

// ServiceParams wires the service collaborators. Cache and Metrics are optional.
type ServiceParams struct {
	Meals       mealReader
	Recipes     recipeReader
	Ingredients ingredientReader
	Pantry      pantryReader
	Mutator     Mutator
	Cache       Cache
	Metrics     *metrics.PlannerMetrics
	Logger      *logger.Logger
}

type service struct {
	meals       mealReader
	recipes     recipeReader
	ingredients ingredientReader
	pantry      pantryReader
	mutator     Mutator
	cache       Cache
	cacheOn     bool
	metrics     *metrics.PlannerMetrics
	logg        *logger.Logger
}

// NewService constructs the shopping-list service.
func NewService(params ServiceParams) (Service, error) {
	if params.Meals == nil {
		return nil, fmt.Errorf("meal reader required")
	}
	if params.Recipes == nil {
		return nil, fmt.Errorf("recipe reader required")
	}
	if params.Ingredients == nil {
		return nil, fmt.Errorf("ingredient reader required")
	}
	if params.Pantry == nil {
		return nil, fmt.Errorf("pantry reader required")
	}
	if params.Mutator == nil {
		return nil, fmt.Errorf("pantry mutator required")
	}
	svc := &service{
		meals:       params.Meals,
		recipes:     params.Recipes,
		ingredients: params.Ingredients,
		pantry:      params.Pantry,
		mutator:     params.Mutator,
		cache:       params.Cache,
		cacheOn:     params.Cache != nil,
		metrics:     params.Metrics,
		logg:        params.Logger,
	}
	if svc.cache == nil {
		svc.cache = NopCache{}
	}
	if svc.logg == nil {
		svc.logg = logger.Nop()
	}
	return svc, nil
}

// GetShortfall returns what must be bought to cook every meal in rng for
// servings people each.
func (s *service) GetShortfall(ctx context.Context, rng dates.Range, servings int) (*ShortfallReport, error) {
	if servings <= 0 {
		return nil, invalidServings("servings", servings)
	}
	if err := rng.Validate(0); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}
	ctx = s.logg.WithDateRange(ctx, rng.Start.String(), rng.End.String())
	started := time.Now()

	if !s.cacheOn {
		report, err := s.compute(ctx, rng, servings)
		if err == nil {
			s.metrics.ObserveShortfall(metrics.CacheDisabled, time.Since(started))
		}
		return report, err
	}

	version, err := s.cache.Version(ctx)
	if err != nil {
		// without a version there is no safe key; recompute
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "shortfall.cache_version_failed")
		report, err := s.compute(ctx, rng, servings)
		if err == nil {
			s.metrics.ObserveShortfall(metrics.CacheMiss, time.Since(started))
		}
		return report, err
	}

	cached, ok, err := s.cache.Get(ctx, version, rng, servings)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "shortfall.cache_read_failed")
	}
	if ok {
		s.metrics.ObserveShortfall(metrics.CacheHit, time.Since(started))
		return cached, nil
	}

	report, err := s.compute(ctx, rng, servings)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Put(ctx, version, rng, servings, report); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "shortfall.cache_write_failed")
	}
	s.metrics.ObserveShortfall(metrics.CacheMiss, time.Since(started))
	return report, nil
}

func (s *service) compute(ctx context.Context, rng dates.Range, servings int) (*ShortfallReport, error) {
	meals, err := s.meals.ListRange(ctx, rng.Start, rng.End)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load meals")
	}

	recipes, err := s.loadRecipes(ctx, meals)
	if err != nil {
		return nil, err
	}

	demand, err := Aggregate(meals, recipes, servings)
	if err != nil {
		return nil, err
	}
	for _, skipped := range demand.Skipped {
		mealCtx := s.logg.WithMealID(ctx, skipped.MealID.String())
		mealCtx = s.logg.WithField(mealCtx, "recipe_id", skipped.RecipeID.String())
		s.logg.Warn(mealCtx, "shortfall.meal_skipped_missing_recipe")
	}
	s.metrics.AddSkippedMeals(len(demand.Skipped))

	pantry, err := s.pantry.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pantry")
	}

	names, err := s.loadNames(ctx, demand.Lines)
	if err != nil {
		return nil, err
	}

	skipped := demand.Skipped
	if skipped == nil {
		skipped = []SkippedMeal{}
	}
	return &ShortfallReport{
		Range:        rng,
		Servings:     servings,
		Lines:        Reconcile(demand.Lines, pantry, names),
		SkippedMeals: skipped,
	}, nil
}

func (s *service) loadRecipes(ctx context.Context, meals []models.Meal) (map[uuid.UUID]models.Recipe, error) {
	ids := make([]uuid.UUID, 0, len(meals))
	seen := make(map[uuid.UUID]struct{}, len(meals))
	for _, meal := range meals {
		if _, ok := seen[meal.RecipeID]; ok {
			continue
		}
		seen[meal.RecipeID] = struct{}{}
		ids = append(ids, meal.RecipeID)
	}

	out := make(map[uuid.UUID]models.Recipe, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	recipes, err := s.recipes.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load recipes")
	}
	for _, recipe := range recipes {
		out[recipe.ID] = recipe
	}
	return out, nil
}

func (s *service) loadNames(ctx context.Context, demand []Line) (map[uuid.UUID]string, error) {
	ids := make([]uuid.UUID, 0, len(demand))
	seen := make(map[uuid.UUID]struct{}, len(demand))
	for _, line := range demand {
		if _, ok := seen[line.IngredientID]; ok {
			continue
		}
		seen[line.IngredientID] = struct{}{}
		ids = append(ids, line.IngredientID)
	}

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
	for _, id := range ids {
		if _, ok := names[id]; !ok {
			s.logg.Warn(s.logg.WithField(ctx, "ingredient_id", id.String()), "shortfall.ingredient_name_missing")
		}
	}
	return names, nil
}

// CommitPurchases recomputes the shortfall for the range and adds the
// selected purchases to the pantry.
func (s *service) CommitPurchases(ctx context.Context, input CommitInput) (*CommitResult, error) {
	if input.Servings <= 0 {
		return nil, invalidServings("servings", input.Servings)
	}
	if err := input.Range.Validate(0); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}
	ctx = s.logg.WithDateRange(ctx, input.Range.Start.String(), input.Range.End.String())

	// the commit must see current pantry state, never a cached list
	report, err := s.compute(ctx, input.Range, input.Servings)
	if err != nil {
		return nil, err
	}

	var onlyChecked map[Key]struct{}
	if input.OnlyChecked != nil {
		onlyChecked = make(map[Key]struct{}, len(input.OnlyChecked))
		for _, key := range input.OnlyChecked {
			onlyChecked[key] = struct{}{}
		}
	}

	purchases := PlanPurchases(report.Lines, input.Purchased, onlyChecked)
	result := ApplyPurchases(ctx, s.mutator, purchases)
	s.metrics.AddCommitKeys(len(result.Applied), len(result.Failures))

	ctx = s.logg.WithFields(ctx, map[string]any{
		"outcome":  string(result.Outcome),
		"applied":  len(result.Applied),
		"failures": len(result.Failures),
	})
	switch result.Outcome {
	case CommitNoop:
		s.logg.Info(ctx, "shopping.commit_noop")
	case CommitApplied:
		s.logg.Info(ctx, "shopping.commit_applied")
	default:
		var combined error
		for _, failure := range result.Failures {
			combined = multierr.Append(combined, fmt.Errorf("%s: %w", failure.Key, failure.Err))
		}
		s.logg.Error(ctx, "shopping.commit_failures", combined)
	}
	return &result, nil
}
