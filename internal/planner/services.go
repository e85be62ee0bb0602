package planner

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/angelmondragon/pantryplan-backend/internal/ingredients"
	"github.com/angelmondragon/pantryplan-backend/internal/meals"
	"github.com/angelmondragon/pantryplan-backend/internal/pantry"
	"github.com/angelmondragon/pantryplan-backend/internal/recipes"
	"github.com/angelmondragon/pantryplan-backend/internal/shopping"
	"github.com/angelmondragon/pantryplan-backend/pkg/logger"
	"github.com/angelmondragon/pantryplan-backend/pkg/metrics"
)

// Params wire the planner services. Cache and Metrics are optional.
type Params struct {
	DB           *gorm.DB
	Cache        shopping.Cache
	Metrics      *metrics.PlannerMetrics
	Logger       *logger.Logger
	MaxRangeDays int
}

// Services is every planner service sharing one connection and cache.
type Services struct {
	Ingredients ingredients.Service
	Recipes     recipes.Service
	Meals       meals.Service
	Pantry      pantry.Service
	Shopping    shopping.Service
}

// New builds the services. Every mutating service invalidates Cache after
// a successful write.
func New(params Params) (*Services, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}

	ingredientRepo := ingredients.NewRepository(params.DB)
	recipeRepo := recipes.NewRepository(params.DB)
	mealRepo := meals.NewRepository(params.DB)
	pantryRepo := pantry.NewRepository(params.DB)

	ingredientSvc, err := ingredients.NewService(ingredientRepo, logg)
	if err != nil {
		return nil, fmt.Errorf("ingredient service: %w", err)
	}
	recipeSvc, err := recipes.NewService(recipeRepo, ingredientRepo, params.Cache, logg)
	if err != nil {
		return nil, fmt.Errorf("recipe service: %w", err)
	}
	mealSvc, err := meals.NewService(mealRepo, recipeRepo, params.Cache, params.MaxRangeDays, logg)
	if err != nil {
		return nil, fmt.Errorf("meal service: %w", err)
	}
	pantrySvc, err := pantry.NewService(pantry.ServiceParams{
		Repo:        pantryRepo,
		Ingredients: ingredientRepo,
		Recipes:     recipeRepo,
		Invalidator: params.Cache,
		Metrics:     params.Metrics,
		Logger:      logg,
	})
	if err != nil {
		return nil, fmt.Errorf("pantry service: %w", err)
	}
	shoppingSvc, err := shopping.NewService(shopping.ServiceParams{
		Meals:       mealRepo,
		Recipes:     recipeRepo,
		Ingredients: ingredientRepo,
		Pantry:      pantryRepo,
		Mutator:     pantrySvc,
		Cache:       params.Cache,
		Metrics:     params.Metrics,
		Logger:      logg,
	})
	if err != nil {
		return nil, fmt.Errorf("shopping service: %w", err)
	}

	return &Services{
		Ingredients: ingredientSvc,
		Recipes:     recipeSvc,
		Meals:       mealSvc,
		Pantry:      pantrySvc,
		Shopping:    shoppingSvc,
	}, nil
}
