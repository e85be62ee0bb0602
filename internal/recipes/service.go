package recipes

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pantryplan-backend/pkg/db"
	"github.com/angelmondragon/pantryplan-backend/pkg/db/models"
	"github.com/angelmondragon/pantryplan-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pantryplan-backend/pkg/errors"
	"github.com/angelmondragon/pantryplan-backend/pkg/logger"
)

// Service manages recipes.
type Service interface {
	List(ctx context.Context) ([]RecipeDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*RecipeDTO, error)
	Create(ctx context.Context, input CreateRecipeInput) (*RecipeDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateRecipeInput) (*RecipeDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// LineInput is one ingredient quantity of a recipe payload.
type LineInput struct {
	IngredientID uuid.UUID
	Quantity     decimal.Decimal
	Unit         enums.Unit
}

// CreateRecipeInput holds the validated payload to create a recipe.
type CreateRecipeInput struct {
	Title        string
	Description  string
	BaseServings int
	Lines        []LineInput
}

// UpdateRecipeInput holds optional mutation values. A non-nil Lines
// replaces every line of the recipe.
type UpdateRecipeInput struct {
	Title        *string
	Description  *string
	BaseServings *int
	Lines        *[]LineInput
}

type repository interface {
	List(ctx context.Context) ([]models.Recipe, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Recipe, error)
	Create(ctx context.Context, recipe *models.Recipe) error
	Update(ctx context.Context, recipe *models.Recipe, lines []models.RecipeLine) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ingredientLookup interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Ingredient, error)
}

type invalidator interface {
	Invalidate(ctx context.Context) error
}

type service struct {
	repo        repository
	ingredients ingredientLookup
	invalidator invalidator
	logg        *logger.Logger
}

// NewService constructs a recipe service instance. inv may be nil.
func NewService(repo repository, ingredients ingredientLookup, inv invalidator, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("recipe repository required")
	}
	if ingredients == nil {
		return nil, fmt.Errorf("ingredient lookup required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, ingredients: ingredients, invalidator: inv, logg: logg}, nil
}

func (s *service) List(ctx context.Context) ([]RecipeDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list recipes")
	}
	names, err := s.names(ctx, rows...)
	if err != nil {
		return nil, err
	}
	out := make([]RecipeDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDTO(row, names))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*RecipeDTO, error) {
	recipe, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.dto(ctx, *recipe)
}

func (s *service) Create(ctx context.Context, input CreateRecipeInput) (*RecipeDTO, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if err := validateBaseServings(input.BaseServings); err != nil {
		return nil, err
	}
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one ingredient line is required")
	}
	lines, err := s.buildLines(ctx, input.Lines)
	if err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		Title:        title,
		Description:  strings.TrimSpace(input.Description),
		BaseServings: input.BaseServings,
		Lines:        lines,
	}
	if err := s.repo.Create(ctx, recipe); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create recipe")
	}

	s.logg.Info(s.logg.WithField(ctx, "recipe_id", recipe.ID.String()), "recipe.created")
	s.invalidate(ctx)
	return s.Get(ctx, recipe.ID)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateRecipeInput) (*RecipeDTO, error) {
	recipe, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
		}
		recipe.Title = title
	}
	if input.Description != nil {
		recipe.Description = strings.TrimSpace(*input.Description)
	}
	if input.BaseServings != nil {
		if err := validateBaseServings(*input.BaseServings); err != nil {
			return nil, err
		}
		recipe.BaseServings = *input.BaseServings
	}

	var lines []models.RecipeLine
	if input.Lines != nil {
		lines, err = s.buildLines(ctx, *input.Lines)
		if err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, recipe, lines); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update recipe")
	}
	s.invalidate(ctx)
	return s.Get(ctx, id)
}

// Delete removes the recipe. Planned meals that reference it stay and are
// reported as skipped by the shopping list.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "recipe not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete recipe")
	}
	s.invalidate(ctx)
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	recipe, err := s.repo.Get(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "recipe not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load recipe")
	}
	return recipe, nil
}

func validateBaseServings(n int) error {
	if n < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "base_servings must be at least 1").WithDetails(map[string]any{"base_servings": n})
	}
	return nil
}

func (s *service) buildLines(ctx context.Context, inputs []LineInput) ([]models.RecipeLine, error) {
	type lineKey struct {
		id   uuid.UUID
		unit enums.Unit
	}
	seen := make(map[lineKey]int, len(inputs))
	ids := make([]uuid.UUID, 0, len(inputs))
	lines := make([]models.RecipeLine, 0, len(inputs))

	for i, in := range inputs {
		field := fmt.Sprintf("lines[%d]", i)
		if in.IngredientID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "ingredient_id is required").WithDetails(map[string]any{"field": field})
		}
		if !in.Unit.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid unit").WithDetails(map[string]any{"field": field, "unit": string(in.Unit)})
		}
		if in.Quantity.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative").WithDetails(map[string]any{"field": field})
		}
		key := lineKey{in.IngredientID, in.Unit}
		if prev, ok := seen[key]; ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate ingredient and unit").
				WithDetails(map[string]any{"field": field, "duplicate_of": fmt.Sprintf("lines[%d]", prev)})
		}
		seen[key] = i
		ids = append(ids, in.IngredientID)
		lines = append(lines, models.RecipeLine{
			IngredientID: in.IngredientID,
			Quantity:     in.Quantity,
			Unit:         in.Unit,
			Position:     i,
		})
	}

	found, err := s.ingredients.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ingredients")
	}
	known := make(map[uuid.UUID]struct{}, len(found))
	for _, ing := range found {
		known[ing.ID] = struct{}{}
	}
	var missing []string
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			missing = append(missing, id.String())
		}
	}
	if len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ingredient not found").WithDetails(map[string]any{"ingredient_ids": missing})
	}
	return lines, nil
}

func (s *service) dto(ctx context.Context, recipe models.Recipe) (*RecipeDTO, error) {
	names, err := s.names(ctx, recipe)
	if err != nil {
		return nil, err
	}
	out := toDTO(recipe, names)
	return &out, nil
}

func (s *service) names(ctx context.Context, recipes ...models.Recipe) (map[uuid.UUID]string, error) {
	var ids []uuid.UUID
	for _, recipe := range recipes {
		for _, line := range recipe.Lines {
			ids = append(ids, line.IngredientID)
		}
	}
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	found, err := s.ingredients.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ingredients")
	}
	for _, ing := range found {
		names[ing.ID] = ing.Name
	}
	return names, nil
}

func (s *service) invalidate(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Invalidate(ctx); err != nil {
		s.logg.Error(ctx, "recipe.cache_invalidate_failed", err)
	}
}
