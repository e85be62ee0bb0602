package meals

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/angelmondragon/pantryplan-backend/pkg/dates"
	"github.com/angelmondragon/pantryplan-backend/pkg/db"
	"github.com/angelmondragon/pantryplan-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/pantryplan-backend/pkg/errors"
	"github.com/angelmondragon/pantryplan-backend/pkg/logger"
)

// Service schedules recipes on calendar days.
type Service interface {
	List(ctx context.Context, rng dates.Range) ([]MealDTO, error)
	Create(ctx context.Context, date dates.Date, recipeID uuid.UUID) (*MealDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// MealDTO is a planned meal with the recipe title resolved. RecipeTitle is
// empty when the recipe has since been deleted.
type MealDTO struct {
	ID          uuid.UUID  `json:"id"`
	Date        dates.Date `json:"date"`
	RecipeID    uuid.UUID  `json:"recipe_id"`
	RecipeTitle string     `json:"recipe_title"`
}

type repository interface {
	ListRange(ctx context.Context, start, end dates.Date) ([]models.Meal, error)
	Create(ctx context.Context, meal *models.Meal) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type recipeLookup interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Recipe, error)
}

type invalidator interface {
	Invalidate(ctx context.Context) error
}

type service struct {
	repo        repository
	recipes     recipeLookup
	invalidator invalidator
	maxDays     int
	logg        *logger.Logger
}

// NewService constructs a meal service instance. inv may be nil; maxDays
// bounds listed ranges and is unlimited when zero.
func NewService(repo repository, recipes recipeLookup, inv invalidator, maxDays int, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("meal repository required")
	}
	if recipes == nil {
		return nil, fmt.Errorf("recipe lookup required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, recipes: recipes, invalidator: inv, maxDays: maxDays, logg: logg}, nil
}

func (s *service) List(ctx context.Context, rng dates.Range) ([]MealDTO, error) {
	if err := rng.Validate(s.maxDays); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}
	rows, err := s.repo.ListRange(ctx, rng.Start, rng.End)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list meals")
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.RecipeID)
	}
	titles := make(map[uuid.UUID]string, len(ids))
	if len(ids) > 0 {
		found, err := s.recipes.FindByIDs(ctx, ids)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load recipes")
		}
		for _, recipe := range found {
			titles[recipe.ID] = recipe.Title
		}
	}

	out := make([]MealDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDTO(row, titles[row.RecipeID]))
	}
	return out, nil
}

// Create plans recipeID on date. The same recipe may be planned on many
// days but only once per day.
func (s *service) Create(ctx context.Context, date dates.Date, recipeID uuid.UUID) (*MealDTO, error) {
	if date.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date is required")
	}
	if recipeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipe_id is required")
	}

	found, err := s.recipes.FindByIDs(ctx, []uuid.UUID{recipeID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load recipe")
	}
	if len(found) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "recipe not found")
	}

	meal := &models.Meal{Date: date.Time(), RecipeID: recipeID}
	if err := s.repo.Create(ctx, meal); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "recipe already planned for this date").
				WithDetails(map[string]any{"date": date.String(), "recipe_id": recipeID.String()})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create meal")
	}

	s.logg.Info(s.logg.WithMealID(ctx, meal.ID.String()), "meal.planned")
	s.invalidate(ctx)
	dto := toDTO(*meal, found[0].Title)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "meal not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete meal")
	}
	s.invalidate(ctx)
	return nil
}

func (s *service) invalidate(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Invalidate(ctx); err != nil {
		s.logg.Error(ctx, "meal.cache_invalidate_failed", err)
	}
}

func toDTO(meal models.Meal, title string) MealDTO {
	return MealDTO{
		ID:          meal.ID,
		Date:        dates.FromTime(meal.Date),
		RecipeID:    meal.RecipeID,
		RecipeTitle: title,
	}
}
