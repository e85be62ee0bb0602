package ingredients

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/pantryplan-backend/pkg/db"
	"github.com/angelmondragon/pantryplan-backend/pkg/db/models"
	"github.com/angelmondragon/pantryplan-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pantryplan-backend/pkg/errors"
	"github.com/angelmondragon/pantryplan-backend/pkg/logger"
)

// Service manages ingredient reference data.
type Service interface {
	List(ctx context.Context) ([]IngredientDTO, error)
	Add(ctx context.Context, name string, defaultUnit enums.Unit) (*IngredientDTO, bool, error)
}

// IngredientDTO is the ingredient payload returned to clients.
type IngredientDTO struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	DefaultUnit enums.Unit `json:"default_unit"`
}

type repository interface {
	List(ctx context.Context) ([]models.Ingredient, error)
	FindByName(ctx context.Context, name string) (*models.Ingredient, error)
	Create(ctx context.Context, ing *models.Ingredient) error
	UpdateDefaultUnit(ctx context.Context, id uuid.UUID, unit enums.Unit) error
}

type service struct {
	repo repository
	logg *logger.Logger
}

// NewService constructs an ingredient service instance.
func NewService(repo repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ingredient repository required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) List(ctx context.Context) ([]IngredientDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ingredients")
	}
	out := make([]IngredientDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDTO(row))
	}
	return out, nil
}

// Add returns the ingredient called name, creating it when missing. An
// existing ingredient takes defaultUnit when it differs. The bool reports
// whether a row was created.
func (s *service) Add(ctx context.Context, name string, defaultUnit enums.Unit) (*IngredientDTO, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if !defaultUnit.IsValid() {
		return nil, false, pkgerrors.New(pkgerrors.CodeValidation, "invalid unit").WithDetails(map[string]any{"default_unit": string(defaultUnit)})
	}

	existing, err := s.repo.FindByName(ctx, name)
	switch {
	case err == nil:
		return s.refreshUnit(ctx, existing, defaultUnit)
	case !db.IsNotFound(err):
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ingredient")
	}

	ing := &models.Ingredient{Name: name, DefaultUnit: defaultUnit}
	if err := s.repo.Create(ctx, ing); err != nil {
		if !db.IsUniqueViolation(err, "") {
			return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create ingredient")
		}
		// lost a race with a concurrent add of the same name
		existing, err := s.repo.FindByName(ctx, name)
		if err != nil {
			return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ingredient")
		}
		return s.refreshUnit(ctx, existing, defaultUnit)
	}

	s.logg.Info(s.logg.WithField(ctx, "ingredient_id", ing.ID.String()), "ingredient.created")
	dto := toDTO(*ing)
	return &dto, true, nil
}

func (s *service) refreshUnit(ctx context.Context, ing *models.Ingredient, unit enums.Unit) (*IngredientDTO, bool, error) {
	if ing.DefaultUnit != unit {
		if err := s.repo.UpdateDefaultUnit(ctx, ing.ID, unit); err != nil {
			return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update ingredient unit")
		}
		ing.DefaultUnit = unit
	}
	dto := toDTO(*ing)
	return &dto, false, nil
}

func toDTO(ing models.Ingredient) IngredientDTO {
	return IngredientDTO{ID: ing.ID, Name: ing.Name, DefaultUnit: ing.DefaultUnit}
}
