package ingredients

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/pantryplan-backend/pkg/db/models"
	"github.com/angelmondragon/pantryplan-backend/pkg/enums"
)

// Repository persists ingredients.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns every ingredient ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.Ingredient, error) {
	var rows []models.Ingredient
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByIDs loads the ingredients among ids. Unknown ids are absent from the
// result.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Ingredient, error) {
	if len(ids) == 0 {
		return []models.Ingredient{}, nil
	}
	var rows []models.Ingredient
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) FindByName(ctx context.Context, name string) (*models.Ingredient, error) {
	var ing models.Ingredient
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&ing).Error; err != nil {
		return nil, err
	}
	return &ing, nil
}

func (r *Repository) Create(ctx context.Context, ing *models.Ingredient) error {
	return r.db.WithContext(ctx).Create(ing).Error
}

// UpdateDefaultUnit changes the unit suggested for new recipe lines.
func (r *Repository) UpdateDefaultUnit(ctx context.Context, id uuid.UUID, unit enums.Unit) error {
	return r.db.WithContext(ctx).
		Model(&models.Ingredient{}).
		Where("id = ?", id).
		Update("default_unit", unit).Error
}
