package recipes

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/pantryplan-backend/pkg/db/models"
)

// Repository persists recipes and their lines.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) withLines(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Lines", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

// List returns every recipe with its lines, ordered by title.
func (r *Repository) List(ctx context.Context) ([]models.Recipe, error) {
	var rows []models.Recipe
	if err := r.withLines(ctx).Order("title ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Get loads one recipe with its lines.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := r.withLines(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

// FindByIDs loads the recipes among ids with their lines. Unknown ids are
// absent from the result.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Recipe, error) {
	if len(ids) == 0 {
		return []models.Recipe{}, nil
	}
	var rows []models.Recipe
	if err := r.withLines(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Create inserts the recipe together with its lines.
func (r *Repository) Create(ctx context.Context, recipe *models.Recipe) error {
	return r.db.WithContext(ctx).Create(recipe).Error
}

// Update saves the recipe columns. When lines is non-nil the stored lines
// are replaced by it.
func (r *Repository) Update(ctx context.Context, recipe *models.Recipe, lines []models.RecipeLine) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Recipe{}).
			Where("id = ?", recipe.ID).
			Updates(map[string]any{
				"title":         recipe.Title,
				"description":   recipe.Description,
				"base_servings": recipe.BaseServings,
			}).Error
		if err != nil {
			return err
		}
		if lines == nil {
			return nil
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeLine{}).Error; err != nil {
			return err
		}
		if len(lines) == 0 {
			return nil
		}
		for i := range lines {
			lines[i].RecipeID = recipe.ID
		}
		return tx.Create(&lines).Error
	})
}

// Delete removes the recipe and its lines. gorm.ErrRecordNotFound is
// returned when nothing matched. Meals referencing it are left in place.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeLine{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Recipe{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
