package pantry

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/pantryplan-backend/pkg/db/models"
	"github.com/angelmondragon/pantryplan-backend/pkg/enums"
)

// Repository persists pantry items.
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

// List returns every pantry item ordered by ingredient then unit.
func (r *Repository) List(ctx context.Context) ([]models.PantryItem, error) {
	var rows []models.PantryItem
	err := r.db.WithContext(ctx).
		Order("ingredient_id ASC").
		Order("unit ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListNegative returns items whose quantity dropped below zero.
func (r *Repository) ListNegative(ctx context.Context) ([]models.PantryItem, error) {
	var rows []models.PantryItem
	err := r.db.WithContext(ctx).
		Where("quantity < 0").
		Order("quantity ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID loads one item.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.PantryItem, error) {
	var item models.PantryItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindByKey loads the item for an (ingredient, unit) pair.
func (r *Repository) FindByKey(ctx context.Context, ingredientID uuid.UUID, unit enums.Unit) (*models.PantryItem, error) {
	var item models.PantryItem
	err := r.db.WithContext(ctx).
		Where("ingredient_id = ? AND unit = ?", ingredientID, unit).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Upsert writes quantity for (ingredientID, unit) in a single statement.
// Add increments the stored quantity, set replaces it; either way a missing
// row is created with quantity.
func (r *Repository) Upsert(ctx context.Context, ingredientID uuid.UUID, unit enums.Unit, quantity decimal.Decimal, mode enums.PantryMode) (*models.PantryItem, error) {
	var updates clause.Set
	switch mode {
	case enums.PantryModeAdd:
		updates = clause.Assignments(map[string]any{
			"quantity":   gorm.Expr("pantry_items.quantity + excluded.quantity"),
			"updated_at": gorm.Expr("excluded.updated_at"),
		})
	case enums.PantryModeSet:
		updates = clause.AssignmentColumns([]string{"quantity", "updated_at"})
	default:
		return nil, fmt.Errorf("unsupported pantry mode %q", mode)
	}

	var out *models.PantryItem
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := models.PantryItem{IngredientID: ingredientID, Unit: unit, Quantity: quantity}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "ingredient_id"}, {Name: "unit"}},
			DoUpdates: updates,
		}).Create(&row).Error
		if err != nil {
			return err
		}
		item, err := r.WithTx(tx).FindByKey(ctx, ingredientID, unit)
		if err != nil {
			return err
		}
		out = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes an item outright. gorm.ErrRecordNotFound is returned when
// nothing matched.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.PantryItem{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
