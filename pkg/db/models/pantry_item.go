package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/pantryplan-backend/pkg/enums"
)

// PantryItem is stock on hand. At most one row exists per (ingredient, unit).
// Quantity may be negative after consumption outruns stock.
type PantryItem struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	IngredientID uuid.UUID       `gorm:"column:ingredient_id;type:uuid;not null;uniqueIndex:pantry_items_ingredient_unit_key"`
	Unit         enums.Unit      `gorm:"column:unit;not null;uniqueIndex:pantry_items_ingredient_unit_key"`
	Quantity     decimal.Decimal `gorm:"column:quantity;type:numeric;not null;default:0"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (PantryItem) TableName() string { return "pantry_items" }

func (p *PantryItem) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// All returns every model managed by the schema, in dependency order.
func All() []any {
	return []any{&Ingredient{}, &Recipe{}, &RecipeLine{}, &Meal{}, &PantryItem{}}
}
