package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/pantryplan-backend/pkg/enums"
)

// Recipe owns an ordered list of ingredient lines written for BaseServings.
type Recipe struct {
	ID           uuid.UUID    `gorm:"column:id;type:uuid;primaryKey"`
	Title        string       `gorm:"column:title;not null"`
	Description  string       `gorm:"column:description;not null;default:''"`
	BaseServings int          `gorm:"column:base_servings;not null;default:1"`
	Lines        []RecipeLine `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time    `gorm:"column:updated_at;autoUpdateTime"`
}

func (Recipe) TableName() string { return "recipes" }

func (r *Recipe) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// RecipeLine is one ingredient quantity within a recipe.
type RecipeLine struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	RecipeID     uuid.UUID       `gorm:"column:recipe_id;type:uuid;not null;index:recipe_lines_recipe_id_idx;uniqueIndex:recipe_lines_recipe_ingredient_unit_key"`
	IngredientID uuid.UUID       `gorm:"column:ingredient_id;type:uuid;not null;uniqueIndex:recipe_lines_recipe_ingredient_unit_key"`
	Quantity     decimal.Decimal `gorm:"column:quantity;type:numeric;not null"`
	Unit         enums.Unit      `gorm:"column:unit;not null;uniqueIndex:recipe_lines_recipe_ingredient_unit_key"`
	Position     int             `gorm:"column:position;not null;default:0"`
}

func (RecipeLine) TableName() string { return "recipe_lines" }

func (l *RecipeLine) BeforeCreate(_ *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
