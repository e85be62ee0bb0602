package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Meal schedules a recipe on a calendar day. Recipe data is never copied.
type Meal struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Date      time.Time `gorm:"column:date;type:date;not null;index:meals_date_idx;uniqueIndex:meals_date_recipe_key"`
	RecipeID  uuid.UUID `gorm:"column:recipe_id;type:uuid;not null;uniqueIndex:meals_date_recipe_key"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Meal) TableName() string { return "meals" }

func (m *Meal) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
