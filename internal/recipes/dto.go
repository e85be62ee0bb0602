package recipes

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pantryplan-backend/pkg/db/models"
	"github.com/angelmondragon/pantryplan-backend/pkg/enums"
)

// RecipeDTO is the recipe payload returned to clients.
type RecipeDTO struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	BaseServings int       `json:"base_servings"`
	Lines        []LineDTO `json:"lines"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type LineDTO struct {
	IngredientID   uuid.UUID       `json:"ingredient_id"`
	IngredientName string          `json:"ingredient_name,omitempty"`
	Quantity       decimal.Decimal `json:"quantity"`
	Unit           enums.Unit      `json:"unit"`
}

func toDTO(recipe models.Recipe, names map[uuid.UUID]string) RecipeDTO {
	lines := make([]LineDTO, 0, len(recipe.Lines))
	for _, line := range recipe.Lines {
		lines = append(lines, LineDTO{
			IngredientID:   line.IngredientID,
			IngredientName: names[line.IngredientID],
			Quantity:       line.Quantity,
			Unit:           line.Unit,
		})
	}
	return RecipeDTO{
		ID:           recipe.ID,
		Title:        recipe.Title,
		Description:  recipe.Description,
		BaseServings: recipe.BaseServings,
		Lines:        lines,
		UpdatedAt:    recipe.UpdatedAt,
	}
}
