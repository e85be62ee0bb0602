package shopping

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pantryplan-backend/pkg/db/models"
)

// Scale multiplies each recipe line by targetServings/baseServings. Lines
// keep recipe order and no rounding is applied.
func Scale(recipe models.Recipe, targetServings int) ([]Line, error) {
	if recipe.BaseServings <= 0 {
		return nil, invalidServings("base_servings", recipe.BaseServings)
	}
	if targetServings <= 0 {
		return nil, invalidServings("servings", targetServings)
	}

	target := decimal.NewFromInt(int64(targetServings))
	base := decimal.NewFromInt(int64(recipe.BaseServings))

	out := make([]Line, 0, len(recipe.Lines))
	for _, line := range recipe.Lines {
		out = append(out, Line{
			Key: NewKey(line.IngredientID, line.Unit),
			// multiply first so exact multiples of the base stay exact
			Quantity: line.Quantity.Mul(target).Div(base),
		})
	}
	return out, nil
}
