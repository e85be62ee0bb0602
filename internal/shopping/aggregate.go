package shopping

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/pantryplan-backend/pkg/dates"
	"github.com/angelmondragon/pantryplan-backend/pkg/db/models"
)

// SkippedMeal is a planned meal left out of aggregation.
type SkippedMeal struct {
	MealID   uuid.UUID  `json:"meal_id"`
	RecipeID uuid.UUID  `json:"recipe_id"`
	Date     dates.Date `json:"date"`
	Reason   string     `json:"reason"`
}

// Demand is the summed requirement of a set of meals.
type Demand struct {
	Lines   []Line
	Skipped []SkippedMeal
}

// Aggregate scales every meal's recipe to servingsPerMeal and sums the
// result per key. Meals whose recipe is absent from recipes are reported in
// Skipped instead of failing the whole computation.
func Aggregate(meals []models.Meal, recipes map[uuid.UUID]models.Recipe, servingsPerMeal int) (Demand, error) {
	if servingsPerMeal <= 0 {
		return Demand{}, invalidServings("servings", servingsPerMeal)
	}

	acc := newMerge()
	var skipped []SkippedMeal
	for _, meal := range meals {
		recipe, ok := recipes[meal.RecipeID]
		if !ok {
			skipped = append(skipped, SkippedMeal{
				MealID:   meal.ID,
				RecipeID: meal.RecipeID,
				Date:     dates.FromTime(meal.Date),
				Reason:   ErrMissingRecipe.Message(),
			})
			continue
		}
		scaled, err := Scale(recipe, servingsPerMeal)
		if err != nil {
			return Demand{}, err
		}
		for _, line := range scaled {
			acc.add(line.Key, line.Quantity)
		}
	}

	return Demand{Lines: acc.lines(), Skipped: skipped}, nil
}
