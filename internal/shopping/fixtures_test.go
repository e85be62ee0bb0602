package shopping

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pantryplan-backend/pkg/dates"
	"github.com/angelmondragon/pantryplan-backend/pkg/db/models"
	"github.com/angelmondragon/pantryplan-backend/pkg/enums"
)

var (
	flourID = uuid.MustParse("00000000-0000-0000-0000-00000000f10a")
	eggID   = uuid.MustParse("00000000-0000-0000-0000-0000000000e6")
	milkID  = uuid.MustParse("00000000-0000-0000-0000-0000000000a1")
)

func qty(raw string) decimal.Decimal {
	return decimal.RequireFromString(raw)
}

func requireQty(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, qty(want).Equal(got), "expected %s, got %s", want, got)
}

// breadRecipe serves 2: 200 g flour and 2 eggs.
func breadRecipe() models.Recipe {
	return models.Recipe{
		ID:           uuid.MustParse("00000000-0000-0000-0000-0000000000b1"),
		Title:        "Bread",
		BaseServings: 2,
		Lines: []models.RecipeLine{
			{IngredientID: flourID, Quantity: qty("200"), Unit: enums.UnitGram, Position: 0},
			{IngredientID: eggID, Quantity: qty("2"), Unit: enums.UnitEach, Position: 1},
		},
	}
}

func mealOn(day dates.Date, recipeID uuid.UUID) models.Meal {
	return models.Meal{ID: uuid.New(), Date: day.Time(), RecipeID: recipeID}
}

func ingredientNames() map[uuid.UUID]string {
	return map[uuid.UUID]string{flourID: "Flour", eggID: "Egg", milkID: "Milk"}
}

// memoryPantry is an in-memory Mutator with add/set semantics. It fails
// keys listed in failKeys and rejects overlapping calls.
type memoryPantry struct {
	mu       sync.Mutex
	items    map[Key]decimal.Decimal
	failKeys map[Key]error
	calls    []Key
	inFlight int
}

func newMemoryPantry() *memoryPantry {
	return &memoryPantry{items: map[Key]decimal.Decimal{}, failKeys: map[Key]error{}}
}

func (p *memoryPantry) Upsert(_ context.Context, ingredientID uuid.UUID, unit enums.Unit, quantity decimal.Decimal, mode enums.PantryMode) (*models.PantryItem, error) {
	p.mu.Lock()
	p.inFlight++
	overlapping := p.inFlight > 1
	defer func() {
		p.inFlight--
		p.mu.Unlock()
	}()
	if overlapping {
		return nil, errors.New("concurrent upsert")
	}

	key := NewKey(ingredientID, unit)
	p.calls = append(p.calls, key)
	if err, ok := p.failKeys[key]; ok {
		return nil, err
	}
	switch mode {
	case enums.PantryModeSet:
		p.items[key] = quantity
	default:
		p.items[key] = p.items[key].Add(quantity)
	}
	return &models.PantryItem{IngredientID: ingredientID, Unit: unit, Quantity: p.items[key]}, nil
}

func (p *memoryPantry) List(context.Context) ([]models.PantryItem, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.PantryItem, 0, len(p.items))
	for key, q := range p.items {
		out = append(out, models.PantryItem{IngredientID: key.IngredientID, Unit: key.Unit, Quantity: q})
	}
	return out, nil
}

func decimalInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}
