package shopping

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pantryplan-backend/pkg/db/models"
	"github.com/angelmondragon/pantryplan-backend/pkg/enums"
)

func TestReconcileEmitsOnlyPositiveShortfall(t *testing.T) {
	demand := []Line{
		{Key: NewKey(flourID, enums.UnitGram), Quantity: qty("400")},
		{Key: NewKey(eggID, enums.UnitEach), Quantity: qty("4")},
		{Key: NewKey(milkID, enums.UnitMilliliter), Quantity: qty("250")},
	}
	pantry := []models.PantryItem{
		{IngredientID: flourID, Unit: enums.UnitGram, Quantity: qty("150")},
		{IngredientID: milkID, Unit: enums.UnitMilliliter, Quantity: qty("250")},
	}

	lines := Reconcile(demand, pantry, ingredientNames())
	require.Len(t, lines, 2)

	assert.Equal(t, "Egg", lines[0].Name)
	requireQty(t, "4", lines[0].Quantity)
	assert.Equal(t, "Flour", lines[1].Name)
	requireQty(t, "250", lines[1].Quantity)
}

func TestReconcileNoFalseShortfall(t *testing.T) {
	demand := []Line{{Key: NewKey(flourID, enums.UnitGram), Quantity: qty("400")}}
	for _, stock := range []string{"400", "400.001", "10000"} {
		pantry := []models.PantryItem{{IngredientID: flourID, Unit: enums.UnitGram, Quantity: qty(stock)}}
		assert.Empty(t, Reconcile(demand, pantry, ingredientNames()), "stock %s", stock)
	}
}

func TestReconcileUnitIsolation(t *testing.T) {
	demand := []Line{{Key: NewKey(flourID, enums.UnitGram), Quantity: qty("400")}}
	pantry := []models.PantryItem{{IngredientID: flourID, Unit: enums.UnitKilogram, Quantity: qty("5")}}

	lines := Reconcile(demand, pantry, ingredientNames())
	require.Len(t, lines, 1)
	requireQty(t, "400", lines[0].Quantity)
	assert.Equal(t, enums.UnitGram, lines[0].Unit)
}

func TestReconcileIgnoresPantryOnlyIngredients(t *testing.T) {
	pantry := []models.PantryItem{{IngredientID: milkID, Unit: enums.UnitLiter, Quantity: qty("1")}}
	assert.Empty(t, Reconcile(nil, pantry, ingredientNames()))
}

func TestReconcileNegativeStockIncreasesShortfall(t *testing.T) {
	demand := []Line{{Key: NewKey(eggID, enums.UnitEach), Quantity: qty("4")}}
	pantry := []models.PantryItem{{IngredientID: eggID, Unit: enums.UnitEach, Quantity: qty("-2")}}

	lines := Reconcile(demand, pantry, ingredientNames())
	require.Len(t, lines, 1)
	requireQty(t, "6", lines[0].Quantity)
}

func TestReconcileFallsBackToIDForUnknownNames(t *testing.T) {
	unknown := uuid.New()
	demand := []Line{{Key: NewKey(unknown, enums.UnitPiece), Quantity: qty("1")}}

	lines := Reconcile(demand, nil, ingredientNames())
	require.Len(t, lines, 1)
	assert.Equal(t, unknown.String(), lines[0].Name)
}

func TestSortShortfallIsCaseAndAccentInsensitive(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New(), uuid.New(), uuid.New()}
	lines := []ShortfallLine{
		{Key: NewKey(ids[0], enums.UnitGram), Name: "zucchini"},
		{Key: NewKey(ids[1], enums.UnitGram), Name: "Éclair cream"},
		{Key: NewKey(ids[2], enums.UnitKilogram), Name: "apple"},
		{Key: NewKey(ids[2], enums.UnitGram), Name: "apple"},
		{Key: NewKey(ids[3], enums.UnitEach), Name: "Banana"},
		{Key: NewKey(ids[4], enums.UnitEach), Name: "egg"},
	}

	SortShortfall(lines)

	got := make([]string, 0, len(lines))
	for _, line := range lines {
		got = append(got, line.Name+"/"+string(line.Unit))
	}
	assert.Equal(t, []string{
		"apple/g",
		"apple/kg",
		"Banana/u",
		"Éclair cream/g",
		"egg/u",
		"zucchini/g",
	}, got)
}
