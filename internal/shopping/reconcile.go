package shopping

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/angelmondragon/pantryplan-backend/pkg/db/models"
)

// Reconcile subtracts pantry stock from demand and keeps only positive
// shortfalls. Pantry records that were never demanded are ignored. names
// resolves display names; unknown ingredients fall back to their id.
//
// The result is ordered by name, then unit, compared case- and
// accent-insensitively.
func Reconcile(demand []Line, pantry []models.PantryItem, names map[uuid.UUID]string) []ShortfallLine {
	stock := make(map[Key]decimal.Decimal, len(pantry))
	for _, item := range pantry {
		key := NewKey(item.IngredientID, item.Unit)
		stock[key] = stock[key].Add(item.Quantity)
	}

	out := make([]ShortfallLine, 0, len(demand))
	for _, line := range demand {
		missing := line.Quantity.Sub(stock[line.Key])
		if !missing.IsPositive() {
			continue
		}
		name, ok := names[line.IngredientID]
		if !ok || name == "" {
			name = line.IngredientID.String()
		}
		out = append(out, ShortfallLine{Key: line.Key, Name: name, Quantity: missing})
	}

	SortShortfall(out)
	return out
}

// SortShortfall orders lines by display name then unit using base-level
// collation. Ties fall back to ingredient id so output is deterministic.
func SortShortfall(lines []ShortfallLine) {
	// collators are not safe for concurrent use
	col := collate.New(language.Und, collate.Loose)
	sort.SliceStable(lines, func(i, j int) bool {
		a, b := lines[i], lines[j]
		if c := col.CompareString(a.Name, b.Name); c != 0 {
			return c < 0
		}
		if c := col.CompareString(string(a.Unit), string(b.Unit)); c != 0 {
			return c < 0
		}
		return a.IngredientID.String() < b.IngredientID.String()
	})
}
