package shopping

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pantryplan-backend/pkg/enums"
)

// Key identifies demand, shortfall and pantry records. Two records merge
// only when both the ingredient and the unit string match exactly.
type Key struct {
	IngredientID uuid.UUID  `json:"ingredient_id"`
	Unit         enums.Unit `json:"unit"`
}

func NewKey(ingredientID uuid.UUID, unit enums.Unit) Key {
	return Key{IngredientID: ingredientID, Unit: unit}
}

// String renders the key as "<ingredient id>/<unit>".
func (k Key) String() string {
	return k.IngredientID.String() + "/" + string(k.Unit)
}

// ParseKey reads the String form back.
func ParseKey(raw string) (Key, error) {
	id, unit, ok := strings.Cut(strings.TrimSpace(raw), "/")
	if !ok {
		return Key{}, fmt.Errorf("invalid key %q: expected <ingredient_id>/<unit>", raw)
	}
	ingredientID, err := uuid.Parse(id)
	if err != nil {
		return Key{}, fmt.Errorf("invalid key %q: %w", raw, err)
	}
	if unit == "" {
		return Key{}, fmt.Errorf("invalid key %q: unit is empty", raw)
	}
	return Key{IngredientID: ingredientID, Unit: enums.Unit(unit)}, nil
}

// Line is a quantity of one ingredient in one unit. Scaled recipe lines and
// aggregated demand both use it.
type Line struct {
	Key
	Quantity decimal.Decimal `json:"quantity"`
}

// ShortfallLine is demand not covered by the pantry.
type ShortfallLine struct {
	Key
	Name     string          `json:"ingredient_name"`
	Quantity decimal.Decimal `json:"quantity"`
}

// FormatQuantity rounds to two decimals for display. Internal arithmetic
// never rounds.
func FormatQuantity(q decimal.Decimal) string {
	return q.Round(2).String()
}

// merge sums quantities per key, keeping first-seen order.
type merge struct {
	order []Key
	sums  map[Key]decimal.Decimal
}

func newMerge() *merge {
	return &merge{sums: make(map[Key]decimal.Decimal)}
}

func (m *merge) add(key Key, q decimal.Decimal) {
	current, ok := m.sums[key]
	if !ok {
		m.order = append(m.order, key)
		m.sums[key] = q
		return
	}
	m.sums[key] = current.Add(q)
}

func (m *merge) lines() []Line {
	out := make([]Line, 0, len(m.order))
	for _, key := range m.order {
		out = append(out, Line{Key: key, Quantity: m.sums[key]})
	}
	return out
}
