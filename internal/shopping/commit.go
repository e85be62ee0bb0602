package shopping

import (
	"context"
	"math"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pantryplan-backend/pkg/db/models"
	"github.com/angelmondragon/pantryplan-backend/pkg/enums"
)

// Mutator applies a single pantry upsert. It is satisfied by the pantry
// service.
type Mutator interface {
	Upsert(ctx context.Context, ingredientID uuid.UUID, unit enums.Unit, quantity decimal.Decimal, mode enums.PantryMode) (*models.PantryItem, error)
}

// CommitOutcome summarizes a purchase commit.
type CommitOutcome string

const (
	CommitApplied CommitOutcome = "applied"
	CommitPartial CommitOutcome = "partial"
	CommitFailed  CommitOutcome = "failed"
	// CommitNoop means no candidate had a positive purchased quantity.
	CommitNoop CommitOutcome = "noop"
)

// MutationFailure is one key whose pantry update failed.
type MutationFailure struct {
	Key     Key    `json:"key"`
	Name    string `json:"ingredient_name"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// CommitResult reports what a commit changed.
type CommitResult struct {
	Outcome  CommitOutcome     `json:"outcome"`
	Applied  []Key             `json:"applied"`
	Failures []MutationFailure `json:"failures"`
}

// Purchase is the amount of one key to add to the pantry.
type Purchase struct {
	Key
	Name     string          `json:"ingredient_name"`
	Quantity decimal.Decimal `json:"quantity"`
}

// PlanPurchases picks the shortfall lines to buy and how much of each.
//
// onlyChecked limits candidates when non-nil. A candidate's amount comes
// from purchased, defaulting to the shortfall quantity; non-finite or
// non-positive amounts drop the candidate. Candidates sharing a key are
// summed so each key is submitted once.
func PlanPurchases(shortfall []ShortfallLine, purchased map[Key]float64, onlyChecked map[Key]struct{}) []Purchase {
	acc := newMerge()
	names := make(map[Key]string)
	for _, line := range shortfall {
		if onlyChecked != nil {
			if _, ok := onlyChecked[line.Key]; !ok {
				continue
			}
		}

		qty := line.Quantity
		if edited, ok := purchased[line.Key]; ok {
			if math.IsNaN(edited) || math.IsInf(edited, 0) || edited <= 0 {
				continue
			}
			qty = decimal.NewFromFloat(edited)
		}
		if !qty.IsPositive() {
			continue
		}

		acc.add(line.Key, qty)
		if _, ok := names[line.Key]; !ok {
			names[line.Key] = line.Name
		}
	}

	out := make([]Purchase, 0, len(acc.order))
	for _, line := range acc.lines() {
		out = append(out, Purchase{Key: line.Key, Name: names[line.Key], Quantity: line.Quantity})
	}
	return out
}

// ApplyPurchases adds each purchase to the pantry one key at a time. A
// failed key is recorded and the loop moves on; concurrent submission would
// race on the same pantry record.
func ApplyPurchases(ctx context.Context, mutator Mutator, purchases []Purchase) CommitResult {
	result := CommitResult{Applied: []Key{}, Failures: []MutationFailure{}}
	if len(purchases) == 0 {
		result.Outcome = CommitNoop
		return result
	}

	for _, p := range purchases {
		if err := ctx.Err(); err != nil {
			result.Failures = append(result.Failures, MutationFailure{Key: p.Key, Name: p.Name, Message: err.Error(), Err: err})
			continue
		}
		if _, err := mutator.Upsert(ctx, p.IngredientID, p.Unit, p.Quantity, enums.PantryModeAdd); err != nil {
			result.Failures = append(result.Failures, MutationFailure{Key: p.Key, Name: p.Name, Message: err.Error(), Err: err})
			continue
		}
		result.Applied = append(result.Applied, p.Key)
	}

	switch {
	case len(result.Failures) == 0:
		result.Outcome = CommitApplied
	case len(result.Applied) == 0:
		result.Outcome = CommitFailed
	default:
		result.Outcome = CommitPartial
	}
	return result
}
