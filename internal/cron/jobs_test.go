package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pantryplan-backend/internal/exports"
	"github.com/angelmondragon/pantryplan-backend/internal/pantry"
	"github.com/angelmondragon/pantryplan-backend/pkg/dates"
	"github.com/angelmondragon/pantryplan-backend/pkg/enums"
)

type recordingExporter struct {
	ranges   []dates.Range
	servings []int
	failOn   map[string]error
}

func (r *recordingExporter) Export(_ context.Context, rng dates.Range, servings int) (*exports.Result, error) {
	r.ranges = append(r.ranges, rng)
	r.servings = append(r.servings, servings)
	if err := r.failOn[rng.Start.String()]; err != nil {
		return nil, err
	}
	return &exports.Result{Key: exports.ObjectName(rng), Range: rng}, nil
}

func newExportJob(t *testing.T, exp *recordingExporter, weeks int) *shoppingListExportJob {
	t.Helper()
	job, err := NewShoppingListExportJob(ShoppingListExportJobParams{
		Logger:   testLogger(),
		Exporter: exp,
		Servings: 2,
		Weeks:    weeks,
	})
	require.NoError(t, err)
	concrete, ok := job.(*shoppingListExportJob)
	require.True(t, ok)
	// a Wednesday
	concrete.now = func() time.Time { return time.Date(2024, time.March, 6, 15, 0, 0, 0, time.UTC) }
	return concrete
}

func TestShoppingListExportJobExportsCurrentWeek(t *testing.T) {
	exp := &recordingExporter{}
	job := newExportJob(t, exp, 0)

	require.NoError(t, job.Run(context.Background()))
	require.Len(t, exp.ranges, 1)
	assert.Equal(t, "2024-03-04", exp.ranges[0].Start.String())
	assert.Equal(t, "2024-03-10", exp.ranges[0].End.String())
	assert.Equal(t, []int{2}, exp.servings)
	assert.Equal(t, "shopping-list-export", job.Name())
}

func TestShoppingListExportJobContinuesAfterFailure(t *testing.T) {
	exp := &recordingExporter{failOn: map[string]error{"2024-03-04": errors.New("denied")}}
	job := newExportJob(t, exp, 2)

	err := job.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "denied")
	require.Len(t, exp.ranges, 2)
	assert.Equal(t, "2024-03-11", exp.ranges[1].Start.String())
}

type stubDeficits struct {
	items []pantry.ItemDTO
	err   error
}

func (s stubDeficits) Deficits(context.Context) ([]pantry.ItemDTO, error) {
	return s.items, s.err
}

func TestPantryDeficitAuditJob(t *testing.T) {
	job, err := NewPantryDeficitAuditJob(PantryDeficitAuditJobParams{
		Logger: testLogger(),
		Pantry: stubDeficits{items: []pantry.ItemDTO{
			{ID: uuid.New(), IngredientID: uuid.New(), IngredientName: "Oil", Unit: enums.UnitTablespoon, Quantity: decimal.NewFromInt(-2)},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, "pantry-deficit-audit", job.Name())
	assert.NoError(t, job.Run(context.Background()))
}

func TestPantryDeficitAuditJobPropagatesErrors(t *testing.T) {
	job, err := NewPantryDeficitAuditJob(PantryDeficitAuditJobParams{
		Logger: testLogger(),
		Pantry: stubDeficits{err: errors.New("db down")},
	})
	require.NoError(t, err)
	assert.Error(t, job.Run(context.Background()))
}

func TestJobConstructorsValidate(t *testing.T) {
	_, err := NewShoppingListExportJob(ShoppingListExportJobParams{Logger: testLogger()})
	assert.Error(t, err)
	_, err = NewPantryDeficitAuditJob(PantryDeficitAuditJobParams{Pantry: stubDeficits{}})
	assert.Error(t, err)
}
