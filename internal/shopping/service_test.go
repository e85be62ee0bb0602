package shopping

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pantryplan-backend/pkg/dates"
	"github.com/angelmondragon/pantryplan-backend/pkg/db/models"
	"github.com/angelmondragon/pantryplan-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pantryplan-backend/pkg/errors"
	"github.com/angelmondragon/pantryplan-backend/pkg/logger"
	"github.com/angelmondragon/pantryplan-backend/pkg/metrics"
)

type fakeMeals struct {
	meals []models.Meal
	err   error
	calls int
}

func (f *fakeMeals) ListRange(_ context.Context, start, end dates.Date) ([]models.Meal, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	rng := dates.Range{Start: start, End: end}
	var out []models.Meal
	for _, meal := range f.meals {
		if rng.Contains(dates.FromTime(meal.Date)) {
			out = append(out, meal)
		}
	}
	return out, nil
}

type fakeRecipes struct {
	recipes map[uuid.UUID]models.Recipe
}

func (f *fakeRecipes) FindByIDs(_ context.Context, ids []uuid.UUID) ([]models.Recipe, error) {
	var out []models.Recipe
	for _, id := range ids {
		if recipe, ok := f.recipes[id]; ok {
			out = append(out, recipe)
		}
	}
	return out, nil
}

type fakeIngredients struct {
	names map[uuid.UUID]string
}

func (f *fakeIngredients) FindByIDs(_ context.Context, ids []uuid.UUID) ([]models.Ingredient, error) {
	var out []models.Ingredient
	for _, id := range ids {
		if name, ok := f.names[id]; ok {
			out = append(out, models.Ingredient{ID: id, Name: name})
		}
	}
	return out, nil
}

type serviceFixture struct {
	svc    Service
	meals  *fakeMeals
	pantry *memoryPantry
	logs   *bytes.Buffer
	rng    dates.Range
}

func newServiceFixture(t *testing.T, cache Cache) *serviceFixture {
	t.Helper()
	recipe := breadRecipe()
	monday := dates.New(2024, 3, 4)
	meals := &fakeMeals{meals: []models.Meal{
		mealOn(monday, recipe.ID),
		mealOn(monday.AddDays(3), recipe.ID),
		mealOn(monday.AddDays(8), recipe.ID), // next week
	}}
	pantry := newMemoryPantry()
	pantry.items[NewKey(flourID, enums.UnitGram)] = qty("150")

	var logs bytes.Buffer
	svc, err := NewService(ServiceParams{
		Meals:       meals,
		Recipes:     &fakeRecipes{recipes: map[uuid.UUID]models.Recipe{recipe.ID: recipe}},
		Ingredients: &fakeIngredients{names: ingredientNames()},
		Pantry:      pantry,
		Mutator:     pantry,
		Cache:       cache,
		Metrics:     metrics.NewPlannerMetrics(prometheus.NewRegistry()),
		Logger:      logger.New(logger.Options{ServiceName: "test", Output: &logs, Format: "json"}),
	})
	require.NoError(t, err)
	return &serviceFixture{svc: svc, meals: meals, pantry: pantry, logs: &logs, rng: dates.WeekOf(monday)}
}

func TestNewServiceRequiresCollaborators(t *testing.T) {
	_, err := NewService(ServiceParams{})
	assert.Error(t, err)
}

func TestGetShortfallScenario(t *testing.T) {
	f := newServiceFixture(t, nil)

	report, err := f.svc.GetShortfall(context.Background(), f.rng, 2)
	require.NoError(t, err)
	require.Len(t, report.Lines, 2)

	assert.Equal(t, "Egg", report.Lines[0].Name)
	assert.Equal(t, enums.UnitEach, report.Lines[0].Unit)
	requireQty(t, "4", report.Lines[0].Quantity)

	assert.Equal(t, "Flour", report.Lines[1].Name)
	assert.Equal(t, enums.UnitGram, report.Lines[1].Unit)
	requireQty(t, "250", report.Lines[1].Quantity)

	assert.Equal(t, 2, report.Servings)
	assert.Empty(t, report.SkippedMeals)
}

func TestGetShortfallSkipsMissingRecipesAndLogs(t *testing.T) {
	f := newServiceFixture(t, nil)
	orphan := mealOn(dates.New(2024, 3, 5), uuid.New())
	f.meals.meals = append(f.meals.meals, orphan)

	report, err := f.svc.GetShortfall(context.Background(), f.rng, 2)
	require.NoError(t, err)
	require.Len(t, report.SkippedMeals, 1)
	assert.Equal(t, orphan.ID, report.SkippedMeals[0].MealID)
	assert.Len(t, report.Lines, 2)
	assert.Contains(t, f.logs.String(), "shortfall.meal_skipped_missing_recipe")
	assert.Contains(t, f.logs.String(), orphan.ID.String())
}

func TestGetShortfallValidatesInput(t *testing.T) {
	f := newServiceFixture(t, nil)

	_, err := f.svc.GetShortfall(context.Background(), f.rng, 0)
	assert.True(t, errors.Is(err, ErrInvalidServings))

	inverted := dates.Range{Start: f.rng.End, End: f.rng.Start}
	_, err = f.svc.GetShortfall(context.Background(), inverted, 2)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
	assert.Equal(t, 0, f.meals.calls)
}

func TestGetShortfallWrapsStoreFailures(t *testing.T) {
	f := newServiceFixture(t, nil)
	f.meals.err = errors.New("db down")

	_, err := f.svc.GetShortfall(context.Background(), f.rng, 2)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeDependency))
}

func TestGetShortfallUsesVersionedCache(t *testing.T) {
	store := newFakeCacheStore()
	cache := NewRedisCache(store, time.Minute)
	f := newServiceFixture(t, cache)
	ctx := context.Background()

	_, err := f.svc.GetShortfall(ctx, f.rng, 2)
	require.NoError(t, err)
	_, err = f.svc.GetShortfall(ctx, f.rng, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, f.meals.calls, "second read should be served from cache")

	require.NoError(t, cache.Invalidate(ctx))
	_, err = f.svc.GetShortfall(ctx, f.rng, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, f.meals.calls, "a version bump forces recomputation")
}

func TestGetShortfallRecomputesWhenCacheUnavailable(t *testing.T) {
	store := newFakeCacheStore()
	store.failGet = errors.New("connection refused")
	f := newServiceFixture(t, NewRedisCache(store, time.Minute))

	report, err := f.svc.GetShortfall(context.Background(), f.rng, 2)
	require.NoError(t, err)
	assert.Len(t, report.Lines, 2)
	assert.Contains(t, f.logs.String(), "shortfall.cache_version_failed")
}

func TestCommitPurchasesScenario(t *testing.T) {
	f := newServiceFixture(t, nil)
	flour := NewKey(flourID, enums.UnitGram)
	egg := NewKey(eggID, enums.UnitEach)

	result, err := f.svc.CommitPurchases(context.Background(), CommitInput{
		Range:       f.rng,
		Servings:    2,
		Purchased:   map[Key]float64{flour: 300},
		OnlyChecked: []Key{flour},
	})
	require.NoError(t, err)
	assert.Equal(t, CommitApplied, result.Outcome)
	assert.Equal(t, []Key{flour}, result.Applied)

	requireQty(t, "450", f.pantry.items[flour])
	_, touched := f.pantry.items[egg]
	assert.False(t, touched)

	report, err := f.svc.GetShortfall(context.Background(), f.rng, 2)
	require.NoError(t, err)
	require.Len(t, report.Lines, 1)
	assert.Equal(t, "Egg", report.Lines[0].Name)
}

func TestCommitPurchasesNoValidCandidates(t *testing.T) {
	f := newServiceFixture(t, nil)
	egg := NewKey(eggID, enums.UnitEach)

	result, err := f.svc.CommitPurchases(context.Background(), CommitInput{
		Range:       f.rng,
		Servings:    2,
		Purchased:   map[Key]float64{egg: -1},
		OnlyChecked: []Key{egg},
	})
	require.NoError(t, err)
	assert.Equal(t, CommitNoop, result.Outcome)
	assert.Empty(t, f.pantry.calls)
	assert.Contains(t, f.logs.String(), "shopping.commit_noop")
}

func TestCommitPurchasesPartialFailureIsLogged(t *testing.T) {
	f := newServiceFixture(t, nil)
	egg := NewKey(eggID, enums.UnitEach)
	f.pantry.failKeys[egg] = errors.New("store unavailable")

	result, err := f.svc.CommitPurchases(context.Background(), CommitInput{Range: f.rng, Servings: 2})
	require.NoError(t, err)
	assert.Equal(t, CommitPartial, result.Outcome)
	require.Len(t, result.Failures, 1)
	assert.True(t, strings.Contains(f.logs.String(), "shopping.commit_failures"))
	assert.True(t, strings.Contains(f.logs.String(), egg.String()))
}
