package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pantryplan-backend/internal/pantry"
	"github.com/angelmondragon/pantryplan-backend/internal/planner"
	"github.com/angelmondragon/pantryplan-backend/internal/shopping"
	"github.com/angelmondragon/pantryplan-backend/pkg/dates"
	"github.com/angelmondragon/pantryplan-backend/pkg/enums"
)

var riceID = uuid.MustParse("00000000-0000-0000-0000-00000000000a")

type stubShopping struct {
	shopping.Service
	report   *shopping.ShortfallReport
	rng      dates.Range
	servings int
}

func (s *stubShopping) GetShortfall(_ context.Context, rng dates.Range, servings int) (*shopping.ShortfallReport, error) {
	s.rng = rng
	s.servings = servings
	return s.report, nil
}

type stubPantry struct {
	pantry.Service
	deficits []pantry.ItemDTO
}

func (s *stubPantry) Deficits(context.Context) ([]pantry.ItemDTO, error) {
	return s.deficits, nil
}

type harness struct {
	shopping *stubShopping
	pantry   *stubPantry
	opened   int
	closed   int
}

func newHarness() *harness {
	return &harness{
		shopping: &stubShopping{report: &shopping.ShortfallReport{
			Lines: []shopping.ShortfallLine{{
				Key:      shopping.NewKey(riceID, enums.UnitGram),
				Name:     "Rice",
				Quantity: decimal.RequireFromString("333.3333"),
			}},
			SkippedMeals: []shopping.SkippedMeal{},
		}},
		pantry: &stubPantry{},
	}
}

func (h *harness) open(context.Context) (*planner.Services, func() error, error) {
	h.opened++
	return &planner.Services{Shopping: h.shopping, Pantry: h.pantry}, func() error {
		h.closed++
		return nil
	}, nil
}

func run(t *testing.T, open Opener, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand(open)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestWeekCommand(t *testing.T) {
	out, _, err := run(t, nil, "week", "--date", "2024-05-08")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 8)
	assert.Equal(t, "2024-05-06 – 2024-05-12", lines[0])
	assert.Equal(t, "Mon 2024-05-06", lines[1])
	assert.Equal(t, "Sun 2024-05-12", lines[7])
}

func TestWeekCommandOffset(t *testing.T) {
	out, _, err := run(t, nil, "week", "--date", "2024-05-08", "--offset", "-1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "2024-04-29 – 2024-05-05\n"))
}

func TestShortfallTable(t *testing.T) {
	h := newHarness()
	out, _, err := run(t, h.open, "shortfall", "--week", "2024-05-08", "--servings", "3")
	require.NoError(t, err)

	assert.Equal(t, dates.New(2024, 5, 6), h.shopping.rng.Start)
	assert.Equal(t, dates.New(2024, 5, 12), h.shopping.rng.End)
	assert.Equal(t, 3, h.shopping.servings)
	assert.Contains(t, out, "INGREDIENT")
	assert.Contains(t, out, "333.33")
	assert.Equal(t, 1, h.closed)
}

func TestShortfallCSVAndText(t *testing.T) {
	h := newHarness()
	out, _, err := run(t, h.open, "shortfall", "--start", "2024-05-06", "--end", "2024-05-07", "--format", "csv")
	require.NoError(t, err)
	assert.Equal(t, "\"Ingredient\",\"Quantity\",\"Unit\"\n\"Rice\",\"333.33\",\"g\"\n", out)

	h = newHarness()
	out, _, err = run(t, h.open, "shortfall", "--start", "2024-05-06", "--end", "2024-05-07", "--format", "text")
	require.NoError(t, err)
	assert.Equal(t, "Shopping list (2024-05-06 – 2024-05-07)\n• Rice: 333.33g\n", out)
}

func TestShortfallStartOnlyFillsWeekEnd(t *testing.T) {
	h := newHarness()
	_, _, err := run(t, h.open, "shortfall", "--start", "2024-05-07")
	require.NoError(t, err)
	assert.Equal(t, dates.New(2024, 5, 7), h.shopping.rng.Start)
	assert.Equal(t, dates.New(2024, 5, 12), h.shopping.rng.End)
	assert.Equal(t, 1, h.shopping.servings)
}

func TestShortfallReportsSkippedMeals(t *testing.T) {
	h := newHarness()
	mealID := uuid.New()
	h.shopping.report.SkippedMeals = []shopping.SkippedMeal{{
		MealID: mealID,
		Date:   dates.New(2024, 5, 6),
		Reason: "recipe not found",
	}}

	_, errOut, err := run(t, h.open, "shortfall", "--week", "2024-05-06")
	require.NoError(t, err)
	assert.Contains(t, errOut, mealID.String())
	assert.Contains(t, errOut, "recipe not found")
}

func TestShortfallRejectsBadInputBeforeOpening(t *testing.T) {
	cases := map[string][]string{
		"servings": {"shortfall", "--servings", "0"},
		"format":   {"shortfall", "--format", "xml"},
		"inverted": {"shortfall", "--start", "2024-05-07", "--end", "2024-05-06"},
		"date":     {"shortfall", "--week", "05/06/2024"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			h := newHarness()
			_, _, err := run(t, h.open, args...)
			require.Error(t, err)
			assert.Zero(t, h.opened)
		})
	}
}

func TestShortfallServingsErrorIsTyped(t *testing.T) {
	_, _, err := run(t, newHarness().open, "shortfall", "--servings", "-2")
	assert.True(t, errors.Is(err, shopping.ErrInvalidServings))
}

func TestShortfallFromConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plannerctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("servings: 4\nweek: \"2024-05-08\"\n"), 0o600))

	h := newHarness()
	_, _, err := run(t, h.open, "shortfall", "--config", path)
	require.NoError(t, err)
	assert.Equal(t, 4, h.shopping.servings)
	assert.Equal(t, dates.New(2024, 5, 6), h.shopping.rng.Start)
}

func TestShortfallFromEnv(t *testing.T) {
	t.Setenv("PLANNERCTL_SERVINGS", "6")

	h := newHarness()
	_, _, err := run(t, h.open, "shortfall", "--week", "2024-05-08")
	require.NoError(t, err)
	assert.Equal(t, 6, h.shopping.servings)
}

func TestDeficits(t *testing.T) {
	h := newHarness()
	out, _, err := run(t, h.open, "deficits")
	require.NoError(t, err)
	assert.Equal(t, "no deficits\n", out)

	h.pantry.deficits = []pantry.ItemDTO{{
		IngredientID:   riceID,
		IngredientName: "Rice",
		Unit:           enums.UnitGram,
		Quantity:       decimal.NewFromInt(-300),
	}}
	out, _, err = run(t, h.open, "deficits")
	require.NoError(t, err)
	assert.Contains(t, out, "Rice")
	assert.Contains(t, out, "-300")
}

func TestOpenerErrorPropagates(t *testing.T) {
	boom := errors.New("no database")
	_, _, err := run(t, func(context.Context) (*planner.Services, func() error, error) {
		return nil, nil, boom
	}, "deficits")
	assert.ErrorIs(t, err, boom)
}
