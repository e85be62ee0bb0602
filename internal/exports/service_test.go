package exports

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pantryplan-backend/internal/shopping"
	"github.com/angelmondragon/pantryplan-backend/pkg/dates"
	"github.com/angelmondragon/pantryplan-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pantryplan-backend/pkg/errors"
)

type stubShortfall struct {
	report *shopping.ShortfallReport
	err    error
	calls  int
}

func (s *stubShortfall) GetShortfall(_ context.Context, rng dates.Range, servings int) (*shopping.ShortfallReport, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := *s.report
	out.Range = rng
	out.Servings = servings
	return &out, nil
}

type memoryStore struct {
	objects map[string]string
	err     error
}

func (m *memoryStore) Put(_ context.Context, name string, body []byte, _ string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	key := "shopping-lists/" + name
	m.objects[key] = string(body)
	return key, nil
}

func (m *memoryStore) Bucket() string { return "lists" }

var week = dates.WeekOf(dates.New(2024, time.March, 6))

func TestExportUploadsCSV(t *testing.T) {
	source := &stubShortfall{report: &shopping.ShortfallReport{Lines: []shopping.ShortfallLine{
		{Key: shopping.NewKey(uuid.New(), enums.UnitGram), Name: "Flour", Quantity: decimal.NewFromInt(250)},
	}}}
	store := &memoryStore{objects: map[string]string{}}
	svc, err := NewService(source, store, nil)
	require.NoError(t, err)

	result, err := svc.Export(context.Background(), week, 2)
	require.NoError(t, err)
	assert.Equal(t, "shopping-lists/2024-03-04_2024-03-10.csv", result.Key)
	assert.Equal(t, "lists", result.Bucket)
	assert.Equal(t, 1, result.Lines)

	body := store.objects[result.Key]
	assert.True(t, strings.HasPrefix(body, `"Ingredient"`), body)
	assert.Contains(t, body, `"Flour"`)
}

func TestExportPropagatesShortfallError(t *testing.T) {
	source := &stubShortfall{err: shopping.ErrInvalidServings}
	svc, err := NewService(source, &memoryStore{objects: map[string]string{}}, nil)
	require.NoError(t, err)

	_, err = svc.Export(context.Background(), week, 0)
	assert.ErrorIs(t, err, shopping.ErrInvalidServings)
}

func TestExportUploadFailureIsDependencyError(t *testing.T) {
	source := &stubShortfall{report: &shopping.ShortfallReport{}}
	svc, err := NewService(source, &memoryStore{err: errors.New("denied")}, nil)
	require.NoError(t, err)

	_, err = svc.Export(context.Background(), week, 1)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeDependency))
}

func TestNewServiceRequiresCollaborators(t *testing.T) {
	_, err := NewService(nil, &memoryStore{}, nil)
	assert.Error(t, err)
	_, err = NewService(&stubShortfall{}, nil, nil)
	assert.Error(t, err)
}
