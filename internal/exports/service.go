package exports

import (
	"context"
	"fmt"

	"github.com/angelmondragon/pantryplan-backend/internal/shopping"
	"github.com/angelmondragon/pantryplan-backend/pkg/dates"
	pkgerrors "github.com/angelmondragon/pantryplan-backend/pkg/errors"
	"github.com/angelmondragon/pantryplan-backend/pkg/logger"
)

const csvContentType = "text/csv; charset=utf-8"

// Service uploads shopping lists as CSV objects.
type Service interface {
	Export(ctx context.Context, rng dates.Range, servings int) (*Result, error)
}

// Result locates an uploaded shopping list.
type Result struct {
	Bucket string      `json:"bucket"`
	Key    string      `json:"key"`
	Range  dates.Range `json:"range"`
	Lines  int         `json:"lines"`
}

type shortfallSource interface {
	GetShortfall(ctx context.Context, rng dates.Range, servings int) (*shopping.ShortfallReport, error)
}

type objectWriter interface {
	Put(ctx context.Context, name string, body []byte, contentType string) (string, error)
	Bucket() string
}

type service struct {
	shortfall shortfallSource
	store     objectWriter
	logg      *logger.Logger
}

// NewService constructs an export service instance.
func NewService(shortfall shortfallSource, store objectWriter, logg *logger.Logger) (Service, error) {
	if shortfall == nil {
		return nil, fmt.Errorf("shortfall source required")
	}
	if store == nil {
		return nil, fmt.Errorf("object store required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{shortfall: shortfall, store: store, logg: logg}, nil
}

// ObjectName is the object name for rng, relative to the store prefix.
func ObjectName(rng dates.Range) string {
	return rng.Start.String() + "_" + rng.End.String() + ".csv"
}

// Export computes the shortfall for rng and uploads it, overwriting any
// earlier export of the same range.
func (s *service) Export(ctx context.Context, rng dates.Range, servings int) (*Result, error) {
	report, err := s.shortfall.GetShortfall(ctx, rng, servings)
	if err != nil {
		return nil, err
	}

	key, err := s.store.Put(ctx, ObjectName(rng), []byte(shopping.CSV(report.Lines)), csvContentType)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload shopping list")
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"bucket": s.store.Bucket(),
		"key":    key,
		"lines":  len(report.Lines),
	})
	s.logg.Info(ctx, "shopping_list.exported")

	return &Result{Bucket: s.store.Bucket(), Key: key, Range: rng, Lines: len(report.Lines)}, nil
}
