package validators

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/pantryplan-backend/pkg/dates"
	pkgerrors "github.com/angelmondragon/pantryplan-backend/pkg/errors"
)

// ParseServings reads the servings query parameter. Zero and negative
// values are INVALID_SERVINGS rather than a generic range error.
func ParseServings(r *http.Request, defaultVal int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("servings"))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be numeric").WithDetails(map[string]any{"field": "servings"})
	}
	if value <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeInvalidServings, "servings must be greater than zero").WithDetails(map[string]any{"servings": value})
	}
	return value, nil
}

// ParseQueryDate reads an ISO date query parameter. The zero Date is
// returned when the parameter is absent.
func ParseQueryDate(r *http.Request, key string) (dates.Date, error) {
	return ParseDateValue(key, r.URL.Query().Get(key))
}

// ParseDateRange reads the start and end query parameters and resolves
// them with ResolveRange.
func ParseDateRange(r *http.Request, maxDays int) (dates.Range, error) {
	start, err := ParseQueryDate(r, "start")
	if err != nil {
		return dates.Range{}, err
	}
	end, err := ParseQueryDate(r, "end")
	if err != nil {
		return dates.Range{}, err
	}
	return ResolveRange(start, end, maxDays)
}

// ParseDateValue parses an ISO date taken from a request body. Empty input
// yields the zero Date.
func ParseDateValue(field, raw string) (dates.Date, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return dates.Date{}, nil
	}
	d, err := dates.Parse(raw)
	if err != nil {
		return dates.Date{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid date").WithDetails(map[string]any{"field": field, "format": dates.Layout})
	}
	return d, nil
}

// ResolveRange fills missing bounds from the Monday-first week containing
// today, or containing whichever bound was given, then validates the span.
func ResolveRange(start, end dates.Date, maxDays int) (dates.Range, error) {
	anchor := dates.Today()
	switch {
	case !start.IsZero():
		anchor = start
	case !end.IsZero():
		anchor = end
	}
	week := dates.WeekOf(anchor)
	if start.IsZero() {
		start = week.Start
	}
	if end.IsZero() {
		end = week.End
	}

	rng := dates.Range{Start: start, End: end}
	if err := rng.Validate(maxDays); err != nil {
		return dates.Range{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error()).WithDetails(map[string]any{"start": start.String(), "end": end.String(), "max_days": maxDays})
	}
	return rng, nil
}

// ParseUUIDParam reads a chi URL parameter as a UUID.
func ParseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid id").WithDetails(map[string]any{"field": name})
	}
	return id, nil
}
