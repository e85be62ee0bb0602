package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/pantryplan-backend/api/responses"
	"github.com/angelmondragon/pantryplan-backend/api/validators"
	"github.com/angelmondragon/pantryplan-backend/internal/meals"
	"github.com/angelmondragon/pantryplan-backend/pkg/dates"
	pkgerrors "github.com/angelmondragon/pantryplan-backend/pkg/errors"
	"github.com/angelmondragon/pantryplan-backend/pkg/logger"
)

type createMealPayload struct {
	Date     string `json:"date" validate:"required"`
	RecipeID string `json:"recipe_id" validate:"required,uuid"`
}

type weekResponse struct {
	dates.Range
	Days []dates.Date `json:"days"`
}

// MealsList returns meals between start and end, defaulting to this week.
func MealsList(svc meals.Service, maxDays int, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "meal service unavailable"))
			return
		}
		rng, err := validators.ParseDateRange(r, maxDays)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		list, err := svc.List(ctx, rng)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"range": rng, "meals": list})
	}
}

// MealsWeek returns the Monday-first week around ?date (default today).
func MealsWeek(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		anchor, err := validators.ParseQueryDate(r, "date")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if anchor.IsZero() {
			anchor = dates.Today()
		}
		week := dates.WeekOf(anchor)
		responses.WriteSuccess(w, weekResponse{Range: week, Days: week.Days()})
	}
}

func MealCreate(svc meals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "meal service unavailable"))
			return
		}

		var payload createMealPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		date, err := validators.ParseDateValue("date", payload.Date)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		meal, err := svc.Create(ctx, date, uuid.MustParse(payload.RecipeID))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, meal)
	}
}

func MealDelete(svc meals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "meal service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "mealId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if err := svc.Delete(ctx, id); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
