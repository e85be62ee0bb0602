package controllers

import (
	"net/http"

	"github.com/angelmondragon/pantryplan-backend/api/responses"
	"github.com/angelmondragon/pantryplan-backend/api/validators"
	"github.com/angelmondragon/pantryplan-backend/internal/ingredients"
	"github.com/angelmondragon/pantryplan-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pantryplan-backend/pkg/errors"
	"github.com/angelmondragon/pantryplan-backend/pkg/logger"
)

type addIngredientPayload struct {
	Name        string `json:"name" validate:"required,max=120"`
	DefaultUnit string `json:"default_unit" validate:"required,unit"`
}

func IngredientsList(svc ingredients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ingredient service unavailable"))
			return
		}
		list, err := svc.List(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// IngredientsAdd returns the named ingredient, creating it (201) when new.
func IngredientsAdd(svc ingredients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ingredient service unavailable"))
			return
		}

		var payload addIngredientPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		ing, created, err := svc.Add(ctx, validators.SanitizeString(payload.Name, 120), enums.Unit(payload.DefaultUnit))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		responses.WriteSuccessStatus(w, status, ing)
	}
}
