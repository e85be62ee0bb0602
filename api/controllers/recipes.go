package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pantryplan-backend/api/responses"
	"github.com/angelmondragon/pantryplan-backend/api/validators"
	"github.com/angelmondragon/pantryplan-backend/internal/pantry"
	"github.com/angelmondragon/pantryplan-backend/internal/recipes"
	"github.com/angelmondragon/pantryplan-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pantryplan-backend/pkg/errors"
	"github.com/angelmondragon/pantryplan-backend/pkg/logger"
)

type recipeLinePayload struct {
	IngredientID string           `json:"ingredient_id" validate:"required,uuid"`
	Quantity     *decimal.Decimal `json:"quantity" validate:"required"`
	Unit         string           `json:"unit" validate:"required,unit"`
}

type createRecipePayload struct {
	Title        string              `json:"title" validate:"required,max=200"`
	Description  string              `json:"description" validate:"max=4000"`
	BaseServings int                 `json:"base_servings" validate:"required,min=1"`
	Lines        []recipeLinePayload `json:"lines" validate:"required,min=1,dive"`
}

type updateRecipePayload struct {
	Title        *string              `json:"title" validate:"omitempty,max=200"`
	Description  *string              `json:"description" validate:"omitempty,max=4000"`
	BaseServings *int                 `json:"base_servings" validate:"omitempty,min=1"`
	Lines        *[]recipeLinePayload `json:"lines" validate:"omitempty,dive"`
}

type consumePayload struct {
	Servings int `json:"servings"`
}

func toLineInputs(payload []recipeLinePayload) []recipes.LineInput {
	out := make([]recipes.LineInput, 0, len(payload))
	for _, line := range payload {
		out = append(out, recipes.LineInput{
			IngredientID: uuid.MustParse(line.IngredientID),
			Quantity:     *line.Quantity,
			Unit:         enums.Unit(line.Unit),
		})
	}
	return out
}

func RecipesList(svc recipes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "recipe service unavailable"))
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

func RecipeGet(svc recipes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "recipe service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "recipeId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		recipe, err := svc.Get(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, recipe)
	}
}

func RecipeCreate(svc recipes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "recipe service unavailable"))
			return
		}

		var payload createRecipePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		recipe, err := svc.Create(ctx, recipes.CreateRecipeInput{
			Title:        validators.SanitizeString(payload.Title, 200),
			Description:  payload.Description,
			BaseServings: payload.BaseServings,
			Lines:        toLineInputs(payload.Lines),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, recipe)
	}
}

// RecipeUpdate applies the provided fields; a lines array replaces every line.
func RecipeUpdate(svc recipes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "recipe service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "recipeId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload updateRecipePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input := recipes.UpdateRecipeInput{
			Title:        payload.Title,
			Description:  payload.Description,
			BaseServings: payload.BaseServings,
		}
		if payload.Lines != nil {
			lines := toLineInputs(*payload.Lines)
			input.Lines = &lines
		}

		recipe, err := svc.Update(ctx, id, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, recipe)
	}
}

func RecipeDelete(svc recipes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "recipe service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "recipeId")
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

// RecipeConsume subtracts the recipe, scaled to servings, from the pantry.
// Per-key failures come back in the body with the commit outcome.
func RecipeConsume(svc pantry.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pantry service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "recipeId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload consumePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Consume(ctx, id, payload.Servings)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCommitResponse(result))
	}
}
