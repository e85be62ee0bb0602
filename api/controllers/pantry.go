package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pantryplan-backend/api/responses"
	"github.com/angelmondragon/pantryplan-backend/api/validators"
	"github.com/angelmondragon/pantryplan-backend/internal/pantry"
	"github.com/angelmondragon/pantryplan-backend/pkg/db/models"
	"github.com/angelmondragon/pantryplan-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pantryplan-backend/pkg/errors"
	"github.com/angelmondragon/pantryplan-backend/pkg/logger"
)

type pantryUpsertPayload struct {
	IngredientID string           `json:"ingredient_id" validate:"required,uuid"`
	Unit         string           `json:"unit" validate:"required,unit"`
	Quantity     *decimal.Decimal `json:"quantity" validate:"required"`
	Mode         string           `json:"mode" validate:"pantry_mode"`
}

type pantryItemResponse struct {
	ID             uuid.UUID  `json:"id"`
	IngredientID   uuid.UUID  `json:"ingredient_id"`
	IngredientName string     `json:"ingredient_name,omitempty"`
	Unit           enums.Unit `json:"unit"`
	Quantity       quantity   `json:"quantity"`
}

func pantryItemsResponse(items []pantry.ItemDTO) []pantryItemResponse {
	out := make([]pantryItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, pantryItemResponse{
			ID:             item.ID,
			IngredientID:   item.IngredientID,
			IngredientName: item.IngredientName,
			Unit:           item.Unit,
			Quantity:       newQuantity(item.Quantity),
		})
	}
	return out
}

func pantryRecordResponse(item *models.PantryItem) pantryItemResponse {
	return pantryItemResponse{
		ID:           item.ID,
		IngredientID: item.IngredientID,
		Unit:         item.Unit,
		Quantity:     newQuantity(item.Quantity),
	}
}

func PantryList(svc pantry.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pantry service unavailable"))
			return
		}
		items, err := svc.List(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, pantryItemsResponse(items))
	}
}

// PantryUpsert adds to or sets the record for (ingredient_id, unit). Mode
// defaults to add; a negative quantity under add consumes stock.
func PantryUpsert(svc pantry.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pantry service unavailable"))
			return
		}

		var payload pantryUpsertPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		mode, err := enums.ParsePantryMode(payload.Mode)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "mode must be add or set"))
			return
		}

		item, err := svc.Upsert(ctx, uuid.MustParse(payload.IngredientID), enums.Unit(payload.Unit), *payload.Quantity, mode)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, pantryRecordResponse(item))
	}
}

func PantryDelete(svc pantry.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pantry service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "pantryItemId")
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
