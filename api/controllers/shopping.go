package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pantryplan-backend/api/responses"
	"github.com/angelmondragon/pantryplan-backend/api/validators"
	"github.com/angelmondragon/pantryplan-backend/internal/exports"
	"github.com/angelmondragon/pantryplan-backend/internal/shopping"
	"github.com/angelmondragon/pantryplan-backend/pkg/dates"
	"github.com/angelmondragon/pantryplan-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pantryplan-backend/pkg/errors"
	"github.com/angelmondragon/pantryplan-backend/pkg/logger"
)

// quantity is a decimal rounded to two places, written as a JSON number.
type quantity = json.Number

func newQuantity(d decimal.Decimal) quantity {
	return json.Number(shopping.FormatQuantity(d))
}

type shortfallLineResponse struct {
	IngredientID   uuid.UUID  `json:"ingredient_id"`
	IngredientName string     `json:"ingredient_name"`
	Quantity       quantity   `json:"quantity"`
	Unit           enums.Unit `json:"unit"`
}

type shortfallResponse struct {
	Range        dates.Range             `json:"range"`
	Servings     int                     `json:"servings"`
	Lines        []shortfallLineResponse `json:"lines"`
	SkippedMeals []shopping.SkippedMeal  `json:"skipped_meals"`
}

func newShortfallResponse(report *shopping.ShortfallReport) shortfallResponse {
	resp := shortfallResponse{
		Range:        report.Range,
		Servings:     report.Servings,
		Lines:        make([]shortfallLineResponse, 0, len(report.Lines)),
		SkippedMeals: report.SkippedMeals,
	}
	if resp.SkippedMeals == nil {
		resp.SkippedMeals = []shopping.SkippedMeal{}
	}
	for _, line := range report.Lines {
		resp.Lines = append(resp.Lines, shortfallLineResponse{
			IngredientID:   line.IngredientID,
			IngredientName: line.Name,
			Quantity:       newQuantity(line.Quantity),
			Unit:           line.Unit,
		})
	}
	return resp
}

type commitFailureResponse struct {
	IngredientID   uuid.UUID  `json:"ingredient_id"`
	Unit           enums.Unit `json:"unit"`
	IngredientName string     `json:"ingredient_name,omitempty"`
	Message        string     `json:"message"`
}

type commitResponse struct {
	Outcome  shopping.CommitOutcome  `json:"outcome"`
	Applied  []shopping.Key          `json:"applied"`
	Failures []commitFailureResponse `json:"failures"`
}

func newCommitResponse(result *shopping.CommitResult) commitResponse {
	resp := commitResponse{
		Outcome:  result.Outcome,
		Applied:  result.Applied,
		Failures: make([]commitFailureResponse, 0, len(result.Failures)),
	}
	if resp.Applied == nil {
		resp.Applied = []shopping.Key{}
	}
	for _, f := range result.Failures {
		resp.Failures = append(resp.Failures, commitFailureResponse{
			IngredientID:   f.Key.IngredientID,
			Unit:           f.Key.Unit,
			IngredientName: f.Name,
			Message:        f.Message,
		})
	}
	return resp
}

type keyPayload struct {
	IngredientID string `json:"ingredient_id" validate:"required,uuid"`
	Unit         string `json:"unit" validate:"required,unit"`
}

func (k keyPayload) key() shopping.Key {
	return shopping.NewKey(uuid.MustParse(k.IngredientID), enums.Unit(k.Unit))
}

type purchasedPayload struct {
	keyPayload
	Quantity float64 `json:"quantity"`
}

type commitPayload struct {
	Start       string             `json:"start"`
	End         string             `json:"end"`
	Servings    *int               `json:"servings"`
	Purchased   []purchasedPayload `json:"purchased" validate:"omitempty,dive"`
	OnlyChecked *[]keyPayload      `json:"only_checked" validate:"omitempty,dive"`
}

// shortfallQuery reads the range and servings shared by the shopping list
// reads and the export trigger.
func shortfallQuery(r *http.Request, defaultServings, maxDays int) (dates.Range, int, error) {
	rng, err := validators.ParseDateRange(r, maxDays)
	if err != nil {
		return dates.Range{}, 0, err
	}
	servings, err := validators.ParseServings(r, defaultServings)
	if err != nil {
		return dates.Range{}, 0, err
	}
	return rng, servings, nil
}

func ShoppingList(svc shopping.Service, defaultServings, maxDays int, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shopping service unavailable"))
			return
		}
		rng, servings, err := shortfallQuery(r, defaultServings, maxDays)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		report, err := svc.GetShortfall(ctx, rng, servings)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newShortfallResponse(report))
	}
}

func ShoppingListCSV(svc shopping.Service, defaultServings, maxDays int, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shopping service unavailable"))
			return
		}
		rng, servings, err := shortfallQuery(r, defaultServings, maxDays)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		report, err := svc.GetShortfall(ctx, rng, servings)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteCSV(w, shopping.CSVFilename(rng), shopping.CSV(report.Lines))
	}
}

// ShoppingListText renders the shareable list. Repeated ?exclude=<id>/<unit>
// parameters drop keys already checked off.
func ShoppingListText(svc shopping.Service, defaultServings, maxDays int, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shopping service unavailable"))
			return
		}
		rng, servings, err := shortfallQuery(r, defaultServings, maxDays)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		exclude := map[shopping.Key]struct{}{}
		for _, raw := range r.URL.Query()["exclude"] {
			key, err := shopping.ParseKey(raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid exclude key").WithDetails(map[string]any{"exclude": raw}))
				return
			}
			exclude[key] = struct{}{}
		}

		report, err := svc.GetShortfall(ctx, rng, servings)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteText(w, shopping.Text(rng, report.Lines, exclude))
	}
}

// ShoppingListCommit adds purchased shortfall lines to the pantry. The body
// carries the range and servings the list was computed for, optional
// per-key amounts, and an optional checked subset.
func ShoppingListCommit(svc shopping.Service, defaultServings, maxDays int, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shopping service unavailable"))
			return
		}

		var payload commitPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		start, err := validators.ParseDateValue("start", payload.Start)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		end, err := validators.ParseDateValue("end", payload.End)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		rng, err := validators.ResolveRange(start, end, maxDays)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input := shopping.CommitInput{Range: rng, Servings: defaultServings}
		if payload.Servings != nil {
			input.Servings = *payload.Servings
		}
		if len(payload.Purchased) > 0 {
			input.Purchased = make(map[shopping.Key]float64, len(payload.Purchased))
			for _, p := range payload.Purchased {
				input.Purchased[p.key()] = p.Quantity
			}
		}
		if payload.OnlyChecked != nil {
			input.OnlyChecked = make([]shopping.Key, 0, len(*payload.OnlyChecked))
			for _, k := range *payload.OnlyChecked {
				input.OnlyChecked = append(input.OnlyChecked, k.key())
			}
		}

		result, err := svc.CommitPurchases(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCommitResponse(result))
	}
}

// ShoppingListExport uploads the list for the queried range as a CSV object.
func ShoppingListExport(svc exports.Service, defaultServings, maxDays int, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeDependency, "exports are not configured"))
			return
		}
		rng, servings, err := shortfallQuery(r, defaultServings, maxDays)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		result, err := svc.Export(ctx, rng, servings)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
