package shopping

import (
	pkgerrors "github.com/angelmondragon/pantryplan-backend/pkg/errors"
)

var (
	// ErrInvalidServings matches any base or target serving count <= 0.
	ErrInvalidServings = pkgerrors.New(pkgerrors.CodeInvalidServings, "servings must be greater than zero")
	// ErrMissingRecipe marks a planned meal whose recipe no longer exists.
	ErrMissingRecipe = pkgerrors.New(pkgerrors.CodeNotFound, "recipe not found")
)

func invalidServings(field string, value int) error {
	return pkgerrors.New(pkgerrors.CodeInvalidServings, ErrInvalidServings.Message()).
		WithDetails(map[string]any{"field": field, "value": value})
}
