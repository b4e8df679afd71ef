package types

import (
	"github.com/go-playground/validator/v10"

	"github.com/pageza/recipe-management/backend/internal/models"
)

// RegisterValidators installs the custom tags used by the request types.
func RegisterValidators(v *validator.Validate) error {
	return v.RegisterValidation("visibility", validateVisibility)
}

func validateVisibility(fl validator.FieldLevel) bool {
	return models.IsValidVisibility(fl.Field().String())
}
