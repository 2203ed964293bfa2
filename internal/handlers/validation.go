package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// validateStruct renders the first tag failure as a field-level message,
// empty string when the payload is fine.
func validateStruct(payload any) string {
	err := validate.Struct(payload)
	if err == nil {
		return ""
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return "invalid request body"
	}

	first := validationErrors[0]
	field := strings.ToLower(first.Field())
	switch first.Tag() {
	case "required":
		return field + " is required"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, first.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, first.Param())
	case "len":
		return fmt.Sprintf("%s must have length %s", field, first.Param())
	case "max":
		return fmt.Sprintf("%s must have at most %s items", field, first.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, first.Param())
	default:
		return field + " is invalid"
	}
}
