package serverutils

import (
	"fmt"
	"strings"

	"ai-marketplace-be/internal/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest runs struct-tag validation and folds the failures into a
// single ValidationError.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperror.NewValidation("invalid request body")
	}

	var parts []string
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
	}
	return apperror.NewValidation("validation failed: %s", strings.Join(parts, "; "))
}
