package contextutils

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateStruct runs go-playground/validator struct tags and folds any failures into a
// single VALIDATION_FAILED AppError listing the offending fields.
func ValidateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return WrapError(err, "validation failed")
	}

	details := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, fe.Namespace()+" failed '"+fe.Tag()+"'")
	}
	return NewAppErrorWithCause(ErrorCodeValidationFailed, SeverityWarn, "Validation failed", strings.Join(details, "; "), err)
}

// IsValidURL checks if a string is an absolute URL
func IsValidURL(raw string) bool {
	return validate.Var(raw, "required,url") == nil
}
