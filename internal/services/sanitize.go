package services

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicy = bluemonday.StrictPolicy()

	validateOnce sync.Once
	validate     *validator.Validate
)

// sanitizeText strips markup and surrounding whitespace from member-supplied text
func sanitizeText(s string) string {
	return strings.TrimSpace(textPolicy.Sanitize(s))
}

// sanitizeOptional sanitizes s, returning nil when nothing is left
func sanitizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	clean := sanitizeText(*s)
	if clean == "" {
		return nil
	}
	return &clean
}

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// validateStruct runs struct tag validation and reports the first failing
// field as a validation error
func validateStruct(v interface{}) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		if fe.Param() != "" {
			return validationError("%s failed %s=%s", strings.ToLower(fe.Field()), fe.Tag(), fe.Param())
		}
		return validationError("%s failed %s", strings.ToLower(fe.Field()), fe.Tag())
	}
	return fmt.Errorf("validation: %w", err)
}
