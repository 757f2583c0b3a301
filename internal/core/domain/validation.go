// Package domain validation built on go-playground/validator/v10 with
// certauth-specific custom validators.
package domain

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
)

// Validator wraps go-playground/validator with custom validators for
// configuration fields.
type Validator struct {
	validator *validator.Validate
}

// NewValidator creates a validation instance with the custom validators
// registered.
func NewValidator() *Validator {
	validate := validator.New()

	_ = validate.RegisterValidation("duration", validateDurationCustom)
	_ = validate.RegisterValidation("file_exists", validateFileExistsCustom)
	_ = validate.RegisterValidation("tenant_name", validateTenantNameCustom)

	return &Validator{
		validator: validate,
	}
}

// Validate validates a struct using its validation tags.
func (v *Validator) Validate(s interface{}) error {
	return v.validator.Struct(s)
}

// ValidateVar validates a single variable using the specified tag.
func (v *Validator) ValidateVar(field interface{}, tag string) error {
	return v.validator.Var(field, tag)
}

// Duration custom validator for Go duration strings.
func validateDurationCustom(fl validator.FieldLevel) bool {
	duration := fl.Field().String()
	if duration == "" {
		return true // Empty values handled by 'required' tag
	}

	_, err := time.ParseDuration(duration)
	return err == nil
}

// File exists custom validator.
func validateFileExistsCustom(fl validator.FieldLevel) bool {
	path := fl.Field().String()
	if path == "" {
		return true // Empty paths handled by 'required' tag
	}

	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Tenant name custom validator: non-empty, no whitespace, printable ASCII.
func validateTenantNameCustom(fl validator.FieldLevel) bool {
	tenant := fl.Field().String()
	if tenant == "" {
		return true // Empty values handled by 'required' tag
	}

	for _, r := range tenant {
		if r <= ' ' || r > '~' {
			return false
		}
	}
	return true
}
