package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/kbukum/consul-service/errors"
)

// Validator collects validation errors.
type Validator struct {
	errors []FieldError
}

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates a new Validator.
func New() *Validator {
	return &Validator{
		errors: make([]FieldError, 0),
	}
}

// AddError adds a field error.
func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, FieldError{
		Field:   field,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors.
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all validation errors.
func (v *Validator) Errors() []FieldError {
	return v.errors
}

// Validate returns an INVALID_INPUT AppError listing every field error, or a
// nil error when there are none.
func (v *Validator) Validate() error {
	if !v.HasErrors() {
		return nil
	}
	return fieldsError(v.errors)
}

// Required checks if a string is non-empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "is required")
	}
	return v
}

// Range checks if a number is within a range.
func (v *Validator) Range(field string, value, minVal, maxVal int) *Validator {
	if value < minVal || value > maxVal {
		v.AddError(field, fmt.Sprintf("must be between %d and %d", minVal, maxVal))
	}
	return v
}

// Prefix checks that a non-empty string starts with prefix.
func (v *Validator) Prefix(field, value, prefix string) *Validator {
	if !strings.HasPrefix(value, prefix) {
		v.AddError(field, fmt.Sprintf("must start with %q", prefix))
	}
	return v
}

// OneOf checks if a value is one of the allowed values.
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.AddError(field, fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")))
	return v
}

// PositiveDuration checks that d is greater than zero.
func (v *Validator) PositiveDuration(field string, d time.Duration) *Validator {
	if d <= 0 {
		v.AddError(field, "must be a positive duration")
	}
	return v
}

// NonNegativeDuration checks that d is zero or greater.
func (v *Validator) NonNegativeDuration(field string, d time.Duration) *Validator {
	if d < 0 {
		v.AddError(field, "must not be negative")
	}
	return v
}

// Custom applies a custom validation condition.
func (v *Validator) Custom(condition bool, field, message string) *Validator {
	if !condition {
		v.AddError(field, message)
	}
	return v
}

// Required validates a single required field and returns an error if empty.
func Required(field, value string) error {
	return New().Required(field, value).Validate()
}

// FieldErrors extracts the per-field errors carried by an error returned from
// this package.
func FieldErrors(err error) []FieldError {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		return nil
	}
	fields, _ := appErr.Details["fields"].([]FieldError)
	return fields
}

func fieldsError(fields []FieldError) *errors.AppError {
	messages := make([]string, len(fields))
	for i, e := range fields {
		messages[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return errors.Validation(strings.Join(messages, "; ")).WithDetail("fields", fields)
}
