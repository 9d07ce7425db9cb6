package validation

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/kbukum/consul-service/errors"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// getValidator returns the singleton validator instance.
func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Name fields after their configuration keys so messages match what
		// the operator wrote in config.yml.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
			if name == "-" || name == "" {
				return toSnakeCase(fld.Name)
			}
			return name
		})
	})
	return validate
}

// Validate validates a struct using struct tags such as
// `validate:"required,min=1,max=65535"`. Field paths in the returned
// INVALID_INPUT error use mapstructure keys, e.g. "server.port".
func Validate(s any) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Validation("validation failed").WithCause(err)
	}

	fieldErrors := make([]FieldError, 0, len(validationErrors))
	for _, e := range validationErrors {
		fieldErrors = append(fieldErrors, FieldError{
			Field:   fieldPath(e.Namespace()),
			Message: formatValidationError(e),
		})
	}
	return fieldsError(fieldErrors)
}

// fieldPath drops the root struct name and squashed embeddings from a
// validator namespace: "Settings.service_config.name" becomes "name".
func fieldPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	out := parts[:0]
	for _, p := range parts {
		if p == "service_config" {
			continue
		}
		out = append(out, p)
	}
	return strings.Join(out, ".")
}

// formatValidationError creates a human-readable error message.
func formatValidationError(e validator.FieldError) string {
	unit := ""
	if e.Kind() == reflect.String || e.Kind() == reflect.Slice {
		unit = " characters"
		if e.Kind() == reflect.Slice {
			unit = " items"
		}
	}
	switch e.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		return "must be at least " + e.Param() + unit
	case "max", "lte":
		return "must be at most " + e.Param() + unit
	case "gt":
		return "must be greater than " + e.Param()
	case "url":
		return "must be a valid URL"
	case "hostname_rfc1123", "hostname":
		return "must be a valid hostname"
	case "ip":
		return "must be a valid IP address"
	case "startswith":
		return "must start with " + e.Param()
	case "oneof":
		return "must be one of: " + e.Param()
	case "required_with":
		return "is required when " + e.Param() + " is set"
	default:
		return "is invalid"
	}
}

// toSnakeCase converts a field name to snake_case.
func toSnakeCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune('_')
		}
		if r >= 'A' && r <= 'Z' {
			result.WriteRune(r + 32)
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}
