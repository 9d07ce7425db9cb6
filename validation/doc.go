// Package validation provides configuration and input validation.
//
// It supports struct tag validation (using the validator library) and
// programmatic validation with error collection. Both produce an
// INVALID_INPUT AppError whose "fields" detail lists each failing field.
//
// # Struct Tag Validation
//
//	type Settings struct {
//	    Port int `mapstructure:"port" validate:"min=1,max=65535"`
//	}
//	err := validation.Validate(settings)
//
// # Programmatic Validation
//
//	err := validation.New().
//	    Required("service_name", cfg.ServiceName).
//	    Range("service_port", cfg.ServicePort, 1, 65535).
//	    Validate()
package validation
