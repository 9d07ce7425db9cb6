package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// IsCode reports whether err is, or wraps, an AppError with the given code.
func IsCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// --- Startup ---

// Configuration creates a new AppError for settings that cannot be loaded or are invalid.
func Configuration(reason string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeConfiguration, Message: fmt.Sprintf("Invalid configuration: %s", reason),
		HTTPStatus: http.StatusInternalServerError, Cause: cause,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// --- Registry ---

// NetworkResolution creates a new AppError for a host name that could not be resolved.
func NetworkResolution(host string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeNetworkResolution, Message: "Failed to get host IP",
		HTTPStatus: http.StatusInternalServerError, Cause: cause,
		Details: map[string]any{"hostname": host},
	}
}

// Registration creates a new AppError for a failed service registration.
func Registration(serviceID string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeRegistration, Message: "Failed to register service",
		HTTPStatus: http.StatusInternalServerError, Cause: cause,
		Details: map[string]any{"service_id": serviceID},
	}
}

// Deregistration creates a new AppError for a failed service deregistration.
func Deregistration(serviceID string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeDeregistration, Message: "Failed to deregister service",
		HTTPStatus: http.StatusInternalServerError, Cause: cause,
		Details: map[string]any{"service_id": serviceID},
	}
}

// RegistryQuery creates a new AppError for a failed service listing.
func RegistryQuery(cause error) *AppError {
	return &AppError{
		Code: ErrCodeRegistryQuery, Message: "Failed to get services from the discovery agent",
		HTTPStatus: http.StatusInternalServerError, Cause: cause,
	}
}

// --- Request ---

// NotFound creates a new AppError for a resource that was not found.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("The requested %s was not found.", resource),
		HTTPStatus: http.StatusNotFound, Details: details,
	}
}

// Internal creates a new AppError for an internal server error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred. Please try again or contact support.",
		HTTPStatus: http.StatusInternalServerError, Cause: cause,
	}
}
