package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Startup errors
const (
	// ErrCodeConfiguration indicates settings could not be loaded or validated.
	ErrCodeConfiguration ErrorCode = "CONFIGURATION_ERROR"
	// ErrCodeInvalidInput indicates a value failed validation.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Registry errors
const (
	// ErrCodeNetworkResolution indicates the local host address could not be resolved.
	ErrCodeNetworkResolution ErrorCode = "NETWORK_RESOLUTION_ERROR"
	// ErrCodeRegistration indicates the discovery agent rejected or never received a registration.
	ErrCodeRegistration ErrorCode = "REGISTRATION_ERROR"
	// ErrCodeDeregistration indicates the discovery agent failed to remove a registration.
	ErrCodeDeregistration ErrorCode = "DEREGISTRATION_ERROR"
	// ErrCodeRegistryQuery indicates listing services from the discovery agent failed.
	ErrCodeRegistryQuery ErrorCode = "REGISTRY_QUERY_ERROR"
)

// Request errors
const (
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)
