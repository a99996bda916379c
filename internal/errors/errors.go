// Package errors provides error handling utilities.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Type identifies the category of error
type Type string

const (
	// TypeInput indicates an input validation error
	TypeInput Type = "INPUT_ERROR"

	// TypeNotFound indicates a resource not found error
	TypeNotFound Type = "NOT_FOUND"

	// TypeUnknownService indicates a service id with no registered calculator
	TypeUnknownService Type = "UNKNOWN_SERVICE"

	// TypeInvalidUsage indicates a negative or NaN usage value
	TypeInvalidUsage Type = "INVALID_USAGE"

	// TypeInvalidConfiguration indicates a service configuration that failed validation
	TypeInvalidConfiguration Type = "INVALID_CONFIGURATION"

	// TypeConfigurationConflict indicates an incompatible service combination
	TypeConfigurationConflict Type = "CONFIGURATION_CONFLICT"

	// TypeRegionNotFound indicates an unknown region code
	TypeRegionNotFound Type = "REGION_NOT_FOUND"

	// TypeCatalogIntegrity indicates a malformed pricing table. Always fatal.
	TypeCatalogIntegrity Type = "CATALOG_INTEGRITY"
)

// Error represents a domain error with context
type Error struct {
	Type    Type                   `json:"type"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if the error is of a specific type
func (e *Error) Is(t Type) bool {
	return e.Type == t
}

// Fatal reports whether the error must stop the engine from starting
func (e *Error) Fatal() bool {
	return e.Type == TypeCatalogIntegrity
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new error
func New(errType Type, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
	}
}

// Newf creates a new formatted error
func Newf(errType Type, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with context
func Wrap(errType Type, message string, cause error) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an error with formatted context
func Wrapf(errType Type, cause error, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// IsType checks if an error, or any error it wraps, is of a specific type
func IsType(err error, t Type) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type == t
	}
	return false
}

// Input creates an input error
func Input(message string) *Error {
	return New(TypeInput, message)
}

// NotFound creates a not found error
func NotFound(resourceType, identifier string) *Error {
	return Newf(TypeNotFound, "%s not found: %s", resourceType, identifier)
}

// UnknownService creates an unknown service diagnostic
func UnknownService(serviceID string) *Error {
	return Newf(TypeUnknownService, "no calculator registered for service %q", serviceID).
		WithContext("service", serviceID)
}

// InvalidUsage creates an invalid usage diagnostic. The value has already been clamped.
func InvalidUsage(metric string, value float64) *Error {
	return Newf(TypeInvalidUsage, "usage metric %s has invalid value %v, clamped to 0", metric, value).
		WithContext("metric", metric)
}

// InvalidConfiguration creates an invalid configuration diagnostic
func InvalidConfiguration(serviceID string, cause error) *Error {
	return Wrapf(TypeInvalidConfiguration, cause, "invalid configuration for service %q", serviceID).
		WithContext("service", serviceID)
}

// ConfigurationConflict creates a configuration conflict issue
func ConfigurationConflict(message string, services ...string) *Error {
	return New(TypeConfigurationConflict, message).WithContext("services", services)
}

// RegionNotFound creates an unknown region diagnostic
func RegionNotFound(code string) *Error {
	return Newf(TypeRegionNotFound, "unknown region %q, using multiplier 1.0", code).
		WithContext("region", code)
}

// CatalogIntegrity creates a fatal catalog error
func CatalogIntegrity(message string, cause error) *Error {
	return Wrap(TypeCatalogIntegrity, message, cause)
}
