package core

import (
	"fmt"
	"net/http"
)

// ErrorType classifies a layout service error.
type ErrorType string

const (
	// ErrorTypeInvalidRequest indicates a malformed client request (4xx).
	ErrorTypeInvalidRequest ErrorType = "invalid_request_error"
	// ErrorTypeInvalidConfiguration indicates a programmer error such as a
	// non-positive column count. Fails loudly, never swallowed.
	ErrorTypeInvalidConfiguration ErrorType = "invalid_configuration_error"
	// ErrorTypeDimensionUnavailable indicates a single image whose metadata
	// could not be resolved. Recovered locally by exclusion.
	ErrorTypeDimensionUnavailable ErrorType = "dimension_unavailable_error"
	// ErrorTypeUpstreamUnavailable indicates the submission or dimension
	// provider is unreachable and no cached fallback exists (503).
	ErrorTypeUpstreamUnavailable ErrorType = "upstream_unavailable_error"
	// ErrorTypeComputationTimeout indicates the request deadline elapsed while
	// waiting on a computation (504).
	ErrorTypeComputationTimeout ErrorType = "computation_timeout_error"
)

// LayoutError is the base error type for all layout service errors.
type LayoutError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	StatusCode int       `json:"status_code"`
	// Original error for debugging (not exposed to clients)
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *LayoutError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the error unwrapping interface.
func (e *LayoutError) Unwrap() error {
	return e.Err
}

// HTTPStatusCode returns the HTTP status code for this error.
func (e *LayoutError) HTTPStatusCode() int {
	if e.StatusCode != 0 {
		return e.StatusCode
	}
	switch e.Type {
	case ErrorTypeInvalidRequest:
		return http.StatusBadRequest
	case ErrorTypeUpstreamUnavailable:
		return http.StatusServiceUnavailable
	case ErrorTypeComputationTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// ToJSON converts the error to a JSON-compatible map for HTTP responses.
func (e *LayoutError) ToJSON() map[string]interface{} {
	return map[string]interface{}{
		"error": map[string]interface{}{
			"type":    e.Type,
			"message": e.Message,
		},
	}
}

// NewInvalidRequestError creates a new invalid request error (400).
func NewInvalidRequestError(message string, err error) *LayoutError {
	return &LayoutError{
		Type:       ErrorTypeInvalidRequest,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Err:        err,
	}
}

// NewInvalidConfigurationError creates a new configuration error (500).
func NewInvalidConfigurationError(message string) *LayoutError {
	return &LayoutError{
		Type:       ErrorTypeInvalidConfiguration,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
	}
}

// NewDimensionUnavailableError creates an error for a single unresolvable image.
func NewDimensionUnavailableError(imageID int64, err error) *LayoutError {
	return &LayoutError{
		Type:    ErrorTypeDimensionUnavailable,
		Message: fmt.Sprintf("dimensions unavailable for image %d", imageID),
		Err:     err,
	}
}

// NewUpstreamUnavailableError creates a new upstream unavailable error (503).
func NewUpstreamUnavailableError(message string, err error) *LayoutError {
	return &LayoutError{
		Type:       ErrorTypeUpstreamUnavailable,
		Message:    message,
		StatusCode: http.StatusServiceUnavailable,
		Err:        err,
	}
}

// NewComputationTimeoutError creates a new computation timeout error (504).
func NewComputationTimeoutError(message string, err error) *LayoutError {
	return &LayoutError{
		Type:       ErrorTypeComputationTimeout,
		Message:    message,
		StatusCode: http.StatusGatewayTimeout,
		Err:        err,
	}
}
