package domain

import (
	"fmt"
	"strings"
)

// ConfigurationError reports malformed or missing credentials.
// Fatal when raised at startup; returned as an error envelope when
// configuration is loaded lazily mid-request.
type ConfigurationError struct {
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

// Unwrap exposes the underlying cause.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// NotInitializedError is returned when registry state is read before
// initialization. The router initializes lazily, so callers should only
// ever see this through direct registry access.
type NotInitializedError struct{}

// Error implements the error interface.
func (e *NotInitializedError) Error() string {
	return "service registry is not initialized"
}

// AmbiguousServiceError is returned when a tool call omits serviceId while
// multiple services are configured. The message enumerates the configured
// ids so the caller can retry with one of them.
type AmbiguousServiceError struct {
	ServiceIDs []string
}

// Error implements the error interface.
func (e *AmbiguousServiceError) Error() string {
	return fmt.Sprintf("serviceId is required when multiple services are configured; available services: %s",
		formatServiceIDs(e.ServiceIDs))
}

// UnknownServiceError is returned when the supplied serviceId does not match
// any configured service.
type UnknownServiceError struct {
	ServiceID  string
	Configured []string
}

// Error implements the error interface.
func (e *UnknownServiceError) Error() string {
	return fmt.Sprintf("unknown service %q; available services: %s",
		e.ServiceID, formatServiceIDs(e.Configured))
}

func formatServiceIDs(ids []string) string {
	if len(ids) == 0 {
		return "none"
	}
	return strings.Join(ids, ", ")
}

// ValidationError reports a missing required argument or a constrained value
// outside its enumerated set. Raised by handlers before any remote call.
type ValidationError struct {
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError from a format string.
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// RemoteAPIError wraps a non-2xx response from the microCMS API.
// It carries the status line and response body verbatim; calls are never
// retried.
type RemoteAPIError struct {
	StatusCode int
	Status     string
	Body       string
}

// Error implements the error interface.
func (e *RemoteAPIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("microCMS API error: %s - %s", e.Status, e.Body)
	}
	return fmt.Sprintf("microCMS API error: %s", e.Status)
}

// MaxInlineUploadSize is the decoded size cap for inline media uploads.
const MaxInlineUploadSize = 5 * 1024 * 1024

// PayloadTooLargeError is returned when a decoded inline media payload
// exceeds MaxInlineUploadSize. Callers should switch to the external-URL
// upload path instead.
type PayloadTooLargeError struct {
	Size  int
	Limit int
}

// Error implements the error interface.
func (e *PayloadTooLargeError) Error() string {
	return fmt.Sprintf("file size %d bytes exceeds the %d byte limit", e.Size, e.Limit)
}
