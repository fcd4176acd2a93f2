package errors

import (
	"fmt"
	"net/http"
	"strings"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
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

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Graph construction errors ---

// DependencyCycle creates a new AppError for a dependency cycle among the
// given node ids. The ids are the nodes left unresolved after reduction.
func DependencyCycle(nodeIDs []string) *AppError {
	return &AppError{
		Code:       ErrCodeDependencyCycle,
		Message:    fmt.Sprintf("Dependency cycle detected among nodes: %s.", strings.Join(nodeIDs, ", ")),
		HTTPStatus: http.StatusUnprocessableEntity, Retryable: false,
		Details: map[string]any{"nodes": nodeIDs},
	}
}

// UnknownDependency creates a new AppError for a dependency on an undeclared node id.
func UnknownDependency(nodeID, dependencyID string) *AppError {
	return &AppError{
		Code:       ErrCodeUnknownDependency,
		Message:    fmt.Sprintf("Node %q depends on unknown node %q.", nodeID, dependencyID),
		HTTPStatus: http.StatusUnprocessableEntity, Retryable: false,
		Details: map[string]any{"node": nodeID, "dependency": dependencyID},
	}
}

// DuplicateNode creates a new AppError for a node id declared more than once.
func DuplicateNode(nodeID string) *AppError {
	return &AppError{
		Code:       ErrCodeDuplicateNode,
		Message:    fmt.Sprintf("Node %q is declared more than once.", nodeID),
		HTTPStatus: http.StatusUnprocessableEntity, Retryable: false,
		Details: map[string]any{"node": nodeID},
	}
}

// --- Check execution errors ---

// CheckTimeout creates a new AppError for a check that exceeded its timeout.
func CheckTimeout(checkID string, timeout string) *AppError {
	return &AppError{
		Code:       ErrCodeCheckTimeout,
		Message:    fmt.Sprintf("Check %q timed out after %s.", checkID, timeout),
		HTTPStatus: http.StatusGatewayTimeout, Retryable: true,
		Details: map[string]any{"check": checkID, "timeout": timeout},
	}
}

// CheckPanic creates a new AppError for a check that panicked.
func CheckPanic(checkID string, recovered any) *AppError {
	return &AppError{
		Code:       ErrCodeCheckPanic,
		Message:    fmt.Sprintf("Check %q panicked: %v.", checkID, recovered),
		HTTPStatus: http.StatusInternalServerError, Retryable: false,
		Details: map[string]any{"check": checkID},
	}
}

// StoreError creates a new AppError for a failed read against the tracking store.
func StoreError(cause error) *AppError {
	return &AppError{
		Code:       ErrCodeStoreError,
		Message:    "A tracking store read failed. Please try again.",
		HTTPStatus: http.StatusServiceUnavailable, Retryable: true,
		Cause:      cause,
	}
}

// APIError creates a new AppError for a failed call against the task API.
func APIError(operation string, cause error) *AppError {
	return &AppError{
		Code:       ErrCodeAPIError,
		Message:    fmt.Sprintf("The task API call %q failed.", operation),
		HTTPStatus: http.StatusBadGateway, Retryable: true,
		Details:    map[string]any{"operation": operation},
		Cause:      cause,
	}
}

// --- Input and internal errors ---

// InvalidInput creates a new AppError for invalid run configuration.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code:       ErrCodeInvalidInput,
		Message:    fmt.Sprintf("Invalid input: %s", reason),
		HTTPStatus: http.StatusBadRequest, Retryable: false,
		Details:    details,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{
		Code:       ErrCodeInvalidInput,
		Message:    message,
		HTTPStatus: http.StatusBadRequest, Retryable: false,
	}
}

// Internal creates a new AppError for an unexpected internal error.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       ErrCodeInternal,
		Message:    "An unexpected error occurred.",
		HTTPStatus: http.StatusInternalServerError, Retryable: false,
		Cause:      cause,
	}
}
