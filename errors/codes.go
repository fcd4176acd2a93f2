package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Graph construction errors (fatal, never retryable)
const (
	// ErrCodeDependencyCycle indicates the node dependencies form a cycle.
	ErrCodeDependencyCycle ErrorCode = "DEPENDENCY_CYCLE"
	// ErrCodeUnknownDependency indicates a node depends on an id that is not in the graph.
	ErrCodeUnknownDependency ErrorCode = "UNKNOWN_DEPENDENCY"
	// ErrCodeDuplicateNode indicates two nodes were declared with the same id.
	ErrCodeDuplicateNode ErrorCode = "DUPLICATE_NODE"
)

// Check execution errors
const (
	// ErrCodeCheckTimeout indicates a check exceeded its configured timeout.
	ErrCodeCheckTimeout ErrorCode = "CHECK_TIMEOUT"
	// ErrCodeCheckPanic indicates a check panicked at runtime.
	ErrCodeCheckPanic ErrorCode = "CHECK_PANIC"
	// ErrCodeStoreError indicates a read against the tracking store failed.
	ErrCodeStoreError ErrorCode = "STORE_ERROR"
	// ErrCodeAPIError indicates a call against the task API failed.
	ErrCodeAPIError ErrorCode = "API_ERROR"
)

// Input and internal errors
const (
	// ErrCodeInvalidInput indicates the run configuration or filters are invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeCheckTimeout: true,
	ErrCodeStoreError:   true,
	ErrCodeAPIError:     true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
