// Package errors provides unified error handling for flowcheck.
// It implements structured error types with machine-readable codes,
// HTTP status mapping for the consuming API layer, and retryable
// detection.
package errors
