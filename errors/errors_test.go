package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_New_Success(t *testing.T) {
	err := New(ErrCodeInvalidInput, "bad filter", http.StatusBadRequest)
	if err.Code != ErrCodeInvalidInput {
		t.Errorf("expected code %s, got %s", ErrCodeInvalidInput, err.Code)
	}
	if err.Message != "bad filter" {
		t.Errorf("expected message 'bad filter', got %q", err.Message)
	}
	if err.HTTPStatus != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, err.HTTPStatus)
	}
	if err.Retryable {
		t.Error("INVALID_INPUT should not be retryable")
	}
}

func TestAppError_New_Retryable(t *testing.T) {
	err := New(ErrCodeCheckTimeout, "timed out", http.StatusGatewayTimeout)
	if !err.Retryable {
		t.Error("CHECK_TIMEOUT should be retryable")
	}
}

func TestAppError_DependencyCycle(t *testing.T) {
	err := DependencyCycle([]string{"audit_trail", "crud_behavior"})
	if err.Code != ErrCodeDependencyCycle {
		t.Errorf("expected DEPENDENCY_CYCLE, got %s", err.Code)
	}
	if !strings.Contains(err.Message, "audit_trail") {
		t.Errorf("expected node ids in message, got %q", err.Message)
	}
	if err.Retryable {
		t.Error("cycle errors are never retryable")
	}
}

func TestAppError_UnknownDependency(t *testing.T) {
	err := UnknownDependency("crud_behavior", "missing")
	if err.Code != ErrCodeUnknownDependency {
		t.Errorf("expected UNKNOWN_DEPENDENCY, got %s", err.Code)
	}
	if err.Details["node"] != "crud_behavior" {
		t.Errorf("expected node detail, got %v", err.Details["node"])
	}
	if err.Details["dependency"] != "missing" {
		t.Errorf("expected dependency detail, got %v", err.Details["dependency"])
	}
}

func TestAppError_CheckTimeout(t *testing.T) {
	err := CheckTimeout("performance", "30s")
	if err.Code != ErrCodeCheckTimeout {
		t.Errorf("expected CHECK_TIMEOUT, got %s", err.Code)
	}
	if !err.Retryable {
		t.Error("timeouts should be retryable")
	}
	if err.Details["check"] != "performance" {
		t.Errorf("expected check detail, got %v", err.Details["check"])
	}
}

func TestAppError_CheckPanic(t *testing.T) {
	err := CheckPanic("data_integrity", "index out of range")
	if err.Code != ErrCodeCheckPanic {
		t.Errorf("expected CHECK_PANIC, got %s", err.Code)
	}
	if !strings.Contains(err.Message, "index out of range") {
		t.Errorf("expected recovered value in message, got %q", err.Message)
	}
	if err.Retryable {
		t.Error("panics should not be retryable")
	}
}

func TestAppError_StoreError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := StoreError(cause)
	if err.Code != ErrCodeStoreError {
		t.Errorf("expected STORE_ERROR, got %s", err.Code)
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	if !err.Retryable {
		t.Error("store errors should be retryable")
	}
}

func TestAppError_WithDetail(t *testing.T) {
	err := Validation("scope must be one of: full, quick").WithDetail("field", "scope")
	if err.Details["field"] != "scope" {
		t.Errorf("expected field detail, got %v", err.Details["field"])
	}
}

func TestAppError_ErrorString(t *testing.T) {
	err := APIError("create task", fmt.Errorf("boom"))
	s := err.Error()
	if !strings.Contains(s, "API_ERROR") || !strings.Contains(s, "boom") {
		t.Errorf("unexpected error string: %q", s)
	}
}
