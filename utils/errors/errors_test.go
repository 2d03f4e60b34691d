package errors

import (
	"fmt"
	"net/http"
	"testing"
)

func TestAPIErrorError(t *testing.T) {
	err := NewAPIError("DISPATCH_ERROR", "Failed to send notification", http.StatusInternalServerError)
	want := "DISPATCH_ERROR: Failed to send notification"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrapPassesThroughAPIError(t *testing.T) {
	wrapped := Wrap(ErrUnauthorized, "OTHER", "other", http.StatusInternalServerError)
	if wrapped != ErrUnauthorized {
		t.Errorf("Wrap should return the original APIError unchanged")
	}
}

func TestWrapPlainError(t *testing.T) {
	plain := fmt.Errorf("connection refused")
	wrapped := Wrap(plain, "DB_ERROR", "database unavailable", http.StatusInternalServerError)
	if wrapped.Code != "DB_ERROR" || wrapped.Status != http.StatusInternalServerError {
		t.Errorf("unexpected wrap result: %+v", wrapped)
	}
	if wrapped.Details != "connection refused" {
		t.Errorf("expected details to carry the cause, got %q", wrapped.Details)
	}
}
