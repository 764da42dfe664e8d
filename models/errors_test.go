package models

import (
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{NewNotFound("booking", "abc"), http.StatusNotFound},
		{NewForbidden("chat room", "abc", "send message"), http.StatusForbidden},
		{NewInvalidTransition("booking", "abc", "completed", "pending"), http.StatusBadRequest},
		{NewInvalidState("proposal", "abc", "accept", "rejected"), http.StatusBadRequest},
		{NewExpired("price offer", "abc", "accept"), http.StatusBadRequest},
		{NewValidation("amount must be positive"), http.StatusBadRequest},
		{NewConflict("booking", "abc", "status changed concurrently"), http.StatusConflict},
	}

	for _, tt := range tests {
		if got := tt.err.HTTPStatus(); got != tt.want {
			t.Errorf("%s: HTTPStatus() = %d, want %d", tt.err.Code, got, tt.want)
		}
	}
}

func TestAsAppError(t *testing.T) {
	appErr, ok := AsAppError(NewNotFound("booking", "abc"))
	if !ok || appErr.Code != ErrCodeNotFound {
		t.Fatalf("AsAppError on AppError = (%v, %v)", appErr, ok)
	}

	wrapped := fmt.Errorf("loading booking: %w", NewExpired("price offer", "x", "accept"))
	appErr, ok = AsAppError(wrapped)
	if !ok || appErr.Code != ErrCodeExpired {
		t.Fatalf("AsAppError on wrapped error = (%v, %v)", appErr, ok)
	}

	if _, ok := AsAppError(fmt.Errorf("plain error")); ok {
		t.Error("plain error should not unwrap to AppError")
	}
}
