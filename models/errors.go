package models

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode classifies domain failures so controllers can map them to
// HTTP statuses and the client can choose retry-vs-fix-input handling.
type ErrorCode string

const (
	ErrCodeNotFound          ErrorCode = "not_found"
	ErrCodeForbidden         ErrorCode = "forbidden"
	ErrCodeInvalidTransition ErrorCode = "invalid_transition"
	ErrCodeInvalidState      ErrorCode = "invalid_state"
	ErrCodeExpired           ErrorCode = "expired"
	ErrCodeValidation        ErrorCode = "validation_error"
	ErrCodeConflict          ErrorCode = "conflict"
)

// AppError carries enough context (entity, id, attempted action, current
// state) for the caller to render a specific message.
type AppError struct {
	Code     ErrorCode `json:"code"`
	Message  string    `json:"message"`
	Entity   string    `json:"entity,omitempty"`
	EntityID string    `json:"entityId,omitempty"`
	Action   string    `json:"action,omitempty"`
	State    string    `json:"state,omitempty"`
}

func (e *AppError) Error() string {
	if e.Entity != "" && e.EntityID != "" {
		return fmt.Sprintf("%s: %s (%s %s)", e.Code, e.Message, e.Entity, e.EntityID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// HTTPStatus maps the error code to an HTTP status for the response envelope.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeInvalidTransition, ErrCodeInvalidState, ErrCodeExpired, ErrCodeValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func NewNotFound(entity, id string) *AppError {
	return &AppError{
		Code:     ErrCodeNotFound,
		Message:  entity + " not found",
		Entity:   entity,
		EntityID: id,
	}
}

func NewForbidden(entity, id, action string) *AppError {
	return &AppError{
		Code:     ErrCodeForbidden,
		Message:  "access denied",
		Entity:   entity,
		EntityID: id,
		Action:   action,
	}
}

func NewInvalidTransition(entity, id, from, to string) *AppError {
	return &AppError{
		Code:     ErrCodeInvalidTransition,
		Message:  fmt.Sprintf("cannot transition from %q to %q", from, to),
		Entity:   entity,
		EntityID: id,
		Action:   to,
		State:    from,
	}
}

func NewInvalidState(entity, id, action, state string) *AppError {
	return &AppError{
		Code:     ErrCodeInvalidState,
		Message:  fmt.Sprintf("cannot %s while %s is %q", action, entity, state),
		Entity:   entity,
		EntityID: id,
		Action:   action,
		State:    state,
	}
}

func NewExpired(entity, id, action string) *AppError {
	return &AppError{
		Code:     ErrCodeExpired,
		Message:  entity + " has expired",
		Entity:   entity,
		EntityID: id,
		Action:   action,
	}
}

func NewValidation(message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message}
}

func NewConflict(entity, id, message string) *AppError {
	return &AppError{
		Code:     ErrCodeConflict,
		Message:  message,
		Entity:   entity,
		EntityID: id,
	}
}

// AsAppError unwraps err into an *AppError if it carries one.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
