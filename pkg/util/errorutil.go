package util

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// DomainError standardizes application errors at the transport boundary.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
		Err:        domain.ErrNotFound,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

var kindMapping = []struct {
	kind   error
	code   string
	status int
}{
	{domain.ErrNotFound, "NOT_FOUND", http.StatusNotFound},
	{domain.ErrInvalidState, "INVALID_STATE", http.StatusConflict},
	{domain.ErrInvalidRole, "INVALID_ROLE", http.StatusUnprocessableEntity},
	{domain.ErrInvalidTransition, "INVALID_TRANSITION", http.StatusConflict},
	{domain.ErrEmptyValue, "EMPTY_VALUE", http.StatusBadRequest},
	{domain.ErrInvalidValue, "INVALID_VALUE", http.StatusBadRequest},
	{domain.ErrConflict, "CONFLICT", http.StatusConflict},
}

// ToDomainError converts any error into a DomainError. Domain error kinds keep
// their message; everything else becomes an opaque internal error.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return &DomainError{
			Code:       strings.ToUpper(strings.ReplaceAll(http.StatusText(fiberErr.Code), " ", "_")),
			Message:    fiberErr.Message,
			HTTPStatus: fiberErr.Code,
			Err:        err,
		}
	}
	for _, m := range kindMapping {
		if errors.Is(err, m.kind) {
			return &DomainError{
				Code:       m.code,
				Message:    err.Error(),
				HTTPStatus: m.status,
				Err:        err,
			}
		}
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}
