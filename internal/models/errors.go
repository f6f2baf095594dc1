package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes surfaced to API clients.
const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeForbidden      = "FORBIDDEN"
	CodeNotFound       = "NOT_FOUND"
	CodeConflict       = "CONFLICT"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeInternal       = "INTERNAL_ERROR"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Field   string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the error code onto a response status.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case CodeInvalidRequest:
		return fiber.StatusBadRequest
	case CodeForbidden:
		return fiber.StatusForbidden
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodeConflict:
		return fiber.StatusConflict
	case CodeUnauthorized:
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeInvalidRequest,
		Message: message,
	}
}

// NewFieldError is an InvalidRequest scoped to one payload field.
func NewFieldError(field, message string) *AppError {
	return &AppError{
		Code:    CodeInvalidRequest,
		Message: message,
		Field:   field,
	}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: message,
	}
}

func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// AsAppError unwraps err into an *AppError, wrapping unknown errors as internal.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError(err)
}

// ErrorCode returns the AppError code of err, or "" when err is not one.
func ErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// RespondWithError creates a standardized error response. The wrapped cause
// of an AppError is never written to the client.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	var appErr *AppError
	if errors.As(err, &appErr) {
		response = ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
			Field: appErr.Field,
		}
	} else {
		response = ErrorResponse{
			Error: err.Error(),
		}
	}

	return c.Status(status).JSON(response)
}
