// Package errors defines the typed errors the collection API renders as JSON.
package errors

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/NomadCrew/feedback-collector/logger"
)

type ErrorType string

const (
	ValidationError ErrorType = "VALIDATION_ERROR"
	NotFoundError   ErrorType = "NOT_FOUND"
	AuthError       ErrorType = "AUTHENTICATION_ERROR"
	DatabaseError   ErrorType = "DATABASE_ERROR"
	ServerError     ErrorType = "SERVER_ERROR"
	RateLimitError  ErrorType = "RATE_LIMIT_EXCEEDED"
)

var statusByType = map[ErrorType]int{
	ValidationError: http.StatusBadRequest,
	NotFoundError:   http.StatusNotFound,
	AuthError:       http.StatusUnauthorized,
	DatabaseError:   http.StatusInternalServerError,
	ServerError:     http.StatusInternalServerError,
	RateLimitError:  http.StatusTooManyRequests,
}

// AppError is an error with a client-facing type, message and status.
// Detail is shown to clients only for the types listed in Exposed.
type AppError struct {
	Type       ErrorType
	Message    string
	Detail     string
	HTTPStatus int
	// RetryAfter is set on rate limit errors, in seconds.
	RetryAfter int
	Raw        error
}

func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Raw
}

// GetHTTPStatus returns the response status, falling back to the type default.
func (e *AppError) GetHTTPStatus() int {
	if e.HTTPStatus != 0 {
		return e.HTTPStatus
	}
	if status, ok := statusByType[e.Type]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Exposed reports whether Detail is safe to return to the client.
func (e *AppError) Exposed() bool {
	switch e.Type {
	case ValidationError, NotFoundError, RateLimitError:
		return e.Detail != ""
	default:
		return false
	}
}

func New(errType ErrorType, message, detail string) *AppError {
	return &AppError{Type: errType, Message: message, Detail: detail, HTTPStatus: statusByType[errType]}
}

// NotFound reports a named entity the API does not know, e.g. a category.
func NotFound(entity string, name interface{}) *AppError {
	return New(NotFoundError, entity+" not found",
		fmt.Sprintf("no %s named %q", strings.ToLower(entity), fmt.Sprint(name)))
}

func ValidationFailed(message, details string) *AppError {
	return New(ValidationError, message, details)
}

// InvalidSubmission rejects a POST /submit body.
func InvalidSubmission(detail string) *AppError {
	return ValidationFailed("Invalid feedback submission", detail)
}

func AuthenticationFailed(message string) *AppError {
	return New(AuthError, message, "")
}

// NewDatabaseError logs err and returns a sanitized store failure.
func NewDatabaseError(err error) *AppError {
	logger.GetLogger().Errorw("Database error", "error", err)
	e := New(DatabaseError, "Database operation failed", "Please try again later")
	e.Raw = err
	return e
}

func RateLimitExceeded(message string, retryAfterSeconds int) *AppError {
	e := New(RateLimitError, message, fmt.Sprintf("retry after %d seconds", retryAfterSeconds))
	e.RetryAfter = retryAfterSeconds
	return e
}
