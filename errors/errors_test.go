package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/NomadCrew/feedback-collector/logger"
	"github.com/stretchr/testify/assert"
)

func init() {
	logger.IsTest = true
}

func TestNew(t *testing.T) {
	err := New(ValidationError, "invalid input", "field required")
	assert.Equal(t, ValidationError, err.Type)
	assert.Equal(t, "invalid input", err.Message)
	assert.Equal(t, "field required", err.Detail)
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus)
}

func TestNotFound(t *testing.T) {
	err := NotFound("Category", "Billing")
	assert.Equal(t, NotFoundError, err.Type)
	assert.Equal(t, "Category not found", err.Message)
	assert.Equal(t, `no category named "Billing"`, err.Detail)
	assert.Equal(t, http.StatusNotFound, err.GetHTTPStatus())
}

func TestInvalidSubmission(t *testing.T) {
	err := InvalidSubmission("q3 must be between 1 and 5")
	assert.Equal(t, ValidationError, err.Type)
	assert.Equal(t, "Invalid feedback submission", err.Message)
	assert.True(t, err.Exposed())
}

func TestAuthenticationFailed(t *testing.T) {
	err := AuthenticationFailed("Incorrect password")
	assert.Equal(t, AuthError, err.Type)
	assert.Equal(t, http.StatusUnauthorized, err.GetHTTPStatus())
	assert.False(t, err.Exposed())
}

func TestNewDatabaseError_HidesCause(t *testing.T) {
	originalErr := fmt.Errorf("connection refused")
	err := NewDatabaseError(originalErr)
	assert.Equal(t, DatabaseError, err.Type)
	assert.Equal(t, "Database operation failed", err.Message)
	assert.NotContains(t, err.Detail, "connection refused")
	assert.False(t, err.Exposed())
	assert.True(t, stderrors.Is(err, originalErr))
}

func TestRateLimitExceeded(t *testing.T) {
	err := RateLimitExceeded("Too many submissions", 42)
	assert.Equal(t, http.StatusTooManyRequests, err.GetHTTPStatus())
	assert.Equal(t, "retry after 42 seconds", err.Detail)
	assert.Equal(t, 42, err.RetryAfter)
	assert.True(t, err.Exposed())
}

func TestGetHTTPStatus_FallsBackToType(t *testing.T) {
	err := &AppError{Type: ValidationError, Message: "bad"}
	assert.Equal(t, http.StatusBadRequest, err.GetHTTPStatus())

	err = &AppError{Type: "SOMETHING_ELSE", Message: "bad"}
	assert.Equal(t, http.StatusInternalServerError, err.GetHTTPStatus())
}

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "with detail",
			err:      &AppError{Type: ValidationError, Message: "invalid input", Detail: "field required"},
			expected: "VALIDATION_ERROR: invalid input (field required)",
		},
		{
			name:     "without detail",
			err:      &AppError{Type: AuthError, Message: "unauthorized"},
			expected: "AUTHENTICATION_ERROR: unauthorized",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}
