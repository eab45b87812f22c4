package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/NomadCrew/feedback-collector/errors"
	"github.com/NomadCrew/feedback-collector/logger"
	"github.com/NomadCrew/feedback-collector/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.IsTest = true
}

func TestErrorHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	testCases := []struct {
		name            string
		err             error
		ginErrorType    gin.ErrorType
		expectedStatus  int
		expectedType    string
		expectedMessage string
		expectedDetails string
	}{
		{
			name:            "plain error is a 500 without details",
			err:             errors.New("pool closed"),
			ginErrorType:    gin.ErrorTypePrivate,
			expectedStatus:  http.StatusInternalServerError,
			expectedType:    string(apperrors.ServerError),
			expectedMessage: "Internal Server Error",
		},
		{
			name:            "validation error keeps details",
			err:             apperrors.ValidationFailed("Invalid feedback submission", "q3 must be between 1 and 5"),
			ginErrorType:    gin.ErrorTypePrivate,
			expectedStatus:  http.StatusBadRequest,
			expectedType:    string(apperrors.ValidationError),
			expectedMessage: "Invalid feedback submission",
			expectedDetails: "q3 must be between 1 and 5",
		},
		{
			name:            "wrapped not found",
			err:             fmt.Errorf("lookup: %w", apperrors.NotFound("Category", "Unknown")),
			ginErrorType:    gin.ErrorTypePrivate,
			expectedStatus:  http.StatusNotFound,
			expectedType:    string(apperrors.NotFoundError),
			expectedMessage: "Category not found",
			expectedDetails: `no category named "Unknown"`,
		},
		{
			name:            "database error hides details",
			err:             apperrors.NewDatabaseError(errors.New("connection reset")),
			ginErrorType:    gin.ErrorTypePrivate,
			expectedStatus:  http.StatusInternalServerError,
			expectedType:    string(apperrors.DatabaseError),
			expectedMessage: "Database operation failed",
		},
		{
			name:            "bind error",
			err:             errors.New("Key: 'FeedbackCreate.Name' Error:Field validation for 'Name' failed on the 'required' tag"),
			ginErrorType:    gin.ErrorTypeBind,
			expectedStatus:  http.StatusBadRequest,
			expectedType:    string(apperrors.ValidationError),
			expectedMessage: "Invalid feedback submission",
			expectedDetails: "Key: 'FeedbackCreate.Name' Error:Field validation for 'Name' failed on the 'required' tag",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			router := gin.New()
			router.Use(ErrorHandler())
			router.GET("/test", func(c *gin.Context) {
				_ = c.Error(tc.err).SetType(tc.ginErrorType)
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

			require.Equal(t, tc.expectedStatus, w.Code)
			var body types.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.expectedType, body.Type)
			assert.Equal(t, tc.expectedMessage, body.Message)
			assert.Equal(t, fmt.Sprint(tc.expectedStatus), body.Code)
			assert.Equal(t, tc.expectedDetails, body.Details)
		})
	}
}

func TestErrorHandler_LeavesWrittenResponses(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorHandler())
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusAccepted, "done")
		_ = c.Error(errors.New("logged only"))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "done", w.Body.String())
}
