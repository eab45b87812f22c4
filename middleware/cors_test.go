package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/NomadCrew/feedback-collector/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	restricted := &config.ServerConfig{AllowedOrigins: []string{"http://localhost:8501", "https://feedback.example.com"}}
	open := &config.ServerConfig{AllowedOrigins: []string{"*"}}

	testCases := []struct {
		name           string
		cfg            *config.ServerConfig
		origin         string
		method         string
		expectedStatus int
		expectedOrigin string
	}{
		{
			name:           "allowed origin",
			cfg:            restricted,
			origin:         "http://localhost:8501",
			method:         http.MethodGet,
			expectedStatus: http.StatusOK,
			expectedOrigin: "http://localhost:8501",
		},
		{
			name:           "allowed origin preflight",
			cfg:            restricted,
			origin:         "https://feedback.example.com",
			method:         http.MethodOptions,
			expectedStatus: http.StatusNoContent,
			expectedOrigin: "https://feedback.example.com",
		},
		{
			name:           "disallowed origin",
			cfg:            restricted,
			origin:         "http://malicious.com",
			method:         http.MethodGet,
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "same-origin request without Origin",
			cfg:            restricted,
			method:         http.MethodGet,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "wildcard allows any origin",
			cfg:            open,
			origin:         "http://anything.test",
			method:         http.MethodGet,
			expectedStatus: http.StatusOK,
			expectedOrigin: "*",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			router := gin.New()
			router.Use(CORSMiddleware(tc.cfg))
			router.GET("/categories", func(c *gin.Context) { c.String(http.StatusOK, "OK") })

			w := httptest.NewRecorder()
			req := httptest.NewRequest(tc.method, "/categories", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			if tc.method == http.MethodOptions {
				req.Header.Set("Access-Control-Request-Method", http.MethodGet)
			}
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.expectedStatus, w.Code)
			assert.Equal(t, tc.expectedOrigin, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}
