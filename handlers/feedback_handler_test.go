package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/NomadCrew/feedback-collector/catalog"
	"github.com/NomadCrew/feedback-collector/internal/store"
	"github.com/NomadCrew/feedback-collector/logger"
	"github.com/NomadCrew/feedback-collector/middleware"
	"github.com/NomadCrew/feedback-collector/services"
	"github.com/NomadCrew/feedback-collector/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.IsTest = true
}

// ---------------------------------------------------------------------------
// Mock
// ---------------------------------------------------------------------------

type MockFeedbackStore struct {
	mock.Mock
}

func (m *MockFeedbackStore) CreateFeedback(ctx context.Context, fb types.FeedbackCreate) (*types.Feedback, bool, error) {
	args := m.Called(ctx, fb)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*types.Feedback), args.Bool(1), args.Error(2)
}

func (m *MockFeedbackStore) ListFeedback(ctx context.Context) ([]types.Feedback, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Feedback), args.Error(1)
}

func (m *MockFeedbackStore) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

var _ store.FeedbackStore = (*MockFeedbackStore)(nil)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

const testSubmissionID = "8f14e45f-ceea-4e7a-9c2b-2f5a5d1b7c10"

func buildFeedbackRouter(fs store.FeedbackStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewFeedbackHandler(fs, catalog.NewStore(catalog.Default()))

	r := gin.New()
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.ErrorHandler())
	r.GET("/categories", h.ListCategories)
	r.GET("/questions/:category", h.ListQuestions)
	r.POST("/submit", h.SubmitFeedback)
	r.GET("/admin/all", middleware.AdminBasicAuth("admin", "correct-horse"), h.ListAllFeedback)
	return r
}

func validSubmission() types.FeedbackCreate {
	return types.FeedbackCreate{
		SubmissionID: testSubmissionID,
		Name:         "Ada",
		Email:        "ada@example.com",
		Category:     "Product",
		Q1:           "Yes",
		Q2:           "Maybe",
		Q3:           4,
		Q4:           5,
		Q5:           3,
		Suggestions:  "More colours",
	}
}

func doJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ---------------------------------------------------------------------------
// Catalog endpoints
// ---------------------------------------------------------------------------

func TestListCategories(t *testing.T) {
	r := buildFeedbackRouter(new(MockFeedbackStore))

	w := doJSON(r, http.MethodGet, "/categories", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var got []string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, []string{"Product", "Support", "Sales", "Website"}, got)
}

func TestListQuestions(t *testing.T) {
	r := buildFeedbackRouter(new(MockFeedbackStore))

	t.Run("known category", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/questions/Support", nil)

		require.Equal(t, http.StatusOK, w.Code)
		var got []string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Len(t, got, catalog.QuestionCount)
		assert.Equal(t, "Was your issue resolved?", got[0])
	})

	t.Run("unknown category", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/questions/Nope", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		var body types.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "NOT_FOUND", body.Type)
	})
}

// ---------------------------------------------------------------------------
// Submit
// ---------------------------------------------------------------------------

func TestSubmitFeedback(t *testing.T) {
	stored := &types.Feedback{ID: "rec-1", Name: "Ada", Email: "ada@example.com", Category: "Product", Timestamp: time.Now()}

	tests := []struct {
		name       string
		mutate     func(*types.FeedbackCreate)
		setupMock  func(*MockFeedbackStore)
		wantStatus int
		wantBody   string
	}{
		{
			name:   "created",
			mutate: func(*types.FeedbackCreate) {},
			setupMock: func(m *MockFeedbackStore) {
				m.On("CreateFeedback", mock.Anything, validSubmission()).Return(stored, true, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   StatusSubmitted,
		},
		{
			name:   "trims name and email before storing",
			mutate: func(fb *types.FeedbackCreate) { fb.Name = "  Ada "; fb.Email = " ada@example.com\t" },
			setupMock: func(m *MockFeedbackStore) {
				m.On("CreateFeedback", mock.Anything, validSubmission()).Return(stored, true, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   StatusSubmitted,
		},
		{
			name:   "duplicate submission id",
			mutate: func(*types.FeedbackCreate) {},
			setupMock: func(m *MockFeedbackStore) {
				m.On("CreateFeedback", mock.Anything, validSubmission()).Return(stored, false, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   StatusDuplicate,
		},
		{
			name:       "blank name",
			mutate:     func(fb *types.FeedbackCreate) { fb.Name = "   " },
			setupMock:  func(*MockFeedbackStore) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   "name and email must not be blank",
		},
		{
			name:       "missing email",
			mutate:     func(fb *types.FeedbackCreate) { fb.Email = "" },
			setupMock:  func(*MockFeedbackStore) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "rating out of range",
			mutate:     func(fb *types.FeedbackCreate) { fb.Q3 = 6 },
			setupMock:  func(*MockFeedbackStore) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "answer not in Yes/No/Maybe",
			mutate:     func(fb *types.FeedbackCreate) { fb.Q1 = "Perhaps" },
			setupMock:  func(*MockFeedbackStore) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown category",
			mutate:     func(fb *types.FeedbackCreate) { fb.Category = "Gardening" },
			setupMock:  func(*MockFeedbackStore) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   "unknown category",
		},
		{
			name:   "check constraint rejected",
			mutate: func(*types.FeedbackCreate) {},
			setupMock: func(m *MockFeedbackStore) {
				m.On("CreateFeedback", mock.Anything, mock.Anything).
					Return(nil, false, fmt.Errorf("%w: feedback_q3_check", store.ErrInvalid))
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "store failure",
			mutate: func(*types.FeedbackCreate) {},
			setupMock: func(m *MockFeedbackStore) {
				m.On("CreateFeedback", mock.Anything, mock.Anything).
					Return(nil, false, errors.New("connection refused"))
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   "Database operation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := new(MockFeedbackStore)
			tt.setupMock(fs)
			r := buildFeedbackRouter(fs)

			body := validSubmission()
			tt.mutate(&body)
			w := doJSON(r, http.MethodPost, "/submit", body)

			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantBody != "" {
				assert.Contains(t, w.Body.String(), tt.wantBody)
			}
			fs.AssertExpectations(t)
		})
	}
}

func TestSubmitFeedback_MalformedJSON(t *testing.T) {
	r := buildFeedbackRouter(new(MockFeedbackStore))

	req := httptest.NewRequest(http.MethodPost, "/submit", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ---------------------------------------------------------------------------
// Admin dump
// ---------------------------------------------------------------------------

func TestListAllFeedback(t *testing.T) {
	records := []types.Feedback{
		{ID: "1", Name: "Ada", Category: "Product", Q1: "Yes", Q3: 4},
		{ID: "2", Name: "Bob", Category: "Support", Q1: "No", Q3: 2},
	}

	t.Run("authorized", func(t *testing.T) {
		fs := new(MockFeedbackStore)
		fs.On("ListFeedback", mock.Anything).Return(records, nil)
		r := buildFeedbackRouter(fs)

		req := httptest.NewRequest(http.MethodGet, "/admin/all", nil)
		req.SetBasicAuth("admin", "correct-horse")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var got []map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.Len(t, got, 2)
		assert.Equal(t, "Ada", got[0]["name"])
		assert.Equal(t, "Support", got[1]["category"])
	})

	t.Run("empty store is an empty array", func(t *testing.T) {
		fs := new(MockFeedbackStore)
		fs.On("ListFeedback", mock.Anything).Return([]types.Feedback{}, nil)
		r := buildFeedbackRouter(fs)

		req := httptest.NewRequest(http.MethodGet, "/admin/all", nil)
		req.SetBasicAuth("admin", "correct-horse")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, "[]", w.Body.String())
	})

	t.Run("wrong password never reaches the store", func(t *testing.T) {
		fs := new(MockFeedbackStore)
		r := buildFeedbackRouter(fs)

		req := httptest.NewRequest(http.MethodGet, "/admin/all", nil)
		req.SetBasicAuth("admin", "wrong")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		fs.AssertNotCalled(t, "ListFeedback", mock.Anything)
	})

	t.Run("store failure", func(t *testing.T) {
		fs := new(MockFeedbackStore)
		fs.On("ListFeedback", mock.Anything).Return(nil, errors.New("timeout"))
		r := buildFeedbackRouter(fs)

		req := httptest.NewRequest(http.MethodGet, "/admin/all", nil)
		req.SetBasicAuth("admin", "correct-horse")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

// ---------------------------------------------------------------------------
// Health
// ---------------------------------------------------------------------------

func TestHealthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	build := func(pingErr error) *gin.Engine {
		fs := new(MockFeedbackStore)
		fs.On("Ping", mock.Anything).Return(pingErr)
		h := NewHealthHandler(services.NewHealthService("test").AddCheck(types.ComponentDatabase, true, fs))
		r := gin.New()
		r.GET("/health", h.DetailedHealth)
		r.GET("/health/liveness", h.LivenessCheck)
		r.GET("/health/readiness", h.ReadinessCheck)
		return r
	}

	t.Run("ready when database is up", func(t *testing.T) {
		w := doJSON(build(nil), http.MethodGet, "/health/readiness", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"UP"`)
	})

	t.Run("not ready when database is down", func(t *testing.T) {
		w := doJSON(build(errors.New("refused")), http.MethodGet, "/health/readiness", nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("detailed health is always 200", func(t *testing.T) {
		w := doJSON(build(errors.New("refused")), http.MethodGet, "/health", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"DOWN"`)
	})

	t.Run("liveness ignores dependencies", func(t *testing.T) {
		w := doJSON(build(errors.New("refused")), http.MethodGet, "/health/liveness", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
