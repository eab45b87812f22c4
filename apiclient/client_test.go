package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/NomadCrew/feedback-collector/logger"
	"github.com/NomadCrew/feedback-collector/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.IsTest = true
}

type fakeAPI struct {
	hits      atomic.Int32
	submitted []types.FeedbackCreate
	status    int
}

func (f *fakeAPI) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/categories", func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		_ = json.NewEncoder(w).Encode([]string{"Support", "Sales"})
	})
	mux.HandleFunc("/questions/", func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		switch r.URL.Path {
		case "/questions/Support", "/questions/Customer Care":
			_ = json.NewEncoder(w).Encode([]string{"a", "b", "c", "d", "e"})
		case "/questions/Short":
			_ = json.NewEncoder(w).Encode([]string{"a", "b"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	mux.HandleFunc("/submit", func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		var fb types.FeedbackCreate
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&fb))
		f.submitted = append(f.submitted, fb)
		if f.status != 0 {
			w.WriteHeader(f.status)
			return
		}
		_ = json.NewEncoder(w).Encode(types.StatusResponse{Status: "ok"})
	})
	mux.HandleFunc("/admin/all", func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		user, pass, ok := r.BasicAuth()
		if !ok || user != "admin" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`[{"Category":"Support","Q1":"Yes","Q3":4},{"category":"Sales","q1":"No","q3":5}]`))
	})
	return mux
}

func newTestClient(t *testing.T, opts ...Option) (*Client, *fakeAPI) {
	api := &fakeAPI{}
	srv := httptest.NewServer(api.handler(t))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL+"/", 2*time.Second, opts...)
	require.NoError(t, err)
	return c, api
}

func validSubmission() types.FeedbackCreate {
	return types.FeedbackCreate{
		Name: "Ada", Email: "ada@example.com", Category: "Support",
		Q1: "Yes", Q2: "No", Q3: 4, Q4: 5, Q5: 3,
	}
}

func TestNew_InvalidURL(t *testing.T) {
	_, err := New("127.0.0.1:8000", time.Second)
	assert.Error(t, err)
}

func TestCategoriesAndQuestions(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	cats, err := c.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Support", "Sales"}, cats)

	qs, err := c.Questions(ctx, "Support")
	require.NoError(t, err)
	assert.Len(t, qs, 5)

	qs, err = c.Questions(ctx, "Customer Care")
	require.NoError(t, err)
	assert.Len(t, qs, 5)

	_, err = c.Questions(ctx, "Unknown")
	assert.ErrorIs(t, err, ErrUpstream)

	_, err = c.Questions(ctx, "Short")
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestCatalogCache(t *testing.T) {
	c, api := newTestClient(t, WithCatalogCache(time.Minute))
	ctx := context.Background()

	first, err := c.Categories(ctx)
	require.NoError(t, err)
	first[0] = "mutated"

	second, err := c.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Support", second[0])
	assert.Equal(t, int32(1), api.hits.Load())
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		c, api := newTestClient(t)
		require.NoError(t, c.Submit(ctx, validSubmission()))
		require.Len(t, api.submitted, 1)
		assert.Equal(t, "Support", api.submitted[0].Category)
		assert.Equal(t, 4, api.submitted[0].Q3)
	})

	t.Run("empty name or email never calls the API", func(t *testing.T) {
		c, api := newTestClient(t)
		for _, fb := range []types.FeedbackCreate{
			{Email: "ada@example.com"},
			{Name: "Ada"},
			{Name: "  ", Email: "\t"},
		} {
			err := c.Submit(ctx, fb)
			assert.ErrorIs(t, err, ErrValidation)
		}
		assert.Equal(t, int32(0), api.hits.Load())
	})

	t.Run("non-success status", func(t *testing.T) {
		for _, status := range []int{http.StatusBadRequest, http.StatusInternalServerError, http.StatusTooManyRequests} {
			c, api := newTestClient(t)
			api.status = status
			err := c.Submit(ctx, validSubmission())
			assert.ErrorIs(t, err, ErrUpstream, "status %d", status)
		}
	})

	t.Run("unreachable API", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		c, err := New(url, time.Second)
		require.NoError(t, err)
		assert.ErrorIs(t, c.Submit(ctx, validSubmission()), ErrUpstream)
	})
}

func TestFetchAll(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)

	records, err := c.FetchAll(ctx, "secret")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Support", records[0]["category"])
	assert.Equal(t, json.Number("4"), records[0]["q3"])
	assert.Equal(t, "Sales", records[1]["category"])

	_, err = c.FetchAll(ctx, "wrong")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.NotErrorIs(t, err, ErrUpstream)
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, 50*time.Millisecond)
	require.NoError(t, err)
	_, err = c.Categories(context.Background())
	assert.ErrorIs(t, err, ErrUpstream)
}
