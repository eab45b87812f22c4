// Package apiclient is the HTTP client for the collection API. The web UI and
// the CLI use it to read the catalog, submit feedback and fetch every record
// for the admin views.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/NomadCrew/feedback-collector/catalog"
	"github.com/NomadCrew/feedback-collector/logger"
	"github.com/NomadCrew/feedback-collector/report"
	"github.com/NomadCrew/feedback-collector/types"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Client errors. Callers match them with errors.Is.
var (
	// ErrValidation means the input was rejected locally and nothing was sent.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthorized means the API rejected the admin credential.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrUpstream covers transport failures and any other non-success status.
	ErrUpstream = errors.New("collection API request failed")
)

const (
	defaultAdminUser = "admin"
	catalogCacheSize = 128
	maxErrorBody     = 4 << 10
)

// Client talks to one collection API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	adminUser string
	cache     *expirable.LRU[string, []string]
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithAdminUser sets the basic auth username for FetchAll.
func WithAdminUser(user string) Option {
	return func(c *Client) { c.adminUser = user }
}

// WithCatalogCache reuses categories and questions for ttl.
// A non-positive ttl disables caching.
func WithCatalogCache(ttl time.Duration) Option {
	return func(c *Client) {
		if ttl <= 0 {
			c.cache = nil
			return
		}
		c.cache = expirable.NewLRU[string, []string](catalogCacheSize, nil, ttl)
	}
}

// New creates a client for baseURL. Every request is bounded by timeout.
func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q: scheme and host are required", baseURL)
	}

	c := &Client{
		baseURL:   u,
		http:      &http.Client{Timeout: timeout},
		adminUser: defaultAdminUser,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Categories returns category names in catalog order.
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	const key = "categories"
	if cached, ok := c.cached(key); ok {
		return cached, nil
	}

	var out []string
	if err := c.getJSON(ctx, "/categories", "", &out); err != nil {
		return nil, err
	}
	c.store(key, out)
	return out, nil
}

// Questions returns the five prompts of category.
func (c *Client) Questions(ctx context.Context, category string) ([]string, error) {
	key := "questions:" + category
	if cached, ok := c.cached(key); ok {
		return cached, nil
	}

	var out []string
	if err := c.getJSON(ctx, "/questions/"+url.PathEscape(category), "", &out); err != nil {
		return nil, err
	}
	if len(out) != catalog.QuestionCount {
		return nil, fmt.Errorf("%w: got %d questions for %q, want %d", ErrUpstream, len(out), category, catalog.QuestionCount)
	}
	c.store(key, out)
	return out, nil
}

// ValidateSubmission applies the local checks made before any network call.
func ValidateSubmission(fb types.FeedbackCreate) error {
	if strings.TrimSpace(fb.Name) == "" || strings.TrimSpace(fb.Email) == "" {
		return fmt.Errorf("%w: name and email are required", ErrValidation)
	}
	return nil
}

// Submit posts one record. Empty name or email fails with ErrValidation
// without contacting the API. Any non-2xx response is ErrUpstream.
func (c *Client) Submit(ctx context.Context, fb types.FeedbackCreate) error {
	if err := ValidateSubmission(fb); err != nil {
		return err
	}

	body, err := json.Marshal(fb)
	if err != nil {
		return fmt.Errorf("failed to encode submission: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/submit", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError(req, resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// FetchAll returns every stored record with keys normalized to lowercase.
// A rejected password yields ErrUnauthorized.
func (c *Client) FetchAll(ctx context.Context, password string) ([]report.Record, error) {
	var raw []map[string]any
	if err := c.getJSON(ctx, "/admin/all", password, &raw); err != nil {
		return nil, err
	}
	return report.Normalize(raw), nil
}

// Ping checks the API health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/health/liveness", nil)
	if err != nil {
		return err
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return c.statusError(req, resp)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path, password string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if password != "" {
		req.SetBasicAuth(c.adminUser, password)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.statusError(req, resp)
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: decoding %s: %v", ErrUpstream, path, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	// path is already escaped.
	target := strings.TrimRight(c.baseURL.String(), "/") + path
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	return req, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.GetLogger().Warnw("Collection API request failed",
			"method", req.Method,
			"path", req.URL.Path,
			"duration", time.Since(start),
			"error", err)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return resp, nil
}

func (c *Client) statusError(req *http.Request, resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	logger.GetLogger().Warnw("Collection API returned non-success status",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"body", string(snippet))

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrUnauthorized, resp.StatusCode)
	default:
		return fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}
}

func (c *Client) cached(key string) ([]string, bool) {
	if c.cache == nil {
		return nil, false
	}
	v, ok := c.cache.Get(key)
	if !ok {
		return nil, false
	}
	out := make([]string, len(v))
	copy(out, v)
	return out, true
}

func (c *Client) store(key string, v []string) {
	if c.cache == nil {
		return
	}
	stored := make([]string, len(v))
	copy(stored, v)
	c.cache.Add(key, stored)
}
