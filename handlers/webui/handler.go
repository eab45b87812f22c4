// Package webui serves the browser-facing pages: login, the feedback form,
// the admin dashboard and the standalone simple form.
package webui

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/NomadCrew/feedback-collector/apiclient"
	"github.com/NomadCrew/feedback-collector/logger"
	"github.com/NomadCrew/feedback-collector/report"
	"github.com/NomadCrew/feedback-collector/services/session"
	"github.com/NomadCrew/feedback-collector/services/simpleform"
	"github.com/NomadCrew/feedback-collector/types"
	"github.com/NomadCrew/feedback-collector/web/charts"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// FeedbackClient is the part of the collection API client the UI uses.
type FeedbackClient interface {
	Categories(ctx context.Context) ([]string, error)
	Questions(ctx context.Context, category string) ([]string, error)
	Submit(ctx context.Context, fb types.FeedbackCreate) error
	FetchAll(ctx context.Context, password string) ([]report.Record, error)
}

var chartHeadings = map[string]string{
	charts.KindCategory: "Feedback Count by Category",
	charts.KindRatings:  "Average Rating per Category",
	charts.KindAnswers:  "Q1: Yes/No/Maybe Distribution",
}

type Handler struct {
	client   FeedbackClient
	sessions session.Store
	simple   *simpleform.CSVLog
	cookie   CookieOptions
	now      func() time.Time
}

// NewHandler wires the UI. simple may be nil when the simple form is off.
func NewHandler(client FeedbackClient, sessions session.Store, simple *simpleform.CSVLog, cookie CookieOptions) *Handler {
	return &Handler{
		client:   client,
		sessions: sessions,
		simple:   simple,
		cookie:   cookie,
		now:      time.Now,
	}
}

// SimpleFormEnabled reports whether /simple should be routed.
func (h *Handler) SimpleFormEnabled() bool {
	return h.simple != nil
}

// ---------------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------------

func (h *Handler) LoginPage(c *gin.Context) {
	if currentSession(c) != nil {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	c.HTML(http.StatusOK, "login.html", loginPage{page: page{Title: "Login"}})
}

func (h *Handler) Login(c *gin.Context) {
	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		p := loginPage{page: page{Title: "Login"}}
		p.notify(levelWarning, MsgEnterName)
		c.HTML(http.StatusOK, "login.html", p)
		return
	}

	sess, err := h.sessions.Create(c.Request.Context(), name)
	if err != nil {
		logger.GetLogger().Errorw("Failed to create session", "error", err, "request_id", c.GetString("request_id"))
		p := loginPage{page: page{Title: "Login"}, Name: name}
		p.notify(levelError, MsgSomethingWrong)
		c.HTML(http.StatusInternalServerError, "login.html", p)
		return
	}

	h.setSessionCookie(c, sess.ID)
	c.Redirect(http.StatusSeeOther, "/?welcome=1")
}

func (h *Handler) Logout(c *gin.Context) {
	if sess := currentSession(c); sess != nil {
		if err := h.sessions.Delete(c.Request.Context(), sess.ID); err != nil {
			logger.GetLogger().Warnw("Failed to delete session", "error", err, "request_id", c.GetString("request_id"))
		}
	}
	h.clearSessionCookie(c)
	c.Redirect(http.StatusSeeOther, "/login")
}

// ---------------------------------------------------------------------------
// Feedback form
// ---------------------------------------------------------------------------

// FormPage renders the form for ?category=, defaulting to the first one.
func (h *Handler) FormPage(c *gin.Context) {
	username := usernameOf(c)
	p := formPage{page: page{Title: "Submit Feedback", Username: username}}
	if c.Query("welcome") != "" {
		p.notify(levelSuccess, "Welcome, "+username+"!")
	}
	h.renderForm(c, http.StatusOK, p, c.Query("category"), defaultForm(username))
}

// Submit posts the form to the collection API.
func (h *Handler) Submit(c *gin.Context) {
	username := usernameOf(c)
	fb := submissionFromForm(c)
	values := formValues{
		Name:        fb.Name,
		Email:       fb.Email,
		Answers:     [5]string{fb.Q1, fb.Q2, c.PostForm("q3"), c.PostForm("q4"), c.PostForm("q5")},
		Suggestions: fb.Suggestions,
	}
	p := formPage{page: page{Title: "Submit Feedback", Username: username}}

	err := h.client.Submit(c.Request.Context(), fb)
	switch {
	case errors.Is(err, apiclient.ErrValidation):
		p.notify(levelWarning, MsgFillAllDetails)
		p.SubmissionID = fb.SubmissionID
		h.renderForm(c, http.StatusOK, p, fb.Category, values)
	case err != nil:
		logger.GetLogger().Errorw("Feedback submission failed",
			"error", err,
			"category", fb.Category,
			"email", logger.MaskEmail(fb.Email),
			"request_id", c.GetString("request_id"))
		p.notify(levelError, MsgSomethingWrong)
		p.SubmissionID = fb.SubmissionID
		h.renderForm(c, http.StatusBadGateway, p, fb.Category, values)
	default:
		p.notify(levelSuccess, MsgSubmitted)
		h.renderForm(c, http.StatusOK, p, fb.Category, defaultForm(username))
	}
}

// renderForm fetches categories and questions and renders the form. If the
// API is unreachable the page shows a notice instead of the form.
func (h *Handler) renderForm(c *gin.Context, status int, p formPage, category string, values formValues) {
	ctx := c.Request.Context()
	log := logger.GetLogger()

	categories, err := h.client.Categories(ctx)
	if err != nil || len(categories) == 0 {
		log.Errorw("Failed to list categories", "error", err, "request_id", c.GetString("request_id"))
		p.notify(levelError, MsgStoreUnavailable)
		c.HTML(http.StatusServiceUnavailable, "form.html", p)
		return
	}
	p.Categories = categories

	if category == "" {
		category = categories[0]
	} else if !contains(categories, category) {
		p.notify(levelWarning, MsgUnknownCategory)
		category = categories[0]
	}
	p.Category = category

	prompts, err := h.client.Questions(ctx, category)
	if err != nil {
		log.Errorw("Failed to list questions", "category", category, "error", err, "request_id", c.GetString("request_id"))
		p.notify(levelError, MsgStoreUnavailable)
		c.HTML(http.StatusServiceUnavailable, "form.html", p)
		return
	}

	p.Questions = questionViews(prompts, values.Answers)
	p.Answers = types.Answers
	p.Form = values
	if p.SubmissionID == "" {
		p.SubmissionID = uuid.NewString()
	}
	c.HTML(status, "form.html", p)
}

func submissionFromForm(c *gin.Context) types.FeedbackCreate {
	fb := types.FeedbackCreate{
		Name:        strings.TrimSpace(c.PostForm("name")),
		Email:       strings.TrimSpace(c.PostForm("email")),
		Category:    c.PostForm("category"),
		Q1:          c.PostForm("q1"),
		Q2:          c.PostForm("q2"),
		Q3:          formRating(c, "q3"),
		Q4:          formRating(c, "q4"),
		Q5:          formRating(c, "q5"),
		Suggestions: c.PostForm("suggestions"),
	}
	if id := c.PostForm("submission_id"); id != "" {
		if _, err := uuid.Parse(id); err == nil {
			fb.SubmissionID = id
		}
	}
	return fb
}

// formRating returns 0 for a missing or non-numeric value; the API rejects it.
func formRating(c *gin.Context, field string) int {
	v, err := strconv.Atoi(c.PostForm(field))
	if err != nil {
		return 0
	}
	return v
}

// ---------------------------------------------------------------------------
// Admin
// ---------------------------------------------------------------------------

// AdminPage shows the password form, or the dashboard once the session holds
// an accepted password.
func (h *Handler) AdminPage(c *gin.Context) {
	sess := currentSession(c)
	p := adminPage{page: page{Title: "Admin Dashboard", Username: sess.Username}}
	if !sess.IsAdmin() {
		c.HTML(http.StatusOK, "admin.html", p)
		return
	}

	records, ok := h.fetchAll(c, sess, &p)
	if !ok {
		return
	}
	p.Authorized = true
	p.notify(levelSuccess, MsgAdminLoggedIn)
	p.Total = len(records)
	p.Columns = report.Columns(records)
	p.Rows = tableRows(records, p.Columns)

	s := report.Summarize(records)
	if !s.Empty() {
		for _, kind := range charts.Kinds {
			if kind == charts.KindAnswers && s.AnswerDistribution == nil {
				continue
			}
			p.Charts = append(p.Charts, chartView{Kind: kind, Heading: chartHeadings[kind]})
		}
	}
	c.HTML(http.StatusOK, "admin.html", p)
}

// AdminLogin checks the password against the API and keeps it in the session.
func (h *Handler) AdminLogin(c *gin.Context) {
	sess := currentSession(c)
	password := c.PostForm("password")
	p := adminPage{page: page{Title: "Admin Dashboard", Username: sess.Username}}

	if password == "" {
		c.HTML(http.StatusOK, "admin.html", p)
		return
	}

	_, err := h.client.FetchAll(c.Request.Context(), password)
	switch {
	case errors.Is(err, apiclient.ErrUnauthorized):
		p.notify(levelError, MsgIncorrectPass)
		c.HTML(http.StatusUnauthorized, "admin.html", p)
		return
	case err != nil:
		logger.GetLogger().Errorw("Admin fetch failed", "error", err, "request_id", c.GetString("request_id"))
		p.notify(levelError, MsgSomethingWrong)
		c.HTML(http.StatusBadGateway, "admin.html", p)
		return
	}

	sess.AdminPassword = password
	if err := h.sessions.Save(c.Request.Context(), sess); err != nil {
		logger.GetLogger().Errorw("Failed to save session", "error", err, "request_id", c.GetString("request_id"))
		p.notify(levelError, MsgSomethingWrong)
		c.HTML(http.StatusInternalServerError, "admin.html", p)
		return
	}
	c.Redirect(http.StatusSeeOther, "/admin")
}

// ExportCSV downloads every record as feedback.csv.
func (h *Handler) ExportCSV(c *gin.Context) {
	records, ok := h.adminRecords(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, records); err != nil {
		logger.GetLogger().Errorw("Failed to encode CSV", "error", err, "request_id", c.GetString("request_id"))
		c.String(http.StatusInternalServerError, MsgSomethingWrong)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+report.ExportFilename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// Chart renders one dashboard chart as a standalone page.
func (h *Handler) Chart(c *gin.Context) {
	kind := c.Param("kind")
	if _, known := chartHeadings[kind]; !known {
		c.String(http.StatusNotFound, "unknown chart")
		return
	}

	records, ok := h.adminRecords(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	err := charts.Render(&buf, kind, report.Summarize(records))
	switch {
	case errors.Is(err, charts.ErrNoData):
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte("<p>No data.</p>"))
	case err != nil:
		logger.GetLogger().Errorw("Failed to render chart", "kind", kind, "error", err, "request_id", c.GetString("request_id"))
		c.String(http.StatusInternalServerError, MsgSomethingWrong)
	default:
		c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
	}
}

// adminRecords fetches records for the non-page admin endpoints. Callers
// without an accepted password are sent to the password form.
func (h *Handler) adminRecords(c *gin.Context) ([]report.Record, bool) {
	sess := currentSession(c)
	if !sess.IsAdmin() {
		c.Redirect(http.StatusSeeOther, "/admin")
		return nil, false
	}
	records, err := h.client.FetchAll(c.Request.Context(), sess.AdminPassword)
	if errors.Is(err, apiclient.ErrUnauthorized) {
		h.dropAdmin(c, sess)
		c.Redirect(http.StatusSeeOther, "/admin")
		return nil, false
	}
	if err != nil {
		logger.GetLogger().Errorw("Admin fetch failed", "error", err, "request_id", c.GetString("request_id"))
		c.String(http.StatusBadGateway, MsgSomethingWrong)
		return nil, false
	}
	return records, true
}

// fetchAll loads records for the dashboard page, rendering the failure itself.
func (h *Handler) fetchAll(c *gin.Context, sess *types.Session, p *adminPage) ([]report.Record, bool) {
	records, err := h.client.FetchAll(c.Request.Context(), sess.AdminPassword)
	switch {
	case errors.Is(err, apiclient.ErrUnauthorized):
		h.dropAdmin(c, sess)
		p.notify(levelError, MsgIncorrectPass)
		c.HTML(http.StatusUnauthorized, "admin.html", p)
		return nil, false
	case err != nil:
		logger.GetLogger().Errorw("Admin fetch failed", "error", err, "request_id", c.GetString("request_id"))
		p.notify(levelError, MsgSomethingWrong)
		c.HTML(http.StatusBadGateway, "admin.html", p)
		return nil, false
	}
	return records, true
}

// dropAdmin forgets a password the API no longer accepts.
func (h *Handler) dropAdmin(c *gin.Context, sess *types.Session) {
	sess.AdminPassword = ""
	if err := h.sessions.Save(c.Request.Context(), sess); err != nil {
		logger.GetLogger().Warnw("Failed to save session", "error", err, "request_id", c.GetString("request_id"))
	}
}

// ---------------------------------------------------------------------------
// Simple form
// ---------------------------------------------------------------------------

func (h *Handler) SimpleFormPage(c *gin.Context) {
	c.HTML(http.StatusOK, "simple.html", simplePage{
		page:          page{Title: "Feedback Collector"},
		DefaultRating: types.DefaultRating,
	})
}

// SimpleSubmit appends one row to the local CSV log.
func (h *Handler) SimpleSubmit(c *gin.Context) {
	rating := types.DefaultRating
	if v := c.PostForm("rating"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			rating = n
		}
	}

	p := simplePage{page: page{Title: "Feedback Collector"}, DefaultRating: types.DefaultRating}
	err := h.simple.Append(types.SimpleEntry{
		Timestamp: h.now(),
		Name:      c.PostForm("name"),
		Email:     c.PostForm("email"),
		Rating:    rating,
		Feedback:  c.PostForm("feedback"),
	})
	if err != nil {
		logger.GetLogger().Errorw("Failed to record simple feedback", "error", err, "path", h.simple.Path())
		p.notify(levelError, MsgSomethingWrong)
		c.HTML(http.StatusInternalServerError, "simple.html", p)
		return
	}

	p.notify(levelSuccess, MsgSimpleRecorded)
	c.HTML(http.StatusOK, "simple.html", p)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
