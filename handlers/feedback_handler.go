package handlers

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/NomadCrew/feedback-collector/catalog"
	"github.com/NomadCrew/feedback-collector/errors"
	"github.com/NomadCrew/feedback-collector/internal/store"
	"github.com/NomadCrew/feedback-collector/logger"
	"github.com/NomadCrew/feedback-collector/types"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Status strings returned by POST /submit.
const (
	StatusSubmitted = "Feedback submitted successfully"
	StatusDuplicate = "Feedback already recorded"
)

var submissionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "feedback_submissions_total",
		Help: "Feedback submissions by outcome.",
	},
	[]string{"result"},
)

// FeedbackHandler serves the collection API: catalog lookups, submission
// and the admin dump.
type FeedbackHandler struct {
	feedbackStore store.FeedbackStore
	catalog       catalog.Provider
}

func NewFeedbackHandler(feedbackStore store.FeedbackStore, provider catalog.Provider) *FeedbackHandler {
	return &FeedbackHandler{feedbackStore: feedbackStore, catalog: provider}
}

// ListCategories returns the category names in catalog order.
func (h *FeedbackHandler) ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.ListCategories())
}

// ListQuestions returns the five prompts of a category.
func (h *FeedbackHandler) ListQuestions(c *gin.Context) {
	category := c.Param("category")
	questions, err := h.catalog.ListQuestions(category)
	if err != nil {
		if stderrors.Is(err, catalog.ErrUnknownCategory) {
			_ = c.Error(errors.NotFound("Category", category))
			return
		}
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, questions)
}

// SubmitFeedback appends one record. Resubmitting a submission_id returns
// 200 without creating a second record.
func (h *FeedbackHandler) SubmitFeedback(c *gin.Context) {
	var req types.FeedbackCreate
	if !bindJSONOrError(c, &req) {
		submissionsTotal.WithLabelValues("invalid").Inc()
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" {
		submissionsTotal.WithLabelValues("invalid").Inc()
		_ = c.Error(errors.InvalidSubmission("name and email must not be blank"))
		return
	}
	if _, err := h.catalog.ListQuestions(req.Category); err != nil {
		submissionsTotal.WithLabelValues("invalid").Inc()
		_ = c.Error(errors.InvalidSubmission("unknown category: "+req.Category))
		return
	}

	record, created, err := h.feedbackStore.CreateFeedback(c.Request.Context(), req)
	if err != nil {
		if stderrors.Is(err, store.ErrInvalid) {
			submissionsTotal.WithLabelValues("invalid").Inc()
			_ = c.Error(errors.InvalidSubmission(err.Error()))
			return
		}
		submissionsTotal.WithLabelValues("error").Inc()
		_ = c.Error(errors.NewDatabaseError(err))
		return
	}

	if !created {
		submissionsTotal.WithLabelValues("duplicate").Inc()
		logger.GetLogger().Infow("Duplicate submission ignored",
			"submission_id", req.SubmissionID, "id", record.ID, "request_id", c.GetString("request_id"))
		c.JSON(http.StatusOK, types.StatusResponse{Status: StatusDuplicate})
		return
	}

	submissionsTotal.WithLabelValues("created").Inc()
	logger.GetLogger().Infow("Feedback recorded",
		"id", record.ID,
		"category", record.Category,
		"email", logger.MaskEmail(record.Email),
		"request_id", c.GetString("request_id"))
	c.JSON(http.StatusOK, types.StatusResponse{Status: StatusSubmitted})
}

// ListAllFeedback returns every record. The route sits behind admin basic auth.
func (h *FeedbackHandler) ListAllFeedback(c *gin.Context) {
	records, err := h.feedbackStore.ListFeedback(c.Request.Context())
	if err != nil {
		_ = c.Error(errors.NewDatabaseError(err))
		return
	}
	c.JSON(http.StatusOK, records)
}

func bindJSONOrError(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
		return false
	}
	return true
}
