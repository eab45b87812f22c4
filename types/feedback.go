package types

import "time"

// Answer values accepted for q1 and q2.
const (
	AnswerYes   = "Yes"
	AnswerNo    = "No"
	AnswerMaybe = "Maybe"
)

// Rating bounds for q3, q4 and q5.
const (
	MinRating     = 1
	MaxRating     = 5
	DefaultRating = 3
)

// Answers lists the q1/q2 choices in display order.
var Answers = []string{AnswerYes, AnswerNo, AnswerMaybe}

// Feedback represents a stored feedback record. Records are append-only.
type Feedback struct {
	ID           string    `json:"id"`
	SubmissionID string    `json:"submission_id,omitempty"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Category     string    `json:"category"`
	Q1           string    `json:"q1"`
	Q2           string    `json:"q2"`
	Q3           int       `json:"q3"`
	Q4           int       `json:"q4"`
	Q5           int       `json:"q5"`
	Suggestions  string    `json:"suggestions"`
	Timestamp    time.Time `json:"timestamp"`
}

// FeedbackCreate is the submit payload: a record without its timestamp.
type FeedbackCreate struct {
	SubmissionID string `json:"submission_id,omitempty" binding:"omitempty,uuid"`
	Name         string `json:"name" binding:"required,max=100"`
	Email        string `json:"email" binding:"required,max=255"`
	Category     string `json:"category" binding:"required,max=100"`
	Q1           string `json:"q1" binding:"required,oneof=Yes No Maybe"`
	Q2           string `json:"q2" binding:"required,oneof=Yes No Maybe"`
	Q3           int    `json:"q3" binding:"required,min=1,max=5"`
	Q4           int    `json:"q4" binding:"required,min=1,max=5"`
	Q5           int    `json:"q5" binding:"required,min=1,max=5"`
	Suggestions  string `json:"suggestions" binding:"max=5000"`
}

// IsAnswer reports whether s is one of the q1/q2 choices.
func IsAnswer(s string) bool {
	for _, a := range Answers {
		if a == s {
			return true
		}
	}
	return false
}

// SimpleEntry is one row of the standalone form's CSV log.
type SimpleEntry struct {
	Timestamp time.Time
	Name      string
	Email     string
	Rating    int
	Feedback  string
}

// StatusResponse is returned by write endpoints.
type StatusResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}
