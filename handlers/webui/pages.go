package webui

import (
	"strconv"

	"github.com/NomadCrew/feedback-collector/report"
	"github.com/NomadCrew/feedback-collector/types"
)

// User-facing messages.
const (
	MsgEnterName        = "Please enter your name."
	MsgFillAllDetails   = "Please fill in all details."
	MsgSubmitted        = "Feedback submitted successfully!"
	MsgSomethingWrong   = "Something went wrong!"
	MsgIncorrectPass    = "Incorrect Password"
	MsgAdminLoggedIn    = "Logged in as Admin"
	MsgSimpleRecorded   = "Thank you! Your feedback has been recorded."
	MsgStoreUnavailable = "The feedback service is unavailable. Please try again later."
	MsgUnknownCategory  = "That category no longer exists. Showing the first one instead."
)

// Notice levels map to CSS classes.
const (
	levelSuccess = "success"
	levelWarning = "warning"
	levelError   = "error"
)

type Notice struct {
	Level string
	Text  string
}

// page carries what the shared header needs.
type page struct {
	Title    string
	Username string
	Notices  []Notice
}

func (p *page) notify(level, text string) {
	p.Notices = append(p.Notices, Notice{Level: level, Text: text})
}

type loginPage struct {
	page
	Name string
}

type questionView struct {
	Field  string
	Prompt string
	Rating bool
	Value  string
}

// formValues is what the respondent typed; kept on a failed submit.
type formValues struct {
	Name        string
	Email       string
	Answers     [5]string
	Suggestions string
}

func defaultForm(username string) formValues {
	rating := strconv.Itoa(types.DefaultRating)
	return formValues{
		Name:    username,
		Answers: [5]string{types.AnswerYes, types.AnswerYes, rating, rating, rating},
	}
}

type formPage struct {
	page
	Categories   []string
	Category     string
	Questions    []questionView
	Answers      []string
	SubmissionID string
	Form         formValues
}

type chartView struct {
	Kind    string
	Heading string
}

type adminPage struct {
	page
	Authorized bool
	Total      int
	Columns    []string
	Rows       [][]string
	Charts     []chartView
}

type simplePage struct {
	page
	DefaultRating int
}

// answerFields are the form field names of the five answers in order.
var answerFields = [5]string{report.FieldQ1, report.FieldQ2, report.FieldQ3, report.FieldQ4, report.FieldQ5}

func questionViews(prompts []string, values [5]string) []questionView {
	views := make([]questionView, 0, len(prompts))
	for i, p := range prompts {
		if i >= len(answerFields) {
			break
		}
		views = append(views, questionView{
			Field:  answerFields[i],
			Prompt: p,
			Rating: i >= 2,
			Value:  values[i],
		})
	}
	return views
}

// tableRows renders records cell by cell in column order.
func tableRows(records []report.Record, columns []string) [][]string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		row := make([]string, len(columns))
		for i, col := range columns {
			row[i] = report.FormatValue(r[col])
		}
		rows = append(rows, row)
	}
	return rows
}
