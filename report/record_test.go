package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/NomadCrew/feedback-collector/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_LowercasesKeys(t *testing.T) {
	raw := []map[string]any{
		{"Category": "Support", "Q1": "Yes", "Q3": 4, "Name": "Ada"},
		{"category": "Sales", "q1": "No"},
	}
	out := Normalize(raw)
	require.Len(t, out, 2)
	assert.Equal(t, Record{"category": "Support", "q1": "Yes", "q3": 4, "name": "Ada"}, out[0])
	assert.Equal(t, Record{"category": "Sales", "q1": "No"}, out[1])
}

func TestNormalize_LowercaseKeyWinsCollision(t *testing.T) {
	rec := NormalizeOne(map[string]any{"CATEGORY": "upper", "Category": "title", "category": "lower"})
	assert.Equal(t, Record{"category": "lower"}, rec)

	rec = NormalizeOne(map[string]any{"CATEGORY": "upper", "Category": "title"})
	assert.Equal(t, Record{"category": "upper"}, rec)
}

func TestRecord_Number(t *testing.T) {
	r := Record{
		"int": 3, "float": 2.5, "num": json.Number("4"), "str": " 5 ",
		"bad": "x", "nil": nil, "bool": true, "nan": "NaN",
	}
	for field, want := range map[string]float64{"int": 3, "float": 2.5, "num": 4, "str": 5} {
		got, ok := r.Number(field)
		assert.True(t, ok, field)
		assert.Equal(t, want, got, field)
	}
	for _, field := range []string{"bad", "nil", "bool", "nan", "missing"} {
		_, ok := r.Number(field)
		assert.False(t, ok, field)
	}
}

func TestColumns(t *testing.T) {
	records := []Record{
		{"name": "Ada", "q1": "Yes", "zeta": 1, "id": "a"},
		{"timestamp": "t", "alpha": true},
	}
	assert.Equal(t, []string{"timestamp", "name", "q1", "alpha", "id", "zeta"}, Columns(records))
	assert.Equal(t, CanonicalColumns, Columns(nil))
}

func TestWriteCSV(t *testing.T) {
	records := []Record{
		{"timestamp": "2024-05-01T09:00:00Z", "name": "Ada", "email": "ada@example.com", "category": "Support",
			"q1": "Yes", "q2": "No", "q3": 4, "q4": json.Number("5"), "q5": 3.0, "suggestions": "faster, please\nthanks"},
		{"name": "Bob \"B\"", "category": "Sales"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records))

	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, CanonicalColumns, rows[0])
	assert.Equal(t, []string{"2024-05-01T09:00:00Z", "Ada", "ada@example.com", "Support", "Yes", "No", "4", "5", "3", "faster, please\nthanks"}, rows[1])
	assert.Equal(t, "Bob \"B\"", rows[2][1])
	assert.Equal(t, "", rows[2][0])
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, strings.Join(CanonicalColumns, ",")+"\n", buf.String())
}

func TestFromFeedback(t *testing.T) {
	ts := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	out := FromFeedback([]types.Feedback{{
		ID: "a", Name: "Ada", Email: "ada@example.com", Category: "Support",
		Q1: "Yes", Q2: "No", Q3: 4, Q4: 5, Q5: 3, Timestamp: ts,
	}})
	require.Len(t, out, 1)
	assert.Equal(t, "2024-05-01T09:00:00Z", out[0]["timestamp"])
	_, hasSubmission := out[0]["submission_id"]
	assert.False(t, hasSubmission)

	s := Summarize(out)
	assert.Equal(t, 1, s.Total)
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, Summarize(scenarioRecords())))
	out := buf.String()
	assert.Contains(t, out, "Total responses:")
	assert.Contains(t, out, "3.50")
	assert.Contains(t, out, "66.7%")

	buf.Reset()
	require.NoError(t, WriteText(&buf, Summarize(nil)))
	assert.Contains(t, buf.String(), "No data.")
}
