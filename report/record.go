// Package report turns the full feedback record set into the admin views:
// totals, per-category counts and rating means, the q1 answer distribution,
// and the CSV export.
package report

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/NomadCrew/feedback-collector/types"
)

// Canonical field names of a normalized record.
const (
	FieldID           = "id"
	FieldSubmissionID = "submission_id"
	FieldTimestamp    = "timestamp"
	FieldName         = "name"
	FieldEmail        = "email"
	FieldCategory     = "category"
	FieldQ1           = "q1"
	FieldQ2           = "q2"
	FieldQ3           = "q3"
	FieldQ4           = "q4"
	FieldQ5           = "q5"
	FieldSuggestions  = "suggestions"
)

// CanonicalColumns is the export column order for known fields.
var CanonicalColumns = []string{
	FieldTimestamp, FieldName, FieldEmail, FieldCategory,
	FieldQ1, FieldQ2, FieldQ3, FieldQ4, FieldQ5, FieldSuggestions,
}

// RatingColumns are the numeric 1-5 questions averaged per category.
var RatingColumns = []string{FieldQ3, FieldQ4, FieldQ5}

// Record is one feedback record keyed by lowercase field name.
type Record map[string]any

// Normalize lowercases every key of every raw record. When a record carries
// the same field in several casings, the already-lowercase key wins, then
// the lexically first variant.
func Normalize(raw []map[string]any) []Record {
	out := make([]Record, 0, len(raw))
	for _, r := range raw {
		out = append(out, NormalizeOne(r))
	}
	return out
}

// NormalizeOne lowercases the keys of a single record.
func NormalizeOne(raw map[string]any) Record {
	rec := make(Record, len(raw))
	keys := make([]string, 0, len(raw))
	for k, v := range raw {
		lk := strings.ToLower(strings.TrimSpace(k))
		if lk == k {
			rec[lk] = v
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		lk := strings.ToLower(strings.TrimSpace(k))
		if _, exists := rec[lk]; !exists {
			rec[lk] = raw[k]
		}
	}
	return rec
}

// FromFeedback converts stored records into normalized records.
func FromFeedback(items []types.Feedback) []Record {
	out := make([]Record, 0, len(items))
	for _, fb := range items {
		rec := Record{
			FieldID:          fb.ID,
			FieldTimestamp:   fb.Timestamp.Format(time.RFC3339),
			FieldName:        fb.Name,
			FieldEmail:       fb.Email,
			FieldCategory:    fb.Category,
			FieldQ1:          fb.Q1,
			FieldQ2:          fb.Q2,
			FieldQ3:          fb.Q3,
			FieldQ4:          fb.Q4,
			FieldQ5:          fb.Q5,
			FieldSuggestions: fb.Suggestions,
		}
		if fb.SubmissionID != "" {
			rec[FieldSubmissionID] = fb.SubmissionID
		}
		out = append(out, rec)
	}
	return out
}

// String returns the field as text and whether it is present and non-empty.
func (r Record) String(field string) (string, bool) {
	v, ok := r[field]
	if !ok || v == nil {
		return "", false
	}
	s := strings.TrimSpace(FormatValue(v))
	return s, s != ""
}

// Number returns the field as a finite float and whether it could be read as one.
func (r Record) Number(field string) (float64, bool) {
	v, ok := r[field]
	if !ok || v == nil {
		return 0, false
	}

	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// FormatValue renders a field value as it appears in the table and CSV.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

// Columns returns the field names present across records: canonical fields
// first in canonical order, then any others sorted. An empty set yields the
// canonical columns.
func Columns(records []Record) []string {
	if len(records) == 0 {
		out := make([]string, len(CanonicalColumns))
		copy(out, CanonicalColumns)
		return out
	}

	seen := make(map[string]bool)
	for _, r := range records {
		for k := range r {
			seen[k] = true
		}
	}

	cols := make([]string, 0, len(seen))
	for _, c := range CanonicalColumns {
		if seen[c] {
			cols = append(cols, c)
			delete(seen, c)
		}
	}
	extras := make([]string, 0, len(seen))
	for k := range seen {
		extras = append(extras, k)
	}
	sort.Strings(extras)
	return append(cols, extras...)
}
