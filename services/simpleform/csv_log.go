// Package simpleform appends standalone form entries to a local CSV file.
package simpleform

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/NomadCrew/feedback-collector/types"
)

// TimestampLayout is the local-time format of the Timestamp column.
const TimestampLayout = "2006-01-02 15:04:05"

// Header is written once, when the file is created or found empty.
var Header = []string{"Timestamp", "Name", "Email", "Rating", "Feedback"}

// CSVLog appends rows without ever rewriting earlier ones. Appends from one
// process are serialized by mu.
type CSVLog struct {
	path string
	mu   sync.Mutex
}

func NewCSVLog(path string) *CSVLog {
	return &CSVLog{path: path}
}

func (l *CSVLog) Path() string {
	return l.path
}

// Append writes e as one row. The rating must be within the slider range.
func (l *CSVLog) Append(e types.SimpleEntry) error {
	if e.Rating < types.MinRating || e.Rating > types.MaxRating {
		return fmt.Errorf("rating %d out of range %d-%d", e.Rating, types.MinRating, types.MaxRating)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open feedback log: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat feedback log: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(Header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	row := []string{
		e.Timestamp.Local().Format(TimestampLayout),
		e.Name,
		e.Email,
		strconv.Itoa(e.Rating),
		e.Feedback,
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("failed to write entry: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush entry: %w", err)
	}
	return f.Close()
}
