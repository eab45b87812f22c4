package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"text/tabwriter"
)

// ExportFilename is the download name of the admin export.
const ExportFilename = "feedback.csv"

// WriteCSV writes records with a header row of Columns(records).
// Fields containing commas, quotes or newlines are quoted.
func WriteCSV(w io.Writer, records []Record) error {
	cols := Columns(records)
	cw := csv.NewWriter(w)

	if err := cw.Write(cols); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	row := make([]string, len(cols))
	for _, r := range records {
		for i, c := range cols {
			row[i] = FormatValue(r[c])
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteText prints a plain-text summary for terminals.
func WriteText(w io.Writer, s Summary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "Total responses:\t%d\n", s.Total)
	if s.Empty() {
		fmt.Fprintln(tw, "No data.")
		return tw.Flush()
	}

	fmt.Fprintln(tw, "\nCategory\tCount")
	for _, c := range s.CategoryCounts {
		fmt.Fprintf(tw, "%s\t%d\n", c.Category, c.Count)
	}

	fmt.Fprintln(tw, "\nCategory\tQ3\tQ4\tQ5")
	for _, m := range s.RatingMeans {
		fmt.Fprintf(tw, "%s", m.Category)
		for _, col := range RatingColumns {
			if v, ok := m.Mean(col); ok {
				fmt.Fprintf(tw, "\t%s", RoundMean(v))
			} else {
				fmt.Fprint(tw, "\t-")
			}
		}
		fmt.Fprintln(tw)
	}

	if len(s.AnswerDistribution) > 0 {
		fmt.Fprintln(tw, "\nQ1\tCount\tShare")
		for _, a := range s.AnswerDistribution {
			fmt.Fprintf(tw, "%s\t%d\t%s\n", a.Answer, a.Count, a.Percent())
		}
	}
	return tw.Flush()
}
