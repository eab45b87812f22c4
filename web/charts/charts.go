// Package charts renders the admin dashboard charts as standalone HTML pages.
package charts

import (
	"errors"
	"io"

	"github.com/NomadCrew/feedback-collector/report"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Chart kinds served under /admin/charts/:kind.
const (
	KindCategory = "category"
	KindRatings  = "ratings"
	KindAnswers  = "answers"
)

// Kinds lists the charts in dashboard order.
var Kinds = []string{KindCategory, KindRatings, KindAnswers}

var (
	ErrUnknownKind = errors.New("unknown chart kind")
	// ErrNoData is returned for an empty summary; nothing is drawn.
	ErrNoData = errors.New("no data to chart")
)

// missing marks a gap in a line series.
const missing = "-"

func CategoryBar(s report.Summary) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Feedback per Category"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Category"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Count"}),
	)

	names := make([]string, 0, len(s.CategoryCounts))
	data := make([]opts.BarData, 0, len(s.CategoryCounts))
	for _, cc := range s.CategoryCounts {
		names = append(names, cc.Category)
		data = append(data, opts.BarData{Value: cc.Count})
	}
	bar.SetXAxis(names).AddSeries("Count", data)
	return bar
}

// RatingLine draws one line per rating column across categories. A category
// with no value for a column leaves a gap instead of a zero.
func RatingLine(s report.Summary) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Average Rating (1–5)"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Category"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Average Score", Min: 0, Max: 5}),
		charts.WithLegendOpts(opts.Legend{Top: "bottom"}),
	)

	names := make([]string, 0, len(s.RatingMeans))
	for _, cm := range s.RatingMeans {
		names = append(names, cm.Category)
	}
	line.SetXAxis(names)

	for _, col := range report.RatingColumns {
		data := make([]opts.LineData, 0, len(s.RatingMeans))
		for _, cm := range s.RatingMeans {
			if m, ok := cm.Mean(col); ok {
				data = append(data, opts.LineData{Value: report.RoundMean(m)})
				continue
			}
			data = append(data, opts.LineData{Value: missing})
		}
		line.AddSeries(col, data)
	}
	return line
}

func AnswerPie(s report.Summary) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Q1 Response Distribution"}),
	)

	data := make([]opts.PieData, 0, len(s.AnswerDistribution))
	for _, share := range s.AnswerDistribution {
		data = append(data, opts.PieData{Name: share.Answer, Value: share.Count})
	}
	pie.AddSeries("q1", data, charts.WithLabelOpts(opts.Label{Formatter: "{b}: {d}%"}))
	return pie
}

// Render writes the chart page for kind.
func Render(w io.Writer, kind string, s report.Summary) error {
	if s.Empty() {
		return ErrNoData
	}
	switch kind {
	case KindCategory:
		return CategoryBar(s).Render(w)
	case KindRatings:
		return RatingLine(s).Render(w)
	case KindAnswers:
		if s.AnswerDistribution == nil {
			return ErrNoData
		}
		return AnswerPie(s).Render(w)
	default:
		return ErrUnknownKind
	}
}
