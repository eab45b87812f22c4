package report

import (
	"sort"

	"github.com/shopspring/decimal"
)

// CategoryCount is the number of records in one category.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// CategoryMeans holds the independent q3, q4 and q5 means of one category.
// A column with no numeric value in the category is absent from Means.
type CategoryMeans struct {
	Category string             `json:"category"`
	Means    map[string]float64 `json:"means"`
}

// Mean returns the mean for column and whether the category has one.
func (c CategoryMeans) Mean(column string) (float64, bool) {
	m, ok := c.Means[column]
	return m, ok
}

// AnswerShare is the frequency of one q1 answer.
type AnswerShare struct {
	Answer   string  `json:"answer"`
	Count    int     `json:"count"`
	Fraction float64 `json:"fraction"`
}

// Percent renders the share as a percentage with one decimal, e.g. "66.7%".
func (a AnswerShare) Percent() string {
	return decimal.NewFromFloat(a.Fraction).Mul(decimal.NewFromInt(100)).StringFixed(1) + "%"
}

// Summary is the admin view of the whole record set.
type Summary struct {
	Total          int             `json:"total"`
	CategoryCounts []CategoryCount `json:"category_counts"`
	RatingMeans    []CategoryMeans `json:"rating_means"`
	// AnswerDistribution is nil when no record carries a q1 answer.
	AnswerDistribution []AnswerShare `json:"answer_distribution"`
}

// Empty reports whether there is nothing to chart.
func (s Summary) Empty() bool {
	return s.Total == 0
}

// Summarize computes every admin view over records. It never fails and
// never divides by zero: an empty set yields a zero total, empty counts and
// means, and a nil distribution.
//
// Records without a category are counted in Total only. Rating values that
// are missing or not numeric are skipped for that column.
func Summarize(records []Record) Summary {
	s := Summary{
		Total:          len(records),
		CategoryCounts: []CategoryCount{},
		RatingMeans:    []CategoryMeans{},
	}
	if len(records) == 0 {
		return s
	}

	counts := make(map[string]int)
	type acc struct {
		sum decimal.Decimal
		n   int64
	}
	sums := make(map[string]map[string]*acc)
	answers := make(map[string]int)
	answered := 0

	for _, r := range records {
		if a, ok := r.String(FieldQ1); ok {
			answers[a]++
			answered++
		}

		// A missing or blank category is counted under "" so the counts
		// always add up to Total.
		cat, _ := r.String(FieldCategory)
		counts[cat]++

		cols, ok := sums[cat]
		if !ok {
			cols = make(map[string]*acc)
			sums[cat] = cols
		}
		for _, col := range RatingColumns {
			v, ok := r.Number(col)
			if !ok {
				continue
			}
			a, ok := cols[col]
			if !ok {
				a = &acc{}
				cols[col] = a
			}
			a.sum = a.sum.Add(decimal.NewFromFloat(v))
			a.n++
		}
	}

	for cat, n := range counts {
		s.CategoryCounts = append(s.CategoryCounts, CategoryCount{Category: cat, Count: n})
	}
	sort.Slice(s.CategoryCounts, func(i, j int) bool {
		a, b := s.CategoryCounts[i], s.CategoryCounts[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Category < b.Category
	})

	for cat, cols := range sums {
		cm := CategoryMeans{Category: cat, Means: make(map[string]float64, len(cols))}
		for col, a := range cols {
			mean, _ := a.sum.Div(decimal.NewFromInt(a.n)).Float64()
			cm.Means[col] = mean
		}
		s.RatingMeans = append(s.RatingMeans, cm)
	}
	sort.Slice(s.RatingMeans, func(i, j int) bool {
		return s.RatingMeans[i].Category < s.RatingMeans[j].Category
	})

	if answered == 0 {
		return s
	}
	total := decimal.NewFromInt(int64(answered))
	for ans, n := range answers {
		frac, _ := decimal.NewFromInt(int64(n)).Div(total).Float64()
		s.AnswerDistribution = append(s.AnswerDistribution, AnswerShare{Answer: ans, Count: n, Fraction: frac})
	}
	sort.Slice(s.AnswerDistribution, func(i, j int) bool {
		a, b := s.AnswerDistribution[i], s.AnswerDistribution[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Answer < b.Answer
	})
	return s
}

// RoundMean rounds a mean half away from zero to two decimals for display.
func RoundMean(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
