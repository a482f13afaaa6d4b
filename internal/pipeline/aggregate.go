package pipeline

import (
	"fmt"
	"math"
	"sort"

	"continuum-report/internal/model"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Summary holds the per-category totals and percentages of one table.
type Summary struct {
	Dataset string
	Rows    int
	Stats   []model.CategoryStat // in column order
}

// Aggregate sums every value column of t and expresses each sum as a
// percentage of the row count: perc = total / rows * 100. Missing values are
// skipped in the sum but the row still counts.
func Aggregate(t *LabeledTable) (*Summary, error) {
	rows := t.Rows()
	if rows == 0 {
		return nil, fmt.Errorf("cannot aggregate %q: %w", t.Name, ErrEmptyTable)
	}

	summary := &Summary{
		Dataset: t.Name,
		Rows:    rows,
		Stats:   make([]model.CategoryStat, 0, len(t.Columns())),
	}

	for _, col := range t.Columns() {
		if !t.IsNumeric(col) {
			return nil, fmt.Errorf("cannot aggregate %q: %w: %q", t.Name, ErrNonNumericColumn, col)
		}
		s, _ := t.Column(col)

		var total float64
		for _, v := range s.Float() {
			if !math.IsNaN(v) {
				total += v
			}
		}

		summary.Stats = append(summary.Stats, model.CategoryStat{
			Category: col,
			Total:    total,
			Perc:     total / float64(rows) * 100,
		})
	}

	return summary, nil
}

// Sorted returns the stats ascending by percentage; ties keep column order.
func (s *Summary) Sorted() []model.CategoryStat {
	sorted := make([]model.CategoryStat, len(s.Stats))
	copy(sorted, s.Stats)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Perc < sorted[j].Perc
	})
	return sorted
}

// Lookup returns the stat for one category.
func (s *Summary) Lookup(category string) (model.CategoryStat, bool) {
	for _, st := range s.Stats {
		if st.Category == category {
			return st, true
		}
	}
	return model.CategoryStat{}, false
}

// DataFrame returns the sorted summary as a three-column table
// (category, total, perc).
func (s *Summary) DataFrame() dataframe.DataFrame {
	sorted := s.Sorted()
	categories := make([]string, len(sorted))
	totals := make([]float64, len(sorted))
	percs := make([]float64, len(sorted))
	for i, st := range sorted {
		categories[i] = st.Category
		totals[i] = st.Total
		percs[i] = st.Perc
	}
	return dataframe.New(
		series.New(categories, series.String, "category"),
		series.New(totals, series.Float, "total"),
		series.New(percs, series.Float, "perc"),
	)
}
