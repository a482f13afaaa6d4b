package pipeline

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Correlation is the pairwise Pearson correlation matrix of a table's
// numeric columns.
type Correlation struct {
	Dataset string
	Labels  []string
	Matrix  *mat.SymDense
}

// Correlate computes the Pearson coefficient for every pair of numeric
// columns of t. Text columns are left out. Each pair uses the rows where
// both values are present; pairs with fewer than two such rows, or where a
// column is constant, get NaN.
func Correlate(t *LabeledTable) (*Correlation, error) {
	var labels []string
	var cols [][]float64
	for _, col := range t.Columns() {
		if !t.IsNumeric(col) {
			continue
		}
		s, _ := t.Column(col)
		labels = append(labels, col)
		cols = append(cols, s.Float())
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("cannot correlate %q: %w", t.Name, ErrNoNumericColumns)
	}

	n := len(labels)
	m := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			r := pearson(cols[i], cols[j])
			if i == j && !math.IsNaN(r) {
				r = 1
			}
			m.SetSym(i, j, r)
		}
	}

	return &Correlation{Dataset: t.Name, Labels: labels, Matrix: m}, nil
}

// At returns the coefficient of columns i and j.
func (c *Correlation) At(i, j int) float64 {
	return c.Matrix.At(i, j)
}

// Size returns the number of correlated columns.
func (c *Correlation) Size() int {
	return len(c.Labels)
}

func pearson(x, y []float64) float64 {
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 {
		return math.NaN()
	}

	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return math.NaN()
	}
	// Rounding can push perfect correlations just past ±1.
	return math.Max(-1, math.Min(1, r))
}
