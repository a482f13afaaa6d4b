package pipeline

import (
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// LabeledTable is a DataFrame whose rows carry a label taken from one of its
// columns. Labels are not unique: an author appears once per reviewed paper.
type LabeledTable struct {
	Name      string
	IndexName string
	Index     []string

	df dataframe.DataFrame
}

// NewLabeledTable wraps df. Until SetIndex is called rows are labelled by
// position.
func NewLabeledTable(name string, df dataframe.DataFrame) (*LabeledTable, error) {
	if df.Err != nil {
		return nil, df.Err
	}
	index := make([]string, df.Nrow())
	for i := range index {
		index[i] = fmt.Sprintf("%d", i)
	}
	return &LabeledTable{Name: name, Index: index, df: df}, nil
}

// Frame returns the value columns (the index column excluded once set).
func (t *LabeledTable) Frame() dataframe.DataFrame { return t.df }

// Rows returns the row count. It is the label count, which stays right
// even when no value columns are left.
func (t *LabeledTable) Rows() int { return len(t.Index) }

// Columns returns the value column names in header order.
func (t *LabeledTable) Columns() []string { return t.df.Names() }

// HasColumn reports whether col is a value column.
func (t *LabeledTable) HasColumn(col string) bool {
	for _, name := range t.df.Names() {
		if name == col {
			return true
		}
	}
	return false
}

// Column returns a value column.
func (t *LabeledTable) Column(col string) (series.Series, error) {
	if !t.HasColumn(col) {
		return series.Series{}, fmt.Errorf("%w: %q in table %q", ErrMissingColumn, col, t.Name)
	}
	return t.df.Col(col), nil
}

// IsNumeric reports whether col holds numbers or booleans.
func (t *LabeledTable) IsNumeric(col string) bool {
	s, err := t.Column(col)
	if err != nil {
		return false
	}
	switch s.Type() {
	case series.Int, series.Float, series.Bool:
		return true
	}
	return false
}

// SetIndex moves col out of the value columns and uses its values as row
// labels.
func (t *LabeledTable) SetIndex(col string) error {
	s, err := t.Column(col)
	if err != nil {
		return err
	}
	labels := s.Records()
	df := t.df.Drop(col)
	if df.Err != nil {
		return fmt.Errorf("failed to set index %q: %w", col, df.Err)
	}
	t.df = df
	t.Index = labels
	t.IndexName = col
	return nil
}

// DropColumn removes a value column.
func (t *LabeledTable) DropColumn(col string) error {
	if !t.HasColumn(col) {
		return fmt.Errorf("%w: %q in table %q", ErrMissingColumn, col, t.Name)
	}
	df := t.df.Drop(col)
	if df.Err != nil {
		return fmt.Errorf("failed to drop %q: %w", col, df.Err)
	}
	t.df = df
	return nil
}
