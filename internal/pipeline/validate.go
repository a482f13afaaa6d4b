package pipeline

import (
	"fmt"
	"math"

	"continuum-report/internal/config"
)

// ValidateTable checks a freshly loaded table against its dataset definition:
// the index and drop columns exist and every other column is an indicator.
// Indicator columns holding values other than 0 and 1 are reported as
// warnings; they are still summed.
func ValidateTable(t *LabeledTable, ds config.Dataset) (warnings []string, err error) {
	if !t.HasColumn(ds.Index) {
		return nil, fmt.Errorf("%w: index %q in table %q", ErrMissingColumn, ds.Index, t.Name)
	}

	skip := map[string]bool{ds.Index: true}
	for _, col := range ds.DropColumns {
		if !t.HasColumn(col) {
			return nil, fmt.Errorf("%w: %q in table %q", ErrMissingColumn, col, t.Name)
		}
		skip[col] = true
	}

	indicators := 0
	for _, col := range t.Columns() {
		if skip[col] {
			continue
		}
		indicators++

		// Type detection needs at least one value; an empty table is
		// rejected later, when percentages are computed.
		if t.Rows() == 0 {
			continue
		}
		if !t.IsNumeric(col) {
			return nil, fmt.Errorf("%w: %q in table %q", ErrNonNumericColumn, col, t.Name)
		}

		s, _ := t.Column(col)
		outside := 0
		for _, v := range s.Float() {
			if !math.IsNaN(v) && v != 0 && v != 1 {
				outside++
			}
		}
		if outside > 0 {
			warnings = append(warnings, fmt.Sprintf("column %q has %d values other than 0/1", col, outside))
		}
	}

	if indicators == 0 {
		return nil, fmt.Errorf("table %q has no indicator columns", t.Name)
	}
	return warnings, nil
}
