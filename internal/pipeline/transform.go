package pipeline

import (
	"continuum-report/internal/config"
)

// PrepareTable indexes the table by the dataset's key column and drops the
// columns that are not categories (for the data-type table, the
// "Privacy concerns?" flag every paper sets).
func PrepareTable(t *LabeledTable, ds config.Dataset) error {
	if err := t.SetIndex(ds.Index); err != nil {
		return err
	}
	for _, col := range ds.DropColumns {
		if err := t.DropColumn(col); err != nil {
			return err
		}
	}
	return nil
}
