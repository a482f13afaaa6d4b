package pipeline

import (
	"errors"
	"fmt"
)

// ErrEmptyTable indicates a table with no rows, for which percentages are
// undefined.
var ErrEmptyTable = errors.New("table has no rows")

// ErrNonNumericColumn indicates an indicator column holding text.
var ErrNonNumericColumn = errors.New("column is not numeric")

// ErrNoNumericColumns indicates a table with nothing to correlate.
var ErrNoNumericColumns = errors.New("table has no numeric columns")

// ErrMissingColumn indicates a configured column absent from the header.
var ErrMissingColumn = errors.New("column not found")

// ErrUnsupportedFormat indicates an input file that is neither CSV nor XLSX.
var ErrUnsupportedFormat = errors.New("unsupported input format")

// StageError records the dataset and stage a failure happened in.
type StageError struct {
	Dataset string
	Stage   string
	Err     error
}

func (e *StageError) Error() string {
	if e.Dataset == "" {
		return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s stage failed for dataset %q: %v", e.Stage, e.Dataset, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(dataset, stage string, err error) error {
	return &StageError{Dataset: dataset, Stage: stage, Err: err}
}
