package pipeline

import (
	"fmt"
	"math"
	"os"
	"time"

	"continuum-report/internal/config"
	"continuum-report/internal/model"
	"continuum-report/pkg/utils"

	"github.com/xuri/excelize/v2"
)

// ExportManager writes the optional summary files next to the charts.
type ExportManager struct {
	Spec    config.Export
	Output  *utils.OutputManager
	Results []model.ExportResult
}

// NewExportManager creates an export manager writing under output.
func NewExportManager(spec config.Export, output *utils.OutputManager) *ExportManager {
	return &ExportManager{Spec: spec, Output: output}
}

// Enabled reports whether any export is configured.
func (em *ExportManager) Enabled() bool {
	return em.Spec.CSV || em.Spec.XLSX
}

// ------------------- CSV -------------------

// ExportSummaryCSV writes summary_<dataset>.csv, sorted by percentage.
func (em *ExportManager) ExportSummaryCSV(s *Summary) model.ExportResult {
	path := em.Output.FilePath(fmt.Sprintf("summary_%s.csv", s.Dataset))
	result := model.ExportResult{Type: "csv", Path: path, ExportedAt: time.Now().UTC()}

	err := func() error {
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create CSV file: %w", err)
		}
		defer file.Close()

		df := s.DataFrame()
		if df.Err != nil {
			return df.Err
		}
		if err := df.WriteCSV(file); err != nil {
			return fmt.Errorf("failed to write CSV: %w", err)
		}
		return file.Close()
	}()

	return em.record(result, len(s.Stats), err)
}

// ------------------- XLSX -------------------

// ExportWorkbook writes one sheet per summary and one matrix sheet per
// correlation into a single workbook.
func (em *ExportManager) ExportWorkbook(summaries []*Summary, corrs []*Correlation) model.ExportResult {
	path := em.Output.FilePath(em.Spec.Workbook)
	result := model.ExportResult{Type: "xlsx", Path: path, ExportedAt: time.Now().UTC()}

	records := 0
	err := func() error {
		f := excelize.NewFile()
		defer f.Close()

		first := true
		newSheet := func(name string) error {
			name = sheetName(name)
			if first {
				first = false
				return f.SetSheetName("Sheet1", name)
			}
			_, err := f.NewSheet(name)
			return err
		}

		for _, s := range summaries {
			sheet := sheetName(s.Dataset)
			if err := newSheet(sheet); err != nil {
				return fmt.Errorf("failed to add sheet %q: %w", sheet, err)
			}
			if err := writeSummarySheet(f, sheet, s); err != nil {
				return err
			}
			records += len(s.Stats)
		}

		for _, c := range corrs {
			sheet := sheetName("corr_" + c.Dataset)
			if err := newSheet(sheet); err != nil {
				return fmt.Errorf("failed to add sheet %q: %w", sheet, err)
			}
			if err := writeCorrelationSheet(f, sheet, c); err != nil {
				return err
			}
		}

		if first {
			return fmt.Errorf("nothing to export")
		}
		if err := f.SaveAs(path); err != nil {
			return fmt.Errorf("failed to save workbook: %w", err)
		}
		return nil
	}()

	return em.record(result, records, err)
}

func writeSummarySheet(f *excelize.File, sheet string, s *Summary) error {
	for i, header := range []string{"Category", "Total", "Perc"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
	}
	for i, st := range s.Sorted() {
		row := i + 2
		values := []interface{}{st.Category, st.Total, utils.Round(st.Perc, 2)}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, row)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return f.SetColWidth(sheet, "A", "A", 40)
}

func writeCorrelationSheet(f *excelize.File, sheet string, c *Correlation) error {
	n := c.Size()
	for i, label := range c.Labels {
		top, _ := excelize.CoordinatesToCellName(i+2, 1)
		left, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetCellValue(sheet, top, label); err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, left, label); err != nil {
			return err
		}
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := c.At(i, j)
			if math.IsNaN(v) {
				continue // undefined coefficients stay blank
			}
			cell, _ := excelize.CoordinatesToCellName(j+2, i+2)
			if err := f.SetCellValue(sheet, cell, utils.Round(v, 4)); err != nil {
				return err
			}
		}
	}
	return f.SetColWidth(sheet, "A", "A", 40)
}

// sheetName keeps a name within Excel's 31 character limit.
func sheetName(name string) string {
	r := []rune(name)
	if len(r) > 31 {
		r = r[:31]
	}
	return string(r)
}

func (em *ExportManager) record(result model.ExportResult, records int, err error) model.ExportResult {
	if err != nil {
		result.Error = err.Error()
	} else {
		result.Success = true
		result.RecordCount = records
	}
	em.Results = append(em.Results, result)
	return result
}
