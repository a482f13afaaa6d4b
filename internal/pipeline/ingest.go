package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
)

// Cell values read as missing.
var nanValues = []string{"", "NA", "NaN", "<nil>"}

// ------------------- Ingestion -------------------

// LoadTable joins dir and fileName and parses the file into a labeled table
// with one column per header field. CSV is the normal input; .xlsx files are
// read from their first sheet.
func LoadTable(fileName, dir string) (*LabeledTable, error) {
	return loadTable(fileName, dir, "")
}

func loadTable(fileName, dir, sheet string) (*LabeledTable, error) {
	path := filepath.Join(dir, fileName)

	var records [][]string
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt", "":
		records, err = readCSV(path)
	case ".xlsx":
		records, err = readXLSX(path, sheet)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, err
	}

	t, err := tableFromRecords(fileName, records)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return t, nil
}

// ------------------- CSV Ingestion -------------------
func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("CSV read error in %s: %w", path, err)
	}
	return records, nil
}

// ------------------- XLSX Ingestion -------------------
func readXLSX(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q of %s: %w", sheet, path, err)
	}
	if len(rows) == 0 {
		return rows, nil
	}

	// GetRows trims trailing empty cells; pad back to the header width and
	// skip blank rows.
	width := len(rows[0])
	records := [][]string{rows[0]}
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		if len(row) > width {
			return nil, fmt.Errorf("sheet %q of %s: row has %d cells, header has %d", sheet, path, len(row), width)
		}
		padded := make([]string, width)
		copy(padded, row)
		records = append(records, padded)
	}
	return records, nil
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// tableFromRecords builds a table from a header row followed by data rows,
// detecting int, float, bool and string columns.
func tableFromRecords(name string, records [][]string) (*LabeledTable, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("missing header row")
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		// Clean header names: BOM, surrounding whitespace and quotes
		h = strings.TrimPrefix(h, "\ufeff")
		h = strings.TrimSpace(h)
		headers[i] = strings.ReplaceAll(h, `"`, "")
	}

	if len(records) == 1 {
		cols := make([]series.Series, len(headers))
		for i, h := range headers {
			cols[i] = series.New([]string{}, series.String, h)
		}
		return NewLabeledTable(name, dataframe.New(cols...))
	}

	rows := make([][]string, 0, len(records))
	rows = append(rows, headers)
	present := make([]bool, len(headers))
	for _, rec := range records[1:] {
		row := make([]string, len(rec))
		for i, v := range rec {
			row[i] = normalizeCell(v)
			if i < len(present) && !isMissing(row[i]) {
				present[i] = true
			}
		}
		rows = append(rows, row)
	}

	// A column with no values at all is a category nobody marked: read it
	// as missing numbers rather than text.
	types := make(map[string]series.Type)
	for i, h := range headers {
		if !present[i] {
			types[h] = series.Float
		}
	}

	df := dataframe.LoadRecords(rows,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.NaNValues(nanValues),
		dataframe.WithTypes(types),
	)
	if df.Err != nil {
		return nil, df.Err
	}
	return NewLabeledTable(name, df)
}

// normalizeCell trims v and lowercases boolean spellings such as TRUE and
// False, which spreadsheet exports produce and type detection only accepts
// in lowercase.
func normalizeCell(v string) string {
	v = strings.TrimSpace(v)
	switch {
	case strings.EqualFold(v, "true"):
		return "true"
	case strings.EqualFold(v, "false"):
		return "false"
	}
	return v
}

func isMissing(v string) bool {
	for _, nan := range nanValues {
		if v == nan {
			return true
		}
	}
	return false
}
