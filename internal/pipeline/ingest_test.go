package pipeline

import (
	"errors"
	"io/fs"
	"path/filepath"
	"testing"

	"continuum-report/pkg/utils"

	"github.com/xuri/excelize/v2"
)

func TestLoadTableCSV(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "types.csv", dataTypeCSV)

	table, err := LoadTable("types.csv", dir)
	if err != nil {
		t.Fatalf("LoadTable() error = %v", err)
	}
	if table.Rows() != 3 {
		t.Errorf("Rows() = %d, want 3", table.Rows())
	}
	want := []string{"Authors", "Location", "Health", "Financial", "Privacy concerns?"}
	got := table.Columns()
	if len(got) != len(want) {
		t.Fatalf("Columns() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Columns()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if table.IsNumeric("Authors") {
		t.Error("Authors detected as numeric")
	}
	if !table.IsNumeric("Location") {
		t.Error("Location not detected as numeric")
	}
}

func TestLoadTableCleansHeaders(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bom.csv", "\ufeffAuthors, Location ,\"Health\"\nA,1,0\n")

	table, err := LoadTable("bom.csv", dir)
	if err != nil {
		t.Fatalf("LoadTable() error = %v", err)
	}
	for _, col := range []string{"Authors", "Location", "Health"} {
		if !table.HasColumn(col) {
			t.Errorf("missing cleaned column %q in %v", col, table.Columns())
		}
	}
}

func TestLoadTableHeaderOnly(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "empty.csv", "Authors,Location\n")

	table, err := LoadTable("empty.csv", dir)
	if err != nil {
		t.Fatalf("LoadTable() error = %v", err)
	}
	if table.Rows() != 0 {
		t.Errorf("Rows() = %d, want 0", table.Rows())
	}
	if err := table.SetIndex("Authors"); err != nil {
		t.Fatalf("SetIndex() error = %v", err)
	}
	if _, err := Aggregate(table); !errors.Is(err, ErrEmptyTable) {
		t.Errorf("Aggregate() error = %v, want ErrEmptyTable", err)
	}
}

func TestLoadTableErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ragged.csv", "Authors,Location\nA,1\nB,1,0\n")
	writeFile(t, dir, "table.json", "{}")
	writeFile(t, dir, "blank.csv", "")

	if _, err := LoadTable("missing.csv", dir); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("missing file error = %v, want fs.ErrNotExist", err)
	}
	if _, err := LoadTable("ragged.csv", dir); err == nil {
		t.Error("expected an error for a ragged CSV")
	}
	if _, err := LoadTable("table.json", dir); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("json error = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := LoadTable("blank.csv", dir); err == nil {
		t.Error("expected an error for a file without a header")
	}
}

func TestLoadTableXLSX(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "types.xlsx")

	f := excelize.NewFile()
	rows := [][]interface{}{
		{"Authors", "Location", "Health"},
		{"A", 1, 0},
		{"A", 0, 1},
		{},
		{"B", 1, nil},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	f.Close()

	table, err := LoadTable("types.xlsx", dir)
	if err != nil {
		t.Fatalf("LoadTable() error = %v", err)
	}
	if table.Rows() != 3 {
		t.Errorf("Rows() = %d, want 3 (blank row skipped)", table.Rows())
	}
	if !table.IsNumeric("Health") {
		t.Error("Health not detected as numeric")
	}

	if err := table.SetIndex("Authors"); err != nil {
		t.Fatal(err)
	}
	s, err := Aggregate(table)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	// The missing Health cell is skipped in the sum but its row still counts.
	health, _ := s.Lookup("Health")
	if health.Total != 1 {
		t.Errorf("Health total = %v, want 1", health.Total)
	}
}

func TestLoadTableBooleanSpellings(t *testing.T) {
	tests := []struct {
		name    string
		yes, no string
	}{
		{"lower", "true", "false"},
		{"title", "True", "False"},
		{"upper", "TRUE", "FALSE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, "types.csv", "Authors,Location\nA,"+tt.yes+"\nA,"+tt.no+"\nB, "+tt.yes+" \n")

			table, err := LoadTable("types.csv", dir)
			if err != nil {
				t.Fatalf("LoadTable() error = %v", err)
			}
			if !table.IsNumeric("Location") {
				t.Fatalf("Location with %s/%s not detected as an indicator", tt.yes, tt.no)
			}
			if err := table.SetIndex("Authors"); err != nil {
				t.Fatal(err)
			}
			s, err := Aggregate(table)
			if err != nil {
				t.Fatalf("Aggregate() error = %v", err)
			}
			st, _ := s.Lookup("Location")
			if st.Total != 2 || utils.Round(st.Perc, 2) != 66.67 {
				t.Errorf("Location = %+v, want total 2 perc 66.67", st)
			}
		})
	}
}

func TestLoadTableBlankColumn(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "types.csv", "Authors,Location,Biometric\nA,1,\nA,0,\nB,1,NA\n")

	table, err := LoadTable("types.csv", dir)
	if err != nil {
		t.Fatalf("LoadTable() error = %v", err)
	}
	if !table.IsNumeric("Biometric") {
		t.Error("a column with no values should read as missing numbers")
	}
	if table.IsNumeric("Authors") {
		t.Error("Authors detected as numeric")
	}
}

func TestNormalizeCell(t *testing.T) {
	tests := map[string]string{
		" TRUE ":  "true",
		"False":   "false",
		"1":       "1",
		"Trueish": "Trueish",
		"":        "",
	}
	for in, want := range tests {
		if got := normalizeCell(in); got != want {
			t.Errorf("normalizeCell(%q) = %q, want %q", in, got, want)
		}
	}
}
