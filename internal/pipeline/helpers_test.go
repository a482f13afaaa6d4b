package pipeline

import (
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"continuum-report/internal/config"
)

const dataTypeCSV = `Authors,Location,Health,Financial,Privacy concerns?
A,1,0,1,1
A,0,1,1,1
B,1,1,0,1
`

const dataUseCSV = `Authors,Marketing,Profiling,Sharing
A,1,0,1
B,0,1,1
C,1,1,0
D,0,0,1
`

// mustTable parses CSV text into a table.
func mustTable(t *testing.T, name, text string) *LabeledTable {
	t.Helper()
	records, err := csv.NewReader(strings.NewReader(text)).ReadAll()
	if err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	table, err := tableFromRecords(name, records)
	if err != nil {
		t.Fatalf("tableFromRecords() error = %v", err)
	}
	return table
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// testConfig returns the default report rooted at a temp dir holding both
// input tables, drawn small to keep tests fast.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.BaseDir = t.TempDir()
	cfg.Style.Bar.WidthIn, cfg.Style.Bar.HeightIn, cfg.Style.Bar.DPI = 6, 4, 72
	cfg.Style.Heatmap.WidthIn, cfg.Style.Heatmap.HeightIn, cfg.Style.Heatmap.DPI = 6, 4, 72

	src := cfg.SourceDir()
	if err := os.MkdirAll(src, 0755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, src, cfg.Datasets[0].File, dataTypeCSV)
	writeFile(t, src, cfg.Datasets[1].File, dataUseCSV)
	return cfg
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
