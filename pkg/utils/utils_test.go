package utils

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", 5 * time.Minute},
		{"30s", 30 * time.Second},
		{"2m", 2 * time.Minute},
		{"soon", 5 * time.Minute},
		{"-1m", 5 * time.Minute},
	}
	for _, tt := range tests {
		if got := ParseDuration(tt.in, 5*time.Minute); got != tt.want {
			t.Errorf("ParseDuration(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRound(t *testing.T) {
	if got := Round(200.0/3, 2); got != 66.67 {
		t.Errorf("Round(66.666..., 2) = %v, want 66.67", got)
	}
	if got := Round(12.5, 0); got != 13 {
		t.Errorf("Round(12.5, 0) = %v, want 13", got)
	}
	if got := Round(math.NaN(), 2); !math.IsNaN(got) {
		t.Errorf("Round(NaN) = %v, want NaN", got)
	}
}

func TestOutputManagerPaths(t *testing.T) {
	om := NewOutputManager("/srv/graphs")

	if got := om.ChartPath("barplot_datatype"); got != "/srv/graphs/barplot_datatype.png" {
		t.Errorf("ChartPath() = %q", got)
	}
	if got := om.FilePath("../../etc/passwd"); got != "/srv/graphs/passwd" {
		t.Errorf("FilePath() did not strip directories: %q", got)
	}
	if got := om.GetDownloadURL("/srv/graphs/correlation_datause.png"); got != "/api/v1/charts/correlation_datause.png" {
		t.Errorf("GetDownloadURL() = %q", got)
	}

	types := map[string]string{
		"a.png":  "png",
		"a.CSV":  "csv",
		"a.xlsx": "excel",
		"a.bin":  "unknown",
	}
	for name, want := range types {
		if got := om.GetFileType(name); got != want {
			t.Errorf("GetFileType(%q) = %q, want %q", name, got, want)
		}
	}
	if got := om.ContentType("chart.png"); got != "image/png" {
		t.Errorf("ContentType(png) = %q", got)
	}
}

func TestEnsureOutputDirExists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "graphs")
	om := NewOutputManager(dir)

	if err := om.EnsureOutputDirExists(); err != nil {
		t.Fatalf("EnsureOutputDirExists() error = %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("output dir not created: %v", err)
	}

	path := om.FilePath("x.csv")
	if err := os.WriteFile(path, []byte("abc"), 0644); err != nil {
		t.Fatal(err)
	}
	size, err := om.GetFileSize(path)
	if err != nil || size != 3 {
		t.Errorf("GetFileSize() = %d, %v; want 3, nil", size, err)
	}
}
