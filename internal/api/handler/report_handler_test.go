package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"continuum-report/internal/config"
	"continuum-report/internal/model"
	"continuum-report/internal/store"
)

const dataTypeCSV = `Authors,Location,Health,Financial,Privacy concerns?
A,1,0,1,1
A,0,1,1,1
B,1,1,0,1
`

const dataUseCSV = `Authors,Marketing,Profiling
A,1,0
B,0,1
C,1,1
`

func newTestHandler(t *testing.T, withInputs bool) *ReportHandler {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.BaseDir = dir
	cfg.Style.Bar.WidthIn, cfg.Style.Bar.HeightIn, cfg.Style.Bar.DPI = 6, 4, 72
	cfg.Style.Heatmap.WidthIn, cfg.Style.Heatmap.HeightIn, cfg.Style.Heatmap.DPI = 6, 4, 72

	if withInputs {
		src := cfg.SourceDir()
		if err := os.MkdirAll(src, 0755); err != nil {
			t.Fatal(err)
		}
		files := map[string]string{
			cfg.Datasets[0].File: dataTypeCSV,
			cfg.Datasets[1].File: dataUseCSV,
		}
		for name, body := range files {
			if err := os.WriteFile(filepath.Join(src, name), []byte(body), 0644); err != nil {
				t.Fatal(err)
			}
		}
	}

	s, err := store.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewReportHandler(s, cfg, logger)
}

func startRun(t *testing.T, h *ReportHandler, body string) string {
	t.Helper()
	rec := httptest.NewRecorder()
	h.CreateReport(rec, httptest.NewRequest(http.MethodPost, "/api/v1/reports", strings.NewReader(body)))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("CreateReport status = %d, body %q", rec.Code, rec.Body.String())
	}
	var resp map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	runID, _ := resp["run_id"].(string)
	if runID == "" {
		t.Fatalf("no run_id in %v", resp)
	}
	h.Wait()
	return runID
}

func get(t *testing.T, fn http.HandlerFunc, path string, v interface{}) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	fn(rec, httptest.NewRequest(http.MethodGet, path, nil))
	if v != nil && rec.Code == http.StatusOK {
		if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return rec
}

func TestCreateReportCompletes(t *testing.T) {
	h := newTestHandler(t, true)
	runID := startRun(t, h, "")

	var run map[string]interface{}
	if rec := get(t, h.GetReport, "/api/v1/reports/"+runID, &run); rec.Code != http.StatusOK {
		t.Fatalf("GetReport status = %d", rec.Code)
	}
	if run["status"] != model.StatusCompleted {
		t.Fatalf("run status = %v, want %s", run["status"], model.StatusCompleted)
	}
	if _, ok := run["config"].(map[string]interface{}); !ok {
		t.Errorf("config snapshot missing: %v", run["config"])
	}

	var artifacts struct {
		Artifacts []ArtifactView `json:"artifacts"`
		Count     int            `json:"count"`
	}
	get(t, h.GetReportArtifacts, "/api/v1/reports/"+runID+"/artifacts", &artifacts)
	if artifacts.Count != 4 {
		t.Fatalf("artifact count = %d, want 4", artifacts.Count)
	}
	if got := artifacts.Artifacts[0].DownloadURL; got != "/api/v1/charts/barplot_datatype.png" {
		t.Errorf("first download URL = %q", got)
	}

	var stages struct {
		Stages []model.StageProgress `json:"stages"`
	}
	get(t, h.GetReportStages, "/api/v1/reports/"+runID+"/stages", &stages)
	if len(stages.Stages) == 0 || stages.Stages[0].Stage != model.StageIngestion {
		t.Errorf("stages = %+v", stages.Stages)
	}

	rec := get(t, h.GetChart, "/api/v1/charts/correlation_datause.png", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GetChart status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}

	var runs []model.Run
	get(t, h.ListReports, "/api/v1/reports", &runs)
	if len(runs) != 1 || runs[0].ID != runID {
		t.Errorf("ListReports = %+v", runs)
	}
}

func TestCreateReportWithExports(t *testing.T) {
	h := newTestHandler(t, true)
	runID := startRun(t, h, `{"export_csv": true, "export_xlsx": true}`)

	var artifacts struct {
		Count int `json:"count"`
	}
	get(t, h.GetReportArtifacts, "/api/v1/reports/"+runID+"/artifacts", &artifacts)
	// four charts, two CSV summaries, one workbook
	if artifacts.Count != 7 {
		t.Errorf("artifact count = %d, want 7", artifacts.Count)
	}
	if h.Config.Export.CSV || h.Config.Export.XLSX {
		t.Error("request options leaked into the shared config")
	}
}

func TestCreateReportRecordsFailure(t *testing.T) {
	h := newTestHandler(t, false)
	runID := startRun(t, h, "")

	var run map[string]interface{}
	get(t, h.GetReport, "/api/v1/reports/"+runID, &run)
	if run["status"] != model.StatusFailed {
		t.Errorf("run status = %v, want %s", run["status"], model.StatusFailed)
	}

	var errs struct {
		Errors []model.RunError `json:"errors"`
		Count  int              `json:"count"`
	}
	get(t, h.GetReportErrors, "/api/v1/reports/"+runID+"/errors", &errs)
	if errs.Count != 1 || !strings.Contains(errs.Errors[0].Message, "ingestion") {
		t.Errorf("errors = %+v", errs.Errors)
	}
}

func TestCreateReportBusy(t *testing.T) {
	h := newTestHandler(t, true)
	h.running = true

	rec := httptest.NewRecorder()
	h.CreateReport(rec, httptest.NewRequest(http.MethodPost, "/api/v1/reports", nil))
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestCreateReportInvalidJSON(t *testing.T) {
	h := newTestHandler(t, true)

	rec := httptest.NewRecorder()
	h.CreateReport(rec, httptest.NewRequest(http.MethodPost, "/api/v1/reports", strings.NewReader("{")))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestNotFoundAndBadRequests(t *testing.T) {
	h := newTestHandler(t, true)

	tests := []struct {
		name string
		fn   http.HandlerFunc
		path string
		want int
	}{
		{"unknown run", h.GetReport, "/api/v1/reports/nope", http.StatusNotFound},
		{"unknown run stages", h.GetReportStages, "/api/v1/reports/nope/stages", http.StatusNotFound},
		{"unknown run errors", h.GetReportErrors, "/api/v1/reports/nope/errors", http.StatusNotFound},
		{"missing id", h.GetReportArtifacts, "/api/v1/reports//artifacts", http.StatusBadRequest},
		{"suffix only", h.GetReportErrors, "/api/v1/reports/errors", http.StatusBadRequest},
		{"missing chart", h.GetChart, "/api/v1/charts/none.png", http.StatusNotFound},
		{"nested chart path", h.GetChart, "/api/v1/charts/a/b.png", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := get(t, tt.fn, tt.path, nil); rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestPathID(t *testing.T) {
	tests := []struct {
		path, prefix, suffix string
		want                 string
		ok                   bool
	}{
		{"/api/v1/reports/abc", reportsPrefix, "", "abc", true},
		{"/api/v1/reports/abc/stages", reportsPrefix, "/stages", "abc", true},
		{"/api/v1/reports/", reportsPrefix, "", "", false},
		{"/api/v1/reports/a/b", reportsPrefix, "", "", false},
		{"/other/abc", reportsPrefix, "", "", false},
	}
	for _, tt := range tests {
		got, ok := pathID(tt.path, tt.prefix, tt.suffix)
		if got != tt.want || ok != tt.ok {
			t.Errorf("pathID(%q, %q) = %q, %v; want %q, %v", tt.path, tt.suffix, got, ok, tt.want, tt.ok)
		}
	}
}
