// Package handler implements the HTTP handlers of the report API.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"continuum-report/internal/config"
	"continuum-report/internal/model"
	"continuum-report/internal/pipeline"
	"continuum-report/internal/store"
	"continuum-report/pkg/utils"

	"github.com/google/uuid"
)

const reportsPrefix = "/api/v1/reports/"

// CreateReportRequest selects the optional exports of a run.
type CreateReportRequest struct {
	ExportCSV  bool `json:"export_csv"`
	ExportXLSX bool `json:"export_xlsx"`
}

// ArtifactView is an artifact with the URL it can be downloaded from.
type ArtifactView struct {
	model.Artifact
	DownloadURL string `json:"download_url"`
}

// ReportHandler serves the report API. Runs write to fixed chart paths, so
// only one runs at a time.
type ReportHandler struct {
	Store  *store.Store
	Config *config.Config
	Logger *slog.Logger
	Output *utils.OutputManager

	mu      sync.Mutex
	running bool
	wg      sync.WaitGroup
}

// NewReportHandler creates a handler running cfg's report.
func NewReportHandler(s *store.Store, cfg *config.Config, logger *slog.Logger) *ReportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportHandler{
		Store:  s,
		Config: cfg,
		Logger: logger,
		Output: utils.NewOutputManager(cfg.ChartsDir()),
	}
}

// Wait blocks until the run in progress, if any, has finished.
func (h *ReportHandler) Wait() {
	h.wg.Wait()
}

func (h *ReportHandler) acquire() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running {
		return false
	}
	h.running = true
	return true
}

func (h *ReportHandler) release() {
	h.mu.Lock()
	h.running = false
	h.mu.Unlock()
}

// CreateReport starts a report run
// @Summary Start a report run
// @Description Load the configured tables and render every chart in the background. Only one run is admitted at a time.
// @Tags reports
// @Accept json
// @Produce json
// @Param request body CreateReportRequest false "Optional exports"
// @Success 202 {object} map[string]interface{} "Run started"
// @Failure 400 {object} map[string]interface{} "Invalid request payload"
// @Failure 409 {object} map[string]interface{} "A run is already in progress"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /reports [post]
func (h *ReportHandler) CreateReport(w http.ResponseWriter, r *http.Request) {
	var req CreateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	if !h.acquire() {
		http.Error(w, "A report run is already in progress", http.StatusConflict)
		return
	}

	cfg := *h.Config
	cfg.Show = false // no viewer on a server
	cfg.Export.CSV = cfg.Export.CSV || req.ExportCSV
	cfg.Export.XLSX = cfg.Export.XLSX || req.ExportXLSX

	runID := uuid.New().String()
	if err := h.Store.SaveRun(runID, cfg); err != nil {
		h.release()
		h.Logger.Error("failed to save run", "run_id", runID, "error", err)
		http.Error(w, "Failed to save run", http.StatusInternalServerError)
		return
	}

	timeout := utils.ParseDuration(cfg.Server.JobTimeout, 5*time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		defer h.release()
		defer cancel()
		// Failures are logged and recorded in the ledger by the run itself.
		_, _ = pipeline.Run(ctx, runID, &cfg, h.Store, h.Logger)
	}()

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"message":    "Report run started",
		"run_id":     runID,
		"status":     model.StatusPending,
		"created_at": time.Now().UTC(),
	})
}

// ListReports lists report runs
// @Summary List report runs
// @Description Get every recorded run with its status, newest first
// @Tags reports
// @Produce json
// @Success 200 {array} model.Run "List of runs"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /reports [get]
func (h *ReportHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	runs, err := h.Store.ListRuns()
	if err != nil {
		http.Error(w, "Failed to fetch runs", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// GetReport retrieves one run
// @Summary Get report run
// @Description Retrieve the status and configuration snapshot of a run
// @Tags reports
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} map[string]interface{} "Run details"
// @Failure 400 {object} map[string]interface{} "Invalid run ID"
// @Failure 404 {object} map[string]interface{} "Run not found"
// @Router /reports/{id} [get]
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	runID, ok := pathID(r.URL.Path, reportsPrefix, "")
	if !ok {
		http.Error(w, "Run ID is required", http.StatusBadRequest)
		return
	}

	run, ok := h.findRun(w, runID)
	if !ok {
		return
	}

	resp := map[string]interface{}{
		"id":         run.ID,
		"status":     run.Status,
		"created_at": run.CreatedAt,
		"updated_at": run.UpdatedAt,
	}
	if json.Valid([]byte(run.Config)) {
		resp["config"] = json.RawMessage(run.Config)
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetReportArtifacts lists the files a run wrote
// @Summary Get report artifacts
// @Description Retrieve the charts and exports written by a run, with download URLs
// @Tags reports
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} map[string]interface{} "Run artifacts"
// @Failure 400 {object} map[string]interface{} "Invalid run ID"
// @Failure 404 {object} map[string]interface{} "Run not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /reports/{id}/artifacts [get]
func (h *ReportHandler) GetReportArtifacts(w http.ResponseWriter, r *http.Request) {
	runID, ok := pathID(r.URL.Path, reportsPrefix, "/artifacts")
	if !ok {
		http.Error(w, "Run ID is required", http.StatusBadRequest)
		return
	}
	if _, ok := h.findRun(w, runID); !ok {
		return
	}

	artifacts, err := h.Store.ListArtifacts(runID)
	if err != nil {
		http.Error(w, "Failed to retrieve artifacts", http.StatusInternalServerError)
		return
	}

	views := make([]ArtifactView, len(artifacts))
	for i, a := range artifacts {
		views[i] = ArtifactView{Artifact: a, DownloadURL: h.Output.GetDownloadURL(a.Path)}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":    runID,
		"artifacts": views,
		"count":     len(views),
	})
}

// GetReportStages retrieves stage progress for a run
// @Summary Get report stages
// @Description Retrieve the stages a run went through, per dataset, in execution order
// @Tags reports
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} map[string]interface{} "Stage progress"
// @Failure 400 {object} map[string]interface{} "Invalid run ID"
// @Failure 404 {object} map[string]interface{} "Run not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /reports/{id}/stages [get]
func (h *ReportHandler) GetReportStages(w http.ResponseWriter, r *http.Request) {
	runID, ok := pathID(r.URL.Path, reportsPrefix, "/stages")
	if !ok {
		http.Error(w, "Run ID is required", http.StatusBadRequest)
		return
	}
	if _, ok := h.findRun(w, runID); !ok {
		return
	}

	stages, err := h.Store.ListStages(runID)
	if err != nil {
		http.Error(w, "Failed to retrieve stages", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id": runID,
		"stages": stages,
		"count":  len(stages),
	})
}

// GetReportErrors retrieves errors for a run
// @Summary Get report errors
// @Description Retrieve the errors recorded for a run
// @Tags reports
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} map[string]interface{} "Run errors"
// @Failure 400 {object} map[string]interface{} "Invalid run ID"
// @Failure 404 {object} map[string]interface{} "Run not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /reports/{id}/errors [get]
func (h *ReportHandler) GetReportErrors(w http.ResponseWriter, r *http.Request) {
	runID, ok := pathID(r.URL.Path, reportsPrefix, "/errors")
	if !ok {
		http.Error(w, "Run ID is required", http.StatusBadRequest)
		return
	}
	if _, ok := h.findRun(w, runID); !ok {
		return
	}

	errs, err := h.Store.ListRunErrors(runID)
	if err != nil {
		http.Error(w, "Failed to retrieve errors", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id": runID,
		"errors": errs,
		"count":  len(errs),
	})
}

// GetChart serves a chart or export from the charts directory
// @Summary Download a chart
// @Description Serve a PNG chart or export file written by a run
// @Tags charts
// @Produce png
// @Param file path string true "File name, e.g. barplot_datatype.png"
// @Success 200 {file} file "The file"
// @Failure 400 {object} map[string]interface{} "Invalid file name"
// @Failure 404 {object} map[string]interface{} "File not found"
// @Router /charts/{file} [get]
func (h *ReportHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	name, ok := pathID(r.URL.Path, "/api/v1/charts/", "")
	if !ok || name == "." || name == ".." {
		http.Error(w, "Invalid file name", http.StatusBadRequest)
		return
	}

	path := h.Output.FilePath(name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", h.Output.ContentType(name))
	http.ServeFile(w, r, path)
}

// findRun writes a 404 or 500 and returns false when the run cannot be read.
func (h *ReportHandler) findRun(w http.ResponseWriter, runID string) (*model.Run, bool) {
	run, err := h.Store.GetRun(runID)
	if errors.Is(err, store.ErrRunNotFound) {
		http.Error(w, "Run not found", http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		http.Error(w, "Failed to fetch run", http.StatusInternalServerError)
		return nil, false
	}
	return run, true
}

// pathID extracts the single path segment between prefix and suffix.
func pathID(path, prefix, suffix string) (string, bool) {
	if len(path) < len(prefix)+len(suffix) ||
		!strings.HasPrefix(path, prefix) || !strings.HasSuffix(path, suffix) {
		return "", false
	}
	id := path[len(prefix) : len(path)-len(suffix)]
	if id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
