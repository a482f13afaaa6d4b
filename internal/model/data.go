package model

import "time"

// CategoryStat is one row of an aggregated table: how many authors flag a
// category and what share of all authors that is.
type CategoryStat struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
	Perc     float64 `json:"perc"`
}

// Artifact kinds written by a report run.
const (
	ArtifactBarChart    = "bar_chart"
	ArtifactCorrelation = "correlation"
	ArtifactSummaryCSV  = "summary_csv"
	ArtifactWorkbook    = "workbook"
)

// Artifact is a file produced by a report run.
type Artifact struct {
	Kind      string    `json:"kind"`
	Dataset   string    `json:"dataset,omitempty"`
	Path      string    `json:"path"`
	Title     string    `json:"title,omitempty"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// ExportResult represents the result of an export operation
type ExportResult struct {
	Type        string    `json:"type"` // "csv", "xlsx"
	Path        string    `json:"path"`
	RecordCount int       `json:"record_count"`
	Success     bool      `json:"success"`
	Error       string    `json:"error,omitempty"`
	ExportedAt  time.Time `json:"exported_at"`
}
