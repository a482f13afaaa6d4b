package model

import "time"

// Run statuses.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Pipeline stages, in execution order.
const (
	StageIngestion   = "ingestion"
	StageValidation  = "validation"
	StageTransform   = "transformation"
	StageAggregation = "aggregation"
	StageBarChart    = "bar_chart"
	StageCorrelation = "correlation"
	StageExport      = "export"
)

// Run is a report run as recorded in the ledger.
type Run struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Config    string    `json:"config,omitempty"` // JSON snapshot
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StageProgress records one stage of one dataset.
type StageProgress struct {
	Stage     string     `json:"stage"`
	Dataset   string     `json:"dataset"`
	Status    string     `json:"status"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Items     int        `json:"items"`
}

// RunError is an error message recorded against a run.
type RunError struct {
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
