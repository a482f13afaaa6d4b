package model

import "time"

// DatasetSummary describes what a run computed for one dataset.
type DatasetSummary struct {
	Name       string         `json:"name"`
	Rows       int            `json:"rows"`
	Categories []CategoryStat `json:"categories"` // ascending by perc
}

// Report is the outcome of a report run.
type Report struct {
	RunID     string           `json:"run_id"`
	StartedAt time.Time        `json:"started_at"`
	Duration  time.Duration    `json:"duration"`
	Datasets  []DatasetSummary `json:"datasets"`
	Artifacts []Artifact       `json:"artifacts"`
}
